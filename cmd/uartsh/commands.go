//go:build linux

package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/jangala-dev/tinygo-uartline/uartline"
)

const driverKey = "$driver"

// readTimeout bounds the read commands unless a TIMEOUT argument is given.
var readTimeout = 2 * time.Second

var commands = []*ishell.Cmd{
	&PrintCmd,
	&PrintlnCmd,
	&IntCmd,
	&BoolCmd,
	&FloatCmd,
	&BinaryCmd,
	&ReadLineCmd,
	&ReadIntCmd,
	&ReadFloatCmd,
	&StatsCmd,
	&DiscardCmd,
}

// driverFrom gets the driver stored in the shell.
func driverFrom(c *ishell.Context) *uartline.Driver {
	return c.Get(driverKey).(*uartline.Driver)
}

// timeoutArg parses an optional TIMEOUT argument at index i.
func timeoutArg(args []string, i int) (time.Duration, error) {
	if len(args) <= i {
		return readTimeout, nil
	}
	d, err := time.ParseDuration(args[i])
	if err != nil {
		return 0, fmt.Errorf("invalid TIMEOUT: %v", err)
	}
	return d, nil
}

// writeBinary prints v using the given width in bits.
func writeBinary(d *uartline.Driver, v uint64, bits int) error {
	switch bits {
	case 8:
		return uartline.PrintBinary(d, uint8(v))
	case 16:
		return uartline.PrintBinary(d, uint16(v))
	case 32:
		return uartline.PrintBinary(d, uint32(v))
	case 64:
		return uartline.PrintBinary(d, v)
	default:
		return fmt.Errorf("invalid BITS %d: want 8, 16, 32 or 64", bits)
	}
}

// formatStats renders the driver counters one per line.
func formatStats(st uartline.Stats) string {
	var w strings.Builder
	fmt.Fprintf(&w, "received        %d\n", st.Received)
	fmt.Fprintf(&w, "dropped         %d\n", st.Dropped)
	fmt.Fprintf(&w, "max used        %d\n", st.MaxUsed)
	fmt.Fprintf(&w, "timeouts        %d\n", st.Timeouts)
	fmt.Fprintf(&w, "parse fallbacks %d\n", st.ParseFallbacks)
	fmt.Fprintf(&w, "tx bytes        %d", st.TxBytes)
	return w.String()
}

var (
	// PrintCmd sends text terminated by CR.
	PrintCmd = ishell.Cmd{
		Name:    "print",
		Aliases: []string{"p"},
		Help:    "TEXT...",
		Func: func(c *ishell.Context) {
			if err := driverFrom(c).Print(strings.Join(c.Args, " ")); err != nil {
				c.Err(err)
			}
		},
	}

	// PrintlnCmd sends text terminated by CR LF.
	PrintlnCmd = ishell.Cmd{
		Name:    "println",
		Aliases: []string{"pl"},
		Help:    "TEXT...",
		Func: func(c *ishell.Context) {
			if err := driverFrom(c).Println(strings.Join(c.Args, " ")); err != nil {
				c.Err(err)
			}
		},
	}

	// IntCmd sends a decimal integer line.
	IntCmd = ishell.Cmd{
		Name: "int",
		Help: "VALUE",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("VALUE required"))
				return
			}
			v, err := strconv.ParseInt(c.Args[0], 0, 64)
			if err != nil {
				c.Err(fmt.Errorf("invalid VALUE: %v", err))
				return
			}
			if err := driverFrom(c).Println(v); err != nil {
				c.Err(err)
			}
		},
	}

	// BoolCmd sends "true" or "false".
	BoolCmd = ishell.Cmd{
		Name: "bool",
		Help: "true|false",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("VALUE required"))
				return
			}
			v, err := strconv.ParseBool(c.Args[0])
			if err != nil {
				c.Err(fmt.Errorf("invalid VALUE: %v", err))
				return
			}
			if err := driverFrom(c).Println(v); err != nil {
				c.Err(err)
			}
		},
	}

	// FloatCmd sends a fixed-precision float line.
	FloatCmd = ishell.Cmd{
		Name:    "float",
		Aliases: []string{"f"},
		Help:    "VALUE [PLACES]",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("VALUE required"))
				return
			}
			v, err := strconv.ParseFloat(c.Args[0], 64)
			if err != nil {
				c.Err(fmt.Errorf("invalid VALUE: %v", err))
				return
			}
			places := uartline.DefaultFloatPlaces
			if len(c.Args) > 1 {
				if places, err = strconv.Atoi(c.Args[1]); err != nil {
					c.Err(fmt.Errorf("invalid PLACES: %v", err))
					return
				}
			}
			if err := driverFrom(c).PrintlnFloat(v, places); err != nil {
				c.Err(err)
			}
		},
	}

	// BinaryCmd sends the bit pattern of a value, most significant bit first.
	BinaryCmd = ishell.Cmd{
		Name:    "binary",
		Aliases: []string{"bin"},
		Help:    "VALUE [BITS]",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("VALUE required"))
				return
			}
			v, err := strconv.ParseUint(c.Args[0], 0, 64)
			if err != nil {
				c.Err(fmt.Errorf("invalid VALUE: %v", err))
				return
			}
			bits := 8
			if len(c.Args) > 1 {
				if bits, err = strconv.Atoi(c.Args[1]); err != nil {
					c.Err(fmt.Errorf("invalid BITS: %v", err))
					return
				}
			}
			if err := writeBinary(driverFrom(c), v, bits); err != nil {
				c.Err(err)
			}
		},
	}

	// ReadLineCmd waits for one CR-terminated line.
	ReadLineCmd = ishell.Cmd{
		Name:    "readline",
		Aliases: []string{"rl"},
		Help:    "[TIMEOUT]",
		Func: func(c *ishell.Context) {
			timeout, err := timeoutArg(c.Args, 0)
			if err != nil {
				c.Err(err)
				return
			}
			line, err := driverFrom(c).RecvString(timeout)
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(strconv.Quote(line))
		},
	}

	// ReadIntCmd waits for a line and parses it as an integer.
	ReadIntCmd = ishell.Cmd{
		Name:    "readint",
		Aliases: []string{"ri"},
		Help:    "[TIMEOUT]",
		Func: func(c *ishell.Context) {
			timeout, err := timeoutArg(c.Args, 0)
			if err != nil {
				c.Err(err)
				return
			}
			v, err := driverFrom(c).RecvInt(timeout)
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(v)
		},
	}

	// ReadFloatCmd waits for a line and parses it as a float.
	ReadFloatCmd = ishell.Cmd{
		Name:    "readfloat",
		Aliases: []string{"rf"},
		Help:    "[TIMEOUT]",
		Func: func(c *ishell.Context) {
			timeout, err := timeoutArg(c.Args, 0)
			if err != nil {
				c.Err(err)
				return
			}
			v, err := driverFrom(c).RecvFloat(timeout)
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(string(uartline.AppendFloat(nil, v, 6)))
		},
	}

	// StatsCmd shows the driver counters.
	StatsCmd = ishell.Cmd{
		Name: "stats",
		Help: "[reset]",
		Func: func(c *ishell.Context) {
			d := driverFrom(c)
			c.Println(formatStats(d.Stats()))
			if len(c.Args) > 0 && c.Args[0] == "reset" {
				d.ResetStats()
			}
		},
	}

	// DiscardCmd drops buffered input.
	DiscardCmd = ishell.Cmd{
		Name: "discard",
		Help: "",
		Func: func(c *ishell.Context) {
			d := driverFrom(c)
			n := d.Buffered()
			d.Discard()
			c.Printf("discarded %d bytes\n", n)
		},
	}
)
