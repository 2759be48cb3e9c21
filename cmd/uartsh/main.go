//go:build linux

// Command uartsh is an interactive console for a serial line.
//
//	uartsh -device /dev/ttyUSB0 -baud 9600
//	uartsh -device /dev/ttyUSB0 println hello
//
// With arguments it runs a single command and exits.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/jangala-dev/tinygo-uartline/ttyport"
	"github.com/jangala-dev/tinygo-uartline/uartline"
)

var (
	device = "/dev/ttyUSB0"
	baud   = uint(uartline.DefaultBaudRate)
)

func init() {
	if val := os.Getenv("UARTLINE_DEVICE"); val != "" {
		device = val
	}
	flag.StringVar(&device, "device", device, "Serial device path.")
	flag.UintVar(&baud, "baud", baud, "Baud rate.")
	flag.DurationVar(&readTimeout, "timeout", readTimeout, "Default timeout of read commands.")
}

// newShell returns a shell with every command bound to d.
func newShell(d *uartline.Driver) *ishell.Shell {
	sh := ishell.New()
	sh.Set(driverKey, d)
	sh.SetPrompt(device + " > ")
	for _, cmd := range commands {
		sh.AddCmd(cmd)
	}
	return sh
}

func main() {
	flag.Parse()
	if err := run(flag.Args()); err != nil {
		glog.Errorf("%v", err)
		glog.Flush()
		os.Exit(1)
	}
	glog.Flush()
}

// run opens the device and either runs args as one command or starts the
// interactive shell. The port and driver are closed before it returns.
func run(args []string) error {
	port, err := ttyport.Open(device)
	if err != nil {
		return fmt.Errorf("open %s: %w", device, err)
	}
	defer port.Close()

	d := uartline.New(port, uartline.Config{})
	if err := d.Init(uint32(baud)); err != nil {
		return fmt.Errorf("init %s: %w", device, err)
	}
	defer d.Close()

	sh := newShell(d)
	if len(args) > 0 {
		return sh.Process(args...)
	}
	sh.Println("uartsh:", device, "at", baud, "baud; type help")
	sh.Run()
	return nil
}
