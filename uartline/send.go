// uartline/send.go

package uartline

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"
)

// DefaultFloatPlaces is the precision Print and Println use for floats.
const DefaultFloatPlaces = 2

// ErrUnsupportedType is returned by Print and Println for values they cannot encode.
var ErrUnsupportedType = errors.New("uartline: unsupported value type")

var (
	crlf = []byte{'\r', '\n'}
	cr   = []byte{'\r'}
)

// WriteByte transmits a single byte. It blocks until the port has accepted it.
func (d *Driver) WriteByte(c byte) error {
	if !d.initialized.Load() {
		return ErrNotInitialized
	}
	if err := d.port.WriteByte(c); err != nil {
		return err
	}
	d.stats.txBytes.Add(1)
	return nil
}

// Write implements io.Writer. Bytes are sent in order, each one blocking
// until accepted; the first port error stops the write.
func (d *Driver) Write(p []byte) (int, error) {
	for i, b := range p {
		if err := d.WriteByte(b); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// WriteString writes s byte by byte.
func (d *Driver) WriteString(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if err := d.WriteByte(s[i]); err != nil {
			return i, err
		}
	}
	return len(s), nil
}

// WriteInt writes v in decimal.
func (d *Driver) WriteInt(v int64) error {
	var buf [20]byte
	_, err := d.Write(AppendInt(buf[:0], v))
	return err
}

// WriteUint writes v in decimal.
func (d *Driver) WriteUint(v uint64) error {
	var buf [20]byte
	_, err := d.Write(AppendUint(buf[:0], v))
	return err
}

// WriteBool writes "true" or "false".
func (d *Driver) WriteBool(v bool) error {
	var buf [5]byte
	_, err := d.Write(AppendBool(buf[:0], v))
	return err
}

// WriteFloat writes v with places decimals, rounding half away from zero.
// See AppendFloat.
func (d *Driver) WriteFloat(v float64, places int) error {
	var buf [48]byte
	_, err := d.Write(AppendFloat(buf[:0], v, places))
	return err
}

// Print writes v followed by a carriage return.
func (d *Driver) Print(v any) error {
	if err := d.writeValue(v); err != nil {
		return err
	}
	_, err := d.Write(cr)
	return err
}

// Println writes v followed by CR LF.
func (d *Driver) Println(v any) error {
	if err := d.writeValue(v); err != nil {
		return err
	}
	return d.newline()
}

// PrintFloat writes v with places decimals followed by a carriage return.
func (d *Driver) PrintFloat(v float64, places int) error {
	if err := d.WriteFloat(v, places); err != nil {
		return err
	}
	_, err := d.Write(cr)
	return err
}

// PrintlnFloat writes v with places decimals followed by CR LF.
func (d *Driver) PrintlnFloat(v float64, places int) error {
	if err := d.WriteFloat(v, places); err != nil {
		return err
	}
	return d.newline()
}

// PrintBinary writes the bit pattern of v (see AppendBinary) on its own line.
func PrintBinary[T constraints.Integer](d *Driver, v T) error {
	var buf [64]byte
	if _, err := d.Write(AppendBinary(buf[:0], v)); err != nil {
		return err
	}
	return d.newline()
}

// PrintBinaryBytes writes the bit pattern of each byte in p, one line per byte.
func (d *Driver) PrintBinaryBytes(p []byte) error {
	for _, b := range p {
		if err := PrintBinary(d, b); err != nil {
			return err
		}
	}
	return nil
}

// Flush waits for transmitted bytes to leave the port when the port
// implements Flusher. Otherwise it returns nil at once: WriteByte already
// waits for the controller.
func (d *Driver) Flush() error {
	if f, ok := d.port.(Flusher); ok {
		return f.Flush()
	}
	return nil
}

func (d *Driver) newline() error {
	_, err := d.Write(crlf)
	return err
}

func (d *Driver) writeValue(v any) error {
	var err error
	switch x := v.(type) {
	case string:
		_, err = d.WriteString(x)
	case []byte:
		_, err = d.Write(x)
	case bool:
		err = d.WriteBool(x)
	case int:
		err = d.WriteInt(int64(x))
	case int8:
		err = d.WriteInt(int64(x))
	case int16:
		err = d.WriteInt(int64(x))
	case int32:
		err = d.WriteInt(int64(x))
	case int64:
		err = d.WriteInt(x)
	case uint:
		err = d.WriteUint(uint64(x))
	case uint8:
		err = d.WriteUint(uint64(x))
	case uint16:
		err = d.WriteUint(uint64(x))
	case uint32:
		err = d.WriteUint(uint64(x))
	case uint64:
		err = d.WriteUint(x)
	case uintptr:
		err = d.WriteUint(uint64(x))
	case float32:
		err = d.WriteFloat(float64(x), DefaultFloatPlaces)
	case float64:
		err = d.WriteFloat(x, DefaultFloatPlaces)
	case error:
		_, err = d.WriteString(x.Error())
	case fmt.Stringer:
		_, err = d.WriteString(x.String())
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
	return err
}
