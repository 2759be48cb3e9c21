// uartline/port.go

package uartline

import (
	"errors"
	"time"
)

// ErrHandlerBound is returned by SetReceiveHandler when the port already has a
// handler. A receive interrupt feeds exactly one driver.
var ErrHandlerBound = errors.New("uartline: receive handler already bound")

// UARTParity defines the parity setting used for UART communication.
type UARTParity uint8

const (
	// ParityNone disables parity generation and checking (the most common setting).
	ParityNone UARTParity = iota
	// ParityEven sets even parity (total number of 1 bits is even).
	ParityEven
	// ParityOdd sets odd parity (total number of 1 bits is odd).
	ParityOdd
)

// Line format used by every driver instance. These are not configurable.
const (
	DataBits = 8
	StopBits = 1
	Parity   = ParityNone
)

// DefaultBaudRate is applied when Init is called with a zero baud rate.
const DefaultBaudRate = 115200

// PortConfig is what a Driver asks of its Port during Init.
type PortConfig struct {
	BaudRate uint32
	DataBits uint8
	StopBits uint8
	Parity   UARTParity
	// FlowControl is always false; RTS/CTS handling is not supported.
	FlowControl bool
}

// Port is the platform side of a serial peripheral: register setup, the
// blocking transmit primitive and the receive interrupt.
type Port interface {
	// Configure performs the one-time hardware setup with both directions
	// and the receive interrupt enabled. Driver.Init calls it after the
	// handler is bound; a bound handler must stay armed across it.
	Configure(cfg PortConfig) error

	// WriteByte transmits one byte and returns once the controller has
	// accepted it.
	WriteByte(c byte) error

	// SetReceiveHandler installs fn as the receive interrupt callback. fn is
	// called once per received byte, never concurrently with itself. A port
	// accepts a single handler; passing nil detaches it.
	SetReceiveHandler(fn func(byte)) error
}

// Flusher is implemented by ports that can wait for output to leave the wire.
type Flusher interface{ Flush() error }

// Clock supplies the time base for read deadlines.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the monotonic wall clock from package time.
var SystemClock Clock = systemClock{}
