// uartline/uartline.go

// Package uartline provides an interrupt-fed serial line driver. Received
// bytes are pushed by the port's interrupt handler into a fixed ring buffer
// and consumed by timeout-bounded byte, line and number reads. Output is
// written one byte at a time through the port's blocking transmit primitive,
// with encoders for integers, booleans, fixed-precision floats and bit
// patterns.
//
// One Driver is bound to one Port. The port calls Receive from its interrupt
// context; every other method belongs to a single application goroutine.
package uartline

import (
	"errors"
	"sync"
	"sync/atomic"

	"tinygo.org/x/drivers"
)

var (
	// ErrTimedOut is returned by the Recv* methods when no byte or line
	// arrived within the timeout.
	ErrTimedOut = errors.New("uartline: read timed out")
	// ErrAlreadyInitialized is returned by a second call to Init.
	ErrAlreadyInitialized = errors.New("uartline: already initialized")
	// ErrNotInitialized is returned by operations that need Init first.
	ErrNotInitialized = errors.New("uartline: not initialized")
	// ErrClosed is returned once Close has been called.
	ErrClosed = errors.New("uartline: closed")
	// ErrBufferEmpty is returned by ReadByte when nothing is buffered.
	ErrBufferEmpty = errors.New("uartline: buffer empty")
)

// Config holds the construction-time settings of a Driver.
type Config struct {
	// ID names the peripheral this driver is bound to (e.g. 1 for USART1).
	// It is used for logging only.
	ID int
	// BufferSize is the number of ring slots; zero means DefaultBufferSize.
	BufferSize int
	// Clock drives read deadlines; nil means SystemClock.
	Clock Clock
}

// Driver binds one receive ring and the read/write protocol to one Port.
type Driver struct {
	id     int
	port   Port
	rx     *RingBuffer
	clock  Clock
	stats  counters
	notify chan struct{} // coalesced RX readiness notifications

	baud        uint32
	initialized atomic.Bool

	closeOnce sync.Once
	closed    chan struct{}
}

var _ drivers.UART = (*Driver)(nil)

// New returns a driver for port. Nothing touches the hardware until Init.
func New(port Port, cfg Config) *Driver {
	size := cfg.BufferSize
	if size == 0 {
		size = DefaultBufferSize
	}
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock
	}
	return &Driver{
		id:     cfg.ID,
		port:   port,
		rx:     NewRingBufferSize(size),
		clock:  clock,
		notify: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

// Init configures the port at baud (DefaultBaudRate when zero) with the
// fixed 8N1 format and installs the receive handler. It may be called once.
//
// The handler is claimed before the port is configured, so a port already
// bound to another driver is left untouched and ErrHandlerBound returned.
func (d *Driver) Init(baud uint32) error {
	if !d.initialized.CompareAndSwap(false, true) {
		return ErrAlreadyInitialized
	}
	if baud == 0 {
		baud = DefaultBaudRate
	}
	err := d.port.SetReceiveHandler(d.Receive)
	if err == nil {
		err = d.port.Configure(PortConfig{
			BaudRate: baud,
			DataBits: DataBits,
			StopBits: StopBits,
			Parity:   Parity,
		})
		if err != nil {
			_ = d.port.SetReceiveHandler(nil)
		}
	}
	if err != nil {
		d.initialized.Store(false)
		logError("uart%d: init at %d baud failed: %v", d.id, baud, err)
		return err
	}
	d.baud = baud
	logV(1, "uart%d: initialized at %d baud, %d byte ring", d.id, baud, d.rx.Size())
	return nil
}

// ID returns the peripheral identifier given in Config.
func (d *Driver) ID() int { return d.id }

// BaudRate returns the rate set by Init, or zero before Init.
func (d *Driver) BaudRate() uint32 { return d.baud }

// Receive inserts one byte into the ring. It is the port's receive interrupt
// handler: it never blocks and a byte arriving while the ring is full is
// dropped.
func (d *Driver) Receive(b byte) {
	ok := d.rx.Put(b)
	d.stats.onByte(ok, d.rx.Used())
	if !ok {
		return
	}
	// Coalesce a Readable notification.
	select {
	case d.notify <- struct{}{}:
	default:
	}
}

// Readable returns a coalesced notification for RX readiness. Callers must
// re-check Available after waking.
func (d *Driver) Readable() <-chan struct{} { return d.notify }

// Available reports whether a byte is waiting in the ring.
func (d *Driver) Available() bool { return d.rx.Available() }

// Buffered returns the number of bytes currently stored in the ring.
func (d *Driver) Buffered() int { return d.rx.Used() }

// ReadByte returns the next buffered byte without waiting. If there is no
// data it returns ErrBufferEmpty.
func (d *Driver) ReadByte() (byte, error) {
	if b, ok := d.rx.Get(); ok {
		return b, nil
	}
	return 0, ErrBufferEmpty
}

// Read implements io.Reader with machine.UART semantics: it copies whatever
// is buffered, up to len(p), and returns 0, nil when nothing is.
func (d *Driver) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		b, ok := d.rx.Get()
		if !ok {
			break
		}
		p[n] = b
		n++
	}
	return n, nil
}

// Discard drops everything currently buffered.
func (d *Driver) Discard() { d.rx.Clear() }

// Stats returns a snapshot of the driver counters.
func (d *Driver) Stats() Stats { return d.stats.snapshot() }

// ResetStats zeroes the driver counters.
func (d *Driver) ResetStats() { d.stats.reset() }

// Close detaches the receive handler and wakes any blocked RecvByteContext.
// Buffered bytes stay readable. Close is idempotent.
func (d *Driver) Close() error {
	var err error
	d.closeOnce.Do(func() {
		close(d.closed)
		if d.initialized.Load() {
			err = d.port.SetReceiveHandler(nil)
		}
		logV(1, "uart%d: closed", d.id)
	})
	return err
}
