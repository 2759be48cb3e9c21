//go:build linux

// Package ttyport implements uartline.Port on a Linux serial device or pty.
//
// The device is put in raw mode. A reader goroutine waits in poll(2) and
// hands every received byte to the driver's receive handler, standing in for
// the receive interrupt. A self-pipe wakes the reader on Close.
package ttyport

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/sys/unix"

	"github.com/jangala-dev/tinygo-uartline/uartline"
)

var (
	// ErrUnsupportedBaud is returned by Configure for rates termios cannot express.
	ErrUnsupportedBaud = errors.New("ttyport: unsupported baud rate")
	// ErrInvalidFormat is returned by Configure for bad data/stop bits.
	ErrInvalidFormat = errors.New("ttyport: invalid line format")
	// ErrNotConfigured is returned when bytes are written before Configure.
	ErrNotConfigured = errors.New("ttyport: not configured")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("ttyport: closed")
)

// Port is a serial device opened for use by one uartline.Driver.
type Port struct {
	name  string
	fd    int
	pipeR int // self-pipe read fd
	pipeW int // self-pipe write fd

	mu         sync.Mutex
	handler    func(byte)
	configured bool
	reading    bool
	err        error

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

var (
	_ uartline.Port    = (*Port)(nil)
	_ uartline.Flusher = (*Port)(nil)
)

// Open opens device without making it the controlling terminal. The line is
// not configured until Configure.
func Open(device string) (*Port, error) {
	fd, err := unix.Open(device, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("ttyport: open %s: %w", device, err)
	}
	var pipeFds [2]int
	if err := unix.Pipe2(pipeFds[:], unix.O_CLOEXEC); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("ttyport: pipe: %w", err)
	}
	return &Port{
		name:  device,
		fd:    fd,
		pipeR: pipeFds[0],
		pipeW: pipeFds[1],
		done:  make(chan struct{}),
	}, nil
}

// Name returns the device path.
func (p *Port) Name() string { return p.name }

// Configure puts the line in raw mode with the requested rate and format,
// receiver enabled, modem lines ignored and no hardware flow control.
func (p *Port) Configure(cfg uartline.PortConfig) error {
	if p.isClosed() {
		return ErrClosed
	}
	speed, err := baudToUnix(cfg.BaudRate)
	if err != nil {
		return err
	}
	csize, err := dataBitsToUnix(cfg.DataBits)
	if err != nil {
		return err
	}
	if cfg.StopBits != 1 && cfg.StopBits != 2 {
		return fmt.Errorf("%w: %d stop bits", ErrInvalidFormat, cfg.StopBits)
	}

	termios, err := unix.IoctlGetTermios(p.fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("ttyport: get termios: %w", err)
	}

	// Raw mode
	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON | unix.IXOFF | unix.IXANY
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN

	// Format
	termios.Cflag &^= unix.CSIZE | unix.PARENB | unix.PARODD | unix.CSTOPB | unix.CRTSCTS
	termios.Cflag |= csize | unix.CLOCAL | unix.CREAD
	switch cfg.Parity {
	case uartline.ParityEven:
		termios.Cflag |= unix.PARENB
	case uartline.ParityOdd:
		termios.Cflag |= unix.PARENB | unix.PARODD
	}
	if cfg.StopBits == 2 {
		termios.Cflag |= unix.CSTOPB
	}
	if cfg.FlowControl {
		termios.Cflag |= unix.CRTSCTS
	}

	// Baud rate
	termios.Cflag &^= unix.CBAUD
	termios.Cflag |= speed
	termios.Ispeed = speed
	termios.Ospeed = speed

	// One byte at a time, no inter-byte timer.
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(p.fd, unix.TCSETS, termios); err != nil {
		return fmt.Errorf("ttyport: set termios: %w", err)
	}
	// Blocking writes from here on; reads only happen after poll.
	if err := unix.SetNonblock(p.fd, false); err != nil {
		return fmt.Errorf("ttyport: set blocking: %w", err)
	}

	p.mu.Lock()
	p.configured = true
	p.mu.Unlock()
	glog.V(1).Infof("ttyport: %s configured at %d baud", p.name, cfg.BaudRate)
	return nil
}

// SetReceiveHandler installs fn as the receive callback and starts the reader
// goroutine on first use. Bytes arriving while no handler is set are dropped.
func (p *Port) SetReceiveHandler(fn func(byte)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if fn != nil && p.handler != nil {
		return uartline.ErrHandlerBound
	}
	if fn != nil && p.isClosed() {
		return ErrClosed
	}
	p.handler = fn
	if fn != nil && !p.reading {
		p.reading = true
		p.wg.Add(1)
		go p.readLoop()
	}
	return nil
}

// WriteByte writes c to the device, blocking until the kernel has taken it.
func (p *Port) WriteByte(c byte) error {
	if p.isClosed() {
		return ErrClosed
	}
	p.mu.Lock()
	configured := p.configured
	p.mu.Unlock()
	if !configured {
		return ErrNotConfigured
	}
	b := [1]byte{c}
	for {
		n, err := unix.Write(p.fd, b[:])
		if err == unix.EINTR || err == unix.EAGAIN {
			continue
		}
		if err != nil {
			return fmt.Errorf("ttyport: write: %w", err)
		}
		if n == 1 {
			return nil
		}
	}
}

// Flush waits until all written output has been transmitted (tcdrain).
func (p *Port) Flush() error {
	if p.isClosed() {
		return ErrClosed
	}
	if err := unix.IoctlSetInt(p.fd, unix.TCSBRK, 1); err != nil {
		return fmt.Errorf("ttyport: drain: %w", err)
	}
	return nil
}

// Err returns the error that stopped the reader, if any.
func (p *Port) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Close stops the reader and closes the device. It is safe to call more than once.
func (p *Port) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		// Wake up poll using self-pipe
		unix.Write(p.pipeW, []byte{1})
		p.wg.Wait()
		err = unix.Close(p.fd)
		unix.Close(p.pipeR)
		unix.Close(p.pipeW)
	})
	return err
}

func (p *Port) isClosed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *Port) readLoop() {
	defer p.wg.Done()
	var buf [64]byte
	pfd := []unix.PollFd{
		{Fd: int32(p.fd), Events: unix.POLLIN},
		{Fd: int32(p.pipeR), Events: unix.POLLIN},
	}
	for {
		pfd[0].Revents, pfd[1].Revents = 0, 0
		if _, err := unix.Poll(pfd, -1); err != nil {
			if err == unix.EINTR {
				continue
			}
			p.fail(err)
			return
		}
		if pfd[1].Revents != 0 {
			return
		}
		if pfd[0].Revents&unix.POLLIN == 0 && pfd[0].Revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0 {
			p.fail(io.EOF)
			return
		}
		n, err := unix.Read(p.fd, buf[:])
		if err == unix.EINTR || err == unix.EAGAIN {
			continue
		}
		if err != nil {
			p.fail(err)
			return
		}
		if n == 0 {
			p.fail(io.EOF)
			return
		}
		p.deliver(buf[:n])
	}
}

func (p *Port) deliver(data []byte) {
	p.mu.Lock()
	fn := p.handler
	p.mu.Unlock()
	if fn == nil {
		return
	}
	for _, b := range data {
		fn(b)
	}
}

func (p *Port) fail(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
	glog.Warningf("ttyport: %s reader stopped: %v", p.name, err)
}
