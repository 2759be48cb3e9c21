// uartline/recv.go

package uartline

import (
	"context"
	"runtime"
	"time"
)

const (
	// MaxLineLen bounds the line read by RecvString.
	MaxLineLen = 256
	// numberScratchLen is the line buffer used by RecvInt and RecvFloat.
	numberScratchLen = 20
)

// RecvByte waits for one byte. A zero timeout waits forever; otherwise
// ErrTimedOut is returned once the driver clock has passed the deadline with
// nothing received. The wait spins on the ring, yielding between polls.
func (d *Driver) RecvByte(timeout time.Duration) (byte, error) {
	if b, ok := d.rx.Get(); ok {
		return b, nil
	}
	var deadline time.Time
	if timeout > 0 {
		deadline = d.clock.Now().Add(timeout)
	}
	for {
		if b, ok := d.rx.Get(); ok {
			return b, nil
		}
		if d.isClosed() {
			return 0, ErrClosed
		}
		if timeout > 0 && !d.clock.Now().Before(deadline) {
			d.stats.timeouts.Add(1)
			logV(3, "uart%d: no byte within %v", d.id, timeout)
			return 0, ErrTimedOut
		}
		runtime.Gosched()
	}
}

// RecvByteContext blocks for a single byte or until ctx is done. Unlike
// RecvByte it sleeps on the Readable notification instead of spinning.
func (d *Driver) RecvByteContext(ctx context.Context) (byte, error) {
	if b, ok := d.rx.Get(); ok {
		return b, nil
	}
	for {
		select {
		case <-d.notify:
			if b, ok := d.rx.Get(); ok {
				return b, nil
			}
			// coalesced wake with nothing left; wait again
		case <-d.closed:
			if b, ok := d.rx.Get(); ok {
				return b, nil
			}
			return 0, ErrClosed
		case <-ctx.Done():
			d.stats.timeouts.Add(1)
			return 0, ctx.Err()
		}
	}
}

// RecvLine reads one carriage-return terminated line into buf and returns
// its length. The terminator is not stored.
//
// A CR before any other byte yields an empty line. LF bytes before the first
// accepted byte are skipped, so CR LF pairs from the peer do not produce
// empty lines. Bytes past len(buf) are read and dropped until the CR. The
// timeout applies to each byte; on expiry the partial line is discarded and
// ErrTimedOut returned.
func (d *Driver) RecvLine(buf []byte, timeout time.Duration) (int, error) {
	n, accepted := 0, 0
	for {
		b, err := d.RecvByte(timeout)
		if err != nil {
			return 0, err
		}
		if b == '\r' {
			return n, nil
		}
		if b == '\n' && accepted == 0 {
			continue
		}
		accepted++
		if n < len(buf) {
			buf[n] = b
			n++
		}
	}
}

// RecvString is RecvLine into a fresh buffer of MaxLineLen bytes.
func (d *Driver) RecvString(timeout time.Duration) (string, error) {
	var buf [MaxLineLen]byte
	n, err := d.RecvLine(buf[:], timeout)
	if err != nil {
		return "", err
	}
	return string(buf[:n]), nil
}

// RecvInt reads a line of at most 20 bytes and parses it as a decimal
// integer with ParseIntLoose. Text that is not a number yields 0 without an
// error; only a timeout is reported.
func (d *Driver) RecvInt(timeout time.Duration) (int64, error) {
	var scratch [numberScratchLen]byte
	n, err := d.RecvLine(scratch[:], timeout)
	if err != nil {
		return 0, err
	}
	v, ok := ParseIntLoose(string(scratch[:n]))
	if !ok {
		d.stats.parseFallbacks.Add(1)
	}
	return v, nil
}

// RecvFloat reads a line of at most 20 bytes and parses it with
// ParseFloatLoose. As with RecvInt, malformed text reads as 0.
func (d *Driver) RecvFloat(timeout time.Duration) (float64, error) {
	var scratch [numberScratchLen]byte
	n, err := d.RecvLine(scratch[:], timeout)
	if err != nil {
		return 0, err
	}
	v, ok := ParseFloatLoose(string(scratch[:n]))
	if !ok {
		d.stats.parseFallbacks.Add(1)
	}
	return v, nil
}

func (d *Driver) isClosed() bool {
	select {
	case <-d.closed:
		return true
	default:
		return false
	}
}
