package rp2port

import (
	"errors"

	"github.com/jangala-dev/tinygo-uartline/uartline"
)

var (
	errInvalidDataBits = errors.New("rp2port: invalid databits")
	errInvalidStopBits = errors.New("rp2port: invalid stopbits")
)

// PL011 UARTLCR_H fields.
const (
	lcrPEN     = 1 << 1
	lcrEPS     = 1 << 2
	lcrSTP2    = 1 << 3
	lcrFEN     = 1 << 4
	lcrWLENPos = 5
)

// maxIBRD is the largest value UARTIBRD holds.
const maxIBRD = 65535

// baudDivisors returns the PL011 integer and fractional divisors for baud
// with the UART clocked at clockHz. Rates outside the divisor range clamp to
// the nearest programmable end.
func baudDivisors(clockHz, baud uint32) (ibrd, fbrd uint32) {
	if baud == 0 {
		baud = uartline.DefaultBaudRate
	}
	// 64ths of the 16x oversampled divisor, with one extra bit for rounding.
	div := 8 * clockHz / baud
	ibrd = div >> 7
	switch {
	case ibrd == 0:
		return 1, 0
	case ibrd >= maxIBRD:
		return maxIBRD, 0
	}
	return ibrd, ((div & 0x7f) + 1) / 2
}

// lineControl builds the full UARTLCR_H value for a frame format, with the
// FIFOs enabled.
func lineControl(databits, stopbits uint8, parity uartline.UARTParity) (uint32, error) {
	if databits < 5 || databits > 8 {
		return 0, errInvalidDataBits
	}
	if stopbits != 1 && stopbits != 2 {
		return 0, errInvalidStopBits
	}
	val := uint32(databits-5)<<lcrWLENPos | lcrFEN
	if stopbits == 2 {
		val |= lcrSTP2
	}
	switch parity {
	case uartline.ParityEven:
		val |= lcrPEN | lcrEPS
	case uartline.ParityOdd:
		val |= lcrPEN
	}
	return val, nil
}
