// uartline/format.go

package uartline

import (
	"math"
	"strconv"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// AppendInt appends the decimal form of v to dst.
func AppendInt(dst []byte, v int64) []byte { return strconv.AppendInt(dst, v, 10) }

// AppendUint appends the decimal form of v to dst.
func AppendUint(dst []byte, v uint64) []byte { return strconv.AppendUint(dst, v, 10) }

// AppendBool appends "true" or "false" to dst.
func AppendBool(dst []byte, v bool) []byte {
	if v {
		return append(dst, "true"...)
	}
	return append(dst, "false"...)
}

// AppendFloat appends v with exactly places digits after the point.
//
// Rounding is half away from zero at the requested precision: 0.5*10^-places
// (signed like v) is added before the digits are truncated out, so -0.05 at
// one place gives "-0.1". The leading minus follows the sign of v, not of the
// rounded result. Digits come from repeated division and multiplication in
// float64 and are not guaranteed to match strconv for every input.
// NaN and infinities are written as "nan", "inf" and "-inf".
func AppendFloat(dst []byte, v float64, places int) []byte {
	switch {
	case math.IsNaN(v):
		return append(dst, "nan"...)
	case math.IsInf(v, 1):
		return append(dst, "inf"...)
	case math.IsInf(v, -1):
		return append(dst, "-inf"...)
	}
	if places < 0 {
		places = 0
	}

	// rounding term d = 0.5/10^places, with the sign of v
	d := 0.5
	if v < 0 {
		d = -d
	}
	for i := 0; i < places; i++ {
		d /= 10
	}
	f := math.Abs(v + d)

	// tens becomes the largest power of ten not above f; count is the number
	// of integer digits
	tens := 0.1
	count := 0
	for tens*10 <= f {
		tens *= 10
		count++
	}

	if v < 0 {
		dst = append(dst, '-')
	}
	if count == 0 {
		dst = append(dst, '0')
	}
	for i := 0; i < count; i++ {
		digit := clampDigit(f / tens)
		dst = append(dst, byte('0'+digit))
		f -= float64(digit) * tens
		tens /= 10
	}

	if places == 0 {
		return dst
	}
	dst = append(dst, '.')
	for i := 0; i < places; i++ {
		f *= 10
		digit := clampDigit(f)
		dst = append(dst, byte('0'+digit))
		f -= float64(digit)
	}
	return dst
}

func clampDigit(f float64) int {
	digit := int(f)
	if digit < 0 {
		return 0
	}
	if digit > 9 {
		return 9
	}
	return digit
}

// AppendBinary appends the bit pattern of v, most significant bit first, as
// '0' and '1' characters. The width is the size of T in bits.
func AppendBinary[T constraints.Integer](dst []byte, v T) []byte {
	bits := int(unsafe.Sizeof(v)) * 8
	u := uint64(v)
	for i := bits - 1; i >= 0; i-- {
		if u&(1<<uint(i)) != 0 {
			dst = append(dst, '1')
		} else {
			dst = append(dst, '0')
		}
	}
	return dst
}
