// uartline/parse.go

package uartline

import (
	"errors"
	"math"
	"strconv"
)

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func skipSpace(s string) string {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return s[i:]
}

// ParseIntLoose parses s the way C's atol does: leading whitespace is
// skipped, an optional sign is accepted and the longest run of decimal
// digits is converted. Anything after the digits is ignored. Out of range
// values saturate. ok is false when no digit was found, in which case the
// result is 0.
func ParseIntLoose(s string) (v int64, ok bool) {
	s = skipSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end == digits {
		return 0, false
	}
	v, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	// On ErrRange ParseInt already returns the saturated bound.
	return v, true
}

// ParseFloatLoose parses s the way C's atof does: leading whitespace is
// skipped and the longest prefix forming a decimal float (optional sign,
// digits with an optional point, optional exponent) or "inf", "infinity" or
// "nan" is converted. ok is false when there is no such prefix.
func ParseFloatLoose(s string) (v float64, ok bool) {
	s = skipSpace(s)
	i := 0
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}

	if w := matchFold(s[i:], "infinity"); w > 0 {
		return math.Inf(sign(neg)), true
	}
	if w := matchFold(s[i:], "inf"); w > 0 {
		return math.Inf(sign(neg)), true
	}
	if w := matchFold(s[i:], "nan"); w > 0 {
		return math.NaN(), true
	}

	mant := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		mant++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			mant++
		}
	}
	if mant == 0 {
		return 0, false
	}
	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			end = k
		}
	}

	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return v, true
}

// matchFold reports the length of word if s starts with it, ignoring ASCII case.
func matchFold(s, word string) int {
	if len(s) < len(word) {
		return 0
	}
	for i := 0; i < len(word); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c != word[i] {
			return 0
		}
	}
	return len(word)
}

func sign(neg bool) int {
	if neg {
		return -1
	}
	return 1
}
