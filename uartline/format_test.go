package uartline

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendFloat(t *testing.T) {
	for _, c := range []struct {
		v      float64
		places int
		want   string
	}{
		{54.321, 3, "54.321"},
		{-0.05, 1, "-0.1"},
		{0.0, 2, "0.00"},
		{0.0, 0, "0"},
		{1.5, 0, "2"},
		{2.5, 0, "3"},
		{-2.5, 0, "-3"},
		{9.96, 1, "10.0"},
		{100, 1, "100.0"},
		{-12.5, 1, "-12.5"},
		{3.14159, 2, "3.14"},
		{1234.5678, 2, "1234.57"},
		{7.7, -1, "8"},
		{0.25, 4, "0.2500"},
	} {
		got := string(AppendFloat(nil, c.v, c.places))
		if got != c.want {
			t.Fatalf("AppendFloat(%v, %d) = %q, want %q", c.v, c.places, got, c.want)
		}
	}
}

func TestAppendFloat_NonFinite(t *testing.T) {
	require.Equal(t, "nan", string(AppendFloat(nil, math.NaN(), 2)))
	require.Equal(t, "inf", string(AppendFloat(nil, math.Inf(1), 2)))
	require.Equal(t, "-inf", string(AppendFloat(nil, math.Inf(-1), 2)))
}

func TestAppendFloat_Appends(t *testing.T) {
	got := AppendFloat([]byte("t="), 21.5, 1)
	require.Equal(t, "t=21.5", string(got))
}

func TestAppendBinary(t *testing.T) {
	require.Equal(t, "00001010", string(AppendBinary(nil, uint8(0b00001010))))
	require.Equal(t, "11111111", string(AppendBinary(nil, int8(-1))))
	require.Equal(t, "10000000", string(AppendBinary(nil, byte(0x80))))
	require.Equal(t, "0000000000000001", string(AppendBinary(nil, uint16(1))))
	require.Equal(t, strings.Repeat("1", 31)+"0", string(AppendBinary(nil, int32(-2))))
	require.Equal(t, "1"+strings.Repeat("0", 63), string(AppendBinary(nil, uint64(1)<<63)))
}

func TestAppendBool(t *testing.T) {
	require.Equal(t, "true", string(AppendBool(nil, true)))
	require.Equal(t, "false", string(AppendBool(nil, false)))
}

func TestAppendInt_RoundTripsThroughParse(t *testing.T) {
	vals := []int64{0, 1, -1, 42, -99999, math.MaxInt64, math.MinInt64, math.MaxInt32, math.MinInt32}
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		vals = append(vals, int64(r.Uint64()))
	}
	for _, v := range vals {
		s := string(AppendInt(nil, v))
		got, ok := ParseIntLoose(s)
		if !ok || got != v {
			t.Fatalf("round trip of %d via %q gave %d (ok=%v)", v, s, got, ok)
		}
	}
	require.Equal(t, "18446744073709551615", string(AppendUint(nil, math.MaxUint64)))
}

func TestParseIntLoose(t *testing.T) {
	for _, c := range []struct {
		s    string
		want int64
		ok   bool
	}{
		{"42", 42, true},
		{"  \t-17", -17, true},
		{"+8", 8, true},
		{"12abc", 12, true},
		{"3.9", 3, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-", 0, false},
		{"- 5", 0, false},
		{"99999999999999999999", math.MaxInt64, true},
		{"-99999999999999999999", math.MinInt64, true},
	} {
		got, ok := ParseIntLoose(c.s)
		if got != c.want || ok != c.ok {
			t.Fatalf("ParseIntLoose(%q) = %d,%v want %d,%v", c.s, got, ok, c.want, c.ok)
		}
	}
}

func TestParseFloatLoose(t *testing.T) {
	for _, c := range []struct {
		s    string
		want float64
		ok   bool
	}{
		{"3.5", 3.5, true},
		{" -0.25", -0.25, true},
		{"1e2", 100, true},
		{"1e", 1, true},
		{"2.5E-1x", 0.25, true},
		{"7.", 7, true},
		{".5", 0.5, true},
		{"12 volts", 12, true},
		{"", 0, false},
		{".", 0, false},
		{"x1", 0, false},
	} {
		got, ok := ParseFloatLoose(c.s)
		if got != c.want || ok != c.ok {
			t.Fatalf("ParseFloatLoose(%q) = %v,%v want %v,%v", c.s, got, ok, c.want, c.ok)
		}
	}

	v, ok := ParseFloatLoose("-INF")
	require.True(t, ok)
	require.True(t, math.IsInf(v, -1))
	v, ok = ParseFloatLoose("Infinity")
	require.True(t, ok)
	require.True(t, math.IsInf(v, 1))
	v, ok = ParseFloatLoose("nan")
	require.True(t, ok)
	require.True(t, math.IsNaN(v))
}
