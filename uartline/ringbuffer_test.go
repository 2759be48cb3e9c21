package uartline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRingBuffer_FIFOUpToUsableCapacity(t *testing.T) {
	const size = 16
	for c := 0; c <= size-1; c++ {
		rb := NewRingBufferSize(size)
		for i := 0; i < c; i++ {
			require.True(t, rb.Put(byte(i+1)), "put %d of %d", i, c)
		}
		require.Equal(t, c > 0, rb.Available())
		require.Equal(t, c, rb.Used())

		for i := 0; i < c; i++ {
			b, ok := rb.Get()
			require.True(t, ok)
			require.Equal(t, byte(i+1), b)
		}
		require.False(t, rb.Available())
		_, ok := rb.Get()
		require.False(t, ok)
	}
}

func TestRingBuffer_OverflowDropsNewest(t *testing.T) {
	rb := NewRingBufferSize(8)
	for i := byte(1); i <= 8; i++ {
		ok := rb.Put(i)
		require.Equal(t, i != 8, ok, "put %d", i)
	}
	require.Equal(t, 7, rb.Used())
	require.Equal(t, 0, rb.Free())

	var got []byte
	for rb.Available() {
		b, _ := rb.Get()
		got = append(got, b)
	}
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7}, got)
}

func TestRingBuffer_WrapsAround(t *testing.T) {
	rb := NewRingBufferSize(4)
	next := byte(0)
	want := byte(0)
	for round := 0; round < 20; round++ {
		for i := 0; i < 3; i++ {
			require.True(t, rb.Put(next))
			next++
		}
		require.False(t, rb.Put(0xFF))
		for i := 0; i < 3; i++ {
			b, ok := rb.Get()
			require.True(t, ok)
			require.Equal(t, want, b)
			want++
		}
	}
}

func TestRingBuffer_DefaultSizeAndClear(t *testing.T) {
	rb := NewRingBuffer()
	require.Equal(t, DefaultBufferSize, rb.Size())
	require.Equal(t, DefaultBufferSize-1, rb.Free())

	for i := 0; i < 10; i++ {
		rb.Put(byte(i))
	}
	rb.Clear()
	require.False(t, rb.Available())
	require.Equal(t, 0, rb.Used())

	require.True(t, rb.Put('x'))
	b, ok := rb.Get()
	require.True(t, ok)
	require.Equal(t, byte('x'), b)
}

func TestRingBuffer_TinySizeIsRaised(t *testing.T) {
	rb := NewRingBufferSize(0)
	require.Equal(t, 2, rb.Size())
	require.True(t, rb.Put(1))
	require.False(t, rb.Put(2))
}

func TestRingBuffer_ConcurrentProducerConsumer(t *testing.T) {
	const total = 20000
	rb := NewRingBufferSize(8)

	go func() {
		for i := 0; i < total; i++ {
			for !rb.Put(byte(i)) {
				// full: spin until the consumer makes room
			}
		}
	}()

	for i := 0; i < total; i++ {
		var b byte
		for {
			v, ok := rb.Get()
			if ok {
				b = v
				break
			}
		}
		if b != byte(i) {
			t.Fatalf("byte %d: got %d want %d", i, b, byte(i))
		}
	}
}
