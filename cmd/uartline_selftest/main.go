//go:build rp2040 || rp2350

// Command uartline_selftest exercises the line driver on real hardware.
// Jumper UART1 TX to RX (Pico: GP8 to GP9) before flashing.
package main

import (
	"context"
	"time"

	"machine"

	"github.com/jangala-dev/tinygo-uartline/rp2port"
	"github.com/jangala-dev/tinygo-uartline/uartline"
)

const baud = 115200

var d = uartline.New(rp2port.UART1, uartline.Config{ID: 1})

func ledBlink(times int, on time.Duration) {
	for i := 0; i < times; i++ {
		machine.LED.High()
		time.Sleep(on)
		machine.LED.Low()
		time.Sleep(on)
	}
}

// settle waits for in-flight loopback bytes, then empties the ring.
func settle() {
	rp2port.UART1.Flush()
	time.Sleep(5 * time.Millisecond)
	d.Discard()
	d.ResetStats()
}

func main() {
	// Give the monitor time to attach.
	time.Sleep(3 * time.Second)

	println("uartline self-test starting")
	machine.LED.Configure(machine.PinConfig{Mode: machine.PinOutput})

	if err := d.Init(baud); err != nil {
		println("Init failed:", err.Error())
		for {
			ledBlink(1, 500*time.Millisecond)
		}
	}

	pass, fail := 0, 0
	defer func() {
		println("")
		println("Summary")
		println("  passed =", pass)
		println("  failed =", fail)
		if fail == 0 {
			ledBlink(3, 120*time.Millisecond)
		} else {
			for {
				ledBlink(1, 600*time.Millisecond)
				time.Sleep(800 * time.Millisecond)
			}
		}
	}()

	run := func(name string, f func() string) {
		println("")
		println("[Test]", name)
		settle()
		if msg := f(); msg == "" {
			println("  PASS")
			pass++
		} else {
			println("  FAIL:", msg)
			fail++
		}
	}

	run("init: second Init refused", func() string {
		if err := d.Init(baud); err != uartline.ErrAlreadyInitialized {
			return "expected ErrAlreadyInitialized"
		}
		return ""
	})

	run("line: println then RecvString", func() string {
		if err := d.Println("hello, uartline"); err != nil {
			return "write failed"
		}
		s, err := d.RecvString(100 * time.Millisecond)
		if err != nil {
			return "timeout"
		}
		if s != "hello, uartline" {
			return "mismatch: " + s
		}
		return ""
	})

	run("line: leading LF skipped, print ends with CR", func() string {
		_ = d.Print("a")
		_ = d.Println("bc")
		_ = d.Print("de")
		want := []string{"a", "bc", "de"}
		for _, w := range want {
			s, err := d.RecvString(100 * time.Millisecond)
			if err != nil {
				return "timeout"
			}
			if s != w {
				return "got " + s + " want " + w
			}
		}
		return ""
	})

	run("int: -123456 round trip", func() string {
		_ = d.Println(-123456)
		v, err := d.RecvInt(100 * time.Millisecond)
		if err != nil {
			return "timeout"
		}
		if v != -123456 {
			return "wrong value"
		}
		return ""
	})

	run("float: 54.321 at 3 places", func() string {
		_ = d.PrintlnFloat(54.321, 3)
		s, err := d.RecvString(100 * time.Millisecond)
		if err != nil {
			return "timeout"
		}
		if s != "54.321" {
			return "got " + s
		}
		return ""
	})

	run("float: RecvFloat", func() string {
		_ = d.PrintlnFloat(-2.5, 1)
		v, err := d.RecvFloat(100 * time.Millisecond)
		if err != nil {
			return "timeout"
		}
		if v != -2.5 {
			return "wrong value"
		}
		return ""
	})

	run("binary: 0xA5 as 8 bits", func() string {
		_ = uartline.PrintBinary(d, uint8(0xA5))
		s, err := d.RecvString(100 * time.Millisecond)
		if err != nil {
			return "timeout"
		}
		if s != "10100101" {
			return "got " + s
		}
		return ""
	})

	run("timeout: RecvByte(50ms) with a silent line", func() string {
		start := time.Now()
		if _, err := d.RecvByte(50 * time.Millisecond); err != uartline.ErrTimedOut {
			return "expected ErrTimedOut"
		}
		if el := time.Since(start); el < 50*time.Millisecond || el > 80*time.Millisecond {
			return "elapsed out of range"
		}
		if d.Stats().Timeouts != 1 {
			return "timeout not counted"
		}
		return ""
	})

	run("notify: RecvByteContext wakes on receive", func() string {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		go func() {
			time.Sleep(20 * time.Millisecond)
			_ = d.WriteByte('Z')
		}()
		b, err := d.RecvByteContext(ctx)
		if err != nil {
			return "no byte"
		}
		if b != 'Z' {
			return "wrong byte"
		}
		return ""
	})

	run("overflow: 100-byte burst keeps the first 63", func() string {
		for i := 0; i < 100; i++ {
			_ = d.WriteByte(byte(i))
		}
		rp2port.UART1.Flush()
		time.Sleep(5 * time.Millisecond)

		st := d.Stats()
		if st.Received != uartline.DefaultBufferSize-1 || st.Dropped != 100-(uartline.DefaultBufferSize-1) {
			println("  received =", st.Received, "dropped =", st.Dropped)
			return "unexpected counts"
		}
		for i := 0; i < uartline.DefaultBufferSize-1; i++ {
			b, err := d.ReadByte()
			if err != nil || b != byte(i) {
				return "order broken"
			}
		}
		if d.Available() {
			return "newest bytes were kept"
		}
		return ""
	})

	println("")
	println("All tests completed")
}
