//go:build rp2040 || rp2350

// Package rp2port implements uartline.Port on the RP2040/RP2350 PL011 UARTs.
// The receive interrupt (RX level and RX timeout) drains the hardware FIFO
// into the bound handler, one call per byte. Transmission is a busy-wait on
// TXFF followed by a single UARTDR write.
package rp2port

import (
	"device/rp"
	"machine"
	"runtime/interrupt"

	"github.com/jangala-dev/tinygo-uartline/uartline"
)

// Port represents a single PL011 instance.
type Port struct {
	Bus       *rp.UART0_Type // PL011 register block
	Interrupt interrupt.Interrupt
	TX, RX    machine.Pin

	handler func(byte) // written only with RX interrupts masked
	baud    uint32
}

var _ uartline.Port = (*Port)(nil)

// UART ports on the RP2040/RP2350. Pins default to the Pico's UART0 (GP0/GP1)
// and UART1 (GP8/GP9) pads; change TX/RX before Configure for other boards.
var (
	UART0  = &_UART0
	_UART0 = Port{Bus: rp.UART0, TX: machine.UART_TX_PIN, RX: machine.UART_RX_PIN}

	UART1  = &_UART1
	_UART1 = Port{Bus: rp.UART1, TX: machine.GPIO8, RX: machine.GPIO9}
)

func init() {
	UART0.Interrupt = interrupt.New(rp.IRQ_UART0_IRQ, _UART0.handleInterrupt)
	UART1.Interrupt = interrupt.New(rp.IRQ_UART1_IRQ, _UART1.handleInterrupt)
}

// Configure resets the PL011, muxes its pins, programs baud and format and
// enables the receive interrupts. Flow control is never enabled.
func (p *Port) Configure(cfg uartline.PortConfig) error {
	p.resetAndUnreset()

	// 1) Disable UART while configuring (PL011 CR).
	p.Bus.UARTCR.ClearBits(rp.UART0_UARTCR_UARTEN | rp.UART0_UARTCR_RXE | rp.UART0_UARTCR_TXE)

	// 2) Mux pins before touching baud/format.
	if p.TX != machine.NoPin {
		p.TX.Configure(machine.PinConfig{Mode: machine.PinUART})
	}
	if p.RX != machine.NoPin {
		p.RX.Configure(machine.PinConfig{Mode: machine.PinUART})
	}

	// 3) Baud and format. SetFormat does a full LCR_H write including FEN.
	p.SetBaudRate(cfg.BaudRate)
	if err := p.SetFormat(cfg.DataBits, cfg.StopBits, cfg.Parity); err != nil {
		return err
	}

	// 4) Clear any pending IRQs and purge RX FIFO (read until RXFE).
	p.Bus.UARTICR.Set(0x7FF)
	for !p.Bus.UARTFR.HasBits(rp.UART0_UARTFR_RXFE) {
		_ = p.Bus.UARTDR.Get()
	}
	p.Bus.UARTRSR.Set(0)

	// 5) Enable UART, both directions.
	p.Bus.UARTCR.Set(rp.UART0_UARTCR_UARTEN | rp.UART0_UARTCR_RXE | rp.UART0_UARTCR_TXE)

	// 6) NVIC side. The reset cleared IMSC; re-arm RX if a handler is bound.
	p.Bus.UARTIFLS.Set(0)
	if p.handler != nil {
		p.Bus.UARTIMSC.SetBits(rp.UART0_UARTIMSC_RXIM | rp.UART0_UARTIMSC_RTIM)
	}
	p.Interrupt.SetPriority(0x80)
	p.Interrupt.Enable()
	return nil
}

// SetBaudRate programs the PL011 divisors for br and latches them with an
// LCR_H write.
func (p *Port) SetBaudRate(br uint32) {
	if br == 0 {
		br = uartline.DefaultBaudRate
	}
	p.baud = br
	ibrd, fbrd := baudDivisors(machine.CPUFrequency(), br)
	p.Bus.UARTIBRD.Set(ibrd)
	p.Bus.UARTFBRD.Set(fbrd)
	p.Bus.UARTLCR_H.Set(p.Bus.UARTLCR_H.Get())
}

// SetFormat writes the whole LCR_H value for the frame format.
func (p *Port) SetFormat(databits, stopbits uint8, parity uartline.UARTParity) error {
	val, err := lineControl(databits, stopbits, parity)
	if err != nil {
		return err
	}
	p.Bus.UARTLCR_H.Set(val)
	return nil
}

// SetReceiveHandler binds fn to the receive interrupt. The RX interrupt
// sources are masked while the handler is swapped and stay masked when fn is
// nil.
func (p *Port) SetReceiveHandler(fn func(byte)) error {
	const rxMask = rp.UART0_UARTIMSC_RXIM | rp.UART0_UARTIMSC_RTIM
	if fn != nil && p.handler != nil {
		return uartline.ErrHandlerBound
	}
	p.Bus.UARTIMSC.ClearBits(rxMask)
	p.handler = fn
	if fn != nil {
		p.Bus.UARTIMSC.SetBits(rxMask)
	}
	return nil
}

// WriteByte waits for room in the TX FIFO and writes c.
func (p *Port) WriteByte(c byte) error {
	for p.Bus.UARTFR.HasBits(rp.UART0_UARTFR_TXFF) {
	}
	p.Bus.UARTDR.Set(uint32(c))
	return nil
}

// Flush blocks until the TX FIFO is empty and the shifter is idle.
func (p *Port) Flush() error {
	for !p.Bus.UARTFR.HasBits(rp.UART0_UARTFR_TXFE) || p.Bus.UARTFR.HasBits(rp.UART0_UARTFR_BUSY) {
	}
	return nil
}

// BaudRate returns the last programmed rate.
func (p *Port) BaudRate() uint32 { return p.baud }

// resetAndUnreset asserts and releases the peripheral reset for the selected PL011.
func (p *Port) resetAndUnreset() {
	var mask uint32
	switch p.Bus {
	case rp.UART0:
		mask = rp.RESETS_RESET_UART0
	case rp.UART1:
		mask = rp.RESETS_RESET_UART1
	}
	rp.RESETS.RESET.SetBits(mask)
	rp.RESETS.RESET.ClearBits(mask)
	for !rp.RESETS.RESET_DONE.HasBits(mask) {
	}
}

// handleInterrupt services RX level and RX timeout: drain DR until RXFE,
// dropping errored bytes (reading DR clears the per-byte flags), then clear
// RXIC/RTIC and the sticky error register.
func (p *Port) handleInterrupt(interrupt.Interrupt) {
	fn := p.handler
	for !p.Bus.UARTFR.HasBits(rp.UART0_UARTFR_RXFE) {
		r := p.Bus.UARTDR.Get()
		if (r & (rp.UART0_UARTDR_OE | rp.UART0_UARTDR_BE |
			rp.UART0_UARTDR_PE | rp.UART0_UARTDR_FE)) != 0 {
			continue
		}
		if fn != nil {
			fn(byte(r & 0xFF))
		}
	}
	p.Bus.UARTICR.Set(rp.UART0_UARTICR_RXIC | rp.UART0_UARTICR_RTIC)
	p.Bus.UARTRSR.Set(0)
}
