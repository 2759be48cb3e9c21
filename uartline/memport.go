// uartline/memport.go

package uartline

import (
	"sync"
	"time"
)

// MemPort is an in-memory Port for host builds and tests. Inject plays the
// role of the receive interrupt; transmitted bytes are recorded.
type MemPort struct {
	// TxDelay is slept inside every WriteByte to mimic the wait for the
	// transmit-ready flag.
	TxDelay time.Duration
	// Loopback feeds every transmitted byte back through the receive handler,
	// like a TX-RX jumper.
	Loopback bool

	isr     sync.Mutex // held while the handler runs; ISRs do not nest
	mu      sync.Mutex
	handler func(byte)
	cfg     PortConfig
	nconf   int
	tx      []byte
}

// NewMemPort returns an unconfigured MemPort.
func NewMemPort() *MemPort { return &MemPort{} }

// Configure records cfg.
func (p *MemPort) Configure(cfg PortConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg = cfg
	p.nconf++
	return nil
}

// Config returns the last configuration and whether Configure was called.
func (p *MemPort) Config() (PortConfig, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg, p.nconf > 0
}

// SetReceiveHandler implements Port.
func (p *MemPort) SetReceiveHandler(fn func(byte)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if fn != nil && p.handler != nil {
		return ErrHandlerBound
	}
	p.handler = fn
	return nil
}

// WriteByte records c, after TxDelay.
func (p *MemPort) WriteByte(c byte) error {
	if p.TxDelay > 0 {
		time.Sleep(p.TxDelay)
	}
	p.mu.Lock()
	p.tx = append(p.tx, c)
	p.mu.Unlock()
	if p.Loopback {
		p.Inject(c)
	}
	return nil
}

// Inject delivers bytes to the receive handler one at a time, as successive
// receive interrupts would. It returns how many bytes were delivered, which
// is zero when no handler is bound.
func (p *MemPort) Inject(data ...byte) int {
	p.isr.Lock()
	defer p.isr.Unlock()
	p.mu.Lock()
	fn := p.handler
	p.mu.Unlock()
	if fn == nil {
		return 0
	}
	for _, b := range data {
		fn(b)
	}
	return len(data)
}

// InjectString is Inject for text.
func (p *MemPort) InjectString(s string) int { return p.Inject([]byte(s)...) }

// Transmitted returns a copy of every byte written so far.
func (p *MemPort) Transmitted() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.tx...)
}

// TakeTransmitted returns the bytes written since the last call and clears them.
func (p *MemPort) TakeTransmitted() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.tx
	p.tx = nil
	return out
}
