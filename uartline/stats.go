// uartline/stats.go

package uartline

import "sync/atomic"

// Stats holds driver counters since construction or the last ResetStats.
type Stats struct {
	// Receive path
	Received uint32 // bytes stored in the ring
	Dropped  uint32 // bytes lost because the ring was full
	MaxUsed  uint32 // high-water mark of ring occupancy

	// Read protocol
	Timeouts       uint32 // Recv* calls that ended with ErrTimedOut
	ParseFallbacks uint32 // RecvInt/RecvFloat lines that held no number

	// Transmit path
	TxBytes uint32 // bytes accepted by the port
}

type counters struct {
	received       atomic.Uint32
	dropped        atomic.Uint32
	maxUsed        atomic.Uint32
	timeouts       atomic.Uint32
	parseFallbacks atomic.Uint32
	txBytes        atomic.Uint32
}

// Called per received byte with the Put() outcome.
func (c *counters) onByte(putOK bool, used int) {
	if !putOK {
		c.dropped.Add(1)
		return
	}
	c.received.Add(1)
	// track high-water mark
	u := uint32(used)
	for {
		max := c.maxUsed.Load()
		if u <= max {
			break
		}
		if c.maxUsed.CompareAndSwap(max, u) {
			break
		}
	}
}

func (c *counters) snapshot() Stats {
	return Stats{
		Received: c.received.Load(),
		Dropped:  c.dropped.Load(),
		MaxUsed:  c.maxUsed.Load(),

		Timeouts:       c.timeouts.Load(),
		ParseFallbacks: c.parseFallbacks.Load(),

		TxBytes: c.txBytes.Load(),
	}
}

func (c *counters) reset() {
	c.received.Store(0)
	c.dropped.Store(0)
	c.maxUsed.Store(0)
	c.timeouts.Store(0)
	c.parseFallbacks.Store(0)
	c.txBytes.Store(0)
}
