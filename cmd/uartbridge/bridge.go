//go:build linux

package main

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/jangala-dev/tinygo-uartline/uartline"
)

// Topic suffixes under the bridge prefix.
const (
	TopicRx    = "rx"
	TopicTx    = "tx"
	TopicStats = "stats"
)

// Publisher sends one message to a topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Bridge moves CR-terminated lines between a serial driver and a message
// bus. Received lines go to <prefix>rx; payloads delivered to HandleTx are
// written back to the line with CR LF.
type Bridge struct {
	Driver      *uartline.Driver
	Pub         Publisher
	Prefix      string
	LineTimeout time.Duration

	txLock sync.Mutex
}

// DefaultLineTimeout bounds each wait for a byte in Run.
const DefaultLineTimeout = time.Second

// Run reads lines until ctx is done or the driver is closed. Empty lines are
// not published. Publish failures are logged and the line is dropped.
func (b *Bridge) Run(ctx context.Context) error {
	timeout := b.LineTimeout
	if timeout == 0 {
		timeout = DefaultLineTimeout
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line, err := b.Driver.RecvString(timeout)
		switch {
		case err == nil:
		case errors.Is(err, uartline.ErrTimedOut):
			continue
		case errors.Is(err, uartline.ErrClosed):
			return nil
		default:
			return err
		}
		if line == "" {
			continue
		}
		if glog.V(2) {
			glog.Infof("RX %q", line)
		}
		if err := b.Pub.Publish(b.Prefix+TopicRx, []byte(line)); err != nil {
			glog.Warningf("publish %s: %v", b.Prefix+TopicRx, err)
		}
	}
}

// HandleTx writes payload as one line. Concurrent calls are serialised so
// lines are never interleaved on the wire.
func (b *Bridge) HandleTx(payload []byte) error {
	b.txLock.Lock()
	defer b.txLock.Unlock()
	if glog.V(2) {
		glog.Infof("TX %q", payload)
	}
	if _, err := b.Driver.Write(payload); err != nil {
		return err
	}
	return b.Driver.Println("")
}

// PublishStats publishes the driver counters as JSON.
func (b *Bridge) PublishStats() error {
	out, err := json.Marshal(b.Driver.Stats())
	if err != nil {
		return err
	}
	return b.Pub.Publish(b.Prefix+TopicStats, out)
}

// StatsLoop publishes counters every interval until ctx is done.
func (b *Bridge) StatsLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := b.PublishStats(); err != nil {
				glog.Warningf("publish stats: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
