// Package adapter provides adapters for i2c-transfer integration with external systems.
package adapter

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/heptiolabs/healthcheck"
	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/Transmission-Dynamics/i2c-transfer/api"
	"github.com/Transmission-Dynamics/i2c-transfer/transfer"
)

// BusState is the last outcome seen on a bus.
type BusState struct {
	Err error
	At  time.Time
}

// BusTracker records the last transfer outcome per bus. It is a
// transfer.Observer.
type BusTracker struct {
	last cmap.ConcurrentMap[string, BusState]
}

// NewBusTracker creates an empty tracker.
func NewBusTracker() *BusTracker {
	return &BusTracker{last: cmap.New[BusState]()}
}

// ObserveTransfer implements transfer.Observer.
func (b *BusTracker) ObserveTransfer(r transfer.Report) {
	b.last.Set(r.Bus, BusState{Err: r.Err, At: time.Now()})
}

// Last returns the last outcome seen on bus.
func (b *BusTracker) Last(bus string) (BusState, bool) {
	return b.last.Get(bus)
}

// Buses returns the last outcome of every bus seen so far.
func (b *BusTracker) Buses() map[string]BusState {
	return b.last.Items()
}

// HealthAdapter reports runtime liveness and bus readiness.
type HealthAdapter struct {
	runtime *transfer.Runtime
	tracker *BusTracker
}

var _ api.Health = (*HealthAdapter)(nil)

// NewHealthAdapter creates a HealthAdapter. tracker may be nil.
func NewHealthAdapter(rt *transfer.Runtime, tracker *BusTracker) *HealthAdapter {
	return &HealthAdapter{runtime: rt, tracker: tracker}
}

// LivenessCheck fails once the runtime has been closed.
func (h *HealthAdapter) LivenessCheck() error {
	if h.runtime.Closed() {
		return transfer.ErrRuntimeClosed
	}
	return nil
}

// ReadinessCheck fails when bus is not a character device node, or when the
// last transfer on it could not open the node.
func (h *HealthAdapter) ReadinessCheck(bus string) error {
	fi, err := os.Stat(bus)
	if err != nil {
		return err
	}
	if fi.Mode()&os.ModeCharDevice == 0 {
		return fmt.Errorf("%s is not a character device", bus)
	}
	if h.tracker == nil {
		return nil
	}
	if st, ok := h.tracker.Last(bus); ok && errors.Is(st.Err, transfer.ErrOpenBus) {
		return fmt.Errorf("%s: %w", bus, st.Err)
	}
	return nil
}

// NewHealthHandler exposes h on /live and /ready with one readiness check per bus.
func NewHealthHandler(h api.Health, buses []string, timeout time.Duration) healthcheck.Handler {
	handler := healthcheck.NewHandler()
	handler.AddLivenessCheck("transfer-runtime", h.LivenessCheck)
	for _, bus := range buses {
		handler.AddReadinessCheck("bus:"+bus, healthcheck.Timeout(func() error {
			return h.ReadinessCheck(bus)
		}, timeout))
	}
	return handler
}
