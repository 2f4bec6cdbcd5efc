package main

import "sync/atomic"

// TickMetrics tracks simulation counters for the /metrics endpoint.
// All fields are updated atomically so readers never take the game lock.
type TickMetrics struct {
	TickCount        int64
	InputsAccepted   int64
	InputsDropped    int64 // gated fire/reload requests, unknown players
	ProjectilesFired int64
	SnapshotsSent    int64
	TotalTickNs      int64
}

func (m *TickMetrics) IncAccepted()  { atomic.AddInt64(&m.InputsAccepted, 1) }
func (m *TickMetrics) IncDropped()   { atomic.AddInt64(&m.InputsDropped, 1) }
func (m *TickMetrics) IncSnapshots() { atomic.AddInt64(&m.SnapshotsSent, 1) }
func (m *TickMetrics) AddFired(n int) {
	atomic.AddInt64(&m.ProjectilesFired, int64(n))
}
func (m *TickMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot returns a read-only copy for HTTP output
func (m *TickMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":        tick,
		"inputs_accepted":   atomic.LoadInt64(&m.InputsAccepted),
		"inputs_dropped":    atomic.LoadInt64(&m.InputsDropped),
		"projectiles_fired": atomic.LoadInt64(&m.ProjectilesFired),
		"snapshots_sent":    atomic.LoadInt64(&m.SnapshotsSent),
		"avg_tick_ms":       avgMs,
	}
}
