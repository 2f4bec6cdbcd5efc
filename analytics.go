package main

import (
	"sync"
	"time"
)

// Event types for analytics tracking
const (
	EvtMatchStart   = "match_start"
	EvtMatchEnd     = "match_end"
	EvtKill         = "player_kill"
	EvtSessionStart = "session_start"
	EvtSessionEnd   = "session_end"
)

// AnalyticsEvent represents a single trackable event
type AnalyticsEvent struct {
	Type      string
	PlayerID  int64
	SessionID string
	Data      string
	Timestamp time.Time
}

// Analytics handles event tracking with batched background writes, so the
// tick loop never waits on the database.
type Analytics struct {
	db     *DB
	events chan AnalyticsEvent
	stop   chan struct{}
	wg     sync.WaitGroup
}

// NewAnalytics creates and starts the analytics background writer
func NewAnalytics(db *DB) *Analytics {
	a := &Analytics{
		db:     db,
		events: make(chan AnalyticsEvent, 1024),
		stop:   make(chan struct{}),
	}
	a.wg.Add(1)
	go a.writer()
	return a
}

// Track enqueues an event for async persistence (non-blocking)
func (a *Analytics) Track(evtType string, playerID int64, sessionID string, data string) {
	select {
	case a.events <- AnalyticsEvent{
		Type:      evtType,
		PlayerID:  playerID,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}:
	default:
		// Channel full — drop event rather than blocking game loop
	}
}

// Stop gracefully shuts down the analytics writer
func (a *Analytics) Stop() {
	close(a.stop)
	a.wg.Wait()
}

// writer is the background goroutine that batches and writes events to DB
func (a *Analytics) writer() {
	defer a.wg.Done()

	batch := make([]AnalyticsEvent, 0, 64)
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case evt := <-a.events:
			batch = append(batch, evt)
			if len(batch) >= 50 {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-a.stop:
			// Drain whatever is queued before exiting
			for {
				select {
				case evt := <-a.events:
					batch = append(batch, evt)
				default:
					if len(batch) > 0 {
						a.flush(batch)
					}
					return
				}
			}
		}
	}
}

func (a *Analytics) flush(batch []AnalyticsEvent) {
	if a.db == nil {
		return
	}
	if err := a.db.InsertEvents(batch); err != nil {
		Log.Warnf("analytics flush: %v", err)
	}
}
