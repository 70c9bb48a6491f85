// ============================================================================
// Event Log - structured record of every agent transition
// ============================================================================
//
// Package: internal/eventlog
// Purpose:
// 1. Record every replanning-loop transition as a structured event
// 2. Hand the event stream to external consumers (statistics, visualization)
// 3. Optionally persist the stream as append-only JSON lines
//
// The recorder is the in-process artifact: the agent appends, consumers take
// snapshots. The file sink is owned by the CLI layer, not the core loop; the
// engine itself never does file I/O.
//
// ============================================================================

package eventlog

import (
	"sync"

	"github.com/google/uuid"

	"github.com/courierlab/gridcourier/pkg/types"
)

// Recorder collects events in order of emission.
type Recorder struct {
	mu     sync.Mutex
	events []types.Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record stamps the event with a fresh ID (when unset) and appends it.
// The stamped event is returned for immediate consumers.
func (r *Recorder) Record(event types.Event) types.Event {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	return event
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []types.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// CountTrigger returns how many events carry the given trigger.
func (r *Recorder) CountTrigger(trigger types.TriggerKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Trigger == trigger {
			n++
		}
	}
	return n
}
