package orchestrator

import (
	"sync"
	"time"
)

type EventKind string

const (
	EventCarrierSelected EventKind = "carrier_selected"
	EventBatchEmitted    EventKind = "batch_emitted"
	EventAlertRaised     EventKind = "alert_raised"
)

// Event is one automated decision made during a run.
type Event struct {
	Seq     int            `json:"seq"`
	At      time.Time      `json:"at"`
	Kind    EventKind      `json:"kind"`
	Subject string         `json:"subject"`
	Detail  string         `json:"detail"`
	Data    map[string]any `json:"data,omitempty"`
}

// DecisionLog is an append-only record of a single run's decisions.
type DecisionLog struct {
	mu     sync.Mutex
	events []Event
	now    func() time.Time
}

func newDecisionLog(now func() time.Time) *DecisionLog {
	if now == nil {
		now = time.Now
	}
	return &DecisionLog{now: now}
}

func (l *DecisionLog) Append(kind EventKind, subject, detail string, data map[string]any) Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	ev := Event{
		Seq:     len(l.events) + 1,
		At:      l.now().UTC(),
		Kind:    kind,
		Subject: subject,
		Detail:  detail,
		Data:    data,
	}
	l.events = append(l.events, ev)
	return ev
}

// Events returns a copy of every event in append order.
func (l *DecisionLog) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

func (l *DecisionLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}
