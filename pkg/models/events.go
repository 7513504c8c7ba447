package models

import "time"

// EventType identifies the kind of connection transition an event records.
type EventType string

const (
	EventConnected     EventType = "connected"
	EventDisconnected  EventType = "disconnected"
	EventReconnected   EventType = "reconnected"
	EventSignalChanged EventType = "signal_changed"
	EventError         EventType = "error"
)

// ConnectionEvent records one significant connection transition. Payload
// fields are populated per event type: Network for connected and
// signal_changed, From/To for reconnected, Old/NewStrength for
// signal_changed, Error for error events.
type ConnectionEvent struct {
	Type        EventType      `json:"type"`
	Timestamp   time.Time      `json:"timestamp"`
	Duration    *time.Duration `json:"duration,omitempty"` // session length, disconnected events only
	Network     *NetworkInfo   `json:"network,omitempty"`
	From        *NetworkInfo   `json:"from,omitempty"`
	To          *NetworkInfo   `json:"to,omitempty"`
	OldStrength *int           `json:"old_strength,omitempty"`
	NewStrength *int           `json:"new_strength,omitempty"`
	Error       *NetworkError  `json:"error,omitempty"`
}
