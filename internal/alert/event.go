package alert

import "time"

// Event is the envelope published to the message bus for every alert
type Event struct {
	// EventID is the alert's ULID
	EventID string `json:"event_id"`
	// EventType is "alert.<kind>"
	EventType string `json:"event_type"`
	// Timestamp is when the alert was raised
	Timestamp time.Time `json:"timestamp"`
	// Data is the alert itself
	Data Alert `json:"data"`
}

// NewEvent wraps an alert in an event envelope
func NewEvent(a Alert) Event {
	return Event{
		EventID:   a.ID,
		EventType: "alert." + string(a.Kind),
		Timestamp: a.Timestamp,
		Data:      a,
	}
}
