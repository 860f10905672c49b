package events

import "time"

const (
	PresenceOnline  = "PRESENCE_ONLINE"
	PresenceOffline = "PRESENCE_OFFLINE"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event.
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewPresenceEvent builds the online/offline transition event the hub
// emits when an identity gains its first or loses its last connection.
func NewPresenceEvent(eventType, identity string) BaseEvent {
	return BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"identity": identity,
		},
		OccurredAt: time.Now(),
	}
}
