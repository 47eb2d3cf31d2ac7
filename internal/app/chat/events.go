/*
Package chat contains the core messaging logic: conversation resolution,
message persistence and summary updates, the presence hub, and delivery
fan-out to live WebSocket sessions.
*/
package chat

import (
	"encoding/json"
	"time"

	"dmchat/internal/pkg/randx"
)

const (
	// TimestampLayout is the ISO-8601 UTC millisecond format stamped on messages.
	TimestampLayout = "2006-01-02T15:04:05.000Z"

	// displayTimeLayout formats the conversation-list summary time.
	displayTimeLayout = "15:04"
)

// NowTimestamp returns the current UTC time in the message timestamp format.
func NowTimestamp() string {
	return time.Now().UTC().Format(TimestampLayout)
}

// nowDisplayTime returns the current UTC time in the summary display format.
func nowDisplayTime() string {
	return time.Now().UTC().Format(displayTimeLayout)
}

// EventType discriminates the server-to-client frames pushed over WebSocket.
type EventType string

const (
	// EventMessageNew carries a persisted message to a participant's sessions.
	EventMessageNew EventType = "message.new"

	// EventPresenceChange announces a user's online/offline transition on the
	// shared presence topic.
	EventPresenceChange EventType = "presence.change"

	// EventConnectionAck confirms a completed WebSocket registration.
	EventConnectionAck EventType = "connection.ack"

	// EventError reports a failed inbound operation back to the session.
	EventError EventType = "error"
)

// Event is the outbound WebSocket frame envelope.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp string    `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// NewEvent builds an Event with a fresh identifier and timestamp.
func NewEvent(eventType EventType, payload any) Event {
	return Event{
		ID:        randx.NewID(),
		Type:      eventType,
		Timestamp: NowTimestamp(),
		Payload:   payload,
	}
}

// marshalEvent serializes an event for the session send queues.
func marshalEvent(eventType EventType, payload any) ([]byte, error) {
	return json.Marshal(NewEvent(eventType, payload))
}

// ErrorPayload is the payload of an EventError frame.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
