package models

import "time"

// Event types written to the connection log.
const (
	EventConnect          = "CONNECT"
	EventConnectFailed    = "CONNECT_FAILED"
	EventValidationFailed = "VALIDATION_FAILED"
	EventMount            = "MOUNT"
	EventUnmount          = "UNMOUNT"
	EventPollError        = "POLL_ERROR"
)

// ConnectionEvent is a single log entry.
type ConnectionEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	OwnerID     int       `json:"owner_id"`
	Type        string    `json:"type"`
	ChannelID   string    `json:"channel_id,omitempty"`
	SessionID   string    `json:"session_id,omitempty"`
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
