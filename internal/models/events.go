package models

import (
	"encoding/json"
	"time"
)

// Push event names
const (
	EventOpenSettings = "open_settings"
	EventError        = "error_event"
)

// Event is a message pushed from the backend to listeners
type Event struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// ErrorPayload is the body of an error_event
type ErrorPayload struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}
