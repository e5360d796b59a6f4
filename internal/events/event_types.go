package events

import (
	"time"

	"github.com/abhinav/feedback-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered  EventType = "user_registered"
	EventFeedbackCreated EventType = "feedback_created"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	UserID   string      `json:"user_id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// FeedbackCreatedPayload payload.
type FeedbackCreatedPayload struct {
	FeedbackID     string `json:"feedback_id"`
	Rating         int    `json:"rating"`
	MessagePreview string `json:"message_preview"`
}
