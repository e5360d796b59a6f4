package dto

import (
	"strings"
	"time"

	"github.com/abhinav/feedback-service/internal/domain"
)

// FeedbackRequest payload for submitting feedback.
type FeedbackRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Rating  int    `json:"rating"`
}

// Validate returns per-field validation messages, empty when the payload is
// acceptable.
func (r FeedbackRequest) Validate() map[string]any {
	errs := map[string]any{}
	if strings.TrimSpace(r.Name) == "" {
		errs["name"] = "name is required"
	}
	if strings.TrimSpace(r.Email) == "" {
		errs["email"] = "email is required"
	} else if !strings.Contains(r.Email, "@") {
		errs["email"] = "invalid email format"
	}
	if strings.TrimSpace(r.Message) == "" {
		errs["message"] = "message is required"
	} else if len(r.Message) < 5 {
		errs["message"] = "message must be at least 5 characters long"
	}
	if r.Rating < 1 || r.Rating > 5 {
		errs["rating"] = "rating must be between 1 and 5"
	}
	return errs
}

// FeedbackResponse is the outward shape of a feedback record.
type FeedbackResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// NewFeedbackResponse maps a domain feedback record to its response shape.
func NewFeedbackResponse(feedback *domain.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:        feedback.ID,
		Name:      feedback.Name,
		Email:     feedback.Email,
		Message:   feedback.Message,
		Rating:    feedback.Rating,
		CreatedAt: feedback.CreatedAt,
	}
}
