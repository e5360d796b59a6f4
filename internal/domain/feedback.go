package domain

import "time"

// Feedback is a single submitted feedback record.
type Feedback struct {
	ID        string
	Name      string
	Email     string
	Message   string
	Rating    int
	CreatedAt time.Time
}
