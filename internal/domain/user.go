package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the read-only view of a learner owned by the account subsystem.
// The scheduler only needs it to address reminders.
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Text is the read-only view of a classical text owned by the content
// subsystem.
type Text struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
