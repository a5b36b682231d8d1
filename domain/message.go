package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat entry belonging to exactly one
// conversation.
type Message struct {
	ID     uuid.UUID
	Sender string
	Text   string
	At     time.Time
}
