package journal

import (
	"time"

	"github.com/google/uuid"
)

// Entry is read-only here; the board only groups and filters entries.
type Entry struct {
	UUID      uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Mood      *int      `json:"mood,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MaxMood is the top of the 1-5 happiness scale.
const MaxMood = 5
