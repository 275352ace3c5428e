package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// FactID is a UUID-based identifier for Fact
type FactID string

// NewFactID generates a new UUID v4 FactID
func NewFactID() FactID {
	return FactID(uuid.New().String())
}

// Fact is an atomic, timestamped assertion about the user (people, events,
// circumstances). Facts are never deleted on conflict; when two facts
// contradict each other the one with the later UpdatedAt wins at read time,
// decided by the caller, not the store.
type Fact struct {
	ID        FactID
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MatchScore returns the number of query tokens found in the fact content,
// case-insensitive. Zero means no match. Deterministic so search results are
// stable across backends.
func (f *Fact) MatchScore(query string) int {
	content := strings.ToLower(f.Content)
	score := 0
	for _, token := range strings.Fields(strings.ToLower(query)) {
		if strings.Contains(content, token) {
			score++
		}
	}
	return score
}
