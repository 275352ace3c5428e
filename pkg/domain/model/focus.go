package model

import (
	"time"

	"github.com/hiraku-lab/mentor/pkg/domain/types"
)

// Focus is the one-line "what we are working on right now" tracker.
// At most one row per user, overwritten in place, never versioned. It gives
// context to ambiguous messages like "continue" or "let's resume".
type Focus struct {
	UserID    types.UserID
	Focus     string
	UpdatedAt time.Time
}
