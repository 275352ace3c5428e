package model

import (
	"time"

	"github.com/hiraku-lab/mentor/pkg/domain/types"
)

// TaskBrief is the structured description of the user's single active
// multi-step task. At most one brief exists per user; starting a new task
// replaces the old brief entirely rather than merging into it.
type TaskBrief struct {
	UserID    types.UserID
	Title     string
	Brief     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
