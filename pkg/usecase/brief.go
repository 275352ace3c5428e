package usecase

import (
	"context"
	"time"

	"github.com/hiraku-lab/mentor/pkg/domain/interfaces"
	"github.com/hiraku-lab/mentor/pkg/domain/model"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// TaskBriefManager maintains the user's single active task brief. Setting a
// brief replaces the previous one wholesale; briefs are never merged. A user
// switching topics therefore always gets a clean slate.
type TaskBriefManager struct {
	repo interfaces.Repository
}

func NewTaskBriefManager(repo interfaces.Repository) *TaskBriefManager {
	return &TaskBriefManager{repo: repo}
}

// Set upserts the active brief for the user
func (m *TaskBriefManager) Set(ctx context.Context, userID types.UserID, title, brief string) error {
	if err := userID.Validate(); err != nil {
		return err
	}
	if title == "" || brief == "" {
		return goerr.New("title and brief are required", goerr.V("user_id", userID))
	}

	b := &model.TaskBrief{
		UserID:    userID,
		Title:     title,
		Brief:     brief,
		UpdatedAt: time.Now().UTC(),
	}
	if err := m.repo.TaskBrief().Put(ctx, b); err != nil {
		return goerr.Wrap(err, "failed to store task brief", goerr.V("user_id", userID))
	}
	return nil
}

// Get returns the active brief, or nil when no task is in progress
func (m *TaskBriefManager) Get(ctx context.Context, userID types.UserID) (*model.TaskBrief, error) {
	brief, err := m.repo.TaskBrief().Get(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load task brief", goerr.V("user_id", userID))
	}
	return brief, nil
}

// Clear removes the active brief. Clearing when none is active is a no-op.
func (m *TaskBriefManager) Clear(ctx context.Context, userID types.UserID) error {
	if err := m.repo.TaskBrief().Clear(ctx, userID); err != nil {
		return goerr.Wrap(err, "failed to clear task brief", goerr.V("user_id", userID))
	}
	return nil
}
