package core

import (
	"context"

	"github.com/hiraku-lab/mentor/pkg/agent"
	"github.com/hiraku-lab/mentor/pkg/agent/tool"
	"github.com/hiraku-lab/mentor/pkg/domain/interfaces"
	"github.com/hiraku-lab/mentor/pkg/domain/model"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// rememberFactTool appends a new fact about the user
type rememberFactTool struct {
	repo   interfaces.Repository
	userID types.UserID
}

func (t *rememberFactTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "remember_fact",
		Description: "Store a new fact about the user, their contacts, or their circumstances. Facts persist across conversations. Do not use this for the current task; use set_task_brief for that.",
		Parameters: map[string]*gollem.Parameter{
			"content": {
				Type:        gollem.TypeString,
				Description: "The fact to remember, as a single self-contained sentence",
				Required:    true,
			},
		},
	}
}

func (t *rememberFactTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	content, _ := args["content"].(string)
	if content == "" {
		return nil, goerr.Wrap(agent.ErrBadInput, "content is required")
	}

	tool.Update(ctx, "Remembering fact...")

	fact := &model.Fact{Content: content}
	if err := t.repo.Fact().Put(ctx, t.userID, fact); err != nil {
		return nil, goerr.Wrap(err, "failed to store fact")
	}

	return map[string]any{
		"fact_id": string(fact.ID),
		"content": fact.Content,
		"refs":    []string{string(fact.ID)},
	}, nil
}

// updateFactTool refines an existing fact in place
type updateFactTool struct {
	repo   interfaces.Repository
	userID types.UserID
}

func (t *updateFactTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "update_fact",
		Description: "Replace the content of an existing fact when new information supersedes it. The newer version wins on conflict.",
		Parameters: map[string]*gollem.Parameter{
			"fact_id": {
				Type:        gollem.TypeString,
				Description: "The ID of the fact to update",
				Required:    true,
			},
			"content": {
				Type:        gollem.TypeString,
				Description: "The corrected fact content",
				Required:    true,
			},
		},
	}
}

func (t *updateFactTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	factID, _ := args["fact_id"].(string)
	content, _ := args["content"].(string)
	if factID == "" || content == "" {
		return nil, goerr.Wrap(agent.ErrBadInput, "fact_id and content are required")
	}

	tool.Update(ctx, "Updating fact...")

	updated, err := t.repo.Fact().Update(ctx, t.userID, model.FactID(factID), content)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update fact", goerr.V("fact_id", factID))
	}

	return map[string]any{
		"fact_id": string(updated.ID),
		"content": updated.Content,
		"refs":    []string{string(updated.ID)},
	}, nil
}
