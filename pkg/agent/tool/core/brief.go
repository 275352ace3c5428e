package core

import (
	"context"

	"github.com/hiraku-lab/mentor/pkg/agent"
	"github.com/hiraku-lab/mentor/pkg/agent/tool"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// setTaskBriefTool records the user's current multi-step task
type setTaskBriefTool struct {
	briefs BriefManager
	userID types.UserID
}

func (t *setTaskBriefTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "set_task_brief",
		Description: "Record the task the user is currently working on. Call this when the user starts a multi-step task. Setting a new brief replaces the old one entirely; there is only ever one active task.",
		Parameters: map[string]*gollem.Parameter{
			"title": {
				Type:        gollem.TypeString,
				Description: "Short name of the task",
				Required:    true,
			},
			"brief": {
				Type:        gollem.TypeString,
				Description: "What the task involves, its goal, and any known constraints",
				Required:    true,
			},
		},
	}
}

func (t *setTaskBriefTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	title, _ := args["title"].(string)
	brief, _ := args["brief"].(string)
	if title == "" || brief == "" {
		return nil, goerr.Wrap(agent.ErrBadInput, "title and brief are required")
	}

	tool.Update(ctx, "Setting task brief: "+title)

	if err := t.briefs.Set(ctx, t.userID, title, brief); err != nil {
		return nil, goerr.Wrap(err, "failed to set task brief")
	}

	return map[string]any{"title": title}, nil
}

// clearTaskBriefTool removes the active task brief
type clearTaskBriefTool struct {
	briefs BriefManager
	userID types.UserID
}

func (t *clearTaskBriefTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "clear_task_brief",
		Description: "Clear the active task brief when the task is finished or abandoned.",
		Parameters:  map[string]*gollem.Parameter{},
	}
}

func (t *clearTaskBriefTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	tool.Update(ctx, "Clearing task brief...")

	if err := t.briefs.Clear(ctx, t.userID); err != nil {
		return nil, goerr.Wrap(err, "failed to clear task brief")
	}
	return map[string]any{"cleared": true}, nil
}
