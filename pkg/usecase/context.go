package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"text/template"

	"github.com/hiraku-lab/mentor/pkg/domain/model"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
	"github.com/hiraku-lab/mentor/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

//go:embed prompt/system.md
var systemPromptTmpl string

var systemPromptTemplate = template.Must(template.New("system").Parse(systemPromptTmpl))

type promptContext struct {
	Tools           string
	Guidelines      string
	TaskBrief       *model.TaskBrief
	Focus           string
	Facts           []*model.Fact
	Memories        []*model.ScoredMemory
	PendingQuestion string
}

// buildSystemPrompt assembles the reasoning context for one run: guidelines,
// retrieved facts and memories, current focus, active task brief, and tool
// descriptions. Retrieval failures degrade to a smaller prompt with a logged
// warning; only a guideline failure aborts, since the guidelines carry the
// learned behavior.
func (uc *ChatUseCase) buildSystemPrompt(ctx context.Context, userID types.UserID, userText, toolsDesc string) (string, error) {
	logger := logging.From(ctx)

	guidelines, err := ensureGuidelines(ctx, uc.repo, userID, uc.config.DefaultGuidelines)
	if err != nil {
		return "", err
	}

	pc := &promptContext{
		Tools:           toolsDesc,
		Guidelines:      guidelines.Content,
		PendingQuestion: uc.learn.TakePendingQuestion(userID),
	}

	if brief, err := uc.repo.TaskBrief().Get(ctx, userID); err != nil {
		logger.Warn("failed to load task brief", "error", err, "user_id", userID)
	} else {
		pc.TaskBrief = brief
	}

	if focus, err := uc.repo.Focus().Get(ctx, userID); err != nil {
		logger.Warn("failed to load focus", "error", err, "user_id", userID)
	} else if focus != nil {
		pc.Focus = focus.Focus
	}

	if facts, err := uc.repo.Fact().Search(ctx, userID, userText, uc.config.ContextFacts); err != nil {
		logger.Warn("fact search failed", "error", err, "user_id", userID)
	} else {
		pc.Facts = facts
	}

	if embedding, err := uc.embed(ctx, userText); err != nil {
		logger.Warn("embedding generation failed, skipping memory retrieval", "error", err)
	} else if memories, err := uc.repo.Memory().FindNearest(ctx, userID, embedding, uc.config.ContextMemories); err != nil {
		logger.Warn("memory retrieval failed", "error", err, "user_id", userID)
	} else {
		pc.Memories = memories
	}

	var buf bytes.Buffer
	if err := systemPromptTemplate.Execute(&buf, pc); err != nil {
		return "", goerr.Wrap(err, "failed to render system prompt")
	}
	return buf.String(), nil
}

// embed converts one text into a fixed-dimension embedding vector
func (uc *ChatUseCase) embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := uc.llmClient.GenerateEmbedding(ctx, model.EmbeddingDimension, []string{text})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embedding")
	}
	if len(embeddings) == 0 || len(embeddings[0]) != model.EmbeddingDimension {
		return nil, goerr.Wrap(types.ErrInvalidEmbedding, "embedding result has unexpected shape",
			goerr.V("count", len(embeddings)))
	}

	vec := make([]float32, len(embeddings[0]))
	for i, v := range embeddings[0] {
		vec[i] = float32(v)
	}
	return vec, nil
}
