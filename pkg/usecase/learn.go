package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hiraku-lab/mentor/pkg/domain/interfaces"
	"github.com/hiraku-lab/mentor/pkg/domain/model"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
	"github.com/hiraku-lab/mentor/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/sergi/go-diff/diffmatchpatch"
)

const guidelineCommitAttempts = 3

// LearnUseCase observes completed exchanges and document edits, classifies
// the feedback they carry, and folds durable lessons into the guideline
// document. It prefers doing nothing over guessing: low-confidence or
// neutral signals change nothing.
type LearnUseCase struct {
	repo      interfaces.Repository
	llmClient gollem.LLMClient
	config    Config

	qMu      sync.Mutex
	pendingQ map[types.UserID]string
}

func NewLearnUseCase(repo interfaces.Repository, llmClient gollem.LLMClient, cfg Config) *LearnUseCase {
	return &LearnUseCase{
		repo:      repo,
		llmClient: llmClient,
		config:    cfg,
		pendingQ:  make(map[types.UserID]string),
	}
}

// Exchange is one completed turn handed to the observer
type Exchange struct {
	UserID types.UserID

	// UserMessage is the message that started the turn; it may carry
	// feedback about PriorAssistantReply
	UserMessage string

	// PriorAssistantReply is the reply the user message reacts to,
	// empty on the first turn of a conversation
	PriorAssistantReply string

	// AssistantReply is the answer produced this turn
	AssistantReply string
}

// classification is the JSON shape the feedback classifier returns
type classification struct {
	Signal             types.FeedbackSignal `json:"signal"`
	Confidence         float64              `json:"confidence"`
	Rule               string               `json:"rule"`
	Facts              []string             `json:"facts"`
	ImprovementNote    string               `json:"improvement_note"`
	ClarifyingQuestion string               `json:"clarifying_question"`
}

var classificationSchema = &gollem.Parameter{
	Title:       "feedback_classification",
	Description: "Classification of user feedback observed in one exchange",
	Type:        gollem.TypeObject,
	Properties: map[string]*gollem.Parameter{
		"signal": {
			Type:        gollem.TypeString,
			Description: `One of "strongly_positive", "strongly_negative", or "neutral". Routine acknowledgements like "ok" or "thanks" are neutral.`,
			Required:    true,
		},
		"confidence": {
			Type:        gollem.TypeNumber,
			Description: "How certain the classification is, 0.0 to 1.0",
			Required:    true,
		},
		"rule": {
			Type:        gollem.TypeString,
			Description: "If the feedback implies a durable behavioral rule, one imperative sentence stating it. Empty string otherwise.",
			Required:    true,
		},
		"facts": {
			Type:        gollem.TypeArray,
			Description: "New durable facts about the user or their circumstances revealed in the exchange, each a self-contained sentence",
			Items: &gollem.Parameter{
				Type: gollem.TypeString,
			},
		},
		"improvement_note": {
			Type:        gollem.TypeString,
			Description: "An idea for a capability or tool the assistant lacks, surfaced by this exchange. Empty string if none.",
			Required:    true,
		},
		"clarifying_question": {
			Type:        gollem.TypeString,
			Description: "If the signal is strong but the intended rule is ambiguous, one question to ask the user instead of guessing. Empty string otherwise.",
			Required:    true,
		},
	},
}

// Observe classifies the feedback in one completed exchange and applies
// whatever it implies: new facts, a guideline update, an improvement note,
// or a clarifying question held for the next turn.
func (uc *LearnUseCase) Observe(ctx context.Context, ex *Exchange) error {
	prior := ex.PriorAssistantReply
	if prior == "" {
		prior = "(no previous reply; this is the first turn)"
	}

	prompt := fmt.Sprintf(`You observe one exchange between a user and their personal assistant.
Decide whether the user's message carries feedback about how the assistant behaves, and extract anything worth keeping.

Assistant's previous reply:
%s

User's message:
%s

Assistant's new reply:
%s

Rules for classification:
- "strongly_positive" or "strongly_negative" only for clear, deliberate feedback about the assistant's behavior. Everything else, including routine thanks, is "neutral".
- A rule must be durable and general, not tied to this one task.
- If the signal is strong but what the user actually wants is ambiguous, leave the rule empty and provide a clarifying_question instead.`,
		prior, ex.UserMessage, ex.AssistantReply)

	cl, err := uc.classify(ctx, prompt)
	if err != nil {
		return err
	}
	return uc.apply(ctx, ex.UserID, cl)
}

// ObserveEdit analyzes a user's edit of an assistant-produced document.
// Trivial edits (whitespace only) are ignored; substantive ones are treated
// as implicit corrective feedback.
func (uc *LearnUseCase) ObserveEdit(ctx context.Context, userID types.UserID, original, edited string) error {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(original, edited, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var sb strings.Builder
	changed := 0
	for _, d := range diffs {
		text := strings.TrimSpace(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			changed += len(text)
			if text != "" {
				fmt.Fprintf(&sb, "[removed] %s\n", text)
			}
		case diffmatchpatch.DiffInsert:
			changed += len(text)
			if text != "" {
				fmt.Fprintf(&sb, "[added] %s\n", text)
			}
		}
	}
	if changed == 0 {
		logging.From(ctx).Debug("edit is trivial, ignoring", "user_id", userID)
		return nil
	}

	prompt := fmt.Sprintf(`The user edited a document the assistant wrote for them. The edit is implicit corrective feedback: what they changed is what the assistant got wrong.

Edit summary:
%s

Original document:
%s

Rules for classification:
- A substantive edit is usually "strongly_negative" feedback about the specific aspect that was changed.
- A rule must generalize beyond this one document (tone, structure, length, terminology).
- If the edit's intent is ambiguous, leave the rule empty and provide a clarifying_question instead.`,
		sb.String(), original)

	cl, err := uc.classify(ctx, prompt)
	if err != nil {
		return err
	}
	return uc.apply(ctx, userID, cl)
}

// TakePendingQuestion returns and clears the clarifying question held for
// the user, if any
func (uc *LearnUseCase) TakePendingQuestion(userID types.UserID) string {
	uc.qMu.Lock()
	defer uc.qMu.Unlock()

	q := uc.pendingQ[userID]
	delete(uc.pendingQ, userID)
	return q
}

func (uc *LearnUseCase) classify(ctx context.Context, prompt string) (*classification, error) {
	session, err := uc.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(classificationSchema),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create classification session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return nil, goerr.Wrap(err, "feedback classification failed")
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.New("feedback classification returned empty result")
	}

	var cl classification
	if err := json.Unmarshal([]byte(resp.Texts[0]), &cl); err != nil {
		return nil, goerr.Wrap(err, "failed to parse classification JSON",
			goerr.V("response", resp.Texts[0]))
	}
	return &cl, nil
}

func (uc *LearnUseCase) apply(ctx context.Context, userID types.UserID, cl *classification) error {
	logger := logging.From(ctx)

	for _, content := range cl.Facts {
		if content == "" {
			continue
		}
		if err := uc.repo.Fact().Put(ctx, userID, &model.Fact{Content: content}); err != nil {
			logger.Warn("failed to store extracted fact", "error", err)
		}
	}

	if err := cl.Signal.Validate(); err != nil {
		logger.Warn("classifier returned unknown signal, ignoring", "signal", cl.Signal)
		return nil
	}
	if !cl.Signal.IsStrong() || cl.Confidence < uc.config.LearnThreshold {
		logger.Debug("no guideline update",
			"signal", cl.Signal, "confidence", cl.Confidence, "threshold", uc.config.LearnThreshold)
		return nil
	}

	if cl.Rule == "" && cl.ClarifyingQuestion != "" {
		uc.qMu.Lock()
		uc.pendingQ[userID] = cl.ClarifyingQuestion
		uc.qMu.Unlock()
		logger.Info("holding clarifying question for next turn", "user_id", userID)
		return nil
	}

	if cl.Rule == "" && cl.ImprovementNote == "" {
		return nil
	}

	return uc.updateGuidelines(ctx, userID, cl)
}

// guidelineRewrite is the JSON shape the rewrite session returns
type guidelineRewrite struct {
	Content string `json:"content"`
	Diff    string `json:"diff"`
}

var rewriteSchema = &gollem.Parameter{
	Title:       "guideline_rewrite",
	Description: "The full updated guideline document and a summary of the change",
	Type:        gollem.TypeObject,
	Properties: map[string]*gollem.Parameter{
		"content": {
			Type:        gollem.TypeString,
			Description: "The complete updated document, preserving the existing section structure",
			Required:    true,
		},
		"diff": {
			Type:        gollem.TypeString,
			Description: "One or two sentences describing only what changed and why",
			Required:    true,
		},
	},
}

// updateGuidelines rewrites the document to incorporate the rule and
// commits it with optimistic retries. On repeated conflicts the update is
// dropped with a warning; the observer never blocks or overwrites blindly.
func (uc *LearnUseCase) updateGuidelines(ctx context.Context, userID types.UserID, cl *classification) error {
	logger := logging.From(ctx)

	for attempt := 0; attempt < guidelineCommitAttempts; attempt++ {
		current, err := ensureGuidelines(ctx, uc.repo, userID, uc.config.DefaultGuidelines)
		if err != nil {
			return err
		}

		content := current.Content
		diff := ""
		if cl.Rule != "" {
			rewrite, err := uc.rewrite(ctx, content, cl.Rule, cl.Signal)
			if err != nil {
				return err
			}
			content = rewrite.Content
			diff = rewrite.Diff
		}
		if cl.ImprovementNote != "" {
			content = appendImprovementNote(content, cl.ImprovementNote)
			if diff == "" {
				diff = "Added improvement note: " + cl.ImprovementNote
			}
		}
		if content == current.Content {
			return nil
		}

		doc, err := uc.repo.Guideline().Commit(ctx, userID, content, diff, current.Version)
		if err == nil {
			logger.Info("guidelines updated",
				"user_id", userID, "version", doc.Version, "diff", diff)
			return nil
		}
		if !errors.Is(err, types.ErrVersionConflict) {
			return goerr.Wrap(err, "failed to commit guideline update", goerr.V("user_id", userID))
		}
		logger.Debug("guideline version conflict, retrying", "attempt", attempt)
	}

	logger.Warn("dropping guideline update after repeated version conflicts", "user_id", userID)
	return nil
}

func (uc *LearnUseCase) rewrite(ctx context.Context, current, rule string, signal types.FeedbackSignal) (*guidelineRewrite, error) {
	session, err := uc.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(rewriteSchema),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create rewrite session")
	}

	prompt := fmt.Sprintf(`Update the assistant's guideline document to incorporate a new lesson.

New lesson (from %s feedback):
%s

Current document:
%s

Rules:
- Return the COMPLETE updated document.
- If the lesson contradicts an existing rule, replace that rule; never keep both.
- New rules learned from feedback belong under "## Patterns Learned".
- Keep every section heading; do not reorganize the document.
- Change as little text as possible.`,
		signal, rule, current)

	resp, err := session.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return nil, goerr.Wrap(err, "guideline rewrite failed")
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.New("guideline rewrite returned empty result")
	}

	var rewrite guidelineRewrite
	if err := json.Unmarshal([]byte(resp.Texts[0]), &rewrite); err != nil {
		return nil, goerr.Wrap(err, "failed to parse rewrite JSON", goerr.V("response", resp.Texts[0]))
	}
	if rewrite.Content == "" {
		return nil, goerr.New("guideline rewrite produced empty document")
	}
	return &rewrite, nil
}

const improvementNotesHeading = "## Improvement Notes"

// appendImprovementNote adds a bullet under the improvement-notes section,
// creating the section when the document lacks one
func appendImprovementNote(content, note string) string {
	bullet := "- " + note

	idx := strings.Index(content, improvementNotesHeading)
	if idx < 0 {
		return strings.TrimRight(content, "\n") + "\n\n" + improvementNotesHeading + "\n" + bullet + "\n"
	}

	// Insert at the end of the section: before the next heading or at EOF
	rest := content[idx+len(improvementNotesHeading):]
	next := strings.Index(rest, "\n## ")
	if next < 0 {
		return strings.TrimRight(content, "\n") + "\n" + bullet + "\n"
	}
	insertAt := idx + len(improvementNotesHeading) + next
	return strings.TrimRight(content[:insertAt], "\n") + "\n" + bullet + "\n" + content[insertAt+1:]
}
