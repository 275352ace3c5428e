package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hiraku-lab/mentor/pkg/agent"
	"github.com/hiraku-lab/mentor/pkg/agent/tool/core"
	"github.com/hiraku-lab/mentor/pkg/domain/interfaces"
	"github.com/hiraku-lab/mentor/pkg/domain/model"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
	"github.com/hiraku-lab/mentor/pkg/service/docstore"
	"github.com/hiraku-lab/mentor/pkg/service/mailbox"
	"github.com/hiraku-lab/mentor/pkg/utils/async"
	"github.com/hiraku-lab/mentor/pkg/utils/errutil"
	"github.com/hiraku-lab/mentor/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"golang.org/x/sync/semaphore"
)

const (
	answerBudgetExhausted = "I couldn't finish working through that within my step budget. Could you break the request into smaller pieces?"
	answerFatalError      = "I couldn't process that right now. Please try again in a moment."

	correctionPrompt = "Your last response did not follow the required format. Respond again with either an ACTION line followed by an ARGS JSON object, or a FINAL_ANSWER line, exactly as instructed. Do not include anything else."
)

// ChatUseCase runs the reasoning loop for incoming user messages
type ChatUseCase struct {
	repo      interfaces.Repository
	llmClient gollem.LLMClient
	briefs    *TaskBriefManager
	learn     *LearnUseCase
	config    Config
	mail      mailbox.Service
	docs      docstore.Service

	sem *semaphore.Weighted

	slotsMu sync.Mutex
	slots   map[types.ConversationID]*convSlot
}

// convSlot serializes runs within one conversation. cancel aborts the run
// currently holding runMu so a newer message can take over.
type convSlot struct {
	runMu sync.Mutex

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewChatUseCase(repo interfaces.Repository, llmClient gollem.LLMClient, briefs *TaskBriefManager, learn *LearnUseCase, cfg Config, mail mailbox.Service, docs docstore.Service) *ChatUseCase {
	return &ChatUseCase{
		repo:      repo,
		llmClient: llmClient,
		briefs:    briefs,
		learn:     learn,
		config:    cfg,
		mail:      mail,
		docs:      docs,
		sem:       semaphore.NewWeighted(cfg.MaxConcurrentRuns),
		slots:     make(map[types.ConversationID]*convSlot),
	}
}

// ChatRequest is one incoming user message
type ChatRequest struct {
	UserID         types.UserID
	ConversationID types.ConversationID
	Text           string

	// SenderName and SenderTZ identify the sender to the model when the
	// gateway knows them; both are optional
	SenderName string
	SenderTZ   string
}

// ChatResult is the outcome of one run. Answer is what should be shown to
// the user; it is empty only for cancelled runs.
type ChatResult struct {
	State  types.TerminalState
	Answer string
}

func (uc *ChatUseCase) slot(convID types.ConversationID) *convSlot {
	uc.slotsMu.Lock()
	defer uc.slotsMu.Unlock()

	s, exists := uc.slots[convID]
	if !exists {
		s = &convSlot{}
		uc.slots[convID] = s
	}
	return s
}

// HandleMessage processes one user message through the reasoning loop until
// a terminal state. A newer message for the same conversation cancels any
// in-flight run; the abandoned run keeps its interaction log rows but never
// persists a final answer.
func (uc *ChatUseCase) HandleMessage(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	if err := req.UserID.Validate(); err != nil {
		return nil, err
	}
	if req.ConversationID == "" {
		req.ConversationID = types.NewConversationID()
	}

	runID := types.NewRunID()
	ctx = logging.With(ctx, logging.From(ctx).With(
		"run_id", runID.String(),
		"conversation_id", req.ConversationID.String(),
		"user_id", req.UserID.String(),
	))
	logger := logging.From(ctx)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	slot := uc.slot(req.ConversationID)
	slot.mu.Lock()
	if slot.cancel != nil {
		slot.cancel()
	}
	slot.cancel = cancel
	slot.mu.Unlock()

	// Wait for the cancelled run to unwind before starting
	slot.runMu.Lock()
	defer slot.runMu.Unlock()

	if runCtx.Err() != nil {
		logger.Info("run superseded before start")
		return &ChatResult{State: types.TerminalCancelled}, nil
	}

	if err := uc.sem.Acquire(runCtx, 1); err != nil {
		return &ChatResult{State: types.TerminalCancelled}, nil
	}
	defer uc.sem.Release(1)

	return uc.run(runCtx, req)
}

func (uc *ChatUseCase) run(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	logger := logging.From(ctx)

	registry := agent.NewRegistry(core.New(uc.repo, req.UserID, uc.briefs, uc.mail, uc.docs, uc.learn)...)

	systemPrompt, err := uc.buildSystemPrompt(ctx, req.UserID, req.Text, registry.Describe())
	if err != nil {
		errutil.Handle(ctx, err, "failed to build reasoning context")
		return &ChatResult{State: types.TerminalFatalError, Answer: answerFatalError}, nil
	}

	briefText := ""
	if brief, err := uc.repo.TaskBrief().Get(ctx, req.UserID); err == nil && brief != nil {
		briefText = brief.Title + ": " + brief.Brief
	}

	session, err := uc.llmClient.NewSession(ctx)
	if err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to create model session"), "failed to create model session")
		return &ChatResult{State: types.TerminalFatalError, Answer: answerFatalError}, nil
	}

	header := "# User message"
	if req.SenderName != "" {
		header += " (from " + req.SenderName
		if req.SenderTZ != "" {
			header += ", timezone " + req.SenderTZ
		}
		header += ")"
	}
	input := systemPrompt + "\n\n" + header + "\n\n" + req.Text
	pendingFocus := ""
	correctionUsed := false

	for iteration := 0; iteration < uc.config.MaxIterations; {
		resp, genErr := session.GenerateContent(ctx, gollem.Text(input))
		raw := ""
		if resp != nil {
			raw = strings.Join(resp.Texts, "\n")
		}

		uc.recordInteraction(ctx, req, iteration, systemPrompt, input, raw, genErr, briefText)

		if genErr != nil {
			if ctx.Err() != nil {
				logger.Info("run cancelled", "iteration", iteration)
				return &ChatResult{State: types.TerminalCancelled}, nil
			}
			errutil.Handle(ctx, goerr.Wrap(genErr, "model call failed", goerr.V("iteration", iteration)), "model call failed")
			return &ChatResult{State: types.TerminalFatalError, Answer: answerFatalError}, nil
		}

		decision := agent.ParseDecision(raw)
		if decision.Focus != "" {
			pendingFocus = decision.Focus
		}

		switch decision.Kind {
		case agent.DecisionMalformed:
			if correctionUsed {
				logger.Warn("second malformed response, ending run", "parse_error", decision.ParseError)
				return &ChatResult{State: types.TerminalMaxIterations, Answer: answerBudgetExhausted}, nil
			}
			correctionUsed = true
			input = correctionPrompt
			// A correction re-prompt does not consume an iteration

		case agent.DecisionFinalAnswer:
			uc.finalize(ctx, req, decision.Answer, pendingFocus)
			return &ChatResult{State: types.TerminalSuccess, Answer: decision.Answer}, nil

		case agent.DecisionAction:
			obs, toolErr, execErr := registry.Execute(ctx, decision.ToolName, decision.ToolArgs)
			if execErr != nil {
				if ctx.Err() != nil {
					logger.Info("run cancelled during tool execution", "tool", decision.ToolName)
					return &ChatResult{State: types.TerminalCancelled}, nil
				}
				errutil.Handle(ctx, execErr, "tool dispatch failed")
				return &ChatResult{State: types.TerminalFatalError, Answer: answerFatalError}, nil
			}
			if toolErr != nil {
				logger.Info("tool returned error", "tool", decision.ToolName, "kind", toolErr.Kind, "message", toolErr.Message)
				input = fmt.Sprintf("OBSERVATION: ERROR[%s]: %s", toolErr.Kind, toolErr.Message)
			} else {
				input = "OBSERVATION: " + obs.Text
			}
			iteration++
		}
	}

	logger.Warn("iteration budget exhausted without final answer")
	return &ChatResult{State: types.TerminalMaxIterations, Answer: answerBudgetExhausted}, nil
}

// finalize runs the success path: persist the exchange to memory, update the
// focus tracker, and hand the exchange to the learning observer. All of it
// is best effort; the answer is already decided.
func (uc *ChatUseCase) finalize(ctx context.Context, req *ChatRequest, answer, focus string) {
	logger := logging.From(ctx)

	priorReply := ""
	if recent, err := uc.repo.Memory().ListRecent(ctx, req.UserID, 10); err != nil {
		logger.Warn("failed to load recent memories", "error", err)
	} else {
		for _, entry := range recent {
			if entry.Role == types.RoleAssistant {
				priorReply = entry.Content
				break
			}
		}
	}

	uc.persistExchange(ctx, req.UserID, req.Text, answer)

	if focus != "" {
		if err := uc.repo.Focus().Put(ctx, &model.Focus{UserID: req.UserID, Focus: focus}); err != nil {
			logger.Warn("failed to update focus", "error", err)
		}
	}

	exchange := &Exchange{
		UserID:              req.UserID,
		UserMessage:         req.Text,
		PriorAssistantReply: priorReply,
		AssistantReply:      answer,
	}
	async.Dispatch(ctx, func(ctx context.Context) error {
		return uc.learn.Observe(ctx, exchange)
	})
}

// persistExchange appends both sides of the exchange to vector memory. An
// embedding failure drops the entries with a warning rather than failing
// the run; memory is a retrieval aid, not a ledger.
func (uc *ChatUseCase) persistExchange(ctx context.Context, userID types.UserID, userText, answer string) {
	logger := logging.From(ctx)

	embeddings, err := uc.llmClient.GenerateEmbedding(ctx, model.EmbeddingDimension, []string{userText, answer})
	if err != nil || len(embeddings) != 2 {
		logger.Warn("failed to embed exchange, skipping memory persistence", "error", err)
		return
	}

	now := time.Now().UTC()
	entries := []*model.MemoryEntry{
		{Role: types.RoleUser, Content: userText},
		{Role: types.RoleAssistant, Content: answer},
	}
	for i, entry := range entries {
		entry.ID = model.NewMemoryEntryID()
		entry.UserID = userID
		entry.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		entry.Embedding = make([]float32, len(embeddings[i]))
		for j, v := range embeddings[i] {
			entry.Embedding[j] = float32(v)
		}
		if err := uc.repo.Memory().Put(ctx, entry); err != nil {
			logger.Warn("failed to persist memory entry", "error", err, "role", entry.Role)
		}
	}
}

// recordInteraction appends one audit row per model call. Failures are
// logged and swallowed; the audit trail never blocks the conversation.
func (uc *ChatUseCase) recordInteraction(ctx context.Context, req *ChatRequest, iteration int, systemPrompt, input, response string, genErr error, briefText string) {
	log := &model.InteractionLog{
		ID:                  model.NewInteractionID(),
		ConversationID:      req.ConversationID,
		UserID:              req.UserID,
		Iteration:           iteration,
		Provider:            uc.config.Provider,
		Model:               uc.config.Model,
		SystemPrompt:        systemPrompt,
		Messages:            []model.PromptMessage{{Role: types.RoleUser, Content: input}},
		Response:            response,
		OriginalUserMessage: req.Text,
		CurrentTaskBrief:    briefText,
		CreatedAt:           time.Now().UTC(),
	}
	if genErr != nil {
		log.Error = genErr.Error()
	}

	// Write with a detached context so a cancelled run still leaves its rows
	if err := uc.repo.Interaction().Put(context.WithoutCancel(ctx), log); err != nil {
		logging.From(ctx).Warn("failed to record interaction", "error", err, "iteration", iteration)
	}
}
