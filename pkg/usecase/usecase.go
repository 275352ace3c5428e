package usecase

import (
	"context"
	"errors"

	"github.com/hiraku-lab/mentor/pkg/domain/interfaces"
	"github.com/hiraku-lab/mentor/pkg/domain/model"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
	"github.com/hiraku-lab/mentor/pkg/service/docstore"
	"github.com/hiraku-lab/mentor/pkg/service/mailbox"
	slacksvc "github.com/hiraku-lab/mentor/pkg/service/slack"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// Config carries the tunable knobs of the agent runtime
type Config struct {
	// MaxIterations is the reasoning-loop ceiling per run
	MaxIterations int

	// ContextFacts and ContextMemories bound how many retrieved items go
	// into the system prompt
	ContextFacts    int
	ContextMemories int

	// LearnThreshold is the minimum classification confidence required
	// before the observer changes anything
	LearnThreshold float64

	// MaxConcurrentRuns caps agent runs across all conversations
	MaxConcurrentRuns int64

	// DefaultGuidelines seeds version 1 of the guideline document on
	// first contact with a user
	DefaultGuidelines string

	// Provider and Model are recorded in the interaction log
	Provider string
	Model    string
}

// DefaultConfig returns the standard runtime configuration
func DefaultConfig() Config {
	return Config{
		MaxIterations:     10,
		ContextFacts:      5,
		ContextMemories:   5,
		LearnThreshold:    0.7,
		MaxConcurrentRuns: 8,
		DefaultGuidelines: model.DefaultGuidelines,
		Provider:          "gemini",
		Model:             "gemini-2.0-flash",
	}
}

type UseCases struct {
	repo         interfaces.Repository
	llmClient    gollem.LLMClient
	config       Config
	mail         mailbox.Service
	docs         docstore.Service
	slackService slacksvc.Service

	Chat   *ChatUseCase
	Learn  *LearnUseCase
	Briefs *TaskBriefManager

	// Slack is set only when a Slack service is configured
	Slack *SlackUseCase
}

type Option func(*UseCases)

func WithConfig(cfg Config) Option {
	return func(uc *UseCases) {
		uc.config = cfg
	}
}

func WithMailbox(mail mailbox.Service) Option {
	return func(uc *UseCases) {
		uc.mail = mail
	}
}

func WithDocstore(docs docstore.Service) Option {
	return func(uc *UseCases) {
		uc.docs = docs
	}
}

func WithSlackService(svc slacksvc.Service) Option {
	return func(uc *UseCases) {
		uc.slackService = svc
	}
}

func New(repo interfaces.Repository, llmClient gollem.LLMClient, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:      repo,
		llmClient: llmClient,
		config:    DefaultConfig(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Briefs = NewTaskBriefManager(repo)
	uc.Learn = NewLearnUseCase(repo, llmClient, uc.config)
	uc.Chat = NewChatUseCase(repo, llmClient, uc.Briefs, uc.Learn, uc.config, uc.mail, uc.docs)
	if uc.slackService != nil {
		uc.Slack = NewSlackUseCase(uc.Chat, uc.slackService)
	}

	return uc
}

// ensureGuidelines returns the current guideline document, seeding version 1
// from the configured default when no document exists yet. A concurrent seed
// losing the race falls back to reading what the winner wrote.
func ensureGuidelines(ctx context.Context, repo interfaces.Repository, userID types.UserID, seed string) (*model.GuidelineDocument, error) {
	current, err := repo.Guideline().Latest(ctx, userID)
	if err == nil {
		return current, nil
	}
	if !errors.Is(err, types.ErrGuidelineNotFound) {
		return nil, goerr.Wrap(err, "failed to load guidelines", goerr.V("user_id", userID))
	}

	doc, err := repo.Guideline().Commit(ctx, userID, seed, "", 0)
	if err == nil {
		return doc, nil
	}
	if errors.Is(err, types.ErrVersionConflict) {
		return repo.Guideline().Latest(ctx, userID)
	}
	return nil, goerr.Wrap(err, "failed to seed guidelines", goerr.V("user_id", userID))
}
