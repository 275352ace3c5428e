package config

import (
	"log/slog"

	"github.com/hiraku-lab/mentor/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Agent holds CLI flags for the reasoning-loop runtime
type Agent struct {
	maxIterations     int
	contextFacts      int
	contextMemories   int
	learnThreshold    float64
	maxConcurrentRuns int
	model             string
}

func (x *Agent) Flags() []cli.Flag {
	defaults := usecase.DefaultConfig()
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "agent-max-iterations",
			Usage:       "Maximum reasoning iterations per run",
			Category:    "Agent",
			Value:       defaults.MaxIterations,
			Sources:     cli.EnvVars("MENTOR_AGENT_MAX_ITERATIONS"),
			Destination: &x.maxIterations,
		},
		&cli.IntFlag{
			Name:        "agent-context-facts",
			Usage:       "Number of retrieved facts included in the prompt",
			Category:    "Agent",
			Value:       defaults.ContextFacts,
			Sources:     cli.EnvVars("MENTOR_AGENT_CONTEXT_FACTS"),
			Destination: &x.contextFacts,
		},
		&cli.IntFlag{
			Name:        "agent-context-memories",
			Usage:       "Number of retrieved memories included in the prompt",
			Category:    "Agent",
			Value:       defaults.ContextMemories,
			Sources:     cli.EnvVars("MENTOR_AGENT_CONTEXT_MEMORIES"),
			Destination: &x.contextMemories,
		},
		&cli.FloatFlag{
			Name:        "agent-learn-threshold",
			Usage:       "Minimum classification confidence for learning updates",
			Category:    "Agent",
			Value:       defaults.LearnThreshold,
			Sources:     cli.EnvVars("MENTOR_AGENT_LEARN_THRESHOLD"),
			Destination: &x.learnThreshold,
		},
		&cli.IntFlag{
			Name:        "agent-max-concurrent-runs",
			Usage:       "Cap on concurrent agent runs across conversations",
			Category:    "Agent",
			Value:       int(defaults.MaxConcurrentRuns),
			Sources:     cli.EnvVars("MENTOR_AGENT_MAX_CONCURRENT_RUNS"),
			Destination: &x.maxConcurrentRuns,
		},
		&cli.StringFlag{
			Name:        "agent-model",
			Usage:       "Model name recorded in the interaction log",
			Category:    "Agent",
			Value:       defaults.Model,
			Sources:     cli.EnvVars("MENTOR_AGENT_MODEL"),
			Destination: &x.model,
		},
	}
}

func (x Agent) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("max_iterations", x.maxIterations),
		slog.Float64("learn_threshold", x.learnThreshold),
		slog.String("model", x.model),
	)
}

// Configure produces the runtime configuration, starting from defaults
func (x *Agent) Configure() usecase.Config {
	cfg := usecase.DefaultConfig()
	cfg.MaxIterations = x.maxIterations
	cfg.ContextFacts = x.contextFacts
	cfg.ContextMemories = x.contextMemories
	cfg.LearnThreshold = x.learnThreshold
	cfg.MaxConcurrentRuns = int64(x.maxConcurrentRuns)
	cfg.Model = x.model
	return cfg
}
