package slack

import (
	"context"
	"strings"
	"sync"
)

// Trace is a thread message that shows the assistant's progress while a run
// is in flight. Each tool step appends a line; Finalize replaces the whole
// message with the final answer.
type Trace struct {
	svc       Service
	channelID string
	timestamp string

	mu    sync.Mutex
	steps []string
}

const traceInitialText = ":hourglass_flowing_sand: Working on it..."

// NewTrace posts the initial progress message into the given thread
func NewTrace(ctx context.Context, svc Service, channelID, threadTS string) (*Trace, error) {
	ts, err := svc.PostThreadMessage(ctx, channelID, threadTS, traceInitialText)
	if err != nil {
		return nil, err
	}
	return &Trace{
		svc:       svc,
		channelID: channelID,
		timestamp: ts,
	}, nil
}

// AppendStep adds one progress line and refreshes the message. Failures to
// update are returned but callers normally just log them; progress display
// must not break a run.
func (t *Trace) AppendStep(ctx context.Context, step string) error {
	t.mu.Lock()
	t.steps = append(t.steps, step)
	text := traceInitialText + "\n" + t.renderSteps()
	t.mu.Unlock()

	return t.svc.UpdateMessage(ctx, t.channelID, t.timestamp, text)
}

// Finalize replaces the trace message with the final answer text
func (t *Trace) Finalize(ctx context.Context, answer string) error {
	return t.svc.UpdateMessage(ctx, t.channelID, t.timestamp, answer)
}

func (t *Trace) renderSteps() string {
	lines := make([]string, len(t.steps))
	for i, s := range t.steps {
		lines[i] = "• " + s
	}
	return strings.Join(lines, "\n")
}
