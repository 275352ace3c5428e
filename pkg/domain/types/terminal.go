package types

// TerminalState is the outcome of one agent run. Every run ends in exactly
// one of these states; there is no other way out of the reasoning loop.
type TerminalState string

const (
	// TerminalSuccess means the model emitted a final answer within budget.
	TerminalSuccess TerminalState = "success"

	// TerminalMaxIterations means the iteration ceiling was reached without
	// a final answer. Reported to the user, never silently dropped.
	TerminalMaxIterations TerminalState = "max_iterations"

	// TerminalFatalError means the language-model call itself failed.
	// The run is abandoned; nothing partial counts as an answer.
	TerminalFatalError TerminalState = "fatal_error"

	// TerminalCancelled means the run was abandoned because a newer message
	// arrived for the same conversation.
	TerminalCancelled TerminalState = "cancelled"
)

func (x TerminalState) String() string { return string(x) }
