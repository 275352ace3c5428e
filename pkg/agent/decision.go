package agent

import (
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// DecisionKind discriminates the shapes a model response can take
type DecisionKind string

const (
	DecisionAction      DecisionKind = "action"
	DecisionFinalAnswer DecisionKind = "final_answer"
	DecisionMalformed   DecisionKind = "malformed"
)

// Decision is the parsed form of one model response. Raw protocol text is
// interpreted here and nowhere else; downstream code switches on Kind.
type Decision struct {
	Kind DecisionKind

	// Focus is the optional FOCUS line accompanying the decision
	Focus string

	// Action fields, set when Kind == DecisionAction
	ToolName string
	ToolArgs map[string]any

	// Answer is set when Kind == DecisionFinalAnswer
	Answer string

	// ParseError describes why the response was malformed
	ParseError string

	// Raw is the unmodified model response
	Raw string
}

const (
	markerAction      = "ACTION:"
	markerArgs        = "ARGS:"
	markerFinalAnswer = "FINAL_ANSWER:"
	markerFocus       = "FOCUS:"
)

// ParseDecision parses a raw model response into a Decision. The protocol:
//
//	FOCUS: <one line, optional>
//	ACTION: <tool name>
//	ARGS: <JSON object, may span lines>
//
// or
//
//	FOCUS: <one line, optional>
//	FINAL_ANSWER: <text, runs to the end of the response>
//
// A response matching neither shape yields DecisionMalformed with
// ParseError set. ParseDecision never returns an error; malformed input is
// a value, not a failure.
func ParseDecision(raw string) *Decision {
	d := &Decision{Raw: raw}

	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, markerFocus):
			if d.Focus == "" {
				d.Focus = strings.TrimSpace(strings.TrimPrefix(trimmed, markerFocus))
			}

		case strings.HasPrefix(trimmed, markerAction):
			name := strings.TrimSpace(strings.TrimPrefix(trimmed, markerAction))
			if name == "" {
				d.Kind = DecisionMalformed
				d.ParseError = "ACTION line has no tool name"
				return d
			}
			args, err := parseArgs(lines[i+1:])
			if err != nil {
				d.Kind = DecisionMalformed
				d.ParseError = err.Error()
				return d
			}
			d.Kind = DecisionAction
			d.ToolName = name
			d.ToolArgs = args
			return d

		case strings.HasPrefix(trimmed, markerFinalAnswer):
			first := strings.TrimSpace(strings.TrimPrefix(trimmed, markerFinalAnswer))
			rest := append([]string{first}, lines[i+1:]...)
			d.Kind = DecisionFinalAnswer
			d.Answer = strings.TrimSpace(strings.Join(rest, "\n"))
			return d
		}
	}

	d.Kind = DecisionMalformed
	d.ParseError = "response contains neither ACTION nor FINAL_ANSWER"
	return d
}

// parseArgs extracts the JSON object following an ACTION line. A missing
// ARGS section means the tool takes no input.
func parseArgs(lines []string) (map[string]any, error) {
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, markerArgs) {
			// Anything else between ACTION and ARGS is unexpected
			break
		}

		blob := strings.TrimSpace(strings.TrimPrefix(trimmed, markerArgs))
		if rest := strings.Join(lines[i+1:], "\n"); rest != "" {
			blob += "\n" + rest
		}
		blob = strings.TrimSpace(blob)

		dec := json.NewDecoder(strings.NewReader(blob))
		var args map[string]any
		if err := dec.Decode(&args); err != nil {
			return nil, goerr.New("ARGS is not a valid JSON object", goerr.V("args", blob))
		}
		return args, nil
	}
	return map[string]any{}, nil
}
