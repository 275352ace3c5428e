package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hiraku-lab/mentor/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// ToolErrorKind classifies tool dispatch failures
type ToolErrorKind string

const (
	// KindUnknownTool means the requested tool is not registered
	KindUnknownTool ToolErrorKind = "unknown_tool"
	// KindBadInput means the tool rejected its arguments
	KindBadInput ToolErrorKind = "bad_input"
	// KindExecution means the tool ran and failed
	KindExecution ToolErrorKind = "execution"
)

// ToolError is a typed, observable tool failure. It is fed back to the
// model as an observation so the loop can recover; it never aborts a run.
type ToolError struct {
	Kind    ToolErrorKind
	Message string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Observation is the result of a successful tool execution. Text is what
// the model sees; Refs carries identifiers (message IDs, draft IDs,
// document names) that must survive verbatim into the next prompt.
type Observation struct {
	Text string
	Refs []string
}

// ErrBadInput marks an argument validation failure inside a tool Run.
// Registry.Execute maps it to KindBadInput.
var ErrBadInput = goerr.New("bad tool input")

// Registry holds the tools available to one agent run and dispatches
// actions to them by name.
type Registry struct {
	tools map[string]gollem.Tool
}

// NewRegistry builds a registry from the given tools. Registering two tools
// with the same name is a programming error and panics at startup.
func NewRegistry(tools ...gollem.Tool) *Registry {
	r := &Registry{tools: make(map[string]gollem.Tool, len(tools))}
	for _, t := range tools {
		name := t.Spec().Name
		if _, exists := r.tools[name]; exists {
			panic(fmt.Sprintf("duplicate tool name: %s", name))
		}
		r.tools[name] = t
	}
	return r
}

// Names returns the registered tool names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe renders the tool specs as prompt text: one block per tool with
// its description and parameters.
func (r *Registry) Describe() string {
	var sb strings.Builder
	for _, name := range r.Names() {
		spec := r.tools[name].Spec()
		fmt.Fprintf(&sb, "- %s: %s\n", spec.Name, spec.Description)

		params := make([]string, 0, len(spec.Parameters))
		for pname := range spec.Parameters {
			params = append(params, pname)
		}
		sort.Strings(params)
		for _, pname := range params {
			p := spec.Parameters[pname]
			required := ""
			if p.Required {
				required = " (required)"
			}
			fmt.Fprintf(&sb, "    %s%s: %s\n", pname, required, p.Description)
		}
	}
	return sb.String()
}

// Execute dispatches one action. It returns either an Observation or a
// ToolError; the error return is reserved for context cancellation.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (*Observation, *ToolError, error) {
	t, exists := r.tools[name]
	if !exists {
		return nil, &ToolError{
			Kind:    KindUnknownTool,
			Message: fmt.Sprintf("no tool named %q; available tools: %s", name, strings.Join(r.Names(), ", ")),
		}, nil
	}

	logging.From(ctx).Debug("executing tool", "tool", name, "args", args)

	result, err := t.Run(ctx, args)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, goerr.Wrap(ctx.Err(), "tool execution cancelled", goerr.V("tool", name))
		}

		kind := KindExecution
		if errors.Is(err, ErrBadInput) {
			kind = KindBadInput
		}
		return nil, &ToolError{Kind: kind, Message: err.Error()}, nil
	}

	text, refs, err := renderObservation(result)
	if err != nil {
		return nil, &ToolError{Kind: KindExecution, Message: err.Error()}, nil
	}
	return &Observation{Text: text, Refs: refs}, nil, nil
}

// renderObservation serializes a tool result map to deterministic JSON and
// collects reference identifiers reported by the tool under "refs".
func renderObservation(result map[string]any) (string, []string, error) {
	if result == nil {
		result = map[string]any{}
	}

	var refs []string
	if raw, ok := result["refs"].([]string); ok {
		refs = raw
	} else if raw, ok := result["refs"].([]any); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok {
				refs = append(refs, s)
			}
		}
	}
	delete(result, "refs")

	encoded, err := json.Marshal(result)
	if err != nil {
		return "", nil, goerr.Wrap(err, "failed to encode tool result")
	}
	return string(encoded), refs, nil
}
