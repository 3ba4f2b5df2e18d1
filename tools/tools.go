// Package tools implements the research tool set: a closed set of tool
// kinds, schema validation of model-supplied arguments, and an executor
// that turns each call into a normalized result envelope.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/deepscout/deepscout/logger"
	"github.com/deepscout/deepscout/provider"
	"github.com/deepscout/deepscout/search"
	"github.com/deepscout/deepscout/storage"
)

// Kind identifies one tool in the closed research tool set.
type Kind string

const (
	KindWebSearch       Kind = "web_search"
	KindWebExtract      Kind = "web_extract"
	KindRunSubagent     Kind = "run_subagent"
	KindSavePlan        Kind = "save_research_plan"
	KindCompleteTask    Kind = "complete_task"
	KindCompleteSubTask Kind = "complete_sub_task"
)

// AllKinds lists every tool kind in advertising order.
var AllKinds = []Kind{
	KindWebSearch,
	KindWebExtract,
	KindRunSubagent,
	KindSavePlan,
	KindCompleteTask,
	KindCompleteSubTask,
}

// Error kinds. Validation covers unknown/disallowed tools and malformed
// arguments; execution covers a tool's own failure. Both are caught at the
// batch boundary and converted into failure envelopes.
var (
	ErrValidation = errors.New("tool validation error")
	ErrExecution  = errors.New("tool execution error")
)

// CallContext carries the identity of the call site into a tool handler.
// It is threaded explicitly, never pulled from ambient state.
type CallContext struct {
	AgentID    string
	ToolCallID string
	StepIndex  int
}

// Envelope is the normalized result of one tool execution.
type Envelope struct {
	Success          bool   `json:"success"`
	ToolName         string `json:"tool_name"`
	FormattedContent string `json:"formatted_content,omitempty"`
	TaskCompleted    bool   `json:"task_completed,omitempty"`
	Raw              any    `json:"raw,omitempty"`
	Error            string `json:"error,omitempty"`
}

// ModelText renders the envelope as the tool message content the model
// sees.
func (e *Envelope) ModelText() string {
	if !e.Success {
		errText := e.Error
		if errText == "" {
			errText = "Unknown error"
		}
		return "Tool execution failed: " + errText
	}
	return e.FormattedContent
}

// FailureEnvelope builds the envelope for a call that errored out.
func FailureEnvelope(toolName string, err error) *Envelope {
	return &Envelope{
		Success:  false,
		ToolName: toolName,
		Error:    fmt.Sprintf("Tool '%s' execution failed: %v", toolName, err),
	}
}

// handler executes one tool kind.
type handler interface {
	execute(ctx context.Context, args map[string]any, call CallContext) (*Envelope, error)
}

// SubagentRunner runs a delegated sub-agent to completion and returns its
// final textual output. Implemented by the research orchestrator so the
// tool layer stays free of the agent loop.
type SubagentRunner interface {
	RunSubagent(ctx context.Context, agentID, parentID, prompt string) (string, error)
}

// Deps are the collaborators the tool handlers need. Search may be nil
// when the executor exposes no web tools, likewise Subagents.
type Deps struct {
	Search    *search.Client
	Store     *storage.SessionStore
	Subagents SubagentRunner
}

// Executor validates and executes tool calls against a per-agent
// allow-list.
type Executor struct {
	allowed  []Kind
	handlers map[Kind]handler
}

// NewExecutor builds an executor exposing exactly the given kinds.
func NewExecutor(allowed []Kind, deps Deps) *Executor {
	e := &Executor{handlers: make(map[Kind]handler, len(allowed))}
	for _, k := range allowed {
		var h handler
		switch k {
		case KindWebSearch:
			h = &webSearchTool{client: deps.Search}
		case KindWebExtract:
			h = &webExtractTool{client: deps.Search}
		case KindRunSubagent:
			h = &runSubagentTool{runner: deps.Subagents}
		case KindSavePlan:
			h = &savePlanTool{store: deps.Store}
		case KindCompleteTask:
			h = &completeTaskTool{store: deps.Store}
		case KindCompleteSubTask:
			h = &completeSubTaskTool{store: deps.Store}
		default:
			continue
		}
		e.allowed = append(e.allowed, k)
		e.handlers[k] = h
	}
	return e
}

// Defs returns the tool definitions to advertise to the model, in
// allow-list order.
func (e *Executor) Defs() []provider.ToolDef {
	defs := make([]provider.ToolDef, 0, len(e.allowed))
	for _, k := range e.allowed {
		defs = append(defs, defFor(k))
	}
	return defs
}

// Has reports whether the executor exposes the given kind.
func (e *Executor) Has(kind Kind) bool {
	_, ok := e.handlers[kind]
	return ok
}

// Names returns the allowed tool names in advertising order.
func (e *Executor) Names() []string {
	names := make([]string, 0, len(e.allowed))
	for _, k := range e.allowed {
		names = append(names, string(k))
	}
	return names
}

// Execute runs one tool call. rawArgs is the argument JSON exactly as the
// model produced it; malformed JSON degrades to an empty argument map so
// required-field validation reports the real problem. Errors are typed:
// ErrValidation for disallowed tools or bad arguments, ErrExecution for a
// handler failure.
func (e *Executor) Execute(ctx context.Context, name, rawArgs string, call CallContext) (*Envelope, error) {
	h, ok := e.handlers[Kind(name)]
	if !ok {
		return nil, fmt.Errorf("%w: tool %q is not allowed for this agent", ErrValidation, name)
	}

	args := map[string]any{}
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			logger.Warn("tool arguments are not valid JSON", "tool", name, "err", err)
			args = map[string]any{}
		}
	}
	if err := validateArgs(Kind(name), args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	env, err := h.execute(ctx, args, call)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrExecution, name, err)
	}
	return env, nil
}

// validateArgs checks required fields and primitive types against the
// tool's parameter schema.
func validateArgs(kind Kind, args map[string]any) error {
	def := defFor(kind)
	params := def.Function.Parameters

	required, _ := params["required"].([]string)
	for _, field := range required {
		if _, ok := args[field]; !ok {
			return fmt.Errorf("missing required field %q for tool %q", field, kind)
		}
	}

	properties, _ := params["properties"].(map[string]any)
	for field, value := range args {
		prop, ok := properties[field].(map[string]any)
		if !ok {
			continue
		}
		wantType, _ := prop["type"].(string)
		if err := checkType(field, wantType, value); err != nil {
			return err
		}
	}
	return nil
}

// checkType enforces the primitive JSON schema types the tool schemas use.
// JSON numbers arrive as float64, so integer means an integral float64.
func checkType(field, wantType string, value any) error {
	switch wantType {
	case "string":
		if _, ok := value.(string); !ok {
			return fmt.Errorf("field %q must be a string", field)
		}
	case "integer":
		f, ok := value.(float64)
		if !ok || f != math.Trunc(f) {
			return fmt.Errorf("field %q must be an integer", field)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("field %q must be a boolean", field)
		}
	case "array":
		if _, ok := value.([]any); !ok {
			return fmt.Errorf("field %q must be an array", field)
		}
	}
	return nil
}

// Argument accessors shared by the handlers. Validation has already
// enforced types for declared fields, so these only pick defaults.

func stringArg(args map[string]any, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

func intArg(args map[string]any, key string, def int) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return def
}

func boolArg(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

func stringSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
