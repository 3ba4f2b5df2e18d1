// Package memory is the turn-bounded conversation store. It tracks the
// full audit history with provenance, maintains the model-facing message
// view, and compacts older turns into a curator summary once the real
// assistant-turn count exceeds the configured budget.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/deepscout/deepscout/logger"
	"github.com/deepscout/deepscout/provider"
)

const curatorSystem = "You are a memory curator for a deep-research agent. " +
	"Summarize earlier conversation into terse bullets under: Observations, Decisions, Follow-ups. " +
	"Make sure to preserve the critical information needed for the initial task of the agent in your summaries" +
	"No speculation, no credentials, no raw prompts."

const summarizerFallback = "Summary unavailable due to curator error."

// ErrPersist marks memory persistence failures. It is the one memory error
// that propagates to the caller instead of degrading in place.
var ErrPersist = errors.New("memory persistence error")

// Metadata is the audit trail attached to each stored message.
type Metadata struct {
	Who             string `json:"who"`
	When            string `json:"when"`
	Synthetic       bool   `json:"synthetic"`
	Kind            string `json:"kind,omitempty"`
	ToolCallID      string `json:"tool_call_id,omitempty"`
	Name            string `json:"name,omitempty"`
	SummaryForTurns string `json:"summary_for_turns,omitempty"`
}

// Record pairs a message with its metadata.
type Record struct {
	Msg  provider.Message `json:"message"`
	Meta Metadata         `json:"metadata"`
}

// Summarizer compresses a message prefix into summary text. The LLM client
// satisfies this directly.
type Summarizer interface {
	Summarize(ctx context.Context, messages []provider.Message) (string, error)
}

// Persister receives serialized memory snapshots keyed by agent identity.
type Persister interface {
	WriteMemory(agentID string, data []byte) error
}

// Options configures a Store.
type Options struct {
	MaxTurns      int // summarize once real assistant turns exceed this
	KeepLastTurns int // turns preserved verbatim past the boundary, 0 summarizes everything
	AutosaveEvery int // persist every N appends, 0 disables autosave
}

// Store holds one agent's conversation. All appends and the summarization
// rewrite are serialized behind a single mutex; tool execution may be
// concurrent but memory mutation never is.
type Store struct {
	agentID    string
	summarizer Summarizer
	persister  Persister
	opts       Options

	mu           sync.Mutex
	history      []Record
	messages     []provider.Message
	appendsSaved int
	nowFunc      func() time.Time
}

// NewStore creates a memory store for one agent. summarizer may be nil, in
// which case compaction always uses the fallback stub. persister may be nil
// to disable persistence.
func NewStore(agentID string, summarizer Summarizer, persister Persister, opts Options) *Store {
	return &Store{
		agentID:    agentID,
		summarizer: summarizer,
		persister:  persister,
		opts:       opts,
		nowFunc:    time.Now,
	}
}

func (s *Store) now() string {
	return s.nowFunc().UTC().Format(time.RFC3339Nano)
}

// AddUserMessage appends a user message.
func (s *Store) AddUserMessage(ctx context.Context, content string) error {
	msg := provider.Message{Role: provider.RoleUser, Content: content}
	return s.add(ctx, msg, Metadata{Kind: "user_msg"})
}

// AddAssistantMessage appends a plain assistant message without tool calls.
func (s *Store) AddAssistantMessage(ctx context.Context, content string) error {
	msg := provider.Message{Role: provider.RoleAssistant, Content: content}
	return s.add(ctx, msg, Metadata{Kind: "assistant_msg"})
}

// AddAssistantToolCalls appends an assistant message carrying tool calls.
func (s *Store) AddAssistantToolCalls(ctx context.Context, content string, toolCalls []provider.ToolCall) error {
	msg := provider.Message{Role: provider.RoleAssistant, Content: content, ToolCalls: toolCalls}
	return s.add(ctx, msg, Metadata{Kind: "assistant_tool_call"})
}

// AddToolMessage appends a tool result tied to toolCallID.
func (s *Store) AddToolMessage(ctx context.Context, content, toolCallID, name string) error {
	msg := provider.Message{Role: provider.RoleTool, Content: content, ToolCallID: toolCallID, Name: name}
	return s.add(ctx, msg, Metadata{Kind: "tool_msg", ToolCallID: toolCallID, Name: name})
}

// AddMessage appends a message with an arbitrary role. Unknown roles are
// coerced to assistant rather than rejected, so append never fails on a
// role the provider schema does not know.
func (s *Store) AddMessage(ctx context.Context, role, content string) error {
	var kind string
	switch role {
	case provider.RoleSystem:
		kind = "system_prompt"
	case provider.RoleUser:
		kind = "user_msg"
	case provider.RoleTool:
		kind = "tool_msg"
	case provider.RoleAssistant:
		kind = "assistant_msg"
	default:
		role = provider.RoleAssistant
		kind = "assistant_msg"
	}
	return s.add(ctx, provider.Message{Role: role, Content: content}, Metadata{Kind: kind})
}

// AddSystemMessage appends a system directive.
func (s *Store) AddSystemMessage(ctx context.Context, content string) error {
	msg := provider.Message{Role: provider.RoleSystem, Content: content}
	return s.add(ctx, msg, Metadata{Kind: "system_prompt"})
}

// ModelView returns the current model-safe message list.
func (s *Store) ModelView() []provider.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]provider.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// History returns a copy of the full audit record sequence.
func (s *Store) History() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.history))
	copy(out, s.history)
	return out
}

// Persist serializes the full history to the persister. Output is stable:
// persisting twice without intervening appends yields identical bytes.
func (s *Store) Persist() error {
	if s.persister == nil {
		return nil
	}
	s.mu.Lock()
	data, err := json.MarshalIndent(s.history, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("%w: encode history: %v", ErrPersist, err)
	}
	if err := s.persister.WriteMemory(s.agentID, data); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	logger.Info("memory saved", "agent", s.agentID, "records", len(s.history))
	return nil
}

// add appends one record, mirrors it into the model view, and runs the
// summarization pass when the turn budget is exceeded. Invalid roles are
// coerced rather than rejected; add never fails except through autosave.
func (s *Store) add(ctx context.Context, msg provider.Message, meta Metadata) error {
	s.mu.Lock()

	meta.Who = firstNonEmpty(meta.Who, msg.Role)
	meta.When = s.now()

	s.history = append(s.history, Record{Msg: msg, Meta: meta})
	s.messages = append(s.messages, sanitizeForModel(msg))

	need, boundary := s.summarizeDecisionLocked()
	logger.Debug("memory append",
		"agent", s.agentID, "role", msg.Role,
		"need_summary", need, "boundary", boundary,
		"turns", len(s.assistantTurnStartsLocked()), "total", len(s.history))

	if need {
		s.compactLocked(ctx, boundary)
	}
	s.mu.Unlock()

	return s.autosave()
}

// assistantTurnStartsLocked returns indices of real assistant turn starts.
func (s *Store) assistantTurnStartsLocked() []int {
	var starts []int
	for i, r := range s.history {
		if r.Msg.Role == provider.RoleAssistant && !r.Meta.Synthetic {
			starts = append(starts, i)
		}
	}
	return starts
}

// summarizeDecisionLocked decides whether compaction is due and where the
// boundary sits. A boundary at or inside the initial system+user seed
// skips the round rather than consuming the task's original framing.
func (s *Store) summarizeDecisionLocked() (bool, int) {
	if len(s.history) <= 2 {
		return false, -1
	}
	starts := s.assistantTurnStartsLocked()
	realTurns := len(starts)
	if realTurns <= s.opts.MaxTurns {
		return false, -1
	}
	if s.opts.KeepLastTurns == 0 {
		return true, len(s.history)
	}
	if realTurns < s.opts.KeepLastTurns {
		return false, -1
	}
	boundary := starts[realTurns-s.opts.KeepLastTurns]
	if boundary <= 1 {
		return false, -1
	}
	return true, boundary
}

// compactLocked replaces everything before the boundary with the preserved
// system+user seed plus one synthetic assistant summary, then rebuilds the
// model view. Curator failures degrade to a stub, never an error.
func (s *Store) compactLocked(ctx context.Context, boundary int) {
	var prefix []provider.Message
	for _, r := range s.history[:boundary] {
		if r.Msg.Role == provider.RoleSystem || r.Msg.Role == provider.RoleUser {
			continue
		}
		prefix = append(prefix, sanitizeForModel(r.Msg))
	}

	summary := s.summarizePrefix(ctx, prefix)

	suffix := make([]Record, len(s.history[boundary:]))
	copy(suffix, s.history[boundary:])

	seed := s.history[:2]
	rebuilt := make([]Record, 0, len(suffix)+3)
	rebuilt = append(rebuilt, seed[0], seed[1])
	rebuilt = append(rebuilt, Record{
		Msg: provider.Message{Role: provider.RoleAssistant, Content: summary},
		Meta: Metadata{
			Who:             "system/curator",
			When:            s.now(),
			Synthetic:       true,
			Kind:            "history_summary",
			SummaryForTurns: fmt.Sprintf("< all before idx %d >", boundary),
		},
	})
	rebuilt = append(rebuilt, suffix...)
	s.history = rebuilt

	s.messages = s.messages[:0]
	for _, r := range s.history {
		s.messages = append(s.messages, sanitizeForModel(r.Msg))
	}

	logger.Info("memory compacted",
		"agent", s.agentID, "boundary", boundary,
		"records", len(s.history), "est_tokens", EstimateMessagesTokens(s.messages))
}

// summarizePrefix runs the curator over the filtered prefix and wraps the
// result with the prior-context framing and a timestamp header.
func (s *Store) summarizePrefix(ctx context.Context, prefix []provider.Message) string {
	text := summarizerFallback
	if s.summarizer != nil {
		req := []provider.Message{
			provider.SystemMessage(curatorSystem),
			provider.UserMessage(formatForCurator(prefix)),
		}
		logger.Debug("curator compressing", "agent", s.agentID, "messages", len(prefix))
		out, err := s.summarizer.Summarize(ctx, req)
		if err != nil {
			logger.Error("curator failed, using fallback", "agent", s.agentID, "err", err)
		} else {
			text = strings.TrimSpace(out)
		}
	}
	return "[Summary of earlier turns. Treat this as prior context only.] \n" +
		fmt.Sprintf("[History Summary @ %s]\n%s", s.now(), text)
}

func (s *Store) autosave() error {
	if s.persister == nil || s.opts.AutosaveEvery <= 0 {
		return nil
	}
	s.mu.Lock()
	s.appendsSaved++
	due := s.appendsSaved >= s.opts.AutosaveEvery
	if due {
		s.appendsSaved = 0
	}
	s.mu.Unlock()
	if !due {
		return nil
	}
	if err := s.Persist(); err != nil {
		logger.Error("memory autosave failed", "agent", s.agentID, "err", err)
	}
	return nil
}

// sanitizeForModel reduces a message to the fields the provider schema
// accepts, coercing unknown roles to assistant.
func sanitizeForModel(msg provider.Message) provider.Message {
	role := msg.Role
	switch role {
	case provider.RoleSystem, provider.RoleUser, provider.RoleAssistant, provider.RoleTool:
	default:
		role = provider.RoleAssistant
	}
	out := provider.Message{Role: role, Content: msg.Content, Name: msg.Name}
	if role == provider.RoleTool {
		out.ToolCallID = msg.ToolCallID
	}
	if role == provider.RoleAssistant {
		out.ToolCalls = msg.ToolCalls
	}
	return out
}

// formatForCurator flattens messages into a plain ROLE: content block.
func formatForCurator(msgs []provider.Message) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		role := strings.ToUpper(m.Role)
		if role == "" {
			role = "?"
		}
		parts = append(parts, role+": "+strings.TrimSpace(m.Content))
	}
	return strings.Join(parts, "\n\n")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
