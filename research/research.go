// Package research composes the agents into the full pipeline: a lead
// researcher that plans and delegates, sub-agents that search and extract,
// and a citation editor that sources the final report.
package research

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/deepscout/deepscout/agent"
	"github.com/deepscout/deepscout/config"
	"github.com/deepscout/deepscout/llm"
	"github.com/deepscout/deepscout/logger"
	"github.com/deepscout/deepscout/memory"
	"github.com/deepscout/deepscout/prompts"
	"github.com/deepscout/deepscout/provider"
	"github.com/deepscout/deepscout/search"
	"github.com/deepscout/deepscout/storage"
	"github.com/deepscout/deepscout/tools"
)

// Agent role names used for per-role model overrides in the config.
const (
	roleLead     = "lead"
	roleSubagent = "subagent"
	roleEditor   = "editor"
)

// Orchestrator wires one research session: the session store, the search
// client, and the agents it spawns. It also serves as the SubagentRunner
// for the lead agent's run_subagent tool.
type Orchestrator struct {
	cfg       *config.Config
	sessionID string
	store     *storage.SessionStore
	search    *search.Client
	tracer    agent.Tracer
}

// NewOrchestrator prepares a session rooted in the configured output
// directory. sessionID may be empty to generate a fresh one.
func NewOrchestrator(cfg *config.Config, sessionID string) (*Orchestrator, error) {
	if sessionID == "" {
		sessionID = storage.NewSessionID()
	}
	store, err := storage.NewSessionStore(cfg.Research.OutputDir, sessionID)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		cfg:       cfg,
		sessionID: sessionID,
		store:     store,
		search:    search.NewClient(cfg.Search.APIKey, cfg.Search.Depth),
		tracer:    agent.LogTracer{},
	}, nil
}

// SessionID returns the session identity all artifacts are keyed by.
func (o *Orchestrator) SessionID() string {
	return o.sessionID
}

// Store returns the session's artifact store.
func (o *Orchestrator) Store() *storage.SessionStore {
	return o.store
}

// Run executes the full pipeline for one research question and returns
// the session id. A missing report after the lead run skips the citation
// pass rather than failing the session.
func (o *Orchestrator) Run(ctx context.Context, query string) (string, error) {
	logger.Info("research session started", "session", o.sessionID)

	if err := o.runLead(ctx, query); err != nil {
		return o.sessionID, err
	}

	citationCtx, err := LoadCitationContext(o.store, o.sessionID)
	if err != nil {
		logger.Warn("skipping citation pass", "session", o.sessionID, "err", err)
		return o.sessionID, nil
	}
	if err := o.runCitationEditor(ctx, citationCtx); err != nil {
		logger.Error("citation pass failed", "session", o.sessionID, "err", err)
	}

	logger.Info("research session finished", "session", o.sessionID)
	return o.sessionID, nil
}

func (o *Orchestrator) runLead(ctx context.Context, query string) error {
	client, err := o.clientFor(roleLead)
	if err != nil {
		return err
	}
	systemPrompt, err := prompts.Load(prompts.ResearchLeadAgent, nil)
	if err != nil {
		return err
	}

	executor := tools.NewExecutor(
		[]tools.Kind{tools.KindRunSubagent, tools.KindSavePlan, tools.KindCompleteTask},
		tools.Deps{Store: o.store, Subagents: o},
	)
	lead := agent.New(agent.Options{
		ID:                 "lead_researcher",
		SystemPrompt:       systemPrompt,
		InitialUserMessage: query,
		MaxSteps:           o.cfg.Research.LeadMaxSteps,
		Reflection:         o.cfg.Research.ReflectionEnabled(),
	}, client, executor, o.newMemory("lead_researcher", client), o.tracer)

	_, err = lead.Run(ctx)
	return err
}

func (o *Orchestrator) runCitationEditor(ctx context.Context, citationCtx *CitationContext) error {
	client, err := o.clientFor(roleEditor)
	if err != nil {
		return err
	}
	systemPrompt, err := prompts.Load(prompts.CitationAgent, nil)
	if err != nil {
		return err
	}

	executor := tools.NewExecutor(
		[]tools.Kind{tools.KindCompleteTask},
		tools.Deps{Store: o.store},
	)
	editor := agent.New(agent.Options{
		ID:                 "citation_editor",
		SystemPrompt:       systemPrompt,
		InitialUserMessage: BuildCitationMessage(citationCtx),
		MaxSteps:           o.cfg.Research.EditorMaxSteps,
		Reflection:         false,
	}, client, executor, o.newMemory("citation_editor", client), o.tracer)

	_, err = editor.Run(ctx)
	return err
}

// RunSubagent implements tools.SubagentRunner: it runs a nested agent
// with a fresh memory store and the restricted sub-agent tool set to
// completion, blocking the calling tool until it finishes.
func (o *Orchestrator) RunSubagent(ctx context.Context, agentID, parentID, prompt string) (string, error) {
	client, err := o.clientFor(roleSubagent)
	if err != nil {
		return "", err
	}
	systemPrompt, err := prompts.Load(prompts.ResearchSubAgent, nil)
	if err != nil {
		return "", err
	}

	executor := tools.NewExecutor(
		[]tools.Kind{tools.KindWebSearch, tools.KindWebExtract, tools.KindCompleteSubTask},
		tools.Deps{Search: o.search, Store: o.store},
	)
	sub := agent.New(agent.Options{
		ID:                 agentID,
		ParentID:           parentID,
		SystemPrompt:       systemPrompt,
		InitialUserMessage: prompt,
		MaxSteps:           o.cfg.Research.SubMaxSteps,
		Reflection:         o.cfg.Research.ReflectionEnabled(),
	}, client, executor, o.newMemory(agentID, client), o.tracer)

	result, err := sub.Run(ctx)
	if err != nil {
		return "", err
	}
	if content := result.FinalContent(); content != "" {
		return content, nil
	}
	// No readable content in the final turn, hand back the raw response.
	raw, err := json.Marshal(result.Response)
	if err != nil || result.Response == nil {
		return "", fmt.Errorf("sub-agent %s produced no output", agentID)
	}
	return string(raw), nil
}

func (o *Orchestrator) newMemory(agentID string, curator *llm.Client) *memory.Store {
	return memory.NewStore(agentID, curator, o.store, memory.Options{
		MaxTurns:      o.cfg.Memory.MaxTurns,
		KeepLastTurns: o.cfg.Memory.KeepLastTurns,
		AutosaveEvery: o.cfg.Memory.AutosaveEvery,
	})
}

// clientFor builds the LLM client for an agent role, honoring per-role
// provider/model overrides from the config.
func (o *Orchestrator) clientFor(role string) (*llm.Client, error) {
	providerName, modelName := o.cfg.ModelFor(role)
	apiKey, apiBase := o.cfg.ProviderCredentials(providerName)
	if apiKey == "" {
		return nil, fmt.Errorf("no API key configured for provider %q", providerName)
	}
	p, err := provider.New(providerName, apiKey, apiBase, modelName,
		o.cfg.Research.MaxTokens, o.cfg.Research.SamplingTemperature())
	if err != nil {
		return nil, err
	}
	gap := time.Duration(o.cfg.Research.MinCallGapMS) * time.Millisecond
	return llm.NewClient(p, gap), nil
}
