// Package agent implements the step-bounded control loop that drives one
// research agent: request a model turn, fan out tool calls, feed results
// back into memory, and stop on completion or step exhaustion.
package agent

import (
	"context"
	"strings"
	"sync"

	"github.com/deepscout/deepscout/llm"
	"github.com/deepscout/deepscout/logger"
	"github.com/deepscout/deepscout/memory"
	"github.com/deepscout/deepscout/provider"
	"github.com/deepscout/deepscout/tools"
)

// State is the agent loop state.
type State string

const (
	StateSeeding       State = "seeding"
	StateStepping      State = "stepping"
	StateAwaitingTools State = "awaiting_tools"
	StateReflecting    State = "reflecting"
	StateCompleted     State = "completed"
	StateExhausted     State = "exhausted"
)

const reflectionPrompt = "Reflect on the latest tool results before selecting your next action. " +
	"Summarize the new information, how it affects your plan, and outline the most sensible " +
	"next step. Do not call any tools in this response; respond with reasoning only."

// Options configures one agent run.
type Options struct {
	ID                 string
	ParentID           string // empty for top-level agents
	SystemPrompt       string
	InitialUserMessage string
	MaxSteps           int
	Reflection         bool // interleave non-tool reasoning turns
}

// Agent drives one execution context to completion. Each agent owns its
// memory store exclusively; sibling agents share nothing mutable.
type Agent struct {
	opts     Options
	client   *llm.Client
	executor *tools.Executor
	memory   *memory.Store
	tracer   Tracer

	state State
}

// New assembles an agent from its collaborators. tracer may be nil, in
// which case lifecycle hooks log through the default slog tracer.
func New(opts Options, client *llm.Client, executor *tools.Executor, mem *memory.Store, tracer Tracer) *Agent {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = 25
	}
	if tracer == nil {
		tracer = LogTracer{}
	}
	return &Agent{
		opts:     opts,
		client:   client,
		executor: executor,
		memory:   mem,
		tracer:   tracer,
		state:    StateSeeding,
	}
}

// State returns the current loop state.
func (a *Agent) State() State {
	return a.state
}

// Memory returns the agent's memory store.
func (a *Agent) Memory() *memory.Store {
	return a.memory
}

// Result is the outcome of a run.
type Result struct {
	Response *provider.Response // last raw model response, nil if no step ran
	State    State
}

// FinalContent returns the text of the last model response, empty when
// the run produced none.
func (r *Result) FinalContent() string {
	if r.Response == nil {
		return ""
	}
	return r.Response.Content
}

// Run seeds memory with the system prompt and initial user message, then
// drives the step loop. Completion and exhaustion are both normal
// termination; only provider failures surface as errors.
func (a *Agent) Run(ctx context.Context) (*Result, error) {
	a.state = StateSeeding
	_ = a.memory.AddSystemMessage(ctx, a.opts.SystemPrompt)
	if a.opts.InitialUserMessage != "" {
		_ = a.memory.AddUserMessage(ctx, a.opts.InitialUserMessage)
	}
	return a.loop(ctx)
}

func (a *Agent) loop(ctx context.Context) (*Result, error) {
	var last *provider.Response
	completed := false
	nudged := false

	for step := 0; step < a.opts.MaxSteps; step++ {
		a.state = StateStepping
		a.tracer.StepStart(a.opts.ID, step)

		if !completed && !nudged && step == a.opts.MaxSteps-1 {
			if nudge := a.completionNudge(); nudge != "" {
				logger.Info("injecting completion nudge", "agent", a.opts.ID, "step", step)
				_ = a.memory.AddUserMessage(ctx, nudge)
				nudged = true
			}
		}

		resp, err := a.client.GenerateWithTools(ctx, a.memory.ModelView(), a.executor.Defs())
		if err != nil {
			a.tracer.StepEnd(a.opts.ID, step, a.state)
			return &Result{Response: last, State: a.state}, err
		}
		last = resp

		if !resp.HasToolCalls() {
			_ = a.memory.AddAssistantMessage(ctx, resp.Content)
			a.tracer.StepEnd(a.opts.ID, step, a.state)
			continue
		}

		_ = a.memory.AddAssistantToolCalls(ctx, resp.Content, resp.ToolCalls)

		a.state = StateAwaitingTools
		envelopes := a.dispatchBatch(ctx, step, resp.ToolCalls)
		for i, env := range envelopes {
			tc := resp.ToolCalls[i]
			_ = a.memory.AddToolMessage(ctx, env.ModelText(), tc.ID, tc.Function.Name)
			if env.TaskCompleted {
				completed = true
			}
		}

		if a.opts.Reflection && !completed && step%3 == 0 && !batchHasArtifactCall(resp.ToolCalls) {
			a.state = StateReflecting
			a.reflect(ctx)
		}

		a.tracer.StepEnd(a.opts.ID, step, a.state)

		if completed {
			a.state = StateCompleted
			logger.Info("task completed", "agent", a.opts.ID, "step", step)
			if err := a.memory.Persist(); err != nil {
				logger.Error("memory persist on completion failed", "agent", a.opts.ID, "err", err)
			}
			return &Result{Response: last, State: a.state}, nil
		}
	}

	a.state = StateExhausted
	logger.Info("step budget exhausted", "agent", a.opts.ID, "max_steps", a.opts.MaxSteps)
	return &Result{Response: last, State: a.state}, nil
}

// dispatchBatch executes all tool calls of one turn concurrently and
// returns envelopes in the original call order. Individual failures
// become failure envelopes; one failing call never aborts its siblings.
func (a *Agent) dispatchBatch(ctx context.Context, step int, calls []provider.ToolCall) []*tools.Envelope {
	envelopes := make([]*tools.Envelope, len(calls))
	var wg sync.WaitGroup
	for i, tc := range calls {
		a.tracer.ToolScheduled(a.opts.ID, step, tc.ID, tc.Function.Name)
		wg.Add(1)
		go func(i int, tc provider.ToolCall) {
			defer wg.Done()
			call := tools.CallContext{AgentID: a.opts.ID, ToolCallID: tc.ID, StepIndex: step}
			env, err := a.executor.Execute(ctx, tc.Function.Name, tc.Function.Arguments, call)
			if err != nil {
				logger.Error("tool call failed", "agent", a.opts.ID, "tool", tc.Function.Name, "err", err)
				env = tools.FailureEnvelope(tc.Function.Name, err)
			}
			envelopes[i] = env
			a.tracer.ToolCompleted(a.opts.ID, step, tc.ID, tc.Function.Name, env.Success, env.TaskCompleted)
		}(i, tc)
	}
	wg.Wait()
	return envelopes
}

// reflect asks the model to reason about the latest tool results without
// calling tools and stores the output as a marked assistant message.
// Reflection is an optimization: failures are logged and swallowed.
func (a *Agent) reflect(ctx context.Context) {
	msgs := append(a.memory.ModelView(), provider.AssistantMessage(reflectionPrompt))
	content, err := a.client.Generate(ctx, msgs)
	if err != nil {
		logger.Warn("reflection turn failed", "agent", a.opts.ID, "err", err)
		return
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	_ = a.memory.AddAssistantMessage(ctx, "[Reflection]\n"+content)
}

// completionNudge picks the wording for the final-step hint based on
// which completion tool this agent carries. Agents without a completion
// tool get no nudge.
func (a *Agent) completionNudge() string {
	switch {
	case a.executor.Has(tools.KindCompleteTask):
		return "You have reached the maximum number of steps. Synthesize your findings," +
			" then call the `complete_task` tool with your final report to finish."
	case a.executor.Has(tools.KindCompleteSubTask):
		return "You have reached the maximum number of steps. Synthesize your findings," +
			" then call the `complete_sub_task` tool with your sub-report to wrap up."
	}
	return ""
}

// batchHasArtifactCall reports whether any call in the batch is a
// plan-save or completion tool. Reflection is skipped for such batches:
// they close work out rather than produce new findings. The check covers
// the whole batch, not just its last element.
func batchHasArtifactCall(calls []provider.ToolCall) bool {
	for _, tc := range calls {
		switch tools.Kind(tc.Function.Name) {
		case tools.KindSavePlan, tools.KindCompleteTask, tools.KindCompleteSubTask:
			return true
		}
	}
	return false
}
