package tools

import (
	"context"
	"errors"

	"github.com/deepscout/deepscout/logger"
	"github.com/deepscout/deepscout/storage"
)

// runSubagentTool delegates a scoped subtask to a nested agent. The
// nested run blocks this call until it completes or exhausts its step
// budget; parallelism across sub-agents only happens when the model
// issues several run_subagent calls in one turn.
type runSubagentTool struct {
	runner SubagentRunner
}

func (t *runSubagentTool) execute(ctx context.Context, args map[string]any, call CallContext) (*Envelope, error) {
	if t.runner == nil {
		return nil, errors.New("subagent runner is not configured")
	}

	prompt := stringArg(args, "prompt", "")
	agentID := stringArg(args, "agent_id", "")
	if agentID == "" {
		agentID = storage.NewSubagentID()
	}

	logger.Info("spawning sub-agent", "agent", agentID, "parent", call.AgentID)
	output, err := t.runner.RunSubagent(ctx, agentID, call.AgentID, prompt)
	if err != nil {
		return nil, err
	}

	return &Envelope{
		Success:          true,
		ToolName:         string(KindRunSubagent),
		FormattedContent: output,
		Raw:              map[string]any{"spawned_agent_id": agentID},
	}, nil
}
