package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/deepscout/deepscout/storage"
)

// savePlanTool writes research_plan.md into the session directory.
type savePlanTool struct {
	store *storage.SessionStore
}

func (t *savePlanTool) execute(ctx context.Context, args map[string]any, call CallContext) (*Envelope, error) {
	if t.store == nil {
		return nil, errors.New("session store is not configured")
	}
	plan := stringArg(args, "research_plan", "")
	path, err := t.store.WriteArtifact("research_plan", plan)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		Success:          true,
		ToolName:         string(KindSavePlan),
		FormattedContent: "Research plan saved to " + path,
	}, nil
}

// completeTaskTool writes report.md and signals completion. The report
// text is echoed back so the caller sees the deliverable directly.
type completeTaskTool struct {
	store *storage.SessionStore
}

func (t *completeTaskTool) execute(ctx context.Context, args map[string]any, call CallContext) (*Envelope, error) {
	if t.store == nil {
		return nil, errors.New("session store is not configured")
	}
	report := stringArg(args, "final_report", "")
	if _, err := t.store.WriteArtifact("report", report); err != nil {
		return nil, err
	}
	return &Envelope{
		Success:          true,
		ToolName:         string(KindCompleteTask),
		FormattedContent: report,
		TaskCompleted:    true,
	}, nil
}

// completeSubTaskTool writes a sub-report named after the calling agent
// and tool call, then signals completion of the sub-task.
type completeSubTaskTool struct {
	store *storage.SessionStore
}

func (t *completeSubTaskTool) execute(ctx context.Context, args map[string]any, call CallContext) (*Envelope, error) {
	if t.store == nil {
		return nil, errors.New("session store is not configured")
	}
	subReport := stringArg(args, "sub_report", "")

	agentPart := storage.SanitizeName(call.AgentID, "sub_agent")
	callPart := storage.SanitizeName(call.ToolCallID, "complete")
	name := fmt.Sprintf("sub_report_%s_%s_step%d", agentPart, callPart, call.StepIndex)

	if _, err := t.store.WriteArtifact(name, subReport); err != nil {
		return nil, err
	}
	return &Envelope{
		Success:          true,
		ToolName:         string(KindCompleteSubTask),
		FormattedContent: subReport,
		TaskCompleted:    true,
	}, nil
}
