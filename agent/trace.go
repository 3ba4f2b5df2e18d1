package agent

import "github.com/deepscout/deepscout/logger"

// Tracer receives lifecycle hooks from the agent loop: step boundaries
// and tool scheduling/completion. Implementations must be cheap and must
// not fail; the loop never checks errors from a tracer.
type Tracer interface {
	StepStart(agentID string, step int)
	StepEnd(agentID string, step int, state State)
	ToolScheduled(agentID string, step int, callID, tool string)
	ToolCompleted(agentID string, step int, callID, tool string, success, taskCompleted bool)
}

// LogTracer is the default Tracer, emitting structured log lines.
type LogTracer struct{}

func (LogTracer) StepStart(agentID string, step int) {
	logger.Debug("step start", "agent", agentID, "step", step)
}

func (LogTracer) StepEnd(agentID string, step int, state State) {
	logger.Debug("step end", "agent", agentID, "step", step, "state", string(state))
}

func (LogTracer) ToolScheduled(agentID string, step int, callID, tool string) {
	logger.Debug("tool scheduled", "agent", agentID, "step", step, "call", callID, "tool", tool)
}

func (LogTracer) ToolCompleted(agentID string, step int, callID, tool string, success, taskCompleted bool) {
	logger.Debug("tool completed", "agent", agentID, "step", step, "call", callID,
		"tool", tool, "success", success, "task_completed", taskCompleted)
}
