package facade

import (
	"context"
	"fmt"

	"github.com/sandevgo/ctxbroker/internal/core"
	"github.com/sandevgo/ctxbroker/pkg/log"
)

const OperationProcess = "process"

type WorkflowStep struct {
	AgentID   string `json:"agent_id"`
	Operation string `json:"operation,omitempty"`
}

type WorkflowRequest struct {
	UserID  string         `json:"user_id"`
	Message string         `json:"initial_message"`
	Context *string        `json:"initial_context,omitempty"`
	Enhance bool           `json:"use_llm"`
	Steps   []WorkflowStep `json:"steps"`
}

type StepResult struct {
	AgentID   string `json:"agent_id,omitempty"`
	Operation string `json:"operation,omitempty"`
	Input     string `json:"input,omitempty"`
	Output    string `json:"output,omitempty"`
	Error     string `json:"error,omitempty"`
}

type WorkflowResult struct {
	Steps         []StepResult `json:"workflow_results"`
	FinalOutput   string       `json:"final_output"`
	Context       string       `json:"context"`
	AutoExtracted bool         `json:"auto_extracted"`
}

// RunWorkflow chains agents: each step's output is the next step's message.
// A missing agent records an error and the chain continues with the same
// message. The context stays fixed for the whole run.
func (f *Facade) RunWorkflow(ctx context.Context, req WorkflowRequest) (WorkflowResult, error) {
	if len(req.Steps) == 0 {
		return WorkflowResult{}, ErrNoSteps
	}
	if req.Message == "" {
		return WorkflowResult{}, ErrEmptyMessage
	}

	userID := core.UserIDOrDefault(req.UserID)
	logger := log.FromCtx(ctx).With().Str("user_id", userID).Logger()

	var summary string
	auto := req.Context == nil
	if auto {
		summary = f.store.ExtractAndUpdate(ctx, req.Message, userID, req.Enhance, f.enhancer(req.Enhance))
	} else {
		summary = *req.Context
	}

	result := WorkflowResult{
		Steps:         make([]StepResult, 0, len(req.Steps)),
		Context:       summary,
		AutoExtracted: auto,
	}

	message := req.Message
	for i, step := range req.Steps {
		op := step.Operation
		if op == "" {
			op = OperationProcess
		}

		rec, ok := f.lookup.Agent(step.AgentID)
		if !ok {
			logger.Warn().Int("step", i).Str("agent_id", step.AgentID).Msg("workflow agent not found")
			result.Steps = append(result.Steps, StepResult{
				AgentID:   step.AgentID,
				Operation: op,
				Error:     fmt.Sprintf("Agent %s not found", step.AgentID),
			})
			continue
		}

		var out string
		switch op {
		case OperationProcess:
			out = f.runner.Respond(ctx, rec, summary, message)
		default:
			out = fmt.Sprintf("Unknown operation: %s", op)
		}

		result.Steps = append(result.Steps, StepResult{
			AgentID:   step.AgentID,
			Operation: op,
			Input:     message,
			Output:    out,
		})
		message = out
	}

	result.FinalOutput = message
	return result, nil
}
