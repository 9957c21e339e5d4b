package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sandevgo/ctxbroker/internal/core"
	"github.com/sandevgo/ctxbroker/internal/service/facade"
	"github.com/sandevgo/ctxbroker/pkg/log"
)

const serverName = "ctxbroker"

var Version = "dev"

// Broker is the part of the facade exposed as MCP tools.
type Broker interface {
	ExtractContext(ctx context.Context, message string, enhance bool) core.ContextInfo
	GetContext(ctx context.Context, userID string) (string, bool)
	SetContext(ctx context.Context, userID, text string) error
	ClearContext(ctx context.Context, userID string)
	GetContextHistory(ctx context.Context, userID string, limit int) []string
	Dispatch(ctx context.Context, req facade.Request) (facade.Result, error)
	ContextAware(ctx context.Context, req facade.Request) (facade.Result, error)
	RunWorkflow(ctx context.Context, req facade.WorkflowRequest) (facade.WorkflowResult, error)
}

// Server serves the broker over MCP stdio.
type Server struct {
	broker      Broker
	defaultUser string
	mcp         *server.MCPServer
	in          io.Reader
	out         io.Writer
}

func New(broker Broker, defaultUser string) *Server {
	s := &Server{
		broker:      broker,
		defaultUser: defaultUser,
		in:          os.Stdin,
		out:         os.Stdout,
	}

	s.mcp = server.NewMCPServer(
		serverName,
		Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	for _, t := range s.tools() {
		s.mcp.AddTool(t.def, t.handle)
	}

	return s
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting mcp stdio server")

	stdio := server.NewStdioServer(s.mcp)
	err := stdio.Listen(ctx, s.in, s.out)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp stdio server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(context.Context) error {
	return nil
}

type tool struct {
	def    mcp.Tool
	handle server.ToolHandlerFunc
}

func userIDOption() mcp.ToolOption {
	return mcp.WithString("user_id", mcp.Description("User whose context is used. Defaults to the configured default user."))
}

func enhanceOption() mcp.ToolOption {
	return mcp.WithBoolean("use_llm", mcp.Description("Ask the default LLM to enhance the extracted context."))
}

func (s *Server) tools() []tool {
	return []tool{
		{
			def: mcp.NewTool("extract_context",
				mcp.WithDescription("Extract topic, intent, entities and keywords from a message without storing it."),
				mcp.WithString("message", mcp.Required(), mcp.Description("Message to analyse.")),
				enhanceOption(),
			),
			handle: s.handleExtract,
		},
		{
			def: mcp.NewTool("dispatch",
				mcp.WithDescription("Route a message to the best matching agent or LLM."),
				mcp.WithString("message", mcp.Required(), mcp.Description("Message to route.")),
				mcp.WithString("context", mcp.Description("Explicit context. When omitted the context is extracted from the message.")),
				userIDOption(),
				enhanceOption(),
			),
			handle: s.handleRoute(func(b Broker) routeFunc { return b.Dispatch }),
		},
		{
			def: mcp.NewTool("context_aware_response",
				mcp.WithDescription("Answer a message from the first available agent or LLM, decorated with the active context."),
				mcp.WithString("message", mcp.Required(), mcp.Description("Message to answer.")),
				mcp.WithString("context", mcp.Description("Explicit context. When omitted the context is extracted from the message.")),
				userIDOption(),
				enhanceOption(),
			),
			handle: s.handleRoute(func(b Broker) routeFunc { return b.ContextAware }),
		},
		{
			def: mcp.NewTool("get_context",
				mcp.WithDescription("Return the active context summary of a user."),
				userIDOption(),
			),
			handle: s.handleGetContext,
		},
		{
			def: mcp.NewTool("set_context",
				mcp.WithDescription("Replace the active context of a user with a manual one."),
				mcp.WithString("context", mcp.Required(), mcp.Description("Context text.")),
				userIDOption(),
			),
			handle: s.handleSetContext,
		},
		{
			def: mcp.NewTool("clear_context",
				mcp.WithDescription("Clear the active context of a user. History is kept."),
				userIDOption(),
			),
			handle: s.handleClearContext,
		},
		{
			def: mcp.NewTool("context_history",
				mcp.WithDescription("List recent context summaries of a user, newest first."),
				mcp.WithNumber("limit", mcp.Description("Maximum number of entries. Zero returns everything.")),
				userIDOption(),
			),
			handle: s.handleHistory,
		},
		{
			def: mcp.NewTool("run_workflow",
				mcp.WithDescription("Chain agents so that each step's output becomes the next step's input."),
				mcp.WithString("initial_message", mcp.Required(), mcp.Description("Message for the first step.")),
				mcp.WithString("initial_context", mcp.Description("Explicit context for every step.")),
				mcp.WithArray("steps", mcp.Required(), mcp.Description("Steps as objects with agent_id and optional operation.")),
				userIDOption(),
				enhanceOption(),
			),
			handle: s.handleWorkflow,
		},
	}
}

type routeFunc func(context.Context, facade.Request) (facade.Result, error)

func (s *Server) userID(req mcp.CallToolRequest) string {
	if id := req.GetString("user_id", ""); id != "" {
		return id
	}
	return s.defaultUser
}

func (s *Server) handleExtract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	msg, err := req.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.broker.ExtractContext(ctx, msg, req.GetBool("use_llm", false)))
}

func (s *Server) handleRoute(pick func(Broker) routeFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		msg, err := req.RequireString("message")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		res, err := pick(s.broker)(ctx, facade.Request{
			UserID:  s.userID(req),
			Message: msg,
			Context: optionalString(req, "context"),
			Enhance: req.GetBool("use_llm", false),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(res)
	}
}

func (s *Server) handleGetContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, ok := s.broker.GetContext(ctx, s.userID(req))
	if !ok {
		return mcp.NewToolResultText("No active context"), nil
	}
	return mcp.NewToolResultText(summary), nil
}

func (s *Server) handleSetContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("context")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.broker.SetContext(ctx, s.userID(req), text); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Context set"), nil
}

func (s *Server) handleClearContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.broker.ClearContext(ctx, s.userID(req))
	return mcp.NewToolResultText("Context cleared"), nil
}

func (s *Server) handleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	history := s.broker.GetContextHistory(ctx, s.userID(req), req.GetInt("limit", 0))
	if history == nil {
		history = []string{}
	}
	return jsonResult(history)
}

func (s *Server) handleWorkflow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	msg, err := req.RequireString("initial_message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	steps, err := decodeSteps(req.GetArguments()["steps"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.broker.RunWorkflow(ctx, facade.WorkflowRequest{
		UserID:  s.userID(req),
		Message: msg,
		Context: optionalString(req, "initial_context"),
		Enhance: req.GetBool("use_llm", false),
		Steps:   steps,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

// optionalString distinguishes an absent argument from an empty one.
func optionalString(req mcp.CallToolRequest, key string) *string {
	v, ok := req.GetArguments()[key].(string)
	if !ok {
		return nil
	}
	return &v
}

func decodeSteps(raw any) ([]facade.WorkflowStep, error) {
	if raw == nil {
		return nil, facade.ErrNoSteps
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid steps: %w", err)
	}
	var steps []facade.WorkflowStep
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("invalid steps: %w", err)
	}
	return steps, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
