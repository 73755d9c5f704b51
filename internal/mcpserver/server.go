// Package mcpserver exposes the AAP, EDA and Insights tool catalogs over the
// Model Context Protocol. Each catalog is a Server that can run on stdio or
// SSE; on SSE, bearer tokens are verified per connection and tool calls are
// gated by scope.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ansible-mcp/ansiblemcp/internal/auth"
	"github.com/ansible-mcp/ansiblemcp/internal/errors"
)

const serverVersion = "0.1.0"

// scopeNone marks info tools that require a valid token but no specific scope.
const scopeNone = ""

// Server wraps an MCP tool catalog with optional bearer-token enforcement.
// A nil verifier disables all auth checks, which is the stdio default.
type Server struct {
	mcp      *server.MCPServer
	name     string
	verifier *auth.Verifier
	log      *slog.Logger
}

func newServer(name string, verifier *auth.Verifier, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		mcp:      server.NewMCPServer(name, serverVersion),
		name:     name,
		verifier: verifier,
		log:      log,
	}
}

// Name returns the catalog name used in server info responses.
func (s *Server) Name() string {
	return s.name
}

// addTool registers a tool with its required scope. The handler only runs
// after the scope gate passes; with no verifier the gate is a no-op.
func (s *Server) addTool(tool mcp.Tool, scope string, handler server.ToolHandlerFunc) {
	s.mcp.AddTool(tool, s.withScope(tool.Name, scope, handler))
}

func (s *Server) withScope(name, scope string, handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if s.verifier == nil {
			return handler(ctx, request)
		}
		id, ok := auth.IdentityFrom(ctx)
		if !ok {
			return errorResult(errors.CodeUnauthorized, "missing or invalid bearer token"), nil
		}
		if scope != scopeNone && !id.HasScope(scope) {
			s.log.Warn("scope denied", "tool", name, "required", scope, "user", id.Email)
			return jsonResult(s.verifier.UpgradeInfo(id, scope)), nil
		}
		return handler(ctx, request)
	}
}

// ServeStdio runs the catalog over stdin/stdout. Logs must go to stderr;
// stdout carries the protocol.
func (s *Server) ServeStdio(ctx context.Context) error {
	s.log.Info("serving on stdio", "server", s.name)
	stdio := server.NewStdioServer(s.mcp)
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil {
		return fmt.Errorf("stdio transport: %w", err)
	}
	return nil
}

// SSEServer wraps the catalog in an SSE transport rooted at baseURL. The
// caller owns Start and Shutdown.
func (s *Server) SSEServer(baseURL string) *server.SSEServer {
	return server.NewSSEServer(s.mcp,
		server.WithBaseURL(baseURL),
		server.WithSSEContextFunc(s.sseContext),
	)
}

// sseContext verifies the Authorization header once per request and stashes
// the identity. Invalid tokens are not rejected here; the scope gate in each
// tool handler reports the failure as a tool result the model can read.
func (s *Server) sseContext(ctx context.Context, r *http.Request) context.Context {
	if s.verifier == nil {
		return ctx
	}
	id, err := s.verifier.VerifyHeader(r.Header.Get("Authorization"))
	if err != nil {
		s.log.Warn("token rejected", "remote", r.RemoteAddr, "error", err)
		return ctx
	}
	return auth.WithIdentity(ctx, id)
}

// Helper functions

// rawResult wraps an upstream JSON payload as a text result unchanged.
func rawResult(raw json.RawMessage) *mcp.CallToolResult {
	return mcp.NewToolResultText(string(raw))
}

// apiErrorResult converts an ansiblemcp error to an MCP error result.
func apiErrorResult(err error) *mcp.CallToolResult {
	code := errors.Code(err)
	if code == "" {
		code = "INTERNAL_ERROR"
	}
	return errorResult(code, err.Error())
}

// errorResult creates an MCP error result.
func errorResult(code, message string) *mcp.CallToolResult {
	errorData := map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	}

	jsonBytes, err := json.Marshal(errorData)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error: %s - %s", code, message))
	}

	return mcp.NewToolResultText(string(jsonBytes))
}

// jsonResult creates an MCP success result from a JSON-serializable object.
func jsonResult(data any) *mcp.CallToolResult {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return errorResult("INTERNAL_ERROR", fmt.Sprintf("failed to marshal response: %s", err))
	}

	return mcp.NewToolResultText(string(jsonBytes))
}

// objectArg returns a JSON-object argument, or nil when absent.
func objectArg(request mcp.CallToolRequest, key string) map[string]any {
	if m, ok := request.GetArguments()[key].(map[string]any); ok {
		return m
	}
	return nil
}

// stringSliceArg returns a string-array argument, or nil when absent.
func stringSliceArg(request mcp.CallToolRequest, key string) []string {
	raw, ok := request.GetArguments()[key].([]any)
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
