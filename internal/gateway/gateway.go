// Package gateway bridges a stdio-only MCP server onto an SSE endpoint. It
// spawns the stdio command as a child process, discovers its tools, and
// republishes them on a local MCP server; tool calls are forwarded to the
// child over the stdio transport.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ansible-mcp/ansiblemcp/internal/errors"
)

// initTimeout bounds the child's initialize handshake.
const initTimeout = 30 * time.Second

// toolCaller is the slice of the MCP client the gateway uses. The concrete
// implementation is mcp-go's stdio client.
type toolCaller interface {
	Initialize(ctx context.Context, request mcp.InitializeRequest) (*mcp.InitializeResult, error)
	ListTools(ctx context.Context, request mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

// Options configures a gateway.
type Options struct {
	// Command and Args name the stdio MCP server to spawn.
	Command string
	Args    []string
	// Env is appended to the child's environment, KEY=VALUE form.
	Env []string
	// BaseURL is the public URL clients use to reach the SSE endpoint.
	BaseURL string
	Log     *slog.Logger
}

// Gateway owns the child process and the mirrored MCP server.
type Gateway struct {
	child     toolCaller
	mcp       *server.MCPServer
	tools     []mcp.Tool
	childName string
	log       *slog.Logger
	tracer    trace.Tracer
}

// New spawns the stdio child, performs the MCP handshake, and mirrors its
// tools. The returned gateway must be closed to reap the child.
func New(ctx context.Context, opts Options) (*Gateway, error) {
	if opts.Command == "" {
		return nil, errors.InvalidParams("gateway command is required")
	}

	child, err := client.NewStdioMCPClient(opts.Command, opts.Env, opts.Args...)
	if err != nil {
		return nil, errors.GatewayFailed(err)
	}

	g, err := bridge(ctx, child, opts.Log)
	if err != nil {
		child.Close()
		return nil, err
	}
	return g, nil
}

// bridge runs the handshake and tool mirroring against an already-started
// child. Split from New so tests can supply a fake child.
func bridge(ctx context.Context, child toolCaller, log *slog.Logger) (*Gateway, error) {
	if log == nil {
		log = slog.Default()
	}

	g := &Gateway{
		child:  child,
		log:    log,
		tracer: otel.Tracer("ansiblemcp/gateway"),
	}

	initCtx, cancel := context.WithTimeout(ctx, initTimeout)
	defer cancel()

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "ansiblemcp-gateway",
		Version: "0.1.0",
	}

	initResult, err := g.child.Initialize(initCtx, initRequest)
	if err != nil {
		return nil, errors.GatewayFailed(fmt.Errorf("initialize handshake: %w", err))
	}
	g.childName = initResult.ServerInfo.Name

	toolsResult, err := g.child.ListTools(initCtx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, errors.GatewayFailed(fmt.Errorf("tools/list: %w", err))
	}
	g.tools = toolsResult.Tools

	g.mcp = server.NewMCPServer(g.childName+"-gateway", initResult.ServerInfo.Version)
	for _, tool := range g.tools {
		g.mcp.AddTool(tool, g.forward(tool.Name))
	}

	g.log.Info("gateway bridged",
		"child", g.childName,
		"tools", len(g.tools))
	return g, nil
}

// forward returns a handler that relays a tool call to the child unchanged.
func (g *Gateway) forward(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := g.tracer.Start(ctx, "gateway.forward",
			trace.WithAttributes(
				attribute.String("mcp.tool", name),
				attribute.String("mcp.child", g.childName),
			))
		defer span.End()

		relay := mcp.CallToolRequest{}
		relay.Params.Name = name
		relay.Params.Arguments = request.GetArguments()

		result, err := g.child.CallTool(ctx, relay)
		if err != nil {
			span.RecordError(err)
			g.log.Error("forwarded call failed", "tool", name, "error", err)
			return gatewayErrorResult(err), nil
		}
		return result, nil
	}
}

// ChildName returns the name the child reported during the handshake.
func (g *Gateway) ChildName() string {
	return g.childName
}

// Tools returns the mirrored tool list.
func (g *Gateway) Tools() []mcp.Tool {
	return g.tools
}

// SSEServer wraps the mirrored server in an SSE transport rooted at baseURL.
func (g *Gateway) SSEServer(baseURL string, opts ...server.SSEOption) *server.SSEServer {
	all := append([]server.SSEOption{server.WithBaseURL(baseURL)}, opts...)
	return server.NewSSEServer(g.mcp, all...)
}

// Close shuts down the child process.
func (g *Gateway) Close() error {
	if err := g.child.Close(); err != nil {
		return errors.GatewayFailed(err)
	}
	return nil
}

// gatewayErrorResult reports a forwarding failure as a coded tool result so
// the SSE client sees a readable error instead of a dropped call.
func gatewayErrorResult(err error) *mcp.CallToolResult {
	code := errors.Code(err)
	if code == "" {
		code = errors.CodeGatewayFailed
	}
	payload, marshalErr := json.Marshal(map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": err.Error(),
		},
	})
	if marshalErr != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error: %s - %s", code, err))
	}
	return mcp.NewToolResultText(string(payload))
}
