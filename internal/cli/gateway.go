package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/ansible-mcp/ansiblemcp/internal/errors"
	"github.com/ansible-mcp/ansiblemcp/internal/gateway"
	"github.com/ansible-mcp/ansiblemcp/internal/otelsdk"
)

var (
	gatewayListen      string
	gatewayBaseURL     string
	gatewaySSEPath     string
	gatewayMessagePath string
)

var gatewayCmd = &cobra.Command{
	Use:   "gateway [flags] -- <command> [args...]",
	Short: "Expose a stdio MCP server over SSE",
	Long: `Spawns a stdio MCP server as a child process and re-exposes its tools
over an SSE endpoint.

Everything after -- is the child command line. The gateway mirrors the child's
tool list at startup and relays tool calls for the lifetime of the process.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGateway,
}

func init() {
	gatewayCmd.Flags().StringVarP(&gatewayListen, "listen", "l", ":8080", "SSE listen address")
	gatewayCmd.Flags().StringVar(&gatewayBaseURL, "base-url", "", "Public base URL for the SSE endpoint (default: http://localhost<listen>)")
	gatewayCmd.Flags().StringVar(&gatewaySSEPath, "sse-path", "/sse", "Path of the SSE stream endpoint")
	gatewayCmd.Flags().StringVar(&gatewayMessagePath, "message-path", "/message", "Path of the message endpoint")
}

func runGateway(cmd *cobra.Command, args []string) error {
	dash := cmd.ArgsLenAtDash()
	if dash > 0 {
		args = args[dash:]
	}
	if len(args) == 0 {
		return errors.InvalidParams("child command is required after --")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otelsdk.Setup(ctx, "ansiblemcp-gateway")
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("failed to shut down tracing", "error", err)
		}
	}()

	g, err := gateway.New(ctx, gateway.Options{
		Command: args[0],
		Args:    args[1:],
		Env:     os.Environ(),
		Log:     slog.Default(),
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := g.Close(); err != nil {
			slog.Warn("failed to close gateway child", "error", err)
		}
	}()

	baseURL := gatewayBaseURL
	if baseURL == "" {
		baseURL = "http://localhost" + gatewayListen
	}

	sse := g.SSEServer(baseURL,
		server.WithSSEEndpoint(gatewaySSEPath),
		server.WithMessageEndpoint(gatewayMessagePath),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := sse.Start(gatewayListen); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	slog.Info("gateway serving",
		"child", g.ChildName(),
		"tools", len(g.Tools()),
		"listen", gatewayListen,
		"sse_path", gatewaySSEPath)

	select {
	case err := <-errCh:
		return fmt.Errorf("SSE server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return sse.Shutdown(shutdownCtx)
}
