package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ansible-mcp/ansiblemcp/internal/auth"
	"github.com/ansible-mcp/ansiblemcp/internal/config"
	"github.com/ansible-mcp/ansiblemcp/internal/errors"
	"github.com/ansible-mcp/ansiblemcp/internal/mcpserver"
)

var (
	serveTransport   string
	serveListen      string
	serveBaseURL     string
	serveRequireAuth bool
)

var serveCmd = &cobra.Command{
	Use:   "serve {aap|eda|insights}",
	Short: "Serve an MCP tool catalog on stdio or SSE",
	Long: `Serves one of the tool catalogs over the Model Context Protocol.

On stdio the catalog runs unauthenticated for a local MCP client. On SSE the
catalog listens on --listen; with a JWT secret configured (or --require-auth),
bearer tokens are verified and tool calls are gated by scope.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"aap", "eda", "insights"},
	RunE:      runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveTransport, "transport", "t", "stdio", "Transport: stdio or sse")
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", ":8000", "SSE listen address")
	serveCmd.Flags().StringVar(&serveBaseURL, "base-url", "", "Public base URL for the SSE endpoint (default: http://localhost<listen>)")
	serveCmd.Flags().BoolVar(&serveRequireAuth, "require-auth", false, "Refuse to serve SSE without a JWT secret")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var verifier *auth.Verifier
	if serveTransport == "sse" {
		if cfg.Auth.JWTSecret != "" || serveRequireAuth {
			verifier, err = auth.NewVerifier(cfg.Auth)
			if err != nil {
				return err
			}
		}
	}

	srv, err := buildCatalog(args[0], cfg, verifier)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch serveTransport {
	case "stdio":
		return srv.ServeStdio(ctx)
	case "sse":
		return serveSSE(ctx, srv)
	default:
		return errors.InvalidParams(fmt.Sprintf("unknown transport %q", serveTransport))
	}
}

func buildCatalog(name string, cfg *config.Config, verifier *auth.Verifier) (*mcpserver.Server, error) {
	switch name {
	case "aap":
		return mcpserver.NewAAPServer(cfg, verifier, slog.Default())
	case "eda":
		return mcpserver.NewEDAServer(cfg, verifier, slog.Default())
	case "insights":
		return mcpserver.NewInsightsServer(cfg, verifier, slog.Default())
	default:
		return nil, errors.InvalidParams(fmt.Sprintf("unknown catalog %q", name))
	}
}

func serveSSE(ctx context.Context, srv *mcpserver.Server) error {
	baseURL := serveBaseURL
	if baseURL == "" {
		baseURL = "http://localhost" + serveListen
	}

	sse := srv.SSEServer(baseURL)
	errCh := make(chan error, 1)
	go func() {
		if err := sse.Start(serveListen); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	slog.Info("serving SSE", "catalog", srv.Name(), "listen", serveListen, "base_url", baseURL)

	select {
	case err := <-errCh:
		return fmt.Errorf("SSE server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return sse.Shutdown(shutdownCtx)
}
