package mcpserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ansible-mcp/ansiblemcp/internal/aap"
	"github.com/ansible-mcp/ansiblemcp/internal/auth"
	"github.com/ansible-mcp/ansiblemcp/internal/config"
)

// newTestRequest creates a CallToolRequest for testing.
func newTestRequest(arguments map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: arguments,
		},
	}
}

// getResultText extracts the text from a CallToolResult for testing.
func getResultText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if textContent, ok := mcp.AsTextContent(result.Content[0]); ok {
		return textContent.Text
	}
	return ""
}

// decodeResult parses a tool result's text payload as JSON.
func decodeResult(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal([]byte(getResultText(result)), &out); err != nil {
		t.Fatalf("result is not JSON: %v\n%s", err, getResultText(result))
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestAAPCatalog points an AAP catalog at a fake controller.
func newTestAAPCatalog(t *testing.T, verifier *auth.Verifier, handler http.HandlerFunc) *aapCatalog {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.AAP.URL = srv.URL
	cfg.AAP.Token = "controller-token"

	return &aapCatalog{
		srv:    newServer(aapServerName, verifier, discardLogger()),
		client: aap.NewClient(cfg.AAP, nil),
		cfg:    cfg,
	}
}

func newTestVerifier(t *testing.T) *auth.Verifier {
	t.Helper()

	v, err := auth.NewVerifier(config.AuthConfig{
		JWTSecret:     "test-secret",
		ServerURI:     "http://localhost:8001",
		AuthServerURI: "http://localhost:8002",
	})
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	return v
}
