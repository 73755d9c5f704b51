package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ansible-mcp/ansiblemcp/internal/auth"
	"github.com/ansible-mcp/ansiblemcp/internal/config"
)

func TestNewAAPServerRequiresConfig(t *testing.T) {
	cfg := config.Default()
	// No AAP URL or token set.
	if _, err := NewAAPServer(cfg, nil, discardLogger()); err == nil {
		t.Fatal("expected error for missing AAP configuration")
	}
}

func TestNewAAPServer(t *testing.T) {
	cfg := config.Default()
	cfg.AAP.URL = "https://controller.example.com/api/v2"
	cfg.AAP.Token = "tok"

	srv, err := NewAAPServer(cfg, nil, discardLogger())
	if err != nil {
		t.Fatalf("NewAAPServer: %v", err)
	}
	if srv.Name() != aapServerName {
		t.Errorf("name = %q", srv.Name())
	}
}

func TestScopeGateSkippedWithoutVerifier(t *testing.T) {
	c := newTestAAPCatalog(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"count": 0})
	})

	handler := c.srv.withScope("list_inventories", auth.ScopeRead, c.handleListInventories)
	result, err := handler(context.Background(), newTestRequest(nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	out := decodeResult(t, result)
	if out["error"] != nil {
		t.Errorf("unexpected error result: %v", out)
	}
}

func TestScopeGateRejectsMissingIdentity(t *testing.T) {
	c := newTestAAPCatalog(t, newTestVerifier(t), func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not reach the controller without identity")
	})

	handler := c.srv.withScope("list_inventories", auth.ScopeRead, c.handleListInventories)
	result, err := handler(context.Background(), newTestRequest(nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	out := decodeResult(t, result)
	errObj, ok := out["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error result, got %v", out)
	}
	if errObj["code"] != "UNAUTHORIZED" {
		t.Errorf("code = %v", errObj["code"])
	}
}

func TestScopeGateReturnsUpgradePayload(t *testing.T) {
	c := newTestAAPCatalog(t, newTestVerifier(t), func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not reach the controller on scope denial")
	})

	id := &auth.Identity{Email: "dev@example.com", Scopes: []string{auth.ScopeRead}}
	ctx := auth.WithIdentity(context.Background(), id)

	handler := c.srv.withScope("run_job", auth.ScopeExecute, c.handleRunJob)
	result, err := handler(ctx, newTestRequest(map[string]any{"template_id": 1}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	out := decodeResult(t, result)
	if out["error_type"] != "insufficient_scope" {
		t.Fatalf("expected scope-upgrade payload, got %v", out)
	}
	if out["required_scope"] != auth.ScopeExecute {
		t.Errorf("required_scope = %v", out["required_scope"])
	}
	if out["scope_upgrade_endpoint"] != "http://localhost:8002/api/upgrade-scope" {
		t.Errorf("scope_upgrade_endpoint = %v", out["scope_upgrade_endpoint"])
	}
}

func TestScopeGatePassesWithScope(t *testing.T) {
	c := newTestAAPCatalog(t, newTestVerifier(t), func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"count": 2})
	})

	id := &auth.Identity{Email: "ops@example.com", Scopes: []string{auth.ScopeRead}}
	ctx := auth.WithIdentity(context.Background(), id)

	handler := c.srv.withScope("list_inventories", auth.ScopeRead, c.handleListInventories)
	result, err := handler(ctx, newTestRequest(nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	out := decodeResult(t, result)
	if out["count"] != float64(2) {
		t.Errorf("count = %v", out["count"])
	}
}

func TestInfoToolsNeedNoScope(t *testing.T) {
	c := newTestAAPCatalog(t, newTestVerifier(t), func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"version":"4.6.0"}`))
	})

	// Token with no scopes at all.
	id := &auth.Identity{Email: "viewer@example.com"}
	ctx := auth.WithIdentity(context.Background(), id)

	handler := c.srv.withScope("get_server_info", scopeNone, c.handleServerInfo)
	result, err := handler(ctx, newTestRequest(nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	out := decodeResult(t, result)
	if out["authenticated_user"] != "viewer@example.com" {
		t.Errorf("authenticated_user = %v", out["authenticated_user"])
	}
	if out["server_name"] != aapServerName {
		t.Errorf("server_name = %v", out["server_name"])
	}
}
