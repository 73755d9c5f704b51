package insights

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ansible-mcp/ansiblemcp/internal/config"
)

// newTestClient wires a client against a fake console API and a fake SSO
// token endpoint so the client-credentials flow runs for real.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int) {
	t.Helper()

	tokenRequests := 0
	sso := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenRequests++
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse token request: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "client_credentials" {
			t.Errorf("grant_type = %q", got)
		}
		if got := r.PostForm.Get("scope"); got != "api.console" {
			t.Errorf("scope = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "sso-token",
			"token_type":   "Bearer",
			"expires_in":   900,
		})
	}))
	t.Cleanup(sso.Close)

	api := httptest.NewServer(handler)
	t.Cleanup(api.Close)

	c := NewClient(config.InsightsConfig{
		BaseURL:      api.URL,
		ClientID:     "svc-account",
		ClientSecret: "svc-secret",
		SSOURL:       sso.URL,
	}, nil)
	return c, &tokenRequests
}

func TestListSystemsUsesSSOToken(t *testing.T) {
	c, tokenRequests := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/inventory/v1/hosts" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sso-token" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if got := r.URL.Query().Get("limit"); got != "50" {
			t.Errorf("limit = %q, want default 50", got)
		}
		if got := r.URL.Query().Get("display_name"); got != "web01" {
			t.Errorf("display_name = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"total": 1})
	})

	raw, err := c.ListSystems(context.Background(), ListParams{}, "web01", "")
	if err != nil {
		t.Fatalf("ListSystems() error: %v", err)
	}
	var out struct {
		Total int `json:"total"`
	}
	json.Unmarshal(raw, &out)
	if out.Total != 1 {
		t.Errorf("total = %d", out.Total)
	}
	if *tokenRequests != 1 {
		t.Errorf("token requests = %d, want 1", *tokenRequests)
	}
}

func TestTokenIsCachedAcrossRequests(t *testing.T) {
	c, tokenRequests := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"total": 0})
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := c.ListCompliancePolicies(ctx, ListParams{}); err != nil {
			t.Fatalf("ListCompliancePolicies: %v", err)
		}
	}
	if *tokenRequests != 1 {
		t.Errorf("token requests = %d, want 1 (token should be cached)", *tokenRequests)
	}
}

func TestVulnerabilityFilters(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("affecting") != "true" {
			t.Errorf("affecting = %q", q.Get("affecting"))
		}
		if q.Get("cvss_score_gte") != "7.5" {
			t.Errorf("cvss_score_gte = %q", q.Get("cvss_score_gte"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	})

	if _, err := c.ListVulnerabilities(context.Background(), ListParams{}, true, 7.5, 0); err != nil {
		t.Fatalf("ListVulnerabilities: %v", err)
	}
}

func TestAssociateCompliancePolicyPath(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %q", r.Method)
		}
		if r.URL.Path != "/compliance/v2/policies/pol-1/systems/sys-9" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	})

	if _, err := c.AssociateCompliancePolicy(context.Background(), "pol-1", "sys-9"); err != nil {
		t.Fatalf("AssociateCompliancePolicy: %v", err)
	}
}

func TestListRHELSubscriptionsEscapesProduct(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rhsm-subscriptions/v1/instances/products/RHEL for x86" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[]}`))
	})

	if _, err := c.ListRHELSubscriptions(context.Background(), ListParams{}, ""); err != nil {
		t.Fatalf("ListRHELSubscriptions: %v", err)
	}
}

func TestCreatePolicyDefaultsAction(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["actions"] != "notification" {
			t.Errorf("actions = %v, want notification default", body["actions"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"p1"}`))
	})

	_, err := c.CreatePolicy(context.Background(), PolicyCreate{
		Name:       "high-load",
		Conditions: "facts.cpu_load > 90",
		IsEnabled:  true,
	})
	if err != nil {
		t.Fatalf("CreatePolicy: %v", err)
	}
}

func TestCreateContentTemplateForcesUseLatest(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["use_latest"] != true {
			t.Errorf("use_latest = %v", body["use_latest"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	})

	_, err := c.CreateContentTemplate(context.Background(), ContentTemplateCreate{
		Name: "rhel9-baseline", Arch: "x86_64", Version: "9",
	})
	if err != nil {
		t.Fatalf("CreateContentTemplate: %v", err)
	}
}
