package eda

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ansible-mcp/ansiblemcp/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.EDAConfig{URL: srv.URL, Token: "eda-token"}, nil)
}

func TestActivationLifecyclePaths(t *testing.T) {
	var gotPaths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPaths = append(gotPaths, r.Method+" "+r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": 5})
	})

	ctx := context.Background()
	if _, err := c.GetActivation(ctx, 5); err != nil {
		t.Fatalf("GetActivation: %v", err)
	}
	if _, err := c.EnableActivation(ctx, 5); err != nil {
		t.Fatalf("EnableActivation: %v", err)
	}
	if _, err := c.DisableActivation(ctx, 5); err != nil {
		t.Fatalf("DisableActivation: %v", err)
	}
	if _, err := c.RestartActivation(ctx, 5); err != nil {
		t.Fatalf("RestartActivation: %v", err)
	}
	if err := c.DeleteActivation(ctx, 5); err != nil {
		t.Fatalf("DeleteActivation: %v", err)
	}

	want := []string{
		"GET /activations/5/",
		"POST /activations/5/enable/",
		"POST /activations/5/disable/",
		"POST /activations/5/restart/",
		"DELETE /activations/5/",
	}
	if len(gotPaths) != len(want) {
		t.Fatalf("got %d requests, want %d", len(gotPaths), len(want))
	}
	for i := range want {
		if gotPaths[i] != want[i] {
			t.Errorf("request %d = %q, want %q", i, gotPaths[i], want[i])
		}
	}
}

func TestListActivationAuditsQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("activation_instance_id"); got != "9" {
			t.Errorf("activation_instance_id = %q, want 9", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"count": 0})
	})

	if _, err := c.ListActivationAudits(context.Background(), 9); err != nil {
		t.Fatalf("ListActivationAudits: %v", err)
	}
}

func TestCreateActivationForwardsPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["name"] != "restart-nginx" {
			t.Errorf("name = %v", body["name"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": 12})
	})

	raw, err := c.CreateActivation(context.Background(), map[string]any{"name": "restart-nginx"})
	if err != nil {
		t.Fatalf("CreateActivation: %v", err)
	}
	var out struct {
		ID int `json:"id"`
	}
	json.Unmarshal(raw, &out)
	if out.ID != 12 {
		t.Errorf("id = %d", out.ID)
	}
}
