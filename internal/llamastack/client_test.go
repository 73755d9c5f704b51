package llamastack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ansible-mcp/ansiblemcp/internal/config"
	"github.com/ansible-mcp/ansiblemcp/internal/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.StackConfig{BaseURL: srv.URL}, nil)
}

func TestHealth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/health" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
	})

	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
}

func TestHealthUnreachable(t *testing.T) {
	c := NewClient(config.StackConfig{BaseURL: "http://127.0.0.1:1"}, nil)
	err := c.Health(context.Background())
	if !errors.Is(err, errors.CodeStackUnavailable) {
		t.Errorf("expected STACK_UNAVAILABLE, got %v", err)
	}
}

func TestListLLMsFiltersEmbeddings(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"identifier": "anthropic/claude-sonnet", "model_type": "llm", "provider_id": "anthropic"},
				{"identifier": "all-minilm", "model_type": "embedding", "provider_id": "sentence-transformers"},
				{"identifier": "meta-llama/llama-3", "model_type": "llm", "provider_id": "ollama"},
			},
		})
	})

	llms, err := c.ListLLMs(context.Background())
	if err != nil {
		t.Fatalf("ListLLMs: %v", err)
	}
	if len(llms) != 2 {
		t.Fatalf("llms = %d, want 2", len(llms))
	}
	if llms[0].Identifier != "anthropic/claude-sonnet" {
		t.Errorf("llms[0] = %q", llms[0].Identifier)
	}
}

func TestRegisterToolgroup(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/toolgroups" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["toolgroup_id"] != "mcp::ansible" {
			t.Errorf("toolgroup_id = %v", body["toolgroup_id"])
		}
		if body["provider_id"] != MCPProviderID {
			t.Errorf("provider_id = %v", body["provider_id"])
		}
		endpoint, _ := body["mcp_endpoint"].(map[string]any)
		if endpoint["uri"] != "http://localhost:8000/sse" {
			t.Errorf("uri = %v", endpoint["uri"])
		}
		w.WriteHeader(http.StatusOK)
	})

	err := c.RegisterToolgroup(context.Background(), "mcp::ansible", "http://localhost:8000/sse")
	if err != nil {
		t.Fatalf("RegisterToolgroup: %v", err)
	}
}

func TestUnregisterToolgroupNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"unknown toolgroup"}`, http.StatusNotFound)
	})

	err := c.UnregisterToolgroup(context.Background(), "mcp::missing")
	if !errors.Is(err, errors.CodeToolgroupNotFound) {
		t.Errorf("expected TOOLGROUP_NOT_FOUND, got %v", err)
	}
}

func TestCreateAgentAndSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/agents":
			var body struct {
				AgentConfig AgentConfig `json:"agent_config"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			if body.AgentConfig.ToolChoice != "auto" {
				t.Errorf("tool_choice = %q", body.AgentConfig.ToolChoice)
			}
			if body.AgentConfig.SamplingParams.Strategy.Type != "top_p" {
				t.Errorf("strategy = %q", body.AgentConfig.SamplingParams.Strategy.Type)
			}
			json.NewEncoder(w).Encode(map[string]string{"agent_id": "agent-1"})
		case "/v1/agents/agent-1/session":
			json.NewEncoder(w).Encode(map[string]string{"session_id": "sess-1"})
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	})

	ctx := context.Background()
	cfg := NewAgentConfig("anthropic/claude-sonnet", "You are helpful.", []string{"mcp::ansible"}, 0.7, 0.9)

	agentID, err := c.CreateAgent(ctx, cfg)
	if err != nil {
		t.Fatalf("CreateAgent: %v", err)
	}
	if agentID != "agent-1" {
		t.Errorf("agentID = %q", agentID)
	}

	sessionID, err := c.CreateSession(ctx, agentID, "chat-session")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sessionID != "sess-1" {
		t.Errorf("sessionID = %q", sessionID)
	}
}

func TestStreamTurnAccumulatesDeltas(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/agents/agent-1/session/sess-1/turn" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/event-stream")

		chunks := []string{
			`{"event":{"payload":{"event_type":"step_start"}}}`,
			`{"event":{"payload":{"event_type":"step_progress","delta":{"type":"text","text":"Hello"}}}}`,
			`{"event":{"payload":{"event_type":"step_progress","delta":{"type":"tool_call","text":"ignored"}}}}`,
			`{"event":{"payload":{"event_type":"step_progress","delta":{"type":"text","text":", world"}}}}`,
			`{"event":{"payload":{"event_type":"turn_complete"}}}`,
		}
		for _, chunk := range chunks {
			fmt.Fprintf(w, "data: %s\n\n", chunk)
		}
	})

	var deltas []string
	full, err := c.StreamTurn(context.Background(), "agent-1", "sess-1", "hi", func(s string) {
		deltas = append(deltas, s)
	})
	if err != nil {
		t.Fatalf("StreamTurn: %v", err)
	}
	if full != "Hello, world" {
		t.Errorf("full = %q", full)
	}
	if len(deltas) != 2 {
		t.Errorf("deltas = %v", deltas)
	}
}

func TestStreamTurnInferenceError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"error\":{\"message\":\"model overloaded\"}}\n\n")
	})

	_, err := c.StreamTurn(context.Background(), "a", "s", "hi", nil)
	if !errors.Is(err, errors.CodeUpstreamError) {
		t.Errorf("expected UPSTREAM_ERROR, got %v", err)
	}
}
