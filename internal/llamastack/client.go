// Package llamastack is a client for the llama-stack HTTP API: model and
// toolgroup registries plus the agents API with streaming turns.
package llamastack

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ansible-mcp/ansiblemcp/internal/config"
	"github.com/ansible-mcp/ansiblemcp/internal/errors"
)

// MCPProviderID is the llama-stack provider for MCP-backed toolgroups.
const MCPProviderID = "model-context-protocol"

// Client talks to a llama-stack server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the configured stack. A nil httpClient uses
// a default without a global timeout; streaming turns can run long, so
// callers bound requests with contexts instead.
func NewClient(cfg config.StackConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
	}
}

// BaseURL returns the stack base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.StackUnavailable(c.baseURL, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.UpstreamWrap(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Upstream(resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Health checks that the stack is reachable and reporting OK.
func (c *Client) Health(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/health", nil, &out); err != nil {
		return err
	}
	if !strings.EqualFold(out.Status, "ok") {
		return errors.StackUnavailable(c.baseURL, fmt.Errorf("health status %q", out.Status))
	}
	return nil
}

// Version returns the stack's reported version.
func (c *Client) Version(ctx context.Context) (string, error) {
	var out struct {
		Version string `json:"version"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/version", nil, &out); err != nil {
		return "", err
	}
	return out.Version, nil
}

// Model is one entry in the stack's model registry.
type Model struct {
	Identifier string `json:"identifier"`
	ModelType  string `json:"model_type"`
	ProviderID string `json:"provider_id"`
}

// ListModels returns all registered models.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	var out struct {
		Data []Model `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/models", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ListLLMs returns the registered models usable for inference.
func (c *Client) ListLLMs(ctx context.Context) ([]Model, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	llms := models[:0:0]
	for _, m := range models {
		if m.ModelType == "llm" {
			llms = append(llms, m)
		}
	}
	return llms, nil
}

// MCPEndpoint is the SSE URI of an MCP toolgroup provider.
type MCPEndpoint struct {
	URI string `json:"uri"`
}

// Toolgroup is one entry in the stack's toolgroup registry.
type Toolgroup struct {
	Identifier  string       `json:"identifier"`
	ProviderID  string       `json:"provider_id"`
	MCPEndpoint *MCPEndpoint `json:"mcp_endpoint,omitempty"`
}

// ListToolgroups returns all registered toolgroups.
func (c *Client) ListToolgroups(ctx context.Context) ([]Toolgroup, error) {
	var out struct {
		Data []Toolgroup `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/toolgroups", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// RegisterToolgroup registers an MCP endpoint under the given toolgroup id,
// conventionally "mcp::<name>".
func (c *Client) RegisterToolgroup(ctx context.Context, id, endpointURI string) error {
	payload := map[string]any{
		"toolgroup_id": id,
		"provider_id":  MCPProviderID,
		"mcp_endpoint": MCPEndpoint{URI: endpointURI},
	}
	return c.do(ctx, http.MethodPost, "/v1/toolgroups", payload, nil)
}

// UnregisterToolgroup removes a toolgroup from the registry.
func (c *Client) UnregisterToolgroup(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, "/v1/toolgroups/"+url.PathEscape(id), nil, nil)
	if errors.Is(err, errors.CodeUpstreamError) && strings.Contains(err.Error(), "returned 404") {
		return errors.ToolgroupNotFound(id)
	}
	return err
}

// Agents API

// SamplingStrategy selects the decoding strategy for a turn.
type SamplingStrategy struct {
	Type        string  `json:"type"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

// SamplingParams wraps the strategy the agents API expects.
type SamplingParams struct {
	Strategy SamplingStrategy `json:"strategy"`
}

// AgentConfig describes an agent backed by a model and a set of toolgroups.
type AgentConfig struct {
	Model                    string         `json:"model"`
	Instructions             string         `json:"instructions"`
	SamplingParams           SamplingParams `json:"sampling_params"`
	Toolgroups               []string       `json:"toolgroups"`
	ToolChoice               string         `json:"tool_choice"`
	InputShields             []string       `json:"input_shields"`
	OutputShields            []string       `json:"output_shields"`
	EnableSessionPersistence bool           `json:"enable_session_persistence"`
}

// NewAgentConfig builds an agent config with top_p sampling and automatic
// tool choice.
func NewAgentConfig(model, instructions string, toolgroups []string, temperature, topP float64) AgentConfig {
	return AgentConfig{
		Model:        model,
		Instructions: instructions,
		SamplingParams: SamplingParams{
			Strategy: SamplingStrategy{
				Type:        "top_p",
				Temperature: temperature,
				TopP:        topP,
			},
		},
		Toolgroups:               toolgroups,
		ToolChoice:               "auto",
		InputShields:             []string{},
		OutputShields:            []string{},
		EnableSessionPersistence: true,
	}
}

// CreateAgent registers an agent and returns its id.
func (c *Client) CreateAgent(ctx context.Context, cfg AgentConfig) (string, error) {
	var out struct {
		AgentID string `json:"agent_id"`
	}
	payload := map[string]any{"agent_config": cfg}
	if err := c.do(ctx, http.MethodPost, "/v1/agents", payload, &out); err != nil {
		return "", err
	}
	return out.AgentID, nil
}

// CreateSession opens a named session on an agent and returns its id.
func (c *Client) CreateSession(ctx context.Context, agentID, name string) (string, error) {
	var out struct {
		SessionID string `json:"session_id"`
	}
	payload := map[string]any{"session_name": name}
	path := fmt.Sprintf("/v1/agents/%s/session", url.PathEscape(agentID))
	if err := c.do(ctx, http.MethodPost, path, payload, &out); err != nil {
		return "", err
	}
	return out.SessionID, nil
}

// TurnMessage is one message in a turn request.
type TurnMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// turnChunk is one SSE event of a streaming turn. Only step_progress text
// deltas carry inference output; everything else is progress bookkeeping.
type turnChunk struct {
	Event struct {
		Payload struct {
			EventType string `json:"event_type"`
			Delta     struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"delta"`
		} `json:"payload"`
	} `json:"event"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// StreamTurn sends a user message on an existing session and streams the
// response. onDelta is called for each text fragment as it arrives; the
// accumulated response is returned when the stream ends.
func (c *Client) StreamTurn(ctx context.Context, agentID, sessionID, userMessage string, onDelta func(string)) (string, error) {
	payload := map[string]any{
		"messages": []TurnMessage{{Role: "user", Content: userMessage}},
		"stream":   true,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode turn request: %w", err)
	}

	path := fmt.Sprintf("%s/v1/agents/%s/session/%s/turn",
		c.baseURL, url.PathEscape(agentID), url.PathEscape(sessionID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, path, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to build turn request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.StackUnavailable(c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", errors.Upstream(resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "" || data == "[DONE]" {
			continue
		}

		var chunk turnChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Partial or non-JSON keepalive, skip.
			continue
		}
		if chunk.Error != nil {
			return full.String(), errors.Upstream(resp.StatusCode, chunk.Error.Message)
		}
		if chunk.Event.Payload.EventType == "step_progress" && chunk.Event.Payload.Delta.Type == "text" {
			full.WriteString(chunk.Event.Payload.Delta.Text)
			if onDelta != nil {
				onDelta(chunk.Event.Payload.Delta.Text)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return full.String(), errors.UpstreamWrap(err)
	}
	return full.String(), nil
}

// WaitHealthy polls Health until the stack responds or the context expires.
func (c *Client) WaitHealthy(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := c.Health(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.StackUnavailable(c.baseURL, ctx.Err())
		case <-ticker.C:
		}
	}
}
