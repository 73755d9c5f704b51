// Package eda is a client for the Event-Driven Ansible controller API.
package eda

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ansible-mcp/ansiblemcp/internal/config"
	"github.com/ansible-mcp/ansiblemcp/internal/httpx"
)

// Client wraps the EDA REST API.
type Client struct {
	api *httpx.Client
}

// NewClient creates an EDA API client from configuration.
func NewClient(cfg config.EDAConfig, httpClient *http.Client) *Client {
	return &Client{
		api: httpx.NewClient(cfg.URL, httpx.StaticBearer(cfg.Token), httpClient),
	}
}

// Activations

func (c *Client) ListActivations(ctx context.Context) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, "/activations/", nil, nil)
}

func (c *Client) GetActivation(ctx context.Context, id int) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, fmt.Sprintf("/activations/%d/", id), nil, nil)
}

func (c *Client) CreateActivation(ctx context.Context, payload map[string]any) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodPost, "/activations/", nil, payload)
}

func (c *Client) EnableActivation(ctx context.Context, id int) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodPost, fmt.Sprintf("/activations/%d/enable/", id), nil, nil)
}

func (c *Client) DisableActivation(ctx context.Context, id int) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodPost, fmt.Sprintf("/activations/%d/disable/", id), nil, nil)
}

func (c *Client) RestartActivation(ctx context.Context, id int) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodPost, fmt.Sprintf("/activations/%d/restart/", id), nil, nil)
}

func (c *Client) DeleteActivation(ctx context.Context, id int) error {
	_, err := c.api.Do(ctx, http.MethodDelete, fmt.Sprintf("/activations/%d/", id), nil, nil)
	return err
}

// Decision environments

func (c *Client) ListDecisionEnvironments(ctx context.Context) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, "/decision-environments/", nil, nil)
}

func (c *Client) CreateDecisionEnvironment(ctx context.Context, payload map[string]any) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodPost, "/decision-environments/", nil, payload)
}

// Rulebooks

func (c *Client) ListRulebooks(ctx context.Context) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, "/rulebooks/", nil, nil)
}

func (c *Client) GetRulebook(ctx context.Context, id int) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, fmt.Sprintf("/rulebooks/%d/", id), nil, nil)
}

// Event streams

func (c *Client) ListEventStreams(ctx context.Context) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, "/event-streams/", nil, nil)
}

// Rule audits

func (c *Client) ListRuleAudits(ctx context.Context) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, "/audit-rules/", nil, nil)
}

func (c *Client) GetRuleAudit(ctx context.Context, id int) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, fmt.Sprintf("/audit-rules/%d", id), nil, nil)
}

// ListActivationAudits lists audit records for one activation instance.
func (c *Client) ListActivationAudits(ctx context.Context, activationID int) (json.RawMessage, error) {
	query := url.Values{"activation_instance_id": {strconv.Itoa(activationID)}}
	return c.api.Do(ctx, http.MethodGet, "/audit-rules/", query, nil)
}
