// Package aap is a client for the Ansible Automation Platform controller
// API. Methods return the controller's JSON responses unmodified, since the
// MCP tools pass them straight through to the model.
package aap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ansible-mcp/ansiblemcp/internal/config"
	"github.com/ansible-mcp/ansiblemcp/internal/errors"
	"github.com/ansible-mcp/ansiblemcp/internal/httpx"
)

// ValidSources are the inventory source types the controller accepts.
var ValidSources = []string{
	"file", "constructed", "scm", "ec2", "gce", "azure_rm", "vmware",
	"satellite6", "openstack", "rhv", "controller", "insights", "terraform",
	"openshift_virtualization",
}

// Client wraps the controller REST API.
type Client struct {
	api *httpx.Client
}

// NewClient creates a controller API client from configuration.
func NewClient(cfg config.AAPConfig, httpClient *http.Client) *Client {
	return &Client{
		api: httpx.NewClient(cfg.URL, httpx.StaticBearer(cfg.Token), httpClient),
	}
}

// BaseURL returns the controller API base URL.
func (c *Client) BaseURL() string {
	return c.api.BaseURL()
}

// Ping checks controller reachability and returns its capability summary.
func (c *Client) Ping(ctx context.Context) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, "/ping/", nil, nil)
}

// Inventories

func (c *Client) ListInventories(ctx context.Context) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, "/inventories/", nil, nil)
}

func (c *Client) GetInventory(ctx context.Context, id int) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, fmt.Sprintf("/inventories/%d/", id), nil, nil)
}

// InventoryCreate is the payload for creating an inventory.
type InventoryCreate struct {
	Name                         string         `json:"name"`
	Organization                 int            `json:"organization"`
	Description                  string         `json:"description"`
	Kind                         string         `json:"kind"`
	HostFilter                   string         `json:"host_filter"`
	Variables                    map[string]any `json:"variables,omitempty"`
	PreventInstanceGroupFallback bool           `json:"prevent_instance_group_fallback"`
}

func (c *Client) CreateInventory(ctx context.Context, payload InventoryCreate) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodPost, "/inventories/", nil, payload)
}

func (c *Client) DeleteInventory(ctx context.Context, id int) error {
	_, err := c.api.Do(ctx, http.MethodDelete, fmt.Sprintf("/inventories/%d/", id), nil, nil)
	return err
}

// Inventory sources

func (c *Client) ListInventorySources(ctx context.Context) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, "/inventory_sources/", nil, nil)
}

func (c *Client) GetInventorySource(ctx context.Context, id int) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, fmt.Sprintf("/inventory_sources/%d/", id), nil, nil)
}

// InventorySourceCreate is the payload for creating a dynamic inventory source.
type InventorySourceCreate struct {
	Name           string         `json:"name"`
	Inventory      int            `json:"inventory"`
	Source         string         `json:"source"`
	Credential     int            `json:"credential"`
	SourceVars     map[string]any `json:"source_vars,omitempty"`
	UpdateOnLaunch bool           `json:"update_on_launch"`
	Timeout        int            `json:"timeout"`
}

func (c *Client) CreateInventorySource(ctx context.Context, payload InventorySourceCreate) (json.RawMessage, error) {
	if !isValidSource(payload.Source) {
		return nil, errors.InvalidParams(fmt.Sprintf("invalid source type %q", payload.Source))
	}
	if payload.Credential == 0 {
		return nil, errors.InvalidParams("credential is required to create an inventory source")
	}
	return c.api.Do(ctx, http.MethodPost, "/inventory_sources/", nil, payload)
}

func (c *Client) UpdateInventorySource(ctx context.Context, id int, update map[string]any) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodPatch, fmt.Sprintf("/inventory_sources/%d/", id), nil, update)
}

func (c *Client) DeleteInventorySource(ctx context.Context, id int) error {
	_, err := c.api.Do(ctx, http.MethodDelete, fmt.Sprintf("/inventory_sources/%d/", id), nil, nil)
	return err
}

func (c *Client) SyncInventorySource(ctx context.Context, id int) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodPost, fmt.Sprintf("/inventory_sources/%d/update/", id), nil, nil)
}

// Job templates

func (c *Client) ListJobTemplates(ctx context.Context) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, "/job_templates/", nil, nil)
}

func (c *Client) GetJobTemplate(ctx context.Context, id int) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, fmt.Sprintf("/job_templates/%d/", id), nil, nil)
}

// JobTemplateCreate is the payload for creating a job template. The Ask*
// flags mirror the controller's prompt-on-launch switches and are derived
// from which optional fields are present.
type JobTemplateCreate struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	JobType     string `json:"job_type"`
	Project     int    `json:"project"`
	Playbook    string `json:"playbook"`
	Inventory   int    `json:"inventory"`
	Forks       int    `json:"forks"`
	Limit       string `json:"limit"`
	Verbosity   int    `json:"verbosity"`
	Timeout     int    `json:"timeout"`

	Credential           int            `json:"credential,omitempty"`
	ExecutionEnvironment int            `json:"execution_environment,omitempty"`
	Labels               []string       `json:"labels,omitempty"`
	JobTags              []string       `json:"job_tags,omitempty"`
	SkipTags             []string       `json:"skip_tags,omitempty"`
	ExtraVars            map[string]any `json:"extra_vars,omitempty"`
	SurveySpec           map[string]any `json:"survey_spec,omitempty"`

	AskVariablesOnLaunch            bool   `json:"ask_variables_on_launch"`
	AskTagsOnLaunch                 bool   `json:"ask_tags_on_launch"`
	AskSkipTagsOnLaunch             bool   `json:"ask_skip_tags_on_launch"`
	AskCredentialOnLaunch           bool   `json:"ask_credential_on_launch"`
	AskExecutionEnvironmentOnLaunch bool   `json:"ask_execution_environment_on_launch"`
	AskLabelsOnLaunch               bool   `json:"ask_labels_on_launch"`
	AskInventoryOnLaunch            bool   `json:"ask_inventory_on_launch"`
	AskJobTypeOnLaunch              bool   `json:"ask_job_type_on_launch"`
	BecomeEnabled                   bool   `json:"become_enabled"`
	AllowSimultaneous               bool   `json:"allow_simultaneous"`
	SCMBranch                       string `json:"scm_branch"`
	WebhookService                  string `json:"webhook_service"`
	PreventInstanceGroupFallback    bool   `json:"prevent_instance_group_fallback"`
}

// FillPromptDefaults derives the Ask* switches from the optional fields,
// matching the behavior the agent tools expect: anything not pinned at
// creation time is prompted for at launch.
func (t *JobTemplateCreate) FillPromptDefaults() {
	t.AskVariablesOnLaunch = len(t.ExtraVars) > 0
	t.AskTagsOnLaunch = len(t.JobTags) > 0
	t.AskSkipTagsOnLaunch = len(t.SkipTags) > 0
	t.AskCredentialOnLaunch = t.Credential == 0
	t.AskExecutionEnvironmentOnLaunch = t.ExecutionEnvironment == 0
	t.AskLabelsOnLaunch = t.Labels == nil
	t.AskInventoryOnLaunch = false
	t.AskJobTypeOnLaunch = false
}

func (c *Client) CreateJobTemplate(ctx context.Context, payload JobTemplateCreate) (json.RawMessage, error) {
	if payload.JobType == "" {
		payload.JobType = "run"
	}
	return c.api.Do(ctx, http.MethodPost, "/job_templates/", nil, payload)
}

func (c *Client) UpdateJobTemplate(ctx context.Context, id int, update map[string]any) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodPatch, fmt.Sprintf("/job_templates/%d/", id), nil, update)
}

func (c *Client) DeleteJobTemplate(ctx context.Context, id int) error {
	_, err := c.api.Do(ctx, http.MethodDelete, fmt.Sprintf("/job_templates/%d/", id), nil, nil)
	return err
}

// LaunchJob launches a job template, optionally with extra variables.
func (c *Client) LaunchJob(ctx context.Context, templateID int, extraVars map[string]any) (json.RawMessage, error) {
	body := map[string]any{"extra_vars": extraVars}
	if extraVars == nil {
		body["extra_vars"] = map[string]any{}
	}
	return c.api.Do(ctx, http.MethodPost, fmt.Sprintf("/job_templates/%d/launch/", templateID), nil, body)
}

// AssociateCredential attaches a credential to a job template.
func (c *Client) AssociateCredential(ctx context.Context, templateID, credentialID int) (json.RawMessage, error) {
	body := map[string]any{"id": credentialID}
	return c.api.Do(ctx, http.MethodPost, fmt.Sprintf("/job_templates/%d/credentials/", templateID), nil, body)
}

// Jobs

func (c *Client) ListJobs(ctx context.Context) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, "/jobs/", nil, nil)
}

func (c *Client) GetJob(ctx context.Context, id int) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, fmt.Sprintf("/jobs/%d/", id), nil, nil)
}

// ListRecentJobs lists jobs created within the last given number of hours.
func (c *Client) ListRecentJobs(ctx context.Context, hours int) (json.RawMessage, string, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour).Format("2006-01-02T15:04:05") + "Z"
	query := url.Values{"created__gte": {cutoff}}
	raw, err := c.api.Do(ctx, http.MethodGet, "/jobs/", query, nil)
	return raw, cutoff, err
}

// JobStdout returns the job's output as text wrapped in a JSON string.
func (c *Client) JobStdout(ctx context.Context, id int) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, fmt.Sprintf("/jobs/%d/stdout/", id), nil, nil)
}

// Projects

// ProjectCreate is the payload for creating a project.
type ProjectCreate struct {
	Name                          string `json:"name"`
	Description                   string `json:"description"`
	Organization                  int    `json:"organization"`
	SCMType                       string `json:"scm_type"`
	SCMURL                        string `json:"scm_url"`
	SCMBranch                     string `json:"scm_branch"`
	SCMRefspec                    string `json:"scm_refspec"`
	SCMClean                      bool   `json:"scm_clean"`
	SCMDeleteOnUpdate             bool   `json:"scm_delete_on_update"`
	SCMUpdateOnLaunch             bool   `json:"scm_update_on_launch"`
	AllowOverride                 bool   `json:"allow_override"`
	SCMTrackSubmodules            bool   `json:"scm_track_submodules"`
	ExecutionEnvironment          int    `json:"execution_environment,omitempty"`
	SignatureValidationCredential int    `json:"signature_validation_credential,omitempty"`
	Credential                    int    `json:"credential,omitempty"`
}

func (c *Client) CreateProject(ctx context.Context, payload ProjectCreate) (json.RawMessage, error) {
	if payload.SCMType == "" {
		payload.SCMType = "git"
	}
	return c.api.Do(ctx, http.MethodPost, "/projects/", nil, payload)
}

func isValidSource(source string) bool {
	for _, s := range ValidSources {
		if s == source {
			return true
		}
	}
	return false
}
