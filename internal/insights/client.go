// Package insights is a client for the Red Hat Insights APIs on
// console.redhat.com. Authentication uses an OAuth2 service account with the
// client-credentials grant; token caching and refresh are delegated to the
// oauth2 token source.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/ansible-mcp/ansiblemcp/internal/config"
	"github.com/ansible-mcp/ansiblemcp/internal/errors"
	"github.com/ansible-mcp/ansiblemcp/internal/httpx"
)

// ssoScope is the scope console.redhat.com service accounts request.
const ssoScope = "api.console"

// Client wraps the Insights REST APIs (inventory, vulnerability, patch,
// compliance, advisor, policies, remediations, subscriptions, exports,
// notifications, content sources).
type Client struct {
	api *httpx.Client
}

// NewClient creates an Insights API client from configuration.
func NewClient(cfg config.InsightsConfig, httpClient *http.Client) *Client {
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.SSOURL,
		Scopes:       []string{ssoScope},
	}
	source := cc.TokenSource(context.Background())

	bearer := func(ctx context.Context) (string, error) {
		token, err := source.Token()
		if err != nil {
			return "", errors.Wrap(errors.CodeUnauthorized, "failed to get access token", err)
		}
		return token.AccessToken, nil
	}

	return &Client{
		api: httpx.NewClient(cfg.BaseURL, bearer, httpClient),
	}
}

// ListParams is the common limit/offset paging pair.
type ListParams struct {
	Limit  int
	Offset int
}

func (p ListParams) values() url.Values {
	limit := p.Limit
	if limit <= 0 {
		limit = 50
	}
	return url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(p.Offset)},
	}
}

// TestAuthentication fetches a single host to prove the credentials work.
func (c *Client) TestAuthentication(ctx context.Context) (json.RawMessage, error) {
	query := url.Values{"limit": {"1"}}
	return c.api.Do(ctx, http.MethodGet, "/inventory/v1/hosts", query, nil)
}

// Host inventory

func (c *Client) ListSystems(ctx context.Context, p ListParams, displayName, staleness string) (json.RawMessage, error) {
	query := p.values()
	if displayName != "" {
		query.Set("display_name", displayName)
	}
	if staleness != "" {
		query.Set("staleness", staleness)
	}
	return c.api.Do(ctx, http.MethodGet, "/inventory/v1/hosts", query, nil)
}

func (c *Client) GetSystem(ctx context.Context, systemID string) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, "/inventory/v1/hosts/"+url.PathEscape(systemID), nil, nil)
}

func (c *Client) GetSystemProfile(ctx context.Context, systemID string, fields []string) (json.RawMessage, error) {
	query := url.Values{}
	for _, field := range fields {
		query.Add("fields[system_profile]", field)
	}
	return c.api.Do(ctx, http.MethodGet, "/inventory/v1/hosts/"+url.PathEscape(systemID)+"/system_profile", query, nil)
}

func (c *Client) GetSystemTags(ctx context.Context, systemID string) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, "/inventory/v1/hosts/"+url.PathEscape(systemID)+"/tags", nil, nil)
}

func (c *Client) DeleteSystem(ctx context.Context, systemID string) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodDelete, "/inventory/v1/hosts/"+url.PathEscape(systemID), nil, nil)
}

// Vulnerability

func (c *Client) ListVulnerabilities(ctx context.Context, p ListParams, affecting bool, cvssGTE, cvssLTE float64) (json.RawMessage, error) {
	query := p.values()
	if affecting {
		query.Set("affecting", "true")
	}
	if cvssGTE > 0 {
		query.Set("cvss_score_gte", fmt.Sprintf("%g", cvssGTE))
	}
	if cvssLTE > 0 {
		query.Set("cvss_score_lte", fmt.Sprintf("%g", cvssLTE))
	}
	return c.api.Do(ctx, http.MethodGet, "/vulnerability/v1/vulnerabilities/cves", query, nil)
}

func (c *Client) VulnerabilityExecutiveReport(ctx context.Context) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, "/vulnerability/v1/report/executive", nil, nil)
}

// Patch

func (c *Client) ListAdvisories(ctx context.Context, p ListParams, advisoryType, severity string) (json.RawMessage, error) {
	query := p.values()
	if advisoryType != "" {
		query.Set("advisory_type", advisoryType)
	}
	if severity != "" {
		query.Set("severity", severity)
	}
	return c.api.Do(ctx, http.MethodGet, "/patch/v3/export/advisories", query, nil)
}

// Compliance

func (c *Client) ListCompliancePolicies(ctx context.Context, p ListParams) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, "/compliance/v2/policies", p.values(), nil)
}

func (c *Client) ListComplianceSystems(ctx context.Context, assignedOrScanned bool) (json.RawMessage, error) {
	query := url.Values{}
	if assignedOrScanned {
		query.Set("filter", "assigned_or_scanned=true")
	}
	return c.api.Do(ctx, http.MethodGet, "/compliance/v2/systems", query, nil)
}

func (c *Client) AssociateCompliancePolicy(ctx context.Context, policyID, systemID string) (json.RawMessage, error) {
	path := "/compliance/v2/policies/" + url.PathEscape(policyID) + "/systems/" + url.PathEscape(systemID)
	return c.api.Do(ctx, http.MethodPatch, path, nil, nil)
}

func (c *Client) ListComplianceReports(ctx context.Context, p ListParams) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, "/compliance/v2/reports", p.values(), nil)
}

// Advisor

func (c *Client) ListRecommendations(ctx context.Context, p ListParams, category, impact string) (json.RawMessage, error) {
	query := p.values()
	if category != "" {
		query.Set("category", category)
	}
	if impact != "" {
		query.Set("impact", impact)
	}
	return c.api.Do(ctx, http.MethodGet, "/insights/v1/rule", query, nil)
}

func (c *Client) ExportRuleHits(ctx context.Context, hasPlaybook bool) (json.RawMessage, error) {
	query := url.Values{}
	if hasPlaybook {
		query.Set("has_playbook", "true")
	}
	return c.api.Do(ctx, http.MethodGet, "/insights/v1/export/hits", query, nil)
}

func (c *Client) SystemRecommendations(ctx context.Context, systemID string) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, "/insights/v1/system/"+url.PathEscape(systemID), nil, nil)
}

// Policies

func (c *Client) ListPolicies(ctx context.Context, p ListParams) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, "/policies/v1/policies", p.values(), nil)
}

// PolicyCreate is the payload for creating a custom policy.
type PolicyCreate struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Conditions  string `json:"conditions"`
	Actions     string `json:"actions"`
	IsEnabled   bool   `json:"isEnabled"`
}

func (c *Client) CreatePolicy(ctx context.Context, payload PolicyCreate) (json.RawMessage, error) {
	if payload.Actions == "" {
		payload.Actions = "notification"
	}
	return c.api.Do(ctx, http.MethodPost, "/policies/v1/policies", nil, payload)
}

func (c *Client) PolicyTriggers(ctx context.Context, policyID string) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, "/policies/v1/policies/"+url.PathEscape(policyID)+"/history/trigger", nil, nil)
}

// Remediations

func (c *Client) ListRemediations(ctx context.Context, p ListParams) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, "/remediations/v1/remediations", p.values(), nil)
}

// RemediationCreate is the payload for creating a remediation plan.
type RemediationCreate struct {
	Name       string            `json:"name"`
	AutoReboot bool              `json:"auto_reboot"`
	Archived   bool              `json:"archived"`
	Add        RemediationIssues `json:"add"`
}

// RemediationIssues lists issues to include in a remediation plan.
type RemediationIssues struct {
	Issues []map[string]any `json:"issues"`
}

func (c *Client) CreateRemediation(ctx context.Context, payload RemediationCreate) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodPost, "/remediations/v1/remediations", nil, payload)
}

func (c *Client) RemediationPlaybook(ctx context.Context, remediationID string) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, "/remediations/v1/remediations/"+url.PathEscape(remediationID)+"/playbook", nil, nil)
}

func (c *Client) ExecuteRemediation(ctx context.Context, remediationID string) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodPost, "/remediations/v1/remediations/"+url.PathEscape(remediationID)+"/playbook_runs", nil, nil)
}

// Subscriptions

func (c *Client) ListRHELSubscriptions(ctx context.Context, p ListParams, product string) (json.RawMessage, error) {
	if product == "" {
		product = "RHEL for x86"
	}
	return c.api.Do(ctx, http.MethodGet, "/rhsm-subscriptions/v1/instances/products/"+url.PathEscape(product), p.values(), nil)
}

// Exports

// ExportCreate is the payload for creating an export request.
type ExportCreate struct {
	Name    string         `json:"name"`
	Format  string         `json:"format"`
	Sources []ExportSource `json:"sources"`
}

// ExportSource names one application resource to export.
type ExportSource struct {
	Application string `json:"application"`
	Resource    string `json:"resource"`
}

func (c *Client) CreateExport(ctx context.Context, payload ExportCreate) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodPost, "/export/v1/exports", nil, payload)
}

func (c *Client) ExportStatus(ctx context.Context, exportID string) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, "/export/v1/exports/"+url.PathEscape(exportID)+"/status", nil, nil)
}

func (c *Client) DownloadExport(ctx context.Context, exportID string) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, "/export/v1/exports/"+url.PathEscape(exportID), nil, nil)
}

// Notifications and integrations

func (c *Client) ListNotificationEvents(ctx context.Context, p ListParams, startDate, endDate string) (json.RawMessage, error) {
	query := p.values()
	if startDate != "" {
		query.Set("startDate", startDate)
	}
	if endDate != "" {
		query.Set("endDate", endDate)
	}
	return c.api.Do(ctx, http.MethodGet, "/notifications/v1/notifications/events", query, nil)
}

func (c *Client) ListIntegrations(ctx context.Context) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, "/integrations/v1/endpoints", nil, nil)
}

// Content sources

func (c *Client) ListRepositories(ctx context.Context, p ListParams) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, "/content-sources/v1.0/repositories", p.values(), nil)
}

// RepositoryCreate is the payload for creating a custom repository.
type RepositoryCreate struct {
	Name                 string   `json:"name"`
	URL                  string   `json:"url"`
	DistributionArch     string   `json:"distribution_arch"`
	DistributionVersions []string `json:"distribution_versions"`
	MetadataVerification bool     `json:"metadata_verification"`
	ModuleHotfixes       bool     `json:"module_hotfixes"`
	Snapshot             bool     `json:"snapshot"`
}

func (c *Client) CreateRepository(ctx context.Context, payload RepositoryCreate) (json.RawMessage, error) {
	if payload.DistributionArch == "" {
		payload.DistributionArch = "x86_64"
	}
	if len(payload.DistributionVersions) == 0 {
		payload.DistributionVersions = []string{"9"}
	}
	return c.api.Do(ctx, http.MethodPost, "/content-sources/v1.0/repositories", nil, payload)
}

func (c *Client) ListContentTemplates(ctx context.Context, p ListParams) (json.RawMessage, error) {
	return c.api.Do(ctx, http.MethodGet, "/content-sources/v1.0/templates", p.values(), nil)
}

// ContentTemplateCreate is the payload for creating a content template.
type ContentTemplateCreate struct {
	Name            string   `json:"name"`
	Arch            string   `json:"arch"`
	Version         string   `json:"version"`
	Description     string   `json:"description"`
	RepositoryUUIDs []string `json:"repository_uuids"`
	UseLatest       bool     `json:"use_latest"`
}

func (c *Client) CreateContentTemplate(ctx context.Context, payload ContentTemplateCreate) (json.RawMessage, error) {
	payload.UseLatest = true
	return c.api.Do(ctx, http.MethodPost, "/content-sources/v1.0/templates", nil, payload)
}
