package mcpserver

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ansible-mcp/ansiblemcp/internal/auth"
	"github.com/ansible-mcp/ansiblemcp/internal/config"
	"github.com/ansible-mcp/ansiblemcp/internal/insights"
)

const insightsServerName = "redhat-insights"

// insightsCatalog binds the console.redhat.com client to the tool handlers.
type insightsCatalog struct {
	srv    *Server
	client *insights.Client
}

// NewInsightsServer builds the Red Hat Insights tool catalog.
func NewInsightsServer(cfg *config.Config, verifier *auth.Verifier, log *slog.Logger) (*Server, error) {
	if err := cfg.ValidateInsights(); err != nil {
		return nil, err
	}

	c := &insightsCatalog{
		srv:    newServer(insightsServerName, verifier, log),
		client: insights.NewClient(cfg.Insights, nil),
	}
	c.registerTools()
	return c.srv, nil
}

// listParams extracts the shared limit/offset paging arguments.
func listParams(request mcp.CallToolRequest) insights.ListParams {
	return insights.ListParams{
		Limit:  request.GetInt("limit", 50),
		Offset: request.GetInt("offset", 0),
	}
}

func withPaging(opts ...mcp.ToolOption) []mcp.ToolOption {
	return append(opts,
		mcp.WithNumber("limit",
			mcp.Description("Maximum results to return (default: 50)")),
		mcp.WithNumber("offset",
			mcp.Description("Results to skip for pagination")),
	)
}

func (c *insightsCatalog) registerTools() {
	s := c.srv

	s.addTool(mcp.NewTool("test_authentication",
		mcp.WithDescription("Verify the service-account credentials against the Insights API"),
	), scopeNone, c.handleTestAuthentication)

	s.addTool(mcp.NewTool("get_insights_overview",
		mcp.WithDescription("Get an overview of registered systems from inventory"),
	), auth.ScopeRead, c.handleOverview)

	// Host inventory

	s.addTool(mcp.NewTool("list_systems",
		withPaging(
			mcp.WithDescription("List systems registered in host inventory"),
			mcp.WithString("display_name",
				mcp.Description("Filter by display name")),
			mcp.WithString("staleness",
				mcp.Description("Filter by staleness: fresh, stale or stale_warning")),
		)...,
	), auth.ScopeRead, c.handleListSystems)

	s.addTool(mcp.NewTool("get_system",
		mcp.WithDescription("Get details of a registered system"),
		mcp.WithString("system_id",
			mcp.Required(),
			mcp.Description("Inventory host UUID")),
	), auth.ScopeRead, c.handleGetSystem)

	s.addTool(mcp.NewTool("get_system_profile",
		mcp.WithDescription("Get the system profile (hardware, OS, packages) of a system"),
		mcp.WithString("system_id",
			mcp.Required(),
			mcp.Description("Inventory host UUID")),
		mcp.WithArray("fields",
			mcp.Description("Profile fields to return, e.g. os_release, cpu_model")),
	), auth.ScopeRead, c.handleGetSystemProfile)

	s.addTool(mcp.NewTool("get_system_tags",
		mcp.WithDescription("Get the tags of a system"),
		mcp.WithString("system_id",
			mcp.Required(),
			mcp.Description("Inventory host UUID")),
	), auth.ScopeRead, c.handleGetSystemTags)

	s.addTool(mcp.NewTool("delete_system",
		mcp.WithDescription("Remove a system from host inventory"),
		mcp.WithString("system_id",
			mcp.Required(),
			mcp.Description("Inventory host UUID")),
	), auth.ScopeManage, c.handleDeleteSystem)

	// Vulnerability

	s.addTool(mcp.NewTool("list_vulnerabilities",
		withPaging(
			mcp.WithDescription("List CVEs known to affect the account"),
			mcp.WithBoolean("affecting",
				mcp.Description("Only CVEs currently affecting systems (default: false)")),
			mcp.WithNumber("cvss_score_gte",
				mcp.Description("Minimum CVSS score")),
			mcp.WithNumber("cvss_score_lte",
				mcp.Description("Maximum CVSS score")),
		)...,
	), auth.ScopeRead, c.handleListVulnerabilities)

	s.addTool(mcp.NewTool("get_vulnerability_executive_report",
		mcp.WithDescription("Get the executive vulnerability report"),
	), auth.ScopeRead, c.handleVulnerabilityReport)

	// Patch

	s.addTool(mcp.NewTool("list_advisories",
		withPaging(
			mcp.WithDescription("List applicable patch advisories"),
			mcp.WithString("advisory_type",
				mcp.Description("Filter: security, bugfix or enhancement")),
			mcp.WithString("severity",
				mcp.Description("Filter: Critical, Important, Moderate or Low")),
		)...,
	), auth.ScopeRead, c.handleListAdvisories)

	// Compliance

	s.addTool(mcp.NewTool("list_compliance_policies",
		withPaging(
			mcp.WithDescription("List SCAP compliance policies"),
		)...,
	), auth.ScopeRead, c.handleListCompliancePolicies)

	s.addTool(mcp.NewTool("list_compliance_systems",
		mcp.WithDescription("List systems known to compliance"),
		mcp.WithBoolean("assigned_or_scanned",
			mcp.Description("Only systems assigned to a policy or already scanned (default: true)")),
	), auth.ScopeRead, c.handleListComplianceSystems)

	s.addTool(mcp.NewTool("associate_compliance_policy",
		mcp.WithDescription("Assign a system to a compliance policy"),
		mcp.WithString("policy_id",
			mcp.Required(),
			mcp.Description("Compliance policy ID")),
		mcp.WithString("system_id",
			mcp.Required(),
			mcp.Description("Inventory host UUID")),
	), auth.ScopeManage, c.handleAssociateCompliancePolicy)

	s.addTool(mcp.NewTool("list_compliance_reports",
		withPaging(
			mcp.WithDescription("List compliance scan reports"),
		)...,
	), auth.ScopeRead, c.handleListComplianceReports)

	// Advisor

	s.addTool(mcp.NewTool("list_recommendations",
		withPaging(
			mcp.WithDescription("List advisor recommendations"),
			mcp.WithString("category",
				mcp.Description("Filter by category ID")),
			mcp.WithString("impact",
				mcp.Description("Filter by impact level")),
		)...,
	), auth.ScopeRead, c.handleListRecommendations)

	s.addTool(mcp.NewTool("export_rule_hits",
		mcp.WithDescription("Export all advisor rule hits across systems"),
		mcp.WithBoolean("has_playbook",
			mcp.Description("Only hits with a remediation playbook")),
	), auth.ScopeRead, c.handleExportRuleHits)

	s.addTool(mcp.NewTool("get_system_recommendations",
		mcp.WithDescription("List advisor recommendations for one system"),
		mcp.WithString("system_id",
			mcp.Required(),
			mcp.Description("Inventory host UUID")),
	), auth.ScopeRead, c.handleSystemRecommendations)

	// Policies

	s.addTool(mcp.NewTool("list_policies",
		withPaging(
			mcp.WithDescription("List custom policies"),
		)...,
	), auth.ScopeRead, c.handleListPolicies)

	s.addTool(mcp.NewTool("create_policy",
		mcp.WithDescription("Create a custom policy evaluated against system facts"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Policy name")),
		mcp.WithString("conditions",
			mcp.Required(),
			mcp.Description("Condition expression, e.g. facts.arch = \"x86_64\"")),
		mcp.WithString("description",
			mcp.Description("Policy description")),
		mcp.WithString("actions",
			mcp.Description("Action on trigger (default: notification)")),
		mcp.WithBoolean("is_enabled",
			mcp.Description("Enable the policy immediately (default: true)")),
	), auth.ScopeManage, c.handleCreatePolicy)

	s.addTool(mcp.NewTool("get_policy_triggers",
		mcp.WithDescription("Get the trigger history of a policy"),
		mcp.WithString("policy_id",
			mcp.Required(),
			mcp.Description("Policy ID")),
	), auth.ScopeRead, c.handlePolicyTriggers)

	// Remediations

	s.addTool(mcp.NewTool("list_remediations",
		withPaging(
			mcp.WithDescription("List remediation plans"),
		)...,
	), auth.ScopeRead, c.handleListRemediations)

	s.addTool(mcp.NewTool("create_remediation",
		mcp.WithDescription("Create a remediation plan from advisor or vulnerability issues"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Plan name")),
		mcp.WithArray("issues",
			mcp.Required(),
			mcp.Description("Issues to remediate, each {id, resolution, systems}")),
		mcp.WithBoolean("auto_reboot",
			mcp.Description("Allow reboots during remediation (default: false)")),
	), auth.ScopeManage, c.handleCreateRemediation)

	s.addTool(mcp.NewTool("get_remediation_playbook",
		mcp.WithDescription("Download the Ansible playbook of a remediation plan"),
		mcp.WithString("remediation_id",
			mcp.Required(),
			mcp.Description("Remediation plan ID")),
	), auth.ScopeRead, c.handleRemediationPlaybook)

	s.addTool(mcp.NewTool("execute_remediation",
		mcp.WithDescription("Execute a remediation plan via connected RHC systems"),
		mcp.WithString("remediation_id",
			mcp.Required(),
			mcp.Description("Remediation plan ID")),
	), auth.ScopeExecute, c.handleExecuteRemediation)

	// Subscriptions

	s.addTool(mcp.NewTool("list_rhel_subscriptions",
		withPaging(
			mcp.WithDescription("List RHEL subscription usage"),
			mcp.WithString("product",
				mcp.Description("Product tag (default: \"RHEL for x86\")")),
		)...,
	), auth.ScopeRead, c.handleListSubscriptions)

	// Exports

	s.addTool(mcp.NewTool("create_export",
		mcp.WithDescription("Create an export of inventory or subscription data"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Export name")),
		mcp.WithString("format",
			mcp.Required(),
			mcp.Description("Export format: json or csv")),
		mcp.WithString("application",
			mcp.Required(),
			mcp.Description("Source application, e.g. urn:redhat:application:inventory")),
		mcp.WithString("resource",
			mcp.Required(),
			mcp.Description("Source resource, e.g. urn:redhat:application:inventory:export:systems")),
	), auth.ScopeRead, c.handleCreateExport)

	s.addTool(mcp.NewTool("get_export_status",
		mcp.WithDescription("Get the status of an export request"),
		mcp.WithString("export_id",
			mcp.Required(),
			mcp.Description("Export request ID")),
	), auth.ScopeRead, c.handleExportStatus)

	s.addTool(mcp.NewTool("download_export",
		mcp.WithDescription("Download a completed export"),
		mcp.WithString("export_id",
			mcp.Required(),
			mcp.Description("Export request ID")),
	), auth.ScopeRead, c.handleDownloadExport)

	// Notifications and integrations

	s.addTool(mcp.NewTool("list_notification_events",
		withPaging(
			mcp.WithDescription("List notification event history"),
			mcp.WithString("start_date",
				mcp.Description("Earliest event date, YYYY-MM-DD")),
			mcp.WithString("end_date",
				mcp.Description("Latest event date, YYYY-MM-DD")),
		)...,
	), auth.ScopeRead, c.handleListNotificationEvents)

	s.addTool(mcp.NewTool("list_integrations",
		mcp.WithDescription("List configured third-party integrations"),
	), auth.ScopeRead, c.handleListIntegrations)

	// Content sources

	s.addTool(mcp.NewTool("list_repositories",
		withPaging(
			mcp.WithDescription("List custom content repositories"),
		)...,
	), auth.ScopeRead, c.handleListRepositories)

	s.addTool(mcp.NewTool("create_repository",
		mcp.WithDescription("Create a custom content repository"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Repository name")),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Repository base URL")),
		mcp.WithString("distribution_arch",
			mcp.Description("Architecture (default: x86_64)")),
		mcp.WithArray("distribution_versions",
			mcp.Description("RHEL major versions (default: [\"9\"])")),
	), auth.ScopeManage, c.handleCreateRepository)

	s.addTool(mcp.NewTool("list_content_templates",
		withPaging(
			mcp.WithDescription("List content templates"),
		)...,
	), auth.ScopeRead, c.handleListContentTemplates)

	s.addTool(mcp.NewTool("create_content_template",
		mcp.WithDescription("Create a content template pinning repositories to a RHEL version"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Template name")),
		mcp.WithString("arch",
			mcp.Required(),
			mcp.Description("Architecture, e.g. x86_64")),
		mcp.WithString("version",
			mcp.Required(),
			mcp.Description("RHEL major version, e.g. 9")),
		mcp.WithArray("repository_uuids",
			mcp.Required(),
			mcp.Description("Repository UUIDs to include")),
		mcp.WithString("description",
			mcp.Description("Template description")),
	), auth.ScopeManage, c.handleCreateContentTemplate)
}

func (c *insightsCatalog) handleTestAuthentication(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := c.client.TestAuthentication(ctx)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleOverview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := c.client.ListSystems(ctx, insights.ListParams{Limit: 1}, "", "")
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleListSystems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := c.client.ListSystems(ctx, listParams(request),
		request.GetString("display_name", ""),
		request.GetString("staleness", ""))
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleGetSystem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	systemID, err := request.RequireString("system_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "system_id is required"), nil
	}
	raw, err := c.client.GetSystem(ctx, systemID)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleGetSystemProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	systemID, err := request.RequireString("system_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "system_id is required"), nil
	}
	raw, err := c.client.GetSystemProfile(ctx, systemID, stringSliceArg(request, "fields"))
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleGetSystemTags(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	systemID, err := request.RequireString("system_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "system_id is required"), nil
	}
	raw, err := c.client.GetSystemTags(ctx, systemID)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleDeleteSystem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	systemID, err := request.RequireString("system_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "system_id is required"), nil
	}
	raw, err := c.client.DeleteSystem(ctx, systemID)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleListVulnerabilities(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := c.client.ListVulnerabilities(ctx, listParams(request),
		request.GetBool("affecting", false),
		request.GetFloat("cvss_score_gte", 0),
		request.GetFloat("cvss_score_lte", 0))
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleVulnerabilityReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := c.client.VulnerabilityExecutiveReport(ctx)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleListAdvisories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := c.client.ListAdvisories(ctx, listParams(request),
		request.GetString("advisory_type", ""),
		request.GetString("severity", ""))
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleListCompliancePolicies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := c.client.ListCompliancePolicies(ctx, listParams(request))
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleListComplianceSystems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := c.client.ListComplianceSystems(ctx, request.GetBool("assigned_or_scanned", true))
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleAssociateCompliancePolicy(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	policyID, err := request.RequireString("policy_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "policy_id is required"), nil
	}
	systemID, err := request.RequireString("system_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "system_id is required"), nil
	}
	raw, err := c.client.AssociateCompliancePolicy(ctx, policyID, systemID)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleListComplianceReports(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := c.client.ListComplianceReports(ctx, listParams(request))
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleListRecommendations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := c.client.ListRecommendations(ctx, listParams(request),
		request.GetString("category", ""),
		request.GetString("impact", ""))
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleExportRuleHits(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := c.client.ExportRuleHits(ctx, request.GetBool("has_playbook", false))
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleSystemRecommendations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	systemID, err := request.RequireString("system_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "system_id is required"), nil
	}
	raw, err := c.client.SystemRecommendations(ctx, systemID)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleListPolicies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := c.client.ListPolicies(ctx, listParams(request))
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleCreatePolicy(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return errorResult("INVALID_PARAMS", "name is required"), nil
	}
	conditions, err := request.RequireString("conditions")
	if err != nil {
		return errorResult("INVALID_PARAMS", "conditions is required"), nil
	}
	raw, err := c.client.CreatePolicy(ctx, insights.PolicyCreate{
		Name:        name,
		Conditions:  conditions,
		Description: request.GetString("description", ""),
		Actions:     request.GetString("actions", "notification"),
		IsEnabled:   request.GetBool("is_enabled", true),
	})
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handlePolicyTriggers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	policyID, err := request.RequireString("policy_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "policy_id is required"), nil
	}
	raw, err := c.client.PolicyTriggers(ctx, policyID)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleListRemediations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := c.client.ListRemediations(ctx, listParams(request))
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleCreateRemediation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return errorResult("INVALID_PARAMS", "name is required"), nil
	}
	rawIssues, ok := request.GetArguments()["issues"].([]any)
	if !ok || len(rawIssues) == 0 {
		return errorResult("INVALID_PARAMS", "issues is required"), nil
	}
	issues := make([]map[string]any, 0, len(rawIssues))
	for _, issue := range rawIssues {
		if m, ok := issue.(map[string]any); ok {
			issues = append(issues, m)
		}
	}

	raw, err := c.client.CreateRemediation(ctx, insights.RemediationCreate{
		Name:       name,
		AutoReboot: request.GetBool("auto_reboot", false),
		Add:        insights.RemediationIssues{Issues: issues},
	})
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleRemediationPlaybook(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	remediationID, err := request.RequireString("remediation_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "remediation_id is required"), nil
	}
	raw, err := c.client.RemediationPlaybook(ctx, remediationID)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleExecuteRemediation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	remediationID, err := request.RequireString("remediation_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "remediation_id is required"), nil
	}
	raw, err := c.client.ExecuteRemediation(ctx, remediationID)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleListSubscriptions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := c.client.ListRHELSubscriptions(ctx, listParams(request), request.GetString("product", ""))
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleCreateExport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return errorResult("INVALID_PARAMS", "name is required"), nil
	}
	format, err := request.RequireString("format")
	if err != nil {
		return errorResult("INVALID_PARAMS", "format is required"), nil
	}
	application, err := request.RequireString("application")
	if err != nil {
		return errorResult("INVALID_PARAMS", "application is required"), nil
	}
	resource, err := request.RequireString("resource")
	if err != nil {
		return errorResult("INVALID_PARAMS", "resource is required"), nil
	}

	raw, err := c.client.CreateExport(ctx, insights.ExportCreate{
		Name:   name,
		Format: format,
		Sources: []insights.ExportSource{{
			Application: application,
			Resource:    resource,
		}},
	})
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleExportStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exportID, err := request.RequireString("export_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "export_id is required"), nil
	}
	raw, err := c.client.ExportStatus(ctx, exportID)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleDownloadExport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exportID, err := request.RequireString("export_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "export_id is required"), nil
	}
	raw, err := c.client.DownloadExport(ctx, exportID)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleListNotificationEvents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := c.client.ListNotificationEvents(ctx, listParams(request),
		request.GetString("start_date", ""),
		request.GetString("end_date", ""))
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleListIntegrations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := c.client.ListIntegrations(ctx)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleListRepositories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := c.client.ListRepositories(ctx, listParams(request))
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleCreateRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return errorResult("INVALID_PARAMS", "name is required"), nil
	}
	repoURL, err := request.RequireString("url")
	if err != nil {
		return errorResult("INVALID_PARAMS", "url is required"), nil
	}
	raw, err := c.client.CreateRepository(ctx, insights.RepositoryCreate{
		Name:                 name,
		URL:                  repoURL,
		DistributionArch:     request.GetString("distribution_arch", "x86_64"),
		DistributionVersions: stringSliceArg(request, "distribution_versions"),
	})
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleListContentTemplates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := c.client.ListContentTemplates(ctx, listParams(request))
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *insightsCatalog) handleCreateContentTemplate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return errorResult("INVALID_PARAMS", "name is required"), nil
	}
	arch, err := request.RequireString("arch")
	if err != nil {
		return errorResult("INVALID_PARAMS", "arch is required"), nil
	}
	version, err := request.RequireString("version")
	if err != nil {
		return errorResult("INVALID_PARAMS", "version is required"), nil
	}
	uuids := stringSliceArg(request, "repository_uuids")
	if len(uuids) == 0 {
		return errorResult("INVALID_PARAMS", "repository_uuids is required"), nil
	}

	raw, err := c.client.CreateContentTemplate(ctx, insights.ContentTemplateCreate{
		Name:            name,
		Arch:            arch,
		Version:         version,
		Description:     request.GetString("description", ""),
		RepositoryUUIDs: uuids,
	})
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}
