package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ansible-mcp/ansiblemcp/internal/aap"
	"github.com/ansible-mcp/ansiblemcp/internal/auth"
	"github.com/ansible-mcp/ansiblemcp/internal/config"
)

const aapServerName = "ansible-aap"

// aapCatalog binds the controller client to the tool handlers.
type aapCatalog struct {
	srv    *Server
	client *aap.Client
	cfg    *config.Config
}

// NewAAPServer builds the Automation Platform tool catalog.
func NewAAPServer(cfg *config.Config, verifier *auth.Verifier, log *slog.Logger) (*Server, error) {
	if err := cfg.ValidateAAP(); err != nil {
		return nil, err
	}

	c := &aapCatalog{
		srv:    newServer(aapServerName, verifier, log),
		client: aap.NewClient(cfg.AAP, nil),
		cfg:    cfg,
	}
	c.registerTools()
	return c.srv, nil
}

func (c *aapCatalog) registerTools() {
	s := c.srv

	// Info tools, valid token only

	s.addTool(mcp.NewTool("get_server_info",
		mcp.WithDescription("Get server information and authentication status"),
	), scopeNone, c.handleServerInfo)

	s.addTool(mcp.NewTool("get_oauth_metadata",
		mcp.WithDescription("Get OAuth 2.0 protected resource metadata for this server"),
	), scopeNone, c.handleOAuthMetadata)

	s.addTool(mcp.NewTool("health_check",
		mcp.WithDescription("Check server health and controller connectivity"),
	), scopeNone, c.handleHealthCheck)

	s.addTool(mcp.NewTool("list_tool_scopes",
		mcp.WithDescription("List every tool with the scope it requires"),
	), scopeNone, c.handleListToolScopes)

	// Inventories

	s.addTool(mcp.NewTool("list_inventories",
		mcp.WithDescription("List all inventories on the Automation Platform controller"),
	), auth.ScopeRead, c.handleListInventories)

	s.addTool(mcp.NewTool("get_inventory",
		mcp.WithDescription("Get details of a specific inventory"),
		mcp.WithNumber("inventory_id",
			mcp.Required(),
			mcp.Description("Inventory ID")),
	), auth.ScopeRead, c.handleGetInventory)

	s.addTool(mcp.NewTool("create_inventory",
		mcp.WithDescription("Create a new inventory"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Inventory name")),
		mcp.WithNumber("organization",
			mcp.Description("Organization ID (default: 1)")),
		mcp.WithString("description",
			mcp.Description("Inventory description")),
		mcp.WithString("kind",
			mcp.Description("Inventory kind: \"\" (standard), \"smart\" or \"constructed\"")),
		mcp.WithString("host_filter",
			mcp.Description("Host filter for smart inventories")),
		mcp.WithObject("variables",
			mcp.Description("Inventory variables")),
	), auth.ScopeManage, c.handleCreateInventory)

	s.addTool(mcp.NewTool("delete_inventory",
		mcp.WithDescription("Delete an inventory"),
		mcp.WithNumber("inventory_id",
			mcp.Required(),
			mcp.Description("Inventory ID")),
	), auth.ScopeManage, c.handleDeleteInventory)

	// Inventory sources

	s.addTool(mcp.NewTool("list_inventory_sources",
		mcp.WithDescription("List all dynamic inventory sources"),
	), auth.ScopeRead, c.handleListInventorySources)

	s.addTool(mcp.NewTool("get_inventory_source",
		mcp.WithDescription("Get details of a specific inventory source"),
		mcp.WithNumber("inventory_source_id",
			mcp.Required(),
			mcp.Description("Inventory source ID")),
	), auth.ScopeRead, c.handleGetInventorySource)

	s.addTool(mcp.NewTool("create_inventory_source",
		mcp.WithDescription("Create a dynamic inventory source (ec2, gce, azure_rm, vmware, ...)"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Source name")),
		mcp.WithNumber("inventory",
			mcp.Required(),
			mcp.Description("Inventory ID the source feeds")),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Source type, e.g. ec2, gce, azure_rm, vmware, satellite6")),
		mcp.WithNumber("credential",
			mcp.Required(),
			mcp.Description("Credential ID for the cloud provider")),
		mcp.WithObject("source_vars",
			mcp.Description("Provider-specific source variables")),
		mcp.WithBoolean("update_on_launch",
			mcp.Description("Sync before any job using the inventory (default: false)")),
		mcp.WithNumber("timeout",
			mcp.Description("Sync timeout in seconds")),
	), auth.ScopeManage, c.handleCreateInventorySource)

	s.addTool(mcp.NewTool("update_inventory_source",
		mcp.WithDescription("Update fields of an inventory source"),
		mcp.WithNumber("inventory_source_id",
			mcp.Required(),
			mcp.Description("Inventory source ID")),
		mcp.WithObject("update_data",
			mcp.Required(),
			mcp.Description("Fields to update")),
	), auth.ScopeManage, c.handleUpdateInventorySource)

	s.addTool(mcp.NewTool("delete_inventory_source",
		mcp.WithDescription("Delete an inventory source"),
		mcp.WithNumber("inventory_source_id",
			mcp.Required(),
			mcp.Description("Inventory source ID")),
	), auth.ScopeManage, c.handleDeleteInventorySource)

	s.addTool(mcp.NewTool("sync_inventory_source",
		mcp.WithDescription("Trigger a sync of a dynamic inventory source"),
		mcp.WithNumber("inventory_source_id",
			mcp.Required(),
			mcp.Description("Inventory source ID")),
	), auth.ScopeExecute, c.handleSyncInventorySource)

	// Projects

	s.addTool(mcp.NewTool("create_project",
		mcp.WithDescription("Create a project from a source control repository"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Project name")),
		mcp.WithString("scm_url",
			mcp.Required(),
			mcp.Description("Repository URL")),
		mcp.WithString("scm_type",
			mcp.Description("Source control type (default: git)")),
		mcp.WithString("scm_branch",
			mcp.Description("Branch, tag or commit")),
		mcp.WithString("description",
			mcp.Description("Project description")),
		mcp.WithNumber("organization",
			mcp.Description("Organization ID (default: 1)")),
		mcp.WithNumber("credential",
			mcp.Description("SCM credential ID")),
		mcp.WithBoolean("scm_update_on_launch",
			mcp.Description("Update the project before each job run (default: false)")),
	), auth.ScopeManage, c.handleCreateProject)

	// Job templates

	s.addTool(mcp.NewTool("list_job_templates",
		mcp.WithDescription("List all job templates"),
	), auth.ScopeRead, c.handleListJobTemplates)

	s.addTool(mcp.NewTool("get_job_template",
		mcp.WithDescription("Get details of a specific job template"),
		mcp.WithNumber("template_id",
			mcp.Required(),
			mcp.Description("Job template ID")),
	), auth.ScopeRead, c.handleGetJobTemplate)

	s.addTool(mcp.NewTool("create_job_template",
		mcp.WithDescription("Create a job template from a project playbook"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Template name")),
		mcp.WithNumber("project",
			mcp.Required(),
			mcp.Description("Project ID")),
		mcp.WithString("playbook",
			mcp.Required(),
			mcp.Description("Playbook path within the project, e.g. site.yml")),
		mcp.WithNumber("inventory",
			mcp.Required(),
			mcp.Description("Inventory ID")),
		mcp.WithString("description",
			mcp.Description("Template description")),
		mcp.WithString("job_type",
			mcp.Description("\"run\" (default) or \"check\"")),
		mcp.WithNumber("credential",
			mcp.Description("Machine credential ID; prompted at launch when omitted")),
		mcp.WithObject("extra_vars",
			mcp.Description("Default extra variables")),
		mcp.WithString("limit",
			mcp.Description("Host pattern limit")),
		mcp.WithNumber("forks",
			mcp.Description("Parallel forks")),
		mcp.WithNumber("verbosity",
			mcp.Description("Verbosity 0-5")),
	), auth.ScopeManage, c.handleCreateJobTemplate)

	s.addTool(mcp.NewTool("update_job_template",
		mcp.WithDescription("Update fields of a job template"),
		mcp.WithNumber("template_id",
			mcp.Required(),
			mcp.Description("Job template ID")),
		mcp.WithObject("update_data",
			mcp.Required(),
			mcp.Description("Fields to update")),
	), auth.ScopeManage, c.handleUpdateJobTemplate)

	s.addTool(mcp.NewTool("delete_job_template",
		mcp.WithDescription("Delete a job template"),
		mcp.WithNumber("template_id",
			mcp.Required(),
			mcp.Description("Job template ID")),
	), auth.ScopeManage, c.handleDeleteJobTemplate)

	s.addTool(mcp.NewTool("associate_credential_with_template",
		mcp.WithDescription("Attach a credential to a job template"),
		mcp.WithNumber("template_id",
			mcp.Required(),
			mcp.Description("Job template ID")),
		mcp.WithNumber("credential_id",
			mcp.Required(),
			mcp.Description("Credential ID")),
	), auth.ScopeManage, c.handleAssociateCredential)

	// Jobs

	s.addTool(mcp.NewTool("run_job",
		mcp.WithDescription("Launch a job template"),
		mcp.WithNumber("template_id",
			mcp.Required(),
			mcp.Description("Job template ID")),
		mcp.WithObject("extra_vars",
			mcp.Description("Extra variables passed to the playbook")),
	), auth.ScopeExecute, c.handleRunJob)

	s.addTool(mcp.NewTool("list_jobs",
		mcp.WithDescription("List all jobs"),
	), auth.ScopeRead, c.handleListJobs)

	s.addTool(mcp.NewTool("list_recent_jobs",
		mcp.WithDescription("List jobs created in the last N hours"),
		mcp.WithNumber("hours",
			mcp.Description("Lookback window in hours (default: 24)")),
	), auth.ScopeRead, c.handleListRecentJobs)

	s.addTool(mcp.NewTool("job_status",
		mcp.WithDescription("Get the status of a job"),
		mcp.WithNumber("job_id",
			mcp.Required(),
			mcp.Description("Job ID")),
	), auth.ScopeRead, c.handleJobStatus)

	s.addTool(mcp.NewTool("job_logs",
		mcp.WithDescription("Get the stdout log of a job"),
		mcp.WithNumber("job_id",
			mcp.Required(),
			mcp.Description("Job ID")),
	), auth.ScopeRead, c.handleJobLogs)
}

// Info handlers

func (c *aapCatalog) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	response := map[string]any{
		"server_name":     aapServerName,
		"server_version":  serverVersion,
		"server_uri":      c.cfg.Auth.ServerURI,
		"auth_server_uri": c.cfg.Auth.AuthServerURI,
		"aap_url":         c.cfg.AAP.URL,
		"timestamp":       time.Now().Format(time.RFC3339),
	}
	if id, ok := auth.IdentityFrom(ctx); ok {
		response["authenticated_user"] = id.Email
		response["user_scopes"] = id.Scopes
	}
	return jsonResult(response), nil
}

func (c *aapCatalog) handleOAuthMetadata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	response := map[string]any{
		"resource":                 c.cfg.Auth.ServerURI,
		"authorization_servers":    []string{c.cfg.Auth.AuthServerURI},
		"scopes_supported":         []string{auth.ScopeRead, auth.ScopeExecute, auth.ScopeManage},
		"bearer_methods_supported": []string{"header"},
	}
	if id, ok := auth.IdentityFrom(ctx); ok {
		response["authenticated_user"] = id.Email
	}
	return jsonResult(response), nil
}

func (c *aapCatalog) handleHealthCheck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	connection := "ok"
	if _, err := c.client.Ping(ctx); err != nil {
		connection = err.Error()
	}
	response := map[string]any{
		"status":         "healthy",
		"timestamp":      time.Now().Format(time.RFC3339),
		"server_name":    aapServerName,
		"server_version": serverVersion,
		"aap_connection": connection,
	}
	if id, ok := auth.IdentityFrom(ctx); ok {
		response["checked_by"] = id.Email
	}
	return jsonResult(response), nil
}

func (c *aapCatalog) handleListToolScopes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mapping := map[string]any{}
	add := func(name, scope string) {
		required := scope
		if required == scopeNone {
			required = "none"
		}
		mapping[name] = map[string]any{
			"required_scope": required,
			"description":    auth.ScopeDescription(scope),
		}
	}

	for _, name := range []string{
		"list_inventories", "get_inventory", "list_inventory_sources",
		"get_inventory_source", "list_job_templates", "get_job_template",
		"list_jobs", "list_recent_jobs", "job_status", "job_logs",
	} {
		add(name, auth.ScopeRead)
	}
	for _, name := range []string{"run_job", "sync_inventory_source"} {
		add(name, auth.ScopeExecute)
	}
	for _, name := range []string{
		"create_inventory", "delete_inventory", "create_inventory_source",
		"update_inventory_source", "delete_inventory_source", "create_project",
		"create_job_template", "update_job_template", "delete_job_template",
		"associate_credential_with_template",
	} {
		add(name, auth.ScopeManage)
	}
	for _, name := range []string{"get_server_info", "get_oauth_metadata", "health_check", "list_tool_scopes"} {
		add(name, scopeNone)
	}

	response := map[string]any{
		"available_scopes":   []string{auth.ScopeRead, auth.ScopeExecute, auth.ScopeManage},
		"tool_scope_mapping": mapping,
		"total_tools":        len(mapping),
	}
	if id, ok := auth.IdentityFrom(ctx); ok {
		response["user_scopes"] = id.Scopes
	}
	return jsonResult(response), nil
}

// Inventory handlers

func (c *aapCatalog) handleListInventories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := c.client.ListInventories(ctx)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *aapCatalog) handleGetInventory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("inventory_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "inventory_id is required"), nil
	}
	raw, err := c.client.GetInventory(ctx, id)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *aapCatalog) handleCreateInventory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return errorResult("INVALID_PARAMS", "name is required"), nil
	}
	payload := aap.InventoryCreate{
		Name:         name,
		Organization: request.GetInt("organization", 1),
		Description:  request.GetString("description", ""),
		Kind:         request.GetString("kind", ""),
		HostFilter:   request.GetString("host_filter", ""),
		Variables:    objectArg(request, "variables"),
	}
	raw, err := c.client.CreateInventory(ctx, payload)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *aapCatalog) handleDeleteInventory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("inventory_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "inventory_id is required"), nil
	}
	if err := c.client.DeleteInventory(ctx, id); err != nil {
		return apiErrorResult(err), nil
	}
	return jsonResult(map[string]any{"deleted": true, "inventory_id": id}), nil
}

// Inventory source handlers

func (c *aapCatalog) handleListInventorySources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := c.client.ListInventorySources(ctx)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *aapCatalog) handleGetInventorySource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("inventory_source_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "inventory_source_id is required"), nil
	}
	raw, err := c.client.GetInventorySource(ctx, id)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *aapCatalog) handleCreateInventorySource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return errorResult("INVALID_PARAMS", "name is required"), nil
	}
	inventory, err := request.RequireInt("inventory")
	if err != nil {
		return errorResult("INVALID_PARAMS", "inventory is required"), nil
	}
	source, err := request.RequireString("source")
	if err != nil {
		return errorResult("INVALID_PARAMS", "source is required"), nil
	}
	credential, err := request.RequireInt("credential")
	if err != nil {
		return errorResult("INVALID_PARAMS", "credential is required"), nil
	}

	payload := aap.InventorySourceCreate{
		Name:           name,
		Inventory:      inventory,
		Source:         source,
		Credential:     credential,
		SourceVars:     objectArg(request, "source_vars"),
		UpdateOnLaunch: request.GetBool("update_on_launch", false),
		Timeout:        request.GetInt("timeout", 0),
	}
	raw, err := c.client.CreateInventorySource(ctx, payload)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *aapCatalog) handleUpdateInventorySource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("inventory_source_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "inventory_source_id is required"), nil
	}
	update := objectArg(request, "update_data")
	if len(update) == 0 {
		return errorResult("INVALID_PARAMS", "update_data is required"), nil
	}
	raw, err := c.client.UpdateInventorySource(ctx, id, update)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *aapCatalog) handleDeleteInventorySource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("inventory_source_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "inventory_source_id is required"), nil
	}
	if err := c.client.DeleteInventorySource(ctx, id); err != nil {
		return apiErrorResult(err), nil
	}
	return jsonResult(map[string]any{"deleted": true, "inventory_source_id": id}), nil
}

func (c *aapCatalog) handleSyncInventorySource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("inventory_source_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "inventory_source_id is required"), nil
	}
	raw, err := c.client.SyncInventorySource(ctx, id)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

// Project handlers

func (c *aapCatalog) handleCreateProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return errorResult("INVALID_PARAMS", "name is required"), nil
	}
	scmURL, err := request.RequireString("scm_url")
	if err != nil {
		return errorResult("INVALID_PARAMS", "scm_url is required"), nil
	}

	payload := aap.ProjectCreate{
		Name:              name,
		SCMURL:            scmURL,
		SCMType:           request.GetString("scm_type", "git"),
		SCMBranch:         request.GetString("scm_branch", ""),
		Description:       request.GetString("description", ""),
		Organization:      request.GetInt("organization", 1),
		Credential:        request.GetInt("credential", 0),
		SCMUpdateOnLaunch: request.GetBool("scm_update_on_launch", false),
	}
	raw, err := c.client.CreateProject(ctx, payload)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

// Job template handlers

func (c *aapCatalog) handleListJobTemplates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := c.client.ListJobTemplates(ctx)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *aapCatalog) handleGetJobTemplate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("template_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "template_id is required"), nil
	}
	raw, err := c.client.GetJobTemplate(ctx, id)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *aapCatalog) handleCreateJobTemplate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return errorResult("INVALID_PARAMS", "name is required"), nil
	}
	project, err := request.RequireInt("project")
	if err != nil {
		return errorResult("INVALID_PARAMS", "project is required"), nil
	}
	playbook, err := request.RequireString("playbook")
	if err != nil {
		return errorResult("INVALID_PARAMS", "playbook is required"), nil
	}
	inventory, err := request.RequireInt("inventory")
	if err != nil {
		return errorResult("INVALID_PARAMS", "inventory is required"), nil
	}

	payload := aap.JobTemplateCreate{
		Name:        name,
		Project:     project,
		Playbook:    playbook,
		Inventory:   inventory,
		Description: request.GetString("description", ""),
		JobType:     request.GetString("job_type", "run"),
		Credential:  request.GetInt("credential", 0),
		ExtraVars:   objectArg(request, "extra_vars"),
		Limit:       request.GetString("limit", ""),
		Forks:       request.GetInt("forks", 0),
		Verbosity:   request.GetInt("verbosity", 0),
	}
	payload.FillPromptDefaults()

	raw, err := c.client.CreateJobTemplate(ctx, payload)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *aapCatalog) handleUpdateJobTemplate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("template_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "template_id is required"), nil
	}
	update := objectArg(request, "update_data")
	if len(update) == 0 {
		return errorResult("INVALID_PARAMS", "update_data is required"), nil
	}
	raw, err := c.client.UpdateJobTemplate(ctx, id, update)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *aapCatalog) handleDeleteJobTemplate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("template_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "template_id is required"), nil
	}
	if err := c.client.DeleteJobTemplate(ctx, id); err != nil {
		return apiErrorResult(err), nil
	}
	return jsonResult(map[string]any{"deleted": true, "template_id": id}), nil
}

func (c *aapCatalog) handleAssociateCredential(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templateID, err := request.RequireInt("template_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "template_id is required"), nil
	}
	credentialID, err := request.RequireInt("credential_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "credential_id is required"), nil
	}
	raw, err := c.client.AssociateCredential(ctx, templateID, credentialID)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

// Job handlers

func (c *aapCatalog) handleRunJob(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templateID, err := request.RequireInt("template_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "template_id is required"), nil
	}
	raw, err := c.client.LaunchJob(ctx, templateID, objectArg(request, "extra_vars"))
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *aapCatalog) handleListJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := c.client.ListJobs(ctx)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *aapCatalog) handleListRecentJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hours := request.GetInt("hours", 24)
	raw, cutoff, err := c.client.ListRecentJobs(ctx, hours)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return jsonResult(map[string]any{
		"since":   cutoff,
		"hours":   hours,
		"results": json.RawMessage(raw),
	}), nil
}

func (c *aapCatalog) handleJobStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("job_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "job_id is required"), nil
	}
	raw, err := c.client.GetJob(ctx, id)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *aapCatalog) handleJobLogs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("job_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "job_id is required"), nil
	}
	raw, err := c.client.JobStdout(ctx, id)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}
