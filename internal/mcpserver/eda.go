package mcpserver

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ansible-mcp/ansiblemcp/internal/auth"
	"github.com/ansible-mcp/ansiblemcp/internal/config"
	"github.com/ansible-mcp/ansiblemcp/internal/eda"
)

const edaServerName = "ansible-eda"

// edaCatalog binds the EDA controller client to the tool handlers.
type edaCatalog struct {
	srv    *Server
	client *eda.Client
}

// NewEDAServer builds the Event-Driven Ansible tool catalog.
func NewEDAServer(cfg *config.Config, verifier *auth.Verifier, log *slog.Logger) (*Server, error) {
	if err := cfg.ValidateEDA(); err != nil {
		return nil, err
	}

	c := &edaCatalog{
		srv:    newServer(edaServerName, verifier, log),
		client: eda.NewClient(cfg.EDA, nil),
	}
	c.registerTools()
	return c.srv, nil
}

func (c *edaCatalog) registerTools() {
	s := c.srv

	// Activations

	s.addTool(mcp.NewTool("list_activations",
		mcp.WithDescription("List all rulebook activations"),
	), auth.ScopeRead, c.handleListActivations)

	s.addTool(mcp.NewTool("get_activation",
		mcp.WithDescription("Get details of a rulebook activation"),
		mcp.WithNumber("activation_id",
			mcp.Required(),
			mcp.Description("Activation ID")),
	), auth.ScopeRead, c.handleGetActivation)

	s.addTool(mcp.NewTool("create_activation",
		mcp.WithDescription("Create a rulebook activation"),
		mcp.WithObject("payload",
			mcp.Required(),
			mcp.Description("Activation definition (name, rulebook_id, decision_environment_id, ...)")),
	), auth.ScopeManage, c.handleCreateActivation)

	s.addTool(mcp.NewTool("enable_activation",
		mcp.WithDescription("Enable a rulebook activation"),
		mcp.WithNumber("activation_id",
			mcp.Required(),
			mcp.Description("Activation ID")),
	), auth.ScopeExecute, c.handleEnableActivation)

	s.addTool(mcp.NewTool("disable_activation",
		mcp.WithDescription("Disable a rulebook activation"),
		mcp.WithNumber("activation_id",
			mcp.Required(),
			mcp.Description("Activation ID")),
	), auth.ScopeExecute, c.handleDisableActivation)

	s.addTool(mcp.NewTool("restart_activation",
		mcp.WithDescription("Restart a rulebook activation"),
		mcp.WithNumber("activation_id",
			mcp.Required(),
			mcp.Description("Activation ID")),
	), auth.ScopeExecute, c.handleRestartActivation)

	s.addTool(mcp.NewTool("delete_activation",
		mcp.WithDescription("Delete a rulebook activation"),
		mcp.WithNumber("activation_id",
			mcp.Required(),
			mcp.Description("Activation ID")),
	), auth.ScopeManage, c.handleDeleteActivation)

	// Decision environments

	s.addTool(mcp.NewTool("list_decision_environments",
		mcp.WithDescription("List all decision environments"),
	), auth.ScopeRead, c.handleListDecisionEnvironments)

	s.addTool(mcp.NewTool("create_decision_environment",
		mcp.WithDescription("Create a decision environment"),
		mcp.WithObject("payload",
			mcp.Required(),
			mcp.Description("Decision environment definition (name, image_url, ...)")),
	), auth.ScopeManage, c.handleCreateDecisionEnvironment)

	// Rulebooks

	s.addTool(mcp.NewTool("list_rulebooks",
		mcp.WithDescription("List all rulebooks"),
	), auth.ScopeRead, c.handleListRulebooks)

	s.addTool(mcp.NewTool("get_rulebook",
		mcp.WithDescription("Get details of a rulebook"),
		mcp.WithNumber("rulebook_id",
			mcp.Required(),
			mcp.Description("Rulebook ID")),
	), auth.ScopeRead, c.handleGetRulebook)

	// Event streams

	s.addTool(mcp.NewTool("list_event_streams",
		mcp.WithDescription("List all event streams"),
	), auth.ScopeRead, c.handleListEventStreams)

	// Rule audits

	s.addTool(mcp.NewTool("list_rule_audits",
		mcp.WithDescription("List rule audit records"),
	), auth.ScopeRead, c.handleListRuleAudits)

	s.addTool(mcp.NewTool("get_rule_audit",
		mcp.WithDescription("Get a rule audit record"),
		mcp.WithNumber("audit_id",
			mcp.Required(),
			mcp.Description("Rule audit ID")),
	), auth.ScopeRead, c.handleGetRuleAudit)

	s.addTool(mcp.NewTool("get_rule_activation_audit",
		mcp.WithDescription("List rule audit records for one activation instance"),
		mcp.WithNumber("activation_id",
			mcp.Required(),
			mcp.Description("Activation instance ID")),
	), auth.ScopeRead, c.handleActivationAudit)
}

func (c *edaCatalog) handleListActivations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := c.client.ListActivations(ctx)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *edaCatalog) handleGetActivation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("activation_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "activation_id is required"), nil
	}
	raw, err := c.client.GetActivation(ctx, id)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *edaCatalog) handleCreateActivation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload := objectArg(request, "payload")
	if len(payload) == 0 {
		return errorResult("INVALID_PARAMS", "payload is required"), nil
	}
	raw, err := c.client.CreateActivation(ctx, payload)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *edaCatalog) handleEnableActivation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("activation_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "activation_id is required"), nil
	}
	raw, err := c.client.EnableActivation(ctx, id)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *edaCatalog) handleDisableActivation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("activation_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "activation_id is required"), nil
	}
	raw, err := c.client.DisableActivation(ctx, id)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *edaCatalog) handleRestartActivation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("activation_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "activation_id is required"), nil
	}
	raw, err := c.client.RestartActivation(ctx, id)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *edaCatalog) handleDeleteActivation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("activation_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "activation_id is required"), nil
	}
	if err := c.client.DeleteActivation(ctx, id); err != nil {
		return apiErrorResult(err), nil
	}
	return jsonResult(map[string]any{"deleted": true, "activation_id": id}), nil
}

func (c *edaCatalog) handleListDecisionEnvironments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := c.client.ListDecisionEnvironments(ctx)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *edaCatalog) handleCreateDecisionEnvironment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload := objectArg(request, "payload")
	if len(payload) == 0 {
		return errorResult("INVALID_PARAMS", "payload is required"), nil
	}
	raw, err := c.client.CreateDecisionEnvironment(ctx, payload)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *edaCatalog) handleListRulebooks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := c.client.ListRulebooks(ctx)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *edaCatalog) handleGetRulebook(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("rulebook_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "rulebook_id is required"), nil
	}
	raw, err := c.client.GetRulebook(ctx, id)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *edaCatalog) handleListEventStreams(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := c.client.ListEventStreams(ctx)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *edaCatalog) handleListRuleAudits(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := c.client.ListRuleAudits(ctx)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *edaCatalog) handleGetRuleAudit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("audit_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "audit_id is required"), nil
	}
	raw, err := c.client.GetRuleAudit(ctx, id)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}

func (c *edaCatalog) handleActivationAudit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("activation_id")
	if err != nil {
		return errorResult("INVALID_PARAMS", "activation_id is required"), nil
	}
	raw, err := c.client.ListActivationAudits(ctx, id)
	if err != nil {
		return apiErrorResult(err), nil
	}
	return rawResult(raw), nil
}
