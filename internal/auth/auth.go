// Package auth verifies bearer tokens and enforces tool scopes for
// SSE-served MCP catalogs. Tokens are HS256 JWTs minted by a companion auth
// server; the audience must match this server's URI and the issuer must
// match the auth server's URI.
package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ansible-mcp/ansiblemcp/internal/config"
	"github.com/ansible-mcp/ansiblemcp/internal/errors"
)

// Tool scopes. Read covers listing and fetching resources, Execute covers
// launching jobs and syncs, Manage covers create/update/delete.
const (
	ScopeRead    = "read:ansible"
	ScopeExecute = "execute:ansible"
	ScopeManage  = "manage:ansible"
)

// Leeway absorbs clock skew between the auth server and this process.
const Leeway = 6 * time.Hour

// ScopeDescription returns a human-readable description for a scope.
func ScopeDescription(scope string) string {
	switch scope {
	case ScopeRead:
		return "Read access to Ansible resources (inventories, job templates, jobs)"
	case ScopeExecute:
		return "Execute Ansible operations (run jobs, trigger syncs)"
	case ScopeManage:
		return "Create, update and delete Ansible resources"
	default:
		return fmt.Sprintf("Access to %s", scope)
	}
}

// Identity is the verified caller extracted from a bearer token.
type Identity struct {
	Email  string
	Scopes []string
}

// HasScope reports whether the identity carries the given scope.
func (id *Identity) HasScope(scope string) bool {
	for _, s := range id.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Verifier validates bearer JWTs against the configured secret, audience
// and issuer.
type Verifier struct {
	secret        []byte
	serverURI     string
	authServerURI string
}

// NewVerifier creates a Verifier from auth configuration.
func NewVerifier(cfg config.AuthConfig) (*Verifier, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.ConfigMissing("JWT_SECRET")
	}
	return &Verifier{
		secret:        []byte(cfg.JWTSecret),
		serverURI:     cfg.ServerURI,
		authServerURI: cfg.AuthServerURI,
	}, nil
}

// AuthServerURI returns the issuer URI, used in scope-upgrade payloads.
func (v *Verifier) AuthServerURI() string {
	return v.authServerURI
}

// Verify parses and validates a bearer token, returning the caller identity.
func (v *Verifier) Verify(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithLeeway(Leeway),
	)
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.TokenExpired()
		}
		return nil, errors.Wrap(errors.CodeUnauthorized, "invalid token", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.Unauthorized("unexpected claims format")
	}

	// The token must be minted for this MCP server.
	if aud := claimString(claims, "aud"); aud != v.serverURI {
		return nil, errors.Unauthorized(fmt.Sprintf("invalid audience: expected %s, got %s", v.serverURI, aud))
	}
	if iss := claimString(claims, "iss"); iss != v.authServerURI {
		return nil, errors.Unauthorized(fmt.Sprintf("invalid issuer: expected %s, got %s", v.authServerURI, iss))
	}

	return &Identity{
		Email:  claimString(claims, "email"),
		Scopes: strings.Fields(claimString(claims, "scope")),
	}, nil
}

// VerifyHeader extracts and verifies the token from an Authorization header.
func (v *Verifier) VerifyHeader(header string) (*Identity, error) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, errors.Unauthorized("missing or invalid Authorization header")
	}
	return v.Verify(token)
}

// CheckScope verifies the identity carries the required scope.
func (v *Verifier) CheckScope(id *Identity, required string) error {
	if id.HasScope(required) {
		return nil
	}
	return errors.InsufficientScope(required)
}

// ScopeUpgradeInfo is the structured payload returned to agents when a tool
// call fails on scope, telling them how to request the missing permission.
type ScopeUpgradeInfo struct {
	ErrorType            string   `json:"error_type"`
	Error                string   `json:"error"`
	RequiredScope        string   `json:"required_scope"`
	UserScopes           []string `json:"user_scopes"`
	ScopeUpgradeEndpoint string   `json:"scope_upgrade_endpoint"`
	ScopeDescription     string   `json:"scope_description"`
	UpgradeInstructions  string   `json:"upgrade_instructions"`
}

// UpgradeInfo builds the scope-upgrade payload for a denied scope.
func (v *Verifier) UpgradeInfo(id *Identity, required string) ScopeUpgradeInfo {
	return ScopeUpgradeInfo{
		ErrorType:            "insufficient_scope",
		Error:                fmt.Sprintf("Insufficient scope. Required: %s", required),
		RequiredScope:        required,
		UserScopes:           id.Scopes,
		ScopeUpgradeEndpoint: v.authServerURI + "/api/upgrade-scope",
		ScopeDescription:     ScopeDescription(required),
		UpgradeInstructions:  "Use the scope_upgrade_endpoint to request additional permissions",
	}
}

func claimString(claims jwt.MapClaims, key string) string {
	if val, ok := claims[key].(string); ok {
		return val
	}
	return ""
}

type contextKey struct{}

// WithIdentity stores the verified identity in the context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFrom extracts the verified identity from the context.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(*Identity)
	return id, ok
}
