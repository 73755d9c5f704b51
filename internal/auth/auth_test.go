package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ansible-mcp/ansiblemcp/internal/config"
	"github.com/ansible-mcp/ansiblemcp/internal/errors"
)

const testSecret = "demo-secret-key-change-in-production"

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:     testSecret,
		ServerURI:     "http://localhost:8001",
		AuthServerURI: "http://localhost:8002",
	}
}

func mintToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"aud":   "http://localhost:8001",
		"iss":   "http://localhost:8002",
		"email": "operator@example.com",
		"scope": "read:ansible execute:ansible",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

func TestVerifyValidToken(t *testing.T) {
	v, err := NewVerifier(testAuthConfig())
	if err != nil {
		t.Fatalf("NewVerifier() error: %v", err)
	}

	id, err := v.Verify(mintToken(t, testSecret, validClaims()))
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}

	if id.Email != "operator@example.com" {
		t.Errorf("Email = %q", id.Email)
	}
	if !id.HasScope(ScopeRead) || !id.HasScope(ScopeExecute) {
		t.Errorf("Scopes = %v, want read+execute", id.Scopes)
	}
	if id.HasScope(ScopeManage) {
		t.Error("identity should not have manage scope")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	v, _ := NewVerifier(testAuthConfig())

	_, err := v.Verify(mintToken(t, "other-secret", validClaims()))
	if !errors.Is(err, errors.CodeUnauthorized) {
		t.Errorf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestVerifyRejectsWrongAudience(t *testing.T) {
	v, _ := NewVerifier(testAuthConfig())

	claims := validClaims()
	claims["aud"] = "http://evil.example.com"
	_, err := v.Verify(mintToken(t, testSecret, claims))
	if !errors.Is(err, errors.CodeUnauthorized) {
		t.Errorf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	v, _ := NewVerifier(testAuthConfig())

	claims := validClaims()
	claims["iss"] = "http://evil.example.com"
	_, err := v.Verify(mintToken(t, testSecret, claims))
	if !errors.Is(err, errors.CodeUnauthorized) {
		t.Errorf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	v, _ := NewVerifier(testAuthConfig())

	claims := validClaims()
	// Past the leeway window.
	claims["exp"] = time.Now().Add(-Leeway - time.Hour).Unix()
	_, err := v.Verify(mintToken(t, testSecret, claims))
	if !errors.Is(err, errors.CodeTokenExpired) {
		t.Errorf("expected TOKEN_EXPIRED, got %v", err)
	}
}

func TestVerifyLeewayAbsorbsSkew(t *testing.T) {
	v, _ := NewVerifier(testAuthConfig())

	claims := validClaims()
	// Expired, but inside the 6h leeway.
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	if _, err := v.Verify(mintToken(t, testSecret, claims)); err != nil {
		t.Errorf("Verify() error: %v, want leeway to absorb skew", err)
	}
}

func TestVerifyHeader(t *testing.T) {
	v, _ := NewVerifier(testAuthConfig())
	token := mintToken(t, testSecret, validClaims())

	if _, err := v.VerifyHeader("Bearer " + token); err != nil {
		t.Errorf("VerifyHeader() error: %v", err)
	}

	for _, header := range []string{"", "Bearer ", "Basic dXNlcg==", token} {
		if _, err := v.VerifyHeader(header); !errors.Is(err, errors.CodeUnauthorized) {
			t.Errorf("VerifyHeader(%q) = %v, want UNAUTHORIZED", header, err)
		}
	}
}

func TestCheckScope(t *testing.T) {
	v, _ := NewVerifier(testAuthConfig())
	id := &Identity{Email: "operator@example.com", Scopes: []string{ScopeRead}}

	if err := v.CheckScope(id, ScopeRead); err != nil {
		t.Errorf("CheckScope(read) = %v, want nil", err)
	}
	if err := v.CheckScope(id, ScopeManage); !errors.Is(err, errors.CodeInsufficientScope) {
		t.Errorf("CheckScope(manage) = %v, want INSUFFICIENT_SCOPE", err)
	}
}

func TestUpgradeInfo(t *testing.T) {
	v, _ := NewVerifier(testAuthConfig())
	id := &Identity{Scopes: []string{ScopeRead}}

	info := v.UpgradeInfo(id, ScopeManage)
	if info.ErrorType != "insufficient_scope" {
		t.Errorf("ErrorType = %q", info.ErrorType)
	}
	if info.RequiredScope != ScopeManage {
		t.Errorf("RequiredScope = %q", info.RequiredScope)
	}
	if info.ScopeUpgradeEndpoint != "http://localhost:8002/api/upgrade-scope" {
		t.Errorf("ScopeUpgradeEndpoint = %q", info.ScopeUpgradeEndpoint)
	}
}

func TestNewVerifierRequiresSecret(t *testing.T) {
	_, err := NewVerifier(config.AuthConfig{})
	if !errors.Is(err, errors.CodeConfigMissing) {
		t.Errorf("expected CONFIG_MISSING, got %v", err)
	}
}

func TestIdentityContext(t *testing.T) {
	id := &Identity{Email: "operator@example.com"}
	ctx := WithIdentity(context.Background(), id)

	got, ok := IdentityFrom(ctx)
	if !ok || got.Email != "operator@example.com" {
		t.Errorf("IdentityFrom = %v, %v", got, ok)
	}

	if _, ok := IdentityFrom(context.Background()); ok {
		t.Error("expected no identity in empty context")
	}
}
