package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorFormat(t *testing.T) {
	err := New(CodeInvalidParams, "template_id is required")
	want := "INVALID_PARAMS: template_id is required"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestErrorFormatWrapped(t *testing.T) {
	inner := stderrors.New("connection refused")
	err := Wrap(CodeUpstreamError, "upstream request failed", inner)
	want := "UPSTREAM_ERROR: upstream request failed: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestUnwrap(t *testing.T) {
	inner := stderrors.New("connection refused")
	err := UpstreamWrap(inner)

	if !stderrors.Is(err, inner) {
		t.Error("expected errors.Is to find wrapped error")
	}
}

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain error", stderrors.New("boom"), ""},
		{"coded error", InsufficientScope("manage:ansible"), CodeInsufficientScope},
		{"wrapped coded error", fmt.Errorf("context: %w", TokenExpired()), CodeTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Code(tt.err); got != tt.want {
				t.Errorf("Code() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := ToolgroupNotFound("mcp::ansible")
	if !Is(err, CodeToolgroupNotFound) {
		t.Error("expected Is to match TOOLGROUP_NOT_FOUND")
	}
	if Is(err, CodeUnauthorized) {
		t.Error("expected Is not to match UNAUTHORIZED")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		err  *Error
		code string
	}{
		{ConfigMissing("AAP_TOKEN"), CodeConfigMissing},
		{Unauthorized("missing bearer token"), CodeUnauthorized},
		{TokenExpired(), CodeTokenExpired},
		{InsufficientScope("read:ansible"), CodeInsufficientScope},
		{Upstream(502, "bad gateway"), CodeUpstreamError},
		{StackUnavailable("http://localhost:8321", stderrors.New("dial")), CodeStackUnavailable},
		{ToolgroupNotFound("mcp::eda"), CodeToolgroupNotFound},
		{InvalidParams("missing name"), CodeInvalidParams},
		{GatewayFailed(stderrors.New("exit 1")), CodeGatewayFailed},
		{TransportClosed(), CodeTransportClosed},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.code)
			}
			if tt.err.Message == "" {
				t.Error("expected non-empty message")
			}
		})
	}
}
