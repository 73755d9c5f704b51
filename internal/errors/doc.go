// Package errors provides typed error handling for ansiblemcp operations.
//
// Every error carries a stable code that is returned to MCP clients inside
// tool results and mapped to CLI exit codes.
//
// Example usage:
//
//	// Creating errors
//	err := errors.InsufficientScope("execute:ansible")
//	err := errors.Upstream(502, "controller unavailable")
//
//	// Wrapping errors
//	err := errors.GatewayFailed(execErr)
//
//	// Checking error codes
//	if errors.Is(err, errors.CodeUnauthorized) {
//	    // handle auth failure
//	}
//
//	// Stdlib compatibility
//	var amErr *errors.Error
//	if errors.As(err, &amErr) {
//	    fmt.Println(amErr.Code, amErr.Message)
//	}
package errors
