package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/ansible-mcp/ansiblemcp/internal/config"
	"github.com/ansible-mcp/ansiblemcp/internal/errors"
)

// outputJSON marshals and prints JSON to stdout.
func outputJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// isTerminal checks if the given file descriptor is a TTY.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// getExitCode maps error codes to CLI exit codes.
func getExitCode(err error) int {
	if err == nil {
		return 0
	}

	switch errors.Code(err) {
	case errors.CodeConfigMissing:
		return 2 // Missing configuration
	case errors.CodeUnauthorized, errors.CodeTokenExpired, errors.CodeInsufficientScope:
		return 3 // Authentication / authorization
	case errors.CodeStackUnavailable:
		return 4 // llama-stack unreachable
	case errors.CodeToolgroupNotFound, errors.CodeChatNotFound:
		return 5 // Named resource not found
	case errors.CodeGatewayFailed:
		return 6 // Gateway child failure
	default:
		return 1 // General error
	}
}

// loadConfig loads configuration from file and environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// chatlogPath returns the path of the conversation database, next to the
// config file.
func chatlogPath() (string, error) {
	configPath, err := config.Path()
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return filepath.Join(dir, "chats.db"), nil
}

// printError prints an error to stderr with appropriate formatting.
func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
