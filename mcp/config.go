package mcp

import (
	"io"
	"log/slog"
)

// Config holds the MCP server configuration
type Config struct {
	// Root is used when a tool call omits its root argument
	Root string

	// Database, empty disables persistence
	DatabaseURL     string
	LibsqlAuthToken string

	// Transport, defaults to stdin/stdout
	Input  io.Reader
	Output io.Writer

	Logger *slog.Logger
	Debug  bool
}

// DefaultConfig returns a config without persistence
func DefaultConfig() Config {
	return Config{}
}
