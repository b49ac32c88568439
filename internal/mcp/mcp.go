// Package mcp connects to Model Context Protocol servers over stdio,
// HTTP, or websocket and surfaces their tools to the agent.
package mcp

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Supported transports.
const (
	TransportStdio     = "stdio"
	TransportHTTP      = "http"
	TransportWebSocket = "websocket"
)

// protocolVersion is the MCP revision this client speaks.
const protocolVersion = "2024-11-05"

// ServerConfig describes one MCP server connection.
type ServerConfig struct {
	Name      string
	Transport string
	Command   string
	Args      []string
	Env       map[string]string
	URL       string
}

// Validate checks a server config before dialing.
func (c ServerConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("mcp: server name is empty")
	}
	switch c.Transport {
	case TransportStdio:
		if strings.TrimSpace(c.Command) == "" {
			return fmt.Errorf("mcp: server %s: stdio transport needs a command", c.Name)
		}
	case TransportHTTP, TransportWebSocket:
		if strings.TrimSpace(c.URL) == "" {
			return fmt.Errorf("mcp: server %s: %s transport needs a url", c.Name, c.Transport)
		}
	default:
		return fmt.Errorf("mcp: server %s: unknown transport %q", c.Name, c.Transport)
	}
	return nil
}

// ServerInfo identifies the remote server after initialize.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ToolInfo describes one tool advertised by a server.
type ToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// CallResult is the text payload of a tools/call response.
type CallResult struct {
	Text    string
	IsError bool
}
