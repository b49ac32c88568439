package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultConfig = `version: 1

model:
  name: "mistral"
  base_url: "http://localhost:11434"
  temperature: 0.7
  max_tokens: 2048
  timeout_seconds: 120

agent:
  max_iterations: 10
  tool_timeout_seconds: 30
  verbose: false

tools:
  code_interpreter: "python3"

embeddings:
  model: "nomic-embed-text"
  dimensions: 768

web:
  max_results: 5
  requests_per_minute: 30

# mcp_servers:
#   - name: filesystem
#     transport: stdio
#     command: "npx"
#     args: ["-y", "@modelcontextprotocol/server-filesystem", "."]
#   - name: search
#     transport: websocket
#     url: "ws://localhost:9090/rpc"
`

// Scaffold writes a commented default config at configPath,
// refusing to overwrite an existing file.
func Scaffold(configPath string) error {
	if configPath == "" {
		return fmt.Errorf("config path is required")
	}
	if info, err := os.Stat(configPath); err == nil {
		if info.IsDir() {
			return fmt.Errorf("config path %q is a directory", configPath)
		}
		return fmt.Errorf("config file already exists at %q", configPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
