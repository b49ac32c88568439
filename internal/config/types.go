package config

// Config is the parsed .squire/config.yml.
type Config struct {
	Version    int               `yaml:"version"`
	Model      ModelConfig       `yaml:"model"`
	Agent      AgentConfig       `yaml:"agent"`
	Tools      ToolsConfig       `yaml:"tools"`
	Embeddings EmbeddingsConfig  `yaml:"embeddings"`
	Web        WebConfig         `yaml:"web"`
	MCPServers []MCPServerConfig `yaml:"mcp_servers"`
}

// ModelConfig selects and tunes the chat model.
type ModelConfig struct {
	Name           string  `yaml:"name"`
	BaseURL        string  `yaml:"base_url"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// AgentConfig bounds the control loop.
type AgentConfig struct {
	MaxIterations      int  `yaml:"max_iterations"`
	ToolTimeoutSeconds int  `yaml:"tool_timeout_seconds"`
	Verbose            bool `yaml:"verbose"`
}

// ToolsConfig tunes the built-in tools.
type ToolsConfig struct {
	CodeInterpreter string `yaml:"code_interpreter"`
	MaxOutputBytes  int    `yaml:"max_output_bytes"`
}

// EmbeddingsConfig selects the embedding model for the workspace index.
type EmbeddingsConfig struct {
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// WebConfig tunes the web tools.
type WebConfig struct {
	MaxResults        int `yaml:"max_results"`
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

// MCPServerConfig describes one MCP server connection.
type MCPServerConfig struct {
	Name      string            `yaml:"name"`
	Transport string            `yaml:"transport"`
	Command   string            `yaml:"command"`
	Args      []string          `yaml:"args"`
	Env       map[string]string `yaml:"env"`
	URL       string            `yaml:"url"`
	Enabled   *bool             `yaml:"enabled"`
}
