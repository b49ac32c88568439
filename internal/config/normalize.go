package config

import "os"

// Defaults applied by Normalize.
const (
	DefaultModel             = "mistral"
	DefaultBaseURL           = "http://localhost:11434"
	DefaultTemperature       = 0.7
	DefaultMaxTokens         = 2048
	DefaultTimeoutSeconds    = 120
	DefaultMaxIterations     = 10
	DefaultToolTimeoutSecs   = 30
	DefaultCodeInterpreter   = "python3"
	DefaultMaxOutputBytes    = 64 * 1024
	DefaultEmbeddingModel    = "nomic-embed-text"
	DefaultEmbeddingDims     = 768
	DefaultWebMaxResults     = 5
	DefaultWebRequestsPerMin = 30
)

// Normalize fills zero-valued fields with defaults and applies
// environment overrides. SQUIRE_MODEL and SQUIRE_BASE_URL win over
// file values so a shell session can retarget without editing config.
func Normalize(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if cfg.Model.Name == "" {
		cfg.Model.Name = DefaultModel
	}
	if cfg.Model.BaseURL == "" {
		cfg.Model.BaseURL = DefaultBaseURL
	}
	if cfg.Model.Temperature == 0 {
		cfg.Model.Temperature = DefaultTemperature
	}
	if cfg.Model.MaxTokens == 0 {
		cfg.Model.MaxTokens = DefaultMaxTokens
	}
	if cfg.Model.TimeoutSeconds == 0 {
		cfg.Model.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if cfg.Agent.MaxIterations == 0 {
		cfg.Agent.MaxIterations = DefaultMaxIterations
	}
	if cfg.Agent.ToolTimeoutSeconds == 0 {
		cfg.Agent.ToolTimeoutSeconds = DefaultToolTimeoutSecs
	}
	if cfg.Tools.CodeInterpreter == "" {
		cfg.Tools.CodeInterpreter = DefaultCodeInterpreter
	}
	if cfg.Tools.MaxOutputBytes == 0 {
		cfg.Tools.MaxOutputBytes = DefaultMaxOutputBytes
	}
	if cfg.Embeddings.Model == "" {
		cfg.Embeddings.Model = DefaultEmbeddingModel
	}
	if cfg.Embeddings.Dimensions == 0 {
		cfg.Embeddings.Dimensions = DefaultEmbeddingDims
	}
	if cfg.Web.MaxResults == 0 {
		cfg.Web.MaxResults = DefaultWebMaxResults
	}
	if cfg.Web.RequestsPerMinute == 0 {
		cfg.Web.RequestsPerMinute = DefaultWebRequestsPerMin
	}
	for i := range cfg.MCPServers {
		if cfg.MCPServers[i].Transport == "" {
			cfg.MCPServers[i].Transport = "stdio"
		}
	}

	if v := os.Getenv("SQUIRE_MODEL"); v != "" {
		cfg.Model.Name = v
	}
	if v := os.Getenv("SQUIRE_BASE_URL"); v != "" {
		cfg.Model.BaseURL = v
	}
}
