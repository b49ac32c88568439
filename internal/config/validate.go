package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Issue captures a validation problem with a config field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError aggregates config validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error renders validation errors as a multi-line string.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "config validation failed"
	}
	lines := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		lines = append(lines, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return strings.Join(lines, "\n")
}

// Validate checks a normalized config for correctness.
func Validate(cfg *Config) error {
	var issues []Issue
	add := func(field, message string) {
		issues = append(issues, Issue{Field: field, Message: message})
	}

	if cfg.Version != 1 {
		add("version", fmt.Sprintf("unsupported version %d", cfg.Version))
	}

	if strings.TrimSpace(cfg.Model.Name) == "" {
		add("model.name", "is required")
	}
	if u, err := url.Parse(cfg.Model.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		add("model.base_url", fmt.Sprintf("must be an absolute URL, got %q", cfg.Model.BaseURL))
	}
	if cfg.Model.Temperature < 0 || cfg.Model.Temperature > 2 {
		add("model.temperature", "must be between 0 and 2")
	}
	if cfg.Model.MaxTokens < 1 {
		add("model.max_tokens", "must be >= 1")
	}
	if cfg.Model.TimeoutSeconds < 1 {
		add("model.timeout_seconds", "must be >= 1")
	}

	if cfg.Agent.MaxIterations < 1 {
		add("agent.max_iterations", "must be >= 1")
	}
	if cfg.Agent.ToolTimeoutSeconds < 1 {
		add("agent.tool_timeout_seconds", "must be >= 1")
	}

	if cfg.Embeddings.Dimensions < 1 {
		add("embeddings.dimensions", "must be >= 1")
	}
	if cfg.Web.MaxResults < 1 || cfg.Web.MaxResults > 10 {
		add("web.max_results", "must be between 1 and 10")
	}
	if cfg.Web.RequestsPerMinute < 1 {
		add("web.requests_per_minute", "must be >= 1")
	}

	names := map[string]struct{}{}
	for i, server := range cfg.MCPServers {
		fieldPrefix := fmt.Sprintf("mcp_servers[%d]", i)
		name := strings.TrimSpace(server.Name)
		if name == "" {
			add(fieldPrefix+".name", "is required")
		} else if _, exists := names[name]; exists {
			add("mcp_servers.name", fmt.Sprintf("duplicate name %q", name))
		} else {
			names[name] = struct{}{}
		}
		if strings.Contains(name, "/") {
			add(fieldPrefix+".name", "must not contain '/'")
		}

		switch server.Transport {
		case "stdio":
			if strings.TrimSpace(server.Command) == "" {
				add(fieldPrefix+".command", "is required for stdio transport")
			}
		case "http", "websocket":
			if u, err := url.Parse(server.URL); err != nil || u.Scheme == "" || u.Host == "" {
				add(fieldPrefix+".url", fmt.Sprintf("must be an absolute URL for %s transport", server.Transport))
			}
		default:
			add(fieldPrefix+".transport", fmt.Sprintf("unsupported transport %q", server.Transport))
		}
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
