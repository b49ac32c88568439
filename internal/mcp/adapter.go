package mcp

import (
	"context"
	"encoding/json"
	"sort"

	"squire/internal/tools"
)

// RemoteTool adapts one server tool to the agent tool contract. It is
// registered as "<server>/<tool>" so rosters from different servers
// cannot collide.
type RemoteTool struct {
	client *Client
	info   ToolInfo
}

// RemoteTools wraps every tool a client advertises.
func RemoteTools(client *Client) []tools.Tool {
	infos := client.Tools()
	out := make([]tools.Tool, 0, len(infos))
	for _, info := range infos {
		out = append(out, &RemoteTool{client: client, info: info})
	}
	return out
}

// Name returns the namespaced tool name.
func (t *RemoteTool) Name() string {
	return t.client.Name() + "/" + t.info.Name
}

// Description returns the server-provided description.
func (t *RemoteTool) Description() string {
	return t.info.Description
}

// Params derives the parameter listing from the tool's input schema.
func (t *RemoteTool) Params() []tools.Param {
	var schema struct {
		Properties map[string]struct {
			Type        string `json:"type"`
			Description string `json:"description"`
		} `json:"properties"`
		Required []string `json:"required"`
	}
	if len(t.info.InputSchema) == 0 {
		return nil
	}
	if err := json.Unmarshal(t.info.InputSchema, &schema); err != nil {
		return nil
	}
	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make([]tools.Param, 0, len(names))
	for _, name := range names {
		property := schema.Properties[name]
		kind := property.Type
		if kind == "" {
			kind = "string"
		}
		params = append(params, tools.Param{
			Name:        name,
			Type:        kind,
			Description: property.Description,
			Required:    required[name],
		})
	}
	return params
}

// Execute forwards the call to the server and folds faults into a
// failed result.
func (t *RemoteTool) Execute(ctx context.Context, args tools.Args) tools.Result {
	result, err := t.client.CallTool(ctx, t.info.Name, args)
	if err != nil {
		return tools.Errorf("MCP tool call failed: %v", err)
	}
	if result.IsError {
		return tools.Result{Error: result.Text}
	}
	return tools.Ok(result.Text)
}
