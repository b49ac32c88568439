package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int64  `json:"id"`
}

// RPCError is a JSON-RPC error object returned by a server.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// Client is one initialized MCP server connection.
type Client struct {
	config    ServerConfig
	transport transport
	info      ServerInfo

	mu     sync.Mutex
	nextID int64
	tools  map[string]ToolInfo
}

// Dial connects to a server, runs the initialize handshake, and loads
// its tool listing.
func Dial(ctx context.Context, config ServerConfig) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	var (
		tr  transport
		err error
	)
	switch config.Transport {
	case TransportStdio:
		tr, err = dialStdio(config)
	case TransportHTTP:
		tr, err = dialHTTP(ctx, config)
	case TransportWebSocket:
		tr, err = dialWebSocket(ctx, config)
	}
	if err != nil {
		return nil, fmt.Errorf("mcp: connect %s: %w", config.Name, err)
	}

	client := &Client{config: config, transport: tr, tools: map[string]ToolInfo{}}
	if err := client.initialize(ctx); err != nil {
		_ = tr.close()
		return nil, fmt.Errorf("mcp: initialize %s: %w", config.Name, err)
	}
	if err := client.refreshTools(ctx); err != nil {
		_ = tr.close()
		return nil, fmt.Errorf("mcp: list tools on %s: %w", config.Name, err)
	}
	return client, nil
}

// Close shuts the connection down.
func (c *Client) Close() error {
	return c.transport.close()
}

// Name returns the configured server name.
func (c *Client) Name() string {
	return c.config.Name
}

// Info returns the server identity reported during initialize.
func (c *Client) Info() ServerInfo {
	return c.info
}

// Tools returns the advertised tools sorted by name.
func (c *Client) Tools() []ToolInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ToolInfo, 0, len(c.tools))
	for _, info := range c.tools {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CallTool invokes one remote tool and returns its text content.
func (c *Client) CallTool(ctx context.Context, name string, arguments any) (CallResult, error) {
	c.mu.Lock()
	_, known := c.tools[name]
	c.mu.Unlock()
	if !known {
		return CallResult{}, fmt.Errorf("mcp: tool %q not found on server %s", name, c.config.Name)
	}

	if arguments == nil {
		arguments = map[string]any{}
	}
	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	}
	params := map[string]any{"name": name, "arguments": arguments}
	if err := c.call(ctx, "tools/call", params, &result); err != nil {
		return CallResult{}, err
	}

	var text string
	for _, part := range result.Content {
		if part.Type != "text" {
			continue
		}
		if text != "" {
			text += "\n"
		}
		text += part.Text
	}
	return CallResult{Text: text, IsError: result.IsError}, nil
}

func (c *Client) initialize(ctx context.Context) error {
	params := map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "squire", "version": "0.1.0"},
	}
	var result struct {
		ProtocolVersion string     `json:"protocolVersion"`
		ServerInfo      ServerInfo `json:"serverInfo"`
	}
	if err := c.call(ctx, "initialize", params, &result); err != nil {
		return err
	}
	c.info = result.ServerInfo
	return nil
}

func (c *Client) refreshTools(ctx context.Context) error {
	var result struct {
		Tools []ToolInfo `json:"tools"`
	}
	if err := c.call(ctx, "tools/list", map[string]any{}, &result); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tools = make(map[string]ToolInfo, len(result.Tools))
	for _, info := range result.Tools {
		c.tools[info.Name] = info
	}
	return nil
}

func (c *Client) call(ctx context.Context, method string, params any, result any) error {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.mu.Unlock()

	payload, err := json.Marshal(rpcRequest{JSONRPC: "2.0", Method: method, Params: params, ID: id})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}
	data, err := c.transport.roundTrip(ctx, payload)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}

	var response rpcResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if response.Error != nil {
		return fmt.Errorf("%s: %w", method, response.Error)
	}
	if response.ID != id {
		return fmt.Errorf("%s: response id %d does not match request id %d", method, response.ID, id)
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(response.Result, result); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}
