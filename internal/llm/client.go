package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Message roles understood by the chat endpoint.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatOptions tune a single chat request.
type ChatOptions struct {
	System      string
	Temperature float64
	MaxTokens   int
}

// HTTPDoer abstracts HTTP clients used by Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to an Ollama-compatible API.
type Client struct {
	BaseURL string
	Model   string
	HTTP    HTTPDoer
}

// NewClient constructs a client with explicit settings.
func NewClient(baseURL, model string, timeout time.Duration, client HTTPDoer) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		HTTP:    client,
	}, nil
}

// chatRequest is the JSON payload sent to /api/chat.
type chatRequest struct {
	Model    string       `json:"model"`
	Messages []Message    `json:"messages"`
	Stream   bool         `json:"stream"`
	Options  *chatTuning  `json:"options,omitempty"`
}

// chatTuning maps ChatOptions onto the API's options object.
type chatTuning struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// chatResponse is one /api/chat payload, complete or a stream chunk.
type chatResponse struct {
	Message Message `json:"message"`
	Done    bool    `json:"done"`
	Error   string  `json:"error"`
}

// Chat sends a blocking completion request and returns the assistant text.
func (c *Client) Chat(ctx context.Context, messages []Message, opts ChatOptions) (string, error) {
	resp, err := c.postChat(ctx, messages, opts, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if decoded.Error != "" {
		return "", fmt.Errorf("ollama error: %s", decoded.Error)
	}
	return decoded.Message.Content, nil
}

// postChat builds and sends a chat request, mapping failures to
// actionable errors. Callers own the response body on success.
func (c *Client) postChat(ctx context.Context, messages []Message, opts ChatOptions, stream bool) (*http.Response, error) {
	requestBody := chatRequest{
		Model:    c.Model,
		Messages: buildMessages(messages, opts.System),
		Stream:   stream,
	}
	if opts.Temperature != 0 || opts.MaxTokens != 0 {
		requestBody.Options = &chatTuning{
			Temperature: opts.Temperature,
			NumPredict:  opts.MaxTokens,
		}
	}
	payload, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.BaseURL + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contact Ollama at %s (is it running?): %w", c.BaseURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		message := strings.TrimSpace(string(body))
		if resp.StatusCode == http.StatusNotFound && strings.Contains(message, "not found") {
			return nil, fmt.Errorf("model %q is not available (try: ollama pull %s)", c.Model, c.Model)
		}
		return nil, fmt.Errorf("ollama error: %s", message)
	}
	return resp, nil
}

// buildMessages prepends the system prompt when one is configured.
func buildMessages(messages []Message, system string) []Message {
	if strings.TrimSpace(system) == "" {
		return messages
	}
	out := make([]Message, 0, len(messages)+1)
	out = append(out, Message{Role: RoleSystem, Content: system})
	return append(out, messages...)
}
