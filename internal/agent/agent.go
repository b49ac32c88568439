// Package agent drives the conversation loop: model text in, optional
// tool execution, result appended to the transcript, until the model
// answers without a tool call or the iteration budget runs out.
package agent

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"squire/internal/llm"
	"squire/internal/tools"
)

// DefaultMaxIterations bounds a run when no limit is configured.
const DefaultMaxIterations = 10

// Provider is the model endpoint the loop drives.
type Provider interface {
	Chat(ctx context.Context, messages []llm.Message, opts llm.ChatOptions) (string, error)
}

// Streamer is implemented by providers that can deliver chunks as they
// arrive.
type Streamer interface {
	ChatStream(ctx context.Context, messages []llm.Message, opts llm.ChatOptions, fn func(chunk string)) (string, error)
}

// Options configure an agent.
type Options struct {
	// SystemPrompt overrides the built-in persona and tool roster when
	// non-empty.
	SystemPrompt  string
	Temperature   float64
	MaxTokens     int
	MaxIterations int
	// Progress receives verbose loop milestones; nil disables them.
	Progress io.Writer
	NoColor  bool
}

// RunInfo describes how a run ended.
type RunInfo struct {
	Iterations int
	Exhausted  bool
	// ToolUses records the tool executions of the run in order, for
	// callers that persist or display them.
	ToolUses []ToolUse
}

// ToolUse is one tool execution within a run.
type ToolUse struct {
	Tool      string
	Arguments string
	Success   bool
	Output    string
}

// Agent owns one conversation loop over a provider and a tool registry.
// Runs on the same instance are serialized.
type Agent struct {
	provider Provider
	registry *tools.Registry
	opts     Options

	mu         sync.Mutex
	transcript []llm.Message
}

// New creates an agent.
func New(provider Provider, registry *tools.Registry, opts Options) *Agent {
	if opts.MaxIterations < 1 {
		opts.MaxIterations = DefaultMaxIterations
	}
	return &Agent{provider: provider, registry: registry, opts: opts}
}

// Run drives one request to completion or to iteration exhaustion.
// Provider failures end the run with an error; tool failures are fed
// back to the model as transcript entries and the loop continues.
func (a *Agent) Run(ctx context.Context, userInput string) (string, RunInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p := a.progress()
	p.start(userInput)

	system := a.systemPrompt()
	a.transcript = []llm.Message{{Role: llm.RoleUser, Content: userInput}}

	var info RunInfo
	var response string
	for info.Iterations < a.opts.MaxIterations {
		info.Iterations++
		p.iteration(info.Iterations)

		var err error
		response, err = a.provider.Chat(ctx, a.transcript, a.chatOptions(system))
		if err != nil {
			return "", info, err
		}
		p.response(response)
		a.transcript = append(a.transcript, llm.Message{Role: llm.RoleAssistant, Content: response})

		call, ok := ParseToolCall(response)
		if !ok {
			p.done()
			return response, info, nil
		}

		p.toolUse(call)
		result := a.registry.Execute(ctx, call.ToolName, call.Arguments)
		p.toolResult(result)
		info.ToolUses = append(info.ToolUses, toolUse(call, result))

		rendering := "Tool '" + call.ToolName + "' executed. "
		if result.Success {
			rendering += "Output: " + result.Output
		} else {
			rendering += "Error: " + result.Error
		}
		a.transcript = append(a.transcript, llm.Message{
			Role:    llm.RoleUser,
			Content: "[Tool Result]\n" + rendering,
		})
	}

	info.Exhausted = true
	p.exhausted(a.opts.MaxIterations)
	return response, info, nil
}

// RunStream sends a single streaming turn, bypassing the tool loop, and
// returns the full response after the last chunk. Providers without
// streaming get one Chat call and a single chunk.
func (a *Agent) RunStream(ctx context.Context, userInput string, fn func(chunk string)) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	system := a.systemPrompt()
	a.transcript = []llm.Message{{Role: llm.RoleUser, Content: userInput}}

	var response string
	var err error
	if streamer, ok := a.provider.(Streamer); ok {
		response, err = streamer.ChatStream(ctx, a.transcript, a.chatOptions(system), fn)
	} else {
		response, err = a.provider.Chat(ctx, a.transcript, a.chatOptions(system))
		if err == nil && fn != nil {
			fn(response)
		}
	}
	if err != nil {
		return "", err
	}
	a.transcript = append(a.transcript, llm.Message{Role: llm.RoleAssistant, Content: response})
	return response, nil
}

// History returns a copy of the most recent run's transcript, including
// synthetic tool-result turns.
func (a *Agent) History() []llm.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	history := make([]llm.Message, len(a.transcript))
	copy(history, a.transcript)
	return history
}

func (a *Agent) systemPrompt() string {
	if a.opts.SystemPrompt != "" {
		return a.opts.SystemPrompt
	}
	return BuildSystemPrompt(a.registry)
}

func (a *Agent) chatOptions(system string) llm.ChatOptions {
	return llm.ChatOptions{
		System:      system,
		Temperature: a.opts.Temperature,
		MaxTokens:   a.opts.MaxTokens,
	}
}

func (a *Agent) progress() *progress {
	if a.opts.Progress == nil {
		return nil
	}
	return &progress{out: a.opts.Progress, noColor: a.opts.NoColor}
}

func toolUse(call ToolCall, result tools.Result) ToolUse {
	arguments, _ := json.Marshal(call.Arguments)
	use := ToolUse{
		Tool:      call.ToolName,
		Arguments: string(arguments),
		Success:   result.Success,
		Output:    result.Output,
	}
	if !result.Success {
		use.Output = result.Error
	}
	return use
}
