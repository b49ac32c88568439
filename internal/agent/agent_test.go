package agent

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"squire/internal/llm"
	"squire/internal/tools"
)

type scriptedProvider struct {
	responses []string
	err       error
	calls     [][]llm.Message
	opts      []llm.ChatOptions
}

func (s *scriptedProvider) Chat(_ context.Context, messages []llm.Message, opts llm.ChatOptions) (string, error) {
	s.calls = append(s.calls, append([]llm.Message(nil), messages...))
	s.opts = append(s.opts, opts)
	if s.err != nil {
		return "", s.err
	}
	index := len(s.calls) - 1
	if index >= len(s.responses) {
		index = len(s.responses) - 1
	}
	return s.responses[index], nil
}

type echoTool struct {
	fail bool
}

func (t echoTool) Name() string        { return "echo" }
func (t echoTool) Description() string { return "Echo the text argument back" }
func (t echoTool) Params() []tools.Param {
	return []tools.Param{{Name: "text", Type: "string", Description: "Text to echo", Required: true}}
}

func (t echoTool) Execute(_ context.Context, args tools.Args) tools.Result {
	if t.fail {
		return tools.Errorf("echo broke")
	}
	text, err := args.RequiredString("text")
	if err != nil {
		return tools.Errorf("%v", err)
	}
	return tools.Ok(text)
}

func newTestRegistry(t *testing.T, list ...tools.Tool) *tools.Registry {
	t.Helper()
	registry := tools.NewRegistry()
	for _, tool := range list {
		registry.Register(tool)
	}
	return registry
}

const echoCall = `{"action": "use_tool", "tool_name": "echo", "arguments": {"text": "polo"}}`

func TestRunDirectAnswer(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"The answer is 4."}}
	a := New(provider, newTestRegistry(t), Options{MaxIterations: 5})

	response, info, err := a.Run(context.Background(), "what is 2+2?")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if response != "The answer is 4." {
		t.Fatalf("unexpected response %q", response)
	}
	if info.Iterations != 1 || info.Exhausted {
		t.Fatalf("unexpected run info %+v", info)
	}

	history := a.History()
	if len(history) != 2 {
		t.Fatalf("expected 2 transcript entries, got %d", len(history))
	}
	if history[0].Role != llm.RoleUser || history[0].Content != "what is 2+2?" {
		t.Fatalf("unexpected first entry %+v", history[0])
	}
	if history[1].Role != llm.RoleAssistant {
		t.Fatalf("unexpected second entry %+v", history[1])
	}
}

func TestRunToolRoundTrip(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"Echoing now.\n" + echoCall,
		"It said polo.",
	}}
	a := New(provider, newTestRegistry(t, echoTool{}), Options{MaxIterations: 5})

	response, info, err := a.Run(context.Background(), "echo polo")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if response != "It said polo." {
		t.Fatalf("unexpected response %q", response)
	}
	if info.Iterations != 2 || info.Exhausted {
		t.Fatalf("unexpected run info %+v", info)
	}

	if len(provider.calls) != 2 {
		t.Fatalf("expected 2 chat calls, got %d", len(provider.calls))
	}
	second := provider.calls[1]
	if len(second) != 3 {
		t.Fatalf("expected 3 messages on second call, got %d", len(second))
	}
	last := second[2]
	if last.Role != llm.RoleUser {
		t.Fatalf("tool result should be a user turn, got %q", last.Role)
	}
	want := "[Tool Result]\nTool 'echo' executed. Output: polo"
	if last.Content != want {
		t.Fatalf("unexpected tool result turn %q", last.Content)
	}
}

func TestRunRecordsToolUses(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		echoCall,
		"It said polo.",
	}}
	a := New(provider, newTestRegistry(t, echoTool{}), Options{MaxIterations: 5})

	_, info, err := a.Run(context.Background(), "echo polo")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(info.ToolUses) != 1 {
		t.Fatalf("expected one tool use, got %v", info.ToolUses)
	}
	use := info.ToolUses[0]
	if use.Tool != "echo" || !use.Success || use.Output != "polo" {
		t.Fatalf("unexpected tool use %+v", use)
	}
	if use.Arguments != `{"text":"polo"}` {
		t.Fatalf("unexpected arguments %q", use.Arguments)
	}
}

func TestRunRecordsFailedToolUse(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		echoCall,
		"The tool failed.",
	}}
	a := New(provider, newTestRegistry(t, echoTool{fail: true}), Options{MaxIterations: 5})

	_, info, err := a.Run(context.Background(), "echo polo")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(info.ToolUses) != 1 {
		t.Fatalf("expected one tool use, got %v", info.ToolUses)
	}
	use := info.ToolUses[0]
	if use.Success || use.Output != "echo broke" {
		t.Fatalf("unexpected tool use %+v", use)
	}
}

func TestRunToolErrorFedBack(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		echoCall,
		"The tool failed.",
	}}
	a := New(provider, newTestRegistry(t, echoTool{fail: true}), Options{MaxIterations: 5})

	if _, _, err := a.Run(context.Background(), "echo polo"); err != nil {
		t.Fatalf("tool failure must not fail the run: %v", err)
	}
	last := provider.calls[1][2]
	want := "[Tool Result]\nTool 'echo' executed. Error: echo broke"
	if last.Content != want {
		t.Fatalf("unexpected tool result turn %q", last.Content)
	}
}

func TestRunUnknownToolFedBack(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"action": "use_tool", "tool_name": "missing", "arguments": {}}`,
		"No such tool.",
	}}
	a := New(provider, newTestRegistry(t), Options{MaxIterations: 5})

	if _, _, err := a.Run(context.Background(), "use the missing tool"); err != nil {
		t.Fatalf("unknown tool must not fail the run: %v", err)
	}
	last := provider.calls[1][2]
	want := "[Tool Result]\nTool 'missing' executed. Error: Tool not found: missing"
	if last.Content != want {
		t.Fatalf("unexpected tool result turn %q", last.Content)
	}
}

func TestRunExhaustsIterations(t *testing.T) {
	provider := &scriptedProvider{responses: []string{echoCall}}
	a := New(provider, newTestRegistry(t, echoTool{}), Options{MaxIterations: 3})

	response, info, err := a.Run(context.Background(), "loop forever")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !info.Exhausted || info.Iterations != 3 {
		t.Fatalf("unexpected run info %+v", info)
	}
	if response != echoCall {
		t.Fatalf("expected the last raw response, got %q", response)
	}
	if len(provider.calls) != 3 {
		t.Fatalf("expected 3 chat calls, got %d", len(provider.calls))
	}
}

func TestRunProviderErrorIsFatal(t *testing.T) {
	wantErr := errors.New("connection refused")
	provider := &scriptedProvider{err: wantErr}
	a := New(provider, newTestRegistry(t), Options{MaxIterations: 5})

	response, info, err := a.Run(context.Background(), "hello")
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected the provider error, got %v", err)
	}
	if response != "" {
		t.Fatalf("expected empty response on error, got %q", response)
	}
	if info.Iterations != 1 {
		t.Fatalf("unexpected run info %+v", info)
	}
}

func TestRunSystemPromptListsTools(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"ok"}}
	a := New(provider, newTestRegistry(t, echoTool{}), Options{MaxIterations: 2})

	if _, _, err := a.Run(context.Background(), "hi"); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	system := provider.opts[0].System
	for _, want := range []string{
		"You are Squire",
		"- echo: Echo the text argument back",
		`Format: {"action": "use_tool"`,
	} {
		if !strings.Contains(system, want) {
			t.Fatalf("system prompt missing %q:\n%s", want, system)
		}
	}
}

func TestRunSystemPromptOverride(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"ok"}}
	a := New(provider, newTestRegistry(t), Options{SystemPrompt: "be terse", MaxIterations: 2})

	if _, _, err := a.Run(context.Background(), "hi"); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if provider.opts[0].System != "be terse" {
		t.Fatalf("expected override, got %q", provider.opts[0].System)
	}
}

func TestRunTranscriptResetsBetweenRuns(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"first", "second"}}
	a := New(provider, newTestRegistry(t), Options{MaxIterations: 2})

	if _, _, err := a.Run(context.Background(), "one"); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if _, _, err := a.Run(context.Background(), "two"); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	second := provider.calls[1]
	if len(second) != 1 || second[0].Content != "two" {
		t.Fatalf("second run should start a fresh transcript, got %+v", second)
	}
}

func TestRunVerboseProgress(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		echoCall,
		"It said polo.",
	}}
	var out bytes.Buffer
	a := New(provider, newTestRegistry(t, echoTool{}), Options{
		MaxIterations: 5,
		Progress:      &out,
		NoColor:       true,
	})

	if _, _, err := a.Run(context.Background(), "echo polo"); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	text := out.String()
	for _, want := range []string{
		"Agent starting",
		"User: echo polo",
		"--- Iteration 1 ---",
		"Using tool: echo",
		`Arguments: text="polo"`,
		"Result: polo",
		"--- Iteration 2 ---",
		"Agent: It said polo.",
		"Agent complete",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("progress output missing %q:\n%s", want, text)
		}
	}
}

type streamingProvider struct {
	scriptedProvider
	chunks []string
}

func (s *streamingProvider) ChatStream(ctx context.Context, messages []llm.Message, opts llm.ChatOptions, fn func(chunk string)) (string, error) {
	s.calls = append(s.calls, append([]llm.Message(nil), messages...))
	s.opts = append(s.opts, opts)
	var full strings.Builder
	for _, chunk := range s.chunks {
		full.WriteString(chunk)
		if fn != nil {
			fn(chunk)
		}
	}
	return full.String(), nil
}

func TestRunStreamDeliversChunks(t *testing.T) {
	provider := &streamingProvider{chunks: []string{"hel", "lo"}}
	a := New(provider, newTestRegistry(t), Options{MaxIterations: 2})

	var got []string
	response, err := a.RunStream(context.Background(), "hi", func(chunk string) {
		got = append(got, chunk)
	})
	if err != nil {
		t.Fatalf("stream failed: %v", err)
	}
	if response != "hello" {
		t.Fatalf("unexpected response %q", response)
	}
	if len(got) != 2 || got[0] != "hel" || got[1] != "lo" {
		t.Fatalf("unexpected chunks %v", got)
	}
}

func TestRunStreamFallsBackToChat(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"hello"}}
	a := New(provider, newTestRegistry(t), Options{MaxIterations: 2})

	var got []string
	response, err := a.RunStream(context.Background(), "hi", func(chunk string) {
		got = append(got, chunk)
	})
	if err != nil {
		t.Fatalf("stream failed: %v", err)
	}
	if response != "hello" {
		t.Fatalf("unexpected response %q", response)
	}
	if len(got) != 1 || got[0] != "hello" {
		t.Fatalf("expected one whole-response chunk, got %v", got)
	}
}
