package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"squire/internal/agent"
	"squire/internal/approval"
	"squire/internal/config"
	"squire/internal/history"
	"squire/internal/llm"
	"squire/internal/mcp"
	"squire/internal/ratelimit"
	"squire/internal/tools"
	"squire/internal/vector"
)

// mcpConnectTimeout bounds the startup dial of one MCP server.
const mcpConnectTimeout = 10 * time.Second

// buildOptions carry the flag values shared by agent-backed commands.
type buildOptions struct {
	configPath string
	model      string
	baseURL    string
	verbose    bool
	noColor    bool
	progress   io.Writer
}

// runtime bundles the wired agent with the stores and connections the
// commands use around it. Close releases everything.
type runtime struct {
	cfg       config.Config
	root      string
	client    *llm.Client
	registry  *tools.Registry
	approvals *approval.Handler
	agent     *agent.Agent
	history   *history.Store
	index     *vector.Store
	mcp       *mcp.Manager
	servers   []string
	sessionID string
}

// newRuntime loads config, wires the tool registry, connects MCP
// servers, and builds the agent. Optional pieces (history store,
// workspace index, individual MCP servers) degrade to warnings.
func newRuntime(opts buildOptions, stderr io.Writer) (*runtime, error) {
	cfg, root, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.model != "" {
		cfg.Model.Name = opts.model
	}
	if opts.baseURL != "" {
		cfg.Model.BaseURL = opts.baseURL
	}
	if opts.verbose {
		cfg.Agent.Verbose = true
	}

	client, err := llm.NewClient(cfg.Model.BaseURL, cfg.Model.Name, time.Duration(cfg.Model.TimeoutSeconds)*time.Second, nil)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg:       cfg,
		root:      root,
		client:    client,
		approvals: approval.NewHandler(),
		mcp:       mcp.NewManager(),
		sessionID: uuid.NewString(),
	}
	rt.approvals.Dir = root
	rt.approvals.ShellTimeout = time.Duration(cfg.Agent.ToolTimeoutSeconds) * time.Second

	if root != "" {
		rt.openWorkspaceStores(stderr)
	}
	rt.registry = newToolRegistry(cfg, root, rt.approvals, rt.index)
	rt.connectMCP(stderr)

	var progress io.Writer
	if cfg.Agent.Verbose {
		progress = opts.progress
	}
	rt.agent = agent.New(client, rt.registry, agent.Options{
		Temperature:   cfg.Model.Temperature,
		MaxTokens:     cfg.Model.MaxTokens,
		MaxIterations: cfg.Agent.MaxIterations,
		Progress:      progress,
		NoColor:       opts.noColor,
	})
	return rt, nil
}

// Close releases the stores and MCP connections.
func (rt *runtime) Close() {
	if rt.history != nil {
		_ = rt.history.Close()
	}
	if rt.index != nil {
		_ = rt.index.Close()
	}
	rt.mcp.DisconnectAll()
}

// loadConfig loads an explicit config path, or searches upward from
// the working directory, falling back to defaults when none exists.
func loadConfig(configPath string) (config.Config, string, error) {
	if strings.TrimSpace(configPath) != "" {
		abs, err := filepath.Abs(configPath)
		if err != nil {
			return config.Config{}, "", fmt.Errorf("resolve config path: %w", err)
		}
		cfg, err := config.Load(abs)
		if err != nil {
			return config.Config{}, "", err
		}
		return cfg, config.RootFromConfigPath(abs), nil
	}
	return config.LoadOrDefault("")
}

// openWorkspaceStores opens the history database and, when an index
// has been built, the vector store. Failures leave the agent running
// without the affected store.
func (rt *runtime) openWorkspaceStores(stderr io.Writer) {
	store, err := history.Open(config.HistoryPath(rt.root))
	if err != nil {
		fmt.Fprintf(stderr, "Warning: history unavailable: %v\n", err)
	} else {
		rt.history = store
	}

	indexPath := config.IndexPath(rt.root)
	if _, err := os.Stat(indexPath); err != nil {
		return
	}
	embedder := &vector.OllamaEmbedder{Client: rt.client, Model: rt.cfg.Embeddings.Model}
	index, err := vector.Open(indexPath, rt.cfg.Embeddings.Dimensions, embedder)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: workspace index unavailable: %v\n", err)
		return
	}
	rt.index = index
}

// newToolRegistry registers the built-in tools plus, when a workspace
// index exists, the semantic search tools.
func newToolRegistry(cfg config.Config, root string, approvals *approval.Handler, index *vector.Store) *tools.Registry {
	maxOut := cfg.Tools.MaxOutputBytes
	toolTimeout := time.Duration(cfg.Agent.ToolTimeoutSeconds) * time.Second
	pacer := ratelimit.PerMinute(cfg.Web.RequestsPerMinute)

	registry := tools.NewRegistry()
	registry.Register(&tools.ReadFileTool{MaxOutputBytes: maxOut})
	registry.Register(&tools.ListDirectoryTool{MaxOutputBytes: maxOut})
	registry.Register(&tools.ExecuteCommandTool{Dir: root, DefaultTimeout: toolTimeout, MaxOutputBytes: maxOut})
	registry.Register(&tools.ExecuteCodeTool{
		Interpreter:    cfg.Tools.CodeInterpreter,
		Dir:            root,
		DefaultTimeout: toolTimeout,
		MaxOutputBytes: maxOut,
	})
	registry.Register(&tools.WebSearchTool{Pacer: pacer, MaxResults: cfg.Web.MaxResults})
	registry.Register(&tools.FetchURLTool{Pacer: pacer})
	registry.Register(&tools.QuickAnswerTool{Pacer: pacer})
	registry.Register(&tools.ReadPDFTool{MaxOutputBytes: maxOut})
	registry.Register(&tools.PDFInfoTool{})
	registry.Register(&tools.SearchPDFTool{})
	registry.Register(&tools.FindPDFsTool{})
	registry.Register(&approval.CreateFileTool{Handler: approvals})
	registry.Register(&approval.ModifyFileTool{Handler: approvals})
	registry.Register(&approval.DeleteFileTool{Handler: approvals})
	registry.Register(&approval.ShellCommandTool{Handler: approvals})
	if index != nil {
		registry.Register(&tools.SemanticSearchTool{Index: index})
		registry.Register(&tools.SearchCodeTool{Index: index})
	}
	return registry
}

// connectMCP dials the enabled servers from config and registers their
// tools as <server>/<tool>. A dead server degrades to a warning.
func (rt *runtime) connectMCP(stderr io.Writer) {
	for _, server := range rt.cfg.MCPServers {
		if server.Enabled != nil && !*server.Enabled {
			continue
		}
		rt.mcp.Register(mcp.ServerConfig{
			Name:      server.Name,
			Transport: server.Transport,
			Command:   server.Command,
			Args:      server.Args,
			Env:       server.Env,
			URL:       server.URL,
		})

		ctx, cancel := context.WithTimeout(context.Background(), mcpConnectTimeout)
		client, err := rt.mcp.Connect(ctx, server.Name)
		cancel()
		if err != nil {
			fmt.Fprintf(stderr, "Warning: MCP server %s: %v\n", server.Name, err)
			continue
		}
		for _, tool := range mcp.RemoteTools(client) {
			rt.registry.Register(tool)
		}
		rt.servers = append(rt.servers, server.Name)
	}
}

// saveRun appends the finished run to the session's conversation.
// History is best-effort; a failed save warns and moves on.
func (rt *runtime) saveRun(ctx context.Context, info agent.RunInfo, stderr io.Writer) {
	if rt.history == nil {
		return
	}
	messages := rt.agent.History()
	title := ""
	for _, msg := range messages {
		if msg.Role == llm.RoleUser {
			title = history.Title(msg.Content)
			break
		}
	}
	invocations := make([]history.Invocation, 0, len(info.ToolUses))
	for _, use := range info.ToolUses {
		invocations = append(invocations, history.Invocation{
			Tool:      use.Tool,
			Arguments: use.Arguments,
			Success:   use.Success,
			Output:    use.Output,
		})
	}
	err := rt.history.SaveRun(ctx, rt.sessionID, title, rt.cfg.Model.Name, messages, invocations)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: save history: %v\n", err)
	}
}

// recordingRunner runs the agent and persists each finished run.
type recordingRunner struct {
	rt     *runtime
	stderr io.Writer
}

func (r recordingRunner) Run(ctx context.Context, input string) (string, agent.RunInfo, error) {
	response, info, err := r.rt.agent.Run(ctx, input)
	if err != nil {
		return response, info, err
	}
	r.rt.saveRun(ctx, info, r.stderr)
	return response, info, nil
}
