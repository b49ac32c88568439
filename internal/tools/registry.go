package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry stores tools keyed by name. Registration is last-write-wins
// so MCP servers can shadow built-ins without special casing.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: map[string]Tool{}}
}

// Register inserts or replaces a tool.
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

// Unregister removes a tool by name, if present.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, name)
}

// Get returns the tool for a name, if present.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// List returns all tools sorted by name.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	snapshot := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		snapshot = append(snapshot, tool)
	}
	r.mu.RUnlock()
	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].Name() < snapshot[j].Name()
	})
	return snapshot
}

// Execute runs the named tool. Unknown names and tool panics come back
// as failed results so a misbehaving tool cannot kill the agent loop.
func (r *Registry) Execute(ctx context.Context, name string, args Args) (result Result) {
	tool, ok := r.Get(name)
	if !ok {
		return Result{Error: "Tool not found: " + name}
	}
	defer func() {
		if rec := recover(); rec != nil {
			result = Result{Error: fmt.Sprintf("tool %s panicked: %v", name, rec)}
		}
	}()
	return tool.Execute(ctx, args)
}
