// Package approval implements the two-phase protocol for mutating
// operations: tools propose changes, an external decision approves or
// rejects them, and only approval performs the effect.
package approval

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"squire/internal/tools"
)

// Notifier receives proposal events, typically forwarding them to a
// terminal printer or an IDE bridge.
type Notifier interface {
	ChangeProposed(changeID string, change Change)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(changeID string, change Change)

func (f NotifierFunc) ChangeProposed(changeID string, change Change) { f(changeID, change) }

// Handler tracks proposed changes until they are approved or rejected.
// Proposals come from the agent loop and decisions from a separate
// input channel, so the pending map is mutex-guarded. The lock covers
// the whole approve, effect included, so concurrent decisions on one
// id cannot double-apply.
type Handler struct {
	mu       sync.Mutex
	pending  map[string]Change
	counter  int
	notifier Notifier

	// Dir anchors relative file paths; empty means the process
	// working directory.
	Dir string

	// ShellTimeout bounds approved shell commands.
	ShellTimeout time.Duration
}

// NewHandler creates a handler with no pending changes.
func NewHandler() *Handler {
	return &Handler{pending: map[string]Change{}}
}

// SetNotifier installs the proposal notifier.
func (h *Handler) SetNotifier(n Notifier) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notifier = n
}

// RequestApproval stores a change as pending and returns its id. The
// notifier, when set, is told about the proposal; the call never
// blocks on the decision.
func (h *Handler) RequestApproval(change Change) string {
	h.mu.Lock()
	h.counter++
	changeID := fmt.Sprintf("change_%d", h.counter)
	h.pending[changeID] = change
	notifier := h.notifier
	h.mu.Unlock()

	if notifier != nil {
		notifier.ChangeProposed(changeID, change)
	}
	return changeID
}

// Approve executes a pending change. Success removes it from the
// pending map; failure keeps it there so the decision can be retried
// or the change explicitly rejected.
func (h *Handler) Approve(ctx context.Context, changeID string) tools.Result {
	h.mu.Lock()
	defer h.mu.Unlock()

	change, ok := h.pending[changeID]
	if !ok {
		return tools.Errorf("Change %s not found", changeID)
	}
	result := h.apply(ctx, change)
	if result.Success {
		delete(h.pending, changeID)
	}
	return result
}

// Reject removes a pending change without executing it. Rejecting an
// unknown id is the only way a reject fails.
func (h *Handler) Reject(changeID, reason string) tools.Result {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.pending[changeID]; !ok {
		return tools.Errorf("Change %s not found", changeID)
	}
	delete(h.pending, changeID)
	if reason != "" {
		return tools.Ok("Change rejected: " + reason)
	}
	return tools.Ok("Change rejected")
}

// Get returns a pending change by id.
func (h *Handler) Get(changeID string) (Change, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	change, ok := h.pending[changeID]
	return change, ok
}

// Pending returns a snapshot of the pending changes keyed by id.
func (h *Handler) Pending() map[string]Change {
	h.mu.Lock()
	defer h.mu.Unlock()
	snapshot := make(map[string]Change, len(h.pending))
	for id, change := range h.pending {
		snapshot[id] = change
	}
	return snapshot
}

// resolve anchors a relative path at the handler's directory.
func (h *Handler) resolve(path string) string {
	if h.Dir == "" {
		return path
	}
	return filepath.Join(h.Dir, path)
}
