package webui

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"squire/internal/approval"
	"squire/internal/tools"
)

const indexHTML = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Squire</title>
    <style>
      body { margin: 0; font-family: -apple-system, "Segoe UI", sans-serif; background: #f4f4f4; color: #222; }
      .page { max-width: 760px; margin: 0 auto; padding: 16px; display: flex; flex-direction: column; height: 100vh; box-sizing: border-box; }
      header { border-bottom: 2px solid #ccc; padding-bottom: 8px; }
      header h1 { margin: 0; font-size: 20px; }
      header p { margin: 2px 0 0; color: #666; font-size: 13px; }
      #messages { flex: 1; overflow-y: auto; padding: 12px 0; }
      .message { margin: 6px 0; padding: 8px 12px; border-radius: 6px; white-space: pre-wrap; }
      .message.user { background: #d8e8ff; margin-left: 48px; }
      .message.agent { background: #fff; border: 1px solid #ddd; margin-right: 48px; }
      .message.error { background: #ffe0e0; border: 1px solid #e0a0a0; margin-right: 48px; }
      .message.thinking { color: #888; font-style: italic; }
      .approval { background: #fff8e0; border: 1px solid #e0c878; border-radius: 6px; padding: 8px 12px; margin: 6px 0; }
      .approval h3 { margin: 0 0 4px; font-size: 14px; }
      .approval pre { background: #f0f0f0; padding: 6px; overflow-x: auto; font-size: 12px; max-height: 160px; }
      .approval button { margin-right: 8px; padding: 4px 12px; cursor: pointer; }
      #composer { display: flex; gap: 8px; padding-top: 8px; border-top: 2px solid #ccc; }
      #prompt { flex: 1; padding: 8px; font-size: 14px; }
      #composer button { padding: 8px 16px; cursor: pointer; }
    </style>
  </head>
  <body>
    <div class="page">
      <header>
        <h1>Squire</h1>
        <p>Local coding agent</p>
      </header>
      <div id="messages"></div>
      <div id="approvals"></div>
      <form id="composer">
        <input id="prompt" autocomplete="off" placeholder="Ask the agent..." />
        <button type="submit">Send</button>
      </form>
    </div>
    <script>
      var messages = document.getElementById("messages");
      var approvals = document.getElementById("approvals");
      var composer = document.getElementById("composer");
      var prompt = document.getElementById("prompt");

      function addMessage(role, text) {
        var div = document.createElement("div");
        div.className = "message " + role;
        div.textContent = text;
        messages.appendChild(div);
        messages.scrollTop = messages.scrollHeight;
        return div;
      }

      function renderApprovals(list) {
        approvals.textContent = "";
        (list || []).forEach(function (change) {
          var card = document.createElement("div");
          card.className = "approval";
          var title = document.createElement("h3");
          title.textContent = "Approval required: " + change.change_id + " (" + change.operation + ")";
          card.appendChild(title);
          var target = document.createElement("div");
          target.textContent = change.command ? "Command: " + change.command : "Path: " + change.path;
          card.appendChild(target);
          if (change.reason) {
            var reason = document.createElement("div");
            reason.textContent = "Reason: " + change.reason;
            card.appendChild(reason);
          }
          var body = change.diff || change.content;
          if (body) {
            var pre = document.createElement("pre");
            pre.textContent = body;
            card.appendChild(pre);
          }
          var approve = document.createElement("button");
          approve.textContent = "Approve";
          approve.onclick = function () { decide(change.change_id, true); };
          card.appendChild(approve);
          var reject = document.createElement("button");
          reject.textContent = "Reject";
          reject.onclick = function () { decide(change.change_id, false); };
          card.appendChild(reject);
          approvals.appendChild(card);
        });
      }

      function decide(changeID, approved) {
        fetch("/api/approvals/" + encodeURIComponent(changeID), {
          method: "POST",
          headers: { "Content-Type": "application/json" },
          body: JSON.stringify({ approved: approved }),
        })
          .then(function (resp) { return resp.json(); })
          .then(function (data) {
            addMessage(data.success ? "agent" : "error", data.message);
            return fetch("/api/approvals");
          })
          .then(function (resp) { return resp.json(); })
          .then(function (data) { renderApprovals(data.pending_approvals); })
          .catch(function (err) { addMessage("error", String(err)); });
      }

      composer.addEventListener("submit", function (event) {
        event.preventDefault();
        var message = prompt.value.trim();
        if (!message) {
          return;
        }
        prompt.value = "";
        addMessage("user", message);
        var thinking = addMessage("thinking", "Thinking...");
        fetch("/api/chat", {
          method: "POST",
          headers: { "Content-Type": "application/json" },
          body: JSON.stringify({ message: message }),
        })
          .then(function (resp) { return resp.json(); })
          .then(function (data) {
            thinking.remove();
            if (data.error) {
              addMessage("error", data.error);
              return;
            }
            addMessage("agent", data.response);
            renderApprovals(data.pending_approvals);
          })
          .catch(function (err) {
            thinking.remove();
            addMessage("error", String(err));
          });
      });

      prompt.focus();
    </script>
  </body>
</html>`

// NewHandler builds the HTTP handler for the chat page and the JSON
// API behind it.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.Runner == nil {
		return nil, errors.New("webui: runner is required")
	}
	if cfg.Approvals == nil {
		return nil, errors.New("webui: approval handler is required")
	}

	servers := make([]string, 0, len(cfg.MCPServers))
	servers = append(servers, cfg.MCPServers...)
	h := &handler{
		runner:     cfg.Runner,
		registry:   cfg.Registry,
		approvals:  cfg.Approvals,
		model:      cfg.Model,
		mcpServers: servers,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", h.serveIndex)
	mux.HandleFunc("/api/chat", h.handleChat)
	mux.HandleFunc("/api/status", h.handleStatus)
	mux.HandleFunc("/api/approvals", h.handleApprovals)
	mux.HandleFunc("/api/approvals/", h.handleDecision)
	return mux, nil
}

type handler struct {
	runner     Runner
	registry   *tools.Registry
	approvals  *approval.Handler
	model      string
	mcpServers []string
}

// serveIndex writes the chat page shell.
func (h *handler) serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, indexHTML)
}

func (h *handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req chatRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "No message provided")
		return
	}

	response, info, err := h.runner.Run(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			writeError(w, http.StatusRequestTimeout, "the model took too long to answer")
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{
		Response:         response,
		Iterations:       info.Iterations,
		Exhausted:        info.Exhausted,
		PendingApprovals: h.pendingList(),
	})
}

func (h *handler) handleApprovals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, approvalsResponse{PendingApprovals: h.pendingList()})
}

// handleDecision approves or rejects one pending change. Unknown ids
// come back as success=false with the handler's message, not a 404,
// so the page shows the same text the CLI would print.
func (h *handler) handleDecision(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	changeID := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/api/approvals/"))
	if changeID == "" || strings.Contains(changeID, "/") {
		http.NotFound(w, r)
		return
	}
	var req decisionRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var result tools.Result
	if req.Approved {
		result = h.approvals.Approve(r.Context(), changeID)
	} else {
		result = h.approvals.Reject(changeID, req.Reason)
	}
	message := result.Output
	if !result.Success {
		message = result.Error
	}
	writeJSON(w, http.StatusOK, decisionResponse{Success: result.Success, Message: message})
}

func (h *handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	names := []string{}
	if h.registry != nil {
		for _, tool := range h.registry.List() {
			names = append(names, tool.Name())
		}
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Model:            h.model,
		Tools:            names,
		MCPServers:       h.mcpServers,
		PendingApprovals: len(h.approvals.Pending()),
	})
}

// pendingList snapshots the pending changes in proposal order.
func (h *handler) pendingList() []pendingChange {
	pending := h.approvals.Pending()
	ids := make([]string, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := changeOrdinal(ids[i]), changeOrdinal(ids[j])
		if a != b {
			return a < b
		}
		return ids[i] < ids[j]
	})

	list := make([]pendingChange, 0, len(ids))
	for _, id := range ids {
		list = append(list, wireChange(id, pending[id]))
	}
	return list
}

// changeOrdinal parses the numeric suffix of a change id so that
// change_10 sorts after change_9.
func changeOrdinal(id string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "change_"))
	if err != nil {
		return math.MaxInt
	}
	return n
}

func wireChange(id string, change approval.Change) pendingChange {
	wire := pendingChange{
		ChangeID:  id,
		Operation: change.Op,
		Path:      change.Path,
		Command:   change.Command,
		Reason:    change.Reason,
	}
	switch change.Op {
	case approval.OpCreate:
		wire.Content = change.Content
	case approval.OpModify:
		wire.Diff = change.Diff()
	}
	return wire
}
