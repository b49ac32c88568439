package webui

import (
	"encoding/json"
	"net/http"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response         string          `json:"response"`
	Iterations       int             `json:"iterations"`
	Exhausted        bool            `json:"exhausted"`
	PendingApprovals []pendingChange `json:"pending_approvals"`
}

// pendingChange is the wire form of a proposed change. Content is set
// for create operations and Diff for modify, matching what a reviewer
// needs to see before deciding.
type pendingChange struct {
	ChangeID  string `json:"change_id"`
	Operation string `json:"operation"`
	Path      string `json:"path,omitempty"`
	Command   string `json:"command,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Content   string `json:"content,omitempty"`
	Diff      string `json:"diff,omitempty"`
}

type approvalsResponse struct {
	PendingApprovals []pendingChange `json:"pending_approvals"`
}

type decisionRequest struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason"`
}

type decisionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type statusResponse struct {
	Model            string   `json:"model"`
	Tools            []string `json:"tools"`
	MCPServers       []string `json:"mcp_servers"`
	PendingApprovals int      `json:"pending_approvals"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, _ := json.Marshal(payload)
	writeBytes(w, status, data)
}

func writeBytes(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
