package cucumber

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"squire/internal/agent"
	"squire/internal/approval"
	"squire/internal/llm"
	"squire/internal/tools"

	"github.com/cucumber/godog"
)

// scriptedModel returns canned replies in order, standing in for the
// Ollama provider.
type scriptedModel struct {
	replies []string
	calls   int
}

func (m *scriptedModel) Chat(ctx context.Context, messages []llm.Message, opts llm.ChatOptions) (string, error) {
	if m.calls >= len(m.replies) {
		return "", fmt.Errorf("model asked for reply %d but only %d were scripted", m.calls+1, len(m.replies))
	}
	reply := m.replies[m.calls]
	m.calls++
	return reply, nil
}

// agentState holds the approval-workflow scenario pieces.
type agentState struct {
	workDir      string
	handler      *approval.Handler
	registry     *tools.Registry
	model        *scriptedModel
	agent        *agent.Agent
	answer       string
	runErr       error
	lastChangeID string
	lastDecision tools.Result
}

func (s *featureState) registerAgentSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^a workspace with approval-gated tools$`, s.aWorkspaceWithApprovalTools)
	ctx.Step(`^the model will reply:$`, s.theModelWillReply)
	ctx.Step(`^the user asks the agent to "([^"]+)"$`, s.theUserAsksTheAgent)
	ctx.Step(`^the transcript records "([^"]+)"$`, s.theTranscriptRecords)
	ctx.Step(`^the workspace has a file "([^"]+)" containing "([^"]+)"$`, s.theWorkspaceHasFile)
	ctx.Step(`^the workspace file "([^"]+)" does not exist$`, s.theWorkspaceFileDoesNotExist)
	ctx.Step(`^the workspace file "([^"]+)" contains "([^"]+)"$`, s.theWorkspaceFileContains)
	ctx.Step(`^the agent proposes deleting "([^"]+)"$`, s.theAgentProposesDeleting)
	ctx.Step(`^the agent proposes creating "([^"]+)" with content "([^"]+)"$`, s.theAgentProposesCreating)
	ctx.Step(`^the user approves the pending change$`, s.theUserApprovesThePendingChange)
	ctx.Step(`^the user rejects the pending change with reason "([^"]+)"$`, s.theUserRejectsThePendingChange)
	ctx.Step(`^no changes are pending$`, s.noChangesArePending)
	ctx.Step(`^deciding the same change again fails$`, s.decidingTheSameChangeAgainFails)
	ctx.Step(`^the approval fails mentioning "([^"]+)"$`, s.theApprovalFailsMentioning)
	ctx.Step(`^the change is still pending$`, s.theChangeIsStillPending)
}

func (s *featureState) aWorkspaceWithApprovalTools() error {
	dir, err := os.MkdirTemp("", "squire-workspace-*")
	if err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	s.workDir = dir

	s.handler = approval.NewHandler()
	s.handler.Dir = dir
	s.registry = tools.NewRegistry()
	s.registry.Register(&approval.CreateFileTool{Handler: s.handler})
	s.registry.Register(&approval.ModifyFileTool{Handler: s.handler})
	s.registry.Register(&approval.DeleteFileTool{Handler: s.handler})
	s.registry.Register(&approval.ShellCommandTool{Handler: s.handler})
	s.model = &scriptedModel{}
	return nil
}

func (s *featureState) theModelWillReply(reply *godog.DocString) error {
	if s.model == nil {
		return fmt.Errorf("no workspace set up")
	}
	s.model.replies = append(s.model.replies, reply.Content)
	return nil
}

func (s *featureState) theUserAsksTheAgent(input string) error {
	if s.model == nil || s.registry == nil {
		return fmt.Errorf("no workspace set up")
	}
	s.agent = agent.New(s.model, s.registry, agent.Options{MaxIterations: 4})
	s.answer, _, s.runErr = s.agent.Run(context.Background(), input)
	return s.runErr
}

func (s *featureState) theTranscriptRecords(text string) error {
	if s.agent == nil {
		return fmt.Errorf("agent has not run")
	}
	for _, message := range s.agent.History() {
		if strings.Contains(message.Content, text) {
			return nil
		}
	}
	return fmt.Errorf("transcript does not contain %q", text)
}

func (s *featureState) theWorkspaceHasFile(relPath, content string) error {
	path := filepath.Join(s.workDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func (s *featureState) theWorkspaceFileDoesNotExist(relPath string) error {
	path := filepath.Join(s.workDir, filepath.FromSlash(relPath))
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("expected %s to not exist", relPath)
	}
	return nil
}

func (s *featureState) theWorkspaceFileContains(relPath, content string) error {
	path := filepath.Join(s.workDir, filepath.FromSlash(relPath))
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", relPath, err)
	}
	if string(data) != content {
		return fmt.Errorf("file %s = %q, want %q", relPath, data, content)
	}
	return nil
}

func (s *featureState) theAgentProposesDeleting(relPath string) error {
	result := s.registry.Execute(context.Background(), "delete_file", jsonArgs(map[string]string{
		"path":   relPath,
		"reason": "scenario cleanup",
	}))
	if !result.Success {
		return fmt.Errorf("delete_file proposal failed: %s", result.Error)
	}
	return s.captureSinglePendingID()
}

func (s *featureState) theAgentProposesCreating(relPath, content string) error {
	result := s.registry.Execute(context.Background(), "create_file", jsonArgs(map[string]string{
		"path":    relPath,
		"content": content,
	}))
	if !result.Success {
		return fmt.Errorf("create_file proposal failed: %s", result.Error)
	}
	return s.captureSinglePendingID()
}

func (s *featureState) theUserApprovesThePendingChange() error {
	if err := s.captureSinglePendingID(); err != nil {
		return err
	}
	s.lastDecision = s.handler.Approve(context.Background(), s.lastChangeID)
	return nil
}

func (s *featureState) theUserRejectsThePendingChange(reason string) error {
	if err := s.captureSinglePendingID(); err != nil {
		return err
	}
	s.lastDecision = s.handler.Reject(s.lastChangeID, reason)
	if !s.lastDecision.Success {
		return fmt.Errorf("reject failed: %s", s.lastDecision.Error)
	}
	return nil
}

func (s *featureState) noChangesArePending() error {
	if pending := s.handler.Pending(); len(pending) != 0 {
		return fmt.Errorf("expected no pending changes, got %d", len(pending))
	}
	return nil
}

func (s *featureState) decidingTheSameChangeAgainFails() error {
	if s.lastChangeID == "" {
		return fmt.Errorf("no change id recorded")
	}
	if result := s.handler.Approve(context.Background(), s.lastChangeID); result.Success {
		return fmt.Errorf("second approve unexpectedly succeeded")
	}
	if result := s.handler.Reject(s.lastChangeID, ""); result.Success {
		return fmt.Errorf("second reject unexpectedly succeeded")
	}
	return nil
}

func (s *featureState) theApprovalFailsMentioning(text string) error {
	if s.lastDecision.Success {
		return fmt.Errorf("expected approval to fail, got output %q", s.lastDecision.Output)
	}
	if !strings.Contains(s.lastDecision.Error, text) {
		return fmt.Errorf("approval error %q does not mention %q", s.lastDecision.Error, text)
	}
	return nil
}

func (s *featureState) theChangeIsStillPending() error {
	if s.lastChangeID == "" {
		return fmt.Errorf("no change id recorded")
	}
	if _, ok := s.handler.Get(s.lastChangeID); !ok {
		return fmt.Errorf("change %s is no longer pending", s.lastChangeID)
	}
	return nil
}

// captureSinglePendingID records the id of the sole pending change.
func (s *featureState) captureSinglePendingID() error {
	pending := s.handler.Pending()
	if len(pending) != 1 {
		return fmt.Errorf("expected exactly one pending change, got %d", len(pending))
	}
	for id := range pending {
		s.lastChangeID = id
	}
	return nil
}

// jsonArgs builds tool arguments from plain strings.
func jsonArgs(values map[string]string) tools.Args {
	args := tools.Args{}
	for key, value := range values {
		encoded, _ := json.Marshal(value)
		args[key] = json.RawMessage(encoded)
	}
	return args
}
