package cucumber

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"squire/internal/cli"
	"squire/internal/config"

	"github.com/cucumber/godog"
)

// featureState holds per-scenario state for the CLI and approval
// workflow features.
type featureState struct {
	repoDir     string
	previousWD  string
	stdout      bytes.Buffer
	stderr      bytes.Buffer
	exitCode    int
	initialized bool

	agentState
}

// InitializeScenario wires the step definitions to a fresh state.
func InitializeScenario(ctx *godog.ScenarioContext) {
	state := &featureState{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		state.reset()
		return ctx, nil
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		state.cleanup()
		return ctx, nil
	})

	ctx.Step(`^a git repository without a squire configuration$`, state.aGitRepository)
	ctx.Step(`^a git repository with a valid squire configuration$`, state.aGitRepositoryWithValidConfig)
	ctx.Step(`^a git repository with an invalid squire configuration$`, state.aGitRepositoryWithInvalidConfig)
	ctx.Step(`^I run "([^"]+)"$`, state.iRunCommand)
	ctx.Step(`^the output lists these commands:$`, state.theOutputListsCommands)
	ctx.Step(`^the exit code is zero$`, state.theExitCodeIsZero)
	ctx.Step(`^the exit code is non-zero$`, state.theExitCodeIsNonZero)
	ctx.Step(`^the output contains "([^"]+)"$`, state.theOutputContains)
	ctx.Step(`^the error output mentions "([^"]+)"$`, state.theErrorOutputMentions)
	ctx.Step(`^the repository has a "([^"]+)" file$`, state.theRepositoryHasFile)

	state.registerAgentSteps(ctx)
}

// reset clears buffers and state before each scenario.
func (s *featureState) reset() {
	s.stdout.Reset()
	s.stderr.Reset()
	s.exitCode = 0
	s.initialized = false
	s.agentState = agentState{}
}

// cleanup restores the working directory and removes temp files.
func (s *featureState) cleanup() {
	if s.previousWD != "" {
		_ = os.Chdir(s.previousWD)
		s.previousWD = ""
	}
	if s.repoDir != "" {
		_ = os.RemoveAll(s.repoDir)
		s.repoDir = ""
	}
	if s.workDir != "" {
		_ = os.RemoveAll(s.workDir)
		s.workDir = ""
	}
}

func (s *featureState) aGitRepository() error {
	if s.initialized {
		return nil
	}
	dir, err := os.MkdirTemp("", "squire-feature-*")
	if err != nil {
		return fmt.Errorf("create temp repo: %w", err)
	}
	// Resolve symlinks so paths printed by commands match what the
	// steps compare against on macOS /tmp.
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	s.repoDir = dir
	if err := s.initGitRepo(dir); err != nil {
		return err
	}
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working dir: %w", err)
	}
	s.previousWD = wd
	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("chdir: %w", err)
	}
	s.initialized = true
	return nil
}

func (s *featureState) aGitRepositoryWithValidConfig() error {
	if err := s.aGitRepository(); err != nil {
		return err
	}
	return config.Scaffold(config.ConfigPath(s.repoDir))
}

func (s *featureState) aGitRepositoryWithInvalidConfig() error {
	if err := s.aGitRepository(); err != nil {
		return err
	}
	configPath := config.ConfigPath(s.repoDir)
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(configPath, []byte(invalidConfigYAML()), 0o644)
}

func (s *featureState) iRunCommand(command string) error {
	args := strings.Fields(command)
	if len(args) == 0 {
		return fmt.Errorf("command is empty")
	}
	if args[0] == "squire" {
		args = args[1:]
	}
	s.stdout.Reset()
	s.stderr.Reset()
	s.exitCode = cli.Run(args, &s.stdout, &s.stderr)
	return nil
}

func (s *featureState) theOutputListsCommands(table *godog.Table) error {
	output := s.stdout.String()
	for _, row := range table.Rows {
		for _, cell := range row.Cells {
			command := strings.TrimSpace(cell.Value)
			if command == "" {
				continue
			}
			if !strings.Contains(output, command) {
				return fmt.Errorf("expected command %q in output", command)
			}
		}
	}
	return nil
}

func (s *featureState) theExitCodeIsZero() error {
	if s.exitCode != 0 {
		return fmt.Errorf("exit code %d (stderr: %s)", s.exitCode, s.stderr.String())
	}
	return nil
}

func (s *featureState) theExitCodeIsNonZero() error {
	if s.exitCode == 0 {
		return fmt.Errorf("expected non-zero exit code")
	}
	return nil
}

func (s *featureState) theOutputContains(text string) error {
	if !strings.Contains(s.stdout.String(), text) {
		return fmt.Errorf("expected %q in output, got %q", text, s.stdout.String())
	}
	return nil
}

func (s *featureState) theErrorOutputMentions(text string) error {
	if !strings.Contains(s.stderr.String(), text) {
		return fmt.Errorf("expected %q in stderr, got %q", text, s.stderr.String())
	}
	return nil
}

func (s *featureState) theRepositoryHasFile(relPath string) error {
	if s.repoDir == "" {
		return fmt.Errorf("no repository created")
	}
	path := filepath.Join(s.repoDir, filepath.FromSlash(relPath))
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("expected %s to exist: %w", relPath, err)
	}
	return nil
}

func (s *featureState) initGitRepo(dir string) error {
	if err := s.runGit(dir, "-c", "init.defaultBranch=main", "init"); err != nil {
		return err
	}
	readme := filepath.Join(dir, "README.md")
	if err := os.WriteFile(readme, []byte("fixture"), 0o644); err != nil {
		return fmt.Errorf("write README: %w", err)
	}
	if err := s.runGit(dir, "add", "README.md"); err != nil {
		return err
	}
	return s.runGit(dir, "commit", "-m", "initial")
}

func (s *featureState) runGit(dir string, args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=Test User",
		"GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=Test User",
		"GIT_COMMITTER_EMAIL=test@example.com",
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s failed: %v (%s)", strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	return nil
}

func invalidConfigYAML() string {
	return `version: 2

model:
  name: "mistral"
  base_url: "http://localhost:11434"
`
}
