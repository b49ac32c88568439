package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validConfig = `version: 1
model:
  name: mistral
  base_url: http://localhost:11434
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ".squire", "config.yml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateGoodConfig(t *testing.T) {
	path := writeTestConfig(t, validConfig)

	var out, errBuf bytes.Buffer
	code := Run([]string{"validate", "--config", path}, &out, &errBuf)
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d (stderr %q)", ExitOK, code, errBuf.String())
	}
	if !strings.Contains(out.String(), "Config OK") {
		t.Fatalf("expected Config OK, got %q", out.String())
	}
}

func TestValidateBadTemperature(t *testing.T) {
	path := writeTestConfig(t, `version: 1
model:
  name: mistral
  base_url: http://localhost:11434
  temperature: 9.5
`)

	var out, errBuf bytes.Buffer
	code := Run([]string{"validate", "--config", path}, &out, &errBuf)
	if code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	combined := errBuf.String()
	if !strings.Contains(combined, "Validation failed:") {
		t.Fatalf("expected validation failure header, got %q", combined)
	}
	if !strings.Contains(combined, "model.temperature") {
		t.Fatalf("expected temperature issue, got %q", combined)
	}
}

func TestValidateUnknownField(t *testing.T) {
	path := writeTestConfig(t, `version: 1
model:
  name: mistral
  base_url: http://localhost:11434
typo_section:
  value: 1
`)

	var out, errBuf bytes.Buffer
	code := Run([]string{"validate", "--config", path}, &out, &errBuf)
	if code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if !strings.Contains(errBuf.String(), "Validation failed:") {
		t.Fatalf("expected validation failure, got %q", errBuf.String())
	}
}

func TestValidateMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".squire", "config.yml")

	var out, errBuf bytes.Buffer
	code := Run([]string{"validate", "--config", path}, &out, &errBuf)
	if code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if !strings.Contains(errBuf.String(), "Validation failed:") {
		t.Fatalf("expected validation failure, got %q", errBuf.String())
	}
}
