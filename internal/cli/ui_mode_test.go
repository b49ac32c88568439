package cli

import (
	"io"
	"os"
	"testing"
)

// TestResolveUIMode verifies ui mode decision logic.
func TestResolveUIMode(t *testing.T) {
	cases := []struct {
		name      string
		mode      string
		verbose   bool
		isTTY     bool
		expectTUI bool
		wantWarn  bool
		wantErr   bool
	}{
		{name: "auto tty", mode: "auto", verbose: false, isTTY: true, expectTUI: true},
		{name: "auto non-tty", mode: "auto", verbose: false, isTTY: false, expectTUI: false},
		{name: "plain", mode: "plain", verbose: false, isTTY: true, expectTUI: false},
		{name: "verbose disables", mode: "auto", verbose: true, isTTY: true, expectTUI: false},
		{name: "tui tty", mode: "tui", verbose: false, isTTY: true, expectTUI: true},
		{name: "tui non-tty warning", mode: "tui", verbose: false, isTTY: false, expectTUI: false, wantWarn: true},
		{name: "empty means auto", mode: "", verbose: false, isTTY: false, expectTUI: false},
		{name: "invalid mode", mode: "nope", verbose: false, isTTY: true, wantErr: true},
	}

	original := isTerminal
	t.Cleanup(func() { isTerminal = original })

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			isTerminal = func(_ io.Writer) bool { return tc.isTTY }
			decision, err := resolveUIMode(tc.mode, tc.verbose, nil)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if decision.useTUI != tc.expectTUI {
				t.Fatalf("expected useTUI=%v, got %v", tc.expectTUI, decision.useTUI)
			}
			if tc.wantWarn && decision.warning == "" {
				t.Fatalf("expected warning")
			}
			if !tc.wantWarn && decision.warning != "" {
				t.Fatalf("did not expect warning")
			}
		})
	}
}

// TestResolveNoColor verifies flag and environment handling.
func TestResolveNoColor(t *testing.T) {
	original := isTerminal
	t.Cleanup(func() { isTerminal = original })

	cases := []struct {
		name string
		flag bool
		env  map[string]string
		tty  bool
		want bool
	}{
		{name: "tty default keeps color", tty: true, want: false},
		{name: "flag forces off", flag: true, tty: true, want: true},
		{name: "NO_COLOR", env: map[string]string{"NO_COLOR": "1"}, tty: true, want: true},
		{name: "CLICOLOR zero", env: map[string]string{"CLICOLOR": "0"}, tty: true, want: true},
		{name: "dumb terminal", env: map[string]string{"TERM": "dumb"}, tty: true, want: true},
		{name: "non-tty", tty: false, want: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			unsetEnvForTest(t, "NO_COLOR")
			t.Setenv("CLICOLOR", "")
			t.Setenv("TERM", "xterm-256color")
			for key, value := range tc.env {
				t.Setenv(key, value)
			}
			isTerminal = func(_ io.Writer) bool { return tc.tty }
			if got := resolveNoColor(tc.flag, nil); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

// unsetEnvForTest unsets key for the duration of a test.
func unsetEnvForTest(t *testing.T, key string) {
	t.Helper()
	value, ok := os.LookupEnv(key)
	t.Cleanup(func() {
		if ok {
			os.Setenv(key, value)
		} else {
			os.Unsetenv(key)
		}
	})
	os.Unsetenv(key)
}
