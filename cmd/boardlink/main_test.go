package main

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/boardlink/boardlink/internal/link"
	"github.com/boardlink/boardlink/internal/store"
)

func captureOutputWithExitCode(t *testing.T, run func() int) (int, string, string) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe stdout failed: %v", err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe stderr failed: %v", err)
	}

	os.Stdout = stdoutW
	os.Stderr = stderrW

	code := run()

	_ = stdoutW.Close()
	_ = stderrW.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	stdoutBytes, _ := io.ReadAll(stdoutR)
	stderrBytes, _ := io.ReadAll(stderrR)

	_ = stdoutR.Close()
	_ = stderrR.Close()

	return code, string(stdoutBytes), string(stderrBytes)
}

func TestPrintUsageListsCommands(t *testing.T) {
	_, stdout, _ := captureOutputWithExitCode(t, func() int {
		printUsage()
		return 0
	})

	for _, cmd := range []string{"start", "stop", "clear", "restart", "view", "ledger", "history", "detect", "doctor", "monitor", "config"} {
		if !strings.Contains(stdout, cmd) {
			t.Fatalf("usage missing %q: %s", cmd, stdout)
		}
	}
	if strings.Contains(stdout, "link run") {
		t.Fatalf("usage should not advertise the internal watcher entrypoint: %s", stdout)
	}
}

func TestRunConfigNounActionHelp(t *testing.T) {
	code, stdout, stderr := captureOutputWithExitCode(t, func() int {
		return runConfigNoun([]string{"edit", "--help"})
	})
	if code != 0 {
		t.Fatalf("runConfigNoun() code = %d, stderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "Usage: boardlink config edit") {
		t.Fatalf("stdout missing action help usage: %s", stdout)
	}
}

func TestRunViewEmptyStore(t *testing.T) {
	t.Setenv("BOARDLINK_DIR", t.TempDir())

	code, stdout, stderr := captureOutputWithExitCode(t, func() int {
		return runView(nil)
	})
	if code != 0 {
		t.Fatalf("runView() code = %d, stderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "No links.") {
		t.Fatalf("stdout missing empty-store message: %s", stdout)
	}
}

func TestRunViewUnknownID(t *testing.T) {
	t.Setenv("BOARDLINK_DIR", t.TempDir())

	code, _, stderr := captureOutputWithExitCode(t, func() int {
		return runView([]string{"7"})
	})
	if code != 1 {
		t.Fatalf("runView() code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "not found") {
		t.Fatalf("stderr missing not-found message: %s", stderr)
	}
}

func TestRunStopRejectsBadToken(t *testing.T) {
	t.Setenv("BOARDLINK_DIR", t.TempDir())

	code, _, stderr := captureOutputWithExitCode(t, func() int {
		return runStop([]string{"abc"})
	})
	if code != 1 {
		t.Fatalf("runStop() code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "positive number") {
		t.Fatalf("stderr missing token guidance: %s", stderr)
	}
}

func TestRunStopDefaultsHardFaultPerToken(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BOARDLINK_DIR", dir)

	s, err := store.Open(store.Layout{Root: dir})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	id, err := s.Create(link.Descriptor{Name: "idle", ReadPath: "*.py", WritePath: filepath.Join(dir, "dest")})
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}

	// A single target surfaces the already-inactive state as an error.
	code, _, stderr := captureOutputWithExitCode(t, func() int {
		return runStop([]string{strconv.Itoa(id)})
	})
	if code != 1 {
		t.Fatalf("runStop(single) code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "not active") {
		t.Fatalf("stderr missing inactive error: %s", stderr)
	}

	// A bulk sweep walks past inactive links silently.
	code, stdout, stderr := captureOutputWithExitCode(t, func() int {
		return runStop([]string{"all"})
	})
	if code != 0 {
		t.Fatalf("runStop(all) code = %d, stderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "Stopped link #"+strconv.Itoa(id)) {
		t.Fatalf("stdout missing sweep confirmation: %s", stdout)
	}

	// An explicit flag overrides the per-token default.
	code, _, stderr = captureOutputWithExitCode(t, func() int {
		return runStop([]string{strconv.Itoa(id), "--hard-fault=false"})
	})
	if code != 0 {
		t.Fatalf("runStop(single, override) code = %d, stderr: %s", code, stderr)
	}
}

func TestRunClearDefaultsHardFaultPerToken(t *testing.T) {
	t.Setenv("BOARDLINK_DIR", t.TempDir())

	// A single missing target is an error by default.
	code, _, stderr := captureOutputWithExitCode(t, func() int {
		return runClear([]string{"9"})
	})
	if code != 1 {
		t.Fatalf("runClear(single) code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "not found") {
		t.Fatalf("stderr missing not-found error: %s", stderr)
	}

	// A sweep over an empty store has nothing to report.
	code, _, stderr = captureOutputWithExitCode(t, func() int {
		return runClear([]string{"all"})
	})
	if code != 0 {
		t.Fatalf("runClear(all) code = %d, stderr: %s", code, stderr)
	}
}

func TestRunLedgerEmpty(t *testing.T) {
	t.Setenv("BOARDLINK_DIR", t.TempDir())

	code, stdout, stderr := captureOutputWithExitCode(t, func() int {
		return runLedger(nil)
	})
	if code != 0 {
		t.Fatalf("runLedger() code = %d, stderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "No active claims.") {
		t.Fatalf("stdout missing empty-ledger message: %s", stdout)
	}
}

func TestRunHistoryEmpty(t *testing.T) {
	t.Setenv("BOARDLINK_DIR", t.TempDir())

	code, stdout, stderr := captureOutputWithExitCode(t, func() int {
		return runHistory(nil)
	})
	if code != 0 {
		t.Fatalf("runHistory() code = %d, stderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "No journal entries.") {
		t.Fatalf("stdout missing empty-history message: %s", stdout)
	}
}

func TestRunConfigFilepath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BOARDLINK_DIR", dir)

	code, stdout, stderr := captureOutputWithExitCode(t, func() int {
		return runConfigFilepath(nil)
	})
	if code != 0 {
		t.Fatalf("runConfigFilepath() code = %d, stderr: %s", code, stderr)
	}
	if strings.TrimSpace(stdout) != filepath.Join(dir, "settings.yaml") {
		t.Fatalf("unexpected settings path: %s", stdout)
	}
}

func TestRunConfigEditThenView(t *testing.T) {
	t.Setenv("BOARDLINK_DIR", t.TempDir())

	code, _, stderr := captureOutputWithExitCode(t, func() int {
		return runConfigEdit([]string{"display.table.format=markdown"})
	})
	if code != 0 {
		t.Fatalf("runConfigEdit() code = %d, stderr: %s", code, stderr)
	}

	code, stdout, stderr := captureOutputWithExitCode(t, func() int {
		return runConfigView([]string{"display.table.format"})
	})
	if code != 0 {
		t.Fatalf("runConfigView() code = %d, stderr: %s", code, stderr)
	}
	if strings.TrimSpace(stdout) != "markdown" {
		t.Fatalf("expected edited value back, got: %s", stdout)
	}
}

func TestRunConfigEditRejectsInvalidValue(t *testing.T) {
	t.Setenv("BOARDLINK_DIR", t.TempDir())

	code, _, stderr := captureOutputWithExitCode(t, func() int {
		return runConfigEdit([]string{"display.table.format=fancy"})
	})
	if code != 1 {
		t.Fatalf("runConfigEdit() code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "Apply failed") {
		t.Fatalf("stderr missing apply failure: %s", stderr)
	}
}

func TestRunConfigReset(t *testing.T) {
	t.Setenv("BOARDLINK_DIR", t.TempDir())

	code, _, stderr := captureOutputWithExitCode(t, func() int {
		return runConfigEdit([]string{"display.info.process-id=true"})
	})
	if code != 0 {
		t.Fatalf("runConfigEdit() code = %d, stderr: %s", code, stderr)
	}

	code, stdout, stderr := captureOutputWithExitCode(t, func() int {
		return runConfigReset(nil)
	})
	if code != 0 {
		t.Fatalf("runConfigReset() code = %d, stderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "restored to defaults") {
		t.Fatalf("stdout missing reset confirmation: %s", stdout)
	}

	code, stdout, _ = captureOutputWithExitCode(t, func() int {
		return runConfigView([]string{"display.info.process-id"})
	})
	if code != 0 || strings.TrimSpace(stdout) != "false" {
		t.Fatalf("expected default value after reset, got code %d, stdout %q", code, stdout)
	}
}

func TestSplitIDToken(t *testing.T) {
	token, remaining := splitIDToken([]string{"3", "--hard-fault"})
	if token != "3" {
		t.Fatalf("token = %q, want 3", token)
	}
	if len(remaining) != 1 || remaining[0] != "--hard-fault" {
		t.Fatalf("remaining = %v", remaining)
	}

	token, remaining = splitIDToken([]string{"--abs-path"})
	if token != "" || len(remaining) != 1 {
		t.Fatalf("token = %q, remaining = %v", token, remaining)
	}
}
