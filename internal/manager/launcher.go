package manager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"syscall"

	"github.com/boardlink/boardlink/internal/store"
)

// execLauncher spawns the current binary's hidden watcher entrypoint in
// its own session so the watcher outlives the CLI invocation.
type execLauncher struct {
	layout store.Layout
}

// NewExecLauncher returns the production Launcher.
func NewExecLauncher(layout store.Layout) Launcher {
	return &execLauncher{layout: layout}
}

func (l *execLauncher) Launch(ctx context.Context, linkID int) (int, error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("resolve executable: %w", err)
	}
	if err := os.MkdirAll(l.layout.LogsDir(), 0o755); err != nil {
		return 0, fmt.Errorf("create log directory: %w", err)
	}
	logFile, err := os.OpenFile(l.layout.LinkLogPath(linkID), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open watcher log: %w", err)
	}
	defer logFile.Close()

	cmd := exec.Command(exe, "link", "run", "--id", strconv.Itoa(linkID))
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start watcher: %w", err)
	}
	pid := cmd.Process.Pid

	// The watcher is owned by the store document from here on, not by
	// this process tree.
	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("detach watcher: %w", err)
	}
	return pid, nil
}

func (l *execLauncher) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}

func (l *execLauncher) Kill(pid int) error {
	if pid <= 0 {
		return nil
	}
	err := syscall.Kill(pid, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}
