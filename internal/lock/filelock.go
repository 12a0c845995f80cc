package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// FileLock is a blocking exclusive flock(2) used to serialize short
// critical sections across processes, such as id allocation and the
// start check-create-launch sequence.
type FileLock struct {
	path string
	f    *os.File
}

// AcquireFileLock blocks until the exclusive lock at lockPath is held.
func AcquireFileLock(lockPath string) (*FileLock, error) {
	if lockPath == "" {
		return nil, fmt.Errorf("lock path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	return &FileLock{path: lockPath, f: f}, nil
}

func (l *FileLock) Path() string { return l.path }

func (l *FileLock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	_ = syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN)
	err := l.f.Close()
	l.f = nil
	return err
}
