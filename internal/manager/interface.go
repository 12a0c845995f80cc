package manager

import "context"

//go:generate mockgen -destination=mocks/mock_launcher.go -package=mocks github.com/boardlink/boardlink/internal/manager Launcher

// Launcher abstracts watcher process control so tests can run the
// manager without spawning real processes.
type Launcher interface {
	// Launch starts a detached watcher process for the link and returns
	// its pid.
	Launch(ctx context.Context, linkID int) (int, error)
	// Alive reports whether pid refers to a live process.
	Alive(pid int) bool
	// Kill force-terminates pid.
	Kill(pid int) error
}
