// Package manager owns the link lifecycle: it creates descriptors,
// launches watcher processes, and tears both down again. Every start
// runs under an exclusive file lock so the conflict check, document
// creation, and process launch form one critical section across
// concurrent invocations.
package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/boardlink/boardlink/internal/device"
	"github.com/boardlink/boardlink/internal/ledger"
	"github.com/boardlink/boardlink/internal/link"
	"github.com/boardlink/boardlink/internal/lock"
	"github.com/boardlink/boardlink/internal/store"
)

const (
	// DefaultGrace bounds both the startup handshake and the stop wait.
	DefaultGrace = 5 * time.Second
	defaultPoll  = 50 * time.Millisecond
)

// Manager coordinates link descriptors and their watcher processes.
type Manager struct {
	store    *store.Store
	launcher Launcher
	finder   device.Finder
	logger   *slog.Logger
	grace    time.Duration
	poll     time.Duration
}

// Config assembles a Manager.
type Config struct {
	Store    *store.Store
	Launcher Launcher
	Finder   device.Finder
	Logger   *slog.Logger
	Grace    time.Duration
	Poll     time.Duration
}

func New(cfg Config) *Manager {
	if cfg.Grace <= 0 {
		cfg.Grace = DefaultGrace
	}
	if cfg.Poll <= 0 {
		cfg.Poll = defaultPoll
	}
	return &Manager{
		store:    cfg.Store,
		launcher: cfg.Launcher,
		finder:   cfg.Finder,
		logger:   cfg.Logger.With("component", "manager"),
		grace:    cfg.Grace,
		poll:     cfg.Poll,
	}
}

// StartRequest describes a link to create and supervise.
type StartRequest struct {
	Name      string
	ReadPath  string
	WritePath string
	// Path, when set, is the explicit destination and bypasses device
	// discovery.
	Path        string
	BaseDir     string
	Recursive   bool
	WipeDest    bool
	SkipPresave bool
}

// Start validates the request, resolves the destination, and brings up
// a watcher for it. It returns the new link's id once the watcher has
// confirmed through the store.
func (m *Manager) Start(ctx context.Context, req StartRequest) (int, error) {
	base := req.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return 0, fmt.Errorf("%w: resolve working directory: %v", link.ErrValidation, err)
		}
		base = wd
	}

	dest, err := m.resolveWritePath(req)
	if err != nil {
		return 0, err
	}

	d := link.Descriptor{
		Name:        req.Name,
		ReadPath:    req.ReadPath,
		WritePath:   dest,
		BaseDir:     base,
		Recursive:   req.Recursive,
		WipeDest:    req.WipeDest,
		SkipPresave: req.SkipPresave,
		Active:      true,
	}
	if err := d.Validate(); err != nil {
		return 0, err
	}
	return m.launch(ctx, d)
}

// resolveWritePath picks the destination directory: an explicit path
// wins, an absolute write path stands alone, and anything else lands on
// the discovered device.
func (m *Manager) resolveWritePath(req StartRequest) (string, error) {
	if req.Path != "" {
		return req.Path, nil
	}
	if filepath.IsAbs(req.WritePath) {
		return req.WritePath, nil
	}
	mount, err := m.finder()
	if err != nil {
		return "", fmt.Errorf("%w: no device found, pass an explicit destination path: %v", link.ErrValidation, err)
	}
	return filepath.Join(mount, req.WritePath), nil
}

// launch creates the descriptor and spawns its watcher. The ledger
// check, document creation, and process launch are serialized under the
// manager lock; the confirmation wait happens after it is released.
func (m *Manager) launch(ctx context.Context, d link.Descriptor) (int, error) {
	fl, err := lock.AcquireFileLock(m.store.Layout().ManagerLockPath())
	if err != nil {
		return 0, fmt.Errorf("%w: acquire manager lock: %v", link.ErrStore, err)
	}

	id, pid, err := func() (int, int, error) {
		defer fl.Release()

		all, err := m.store.List("*")
		if err != nil {
			return 0, 0, err
		}
		if row, clash := ledger.Build(all).Conflict(d.AbsWritePath()); clash {
			return 0, 0, fmt.Errorf("%w: %s is already claimed by link %d", link.ErrConflict, d.AbsWritePath(), row.LinkID)
		}

		id, err := m.store.Create(d)
		if err != nil {
			return 0, 0, err
		}

		pid, err := m.launcher.Launch(ctx, id)
		if err != nil {
			_ = m.store.Delete(id)
			return 0, 0, fmt.Errorf("%w: launch watcher for link %d: %v", link.ErrProcess, id, err)
		}
		if _, err := m.store.Update(id, func(d *link.Descriptor) error {
			d.ProcID = pid
			return nil
		}); err != nil {
			_ = m.launcher.Kill(pid)
			_ = m.store.Delete(id)
			return 0, 0, err
		}
		return id, pid, nil
	}()
	if err != nil {
		return 0, err
	}

	if err := m.awaitConfirmed(ctx, id); err != nil {
		_ = m.launcher.Kill(pid)
		_ = m.store.Delete(id)
		return 0, err
	}
	m.logger.Info("Link started", "link_id", id, "pid", pid, "write", d.AbsWritePath())
	return id, nil
}

func (m *Manager) awaitConfirmed(ctx context.Context, id int) error {
	deadline := time.Now().Add(m.grace)
	for {
		d, err := m.store.Get(id)
		if err != nil {
			return err
		}
		if d.Confirmed {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: watcher for link %d did not confirm within %s", link.ErrProcess, id, m.grace)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", link.ErrProcess, ctx.Err())
		case <-time.After(m.poll):
		}
	}
}

// Stop requests termination through the store and waits for the watcher
// to acknowledge. With hardFault set, anything short of a clean live
// stop is an error; without it, stale state is repaired silently.
func (m *Manager) Stop(ctx context.Context, id int, hardFault bool) error {
	d, err := m.store.Get(id)
	if err != nil {
		return err
	}
	if !d.Active {
		if hardFault {
			return fmt.Errorf("%w: link %d is not active", link.ErrProcess, id)
		}
		return nil
	}

	if d.ProcID == 0 || !m.launcher.Alive(d.ProcID) {
		if hardFault {
			return fmt.Errorf("%w: watcher for link %d is gone (pid %d)", link.ErrProcess, id, d.ProcID)
		}
		m.logger.Warn("Watcher already gone, forcing link inactive", "link_id", id, "pid", d.ProcID)
		_, err := m.store.Update(id, func(d *link.Descriptor) error {
			d.Active = false
			d.EndFlag = false
			d.Fault = true
			return nil
		})
		return err
	}

	if _, err := m.store.Update(id, func(d *link.Descriptor) error {
		d.EndFlag = true
		return nil
	}); err != nil {
		return err
	}

	deadline := time.Now().Add(m.grace)
	for time.Now().Before(deadline) {
		got, err := m.store.Get(id)
		if err != nil {
			return err
		}
		if !got.Active {
			m.logger.Info("Link stopped", "link_id", id)
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", link.ErrProcess, ctx.Err())
		case <-time.After(m.poll):
		}
	}

	// Grace expired: force it down.
	m.logger.Warn("Watcher ignored stop request, killing", "link_id", id, "pid", d.ProcID)
	_ = m.launcher.Kill(d.ProcID)
	if _, err := m.store.Update(id, func(d *link.Descriptor) error {
		d.Active = false
		d.EndFlag = false
		d.Fault = true
		return nil
	}); err != nil {
		return err
	}
	if hardFault {
		return fmt.Errorf("%w: watcher for link %d had to be killed", link.ErrProcess, id)
	}
	return nil
}

// Clear removes a link's document. Active links are refused unless
// force is set, in which case they are stopped first. Clearing a
// missing link succeeds unless hardFault is set.
func (m *Manager) Clear(ctx context.Context, id int, force, hardFault bool) error {
	d, err := m.store.Get(id)
	if errors.Is(err, link.ErrNotFound) {
		if hardFault {
			return err
		}
		return nil
	}
	if err != nil {
		return err
	}

	// The active flag alone guards the claim. A dead watcher does not
	// make the descriptor clearable: that is a fault to surface, not a
	// state to silently discard.
	if d.Active {
		if !force {
			if d.ProcID == 0 || !m.launcher.Alive(d.ProcID) {
				return fmt.Errorf("%w: link %d is active but its watcher is gone (pid %d), stop it to repair or clear with force", link.ErrConflict, id, d.ProcID)
			}
			return fmt.Errorf("%w: link %d is active, stop it first or clear with force", link.ErrConflict, id)
		}
		if err := m.Stop(ctx, id, false); err != nil {
			return err
		}
	}
	if err := m.store.Delete(id); err != nil {
		return err
	}
	m.logger.Info("Link cleared", "link_id", id)
	return nil
}

// Restart brings up a fresh link with the old link's configuration and
// then clears the old document. The new link always gets a new id.
// Active links are refused.
func (m *Manager) Restart(ctx context.Context, id int) (int, error) {
	d, err := m.store.Get(id)
	if err != nil {
		return 0, err
	}
	if d.Active {
		return 0, fmt.Errorf("%w: link %d is active, stop it before restarting", link.ErrConflict, id)
	}

	fresh := link.Descriptor{
		Name:      d.Name,
		ReadPath:  d.ReadPath,
		WritePath: d.WritePath,
		BaseDir:   d.BaseDir,
		Recursive: d.Recursive,
		Active:    true,
	}
	newID, err := m.launch(ctx, fresh)
	if err != nil {
		return 0, err
	}
	if err := m.store.Delete(id); err != nil {
		m.logger.Warn("Failed to clear old link after restart", "link_id", id, "error", err)
	}
	return newID, nil
}

// List returns descriptors matching the id pattern.
func (m *Manager) List(pattern string) ([]link.Descriptor, error) {
	return m.store.List(pattern)
}

// LedgerRows returns the current destination ownership index.
func (m *Manager) LedgerRows() ([]ledger.Row, error) {
	all, err := m.store.List("*")
	if err != nil {
		return nil, err
	}
	return ledger.Build(all).Rows(), nil
}

// NextID reports the id the next start will assign.
func (m *Manager) NextID() (int, error) { return m.store.NextID() }

// LastID reports the most recently assigned id.
func (m *Manager) LastID() (int, error) { return m.store.LastID() }
