// Package watcher runs the mirror loop for a single link inside its own
// process. All coordination with the CLI happens through the link's
// store document: the watcher confirms startup, observes the end flag
// at tick boundaries, and records its manifest after every sync.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/boardlink/boardlink/internal/journal"
	"github.com/boardlink/boardlink/internal/link"
	"github.com/boardlink/boardlink/internal/lock"
	"github.com/boardlink/boardlink/internal/store"
)

const (
	// DefaultInterval is the fixed poll interval between sync passes.
	DefaultInterval = 100 * time.Millisecond
	// DefaultFaultBudget is how many consecutive failed passes are
	// tolerated before the watcher hard-faults.
	DefaultFaultBudget = 5
	// journalRetention bounds how long transfer history is kept.
	journalRetention = 7 * 24 * time.Hour
)

// Recorder is the journal surface the watcher writes to.
type Recorder interface {
	Record(ctx context.Context, linkID int, action journal.Action, path, detail string) error
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// Watcher mirrors one link until asked to stop or until the destination
// fails persistently.
type Watcher struct {
	store       *store.Store
	journal     Recorder
	logger      *slog.Logger
	id          int
	interval    time.Duration
	faultBudget int
}

// Config assembles a Watcher.
type Config struct {
	Store       *store.Store
	Journal     Recorder
	Logger      *slog.Logger
	LinkID      int
	Interval    time.Duration
	FaultBudget int
}

func New(cfg Config) *Watcher {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.FaultBudget <= 0 {
		cfg.FaultBudget = DefaultFaultBudget
	}
	return &Watcher{
		store:       cfg.Store,
		journal:     cfg.Journal,
		logger:      cfg.Logger.With("component", "watcher", "link_id", cfg.LinkID),
		id:          cfg.LinkID,
		interval:    cfg.Interval,
		faultBudget: cfg.FaultBudget,
	}
}

// Run executes the full lifecycle: confirm, presave, poll until the end
// flag is set or ctx is cancelled. It returns link.ErrHardFault when the
// destination failed past the fault budget.
func (w *Watcher) Run(ctx context.Context) error {
	pl, err := lock.AcquirePIDLock(w.store.Layout().LinkLockPath(w.id))
	if err != nil {
		return fmt.Errorf("%w: link %d already has a watcher: %v", link.ErrProcess, w.id, err)
	}
	defer pl.Release()

	d, err := w.store.Update(w.id, func(d *link.Descriptor) error {
		if !d.Active {
			return fmt.Errorf("%w: link %d is not active", link.ErrProcess, w.id)
		}
		d.Confirmed = true
		d.ProcID = os.Getpid()
		return nil
	})
	if err != nil {
		return err
	}
	w.logger.Info("Watcher confirmed", "read", d.AbsReadPattern(), "write", d.AbsWritePath())

	if _, err := w.journal.Prune(ctx, journalRetention); err != nil {
		w.logger.Warn("Failed to prune transfer journal", "error", err)
	}

	if err := w.presave(ctx, d); err != nil {
		return w.hardFault(ctx, d, err)
	}

	return w.pollLoop(ctx)
}

// presave runs the one-shot startup phase: optional destination wipe,
// then an unconditional full copy unless skipped. The one-shot flags
// are cleared through the store once the phase completes.
func (w *Watcher) presave(ctx context.Context, d link.Descriptor) error {
	dest := d.AbsWritePath()
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("destination unavailable: %w", err)
	}

	if d.WipeDest {
		w.logger.Info("Wiping destination", "write", dest)
		if err := wipeDir(dest); err != nil {
			return fmt.Errorf("wipe destination: %w", err)
		}
		_ = w.journal.Record(ctx, w.id, journal.ActionWipe, dest, "")
		// A wiped destination invalidates whatever the manifest claims.
		d.Manifest = nil
	}

	manifest := d.Manifest
	var err error
	if d.SkipPresave {
		manifest, err = w.scanPass(d)
		if err != nil {
			return err
		}
	} else {
		manifest, err = w.syncPass(ctx, d, manifest, true)
		if err != nil {
			return err
		}
		_ = w.journal.Record(ctx, w.id, journal.ActionPresave, dest, "")
	}

	_, err = w.store.Update(w.id, func(d *link.Descriptor) error {
		d.Presaved = true
		d.WipeDest = false
		d.SkipPresave = false
		d.Manifest = manifest
		d.LastSyncAt = time.Now().UTC()
		return nil
	})
	return err
}

// pollLoop re-reads the descriptor every tick so stop requests written
// by another process are observed at pass boundaries only.
func (w *Watcher) pollLoop(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Watcher interrupted, terminating")
			return w.terminate()
		case <-ticker.C:
		}

		d, err := w.store.Get(w.id)
		if err != nil {
			// The document is the kill switch; losing it means stop.
			if errors.Is(err, link.ErrNotFound) {
				w.logger.Warn("Link document removed, terminating")
				return nil
			}
			failures++
			w.logger.Error("Failed to read link document", "error", err, "consecutive", failures)
			if failures >= w.faultBudget {
				return w.hardFault(ctx, d, err)
			}
			continue
		}
		if d.EndFlag {
			w.logger.Info("End flag observed, terminating")
			return w.terminate()
		}

		manifest, err := w.syncPass(ctx, d, d.Manifest, false)
		if err != nil {
			failures++
			w.logger.Error("Sync pass failed", "error", err, "consecutive", failures)
			_ = w.journal.Record(ctx, w.id, journal.ActionFault, d.AbsWritePath(), err.Error())
			if failures >= w.faultBudget {
				return w.hardFault(ctx, d, err)
			}
			continue
		}

		// A store the watcher cannot write back to is as fatal as a lost
		// destination; exiting without a fault marker would leave the
		// document claiming a watcher that no longer runs.
		if _, err := w.store.Update(w.id, func(d *link.Descriptor) error {
			d.Manifest = manifest
			d.LastSyncAt = time.Now().UTC()
			return nil
		}); err != nil {
			failures++
			w.logger.Error("Failed to persist manifest", "error", err, "consecutive", failures)
			if failures >= w.faultBudget {
				return w.hardFault(ctx, d, err)
			}
			continue
		}
		failures = 0
	}
}

// terminate acknowledges a stop request: the end flag is consumed and
// the link goes inactive in one atomic update.
func (w *Watcher) terminate() error {
	_, err := w.store.Update(w.id, func(d *link.Descriptor) error {
		d.Active = false
		d.EndFlag = false
		return nil
	})
	return err
}

// hardFault marks the abnormal stop in the document before exiting so
// the failure outlives the process.
func (w *Watcher) hardFault(ctx context.Context, d link.Descriptor, cause error) error {
	w.logger.Error("Watcher hard fault", "error", cause)
	_ = w.journal.Record(ctx, w.id, journal.ActionFault, d.AbsWritePath(), cause.Error())
	if _, err := w.store.Update(w.id, func(d *link.Descriptor) error {
		d.Active = false
		d.EndFlag = false
		d.Fault = true
		return nil
	}); err != nil {
		w.logger.Error("Failed to record hard fault", "error", err)
	}
	return fmt.Errorf("%w: link %d: %v", link.ErrHardFault, w.id, cause)
}
