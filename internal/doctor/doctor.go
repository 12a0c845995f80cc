// Package doctor validates the boardlink environment: application
// directory, id counter, settings, journal, and the health of every
// recorded link.
package doctor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/boardlink/boardlink/internal/device"
	"github.com/boardlink/boardlink/internal/settings"
	"github.com/boardlink/boardlink/internal/storage"
	"github.com/boardlink/boardlink/internal/store"
)

// Result holds the outcome of a validation run.
type Result struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Issue describes a single validation error or warning.
type Issue struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
}

// ProcessChecker reports whether a pid is alive. It matches the
// manager's launcher so both layers agree on liveness.
type ProcessChecker func(pid int) bool

// Doctor validates the environment a store lives in.
type Doctor struct {
	store  *store.Store
	finder device.Finder
	alive  ProcessChecker
}

// New creates a Doctor over an open store.
func New(s *store.Store, finder device.Finder, alive ProcessChecker) *Doctor {
	return &Doctor{store: s, finder: finder, alive: alive}
}

// Validate runs all checks and returns a result.
func (d *Doctor) Validate(ctx context.Context) *Result {
	r := &Result{Valid: true}

	d.checkAppDir(r)
	d.checkCounter(r)
	d.checkSettings(r)
	d.checkJournal(ctx, r)
	d.checkLinks(r)
	d.checkDevice(r)

	r.Valid = len(r.Errors) == 0
	return r
}

func (d *Doctor) addError(r *Result, category, field, msg string) {
	r.Errors = append(r.Errors, Issue{Category: category, Field: field, Message: msg})
}

func (d *Doctor) addWarning(r *Result, category, field, msg string) {
	r.Warnings = append(r.Warnings, Issue{Category: category, Field: field, Message: msg})
}

// checkAppDir verifies the application directory exists and is writable.
func (d *Doctor) checkAppDir(r *Result) {
	layout := d.store.Layout()
	info, err := os.Stat(layout.Root)
	if err != nil {
		d.addError(r, "app_dir", layout.Root, fmt.Sprintf("application directory unavailable: %v", err))
		return
	}
	if !info.IsDir() {
		d.addError(r, "app_dir", layout.Root, "application directory path is not a directory")
		return
	}
	probe, err := os.CreateTemp(layout.Root, ".doctor*")
	if err != nil {
		d.addError(r, "app_dir", layout.Root, fmt.Sprintf("application directory is not writable: %v", err))
		return
	}
	probe.Close()
	os.Remove(probe.Name())
}

// checkCounter verifies the id counter parses and sits ahead of every
// surviving document.
func (d *Doctor) checkCounter(r *Result) {
	next, err := d.store.NextID()
	if err != nil {
		d.addError(r, "counter", d.store.Layout().CounterPath(), err.Error())
		return
	}
	links, err := d.store.List("*")
	if err != nil {
		d.addError(r, "store", "", err.Error())
		return
	}
	for _, l := range links {
		if l.ID >= next {
			d.addError(r, "counter", d.store.Layout().CounterPath(),
				fmt.Sprintf("link %d exists but the counter would assign id %d next", l.ID, next))
		}
	}
}

func (d *Doctor) checkSettings(r *Result) {
	path := d.store.Layout().SettingsPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Settings are created on first use; absence is fine.
		return
	}
	if _, err := settings.Load(path); err != nil {
		d.addError(r, "settings", path, err.Error())
	}
}

func (d *Doctor) checkJournal(ctx context.Context, r *Result) {
	db, err := storage.OpenSQLite(ctx, d.store.Layout().JournalPath())
	if err != nil {
		d.addError(r, "journal", d.store.Layout().JournalPath(), err.Error())
		return
	}
	_ = db.Close()
}

// checkLinks flags stale documents: active links whose watcher is gone,
// and fault markers awaiting a clear.
func (d *Doctor) checkLinks(r *Result) {
	links, err := d.store.List("*")
	if err != nil {
		d.addError(r, "store", "", err.Error())
		return
	}
	for _, l := range links {
		field := fmt.Sprintf("link%d", l.ID)
		if l.Fault {
			d.addWarning(r, "links", field, "link hard-faulted; inspect and clear it")
			continue
		}
		if l.Active && (l.ProcID == 0 || !d.alive(l.ProcID)) {
			d.addError(r, "links", field,
				fmt.Sprintf("link is marked active but watcher pid %d is gone", l.ProcID))
		}
		if _, err := os.Stat(l.AbsWritePath()); l.Active && err != nil {
			d.addWarning(r, "links", field,
				fmt.Sprintf("destination %s is unreachable: %v", l.AbsWritePath(), err))
		}
	}
}

func (d *Doctor) checkDevice(r *Result) {
	if _, err := d.finder(); err != nil {
		d.addWarning(r, "device", "", fmt.Sprintf("no device detected: %v", err))
	}
}

// FormatHuman returns a human-readable validation report.
func FormatHuman(r *Result) string {
	var b strings.Builder

	if r.Valid && len(r.Warnings) == 0 {
		b.WriteString("Environment healthy.\n")
		return b.String()
	}

	if r.Valid && len(r.Warnings) > 0 {
		b.WriteString("Environment healthy")
		fmt.Fprintf(&b, " (%d warning(s))\n", len(r.Warnings))
	}

	if !r.Valid {
		fmt.Fprintf(&b, "Environment unhealthy (%d error(s), %d warning(s))\n", len(r.Errors), len(r.Warnings))
	}

	for _, e := range r.Errors {
		if e.Field != "" {
			fmt.Fprintf(&b, "  ERROR [%s] %s: %s\n", e.Category, e.Field, e.Message)
		} else {
			fmt.Fprintf(&b, "  ERROR [%s] %s\n", e.Category, e.Message)
		}
	}
	for _, w := range r.Warnings {
		if w.Field != "" {
			fmt.Fprintf(&b, "  WARN  [%s] %s: %s\n", w.Category, w.Field, w.Message)
		} else {
			fmt.Fprintf(&b, "  WARN  [%s] %s\n", w.Category, w.Message)
		}
	}

	return b.String()
}

// FormatJSON returns the result as indented JSON.
func FormatJSON(r *Result) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
