// Package link defines the descriptor persisted for every mirror link
// and the error kinds shared across the store, manager, and watcher.
package link

import (
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// State is the lifecycle phase derived from a descriptor's flags.
type State string

const (
	StatePresave     State = "presave"
	StateRunning     State = "running"
	StateStopping    State = "stopping"
	StateTerminated  State = "terminated"
	StateHardFaulted State = "hard_faulted"
)

// FileMarker records what the watcher last copied for one source file.
// A file is re-copied when mtime or size differ and the content hash
// no longer matches.
type FileMarker struct {
	MTimeNS int64  `json:"mtime_ns"`
	Size    int64  `json:"size"`
	Hash    string `json:"hash"`
}

// Descriptor is the persisted configuration and live status of a link.
// The store document is the only coordination channel between the CLI
// and the watcher process, so every flag here is written through the
// store, never passed in memory.
type Descriptor struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ReadPath  string `json:"read"`
	WritePath string `json:"write"`
	BaseDir   string `json:"base_dir"`
	Recursive bool   `json:"recursive"`
	Active    bool   `json:"active"`
	ProcID    int    `json:"proc_id"`

	// Confirmed is set by the watcher once it is up; the manager waits
	// for it during start.
	Confirmed bool `json:"confirmed"`
	// EndFlag requests termination; the watcher observes it at a tick
	// boundary and acknowledges by clearing Active.
	EndFlag bool `json:"end_flag"`
	// Fault marks an abnormal stop. Clearing a faulted link requires
	// force.
	Fault bool `json:"fault"`

	// One-shot presave modifiers, cleared by the watcher after the
	// presave phase runs.
	WipeDest    bool `json:"wipe_dest"`
	SkipPresave bool `json:"skip_presave"`
	// Presaved is set once the presave phase has completed.
	Presaved bool `json:"presaved"`

	LastSyncAt time.Time             `json:"last_sync_at"`
	Manifest   map[string]FileMarker `json:"manifest"`

	// extra preserves document fields this build does not know about,
	// so a load/mutate/save cycle never drops a newer writer's data.
	extra map[string]json.RawMessage
}

// descriptorJSON mirrors Descriptor's exported fields for (un)marshaling.
type descriptorJSON struct {
	ID          int                   `json:"id"`
	Name        string                `json:"name"`
	ReadPath    string                `json:"read"`
	WritePath   string                `json:"write"`
	BaseDir     string                `json:"base_dir"`
	Recursive   bool                  `json:"recursive"`
	Active      bool                  `json:"active"`
	ProcID      int                   `json:"proc_id"`
	Confirmed   bool                  `json:"confirmed"`
	EndFlag     bool                  `json:"end_flag"`
	Fault       bool                  `json:"fault"`
	WipeDest    bool                  `json:"wipe_dest"`
	SkipPresave bool                  `json:"skip_presave"`
	Presaved    bool                  `json:"presaved"`
	LastSyncAt  time.Time             `json:"last_sync_at"`
	Manifest    map[string]FileMarker `json:"manifest"`
}

var knownKeys = []string{
	"id", "name", "read", "write", "base_dir", "recursive", "active",
	"proc_id", "confirmed", "end_flag", "fault", "wipe_dest",
	"skip_presave", "presaved", "last_sync_at", "manifest",
}

// UnmarshalJSON decodes the known fields and retains everything else.
func (d *Descriptor) UnmarshalJSON(b []byte) error {
	var dj descriptorJSON
	if err := json.Unmarshal(b, &dj); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for _, k := range knownKeys {
		delete(raw, k)
	}
	*d = Descriptor{
		ID:          dj.ID,
		Name:        dj.Name,
		ReadPath:    dj.ReadPath,
		WritePath:   dj.WritePath,
		BaseDir:     dj.BaseDir,
		Recursive:   dj.Recursive,
		Active:      dj.Active,
		ProcID:      dj.ProcID,
		Confirmed:   dj.Confirmed,
		EndFlag:     dj.EndFlag,
		Fault:       dj.Fault,
		WipeDest:    dj.WipeDest,
		SkipPresave: dj.SkipPresave,
		Presaved:    dj.Presaved,
		LastSyncAt:  dj.LastSyncAt,
		Manifest:    dj.Manifest,
	}
	if len(raw) > 0 {
		d.extra = raw
	}
	return nil
}

// MarshalJSON emits the known fields merged with any retained extras.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	dj := descriptorJSON{
		ID:          d.ID,
		Name:        d.Name,
		ReadPath:    d.ReadPath,
		WritePath:   d.WritePath,
		BaseDir:     d.BaseDir,
		Recursive:   d.Recursive,
		Active:      d.Active,
		ProcID:      d.ProcID,
		Confirmed:   d.Confirmed,
		EndFlag:     d.EndFlag,
		Fault:       d.Fault,
		WipeDest:    d.WipeDest,
		SkipPresave: d.SkipPresave,
		Presaved:    d.Presaved,
		LastSyncAt:  d.LastSyncAt,
		Manifest:    d.Manifest,
	}
	known, err := json.Marshal(dj)
	if err != nil {
		return nil, err
	}
	if len(d.extra) == 0 {
		return known, nil
	}
	merged := make(map[string]json.RawMessage, len(d.extra)+len(knownKeys))
	for k, v := range d.extra {
		merged[k] = v
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// State derives the lifecycle phase from the persisted flags.
func (d *Descriptor) State() State {
	switch {
	case d.Fault:
		return StateHardFaulted
	case !d.Active:
		return StateTerminated
	case d.EndFlag:
		return StateStopping
	case !d.Presaved:
		return StatePresave
	default:
		return StateRunning
	}
}

// Validate checks the descriptor's configuration fields. It returns
// ErrValidation-wrapped errors before any side effect occurs.
func (d *Descriptor) Validate() error {
	if strings.TrimSpace(d.ReadPath) == "" {
		return fmt.Errorf("%w: read pattern is empty", ErrValidation)
	}
	if _, err := path.Match(patternTail(d.ReadPath), "probe"); err != nil {
		return fmt.Errorf("%w: bad read pattern %q: %v", ErrValidation, d.ReadPath, err)
	}
	if strings.TrimSpace(d.WritePath) == "" {
		return fmt.Errorf("%w: write path is empty", ErrValidation)
	}
	return nil
}

// patternTail returns the basename component of a glob so syntax can be
// checked without treating directory separators as part of the match.
func patternTail(pattern string) string {
	return filepath.Base(filepath.ToSlash(pattern))
}

// AbsReadPattern resolves the read pattern against the creation
// directory so a watcher started elsewhere still matches the same files.
func (d *Descriptor) AbsReadPattern() string {
	if filepath.IsAbs(d.ReadPath) {
		return filepath.Clean(d.ReadPath)
	}
	return filepath.Join(d.BaseDir, d.ReadPath)
}

// AbsWritePath resolves the write path against the creation directory.
func (d *Descriptor) AbsWritePath() string {
	if filepath.IsAbs(d.WritePath) {
		return filepath.Clean(d.WritePath)
	}
	return filepath.Join(d.BaseDir, d.WritePath)
}
