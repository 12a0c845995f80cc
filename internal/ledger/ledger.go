// Package ledger derives the write-path ownership index from active
// link descriptors. It is rebuilt from the store on demand and never
// persisted.
package ledger

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/boardlink/boardlink/internal/link"
)

// Row is one claimed destination path.
type Row struct {
	Path   string
	LinkID int
	ProcID int
}

// Ledger indexes every path an active link writes to: the destination
// directory itself plus every file its manifest has placed there.
type Ledger struct {
	rows []Row
}

// Build scans the given descriptors and indexes the active ones.
func Build(descs []link.Descriptor) *Ledger {
	var rows []Row
	for _, d := range descs {
		if !d.Active {
			continue
		}
		dest := filepath.Clean(d.AbsWritePath())
		rows = append(rows, Row{Path: dest, LinkID: d.ID, ProcID: d.ProcID})
		for rel := range d.Manifest {
			rows = append(rows, Row{
				Path:   filepath.Join(dest, rel),
				LinkID: d.ID,
				ProcID: d.ProcID,
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].LinkID != rows[j].LinkID {
			return rows[i].LinkID < rows[j].LinkID
		}
		return rows[i].Path < rows[j].Path
	})
	return &Ledger{rows: rows}
}

// Rows returns the indexed claims ordered by link id then path.
func (l *Ledger) Rows() []Row {
	return l.rows
}

// Conflict reports the first claim that collides with path: an equal
// path, an ancestor of it, or a descendant of it. Two links may not
// share a destination subtree in either direction.
func (l *Ledger) Conflict(path string) (Row, bool) {
	p := filepath.Clean(path)
	for _, r := range l.rows {
		if p == r.Path || isUnder(p, r.Path) || isUnder(r.Path, p) {
			return r, true
		}
	}
	return Row{}, false
}

// isUnder reports whether child is inside parent.
func isUnder(child, parent string) bool {
	return strings.HasPrefix(child, parent+string(filepath.Separator))
}
