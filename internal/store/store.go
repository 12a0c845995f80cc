// Package store persists link descriptors as one JSON document per link
// and owns the durable id counter. Documents are the only coordination
// channel between the CLI and watcher processes, so every write is
// atomic: marshal, write a temp file, rename over the target.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/boardlink/boardlink/internal/link"
	"github.com/boardlink/boardlink/internal/lock"
)

// Store reads and writes link documents under a Layout.
type Store struct {
	layout Layout
}

// Open ensures the layout directories exist and returns a Store.
func Open(layout Layout) (*Store, error) {
	if err := layout.Ensure(); err != nil {
		return nil, fmt.Errorf("%w: %v", link.ErrStore, err)
	}
	return &Store{layout: layout}, nil
}

// Layout exposes the paths this store operates on.
func (s *Store) Layout() Layout { return s.layout }

// Create allocates the next id from the durable counter, assigns it to
// the descriptor, and persists the document. Ids are never reused, even
// after every link has been cleared.
func (s *Store) Create(d link.Descriptor) (int, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	id, err := s.allocateID()
	if err != nil {
		return 0, err
	}
	d.ID = id
	if err := s.write(d); err != nil {
		return 0, err
	}
	return id, nil
}

// Get loads one descriptor by id.
func (s *Store) Get(id int) (link.Descriptor, error) {
	b, err := os.ReadFile(s.layout.LinkPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return link.Descriptor{}, fmt.Errorf("%w: link %d", link.ErrNotFound, id)
	}
	if err != nil {
		return link.Descriptor{}, fmt.Errorf("%w: read link %d: %v", link.ErrStore, id, err)
	}
	var d link.Descriptor
	if err := json.Unmarshal(b, &d); err != nil {
		return link.Descriptor{}, fmt.Errorf("%w: decode link %d: %v", link.ErrStore, id, err)
	}
	return d, nil
}

// List returns descriptors whose id matches the pattern ("*" for all,
// or a glob over the decimal id), ordered by id. A pattern matching
// nothing yields an empty slice, not an error.
func (s *Store) List(pattern string) ([]link.Descriptor, error) {
	if pattern == "" {
		pattern = "*"
	}
	if _, err := path.Match(pattern, "1"); err != nil {
		return nil, fmt.Errorf("%w: bad id pattern %q", link.ErrValidation, pattern)
	}
	entries, err := os.ReadDir(s.layout.LinksDir())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: list links: %v", link.ErrStore, err)
	}

	var out []link.Descriptor
	for _, e := range entries {
		id, ok := parseLinkFilename(e.Name())
		if !ok {
			continue
		}
		if matched, _ := path.Match(pattern, strconv.Itoa(id)); !matched {
			continue
		}
		d, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update applies mutate to the stored descriptor and persists the
// result atomically. Unknown document fields survive the round trip.
func (s *Store) Update(id int, mutate func(*link.Descriptor) error) (link.Descriptor, error) {
	d, err := s.Get(id)
	if err != nil {
		return link.Descriptor{}, err
	}
	if err := mutate(&d); err != nil {
		return link.Descriptor{}, err
	}
	if d.ID != id {
		return link.Descriptor{}, fmt.Errorf("%w: update must not change id", link.ErrValidation)
	}
	if err := s.write(d); err != nil {
		return link.Descriptor{}, err
	}
	return d, nil
}

// Delete removes the document for id. Deleting a missing link is a
// no-op.
func (s *Store) Delete(id int) error {
	err := os.Remove(s.layout.LinkPath(id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: delete link %d: %v", link.ErrStore, id, err)
	}
	return nil
}

// NextID reports the id the next Create will assign, without consuming
// it.
func (s *Store) NextID() (int, error) {
	b, err := os.ReadFile(s.layout.CounterPath())
	if errors.Is(err, fs.ErrNotExist) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: read id counter: %v", link.ErrStore, err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: corrupt id counter %q", link.ErrStore, strings.TrimSpace(string(b)))
	}
	return n, nil
}

// LastID reports the most recently assigned id.
func (s *Store) LastID() (int, error) {
	next, err := s.NextID()
	if err != nil {
		return 0, err
	}
	if next <= 1 {
		return 0, fmt.Errorf("%w: no links have been created", link.ErrNotFound)
	}
	return next - 1, nil
}

// allocateID increments the durable counter under an exclusive file
// lock and returns the consumed value. The counter is independent of
// the surviving documents so cleared ids are never handed out again.
func (s *Store) allocateID() (int, error) {
	fl, err := lock.AcquireFileLock(s.layout.CounterLockPath())
	if err != nil {
		return 0, fmt.Errorf("%w: lock id counter: %v", link.ErrStore, err)
	}
	defer fl.Release()

	id, err := s.NextID()
	if err != nil {
		return 0, err
	}
	if err := writeFileAtomic(s.layout.CounterPath(), []byte(strconv.Itoa(id+1)+"\n")); err != nil {
		return 0, fmt.Errorf("%w: advance id counter: %v", link.ErrStore, err)
	}
	return id, nil
}

func (s *Store) write(d link.Descriptor) error {
	b, err := json.MarshalIndent(&d, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode link %d: %v", link.ErrStore, d.ID, err)
	}
	if err := writeFileAtomic(s.layout.LinkPath(d.ID), b); err != nil {
		return fmt.Errorf("%w: write link %d: %v", link.ErrStore, d.ID, err)
	}
	return nil
}

// writeFileAtomic writes to a temp file in the target directory, syncs,
// and renames over the destination so readers never observe a partial
// document.
func writeFileAtomic(dst string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

func parseLinkFilename(name string) (int, bool) {
	if !strings.HasPrefix(name, "link") || !strings.HasSuffix(name, ".json") {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "link"), ".json"))
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
