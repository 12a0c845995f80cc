package watcher

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/boardlink/boardlink/internal/journal"
	"github.com/boardlink/boardlink/internal/link"
)

// syncPass mirrors the current source matches into the destination and
// returns the updated manifest. force copies every match regardless of
// markers. Per-file failures are logged and skipped; only a destination
// level failure aborts the pass.
func (w *Watcher) syncPass(ctx context.Context, d link.Descriptor, manifest map[string]link.FileMarker, force bool) (map[string]link.FileMarker, error) {
	dest := d.AbsWritePath()
	if _, err := os.Stat(dest); err != nil {
		return nil, fmt.Errorf("destination unavailable: %w", err)
	}

	sources, err := enumerate(d.AbsReadPattern(), d.BaseDir, d.Recursive)
	if err != nil {
		return nil, fmt.Errorf("enumerate sources: %w", err)
	}

	next := make(map[string]link.FileMarker, len(sources))
	for rel, src := range sources {
		marker, copied, err := syncFile(src, filepath.Join(dest, rel), manifest[rel], force)
		if err != nil {
			w.logger.Warn("Skipping file", "path", rel, "error", err)
			_ = w.journal.Record(ctx, w.id, journal.ActionFault, rel, err.Error())
			if old, ok := manifest[rel]; ok {
				next[rel] = old
			}
			continue
		}
		next[rel] = marker
		if copied {
			w.logger.Debug("Copied file", "path", rel)
			_ = w.journal.Record(ctx, w.id, journal.ActionCopy, rel, "")
		}
	}

	// A source that vanished takes its mirrored copy with it.
	for rel := range manifest {
		if _, ok := sources[rel]; ok {
			continue
		}
		err := os.Remove(filepath.Join(dest, rel))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			w.logger.Warn("Failed to remove stale file", "path", rel, "error", err)
			next[rel] = manifest[rel]
			continue
		}
		w.logger.Debug("Removed stale file", "path", rel)
		_ = w.journal.Record(ctx, w.id, journal.ActionDelete, rel, "")
	}

	return next, nil
}

// scanPass records markers for the current matches without copying
// anything. It seeds the manifest when the presave copy is skipped so
// the first poll pass does not re-copy files that were already present.
func (w *Watcher) scanPass(d link.Descriptor) (map[string]link.FileMarker, error) {
	sources, err := enumerate(d.AbsReadPattern(), d.BaseDir, d.Recursive)
	if err != nil {
		return nil, fmt.Errorf("enumerate sources: %w", err)
	}
	out := make(map[string]link.FileMarker, len(sources))
	for rel, src := range sources {
		fi, err := os.Stat(src)
		if err != nil {
			continue
		}
		hash, err := hashFile(src)
		if err != nil {
			continue
		}
		out[rel] = link.FileMarker{MTimeNS: fi.ModTime().UnixNano(), Size: fi.Size(), Hash: hash}
	}
	return out, nil
}

// syncFile copies src to dst when the manifest marker says it changed.
// An mtime or size change alone is not enough: identical content under
// a fresh mtime only refreshes the marker.
func syncFile(src, dst string, prev link.FileMarker, force bool) (link.FileMarker, bool, error) {
	fi, err := os.Stat(src)
	if err != nil {
		return link.FileMarker{}, false, fmt.Errorf("stat source: %w", err)
	}
	marker := link.FileMarker{
		MTimeNS: fi.ModTime().UnixNano(),
		Size:    fi.Size(),
	}

	if !force && prev.Hash != "" && prev.MTimeNS == marker.MTimeNS && prev.Size == marker.Size {
		marker.Hash = prev.Hash
		return marker, false, nil
	}

	hash, err := hashFile(src)
	if err != nil {
		return link.FileMarker{}, false, fmt.Errorf("hash source: %w", err)
	}
	marker.Hash = hash

	if !force && prev.Hash == hash {
		return marker, false, nil
	}

	if err := copyFile(src, dst); err != nil {
		return link.FileMarker{}, false, fmt.Errorf("copy: %w", err)
	}
	return marker, true, nil
}

// enumerate maps destination-relative paths to absolute source files.
// Keys mirror the source's path relative to baseDir, so a pattern with
// directory components keeps that structure in the destination and two
// matches can never collapse onto one key. Matches outside baseDir fall
// back to the pattern's wildcard-free root. Non-recursive links glob
// the pattern directly; recursive links walk the root and apply the
// basename glob at every level.
func enumerate(pattern, baseDir string, recursive bool) (map[string]string, error) {
	if !recursive {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		out := make(map[string]string, len(matches))
		for _, m := range matches {
			fi, err := os.Stat(m)
			if err != nil || fi.IsDir() {
				continue
			}
			out[relKey(baseDir, pattern, m)] = m
		}
		return out, nil
	}

	base := filepath.Base(pattern)
	out := make(map[string]string)
	err := filepath.WalkDir(patternRoot(pattern), func(p string, e fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if e.IsDir() {
			return nil
		}
		if ok, _ := path.Match(base, e.Name()); !ok {
			return nil
		}
		out[relKey(baseDir, pattern, p)] = p
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// relKey derives a match's destination-relative path: relative to the
// link's base directory when the match lives under it, otherwise
// relative to the pattern's root.
func relKey(baseDir, pattern, src string) string {
	if baseDir != "" {
		if rel, err := filepath.Rel(baseDir, src); err == nil && !isEscaping(rel) {
			return rel
		}
	}
	rel, err := filepath.Rel(patternRoot(pattern), src)
	if err != nil || isEscaping(rel) {
		return filepath.Base(src)
	}
	return rel
}

// patternRoot strips pattern components until none carries a glob
// metacharacter, yielding the directory every match lives under.
func patternRoot(pattern string) string {
	dir := filepath.Dir(pattern)
	for strings.ContainsAny(dir, "*?[") {
		dir = filepath.Dir(dir)
	}
	return dir
}

func isEscaping(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// wipeDir removes every entry under dir without removing dir itself.
func wipeDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
