package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardlink/boardlink/internal/link"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Layout{Root: t.TempDir()})
	require.NoError(t, err)
	return s
}

func testDescriptor() link.Descriptor {
	return link.Descriptor{
		Name:      "code",
		ReadPath:  "*.py",
		WritePath: "/media/board",
		BaseDir:   "/home/dev/project",
	}
}

func TestCreateAssignsMonotonicIDs(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	id1, err := s.Create(testDescriptor())
	require.NoError(t, err)
	id2, err := s.Create(testDescriptor())
	require.NoError(t, err)

	assert.Equal(t, 1, id1)
	assert.Equal(t, 2, id2)

	next, err := s.NextID()
	require.NoError(t, err)
	assert.Equal(t, 3, next)
}

func TestIDsNeverReusedAfterDelete(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	id1, err := s.Create(testDescriptor())
	require.NoError(t, err)
	require.NoError(t, s.Delete(id1))

	// The counter is durable and independent of surviving documents.
	id2, err := s.Create(testDescriptor())
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	// A fresh store over the same directory sees the same counter.
	s2, err := Open(s.Layout())
	require.NoError(t, err)
	next, err := s2.NextID()
	require.NoError(t, err)
	assert.Equal(t, id2+1, next)
}

func TestCreateRejectsInvalidDescriptor(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	_, err := s.Create(link.Descriptor{ReadPath: "", WritePath: "x"})
	assert.ErrorIs(t, err, link.ErrValidation)

	// A rejected create must not consume an id.
	next, err := s.NextID()
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}

func TestGetNotFound(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	_, err := s.Get(42)
	assert.ErrorIs(t, err, link.ErrNotFound)
}

func TestListByPattern(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for i := 0; i < 3; i++ {
		_, err := s.Create(testDescriptor())
		require.NoError(t, err)
	}

	all, err := s.List("*")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{all[0].ID, all[1].ID, all[2].ID})

	one, err := s.List("2")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, 2, one[0].ID)

	none, err := s.List("9")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = s.List("[bad")
	assert.ErrorIs(t, err, link.ErrValidation)
}

func TestUpdatePersistsMutation(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	id, err := s.Create(testDescriptor())
	require.NoError(t, err)

	_, err = s.Update(id, func(d *link.Descriptor) error {
		d.Active = true
		d.ProcID = 999
		return nil
	})
	require.NoError(t, err)

	got, err := s.Get(id)
	require.NoError(t, err)
	assert.True(t, got.Active)
	assert.Equal(t, 999, got.ProcID)
}

func TestUpdatePreservesUnknownFields(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	id, err := s.Create(testDescriptor())
	require.NoError(t, err)

	// Simulate a newer writer adding a field this build doesn't know.
	path := s.Layout().LinkPath(id)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	doc["future_field"] = "keep"
	b, err = json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o644))

	_, err = s.Update(id, func(d *link.Descriptor) error {
		d.Active = true
		return nil
	})
	require.NoError(t, err)

	b, err = os.ReadFile(path)
	require.NoError(t, err)
	var round map[string]any
	require.NoError(t, json.Unmarshal(b, &round))
	assert.Equal(t, "keep", round["future_field"])
	assert.Equal(t, true, round["active"])
}

func TestUpdateMustNotChangeID(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	id, err := s.Create(testDescriptor())
	require.NoError(t, err)

	_, err = s.Update(id, func(d *link.Descriptor) error {
		d.ID = id + 1
		return nil
	})
	assert.ErrorIs(t, err, link.ErrValidation)
}

func TestDeleteIsIdempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	id, err := s.Create(testDescriptor())
	require.NoError(t, err)

	require.NoError(t, s.Delete(id))
	require.NoError(t, s.Delete(id))

	_, err = s.Get(id)
	assert.ErrorIs(t, err, link.ErrNotFound)
}

func TestLastID(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	_, err := s.LastID()
	assert.ErrorIs(t, err, link.ErrNotFound)

	id, err := s.Create(testDescriptor())
	require.NoError(t, err)

	last, err := s.LastID()
	require.NoError(t, err)
	assert.Equal(t, id, last)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	id, err := s.Create(testDescriptor())
	require.NoError(t, err)
	_, err = s.Update(id, func(d *link.Descriptor) error { d.Active = true; return nil })
	require.NoError(t, err)

	entries, err := os.ReadDir(s.Layout().LinksDir())
	require.NoError(t, err)
	for _, e := range entries {
		assert.Equal(t, filepath.Ext(e.Name()), ".json", "unexpected leftover: %s", e.Name())
	}
}
