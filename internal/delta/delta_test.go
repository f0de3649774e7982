package delta

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xonecas/typedesc/internal/store"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	c, err := store.Open(filepath.Join(t.TempDir(), "deltas.db"), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return New(c.DB())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestUndoRestoresPreviousContent(t *testing.T) {
	tr := newTestTracker(t)
	path := filepath.Join(t.TempDir(), "A.cs")
	writeFile(t, path, "/// <summary>\n/// v1\n/// </summary>\nclass A {}\n")

	tr.Record(path, 1, []byte("class A {}\n"), []byte("/// <summary>\n/// v1\n/// </summary>\nclass A {}\n"))

	e, err := tr.Undo(path)
	require.NoError(t, err)
	assert.Equal(t, 1, e.Revision)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "class A {}\n", string(got))

	_, err = tr.Undo(path)
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestUndoWalksBackOneCommitAtATime(t *testing.T) {
	tr := newTestTracker(t)
	path := filepath.Join(t.TempDir(), "A.cs")

	tr.Record(path, 1, []byte("v0"), []byte("v1"))
	tr.Record(path, 2, []byte("v1"), []byte("v2"))
	writeFile(t, path, "v2")

	last, err := tr.Last(path)
	require.NoError(t, err)
	assert.Equal(t, 2, last.Revision)

	_, err = tr.Undo(path)
	require.NoError(t, err)
	got, _ := os.ReadFile(path)
	assert.Equal(t, "v1", string(got))

	_, err = tr.Undo(path)
	require.NoError(t, err)
	got, _ = os.ReadFile(path)
	assert.Equal(t, "v0", string(got))
}

func TestUndoRefusesDriftedFile(t *testing.T) {
	tr := newTestTracker(t)
	path := filepath.Join(t.TempDir(), "A.cs")
	tr.Record(path, 1, []byte("v0"), []byte("v1"))
	writeFile(t, path, "edited by hand")

	_, err := tr.Undo(path)
	require.ErrorIs(t, err, ErrDrift)

	got, _ := os.ReadFile(path)
	assert.Equal(t, "edited by hand", string(got))

	_, err = tr.Last(path)
	assert.NoError(t, err, "entry must survive a refused undo")
}

func TestForget(t *testing.T) {
	tr := newTestTracker(t)
	path := filepath.Join(t.TempDir(), "A.cs")
	tr.Record(path, 1, []byte("a"), []byte("b"))
	tr.Forget(path)

	_, err := tr.Last(path)
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestNilTracker(t *testing.T) {
	var tr *Tracker
	tr.Record("x", 1, nil, nil)
	_, err := tr.Undo("x")
	assert.ErrorIs(t, err, ErrNothingToUndo)

	_, err = New(nil).Last("x")
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestWriteAtomicKeepsMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "A.cs")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

	require.NoError(t, WriteAtomic(path, []byte("new")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	got, _ := os.ReadFile(path)
	assert.Equal(t, "new", string(got))

	entries, _ := os.ReadDir(filepath.Dir(path))
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestDiscard(t *testing.T) {
	tr := newTestTracker(t)
	path := filepath.Join(t.TempDir(), "A.cs")
	first := tr.Record(path, 1, []byte("v0"), []byte("v1"))
	second := tr.Record(path, 2, []byte("v1"), []byte("v2"))
	require.NotZero(t, first)
	require.Greater(t, second, first)

	tr.Discard(second)

	last, err := tr.Last(path)
	require.NoError(t, err)
	assert.Equal(t, first, last.ID)
}
