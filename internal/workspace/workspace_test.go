package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xonecas/typedesc/internal/delta"
	"github.com/xonecas/typedesc/internal/store"
	"github.com/xonecas/typedesc/internal/treesitter"
)

const widget = "namespace Acme\n{\n    public class Widget { }\n}\n"

func newTestWorkspace(t *testing.T) (*Workspace, string) {
	t.Helper()
	dir := t.TempDir()
	c, err := store.Open(filepath.Join(t.TempDir(), "ws.db"), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return New(dir, delta.New(c.DB())), dir
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func documented(t *testing.T, tree *treesitter.Tree) *treesitter.Tree {
	t.Helper()
	decl := treesitter.Resolve(tree, treesitter.Position{Line: 3, Column: 20})
	require.NotNil(t, decl)
	next, _, err := treesitter.ReplaceLeadingTrivia(context.Background(), tree, decl,
		treesitter.LexTrivia("    /// <summary>W</summary>\n    "))
	require.NoError(t, err)
	return next
}

func TestSnapshotCachesUntilFileChanges(t *testing.T) {
	ws, dir := newTestWorkspace(t)
	path := filepath.Join(dir, "Widget.cs")
	write(t, path, widget)
	ctx := context.Background()

	src, first, err := ws.Snapshot(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, widget, string(src))
	assert.Equal(t, 0, first.Revision)

	_, again, err := ws.Snapshot(ctx, path)
	require.NoError(t, err)
	assert.Same(t, first, again)

	write(t, path, "class Other { }\n")
	src, changed, err := ws.Snapshot(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "class Other { }\n", string(src))
	assert.Equal(t, 1, changed.Revision)
}

func TestSnapshotUnknownFile(t *testing.T) {
	ws, dir := newTestWorkspace(t)
	_, _, err := ws.Snapshot(context.Background(), filepath.Join(dir, "Missing.cs"))
	assert.ErrorIs(t, err, ErrUnknownFile)
}

func TestSnapshotUnsupportedFile(t *testing.T) {
	ws, dir := newTestWorkspace(t)
	path := filepath.Join(dir, "notes.txt")
	write(t, path, "hello")
	_, _, err := ws.Snapshot(context.Background(), path)
	assert.ErrorIs(t, err, treesitter.ErrUnsupported)
}

func TestTryApplyWritesAndAdvances(t *testing.T) {
	ws, dir := newTestWorkspace(t)
	path := filepath.Join(dir, "Widget.cs")
	write(t, path, widget)
	ctx := context.Background()

	_, tree, err := ws.Snapshot(ctx, path)
	require.NoError(t, err)
	next := documented(t, tree)

	require.True(t, ws.TryApply(next))
	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(next.Source()), string(onDisk))

	_, cur, err := ws.Snapshot(ctx, path)
	require.NoError(t, err)
	assert.Same(t, next, cur)

	// The same revision cannot be applied twice.
	assert.False(t, ws.TryApply(next))
}

func TestTryApplyRejectsStaleRevision(t *testing.T) {
	ws, dir := newTestWorkspace(t)
	path := filepath.Join(dir, "Widget.cs")
	write(t, path, widget)
	ctx := context.Background()

	_, tree, err := ws.Snapshot(ctx, path)
	require.NoError(t, err)
	first := documented(t, tree)
	second := documented(t, tree)

	require.True(t, ws.TryApply(first))
	assert.False(t, ws.TryApply(second))
}

func TestTryApplyRejectsDrift(t *testing.T) {
	ws, dir := newTestWorkspace(t)
	path := filepath.Join(dir, "Widget.cs")
	write(t, path, widget)

	_, tree, err := ws.Snapshot(context.Background(), path)
	require.NoError(t, err)
	next := documented(t, tree)

	write(t, path, widget+"// edited elsewhere\n")
	assert.False(t, ws.TryApply(next))

	onDisk, _ := os.ReadFile(path)
	assert.Equal(t, widget+"// edited elsewhere\n", string(onDisk))
}

func TestTryApplyRejectsUnrelatedTrees(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	assert.False(t, ws.TryApply(nil))

	fresh, err := treesitter.Parse(context.Background(), "A.cs", []byte("class A { }\n"))
	require.NoError(t, err)
	assert.False(t, ws.TryApply(fresh))
}

func TestUndo(t *testing.T) {
	ws, dir := newTestWorkspace(t)
	path := filepath.Join(dir, "Widget.cs")
	write(t, path, widget)
	ctx := context.Background()

	_, tree, err := ws.Snapshot(ctx, path)
	require.NoError(t, err)
	require.True(t, ws.TryApply(documented(t, tree)))

	e, restored, err := ws.Undo(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, e.Revision)
	assert.Equal(t, widget, string(restored.Source()))
	assert.Equal(t, 2, restored.Revision)

	_, _, err = ws.Undo(ctx, path)
	assert.ErrorIs(t, err, delta.ErrNothingToUndo)
}

func TestLastCommit(t *testing.T) {
	ws, dir := newTestWorkspace(t)
	path := filepath.Join(dir, "Widget.cs")
	write(t, path, widget)

	_, err := ws.LastCommit(path)
	assert.ErrorIs(t, err, delta.ErrNothingToUndo)

	_, tree, err := ws.Snapshot(context.Background(), path)
	require.NoError(t, err)
	require.True(t, ws.TryApply(documented(t, tree)))

	e, err := ws.LastCommit(path)
	require.NoError(t, err)
	assert.Equal(t, 1, e.Revision)
	assert.Equal(t, path, e.Path)
}

func TestReloadOfDeletedFileForgetsHistory(t *testing.T) {
	ws, dir := newTestWorkspace(t)
	path := filepath.Join(dir, "Widget.cs")
	write(t, path, widget)
	ctx := context.Background()

	_, tree, err := ws.Snapshot(ctx, path)
	require.NoError(t, err)
	require.True(t, ws.TryApply(documented(t, tree)))
	require.NoError(t, os.Remove(path))

	_, err = ws.Reload(ctx, path)
	assert.ErrorIs(t, err, ErrUnknownFile)
	_, err = ws.LastCommit(path)
	assert.ErrorIs(t, err, delta.ErrNothingToUndo)
}

func TestBuildRespectsGitignore(t *testing.T) {
	ws, dir := newTestWorkspace(t)
	write(t, filepath.Join(dir, ".gitignore"), "generated/\n*.g.cs\n")
	write(t, filepath.Join(dir, "Widget.cs"), widget)
	write(t, filepath.Join(dir, "src", "Gadget.cs"), "class Gadget { }\n")
	write(t, filepath.Join(dir, "src", "Gadget.g.cs"), "partial class Gadget { }\n")
	write(t, filepath.Join(dir, "generated", "Api.cs"), "class Api { }\n")
	write(t, filepath.Join(dir, "obj", "Debug.cs"), "class Debug { }\n")
	write(t, filepath.Join(dir, "README.md"), "# readme\n")

	require.NoError(t, ws.Build(context.Background()))
	assert.Equal(t, []string{"Widget.cs", filepath.Join("src", "Gadget.cs")}, ws.Files())

	outlines := ws.Outlines()
	require.Contains(t, outlines, "Widget.cs")
	syms := outlines["Widget.cs"]
	require.Len(t, syms, 2)
	assert.Equal(t, treesitter.KindNamespace, syms[0].Kind)
	assert.Equal(t, "Widget", syms[1].Name)
}

func TestBuildCancelled(t *testing.T) {
	ws, dir := newTestWorkspace(t)
	write(t, filepath.Join(dir, "Widget.cs"), widget)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, ws.Build(ctx), context.Canceled)
}
