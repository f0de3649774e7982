package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xonecas/typedesc/internal/delta"
	"github.com/xonecas/typedesc/internal/explain"
	"github.com/xonecas/typedesc/internal/provider"
	"github.com/xonecas/typedesc/internal/store"
	"github.com/xonecas/typedesc/internal/workspace"
)

const widget = "namespace Acme\n{\n    public class Widget { }\n}\n"

const documentedWidget = "namespace Acme\n{\n" +
	"    /// <summary>\n" +
	"    /// Widget is a public class in the Acme namespace.\n" +
	"    /// </summary>\n" +
	"    public class Widget { }\n}\n"

type fixture struct {
	engine *Engine
	ws     *workspace.Workspace
	path   string
}

func newFixture(t *testing.T, content string, p provider.Provider) *fixture {
	t.Helper()
	dir := t.TempDir()
	c, err := store.Open(filepath.Join(t.TempDir(), "engine.db"), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	path := filepath.Join(dir, "Widget.cs")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	ws := workspace.New(dir, delta.New(c.DB()))
	var ex Explainer
	if p != nil {
		ex = explain.NewService(p, explain.Options{Model: "m"})
	}
	e := New(ws, ex)
	t.Cleanup(e.Close)
	return &fixture{engine: e, ws: ws, path: path}
}

func (f *fixture) caret(line, col int) Caret {
	return Caret{File: f.path, Line: line, Column: col}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestDescribe(t *testing.T) {
	f := newFixture(t, widget, nil)
	d, err := f.engine.Describe(context.Background(), f.caret(3, 20))
	require.NoError(t, err)
	assert.Equal(t, "Widget", d.Symbol.Name)
	assert.Equal(t, "Widget is a public class in the Acme namespace.", d.Summary)
	assert.Contains(t, d.Report, d.Summary)
}

func TestDescribeNotFound(t *testing.T) {
	f := newFixture(t, widget, nil)
	_, err := f.engine.Describe(context.Background(), f.caret(1, 1))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.engine.Describe(context.Background(), Caret{File: filepath.Join(filepath.Dir(f.path), "Nope.cs"), Line: 1, Column: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDescribeCancelled(t *testing.T) {
	f := newFixture(t, widget, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.engine.Describe(ctx, f.caret(3, 20))
	assert.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDescribeAndExplain(t *testing.T) {
	mock := provider.NewMock("mock", "Widget does nothing yet.")
	f := newFixture(t, widget, mock)

	d, err := f.engine.DescribeAndExplain(context.Background(), f.caret(3, 20))
	require.NoError(t, err)
	assert.Equal(t, "Widget is a public class in the Acme namespace.", d.Summary)
	assert.Equal(t, "Widget does nothing yet.", d.Insight)
	assert.Len(t, mock.Calls(), 1)
}

func TestDescribeAndExplainFailureKeepsDescription(t *testing.T) {
	mock := provider.NewMock("mock", "").WithChatError(assert.AnError)
	f := newFixture(t, widget, mock)

	d, err := f.engine.DescribeAndExplain(context.Background(), f.caret(3, 20))
	require.NoError(t, err)
	assert.NotEmpty(t, d.Summary)
	assert.Equal(t, explain.UnavailablePrefix+assert.AnError.Error(), d.Insight)
}

func TestExplainWithoutProvider(t *testing.T) {
	f := newFixture(t, widget, nil)
	text, err := f.engine.Explain(context.Background(), f.caret(3, 20))
	require.NoError(t, err)
	assert.Equal(t, explain.NotConfiguredMessage, text)
}

func TestExplainCancelled(t *testing.T) {
	mock := provider.NewMock("mock", "late").SetDelay(time.Second)
	f := newFixture(t, widget, mock)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := f.engine.Explain(ctx, f.caret(3, 20))
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestDescribeFile(t *testing.T) {
	f := newFixture(t, widget, nil)
	text, err := f.engine.DescribeFile(context.Background(), f.caret(1, 1), true)
	require.NoError(t, err)
	assert.Contains(t, text, "Widget is a public class in the Acme namespace.")
	assert.NotContains(t, text, "AI insight:")
}

func TestDescribeFileWithInsight(t *testing.T) {
	f := newFixture(t, widget, provider.NewMock("mock", "A placeholder type."))
	text, err := f.engine.DescribeFile(context.Background(), f.caret(3, 20), true)
	require.NoError(t, err)
	assert.Contains(t, text, "\n\nAI insight:\nA placeholder type.")

	plain, err := f.engine.DescribeFile(context.Background(), f.caret(3, 20), false)
	require.NoError(t, err)
	assert.NotContains(t, plain, "AI insight:")
}

func TestInsertDocComment(t *testing.T) {
	f := newFixture(t, widget, nil)

	ins, err := f.engine.InsertDocComment(context.Background(), f.caret(3, 20), false)
	require.NoError(t, err)
	assert.True(t, ins.Committed)
	assert.Equal(t, 0, ins.Before.Revision)
	assert.Equal(t, 1, ins.After.Revision)
	assert.Equal(t, "Widget", ins.Decl.Name())
	assert.Equal(t, documentedWidget, string(ins.After.Source()))
	assert.Equal(t, documentedWidget, readFile(t, f.path))
}

func TestInsertDocCommentIsIdempotent(t *testing.T) {
	f := newFixture(t, widget, nil)
	ctx := context.Background()

	_, err := f.engine.InsertDocComment(ctx, f.caret(3, 20), false)
	require.NoError(t, err)
	ins, err := f.engine.InsertDocComment(ctx, f.caret(6, 20), false)
	require.NoError(t, err)
	assert.True(t, ins.Committed)
	assert.Equal(t, documentedWidget, readFile(t, f.path))
}

func TestInsertDocCommentSameLineIsStable(t *testing.T) {
	f := newFixture(t, "namespace Acme { public class Widget { } }\n", nil)
	ctx := context.Background()
	want := "namespace Acme {\n/// <summary>\n/// Widget is a public class in the Acme namespace.\n/// </summary>\npublic class Widget { } }\n"

	_, err := f.engine.InsertDocComment(ctx, f.caret(1, 32), false)
	require.NoError(t, err)
	assert.Equal(t, want, readFile(t, f.path))

	_, err = f.engine.InsertDocComment(ctx, f.caret(5, 16), false)
	require.NoError(t, err)
	assert.Equal(t, want, readFile(t, f.path))
}

func TestInsertDocCommentDryRun(t *testing.T) {
	f := newFixture(t, widget, nil)

	ins, err := f.engine.InsertDocComment(context.Background(), f.caret(3, 20), true)
	require.NoError(t, err)
	assert.False(t, ins.Committed)
	assert.Equal(t, documentedWidget, string(ins.After.Source()))
	assert.Equal(t, widget, readFile(t, f.path))
}

func TestInsertDocCommentNotFound(t *testing.T) {
	f := newFixture(t, widget, nil)
	_, err := f.engine.InsertDocComment(context.Background(), f.caret(1, 1), false)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, widget, readFile(t, f.path))
}

func TestUndo(t *testing.T) {
	f := newFixture(t, widget, nil)
	ctx := context.Background()

	_, err := f.engine.InsertDocComment(ctx, f.caret(3, 20), false)
	require.NoError(t, err)

	entry, err := f.engine.Undo(ctx, f.path)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Revision)
	assert.Equal(t, widget, readFile(t, f.path))

	_, err = f.engine.Undo(ctx, f.path)
	assert.ErrorIs(t, err, delta.ErrNothingToUndo)
}
