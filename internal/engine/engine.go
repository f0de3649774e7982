// Package engine answers caret requests: it resolves the type declaration
// under a caret, describes it, asks for a remote explanation and commits
// documentation comments.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/xonecas/typedesc/internal/delta"
	"github.com/xonecas/typedesc/internal/describe"
	"github.com/xonecas/typedesc/internal/doccomment"
	"github.com/xonecas/typedesc/internal/explain"
	"github.com/xonecas/typedesc/internal/symbols"
	"github.com/xonecas/typedesc/internal/treesitter"
	"github.com/xonecas/typedesc/internal/workspace"
)

var (
	// ErrNotFound is returned when no type declaration encloses the caret
	// or the file is unknown.
	ErrNotFound = errors.New("no type declaration found under the caret")
	// ErrCancelled is returned when the request's context ended.
	ErrCancelled = fmt.Errorf("request cancelled: %w", context.Canceled)
)

// Caret locates a request: a file, a 1-based line and column and the
// selected text, if any.
type Caret struct {
	File      string
	Line      int
	Column    int
	Selection string
}

func (c Caret) position() treesitter.Position {
	return treesitter.Position{Line: c.Line, Column: c.Column}
}

// Workspace provides tree snapshots and applies commits.
type Workspace interface {
	CommitSink
	Snapshot(ctx context.Context, path string) ([]byte, *treesitter.Tree, error)
	Undo(ctx context.Context, path string) (delta.Entry, *treesitter.Tree, error)
}

// Explainer produces remote explanations.
type Explainer interface {
	Configured() bool
	Explain(ctx context.Context, req explain.Request) (string, error)
}

// Engine serves caret requests against a workspace.
type Engine struct {
	ws        Workspace
	explainer Explainer
	describer describe.Describer
	committer *Committer
}

// New creates an engine. explainer may be nil.
func New(ws Workspace, explainer Explainer) *Engine {
	return &Engine{
		ws:        ws,
		explainer: explainer,
		committer: NewCommitter(),
	}
}

// Close stops the commit goroutine.
func (e *Engine) Close() {
	e.committer.Close()
}

// Target is the resolved subject of a request.
type Target struct {
	Tree   *treesitter.Tree
	Decl   *treesitter.Declaration
	Symbol *symbols.TypeSymbol
}

// Description is the outcome of a describe request.
type Description struct {
	Target
	Summary string // the paragraph inserted as documentation
	Report  string // summary plus per-member details
	Insight string // remote explanation, empty when not requested
}

func withRequest(ctx context.Context, op string) (context.Context, *zerolog.Logger) {
	logger := log.With().Str("request", uuid.NewString()[:8]).Str("op", op).Logger()
	return logger.WithContext(ctx), &logger
}

// outcome maps context errors to ErrCancelled.
func outcome(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return ErrCancelled
	}
	return err
}

func (e *Engine) snapshot(ctx context.Context, path string) (*treesitter.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrCancelled
	}
	_, tree, err := e.ws.Snapshot(ctx, path)
	if err != nil {
		if errors.Is(err, workspace.ErrUnknownFile) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, outcome(ctx, err)
	}
	return tree, nil
}

func (e *Engine) target(ctx context.Context, tree *treesitter.Tree, pos treesitter.Position) (*Target, error) {
	decl := treesitter.Resolve(tree, pos)
	if decl == nil {
		return nil, ErrNotFound
	}
	sym := symbols.Bind(decl)
	if sym == nil {
		return nil, ErrNotFound
	}
	if err := ctx.Err(); err != nil {
		return nil, ErrCancelled
	}
	return &Target{Tree: tree, Decl: decl, Symbol: sym}, nil
}

// Resolve finds the type declaration under caret and binds its symbol.
func (e *Engine) Resolve(ctx context.Context, caret Caret) (*Target, error) {
	tree, err := e.snapshot(ctx, caret.File)
	if err != nil {
		return nil, err
	}
	return e.target(ctx, tree, caret.position())
}

func (e *Engine) describe(t *Target) *Description {
	return &Description{
		Target:  *t,
		Summary: e.describer.Describe(t.Symbol, t.Decl),
		Report:  e.describer.Report(t.Symbol, t.Decl),
	}
}

// Describe describes the type declaration under caret.
func (e *Engine) Describe(ctx context.Context, caret Caret) (*Description, error) {
	ctx, logger := withRequest(ctx, "describe")
	t, err := e.Resolve(ctx, caret)
	if err != nil {
		logger.Debug().Err(err).Str("file", caret.File).Msg("describe failed")
		return nil, err
	}
	d := e.describe(t)
	logger.Debug().Str("type", t.Symbol.Name).Int("revision", t.Tree.Revision).Msg("described")
	return d, nil
}

// DescribeAndExplain describes the type under caret while the remote
// explanation runs. A failed explanation still yields the description.
func (e *Engine) DescribeAndExplain(ctx context.Context, caret Caret) (*Description, error) {
	ctx, logger := withRequest(ctx, "describe+explain")
	tree, err := e.snapshot(ctx, caret.File)
	if err != nil {
		return nil, err
	}

	var (
		desc    *Description
		insight string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := e.target(gctx, tree, caret.position())
		if err != nil {
			return err
		}
		desc = e.describe(t)
		return nil
	})
	if e.explainer != nil {
		g.Go(func() error {
			text, err := e.explainer.Explain(gctx, explain.Request{
				Tree:      tree,
				Position:  caret.position(),
				Selection: caret.Selection,
			})
			insight = text
			return err
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		logger.Debug().Err(err).Msg("describe+explain aborted")
		return nil, outcome(ctx, err)
	}
	desc.Insight = insight
	return desc, nil
}

// Explain returns the remote explanation of the code at caret.
func (e *Engine) Explain(ctx context.Context, caret Caret) (string, error) {
	ctx, logger := withRequest(ctx, "explain")
	tree, err := e.snapshot(ctx, caret.File)
	if err != nil {
		return "", err
	}
	if e.explainer == nil {
		return explain.NotConfiguredMessage, nil
	}
	text, err := e.explainer.Explain(ctx, explain.Request{
		Tree:      tree,
		Position:  caret.position(),
		Selection: caret.Selection,
	})
	if err != nil {
		logger.Debug().Err(err).Msg("explain aborted")
		return "", outcome(ctx, err)
	}
	return text, nil
}

// DescribeFile summarizes the whole file. When an explainer is configured
// and insight is set, its explanation of the code at caret follows under an
// "AI insight:" heading.
func (e *Engine) DescribeFile(ctx context.Context, caret Caret, insight bool) (string, error) {
	ctx, _ = withRequest(ctx, "describe-file")
	tree, err := e.snapshot(ctx, caret.File)
	if err != nil {
		return "", err
	}

	var summary, ai string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary = e.describer.DescribeFile(tree)
		return nil
	})
	if insight && e.explainer != nil && e.explainer.Configured() {
		g.Go(func() error {
			text, err := e.explainer.Explain(gctx, explain.Request{
				Tree:      tree,
				Position:  caret.position(),
				Selection: caret.Selection,
			})
			ai = text
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return "", outcome(ctx, err)
	}

	var sections []string
	if s := strings.TrimSpace(summary); s != "" {
		sections = append(sections, s)
	}
	if s := strings.TrimSpace(ai); s != "" {
		sections = append(sections, "AI insight:\n"+s)
	}
	return strings.Join(sections, "\n\n"), nil
}

// Insertion is the outcome of a documentation insert.
type Insertion struct {
	Before    *treesitter.Tree
	After     *treesitter.Tree
	Decl      *treesitter.Declaration // the declaration in After
	Summary   string
	Committed bool // false on a dry run or when the commit was rejected
}

// InsertDocComment replaces the documentation comment of the type under
// caret with its summary. With dryRun the new revision is built but not
// committed.
func (e *Engine) InsertDocComment(ctx context.Context, caret Caret, dryRun bool) (*Insertion, error) {
	ctx, logger := withRequest(ctx, "document")
	t, err := e.Resolve(ctx, caret)
	if err != nil {
		return nil, err
	}
	summary := e.describer.Describe(t.Symbol, t.Decl)
	if summary == "" {
		return nil, ErrNotFound
	}

	block := doccomment.SynthesizeNewline(summary, doccomment.Indentation(t.Decl), t.Tree.NewLine())
	trivia := doccomment.Replace(t.Decl.LeadingTrivia(), block)
	next, moved, err := treesitter.ReplaceLeadingTrivia(ctx, t.Tree, t.Decl, trivia)
	if err != nil {
		return nil, outcome(ctx, err)
	}

	ins := &Insertion{Before: t.Tree, After: next, Decl: moved, Summary: summary}
	if dryRun {
		return ins, nil
	}
	ok, err := e.committer.Commit(ctx, e.ws, next)
	if err != nil {
		return nil, outcome(ctx, err)
	}
	ins.Committed = ok
	logger.Info().
		Str("file", next.Path).
		Str("type", t.Symbol.Name).
		Int("revision", next.Revision).
		Bool("committed", ok).
		Msg("documentation inserted")
	return ins, nil
}

// Undo reverts the last committed insertion in file.
func (e *Engine) Undo(ctx context.Context, file string) (delta.Entry, error) {
	var (
		entry delta.Entry
		uerr  error
	)
	err := e.committer.run(ctx, func() {
		entry, _, uerr = e.ws.Undo(ctx, file)
	})
	if err != nil {
		return delta.Entry{}, outcome(ctx, err)
	}
	return entry, uerr
}
