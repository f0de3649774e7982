// Package workspace holds the parsed C# files of a directory as immutable
// tree snapshots and writes committed revisions back to disk.
package workspace

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	gitignore "github.com/sabhiram/go-gitignore"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/typedesc/internal/delta"
	"github.com/xonecas/typedesc/internal/treesitter"
)

// MaxFileSize is the largest file Build indexes.
const MaxFileSize = 1 << 20

// ErrUnknownFile is returned when a snapshot is requested for a file that
// does not exist.
var ErrUnknownFile = errors.New("unknown file")

type entry struct {
	tree *treesitter.Tree
	sum  [sha256.Size]byte // content on disk when tree was taken
}

// Workspace maps absolute file paths to their current tree revision.
type Workspace struct {
	mu      sync.RWMutex
	files   map[string]*entry
	root    string
	journal *delta.Tracker
}

// New creates an empty workspace rooted at dir. Commits are journaled to
// journal when it is non-nil.
func New(root string, journal *delta.Tracker) *Workspace {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = filepath.Clean(root)
	}
	return &Workspace{
		files:   make(map[string]*entry),
		root:    abs,
		journal: journal,
	}
}

// Root returns the workspace directory.
func (w *Workspace) Root() string { return w.root }

// Build walks the workspace, parsing every supported file. Respects
// .gitignore at the root.
func (w *Workspace) Build(ctx context.Context) error {
	var matcher *gitignore.GitIgnore
	if m, err := gitignore.CompileIgnoreFile(filepath.Join(w.root, ".gitignore")); err == nil {
		matcher = m
	}

	return filepath.WalkDir(w.root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(w.root, path)
		if err != nil || rel == "." {
			return nil
		}

		if d.IsDir() {
			switch d.Name() {
			case ".git", "bin", "obj":
				return filepath.SkipDir
			}
			if matcher != nil && matcher.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}
		if !treesitter.Supported(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil || info.Size() > MaxFileSize {
			return nil
		}
		if _, err := w.load(ctx, path); err != nil {
			log.Debug().Err(err).Str("file", rel).Msg("skipping unparsable file")
		}
		return nil
	})
}

// Snapshot returns the source and current tree of path, parsing it on first
// use. When the file changed on disk since its last snapshot, a new revision
// is parsed first.
func (w *Workspace) Snapshot(ctx context.Context, path string) ([]byte, *treesitter.Tree, error) {
	abs := w.abs(path)
	src, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			w.drop(abs)
			return nil, nil, fmt.Errorf("%s: %w", path, ErrUnknownFile)
		}
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}

	w.mu.RLock()
	e := w.files[abs]
	w.mu.RUnlock()
	if e != nil && e.sum == sha256.Sum256(src) {
		return e.tree.Source(), e.tree, nil
	}

	t, err := w.store(ctx, abs, src)
	if err != nil {
		return nil, nil, err
	}
	return t.Source(), t, nil
}

// Reload re-reads path from disk into a new revision.
func (w *Workspace) Reload(ctx context.Context, path string) (*treesitter.Tree, error) {
	abs := w.abs(path)
	src, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			w.drop(abs)
			w.journal.Forget(abs)
			return nil, fmt.Errorf("%s: %w", path, ErrUnknownFile)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return w.store(ctx, abs, src)
}

func (w *Workspace) load(ctx context.Context, abs string) (*treesitter.Tree, error) {
	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	return w.store(ctx, abs, src)
}

// store parses src as the next revision of abs and makes it current.
func (w *Workspace) store(ctx context.Context, abs string, src []byte) (*treesitter.Tree, error) {
	w.mu.RLock()
	prev := w.files[abs]
	w.mu.RUnlock()

	var (
		t   *treesitter.Tree
		err error
	)
	if prev != nil {
		t, err = treesitter.Reparse(ctx, prev.tree, src)
	} else {
		t, err = treesitter.Parse(ctx, abs, src)
	}
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	// Another goroutine may have stored a newer revision meanwhile; keep the
	// map monotonic.
	if cur := w.files[abs]; cur != nil && cur != prev && cur.tree.Revision >= t.Revision {
		return cur.tree, nil
	}
	w.files[abs] = &entry{tree: t, sum: sha256.Sum256(src)}
	log.Debug().Str("file", abs).Int("revision", t.Revision).Msg("snapshot stored")
	return t, nil
}

// TryApply commits next, a revision derived from the current tree of its
// file, to disk. It returns false when next was not derived from the current
// revision, when the file changed on disk since that revision was taken, or
// when the write fails. The replaced content is journaled for undo.
func (w *Workspace) TryApply(next *treesitter.Tree) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("commit aborted")
			ok = false
		}
	}()
	if next == nil || next.Parent() == nil {
		return false
	}
	abs := w.abs(next.Path)

	w.mu.Lock()
	defer w.mu.Unlock()

	cur := w.files[abs]
	if cur == nil || cur.tree != next.Parent() || cur.tree.Revision+1 != next.Revision {
		log.Debug().Str("file", abs).Int("revision", next.Revision).Msg("commit rejected: revision mismatch")
		return false
	}
	onDisk, err := os.ReadFile(abs)
	if err != nil {
		log.Warn().Err(err).Str("file", abs).Msg("commit rejected: unreadable")
		return false
	}
	if sha256.Sum256(onDisk) != cur.sum {
		log.Debug().Str("file", abs).Msg("commit rejected: file changed on disk")
		return false
	}
	if bytes.Equal(onDisk, next.Source()) {
		w.files[abs] = &entry{tree: next, sum: cur.sum}
		return true
	}

	id := w.journal.Record(abs, next.Revision, onDisk, next.Source())
	if err := delta.WriteAtomic(abs, next.Source()); err != nil {
		w.journal.Discard(id)
		log.Warn().Err(err).Str("file", abs).Msg("commit rejected: write failed")
		return false
	}
	w.files[abs] = &entry{tree: next, sum: sha256.Sum256(next.Source())}
	log.Info().Str("file", abs).Int("revision", next.Revision).Msg("committed")
	return true
}

// Undo reverts the last commit of path and returns the reloaded tree.
func (w *Workspace) Undo(ctx context.Context, path string) (delta.Entry, *treesitter.Tree, error) {
	abs := w.abs(path)
	e, err := w.journal.Undo(abs)
	if err != nil {
		return delta.Entry{}, nil, err
	}
	t, err := w.Reload(ctx, abs)
	if err != nil {
		return e, nil, err
	}
	return e, t, nil
}

// LastCommit returns the journal entry Undo would revert for path.
func (w *Workspace) LastCommit(path string) (delta.Entry, error) {
	return w.journal.Last(w.abs(path))
}

// Files returns the workspace-relative paths of all loaded files, sorted.
func (w *Workspace) Files() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	paths := make([]string, 0, len(w.files))
	for p := range w.files {
		paths = append(paths, w.Rel(p))
	}
	sort.Strings(paths)
	return paths
}

// Outlines returns the outline of every loaded file keyed by relative path.
func (w *Workspace) Outlines() map[string][]treesitter.Symbol {
	w.mu.RLock()
	trees := make(map[string]*treesitter.Tree, len(w.files))
	for p, e := range w.files {
		trees[w.Rel(p)] = e.tree
	}
	w.mu.RUnlock()

	out := make(map[string][]treesitter.Symbol, len(trees))
	for rel, t := range trees {
		if syms := treesitter.Outline(t); len(syms) > 0 {
			out[rel] = syms
		}
	}
	return out
}

func (w *Workspace) drop(abs string) {
	w.mu.Lock()
	delete(w.files, abs)
	w.mu.Unlock()
}

func (w *Workspace) abs(path string) string {
	if !filepath.IsAbs(path) {
		if p, err := filepath.Abs(path); err == nil {
			return p
		}
	}
	return filepath.Clean(path)
}

// Rel returns path relative to the workspace root, or path itself when it
// lies elsewhere.
func (w *Workspace) Rel(path string) string {
	abs := w.abs(path)
	if r, err := filepath.Rel(w.root, abs); err == nil && r != ".." && !strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return r
	}
	return abs
}
