package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/typedesc/internal/treesitter"
)

// ErrCommitterClosed is returned for work submitted after Close.
var ErrCommitterClosed = errors.New("committer closed")

// CommitSink applies a finished tree revision. It reports false when the
// revision cannot be applied; it never panics.
type CommitSink interface {
	TryApply(next *treesitter.Tree) bool
}

// Committer owns every write to the workspace. Jobs are handed to a single
// goroutine through a channel and run one at a time in submission order.
type Committer struct {
	jobs      chan func()
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewCommitter starts the commit goroutine.
func NewCommitter() *Committer {
	c := &Committer{
		jobs: make(chan func()),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go c.loop()
	return c
}

func (c *Committer) loop() {
	defer close(c.done)
	for {
		select {
		case job := <-c.jobs:
			job()
		case <-c.quit:
			return
		}
	}
}

// run executes fn on the commit goroutine and waits for it. When ctx ends
// or the committer closes before fn was picked up, fn never runs. Once picked up, fn runs to
// completion; the caller stops waiting if ctx ends meanwhile.
func (c *Committer) run(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	job := func() {
		defer close(finished)
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("commit job panicked")
			}
		}()
		fn()
	}
	select {
	case c.jobs <- job:
	case <-c.quit:
		return ErrCommitterClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Commit applies next through sink on the commit goroutine.
func (c *Committer) Commit(ctx context.Context, sink CommitSink, next *treesitter.Tree) (bool, error) {
	res := make(chan bool, 1)
	if err := c.run(ctx, func() { res <- sink.TryApply(next) }); err != nil {
		return false, err
	}
	select {
	case ok := <-res:
		return ok, nil
	default: // the job panicked
		return false, nil
	}
}

// Close stops the commit goroutine after the running job finishes. Later
// submissions fail with ErrCommitterClosed.
func (c *Committer) Close() {
	c.closeOnce.Do(func() {
		close(c.quit)
		<-c.done
	})
}
