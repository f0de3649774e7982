package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const watchDebounce = 200 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Describe the type under the caret again whenever the file changes",
	Long: `Watch prints the summary of the type declaration under the caret and prints
it again after every change to the file, until interrupted.`,
	RunE: runWatch,
}

func init() {
	addCaretFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := openForCaret(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := commandContext(cmd)

	show := func() error {
		d, err := a.engine.Describe(ctx, currentCaret())
		if err != nil {
			return report(a.sink, err)
		}
		return a.sink.Show(d.Symbol.Name, d.Summary)
	}
	if err := show(); err != nil {
		return err
	}

	changes, errs, err := watchFile(ctx, caretFile)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			if err := show(); err != nil {
				return err
			}
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Str("file", caretFile).Msg("watch error")
		}
	}
}

// watchFile reports debounced writes to path. The channels close when ctx
// ends.
func watchFile(ctx context.Context, path string) (<-chan struct{}, <-chan error, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve path: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	// The directory is watched so atomic renames over the file are seen.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return nil, nil, fmt.Errorf("watch directory: %w", err)
	}

	changes := make(chan struct{})
	errs := make(chan error, 1)
	go func() {
		defer close(changes)
		defer close(errs)
		defer watcher.Close()

		var debounce <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !targetsFile(evt.Name, absPath) {
					continue
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				debounce = time.After(watchDebounce)
			case <-debounce:
				debounce = nil
				select {
				case changes <- struct{}{}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				select {
				case errs <- err:
				default:
				}
			}
		}
	}()
	return changes, errs, nil
}

func targetsFile(name, target string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	return filepath.Clean(abs) == filepath.Clean(target)
}
