package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/xonecas/typedesc/internal/delta"
)

var (
	undoFile   string
	undoDryRun bool
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Revert the last documentation comment written to a file",
	RunE:  runUndo,
}

func init() {
	undoCmd.Flags().StringVarP(&undoFile, "file", "f", "", "Source file")
	undoCmd.Flags().BoolVarP(&undoDryRun, "dry-run", "n", false, "Show what would be reverted without touching the file")
	_ = undoCmd.MarkFlagRequired("file")
}

func runUndo(cmd *cobra.Command, args []string) error {
	a, err := newApp(".", cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	if undoDryRun {
		entry, err := a.ws.LastCommit(undoFile)
		if errors.Is(err, delta.ErrNothingToUndo) {
			return a.sink.Show("", "Nothing to undo.")
		}
		if err != nil {
			return err
		}
		return a.sink.Show("", fmt.Sprintf("Would revert revision %d of %s (committed %s).",
			entry.Revision, a.ws.Rel(entry.Path), entry.Created.Format(time.DateTime)))
	}

	entry, err := a.engine.Undo(commandContext(cmd), undoFile)
	switch {
	case errors.Is(err, delta.ErrNothingToUndo):
		return a.sink.Show("", "Nothing to undo.")
	case errors.Is(err, delta.ErrDrift):
		return fmt.Errorf("%s was edited after the last commit; not reverting", undoFile)
	case err != nil:
		return report(a.sink, err)
	}
	return a.sink.Show("", fmt.Sprintf("Reverted revision %d of %s.", entry.Revision, a.ws.Rel(entry.Path)))
}
