package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xonecas/typedesc/internal/render"
)

var documentDryRun bool

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Insert the description as an XML documentation comment",
	Long: `Document replaces the documentation comment of the type declaration under
the caret with a <summary> block holding its description. Other comments are
kept. With --dry-run the change is shown as a unified diff and not written.`,
	RunE: runDocument,
}

func init() {
	addCaretFlags(documentCmd)
	documentCmd.Flags().BoolVarP(&documentDryRun, "dry-run", "n", false, "Show the change without writing it")
}

func runDocument(cmd *cobra.Command, args []string) error {
	a, err := openForCaret(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	ins, err := a.engine.InsertDocComment(commandContext(cmd), currentCaret(), documentDryRun)
	if err != nil {
		return report(a.sink, err)
	}

	if documentDryRun {
		diff := render.UnifiedDiff(a.ws.Rel(ins.Before.Path), string(ins.Before.Source()), string(ins.After.Source()))
		if diff == "" {
			return a.sink.Show("", "The documentation comment is already up to date.")
		}
		return a.sink.ShowCode("Preview", "diff", diff)
	}

	if !ins.Committed {
		if err := a.sink.ShowError(fmt.Sprintf("Could not update %s: the file changed on disk or could not be written.", a.ws.Rel(ins.Before.Path))); err != nil {
			return err
		}
		return a.sink.Show("Summary", ins.Summary)
	}
	return a.sink.Show(ins.Decl.Name(), fmt.Sprintf("Documented %s in %s (revision %d).",
		ins.Decl.Name(), a.ws.Rel(ins.After.Path), ins.After.Revision))
}
