package main

import (
	"github.com/spf13/cobra"
)

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Ask the configured model to explain the code under the caret",
	Long: `Explain sends the selection, or else the member enclosing the caret, or else
the whole file, to the configured language model and prints its explanation.
Set OPENAI_API_KEY or store a key with "typedesc auth" to enable it.`,
	RunE: runExplain,
}

func init() {
	addCaretFlags(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	a, err := openForCaret(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	text, err := a.engine.Explain(commandContext(cmd), currentCaret())
	if err != nil {
		return report(a.sink, err)
	}
	if text == "" {
		return nil
	}
	return a.sink.Show("AI insight", text)
}
