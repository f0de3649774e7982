package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xonecas/typedesc/internal/treesitter"
)

var outlineCmd = &cobra.Command{
	Use:   "outline [dir]",
	Short: "List the types and members of every C# file in a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runOutline,
}

func runOutline(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	a, err := newApp(root, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.ws.Build(commandContext(cmd)); err != nil {
		return report(a.sink, fmt.Errorf("index %s: %w", root, err))
	}
	out := treesitter.FormatOutline(a.ws.Outlines())
	if out == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "No C# types found.")
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}
