package main

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xonecas/typedesc/internal/config"
	"github.com/xonecas/typedesc/internal/engine"
	"github.com/xonecas/typedesc/internal/render"
)

const notFoundMessage = "No type declaration found under the caret."

var (
	configPath string
	logLevel   string

	caretFile      string
	caretLine      int
	caretCol       int
	caretSelection string
)

var rootCmd = &cobra.Command{
	Use:   "typedesc",
	Short: "Describe C# types in plain English",
	Long: `typedesc resolves the C# type declaration under a caret and describes it:
its kind, modifiers, bases and members. It can insert the description as an
XML documentation comment and ask a language model to explain the code.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/typedesc/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(documentCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(outlineCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func addCaretFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&caretFile, "file", "f", "", "Source file")
	cmd.Flags().IntVarP(&caretLine, "line", "l", 1, "Caret line (1-based)")
	cmd.Flags().IntVarP(&caretCol, "col", "c", 1, "Caret column (1-based)")
	cmd.Flags().StringVar(&caretSelection, "selection", "", "Selected text to explain")
	_ = cmd.MarkFlagRequired("file")
}

func currentCaret() engine.Caret {
	return engine.Caret{File: caretFile, Line: caretLine, Column: caretCol, Selection: caretSelection}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.LoadDefault()
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	level := logLevel
	if level == "" {
		if cfg, err := loadConfig(); err == nil {
			level = cfg.LogLevel
		}
	}
	configureLogger(cmd.ErrOrStderr(), level)
	return nil
}

func configureLogger(w io.Writer, level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.TimeOnly,
		NoColor:    !render.IsTerminal(w),
	}).With().Timestamp().Logger()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// report turns the engine's soft outcomes into output. NotFound is printed,
// cancellation is silent, anything else is returned.
func report(sink *render.TerminalSink, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, engine.ErrNotFound):
		return sink.ShowError(notFoundMessage)
	case errors.Is(err, engine.ErrCancelled):
		return nil
	}
	return err
}
