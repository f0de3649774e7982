// Package render presents results on a terminal: bordered panels when
// attached to a TTY, plain text otherwise.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"
)

const defaultWidth = 80

// Sink receives labelled blocks of text.
type Sink interface {
	Show(label, text string) error
}

// TerminalSink writes to w. Styled output is used only when Styled is set.
type TerminalSink struct {
	w       io.Writer
	Styled  bool
	Width   int
	Theme   string
	palette Palette
}

// NewTerminalSink creates a sink on w. Styling is enabled when w is a
// terminal file. width 0 uses the terminal width.
func NewTerminalSink(w io.Writer, theme string, width int) *TerminalSink {
	styled := IsTerminal(w)
	if width <= 0 && styled {
		if cols, _, err := term.GetSize(w.(*os.File).Fd()); err == nil && cols > 0 {
			width = cols - 2
		}
	}
	if width <= 0 {
		width = defaultWidth
	}
	return &TerminalSink{
		w:       w,
		Styled:  styled,
		Width:   width,
		Theme:   theme,
		palette: ThemePalette(theme),
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Show writes text under label.
func (s *TerminalSink) Show(label, text string) error {
	text = strings.TrimRight(text, "\n")
	if !s.Styled {
		var err error
		if label != "" {
			_, err = fmt.Fprintf(s.w, "%s:\n%s\n", label, text)
		} else {
			_, err = fmt.Fprintln(s.w, text)
		}
		return err
	}
	_, err := fmt.Fprintln(s.w, s.panel(label, ansi.Wordwrap(text, s.Width-4, " ")))
	return err
}

// ShowCode writes source under label, highlighted when styled.
func (s *TerminalSink) ShowCode(label, language, code string) error {
	if !s.Styled {
		return s.Show(label, code)
	}
	_, err := fmt.Fprintln(s.w, s.panel(label, Highlight(strings.TrimRight(code, "\n"), language, s.Theme)))
	return err
}

// ShowError writes an error message.
func (s *TerminalSink) ShowError(msg string) error {
	if !s.Styled {
		_, err := fmt.Fprintln(s.w, msg)
		return err
	}
	sty := lipgloss.NewStyle().Foreground(lipgloss.Color(s.palette.Error))
	_, err := fmt.Fprintln(s.w, sty.Render(msg))
	return err
}

func (s *TerminalSink) panel(label, body string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(s.palette.Border)).
		Padding(0, 1).
		Width(s.Width).
		Render(body)
	if label == "" {
		return box
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(s.palette.Accent)).Render(label)
	return title + "\n" + box
}
