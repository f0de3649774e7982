// Package doccomment builds "/// <summary>" blocks and swaps them into a
// declaration's leading trivia.
package doccomment

import (
	"strings"

	"github.com/xonecas/typedesc/internal/treesitter"
)

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Synthesize builds a summary block for text, every line prefixed with
// indentation and terminated by "\n".
func Synthesize(summary, indentation string) treesitter.TriviaBlock {
	return SynthesizeNewline(summary, indentation, "\n")
}

// SynthesizeNewline is Synthesize with an explicit line break.
func SynthesizeNewline(summary, indentation, newline string) treesitter.TriviaBlock {
	var block treesitter.TriviaBlock
	line := func(text string) {
		if indentation != "" {
			block = append(block, treesitter.Trivia{Kind: treesitter.TriviaWhitespace, Text: indentation})
		}
		block = append(block,
			treesitter.Trivia{Kind: treesitter.TriviaDocComment, Text: text},
			treesitter.Trivia{Kind: treesitter.TriviaEndOfLine, Text: newline},
		)
	}

	line("/// <summary>")
	if summary != "" {
		text := escaper.Replace(summary)
		text = strings.ReplaceAll(text, "\r\n", "\n")
		text = strings.ReplaceAll(text, "\r", "\n")
		for _, l := range strings.Split(text, "\n") {
			line(strings.TrimRight("/// "+l, " \t"))
		}
	}
	line("/// </summary>")
	return block
}

// Indentation returns the leading whitespace of the line holding decl.
func Indentation(decl *treesitter.Declaration) string {
	if decl == nil {
		return ""
	}
	return decl.Indentation()
}

// Replace removes every documentation comment from leading, each together
// with the indentation before it and the line break after it, drops the
// blank lines that end up first, and puts block in front of what is left.
func Replace(leading, block treesitter.TriviaBlock) treesitter.TriviaBlock {
	kept := make(treesitter.TriviaBlock, 0, len(leading))
	for i := 0; i < len(leading); i++ {
		tr := leading[i]
		if tr.Kind != treesitter.TriviaDocComment {
			kept = append(kept, tr)
			continue
		}
		// Drop the indentation of the doc line if it starts the line.
		if n := len(kept); n > 0 && kept[n-1].Kind == treesitter.TriviaWhitespace &&
			(n == 1 || kept[n-2].Kind == treesitter.TriviaEndOfLine) {
			kept = kept[:n-1]
		}
		if i+1 < len(leading) && leading[i+1].Kind == treesitter.TriviaEndOfLine {
			i++
		}
	}

	for len(kept) > 0 {
		if kept[0].Kind == treesitter.TriviaEndOfLine {
			kept = kept[1:]
			continue
		}
		if len(kept) > 1 && kept[0].Kind == treesitter.TriviaWhitespace && kept[1].Kind == treesitter.TriviaEndOfLine {
			kept = kept[2:]
			continue
		}
		break
	}

	out := make(treesitter.TriviaBlock, 0, len(block)+len(kept))
	out = append(out, block...)
	return append(out, kept...)
}
