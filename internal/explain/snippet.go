package explain

import (
	"strings"
	"unicode/utf8"

	"github.com/xonecas/typedesc/internal/treesitter"
)

// TruncationMarker is appended to snippets cut at the size limit.
const TruncationMarker = "\n// ... truncated"

// Snippet picks the code to explain: the selection when it has any
// non-blank text, otherwise the smallest member enclosing pos, otherwise the
// whole file.
func Snippet(t *treesitter.Tree, pos treesitter.Position, selection string) string {
	if strings.TrimSpace(selection) != "" {
		return selection
	}
	if t == nil {
		return ""
	}
	if n := treesitter.ResolveMember(t, pos); n != nil {
		return t.Content(n)
	}
	return string(t.Source())
}

// Truncate cuts s to at most max characters and marks the cut.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	i, n := 0, 0
	for i < len(s) && n < max {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		n++
	}
	return s[:i] + TruncationMarker
}
