package treesitter

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrStaleDeclaration is returned when a declaration does not belong to the
// tree it is patched against.
var ErrStaleDeclaration = errors.New("declaration belongs to another revision")

// ReplaceLeadingTrivia returns a new revision of t in which only the leading
// trivia of decl is replaced by trivia, together with decl's counterpart in
// that revision. t and decl stay valid. When the trivia region does not
// start a line of its own, a line break is inserted before the new trivia
// and decl is indented like the line it started on.
func ReplaceLeadingTrivia(ctx context.Context, t *Tree, decl *Declaration, trivia TriviaBlock) (*Tree, *Declaration, error) {
	if decl == nil || decl.Tree != t {
		return nil, nil, ErrStaleDeclaration
	}
	start, end := decl.LeadingSpan()

	repl := trivia.String()
	if !t.text.AtLineStart(start) {
		repl = t.NewLine() + trimIndent(repl) + t.text.Indentation(start)
	}

	src := make([]byte, 0, len(t.src)-(end-start)+len(repl))
	src = append(src, t.src[:start]...)
	src = append(src, repl...)
	src = append(src, t.src[end:]...)

	next, err := parse(ctx, t.Path, src, t.Revision+1, t, &splice{
		at:     start,
		oldEnd: end,
		newEnd: start + len(repl),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("reparse revision %d: %w", t.Revision+1, err)
	}
	moved := Relocate(next, decl)
	if moved == nil {
		return nil, nil, fmt.Errorf("declaration %s lost after patch", decl.Name())
	}
	return next, moved, nil
}

// trimIndent drops the spaces and tabs that follow the last line break of s.
func trimIndent(s string) string {
	t := strings.TrimRight(s, " \t")
	if strings.HasSuffix(t, "\n") || strings.HasSuffix(t, "\r") {
		return t
	}
	return s
}
