package treesitter

import (
	"strings"
)

// TriviaKind classifies a piece of leading trivia.
type TriviaKind int

const (
	TriviaWhitespace TriviaKind = iota
	TriviaEndOfLine
	TriviaComment
	TriviaDocComment // one "///" line or a "/** */" block
	TriviaDirective
	TriviaOther
)

func (k TriviaKind) String() string {
	switch k {
	case TriviaWhitespace:
		return "whitespace"
	case TriviaEndOfLine:
		return "eol"
	case TriviaComment:
		return "comment"
	case TriviaDocComment:
		return "doc"
	case TriviaDirective:
		return "directive"
	default:
		return "other"
	}
}

// Trivia is one token of leading trivia.
type Trivia struct {
	Kind TriviaKind
	Text string
}

// TriviaBlock is the ordered leading trivia of a declaration.
type TriviaBlock []Trivia

// String concatenates the block back into source text.
func (b TriviaBlock) String() string {
	var sb strings.Builder
	for _, tr := range b {
		sb.WriteString(tr.Text)
	}
	return sb.String()
}

// HasDocComment reports whether the block contains a documentation comment.
func (b TriviaBlock) HasDocComment() bool {
	for _, tr := range b {
		if tr.Kind == TriviaDocComment {
			return true
		}
	}
	return false
}

// DocText returns the documentation comment lines of the block joined by
// "\n", without their comment markers.
func (b TriviaBlock) DocText() string {
	var lines []string
	for _, tr := range b {
		if tr.Kind != TriviaDocComment {
			continue
		}
		if strings.HasPrefix(tr.Text, "///") {
			lines = append(lines, strings.TrimSpace(strings.TrimPrefix(tr.Text, "///")))
			continue
		}
		body := strings.TrimSuffix(strings.TrimPrefix(tr.Text, "/**"), "*/")
		for _, l := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n") {
			l = strings.TrimSpace(l)
			l = strings.TrimSpace(strings.TrimPrefix(l, "*"))
			if l != "" {
				lines = append(lines, l)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// LexTrivia splits trivia text into tokens. Text that is not trivia is kept
// as TriviaOther so that the block always round-trips.
func LexTrivia(s string) TriviaBlock {
	var out TriviaBlock
	lineStart := true
	for len(s) > 0 {
		var tr Trivia
		switch c := s[0]; {
		case c == '\r' || c == '\n':
			n := 1
			if c == '\r' && len(s) > 1 && s[1] == '\n' {
				n = 2
			}
			tr = Trivia{TriviaEndOfLine, s[:n]}
		case c == ' ' || c == '\t' || c == '\v' || c == '\f':
			n := 1
			for n < len(s) && (s[n] == ' ' || s[n] == '\t' || s[n] == '\v' || s[n] == '\f') {
				n++
			}
			tr = Trivia{TriviaWhitespace, s[:n]}
		case strings.HasPrefix(s, "///") && !strings.HasPrefix(s, "////"):
			tr = Trivia{TriviaDocComment, s[:lineEnd(s)]}
		case strings.HasPrefix(s, "//"):
			tr = Trivia{TriviaComment, s[:lineEnd(s)]}
		case strings.HasPrefix(s, "/*"):
			n := strings.Index(s[2:], "*/")
			if n < 0 {
				n = len(s)
			} else {
				n += 4
			}
			kind := TriviaComment
			if strings.HasPrefix(s, "/**") && !strings.HasPrefix(s, "/**/") {
				kind = TriviaDocComment
			}
			tr = Trivia{kind, s[:n]}
		case c == '#' && lineStart:
			tr = Trivia{TriviaDirective, s[:lineEnd(s)]}
		default:
			n := 1
			for n < len(s) && !strings.ContainsRune(" \t\v\f\r\n/#", rune(s[n])) {
				n++
			}
			tr = Trivia{TriviaOther, s[:n]}
		}
		out = append(out, tr)
		s = s[len(tr.Text):]
		switch tr.Kind {
		case TriviaEndOfLine:
			lineStart = true
		case TriviaWhitespace:
		default:
			lineStart = false
		}
	}
	return out
}

func lineEnd(s string) int {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return i
	}
	return len(s)
}

// LeadingSpan returns the byte range of the declaration's leading trivia.
// The range starts after the line break that ends the previous token's line
// (trailing trivia of that token stays with it) and ends where the
// declaration starts.
func (d *Declaration) LeadingSpan() (start, end int) {
	end = d.Start()
	prev := d.Tree.previousToken(end)
	if prev == nil {
		return 0, end
	}
	src := d.Tree.src
	start = int(prev.EndByte())
	for i := start; i < end; i++ {
		switch src[i] {
		case '\n':
			return i + 1, end
		case '\r':
			if i+1 < end && src[i+1] == '\n' {
				return i + 2, end
			}
			return i + 1, end
		}
	}
	return start, end
}

// LeadingTrivia returns the declaration's leading trivia.
func (d *Declaration) LeadingTrivia() TriviaBlock {
	start, end := d.LeadingSpan()
	return LexTrivia(string(d.Tree.src[start:end]))
}

// Indentation returns the leading whitespace of the line holding the
// declaration's first token.
func (d *Declaration) Indentation() string {
	return d.Tree.text.Indentation(d.Start())
}
