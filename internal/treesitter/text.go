package treesitter

import (
	"sort"
	"unicode/utf8"
)

// Position is a 1-based line/column location in a source buffer. Columns
// count characters (runes), not bytes.
type Position struct {
	Line   int
	Column int
}

// TextIndex maps between positions and byte offsets of a source buffer.
type TextIndex struct {
	src        []byte
	lineStarts []int // byte offset of the first character of each line
}

// NewTextIndex builds the line table for src. "\n", "\r\n" and a lone "\r"
// all terminate a line; text ending in a line break has a trailing empty line.
func NewTextIndex(src []byte) *TextIndex {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\n':
			starts = append(starts, i+1)
		case '\r':
			if i+1 < len(src) && src[i+1] == '\n' {
				i++
			}
			starts = append(starts, i+1)
		}
	}
	return &TextIndex{src: src, lineStarts: starts}
}

// LineCount returns the number of lines.
func (x *TextIndex) LineCount() int {
	return len(x.lineStarts)
}

// Line returns the byte span of the 1-based line n. end excludes the line break.
func (x *TextIndex) Line(n int) (start, end int, ok bool) {
	if n < 1 || n > len(x.lineStarts) {
		return 0, 0, false
	}
	start = x.lineStarts[n-1]
	end = len(x.src)
	if n < len(x.lineStarts) {
		end = x.lineStarts[n]
	}
	for end > start && (x.src[end-1] == '\n' || x.src[end-1] == '\r') {
		end--
	}
	return start, end, true
}

// Offset converts pos to a byte offset. The column is clamped into the line,
// so the result never crosses into the next line. ok is false when the line
// is outside [1, LineCount].
func (x *TextIndex) Offset(pos Position) (int, bool) {
	start, end, ok := x.Line(pos.Line)
	if !ok {
		return 0, false
	}
	col := pos.Column - 1
	if col < 0 {
		col = 0
	}
	off := start
	for i := 0; i < col && off < end; i++ {
		_, size := utf8.DecodeRune(x.src[off:end])
		off += size
	}
	if off > end {
		off = end
	}
	return off, true
}

// LineOf returns the 1-based line containing offset. Offsets are clamped to
// [0, len(src)].
func (x *TextIndex) LineOf(offset int) int {
	if offset < 0 {
		offset = 0
	}
	if offset > len(x.src) {
		offset = len(x.src)
	}
	return sort.Search(len(x.lineStarts), func(i int) bool { return x.lineStarts[i] > offset })
}

// PositionOf converts offset back to a 1-based position.
func (x *TextIndex) PositionOf(offset int) Position {
	n := x.LineOf(offset)
	start := x.lineStarts[n-1]
	if offset > len(x.src) {
		offset = len(x.src)
	}
	if offset < start {
		offset = start
	}
	return Position{Line: n, Column: utf8.RuneCount(x.src[start:offset]) + 1}
}

// Indentation returns the leading whitespace of the line containing offset.
func (x *TextIndex) Indentation(offset int) string {
	start, end, _ := x.Line(x.LineOf(offset))
	i := start
	for i < end && isSpace(x.src[i]) {
		i++
	}
	return string(x.src[start:i])
}

// AtLineStart reports whether only whitespace precedes offset on its line.
func (x *TextIndex) AtLineStart(offset int) bool {
	start, _, _ := x.Line(x.LineOf(offset))
	for i := start; i < offset && i < len(x.src); i++ {
		if !isSpace(x.src[i]) {
			return false
		}
	}
	return true
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\v' || b == '\f'
}
