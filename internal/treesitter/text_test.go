package treesitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextIndex_Offset(t *testing.T) {
	x := NewTextIndex([]byte("ab\r\ncdé\rf\n"))
	require.Equal(t, 4, x.LineCount())

	tests := []struct {
		name string
		pos  Position
		want int
		ok   bool
	}{
		{"first char", Position{1, 1}, 0, true},
		{"end of crlf line", Position{1, 3}, 2, true},
		{"column clamped to line end", Position{1, 40}, 2, true},
		{"column below one", Position{2, -3}, 4, true},
		{"multibyte column", Position{2, 3}, 6, true},
		{"after multibyte rune", Position{2, 4}, 8, true},
		{"past multibyte line end", Position{2, 5}, 8, true},
		{"lone cr line", Position{3, 2}, 10, true},
		{"trailing empty line", Position{4, 1}, 11, true},
		{"line zero", Position{0, 1}, 0, false},
		{"past last line", Position{5, 1}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := x.Offset(tt.pos)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTextIndex_PositionOf(t *testing.T) {
	x := NewTextIndex([]byte("ab\ncdé\n"))
	assert.Equal(t, Position{1, 1}, x.PositionOf(0))
	assert.Equal(t, Position{2, 3}, x.PositionOf(5))
	assert.Equal(t, Position{2, 4}, x.PositionOf(7))
	assert.Equal(t, Position{3, 1}, x.PositionOf(100))
}

func TestTextIndex_Indentation(t *testing.T) {
	x := NewTextIndex([]byte("x\n\t  public class A\n"))
	assert.Equal(t, "\t  ", x.Indentation(6))
	assert.True(t, x.AtLineStart(5))
	assert.False(t, x.AtLineStart(1))
}
