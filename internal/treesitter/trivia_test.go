package treesitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexTrivia(t *testing.T) {
	src := "\n    // note\n    /// <summary>x</summary>\n    //// not doc\n#region R\n    /** block */ "
	block := LexTrivia(src)
	require.Equal(t, src, block.String(), "lexing must round-trip")

	var kinds []TriviaKind
	for _, tr := range block {
		kinds = append(kinds, tr.Kind)
	}
	assert.Equal(t, []TriviaKind{
		TriviaEndOfLine,
		TriviaWhitespace, TriviaComment, TriviaEndOfLine,
		TriviaWhitespace, TriviaDocComment, TriviaEndOfLine,
		TriviaWhitespace, TriviaComment, TriviaEndOfLine,
		TriviaDirective, TriviaEndOfLine,
		TriviaWhitespace, TriviaDocComment, TriviaWhitespace,
	}, kinds)
	assert.True(t, block.HasDocComment())
}

func TestDocText(t *testing.T) {
	block := LexTrivia("/// <summary>\n/// Hello\n/// </summary>\n")
	assert.Equal(t, "<summary>\nHello\n</summary>", block.DocText())
}

func TestLeadingTrivia(t *testing.T) {
	src := "namespace N\n{ // open\n\n    // keep me\n    /// <summary>Old</summary>\n    public class A { }\n}\n"
	tree := mustParse(t, "A.cs", src)
	decls := tree.Declarations()
	require.Len(t, decls, 1)

	got := decls[0].LeadingTrivia().String()
	assert.Equal(t, "\n    // keep me\n    /// <summary>Old</summary>\n    ", got,
		"trailing comment of the brace stays with the brace")
	assert.Equal(t, "    ", decls[0].Indentation())
}

func TestLeadingTrivia_FileStart(t *testing.T) {
	tree := mustParse(t, "A.cs", "/// <summary>A</summary>\nclass A { }\n")
	d := tree.Declarations()[0]
	start, end := d.LeadingSpan()
	assert.Equal(t, 0, start)
	assert.Equal(t, d.Start(), end)
	assert.True(t, d.LeadingTrivia().HasDocComment())
}
