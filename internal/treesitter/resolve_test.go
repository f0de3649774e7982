package treesitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tree := mustParse(t, "Shapes.cs", shapesSrc)

	tests := []struct {
		name string
		pos  Position
		want string
	}{
		{"on class keyword", Position{11, 19}, "Circle"},
		{"on type name", Position{11, 26}, "Circle"},
		{"inside method body", Position{17, 40}, "Circle"},
		{"nested type wins", Position{19, 24}, "Builder"},
		{"blank line inside body", Position{14, 1}, "Circle"},
		{"enum member", Position{26, 9}, "Unit"},
		{"interface member", Position{8, 16}, "IShape"},
		{"column past line end", Position{11, 200}, "Circle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Resolve(tree, tt.pos)
			require.NotNil(t, d)
			assert.Equal(t, tt.want, d.Name())
		})
	}
}

func TestResolve_NotFound(t *testing.T) {
	tree := mustParse(t, "Shapes.cs", shapesSrc)

	assert.Nil(t, Resolve(tree, Position{Line: 1, Column: 3}), "using directive")
	assert.Nil(t, Resolve(tree, Position{Line: 0, Column: 1}), "line zero")
	assert.Nil(t, Resolve(tree, Position{Line: tree.Text().LineCount() + 1, Column: 1}), "past last line")
}

func TestResolve_TrailingEdge(t *testing.T) {
	src := "class A { }\nclass B { }\n"
	tree := mustParse(t, "A.cs", src)

	// Offset just past A's closing brace.
	d := ResolveOffset(tree, 11)
	require.NotNil(t, d)
	assert.Equal(t, "A", d.Name())

	// Start of the next line belongs to B.
	d = ResolveOffset(tree, 12)
	require.NotNil(t, d)
	assert.Equal(t, "B", d.Name())
}

func TestResolveMember(t *testing.T) {
	tree := mustParse(t, "Shapes.cs", shapesSrc)

	n := ResolveMember(tree, Position{17, 40})
	require.NotNil(t, n)
	assert.Equal(t, "method_declaration", n.Type())
	assert.Contains(t, tree.Content(n), "public double Area()")

	n = ResolveMember(tree, Position{10, 1})
	require.NotNil(t, n)
	assert.Equal(t, "class_declaration", n.Type(), "blank line before a type belongs to it")

	n = ResolveMember(tree, Position{3, 5})
	require.NotNil(t, n)
	assert.Equal(t, "namespace_declaration", n.Type())

	assert.Nil(t, ResolveMember(tree, Position{1, 3}))
}
