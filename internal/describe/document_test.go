package describe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xonecas/typedesc/internal/treesitter"
)

func describeFile(t *testing.T, path, src string) string {
	t.Helper()
	tree, err := treesitter.Parse(context.Background(), path, []byte(src))
	require.NoError(t, err)
	return Describer{}.DescribeFile(tree)
}

func TestDescribeFile(t *testing.T) {
	src := `using System;
using System.IO;

namespace Shapes
{
    public interface IShape { double Area(); }
    public enum Unit { Px, Em }
    public delegate void Changed();
}
`
	assert.Equal(t,
		"This file (Shapes.cs) belongs to the Shapes namespace. It references 2 using directives. "+
			"It defines 2 types: IShape and Unit. IShape is a public interface in the Shapes namespace. It exposes 1 method. "+
			"Unit is a public enum in the Shapes namespace. The enumeration defines Px and Em.",
		describeFile(t, "src/Shapes.cs", src))
}

func TestDescribeFile_TopLevelStatements(t *testing.T) {
	src := `using System;

Console.WriteLine("hi");
Console.WriteLine("bye");
`
	assert.Equal(t,
		"This file (Program.cs) is in the global namespace. It references 1 using directive. "+
			"It does not declare any named types. It also contains 2 top-level statements.",
		describeFile(t, "Program.cs", src))
}

func TestDescribeFile_ManyNamespaces(t *testing.T) {
	src := "namespace A { class X { } }\nnamespace B { class Y { } }\n"
	got := describeFile(t, "Two.cs", src)
	assert.Contains(t, got, "This file (Two.cs) contains code in the A and B namespaces.")
	assert.Contains(t, got, "It defines 2 types: X and Y.")
}

func TestDescribeFile_PartialDeclarations(t *testing.T) {
	src := "namespace N\n{\n    public partial class A { }\n    public partial class A { public void M() { } }\n}\n"
	assert.Equal(t,
		"This file (A.cs) belongs to the N namespace. It defines 1 type: A. A is a public partial class in the N namespace.",
		describeFile(t, "A.cs", src))
}
