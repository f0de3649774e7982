package symbols

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xonecas/typedesc/internal/treesitter"
)

func bindFirst(t *testing.T, src, name string) *TypeSymbol {
	t.Helper()
	tree, err := treesitter.Parse(context.Background(), "Test.cs", []byte(src))
	require.NoError(t, err)
	for _, d := range tree.Declarations() {
		if d.Name() == name {
			sym := Bind(d)
			require.NotNil(t, sym)
			return sym
		}
	}
	t.Fatalf("declaration %s not found", name)
	return nil
}

const widgetSrc = `using System;

namespace Acme.UI
{
    /// <summary>Old text.</summary>
    [Serializable]
    public sealed class Widget : Control, IDisposable
    {
        public const int MaxSize = 10;
        private readonly int _a, _b;

        public string Name { get; set; }
        public int this[int i] => i;
        public event EventHandler Changed;

        public Widget() { }

        public static async Task<int> LoadAsync<T>(ref int count, out string name, in double scale, params object[] rest) => 0;

        void IDisposable.Dispose() { }

        protected internal void Resize(int w = 10, string label = "x", bool on = true, char c = 'q', object o = null, long big = 0x1F, double d = -1.5, int z = default, CancellationToken ct = default)
        {
        }

        public class Inner { }
    }

    public interface IShape : IDisposable, IComparable<IShape>
    {
        double Area();
        string Label { get; }
    }

    internal enum Color { Red, Green = 2, Blue }

    public record Point(int X, int Y) : IPoint;

    public record struct Pair(string A, string B);

    public delegate void Handler(object sender);

    public static class Helpers { }

    class Bare { }
}
`

func TestBind_Class(t *testing.T) {
	sym := bindFirst(t, widgetSrc, "Widget")

	assert.Equal(t, "Widget", sym.Name)
	assert.Equal(t, treesitter.DeclClass, sym.Kind)
	assert.Equal(t, Public, sym.Visibility)
	assert.True(t, sym.IsSealed)
	assert.False(t, sym.IsStatic)
	assert.Equal(t, "Acme.UI", sym.Namespace)
	assert.Equal(t, "Control", sym.BaseType)
	assert.Equal(t, []string{"IDisposable"}, sym.Interfaces)
	assert.Equal(t, []string{"Serializable"}, sym.Attributes)
	assert.Equal(t, []string{"public", "sealed"}, sym.Modifiers)
	assert.Equal(t, []string{"System"}, sym.Usings)
	assert.True(t, sym.HasDocComment)

	c := CountMembers(sym.Members)
	assert.Equal(t, Counts{Properties: 2, Methods: 2, Fields: 2, Constants: 1, Events: 1}, c)
}

func TestBind_Method(t *testing.T) {
	sym := bindFirst(t, widgetSrc, "Widget")

	var methods []*Method
	for _, m := range sym.Members {
		if mm, ok := m.(*Method); ok {
			methods = append(methods, mm)
		}
	}
	require.Len(t, methods, 2)

	load := methods[0]
	assert.Equal(t, "LoadAsync", load.Name)
	assert.True(t, load.IsStatic)
	assert.True(t, load.IsAsync)
	assert.Equal(t, "Task<int>", load.ReturnType)
	assert.Equal(t, []string{"T"}, load.TypeParameters)
	assert.Equal(t, "Widget", load.ContainingType)
	require.Len(t, load.Parameters, 4)
	assert.Equal(t, ByRef, load.Parameters[0].Mode)
	assert.Equal(t, ByOut, load.Parameters[1].Mode)
	assert.Equal(t, ByIn, load.Parameters[2].Mode)
	assert.Equal(t, "scale", load.Parameters[2].Name)
	assert.Equal(t, "double", load.Parameters[2].Type)
	assert.True(t, load.Parameters[3].IsVariadic)
	assert.Equal(t, "object[]", load.Parameters[3].Type)

	resize := methods[1]
	assert.Equal(t, ProtectedInternal, resize.Visibility)
	assert.Equal(t, "void", resize.ReturnType)
	want := []Constant{
		{ConstNumber, "10"},
		{ConstString, "x"},
		{ConstBool, "true"},
		{ConstChar, "q"},
		{ConstNull, "null"},
		{ConstNumber, "31"},
		{ConstNumber, "-1.5"},
		{ConstNumber, "0"},
		{ConstNull, "null"},
	}
	require.Len(t, resize.Parameters, len(want))
	for i, p := range resize.Parameters {
		assert.True(t, p.HasDefault, p.Name)
		assert.True(t, p.IsOptional, p.Name)
		assert.Equal(t, want[i], p.Default, p.Name)
	}
}

func TestBind_ParamsArray(t *testing.T) {
	sym := bindFirst(t, `class Calc
{
    public int Sum(params int[] xs) => 0;
    public void Log(string format, params object[] args) { }
}`, "Calc")
	require.Len(t, sym.Members, 2)

	sum := sym.Members[0].(*Method)
	require.Len(t, sum.Parameters, 1)
	assert.Equal(t, Parameter{Name: "xs", Type: "int[]", IsVariadic: true}, sum.Parameters[0])

	log := sym.Members[1].(*Method)
	require.Len(t, log.Parameters, 2)
	assert.Equal(t, "format", log.Parameters[0].Name)
	assert.False(t, log.Parameters[0].IsVariadic)
	assert.Equal(t, "args", log.Parameters[1].Name)
	assert.Equal(t, "object[]", log.Parameters[1].Type)
	assert.True(t, log.Parameters[1].IsVariadic)
}

func TestBind_Kinds(t *testing.T) {
	tests := []struct {
		name       string
		kind       treesitter.DeclKind
		visibility Visibility
		base       string
		interfaces []string
	}{
		{"IShape", treesitter.DeclInterface, Public, "", []string{"IDisposable", "IComparable<IShape>"}},
		{"Color", treesitter.DeclEnum, Internal, "", nil},
		{"Point", treesitter.DeclRecordClass, Public, "", []string{"IPoint"}},
		{"Pair", treesitter.DeclRecordStruct, Public, "", nil},
		{"Handler", treesitter.DeclDelegate, Public, "", nil},
		{"Bare", treesitter.DeclClass, Internal, "", nil},
		{"Inner", treesitter.DeclClass, Public, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sym := bindFirst(t, widgetSrc, tt.name)
			assert.Equal(t, tt.kind, sym.Kind)
			assert.Equal(t, tt.visibility, sym.Visibility)
			assert.Equal(t, tt.base, sym.BaseType)
			assert.Equal(t, tt.interfaces, sym.Interfaces)
		})
	}
}

func TestBind_Members(t *testing.T) {
	shape := bindFirst(t, widgetSrc, "IShape")
	assert.Equal(t, Counts{Properties: 1, Methods: 1}, CountMembers(shape.Members))
	area := shape.Members[0].(*Method)
	assert.Equal(t, Public, area.Visibility)
	assert.True(t, area.IsAbstract)

	color := bindFirst(t, widgetSrc, "Color")
	require.Len(t, color.Members, 3)
	green := color.Members[1].(*ConstField)
	assert.Equal(t, "Green", green.Name)
	assert.Equal(t, "2", green.Value)
	assert.True(t, color.IsSealed)

	point := bindFirst(t, widgetSrc, "Point")
	assert.Equal(t, Counts{Properties: 2}, CountMembers(point.Members))

	handler := bindFirst(t, widgetSrc, "Handler")
	assert.Empty(t, handler.Members)

	helpers := bindFirst(t, widgetSrc, "Helpers")
	assert.True(t, helpers.IsStatic)
	assert.True(t, helpers.IsAbstract)
	assert.True(t, helpers.IsSealed)

	inner := bindFirst(t, widgetSrc, "Inner")
	assert.Equal(t, "Widget", inner.ContainingType)
}

func TestBind_Nil(t *testing.T) {
	assert.Nil(t, Bind(nil))
}

func TestBind_LocalBaseClassification(t *testing.T) {
	src := "class Impl : Ident { }\nclass Ident { }\ninterface Foo { }\nclass Other : Foo { }\n"
	impl := bindFirst(t, src, "Impl")
	assert.Equal(t, "Ident", impl.BaseType, "local class wins over the I-prefix heuristic")

	other := bindFirst(t, src, "Other")
	assert.Empty(t, other.BaseType)
	assert.Equal(t, []string{"Foo"}, other.Interfaces)
}

func TestVisibilityFrom(t *testing.T) {
	assert.Equal(t, PrivateProtected, visibilityFrom([]string{"private", "protected"}, Private))
	assert.Equal(t, ProtectedInternal, visibilityFrom([]string{"internal", "protected"}, Private))
	assert.Equal(t, Private, visibilityFrom([]string{"static"}, Private))
	assert.Equal(t, "protected internal", ProtectedInternal.String())
	assert.Equal(t, "", VisibilityNone.String())
}

func TestNormalizeNumbers(t *testing.T) {
	assert.Equal(t, "1000000", normalizeInteger("1_000_000"))
	assert.Equal(t, "255", normalizeInteger("0xFFul"))
	assert.Equal(t, "5", normalizeInteger("0b101"))
	assert.Equal(t, "10", normalizeInteger("010"))
	assert.Equal(t, "0.5", normalizeReal("0.5f"))
	assert.Equal(t, "1.50", normalizeReal("1.50m"))
	assert.Equal(t, "10000000000", normalizeReal("1e10"))
}

func TestShorten(t *testing.T) {
	s := NewShortener(&TypeSymbol{Namespace: "Acme.UI", Usings: []string{"System", "System.Collections.Generic"}})

	tests := map[string]string{
		"System.Int32":                           "int",
		"global::System.String":                  "string",
		"System.Collections.Generic.List<Int32>": "List<int>",
		"Acme.Control":                           "Control",
		"Acme.UI.Widget":                         "Widget",
		"Other.Thing":                            "Other.Thing",
		"Dictionary<System.String, Acme.Model>":  "Dictionary<string, Model>",
	}
	for in, want := range tests {
		assert.Equal(t, want, s.Shorten(in), in)
	}
}
