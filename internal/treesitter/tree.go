package treesitter

import (
	"bytes"
	"sort"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// Tree is one immutable revision of a parsed C# file. Edits never touch a
// Tree; they produce a new revision whose parent is the edited one.
type Tree struct {
	Path     string
	Revision int

	parent *Tree
	splice *splice // the edit that turned parent into this revision
	src    []byte
	ts     *sitter.Tree
	root   *sitter.Node
	text   *TextIndex

	tokensOnce sync.Once
	tokens     []*sitter.Node
}

// splice records a byte-range replacement between two revisions.
type splice struct {
	at     int
	oldEnd int
	newEnd int
}

// Source returns the source buffer. Callers must not modify it.
func (t *Tree) Source() []byte { return t.src }

// Root returns the compilation unit node.
func (t *Tree) Root() *sitter.Node { return t.root }

// Parent returns the revision this one was derived from, or nil.
func (t *Tree) Parent() *Tree { return t.parent }

// Text returns the position index of the source buffer.
func (t *Tree) Text() *TextIndex { return t.text }

// Content returns the source text covered by n.
func (t *Tree) Content(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(t.src)
}

// NewLine returns the line break convention of the file: "\r\n" when the
// first line break found is CRLF, "\n" otherwise.
func (t *Tree) NewLine() string {
	i := bytes.IndexAny(t.src, "\r\n")
	if i >= 0 && t.src[i] == '\r' && i+1 < len(t.src) && t.src[i+1] == '\n' {
		return "\r\n"
	}
	return "\n"
}

// Tokens returns the leaf tokens of the tree in source order. Comments,
// preprocessor directives and zero-width (missing) leaves are not tokens.
func (t *Tree) Tokens() []*sitter.Node {
	t.tokensOnce.Do(func() {
		t.tokens = collectTokens(t.root, nil)
	})
	return t.tokens
}

func collectTokens(n *sitter.Node, out []*sitter.Node) []*sitter.Node {
	if n == nil || isTriviaNode(n) {
		return out
	}
	count := int(n.ChildCount())
	if count == 0 {
		if n.EndByte() > n.StartByte() {
			out = append(out, n)
		}
		return out
	}
	for i := 0; i < count; i++ {
		out = collectTokens(n.Child(i), out)
	}
	return out
}

// isTriviaNode reports whether the grammar represents n as a syntax node
// although it carries no code: comments and preprocessor lines.
func isTriviaNode(n *sitter.Node) bool {
	typ := n.Type()
	switch {
	case typ == "comment":
		return true
	case len(typ) > 7 && typ[:7] == "preproc":
		return true
	case typ == "preprocessor_call" || typ == "shebang_directive" || typ == "nullable_directive":
		return true
	}
	return false
}

// previousToken returns the last token ending at or before offset.
func (t *Tree) previousToken(offset int) *sitter.Node {
	toks := t.Tokens()
	i := sort.Search(len(toks), func(i int) bool { return int(toks[i].EndByte()) > offset })
	if i == 0 {
		return nil
	}
	return toks[i-1]
}

// DeclKind is the kind tag of a type declaration.
type DeclKind int

const (
	DeclNone DeclKind = iota
	DeclClass
	DeclStruct
	DeclInterface
	DeclEnum
	DeclDelegate
	DeclRecordClass
	DeclRecordStruct
)

// String returns the C# spelling of the kind, e.g. "record struct".
func (k DeclKind) String() string {
	switch k {
	case DeclClass:
		return "class"
	case DeclStruct:
		return "struct"
	case DeclInterface:
		return "interface"
	case DeclEnum:
		return "enum"
	case DeclDelegate:
		return "delegate"
	case DeclRecordClass:
		return "record class"
	case DeclRecordStruct:
		return "record struct"
	default:
		return ""
	}
}

// declKindOf classifies n, returning DeclNone for anything that is not a
// type declaration.
func declKindOf(n *sitter.Node) DeclKind {
	switch n.Type() {
	case "class_declaration":
		return DeclClass
	case "struct_declaration":
		return DeclStruct
	case "interface_declaration":
		return DeclInterface
	case "enum_declaration":
		return DeclEnum
	case "delegate_declaration":
		return DeclDelegate
	case "record_struct_declaration":
		return DeclRecordStruct
	case "record_declaration":
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			if c.Type() == "struct" {
				return DeclRecordStruct
			}
			if c.Type() == "class" || c.Type() == "{" || c.Type() == "parameter_list" {
				break
			}
		}
		return DeclRecordClass
	}
	return DeclNone
}

// Declaration is a type declaration node of a specific tree revision.
// It is never mutated; patching yields a new Declaration in a new Tree.
type Declaration struct {
	Tree *Tree
	Node *sitter.Node
	Kind DeclKind
}

// Start returns the byte offset of the first token of the declaration,
// attributes included.
func (d *Declaration) Start() int { return int(d.Node.StartByte()) }

// Position returns the line and column where the declaration starts.
func (d *Declaration) Position() Position { return d.Tree.text.PositionOf(d.Start()) }

// End returns the byte offset just past the declaration.
func (d *Declaration) End() int { return int(d.Node.EndByte()) }

// Revision returns the revision number of the owning tree.
func (d *Declaration) Revision() int { return d.Tree.Revision }

// Name returns the declared identifier.
func (d *Declaration) Name() string {
	if n := d.Node.ChildByFieldName("name"); n != nil {
		return d.Tree.Content(n)
	}
	for i := 0; i < int(d.Node.NamedChildCount()); i++ {
		c := d.Node.NamedChild(i)
		if c.Type() == "identifier" {
			return d.Tree.Content(c)
		}
	}
	return ""
}

// Modifiers returns the declared modifier keywords in source order.
func (d *Declaration) Modifiers() []string {
	return Modifiers(d.Tree, d.Node)
}

// Modifiers returns the modifier keywords of any declaration node.
func Modifiers(t *Tree, n *sitter.Node) []string {
	var mods []string
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() != "modifier" {
			continue
		}
		mods = append(mods, t.Content(c))
	}
	return mods
}

// Text returns the declaration's source text.
func (d *Declaration) Text() string {
	return d.Tree.Content(d.Node)
}

// IsNested reports whether the declaration sits inside another type.
func (d *Declaration) IsNested() bool {
	return d.Container() != nil
}

// Container returns the enclosing type declaration, or nil for top-level types.
func (d *Declaration) Container() *Declaration {
	for p := d.Node.Parent(); p != nil; p = p.Parent() {
		if k := declKindOf(p); k != DeclNone {
			return &Declaration{Tree: d.Tree, Node: p, Kind: k}
		}
	}
	return nil
}

// Namespace returns the dotted namespace enclosing the declaration, or ""
// for the global namespace. Nested namespace blocks are joined with dots.
func (d *Declaration) Namespace() string {
	var parts []string
	for p := d.Node.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case "namespace_declaration", "file_scoped_namespace_declaration":
			if n := p.ChildByFieldName("name"); n != nil {
				parts = append([]string{d.Tree.Content(n)}, parts...)
			}
		}
	}
	if len(parts) == 0 {
		// A file-scoped namespace may be a sibling of the declaration.
		if ns := fileScopedNamespace(d.Tree); ns != "" {
			return ns
		}
	}
	return joinDots(parts)
}

func fileScopedNamespace(t *Tree) string {
	root := t.Root()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		c := root.NamedChild(i)
		if c.Type() == "file_scoped_namespace_declaration" {
			if n := c.ChildByFieldName("name"); n != nil {
				return t.Content(n)
			}
		}
	}
	return ""
}

func joinDots(parts []string) string {
	var b bytes.Buffer
	for i, p := range parts {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(p)
	}
	return b.String()
}

// Declarations returns every type declaration in t, outer before inner, in
// source order.
func (t *Tree) Declarations() []*Declaration {
	var out []*Declaration
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if k := declKindOf(n); k != DeclNone {
			out = append(out, &Declaration{Tree: t, Node: n, Kind: k})
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(t.root)
	return out
}
