package treesitter

import (
	"bytes"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
)

// TokenAt returns the token at offset. A token whose span contains offset
// wins, ties going to the token that ends exactly at offset. Offsets inside
// whitespace or comments attach the way trivia does: to the preceding token
// when still on its line, otherwise to the following token. Returns nil only
// for a tree without tokens.
func (t *Tree) TokenAt(offset int) *sitter.Node {
	toks := t.Tokens()
	if len(toks) == 0 {
		return nil
	}
	i := sort.Search(len(toks), func(i int) bool { return int(toks[i].StartByte()) >= offset })

	var prev, next *sitter.Node
	if i > 0 {
		prev = toks[i-1]
	}
	if i < len(toks) {
		next = toks[i]
	}

	switch {
	case prev != nil && int(prev.EndByte()) >= offset:
		return prev
	case next != nil && int(next.StartByte()) == offset:
		return next
	case prev != nil && !hasLineBreak(t.src[prev.EndByte():clamp(offset, len(t.src))]):
		return prev
	case next != nil:
		return next
	default:
		return prev
	}
}

func hasLineBreak(b []byte) bool {
	return bytes.ContainsAny(b, "\r\n")
}

func clamp(v, hi int) int {
	if v > hi {
		return hi
	}
	if v < 0 {
		return 0
	}
	return v
}

// Resolve returns the smallest type declaration enclosing pos, or nil when
// pos is outside the file or not inside any type.
func Resolve(t *Tree, pos Position) *Declaration {
	off, ok := t.text.Offset(pos)
	if !ok {
		return nil
	}
	return ResolveOffset(t, off)
}

// ResolveOffset is Resolve for a byte offset.
func ResolveOffset(t *Tree, offset int) *Declaration {
	for n := t.TokenAt(offset); n != nil; n = n.Parent() {
		if k := declKindOf(n); k != DeclNone {
			return &Declaration{Tree: t, Node: n, Kind: k}
		}
	}
	return nil
}

// memberTypes are the node types that count as members when picking the
// code around a caret. Type declarations count as well, and so do
// namespaces and top-level statements.
var memberTypes = map[string]bool{
	"method_declaration":                true,
	"constructor_declaration":           true,
	"destructor_declaration":            true,
	"operator_declaration":              true,
	"conversion_operator_declaration":   true,
	"property_declaration":              true,
	"indexer_declaration":               true,
	"field_declaration":                 true,
	"event_field_declaration":           true,
	"event_declaration":                 true,
	"enum_member_declaration":           true,
	"global_statement":                  true,
	"namespace_declaration":             true,
	"file_scoped_namespace_declaration": true,
}

// ResolveMember returns the smallest member, type or namespace declaration
// enclosing pos, or nil.
func ResolveMember(t *Tree, pos Position) *sitter.Node {
	off, ok := t.text.Offset(pos)
	if !ok {
		return nil
	}
	for n := t.TokenAt(off); n != nil; n = n.Parent() {
		if memberTypes[n.Type()] || declKindOf(n) != DeclNone {
			return n
		}
	}
	return nil
}

// Relocate finds old's counterpart in t. When t was derived from old's tree
// by a single splice, the declaration is found at its shifted offset;
// otherwise the first declaration with the same kind and name is returned.
func Relocate(t *Tree, old *Declaration) *Declaration {
	if old == nil {
		return nil
	}
	if old.Tree == t {
		return old
	}
	start := old.Start()
	if t.parent == old.Tree && t.splice != nil {
		if start >= t.splice.oldEnd {
			start += t.splice.newEnd - t.splice.oldEnd
		}
		for _, d := range t.Declarations() {
			if d.Start() == start && d.Kind == old.Kind {
				return d
			}
		}
	}
	name := old.Name()
	for _, d := range t.Declarations() {
		if d.Kind == old.Kind && d.Name() == name {
			return d
		}
	}
	return nil
}
