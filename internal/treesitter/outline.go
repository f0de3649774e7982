package treesitter

import (
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// MaxOutlineBytes caps the outline printed for a whole workspace.
const MaxOutlineBytes = 16 * 1024

// Body returns the member list node of a type declaration, or nil for
// delegates and bodiless declarations.
func Body(n *sitter.Node) *sitter.Node {
	if b := n.ChildByFieldName("body"); b != nil {
		return b
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "declaration_list", "enum_member_declaration_list":
			return c
		}
	}
	return nil
}

// FileFacts is the file-level inventory used by the file summary.
type FileFacts struct {
	Namespaces []string       // distinct, in order of appearance
	Usings     int            // using directives anywhere in the file
	Types      []*Declaration // types not nested in other types
	Statements int            // top-level statements
}

// Facts collects the file-level inventory of t.
func Facts(t *Tree) FileFacts {
	var f FileFacts
	seen := make(map[string]bool)
	var walk func(n *sitter.Node, ns string)
	walk = func(n *sitter.Node, ns string) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			switch c.Type() {
			case "using_directive":
				f.Usings++
			case "global_statement":
				f.Statements++
			case "namespace_declaration", "file_scoped_namespace_declaration":
				name := t.Content(c.ChildByFieldName("name"))
				if ns != "" {
					name = ns + "." + name
				}
				if name != "" && !seen[name] {
					seen[name] = true
					f.Namespaces = append(f.Namespaces, name)
				}
				walk(c, name)
				if c.Type() == "file_scoped_namespace_declaration" {
					// Members may follow as siblings.
					ns = name
				}
			case "declaration_list":
				walk(c, ns)
			default:
				if k := declKindOf(c); k != DeclNone {
					f.Types = append(f.Types, &Declaration{Tree: t, Node: c, Kind: k})
				}
			}
		}
	}
	walk(t.root, "")
	return f
}

// Outline returns the outline entries of t: namespaces, using directives,
// types with their members, and top-level statements.
func Outline(t *Tree) []Symbol {
	var syms []Symbol
	facts := Facts(t)
	for _, ns := range facts.Namespaces {
		syms = append(syms, Symbol{Name: ns, Kind: KindNamespace})
	}
	for _, d := range t.Declarations() {
		sym := Symbol{
			Name:      d.Name(),
			Kind:      symbolKindOf(d.Kind),
			Signature: strings.TrimSpace(strings.Join(d.Modifiers(), " ") + " " + d.Kind.String() + " " + d.Name()),
			StartLine: line(d.Node),
			EndLine:   endLine(d.Node),
		}
		if c := d.Container(); c != nil {
			sym.Container = c.Name()
		}
		if body := Body(d.Node); body != nil {
			sym.Children = outlineMembers(t, body, d.Name())
		}
		syms = append(syms, sym)
	}
	if facts.Statements > 0 {
		syms = append(syms, Symbol{Name: fmt.Sprintf("%d", facts.Statements), Kind: KindStatement})
	}
	return syms
}

func outlineMembers(t *Tree, body *sitter.Node, container string) []Symbol {
	var out []Symbol
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := body.NamedChild(i)
		var kind SymbolKind
		switch c.Type() {
		case "method_declaration":
			kind = KindMethod
		case "property_declaration", "indexer_declaration":
			kind = KindProperty
		case "field_declaration", "enum_member_declaration":
			kind = KindField
		case "event_field_declaration", "event_declaration":
			kind = KindEvent
		default:
			continue
		}
		for _, name := range memberNames(t, c) {
			out = append(out, Symbol{
				Name:      name,
				Kind:      kind,
				Signature: signature(t, c),
				StartLine: line(c),
				EndLine:   endLine(c),
				Container: container,
			})
		}
	}
	return out
}

// memberNames returns the declared names of a member node. Field and event
// declarations may declare several variables.
func memberNames(t *Tree, n *sitter.Node) []string {
	if n.Type() == "indexer_declaration" {
		return []string{"this[]"}
	}
	if name := n.ChildByFieldName("name"); name != nil {
		return []string{t.Content(name)}
	}
	var names []string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			switch c.Type() {
			case "variable_declaration":
				walk(c)
			case "variable_declarator":
				if id := c.ChildByFieldName("name"); id != nil {
					names = append(names, t.Content(id))
				} else if id := firstNamed(c, "identifier"); id != nil {
					names = append(names, t.Content(id))
				}
			case "identifier":
				if n.Type() == "enum_member_declaration" && len(names) == 0 {
					names = append(names, t.Content(c))
				}
			}
		}
	}
	walk(n)
	return names
}

func firstNamed(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == typ {
			return c
		}
	}
	return nil
}

// signature returns the member text before its body, on one line.
func signature(t *Tree, n *sitter.Node) string {
	end := n.EndByte()
	for _, field := range []string{"body", "accessors"} {
		if b := n.ChildByFieldName(field); b != nil && b.StartByte() < end {
			end = b.StartByte()
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "block", "accessor_list", "arrow_expression_clause":
			if c.StartByte() < end {
				end = c.StartByte()
			}
		}
	}
	text := string(t.src[n.StartByte():end])
	text = strings.Join(strings.Fields(text), " ")
	return strings.TrimSuffix(text, ";")
}

// FormatOutline renders a compact outline of several files, grouping
// members under their type. Output is capped at MaxOutlineBytes.
//
// Example output:
//
//	Shapes/Circle.cs:
//	  namespace: Shapes
//	  class Circle: Radius, Area, Scale
//	  enum Unit: Px, Em
func FormatOutline(snap map[string][]Symbol) string {
	if len(snap) == 0 {
		return ""
	}

	paths := make([]string, 0, len(snap))
	for p := range snap {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	for _, path := range paths {
		text := formatFileCompact(snap[path])
		if text == "" {
			continue
		}
		entry := fmt.Sprintf("%s:\n%s", path, text)
		if b.Len()+len(entry) > MaxOutlineBytes {
			fmt.Fprintf(&b, "# ... truncated (%d files total)\n", len(paths))
			break
		}
		b.WriteString(entry)
	}
	return b.String()
}

// formatFileCompact produces a compact per-file representation.
func formatFileCompact(syms []Symbol) string {
	var b strings.Builder
	var namespaces []string
	for _, s := range syms {
		if s.Kind == KindNamespace {
			namespaces = append(namespaces, s.Name)
		}
	}
	if len(namespaces) > 0 {
		fmt.Fprintf(&b, "  namespace: %s\n", strings.Join(namespaces, ", "))
	}
	for _, s := range syms {
		switch s.Kind {
		case KindNamespace, KindUsing, KindMethod, KindProperty, KindField, KindEvent:
			continue
		case KindStatement:
			fmt.Fprintf(&b, "  statements: %s\n", s.Name)
			continue
		}
		name := s.Name
		if s.Container != "" {
			name = s.Container + "." + name
		}
		members := make([]string, 0, len(s.Children))
		for _, m := range s.Children {
			members = append(members, m.Name)
		}
		if len(members) == 0 {
			fmt.Fprintf(&b, "  %s %s\n", s.Kind, name)
			continue
		}
		fmt.Fprintf(&b, "  %s %s: %s\n", s.Kind, name, strings.Join(members, ", "))
	}
	return b.String()
}

func line(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1 // 1-indexed
}

func endLine(node *sitter.Node) int {
	return int(node.EndPoint().Row) + 1
}
