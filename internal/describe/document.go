package describe

import (
	"path/filepath"
	"strings"

	"github.com/xonecas/typedesc/internal/symbols"
	"github.com/xonecas/typedesc/internal/treesitter"
)

// DescribeFile summarizes a whole file: its namespaces, using directives,
// the types it declares with a description of each, and its top-level
// statements.
func (d Describer) DescribeFile(t *treesitter.Tree) string {
	if t == nil {
		return ""
	}
	facts := treesitter.Facts(t)
	var b strings.Builder

	b.WriteString("This file (" + filepath.Base(t.Path) + ") ")
	switch len(facts.Namespaces) {
	case 0:
		b.WriteString("is in the global namespace. ")
	case 1:
		b.WriteString("belongs to the " + facts.Namespaces[0] + " namespace. ")
	default:
		b.WriteString("contains code in the " + JoinList(facts.Namespaces) + " namespaces. ")
	}

	if facts.Usings > 0 {
		b.WriteString("It references " + CountDescription(facts.Usings, "using directive") + ". ")
	}

	var names, descriptions []string
	seen := make(map[string]bool)
	for _, decl := range t.Declarations() {
		if decl.Kind == treesitter.DeclDelegate {
			continue
		}
		sym := symbols.Bind(decl)
		if sym == nil {
			continue
		}
		// Partial declarations of one type count once.
		key := sym.Namespace + "\x00" + sym.ContainingType + "\x00" + sym.Name
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, sym.Name)
		if desc := d.Describe(sym, decl); desc != "" {
			descriptions = append(descriptions, desc)
		}
	}
	if len(names) > 0 {
		b.WriteString("It defines " + CountDescription(len(names), "type") + ": " + JoinList(names) + ". ")
	} else {
		b.WriteString("It does not declare any named types. ")
	}
	for _, desc := range descriptions {
		b.WriteString(desc)
		if !strings.HasSuffix(desc, ".") {
			b.WriteString(".")
		}
		b.WriteString(" ")
	}

	if facts.Statements > 0 {
		b.WriteString("It also contains " + CountDescription(facts.Statements, "top-level statement") + ".")
	}
	return strings.TrimSpace(b.String())
}
