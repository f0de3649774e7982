package describe

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xonecas/typedesc/internal/symbols"
	"github.com/xonecas/typedesc/internal/treesitter"
)

const ruleWidth = 42

// publicMembers groups the public members of a type by kind.
type publicMembers struct {
	properties []*symbols.Property
	methods    []*symbols.Method
	fields     []*symbols.Field
	constants  []*symbols.ConstField
	events     []*symbols.Event
}

func (g *publicMembers) VisitProperty(p *symbols.Property) {
	if p.Visibility == symbols.Public {
		g.properties = append(g.properties, p)
	}
}

func (g *publicMembers) VisitMethod(m *symbols.Method) {
	if m.Visibility == symbols.Public {
		g.methods = append(g.methods, m)
	}
}

func (g *publicMembers) VisitField(f *symbols.Field) {
	if f.Visibility == symbols.Public {
		g.fields = append(g.fields, f)
	}
}

func (g *publicMembers) VisitConstField(c *symbols.ConstField) {
	if c.Visibility == symbols.Public {
		g.constants = append(g.constants, c)
	}
}

func (g *publicMembers) VisitEvent(e *symbols.Event) {
	if e.Visibility == symbols.Public {
		g.events = append(g.events, e)
	}
}

// Report renders the detailed description of sym: a header, the summary
// paragraph, the type's relationships, and its public members with a call
// contract per method.
func (d Describer) Report(sym *symbols.TypeSymbol, decl *treesitter.Declaration) string {
	if sym == nil || decl == nil {
		return ""
	}
	short := d.shortener(sym)
	var b strings.Builder

	ns := sym.Namespace
	if ns == "" {
		ns = "global namespace"
	}
	fmt.Fprintf(&b, "%s  (%s)\n", sym.Name, ns)
	b.WriteString(strings.Repeat("─", ruleWidth) + "\n")
	b.WriteString(d.Describe(sym, decl) + "\n\n")
	fmt.Fprintf(&b, "Type: %s\n", Descriptor(sym, decl))

	if sym.BaseType != "" {
		fmt.Fprintf(&b, "Inherits: %s\n", short.Shorten(sym.BaseType))
	}
	if len(sym.Interfaces) > 0 {
		names := make([]string, len(sym.Interfaces))
		for i, iface := range sym.Interfaces {
			names[i] = short.Shorten(iface)
		}
		fmt.Fprintf(&b, "Implements: %s\n", strings.Join(names, ", "))
	}
	if len(sym.Attributes) > 0 {
		attrs := make([]string, len(sym.Attributes))
		for i, a := range sym.Attributes {
			attrs[i] = strings.TrimSuffix(a, "Attribute")
		}
		fmt.Fprintf(&b, "Attributes: [%s]\n", strings.Join(attrs, ", "))
	}

	var g publicMembers
	for _, m := range sym.Members {
		m.Accept(&g)
	}

	deps := make(map[string]bool)
	addDep := func(typ string) {
		if typ = short.Shorten(typ); typ != "" && typ != "void" {
			deps[typ] = true
		}
	}

	if len(g.properties) > 0 {
		items := make([]string, len(g.properties))
		for i, p := range g.properties {
			items[i] = typedName(p.Type, p.Name)
			addDep(p.Type)
		}
		fmt.Fprintf(&b, "Properties (%d): %s\n", len(items), strings.Join(items, ", "))
	}

	if len(g.methods) > 0 {
		fmt.Fprintf(&b, "Methods (%d):\n", len(g.methods))
		for i, m := range g.methods {
			fmt.Fprintf(&b, "  • %s\n", Signature(m))
			for _, line := range FormatMethod(m) {
				fmt.Fprintf(&b, "    %s\n", line)
			}
			if i < len(g.methods)-1 {
				b.WriteString("\n")
			}
			for _, p := range m.Parameters {
				addDep(p.Type)
			}
		}
	}

	if len(g.fields) > 0 {
		items := make([]string, len(g.fields))
		for i, f := range g.fields {
			items[i] = typedName(f.Type, f.Name)
			addDep(f.Type)
		}
		fmt.Fprintf(&b, "Fields (%d): %s\n", len(items), strings.Join(items, ", "))
	}

	if len(g.constants) > 0 {
		items := make([]string, len(g.constants))
		for i, c := range g.constants {
			items[i] = typedName(c.Type, c.Name)
		}
		fmt.Fprintf(&b, "Constants (%d): %s\n", len(items), strings.Join(items, ", "))
	}

	if len(g.events) > 0 {
		items := make([]string, len(g.events))
		for i, e := range g.events {
			items[i] = typedName(e.Type, e.Name)
		}
		fmt.Fprintf(&b, "Events (%d): %s\n", len(items), strings.Join(items, ", "))
	}

	if len(deps) > 0 {
		names := make([]string, 0, len(deps))
		for n := range deps {
			names = append(names, n)
		}
		sort.Strings(names)
		fmt.Fprintf(&b, "Depends on: %s\n", strings.Join(names, ", "))
	}

	if sym.HasDocComment {
		b.WriteString("XML summary: present\n")
	}
	return b.String()
}

func typedName(typ, name string) string {
	return strings.TrimSpace(typ + " " + name)
}
