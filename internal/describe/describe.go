// Package describe renders deterministic English descriptions of C# types:
// the summary paragraph, per-method call contracts, the detailed report and
// the file summary.
package describe

import (
	"fmt"
	"strings"

	"github.com/xonecas/typedesc/internal/symbols"
	"github.com/xonecas/typedesc/internal/treesitter"
)

// descriptorModifiers are the declared modifiers that appear in a
// descriptor phrase.
var descriptorModifiers = map[string]bool{
	"abstract": true,
	"static":   true,
	"sealed":   true,
	"partial":  true,
	"unsafe":   true,
	"readonly": true,
	"ref":      true,
}

// Describer renders type descriptions. The zero value shortens type names
// using the usings and namespace of the described type.
type Describer struct {
	Shorten symbols.Shortener
}

func (d Describer) shortener(sym *symbols.TypeSymbol) symbols.Shortener {
	if d.Shorten != nil {
		return d.Shorten
	}
	return symbols.NewShortener(sym)
}

// Describe returns the summary paragraph for sym declared by decl, or ""
// when either is nil.
func (d Describer) Describe(sym *symbols.TypeSymbol, decl *treesitter.Declaration) string {
	if sym == nil || decl == nil {
		return ""
	}
	short := d.shortener(sym)

	descriptor := Descriptor(sym, decl)
	var sentences []string

	identity := fmt.Sprintf("%s is %s %s", sym.Name, article(descriptor), descriptor)
	if sym.Namespace != "" {
		identity += " in the " + sym.Namespace + " namespace"
	}
	sentences = append(sentences, identity+".")

	if sym.BaseType != "" {
		sentences = append(sentences, "It derives from "+short.Shorten(sym.BaseType)+".")
	}

	if len(sym.Interfaces) > 0 {
		names := make([]string, len(sym.Interfaces))
		for i, iface := range sym.Interfaces {
			names[i] = short.Shorten(iface)
		}
		sentences = append(sentences, "It implements "+JoinList(names)+".")
	}

	if sym.Kind == treesitter.DeclEnum {
		var names []string
		for _, m := range sym.Members {
			if c, ok := m.(*symbols.ConstField); ok && c.Name != "" {
				names = append(names, c.Name)
			}
		}
		if len(names) > 0 {
			sentences = append(sentences, "The enumeration defines "+JoinList(names)+".")
		}
		return strings.Join(sentences, " ")
	}

	c := symbols.CountMembers(sym.Members)
	var parts []string
	for _, e := range []struct {
		n    int
		noun string
	}{
		{c.Properties, "property"},
		{c.Methods, "method"},
		{c.Fields, "field"},
		{c.Constants, "constant"},
		{c.Events, "event"},
	} {
		if e.n > 0 {
			parts = append(parts, CountDescription(e.n, e.noun))
		}
	}
	if len(parts) > 0 {
		sentences = append(sentences, "It exposes "+JoinList(parts)+".")
	}
	return strings.Join(sentences, " ")
}

// Descriptor returns the phrase naming what kind of type sym is, e.g.
// "public sealed class". The visibility keyword comes first, followed by
// the recognized declared modifiers in source order and the kind.
func Descriptor(sym *symbols.TypeSymbol, decl *treesitter.Declaration) string {
	var parts []string
	if v := sym.Visibility.String(); v != "" {
		parts = append(parts, v)
	}
	for _, m := range sym.Modifiers {
		if descriptorModifiers[m] {
			parts = append(parts, m)
		}
	}
	if k := kindName(sym, decl); k != "" {
		parts = append(parts, k)
	}
	if len(parts) == 0 {
		return "type"
	}
	return strings.Join(parts, " ")
}

// kindName returns the display name of the kind, falling back to the
// grammar's node name for declarations the binder does not classify.
func kindName(sym *symbols.TypeSymbol, decl *treesitter.Declaration) string {
	if k := sym.Kind.String(); k != "" {
		return k
	}
	if decl == nil || decl.Node == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSuffix(decl.Node.Type(), "_declaration"))
}

func article(phrase string) string {
	if phrase == "" {
		return "a"
	}
	switch phrase[0] {
	case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
		return "an"
	}
	return "a"
}

// JoinList joins items with commas and a final "and", using the serial
// comma for three or more items.
func JoinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
}

// CountDescription renders "1 noun" or "n nouns".
func CountDescription(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %s", n, plural(noun))
}

// plural adds "s", turning a trailing consonant-y into "ies".
func plural(noun string) string {
	if len(noun) > 1 && noun[len(noun)-1] == 'y' && !strings.ContainsRune("aeiou", rune(noun[len(noun)-2])) {
		return noun[:len(noun)-1] + "ies"
	}
	return noun + "s"
}
