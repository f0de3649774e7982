package symbols

import (
	"regexp"
	"strings"
)

// Shortener spells a type name minimally for the current context.
type Shortener interface {
	Shorten(typeName string) string
}

// ShortenerFunc adapts a function to Shortener.
type ShortenerFunc func(string) string

func (f ShortenerFunc) Shorten(s string) string { return f(s) }

var keywordTypes = map[string]string{
	"Boolean": "bool",
	"Byte":    "byte",
	"SByte":   "sbyte",
	"Char":    "char",
	"Decimal": "decimal",
	"Double":  "double",
	"Single":  "float",
	"Int16":   "short",
	"UInt16":  "ushort",
	"Int32":   "int",
	"UInt32":  "uint",
	"Int64":   "long",
	"UInt64":  "ulong",
	"Object":  "object",
	"String":  "string",
	"Void":    "void",
}

var qualifiedName = regexp.MustCompile(`(?:global::)?[A-Za-z_@][A-Za-z0-9_]*(?:\s*\.\s*[A-Za-z_@][A-Za-z0-9_]*)*`)

// UsingShortener drops namespace qualifiers that the file's using
// directives or enclosing namespaces make redundant, and spells special
// types with their keywords.
type UsingShortener struct {
	open []string // namespaces in scope, most specific first
}

// NewShortener builds a shortener for names appearing in sym's declaration.
func NewShortener(sym *TypeSymbol) *UsingShortener {
	s := &UsingShortener{}
	if sym == nil {
		return s
	}
	ns := sym.Namespace
	for ns != "" {
		s.open = append(s.open, ns)
		i := strings.LastIndexByte(ns, '.')
		if i < 0 {
			break
		}
		ns = ns[:i]
	}
	s.open = append(s.open, sym.Usings...)
	return s
}

func (s *UsingShortener) imports(ns string) bool {
	for _, o := range s.open {
		if o == ns {
			return true
		}
	}
	return false
}

// Shorten rewrites every qualified name inside typeName, including type
// arguments.
func (s *UsingShortener) Shorten(typeName string) string {
	return qualifiedName.ReplaceAllStringFunc(typeName, s.shortenOne)
}

func (s *UsingShortener) shortenOne(name string) string {
	name = strings.TrimPrefix(name, "global::")
	name = strings.Join(strings.Fields(name), "")
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		if kw, ok := keywordTypes[name]; ok && s.imports("System") {
			return kw
		}
		return name
	}
	ns, simple := name[:i], name[i+1:]
	if ns == "System" {
		if kw, ok := keywordTypes[simple]; ok {
			return kw
		}
	}
	if s.imports(ns) {
		return simple
	}
	return name
}
