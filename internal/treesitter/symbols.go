// Package treesitter parses C# sources with tree-sitter into immutable tree
// revisions, resolves caret positions to type declarations and rewrites the
// leading trivia of a declaration.
package treesitter

// SymbolKind classifies outline entries.
type SymbolKind int

const (
	KindNamespace SymbolKind = iota
	KindUsing
	KindClass
	KindStruct
	KindInterface
	KindEnum
	KindDelegate
	KindRecord
	KindMethod
	KindProperty
	KindField
	KindEvent
	KindStatement
)

// Symbol is one outline entry of a file.
type Symbol struct {
	Name      string
	Kind      SymbolKind
	Signature string // e.g. "public static int Parse(string s)"
	StartLine int    // 1-indexed
	EndLine   int    // 1-indexed
	Container string // enclosing type name, empty at top level
	Children  []Symbol
}

func (k SymbolKind) String() string {
	switch k {
	case KindNamespace:
		return "namespace"
	case KindUsing:
		return "using"
	case KindClass:
		return "class"
	case KindStruct:
		return "struct"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindDelegate:
		return "delegate"
	case KindRecord:
		return "record"
	case KindMethod:
		return "method"
	case KindProperty:
		return "property"
	case KindField:
		return "field"
	case KindEvent:
		return "event"
	case KindStatement:
		return "statement"
	default:
		return "unknown"
	}
}

func symbolKindOf(k DeclKind) SymbolKind {
	switch k {
	case DeclStruct:
		return KindStruct
	case DeclInterface:
		return KindInterface
	case DeclEnum:
		return KindEnum
	case DeclDelegate:
		return KindDelegate
	case DeclRecordClass, DeclRecordStruct:
		return KindRecord
	default:
		return KindClass
	}
}
