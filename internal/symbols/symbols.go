// Package symbols derives read-only type symbols from C# declarations.
// Symbols are computed from syntax alone and recomputed on every request.
package symbols

import (
	"github.com/xonecas/typedesc/internal/treesitter"
)

// Visibility is the declared or defaulted accessibility of a symbol.
type Visibility int

const (
	VisibilityNone Visibility = iota
	Public
	Internal
	Private
	Protected
	ProtectedInternal
	PrivateProtected
)

// String returns the C# keyword spelling, or "" for VisibilityNone.
func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Internal:
		return "internal"
	case Private:
		return "private"
	case Protected:
		return "protected"
	case ProtectedInternal:
		return "protected internal"
	case PrivateProtected:
		return "private protected"
	default:
		return ""
	}
}

// MarshalText lets symbol dumps spell visibilities as keywords.
func (v Visibility) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// TypeSymbol is the resolved shape of a type declaration.
type TypeSymbol struct {
	Name           string
	Kind           treesitter.DeclKind
	Visibility     Visibility
	IsStatic       bool
	IsAbstract     bool
	IsSealed       bool
	Namespace      string // "" for the global namespace
	ContainingType string
	BaseType       string // "" when the base is a root type or absent
	Interfaces     []string
	TypeParameters []string
	Attributes     []string
	Members        []Member
	HasDocComment  bool
	Modifiers      []string // declared modifier keywords in source order
	Usings         []string // namespaces imported by the file
}

// MemberInfo is shared by every member kind.
type MemberInfo struct {
	Name       string
	Type       string
	Visibility Visibility
	IsStatic   bool
}

// Member is a closed union over Property, Method, Field, ConstField and
// Event. Use Accept with a Visitor to switch over it.
type Member interface {
	Info() MemberInfo
	Accept(v Visitor)
	member()
}

// Visitor handles every member kind.
type Visitor interface {
	VisitProperty(p *Property)
	VisitMethod(m *Method)
	VisitField(f *Field)
	VisitConstField(c *ConstField)
	VisitEvent(e *Event)
}

// Property is a property or indexer.
type Property struct {
	MemberInfo
	IsIndexer bool
}

// Method is an ordinary method. Constructors, operators and accessors are
// not members in this model.
type Method struct {
	MemberInfo
	IsAsync        bool
	IsAbstract     bool
	ReturnType     string // "" when it could not be determined
	TypeParameters []string
	Parameters     []Parameter
	ContainingType string
}

// Field is a non-constant field.
type Field struct {
	MemberInfo
	IsReadOnly bool
}

// ConstField is a const field or an enum member.
type ConstField struct {
	MemberInfo
	Value string // initializer source text, if any
}

// Event is an event declaration.
type Event struct {
	MemberInfo
}

func (p *Property) Info() MemberInfo   { return p.MemberInfo }
func (m *Method) Info() MemberInfo     { return m.MemberInfo }
func (f *Field) Info() MemberInfo      { return f.MemberInfo }
func (c *ConstField) Info() MemberInfo { return c.MemberInfo }
func (e *Event) Info() MemberInfo      { return e.MemberInfo }

func (p *Property) Accept(v Visitor)   { v.VisitProperty(p) }
func (m *Method) Accept(v Visitor)     { v.VisitMethod(m) }
func (f *Field) Accept(v Visitor)      { v.VisitField(f) }
func (c *ConstField) Accept(v Visitor) { v.VisitConstField(c) }
func (e *Event) Accept(v Visitor)      { v.VisitEvent(e) }

func (*Property) member()   {}
func (*Method) member()     {}
func (*Field) member()      {}
func (*ConstField) member() {}
func (*Event) member()      {}

// PassingMode is how an argument is passed.
type PassingMode int

const (
	ByValue PassingMode = iota
	ByRef
	ByOut
	ByIn
)

func (m PassingMode) String() string {
	switch m {
	case ByRef:
		return "ref"
	case ByOut:
		return "out"
	case ByIn:
		return "in"
	default:
		return ""
	}
}

// Parameter is one method parameter.
type Parameter struct {
	Name       string
	Type       string
	Mode       PassingMode
	IsVariadic bool
	IsOptional bool
	HasDefault bool
	Default    Constant
}

// ConstantKind classifies a default value.
type ConstantKind int

const (
	ConstOther ConstantKind = iota
	ConstNull
	ConstString
	ConstChar
	ConstBool
	ConstNumber
)

// Constant is a typed default value. Text holds the value: the unquoted
// body for strings and chars, "true"/"false" for bools, decimal text for
// numbers and the source text for anything else.
type Constant struct {
	Kind ConstantKind
	Text string
}

// Counts tallies members per kind.
type Counts struct {
	Properties int
	Methods    int
	Fields     int
	Constants  int
	Events     int
}

func (c *Counts) VisitProperty(*Property)     { c.Properties++ }
func (c *Counts) VisitMethod(*Method)         { c.Methods++ }
func (c *Counts) VisitField(*Field)           { c.Fields++ }
func (c *Counts) VisitConstField(*ConstField) { c.Constants++ }
func (c *Counts) VisitEvent(*Event)           { c.Events++ }

// CountMembers tallies ms.
func CountMembers(ms []Member) Counts {
	var c Counts
	for _, m := range ms {
		m.Accept(&c)
	}
	return c
}
