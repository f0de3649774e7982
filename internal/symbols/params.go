package symbols

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// parameters binds a parameter_list or bracketed_parameter_list.
func (b *binder) parameters(list *sitter.Node) []Parameter {
	var out []Parameter
	for i := 0; i < int(list.ChildCount()); i++ {
		c := list.Child(i)
		switch {
		case c.Type() == "parameter", c.Type() == "parameter_array":
			out = append(out, b.parameter(c))
		case c.Type() == "params" && !c.IsNamed():
			var p Parameter
			p, i = b.paramsArray(list, i+1)
			out = append(out, p)
		}
	}
	return out
}

// paramsArray binds the type and name fields that follow a bare params
// keyword inside list, starting at child start. It returns the index of the
// last child consumed.
func (b *binder) paramsArray(list *sitter.Node, start int) (Parameter, int) {
	p := Parameter{IsVariadic: true}
	last := start - 1
	for j := start; j < int(list.ChildCount()); j++ {
		c := list.Child(j)
		if !c.IsNamed() {
			if c.Type() == "," || c.Type() == ")" || c.Type() == "]" {
				break
			}
			continue
		}
		if c.Type() == "comment" {
			continue
		}
		field := list.FieldNameForChild(j)
		switch {
		case field == "type", field == "" && p.Type == "" && c.Type() != "identifier":
			p.Type = b.text(c)
		case field == "name", field == "" && c.Type() == "identifier":
			p.Name = b.text(c)
		default:
			return p, last
		}
		last = j
		if p.Name != "" {
			break
		}
	}
	return p, last
}

func (b *binder) parameter(n *sitter.Node) Parameter {
	var p Parameter
	if n.Type() == "parameter_array" {
		p.IsVariadic = true
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		var kw string
		switch c.Type() {
		case "modifier", "parameter_modifier":
			kw = b.tree.Content(c)
		case "ref", "out", "in", "params", "this", "readonly", "scoped":
			kw = c.Type()
		case "attribute_list":
			for _, a := range b.attributesOf(c) {
				if simpleName(a) == "Optional" || simpleName(a) == "OptionalAttribute" {
					p.IsOptional = true
				}
			}
		}
		for _, k := range strings.Fields(kw) {
			switch k {
			case "ref":
				p.Mode = ByRef
			case "out":
				p.Mode = ByOut
			case "in":
				p.Mode = ByIn
			case "params":
				p.IsVariadic = true
			}
		}
	}
	if name := nameOf(n); name != nil {
		p.Name = b.text(name)
	}
	if typ := b.typeOf(n); typ != nil {
		p.Type = b.text(typ)
	}
	var value *sitter.Node
	if eq := childOfType(n, "equals_value_clause"); eq != nil && eq.NamedChildCount() > 0 {
		value = eq.NamedChild(int(eq.NamedChildCount()) - 1)
	} else if name := nameOf(n); name != nil {
		// Newer grammars attach the default expression after the name.
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if c := n.NamedChild(i); c.StartByte() > name.StartByte() {
				value = c
			}
		}
	}
	if value != nil {
		p.HasDefault = true
		p.IsOptional = true
		p.Default = b.constant(value, p.Type)
	}
	return p
}

func (b *binder) attributesOf(list *sitter.Node) []string {
	var out []string
	for j := 0; j < int(list.NamedChildCount()); j++ {
		a := list.NamedChild(j)
		if a.Type() != "attribute" {
			continue
		}
		if name := a.ChildByFieldName("name"); name != nil {
			out = append(out, b.text(name))
		} else if a.NamedChildCount() > 0 {
			out = append(out, b.text(a.NamedChild(0)))
		}
	}
	return out
}

var numericTypes = map[string]bool{
	"sbyte": true, "byte": true, "short": true, "ushort": true,
	"int": true, "uint": true, "long": true, "ulong": true,
	"nint": true, "nuint": true, "float": true, "double": true, "decimal": true,
	"SByte": true, "Byte": true, "Int16": true, "UInt16": true,
	"Int32": true, "UInt32": true, "Int64": true, "UInt64": true,
	"IntPtr": true, "UIntPtr": true, "Single": true, "Double": true, "Decimal": true,
}

// constant evaluates a default value expression of a parameter of type typ.
func (b *binder) constant(n *sitter.Node, typ string) Constant {
	text := b.tree.Content(n)
	switch n.Type() {
	case "null_literal":
		return Constant{Kind: ConstNull, Text: "null"}
	case "boolean_literal":
		return Constant{Kind: ConstBool, Text: strings.TrimSpace(text)}
	case "character_literal":
		return Constant{Kind: ConstChar, Text: unquote(text, "'")}
	case "string_literal", "interpolated_string_expression":
		return Constant{Kind: ConstString, Text: unquote(strings.TrimSuffix(text, "u8"), `"`)}
	case "verbatim_string_literal":
		body := unquote(strings.TrimPrefix(text, "@"), `"`)
		return Constant{Kind: ConstString, Text: strings.ReplaceAll(body, `""`, `"`)}
	case "raw_string_literal":
		return Constant{Kind: ConstString, Text: strings.TrimSpace(strings.Trim(text, `"`))}
	case "integer_literal":
		return Constant{Kind: ConstNumber, Text: normalizeInteger(text)}
	case "real_literal":
		return Constant{Kind: ConstNumber, Text: normalizeReal(text)}
	case "parenthesized_expression":
		if n.NamedChildCount() == 1 {
			return b.constant(n.NamedChild(0), typ)
		}
	case "cast_expression":
		if v := n.ChildByFieldName("value"); v != nil {
			return b.constant(v, typ)
		}
	case "prefix_unary_expression":
		if n.NamedChildCount() == 1 {
			inner := b.constant(n.NamedChild(0), typ)
			op := strings.TrimSpace(text)[:1]
			if inner.Kind == ConstNumber && (op == "-" || op == "+") {
				if op == "-" && inner.Text != "0" {
					inner.Text = "-" + inner.Text
				}
				return inner
			}
		}
	case "default_expression", "default_literal":
		if t := n.ChildByFieldName("type"); t != nil {
			typ = b.text(t)
		} else if n.NamedChildCount() == 1 {
			typ = b.text(n.NamedChild(0))
		}
		return defaultOf(typ)
	}
	if strings.TrimSpace(text) == "default" {
		return defaultOf(typ)
	}
	return Constant{Kind: ConstOther, Text: normalizeSpace(text)}
}

// defaultOf returns the value of default(typ).
func defaultOf(typ string) Constant {
	typ = strings.TrimPrefix(strings.TrimSpace(typ), "System.")
	switch {
	case strings.HasSuffix(typ, "?"):
		return Constant{Kind: ConstNull, Text: "null"}
	case numericTypes[typ]:
		return Constant{Kind: ConstNumber, Text: "0"}
	case typ == "bool" || typ == "Boolean":
		return Constant{Kind: ConstBool, Text: "false"}
	case typ == "char" || typ == "Char":
		return Constant{Kind: ConstChar, Text: `\0`}
	}
	return Constant{Kind: ConstNull, Text: "null"}
}

func unquote(s, q string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2*len(q) && strings.HasPrefix(s, q) && strings.HasSuffix(s, q) {
		return s[len(q) : len(s)-len(q)]
	}
	return s
}

// normalizeInteger renders an integer literal as plain decimal text.
func normalizeInteger(lit string) string {
	s := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(lit), "_", ""))
	s = strings.TrimRight(s, "ul")
	base := 10
	switch {
	case strings.HasPrefix(s, "0x"):
		base, s = 16, s[2:]
	case strings.HasPrefix(s, "0b"):
		base, s = 2, s[2:]
	}
	v, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return lit
	}
	return strconv.FormatUint(v, 10)
}

// normalizeReal renders a real literal without its type suffix. Decimal
// literals keep their digits as written.
func normalizeReal(lit string) string {
	s := strings.ReplaceAll(strings.TrimSpace(lit), "_", "")
	if strings.HasSuffix(strings.ToLower(s), "m") {
		return s[:len(s)-1]
	}
	s = strings.TrimRight(s, "fFdD")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return lit
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
