package describe

import (
	"strings"

	"github.com/xonecas/typedesc/internal/symbols"
)

// FormatMethod returns the call contract of m, one line per fact: how to
// call it, whether it is async, what it returns, its type parameters and
// its parameters. Facts that cannot be determined are left out.
func FormatMethod(m *symbols.Method) []string {
	if m == nil || m.Name == "" {
		return nil
	}
	var lines []string

	if m.IsStatic {
		owner := m.ContainingType
		if owner == "" {
			owner = "TypeName"
		}
		lines = append(lines, "How to call: call it on the type itself, e.g. "+owner+"."+m.Name+"().")
	} else {
		lines = append(lines, "How to call: call it on an instance you created, e.g. obj."+m.Name+"().")
	}

	if m.IsAsync {
		lines = append(lines, "Async: await the call; it does not block other work while it runs.")
	}

	switch m.ReturnType {
	case "":
	case "void":
		lines = append(lines, "Returns: void (no value).")
	default:
		lines = append(lines, "Returns: "+m.ReturnType+" (produced when the call completes).")
	}

	for _, tp := range m.TypeParameters {
		lines = append(lines, "Type parameter "+tp+": a placeholder type you choose when calling the method.")
	}

	if len(m.Parameters) == 0 {
		return append(lines, "Parameters: none.")
	}
	lines = append(lines, "Parameters:")
	for _, p := range m.Parameters {
		if line := formatParameter(p); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func formatParameter(p symbols.Parameter) string {
	if p.Name == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("- ")
	b.WriteString(p.Name)
	b.WriteString(" (")
	typ := p.Type
	if typ == "" {
		typ = "unknown type"
	}
	b.WriteString(typ)
	if mode := p.Mode.String(); mode != "" {
		b.WriteString(", " + mode)
	}
	if p.IsVariadic {
		b.WriteString(", variadic")
	}
	switch {
	case p.HasDefault:
		b.WriteString(", optional, default = " + FormatConstant(p.Default))
	case p.IsOptional:
		b.WriteString(", optional")
	}
	b.WriteString(")")
	return b.String()
}

// FormatConstant renders a default value the way it would be written in C#.
func FormatConstant(c symbols.Constant) string {
	switch c.Kind {
	case symbols.ConstNull:
		return "null"
	case symbols.ConstString:
		return `"` + c.Text + `"`
	case symbols.ConstChar:
		return "'" + c.Text + "'"
	default:
		return c.Text
	}
}

// Signature renders m as "Name(T a, U b) : R".
func Signature(m *symbols.Method) string {
	params := make([]string, 0, len(m.Parameters))
	for _, p := range m.Parameters {
		var b strings.Builder
		if mode := p.Mode.String(); mode != "" {
			b.WriteString(mode + " ")
		}
		if p.IsVariadic {
			b.WriteString("params ")
		}
		b.WriteString(strings.TrimSpace(p.Type + " " + p.Name))
		params = append(params, b.String())
	}
	sig := m.Name
	if len(m.TypeParameters) > 0 {
		sig += "<" + strings.Join(m.TypeParameters, ", ") + ">"
	}
	sig += "(" + strings.Join(params, ", ") + ")"
	if m.ReturnType != "" {
		sig += " : " + m.ReturnType
	}
	return sig
}
