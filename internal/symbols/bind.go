package symbols

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/xonecas/typedesc/internal/treesitter"
)

// rootTypes are base types that are never reported as a base.
var rootTypes = map[string]bool{
	"object":           true,
	"Object":           true,
	"System.Object":    true,
	"ValueType":        true,
	"System.ValueType": true,
}

var interfaceName = regexp.MustCompile(`^I[A-Z]`)

// Bind computes the symbol of decl. It returns nil for a nil declaration.
// Binding is syntactic: base types declared in the same file are classified
// by their declaration, others by the I-prefix naming convention.
func Bind(decl *treesitter.Declaration) *TypeSymbol {
	if decl == nil || decl.Node == nil {
		return nil
	}
	b := binder{tree: decl.Tree}
	return b.bindType(decl)
}

type binder struct {
	tree *treesitter.Tree

	localKinds map[string]treesitter.DeclKind
}

func (b *binder) text(n *sitter.Node) string {
	return normalizeSpace(b.tree.Content(n))
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (b *binder) bindType(decl *treesitter.Declaration) *TypeSymbol {
	n := decl.Node
	mods := decl.Modifiers()
	sym := &TypeSymbol{
		Name:          decl.Name(),
		Kind:          decl.Kind,
		Namespace:     decl.Namespace(),
		Modifiers:     mods,
		HasDocComment: decl.LeadingTrivia().HasDocComment(),
		Usings:        usings(b.tree),
	}

	container := decl.Container()
	def := Internal
	if container != nil {
		def = Private
		sym.ContainingType = container.Name()
	}
	sym.Visibility = visibilityFrom(mods, def)

	sym.IsStatic = hasModifier(mods, "static")
	sym.IsAbstract = hasModifier(mods, "abstract")
	sym.IsSealed = hasModifier(mods, "sealed")
	switch decl.Kind {
	case treesitter.DeclInterface:
		sym.IsAbstract = true
	case treesitter.DeclStruct, treesitter.DeclRecordStruct, treesitter.DeclEnum, treesitter.DeclDelegate:
		sym.IsSealed = true
	}
	if sym.IsStatic {
		sym.IsAbstract = true
		sym.IsSealed = true
	}

	sym.TypeParameters = b.typeParameters(n)
	sym.Attributes = b.attributes(n)
	b.bindBases(decl, sym)

	switch decl.Kind {
	case treesitter.DeclEnum:
		sym.Members = b.enumMembers(n, sym.Name)
	case treesitter.DeclDelegate:
		// Invoke and friends are compiler generated.
	default:
		memberDefault := Private
		if decl.Kind == treesitter.DeclInterface {
			memberDefault = Public
		}
		if decl.Kind == treesitter.DeclRecordClass || decl.Kind == treesitter.DeclRecordStruct {
			sym.Members = append(sym.Members, b.positionalProperties(n)...)
		}
		if body := treesitter.Body(n); body != nil {
			sym.Members = append(sym.Members, b.members(body, sym, memberDefault)...)
		}
	}
	return sym
}

func hasModifier(mods []string, want string) bool {
	for _, m := range mods {
		if m == want {
			return true
		}
	}
	return false
}

// visibilityFrom maps accessibility keywords to a Visibility, using def
// when none is declared.
func visibilityFrom(mods []string, def Visibility) Visibility {
	var public, internal, private, protected bool
	for _, m := range mods {
		switch m {
		case "public":
			public = true
		case "internal":
			internal = true
		case "private":
			private = true
		case "protected":
			protected = true
		}
	}
	switch {
	case public:
		return Public
	case protected && internal:
		return ProtectedInternal
	case private && protected:
		return PrivateProtected
	case protected:
		return Protected
	case internal:
		return Internal
	case private:
		return Private
	}
	return def
}

func usings(t *treesitter.Tree) []string {
	var out []string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			switch c.Type() {
			case "using_directive":
				if name := usingNamespace(t, c); name != "" {
					out = append(out, name)
				}
			case "namespace_declaration", "file_scoped_namespace_declaration", "declaration_list":
				walk(c)
			}
		}
	}
	walk(t.Root())
	return out
}

// usingNamespace returns the namespace imported by a plain using directive,
// or "" for static and alias directives.
func usingNamespace(t *treesitter.Tree, n *sitter.Node) string {
	var name string
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case "static", "=", "name_equals":
			return ""
		case "identifier", "qualified_name", "alias_qualified_name":
			name = t.Content(c)
		}
	}
	return strings.TrimPrefix(name, "global::")
}

func (b *binder) typeParameters(n *sitter.Node) []string {
	var list *sitter.Node
	if l := n.ChildByFieldName("type_parameters"); l != nil {
		list = l
	} else {
		list = childOfType(n, "type_parameter_list")
	}
	if list == nil {
		return nil
	}
	var out []string
	for i := 0; i < int(list.NamedChildCount()); i++ {
		c := list.NamedChild(i)
		if c.Type() != "type_parameter" {
			continue
		}
		if id := c.ChildByFieldName("name"); id != nil {
			out = append(out, b.text(id))
		} else if id := lastOfType(c, "identifier"); id != nil {
			out = append(out, b.text(id))
		}
	}
	return out
}

func (b *binder) attributes(n *sitter.Node) []string {
	var out []string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if list := n.NamedChild(i); list.Type() == "attribute_list" {
			out = append(out, b.attributesOf(list)...)
		}
	}
	return out
}

func (b *binder) baseEntries(n *sitter.Node) []string {
	list := childOfType(n, "base_list")
	if list == nil {
		return nil
	}
	var out []string
	for i := 0; i < int(list.NamedChildCount()); i++ {
		c := list.NamedChild(i)
		switch c.Type() {
		case "argument_list", "comment":
			continue
		case "primary_constructor_base_type":
			if c.NamedChildCount() > 0 {
				c = c.NamedChild(0)
			}
		}
		out = append(out, b.text(c))
	}
	return out
}

func (b *binder) bindBases(decl *treesitter.Declaration, sym *TypeSymbol) {
	entries := b.baseEntries(decl.Node)
	seen := make(map[string]bool)
	addInterface := func(name string) {
		if !seen[name] {
			seen[name] = true
			sym.Interfaces = append(sym.Interfaces, name)
		}
	}
	switch decl.Kind {
	case treesitter.DeclEnum, treesitter.DeclDelegate:
		return
	case treesitter.DeclClass, treesitter.DeclRecordClass:
		for i, e := range entries {
			if i == 0 && !b.isInterface(e) {
				if !rootTypes[e] {
					sym.BaseType = e
				}
				continue
			}
			addInterface(e)
		}
	default:
		for _, e := range entries {
			addInterface(e)
		}
	}
}

// isInterface classifies a base-list entry.
func (b *binder) isInterface(name string) bool {
	simple := simpleName(name)
	if b.localKinds == nil {
		b.localKinds = make(map[string]treesitter.DeclKind)
		for _, d := range b.tree.Declarations() {
			b.localKinds[d.Name()] = d.Kind
		}
	}
	if k, ok := b.localKinds[simple]; ok {
		return k == treesitter.DeclInterface
	}
	return interfaceName.MatchString(simple)
}

// simpleName strips namespace qualifiers and type arguments.
func simpleName(name string) string {
	if i := strings.IndexByte(name, '<'); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexAny(name, ".:"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSpace(name)
}

func (b *binder) enumMembers(n *sitter.Node, enumName string) []Member {
	body := treesitter.Body(n)
	if body == nil {
		return nil
	}
	var out []Member
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := body.NamedChild(i)
		if c.Type() != "enum_member_declaration" {
			continue
		}
		name := c.ChildByFieldName("name")
		if name == nil {
			name = childOfType(c, "identifier")
		}
		if name == nil {
			continue
		}
		cf := &ConstField{MemberInfo: MemberInfo{
			Name:       b.text(name),
			Type:       enumName,
			Visibility: Public,
			IsStatic:   true,
		}}
		if v := c.ChildByFieldName("value"); v != nil {
			cf.Value = b.text(v)
		} else if eq := childOfType(c, "equals_value_clause"); eq != nil && eq.NamedChildCount() > 0 {
			cf.Value = b.text(eq.NamedChild(int(eq.NamedChildCount()) - 1))
		}
		out = append(out, cf)
	}
	return out
}

func (b *binder) positionalProperties(n *sitter.Node) []Member {
	params := n.ChildByFieldName("parameters")
	if params == nil {
		params = childOfType(n, "parameter_list")
	}
	if params == nil {
		return nil
	}
	var out []Member
	for _, p := range b.parameters(params) {
		out = append(out, &Property{MemberInfo: MemberInfo{
			Name:       p.Name,
			Type:       p.Type,
			Visibility: Public,
		}})
	}
	return out
}

func (b *binder) members(body *sitter.Node, owner *TypeSymbol, def Visibility) []Member {
	var out []Member
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := body.NamedChild(i)
		mods := treesitter.Modifiers(b.tree, c)
		info := MemberInfo{
			Visibility: visibilityFrom(mods, def),
			IsStatic:   hasModifier(mods, "static") || hasModifier(mods, "const"),
		}
		switch c.Type() {
		case "method_declaration":
			if m := b.method(c, owner, info, mods); m != nil {
				out = append(out, m)
			}
		case "property_declaration":
			info.Name = b.text(nameOf(c))
			info.Type = b.text(b.typeOf(c))
			out = append(out, &Property{MemberInfo: info})
		case "indexer_declaration":
			info.Name = "this[]"
			info.Type = b.text(b.typeOf(c))
			out = append(out, &Property{MemberInfo: info, IsIndexer: true})
		case "field_declaration":
			typ, names, values := b.variables(c)
			info.Type = typ
			for j, name := range names {
				info.Name = name
				if hasModifier(mods, "const") {
					out = append(out, &ConstField{MemberInfo: info, Value: values[j]})
				} else {
					out = append(out, &Field{MemberInfo: info, IsReadOnly: hasModifier(mods, "readonly")})
				}
			}
		case "event_field_declaration":
			typ, names, _ := b.variables(c)
			info.Type = typ
			for _, name := range names {
				info.Name = name
				out = append(out, &Event{MemberInfo: info})
			}
		case "event_declaration":
			if childOfType(c, "explicit_interface_specifier") != nil {
				continue
			}
			info.Name = b.text(nameOf(c))
			info.Type = b.text(b.typeOf(c))
			out = append(out, &Event{MemberInfo: info})
		}
	}
	return out
}

func (b *binder) method(n *sitter.Node, owner *TypeSymbol, info MemberInfo, mods []string) *Method {
	if childOfType(n, "explicit_interface_specifier") != nil {
		return nil
	}
	name := nameOf(n)
	if name == nil {
		return nil
	}
	info.Name = b.text(name)
	m := &Method{
		MemberInfo:     info,
		IsAsync:        hasModifier(mods, "async"),
		IsAbstract:     hasModifier(mods, "abstract"),
		TypeParameters: b.typeParameters(n),
		ContainingType: owner.Name,
	}
	if owner.Kind == treesitter.DeclInterface && !hasBody(n) && !m.IsStatic {
		m.IsAbstract = true
	}
	if ret := n.ChildByFieldName("returns"); ret != nil {
		m.ReturnType = b.text(ret)
	} else if ret := b.typeOf(n); ret != nil {
		m.ReturnType = b.text(ret)
	}
	m.Type = m.ReturnType
	params := n.ChildByFieldName("parameters")
	if params == nil {
		params = childOfType(n, "parameter_list")
	}
	if params != nil {
		m.Parameters = b.parameters(params)
	}
	return m
}

func hasBody(n *sitter.Node) bool {
	if n.ChildByFieldName("body") != nil {
		return true
	}
	return childOfType(n, "block") != nil || childOfType(n, "arrow_expression_clause") != nil
}

// typeOf returns the declared type of a member: the "type" field, or the
// named child right before the member's name.
func (b *binder) typeOf(n *sitter.Node) *sitter.Node {
	if t := n.ChildByFieldName("type"); t != nil {
		return t
	}
	name := nameOf(n)
	var last *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if name != nil && c.StartByte() >= name.StartByte() {
			break
		}
		switch c.Type() {
		case "attribute_list", "modifier", "explicit_interface_specifier", "comment":
			continue
		}
		last = c
	}
	return last
}

// variables returns the type, names and initializer texts declared by a
// field or field-like event declaration.
func (b *binder) variables(n *sitter.Node) (typ string, names, values []string) {
	decl := childOfType(n, "variable_declaration")
	if decl == nil {
		return "", nil, nil
	}
	typ = b.text(b.typeOf(decl))
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		v := decl.NamedChild(i)
		if v.Type() != "variable_declarator" {
			continue
		}
		name := nameOf(v)
		if name == nil {
			continue
		}
		names = append(names, b.text(name))
		var value string
		if eq := childOfType(v, "equals_value_clause"); eq != nil && eq.NamedChildCount() > 0 {
			value = b.text(eq.NamedChild(int(eq.NamedChildCount()) - 1))
		} else if v.NamedChildCount() > 1 {
			// Newer grammars put the initializer directly on the declarator.
			value = b.text(v.NamedChild(int(v.NamedChildCount()) - 1))
		}
		values = append(values, value)
	}
	return typ, names, values
}

func nameOf(n *sitter.Node) *sitter.Node {
	if name := n.ChildByFieldName("name"); name != nil {
		return name
	}
	return childOfType(n, "identifier")
}

func childOfType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == typ {
			return c
		}
	}
	return nil
}

func lastOfType(n *sitter.Node, typ string) *sitter.Node {
	var last *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == typ {
			last = c
		}
	}
	return last
}
