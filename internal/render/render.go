// Package render formats declarations as the one-line signatures shown in
// hovers, completion details and signature help.
package render

import (
	"strings"

	"github.com/jward/groovyls/internal/ast"
)

const objectClass = "java.lang.Object"

// TypeName returns the display name of a type reference: the simple name with
// type arguments and array brackets. A missing type is Object.
func TypeName(ref *ast.TypeRef) string {
	if ref == nil {
		return "Object"
	}
	name := simpleName(ref.ResolvedOrName())
	var b strings.Builder
	b.WriteString(name)
	if len(ref.Args) > 0 {
		b.WriteByte('<')
		for i, a := range ref.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(TypeName(a))
		}
		b.WriteByte('>')
	}
	for i := 0; i < ref.Dims; i++ {
		b.WriteString("[]")
	}
	return b.String()
}

func simpleName(fqn string) string {
	if i := strings.LastIndexAny(fqn, ".$"); i >= 0 {
		return fqn[i+1:]
	}
	return fqn
}

// Class renders a class header such as "abstract class a.B extends C".
func Class(cls *ast.ClassNode) string {
	var b strings.Builder
	if cls.IsAbstract() && !cls.IsInterface() {
		b.WriteString("abstract ")
	}
	switch cls.ClassKind {
	case ast.ClassKindInterface:
		b.WriteString("interface ")
	case ast.ClassKindEnum:
		b.WriteString("enum ")
	case ast.ClassKindTrait:
		b.WriteString("trait ")
	case ast.ClassKindAnnotation:
		b.WriteString("@interface ")
	default:
		b.WriteString("class ")
	}
	b.WriteString(cls.FullName())
	if sup := cls.SuperClass; sup != nil && sup.ResolvedOrName() != objectClass {
		b.WriteString(" extends ")
		b.WriteString(TypeName(sup))
	}
	if len(cls.Interfaces) > 0 {
		if cls.IsInterface() {
			b.WriteString(" extends ")
		} else {
			b.WriteString(" implements ")
		}
		for i, ref := range cls.Interfaces {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(TypeName(ref))
		}
	}
	return b.String()
}

func visibility(b *strings.Builder, m ast.Modifiers) {
	switch {
	case m.Has(ast.ModProtected):
		b.WriteString("protected ")
	case m.Has(ast.ModPrivate):
		b.WriteString("private ")
	}
}

// Method renders a method or constructor signature. Public visibility is the
// default and is not shown.
func Method(m ast.Member) string {
	var b strings.Builder
	switch m := m.(type) {
	case *ast.ConstructorNode:
		visibility(&b, m.Modifiers)
		b.WriteString(m.MemberName())
	case *ast.MethodNode:
		visibility(&b, m.Modifiers)
		if m.IsStatic() {
			b.WriteString("static ")
		}
		if m.Modifiers.Has(ast.ModFinal) {
			b.WriteString("final ")
		}
		b.WriteString(TypeName(m.ReturnType))
		b.WriteByte(' ')
		b.WriteString(m.Name)
	}
	b.WriteByte('(')
	b.WriteString(Parameters(m.Params()))
	b.WriteByte(')')
	return b.String()
}

// Parameters renders a comma-separated parameter list.
func Parameters(params []*ast.Parameter) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = Parameter(p)
	}
	return strings.Join(parts, ", ")
}

// Parameter renders one parameter, e.g. "String... names".
func Parameter(p *ast.Parameter) string {
	typ := TypeName(p.Type)
	if p.VarArgs && strings.HasSuffix(typ, "[]") {
		typ = strings.TrimSuffix(typ, "[]") + "..."
	}
	return typ + " " + p.Name
}

// Variable renders a field, property, parameter or local variable. typ
// overrides the declared type when non-nil, which lets callers show the
// inferred type of a dynamic local.
func Variable(v ast.Variable, typ *ast.ClassNode) string {
	var b strings.Builder
	if f, ok := v.(*ast.FieldNode); ok {
		switch {
		case f.Modifiers.Has(ast.ModPublic):
			b.WriteString("public ")
		case f.Modifiers.Has(ast.ModProtected):
			b.WriteString("protected ")
		case f.Modifiers.Has(ast.ModPrivate):
			b.WriteString("private ")
		}
		if f.Modifiers.Has(ast.ModFinal) {
			b.WriteString("final ")
		}
		if f.IsStatic() {
			b.WriteString("static ")
		}
	}
	if p, ok := v.(*ast.PropertyNode); ok && p.IsStatic() {
		b.WriteString("static ")
	}
	switch {
	case v.DeclaredType() != nil:
		b.WriteString(TypeName(v.DeclaredType()))
	case typ != nil:
		b.WriteString(simpleName(typ.FullName()))
	default:
		b.WriteString("Object")
	}
	b.WriteByte(' ')
	b.WriteString(v.VariableName())
	return b.String()
}

// Signature renders any declaration the hover can show, reporting false for
// nodes without a signature.
func Signature(n ast.Node, typ *ast.ClassNode) (string, bool) {
	switch n := n.(type) {
	case *ast.ClassNode:
		return Class(n), true
	case ast.Member:
		return Method(n), true
	case ast.Variable:
		return Variable(n, typ), true
	}
	return "", false
}

// Hover renders a markdown hover: the signature as a groovy code block,
// followed by the groovydoc when present.
func Hover(signature, doc string) string {
	var b strings.Builder
	b.WriteString("```groovy\n")
	b.WriteString(signature)
	b.WriteString("\n```")
	if md := Markdown(doc); md != "" {
		b.WriteString("\n\n---\n\n")
		b.WriteString(md)
	}
	return b.String()
}
