package compiler

import (
	"fmt"
	"unicode"

	"github.com/jward/groovyls/internal/ast"
	"github.com/jward/groovyls/internal/ranges"
	"github.com/jward/groovyls/internal/render"
	"github.com/jward/groovyls/internal/store"
)

// extractModule writes the declarations of mod and the class names it
// mentions into ds. It runs on converted trees, before semantic analysis,
// so type names are the written ones.
func extractModule(ds store.DataStore, fileID int64, mod *ast.ModuleNode) error {
	if mod == nil {
		return nil
	}
	for _, cls := range mod.Classes {
		if err := extractClass(ds, fileID, cls, nil); err != nil {
			return err
		}
	}
	for _, name := range referencedNames(mod) {
		if _, err := ds.InsertTypeReference(&store.TypeReference{FileID: fileID, Name: name}); err != nil {
			return fmt.Errorf("insert type reference %s: %w", name, err)
		}
	}
	return nil
}

func extractClass(ds store.DataStore, fileID int64, cls *ast.ClassNode, parent *int64) error {
	if cls.Synthetic {
		return nil
	}
	kind := classKind(cls)
	mods := modifierNames(cls.Modifiers)
	vis := visibilityName(cls.Modifiers)

	var supertypes []string
	if cls.SuperClass != nil {
		supertypes = append(supertypes, cls.SuperClass.Name)
	}
	for _, ref := range cls.Interfaces {
		supertypes = append(supertypes, ref.Name)
	}

	var members []*store.TypeMember
	for _, p := range cls.Properties {
		members = append(members, &store.TypeMember{Name: p.Name, Kind: store.KindProperty, TypeExpr: render.Variable(p, nil), Visibility: "public"})
	}
	for _, f := range cls.Fields {
		members = append(members, &store.TypeMember{Name: f.Name, Kind: store.KindField, TypeExpr: render.Variable(f, nil), Visibility: visibilityName(f.Modifiers)})
	}
	for _, c := range cls.Constructors {
		members = append(members, &store.TypeMember{Name: c.MemberName(), Kind: store.KindConstructor, TypeExpr: render.Method(c), Visibility: visibilityName(c.Modifiers)})
	}
	for _, m := range cls.Methods {
		if m.Synthetic {
			continue
		}
		members = append(members, &store.TypeMember{Name: m.Name, Kind: store.KindMethod, TypeExpr: render.Method(m), Visibility: visibilityName(m.Modifiers)})
	}
	for _, in := range cls.Inner {
		members = append(members, &store.TypeMember{Name: in.Name, Kind: classKind(in), TypeExpr: render.Class(in)})
	}

	sym := newSymbol(fileID, cls.Pos(), parent)
	sym.Name = cls.Name
	sym.FQN = cls.FullName()
	sym.Kind = kind
	sym.Visibility = vis
	sym.Modifiers = mods
	sym.Detail = render.Class(cls)
	sym.SignatureHash = store.ComputeSignatureHash(sym.FQN, kind, vis, mods, supertypes, members)
	id, err := ds.InsertSymbol(sym)
	if err != nil {
		return fmt.Errorf("insert class %s: %w", sym.FQN, err)
	}

	insert := func(name, kind string, sp ast.Span, m ast.Modifiers, detail string) error {
		s := newSymbol(fileID, sp, &id)
		s.Name = name
		s.FQN = cls.FullName() + "." + name
		s.Kind = kind
		s.Visibility = visibilityName(m)
		s.Modifiers = modifierNames(m)
		s.Detail = detail
		if _, err := ds.InsertSymbol(s); err != nil {
			return fmt.Errorf("insert %s %s: %w", kind, s.FQN, err)
		}
		return nil
	}
	for _, p := range cls.Properties {
		if err := insert(p.Name, store.KindProperty, p.Pos(), p.Modifiers, render.Variable(p, nil)); err != nil {
			return err
		}
	}
	for _, f := range cls.Fields {
		if err := insert(f.Name, store.KindField, f.Pos(), f.Modifiers, render.Variable(f, nil)); err != nil {
			return err
		}
	}
	for _, c := range cls.Constructors {
		if err := insert(c.MemberName(), store.KindConstructor, c.Pos(), c.Modifiers, render.Method(c)); err != nil {
			return err
		}
	}
	for _, m := range cls.Methods {
		if m.Synthetic || m.ScriptBody {
			continue
		}
		if err := insert(m.Name, store.KindMethod, m.Pos(), m.Modifiers, render.Method(m)); err != nil {
			return err
		}
	}
	for _, in := range cls.Inner {
		if err := extractClass(ds, fileID, in, &id); err != nil {
			return err
		}
	}
	return nil
}

func newSymbol(fileID int64, sp ast.Span, parent *int64) *store.Symbol {
	sym := &store.Symbol{FileID: &fileID, ParentSymbolID: parent}
	r, ok := ranges.FromSpan(sp)
	if !ok {
		sym.StartLine, sym.StartCol, sym.EndLine, sym.EndCol = -1, -1, -1, -1
		return sym
	}
	sym.StartLine, sym.StartCol = r.Start.Line, r.Start.Character
	sym.EndLine, sym.EndCol = r.End.Line, r.End.Character
	return sym
}

func classKind(cls *ast.ClassNode) string {
	switch cls.ClassKind {
	case ast.ClassKindInterface:
		return store.KindInterface
	case ast.ClassKindEnum:
		return store.KindEnum
	case ast.ClassKindTrait:
		return store.KindTrait
	case ast.ClassKindAnnotation:
		return store.KindAnnotation
	}
	return store.KindClass
}

func visibilityName(m ast.Modifiers) string {
	switch {
	case m.Has(ast.ModPrivate):
		return "private"
	case m.Has(ast.ModProtected):
		return "protected"
	}
	return "public"
}

var modifierOrder = []struct {
	mod  ast.Modifiers
	name string
}{
	{ast.ModStatic, "static"},
	{ast.ModFinal, "final"},
	{ast.ModAbstract, "abstract"},
	{ast.ModSynchronized, "synchronized"},
	{ast.ModTransient, "transient"},
	{ast.ModVolatile, "volatile"},
	{ast.ModNative, "native"},
	{ast.ModDefault, "default"},
	{ast.ModStrictfp, "strictfp"},
}

func modifierNames(m ast.Modifiers) []string {
	var out []string
	for _, mo := range modifierOrder {
		if m.Has(mo.mod) {
			out = append(out, mo.name)
		}
	}
	return out
}

// referencedNames returns the class simple names a module mentions: written
// type references, imports and capitalized bare names, which before analysis
// are how `Foo.bar()` and `Foo.BAR` appear.
func referencedNames(mod *ast.ModuleNode) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}
	for _, imp := range mod.Imports {
		if imp.Type != nil {
			add(imp.Type.SimpleName())
		}
	}
	ast.Walk(mod, func(n, _ ast.Node) bool {
		switch n := n.(type) {
		case *ast.TypeRef:
			if !ast.IsPrimitive(n.Name) {
				add(n.SimpleName())
			}
		case *ast.ClassExpression:
			if n.Type != nil {
				add(n.Type.SimpleName())
			}
		case *ast.VariableExpression:
			if r := []rune(n.Name); len(r) > 0 && unicode.IsUpper(r[0]) {
				add(n.Name)
			}
		}
		return true
	})
	return out
}
