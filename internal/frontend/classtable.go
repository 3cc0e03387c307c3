package frontend

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/jward/groovyls/internal/ast"
)

const objectClass = "java.lang.Object"

var primitiveNames = []string{"boolean", "byte", "char", "short", "int", "long", "float", "double", "void"}

// Externals is the immutable set of classes outside the workspace: the
// embedded catalog, primitive types and classpath stubs. It is shared by
// every generation built with the same classpath.
type Externals struct {
	classes map[string]*ast.ClassNode
	jars    []string
}

// NewExternals loads the catalog and lists the classes of the given jars.
// Unreadable jars are logged and skipped.
func NewExternals(jars []string) (*Externals, error) {
	cat, err := defaultCatalog()
	if err != nil {
		return nil, err
	}
	e := &Externals{classes: make(map[string]*ast.ClassNode, len(cat)+len(primitiveNames)), jars: jars}
	for name, cls := range cat {
		e.classes[name] = cls
	}
	for _, name := range primitiveNames {
		e.classes[name] = &ast.ClassNode{Span: ast.NoSpan, Name: name, Modifiers: ast.ModPublic | ast.ModFinal, External: true}
	}
	for _, jar := range jars {
		classes, err := jarClasses(jar)
		if err != nil {
			slog.Warn("skipping jar", slog.String("jar", jar), slog.String("error", err.Error()))
			continue
		}
		for _, cls := range classes {
			if _, ok := e.classes[cls.FullName()]; !ok {
				e.classes[cls.FullName()] = cls
			}
		}
	}
	return e, nil
}

// Jars returns the jar files the externals were loaded from.
func (e *Externals) Jars() []string { return e.jars }

// Lookup returns the external class with the given binary name.
func (e *Externals) Lookup(fqn string) *ast.ClassNode { return e.classes[fqn] }

// Len returns the number of external classes.
func (e *Externals) Len() int { return len(e.classes) }

// ClassTable maps binary names to classes for one analysis generation.
// Workspace classes shadow external ones. A ClassTable is not modified after
// construction except for its array-class cache.
type ClassTable struct {
	ext       *Externals
	workspace map[string]*ast.ClassNode
	owners    map[string]string

	mu     sync.Mutex
	arrays map[string]*ast.ClassNode
}

// NewClassTable indexes the classes of modules. When two modules declare the
// same class, the module whose URI sorts first owns it.
func NewClassTable(ext *Externals, modules []*ast.ModuleNode) *ClassTable {
	t := &ClassTable{
		ext:       ext,
		workspace: make(map[string]*ast.ClassNode),
		owners:    make(map[string]string),
		arrays:    make(map[string]*ast.ClassNode),
	}
	sorted := make([]*ast.ModuleNode, 0, len(modules))
	for _, m := range modules {
		if m != nil {
			sorted = append(sorted, m)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].URI < sorted[j].URI })
	for _, m := range sorted {
		for _, cls := range m.AllClasses() {
			name := cls.FullName()
			if _, dup := t.workspace[name]; dup {
				continue
			}
			t.workspace[name] = cls
			t.owners[name] = m.URI
		}
	}
	return t
}

// Externals returns the external class set of the table.
func (t *ClassTable) Externals() *Externals { return t.ext }

// Owner returns the URI of the module that owns the workspace class fqn.
func (t *ClassTable) Owner(fqn string) (string, bool) {
	uri, ok := t.owners[fqn]
	return uri, ok
}

// Lookup returns the class with the given binary name. Names ending in "[]"
// denote array classes.
func (t *ClassTable) Lookup(fqn string) *ast.ClassNode {
	if strings.HasSuffix(fqn, "[]") {
		comp := t.Lookup(strings.TrimSuffix(fqn, "[]"))
		if comp == nil {
			return nil
		}
		return t.ArrayOf(comp)
	}
	if cls, ok := t.workspace[fqn]; ok {
		return cls
	}
	if t.ext == nil {
		return nil
	}
	return t.ext.Lookup(fqn)
}

// Workspace returns the workspace class named fqn, or nil.
func (t *ClassTable) Workspace(fqn string) *ast.ClassNode {
	return t.workspace[fqn]
}

// ClassOf returns the class a type reference denotes, or nil.
func (t *ClassTable) ClassOf(ref *ast.TypeRef) *ast.ClassNode {
	if ref == nil || ref.Resolved == "" {
		return nil
	}
	cls := t.Lookup(ref.Resolved)
	for i := 0; cls != nil && i < ref.Dims; i++ {
		cls = t.ArrayOf(cls)
	}
	return cls
}

// ArrayOf returns the array class with component comp. Array classes are
// created on demand and cached.
func (t *ClassTable) ArrayOf(comp *ast.ClassNode) *ast.ClassNode {
	key := comp.FullName()
	t.mu.Lock()
	defer t.mu.Unlock()
	if arr, ok := t.arrays[key]; ok && arr.Component == comp {
		return arr
	}
	arr := &ast.ClassNode{
		Span:       ast.NoSpan,
		Name:       comp.Name + "[]",
		Package:    comp.Package,
		Modifiers:  ast.ModPublic | ast.ModFinal,
		External:   comp.External,
		Synthetic:  true,
		Component:  comp,
		Outer:      comp.Outer,
		SuperClass: &ast.TypeRef{Span: ast.NoSpan, Name: objectClass, Resolved: objectClass},
	}
	arr.Fields = []*ast.FieldNode{{
		Span:      ast.NoSpan,
		Name:      "length",
		Modifiers: ast.ModPublic | ast.ModFinal,
		Type:      &ast.TypeRef{Span: ast.NoSpan, Name: "int", Resolved: "int"},
		Owner:     arr,
	}}
	t.arrays[key] = arr
	return arr
}

// WorkspaceClasses returns the workspace classes sorted by binary name.
func (t *ClassTable) WorkspaceClasses() []*ast.ClassNode {
	out := make([]*ast.ClassNode, 0, len(t.workspace))
	for _, cls := range t.workspace {
		out = append(out, cls)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName() < out[j].FullName() })
	return out
}

// AllClasses returns workspace and external reference classes (no primitives)
// sorted by binary name, workspace classes shadowing externals.
func (t *ClassTable) AllClasses() []*ast.ClassNode {
	out := t.WorkspaceClasses()
	if t.ext != nil {
		for name, cls := range t.ext.classes {
			if cls.Package == "" && ast.IsPrimitive(cls.Name) {
				continue
			}
			if _, shadowed := t.workspace[name]; !shadowed {
				out = append(out, cls)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName() < out[j].FullName() })
	return out
}

// SuperClass returns the direct superclass of cls. Classes without an
// explicit superclass extend java.lang.Object.
func (t *ClassTable) SuperClass(cls *ast.ClassNode) *ast.ClassNode {
	if cls == nil || cls.IsInterface() || cls.FullName() == objectClass {
		return nil
	}
	if cls.Package == "" && ast.IsPrimitive(cls.Name) {
		return nil
	}
	if cls.SuperClass != nil {
		if sup := t.ClassOf(cls.SuperClass); sup != nil && sup != cls {
			return sup
		}
	}
	return t.Lookup(objectClass)
}

// Supertypes returns every proper supertype of cls: the superclass chain
// first, then interfaces in breadth-first order. Interfaces end with
// java.lang.Object so that its methods are visible on them.
func (t *ClassTable) Supertypes(cls *ast.ClassNode) []*ast.ClassNode {
	if cls == nil {
		return nil
	}
	seen := map[*ast.ClassNode]bool{cls: true}
	var out []*ast.ClassNode
	var queue []*ast.ClassNode
	for c := cls; c != nil; c = t.SuperClass(c) {
		if c != cls {
			if seen[c] {
				break
			}
			seen[c] = true
			out = append(out, c)
		}
		queue = append(queue, c)
	}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, ref := range c.Interfaces {
			i := t.ClassOf(ref)
			if i == nil || seen[i] {
				continue
			}
			seen[i] = true
			out = append(out, i)
			queue = append(queue, i)
		}
	}
	if cls.IsInterface() {
		if obj := t.Lookup(objectClass); obj != nil && !seen[obj] {
			out = append(out, obj)
		}
	}
	return out
}

// IsSubtype reports whether sub equals sup or extends or implements it.
// Every reference type is a subtype of java.lang.Object.
func (t *ClassTable) IsSubtype(sub, sup *ast.ClassNode) bool {
	if sub == nil || sup == nil {
		return false
	}
	if sub == sup || sub.FullName() == sup.FullName() {
		return true
	}
	if sub.Package == "" && ast.IsPrimitive(sub.Name) {
		return false
	}
	if sup.FullName() == objectClass {
		return true
	}
	for _, s := range t.Supertypes(sub) {
		if s == sup || s.FullName() == sup.FullName() {
			return true
		}
	}
	return false
}

// Methods returns the methods named name visible on cls: its own first, then
// those of its supertypes.
func (t *ClassTable) Methods(cls *ast.ClassNode, name string) []*ast.MethodNode {
	if cls == nil {
		return nil
	}
	out := cls.MethodsNamed(name)
	for _, s := range t.Supertypes(cls) {
		out = append(out, s.MethodsNamed(name)...)
	}
	return out
}

// AllMethods returns every method visible on cls in the same order as Methods.
func (t *ClassTable) AllMethods(cls *ast.ClassNode) []*ast.MethodNode {
	if cls == nil {
		return nil
	}
	out := append([]*ast.MethodNode(nil), cls.Methods...)
	for _, s := range t.Supertypes(cls) {
		out = append(out, s.Methods...)
	}
	return out
}

// Field returns the first field named name on cls or a supertype.
func (t *ClassTable) Field(cls *ast.ClassNode, name string) *ast.FieldNode {
	if cls == nil {
		return nil
	}
	if f := cls.Field(name); f != nil {
		return f
	}
	for _, s := range t.Supertypes(cls) {
		if f := s.Field(name); f != nil {
			return f
		}
	}
	return nil
}

// Property returns the first property named name on cls or a supertype.
func (t *ClassTable) Property(cls *ast.ClassNode, name string) *ast.PropertyNode {
	if cls == nil {
		return nil
	}
	if p := cls.Property(name); p != nil {
		return p
	}
	for _, s := range t.Supertypes(cls) {
		if p := s.Property(name); p != nil {
			return p
		}
	}
	return nil
}

// AllFields returns the fields visible on cls, own first.
func (t *ClassTable) AllFields(cls *ast.ClassNode) []*ast.FieldNode {
	if cls == nil {
		return nil
	}
	out := append([]*ast.FieldNode(nil), cls.Fields...)
	for _, s := range t.Supertypes(cls) {
		out = append(out, s.Fields...)
	}
	return out
}

// AllProperties returns the properties visible on cls, own first.
func (t *ClassTable) AllProperties(cls *ast.ClassNode) []*ast.PropertyNode {
	if cls == nil {
		return nil
	}
	out := append([]*ast.PropertyNode(nil), cls.Properties...)
	for _, s := range t.Supertypes(cls) {
		out = append(out, s.Properties...)
	}
	return out
}
