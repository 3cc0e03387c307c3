package ast

import "strings"

// ModuleNode is the root of one source file.
type ModuleNode struct {
	Span
	URI     string
	Package string
	Imports []*ImportNode
	// Classes lists top-level classes in declaration order. A script's
	// synthetic class, when present, is included.
	Classes []*ClassNode
	// Script is the class holding top-level statements, or nil.
	Script *ClassNode
}

// AllClasses returns every class of the module, nested classes after their
// outer class.
func (m *ModuleNode) AllClasses() []*ClassNode {
	var out []*ClassNode
	var add func(c *ClassNode)
	add = func(c *ClassNode) {
		out = append(out, c)
		for _, in := range c.Inner {
			add(in)
		}
	}
	for _, c := range m.Classes {
		add(c)
	}
	return out
}

// ImportNode is a single import declaration.
type ImportNode struct {
	Span
	// Type is the imported class for single-type imports, nil for star imports.
	Type *TypeRef
	// Package holds the package prefix of a star import, e.g. "java.util".
	Package string
	Alias   string
	Member  string
	Static  bool
	Star    bool
}

// ClassKind distinguishes class-like declarations.
type ClassKind int

const (
	ClassKindClass ClassKind = iota
	ClassKindInterface
	ClassKindEnum
	ClassKindTrait
	ClassKindAnnotation
)

// ClassNode declares a class, interface, enum, trait or annotation type.
// External classes (JDK catalog, classpath) have no position and External set.
type ClassNode struct {
	Span
	Name         string
	Package      string
	Modifiers    Modifiers
	ClassKind    ClassKind
	// TypeParameters names the declared generic parameters.
	TypeParameters []string
	SuperClass   *TypeRef
	Interfaces   []*TypeRef
	Properties   []*PropertyNode
	Fields       []*FieldNode
	Constructors []*ConstructorNode
	Initializers []*BlockStatement
	Methods      []*MethodNode
	Inner        []*ClassNode
	Outer        *ClassNode
	Script       bool
	External     bool
	Synthetic    bool
	Doc          string
	// Component is set for array classes and names the element class.
	Component *ClassNode
}

// FullName returns the binary name: package, outer classes joined with '$'.
func (c *ClassNode) FullName() string {
	name := c.NameWithoutPackage()
	if c.Package == "" {
		return name
	}
	return c.Package + "." + name
}

// NameWithoutPackage returns the class name including outer classes.
func (c *ClassNode) NameWithoutPackage() string {
	if c.Outer != nil {
		return c.Outer.NameWithoutPackage() + "$" + c.Name
	}
	return c.Name
}

func (c *ClassNode) IsInterface() bool {
	return c.ClassKind == ClassKindInterface || c.ClassKind == ClassKindTrait || c.ClassKind == ClassKindAnnotation
}

func (c *ClassNode) IsEnum() bool     { return c.ClassKind == ClassKindEnum }
func (c *ClassNode) IsAbstract() bool { return c.Modifiers.Has(ModAbstract) }
func (c *ClassNode) IsArray() bool    { return c.Component != nil }
func (c *ClassNode) Groovydoc() string {
	return c.Doc
}

// MethodsNamed returns the declared methods with the given name.
func (c *ClassNode) MethodsNamed(name string) []*MethodNode {
	var out []*MethodNode
	for _, m := range c.Methods {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}

// Field returns the declared field with the given name.
func (c *ClassNode) Field(name string) *FieldNode {
	for _, f := range c.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Property returns the declared property with the given name.
func (c *ClassNode) Property(name string) *PropertyNode {
	for _, p := range c.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Member is the common view of methods and constructors.
type Member interface {
	Node
	Documented
	MemberName() string
	Params() []*Parameter
	DeclaringClass() *ClassNode
	Mods() Modifiers
}

// MethodNode declares a method. Script bodies are positionless methods named
// "run" on the script class.
type MethodNode struct {
	Span
	Name       string
	Modifiers  Modifiers
	ReturnType *TypeRef
	Parameters []*Parameter
	Code       *BlockStatement
	Owner      *ClassNode
	Synthetic  bool
	// TypeParameters names the declared generic parameters.
	TypeParameters []string
	ScriptBody bool
	Doc        string
}

func (m *MethodNode) MemberName() string         { return m.Name }
func (m *MethodNode) Params() []*Parameter       { return m.Parameters }
func (m *MethodNode) DeclaringClass() *ClassNode { return m.Owner }
func (m *MethodNode) Mods() Modifiers            { return m.Modifiers }
func (m *MethodNode) Groovydoc() string          { return m.Doc }
func (m *MethodNode) IsStatic() bool             { return m.Modifiers.Has(ModStatic) }

// ConstructorNode declares a constructor.
type ConstructorNode struct {
	Span
	Modifiers  Modifiers
	Parameters []*Parameter
	Code       *BlockStatement
	Owner      *ClassNode
	Doc        string
}

func (c *ConstructorNode) MemberName() string {
	if c.Owner == nil {
		return "<init>"
	}
	return c.Owner.Name
}
func (c *ConstructorNode) Params() []*Parameter       { return c.Parameters }
func (c *ConstructorNode) DeclaringClass() *ClassNode { return c.Owner }
func (c *ConstructorNode) Mods() Modifiers            { return c.Modifiers }
func (c *ConstructorNode) Groovydoc() string          { return c.Doc }

// FieldNode declares a field. Enum constants are public static final fields.
type FieldNode struct {
	Span
	Name         string
	Modifiers    Modifiers
	Type         *TypeRef
	Initial      Expression
	Owner        *ClassNode
	EnumConstant bool
	Doc          string
}

func (f *FieldNode) VariableName() string   { return f.Name }
func (f *FieldNode) DeclaredType() *TypeRef { return f.Type }
func (f *FieldNode) Groovydoc() string      { return f.Doc }
func (f *FieldNode) IsStatic() bool         { return f.Modifiers.Has(ModStatic) }

// PropertyNode declares a Groovy property: a member without explicit
// visibility.
type PropertyNode struct {
	Span
	Name      string
	Modifiers Modifiers
	Type      *TypeRef
	Initial   Expression
	Owner     *ClassNode
	Doc       string
}

func (p *PropertyNode) VariableName() string   { return p.Name }
func (p *PropertyNode) DeclaredType() *TypeRef { return p.Type }
func (p *PropertyNode) Groovydoc() string      { return p.Doc }
func (p *PropertyNode) IsStatic() bool         { return p.Modifiers.Has(ModStatic) }

// Parameter is a method, constructor, closure, catch or for-in parameter.
type Parameter struct {
	Span
	Name    string
	Type    *TypeRef
	Default Expression
	VarArgs bool
}

func (p *Parameter) VariableName() string   { return p.Name }
func (p *Parameter) DeclaredType() *TypeRef { return p.Type }

// TypeRef is an occurrence of a type name in source.
type TypeRef struct {
	Span
	// Name is the name as written, possibly qualified.
	Name string
	Args []*TypeRef
	Dims int
	// Resolved is the binary name after semantic analysis, empty when the
	// name could not be resolved.
	Resolved string
}

// SimpleName returns the last segment of the written name.
func (t *TypeRef) SimpleName() string {
	name := t.Name
	if i := strings.LastIndexAny(name, ".$"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// ResolvedOrName returns the resolved binary name, or the written name.
func (t *TypeRef) ResolvedOrName() string {
	if t.Resolved != "" {
		return t.Resolved
	}
	return t.Name
}

// IsPrimitive reports whether name denotes a primitive type (or void).
func IsPrimitive(name string) bool {
	switch name {
	case "boolean", "byte", "char", "short", "int", "long", "float", "double", "void":
		return true
	}
	return false
}
