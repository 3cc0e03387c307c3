package frontend

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/jward/groovyls/internal/ast"
)

//go:embed jdk.yaml
var jdkCatalog []byte

// catalogFile is the on-disk shape of the embedded class catalog. Members are
// written as Java-style signatures: "static String valueOf(int i)".
type catalogFile struct {
	Classes []catalogClass `yaml:"classes"`
}

type catalogClass struct {
	Name           string   `yaml:"name"`
	Kind           string   `yaml:"kind"`
	Modifiers      []string `yaml:"modifiers"`
	Super          string   `yaml:"super"`
	Interfaces     []string `yaml:"interfaces"`
	TypeParameters []string `yaml:"typeParameters"`
	Fields         []string `yaml:"fields"`
	Constructors   []string `yaml:"constructors"`
	Methods        []string `yaml:"methods"`
	Doc            string   `yaml:"doc"`
}

var (
	catalogOnce    sync.Once
	catalogClasses map[string]*ast.ClassNode
	catalogErr     error
)

// defaultCatalog returns the parsed JDK and Groovy runtime catalog. The
// returned classes are shared and must not be modified.
func defaultCatalog() (map[string]*ast.ClassNode, error) {
	catalogOnce.Do(func() {
		catalogClasses, catalogErr = parseCatalog(jdkCatalog)
	})
	return catalogClasses, catalogErr
}

func parseCatalog(data []byte) (map[string]*ast.ClassNode, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("frontend: parse catalog: %w", err)
	}
	out := make(map[string]*ast.ClassNode, len(f.Classes))
	for _, cc := range f.Classes {
		cls, err := cc.build()
		if err != nil {
			return nil, fmt.Errorf("frontend: catalog class %s: %w", cc.Name, err)
		}
		out[cls.FullName()] = cls
	}
	return out, nil
}

func (cc catalogClass) build() (*ast.ClassNode, error) {
	pkg, name := splitQualified(cc.Name)
	cls := &ast.ClassNode{
		Span:           ast.NoSpan,
		Name:           name,
		Package:        pkg,
		Modifiers:      ast.ModPublic,
		TypeParameters: cc.TypeParameters,
		External:       true,
		Doc:            cc.Doc,
	}
	for _, m := range cc.Modifiers {
		cls.Modifiers |= ast.ModifierByKeyword[m]
	}
	switch cc.Kind {
	case "", "class":
	case "interface":
		cls.ClassKind = ast.ClassKindInterface
		cls.Modifiers |= ast.ModAbstract
	case "enum":
		cls.ClassKind = ast.ClassKindEnum
	case "annotation":
		cls.ClassKind = ast.ClassKindAnnotation
	default:
		return nil, fmt.Errorf("unknown kind %q", cc.Kind)
	}
	typeParams := make(map[string]bool)
	for _, tp := range cc.TypeParameters {
		typeParams[tp] = true
	}
	if cc.Super != "" {
		cls.SuperClass = catalogType(cc.Super, typeParams)
	}
	for _, i := range cc.Interfaces {
		cls.Interfaces = append(cls.Interfaces, catalogType(i, typeParams))
	}
	for _, sig := range cc.Fields {
		mods, rest := signatureModifiers(sig)
		parts := strings.Fields(rest)
		if len(parts) != 2 {
			return nil, fmt.Errorf("bad field %q", sig)
		}
		if cls.IsInterface() {
			mods |= ast.ModStatic | ast.ModFinal
		}
		cls.Fields = append(cls.Fields, &ast.FieldNode{
			Span:         ast.NoSpan,
			Name:         parts[1],
			Modifiers:    mods,
			Type:         catalogType(parts[0], typeParams),
			Owner:        cls,
			EnumConstant: cls.IsEnum() && strings.TrimSuffix(parts[0], "[]") == name,
		})
	}
	for _, sig := range cc.Constructors {
		mods, rest := signatureModifiers(sig)
		params, err := catalogParams(rest, typeParams)
		if err != nil {
			return nil, fmt.Errorf("bad constructor %q: %w", sig, err)
		}
		cls.Constructors = append(cls.Constructors, &ast.ConstructorNode{
			Span: ast.NoSpan, Modifiers: mods, Parameters: params, Owner: cls,
		})
	}
	for _, sig := range cc.Methods {
		m, err := catalogMethod(sig, cls, typeParams)
		if err != nil {
			return nil, err
		}
		cls.Methods = append(cls.Methods, m)
	}
	return cls, nil
}

func catalogMethod(sig string, cls *ast.ClassNode, classParams map[string]bool) (*ast.MethodNode, error) {
	mods, rest := signatureModifiers(sig)
	typeParams := classParams
	var declared []string
	if strings.HasPrefix(rest, "<") {
		end := strings.IndexByte(rest, '>')
		if end < 0 {
			return nil, fmt.Errorf("bad method %q", sig)
		}
		typeParams = make(map[string]bool, len(classParams))
		for k := range classParams {
			typeParams[k] = true
		}
		for _, tp := range strings.Split(rest[1:end], ",") {
			tp = strings.TrimSpace(tp)
			typeParams[tp] = true
			declared = append(declared, tp)
		}
		rest = strings.TrimSpace(rest[end+1:])
	}
	open := strings.IndexByte(rest, '(')
	if open < 0 {
		return nil, fmt.Errorf("bad method %q", sig)
	}
	head := strings.Fields(rest[:open])
	if len(head) != 2 {
		return nil, fmt.Errorf("bad method %q", sig)
	}
	params, err := catalogParams(rest[open:], typeParams)
	if err != nil {
		return nil, fmt.Errorf("bad method %q: %w", sig, err)
	}
	if cls.IsInterface() && !mods.Has(ast.ModStatic) && !mods.Has(ast.ModDefault) {
		mods |= ast.ModAbstract
	}
	return &ast.MethodNode{
		Span:           ast.NoSpan,
		Name:           head[1],
		Modifiers:      mods,
		ReturnType:     catalogType(head[0], typeParams),
		Parameters:     params,
		Owner:          cls,
		TypeParameters: declared,
	}, nil
}

// signatureModifiers splits leading modifier keywords from sig. Members are
// public unless another visibility is given.
func signatureModifiers(sig string) (ast.Modifiers, string) {
	var mods ast.Modifiers
	rest := strings.TrimSpace(sig)
	for {
		word, tail, _ := strings.Cut(rest, " ")
		m, ok := ast.ModifierByKeyword[word]
		if !ok || tail == "" {
			break
		}
		mods |= m
		rest = strings.TrimSpace(tail)
	}
	if mods&(ast.ModPrivate|ast.ModProtected) == 0 {
		mods |= ast.ModPublic
	}
	return mods, rest
}

func catalogParams(list string, typeParams map[string]bool) ([]*ast.Parameter, error) {
	list = strings.TrimSpace(list)
	if !strings.HasPrefix(list, "(") || !strings.HasSuffix(list, ")") {
		return nil, fmt.Errorf("expected parameter list")
	}
	list = strings.TrimSpace(list[1 : len(list)-1])
	if list == "" {
		return nil, nil
	}
	var params []*ast.Parameter
	for i, p := range strings.Split(list, ",") {
		parts := strings.Fields(p)
		name := fmt.Sprintf("arg%d", i)
		switch len(parts) {
		case 1:
		case 2:
			name = parts[1]
		default:
			return nil, fmt.Errorf("bad parameter %q", p)
		}
		typ := parts[0]
		varargs := strings.HasSuffix(typ, "...")
		if varargs {
			typ = strings.TrimSuffix(typ, "...") + "[]"
		}
		params = append(params, &ast.Parameter{
			Span: ast.NoSpan, Name: name, Type: catalogType(typ, typeParams), VarArgs: varargs,
		})
	}
	return params, nil
}

// catalogType builds a resolved type reference. Unqualified names other than
// primitives and type parameters live in java.lang.
func catalogType(name string, typeParams map[string]bool) *ast.TypeRef {
	dims := 0
	for strings.HasSuffix(name, "[]") {
		name = strings.TrimSuffix(name, "[]")
		dims++
	}
	t := &ast.TypeRef{Span: ast.NoSpan, Name: name, Dims: dims}
	switch {
	case ast.IsPrimitive(name):
		t.Resolved = name
	case typeParams[name]:
		t.Resolved = "java.lang.Object"
	case strings.Contains(name, "."):
		t.Resolved = name
	default:
		t.Resolved = "java.lang." + name
	}
	return t
}

func splitQualified(fqn string) (pkg, name string) {
	i := strings.LastIndexByte(fqn, '.')
	if i < 0 {
		return "", fqn
	}
	return fqn[:i], fqn[i+1:]
}
