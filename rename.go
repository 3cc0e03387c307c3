package groovyls

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jward/groovyls/internal/ast"
	"github.com/jward/groovyls/internal/compiler"
	"github.com/jward/groovyls/internal/ranges"
)

// ErrInvalidName is returned by Rename for a new name that is not an
// identifier.
var ErrInvalidName = errors.New("groovyls: invalid identifier")

var identifier = regexp.MustCompile(`^[\p{L}_$][\p{L}\p{N}_$]*$`)

// Rename renames the declaration the node at pos refers to, and every
// reference to it. References whose text no longer contains the old name
// are skipped. Renaming a class also renames its constructors and the file
// of a top-level class named like its file.
func (s *Session) Rename(ctx context.Context, uri string, pos Position, newName string) (*WorkspaceEdit, error) {
	if !identifier.MatchString(newName) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, newName)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g, n, err := s.nodeAt(ctx, uri, pos)
	if err != nil || n == nil {
		return nil, err
	}
	r := g.Resolver
	def := r.Definition(n, true)
	if ctor, ok := def.(*ast.ConstructorNode); ok && ctor.Owner != nil {
		def = r.Definition(ctor.Owner, true)
	}
	if def == nil {
		return nil, nil
	}
	oldName := declaredName(def)
	if oldName == "" {
		return nil, nil
	}

	refs := r.References(def)
	if cls, ok := def.(*ast.ClassNode); ok {
		for _, ctor := range cls.Constructors {
			refs = append(refs, r.References(ctor)...)
		}
	}

	edits := make(map[string]map[Range]bool)
	for _, ref := range refs {
		refURI, ok := g.Index.URIOf(ref)
		if !ok {
			continue
		}
		text, ok := s.text(g, refURI)
		if !ok {
			continue
		}
		rng, ok := nameRange(text, ref, oldName)
		if !ok {
			continue
		}
		if edits[refURI] == nil {
			edits[refURI] = make(map[Range]bool)
		}
		edits[refURI][rng] = true
	}

	out := &WorkspaceEdit{DocumentChanges: []DocumentChange{}}
	for _, u := range sortedKeys(edits) {
		doc := &TextDocumentEdit{URI: u}
		for _, rng := range sortedRanges(edits[u]) {
			doc.Edits = append(doc.Edits, TextEdit{Range: rng, NewText: newName})
		}
		out.DocumentChanges = append(out.DocumentChanges, DocumentChange{Edit: doc})
	}
	if cls, ok := def.(*ast.ClassNode); ok && g.Index.ParentOf(cls) == nil {
		if rf := renameFile(g, cls, newName); rf != nil {
			out.DocumentChanges = append(out.DocumentChanges, DocumentChange{Rename: rf})
		}
	}
	return out, nil
}

// declaredName returns the name a declaration is written with.
func declaredName(def ast.Node) string {
	switch d := def.(type) {
	case *ast.ClassNode:
		return d.Name
	case ast.Member:
		return d.MemberName()
	case ast.Variable:
		return d.VariableName()
	}
	return ""
}

// renameFile moves the file of a top-level class when the file is named
// after the class.
func renameFile(g *compiler.Graph, cls *ast.ClassNode, newName string) *RenameFile {
	uri, ok := g.Index.URIOf(cls)
	if !ok {
		return nil
	}
	slash := strings.LastIndex(uri, "/")
	dot := strings.LastIndex(uri, ".")
	if dot <= slash || uri[slash+1:dot] != cls.Name {
		return nil
	}
	return &RenameFile{OldURI: uri, NewURI: uri[:slash+1] + newName + uri[dot:]}
}

// nameRange locates name in the first line of n's text. The pattern depends
// on the kind of node: a declaration is searched after its keyword or type,
// a type reference by simple name, and a name expression covers its whole
// range.
func nameRange(text string, n ast.Node, name string) (Range, bool) {
	full, ok := ranges.FromSpan(n.Pos())
	if !ok {
		return Range{}, false
	}
	quoted := regexp.QuoteMeta(name)
	var pattern string
	from := 0
	switch n := n.(type) {
	case *ast.ConstantExpression, *ast.VariableExpression:
		return full, true
	case *ast.ClassNode:
		pattern = `\b(?:class|interface|enum|trait)\s+(` + quoted + `)\b`
	case *ast.MethodNode, *ast.ConstructorNode:
		pattern = `\b(` + quoted + `)\b\s*\(`
	case *ast.PropertyNode:
		pattern = `\b(` + quoted + `)\b`
		from = afterType(text, full, n.Type)
	case *ast.FieldNode:
		pattern = `\b(` + quoted + `)\b`
		from = afterType(text, full, n.Type)
	case *ast.Parameter:
		pattern = `\b(` + quoted + `)\b`
		from = afterType(text, full, n.Type)
	case *ast.TypeRef, *ast.ConstructorCallExpression, *ast.ClassExpression, *ast.ImportNode, *ast.DeclarationExpression:
		pattern = `\b(` + regexp.QuoteMeta(simpleName(name)) + `)\b`
	default:
		return Range{}, false
	}
	line, ok := ranges.Substring(text, full, 1)
	if !ok || from > len(line) {
		return Range{}, false
	}
	m := regexp.MustCompile(pattern).FindStringSubmatchIndex(line[from:])
	if m == nil {
		return Range{}, false
	}
	start, end := from+m[2], from+m[3]
	prefix := ranges.UTF16Len(line[:start])
	width := ranges.UTF16Len(line[start:end])
	at := Position{Line: full.Start.Line, Character: full.Start.Character + prefix}
	return Range{Start: at, End: Position{Line: at.Line, Character: at.Character + width}}, true
}

// afterType returns the byte offset, within the first line of full, just past
// the written type of a declaration, or 0 when the type is not on that line.
func afterType(text string, full Range, ref *ast.TypeRef) int {
	if ref == nil {
		return 0
	}
	tr, ok := ranges.FromSpan(ref.Pos())
	if !ok || tr.End.Line != full.Start.Line || ranges.Compare(tr.Start, full.Start) < 0 {
		return 0
	}
	head, ok := ranges.Substring(text, Range{Start: full.Start, End: tr.End}, 1)
	if !ok {
		return 0
	}
	return len(head)
}

func simpleName(name string) string {
	if i := strings.LastIndexAny(name, ".$"); i >= 0 {
		return name[i+1:]
	}
	return name
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedRanges(set map[Range]bool) []Range {
	out := make([]Range, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return ranges.Compare(out[i].Start, out[j].Start) < 0 })
	return out
}
