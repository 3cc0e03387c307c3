package groovyls

import (
	"context"
	"sort"

	"github.com/jward/groovyls/internal/ranges"
)

// Definition returns the location of the declaration the node at pos refers
// to. Declarations outside the workspace have no location and give an empty
// result.
func (s *Session) Definition(ctx context.Context, uri string, pos Position) ([]Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, n, err := s.nodeAt(ctx, uri, pos)
	if err != nil || n == nil {
		return nil, err
	}
	loc, ok := locationOf(g, g.Resolver.Definition(n, true))
	if !ok {
		return nil, nil
	}
	return []Location{loc}, nil
}

// TypeDefinition returns the location of the class of the value the node at
// pos refers to.
func (s *Session) TypeDefinition(ctx context.Context, uri string, pos Position) ([]Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, n, err := s.nodeAt(ctx, uri, pos)
	if err != nil || n == nil {
		return nil, err
	}
	cls := g.Resolver.TypeDefinition(n)
	if cls == nil {
		return nil, nil
	}
	loc, ok := locationOf(g, cls)
	if !ok {
		return nil, nil
	}
	return []Location{loc}, nil
}

// References returns every location that refers to the same declaration as
// the node at pos, sorted by URI and position. includeDeclaration keeps the
// declaration itself in the result.
func (s *Session) References(ctx context.Context, uri string, pos Position, includeDeclaration bool) ([]Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, n, err := s.nodeAt(ctx, uri, pos)
	if err != nil || n == nil {
		return nil, err
	}
	r := g.Resolver
	def := r.Definition(n, true)
	if def == nil {
		return nil, nil
	}
	seen := make(map[Location]bool)
	var out []Location
	for _, ref := range r.References(n) {
		if !includeDeclaration && ref == def {
			continue
		}
		loc, ok := locationOf(g, ref)
		if !ok || seen[loc] {
			continue
		}
		seen[loc] = true
		out = append(out, loc)
	}
	sortLocations(out)
	return out, nil
}

func sortLocations(locs []Location) {
	sort.Slice(locs, func(i, j int) bool {
		if locs[i].URI != locs[j].URI {
			return locs[i].URI < locs[j].URI
		}
		if c := ranges.Compare(locs[i].Range.Start, locs[j].Range.Start); c != 0 {
			return c < 0
		}
		return ranges.Compare(locs[i].Range.End, locs[j].Range.End) < 0
	})
}
