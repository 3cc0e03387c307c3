package store

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
)

// ComputeSignatureHash computes a deterministic hash from a class's semantic
// identity: name, kind, visibility, modifiers, supertypes and member
// signatures. Location changes do NOT affect the hash, and neither do
// method bodies.
func ComputeSignatureHash(
	name, kind, visibility string,
	modifiers []string,
	supertypes []string,
	members []*TypeMember,
) string {
	h := sha256.New()

	fmt.Fprintf(h, "name:%s\n", name)
	fmt.Fprintf(h, "kind:%s\n", kind)
	fmt.Fprintf(h, "visibility:%s\n", visibility)

	sorted := make([]string, len(modifiers))
	copy(sorted, modifiers)
	sort.Strings(sorted)
	fmt.Fprintf(h, "modifiers:%s\n", strings.Join(sorted, ","))

	// Supertype order is meaningful (superclass first).
	fmt.Fprintf(h, "supertypes:%s\n", strings.Join(supertypes, ","))

	type memberKey struct{ name, kind, typeExpr, vis string }
	mkeys := make([]memberKey, len(members))
	for i, m := range members {
		mkeys[i] = memberKey{m.Name, m.Kind, m.TypeExpr, m.Visibility}
	}
	sort.Slice(mkeys, func(i, j int) bool {
		if mkeys[i].name != mkeys[j].name {
			return mkeys[i].name < mkeys[j].name
		}
		if mkeys[i].kind != mkeys[j].kind {
			return mkeys[i].kind < mkeys[j].kind
		}
		return mkeys[i].typeExpr < mkeys[j].typeExpr
	})
	for _, mk := range mkeys {
		fmt.Fprintf(h, "member:%s:%s:%s:%s\n", mk.name, mk.kind, mk.typeExpr, mk.vis)
	}

	return fmt.Sprintf("%x", h.Sum(nil))
}
