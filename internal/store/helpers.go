package store

import (
	"encoding/json"
	"slices"
	"strings"
)

// inClause returns "?,?,?" for n values; callers guard n > 0.
func inClause(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toArgs[T any](vs []T) []any {
	args := make([]any, len(vs))
	for i, v := range vs {
		args[i] = v
	}
	return args
}

// encodeModifiers stores modifiers as a sorted JSON array.
func encodeModifiers(mods []string) string {
	if len(mods) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(slices.Sorted(slices.Values(mods)))
	return string(b)
}

func decodeModifiers(s string) []string {
	var mods []string
	if json.Unmarshal([]byte(s), &mods) != nil || len(mods) == 0 {
		return nil
	}
	return mods
}
