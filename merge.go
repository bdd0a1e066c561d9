package mkgroups

import (
	"fmt"
	"sort"
	"strings"
)

// Module is one file's worth of declarations: fragments of groups, weights
// and permissions waiting to be merged with every other loaded module.
// Any of the three maps may be nil.
type Module struct {
	Groups      map[string][]string
	Weights     map[string]int
	Permissions map[string][]string
}

// Merge folds module declarations into one Context, left to right, and
// finalizes the result with NewContext.
//
// Parent lists merge with MergeParents and permission lists with
// MergePermissions. Weights have no valid merge: a second declaration of
// the same group's weight is an ErrDuplicateWeight even when the values
// agree, since the duplication itself is an authoring mistake.
func Merge(modules []Module) (*Context, error) {
	groups := make(map[string][]string)
	weights := make(map[string]int)
	permissions := make(map[string][]string)

	for _, m := range modules {
		for name, parents := range m.Groups {
			groups[name] = MergeParents(groups[name], parents)
		}
		for name, weight := range m.Weights {
			if existing, ok := weights[name]; ok {
				return nil, fmt.Errorf("%w: the weight of group %q is specified twice: %d and %d",
					ErrDuplicateWeight, name, existing, weight)
			}
			weights[name] = weight
		}
		for name, perms := range m.Permissions {
			permissions[name] = MergePermissions(permissions[name], perms)
		}
	}

	return NewContext(groups, weights, permissions)
}

// MergeParents merges two parent lists, preserving a's order and then
// appending the elements of b not already present. The first occurrence of
// a duplicated parent wins, so the result is duplicate-free. Comparison is
// case-sensitive; case conflicts between modules surface when the merged
// context is built.
func MergeParents(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	result := make([]string, 0, len(a)+len(b))
	for _, p := range a {
		if !seen[p] {
			seen[p] = true
			result = append(result, p)
		}
	}
	for _, p := range b {
		if !seen[p] {
			seen[p] = true
			result = append(result, p)
		}
	}
	return result
}

// MergePermissions merges two permission token lists: both sides are
// lower-cased, combined as a set union, and returned sorted. Commutative
// and idempotent.
//
// A grant and its negation may coexist in the merged result; that conflict
// is detected when the merged context is built, not here, so that the
// error can name the group.
func MergePermissions(a, b []string) []string {
	set := make(map[string]bool, len(a)+len(b))
	for _, p := range a {
		set[strings.ToLower(p)] = true
	}
	for _, p := range b {
		set[strings.ToLower(p)] = true
	}
	merged := make([]string, 0, len(set))
	for p := range set {
		merged = append(merged, p)
	}
	sort.Strings(merged)
	return merged
}
