// Package mkgroups reconciles modular, declarative descriptions of a
// Minecraft permission hierarchy with the permission plugin of a live
// server.
//
// The package is the pure core of the tool: it merges partial module
// declarations into a consistent Context (Merge), orders the group
// inheritance graph from most general to most specific (NaturalOrder,
// Ancestors), computes minimal differences between a default context and a
// per-world variant (Diff, MinimizeOps), and produces neutral operation
// sequences (UpdateOps, DeleteOps, DeleteOverrideOps) for a command sink to
// translate into plugin commands. It performs no I/O: module files are
// loaded and written by pkg/modfile, commands are dispatched by pkg/plugin
// over pkg/mark2.
//
// Example:
//
//	ctx, err := mkgroups.Merge(modules)
//	if err != nil {
//		return err
//	}
//	for _, op := range mkgroups.UpdateOps(ctx) {
//		// hand op to a plugin sink
//	}
package mkgroups

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultGroup is the distinguished group that exists in every permission
// plugin. It is never created or deleted, only cleared or edited in place.
const DefaultGroup = "default"

// DefaultContext is the name of the context describing the default world.
// Module files for it live at the top level of the modules directory.
const DefaultContext = "default"

// AllContexts is the context-name sentinel selecting the default context
// and every world subdirectory.
const AllContexts = "all"

// IsDefaultGroup reports whether name refers to the built-in default
// group. Like all group identity, the comparison is case-insensitive.
func IsDefaultGroup(name string) bool {
	return strings.EqualFold(name, DefaultGroup)
}

// Context is one complete declared permission world.
//
// Permissions are stored in declarative form: sorted, lower-cased
// bPermissions-syntax tokens, where a leading '^' denies the node instead
// of granting it. The tri-state view (granted / denied / unspecified) is
// derived with PermissionStates or Context.States.
//
// A Context built by NewContext or Merge is complete and consistent: every
// group name mentioned anywhere has entries in Groups and Permissions,
// spelling is case-consistent, no group both asserts and negates a node,
// and the parent graph is acyclic. Contexts are treated as immutable once
// built.
type Context struct {
	// Groups maps each group to its ordered list of parent (inherited)
	// groups. Every mentioned group has a key, parents or not.
	Groups map[string][]string

	// Weights maps a group to its declared weight. A missing key means the
	// weight is unspecified; it is never defaulted to zero.
	Weights map[string]int

	// Permissions maps each group to its sorted list of lower-cased
	// permission tokens. Every mentioned group has a key.
	Permissions map[string][]string
}

// NewContext finalizes raw group, weight and permission maps into a
// Context. It computes the closure of every group name mentioned across
// the three maps and all parent lists, verifies that each name uses one
// consistent spelling (ErrNameCase lists every spelling of every
// conflicted name), fills in empty parent and permission entries for
// closure names lacking them, rejects permission lists that assert and
// negate the same node (ErrConflictingPermission), and rejects cyclic
// parent graphs (ErrCyclicInheritance).
//
// NewContext takes ownership of its arguments; nil maps are treated as
// empty.
func NewContext(groups map[string][]string, weights map[string]int, permissions map[string][]string) (*Context, error) {
	if groups == nil {
		groups = make(map[string][]string)
	}
	if weights == nil {
		weights = make(map[string]int)
	}
	if permissions == nil {
		permissions = make(map[string][]string)
	}

	names := mentionedNames(groups, weights, permissions)
	if err := checkNameCase(names); err != nil {
		return nil, err
	}

	for _, name := range names {
		if _, ok := groups[name]; !ok {
			groups[name] = []string{}
		}
		if _, ok := permissions[name]; !ok {
			permissions[name] = []string{}
		}
	}

	c := &Context{Groups: groups, Weights: weights, Permissions: permissions}
	for _, name := range names {
		if _, err := PermissionStates(c.Permissions[name], name); err != nil {
			return nil, err
		}
	}
	if err := detectCycles(c.Groups); err != nil {
		return nil, err
	}
	return c, nil
}

// Names returns every group of the context in canonical order:
// case-insensitive lexicographic. All emitted command sequences iterate
// groups in this order.
func (c *Context) Names() []string {
	names := make([]string, 0, len(c.Groups))
	for name := range c.Groups {
		names = append(names, name)
	}
	sortNames(names)
	return names
}

// Parents returns the named group's declared parent list.
func (c *Context) Parents(name string) []string {
	return c.Groups[name]
}

// Weight returns the group's declared weight. The second return is false
// when no module declared one.
func (c *Context) Weight(name string) (int, bool) {
	w, ok := c.Weights[name]
	return w, ok
}

// States returns the tri-state view of the named group's permissions:
// true grants the node, false denies it, a missing key leaves it
// unspecified. Construction already validated the token list, so the
// conversion cannot fail.
func (c *Context) States(name string) map[string]bool {
	states, _ := PermissionStates(c.Permissions[name], name)
	return states
}

// ContextMap maps a context name to its built Context. The default
// context is always present; the remaining keys are world names.
type ContextMap map[string]*Context

// Worlds returns the non-default context names in sorted order, the order
// worlds are processed after the default context when operating on all
// contexts.
func (m ContextMap) Worlds() []string {
	worlds := make([]string, 0, len(m))
	for name := range m {
		if name != DefaultContext {
			worlds = append(worlds, name)
		}
	}
	sort.Strings(worlds)
	return worlds
}

// mentionedNames collects the closure of group names mentioned as a group
// key, a parent reference, a weight key or a permissions key. The result
// is sorted for deterministic error reporting.
func mentionedNames(groups map[string][]string, weights map[string]int, permissions map[string][]string) []string {
	seen := make(map[string]bool)
	for name, parents := range groups {
		seen[name] = true
		for _, p := range parents {
			seen[p] = true
		}
	}
	for name := range weights {
		seen[name] = true
	}
	for name := range permissions {
		seen[name] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// checkNameCase verifies that no group is mentioned with more than one
// spelling. All conflicts are collected into a single error so the
// operator can fix every file in one pass.
func checkNameCase(names []string) error {
	mentions := make(map[string][]string)
	for _, name := range names {
		key := strings.ToLower(name)
		mentions[key] = append(mentions[key], name)
	}

	var conflicts []string
	for _, spellings := range mentions {
		if len(spellings) > 1 {
			sort.Strings(spellings)
			conflicts = append(conflicts,
				fmt.Sprintf("group %s is mentioned variously as: %s",
					strings.ToLower(spellings[0]), strings.Join(spellings, " ")))
		}
	}
	if len(conflicts) == 0 {
		return nil
	}
	sort.Strings(conflicts)
	return fmt.Errorf("%w: %s", ErrNameCase, strings.Join(conflicts, "; "))
}

// sortNames orders group names case-insensitively by their upper-cased
// form, falling back to the raw string so the order is total.
func sortNames(names []string) {
	sort.Slice(names, func(i, j int) bool {
		ui, uj := strings.ToUpper(names[i]), strings.ToUpper(names[j])
		if ui != uj {
			return ui < uj
		}
		return names[i] < names[j]
	})
}
