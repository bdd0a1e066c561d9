package mkgroups

import (
	"fmt"
	"sort"
	"strings"
)

// NaturalOrder returns every group ordered from most general to most
// specific: each group appears strictly after all of its transitive
// ancestors, and groups with no inheritance relation between them appear
// in case-insensitive lexicographic order.
//
// Example: with parents {Admins: [Mods], Mods: [default]} the natural
// order is [default, Mods, Admins].
//
// The parent graph must be acyclic; NewContext validates that before a
// Context reaches any caller.
func NaturalOrder(parents map[string][]string) []string {
	roots := make([]string, 0, len(parents))
	for name := range parents {
		roots = append(roots, name)
	}
	sortNames(roots)

	result := make([]string, 0, len(parents))
	seen := make(map[string]bool, len(parents))
	for _, root := range roots {
		postorder(root, parents, seen, func(name string) {
			result = append(result, name)
		})
	}
	return result
}

// Ancestors returns all transitive ancestors of group, nearest first.
// Parent lists may mention redundant ancestors; each ancestor is returned
// once.
//
// The postorder walk rooted at group visits the group itself last, so
// reversing the visit sequence and dropping its first element leaves the
// ancestors ordered from immediate parent to furthest ancestor.
func Ancestors(group string, parents map[string][]string) []string {
	var visited []string
	postorder(group, parents, make(map[string]bool), func(name string) {
		visited = append(visited, name)
	})
	for i, j := 0, len(visited)-1; i < j; i, j = i+1, j-1 {
		visited[i], visited[j] = visited[j], visited[i]
	}
	return visited[1:]
}

// postorder walks the parent graph depth-first from node, visiting every
// reachable unseen group after that group's own parents. A parent is
// marked seen before its subtree is entered, so shared ancestors are
// visited exactly once no matter how many descendants reach them.
func postorder(node string, parents map[string][]string, seen map[string]bool, visit func(string)) {
	for _, parent := range parents[node] {
		if !seen[parent] {
			seen[parent] = true
			postorder(parent, parents, seen, visit)
			visit(parent)
		}
	}
	if !seen[node] {
		visit(node)
		seen[node] = true
	}
}

// color represents the state of a group during DFS cycle detection.
type color int

const (
	white color = iota // unvisited
	gray               // in current DFS path (cycle if revisited)
	black              // fully processed
)

// detectCycles checks the parent graph for inheritance cycles using DFS
// with three-color marking. Roots are processed in sorted order so the
// reported cycle is deterministic.
func detectCycles(parents map[string][]string) error {
	colors := make(map[string]color)
	cameFrom := make(map[string]string)

	var dfs func(n string) []string
	dfs = func(n string) []string {
		colors[n] = gray
		for _, next := range parents[n] {
			switch colors[next] {
			case gray:
				// Found cycle - reconstruct path
				return reconstructCycle(n, next, cameFrom)
			case white:
				cameFrom[next] = n
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		colors[n] = black
		return nil
	}

	names := make([]string, 0, len(parents))
	for name := range parents {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if colors[name] == white {
			if cycle := dfs(name); cycle != nil {
				return fmt.Errorf("%w: %s", ErrCyclicInheritance, formatCycle(cycle))
			}
		}
	}
	return nil
}

// reconstructCycle builds the cycle path from the recorded predecessors.
// from is the group where the back-edge was found, to is the group it
// returns to.
func reconstructCycle(from, to string, cameFrom map[string]string) []string {
	cycle := []string{to}
	for n := from; n != to; n = cameFrom[n] {
		cycle = append([]string{n}, cycle...)
	}
	return append([]string{to}, cycle...)
}

// formatCycle converts a cycle path to a human-readable string.
// Example: "Mods → Admins → Mods"
func formatCycle(cycle []string) string {
	return strings.Join(cycle, " → ")
}
