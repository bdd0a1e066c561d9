package mkgroups

import (
	"fmt"
	"sort"
	"strings"
)

// Negation is the marker prefixing a permission token to deny the node
// instead of granting it (bPermissions syntax).
const Negation = "^"

// ParseToken splits a bPermissions-syntax token into its lower-cased node
// and granted/denied value.
func ParseToken(token string) (node string, granted bool) {
	token = strings.ToLower(token)
	if strings.HasPrefix(token, Negation) {
		return token[len(Negation):], false
	}
	return token, true
}

// Token renders a node and its value back into bPermissions syntax.
func Token(node string, granted bool) string {
	if granted {
		return node
	}
	return Negation + node
}

// PermissionStates converts a raw permission token list into the tri-state
// view of a group's permissions: true grants the node, false denies it, a
// missing key leaves it unspecified. A list that both asserts and negates
// the same node is an ErrConflictingPermission; group names the offender
// in the error.
func PermissionStates(perms []string, group string) (map[string]bool, error) {
	states := make(map[string]bool, len(perms))
	for _, token := range perms {
		node, granted := ParseToken(token)
		if existing, ok := states[node]; ok && existing != granted {
			return nil, fmt.Errorf("%w: group %q includes both %q and its negation",
				ErrConflictingPermission, group, node)
		}
		states[node] = granted
	}
	return states, nil
}

// RemovalPolicy decides what a permission diff does with a node that the
// baseline specifies but the variant no longer mentions.
type RemovalPolicy int

const (
	// RemoveKeep leaves nodes absent from the variant untouched: the diff
	// only adds or overrides, and shrinking a permission set requires
	// deleting the context and re-adding it. This is the default.
	RemoveKeep RemovalPolicy = iota

	// RemoveDeny treats a node the baseline grants but the variant no
	// longer mentions as an implicit denial and emits its negation. Nodes
	// the baseline already denies need no change.
	RemoveDeny
)

// String returns the configuration spelling of the policy.
func (p RemovalPolicy) String() string {
	if p == RemoveDeny {
		return "deny"
	}
	return "keep"
}

// ParseRemovalPolicy maps the configuration spelling of a removal policy
// onto its value. The empty string selects the default.
func ParseRemovalPolicy(s string) (RemovalPolicy, error) {
	switch strings.ToLower(s) {
	case "", "keep":
		return RemoveKeep, nil
	case "deny":
		return RemoveDeny, nil
	}
	return RemoveKeep, fmt.Errorf("unknown removal policy %q (want keep or deny)", s)
}

// Diff computes the tokens that change a group's permissions from before
// to after: for every node mentioned by either list, a token is emitted
// when after specifies a value that before does not already hold, in the
// negated form when the value is denied. The result is sorted by token
// text, which places negations before grants.
//
// Nodes only the before list mentions are governed by policy (see
// RemovalPolicy). Both lists are validated; a conflicting list is an
// ErrConflictingPermission.
func Diff(before, after []string, group string, policy RemovalPolicy) ([]string, error) {
	beforeStates, err := PermissionStates(before, group)
	if err != nil {
		return nil, err
	}
	afterStates, err := PermissionStates(after, group)
	if err != nil {
		return nil, err
	}

	var changes []string
	for node, granted := range afterStates {
		if existing, ok := beforeStates[node]; !ok || existing != granted {
			changes = append(changes, Token(node, granted))
		}
	}
	if policy == RemoveDeny {
		for node, granted := range beforeStates {
			if _, ok := afterStates[node]; !ok && granted {
				changes = append(changes, Token(node, false))
			}
		}
	}
	sort.Strings(changes)
	return changes, nil
}
