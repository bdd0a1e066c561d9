package mkgroups

import "fmt"

// OpKind identifies one kind of reconciliation operation.
type OpKind int

const (
	OpCreateGroup OpKind = iota
	OpDeleteGroup
	OpSetWeight
	OpAddParent
	OpSetPermission
	OpClearPermissions
)

// String returns the kind's name as used in logs.
func (k OpKind) String() string {
	switch k {
	case OpCreateGroup:
		return "create-group"
	case OpDeleteGroup:
		return "delete-group"
	case OpSetWeight:
		return "set-weight"
	case OpAddParent:
		return "add-parent"
	case OpSetPermission:
		return "set-permission"
	case OpClearPermissions:
		return "clear-permissions"
	default:
		return "unknown"
	}
}

// Op is one neutral state-changing operation against the target permission
// plugin. A command sink translates ops into plugin commands; fields other
// than Kind and Group are meaningful only for the kinds noted.
type Op struct {
	Kind   OpKind
	Group  string
	Parent string // OpAddParent
	Node   string // OpSetPermission: lower-cased node, no negation marker
	Value  bool   // OpSetPermission: true grants, false denies
	Weight int    // OpSetWeight
}

// String renders the op for logs and skip warnings.
func (o Op) String() string {
	switch o.Kind {
	case OpSetWeight:
		return fmt.Sprintf("%s %s %d", o.Kind, o.Group, o.Weight)
	case OpAddParent:
		return fmt.Sprintf("%s %s %s", o.Kind, o.Group, o.Parent)
	case OpSetPermission:
		return fmt.Sprintf("%s %s %s", o.Kind, o.Group, Token(o.Node, o.Value))
	default:
		return fmt.Sprintf("%s %s", o.Kind, o.Group)
	}
}

// UpdateOps produces the full push of a context's declared state. Groups
// are processed in canonical order in three passes: create each group (the
// default group always exists and is never created) and set its weight
// where one is declared; then add every parent edge; then set every
// permission token. Parents and permissions follow in later passes so that
// every referenced group already exists.
func UpdateOps(c *Context) []Op {
	names := c.Names()
	var ops []Op
	for _, name := range names {
		if !IsDefaultGroup(name) {
			ops = append(ops, Op{Kind: OpCreateGroup, Group: name})
		}
		if weight, ok := c.Weight(name); ok {
			ops = append(ops, Op{Kind: OpSetWeight, Group: name, Weight: weight})
		}
	}
	for _, name := range names {
		for _, parent := range c.Parents(name) {
			ops = append(ops, Op{Kind: OpAddParent, Group: name, Parent: parent})
		}
	}
	for _, name := range names {
		for _, token := range c.Permissions[name] {
			node, granted := ParseToken(token)
			ops = append(ops, Op{Kind: OpSetPermission, Group: name, Node: node, Value: granted})
		}
	}
	return ops
}

// MinimizeOps produces the operations that align a world's overrides with
// the variant context, assuming the default context is already applied.
// Only true deltas are emitted: world-scoped storage records every command
// as a permanent per-world entry, so properties equal to the default must
// stay unmentioned to keep override storage proportional to actual
// deviation.
//
// Groups are created only when absent from the default context. A weight
// is set only when the variant declares one that the default does not
// share. When the variant's parent set differs from the default's (order
// is ignored), every variant parent is re-added. Permissions are the Diff
// of the default group's tokens against the variant's.
func MinimizeOps(def, variant *Context, policy RemovalPolicy) ([]Op, error) {
	names := variant.Names()
	var ops []Op

	for _, name := range names {
		if _, ok := def.Groups[name]; !ok && !IsDefaultGroup(name) {
			ops = append(ops, Op{Kind: OpCreateGroup, Group: name})
		}
	}

	for _, name := range names {
		weight, ok := variant.Weight(name)
		if !ok {
			continue
		}
		if defWeight, declared := def.Weight(name); !declared || defWeight != weight {
			ops = append(ops, Op{Kind: OpSetWeight, Group: name, Weight: weight})
		}
	}

	for _, name := range names {
		if sameParentSet(variant.Parents(name), def.Groups[name]) {
			continue
		}
		for _, parent := range variant.Parents(name) {
			ops = append(ops, Op{Kind: OpAddParent, Group: name, Parent: parent})
		}
	}

	for _, name := range names {
		changes, err := Diff(def.Permissions[name], variant.Permissions[name], name, policy)
		if err != nil {
			return nil, err
		}
		for _, token := range changes {
			node, granted := ParseToken(token)
			ops = append(ops, Op{Kind: OpSetPermission, Group: name, Node: node, Value: granted})
		}
	}
	return ops, nil
}

// DeleteOps produces the teardown of a context's declared state, in
// canonical order: the default group is cleared in place (it always exists
// on the server), every other group is deleted.
func DeleteOps(c *Context) []Op {
	var ops []Op
	for _, name := range c.Names() {
		if IsDefaultGroup(name) {
			ops = append(ops, Op{Kind: OpClearPermissions, Group: name})
		} else {
			ops = append(ops, Op{Kind: OpDeleteGroup, Group: name})
		}
	}
	return ops
}

// DeleteOverrideOps tears down a world's overrides on storage that keeps
// per-world state against a default context: every group of the default
// context is cleared in that world, then groups unique to the variant are
// deleted outright. Group deletion is global on such storage, so shared
// groups are only ever cleared. A variant-only group named default is
// cleared rather than deleted.
func DeleteOverrideOps(def, variant *Context) []Op {
	var ops []Op
	for _, name := range def.Names() {
		ops = append(ops, Op{Kind: OpClearPermissions, Group: name})
	}
	for _, name := range variant.Names() {
		if _, ok := def.Groups[name]; ok {
			continue
		}
		if IsDefaultGroup(name) {
			ops = append(ops, Op{Kind: OpClearPermissions, Group: name})
		} else {
			ops = append(ops, Op{Kind: OpDeleteGroup, Group: name})
		}
	}
	return ops
}

// sameParentSet reports whether two parent lists name the same groups,
// ignoring order and repetition.
func sameParentSet(a, b []string) bool {
	as := make(map[string]bool, len(a))
	for _, p := range a {
		as[p] = true
	}
	bs := make(map[string]bool, len(b))
	for _, p := range b {
		bs[p] = true
	}
	if len(as) != len(bs) {
		return false
	}
	for p := range as {
		if !bs[p] {
			return false
		}
	}
	return true
}
