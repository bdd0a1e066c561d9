package plugin

import (
	"context"
	"strconv"

	"github.com/NerdNu/mkgroups"
)

// luckPerms speaks the LuckPerms command dialect. Groups are global;
// world-scoped properties are expressed with a trailing world= clause,
// omitted for the default context. LuckPerms YAML storage records every
// world-scoped command as a permanent override entry, hence
// WorldOverrides.
type luckPerms struct {
	t Transport
}

func (s *luckPerms) Name() string { return "LuckPerms" }

func (s *luckPerms) WorldOverrides() bool { return true }

// send appends the world clause for non-default worlds.
func (s *luckPerms) send(ctx context.Context, world string, args ...string) error {
	if world != mkgroups.DefaultContext {
		args = append(args, "world="+world)
	}
	return s.t.Send(ctx, args...)
}

func (s *luckPerms) CreateGroup(ctx context.Context, group, _ string) error {
	// Groups exist in all worlds; creation ignores the world.
	return s.t.Send(ctx, "lp", "creategroup", group)
}

func (s *luckPerms) DeleteGroup(ctx context.Context, group, _ string) error {
	// Deletion is global, like creation.
	return s.t.Send(ctx, "lp", "deletegroup", group)
}

func (s *luckPerms) SetGroupWeight(ctx context.Context, group string, weight int, world string) error {
	return s.send(ctx, world, "lp", "group", group, "setweight", strconv.Itoa(weight))
}

func (s *luckPerms) ClearGroupPermissions(ctx context.Context, group, world string) error {
	return s.send(ctx, world, "lp", "group", group, "clear")
}

func (s *luckPerms) AddGroupPermission(ctx context.Context, group, node string, value bool, world string) error {
	return s.send(ctx, world, "lp", "group", group, "permission", "set", node, strconv.FormatBool(value))
}

func (s *luckPerms) AddGroupParent(ctx context.Context, group, parent, world string) error {
	return s.send(ctx, world, "lp", "group", group, "parent", "add", parent)
}

func (s *luckPerms) Persist(ctx context.Context) error {
	return s.t.Send(ctx, "lp", "sync")
}
