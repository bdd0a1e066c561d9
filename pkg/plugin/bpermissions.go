package plugin

import (
	"context"
	"fmt"

	"github.com/NerdNu/mkgroups"
)

// bPermissions speaks the bPermissions command dialect through its exec
// console command. The plugin stores each world's groups independently,
// so there is no override minimization (WorldOverrides is false), and in
// exec commands the default context is addressed by the literal world
// name "world".
type bPermissions struct {
	t Transport
}

func (s *bPermissions) Name() string { return "bPermissions" }

func (s *bPermissions) WorldOverrides() bool { return false }

// execWorld maps the default context onto the world name the exec
// command expects.
func (s *bPermissions) execWorld(world string) string {
	if world == mkgroups.DefaultContext {
		return "world"
	}
	return world
}

func (s *bPermissions) CreateGroup(ctx context.Context, group, world string) error {
	if world == mkgroups.DefaultContext {
		return s.t.Send(ctx, "group", group)
	}
	return s.t.Send(ctx, "group", group, "w:"+world)
}

func (s *bPermissions) DeleteGroup(context.Context, string, string) error {
	return fmt.Errorf("%w: deleting groups is not supported by bPermissions commands; you must clear groups.yml yourself!", ErrUnsupported)
}

// SetGroupWeight is a silent no-op: weight is a LuckPerms concept.
func (s *bPermissions) SetGroupWeight(context.Context, string, int, string) error {
	return nil
}

func (s *bPermissions) ClearGroupPermissions(context.Context, string, string) error {
	return fmt.Errorf("%w: clearing default group permissions is not implemented; review the resulting permissions!", ErrUnsupported)
}

func (s *bPermissions) AddGroupPermission(ctx context.Context, group, node string, value bool, world string) error {
	return s.t.Send(ctx, "exec", "g:"+group, "a:addperm", "v:"+mkgroups.Token(node, value), "w:"+s.execWorld(world))
}

func (s *bPermissions) AddGroupParent(ctx context.Context, group, parent, world string) error {
	return s.t.Send(ctx, "exec", "g:"+group, "a:addgroup", "v:"+parent, "w:"+s.execWorld(world))
}

func (s *bPermissions) Persist(ctx context.Context) error {
	return s.t.Send(ctx, "permissions", "save")
}
