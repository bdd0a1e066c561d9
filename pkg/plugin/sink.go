// Package plugin translates reconciliation operations into the console
// command dialect of a Minecraft permission plugin.
//
// A Sink is one plugin dialect; LuckPerms and bPermissions are built in.
// The Applier drives a Sink from the operation sequences computed by the
// core, skipping operations the dialect cannot express and carrying on
// past delivery failures, so one bad command does not strand the server
// in a half-updated state with no report of what remains.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupported indicates an operation the target plugin has no command
// for. The Applier logs these as warnings and continues; the guidance in
// the error text tells the operator what to do by hand.
var ErrUnsupported = errors.New("plugin: operation not supported")

// IsUnsupportedErr returns true if the error marks an operation the
// plugin cannot express.
func IsUnsupportedErr(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

// Transport delivers one console command, given argv-style. *mark2.Client
// satisfies it.
type Transport interface {
	Send(ctx context.Context, args ...string) error
}

// Sink is the command dialect of one permission plugin. The world
// parameter names the context being edited; the default context is
// addressed by its reserved name.
type Sink interface {
	// Name returns the plugin's canonical spelling.
	Name() string

	// WorldOverrides reports how the plugin stores per-world state. True
	// means worlds are stored as overrides against the default context,
	// so world updates must be minimized against it and world deletion
	// clears overrides instead of deleting shared groups.
	WorldOverrides() bool

	CreateGroup(ctx context.Context, group, world string) error
	DeleteGroup(ctx context.Context, group, world string) error
	SetGroupWeight(ctx context.Context, group string, weight int, world string) error
	ClearGroupPermissions(ctx context.Context, group, world string) error
	AddGroupPermission(ctx context.Context, group, node string, value bool, world string) error
	AddGroupParent(ctx context.Context, group, parent, world string) error
	Persist(ctx context.Context) error
}

// New returns the Sink for the named plugin, matched case-insensitively.
func New(name string, t Transport) (Sink, error) {
	switch strings.ToLower(name) {
	case "luckperms":
		return &luckPerms{t: t}, nil
	case "bpermissions":
		return &bPermissions{t: t}, nil
	default:
		return nil, fmt.Errorf("unsupported permissions plugin: %s", name)
	}
}
