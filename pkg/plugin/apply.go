package plugin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/NerdNu/mkgroups"
)

// Result tallies one dispatched batch of operations.
type Result struct {
	Applied int // operations the sink accepted
	Skipped int // operations the sink does not support
	Failed  int // operations lost to delivery failures
}

// Add accumulates another batch's tallies into r.
func (r *Result) Add(other *Result) {
	r.Applied += other.Applied
	r.Skipped += other.Skipped
	r.Failed += other.Failed
}

// Applier drives a Sink from the operation sequences computed by the
// core.
//
// Structural problems (a conflicting permission diff, a context that was
// never loaded) abort the batch with an error. Per-operation problems do
// not: unsupported operations are logged and counted as skipped, delivery
// failures are logged and counted as failed, and the batch continues, so
// the operator sees the complete picture in one run.
type Applier struct {
	Sink Sink

	// Removals selects how nodes granted by the default context but
	// absent from a world are reconciled when minimizing.
	Removals mkgroups.RemovalPolicy

	// Log receives skip warnings and delivery failures. Nil falls back to
	// slog.Default().
	Log *slog.Logger
}

func (a *Applier) logger() *slog.Logger {
	if a.Log != nil {
		return a.Log
	}
	return slog.Default()
}

// Update pushes the named world's declared state to the sink. The default
// world, and every world on a plugin with independent per-world storage,
// receives the full declared state. A non-default world on a plugin with
// override storage receives only its differences from the default
// context.
func (a *Applier) Update(ctx context.Context, contexts mkgroups.ContextMap, world string) (*Result, error) {
	c, err := contextFor(contexts, world)
	if err != nil {
		return nil, err
	}

	var ops []mkgroups.Op
	if world == mkgroups.DefaultContext || !a.Sink.WorldOverrides() {
		ops = mkgroups.UpdateOps(c)
	} else {
		def, err := contextFor(contexts, mkgroups.DefaultContext)
		if err != nil {
			return nil, err
		}
		ops, err = mkgroups.MinimizeOps(def, c, a.Removals)
		if err != nil {
			return nil, err
		}
	}
	return a.apply(ctx, ops, world)
}

// Delete tears down the named world's state. On override storage a
// non-default world is reconciled with DeleteOverrideOps: shared groups
// are cleared in that world, not deleted, since deletion is global there.
func (a *Applier) Delete(ctx context.Context, contexts mkgroups.ContextMap, world string) (*Result, error) {
	c, err := contextFor(contexts, world)
	if err != nil {
		return nil, err
	}

	var ops []mkgroups.Op
	if world != mkgroups.DefaultContext && a.Sink.WorldOverrides() {
		def, err := contextFor(contexts, mkgroups.DefaultContext)
		if err != nil {
			return nil, err
		}
		ops = mkgroups.DeleteOverrideOps(def, c)
	} else {
		ops = mkgroups.DeleteOps(c)
	}
	return a.apply(ctx, ops, world)
}

// apply dispatches each op in order and persists once at the end of any
// batch that applied something.
func (a *Applier) apply(ctx context.Context, ops []mkgroups.Op, world string) (*Result, error) {
	a.logger().Debug("dispatching operations",
		"plugin", a.Sink.Name(), "world", world, "count", len(ops))

	result := &Result{}
	for _, op := range ops {
		err := a.dispatch(ctx, op, world)
		switch {
		case err == nil:
			result.Applied++
		case IsUnsupportedErr(err):
			result.Skipped++
			a.logger().Warn("skipping operation",
				"op", op.String(), "world", world, "detail", err)
		default:
			result.Failed++
			a.logger().Error("operation not delivered",
				"op", op.String(), "world", world, "error", err)
		}
	}

	if result.Applied > 0 {
		if err := a.Sink.Persist(ctx); err != nil {
			result.Failed++
			a.logger().Error("persist not delivered", "world", world, "error", err)
		}
	}
	return result, nil
}

func (a *Applier) dispatch(ctx context.Context, op mkgroups.Op, world string) error {
	switch op.Kind {
	case mkgroups.OpCreateGroup:
		return a.Sink.CreateGroup(ctx, op.Group, world)
	case mkgroups.OpDeleteGroup:
		return a.Sink.DeleteGroup(ctx, op.Group, world)
	case mkgroups.OpSetWeight:
		return a.Sink.SetGroupWeight(ctx, op.Group, op.Weight, world)
	case mkgroups.OpAddParent:
		return a.Sink.AddGroupParent(ctx, op.Group, op.Parent, world)
	case mkgroups.OpSetPermission:
		return a.Sink.AddGroupPermission(ctx, op.Group, op.Node, op.Value, world)
	case mkgroups.OpClearPermissions:
		return a.Sink.ClearGroupPermissions(ctx, op.Group, world)
	default:
		return fmt.Errorf("unknown operation kind %d", op.Kind)
	}
}

func contextFor(contexts mkgroups.ContextMap, world string) (*mkgroups.Context, error) {
	c, ok := contexts[world]
	if !ok {
		return nil, fmt.Errorf("%w: context %q was never loaded", mkgroups.ErrMissingContext, world)
	}
	return c, nil
}
