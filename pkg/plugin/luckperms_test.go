package plugin

import (
	"context"
	"reflect"
	"testing"
)

func TestLuckPerms_CommandDialect(t *testing.T) {
	transport := &recordingTransport{}
	sink, err := New("LuckPerms", transport)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !sink.WorldOverrides() {
		t.Error("LuckPerms stores worlds as overrides; WorldOverrides() must be true")
	}

	ctx := context.Background()
	calls := []struct {
		name string
		call func() error
	}{
		{"create ignores world", func() error { return sink.CreateGroup(ctx, "Mods", "world_nether") }},
		{"weight in default world", func() error { return sink.SetGroupWeight(ctx, "Mods", 10, "default") }},
		{"weight in named world", func() error { return sink.SetGroupWeight(ctx, "Mods", 10, "world_nether") }},
		{"parent add", func() error { return sink.AddGroupParent(ctx, "Mods", "default", "world_nether") }},
		{"grant", func() error { return sink.AddGroupPermission(ctx, "Mods", "chat.color", true, "default") }},
		{"denial in named world", func() error { return sink.AddGroupPermission(ctx, "Mods", "chat.spam", false, "world_nether") }},
		{"clear", func() error { return sink.ClearGroupPermissions(ctx, "default", "world_nether") }},
		{"delete ignores world", func() error { return sink.DeleteGroup(ctx, "Mods", "world_nether") }},
		{"persist", func() error { return sink.Persist(ctx) }},
	}
	for _, c := range calls {
		if err := c.call(); err != nil {
			t.Fatalf("%s failed: %v", c.name, err)
		}
	}

	want := []string{
		"lp creategroup Mods",
		"lp group Mods setweight 10",
		"lp group Mods setweight 10 world=world_nether",
		"lp group Mods parent add default world=world_nether",
		"lp group Mods permission set chat.color true",
		"lp group Mods permission set chat.spam false world=world_nether",
		"lp group default clear world=world_nether",
		"lp deletegroup Mods",
		"lp sync",
	}
	if !reflect.DeepEqual(transport.lines, want) {
		t.Errorf("command lines = %q, want %q", transport.lines, want)
	}
}
