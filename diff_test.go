package mkgroups_test

import (
	"reflect"
	"testing"

	"github.com/NerdNu/mkgroups"
)

func TestParseToken(t *testing.T) {
	node, granted := mkgroups.ParseToken("Bukkit.Command.Help")
	if node != "bukkit.command.help" || !granted {
		t.Errorf("ParseToken = %q, %v", node, granted)
	}

	node, granted = mkgroups.ParseToken("^worldedit.navigation")
	if node != "worldedit.navigation" || granted {
		t.Errorf("ParseToken = %q, %v", node, granted)
	}
}

func TestToken_RoundTrip(t *testing.T) {
	for _, token := range []string{"a.b.c", "^a.b.c"} {
		node, granted := mkgroups.ParseToken(token)
		if got := mkgroups.Token(node, granted); got != token {
			t.Errorf("Token(ParseToken(%q)) = %q", token, got)
		}
	}
}

func TestPermissionStates_Conflict(t *testing.T) {
	_, err := mkgroups.PermissionStates([]string{"x.y", "^x.y"}, "Mods")
	if err == nil {
		t.Fatal("expected error for asserted and negated node")
	}
	if !mkgroups.IsConflictingPermissionErr(err) {
		t.Errorf("expected IsConflictingPermissionErr to return true")
	}
}

func TestPermissionStates_RepeatedTokenIsFine(t *testing.T) {
	states, err := mkgroups.PermissionStates([]string{"x.y", "X.Y"}, "Mods")
	if err != nil {
		t.Fatalf("PermissionStates failed: %v", err)
	}
	if granted, ok := states["x.y"]; !ok || !granted {
		t.Errorf("states[x.y] = %v, %v", granted, ok)
	}
}

func TestDiff_EqualListsAreEmpty(t *testing.T) {
	perms := []string{"^a.b", "c.d"}

	changes, err := mkgroups.Diff(perms, perms, "G", mkgroups.RemoveKeep)
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}
	if len(changes) != 0 {
		t.Errorf("Diff of equal lists = %v, want empty", changes)
	}
}

func TestDiff_RemovalPolicies(t *testing.T) {
	before := []string{"a", "b"}
	after := []string{"a", "c"}

	t.Run("keep", func(t *testing.T) {
		changes, err := mkgroups.Diff(before, after, "G", mkgroups.RemoveKeep)
		if err != nil {
			t.Fatalf("Diff failed: %v", err)
		}
		// b is only in before; under keep it stays untouched.
		want := []string{"c"}
		if !reflect.DeepEqual(changes, want) {
			t.Errorf("Diff = %v, want %v", changes, want)
		}
	})

	t.Run("deny", func(t *testing.T) {
		changes, err := mkgroups.Diff(before, after, "G", mkgroups.RemoveDeny)
		if err != nil {
			t.Fatalf("Diff failed: %v", err)
		}
		// b becomes an explicit denial; negations sort before grants.
		want := []string{"^b", "c"}
		if !reflect.DeepEqual(changes, want) {
			t.Errorf("Diff = %v, want %v", changes, want)
		}
	})
}

func TestDiff_PolarityFlip(t *testing.T) {
	changes, err := mkgroups.Diff([]string{"a.b"}, []string{"^a.b"}, "G", mkgroups.RemoveKeep)
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}
	want := []string{"^a.b"}
	if !reflect.DeepEqual(changes, want) {
		t.Errorf("Diff = %v, want %v", changes, want)
	}
}

func TestDiff_DeniedBeforeAbsentAfterNeedsNoChange(t *testing.T) {
	// The baseline already denies the node, so dropping it from the
	// variant changes nothing even under RemoveDeny.
	changes, err := mkgroups.Diff([]string{"^a.b"}, nil, "G", mkgroups.RemoveDeny)
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}
	if len(changes) != 0 {
		t.Errorf("Diff = %v, want empty", changes)
	}
}

func TestDiff_ReapplyYieldsAfter(t *testing.T) {
	before := []string{"^a.b", "c.d", "e.f"}
	after := []string{"a.b", "c.d", "g.h"}

	changes, err := mkgroups.Diff(before, after, "G", mkgroups.RemoveKeep)
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}

	// Applying the diff on top of before must give after's value for
	// every node after mentions.
	state, err := mkgroups.PermissionStates(before, "G")
	if err != nil {
		t.Fatalf("PermissionStates failed: %v", err)
	}
	for _, token := range changes {
		node, granted := mkgroups.ParseToken(token)
		state[node] = granted
	}
	want, err := mkgroups.PermissionStates(after, "G")
	if err != nil {
		t.Fatalf("PermissionStates failed: %v", err)
	}
	for node, granted := range want {
		if state[node] != granted {
			t.Errorf("node %s = %v after re-apply, want %v", node, state[node], granted)
		}
	}
}

func TestDiff_ConflictingListFails(t *testing.T) {
	_, err := mkgroups.Diff([]string{"x", "^x"}, nil, "G", mkgroups.RemoveKeep)
	if !mkgroups.IsConflictingPermissionErr(err) {
		t.Fatalf("expected conflicting permission error, got: %v", err)
	}
}

func TestParseRemovalPolicy(t *testing.T) {
	cases := []struct {
		in   string
		want mkgroups.RemovalPolicy
		ok   bool
	}{
		{"", mkgroups.RemoveKeep, true},
		{"keep", mkgroups.RemoveKeep, true},
		{"KEEP", mkgroups.RemoveKeep, true},
		{"deny", mkgroups.RemoveDeny, true},
		{"drop", mkgroups.RemoveKeep, false},
	}
	for _, tc := range cases {
		got, err := mkgroups.ParseRemovalPolicy(tc.in)
		if (err == nil) != tc.ok {
			t.Errorf("ParseRemovalPolicy(%q) error = %v, want ok=%v", tc.in, err, tc.ok)
			continue
		}
		if tc.ok && got != tc.want {
			t.Errorf("ParseRemovalPolicy(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
