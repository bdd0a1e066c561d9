package mkgroups_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/NerdNu/mkgroups"
)

func TestMergeParents_PreservesOrderAndDeduplicates(t *testing.T) {
	a := []string{"Mods", "Builders"}
	b := []string{"Builders", "Architects", "Mods", "Architects"}

	got := mkgroups.MergeParents(a, b)
	want := []string{"Mods", "Builders", "Architects"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergeParents = %v, want %v", got, want)
	}
}

func TestMergeParents_EmptySides(t *testing.T) {
	if got := mkgroups.MergeParents(nil, []string{"Mods"}); !reflect.DeepEqual(got, []string{"Mods"}) {
		t.Errorf("MergeParents(nil, [Mods]) = %v", got)
	}
	if got := mkgroups.MergeParents([]string{"Mods"}, nil); !reflect.DeepEqual(got, []string{"Mods"}) {
		t.Errorf("MergeParents([Mods], nil) = %v", got)
	}
}

func TestMergePermissions_SortedLoweredUnion(t *testing.T) {
	a := []string{"Bukkit.Command.Help", "worldedit.navigation"}
	b := []string{"bukkit.command.help", "^essentials.fly"}

	got := mkgroups.MergePermissions(a, b)
	want := []string{"^essentials.fly", "bukkit.command.help", "worldedit.navigation"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergePermissions = %v, want %v", got, want)
	}
}

func TestMergePermissions_CommutativeIdempotent(t *testing.T) {
	a := []string{"a.b", "c.d"}
	b := []string{"c.d", "e.f"}

	ab := mkgroups.MergePermissions(a, b)
	ba := mkgroups.MergePermissions(b, a)
	if !reflect.DeepEqual(ab, ba) {
		t.Errorf("merge not commutative: %v vs %v", ab, ba)
	}
	again := mkgroups.MergePermissions(ab, b)
	if !reflect.DeepEqual(again, ab) {
		t.Errorf("merge not idempotent: %v vs %v", again, ab)
	}
}

func TestMerge_CombinesModules(t *testing.T) {
	modules := []mkgroups.Module{
		{
			Groups:      map[string][]string{"Mods": {"default"}},
			Permissions: map[string][]string{"Mods": {"worldedit.navigation"}},
		},
		{
			Groups:      map[string][]string{"Mods": {"Builders"}},
			Weights:     map[string]int{"Mods": 10},
			Permissions: map[string][]string{"Mods": {"Bukkit.Command.Help"}},
		},
	}

	ctx, err := mkgroups.Merge(modules)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	wantParents := []string{"default", "Builders"}
	if got := ctx.Parents("Mods"); !reflect.DeepEqual(got, wantParents) {
		t.Errorf("Parents(Mods) = %v, want %v", got, wantParents)
	}
	wantPerms := []string{"bukkit.command.help", "worldedit.navigation"}
	if got := ctx.Permissions["Mods"]; !reflect.DeepEqual(got, wantPerms) {
		t.Errorf("Permissions[Mods] = %v, want %v", got, wantPerms)
	}
	if w, ok := ctx.Weight("Mods"); !ok || w != 10 {
		t.Errorf("Weight(Mods) = %d, %v, want 10, true", w, ok)
	}
}

func TestMerge_NormalizesSingleModulePermissions(t *testing.T) {
	// A group declared by only one module still gets its list lowered and
	// sorted.
	ctx, err := mkgroups.Merge([]mkgroups.Module{
		{Permissions: map[string][]string{"Mods": {"Z.node", "A.Node"}}},
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	want := []string{"a.node", "z.node"}
	if got := ctx.Permissions["Mods"]; !reflect.DeepEqual(got, want) {
		t.Errorf("Permissions[Mods] = %v, want %v", got, want)
	}
}

func TestMerge_DuplicateWeight(t *testing.T) {
	modules := []mkgroups.Module{
		{Weights: map[string]int{"Mods": 10}},
		{Weights: map[string]int{"Mods": 20}},
	}

	_, err := mkgroups.Merge(modules)
	if err == nil {
		t.Fatal("expected error for duplicate weight")
	}
	if !mkgroups.IsDuplicateWeightErr(err) {
		t.Errorf("expected IsDuplicateWeightErr to return true")
	}
	if !strings.Contains(err.Error(), "Mods") ||
		!strings.Contains(err.Error(), "10") || !strings.Contains(err.Error(), "20") {
		t.Errorf("error should name the group and both values, got: %s", err.Error())
	}
}

func TestMerge_DuplicateWeightEqualValuesStillFatal(t *testing.T) {
	modules := []mkgroups.Module{
		{Weights: map[string]int{"Mods": 10}},
		{Weights: map[string]int{"Mods": 10}},
	}

	_, err := mkgroups.Merge(modules)
	if !mkgroups.IsDuplicateWeightErr(err) {
		t.Fatalf("expected duplicate weight error even for equal values, got: %v", err)
	}
}

func TestMerge_ConflictingPermissionAcrossModules(t *testing.T) {
	// One module grants x.y, another denies it: the merged list carries
	// both tokens and finalizing the context must fail.
	modules := []mkgroups.Module{
		{Permissions: map[string][]string{"A": {"x.y"}}},
		{Permissions: map[string][]string{"A": {"^x.y"}}},
	}

	_, err := mkgroups.Merge(modules)
	if err == nil {
		t.Fatal("expected error for grant and negation of the same node")
	}
	if !mkgroups.IsConflictingPermissionErr(err) {
		t.Errorf("expected IsConflictingPermissionErr to return true")
	}
	if !strings.Contains(err.Error(), `"A"`) || !strings.Contains(err.Error(), "x.y") {
		t.Errorf("error should name group A and node x.y, got: %s", err.Error())
	}
}

func TestMerge_NameCaseConflictAcrossModules(t *testing.T) {
	modules := []mkgroups.Module{
		{Groups: map[string][]string{"Admin": {}}},
		{Groups: map[string][]string{"admin": {}}},
	}

	_, err := mkgroups.Merge(modules)
	if !mkgroups.IsNameCaseErr(err) {
		t.Fatalf("expected name case error, got: %v", err)
	}
}

func TestMerge_Empty(t *testing.T) {
	ctx, err := mkgroups.Merge(nil)
	if err != nil {
		t.Fatalf("Merge(nil) failed: %v", err)
	}
	if len(ctx.Names()) != 0 {
		t.Errorf("empty merge should produce an empty context, got %v", ctx.Names())
	}
}
