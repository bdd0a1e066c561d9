package doctor

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeModule(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func findCheck(t *testing.T, report *Report, category, name string) CheckResult {
	t.Helper()
	for _, check := range report.Checks {
		if check.Category == category && check.Name == name {
			return check
		}
	}
	t.Fatalf("no %s/%s check in report", category, name)
	return CheckResult{}
}

func TestRun_CleanTree(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "core.yml", `
groups:
  default: []
  Mods: [default]
weights:
  Mods: 10
permissions:
  default: [bukkit.command.help]
  Mods: [chat.color]
`)
	writeModule(t, filepath.Join(dir, "world_nether"), "nether.yml", `
groups:
  NetherMods: []
permissions:
  NetherMods: [nether.access]
`)

	report := New(dir).Run()

	assert.False(t, report.HasErrors())
	assert.Zero(t, report.Errors)
	assert.Zero(t, report.Warnings)

	tree := findCheck(t, report, "Module Tree", "modules")
	assert.Equal(t, StatusPass, tree.Status)
	assert.Contains(t, tree.Message, "1 module files and 1 world directories")

	merge := findCheck(t, report, "Context default", "merge")
	assert.Equal(t, StatusPass, merge.Status)
	assert.Contains(t, merge.Message, "Merged 2 groups, 1 weights, 2 permissions")

	worldMerge := findCheck(t, report, "Context world_nether", "merge")
	assert.Equal(t, StatusPass, worldMerge.Status)
	assert.Contains(t, worldMerge.Message, "Merged 1 groups, 0 weights, 1 permissions")
}

func TestRun_MissingDirectory(t *testing.T) {
	report := New(filepath.Join(t.TempDir(), "absent")).Run()

	assert.True(t, report.HasErrors())
	check := findCheck(t, report, "Module Tree", "exists")
	assert.Equal(t, StatusFail, check.Status)
	assert.Contains(t, check.Message, "not readable")
}

func TestRun_NoModuleFiles(t *testing.T) {
	report := New(t.TempDir()).Run()

	assert.True(t, report.HasErrors())
	check := findCheck(t, report, "Module Tree", "modules")
	assert.Equal(t, StatusFail, check.Status)
	assert.Contains(t, check.Message, "No module files")
}

func TestRun_WarnsAboutUnexpectedKeys(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "typo.yml", `
group:
  Ghosts: []
permissions:
  default: [chat.color]
`)

	report := New(dir).Run()

	assert.False(t, report.HasErrors())
	check := findCheck(t, report, "Context default", "keys")
	assert.Equal(t, StatusWarn, check.Status)
	assert.Contains(t, check.Message, "1 unexpected module keys")
	assert.Contains(t, check.Details, "typo.yml: group")
}

func TestRun_ReportsConflictingPermissions(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "chat.yml", `
groups:
  Mods: []
permissions:
  Mods: [chat.color, ^chat.color]
`)

	report := New(dir).Run()

	assert.True(t, report.HasErrors())
	check := findCheck(t, report, "Context default", "merge")
	assert.Equal(t, StatusFail, check.Status)
	assert.Contains(t, check.Message, "grants and denies")
	assert.Contains(t, check.Details, "chat.color")
}

func TestRun_ReportsInheritanceCycle(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "cycle.yml", `
groups:
  Mods: [Admins]
  Admins: [Mods]
`)

	report := New(dir).Run()

	assert.True(t, report.HasErrors())
	check := findCheck(t, report, "Context default", "merge")
	assert.Equal(t, StatusFail, check.Status)
	assert.Contains(t, check.Message, "cycle")
}

func TestRun_ReportsNameCaseConflict(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "case.yml", `
groups:
  Mods: []
  mods: []
`)

	report := New(dir).Run()

	assert.True(t, report.HasErrors())
	check := findCheck(t, report, "Context default", "merge")
	assert.Equal(t, StatusFail, check.Status)
	assert.Contains(t, check.Message, "inconsistent case")
}

func TestRun_CountsRedundantPermissions(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "chat.yml", `
groups:
  default: []
  Mods: [default]
permissions:
  default: [chat.color]
  Mods: [chat.color]
`)

	report := New(dir).Run()

	assert.False(t, report.HasErrors())
	check := findCheck(t, report, "Context default", "redundancy")
	assert.Equal(t, StatusWarn, check.Status)
	assert.Contains(t, check.Message, "1 redundant permissions")
	assert.Contains(t, check.Details, "Mods: chat.color (inherited from default)")
}

func TestReportPrint(t *testing.T) {
	report := &Report{}
	report.AddCheck(CheckResult{
		Category: "Module Tree",
		Name:     "modules",
		Status:   StatusPass,
		Message:  "Found 2 module files",
	})
	report.AddCheck(CheckResult{
		Category: "Context default",
		Name:     "merge",
		Status:   StatusFail,
		Message:  "Modules do not merge",
		Details:  "some detail",
		FixHint:  "fix the modules",
	})

	var buf bytes.Buffer
	report.Print(&buf, true)
	out := buf.String()

	assert.Contains(t, out, "✓ Found 2 module files")
	assert.Contains(t, out, "✗ Modules do not merge")
	assert.Contains(t, out, "      some detail")
	assert.Contains(t, out, "      Fix: fix the modules")
	assert.Contains(t, out, "Summary: 1 passed, 0 warnings, 1 errors")
}
