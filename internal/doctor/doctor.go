// Package doctor provides health checks for a permission module tree.
//
// The doctor command validates that modules will merge and apply cleanly
// by loading every context of the tree and inspecting the merged results.
//
// Example usage:
//
//	d := doctor.New("modules/pve")
//	report := d.Run()
//	report.Print(os.Stdout, true) // verbose=true
package doctor

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/NerdNu/mkgroups"
	"github.com/NerdNu/mkgroups/pkg/modfile"
)

// Status represents the result of a health check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical issue that will cause failures.
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Symbol returns a status indicator symbol for terminal output.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return "✓"
	case StatusWarn:
		return "⚠"
	case StatusFail:
		return "✗"
	default:
		return "?"
	}
}

// CheckResult represents the outcome of a single health check.
type CheckResult struct {
	// Category groups related checks (e.g., "Module Tree", "Context default").
	Category string

	// Name is a short identifier for the check.
	Name string

	// Status is the check outcome.
	Status Status

	// Message is a human-readable description of the result.
	Message string

	// Details provides additional information for verbose output.
	Details string

	// FixHint suggests how to resolve issues.
	FixHint string
}

// Report contains all health check results.
type Report struct {
	Checks []CheckResult

	// Summary counts.
	Passed   int
	Warnings int
	Errors   int
}

// AddCheck adds a check result and updates summary counts.
func (r *Report) AddCheck(check CheckResult) {
	r.Checks = append(r.Checks, check)
	switch check.Status {
	case StatusPass:
		r.Passed++
	case StatusWarn:
		r.Warnings++
	case StatusFail:
		r.Errors++
	}
}

// Print writes the report to the given writer.
func (r *Report) Print(w io.Writer, verbose bool) {
	// Group checks by category
	categories := make(map[string][]CheckResult)
	var categoryOrder []string
	for _, check := range r.Checks {
		if _, exists := categories[check.Category]; !exists {
			categoryOrder = append(categoryOrder, check.Category)
		}
		categories[check.Category] = append(categories[check.Category], check)
	}

	// Print each category
	for _, cat := range categoryOrder {
		_, _ = fmt.Fprintf(w, "\n%s\n", cat)
		for _, check := range categories[cat] {
			_, _ = fmt.Fprintf(w, "  %s %s\n", check.Status.Symbol(), check.Message)
			if verbose && check.Details != "" {
				// Indent details
				for _, line := range strings.Split(check.Details, "\n") {
					_, _ = fmt.Fprintf(w, "      %s\n", line)
				}
			}
			if check.Status != StatusPass && check.FixHint != "" {
				_, _ = fmt.Fprintf(w, "      Fix: %s\n", check.FixHint)
			}
		}
	}

	// Print summary
	_, _ = fmt.Fprintf(w, "\nSummary: %d passed, %d warnings, %d errors\n",
		r.Passed, r.Warnings, r.Errors)
}

// HasErrors returns true if any check failed.
func (r *Report) HasErrors() bool {
	return r.Errors > 0
}

// Doctor performs health checks on a module directory tree.
type Doctor struct {
	modulesDir string

	// The loader's own diagnostics are discarded: every condition it
	// would log is reported as a check instead.
	loader modfile.Loader
}

// New creates a new Doctor instance for the module tree rooted at
// modulesDir.
func New(modulesDir string) *Doctor {
	return &Doctor{
		modulesDir: modulesDir,
		loader:     modfile.Loader{Log: slog.New(slog.NewTextHandler(io.Discard, nil))},
	}
}

// Run executes all health checks and returns a report.
func (d *Doctor) Run() *Report {
	report := &Report{}

	worlds, ok := d.checkTree(report)
	if !ok {
		return report
	}

	d.checkContext(report, mkgroups.DefaultContext, d.modulesDir)
	for _, world := range worlds {
		d.checkContext(report, world, filepath.Join(d.modulesDir, world))
	}

	return report
}

// checkTree validates the module directory layout and returns the world
// subdirectories found, in sorted order.
func (d *Doctor) checkTree(report *Report) ([]string, bool) {
	entries, err := os.ReadDir(d.modulesDir)
	if err != nil {
		report.AddCheck(CheckResult{
			Category: "Module Tree",
			Name:     "exists",
			Status:   StatusFail,
			Message:  fmt.Sprintf("Module directory not readable at %s", d.modulesDir),
			Details:  err.Error(),
			FixHint:  "Create the module directory or point modules_dir at it",
		})
		return nil, false
	}

	var files, worlds []string
	for _, entry := range entries {
		switch {
		case entry.IsDir():
			worlds = append(worlds, entry.Name())
		case strings.HasSuffix(entry.Name(), ".yml"):
			files = append(files, entry.Name())
		}
	}

	if len(files) == 0 {
		report.AddCheck(CheckResult{
			Category: "Module Tree",
			Name:     "modules",
			Status:   StatusFail,
			Message:  fmt.Sprintf("No module files (*.yml) in %s", d.modulesDir),
			FixHint:  "Write at least one module file for the default context",
		})
		return nil, false
	}

	report.AddCheck(CheckResult{
		Category: "Module Tree",
		Name:     "modules",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Found %d module files and %d world directories", len(files), len(worlds)),
	})
	return worlds, true
}

// checkContext merges one context and inspects the result.
func (d *Doctor) checkContext(report *Report, world, dir string) {
	category := "Context " + world

	d.checkModuleKeys(report, category, dir)

	c, err := d.loader.LoadDir(dir, nil)
	if err != nil {
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "merge",
			Status:   StatusFail,
			Message:  mergeFailureMessage(err),
			Details:  err.Error(),
			FixHint:  mergeFixHint(err),
		})
		return
	}

	permissions := 0
	for _, tokens := range c.Permissions {
		permissions += len(tokens)
	}
	report.AddCheck(CheckResult{
		Category: category,
		Name:     "merge",
		Status:   StatusPass,
		Message: fmt.Sprintf("Merged %d groups, %d weights, %d permissions",
			len(c.Groups), len(c.Weights), permissions),
	})

	d.checkRedundancy(report, category, c)
}

// checkModuleKeys reports unrecognized top-level keys file by file.
func (d *Doctor) checkModuleKeys(report *Report, category, dir string) {
	files, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return
	}

	var details []string
	for _, file := range files {
		keys, err := modfile.UnexpectedKeys(file)
		if err != nil {
			// The merge check reports parse failures with full context.
			continue
		}
		for _, key := range keys {
			details = append(details, fmt.Sprintf("%s: %s", filepath.Base(file), key))
		}
	}

	if len(details) > 0 {
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "keys",
			Status:   StatusWarn,
			Message:  fmt.Sprintf("%d unexpected module keys (probable typos)", len(details)),
			Details:  strings.Join(details, "\n"),
			FixHint:  "Module files use only groups, weights and permissions",
		})
		return
	}

	report.AddCheck(CheckResult{
		Category: category,
		Name:     "keys",
		Status:   StatusPass,
		Message:  "No unexpected module keys",
	})
}

// checkRedundancy counts permissions that export would drop because an
// ancestor already asserts them.
func (d *Doctor) checkRedundancy(report *Report, category string, c *mkgroups.Context) {
	var details []string
	for _, group := range mkgroups.NaturalOrder(c.Groups) {
		for _, token := range c.Permissions[group] {
			if donor, ok := modfile.RedundantFrom(c, group, token); ok {
				details = append(details, fmt.Sprintf("%s: %s (inherited from %s)", group, token, donor))
			}
		}
	}

	if len(details) > 0 {
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "redundancy",
			Status:   StatusWarn,
			Message:  fmt.Sprintf("%d redundant permissions already inherited from ancestors", len(details)),
			Details:  strings.Join(details, "\n"),
			FixHint:  "Remove the redundant tokens or let export drop them",
		})
		return
	}

	report.AddCheck(CheckResult{
		Category: category,
		Name:     "redundancy",
		Status:   StatusPass,
		Message:  "No redundant permissions",
	})
}

// mergeFailureMessage names the structural problem behind a merge failure.
func mergeFailureMessage(err error) string {
	switch {
	case mkgroups.IsNameCaseErr(err):
		return "Group names are spelled with inconsistent case"
	case mkgroups.IsConflictingPermissionErr(err):
		return "A group both grants and denies the same node"
	case mkgroups.IsDuplicateWeightErr(err):
		return "A group's weight is declared more than once"
	case mkgroups.IsCyclicInheritanceErr(err):
		return "Group inheritance contains a cycle"
	default:
		return "Modules do not merge"
	}
}

// mergeFixHint suggests a resolution for a merge failure.
func mergeFixHint(err error) string {
	switch {
	case mkgroups.IsNameCaseErr(err):
		return "Pick one spelling for each group across all module files"
	case mkgroups.IsConflictingPermissionErr(err):
		return "Remove one side of the conflict"
	case mkgroups.IsDuplicateWeightErr(err):
		return "Keep a single weight declaration per group"
	case mkgroups.IsCyclicInheritanceErr(err):
		return "Break the parent cycle so inheritance forms a DAG"
	default:
		return "Fix the module files so they load and merge"
	}
}
