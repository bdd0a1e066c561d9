// Package modfile reads and writes YAML permission module files.
//
// A module file declares fragments of a permission context under optional
// groups, weights and permissions top-level keys. Loading merges every
// selected module of a directory into one mkgroups.Context; writing
// partitions a context back into GROUPS.yml plus one module file per
// permission stem.
//
// # Basic Usage
//
// Load every module of the default world:
//
//	loader := modfile.Loader{Log: logger}
//	ctx, err := loader.LoadDir("modules", nil)
//
// Load the default world plus one named world:
//
//	cm, err := loader.LoadContextMap("world_nether", "modules", nil)
//
// # Dependency Isolation
//
// modfile is the only package that imports the YAML codec and the glob
// matcher. Consumers receive mkgroups core types, which have no external
// dependencies.
package modfile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"github.com/NerdNu/mkgroups"
)

// moduleKeys are the recognized top-level keys of a module file. Any other
// key is reported as a possible typo and otherwise ignored.
var moduleKeys = map[string]bool{
	"groups":      true,
	"weights":     true,
	"permissions": true,
}

// Loader reads module files into merged permission contexts.
type Loader struct {
	// Log receives load-time diagnostics: unexpected module keys and
	// per-file debug traces. Nil falls back to slog.Default().
	Log *slog.Logger
}

func (l *Loader) logger() *slog.Logger {
	if l.Log != nil {
		return l.Log
	}
	return slog.Default()
}

// LoadDir loads module files from dir and merges them into a single
// Context.
//
// With an empty names list, every *.yml file in dir is loaded in sorted
// order. Otherwise names selects the modules to load, in the order given:
// each name may omit the .yml extension, and a name containing glob
// metacharacters (*, ?, [ or {) selects every matching module by its base
// name, expanding in sorted order. A name or pattern that selects nothing
// is an error. A module selected twice is loaded once.
func (l *Loader) LoadDir(dir string, names []string) (*mkgroups.Context, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("module directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("module directory %q is not a directory", dir)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("listing module files in %q: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .yml module files in %q", dir)
	}
	sort.Strings(files)

	if len(names) > 0 {
		files, err = selectModules(files, names)
		if err != nil {
			return nil, err
		}
	}

	modules := make([]mkgroups.Module, 0, len(files))
	for _, file := range files {
		module, err := l.loadFile(file)
		if err != nil {
			return nil, err
		}
		modules = append(modules, module)
	}
	return mkgroups.Merge(modules)
}

// LoadContextMap loads the contexts named by contextName from the module
// directory tree rooted at dir.
//
// The default context at the top level of dir is always loaded, because
// minimizing a world against it requires it. AllContexts additionally
// loads every subdirectory of dir as a world. Any other contextName loads
// that one subdirectory; naming a subdirectory that does not exist is an
// ErrMissingContext.
func (l *Loader) LoadContextMap(contextName, dir string, names []string) (mkgroups.ContextMap, error) {
	def, err := l.LoadDir(dir, names)
	if err != nil {
		return nil, err
	}
	contexts := mkgroups.ContextMap{mkgroups.DefaultContext: def}

	switch contextName {
	case mkgroups.DefaultContext:

	case mkgroups.AllContexts:
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("listing module directory %q: %w", dir, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			world := entry.Name()
			l.logger().Debug("loading world", "world", world)
			c, err := l.LoadDir(filepath.Join(dir, world), names)
			if err != nil {
				return nil, err
			}
			contexts[world] = c
		}

	default:
		sub := filepath.Join(dir, contextName)
		info, err := os.Stat(sub)
		if err != nil || !info.IsDir() {
			return nil, fmt.Errorf("%w: %q is not a sub-directory of module directory %q",
				mkgroups.ErrMissingContext, contextName, dir)
		}
		c, err := l.LoadDir(sub, names)
		if err != nil {
			return nil, err
		}
		contexts[contextName] = c
	}
	return contexts, nil
}

// loadFile decodes one module file. Empty files and files holding only a
// null document decode to a zero Module, which merges as a no-op.
func (l *Loader) loadFile(path string) (mkgroups.Module, error) {
	var module mkgroups.Module

	data, err := os.ReadFile(path)
	if err != nil {
		return module, fmt.Errorf("reading module file: %w", err)
	}
	l.logger().Debug("loading module file", "file", path)

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return module, fmt.Errorf("parsing module file %s: %w", path, err)
	}
	if len(doc.Content) == 0 {
		return module, nil
	}

	if unexpected := unexpectedKeys(doc.Content[0]); len(unexpected) > 0 {
		l.logger().Warn("unexpected keys in module file",
			"file", path, "keys", strings.Join(unexpected, " "))
	}
	if err := doc.Decode(&module); err != nil {
		return module, fmt.Errorf("parsing module file %s: %w", path, err)
	}
	return module, nil
}

// selectModules resolves module names and glob patterns against the
// discovered file list. Selection preserves the order names were given;
// a file matched more than once keeps its first position.
func selectModules(files, names []string) ([]string, error) {
	byBase := make(map[string]string, len(files))
	bases := make([]string, 0, len(files))
	for _, file := range files {
		base := strings.TrimSuffix(filepath.Base(file), ".yml")
		byBase[base] = file
		bases = append(bases, base)
	}

	seen := make(map[string]bool, len(files))
	selected := make([]string, 0, len(names))
	for _, name := range names {
		want := strings.TrimSuffix(name, ".yml")
		if !strings.ContainsAny(want, "*?[{") {
			file, ok := byBase[want]
			if !ok {
				return nil, fmt.Errorf("no module %q in the module directory", name)
			}
			if !seen[file] {
				seen[file] = true
				selected = append(selected, file)
			}
			continue
		}

		g, err := glob.Compile(want)
		if err != nil {
			return nil, fmt.Errorf("module pattern %q: %w", name, err)
		}
		matched := false
		for _, base := range bases {
			if !g.Match(base) {
				continue
			}
			matched = true
			file := byBase[base]
			if !seen[file] {
				seen[file] = true
				selected = append(selected, file)
			}
		}
		if !matched {
			return nil, fmt.Errorf("module pattern %q matches no module", name)
		}
	}
	return selected, nil
}

// UnexpectedKeys reports the unrecognized top-level keys of the module
// file at path, in file order. The doctor command uses it to surface
// probable typos file by file.
func UnexpectedKeys(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading module file: %w", err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing module file %s: %w", path, err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	return unexpectedKeys(doc.Content[0]), nil
}

// unexpectedKeys returns the unrecognized top-level keys of a module
// document, in file order.
func unexpectedKeys(mapping *yaml.Node) []string {
	if mapping.Kind != yaml.MappingNode {
		return nil
	}
	var keys []string
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if key := mapping.Content[i].Value; !moduleKeys[key] {
			keys = append(keys, key)
		}
	}
	return keys
}
