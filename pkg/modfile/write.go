package modfile

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/NerdNu/mkgroups"
)

// GroupsFile is the reserved module file that carries the exported groups
// and weights sections. Permission stems never collide with it because
// permission nodes are lower-cased.
const GroupsFile = "GROUPS.yml"

// stemModule accumulates the permission tokens of one output module,
// keyed by the stem shared by its tokens.
type stemModule struct {
	groups []string
	perms  map[string][]string
}

// WriteModules writes the context to dir as a set of module files that
// load back to the same context.
//
// GROUPS.yml holds a groups mapping of every group to its parent list plus
// a weights mapping restricted to declared weights. Every other file is
// one <stem>.yml per permission stem (the first dot-segment of the node,
// negation marker stripped) holding a permissions mapping from group to
// tokens. Groups appear in natural order in every mapping and tokens keep
// their sorted stored order, so output is deterministic.
//
// A token granted or denied identically by an ancestor group is dropped as
// redundant, and the omission is logged with the donating ancestor. A
// token whose negation an ancestor asserts is always kept: the module must
// override the ancestor. The directory is created if missing.
func WriteModules(c *mkgroups.Context, dir string, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	ordered := mkgroups.NaturalOrder(c.Groups)

	groupsMap := mappingNode()
	weightsMap := mappingNode()
	for _, name := range ordered {
		appendPair(groupsMap, name, sequenceNode(c.Groups[name]))
		if weight, ok := c.Weight(name); ok {
			appendPair(weightsMap, name, intNode(weight))
		}
	}
	groupsDoc := mappingNode()
	appendPair(groupsDoc, "groups", groupsMap)
	appendPair(groupsDoc, "weights", weightsMap)
	if err := writeYAML(filepath.Join(dir, GroupsFile), groupsDoc); err != nil {
		return err
	}

	// Partition tokens by stem. The stem module is created before the
	// redundancy check so a stem whose every token is redundant still
	// produces its (empty) file.
	stems := make(map[string]*stemModule)
	var stemOrder []string
	for _, group := range ordered {
		for _, token := range c.Permissions[group] {
			node, _ := mkgroups.ParseToken(token)
			stem, _, _ := strings.Cut(node, ".")

			module := stems[stem]
			if module == nil {
				module = &stemModule{perms: make(map[string][]string)}
				stems[stem] = module
				stemOrder = append(stemOrder, stem)
			}

			if donor, ok := RedundantFrom(c, group, token); ok {
				log.Info("dropping redundant permission",
					"node", token, "group", group, "inherited_from", donor)
				continue
			}
			if _, ok := module.perms[group]; !ok {
				module.groups = append(module.groups, group)
			}
			module.perms[group] = append(module.perms[group], token)
		}
	}

	for _, stem := range stemOrder {
		module := stems[stem]
		permsMap := mappingNode()
		for _, group := range module.groups {
			appendPair(permsMap, group, sequenceNode(module.perms[group]))
		}
		doc := mappingNode()
		appendPair(doc, "permissions", permsMap)
		if err := writeYAML(filepath.Join(dir, stem+".yml"), doc); err != nil {
			return err
		}
	}
	return nil
}

// Encode writes the merged context to w as a single module document:
// groups, weights and permissions mappings with groups in natural order.
// Sections with nothing declared are omitted. The output loads back as
// one module declaring the whole context.
func Encode(w io.Writer, c *mkgroups.Context) error {
	ordered := mkgroups.NaturalOrder(c.Groups)

	doc := mappingNode()
	if len(ordered) > 0 {
		groupsMap := mappingNode()
		for _, name := range ordered {
			appendPair(groupsMap, name, sequenceNode(c.Groups[name]))
		}
		appendPair(doc, "groups", groupsMap)
	}

	weightsMap := mappingNode()
	for _, name := range ordered {
		if weight, ok := c.Weight(name); ok {
			appendPair(weightsMap, name, intNode(weight))
		}
	}
	if len(weightsMap.Content) > 0 {
		appendPair(doc, "weights", weightsMap)
	}

	permsMap := mappingNode()
	for _, name := range ordered {
		if len(c.Permissions[name]) > 0 {
			appendPair(permsMap, name, sequenceNode(c.Permissions[name]))
		}
	}
	if len(permsMap.Content) > 0 {
		appendPair(doc, "permissions", permsMap)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding context: %w", err)
	}
	return enc.Close()
}

// RedundantFrom reports the nearest ancestor of group that already asserts
// token, making the group's own copy redundant. An ancestor asserting the
// token's inverse ends the search with no donor: the group's copy
// overrides the ancestor and must be kept.
func RedundantFrom(c *mkgroups.Context, group, token string) (string, bool) {
	node, granted := mkgroups.ParseToken(token)
	inverse := mkgroups.Token(node, !granted)
	for _, ancestor := range mkgroups.Ancestors(group, c.Groups) {
		if hasToken(c.Permissions[ancestor], inverse) {
			return "", false
		}
		if hasToken(c.Permissions[ancestor], token) {
			return ancestor, true
		}
	}
	return "", false
}

func hasToken(tokens []string, token string) bool {
	for _, t := range tokens {
		if t == token {
			return true
		}
	}
	return false
}

// writeYAML encodes one document to path with the 2-space indent module
// files conventionally use.
func writeYAML(path string, doc *yaml.Node) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating module file: %w", err)
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// Mapping keys keep insertion order when the document is built from nodes,
// which is the whole point: group order in emitted files is natural order,
// not the codec's choice.

func mappingNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func sequenceNode(items []string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, item := range items {
		node.Content = append(node.Content, stringNode(item))
	}
	return node
}

func stringNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func intNode(i int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(i)}
}

func appendPair(mapping *yaml.Node, key string, value *yaml.Node) {
	mapping.Content = append(mapping.Content, stringNode(key), value)
}
