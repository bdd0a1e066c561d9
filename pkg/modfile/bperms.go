package modfile

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/NerdNu/mkgroups"
)

// bpermsFile is the subset of a bPermissions groups.yml this tool reads.
type bpermsFile struct {
	Groups map[string]bpermsGroup `yaml:"groups"`
}

type bpermsGroup struct {
	Permissions []string `yaml:"permissions"`
	Groups      []string `yaml:"groups"`
}

// LoadBPermissions reads a bPermissions groups.yml and converts it to a
// Context: each group's groups list becomes its parents and its permission
// list is lower-cased, de-duplicated and sorted. bPermissions has no
// weight concept, so the result declares none. Feeding the result to
// WriteModules converts a live bPermissions configuration into module
// files.
func LoadBPermissions(r io.Reader) (*mkgroups.Context, error) {
	var file bpermsFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return mkgroups.NewContext(nil, nil, nil)
		}
		return nil, fmt.Errorf("parsing bPermissions groups: %w", err)
	}

	groups := make(map[string][]string, len(file.Groups))
	permissions := make(map[string][]string, len(file.Groups))
	for name, group := range file.Groups {
		groups[name] = group.Groups
		permissions[name] = mkgroups.MergePermissions(nil, group.Permissions)
	}
	return mkgroups.NewContext(groups, nil, permissions)
}
