// Package main provides the mkgroups CLI for reconciling Minecraft
// permission plugins with declarative YAML module trees.
//
// The CLI supports:
//   - apply: push merged permissions to a server's permission plugin
//   - delete: tear down merged permissions on a server
//   - list: print the merged context of one world
//   - export: write a merged context back out as module files
//   - convert: turn a bPermissions groups.yml into module files
//   - doctor: run health checks on a module tree
//
// Commands that talk to a server print every plugin command they would
// send and only deliver them through mark2 when -u/--update is given.
package main

func main() {
	Execute()
}
