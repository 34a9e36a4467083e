// Package main is the entry point for the sc2metrics CLI tool, which extracts
// combat, command and resource tables from StarCraft II replay files.
package main

import "github.com/pable/go-sc2-metrics/cmd"

func main() {
	cmd.Execute()
}
