package commands_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tasknest/tasknest-cli/internal/cli"
	"github.com/tasknest/tasknest-cli/internal/commands"
)

func TestCatalogMatchesRegisteredCommands(t *testing.T) {
	// Build root command with all subcommands (mirrors cli.Execute)
	root := cli.NewRootCmd()
	root.AddCommand(commands.All()...)

	// Trigger Cobra's auto-addition of help subcommand
	root.InitDefaultHelpCmd()

	registered := make(map[string]bool)
	for _, cmd := range root.Commands() {
		registered[cmd.Name()] = true
	}

	catalog := make(map[string]bool)
	for _, name := range commands.CatalogCommandNames() {
		catalog[name] = true
	}

	var missingFromRegistered []string
	for name := range catalog {
		if !registered[name] {
			missingFromRegistered = append(missingFromRegistered, name)
		}
	}

	var missingFromCatalog []string
	for name := range registered {
		if !catalog[name] {
			missingFromCatalog = append(missingFromCatalog, name)
		}
	}

	sort.Strings(missingFromRegistered)
	sort.Strings(missingFromCatalog)

	assert.Empty(t, missingFromRegistered, "Commands in catalog but not registered: %v", missingFromRegistered)
	assert.Empty(t, missingFromCatalog, "Commands registered but not in catalog: %v", missingFromCatalog)
}

func TestCatalogNamesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, name := range commands.CatalogCommandNames() {
		assert.False(t, seen[name], "duplicate catalog entry %q", name)
		seen[name] = true
	}
}
