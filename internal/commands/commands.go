package commands

import (
	"github.com/spf13/cobra"
)

// CommandInfo describes a CLI command.
type CommandInfo struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Actions     []string `json:"actions,omitempty"`
}

// CommandCategory groups commands by category.
type CommandCategory struct {
	Name     string        `json:"name"`
	Commands []CommandInfo `json:"commands"`
}

// commandCategories returns all command categories for the catalog.
func commandCategories() []CommandCategory {
	return []CommandCategory{
		{
			Name: "Workspace",
			Commands: []CommandInfo{
				{Name: "tui", Category: "workspace", Description: "Launch the tasknest workspace"},
			},
		},
		{
			Name: "Core Commands",
			Commands: []CommandInfo{
				{Name: "tasks", Category: "core", Description: "List and manage tasks", Actions: []string{"show", "create", "done"}},
				{Name: "groups", Category: "core", Description: "List and manage groups", Actions: []string{"create", "select", "members", "invite", "accept"}},
			},
		},
		{
			Name: "Auth & Config",
			Commands: []CommandInfo{
				{Name: "auth", Category: "auth", Description: "Log in and out", Actions: []string{"login", "logout", "status"}},
				{Name: "config", Category: "auth", Description: "Manage configuration", Actions: []string{"show", "set", "unset", "path"}},
				{Name: "doctor", Category: "auth", Description: "Check CLI health and diagnose issues"},
			},
		},
		{
			Name: "Additional Commands",
			Commands: []CommandInfo{
				{Name: "api", Category: "additional", Description: "Raw API access"},
				{Name: "commands", Category: "additional", Description: "List all commands"},
				{Name: "completion", Category: "additional", Description: "Generate shell completions", Actions: []string{"bash", "zsh", "fish", "powershell", "refresh", "status"}},
				{Name: "help", Category: "additional", Description: "Show help"},
				{Name: "version", Category: "additional", Description: "Show version"},
			},
		},
	}
}

// CatalogCommandNames returns all command names from the catalog.
// Used by tests to verify catalog matches registered commands.
func CatalogCommandNames() []string {
	categories := commandCategories()
	total := 0
	for _, cat := range categories {
		total += len(cat.Commands)
	}
	names := make([]string, 0, total)
	for _, cat := range categories {
		for _, cmd := range cat.Commands {
			names = append(names, cmd.Name)
		}
	}
	return names
}

// NewCommandsCmd creates the commands listing command.
func NewCommandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "commands",
		Aliases: []string{"cmds"},
		Short:   "List all available commands",
		Long:    "List all available tasknest commands organized by category.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			return app.OK(commandCategories(), "All available tasknest commands")
		},
	}
}

// All returns every top-level command, in catalog order.
func All() []*cobra.Command {
	return []*cobra.Command{
		NewTUICmd(),
		NewTasksCmd(),
		NewGroupsCmd(),
		NewAuthCmd(),
		NewConfigCmd(),
		NewDoctorCmd(),
		NewAPICmd(),
		NewCommandsCmd(),
		NewCompletionCmd(),
		NewVersionCmd(),
	}
}
