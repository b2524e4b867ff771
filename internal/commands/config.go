package commands

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/tasknest/tasknest-cli/internal/completion"
	"github.com/tasknest/tasknest-cli/internal/config"
	"github.com/tasknest/tasknest-cli/internal/output"
)

// NewConfigCmd creates the config command for managing configuration.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage tasknest configuration.

Configuration is loaded from multiple sources with the following precedence:
  flags > env > .env > local > global > system > defaults

Config locations:
  - System: /etc/tasknest/config.yaml
  - Global: ~/.config/tasknest/config.yaml
  - Local:  ./.tasknest.yaml

Every key can also be set with TASKNEST_<KEY>, e.g. TASKNEST_LOCALE=en.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigSetCmd(),
		newConfigUnsetCmd(),
		newConfigPathCmd(),
	)

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long:  "Display the current effective configuration with source information.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}
}

func runConfigShow(cmd *cobra.Command) error {
	app, err := requireApp(cmd)
	if err != nil {
		return err
	}

	rows := make([]map[string]any, 0, len(config.Keys))
	for _, key := range config.Keys {
		rows = append(rows, map[string]any{
			"name":   key,
			"value":  app.Config.Value(key),
			"source": app.Config.SourceOf(key),
		})
	}

	return app.OK(rows, "Effective configuration")
}

func newConfigSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a value in the global config",
		Args:  cobra.ExactArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return completion.StaticCompletion(config.Keys...)(cmd, args, toComplete)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			key, value := args[0], args[1]
			if !slices.Contains(config.Keys, key) {
				return unknownKeyError(key)
			}

			path := config.GlobalConfigPath()
			if err := config.SetFileValue(path, key, value); err != nil {
				return output.ErrValidation(err.Error())
			}

			return app.OK(map[string]any{
				"key":   key,
				"value": value,
				"path":  path,
			}, fmt.Sprintf("Set %s in %s", key, path))
		},
	}
	return cmd
}

func newConfigUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "unset <key>",
		Short:             "Remove a value from the global config",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.StaticCompletion(config.Keys...),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			key := args[0]
			if !slices.Contains(config.Keys, key) {
				return unknownKeyError(key)
			}

			path := config.GlobalConfigPath()
			removed, err := config.UnsetFileValue(path, key)
			if err != nil {
				return err
			}

			summary := fmt.Sprintf("Removed %s from %s", key, path)
			if !removed {
				summary = fmt.Sprintf("%s was not set in %s", key, path)
			}
			return app.OK(map[string]any{"key": key, "removed": removed}, summary)
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config and state locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			return app.OK(map[string]string{
				"config":      config.GlobalConfigPath(),
				"state_dir":   app.Config.StateDir,
				"log_file":    app.Config.LogFile,
				"session_dir": app.SessionDir,
			}, "Config locations")
		},
	}
}

func unknownKeyError(key string) error {
	return output.ErrUsageHint(
		fmt.Sprintf("Unknown config key %q", key),
		"Run: tasknest config show",
	)
}
