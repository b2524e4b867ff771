package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tasknest/tasknest-cli/internal/appctx"
	"github.com/tasknest/tasknest-cli/internal/completion"
	"github.com/tasknest/tasknest-cli/internal/models"
	"github.com/tasknest/tasknest-cli/internal/names"
	"github.com/tasknest/tasknest-cli/internal/output"
	"github.com/tasknest/tasknest-cli/internal/tui"
	"github.com/tasknest/tasknest-cli/internal/tui/format"
)

// memberFetchLimit bounds concurrent member listings for --members.
const memberFetchLimit = 4

// NewGroupsCmd creates the groups command group.
func NewGroupsCmd() *cobra.Command {
	var withMembers bool

	cmd := &cobra.Command{
		Use:     "groups",
		Aliases: []string{"group"},
		Short:   "List and manage groups",
		Long:    "List the groups you belong to. Listing also refreshes the completion cache.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			if err := requireLogin(app); err != nil {
				return err
			}

			groups, err := app.API.Groups(cmd.Context())
			if err != nil {
				return err
			}
			refreshCompletionCache(app, groups)

			var members [][]models.User
			if withMembers {
				members = make([][]models.User, len(groups))
				g, ctx := errgroup.WithContext(cmd.Context())
				g.SetLimit(memberFetchLimit)
				for i, group := range groups {
					g.Go(func() error {
						users, err := app.API.GroupMembers(ctx, group.ID)
						if err != nil {
							return fmt.Errorf("members of %s: %w", group.Label(), err)
						}
						members[i] = users
						return nil
					})
				}
				if err := g.Wait(); err != nil {
					return err
				}
			}

			personal := app.Session.DefaultGroupID()
			selected := app.Session.SelectedGroupID()
			rows := make([]map[string]any, 0, len(groups))
			for i, g := range groups {
				row := map[string]any{
					"id":      g.ID,
					"name":    g.Label(),
					"members": format.Members(g),
				}
				switch g.ID {
				case personal:
					row["kind"] = "personal"
				case selected:
					row["kind"] = "selected"
				}
				if withMembers {
					row["members"] = format.People(members[i])
				}
				rows = append(rows, row)
			}

			return app.OK(rows, fmt.Sprintf("%d groups", len(groups)))
		},
	}

	cmd.Flags().BoolVar(&withMembers, "members", false, "List member names")

	cmd.AddCommand(
		newGroupsCreateCmd(),
		newGroupsSelectCmd(),
		newGroupsMembersCmd(),
		newGroupsInviteCmd(),
		newGroupsAcceptCmd(),
	)

	return cmd
}

func newGroupsCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a shared group",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			if err := requireLogin(app); err != nil {
				return err
			}

			name := strings.TrimSpace(strings.Join(args, " "))
			if name == "" {
				return output.ErrValidation("Group name is required")
			}

			id, err := app.API.CreateGroup(cmd.Context(), name)
			if err != nil {
				return err
			}
			if groups, err := app.API.Groups(cmd.Context()); err == nil {
				refreshCompletionCache(app, groups)
			}

			return app.OK(map[string]any{"id": id, "name": name}, fmt.Sprintf("Created group %s (#%d)", name, id))
		},
	}
}

func newGroupsSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select [group]",
		Short: "Select the group used by default",
		Long: `Remember a group for commands run without --group. "personal" clears the selection.
Without an argument, an interactive terminal offers a list to pick from.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completion.NewCompleter(nil).GroupCompletion(),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			if err := requireLogin(app); err != nil {
				return err
			}

			resolver := names.NewResolver(app.API)
			var input string
			if len(args) > 0 {
				input = args[0]
			} else {
				if !app.IsInteractive() {
					return output.ErrUsageHint("Group required", "Pass a group name or ID")
				}
				if input, err = pickGroup(cmd, resolver); err != nil {
					return err
				}
			}

			group, err := resolver.ResolveGroup(cmd.Context(), input, app.Session.DefaultGroupID())
			if err != nil {
				return err
			}

			selected := group.ID
			if selected == app.Session.DefaultGroupID() {
				selected = 0
			}
			if err := app.Session.SetSelectedGroupID(selected); err != nil {
				return err
			}

			return app.OK(map[string]any{"id": group.ID, "name": group.Label()}, "Selected "+group.Label())
		},
	}
}

// pickGroup prompts for a group and returns its ID as resolver input.
func pickGroup(cmd *cobra.Command, resolver *names.Resolver) (string, error) {
	groups, err := resolver.Groups(cmd.Context())
	if err != nil {
		return "", err
	}
	if len(groups) == 0 {
		return "", output.ErrUsageHint("No groups to choose from", "Run: tasknest groups create <name>")
	}
	options := make([]tui.SelectOption, len(groups))
	for i, g := range groups {
		options[i] = tui.SelectOption{Value: strconv.FormatInt(g.ID, 10), Label: g.Label()}
	}
	return tui.Select("Default group", options)
}

func newGroupsMembersCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "members <group>",
		Short:             "List group members",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.NewCompleter(nil).GroupCompletion(),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			if err := requireLogin(app); err != nil {
				return err
			}

			groupID, label, err := resolveGroupFlag(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}

			users, err := app.API.GroupMembers(cmd.Context(), groupID)
			if err != nil {
				return err
			}

			rows := make([]map[string]any, 0, len(users))
			for _, u := range users {
				rows = append(rows, map[string]any{
					"id":   u.ID,
					"name": format.PersonHandle(u),
				})
			}
			return app.OK(rows, fmt.Sprintf("%d members of %s", len(users), label))
		},
	}
}

func newGroupsInviteCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "invite <group> <username>",
		Short:             "Invite a user by username",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completion.NewCompleter(nil).GroupCompletion(),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			if err := requireLogin(app); err != nil {
				return err
			}

			username := strings.TrimPrefix(strings.TrimSpace(args[1]), "@")
			if username == "" {
				return output.ErrValidation("Username is required")
			}

			groupID, label, err := resolveGroupFlag(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			if groupID == app.Session.DefaultGroupID() {
				return output.ErrUsage("The personal group cannot have members")
			}

			if err := app.API.InviteByUsername(cmd.Context(), groupID, username); err != nil {
				return err
			}
			return app.OK(map[string]any{"group_id": groupID, "username": username},
				fmt.Sprintf("Invited @%s to %s", username, label))
		},
	}
}

func newGroupsAcceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <token>",
		Short: "Accept a group invite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			if err := requireLogin(app); err != nil {
				return err
			}

			groupID, err := app.API.AcceptInvite(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			if groups, err := app.API.Groups(cmd.Context()); err == nil {
				refreshCompletionCache(app, groups)
			}
			return app.OK(map[string]any{"group_id": groupID}, fmt.Sprintf("Joined group #%d", groupID))
		},
	}
}

// refreshCompletionCache stores groups for tab completion. Failures only
// affect completion, so they are logged.
func refreshCompletionCache(app *appctx.App, groups []models.Group) {
	store := completion.NewStore(app.Config.StateDir)
	refresher := completion.NewRefresher(store, app.API, app.Session.DefaultGroupID())
	if err := refresher.Store(groups); err != nil {
		app.Log.Debug().Err(err).Msg("update completion cache")
	}
}
