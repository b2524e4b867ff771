// Package commands implements the CLI commands.
package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tasknest/tasknest-cli/internal/auth"
	"github.com/tasknest/tasknest-cli/internal/config"
	"github.com/tasknest/tasknest-cli/internal/output"
	"github.com/tasknest/tasknest-cli/internal/tui"
)

// NewAuthCmd creates the auth command group.
func NewAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication",
		Long:  "Manage the tasknest session: log in with an access token or host init data, inspect it, or log out.",
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthStatusCmd(),
	)

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to tasknest",
		Long: `Establish a session. Strategies run in order: host init data
(--init-data or TASKNEST_INIT_DATA), the access token from --token or the
prompt, then the token already stored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			token = strings.TrimSpace(token)
			if token == "" && app.Config.InitData == "" && app.Session.Token() == "" {
				if !app.IsInteractive() {
					return output.ErrUsageHint("No credentials to log in with", "Pass --token or --init-data")
				}
				token, err = tui.Secret("Access token")
				if err != nil {
					return err
				}
			}

			result, err := auth.Login(cmd.Context(), app.API, app.Session, auth.Credentials{
				InitData:    app.Config.InitData,
				LaunchToken: token,
			}, app.Log)
			if err != nil {
				if errors.Is(err, auth.ErrNoSession) {
					return output.ErrAuth("Login failed: no strategy produced a valid session")
				}
				return err
			}

			data := map[string]any{
				"strategy":         result.Strategy,
				"default_group_id": result.DefaultGroupID,
			}
			summary := "Logged in"
			if result.User != nil {
				data["user"] = result.User
				summary = fmt.Sprintf("Logged in as %s", result.User.DisplayName())
			}
			return app.OK(data, summary)
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Access token (prompted when omitted)")

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		Long:  "Remove the stored access token for the current base URL.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			if app.IsInteractive() && app.Session.Token() != "" {
				ok, err := tui.Confirm("Log out of "+app.Config.BaseURL+"?", true)
				if err != nil {
					return err
				}
				if !ok {
					return app.OK(map[string]string{"status": "kept"}, "Still logged in")
				}
			}

			if err := app.Session.ClearToken(); err != nil {
				return err
			}

			return app.OK(map[string]string{
				"status": "logged_out",
			}, "Successfully logged out")
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Long:  "Verify the stored token against /api/me and show who it belongs to.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			origin := config.NormalizeBaseURL(app.Config.BaseURL)
			if app.Session.Token() == "" {
				return app.OK(map[string]any{
					"authenticated": false,
					"origin":        origin,
				}, "Not authenticated")
			}

			status := map[string]any{
				"authenticated":    true,
				"origin":           origin,
				"default_group_id": app.Session.DefaultGroupID(),
			}
			if id := app.Session.SelectedGroupID(); id != 0 {
				status["selected_group_id"] = id
			}

			sess, err := app.API.Me(cmd.Context())
			if err != nil {
				if output.IsCode(err, output.CodeAuth) {
					status["authenticated"] = false
					status["error"] = "token rejected"
					return app.OK(status, "Stored token was rejected")
				}
				return err
			}

			summary := "Authenticated"
			if sess.User != nil {
				status["user"] = sess.User
				summary = fmt.Sprintf("Authenticated as %s", sess.User.DisplayName())
			}
			return app.OK(status, summary)
		},
	}
}
