package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tasknest/tasknest-cli/internal/api"
	"github.com/tasknest/tasknest-cli/internal/completion"
	"github.com/tasknest/tasknest-cli/internal/dateutil"
	"github.com/tasknest/tasknest-cli/internal/models"
	"github.com/tasknest/tasknest-cli/internal/output"
	"github.com/tasknest/tasknest-cli/internal/tui/format"
)

// now is swapped in tests.
var now = time.Now

// NewTasksCmd creates the tasks command group.
func NewTasksCmd() *cobra.Command {
	var (
		filter  string
		group   string
		jq      string
		showAll bool
	)

	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "List and manage tasks",
		Long: `List the tasks of a group. Without --group the selected group is used,
falling back to the personal group.

Filters: today, tomorrow, 5plus (five or more days out), all.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			if err := requireLogin(app); err != nil {
				return err
			}

			mode, ok := dateutil.ParseFilterMode(filter)
			if !ok {
				return output.ErrUsageHint(
					fmt.Sprintf("Unknown filter %q", filter),
					"Use one of: today, tomorrow, 5plus, all",
				)
			}

			groupID, groupLabel, err := resolveGroupFlag(cmd.Context(), app, group)
			if err != nil {
				return err
			}

			tasks, err := app.API.GroupTasks(cmd.Context(), groupID)
			if err != nil {
				return err
			}

			if !showAll {
				active := tasks[:0:0]
				for _, t := range tasks {
					if t.Active() {
						active = append(active, t)
					}
				}
				tasks = active
			}
			tasks = dateutil.FilterTasksByMode(tasks, mode, now())

			summary := fmt.Sprintf("%d tasks in %s (%s)", len(tasks), groupLabel, mode)
			if jq != "" {
				result, err := applyJQ(cmd.Context(), tasks, jq)
				if err != nil {
					return err
				}
				return app.OK(result, summary)
			}

			locale := dateutil.ParseLocale(app.Config.Locale)
			return app.OK(taskRows(tasks, locale, app.Config.UrgentDays), summary)
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", string(dateutil.FilterAll), "Day filter: today, tomorrow, 5plus, all")
	cmd.Flags().StringVarP(&group, "group", "g", "", "Group name or ID")
	cmd.Flags().StringVar(&jq, "jq", "", "jq expression applied to the task list")
	cmd.Flags().BoolVarP(&showAll, "all", "a", false, "Include completed tasks")

	modes := make([]string, len(dateutil.FilterModes))
	for i, m := range dateutil.FilterModes {
		modes[i] = string(m)
	}
	_ = cmd.RegisterFlagCompletionFunc("filter", completion.StaticCompletion(modes...))
	_ = cmd.RegisterFlagCompletionFunc("group", completion.NewCompleter(nil).GroupCompletion())

	cmd.AddCommand(
		newTasksShowCmd(),
		newTasksCreateCmd(),
		newTasksDoneCmd(),
	)

	return cmd
}

func newTasksShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			if err := requireLogin(app); err != nil {
				return err
			}

			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			task, err := app.API.Task(cmd.Context(), id)
			if err != nil {
				return err
			}
			return app.OK(task, format.TaskTitle(*task))
		},
	}
}

func newTasksCreateCmd() *cobra.Command {
	var (
		group       string
		description string
		deadline    string
	)

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a task",
		Long: `Create a task in a group. --deadline accepts YYYY-MM-DD or phrases such
as "завтра", "+3", "friday" or "eom".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			if err := requireLogin(app); err != nil {
				return err
			}

			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return output.ErrValidation("Task title is required")
			}

			body := api.NewTask{
				Title:         title,
				Description:   strings.TrimSpace(description),
				ResponsibleID: app.Session.UserID(),
			}
			if deadline != "" {
				iso, ok := dateutil.ParseDeadline(deadline, now())
				if !ok {
					return output.ErrValidation(fmt.Sprintf("Cannot understand deadline %q", deadline))
				}
				body.Deadline = &iso
			}

			groupID, groupLabel, err := resolveGroupFlag(cmd.Context(), app, group)
			if err != nil {
				return err
			}

			id, err := app.API.CreateTask(cmd.Context(), groupID, body)
			if err != nil {
				return err
			}

			return app.OK(map[string]any{
				"id":       id,
				"title":    title,
				"group_id": groupID,
				"deadline": body.Deadline,
			}, fmt.Sprintf("Created task #%d in %s", id, groupLabel))
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "Group name or ID")
	cmd.Flags().StringVarP(&description, "description", "m", "", "Task description")
	cmd.Flags().StringVar(&deadline, "deadline", "", "Deadline (YYYY-MM-DD or a phrase)")
	_ = cmd.RegisterFlagCompletionFunc("group", completion.NewCompleter(nil).GroupCompletion())

	return cmd
}

func newTasksDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>...",
		Short: "Mark tasks done",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			if err := requireLogin(app); err != nil {
				return err
			}

			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := parseTaskID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			for _, id := range ids {
				if err := app.API.MarkTaskDone(cmd.Context(), id); err != nil {
					return fmt.Errorf("task #%d: %w", id, err)
				}
			}

			return app.OK(map[string]any{"done": ids}, fmt.Sprintf("Completed %d task(s)", len(ids)))
		},
	}
}

func parseTaskID(s string) (int64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if !isNumeric(s) {
		return 0, output.ErrUsage(fmt.Sprintf("Invalid task ID %q", s))
	}
	return strconv.ParseInt(s, 10, 64)
}

// taskRows flattens tasks into table rows with localized deadlines.
func taskRows(tasks []models.Task, locale dateutil.Locale, urgentDays int) []map[string]any {
	today := now()
	rows := make([]map[string]any, 0, len(tasks))
	for _, t := range tasks {
		row := map[string]any{
			"id":       t.ID,
			"title":    format.TaskTitle(t),
			"deadline": format.Deadline(t, locale),
			"status":   format.Status(t),
		}
		if who := format.Assignees(t); who != "" {
			row["assignees"] = who
		}
		if t.Urgent || dateutil.IsUrgentByDeadline(t.DeadlineISO(), urgentDays, today) {
			row["urgent"] = true
		}
		rows = append(rows, row)
	}
	return rows
}
