package views

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"

	"github.com/tasknest/tasknest-cli/internal/dateutil"
	"github.com/tasknest/tasknest-cli/internal/models"
	"github.com/tasknest/tasknest-cli/internal/richtext"
	"github.com/tasknest/tasknest-cli/internal/tui/format"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace/widget"
)

// homeTasks is the personal task list filtered by the home filter.
func homeTasks(s *workspace.Session) []models.Task {
	st := s.State()
	return dateutil.FilterTasksByMode(st.TasksCache, st.HomeFilter, s.Now())
}

// dayTasks is the per-day task list of the tasks screen.
func dayTasks(s *workspace.Session) []models.Task {
	return s.State().TasksOn(s.State().SelectedDate)
}

// groupTasks is the selected group's task list filtered by the group filter.
func groupTasks(s *workspace.Session) []models.Task {
	st := s.State()
	return dateutil.FilterTasksByMode(st.GroupTasksCache, st.GroupFilter, s.Now())
}

// pagedTasks returns the list behind a page key.
func pagedTasks(s *workspace.Session, page workspace.PageKey) ([]models.Task, bool) {
	switch page {
	case workspace.PageHome:
		return homeTasks(s), true
	case workspace.PageTasks:
		return dayTasks(s), true
	case workspace.PageGroup:
		return groupTasks(s), true
	}
	return nil, false
}

// pageOf clamps the cursor for page and returns the visible tasks with the
// page footer.
func pageOf(s *workspace.Session, page workspace.PageKey, tasks []models.Task) ([]models.Task, string) {
	st := s.State()
	start, end := st.PageSlice(page, len(tasks))
	pages := st.Pages(len(tasks))
	footer := ""
	if pages > 1 {
		footer = fmt.Sprintf("‹ %d / %d ›", st.Page(page), pages)
	}
	return tasks[start:end], footer
}

// taskItems renders tasks as list rows keyed by task id.
func taskItems(s *workspace.Session, tasks []models.Task) []widget.ListItem {
	st := s.State()
	items := make([]widget.ListItem, 0, len(tasks))
	for _, t := range tasks {
		desc := format.Assignees(t)
		if desc == "" {
			desc = richtext.Summary(t.Description)
		}
		items = append(items, widget.ListItem{
			ID:          strconv.FormatInt(t.ID, 10),
			Title:       format.TaskTitle(t),
			Description: widget.OneLine(desc),
			Extra:       format.Deadline(t, st.Locale),
			Marked:      !t.Done && dateutil.IsUrgentByDeadline(t.DeadlineISO(), st.UrgentDays, s.Now()),
			Muted:       !t.Active(),
		})
	}
	return items
}

// financeItems renders personal ledger entries.
func financeItems(s *workspace.Session, entries []models.FinanceItem) []widget.ListItem {
	items := make([]widget.ListItem, 0, len(entries))
	for _, f := range entries {
		items = append(items, widget.ListItem{
			ID:    strconv.FormatInt(f.ID, 10),
			Title: f.Title,
			Extra: format.Signed(f.Amount, s.State().Locale),
		})
	}
	return items
}

// groupFinanceItems renders a shared group's ledger.
func groupFinanceItems(s *workspace.Session, entries []models.GroupFinanceItem) []widget.ListItem {
	items := make([]widget.ListItem, 0, len(entries))
	for _, f := range entries {
		title := f.Description
		if title == "" {
			title = "Без описания"
		}
		items = append(items, widget.ListItem{
			ID:          strconv.FormatInt(f.ID, 10),
			Title:       title,
			Description: format.FinanceMeta(f),
			Extra:       format.KindSigned(f.Kind, f.Amount, s.State().Locale),
		})
	}
	return items
}

// selectedID parses the id of the selected list row.
func selectedID(l *widget.List) (string, bool) {
	item := l.Selected()
	if item == nil || item.ID == "" {
		return "", false
	}
	return item.ID, true
}

func binding(keys, help string) key.Binding {
	return key.NewBinding(key.WithKeys(keys), key.WithHelp(keys, help))
}

func bindingKeys(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// pagerHints are the page keys shared by the paginated lists.
func pagerHints() []key.Binding {
	lk := workspace.DefaultListKeyMap()
	return []key.Binding{lk.PrevPage, lk.NextPage}
}
