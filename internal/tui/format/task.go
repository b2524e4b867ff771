package format

import (
	"fmt"
	"strings"

	"github.com/tasknest/tasknest-cli/internal/dateutil"
	"github.com/tasknest/tasknest-cli/internal/models"
)

// Deadline renders "до <date>" or "без срока".
func Deadline(t models.Task, l dateutil.Locale) string {
	iso := t.DeadlineISO()
	if iso == "" {
		if l == dateutil.LocaleEN {
			return "no deadline"
		}
		return "без срока"
	}
	day := dateutil.DayKey(iso)
	if l == dateutil.LocaleEN {
		return "due " + dateutil.PrettyLabel(day, l)
	}
	return "до " + dateutil.PrettyLabel(day, l)
}

// Status returns the server's status label, falling back to the raw status.
func Status(t models.Task) string {
	if t.StatusLabel != "" {
		return t.StatusLabel
	}
	switch t.Status {
	case models.TaskStatusNew:
		return "Новая"
	case models.TaskStatusInProgress:
		return "В работе"
	case models.TaskStatusDone:
		return "Готово"
	}
	return t.Status
}

// Assignees lists the responsible person followed by additional assignees.
func Assignees(t models.Task) string {
	var users []models.User
	if t.Responsible != nil {
		users = append(users, *t.Responsible)
	}
	for _, u := range t.AdditionalAssignees {
		if t.Responsible != nil && u.ID == t.Responsible.ID {
			continue
		}
		users = append(users, u)
	}
	return People(users)
}

// TaskTitle returns the title, or "#id" for untitled tasks.
func TaskTitle(t models.Task) string {
	if title := strings.TrimSpace(t.Title); title != "" {
		return title
	}
	return fmt.Sprintf("#%d", t.ID)
}

// FinanceMeta renders "category • method" for a group ledger item, using
// the placeholder for a missing side.
func FinanceMeta(item models.GroupFinanceItem) string {
	cat, met := Placeholder, Placeholder
	if item.Category != nil && item.Category.Name != "" {
		cat = item.Category.Name
	}
	if item.Method != nil && item.Method.Name != "" {
		met = item.Method.Name
	}
	return cat + " • " + met
}

// Members renders a group's member count, e.g. "3 участн.".
func Members(g models.Group) string {
	return fmt.Sprintf("%d участн.", g.MembersCount)
}
