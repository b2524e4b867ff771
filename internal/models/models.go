// Package models provides canonical type definitions for tasknest API entities.
// These types are shared by the API client, the CLI commands and the TUI.
package models

import (
	"fmt"
	"strings"
)

// PersonalGroupName is the name the backend gives every user's private group.
// It is never listed among shared groups.
const PersonalGroupName = "Личная"

// User is a tasknest account as returned by /api/me, /api/users and
// group member listings.
type User struct {
	ID        int64  `json:"id"`
	TgID      int64  `json:"tg_id,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// DisplayName returns first name, then username, then "#id".
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.FirstName); name != "" {
		return name
	}
	if name := strings.TrimSpace(u.Username); name != "" {
		return name
	}
	return fmt.Sprintf("#%d", u.ID)
}

// Task is a task record. List endpoints return a subset of the fields;
// GET /api/tasks/:id returns all of them.
type Task struct {
	ID                  int64   `json:"id"`
	Title               string  `json:"title"`
	Description         string  `json:"description,omitempty"`
	Status              string  `json:"status,omitempty"`
	StatusLabel         string  `json:"status_label,omitempty"`
	Done                bool    `json:"done"`
	Urgent              bool    `json:"urgent,omitempty"`
	Deadline            *string `json:"deadline"`
	GroupID             int64   `json:"group_id,omitempty"`
	Responsible         *User   `json:"responsible,omitempty"`
	AssignedBy          *User   `json:"assigned_by,omitempty"`
	AdditionalAssignees []User  `json:"additional_assignees,omitempty"`
}

// DeadlineISO returns the deadline string or "" when the task has none.
func (t Task) DeadlineISO() string {
	if t.Deadline == nil {
		return ""
	}
	return *t.Deadline
}

// Active reports whether the task is neither flagged done nor in the done status.
func (t Task) Active() bool {
	return !t.Done && t.Status != TaskStatusDone
}

// Task statuses understood by the detail editor.
const (
	TaskStatusNew        = "new"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// TaskStatuses lists the statuses in the order the editor cycles through them.
var TaskStatuses = []string{TaskStatusNew, TaskStatusInProgress, TaskStatusDone}

// FinanceItem is an entry of the personal ledger. Amount is signed.
type FinanceItem struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Amount    int64  `json:"amount"`
	CreatedAt string `json:"created_at"`
}

// Finance kinds for shared-group ledgers.
const (
	KindIncome  = "income"
	KindExpense = "expense"
)

// GroupFinanceItem is an entry of a shared group's ledger. Amount is unsigned;
// Kind carries the direction.
type GroupFinanceItem struct {
	ID          int64     `json:"id"`
	Kind        string    `json:"kind"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description,omitempty"`
	Category    *MetaItem `json:"category,omitempty"`
	Method      *MetaItem `json:"method,omitempty"`
	CreatedAt   string    `json:"created_at,omitempty"`
}

// MetaItem is a finance category or payment method.
type MetaItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// FinanceMeta holds a group's categories and payment methods.
type FinanceMeta struct {
	Categories []MetaItem `json:"categories"`
	Methods    []MetaItem `json:"methods"`
}

// Group is a task/finance group the user belongs to.
type Group struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	MembersCount int    `json:"members_count,omitempty"`
}

// Label returns the group name, or "#id" when unnamed.
func (g Group) Label() string {
	if name := strings.TrimSpace(g.Name); name != "" {
		return name
	}
	return fmt.Sprintf("#%d", g.ID)
}

// Shared reports whether the group is not the user's personal group.
func (g Group) Shared() bool {
	return strings.TrimSpace(g.Name) != PersonalGroupName
}

// SharedGroups filters out the personal group, preserving order.
func SharedGroups(groups []Group) []Group {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		if g.Shared() {
			out = append(out, g)
		}
	}
	return out
}

// NotificationSettings are the per-user notification toggles.
type NotificationSettings struct {
	NotifyNewTask     bool `json:"notify_new_task"`
	NotifyTaskUpdates bool `json:"notify_task_updates"`
}

// MetaKind selects one of a group's finance metadata collections.
type MetaKind string

const (
	MetaCategories MetaKind = "categories"
	MetaMethods    MetaKind = "methods"
)
