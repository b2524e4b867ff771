package workspace

import (
	"context"
	"time"

	"github.com/tasknest/tasknest-cli/internal/api"
	"github.com/tasknest/tasknest-cli/internal/dateutil"
	"github.com/tasknest/tasknest-cli/internal/models"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace/data"
)

// DefaultPageSize is the number of list rows per page.
const DefaultPageSize = 5

// TopFilter selects what the home day summary and calendar markers show.
type TopFilter string

const (
	TopTasks   TopFilter = "tasks"
	TopFinance TopFilter = "finance"
	TopAll     TopFilter = "all"
)

// TopFilters lists the top filters in display order.
var TopFilters = []TopFilter{TopTasks, TopFinance, TopAll}

// ShowsTasks reports whether task data is part of the filter.
func (f TopFilter) ShowsTasks() bool { return f == TopTasks || f == TopAll }

// ShowsFinance reports whether finance data is part of the filter.
func (f TopFilter) ShowsFinance() bool { return f == TopFinance || f == TopAll }

// CommonTab is the active tab of the shared-group screen.
type CommonTab string

const (
	TabTasks   CommonTab = "tasks"
	TabFinance CommonTab = "finance"
)

// ManageMode selects which finance metadata the manage screen edits.
type ManageMode string

const (
	ManageCategories ManageMode = "categories"
	ManageMethods    ManageMode = "methods"
)

// Kind maps the mode onto the API collection.
func (m ManageMode) Kind() models.MetaKind {
	if m == ManageMethods {
		return models.MetaMethods
	}
	return models.MetaCategories
}

// AddType is the kind of record the add screen creates.
type AddType string

const (
	AddTask    AddType = "task"
	AddExpense AddType = "expense"
	AddIncome  AddType = "income"
)

// AddTypes lists the add types in display order.
var AddTypes = []AddType{AddTask, AddExpense, AddIncome}

// ModalID names an open modal. The zero value means none is open.
type ModalID string

const (
	ModalNone        ModalID = ""
	ModalCalendar    ModalID = "calendar"
	ModalCreateGroup ModalID = "create_group"
	ModalInvite      ModalID = "invite"
	ModalManageInput ModalID = "manage_input"
)

// PageKey identifies one of the paginated lists.
type PageKey string

const (
	PageHome  PageKey = "home"
	PageTasks PageKey = "tasks"
	PageGroup PageKey = "group"
)

// State is the single application state container. It is owned by the
// Session and mutated only on the event loop goroutine.
type State struct {
	PageSize int

	HomePage       int
	TasksPage      int
	GroupTasksPage int

	TasksCache      []models.Task
	GroupTasksCache []models.Task
	FinanceCache    []models.FinanceItem

	HomeFilter   dateutil.FilterMode
	GroupFilter  dateutil.FilterMode
	SelectedDate string
	TopFilter    TopFilter

	Groups          []models.Group
	SelectedGroupID int64
	CommonTab       CommonTab
	LastInvite      string

	// Members and FinanceMeta are only written through GetOrFetch and
	// Invalidate.
	Members     *data.KeyedCache[int64, []models.User]
	FinanceMeta *data.KeyedCache[int64, models.FinanceMeta]
	AllUsers    []models.User

	CurrentTaskID int64
	CurrentTask   *models.Task
	ManageMode    ManageMode

	User          *models.User
	Balance       *int64
	GroupFinance  *api.GroupFinance
	Notifications *models.NotificationSettings

	Modal         ModalID
	CalendarYear  int
	CalendarMonth time.Month
	AddType       AddType
	AddInGroup    bool

	UrgentDays int
	Locale     dateutil.Locale
}

// CacheFetchers supply the fetch side of the keyed caches.
type CacheFetchers struct {
	Members     data.FetchFunc[int64, []models.User]
	FinanceMeta data.FetchFunc[int64, models.FinanceMeta]
}

// NewState returns the initial state for the day containing now.
func NewState(now time.Time, fetchers CacheFetchers) *State {
	if fetchers.Members == nil {
		fetchers.Members = func(context.Context, int64) ([]models.User, error) { return nil, nil }
	}
	if fetchers.FinanceMeta == nil {
		fetchers.FinanceMeta = func(context.Context, int64) (models.FinanceMeta, error) {
			return models.FinanceMeta{}, nil
		}
	}
	today := dateutil.Today(now)
	return &State{
		PageSize:       DefaultPageSize,
		HomePage:       1,
		TasksPage:      1,
		GroupTasksPage: 1,
		HomeFilter:     dateutil.FilterToday,
		GroupFilter:    dateutil.FilterToday,
		SelectedDate:   today,
		TopFilter:      TopTasks,
		CommonTab:      TabTasks,
		Members:        data.NewKeyedCache(fetchers.Members),
		FinanceMeta:    data.NewKeyedCache(fetchers.FinanceMeta),
		ManageMode:     ManageCategories,
		CalendarYear:   now.Year(),
		CalendarMonth:  now.Month(),
		AddType:        AddTask,
		UrgentDays:     3,
		Locale:         dateutil.LocaleRU,
	}
}

// Page returns the 1-based page cursor for key.
func (s *State) Page(key PageKey) int {
	switch key {
	case PageHome:
		return s.HomePage
	case PageTasks:
		return s.TasksPage
	case PageGroup:
		return s.GroupTasksPage
	}
	return 1
}

// SetPage stores a page cursor without clamping it.
func (s *State) SetPage(key PageKey, page int) {
	switch key {
	case PageHome:
		s.HomePage = page
	case PageTasks:
		s.TasksPage = page
	case PageGroup:
		s.GroupTasksPage = page
	}
}

// ClampPage clamps the cursor for key into [1, pages(total)] and writes the
// result back. An empty list still has one page.
func (s *State) ClampPage(key PageKey, total int) int {
	size := s.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	pages := max(1, (total+size-1)/size)
	p := min(max(1, s.Page(key)), pages)
	s.SetPage(key, p)
	return p
}

// PageSlice clamps the cursor for key and returns the bounds of the
// visible window of a list of length total.
func (s *State) PageSlice(key PageKey, total int) (start, end int) {
	p := s.ClampPage(key, total)
	size := s.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	start = (p - 1) * size
	end = min(start+size, total)
	if start > end {
		start = end
	}
	return start, end
}

// Pages returns the page count for a list of length total.
func (s *State) Pages(total int) int {
	size := s.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	return max(1, (total+size-1)/size)
}

// SelectedGroup returns the selected shared group, if it is loaded.
func (s *State) SelectedGroup() (models.Group, bool) {
	for _, g := range s.Groups {
		if g.ID == s.SelectedGroupID {
			return g, true
		}
	}
	return models.Group{}, false
}

// SharedGroups returns the loaded groups without the personal group.
func (s *State) SharedGroups() []models.Group {
	return models.SharedGroups(s.Groups)
}

// SelectGroup makes id the selected group, resetting the group page and
// dropping every cached member list and finance metadata set.
func (s *State) SelectGroup(id int64) {
	s.Members.Clear()
	s.FinanceMeta.Clear()
	s.SelectedGroupID = id
	s.GroupTasksPage = 1
	s.GroupTasksCache = nil
	s.GroupFinance = nil
	s.LastInvite = ""
}

// UrgentCount counts undone tasks whose deadline is within the urgency window.
func (s *State) UrgentCount(tasks []models.Task, now time.Time) int {
	n := 0
	for _, t := range tasks {
		if !t.Done && dateutil.IsUrgentByDeadline(t.DeadlineISO(), s.UrgentDays, now) {
			n++
		}
	}
	return n
}

// TasksOn returns active tasks whose deadline falls on iso.
func (s *State) TasksOn(iso string) []models.Task {
	var out []models.Task
	for _, t := range s.TasksCache {
		if t.Active() && t.DeadlineISO() != "" && dateutil.DayKey(t.DeadlineISO()) == iso {
			out = append(out, t)
		}
	}
	return out
}

// FinanceOn returns personal ledger entries created on iso.
func (s *State) FinanceOn(iso string) []models.FinanceItem {
	var out []models.FinanceItem
	for _, f := range s.FinanceCache {
		if dateutil.DayKey(f.CreatedAt) == iso {
			out = append(out, f)
		}
	}
	return out
}

// CalendarMarkers returns the set of days in the displayed month that carry
// data for the current top filter.
func (s *State) CalendarMarkers() map[string]bool {
	marks := make(map[string]bool)
	if s.TopFilter.ShowsTasks() {
		for _, t := range s.TasksCache {
			if t.Active() && t.DeadlineISO() != "" {
				marks[dateutil.DayKey(t.DeadlineISO())] = true
			}
		}
	}
	if s.TopFilter.ShowsFinance() {
		for _, f := range s.FinanceCache {
			if f.CreatedAt != "" {
				marks[dateutil.DayKey(f.CreatedAt)] = true
			}
		}
	}
	return marks
}

// SelectDate moves the selected date and keeps the calendar on its month.
func (s *State) SelectDate(iso string) {
	s.SelectedDate = iso
	s.TasksPage = 1
	if t, ok := dateutil.ParseISODate(iso); ok {
		s.CalendarYear, s.CalendarMonth = t.Year(), t.Month()
	}
}

// Logout forgets every per-user value while keeping preferences.
func (s *State) Logout() {
	s.User = nil
	s.TasksCache = nil
	s.GroupTasksCache = nil
	s.FinanceCache = nil
	s.Groups = nil
	s.SelectedGroupID = 0
	s.AllUsers = nil
	s.LastInvite = ""
	s.CurrentTaskID = 0
	s.CurrentTask = nil
	s.Balance = nil
	s.GroupFinance = nil
	s.Notifications = nil
	s.Modal = ModalNone
	s.Members.Clear()
	s.FinanceMeta.Clear()
	s.HomePage, s.TasksPage, s.GroupTasksPage = 1, 1, 1
}
