package workspace

import (
	"context"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tasknest/tasknest-cli/internal/models"
)

// Loaders shared by several screens. Each one fetches off the loop and
// writes the result into State from its continuation.

// LoadGroups fetches the user's groups and picks the selected shared
// group: the persisted selection when it is still a shared group, else the
// first shared group.
func LoadGroups(s *Session) tea.Cmd {
	return LoadGroupsThen(s, nil)
}

// LoadGroupsThen is LoadGroups followed by next once the groups are in
// State. next may be nil.
func LoadGroupsThen(s *Session, next func(s *Session) tea.Cmd) tea.Cmd {
	return Async(s, "load.groups", func(ctx context.Context) (Continuation, error) {
		groups, err := s.API().Groups(ctx)
		if err != nil {
			return nil, err
		}
		return func(s *Session) (tea.Cmd, error) {
			st := s.State()
			st.Groups = groups
			shared := st.SharedGroups()
			selected := pickGroup(shared, s.Store().SelectedGroupID())
			if selected != st.SelectedGroupID {
				st.SelectGroup(selected)
			}
			if selected != 0 {
				if err := s.Store().SetSelectedGroupID(selected); err != nil {
					s.Log().Warn().Err(err).Msg("persist selected group")
				}
			}
			if next == nil {
				return nil, nil
			}
			return next(s), nil
		}, nil
	})
}

func pickGroup(shared []models.Group, stored int64) int64 {
	if len(shared) == 0 {
		return 0
	}
	if stored != 0 && slices.ContainsFunc(shared, func(g models.Group) bool { return g.ID == stored }) {
		return stored
	}
	return shared[0].ID
}

// LoadPersonalTasks fills the personal task cache from the default group.
func LoadPersonalTasks(s *Session) tea.Cmd {
	groupID := s.Store().DefaultGroupID()
	if groupID == 0 {
		return nil
	}
	return Async(s, "load.tasks", func(ctx context.Context) (Continuation, error) {
		tasks, err := s.API().GroupTasks(ctx, groupID)
		if err != nil {
			return nil, err
		}
		return Then(func(s *Session) { s.State().TasksCache = tasks }), nil
	})
}

// LoadFinance fills the personal ledger cache.
func LoadFinance(s *Session) tea.Cmd {
	return Async(s, "load.finance", func(ctx context.Context) (Continuation, error) {
		items, err := s.API().Finance(ctx)
		if err != nil {
			return nil, err
		}
		return Then(func(s *Session) { s.State().FinanceCache = items }), nil
	})
}

// LoadBalance fetches the personal balance. A failure leaves it unknown
// instead of raising an alert.
func LoadBalance(s *Session) tea.Cmd {
	return Async(s, "load.balance", func(ctx context.Context) (Continuation, error) {
		balance, err := s.API().Balance(ctx)
		if err != nil {
			s.Log().Debug().Err(err).Msg("balance unavailable")
			return Then(func(s *Session) { s.State().Balance = nil }), nil
		}
		return Then(func(s *Session) { s.State().Balance = &balance }), nil
	})
}

// LoadGroupTasks fills the shared group task cache for the selected group.
func LoadGroupTasks(s *Session) tea.Cmd {
	groupID := s.State().SelectedGroupID
	if groupID == 0 {
		return nil
	}
	return Async(s, "load.groupTasks", func(ctx context.Context) (Continuation, error) {
		tasks, err := s.API().GroupTasks(ctx, groupID)
		if err != nil {
			return nil, err
		}
		return Then(func(s *Session) {
			// Results for a group that is no longer selected are dropped.
			if s.State().SelectedGroupID == groupID {
				s.State().GroupTasksCache = tasks
			}
		}), nil
	})
}

// LoadGroupFinance fetches the selected group's ledger and warms its
// finance metadata cache.
func LoadGroupFinance(s *Session) tea.Cmd {
	groupID := s.State().SelectedGroupID
	if groupID == 0 {
		return nil
	}
	meta := s.State().FinanceMeta
	return Async(s, "load.groupFinance", func(ctx context.Context) (Continuation, error) {
		fin, err := s.API().GroupFinance(ctx, groupID)
		if err != nil {
			return nil, err
		}
		if _, err := meta.GetOrFetch(ctx, groupID); err != nil {
			s.Log().Warn().Err(err).Int64("group", groupID).Msg("finance meta prefetch failed")
		}
		return Then(func(s *Session) {
			if s.State().SelectedGroupID == groupID {
				s.State().GroupFinance = fin
			}
		}), nil
	})
}

// LoadFinanceMeta warms the finance metadata cache for groupID. Views read
// it back with Peek.
func LoadFinanceMeta(s *Session, groupID int64) tea.Cmd {
	if groupID == 0 {
		return nil
	}
	meta := s.State().FinanceMeta
	return Async(s, "load.financeMeta", func(ctx context.Context) (Continuation, error) {
		if _, err := meta.GetOrFetch(ctx, groupID); err != nil {
			return nil, err
		}
		return Done, nil
	})
}

// LoadNotifications fetches the notification toggles. Failures degrade to
// the unloaded state silently.
func LoadNotifications(s *Session) tea.Cmd {
	return Async(s, "load.notifications", func(ctx context.Context) (Continuation, error) {
		settings, err := s.API().NotificationSettings(ctx)
		if err != nil {
			s.Log().Debug().Err(err).Msg("notification settings unavailable")
			return Done, nil
		}
		return Then(func(s *Session) { s.State().Notifications = settings }), nil
	})
}

// LoadUsers fetches every visible user for assignee pickers, along with
// the selected group's members when a group is in context. The user list
// is fetched once; Logout clears it.
func LoadUsers(s *Session, groupID int64) tea.Cmd {
	members := s.State().Members
	cached := s.State().AllUsers != nil
	if cached && groupID == 0 {
		return nil
	}
	return Async(s, "load.users", func(ctx context.Context) (Continuation, error) {
		var users []models.User
		if !cached {
			var err error
			if users, err = s.API().Users(ctx); err != nil {
				return nil, err
			}
			if users == nil {
				users = []models.User{}
			}
		}
		if groupID != 0 {
			if _, err := members.GetOrFetch(ctx, groupID); err != nil {
				s.Log().Warn().Err(err).Int64("group", groupID).Msg("group members unavailable")
			}
		}
		if cached {
			return Done, nil
		}
		return Then(func(s *Session) { s.State().AllUsers = users }), nil
	})
}

// LoadTask fetches one task into CurrentTask.
func LoadTask(s *Session, id int64) tea.Cmd {
	return Async(s, "load.task", func(ctx context.Context) (Continuation, error) {
		task, err := s.API().Task(ctx, id)
		if err != nil {
			return nil, err
		}
		return Then(func(s *Session) { s.State().CurrentTask = task }), nil
	})
}

// Assignees returns the union of all users and the group's cached members,
// deduplicated and sorted by id.
func Assignees(s *Session, groupID int64) []models.User {
	byID := make(map[int64]models.User)
	for _, u := range s.State().AllUsers {
		byID[u.ID] = u
	}
	if groupID != 0 {
		if members, ok := s.State().Members.Peek(groupID); ok {
			for _, u := range members {
				if _, seen := byID[u.ID]; !seen {
					byID[u.ID] = u
				}
			}
		}
	}
	out := make([]models.User, 0, len(byID))
	for _, u := range byID {
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b models.User) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

// ReloadAll refreshes every cache a mutation may have touched.
func ReloadAll(s *Session) tea.Cmd {
	return tea.Batch(
		LoadPersonalTasks(s),
		LoadFinance(s),
		LoadBalance(s),
		LoadGroupTasks(s),
		LoadGroupFinance(s),
	)
}
