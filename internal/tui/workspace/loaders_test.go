package workspace

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/tasknest-cli/internal/models"
)

// fakeAPI serves canned bodies by path and counts hits. Paths without a
// body answer 500.
type fakeAPI struct {
	mu     sync.Mutex
	bodies map[string]string
	hits   map[string]int
}

func newFakeAPI(t *testing.T, bodies map[string]string) (*fakeAPI, *Session) {
	t.Helper()
	f := &fakeAPI{bodies: bodies, hits: make(map[string]int)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.hits[r.URL.Path]++
		body, ok := f.bodies[r.URL.Path]
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"ok":false,"error":"boom"}`)
			return
		}
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	s := NewTestSession(srv.URL, testNow)
	t.Cleanup(s.Shutdown)
	return f, s
}

func (f *fakeAPI) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

const testGroups = `{"items":[{"id":1,"name":"Личная"},{"id":7,"name":"Семья"},{"id":9,"name":"Работа"}]}`

func TestLoadGroups_PicksFirstSharedGroup(t *testing.T) {
	_, s := newFakeAPI(t, map[string]string{"/api/groups": testGroups})

	assert.Empty(t, Settle(s, LoadGroups(s)))

	assert.Len(t, s.State().Groups, 3)
	assert.Equal(t, int64(7), s.State().SelectedGroupID)
	assert.Equal(t, int64(7), s.Store().SelectedGroupID())
}

func TestLoadGroups_KeepsStoredSelection(t *testing.T) {
	_, s := newFakeAPI(t, map[string]string{"/api/groups": testGroups})
	require.NoError(t, s.Store().SetSelectedGroupID(9))

	Settle(s, LoadGroups(s))
	assert.Equal(t, int64(9), s.State().SelectedGroupID)
}

func TestLoadGroups_StaleStoredSelectionFallsBack(t *testing.T) {
	_, s := newFakeAPI(t, map[string]string{"/api/groups": testGroups})
	require.NoError(t, s.Store().SetSelectedGroupID(42))

	Settle(s, LoadGroups(s))
	assert.Equal(t, int64(7), s.State().SelectedGroupID)
}

func TestLoadGroups_OnlyPersonalGroup(t *testing.T) {
	_, s := newFakeAPI(t, map[string]string{"/api/groups": `{"items":[{"id":1,"name":"Личная"}]}`})

	Settle(s, LoadGroups(s))
	assert.Zero(t, s.State().SelectedGroupID)
	assert.Empty(t, s.State().SharedGroups())
}

func TestLoadGroupsThen_RunsNext(t *testing.T) {
	_, s := newFakeAPI(t, map[string]string{"/api/groups": testGroups})

	msgs := Settle(s, LoadGroupsThen(s, func(s *Session) tea.Cmd {
		return SetStatus(s.State().SharedGroups()[0].Name, false)
	}))
	assert.Equal(t, []tea.Msg{StatusMsg{Text: "Семья"}}, msgs)
}

func TestLoadGroups_FailureAlerts(t *testing.T) {
	_, s := newFakeAPI(t, nil)

	msgs := Settle(s, LoadGroups(s))
	assert.Equal(t, []tea.Msg{AlertMsg{Text: "boom"}}, msgs)
}

func TestLoadPersonalTasks_UsesDefaultGroup(t *testing.T) {
	f, s := newFakeAPI(t, map[string]string{
		"/api/groups/1/tasks": `{"items":[{"id":5,"title":"Купить хлеб","deadline":"2024-03-15"}]}`,
	})

	Settle(s, LoadPersonalTasks(s))

	assert.Equal(t, 1, f.count("/api/groups/1/tasks"))
	require.Len(t, s.State().TasksCache, 1)
	assert.Equal(t, "Купить хлеб", s.State().TasksCache[0].Title)
}

func TestLoadGroupTasks_DropsResultForDeselectedGroup(t *testing.T) {
	_, s := newFakeAPI(t, map[string]string{
		"/api/groups/7/tasks": `{"items":[{"id":5,"title":"Убрать кухню"}]}`,
	})
	s.State().SelectGroup(7)

	cmd := LoadGroupTasks(s)
	s.State().SelectGroup(9)
	Settle(s, cmd)

	assert.Nil(t, s.State().GroupTasksCache)
}

func TestLoadGroupTasks_NoGroupIsNoop(t *testing.T) {
	_, s := newFakeAPI(t, nil)
	assert.Nil(t, LoadGroupTasks(s))
	assert.Nil(t, LoadGroupFinance(s))
	assert.Nil(t, LoadFinanceMeta(s, 0))
}

func TestLoadGroupFinance_WarmsMeta(t *testing.T) {
	f, s := newFakeAPI(t, map[string]string{
		"/api/groups/7/finance":            `{"balance":150,"items":[{"id":1,"kind":"income","amount":150}]}`,
		"/api/groups/7/finance/categories": `{"items":[{"id":12,"name":"Еда"}]}`,
		"/api/groups/7/finance/methods":    `{"items":[]}`,
	})
	s.State().SelectGroup(7)

	Settle(s, LoadGroupFinance(s))
	Settle(s, LoadFinanceMeta(s, 7))

	require.NotNil(t, s.State().GroupFinance)
	assert.Equal(t, int64(150), s.State().GroupFinance.Balance)
	meta, ok := s.State().FinanceMeta.Peek(7)
	require.True(t, ok)
	assert.Equal(t, []models.MetaItem{{ID: 12, Name: "Еда"}}, meta.Categories)
	assert.Equal(t, 1, f.count("/api/groups/7/finance/categories"), "second load is served from cache")
}

func TestLoadBalance_FailureLeavesUnknown(t *testing.T) {
	_, s := newFakeAPI(t, nil)
	balance := int64(10)
	s.State().Balance = &balance

	assert.Empty(t, Settle(s, LoadBalance(s)))
	assert.Nil(t, s.State().Balance)
}

func TestLoadNotifications(t *testing.T) {
	_, s := newFakeAPI(t, nil)
	assert.Empty(t, Settle(s, LoadNotifications(s)), "failure is silent")
	assert.Nil(t, s.State().Notifications)

	_, s = newFakeAPI(t, map[string]string{
		"/api/settings/notifications": `{"item":{"notify_new_task":true,"notify_task_updates":false}}`,
	})
	Settle(s, LoadNotifications(s))
	require.NotNil(t, s.State().Notifications)
	assert.True(t, s.State().Notifications.NotifyNewTask)
}

func TestLoadUsers_AssigneesUnion(t *testing.T) {
	_, s := newFakeAPI(t, map[string]string{
		"/api/users":            `{"items":[{"id":3,"first_name":"Боря"},{"id":1,"first_name":"Я"}]}`,
		"/api/groups/7/members": `{"items":[{"id":3,"first_name":"Борис"},{"id":8,"username":"kate"}]}`,
	})

	Settle(s, LoadUsers(s, 7))

	got := Assignees(s, 7)
	require.Len(t, got, 3)
	assert.Equal(t, []int64{1, 3, 8}, []int64{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, "Боря", got[1].FirstName, "the user list wins over members")
	assert.Len(t, Assignees(s, 0), 2, "no group means users only")
}

func TestLoadUsers_MemberFailureIsTolerated(t *testing.T) {
	_, s := newFakeAPI(t, map[string]string{
		"/api/users": `{"items":[{"id":1}]}`,
	})

	assert.Empty(t, Settle(s, LoadUsers(s, 7)))
	assert.Len(t, Assignees(s, 7), 1)
}

func TestReloadAll(t *testing.T) {
	f, s := newFakeAPI(t, map[string]string{
		"/api/groups/1/tasks":              `{"items":[]}`,
		"/api/finance":                     `{"items":[]}`,
		"/api/balance":                     `{"balance":0}`,
		"/api/groups/7/tasks":              `{"items":[]}`,
		"/api/groups/7/finance":            `{"balance":0,"items":[]}`,
		"/api/groups/7/finance/categories": `{"items":[]}`,
		"/api/groups/7/finance/methods":    `{"items":[]}`,
	})
	s.State().SelectGroup(7)

	assert.Empty(t, Settle(s, ReloadAll(s)))
	for _, path := range []string{"/api/groups/1/tasks", "/api/finance", "/api/balance", "/api/groups/7/tasks", "/api/groups/7/finance"} {
		assert.Equal(t, 1, f.count(path), path)
	}
}

func TestLoadUsers_FetchesUsersOnce(t *testing.T) {
	backend, s := newFakeAPI(t, map[string]string{
		"/api/users":            `{"items":[{"id":1}]}`,
		"/api/groups/7/members": `{"items":[{"id":8}]}`,
	})

	Settle(s, LoadUsers(s, 0))
	assert.Nil(t, LoadUsers(s, 0), "nothing to fetch once users are cached")
	Settle(s, LoadUsers(s, 7))
	Settle(s, LoadUsers(s, 7))

	assert.Equal(t, 1, backend.count("/api/users"))
	assert.Equal(t, 1, backend.count("/api/groups/7/members"), "members come from the keyed cache")
	assert.Len(t, Assignees(s, 7), 2)

	s.State().Logout()
	Settle(s, LoadUsers(s, 0))
	assert.Equal(t, 2, backend.count("/api/users"), "logout clears the user list")
}
