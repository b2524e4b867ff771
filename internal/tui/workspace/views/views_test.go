package views

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/tasknest-cli/internal/models"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m tea.Model, text string) tea.Model {
	for _, r := range text {
		m, _ = m.Update(runes(string(r)))
	}
	return m
}

// invocationOf runs cmd and returns the invocation it dispatches.
func invocationOf(t *testing.T, cmd tea.Cmd) workspace.Invocation {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(workspace.DispatchMsg)
	require.True(t, ok, "expected a dispatch")
	return msg.Invocation
}

func TestNew_CoversEveryScreen(t *testing.T) {
	_, s := newBackend(t, nil)
	views := New(s)
	for _, id := range workspace.AllScreens() {
		v, ok := views[id]
		require.True(t, ok, "missing view for %s", id)
		v.SetSize(100, 30)
		assert.NotEmpty(t, v.Title())
		assert.NotEmpty(t, v.View(), "%s renders", id)
	}
}

func TestHome_FilterKeysCycle(t *testing.T) {
	_, s := newBackend(t, nil)
	home := NewHome(s)
	home.SetSize(100, 30)

	_, cmd := home.Update(runes("f"))
	inv := invocationOf(t, cmd)
	assert.Equal(t, workspace.ActionHomeSetFilter, inv.Action)
	assert.Equal(t, "tomorrow", inv.Get("filter"))

	_, cmd = home.Update(runes("v"))
	inv = invocationOf(t, cmd)
	assert.Equal(t, workspace.ActionDateSetFilter, inv.Action)
	assert.Equal(t, "finance", inv.Get("filter"))
}

func TestHome_CalendarCapturesKeys(t *testing.T) {
	_, s := newBackend(t, nil)
	home := NewHome(s)
	home.SetSize(100, 30)
	s.State().Modal = workspace.ModalCalendar

	assert.True(t, home.IsModal())
	_, cmd := home.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, workspace.ActionDateCloseCalendar, invocationOf(t, cmd).Action)
}

func TestGroups_StepGroupWraps(t *testing.T) {
	_, s := newBackend(t, nil)
	withGroups(s)
	groups := NewGroups(s)
	groups.SetSize(120, 30)

	_, cmd := groups.Update(runes("J"))
	inv := invocationOf(t, cmd)
	assert.Equal(t, workspace.ActionGroupsSelect, inv.Action)
	assert.Equal(t, "9", inv.Get("id"))

	_, cmd = groups.Update(runes("K"))
	assert.Equal(t, "9", invocationOf(t, cmd).Get("id"), "stepping back from the first group wraps")
}

func TestGroups_CreatePrompt(t *testing.T) {
	_, s := newBackend(t, nil)
	withGroups(s)
	groups := NewGroups(s)
	groups.SetSize(120, 30)
	s.State().Modal = workspace.ModalCreateGroup

	assert.True(t, groups.InputActive())
	typeText(groups, "Дом")
	_, cmd := groups.Update(tea.KeyMsg{Type: tea.KeyEnter})
	inv := invocationOf(t, cmd)
	assert.Equal(t, workspace.ActionGroupsCreate, inv.Action)
	assert.Equal(t, "Дом", inv.Get("name"))
}

func TestGroups_PromptEscClosesModal(t *testing.T) {
	_, s := newBackend(t, nil)
	withGroups(s)
	groups := NewGroups(s)
	s.State().Modal = workspace.ModalInvite

	typeText(groups, "@kate")
	_, cmd := groups.Update(tea.KeyMsg{Type: tea.KeyEsc})
	inv := invocationOf(t, cmd)
	assert.Equal(t, workspace.ActionModalClose, inv.Action)
	assert.Equal(t, string(workspace.ModalInvite), inv.Get("modal"))
}

func TestSettings_ToggleAndSave(t *testing.T) {
	_, s := newBackend(t, nil)
	s.State().Notifications = &models.NotificationSettings{NotifyTaskUpdates: true}
	settings := NewSettings(s)

	settings.Update(runes(" "))
	_, cmd := settings.Update(tea.KeyMsg{Type: tea.KeyEnter})
	inv := invocationOf(t, cmd)
	assert.Equal(t, workspace.ActionSettingsSaveNotifications, inv.Action)
	assert.Equal(t, "true", inv.Get("new_task"))
	assert.Equal(t, "true", inv.Get("task_updates"))
}

func TestAdd_SavePreselectsFirstAssignee(t *testing.T) {
	_, s := newBackend(t, nil)
	s.State().AllUsers = []models.User{{ID: 2, FirstName: "Аня"}, {ID: 3, FirstName: "Боря"}}
	add := NewAdd(s)
	add.SetSize(100, 30)

	typeText(add, "Купить хлеб")
	_, cmd := add.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	inv := invocationOf(t, cmd)
	assert.Equal(t, workspace.ActionAddSave, inv.Action)
	assert.Equal(t, "Купить хлеб", inv.Get("title"))
	assert.Equal(t, "2", inv.Get("assignees"))
	assert.Equal(t, "2024-03-22", inv.Get("deadline"))
}

func TestAdd_EscCancels(t *testing.T) {
	_, s := newBackend(t, nil)
	add := NewAdd(s)

	_, cmd := add.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, workspace.ActionAddCancel, invocationOf(t, cmd).Action)
}

func TestManage_DeleteSelected(t *testing.T) {
	_, s := newBackend(t, map[string]reply{
		"GET /api/groups/7/finance/categories": ok(`{"items":[{"id":12,"name":"Еда"}]}`),
	})
	withGroups(s)
	run(s, workspace.Invoke(workspace.ActionManageOpen, "mode", "categories"))
	manage := NewManage(s)
	manage.SetSize(100, 30)

	_, cmd := manage.Update(runes("d"))
	inv := invocationOf(t, cmd)
	assert.Equal(t, workspace.ActionManageDelete, inv.Action)
	assert.Equal(t, "12", inv.Get("id"))
}
