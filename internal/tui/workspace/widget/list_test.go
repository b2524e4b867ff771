package widget

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/tasknest-cli/internal/tui"
	"github.com/tasknest/tasknest-cli/internal/tui/empty"
)

func testList() *List {
	l := NewList(tui.NewStyles())
	l.SetSize(60, 10)
	l.SetFocused(true)
	return l
}

func sampleItems(n int) []ListItem {
	items := make([]ListItem, n)
	for i := range n {
		items[i] = ListItem{
			ID:    string(rune('a' + i)),
			Title: strings.Repeat(string(rune('A'+i)), 3),
		}
	}
	return items
}

func downKey() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyDown} }
func upKey() tea.KeyMsg   { return tea.KeyMsg{Type: tea.KeyUp} }

func TestList_SetItems(t *testing.T) {
	l := testList()
	l.SetItems([]ListItem{{ID: "1", Title: "Хлеб"}, {ID: "2", Title: "Сыр"}})

	assert.Equal(t, 2, l.Len())
	sel := l.Selected()
	require.NotNil(t, sel)
	assert.Equal(t, "Хлеб", sel.Title)
}

func TestList_Navigation(t *testing.T) {
	l := testList()
	l.SetItems(sampleItems(3))

	l.Update(downKey())
	l.Update(downKey())
	assert.Equal(t, 2, l.SelectedIndex())
	l.Update(downKey())
	assert.Equal(t, 2, l.SelectedIndex(), "down at the bottom stays put")

	l.Update(upKey())
	l.Update(upKey())
	l.Update(upKey())
	assert.Equal(t, 0, l.SelectedIndex())

	l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 1, l.SelectedIndex())
}

func TestList_UnfocusedIgnoresKeys(t *testing.T) {
	l := testList()
	l.SetItems(sampleItems(3))
	l.SetFocused(false)
	l.Update(downKey())
	assert.Equal(t, 0, l.SelectedIndex())
}

func TestList_SkipsHeaders(t *testing.T) {
	l := testList()
	l.SetItems([]ListItem{
		{Title: "Расходы", Header: true},
		{ID: "1", Title: "Кофе"},
		{Title: "Доходы", Header: true},
		{ID: "2", Title: "Зарплата"},
	})

	require.NotNil(t, l.Selected())
	assert.Equal(t, "1", l.Selected().ID)

	l.Update(downKey())
	assert.Equal(t, "2", l.Selected().ID)
	l.Update(upKey())
	assert.Equal(t, "1", l.Selected().ID)
}

func TestList_CursorClampedOnShrink(t *testing.T) {
	l := testList()
	l.SetItems(sampleItems(5))
	l.SetCursor(4)
	l.SetItems(sampleItems(2))
	assert.Equal(t, 1, l.SelectedIndex())

	l.SetItems(nil)
	assert.Nil(t, l.Selected())
}

func TestList_EmptyMessage(t *testing.T) {
	l := testList()
	l.SetEmptyMessage(empty.NoTasksForDay())
	l.SetItems(nil)

	view := ansi.Strip(l.View())
	assert.Contains(t, view, "Пока нет задач")
	assert.Contains(t, view, "На эту дату задач нет.")
}

func TestList_RendersMarkerExtraAndFooter(t *testing.T) {
	l := testList()
	l.SetItems([]ListItem{
		{ID: "1", Title: "Сдать отчёт", Description: "Анна", Extra: "до 12.03", Marked: true},
	})
	l.SetFooter("1/2")

	view := ansi.Strip(l.View())
	assert.Contains(t, view, "❗")
	assert.Contains(t, view, "Сдать отчёт")
	assert.Contains(t, view, "до 12.03")
	assert.Contains(t, view, "1/2")
}

func TestList_LongRowsFitWidth(t *testing.T) {
	l := testList()
	l.SetSize(30, 5)
	l.SetItems([]ListItem{{
		ID:          "1",
		Title:       strings.Repeat("очень длинная задача ", 5),
		Description: strings.Repeat("описание ", 10),
		Extra:       "+1 500 ₽",
	}})

	for _, line := range strings.Split(l.View(), "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 30)
	}
}
