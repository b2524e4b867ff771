package widget

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tasknest/tasknest-cli/internal/tui"
)

func TestSplitPane_ZeroWidth_NoNegative(t *testing.T) {
	s := NewSplitPane(tui.NewStyles(), 0.35)
	s.SetSize(0, 24) // width=0 triggers collapsed

	assert.GreaterOrEqual(t, s.LeftWidth(), 0)
	assert.GreaterOrEqual(t, s.RightWidth(), 0)
}

func TestSplitPane_NegativeWidthDefense(t *testing.T) {
	s := NewSplitPane(tui.NewStyles(), 0.35)
	// Force non-collapsed math with a tiny width that would yield negative
	// right width without the max(0,...) floor.
	s.width = 0
	s.collapsed = false

	assert.GreaterOrEqual(t, s.LeftWidth(), 0, "LeftWidth must be >= 0")
	assert.GreaterOrEqual(t, s.RightWidth(), 0, "RightWidth must be >= 0")

	// Also verify with a negative width to be thorough
	s.width = -1
	s.collapsed = false

	assert.GreaterOrEqual(t, s.LeftWidth(), 0, "LeftWidth must be >= 0 for negative width")
	assert.GreaterOrEqual(t, s.RightWidth(), 0, "RightWidth must be >= 0 for negative width")
}

func TestSplitPane_RendersBothPanels(t *testing.T) {
	s := NewSplitPane(tui.NewStyles(), 0.3)
	s.SetSize(100, 3)
	s.SetContent("Группы", "Задачи")

	assert.False(t, s.IsCollapsed())
	view := s.View()
	assert.Contains(t, view, "Группы")
	assert.Contains(t, view, "Задачи")
	assert.Contains(t, view, "│")
}

func TestSplitPane_CollapsedShowsLeftOnly(t *testing.T) {
	s := NewSplitPane(tui.NewStyles(), 0.3)
	s.SetSize(CollapseWidth-1, 3)
	s.SetContent("Группы", "Задачи")

	assert.True(t, s.IsCollapsed())
	assert.NotContains(t, s.View(), "Задачи")
}
