package widget

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/tasknest/tasknest-cli/internal/tui"
)

func TestContent_MarkdownScrollsToContent(t *testing.T) {
	c := NewContent(tui.NewStyles())
	c.SetSize(60, 3)
	c.SetContent("# План\n\n- хлеб\n- сыр\n- молоко\n- кофе\n\nИтог: всё купить")

	c.ScrollDown(100)
	lines := strings.Split(c.View(), "\n")
	last := lines[len(lines)-1]
	assert.NotEmpty(t, strings.TrimSpace(ansi.Strip(last)), "last visible line at scroll bottom should contain content")
}

func TestContent_PlainTextWraps(t *testing.T) {
	c := NewContent(tui.NewStyles())
	c.SetSize(10, 10)
	c.SetContent("позвонить в банк и уточнить")

	assert.Greater(t, c.Lines(), 1)
	assert.Contains(t, ansi.Strip(c.View()), "позвонить")
}

func TestContent_EmptyRendersNothing(t *testing.T) {
	c := NewContent(tui.NewStyles())
	c.SetSize(40, 5)
	c.SetContent("")
	assert.Empty(t, c.View())
	assert.Zero(t, c.Lines())
}

func TestContent_ScrollUpClamps(t *testing.T) {
	c := NewContent(tui.NewStyles())
	c.SetSize(40, 1)
	c.SetContent("раз\nдва\nтри")
	c.ScrollUp(5)
	assert.Equal(t, "раз", strings.TrimSpace(ansi.Strip(c.View())))
}
