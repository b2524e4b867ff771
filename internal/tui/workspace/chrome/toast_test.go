package chrome

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tasknest/tasknest-cli/internal/tui"
)

func TestToast_GenerationPreventsEarlyDismiss(t *testing.T) {
	toast := NewToast(tui.NewStyles())
	toast.SetWidth(80)

	toast.Show("Скопировано", false)
	firstGen := toast.generation

	toast.Show("Сохранено", false)
	assert.True(t, toast.Visible())

	assert.True(t, toast.Update(toastTickMsg{generation: firstGen}))
	assert.True(t, toast.Visible(), "stale tick must not dismiss the newer toast")
	assert.Contains(t, toast.View(), "Сохранено")

	toast.Update(toastTickMsg{generation: toast.generation})
	assert.False(t, toast.Visible())
	assert.Empty(t, toast.View())
}

func TestToast_IgnoresOtherMessages(t *testing.T) {
	toast := NewToast(tui.NewStyles())
	toast.Show("x", false)
	assert.False(t, toast.Update("not a tick"))
	assert.True(t, toast.Visible())
}
