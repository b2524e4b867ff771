package richtext

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"empty", "", false},
		{"plain", "Купить молоко", false},
		{"heading", "# План", true},
		{"bold", "очень **важно**", true},
		{"link", "см. [доку](https://example.com)", true},
		{"list", "шаги:\n- первый\n- второй", true},
		{"ordered", "1. раз\n2. два", true},
		{"checklist", "- [ ] хлеб\n- [x] сыр", true},
		{"fence", "```\ncode\n```", true},
		{"dash in text", "с 9 - до 18", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMarkdown(tt.input))
		})
	}
}

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown("# План\n\n- **хлеб**\n- сыр", 40)
	require.NoError(t, err)

	plain := ansi.Strip(out)
	assert.Contains(t, plain, "План")
	assert.Contains(t, plain, "хлеб")
	assert.Contains(t, plain, "сыр")
	assert.NotContains(t, plain, "**")
}

func TestRenderMarkdown_Empty(t *testing.T) {
	out, err := RenderMarkdown("  \n", 40)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRender_PlainTextUntouched(t *testing.T) {
	assert.Equal(t, "Позвонить маме", Render("  Позвонить маме\n", 40))
}

func TestSummary(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"просто текст", "просто текст"},
		{"\n\n# Заголовок\nтело", "Заголовок"},
		{"- [ ] купить **хлеб**", "купить хлеб"},
		{"см. [доку](https://x.y)", "см. доку"},
		{"```\n\n```\nпосле", "после"},
		{"> цитата", "цитата"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Summary(tt.input), "input %q", tt.input)
	}
}
