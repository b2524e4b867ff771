// Package richtext renders task descriptions for the terminal. Descriptions
// are free text that users often write in Markdown; glamour renders them.
package richtext

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
)

var markdownPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^#{1,6}\s`),
	regexp.MustCompile(`\*\*[^*]+\*\*`),
	regexp.MustCompile(`\*[^*\s][^*]*\*`),
	regexp.MustCompile(`\[[^\]]+\]\([^)]+\)`),
	regexp.MustCompile("```"),
	regexp.MustCompile(`(?m)^\s*[-*+]\s`),
	regexp.MustCompile(`(?m)^\s*\d+\.\s`),
	regexp.MustCompile(`(?m)^>\s`),
	regexp.MustCompile(`(?m)^\s*[-*]\s\[[ xX]\]`),
}

// IsMarkdown reports whether s looks like Markdown rather than plain text.
// This is a heuristic.
func IsMarkdown(s string) bool {
	if s == "" {
		return false
	}
	for _, re := range markdownPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// RenderMarkdown renders md for terminal display wrapped at width.
func RenderMarkdown(md string, width int) (string, error) {
	if strings.TrimSpace(md) == "" {
		return "", nil
	}
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}

	out, err := r.Render(md)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(strings.TrimLeft(out, "\n"), " \n"), nil
}

// Render renders a description: Markdown through glamour, anything else
// as-is. A renderer failure falls back to the raw text.
func Render(text string, width int) string {
	if !IsMarkdown(text) {
		return strings.TrimSpace(text)
	}
	out, err := RenderMarkdown(text, width)
	if err != nil {
		return strings.TrimSpace(text)
	}
	return out
}

var (
	reLinks    = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	reEmphasis = regexp.MustCompile("[*_`]+")
	reLeading  = regexp.MustCompile(`^(#{1,6}|>|[-*+]|\d+\.)\s+`)
	reCheckbox = regexp.MustCompile(`^\[[ xX]\]\s+`)
)

// Summary returns the first non-empty line of text with Markdown markup
// removed, for single-line list rows.
func Summary(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		line = reLeading.ReplaceAllString(line, "")
		line = reCheckbox.ReplaceAllString(line, "")
		line = reLinks.ReplaceAllString(line, "$1")
		line = reEmphasis.ReplaceAllString(line, "")
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
