package format

import (
	"strings"
	"unicode"

	"github.com/tasknest/tasknest-cli/internal/models"
)

// People joins display names with commas.
func People(users []models.User) string {
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.DisplayName())
	}
	return strings.Join(names, ", ")
}

// PersonHandle returns "Name (@username)" when both are known.
func PersonHandle(u models.User) string {
	name := u.DisplayName()
	if u.Username != "" && name != u.Username {
		return name + " (@" + u.Username + ")"
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return name
}

// Initials returns up to two upper-case initials from a name.
func Initials(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return "?"
	}

	var initials strings.Builder
	for i, word := range words {
		if i >= 2 {
			break
		}
		for _, r := range word {
			initials.WriteRune(unicode.ToUpper(r))
			break
		}
	}
	return initials.String()
}
