package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserDisplayName(t *testing.T) {
	assert.Equal(t, "Anna", User{ID: 1, FirstName: " Anna ", Username: "anna"}.DisplayName())
	assert.Equal(t, "anna", User{ID: 1, Username: "anna"}.DisplayName())
	assert.Equal(t, "#7", User{ID: 7}.DisplayName())
}

func TestTaskActive(t *testing.T) {
	assert.True(t, Task{Status: TaskStatusNew}.Active())
	assert.False(t, Task{Done: true}.Active())
	assert.False(t, Task{Status: TaskStatusDone}.Active())
}

func TestSharedGroups(t *testing.T) {
	groups := []Group{{ID: 1, Name: PersonalGroupName}, {ID: 2, Name: "Family"}, {ID: 3}}
	shared := SharedGroups(groups)
	assert.Equal(t, []Group{{ID: 2, Name: "Family"}, {ID: 3}}, shared)
	assert.Equal(t, "#3", shared[1].Label())
}
