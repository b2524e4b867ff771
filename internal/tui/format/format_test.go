package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tasknest/tasknest-cli/internal/dateutil"
	"github.com/tasknest/tasknest-cli/internal/models"
)

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '+' || r == '-' {
			return r
		}
		return -1
	}, s)
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "1,234,567 ₽", Money(1234567, dateutil.LocaleEN))

	ru := Money(1234567, dateutil.LocaleRU)
	assert.True(t, strings.HasSuffix(ru, " ₽"))
	assert.Equal(t, "1234567", digits(ru))
	assert.Equal(t, "0 ₽", Money(0, dateutil.LocaleRU))
}

func TestSigned(t *testing.T) {
	assert.Equal(t, "+500 ₽", Signed(500, dateutil.LocaleEN))
	assert.Equal(t, "-500 ₽", Signed(-500, dateutil.LocaleEN))
	assert.Equal(t, "-1500", digits(Signed(-1500, dateutil.LocaleRU)))
}

func TestKindSigned(t *testing.T) {
	assert.Equal(t, "-300 ₽", KindSigned(models.KindExpense, 300, dateutil.LocaleEN))
	assert.Equal(t, "+300 ₽", KindSigned(models.KindIncome, 300, dateutil.LocaleEN))
}

func TestBalance(t *testing.T) {
	assert.Equal(t, Placeholder, Balance(nil, dateutil.LocaleRU))
	b := int64(42)
	assert.Equal(t, "42 ₽", Balance(&b, dateutil.LocaleRU))
}

func TestDeadline(t *testing.T) {
	assert.Equal(t, "без срока", Deadline(models.Task{}, dateutil.LocaleRU))

	dl := "2024-05-17T00:00:00"
	assert.Equal(t, "до Пт, 17 мая", Deadline(models.Task{Deadline: &dl}, dateutil.LocaleRU))
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "Свой", Status(models.Task{Status: "new", StatusLabel: "Свой"}))
	assert.Equal(t, "В работе", Status(models.Task{Status: models.TaskStatusInProgress}))
	assert.Equal(t, "archived", Status(models.Task{Status: "archived"}))
}

func TestAssignees_ResponsibleFirstWithoutDuplicates(t *testing.T) {
	anna := models.User{ID: 1, FirstName: "Анна"}
	boris := models.User{ID: 2, Username: "boris"}
	task := models.Task{Responsible: &anna, AdditionalAssignees: []models.User{anna, boris}}
	assert.Equal(t, "Анна, boris", Assignees(task))
	assert.Empty(t, Assignees(models.Task{}))
}

func TestFinanceMeta(t *testing.T) {
	item := models.GroupFinanceItem{Category: &models.MetaItem{Name: "Еда"}}
	assert.Equal(t, "Еда • —", FinanceMeta(item))
	assert.Equal(t, "— • —", FinanceMeta(models.GroupFinanceItem{}))
}

func TestPeopleAndInitials(t *testing.T) {
	assert.Equal(t, "Анна, #7", People([]models.User{{ID: 1, FirstName: "Анна"}, {ID: 7}}))
	assert.Equal(t, "АП", Initials("анна петрова иванова"))
	assert.Equal(t, "?", Initials("  "))
	assert.Equal(t, "Анна (@anna)", PersonHandle(models.User{FirstName: "Анна", Username: "anna"}))
	assert.Equal(t, "@bob", PersonHandle(models.User{Username: "bob"}))
}

func TestTaskTitleAndMembers(t *testing.T) {
	assert.Equal(t, "#9", TaskTitle(models.Task{ID: 9, Title: "  "}))
	assert.Equal(t, "3 участн.", Members(models.Group{MembersCount: 3}))
}
