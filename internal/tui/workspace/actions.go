package workspace

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tasknest/tasknest-cli/internal/observability"
	"github.com/tasknest/tasknest-cli/internal/output"
)

// ActionID names a dispatchable action as "<namespace>.<verb>".
type ActionID string

const (
	ActionAuthLoginTelegram ActionID = "auth.loginTelegram"
	ActionAuthLoginEmail    ActionID = "auth.loginEmail"
	ActionAuthLoginToken    ActionID = "auth.loginToken"

	ActionNavSwitch ActionID = "nav.switch"
	ActionNavBack   ActionID = "nav.back"

	ActionDatePrev          ActionID = "date.prev"
	ActionDateNext          ActionID = "date.next"
	ActionDateToday         ActionID = "date.today"
	ActionDateOpenCalendar  ActionID = "date.openCalendar"
	ActionDateCloseCalendar ActionID = "date.closeCalendar"
	ActionDateSetFilter     ActionID = "date.setFilter"
	ActionDatePick          ActionID = "date.pick"
	ActionDatePrevMonth     ActionID = "date.prevMonth"
	ActionDateNextMonth     ActionID = "date.nextMonth"

	ActionHomeSetFilter ActionID = "home.setFilter"
	ActionPagePrev      ActionID = "page.prev"
	ActionPageNext      ActionID = "page.next"

	ActionGroupsSelect               ActionID = "groups.select"
	ActionGroupsSetTab               ActionID = "groups.setTab"
	ActionGroupsSetFilter            ActionID = "groups.setFilter"
	ActionGroupsOpenCreate           ActionID = "groups.openCreate"
	ActionGroupsCreate               ActionID = "groups.create"
	ActionGroupsOpenInvite           ActionID = "groups.openInvite"
	ActionGroupsSendInviteByUsername ActionID = "groups.sendInviteByUsername"
	ActionGroupsCopyInvite           ActionID = "groups.copyInvite"
	ActionGroupsAcceptInvite         ActionID = "groups.acceptInvite"

	ActionTasksOpen        ActionID = "tasks.open"
	ActionTasksMarkDone    ActionID = "tasks.markDone"
	ActionTasksSaveDetails ActionID = "tasks.saveDetails"

	ActionAddOpen       ActionID = "add.open"
	ActionAddChangeType ActionID = "add.changeType"
	ActionAddSave       ActionID = "add.save"
	ActionAddCancel     ActionID = "add.cancel"

	ActionManageOpen   ActionID = "manage.open"
	ActionManageAdd    ActionID = "manage.add"
	ActionManageDelete ActionID = "manage.delete"

	ActionSettingsSaveNotifications ActionID = "settings.saveNotifications"

	ActionModalOpen  ActionID = "modal.open"
	ActionModalClose ActionID = "modal.close"
)

// AllActions returns every known action in declaration order.
func AllActions() []ActionID {
	return []ActionID{
		ActionAuthLoginTelegram, ActionAuthLoginEmail, ActionAuthLoginToken,
		ActionNavSwitch, ActionNavBack,
		ActionDatePrev, ActionDateNext, ActionDateToday, ActionDateOpenCalendar,
		ActionDateCloseCalendar, ActionDateSetFilter, ActionDatePick,
		ActionDatePrevMonth, ActionDateNextMonth,
		ActionHomeSetFilter, ActionPagePrev, ActionPageNext,
		ActionGroupsSelect, ActionGroupsSetTab, ActionGroupsSetFilter,
		ActionGroupsOpenCreate, ActionGroupsCreate, ActionGroupsOpenInvite,
		ActionGroupsSendInviteByUsername, ActionGroupsCopyInvite, ActionGroupsAcceptInvite,
		ActionTasksOpen, ActionTasksMarkDone, ActionTasksSaveDetails,
		ActionAddOpen, ActionAddChangeType, ActionAddSave, ActionAddCancel,
		ActionManageOpen, ActionManageAdd, ActionManageDelete,
		ActionSettingsSaveNotifications,
		ActionModalOpen, ActionModalClose,
	}
}

// Known reports whether id is one of AllActions.
func (id ActionID) Known() bool {
	return slices.Contains(AllActions(), id)
}

// Namespace returns the part before the dot.
func (id ActionID) Namespace() string {
	ns, _, _ := strings.Cut(string(id), ".")
	return ns
}

// Gesture is how an invocation was triggered.
type Gesture string

const (
	GestureActivate Gesture = "activate"
	GestureChange   Gesture = "change"
)

// Invocation is the normalized context handed to an action handler.
type Invocation struct {
	Action  ActionID
	Gesture Gesture
	Data    map[string]string
	Value   string
	Source  ScreenID
}

// Get returns a data attribute, or "".
func (inv Invocation) Get(name string) string {
	if inv.Data == nil {
		return ""
	}
	return inv.Data[name]
}

// ID parses a numeric data attribute.
func (inv Invocation) ID(name string) (int64, error) {
	raw := inv.Get(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, output.ErrValidation(fmt.Sprintf("invalid %s: %q", name, raw))
	}
	return id, nil
}

// Invoke builds an activate invocation with optional key/value data pairs.
func Invoke(id ActionID, kv ...string) Invocation {
	inv := Invocation{Action: id, Gesture: GestureActivate}
	if len(kv) > 1 {
		inv.Data = make(map[string]string, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			inv.Data[kv[i]] = kv[i+1]
		}
	}
	return inv
}

// Change builds a change invocation carrying a control value.
func Change(id ActionID, value string) Invocation {
	return Invocation{Action: id, Gesture: GestureChange, Value: value}
}

// Handler performs an action. It runs on the event loop and may mutate
// session state; slow work goes through Async. A returned error is shown
// in the alert.
type Handler func(s *Session, inv Invocation) (tea.Cmd, error)

// Registry maps actions onto handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[ActionID]Handler
}

// NewRegistry creates an empty action registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[ActionID]Handler)}
}

// Register binds a handler to an action, replacing any previous binding.
func (r *Registry) Register(id ActionID, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[id] = h
}

// Has reports whether id has a handler.
func (r *Registry) Has(id ActionID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[id]
	return ok
}

// Missing returns the known actions that have no handler.
func (r *Registry) Missing() []ActionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []ActionID
	for _, id := range AllActions() {
		if _, ok := r.handlers[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// Validate returns an error naming every action without a handler.
func (r *Registry) Validate() error {
	missing := r.Missing()
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, len(missing))
	for i, id := range missing {
		names[i] = string(id)
	}
	return fmt.Errorf("actions without handlers: %s", strings.Join(names, ", "))
}

// Dispatch runs the handler for inv. Unknown actions are logged and
// ignored. A handler error or panic is logged and turned into an alert.
func (r *Registry) Dispatch(s *Session, inv Invocation) tea.Cmd {
	r.mu.RLock()
	h, ok := r.handlers[inv.Action]
	r.mu.RUnlock()

	log := s.Log()
	if !ok {
		log.Warn().Str("action", string(inv.Action)).Str("screen", string(inv.Source)).
			Msg("no handler for action")
		return nil
	}

	start := time.Now()
	cmd, err := runHandler(h, s, inv)
	s.recordAction(observability.ActionMetrics{
		Action:   string(inv.Action),
		Duration: time.Since(start),
		Error:    err,
	})
	if err != nil {
		log.Error().Err(err).Str("action", string(inv.Action)).Msg("action failed")
		return Alert(ErrorText(err))
	}
	log.Debug().Str("action", string(inv.Action)).Str("gesture", string(inv.Gesture)).Msg("action")
	return cmd
}

func runHandler(h Handler, s *Session, inv Invocation) (cmd tea.Cmd, err error) {
	defer func() {
		if p := recover(); p != nil {
			cmd = nil
			err = fmt.Errorf("%s: panic: %v", inv.Action, p)
		}
	}()
	return h(s, inv)
}

// ErrorText renders an error for the alert. Structured errors show their
// message without the CLI hint.
func ErrorText(err error) string {
	var e *output.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// PaletteEntry is one command offered by the command palette.
type PaletteEntry struct {
	Name        string
	Description string
	Category    string
	Invocation  Invocation
}

// PaletteEntries returns the actions that make sense without a selection.
func PaletteEntries() []PaletteEntry {
	entries := []PaletteEntry{
		{Name: ":home", Description: "Главная", Category: "navigation",
			Invocation: Invoke(ActionNavSwitch, "screen", string(ScreenHome))},
		{Name: ":tasks", Description: "Задачи на выбранный день", Category: "navigation",
			Invocation: Invoke(ActionNavSwitch, "screen", string(ScreenTasks))},
		{Name: ":groups", Description: "Общие группы", Category: "navigation",
			Invocation: Invoke(ActionNavSwitch, "screen", string(ScreenGroupTasks))},
		{Name: ":finance", Description: "Финансы за выбранный день", Category: "navigation",
			Invocation: Invoke(ActionNavSwitch, "screen", string(ScreenFinance))},
		{Name: ":settings", Description: "Настройки уведомлений", Category: "navigation",
			Invocation: Invoke(ActionNavSwitch, "screen", string(ScreenSettings))},
		{Name: ":today", Description: "Перейти к сегодняшнему дню", Category: "date",
			Invocation: Invoke(ActionDateToday)},
		{Name: ":calendar", Description: "Открыть календарь", Category: "date",
			Invocation: Invoke(ActionDateOpenCalendar)},
		{Name: ":add", Description: "Новая задача или операция", Category: "mutation",
			Invocation: Invoke(ActionAddOpen)},
		{Name: ":new-group", Description: "Создать группу", Category: "groups",
			Invocation: Invoke(ActionGroupsOpenCreate)},
		{Name: ":invite", Description: "Пригласить по username", Category: "groups",
			Invocation: Invoke(ActionGroupsOpenInvite)},
		{Name: ":copy-invite", Description: "Скопировать ссылку-приглашение", Category: "groups",
			Invocation: Invoke(ActionGroupsCopyInvite)},
		{Name: ":categories", Description: "Категории группы", Category: "groups",
			Invocation: Invoke(ActionManageOpen, "mode", string(ManageCategories))},
		{Name: ":methods", Description: "Способы оплаты группы", Category: "groups",
			Invocation: Invoke(ActionManageOpen, "mode", string(ManageMethods))},
		{Name: ":login", Description: "Повторить вход", Category: "auth",
			Invocation: Invoke(ActionAuthLoginTelegram)},
	}
	return entries
}
