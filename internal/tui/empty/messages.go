// Package empty provides empty state messages for TUI components.
package empty

// Message represents an empty state message with optional hints.
type Message struct {
	Title string
	Body  string
	Hints []string
}

// NoTasks returns the empty state for a task list with nothing to show.
func NoTasks() Message {
	return Message{
		Title: "Пока нет задач",
		Hints: []string{"a добавить задачу"},
	}
}

// NoTasksForFilter returns the empty state for a filtered task list.
func NoTasksForFilter(filter string) Message {
	msg := Message{Title: "Пока нет задач"}
	switch filter {
	case "today":
		msg.Body = "На сегодня задач нет."
	case "tomorrow":
		msg.Body = "На завтра задач нет."
	case "5plus":
		msg.Body = "Нет задач со сроком через 5 и более дней."
	default:
		msg.Hints = []string{"a добавить задачу"}
	}
	return msg
}

// NoTasksForDay returns the empty state for the per-day task list.
func NoTasksForDay() Message {
	return Message{
		Title: "Пока нет задач",
		Body:  "На эту дату задач нет.",
		Hints: []string{"h/l другой день", "c календарь"},
	}
}

// NoFinanceForDay returns the empty state for the per-day ledger.
func NoFinanceForDay() Message {
	return Message{
		Title: "Нет записей",
		Body:  "На эту дату финансовых записей нет.",
		Hints: []string{"a добавить операцию"},
	}
}

// NoSharedGroups returns the empty state for a user without shared groups.
func NoSharedGroups() Message {
	return Message{
		Title: "У вас нет общих групп.",
		Body:  "Нажмите “Создать” и пригласите участника одноразовой ссылкой.",
		Hints: []string{"n создать группу"},
	}
}

// NoGroupFinance returns the empty state for a group ledger.
func NoGroupFinance() Message {
	return Message{
		Title: "Нет операций",
		Body:  "В этой группе пока нет финансовых записей.",
		Hints: []string{"a добавить операцию"},
	}
}

// GroupFinanceFailed returns the state shown when the group ledger did not load.
func GroupFinanceFailed() Message {
	return Message{
		Title: "Не удалось загрузить финансы",
		Hints: []string{"r повторить"},
	}
}

// NoMetaItems returns the empty state for categories or payment methods.
func NoMetaItems() Message {
	return Message{
		Title: "Список пуст",
		Hints: []string{"a добавить"},
	}
}

// NoGroupSelected returns the state shown when a screen needs a shared group.
func NoGroupSelected() Message {
	return Message{
		Title: "Сначала выберите общую группу",
		Body:  "Создайте группу и пригласите участника.",
		Hints: []string{"3 общие группы"},
	}
}

// AuthRequired returns the empty state for a session without credentials.
func AuthRequired() Message {
	return Message{
		Title: "Нет данных Telegram/токена",
		Body:  "Вставьте токен доступа или запустите клиент из бота.",
		Hints: []string{"tasknest auth login", "tasknest --token <token>"},
	}
}

// NetworkError returns the empty state for network errors.
func NetworkError() Message {
	return Message{
		Title: "Сервер недоступен",
		Body:  "Проверьте подключение и адрес сервера.",
		Hints: []string{"r повторить", "tasknest config show"},
	}
}
