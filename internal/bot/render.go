package bot

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"task-planner/internal/model"
	"task-planner/internal/service"
)

const (
	btnSkip           = "⏭️ Пропустить"
	btnConfirm        = "✅ Подтвердить"
	btnCancel         = "↩️ Отмена"
	btnCancelDialog   = "⏪ Отменить ввод"
	btnPrev           = "◀️"
	btnNext           = "▶️"
	menuLabelNewTask  = "➕ Новая задача"
	menuLabelTasks    = "📋 Задачи"
	menuLabelSettings = "⚙️ Настройки"
	menuLabelHelp     = "ℹ️ Помощь"
)

// pageCallback builds "p:<page>:<filter>" within the callback size limit.
func pageCallback(page int, state listState) string {
	prefix := cbPagePrefix + strconv.Itoa(page) + ":"
	return prefix + EncodeFilter(state, maxCallbackData-len(prefix))
}

func parsePageCallback(data string, loc *time.Location) (int, listState, error) {
	rest := strings.TrimPrefix(data, cbPagePrefix)
	rawPage, payload, _ := strings.Cut(rest, ":")
	page, err := strconv.Atoi(rawPage)
	if err != nil || page < 1 {
		return 0, listState{}, fmt.Errorf("invalid page %q", rawPage)
	}
	state, err := DecodeFilter(payload, loc)
	if err != nil {
		return 0, listState{}, err
	}
	return page, state, nil
}

func parseTaskID(data, prefix string) (uint, error) {
	raw := strings.TrimPrefix(data, prefix)
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}

// renderTaskPage builds the message body and inline keyboard for one page.
func renderTaskPage(page *service.TaskPage, state listState, now time.Time) (string, tgbotapi.InlineKeyboardMarkup) {
	var builder strings.Builder
	builder.WriteString("📋 <b>Задачи</b>")
	if state.Search != "" {
		builder.WriteString(fmt.Sprintf(" · поиск «%s»", escape(state.Search)))
	}
	builder.WriteString(fmt.Sprintf("\nСтраница %d из %d · всего %d\n\n", page.Page, page.Pages, page.Total))

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, task := range page.Items {
		builder.WriteString(service.FormatTask(task, now))
		builder.WriteByte('\n')

		var row []tgbotapi.InlineKeyboardButton
		if !task.IsCompleted {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("✅ #%d · %s", task.ID, shortTitle(task.Title, 20)),
				cbCompletePrefix+strconv.FormatUint(uint64(task.ID), 10)))
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeletePrefix+strconv.FormatUint(uint64(task.ID), 10)))
		rows = append(rows, row)
	}

	if page.Pages > 1 {
		var nav []tgbotapi.InlineKeyboardButton
		if page.Page > 1 {
			nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(btnPrev, pageCallback(page.Page-1, state)))
		}
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d/%d", page.Page, page.Pages), cbNoop))
		if page.Page < page.Pages {
			nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(btnNext, pageCallback(page.Page+1, state)))
		}
		rows = append(rows, nav)
	}

	return strings.TrimSpace(builder.String()), tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func formatCreated(task service.TaskView, loc *time.Location) string {
	var summary strings.Builder
	summary.WriteString("✅ <b>Задача сохранена</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>ID:</b> %d\n", task.ID))
	summary.WriteString(fmt.Sprintf("• <b>Название:</b> %s\n", escape(task.Title)))
	if task.Description != "" {
		summary.WriteString(fmt.Sprintf("• <b>Описание:</b> %s\n", escape(task.Description)))
	}
	if task.Status != nil {
		summary.WriteString(fmt.Sprintf("• <b>Статус:</b> %s\n", escape(task.Status.Name)))
	}
	if task.Priority != nil {
		summary.WriteString(fmt.Sprintf("• <b>Приоритет:</b> %s\n", escape(task.Priority.Name)))
	}
	if task.Deadline != nil {
		summary.WriteString(fmt.Sprintf("• <b>Дедлайн:</b> %s\n", task.Deadline.In(loc).Format("2006-01-02 15:04")))
	}
	return strings.TrimSpace(summary.String())
}

func formatSettings(settings *service.Settings) string {
	var builder strings.Builder
	builder.WriteString("⚙️ <b>Настройки</b>\n")
	sections := []struct {
		title string
		items []model.VocabularyItem
	}{
		{"Статусы", settings.Statuses},
		{"Приоритеты", settings.Priorities},
		{"Сроки", settings.Durations},
		{"Типы задач", settings.Types},
	}
	for _, section := range sections {
		builder.WriteString(fmt.Sprintf("\n<b>%s</b>\n", section.title))
		if len(section.items) == 0 {
			builder.WriteString("— пусто\n")
			continue
		}
		for _, item := range section.items {
			line := "• " + escape(item.Name)
			if item.IsDefault {
				line += " ⭐"
			}
			if item.IsFinal {
				line += " 🏁"
			}
			builder.WriteString(line + "\n")
		}
	}
	return strings.TrimSpace(builder.String())
}

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnCancel),
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNewTask),
			tgbotapi.NewKeyboardButton(menuLabelTasks),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelSettings),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// durationKeyboard lays out duration names two per row.
func durationKeyboard(names []string) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for i := 0; i < len(names); i += 2 {
		row := tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(names[i]))
		if i+1 < len(names) {
			row = append(row, tgbotapi.NewKeyboardButton(names[i+1]))
		}
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnSkip),
		tgbotapi.NewKeyboardButton(btnCancelDialog),
	))
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "-" || value == strings.ToLower(btnSkip) || value == "пропустить" || value == "skip"
}

func isConfirmInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnConfirm) || value == "подтвердить" || value == "да"
}

func isCancelInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancel) || value == "отмена"
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "отменить ввод" || value == "отмена"
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func escape(s string) string {
	return html.EscapeString(s)
}
