package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"task-planner/internal/model"
)

// digestLimit caps how many open tasks one summary lists.
const digestLimit = 30

// ReminderService builds human-readable summaries for daily notifications.
type ReminderService struct {
	query *QueryService
}

func NewReminderService(query *QueryService) *ReminderService {
	return &ReminderService{query: query}
}

// DailySummary lists the user's open tasks, nearest deadline first.
func (s *ReminderService) DailySummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	open := false
	page, err := s.query.Query(ctx, user.ID, TaskQuery{
		Filter: TaskFilter{IsCompleted: &open},
		Sort:   TaskSort{Field: SortDeadline},
		Page:   PageRequest{Page: 1, Size: digestLimit},
	})
	if err != nil {
		return "", err
	}

	now = now.In(user.Location())
	var builder strings.Builder
	builder.WriteString("📋 <b>Ежедневный отчёт</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("02.01.2006")))

	builder.WriteString("🔥 <b>Текущие задачи</b>\n")
	if len(page.Items) == 0 {
		builder.WriteString("— нет открытых задач\n")
	} else {
		for _, task := range page.Items {
			builder.WriteString(FormatTask(task, now))
		}
		if page.Total > len(page.Items) {
			builder.WriteString(fmt.Sprintf("… и ещё %d\n", page.Total-len(page.Items)))
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

// FormatTask renders one task as an HTML snippet for chat messages.
func FormatTask(task TaskView, now time.Time) string {
	var sb strings.Builder

	icon := "🟢"
	if task.IsCompleted {
		icon = "✅"
	} else if task.Deadline != nil {
		d := task.Deadline.In(now.Location())
		switch {
		case now.After(d):
			icon = "⚠️"
		case d.Sub(now) <= 48*time.Hour:
			icon = "⏳"
		}
	}

	title := html.EscapeString(strings.TrimSpace(task.Title))
	sb.WriteString(fmt.Sprintf("%s <b>#%d</b> %s", icon, task.ID, title))

	var tags []string
	for _, ref := range []*VocabularyRef{task.Status, task.Priority, task.Type} {
		if ref != nil && strings.TrimSpace(ref.Name) != "" {
			tags = append(tags, html.EscapeString(strings.TrimSpace(ref.Name)))
		}
	}
	if len(tags) > 0 {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", strings.Join(tags, " · ")))
	}

	if task.Deadline != nil && !task.IsCompleted {
		d := task.Deadline.In(now.Location())
		if now.After(d) {
			sb.WriteString(fmt.Sprintf("\n   ⏰ до %s — <b>просрочено</b>", d.Format("2006-01-02")))
		} else {
			daysLeft := int(d.Sub(now).Hours()/24) + 1
			sb.WriteString(fmt.Sprintf("\n   ⏰ до %s · осталось ≈%d дн.", d.Format("2006-01-02"), daysLeft))
		}
	}

	if task.Description != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(strings.TrimSpace(task.Description))))
	}

	sb.WriteByte('\n')
	return sb.String()
}
