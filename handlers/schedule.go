package handlers

import (
	"context"
	"time"

	"lesson-bot/schedule"
)

// weekdayIndex переводит день недели в индекс страницы: 0 - понедельник, 6 - воскресенье
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// HandleToday отправляет расписание на сегодня. В выходные - ближайший понедельник
func (h *Handler) HandleToday(ctx context.Context, chatID int64, class string) {
	day := weekdayIndex(h.Now())
	if day >= schedule.DaysPerWeek {
		h.send(chatID, "Сегодня выходной — уроков нет.")
		res := h.Schedule.GetSchedule(ctx, class, 0)
		h.send(chatID, "Ближайшее расписание (Понедельник):\n\n"+res.Text())
		return
	}
	h.send(chatID, h.Schedule.GetSchedule(ctx, class, day).Text())
}

// HandleTomorrow отправляет расписание на завтра. С пятницы по воскресенье - понедельник
func (h *Handler) HandleTomorrow(ctx context.Context, chatID int64, class string) {
	day := weekdayIndex(h.Now()) + 1
	if day >= schedule.DaysPerWeek {
		day = 0
	}
	h.send(chatID, h.Schedule.GetSchedule(ctx, class, day).Text())
}

// HandleWeek отправляет пять сообщений, по одному на учебный день
func (h *Handler) HandleWeek(ctx context.Context, chatID int64, class string) {
	hasAny := false
	for day := 0; day < schedule.DaysPerWeek; day++ {
		res := h.Schedule.GetSchedule(ctx, class, day)
		if res.HasLessons() {
			hasAny = true
		}
		h.send(chatID, res.Text())

		if h.WeekPause > 0 && day < schedule.DaysPerWeek-1 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(h.WeekPause):
			}
		}
	}
	if !hasAny {
		h.send(chatID, "На этой неделе уроков нет или файл не содержит расписание.")
	}
}
