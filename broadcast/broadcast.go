package broadcast

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lesson-bot/logger"
)

// DefaultDelay - пауза между сообщениями (антифлуд)
const DefaultDelay = 50 * time.Millisecond

// Sender отправляет сообщения в Telegram. *tgbotapi.BotAPI удовлетворяет интерфейсу
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// UserLister возвращает всех пользователей бота
type UserLister interface {
	ListUsers(ctx context.Context) ([]int64, error)
}

type Broadcaster struct {
	Bot   Sender
	Users UserLister
	Delay time.Duration
	log   logger.Logger
}

func New(bot Sender, users UserLister, log logger.Logger) *Broadcaster {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Broadcaster{
		Bot:   bot,
		Users: users,
		Delay: DefaultDelay,
		log:   log,
	}
}

// Report - итог рассылки
type Report struct {
	Total  int
	Sent   int
	Failed int
}

// Text форматирует отчет для администратора
func (r Report) Text() string {
	text := fmt.Sprintf("✅ Рассылка завершена!\n\n"+
		"Всего пользователей в базе: %d\n"+
		"Отправлено успешно: %d\n"+
		"Не доставлено: %d", r.Total, r.Sent, r.Failed)
	if r.Sent == 0 && r.Total > 0 {
		text += "\n\n⚠️ Возможно, пользователи заблокировали бота или удалили чат."
	}
	return text
}

// Run отправляет text всем пользователям по очереди.
// Ошибка возвращается только если не удалось получить список пользователей.
func (b *Broadcaster) Run(ctx context.Context, text string) (Report, error) {
	users, err := b.Users.ListUsers(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list users: %w", err)
	}

	b.log.Infof("📢 Broadcast started: %d users", len(users))
	report := Report{Total: len(users)}

	for i, chatID := range users {
		if _, err := b.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			report.Failed++
			b.log.Warnf("⚠️ Broadcast to chatID %d failed: %v", chatID, err)
		} else {
			report.Sent++
		}

		if i == len(users)-1 || b.Delay <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			// оставшиеся считаем недоставленными
			report.Failed += len(users) - i - 1
			b.log.Warnf("⚠️ Broadcast interrupted: %v", ctx.Err())
			return report, nil
		case <-time.After(b.Delay):
		}
	}

	b.log.Infof("✅ Broadcast finished: sent=%d failed=%d", report.Sent, report.Failed)
	return report, nil
}
