package handlers

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	buttonToday       = "Сегодня"
	buttonTomorrow    = "Завтра"
	buttonWeek        = "Неделя"
	buttonChangeClass = "Сменить класс"
	buttonBroadcast   = "📢 Рассылка"
)

func (h *Handler) buildMenuKeyboard(admin bool) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonToday),
			tgbotapi.NewKeyboardButton(buttonTomorrow),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonWeek),
			tgbotapi.NewKeyboardButton(buttonChangeClass),
		),
	}
	// Кнопка рассылки только для администратора
	if admin {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(buttonBroadcast)))
	}

	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func (h *Handler) sendMenu(msg *tgbotapi.Message, class string) {
	reply := tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf("Ваш класс: %s\n\nВыберите действие:", class))
	reply.ReplyMarkup = h.buildMenuKeyboard(h.isAdmin(msg))
	h.sendMessage(reply)
}
