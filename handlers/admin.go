package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) inBroadcastMode(chatID int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.broadcastMode[chatID]
}

func (h *Handler) setBroadcastMode(chatID int64, on bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if on {
		h.broadcastMode[chatID] = true
	} else {
		delete(h.broadcastMode, chatID)
	}
}

// HandleBroadcastStart переводит администратора в режим ввода текста рассылки
func (h *Handler) HandleBroadcastStart(msg *tgbotapi.Message) {
	if !h.isAdmin(msg) || h.Broadcast == nil {
		return
	}
	h.setBroadcastMode(msg.Chat.ID, true)

	reply := tgbotapi.NewMessage(msg.Chat.ID, "Введите текст для рассылки всем пользователям:")
	reply.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	h.sendMessage(reply)
}

func (h *Handler) handleBroadcastText(ctx context.Context, msg *tgbotapi.Message, text string) {
	chatID := msg.Chat.ID
	h.setBroadcastMode(chatID, false)
	if !h.isAdmin(msg) {
		return
	}

	if text == "" {
		h.send(chatID, "Текст пустой — рассылка отменена.")
		h.sendMenu(msg, h.adminClass(ctx, chatID))
		return
	}

	h.send(chatID, "🔄 Начинаю рассылку...")
	h.log.Infof("📢 Admin %d started broadcast", msg.From.ID)

	// Рассылка идет в фоне
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		report, err := h.Broadcast.Run(context.WithoutCancel(ctx), text)
		if err != nil {
			h.log.Errorf("⚠️ Broadcast failed: %v", err)
			h.send(chatID, "⚠️ Не удалось выполнить рассылку: не получен список пользователей.")
		} else {
			h.send(chatID, report.Text())
		}
		h.sendMenu(msg, h.adminClass(context.WithoutCancel(ctx), chatID))
	}()
}

func (h *Handler) adminClass(ctx context.Context, chatID int64) string {
	if class := h.savedClass(ctx, chatID); class != "" {
		return class
	}
	return "Админ"
}

// HandleRefresh принудительно обновляет расписание (только администратор)
func (h *Handler) HandleRefresh(ctx context.Context, msg *tgbotapi.Message) {
	if !h.isAdmin(msg) {
		h.send(msg.Chat.ID, "Неизвестная команда. Выберите действие в меню или отправьте /start")
		return
	}
	if err := h.Schedule.Refresh(ctx); err != nil {
		h.log.Errorf("⚠️ Forced refresh failed: %v", err)
		h.send(msg.Chat.ID, "⚠️ Не удалось обновить расписание: "+err.Error())
		return
	}
	h.send(msg.Chat.ID, "✅ Расписание обновлено.")
}
