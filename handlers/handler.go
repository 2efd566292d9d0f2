package handlers

import (
	"context"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lesson-bot/broadcast"
	"lesson-bot/logger"
	"lesson-bot/schedule"
)

// Users хранит выбранный класс пользователя
type Users interface {
	SaveClass(ctx context.Context, chatID int64, class string) error
	GetClass(ctx context.Context, chatID int64) (string, error)
}

// Schedules отвечает на запросы расписания
type Schedules interface {
	GetSchedule(ctx context.Context, class string, dayIndex int) schedule.Result
	Refresh(ctx context.Context) error
}

// Broadcaster рассылает сообщение всем пользователям
type Broadcaster interface {
	Run(ctx context.Context, text string) (broadcast.Report, error)
}

// DefaultWeekPause - пауза между сообщениями недельного расписания
const DefaultWeekPause = 300 * time.Millisecond

type Handler struct {
	Bot       broadcast.Sender
	Store     Users
	Schedule  Schedules
	Broadcast Broadcaster
	AdminID   int64
	// Now возвращает текущее время в часовом поясе школы
	Now       func() time.Time
	WeekPause time.Duration

	log           logger.Logger
	mu            sync.Mutex
	broadcastMode map[int64]bool
	wg            sync.WaitGroup
}

func New(bot broadcast.Sender, store Users, sched Schedules, bc Broadcaster, adminID int64, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Handler{
		Bot:           bot,
		Store:         store,
		Schedule:      sched,
		Broadcast:     bc,
		AdminID:       adminID,
		Now:           time.Now,
		WeekPause:     DefaultWeekPause,
		log:           log,
		broadcastMode: make(map[int64]bool),
	}
}

// Wait дожидается завершения запущенных рассылок
func (h *Handler) Wait() {
	h.wg.Wait()
}

// HandleUpdate маршрутизирует одно обновление Telegram
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil {
		return
	}
	msg := update.Message

	switch msg.Command() {
	case "start":
		h.HandleStart(ctx, msg)
		return
	case "refresh":
		h.HandleRefresh(ctx, msg)
		return
	}

	h.HandleText(ctx, msg)
}

func (h *Handler) isAdmin(msg *tgbotapi.Message) bool {
	return h.AdminID != 0 && msg.From != nil && msg.From.ID == h.AdminID
}

func (h *Handler) send(chatID int64, text string) {
	h.sendMessage(tgbotapi.NewMessage(chatID, text))
}

func (h *Handler) sendMessage(msg tgbotapi.MessageConfig) {
	if _, err := h.Bot.Send(msg); err != nil {
		h.log.Warnf("⚠️ Failed to send message to chatID %d: %v", msg.ChatID, err)
	}
}

// savedClass возвращает класс пользователя или "" если класс не выбран
func (h *Handler) savedClass(ctx context.Context, chatID int64) string {
	class, err := h.Store.GetClass(ctx, chatID)
	if err != nil {
		h.log.Errorf("⚠️ Error loading class for chatID %d: %v", chatID, err)
		return ""
	}
	return class
}

func (h *Handler) HandleStart(ctx context.Context, msg *tgbotapi.Message) {
	if class := h.savedClass(ctx, msg.Chat.ID); class != "" {
		h.sendMenu(msg, class)
		return
	}
	h.send(msg.Chat.ID, "Привет! 👋\n\n"+
		"Это бот с расписанием уроков вашей школы.\n\n"+
		"📌 Введите ваш класс (например: 10Б или 10 Б)")
}

// HandleText обрабатывает кнопки меню и ввод класса
func (h *Handler) HandleText(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if h.inBroadcastMode(chatID) {
		h.handleBroadcastText(ctx, msg, text)
		return
	}
	if text == buttonBroadcast {
		h.HandleBroadcastStart(msg)
		return
	}

	// Ввод или смена класса
	if schedule.IsClassCode(schedule.Normalize(text)) {
		class := strings.ToUpper(text)
		if err := h.Store.SaveClass(ctx, chatID, class); err != nil {
			h.log.Errorf("⚠️ Error saving class for chatID %d: %v", chatID, err)
			h.send(chatID, "⚠️ Не удалось сохранить класс. Попробуйте позже.")
			return
		}
		h.log.Infof("🎒 chatID %d selected class %s", chatID, class)
		h.sendMenu(msg, class)
		return
	}

	if text == buttonChangeClass {
		h.send(chatID, "Введите новый класс:")
		return
	}

	class := h.savedClass(ctx, chatID)
	if class == "" {
		h.send(chatID, "Пожалуйста, введите класс правильно (пример: 10Б или 10 Б)")
		return
	}

	switch text {
	case buttonToday:
		h.HandleToday(ctx, chatID, class)
	case buttonTomorrow:
		h.HandleTomorrow(ctx, chatID, class)
	case buttonWeek:
		h.HandleWeek(ctx, chatID, class)
	default:
		h.send(chatID, "Неизвестная команда. Выберите действие в меню или отправьте /start")
	}
}
