package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu     sync.Mutex
	sent   []int64
	failOn map[int64]bool
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg := c.(tgbotapi.MessageConfig)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[msg.ChatID] {
		return tgbotapi.Message{}, errors.New("Forbidden: bot was blocked by the user")
	}
	f.sent = append(f.sent, msg.ChatID)
	return tgbotapi.Message{}, nil
}

type fakeUsers struct {
	ids []int64
	err error
}

func (f fakeUsers) ListUsers(context.Context) ([]int64, error) { return f.ids, f.err }

func TestRunSendsToAllUsers(t *testing.T) {
	sender := &fakeSender{failOn: map[int64]bool{2: true}}
	b := New(sender, fakeUsers{ids: []int64{1, 2, 3}}, nil)
	b.Delay = time.Millisecond

	report, err := b.Run(context.Background(), "Завтра сокращенные уроки")
	require.NoError(t, err)
	assert.Equal(t, Report{Total: 3, Sent: 2, Failed: 1}, report)
	assert.Equal(t, []int64{1, 3}, sender.sent)
}

func TestRunDelaysBetweenMessages(t *testing.T) {
	b := New(&fakeSender{}, fakeUsers{ids: []int64{1, 2, 3}}, nil)
	b.Delay = 20 * time.Millisecond

	start := time.Now()
	_, err := b.Run(context.Background(), "hi")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestRunListError(t *testing.T) {
	b := New(&fakeSender{}, fakeUsers{err: errors.New("db closed")}, nil)
	_, err := b.Run(context.Background(), "hi")
	assert.Error(t, err)
}

func TestRunCanceled(t *testing.T) {
	sender := &fakeSender{}
	b := New(sender, fakeUsers{ids: []int64{1, 2, 3}}, nil)
	b.Delay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	report, err := b.Run(ctx, "hi")
	require.NoError(t, err)
	assert.Equal(t, Report{Total: 3, Sent: 1, Failed: 2}, report)
}

func TestReportText(t *testing.T) {
	text := Report{Total: 4, Sent: 3, Failed: 1}.Text()
	assert.Contains(t, text, "Всего пользователей в базе: 4")
	assert.Contains(t, text, "Отправлено успешно: 3")
	assert.Contains(t, text, "Не доставлено: 1")
	assert.NotContains(t, text, "заблокировали")

	assert.Contains(t, Report{Total: 2, Failed: 2}.Text(), "заблокировали")
	assert.NotContains(t, Report{}.Text(), "заблокировали")
}
