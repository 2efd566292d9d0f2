package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lesson-bot/config"
	"lesson-bot/schedule"
)

var weekdays = []string{"Понедельник", "Вторник", "Среда", "Четверг", "Пятница"}

func scheduleDoc() string {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i, day := range weekdays {
		fmt.Fprintf(&sb, `<section><h2>%s, %d января 2026 г.</h2><table>
<tr><th>№</th><th>Время</th><th>9А</th><th>каб</th><th>10Б</th><th>каб</th></tr>
<tr><td>1</td><td>08:30-09:15</td><td>Алгебра</td><td>12</td><td>Физика</td><td>301</td></tr>
<tr><td>2</td><td>09:25-10:10</td><td>История</td><td>14</td><td>-</td><td></td></tr>
<tr><td>3</td><td>10:20-11:05</td><td>Химия</td><td>20</td><td>Литература</td><td>7</td></tr>
<tr><td>4</td><td>11:15-12:00</td><td></td><td></td><td>Биология</td><td>9</td></tr>
</table></section>`, day, 12+i)
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

func testConfig(t *testing.T, baseURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Fetch.FileID = "doc"
	cfg.Fetch.BaseURL = baseURL
	cfg.Fetch.Timeout = 5 * time.Second
	cfg.Fetch.Snapshot = true
	cfg.Storage.Backend = "sqlite"
	cfg.Storage.SQLite.Path = filepath.Join(t.TempDir(), "users.db")
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestAppEndToEnd(t *testing.T) {
	var down atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(scheduleDoc()))
	}))
	defer srv.Close()

	ctx := context.Background()
	a, err := New(ctx, testConfig(t, srv.URL), nil)
	require.NoError(t, err)
	defer a.Close()

	res := a.Service.GetSchedule(ctx, "10 б", 2)
	require.Equal(t, schedule.OutcomeLessons, res.Outcome)
	assert.Equal(t, "Среда", res.Header.Day)
	assert.Equal(t, "14 января 2026 г.", res.Header.Date)
	require.Len(t, res.Lessons, 3)
	assert.Equal(t, "Физика", res.Lessons[0].Subject)
	assert.Equal(t, "Литература", res.Lessons[1].Subject)
	assert.Equal(t, 3, res.Lessons[1].Number)

	assert.Equal(t, schedule.OutcomeClassNotFound, a.Service.GetSchedule(ctx, "11В", 0).Outcome)

	// Drive недоступен: документ берется из хранилища
	gen := a.Cache.Snapshot().Generation
	down.Store(true)
	require.NoError(t, a.Service.Refresh(ctx))
	assert.NotEqual(t, gen, a.Cache.Snapshot().Generation)
	assert.Equal(t, schedule.OutcomeLessons, a.Service.GetSchedule(ctx, "9А", 4).Outcome)
}

func TestAppUnknownBackend(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Storage.Backend = "mongo"
	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
}
