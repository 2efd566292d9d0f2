package schedule

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"lesson-bot/types"
)

// row строит строку таблицы; "<nil>" дает пустую ячейку
func row(cells ...string) types.Row {
	r := make(types.Row, len(cells))
	for i, c := range cells {
		if c == "<nil>" {
			continue
		}
		r[i] = types.Text(c)
	}
	return r
}

type fakeFetcher struct {
	calls atomic.Int32
	delay time.Duration
	mu    sync.Mutex
	err   error
}

func (f *fakeFetcher) Fetch(ctx context.Context) ([]byte, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return []byte("doc"), nil
}

func (f *fakeFetcher) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// fakeExtractor отдает одни и те же страницы при каждом разборе
type fakeExtractor struct {
	pages []types.Page
	err   error
}

func (e *fakeExtractor) Parse([]byte) ([]types.Page, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.pages, nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 12, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

var errDown = errors.New("drive is down")

// sampleGrid: заголовок в строке 3, класс 9А в колонке 2, 10Б в колонке 4
func sampleGrid() types.Grid {
	return types.Grid{
		row("Расписание уроков"),
		row("<nil>"),
		row("", "", "", ""),
		row("№", "Время", "9А", "каб", "10Б", "каб"),
		row("1", "08:30-09:15", "Математика", "204", "Физика", "301"),
		row("2", "09:25-10:10", "Русский\nязык", "<nil>", "-", "301"),
		row("3", "10:20-11:05", "История", "105", "Химия", "302"),
	}
}

func samplePages() []types.Page {
	return []types.Page{
		{Text: "ПОНЕДЕЛЬНИК 12 января 2026 г.", Grids: []types.Grid{sampleGrid()}},
		{Text: "Вторник", Grids: []types.Grid{sampleGrid()}},
		{Text: "", Grids: nil},
		{Text: "четверг", Grids: []types.Grid{sampleGrid()}},
		{Text: "", Grids: []types.Grid{sampleGrid()}},
	}
}
