package types

import (
	"fmt"
	"time"
)

// Cell - текст одной ячейки таблицы. nil означает пустую позицию,
// что отличается от пустой строки или строки из пробелов.
type Cell *string

// Text создает заполненную ячейку
func Text(s string) Cell {
	return &s
}

// Row - строка таблицы. Индекс 0 обычно содержит номер урока или код класса
type Row []Cell

// At возвращает ячейку по индексу или nil, если строка короче
func (r Row) At(i int) Cell {
	if i < 0 || i >= len(r) {
		return nil
	}
	return r[i]
}

// Grid - таблица, извлеченная из страницы документа
type Grid []Row

// DayHeader описывает страницу документа: дата и день недели
type DayHeader struct {
	Date string // "12 января 2026 г.", может быть пустой
	Day  string // "Понедельник"
}

// String форматирует заголовок как "Понедельник (12 января 2026 г.)"
func (h DayHeader) String() string {
	if h.Date == "" {
		return h.Day
	}
	return fmt.Sprintf("%s (%s)", h.Day, h.Date)
}

// Page - результат разбора одной страницы документа
type Page struct {
	Text  string
	Grids []Grid
}

// Day - разобранный учебный день: таблицы страницы и ее заголовок
type Day struct {
	Header DayHeader
	Grids  []Grid
}

// HeaderRow - строка таблицы, опознанная как строка с кодами классов
type HeaderRow struct {
	Index   int
	Columns map[string]int // код класса -> индекс колонки
}

// LessonEntry - один урок класса
type LessonEntry struct {
	Number  int
	Time    string // "08:30-09:15"
	Subject string
	Room    string
}

// String форматирует урок как строку сообщения
func (l LessonEntry) String() string {
	return fmt.Sprintf("%d. %s — %s (каб. %s)", l.Number, l.Time, l.Subject, l.Room)
}

// Snapshot - весь разобранный документ одного обновления.
// Заменяется целиком, после публикации не изменяется.
type Snapshot struct {
	Generation string
	Days       []Day
	FetchedAt  time.Time
}

// Day возвращает день по индексу страницы
func (s *Snapshot) Day(i int) (Day, bool) {
	if s == nil || i < 0 || i >= len(s.Days) {
		return Day{}, false
	}
	return s.Days[i], true
}
