package schedule

import (
	"fmt"
	"strings"

	"lesson-bot/types"
)

// Outcome - вид результата запроса расписания
type Outcome int

const (
	// OutcomeLessons - найдены уроки класса
	OutcomeLessons Outcome = iota
	// OutcomeNoLessons - класс найден, но уроков в этот день нет
	OutcomeNoLessons
	// OutcomeClassNotFound - ни одна таблица дня не содержит класса
	OutcomeClassNotFound
	// OutcomeDayNotFound - для дня нет таблиц
	OutcomeDayNotFound
	// OutcomeFailure - документ не удалось получить и кэша нет
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLessons:
		return "lessons"
	case OutcomeNoLessons:
		return "no_lessons"
	case OutcomeClassNotFound:
		return "class_not_found"
	case OutcomeDayNotFound:
		return "day_not_found"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// FailureText - общее сообщение при ошибке загрузки
const FailureText = "❌ Ошибка загрузки расписания. Попробуйте позже."

// DayNotFoundText - ответ для дня вне учебной недели
const DayNotFoundText = "Расписание на этот день не найдено."

// Result - ответ на запрос расписания класса на один день
type Result struct {
	Outcome  Outcome
	DayIndex int
	Header   types.DayHeader
	Lessons  []types.LessonEntry
}

// HasLessons сообщает, есть ли в результате уроки
func (r Result) HasLessons() bool {
	return r.Outcome == OutcomeLessons
}

// Text форматирует результат для отправки пользователю
func (r Result) Text() string {
	switch r.Outcome {
	case OutcomeFailure:
		return FailureText
	case OutcomeDayNotFound:
		if r.DayIndex < 0 || r.DayIndex >= len(Weekdays) {
			return DayNotFoundText
		}
		return fmt.Sprintf("Расписание на %s не найдено.", Weekdays[r.DayIndex])
	case OutcomeClassNotFound:
		return fmt.Sprintf("Расписание на %s не найдено для вашего класса.", r.Header.Day)
	case OutcomeNoLessons:
		return r.title() + "\n\nНет уроков в этот день."
	}

	var sb strings.Builder
	sb.WriteString(r.title())
	sb.WriteString("\n")
	for _, l := range r.Lessons {
		sb.WriteString("\n")
		sb.WriteString(l.String())
	}
	return sb.String()
}

func (r Result) title() string {
	return "📅 " + r.Header.String()
}
