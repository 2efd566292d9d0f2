package schedule

import (
	"strconv"
	"strings"

	"lesson-bot/types"
)

// ExtractLessons собирает уроки класса из строк ниже заголовка.
// Возвращает false, если класса нет в заголовке этой таблицы.
// Пустой список при true означает "нет уроков", а не "класс не найден".
func ExtractLessons(g types.Grid, h types.HeaderRow, class string) ([]types.LessonEntry, bool) {
	col, ok := h.Columns[Normalize(class)]
	if !ok {
		return nil, false
	}

	lessons := make([]types.LessonEntry, 0)
	for i := h.Index + 1; i < len(g); i++ {
		row := g[i]
		// Битая строка не прерывает просмотр, просто пропускается
		if len(row) < col+2 {
			continue
		}

		number, ok := lessonNumber(row.At(0))
		if !ok {
			continue
		}

		subject := flatten(row.At(col))
		if subject == "" || subject == "-" {
			continue
		}

		room := "-"
		if c := row.At(col + 1); c != nil {
			room = flatten(c)
		}

		lessons = append(lessons, types.LessonEntry{
			Number:  number,
			Time:    trimmed(row.At(1)),
			Subject: subject,
			Room:    room,
		})
	}

	return lessons, true
}

// lessonNumber разбирает номер урока: только цифры, без знака
func lessonNumber(c types.Cell) (int, bool) {
	s := trimmed(c)
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func trimmed(c types.Cell) string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(*c)
}

// flatten склеивает многострочную ячейку в одну строку
func flatten(c types.Cell) string {
	return strings.ReplaceAll(trimmed(c), "\n", " ")
}
