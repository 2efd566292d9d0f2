package schedule

import (
	"regexp"
	"strings"
	"unicode"

	"lesson-bot/types"
)

// classCodeRe: одна или две цифры и одна буква класса ("10Б", "9А")
var classCodeRe = regexp.MustCompile(`^\d{1,2}[A-ZА-ЯЁ]$`)

// Normalize удаляет все пробельные символы и переводит в верхний регистр.
// "10 б" -> "10Б"
func Normalize(text string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text))
}

// IsClassCode проверяет уже нормализованную строку
func IsClassCode(normalized string) bool {
	return classCodeRe.MatchString(normalized)
}

// MatchCell возвращает нормализованный код класса, если ячейка его содержит.
// Пустая ячейка никогда не совпадает.
func MatchCell(c types.Cell) (string, bool) {
	if c == nil {
		return "", false
	}
	norm := Normalize(*c)
	if !IsClassCode(norm) {
		return "", false
	}
	return norm, true
}
