package schedule

import (
	"fmt"
	"regexp"
	"strings"

	"lesson-bot/types"
)

// Weekdays - учебные дни в порядке страниц документа
var Weekdays = []string{"Понедельник", "Вторник", "Среда", "Четверг", "Пятница"}

var weekdayRe = regexp.MustCompile(`(?i)(понедельник|вторник|среда|четверг|пятница)`)

// WeekdayFallback - имя дня по позиции страницы, когда в тексте его нет.
// Предполагается, что страницы идут с понедельника по пятницу.
func WeekdayFallback(pageIndex int) string {
	i := pageIndex % len(Weekdays)
	if i < 0 {
		i += len(Weekdays)
	}
	return Weekdays[i]
}

// DayHeaderParser извлекает дату и день недели из текста страницы
type DayHeaderParser struct {
	dateRe *regexp.Regexp
}

// NewDayHeaderParser ищет даты вида "12 января 2026 г." для заданного года
func NewDayHeaderParser(year int) *DayHeaderParser {
	pattern := fmt.Sprintf(`(\d{1,2}\s+[а-яА-ЯёЁ]+\s+%d\s*г\.)`, year)
	return &DayHeaderParser{dateRe: regexp.MustCompile(pattern)}
}

// Parse возвращает заголовок страницы с индексом pageIndex
func (p *DayHeaderParser) Parse(text string, pageIndex int) types.DayHeader {
	var h types.DayHeader
	if m := p.dateRe.FindStringSubmatch(text); m != nil {
		h.Date = strings.TrimSpace(m[1])
	}
	if m := weekdayRe.FindStringSubmatch(text); m != nil {
		h.Day = capitalize(m[1])
	} else {
		h.Day = WeekdayFallback(pageIndex)
	}
	return h
}

func capitalize(s string) string {
	r := []rune(strings.ToLower(s))
	if len(r) == 0 {
		return s
	}
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}
