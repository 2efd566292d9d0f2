package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lesson-bot/types"
)

func TestWeekdayFallback(t *testing.T) {
	assert.Equal(t, "Понедельник", WeekdayFallback(0))
	assert.Equal(t, "Пятница", WeekdayFallback(4))
	assert.Equal(t, "Понедельник", WeekdayFallback(5))
	assert.Equal(t, "Среда", WeekdayFallback(7))
	assert.Equal(t, "Пятница", WeekdayFallback(-1))
}

func TestDayHeaderParse(t *testing.T) {
	p := NewDayHeaderParser(2026)

	cases := []struct {
		text  string
		index int
		want  types.DayHeader
	}{
		{"Среда, 14 января 2026 г.", 0, types.DayHeader{Date: "14 января 2026 г.", Day: "Среда"}},
		{"3  февраля 2026г. ВТОРНИК", 3, types.DayHeader{Date: "3  февраля 2026г.", Day: "Вторник"}},
		{"Расписание уроков", 3, types.DayHeader{Day: "Четверг"}},
		{"12 января 2025 г.", 1, types.DayHeader{Day: "Вторник"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, p.Parse(tc.text, tc.index), tc.text)
	}
}
