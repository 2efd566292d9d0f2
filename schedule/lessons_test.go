package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lesson-bot/types"
)

func TestExtractLessons(t *testing.T) {
	g := sampleGrid()
	h, ok := LocateHeader(g)
	require.True(t, ok)

	lessons, ok := ExtractLessons(g, h, "9 а")
	require.True(t, ok)
	assert.Equal(t, []types.LessonEntry{
		{Number: 1, Time: "08:30-09:15", Subject: "Математика", Room: "204"},
		{Number: 2, Time: "09:25-10:10", Subject: "Русский язык", Room: "-"},
		{Number: 3, Time: "10:20-11:05", Subject: "История", Room: "105"},
	}, lessons)
}

func TestExtractLessonsSkipsDashSubject(t *testing.T) {
	g := sampleGrid()
	h, _ := LocateHeader(g)

	lessons, ok := ExtractLessons(g, h, "10Б")
	require.True(t, ok)
	require.Len(t, lessons, 2)
	assert.Equal(t, 1, lessons[0].Number)
	assert.Equal(t, 3, lessons[1].Number)
	assert.Equal(t, "Химия", lessons[1].Subject)
}

func TestExtractLessonsSkipsMalformedRowsWithoutStopping(t *testing.T) {
	g := types.Grid{
		row("№", "Время", "9А", "каб", "10Б", "каб"),
		row("1", "08:30", "Алгебра", "1", "", ""),
		row("x", "09:30", "Геометрия", "2", "", ""),
		row("<nil>", "09:30", "Физкультура", "2", "", ""),
		row("2"),
		row("3", "10:30", "Биология", "3", "", ""),
		row("-4", "11:30", "Химия", "3", "", ""),
	}
	h, ok := LocateHeader(g)
	require.True(t, ok)

	lessons, ok := ExtractLessons(g, h, "9А")
	require.True(t, ok)
	numbers := make([]int, 0, len(lessons))
	for _, l := range lessons {
		numbers = append(numbers, l.Number)
	}
	assert.Equal(t, []int{1, 3}, numbers)
}

func TestExtractLessonsEmptySubject(t *testing.T) {
	g := types.Grid{
		row("№", "Время", "9А", "каб", "10Б", "каб"),
		row("1", "08:30", "", "1", "Физика", "2"),
		row("2", "09:30", "<nil>", "1", "Физика", "2"),
		row("3", "10:30", " - ", "1", "Физика", "2"),
	}
	h, _ := LocateHeader(g)

	lessons, ok := ExtractLessons(g, h, "9А")
	require.True(t, ok)
	assert.Empty(t, lessons)
	assert.NotNil(t, lessons)
}

func TestExtractLessonsClassMissing(t *testing.T) {
	g := sampleGrid()
	h, _ := LocateHeader(g)

	_, ok := ExtractLessons(g, h, "11В")
	assert.False(t, ok)
}

func TestExtractLessonsEndToEnd(t *testing.T) {
	g := types.Grid{
		row("<nil>"),
		row("Лицей"),
		row("<nil>", "<nil>"),
		row("<nil>", "<nil>", "9А", "<nil>", "10Б"),
		row("1", "08:30-09:15", "Математика", "204"),
	}
	h, ok := LocateHeader(g)
	require.True(t, ok)
	assert.Equal(t, 3, h.Index)
	assert.Equal(t, 2, h.Columns[Normalize("9 а")])

	lessons, ok := ExtractLessons(g, h, "9 а")
	require.True(t, ok)
	assert.Equal(t, []types.LessonEntry{
		{Number: 1, Time: "08:30-09:15", Subject: "Математика", Room: "204"},
	}, lessons)
}

func TestExtractLessonsClassInFirstColumn(t *testing.T) {
	g := types.Grid{
		row("9А", "10Б"),
		row("1", "08:30-09:15", "Математика", "204"),
	}
	h, ok := LocateHeader(g)
	require.True(t, ok)
	assert.Equal(t, 0, h.Columns["9А"])

	// колонка класса совпадает с колонкой номера урока
	lessons, ok := ExtractLessons(g, h, "9А")
	require.True(t, ok)
	require.Len(t, lessons, 1)
	assert.Equal(t, "1", lessons[0].Subject)
	assert.Equal(t, "08:30-09:15", lessons[0].Room)
}

func TestExtractLessonsNewlinesInRoom(t *testing.T) {
	g := types.Grid{
		row("№", "Время", "9А", "каб", "10Б"),
		row("1", " 08:30 ", "Информатика", "301\n302"),
	}
	h, _ := LocateHeader(g)
	lessons, ok := ExtractLessons(g, h, "9А")
	require.True(t, ok)
	require.Len(t, lessons, 1)
	assert.Equal(t, "301 302", lessons[0].Room)
	assert.Equal(t, "08:30", lessons[0].Time)
}
