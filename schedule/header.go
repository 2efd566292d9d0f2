package schedule

import "lesson-bot/types"

// minHeaderMatches - одна ячейка с кодом класса еще не признак заголовка
const minHeaderMatches = 2

// LocateHeader ищет строку таблицы с наибольшим числом кодов классов.
// При равенстве побеждает более ранняя строка. Если лучшая строка содержит
// меньше двух кодов, заголовок не найден.
func LocateHeader(g types.Grid) (types.HeaderRow, bool) {
	bestIdx, bestCount := -1, 0
	for i, row := range g {
		count := 0
		for _, cell := range row {
			if _, ok := MatchCell(cell); ok {
				count++
			}
		}
		if count > bestCount {
			bestIdx, bestCount = i, count
		}
	}

	if bestIdx < 0 || bestCount < minHeaderMatches {
		return types.HeaderRow{}, false
	}

	// повторяющийся код класса получает последнюю колонку
	columns := make(map[string]int, bestCount)
	for col, cell := range g[bestIdx] {
		if code, ok := MatchCell(cell); ok {
			columns[code] = col
		}
	}

	return types.HeaderRow{Index: bestIdx, Columns: columns}, true
}
