package parser

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"lesson-bot/types"
)

// DefaultPageSelector - элементы, которые считаются страницами документа
const DefaultPageSelector = ".page, section"

// HTML разбирает HTML-экспорт расписания: каждая <table> - отдельная таблица
type HTML struct {
	PageSelector string
}

// NewHTML создает разборщик HTML. Пустой selector означает DefaultPageSelector.
func NewHTML(selector string) *HTML {
	if selector == "" {
		selector = DefaultPageSelector
	}
	return &HTML{PageSelector: selector}
}

// Parse возвращает страницы документа. Если в документе есть элементы
// PageSelector, каждый из них - страница. Иначе страницей считается каждая
// таблица вместе с текстом перед ней.
func (h *HTML) Parse(raw []byte) ([]types.Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	// <br> внутри ячеек - перенос строки
	doc.Find("br").ReplaceWithHtml("\n")

	pages := make([]types.Page, 0)
	// страница внутри другой страницы не отдельная: ее таблицы уже в родителе
	sections := doc.Find(h.PageSelector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.ParentsFiltered(h.PageSelector).Length() == 0
	})
	if sections.Length() > 0 {
		sections.Each(func(i int, s *goquery.Selection) {
			page := types.Page{Text: textWithoutTables(s)}
			s.Find("table").Each(func(j int, t *goquery.Selection) {
				page.Grids = append(page.Grids, tableGrid(t))
			})
			pages = append(pages, page)
		})
		return pages, nil
	}

	doc.Find("table").Each(func(i int, t *goquery.Selection) {
		// вложенные таблицы разбираются вместе с внешней
		if t.ParentsFiltered("table").Length() > 0 {
			return
		}
		var text []string
		t.PrevUntil("table").Each(func(j int, s *goquery.Selection) {
			if txt := strings.TrimSpace(s.Text()); txt != "" {
				text = append(text, txt)
			}
		})
		// PrevUntil идет от таблицы назад
		for l, r := 0, len(text)-1; l < r; l, r = l+1, r-1 {
			text[l], text[r] = text[r], text[l]
		}
		pages = append(pages, types.Page{
			Text:  strings.Join(text, "\n"),
			Grids: []types.Grid{tableGrid(t)},
		})
	})

	return pages, nil
}

func textWithoutTables(s *goquery.Selection) string {
	c := s.Clone()
	c.Find("table").Remove()
	return strings.TrimSpace(c.Text())
}

// tableGrid переводит <table> в Grid. Ячейки, занятые colspan/rowspan
// соседней ячейки, остаются пустыми (nil), как у объединенных ячеек PDF.
func tableGrid(t *goquery.Selection) types.Grid {
	grid := make(types.Grid, 0)
	// rowspans[col] = сколько еще строк занимает ячейка сверху
	rowspans := make(map[int]int)

	t.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if !tr.Closest("table").IsSelection(t) {
			return
		}

		row := make(types.Row, 0)
		col := 0
		skipSpanned := func() {
			for rowspans[col] > 0 {
				rowspans[col]--
				row = append(row, nil)
				col++
			}
		}

		tr.ChildrenFiltered("td, th").Each(func(j int, td *goquery.Selection) {
			skipSpanned()

			row = append(row, types.Text(strings.TrimSpace(td.Text())))
			colspan := spanAttr(td, "colspan")
			rowspan := spanAttr(td, "rowspan")
			for k := 0; k < colspan; k++ {
				if k > 0 {
					row = append(row, nil)
				}
				if rowspan > 1 {
					rowspans[col] = rowspan - 1
				}
				col++
			}
		})
		// хвост строки, занятый rowspan сверху
		for c, left := range rowspans {
			if c >= col && left > 0 {
				for len(row) <= c {
					row = append(row, nil)
				}
				rowspans[c]--
			}
		}

		grid = append(grid, row)
	})

	return grid
}

func spanAttr(s *goquery.Selection, name string) int {
	v, ok := s.Attr(name)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
