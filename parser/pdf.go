package parser

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"lesson-bot/types"
)

// PDF восстанавливает таблицы страниц по координатам текста:
// строки таблицы - группы фрагментов с общей базовой линией,
// колонки - промежутки между вертикальными линиями сетки, а без сетки -
// непересекающиеся по X полосы текста. Фрагмент попадает в колонку,
// с которой сильнее всего перекрывается.
type PDF struct {
	// LineTolerance - допустимая разница по Y внутри одной строки (pt)
	LineTolerance float64
	// ColumnGap - минимальный пустой промежуток по X между колонками без сетки (pt)
	ColumnGap float64
	// RuleMerge - линии сетки ближе этого расстояния считаются одной (pt)
	RuleMerge float64
	// FontSize - кегль для оценки ширины фрагментов без метрик (pt)
	FontSize float64
}

// NewPDF создает разборщик с допусками, подходящими для таблиц A4
func NewPDF() *PDF {
	return &PDF{LineTolerance: 3, ColumnGap: 4, RuleMerge: 2, FontSize: 10}
}

// Parse читает документ через pdfcpu и возвращает по странице на каждую
// страницу PDF, включая пустые: индекс страницы - индекс учебного дня.
func (p *PDF) Parse(raw []byte) ([]types.Page, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(raw), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	pages := make([]types.Page, 0, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		content, err := readPage(ctx, pageNr)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageNr, err)
		}
		pages = append(pages, p.layout(content))
	}
	return pages, nil
}

func readPage(ctx *model.Context, pageNr int) (pageContent, error) {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return pageContent{}, err
	}
	if r == nil {
		return pageContent{}, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return pageContent{}, err
	}
	return extractContent(data, pageFonts(ctx, pageNr)), nil
}

type line struct {
	y    float64
	runs []textRun
}

// span - колонка таблицы по X
type span struct {
	lo, hi float64
}

// layout собирает фрагменты текста страницы в Grid
func (p *PDF) layout(c pageContent) types.Page {
	if len(c.runs) == 0 {
		return types.Page{}
	}

	lines := p.groupLines(c.runs)
	cols := p.ruleColumns(c.rules, lines)
	if len(cols) < 2 {
		cols = p.textColumns(lines)
	}

	text := make([]string, 0, len(lines))
	rows := make([][]int, len(lines))
	used := make([]bool, len(cols))
	for i, ln := range lines {
		parts := make([]string, 0, len(ln.runs))
		rows[i] = make([]int, len(ln.runs))
		for j, r := range ln.runs {
			parts = append(parts, r.text)
			col := p.columnOf(cols, r)
			rows[i][j] = col
			used[col] = true
		}
		text = append(text, strings.Join(parts, " "))
	}

	// Пустые колонки по краям - поля страницы между рамкой и сеткой
	first, last := 0, len(cols)-1
	for first < last && !used[first] {
		first++
	}
	for last > first && !used[last] {
		last--
	}

	grid := make(types.Grid, 0, len(lines))
	for i, ln := range lines {
		row := make(types.Row, last-first+1)
		for j, r := range ln.runs {
			col := rows[i][j] - first
			if col < 0 || col >= len(row) {
				continue
			}
			if row[col] == nil {
				row[col] = types.Text(r.text)
			} else {
				row[col] = types.Text(*row[col] + " " + r.text)
			}
		}
		grid = mergeContinuation(grid, row)
	}

	return types.Page{
		Text:  strings.Join(text, "\n"),
		Grids: []types.Grid{grid},
	}
}

// groupLines: сверху вниз, внутри строки слева направо
func (p *PDF) groupLines(runs []textRun) []line {
	sorted := make([]textRun, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].y > sorted[j].y })

	lines := make([]line, 0)
	for _, r := range sorted {
		n := len(lines)
		if n > 0 && lines[n-1].y-r.y <= p.LineTolerance {
			lines[n-1].runs = append(lines[n-1].runs, r)
			continue
		}
		lines = append(lines, line{y: r.y, runs: []textRun{r}})
	}
	for i := range lines {
		runs := lines[i].runs
		sort.SliceStable(runs, func(a, b int) bool { return runs[a].x < runs[b].x })
	}
	return lines
}

// width - ширина фрагмента; без метрик оценивается по числу символов
func (p *PDF) width(r textRun) float64 {
	if r.w > 0 {
		return r.w
	}
	return float64(utf8.RuneCountInString(r.text)) * p.FontSize * defaultGlyphWidth / 1000
}

// tableLines - строки таблицы: в строке больше одного фрагмента.
// Заголовки страницы и подписи из одного фрагмента в разметку колонок не входят.
func tableLines(lines []line) []line {
	out := make([]line, 0, len(lines))
	for _, ln := range lines {
		if len(ln.runs) > 1 {
			out = append(out, ln)
		}
	}
	return out
}

// ruleColumns строит колонки по вертикальным линиям сетки, пересекающим
// область строк таблицы. Меньше двух колонок - сетки нет.
func (p *PDF) ruleColumns(rules []rule, lines []line) []span {
	table := tableLines(lines)
	if len(rules) == 0 || len(table) == 0 {
		return nil
	}
	top := table[0].y + p.LineTolerance
	bottom := table[len(table)-1].y - p.LineTolerance

	xs := make([]float64, 0, len(rules))
	for _, r := range rules {
		if r.y1 >= bottom && r.y0 <= top {
			xs = append(xs, r.x)
		}
	}
	sort.Float64s(xs)

	bounds := make([]float64, 0, len(xs))
	for _, x := range xs {
		if n := len(bounds); n > 0 && x-bounds[n-1] <= p.RuleMerge {
			continue
		}
		bounds = append(bounds, x)
	}
	if len(bounds) < 3 {
		return nil
	}

	cols := make([]span, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		cols = append(cols, span{lo: bounds[i], hi: bounds[i+1]})
	}
	return cols
}

// textColumns строит колонки по проекции фрагментов строк таблицы на ось X:
// перекрывающиеся фрагменты (в том числе выровненные по центру ячейки)
// сливаются в одну полосу, граница колонок - середина промежутка между полосами.
func (p *PDF) textColumns(lines []line) []span {
	var bands []span
	for _, ln := range tableLines(lines) {
		for _, r := range ln.runs {
			bands = append(bands, span{lo: r.x, hi: r.x + p.width(r)})
		}
	}
	if len(bands) == 0 {
		return []span{{lo: math.Inf(-1), hi: math.Inf(1)}}
	}
	sort.Slice(bands, func(i, j int) bool { return bands[i].lo < bands[j].lo })

	merged := []span{bands[0]}
	for _, b := range bands[1:] {
		n := len(merged) - 1
		if b.lo-merged[n].hi < p.ColumnGap {
			merged[n].hi = math.Max(merged[n].hi, b.hi)
			continue
		}
		merged = append(merged, b)
	}

	cols := make([]span, len(merged))
	for i := range merged {
		lo, hi := math.Inf(-1), math.Inf(1)
		if i > 0 {
			lo = (merged[i-1].hi + merged[i].lo) / 2
		}
		if i+1 < len(merged) {
			hi = (merged[i].hi + merged[i+1].lo) / 2
		}
		cols[i] = span{lo: lo, hi: hi}
	}
	return cols
}

// columnOf - колонка с наибольшим перекрытием фрагмента, а если перекрытия
// нет - ближайшая к его середине
func (p *PDF) columnOf(cols []span, r textRun) int {
	lo, hi := r.x, r.x+p.width(r)
	mid := (lo + hi) / 2

	best, bestOverlap := -1, 0.0
	for i, c := range cols {
		if o := math.Min(hi, c.hi) - math.Max(lo, c.lo); o > bestOverlap {
			best, bestOverlap = i, o
		}
	}
	if best >= 0 {
		return best
	}

	best, bestDist := 0, math.Inf(1)
	for i, c := range cols {
		d := 0.0
		switch {
		case mid < c.lo:
			d = c.lo - mid
		case mid > c.hi:
			d = mid - c.hi
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// mergeContinuation дописывает перенесенные строки ячеек ("Русский" / "язык")
// к предыдущей строке урока: у продолжения пустая первая колонка.
func mergeContinuation(grid types.Grid, row types.Row) types.Grid {
	n := len(grid)
	if n == 0 || row[0] != nil || !isLessonRow(grid[n-1]) {
		return append(grid, row)
	}
	prev := grid[n-1]
	for i, c := range row {
		if c == nil {
			continue
		}
		if prev[i] == nil {
			prev[i] = c
		} else {
			prev[i] = types.Text(*prev[i] + "\n" + *c)
		}
	}
	return grid
}

func isLessonRow(r types.Row) bool {
	if len(r) == 0 || r[0] == nil {
		return false
	}
	s := strings.TrimSpace(*r[0])
	if s == "" {
		return false
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}
