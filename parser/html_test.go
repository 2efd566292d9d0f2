package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lesson-bot/types"
)

func cells(r types.Row) []any {
	out := make([]any, len(r))
	for i, c := range r {
		if c == nil {
			out[i] = nil
		} else {
			out[i] = *c
		}
	}
	return out
}

const sectionsDoc = `<html><body>
<section>
  <h2>Понедельник, 12 января 2026 г.</h2>
  <table>
    <tr><th>№</th><th>Время</th><th>9А</th><th>каб</th><th>10Б</th><th>каб</th></tr>
    <tr><td>1</td><td>08:30-09:15</td><td>Русский<br>язык</td><td>204</td><td colspan="2">Экскурсия</td></tr>
    <tr><td>2</td><td>09:25-10:10</td><td rowspan="2">Физика</td><td>301</td><td>Химия</td><td></td></tr>
    <tr><td>3</td><td>10:20-11:05</td><td>302</td><td>Алгебра</td><td>12</td></tr>
  </table>
</section>
<section>
  <h2>Вторник</h2>
  <table><tr><td>x</td></tr></table>
  <table><tr><td>y</td></tr></table>
</section>
</body></html>`

func TestHTMLSections(t *testing.T) {
	pages, err := NewHTML("").Parse([]byte(sectionsDoc))
	require.NoError(t, err)
	require.Len(t, pages, 2)

	assert.Equal(t, "Понедельник, 12 января 2026 г.", pages[0].Text)
	require.Len(t, pages[0].Grids, 1)
	g := pages[0].Grids[0]
	require.Len(t, g, 4)

	assert.Equal(t, []any{"№", "Время", "9А", "каб", "10Б", "каб"}, cells(g[0]))
	assert.Equal(t, []any{"1", "08:30-09:15", "Русский\nязык", "204", "Экскурсия", nil}, cells(g[1]))
	assert.Equal(t, []any{"2", "09:25-10:10", "Физика", "301", "Химия", ""}, cells(g[2]))
	assert.Equal(t, []any{"3", "10:20-11:05", nil, "302", "Алгебра", "12"}, cells(g[3]))

	assert.Equal(t, "Вторник", pages[1].Text)
	assert.Len(t, pages[1].Grids, 2)
}

func TestHTMLTablesAsPages(t *testing.T) {
	doc := `<html><body>
<p>Понедельник</p><p>12 января 2026 г.</p>
<table><tr><td>1</td><td><table><tr><td>inner</td></tr></table></td></tr></table>
<p>Вторник</p>
<table><tr><td>2</td></tr></table>
</body></html>`

	pages, err := NewHTML("").Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, pages, 2)

	assert.Equal(t, "Понедельник\n12 января 2026 г.", pages[0].Text)
	require.Len(t, pages[0].Grids[0], 1)
	assert.Equal(t, "1", *pages[0].Grids[0][0][0])

	assert.Equal(t, "Вторник", pages[1].Text)
	assert.Equal(t, []any{"2"}, cells(pages[1].Grids[0][0]))
}

func TestHTMLTrailingRowspan(t *testing.T) {
	doc := `<table>
<tr><td>1</td><td>a</td><td rowspan="3">merged</td></tr>
<tr><td>2</td><td>b</td></tr>
<tr><td>3</td><td>c</td></tr>
<tr><td>4</td><td>d</td><td>e</td></tr>
</table>`
	pages, err := NewHTML("").Parse([]byte(doc))
	require.NoError(t, err)
	g := pages[0].Grids[0]
	require.Len(t, g, 4)
	assert.Equal(t, []any{"2", "b", nil}, cells(g[1]))
	assert.Equal(t, []any{"3", "c", nil}, cells(g[2]))
	assert.Equal(t, []any{"4", "d", "e"}, cells(g[3]))
}

func TestHTMLNestedSections(t *testing.T) {
	doc := `<html><body>
<div class="page"><h2>Понедельник</h2>
  <section><table><tr><td>1</td><td>Алгебра</td></tr></table></section>
</div>
<div class="page"><h2>Вторник</h2>
  <section><p>9А</p><table><tr><td>1</td><td>Физика</td></tr></table></section>
</div>
</body></html>`

	pages, err := NewHTML("").Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, pages, 2)

	assert.Equal(t, "Понедельник", pages[0].Text)
	require.Len(t, pages[0].Grids, 1)
	assert.Equal(t, []any{"1", "Алгебра"}, cells(pages[0].Grids[0][0]))

	assert.Contains(t, pages[1].Text, "Вторник")
	require.Len(t, pages[1].Grids, 1)
	assert.Equal(t, []any{"1", "Физика"}, cells(pages[1].Grids[0][0]))
}
