package parser

import (
	"fmt"
	"strings"
)

// buildPDF собирает минимальный PDF: по одному потоку содержимого на страницу
func buildPDF(streams ...string) []byte {
	return buildPDFWithCMap("", streams...)
}

// buildPDFWithCMap - то же, но шрифт /F1 ссылается на поток ToUnicode
// (пустой cmap - без ToUnicode)
func buildPDFWithCMap(cmap string, streams ...string) []byte {
	var b strings.Builder
	b.WriteString("%PDF-1.4\n")

	n := len(streams)
	// 1 - каталог, 2 - дерево страниц, 3 - шрифт, далее пары (страница, поток),
	// последним - ToUnicode
	total := 3 + 2*n
	cmapObj := 0
	if cmap != "" {
		total++
		cmapObj = total
	}
	offsets := make([]int, total+1)

	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	kids := make([]string, n)
	for i := range streams {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	offsets[2] = b.Len()
	fmt.Fprintf(&b, "2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", strings.Join(kids, " "), n)

	offsets[3] = b.Len()
	if cmapObj > 0 {
		fmt.Fprintf(&b, "3 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /ToUnicode %d 0 R >>\nendobj\n", cmapObj)
	} else {
		b.WriteString("3 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")
	}

	for i, stream := range streams {
		page, content := 4+2*i, 5+2*i
		offsets[page] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Contents %d 0 R /Resources << /Font << /F1 3 0 R >> >> >>\nendobj\n", page, content)
		offsets[content] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", content, len(stream), stream)
	}

	if cmapObj > 0 {
		offsets[cmapObj] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", cmapObj, len(cmap), cmap)
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", total+1)
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i <= total; i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", total+1, xref)
	return []byte(b.String())
}

// literalString - строка PDF в скобках как есть
func literalString(s string) string {
	return "(" + s + ")"
}

// cellStream печатает ячейки таблицы: каждая строка - базовая линия,
// каждая колонка - фиксированная координата X
func cellStream(header string, rows [][]string) string {
	return encodedCellStream(literalString, header, rows)
}

func encodedCellStream(enc func(string) string, header string, rows [][]string) string {
	cols := []int{40, 70, 150, 260, 300, 410}
	var b strings.Builder
	b.WriteString("BT\n/F1 10 Tf\n")
	fmt.Fprintf(&b, "1 0 0 1 40 800 Tm\n%s Tj\n", enc(header))
	y := 760
	for _, r := range rows {
		for i, c := range r {
			if c == "" {
				continue
			}
			fmt.Fprintf(&b, "1 0 0 1 %d %d Tm\n%s Tj\n", cols[i], y, enc(c))
		}
		y -= 20
	}
	b.WriteString("ET")
	return b.String()
}

// cyrillicCMap отображает однобайтовые коды 0x80..0xBF на А..я
const cyrillicCMap = `/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
/CMapName /Custom def
1 begincodespacerange
<00> <FF>
endcodespacerange
1 beginbfrange
<80> <BF> <0410>
endbfrange
endcmap
CMapName currentdict /CMap defineresource pop
end
end`

// cyrillicHex кодирует строку для шрифта с cyrillicCMap: А..я в 0x80..0xBF,
// остальное (ASCII) байтом как есть
func cyrillicHex(s string) string {
	var b strings.Builder
	b.WriteByte('<')
	for _, r := range s {
		c := byte(r)
		if r >= 'А' && r <= 'я' {
			c = byte(0x80 + r - 'А')
		}
		fmt.Fprintf(&b, "%02X", c)
	}
	b.WriteByte('>')
	return b.String()
}
