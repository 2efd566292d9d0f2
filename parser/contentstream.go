package parser

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/matrix"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/encoding/charmap"
)

// textRun - фрагмент текста в координатах страницы (pt, Y растет вверх).
// w - ширина фрагмента, 0 если неизвестна.
type textRun struct {
	x, y float64
	w    float64
	text string
}

// rule - вертикальная линия разметки таблицы
type rule struct {
	x, y0, y1 float64
}

// pageContent - текст и линии разметки одной страницы
type pageContent struct {
	runs  []textRun
	rules []rule
}

const (
	// minRuleLength - более короткие вертикальные отрезки не считаются границами ячеек
	minRuleLength = 4
	// maxRuleSkew - допустимое отклонение вертикали по X
	maxRuleSkew = 1
)

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokString
	tokName
	tokArrayStart
	tokArrayEnd
	tokOperator
	tokOther
)

type token struct {
	kind tokenKind
	num  float64
	str  []byte
	op   string
}

// textState - состояние текстовых операторов PDF (9.3 и 9.4)
type textState struct {
	tm, tlm matrix.Matrix
	leading float64
	size    float64
	scale   float64
	font    *font
}

func newMatrix(a, b, c, d, e, f float64) matrix.Matrix {
	return matrix.Matrix{{a, b, 0}, {c, d, 0}, {e, f, 1}}
}

func translate(tx, ty float64) matrix.Matrix {
	return newMatrix(1, 0, 0, 1, tx, ty)
}

func origin(m matrix.Matrix) pdftypes.Point {
	return m.Transform(pdftypes.Point{})
}

// extractContent проходит по операторам потока содержимого страницы:
// показанный текст (Tj, TJ, ', ") с позициями из матриц текста и cm,
// и вертикальные отрезки контуров (m/l, re), которые рисуют сетку таблицы.
// fonts - шрифты ресурсов страницы по имени, может быть nil.
func extractContent(data []byte, fonts map[string]*font) pageContent {
	lx := &lexer{data: data}
	var (
		ctm      = matrix.IdentMatrix
		stack    []matrix.Matrix
		st       = textState{tm: matrix.IdentMatrix, tlm: matrix.IdentMatrix, scale: 1}
		operands []token
		inArray  bool
		array    []token
		out      pageContent

		cur, start pdftypes.Point
		pending    []rule
	)

	num := func(i int) float64 {
		if i < 0 || i >= len(operands) || operands[i].kind != tokNumber {
			return 0
		}
		return operands[i].num
	}
	last := func(n int) []float64 {
		v := make([]float64, n)
		for i := range v {
			v[i] = num(len(operands) - n + i)
		}
		return v
	}
	lastString := func() []token {
		for i := len(operands) - 1; i >= 0; i-- {
			if operands[i].kind == tokString {
				return []token{operands[i]}
			}
		}
		return nil
	}

	// show выводит строки и сдвигает матрицу текста на их ширину
	show := func(parts []token) {
		var (
			sb      strings.Builder
			advance float64
		)
		for _, p := range parts {
			switch p.kind {
			case tokString:
				s, w := st.font.decode(p.str)
				sb.WriteString(s)
				advance += w / 1000 * st.size
			case tokNumber:
				advance -= p.num / 1000 * st.size
			}
		}
		advance *= st.scale

		begin := origin(st.tm.Multiply(ctm))
		st.tm = translate(advance, 0).Multiply(st.tm)
		end := origin(st.tm.Multiply(ctm))

		text := strings.TrimSpace(sb.String())
		if text == "" {
			return
		}
		x, w := begin.X, end.X-begin.X
		if w < 0 {
			x, w = end.X, -w
		}
		out.runs = append(out.runs, textRun{x: x, y: begin.Y, w: w, text: text})
	}
	nextLine := func(tx, ty float64) {
		st.tlm = translate(tx, ty).Multiply(st.tlm)
		st.tm = st.tlm
	}
	segment := func(a, b pdftypes.Point) {
		a, b = ctm.Transform(a), ctm.Transform(b)
		if math.Abs(a.X-b.X) > maxRuleSkew || math.Abs(a.Y-b.Y) < minRuleLength {
			return
		}
		pending = append(pending, rule{x: (a.X + b.X) / 2, y0: math.Min(a.Y, b.Y), y1: math.Max(a.Y, b.Y)})
	}

	for {
		t, ok := lx.next()
		if !ok {
			break
		}
		switch t.kind {
		case tokArrayStart:
			inArray = true
			array = array[:0]
			continue
		case tokArrayEnd:
			inArray = false
			operands = append(operands, token{kind: tokArrayEnd})
			continue
		case tokOperator:
		default:
			if inArray {
				array = append(array, t)
			} else {
				operands = append(operands, t)
			}
			continue
		}

		switch t.op {
		case "q":
			stack = append(stack, ctm)
		case "Q":
			if n := len(stack); n > 0 {
				ctm = stack[n-1]
				stack = stack[:n-1]
			}
		case "cm":
			m := last(6)
			ctm = newMatrix(m[0], m[1], m[2], m[3], m[4], m[5]).Multiply(ctm)

		case "m":
			p := last(2)
			cur = pdftypes.Point{X: p[0], Y: p[1]}
			start = cur
		case "l":
			p := last(2)
			next := pdftypes.Point{X: p[0], Y: p[1]}
			segment(cur, next)
			cur = next
		case "c", "v", "y":
			p := last(2)
			cur = pdftypes.Point{X: p[0], Y: p[1]}
		case "re":
			r := last(4)
			x, y, w, h := r[0], r[1], r[2], r[3]
			segment(pdftypes.Point{X: x, Y: y}, pdftypes.Point{X: x, Y: y + h})
			segment(pdftypes.Point{X: x + w, Y: y}, pdftypes.Point{X: x + w, Y: y + h})
			cur = pdftypes.Point{X: x, Y: y}
			start = cur
		case "h":
			segment(cur, start)
			cur = start
		case "S", "s", "f", "F", "f*", "B", "B*", "b", "b*":
			out.rules = append(out.rules, pending...)
			pending = pending[:0]
		case "n":
			pending = pending[:0]

		case "BT":
			st.tm, st.tlm = matrix.IdentMatrix, matrix.IdentMatrix
		case "Tf":
			st.size = num(len(operands) - 1)
			if n := len(operands) - 2; n >= 0 && operands[n].kind == tokName {
				st.font = fonts[operands[n].op]
			}
		case "Tz":
			st.scale = num(len(operands)-1) / 100
		case "TL":
			st.leading = num(len(operands) - 1)
		case "Td":
			p := last(2)
			nextLine(p[0], p[1])
		case "TD":
			p := last(2)
			st.leading = -p[1]
			nextLine(p[0], p[1])
		case "Tm":
			m := last(6)
			st.tlm = newMatrix(m[0], m[1], m[2], m[3], m[4], m[5])
			st.tm = st.tlm
		case "T*":
			nextLine(0, -st.leading)
		case "Tj":
			show(lastString())
		case "'", "\"":
			nextLine(0, -st.leading)
			show(lastString())
		case "TJ":
			show(array)
			array = nil
		}
		operands = operands[:0]
	}

	return out
}

// decodeText переводит байты строки PDF без сведений о шрифте в UTF-8.
// Строки с BOM UTF-16BE и корректный UTF-8 берутся как есть, остальное
// считается cp1251.
func decodeText(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		return utf16BE(b[2:])
	}
	if utf8.Valid(b) {
		return string(b)
	}
	s, err := charmap.Windows1251.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

type lexer struct {
	data []byte
	pos  int
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func (l *lexer) next() (token, bool) {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case isSpace(c):
			l.pos++
		case c == '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		case c == '(':
			return token{kind: tokString, str: l.literal()}, true
		case c == '<':
			if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
				l.pos += 2
				return token{kind: tokOther}, true
			}
			return token{kind: tokString, str: l.hex()}, true
		case c == '>':
			l.pos++
			if l.pos < len(l.data) && l.data[l.pos] == '>' {
				l.pos++
			}
			return token{kind: tokOther}, true
		case c == '[':
			l.pos++
			return token{kind: tokArrayStart}, true
		case c == ']':
			l.pos++
			return token{kind: tokArrayEnd}, true
		case c == '/':
			l.pos++
			return token{kind: tokName, op: l.word()}, true
		case c == '{' || c == '}' || c == ')':
			l.pos++
			return token{kind: tokOther}, true
		default:
			w := l.word()
			if w == "" {
				l.pos++
				return token{kind: tokOther}, true
			}
			if f, err := strconv.ParseFloat(w, 64); err == nil {
				return token{kind: tokNumber, num: f}, true
			}
			return token{kind: tokOperator, op: w}, true
		}
	}
	return token{}, false
}

func (l *lexer) word() string {
	start := l.pos
	for l.pos < len(l.data) && !isSpace(l.data[l.pos]) && !isDelimiter(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

// literal читает (строку) с вложенными скобками и escape-последовательностями
func (l *lexer) literal() []byte {
	l.pos++ // (
	depth := 1
	var out []byte
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '\\':
			if l.pos >= len(l.data) {
				return out
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r':
				if l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for k := 0; k < 2 && l.pos < len(l.data) && l.data[l.pos] >= '0' && l.data[l.pos] <= '7'; k++ {
						v = v*8 + int(l.data[l.pos]-'0')
						l.pos++
					}
					out = append(out, byte(v))
				} else {
					out = append(out, e)
				}
			}
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				return out
			}
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}
	return out
}

// hex читает <hex-строку>
func (l *lexer) hex() []byte {
	l.pos++ // <
	var digits []byte
	for l.pos < len(l.data) && l.data[l.pos] != '>' {
		c := l.data[l.pos]
		if !isSpace(c) {
			digits = append(digits, c)
		}
		l.pos++
	}
	l.pos++ // >
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, 0, len(digits)/2)
	for i := 0; i < len(digits); i += 2 {
		v, err := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		if err != nil {
			continue
		}
		out = append(out, byte(v))
	}
	return out
}
