package parser

import (
	"unicode"
	"unicode/utf16"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// defaultGlyphWidth - ширина глифа (1/1000 em), когда у шрифта нет метрик
const defaultGlyphWidth = 500

// maxRangeCodes ограничивает размер одного bfrange
const maxRangeCodes = 1 << 16

// font - то, что нужно от шрифта для извлечения текста:
// разбиение строки на коды, коды в Unicode и ширины глифов.
type font struct {
	// codeLen - байт на код: 1 для простых шрифтов, 2 для Type0 (Identity-H)
	codeLen   int
	toUnicode map[uint32]string
	widths    map[uint32]float64
	// defaultWidth - ширина кода без записи в widths
	defaultWidth float64
}

func (f *font) codes(b []byte) []uint32 {
	n := f.codeLen
	if n < 1 {
		n = 1
	}
	out := make([]uint32, 0, len(b)/n)
	for i := 0; i+n <= len(b); i += n {
		var c uint32
		for _, x := range b[i : i+n] {
			c = c<<8 | uint32(x)
		}
		out = append(out, c)
	}
	return out
}

// decode переводит строку PDF в текст и возвращает ширину в 1/1000 em.
// nil-шрифт и шрифт без ToUnicode разбираются эвристикой decodeText.
func (f *font) decode(b []byte) (string, float64) {
	if f == nil {
		s := decodeText(b)
		return s, float64(len([]rune(s))) * defaultGlyphWidth
	}

	codes := f.codes(b)
	var width float64
	for _, c := range codes {
		if w, ok := f.widths[c]; ok {
			width += w
		} else {
			width += f.defaultWidth
		}
	}

	if f.toUnicode == nil {
		return printable(decodeText(b)), width
	}
	out := make([]rune, 0, len(codes))
	for _, c := range codes {
		if s, ok := f.toUnicode[c]; ok {
			out = append(out, []rune(s)...)
			continue
		}
		if f.codeLen == 1 {
			out = append(out, []rune(decodeText([]byte{byte(c)}))...)
		}
	}
	return string(out), width
}

// printable убирает управляющие символы, оставшиеся от недекодируемых кодов
func printable(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\n' || !unicode.IsControl(r) {
			out = append(out, r)
		}
	}
	return string(out)
}

// pageFonts читает шрифты из ресурсов страницы. Ошибки отдельных шрифтов
// не фатальны: такой шрифт просто отсутствует в карте.
func pageFonts(ctx *model.Context, pageNr int) map[string]*font {
	_, _, attrs, err := ctx.PageDict(pageNr, false)
	if err != nil || attrs == nil || attrs.Resources == nil {
		return nil
	}
	obj, found := attrs.Resources.Find("Font")
	if !found {
		return nil
	}
	dict, err := ctx.DereferenceDict(obj)
	if err != nil || dict == nil {
		return nil
	}

	fonts := make(map[string]*font, len(dict))
	for name, o := range dict {
		d, err := ctx.DereferenceDict(o)
		if err != nil || d == nil {
			continue
		}
		fonts[name] = loadFont(ctx, d)
	}
	return fonts
}

func loadFont(ctx *model.Context, d pdftypes.Dict) *font {
	f := &font{codeLen: 1, defaultWidth: defaultGlyphWidth}
	if st := d.NameEntry("Subtype"); st != nil && *st == "Type0" {
		f.codeLen = 2
		f.defaultWidth = 1000
		loadCIDWidths(ctx, d, f)
	} else {
		loadSimpleWidths(ctx, d, f)
	}

	if o, found := d.Find("ToUnicode"); found {
		sd, _, err := ctx.DereferenceStreamDict(o)
		if err == nil && sd != nil && sd.Decode() == nil {
			if cm := parseCMap(sd.Content); cm != nil {
				f.toUnicode = cm.chars
				if cm.codeLen > 0 {
					f.codeLen = cm.codeLen
				}
			}
		}
	}
	return f
}

// loadSimpleWidths: /FirstChar и /Widths простого шрифта
func loadSimpleWidths(ctx *model.Context, d pdftypes.Dict, f *font) {
	first := d.IntEntry("FirstChar")
	o, found := d.Find("Widths")
	if first == nil || !found {
		return
	}
	arr, err := ctx.DereferenceArray(o)
	if err != nil {
		return
	}
	f.widths = make(map[uint32]float64, len(arr))
	for i, w := range arr {
		v, err := ctx.DereferenceNumber(w)
		if err != nil {
			continue
		}
		f.widths[uint32(*first+i)] = v
	}
}

// loadCIDWidths: /DW и /W первого потомка шрифта Type0.
// Формат /W: c [w1 w2 ...] или cFirst cLast w.
func loadCIDWidths(ctx *model.Context, d pdftypes.Dict, f *font) {
	o, found := d.Find("DescendantFonts")
	if !found {
		return
	}
	arr, err := ctx.DereferenceArray(o)
	if err != nil || len(arr) == 0 {
		return
	}
	cid, err := ctx.DereferenceDict(arr[0])
	if err != nil || cid == nil {
		return
	}
	if dw, found := cid.Find("DW"); found {
		if v, err := ctx.DereferenceNumber(dw); err == nil {
			f.defaultWidth = v
		}
	}
	wo, found := cid.Find("W")
	if !found {
		return
	}
	w, err := ctx.DereferenceArray(wo)
	if err != nil {
		return
	}

	f.widths = make(map[uint32]float64)
	for i := 0; i < len(w); {
		start, err := ctx.DereferenceNumber(w[i])
		if err != nil || i+1 >= len(w) {
			return
		}
		if list, err := ctx.DereferenceArray(w[i+1]); err == nil && list != nil {
			for k, x := range list {
				if v, err := ctx.DereferenceNumber(x); err == nil {
					f.widths[uint32(start)+uint32(k)] = v
				}
			}
			i += 2
			continue
		}
		if i+2 >= len(w) {
			return
		}
		end, err1 := ctx.DereferenceNumber(w[i+1])
		v, err2 := ctx.DereferenceNumber(w[i+2])
		if err1 != nil || err2 != nil || end < start || end-start > maxRangeCodes {
			return
		}
		for k := uint32(0); k <= uint32(end-start); k++ {
			f.widths[uint32(start)+k] = v
		}
		i += 3
	}
}

// cmap - разобранный ToUnicode CMap
type cmap struct {
	codeLen int
	chars   map[uint32]string
}

// parseCMap разбирает секции codespacerange, bfchar и bfrange потока
// ToUnicode. Остальной PostScript пропускается.
func parseCMap(data []byte) *cmap {
	lx := &lexer{data: data}
	cm := &cmap{chars: make(map[uint32]string)}
	var (
		section string
		args    []token
	)

	for {
		t, ok := lx.next()
		if !ok {
			break
		}
		switch t.kind {
		case tokString, tokArrayStart, tokArrayEnd:
			if section != "" {
				args = append(args, t)
			}
			continue
		case tokOperator:
		default:
			continue
		}

		switch t.op {
		case "begincodespacerange", "beginbfchar", "beginbfrange":
			section = t.op
			args = args[:0]
		case "endcodespacerange":
			if len(args) > 0 && args[0].kind == tokString && len(args[0].str) > 0 {
				cm.codeLen = len(args[0].str)
			}
			section = ""
		case "endbfchar":
			for i := 0; i+1 < len(args); i += 2 {
				if args[i].kind == tokString && args[i+1].kind == tokString {
					cm.chars[codeOf(args[i].str)] = utf16BE(args[i+1].str)
				}
			}
			section = ""
		case "endbfrange":
			cm.addRanges(args)
			section = ""
		}
	}

	if len(cm.chars) == 0 {
		return nil
	}
	return cm
}

func (cm *cmap) addRanges(args []token) {
	for i := 0; i+2 < len(args); {
		if args[i].kind != tokString || args[i+1].kind != tokString {
			return
		}
		lo, hi := codeOf(args[i].str), codeOf(args[i+1].str)
		if hi < lo || hi-lo > maxRangeCodes {
			return
		}

		if args[i+2].kind == tokArrayStart {
			j := i + 3
			for c := lo; j < len(args) && args[j].kind == tokString; j++ {
				if c <= hi {
					cm.chars[c] = utf16BE(args[j].str)
				}
				c++
			}
			// ]
			i = j + 1
			continue
		}

		dst := args[i+2].str
		for k := uint32(0); k <= hi-lo; k++ {
			cm.chars[lo+k] = utf16BE(incrementLast(dst, k))
		}
		i += 3
	}
}

func codeOf(b []byte) uint32 {
	var c uint32
	for _, x := range b {
		c = c<<8 | uint32(x)
	}
	return c
}

// incrementLast прибавляет n к последней UTF-16 единице dst
func incrementLast(dst []byte, n uint32) []byte {
	if len(dst) < 2 {
		return dst
	}
	out := make([]byte, len(dst))
	copy(out, dst)
	last := uint32(out[len(out)-2])<<8 | uint32(out[len(out)-1])
	last += n
	out[len(out)-2] = byte(last >> 8)
	out[len(out)-1] = byte(last)
	return out
}

func utf16BE(b []byte) string {
	u := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		u = append(u, uint16(b[i])<<8|uint16(b[i+1]))
	}
	return string(utf16.Decode(u))
}
