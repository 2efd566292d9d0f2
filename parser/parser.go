package parser

import (
	"bytes"
	"errors"
	"fmt"

	"lesson-bot/logger"
	"lesson-bot/types"
)

var (
	// ErrUnsupported - документ не PDF и не HTML с таблицами
	ErrUnsupported = errors.New("unsupported document format")
	// ErrNoPages - в документе не нашлось ни одной страницы
	ErrNoPages = errors.New("document has no pages")
)

// Parser выбирает разборщик по содержимому документа
type Parser struct {
	PDF  *PDF
	HTML *HTML
	log  logger.Logger
}

// New создает Parser с настройками по умолчанию
func New(log logger.Logger) *Parser {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Parser{
		PDF:  NewPDF(),
		HTML: NewHTML(""),
		log:  log,
	}
}

// Parse разбирает документ на страницы с таблицами
func (p *Parser) Parse(raw []byte) ([]types.Page, error) {
	var (
		pages []types.Page
		err   error
	)

	switch Detect(raw) {
	case FormatPDF:
		pages, err = p.PDF.Parse(raw)
	case FormatHTML:
		pages, err = p.HTML.Parse(raw)
	default:
		return nil, ErrUnsupported
	}
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	grids := 0
	for _, page := range pages {
		grids += len(page.Grids)
	}
	p.log.Infof("📄 Parsed %d pages, %d tables (%d bytes)", len(pages), grids, len(raw))
	return pages, nil
}

// Format - тип исходного документа
type Format int

const (
	FormatUnknown Format = iota
	FormatPDF
	FormatHTML
)

func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatHTML:
		return "html"
	default:
		return fmt.Sprintf("unknown(%d)", int(f))
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Detect определяет формат по первым байтам документа
func Detect(raw []byte) Format {
	head := bytes.TrimLeft(bytes.TrimPrefix(raw, utf8BOM), " \t\r\n")
	if bytes.HasPrefix(head, []byte("%PDF-")) {
		return FormatPDF
	}
	if len(head) > 0 && head[0] == '<' && bytes.Contains(bytes.ToLower(raw), []byte("<table")) {
		return FormatHTML
	}
	return FormatUnknown
}
