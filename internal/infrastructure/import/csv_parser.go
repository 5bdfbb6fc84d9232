package csvimport

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// CSVParser reads an uploaded CSV one row at a time, mapping cells to
// header names. Uploads from spreadsheet exports are messy: a UTF-8 BOM,
// stray quotes, semicolon delimiters and ragged rows all occur in
// practice, so the parser is deliberately lenient about shape and
// strict only about encoding.
type CSVParser struct {
	delimiter rune
	headers   []string
	headerIdx map[string]int
	line      int
	reader    *csv.Reader
}

// ParserOption configures a CSVParser.
type ParserOption func(*CSVParser)

// WithDelimiter overrides the comma delimiter. Shop exports localized
// for Vietnam frequently use semicolons.
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) {
		p.delimiter = d
	}
}

// NewCSVParser wraps the reader, strips a UTF-8 BOM if present, and
// rejects files that are empty or not valid UTF-8.
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	p := &CSVParser{
		delimiter: ',',
		headerIdx: make(map[string]int),
	}
	for _, opt := range opts {
		opt(p)
	}

	buf := bufio.NewReader(r)

	head, err := buf.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(head) == 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		_, _ = buf.Discard(3)
	}

	if err := checkEncoding(buf); err != nil {
		return nil, err
	}

	p.reader = csv.NewReader(buf)
	p.reader.Comma = p.delimiter
	p.reader.LazyQuotes = true
	p.reader.TrimLeadingSpace = true
	p.reader.FieldsPerRecord = -1

	return p, nil
}

// checkEncoding peeks at the start of the file and rejects non-UTF-8
// content. Checking a prefix rather than the whole file keeps large
// uploads cheap; a bad byte later surfaces as a parse error instead.
func checkEncoding(r *bufio.Reader) error {
	content, err := r.Peek(4096)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file for encoding validation: %w", err)
	}
	if len(content) == 0 {
		return ErrEmptyFile
	}
	if !utf8.Valid(content) {
		return ErrInvalidEncoding
	}
	return nil
}

// ParseHeader consumes the first line and builds the column index.
// It must be called before ReadRow.
func (p *CSVParser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	p.headers = make([]string, len(record))
	for i, h := range record {
		name := strings.TrimSpace(h)
		p.headers[i] = name
		p.headerIdx[name] = i
	}
	if len(p.headers) == 0 {
		return ErrMissingHeader
	}

	p.line = 1
	return nil
}

// Headers returns the column names in file order.
func (p *CSVParser) Headers() []string {
	return p.headers
}

// Row is one parsed data row. LineNumber is the physical line in the
// file, counting the header as line 1, so it matches what the uploader
// sees in their spreadsheet.
type Row struct {
	LineNumber int
	Data       map[string]string
}

// Get returns the cell under the named header, or "" if absent.
func (r *Row) Get(header string) string {
	return r.Data[header]
}

// GetOrDefault returns the cell value, or the fallback when the cell
// is missing or blank.
func (r *Row) GetOrDefault(header, fallback string) string {
	if v := r.Data[header]; v != "" {
		return v
	}
	return fallback
}

// IsEmpty reports whether every cell in the row is blank.
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow returns the next data row, or io.EOF when the file ends.
// Rows shorter than the header are padded with blanks; extra trailing
// cells are dropped.
func (p *CSVParser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	p.line++
	if err != nil {
		return nil, fmt.Errorf("error reading row %d: %w", p.line, err)
	}

	row := &Row{
		LineNumber: p.line,
		Data:       make(map[string]string, len(p.headers)),
	}
	for i, header := range p.headers {
		if i < len(record) {
			row.Data[header] = strings.TrimSpace(record[i])
		} else {
			row.Data[header] = ""
		}
	}
	return row, nil
}

// CurrentRow returns the line number of the most recently read row.
func (p *CSVParser) CurrentRow() int {
	return p.line
}
