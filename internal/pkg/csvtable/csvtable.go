// Package csvtable converts between CSV text and domain tables.
package csvtable

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ougirez/supplytwin/internal/domain"
)

// MinLength is the shortest text ValidShape accepts.
const MinLength = 8

// Parse reads header-row CSV. Ragged lines are tolerated; blank lines are skipped. Every row
// keeps the exact text it was read from so Serialize can write untouched rows back unchanged.
func Parse(r io.Reader) (*domain.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &domain.Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	offset := reader.InputOffset()
	table := &domain.Table{Header: header, HeaderSource: string(data[:offset])}

	var pending string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}

		next := reader.InputOffset()
		text := pending + string(data[offset:next])
		offset = next

		if isBlank(record) {
			pending = text
			continue
		}
		pending = ""
		table.Rows = append(table.Rows, domain.NewRow(header, record).WithSource(text))
	}
	table.Trailer = pending + string(data[offset:])

	return table, nil
}

func ParseBytes(b []byte) (*domain.Table, error) {
	return Parse(bytes.NewReader(b))
}

// Serialize writes the table header first. Rows that still carry their source text, and the
// parsed header when HeaderSource is set, are written verbatim; everything else is encoded
// with the line ending of the source header (\n by default).
func Serialize(t *domain.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = strings.HasSuffix(t.HeaderSource, "\r\n")

	newline := func() {
		if buf.Len() == 0 || buf.Bytes()[buf.Len()-1] == '\n' {
			return
		}
		if w.UseCRLF {
			buf.WriteString("\r\n")
			return
		}
		buf.WriteByte('\n')
	}
	verbatim := func(text string) {
		newline()
		buf.WriteString(text)
	}
	encode := func(fields []string) error {
		newline()
		if err := w.Write(fields); err != nil {
			return err
		}
		w.Flush()
		return w.Error()
	}

	if t.HeaderSource != "" {
		verbatim(t.HeaderSource)
	} else if err := encode(t.Header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	last := -1
	for i, row := range t.Rows {
		if row.Source() != "" {
			last = i
		}
	}
	if last < 0 && t.Trailer != "" {
		verbatim(t.Trailer)
	}

	for i, row := range t.Rows {
		if text := row.Source(); text != "" {
			verbatim(text)
		} else if err := encode(fields(t.Header, row)); err != nil {
			return nil, fmt.Errorf("write record: %w", err)
		}
		if i == last && t.Trailer != "" {
			verbatim(t.Trailer)
		}
	}

	return buf.Bytes(), nil
}

// fields lays a row out under header. Rows sharing the header keep their positions, repeated
// columns and extra trailing fields; other rows are matched by column name.
func fields(header []string, row domain.Row) []string {
	if sameColumns(header, row.Columns()) {
		return row.Fields()
	}
	values := make([]string, len(header))
	for i, col := range header {
		values[i], _ = row.Get(col)
	}
	return values
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ValidShape is the minimal check serialized CSV must pass before it may replace an upload:
// long enough, has a line break, and a header with at least one comma.
func ValidShape(b []byte) bool {
	if len(bytes.TrimSpace(b)) < MinLength {
		return false
	}

	idx := bytes.IndexByte(b, '\n')
	if idx < 0 {
		return false
	}

	return bytes.IndexByte(b[:idx], ',') >= 0
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
