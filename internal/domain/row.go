package domain

// Row is one CSV data line addressed by column name. Column order from the source file is
// retained so that value scans are deterministic. A row parsed from text remembers that text
// until one of its values changes.
type Row struct {
	columns []string
	// values is positional; entries past len(columns) are extra fields of a ragged line.
	values []string
	source string
}

// NewRow pairs columns with values. Missing trailing values read as empty; extra values are
// kept as trailing fields.
func NewRow(columns []string, values []string) Row {
	n := len(values)
	if n < len(columns) {
		n = len(columns)
	}
	v := make([]string, n)
	copy(v, values)
	return Row{columns: columns, values: v}
}

// RowFromMap builds a row whose column order is the given order.
func RowFromMap(columns []string, m map[string]string) Row {
	values := make([]string, len(columns))
	for i, c := range columns {
		values[i] = m[c]
	}
	return NewRow(columns, values)
}

// Get returns the value of the first column with that name.
func (r Row) Get(column string) (string, bool) {
	if i := r.index(column); i >= 0 {
		return r.values[i], true
	}
	return "", false
}

func (r Row) Columns() []string {
	return r.columns
}

// Values returns the row's values in column order.
func (r Row) Values() []string {
	return append([]string(nil), r.values[:len(r.columns)]...)
}

// Fields returns every field of the line, extra trailing fields included.
func (r Row) Fields() []string {
	return append([]string(nil), r.values...)
}

// Map returns a copy of the row as a plain map. For repeated column names the first wins.
func (r Row) Map() map[string]string {
	out := make(map[string]string, len(r.columns))
	for i := len(r.columns) - 1; i >= 0; i-- {
		out[r.columns[i]] = r.values[i]
	}
	return out
}

// Source is the text the row was parsed from, line ending included. It is empty for rows
// built in code or changed after parsing.
func (r Row) Source() string {
	return r.source
}

// WithSource returns a copy of the row that remembers its source text.
func (r Row) WithSource(text string) Row {
	r.source = text
	return r
}

// With returns a copy of the row with column set to value. Unknown columns are appended
// before any extra trailing fields.
func (r Row) With(column, value string) Row {
	if i := r.index(column); i >= 0 {
		values := append([]string(nil), r.values...)
		values[i] = value
		return Row{columns: r.columns, values: values}
	}

	n := len(r.columns)
	columns := append(append(make([]string, 0, n+1), r.columns...), column)
	values := make([]string, 0, len(r.values)+1)
	values = append(values, r.values[:n]...)
	values = append(values, value)
	values = append(values, r.values[n:]...)
	return Row{columns: columns, values: values}
}

func (r Row) index(column string) int {
	for i, c := range r.columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Table is a parsed CSV file.
type Table struct {
	Header []string
	Rows   []Row
	// HeaderSource is the header line as read, line ending included. Leave it empty when
	// Header changes so the header is written from Header.
	HeaderSource string
	// Trailer is source text after the last parsed row, such as blank records.
	Trailer string
}
