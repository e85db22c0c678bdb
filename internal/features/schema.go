package features

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultSchemaVersion names the column layout of DefaultSchema.
const DefaultSchemaVersion = "census-v1"

// ErrEmptySchema is returned when a reference file has no header columns.
var ErrEmptySchema = errors.New("schema has no columns")

// Schema is the ordered column layout a classifier was trained on.
type Schema struct {
	Version string
	columns []string
	index   map[string]int
}

// NewSchema builds a schema from ordered names. Blank names are skipped and
// repeated names keep their first position.
func NewSchema(version string, names []string) (*Schema, error) {
	s := &Schema{Version: version, index: make(map[string]int, len(names))}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := s.index[n]; dup {
			continue
		}
		s.index[n] = len(s.columns)
		s.columns = append(s.columns, n)
	}
	if len(s.columns) == 0 {
		return nil, ErrEmptySchema
	}
	return s, nil
}

// Columns returns a copy of the ordered column names.
func (s *Schema) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

func (s *Schema) Len() int { return len(s.columns) }

// Index reports the position of a column.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// CategoriesFor lists the categories of a categorical field that have an
// indicator column in this schema, in schema order.
func (s *Schema) CategoriesFor(field string) []string {
	var out []string
	for _, c := range s.columns {
		if f, cat, ok := indicatorField(c); ok && f == field {
			out = append(out, cat)
		}
	}
	return out
}

// indicatorField splits an indicator column into field and category.
// Continuous columns are never indicators, and the longest matching field
// name owns the column.
func indicatorField(col string) (field, category string, ok bool) {
	if isContinuous(col) {
		return "", "", false
	}
	for _, f := range CategoricalFields {
		p := f + "_"
		if strings.HasPrefix(col, p) && len(f) > len(field) {
			field, category, ok = f, col[len(p):], true
		}
	}
	return field, category, ok
}

// DefaultSchema is the census-v1 layout: the continuous columns followed by
// one indicator column per training category, field by field.
func DefaultSchema() *Schema {
	names := append([]string{}, ContinuousFields...)
	for _, f := range CategoricalFields {
		for _, c := range Categories[f] {
			names = append(names, IndicatorColumn(f, c))
		}
	}
	s, err := NewSchema(DefaultSchemaVersion, names)
	if err != nil {
		panic(err)
	}
	return s
}

// LoadSchemaCSV reads the header row of a reference CSV file. Rows after the
// header are ignored.
func LoadSchemaCSV(r io.Reader, version string) (*Schema, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptySchema
		}
		return nil, fmt.Errorf("read schema header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	// index columns written by dataframe exports have an empty name
	return NewSchema(version, header)
}
