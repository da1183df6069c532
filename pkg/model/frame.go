// pkg/model/frame.go
package model

import (
	"fmt"
	"math"
	"time"
)

// SeriesKind identifies the storage type of a column
type SeriesKind int

const (
	KindNumeric SeriesKind = iota
	KindTime
	KindText
)

// String returns a string representation of the series kind
func (k SeriesKind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindTime:
		return "time"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Series is a single named column of a Frame. Exactly one of the value
// slices is populated, selected by Kind. Missing markers per kind:
// NaN for numeric, the zero time for temporal, "" for text.
type Series struct {
	Name   string
	Kind   SeriesKind
	Floats []float64
	Times  []time.Time
	Texts  []string
}

// NewNumericSeries creates a numeric series. The slice is used as-is.
func NewNumericSeries(name string, values []float64) *Series {
	return &Series{Name: name, Kind: KindNumeric, Floats: values}
}

// NewTimeSeries creates a temporal series
func NewTimeSeries(name string, values []time.Time) *Series {
	return &Series{Name: name, Kind: KindTime, Times: values}
}

// NewTextSeries creates a free-text series
func NewTextSeries(name string, values []string) *Series {
	return &Series{Name: name, Kind: KindText, Texts: values}
}

// Len returns the number of rows in the series
func (s *Series) Len() int {
	switch s.Kind {
	case KindNumeric:
		return len(s.Floats)
	case KindTime:
		return len(s.Times)
	default:
		return len(s.Texts)
	}
}

// IsMissing reports whether the value at row i is the missing marker
func (s *Series) IsMissing(i int) bool {
	switch s.Kind {
	case KindNumeric:
		return math.IsNaN(s.Floats[i])
	case KindTime:
		return s.Times[i].IsZero()
	default:
		return s.Texts[i] == ""
	}
}

// Copy returns a deep copy of the series
func (s *Series) Copy() *Series {
	out := &Series{Name: s.Name, Kind: s.Kind}
	switch s.Kind {
	case KindNumeric:
		out.Floats = append([]float64(nil), s.Floats...)
	case KindTime:
		out.Times = append([]time.Time(nil), s.Times...)
	default:
		out.Texts = append([]string(nil), s.Texts...)
	}
	return out
}

// NonMissingFloats returns the numeric values of the series with missing
// markers removed. Row order is preserved.
func (s *Series) NonMissingFloats() []float64 {
	out := make([]float64, 0, len(s.Floats))
	for _, v := range s.Floats {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Frame is an ordered collection of named columns sharing one row index.
// All columns have equal length and row order is preserved across
// operations.
type Frame struct {
	columns []*Series
	index   map[string]int
	rows    int
}

// NewFrame creates a frame from the given columns. All columns must have
// the same length and unique names.
func NewFrame(columns ...*Series) (*Frame, error) {
	f := &Frame{index: make(map[string]int)}
	for _, col := range columns {
		if err := f.AddColumn(col); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// AddColumn appends a column to the frame, enforcing the equal-length
// invariant against the columns already present.
func (f *Frame) AddColumn(s *Series) error {
	if _, exists := f.index[s.Name]; exists {
		return fmt.Errorf("duplicate column name %q", s.Name)
	}
	if len(f.columns) > 0 && s.Len() != f.rows {
		return fmt.Errorf("column %q has %d rows, frame has %d", s.Name, s.Len(), f.rows)
	}
	if len(f.columns) == 0 {
		f.rows = s.Len()
	}
	f.index[s.Name] = len(f.columns)
	f.columns = append(f.columns, s)
	return nil
}

// NumRows returns the number of rows shared by all columns
func (f *Frame) NumRows() int {
	return f.rows
}

// NumColumns returns the number of columns
func (f *Frame) NumColumns() int {
	return len(f.columns)
}

// Column returns the series with the given name
func (f *Frame) Column(name string) (*Series, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.columns[i], true
}

// HasColumn reports whether a column with the given name exists
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// ColumnNames returns the column names in frame order
func (f *Frame) ColumnNames() []string {
	names := make([]string, len(f.columns))
	for i, col := range f.columns {
		names[i] = col.Name
	}
	return names
}

// Columns returns the columns in frame order
func (f *Frame) Columns() []*Series {
	return f.columns
}

// NumericColumnNames returns the names of all numeric columns in frame order
func (f *Frame) NumericColumnNames() []string {
	var names []string
	for _, col := range f.columns {
		if col.Kind == KindNumeric {
			names = append(names, col.Name)
		}
	}
	return names
}

// Drop removes the named column if present. Dropping an absent column is
// not an error.
func (f *Frame) Drop(name string) {
	i, ok := f.index[name]
	if !ok {
		return
	}
	f.columns = append(f.columns[:i], f.columns[i+1:]...)
	delete(f.index, name)
	for j := i; j < len(f.columns); j++ {
		f.index[f.columns[j].Name] = j
	}
	if len(f.columns) == 0 {
		f.rows = 0
	}
}

// Copy returns a deep copy of the frame so callers can clean without
// mutating the original
func (f *Frame) Copy() *Frame {
	out := &Frame{
		columns: make([]*Series, len(f.columns)),
		index:   make(map[string]int, len(f.index)),
		rows:    f.rows,
	}
	for i, col := range f.columns {
		out.columns[i] = col.Copy()
		out.index[col.Name] = i
	}
	return out
}
