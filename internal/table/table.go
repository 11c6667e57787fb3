// Package table holds the in-memory tabular model shared by the clicSAND
// reader and the otoole writer. A model entry is either a SetTable (one
// column of unique codes) or a ParameterTable (index columns plus either
// wide-format year columns or a single VALUE column). Cell payloads stay as
// the strings the workbook reader produced; dtype-aware behaviour (sorting,
// casting) is applied at the edges.
package table

import (
	"sort"
	"strconv"
)

// Entry is the tagged variant stored in a Model. Only *SetTable and
// *ParameterTable implement it.
type Entry interface {
	entry()
}

// Model maps a full field name to its resolved table.
type Model map[string]Entry

// Set returns the named entry as a SetTable, if it is one.
func (m Model) Set(name string) (*SetTable, bool) {
	s, ok := m[name].(*SetTable)
	return s, ok
}

// Param returns the named entry as a ParameterTable, if it is one.
func (m Model) Param(name string) (*ParameterTable, bool) {
	p, ok := m[name].(*ParameterTable)
	return p, ok
}

// SetTable is the enumerated membership of one set.
type SetTable struct {
	Name   string
	DType  string
	Values []string
}

func (*SetTable) entry() {}

// Sorted returns a deduplicated copy of the membership in ascending order.
// Integer-typed sets compare numerically, everything else lexicographically.
func (s *SetTable) Sorted() *SetTable {
	seen := make(map[string]struct{}, len(s.Values))
	values := make([]string, 0, len(s.Values))
	for _, v := range s.Values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	if s.DType == "int" {
		sort.Slice(values, func(i, j int) bool {
			a, errA := strconv.Atoi(values[i])
			b, errB := strconv.Atoi(values[j])
			if errA != nil || errB != nil {
				return values[i] < values[j]
			}
			return a < b
		})
	} else {
		sort.Strings(values)
	}
	return &SetTable{Name: s.Name, DType: s.DType, Values: values}
}

// Label identifies one ParameterTable column. Wide-format year columns carry
// the integer year; all other columns carry a name. The two are mutually
// exclusive.
type Label struct {
	Name string
	Year int
}

// IsYear reports whether the label is a wide-format year column.
func (l Label) IsYear() bool {
	return l.Year != 0
}

func (l Label) String() string {
	if l.IsYear() {
		return strconv.Itoa(l.Year)
	}
	return l.Name
}

// ParseLabel turns a raw sheet header into a Label, casting digit-only
// headers to integer years.
func ParseLabel(header string) Label {
	if year, err := strconv.Atoi(header); err == nil && year > 0 {
		return Label{Year: year}
	}
	return Label{Name: header}
}

// ParameterTable is one parameter's rows, columns exactly the declared
// indices plus either year columns or VALUE. Row order is preserved verbatim
// from the source sheet.
type ParameterTable struct {
	Name   string
	Labels []Label
	Rows   [][]string
}

func (*ParameterTable) entry() {}

// LabelIndex returns the position of the column with the given rendered
// header, or -1.
func (p *ParameterTable) LabelIndex(header string) int {
	for i, l := range p.Labels {
		if l.String() == header {
			return i
		}
	}
	return -1
}

// Column returns a copy of the named column's cells, top to bottom.
func (p *ParameterTable) Column(header string) []string {
	idx := p.LabelIndex(header)
	if idx < 0 {
		return nil
	}
	out := make([]string, 0, len(p.Rows))
	for _, row := range p.Rows {
		if idx < len(row) {
			out = append(out, row[idx])
		} else {
			out = append(out, "")
		}
	}
	return out
}

// Select reduces the table to the requested columns, in the requested order.
// Unknown columns come back empty. The receiver is not modified.
func (p *ParameterTable) Select(headers []string) *ParameterTable {
	indices := make([]int, len(headers))
	labels := make([]Label, len(headers))
	for i, h := range headers {
		indices[i] = p.LabelIndex(h)
		labels[i] = ParseLabel(h)
	}
	rows := make([][]string, len(p.Rows))
	for r, row := range p.Rows {
		out := make([]string, len(headers))
		for c, idx := range indices {
			if idx >= 0 && idx < len(row) {
				out[c] = row[idx]
			}
		}
		rows[r] = out
	}
	return &ParameterTable{Name: p.Name, Labels: labels, Rows: rows}
}

// Headers renders the column labels as sheet headers.
func (p *ParameterTable) Headers() []string {
	out := make([]string, len(p.Labels))
	for i, l := range p.Labels {
		out[i] = l.String()
	}
	return out
}

// FilterRows returns a copy keeping only rows the predicate accepts.
func (p *ParameterTable) FilterRows(keep func(row []string) bool) *ParameterTable {
	rows := make([][]string, 0, len(p.Rows))
	for _, row := range p.Rows {
		if keep(row) {
			rows = append(rows, append([]string(nil), row...))
		}
	}
	return &ParameterTable{Name: p.Name, Labels: append([]Label(nil), p.Labels...), Rows: rows}
}
