// Package prep carries the data-preparation amendments applied after the
// template is populated: realigning sheets whose header sits below
// explanatory rows, splitting preparation sheets by a category column,
// patching parameter rows from prepared data, and renaming set codes across
// the whole populated model.
package prep

import (
	"errors"
	"fmt"

	"github.com/eperlab/sandtool/internal/otoole"
	"github.com/eperlab/sandtool/internal/schema"
	"github.com/eperlab/sandtool/internal/table"
)

// ErrHeaderNotFound is returned when a preparation sheet does not contain
// the expected header marker cell.
var ErrHeaderNotFound = errors.New("header marker not found in preparation sheet")

// Preparation sheets label their value column differently from clicSAND.
const timeIndependentHeader = "Time Independent Parameters"

// RealignHeader promotes the row containing the marker cell to the header
// row and drops everything above it. A sheet already headed by the marker is
// returned unchanged. The value column rename is applied either way.
func RealignHeader(rows [][]string, marker string) ([][]string, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty sheet", ErrHeaderNotFound)
	}
	headIdx := -1
	for i, row := range rows {
		for _, cell := range row {
			if cell == marker {
				headIdx = i
				break
			}
		}
		if headIdx >= 0 {
			break
		}
	}
	if headIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrHeaderNotFound, marker)
	}

	out := make([][]string, 0, len(rows)-headIdx)
	header := append([]string(nil), rows[headIdx]...)
	for i, cell := range header {
		if cell == timeIndependentHeader {
			header[i] = "VALUE"
		}
	}
	out = append(out, header)
	for _, row := range rows[headIdx+1:] {
		out = append(out, append([]string(nil), row...))
	}
	return out, nil
}

// GroupRows splits sheet rows into one group per distinct value of the
// category column. When keepColumn is false the category column is dropped
// from each group, mirroring the parameter extraction shape; set-typed
// groupings keep it.
func GroupRows(rows [][]string, category string, keepColumn bool) (map[string][][]string, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty sheet", ErrHeaderNotFound)
	}
	catIdx := -1
	for i, cell := range rows[0] {
		if cell == category {
			catIdx = i
			break
		}
	}
	if catIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrHeaderNotFound, category)
	}

	groups := map[string][][]string{}
	for _, row := range rows[1:] {
		if catIdx >= len(row) || row[catIdx] == "" {
			continue
		}
		key := row[catIdx]
		var out []string
		if keepColumn {
			out = append([]string(nil), row...)
		} else {
			out = make([]string, 0, len(row)-1)
			for i, cell := range row {
				if i != catIdx {
					out = append(out, cell)
				}
			}
		}
		groups[key] = append(groups[key], out)
	}
	return groups, nil
}

// ReplaceSetCode renames a set member across the populated template: the set
// sheet's VALUE column and the matching index column of every parameter that
// indexes by the set. Results are untouched; the template carries none.
func ReplaceSetCode(tpl *otoole.Template, sch schema.Schema, setLabel string, renames map[string]string) error {
	setTbl, ok := tpl.Tables[setLabel]
	if !ok {
		return fmt.Errorf("%w: set %s", otoole.ErrUnknownField, setLabel)
	}
	valueIdx := setTbl.LabelIndex("VALUE")
	if valueIdx < 0 {
		return fmt.Errorf("set sheet %s has no VALUE column", setLabel)
	}
	for old, next := range renames {
		for _, row := range setTbl.Rows {
			if valueIdx < len(row) && row[valueIdx] == old {
				row[valueIdx] = next
			}
		}
		for _, param := range sch.DependingOn(setLabel, schema.KindParam) {
			tbl, ok := tpl.Tables[param]
			if !ok {
				continue
			}
			idx := tbl.LabelIndex(setLabel)
			if idx < 0 {
				continue
			}
			for _, row := range tbl.Rows {
				if idx < len(row) && row[idx] == old {
					row[idx] = next
				}
			}
		}
	}
	return nil
}

// PatchRows replaces every destination row the predicate accepts with the
// corresponding source row reduced to the destination's columns. Source rows
// are consumed in order; surplus destination matches keep their prior
// content. Pure transform: the input table is not modified.
func PatchRows(dst, src *table.ParameterTable, match func(row []string) bool) *table.ParameterTable {
	reduced := src.Select(dst.Headers())
	out := &table.ParameterTable{
		Name:   dst.Name,
		Labels: append([]table.Label(nil), dst.Labels...),
		Rows:   make([][]string, len(dst.Rows)),
	}
	next := 0
	for i, row := range dst.Rows {
		copied := append([]string(nil), row...)
		if match(row) && next < len(reduced.Rows) {
			copied = append([]string(nil), reduced.Rows[next]...)
			next++
		}
		out.Rows[i] = copied
	}
	return out
}
