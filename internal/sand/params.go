package sand

import (
	"fmt"
	"sort"

	"github.com/eperlab/sandtool/internal/table"
)

const (
	discriminatorColumn = "Parameter"

	// clicSAND header spellings normalized on read.
	timeIndependentHeader = "Time indipendent variables"
	region2Header         = "REGION2"

	valueColumn   = "VALUE"
	regionRColumn = "REGIONR"
	yearSet       = "YEAR"
)

// SplitParameters breaks the raw Parameters sheet into one table per
// distinct discriminator value. Headers are normalized ("Time indipendent
// variables" to VALUE, REGION2 to REGIONR) and digit-named headers become
// integer year labels; year columns stay wide, they are never melted. Row
// order within each parameter is preserved verbatim.
//
// It returns the tables, the sorted roster of parameters present in the
// sheet, and the set roster: the columns appearing before the first year
// column, plus YEAR.
func SplitParameters(rows [][]string) (map[string]*table.ParameterTable, []string, []string, error) {
	if len(rows) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: %s sheet is empty", ErrMalformedLayout, sheetParameters)
	}

	discIdx := -1
	labels := make([]table.Label, 0, len(rows[0]))
	for i, header := range rows[0] {
		switch header {
		case discriminatorColumn:
			discIdx = i
			labels = append(labels, table.Label{Name: discriminatorColumn})
		case timeIndependentHeader:
			labels = append(labels, table.Label{Name: valueColumn})
		case region2Header:
			labels = append(labels, table.Label{Name: regionRColumn})
		default:
			labels = append(labels, table.ParseLabel(header))
		}
	}
	if discIdx < 0 {
		return nil, nil, nil, fmt.Errorf("%w: %q column not found in %s sheet", ErrMalformedLayout, discriminatorColumn, sheetParameters)
	}

	// Group labels minus the discriminator, preserving column order.
	groupLabels := make([]table.Label, 0, len(labels)-1)
	for i, l := range labels {
		if i != discIdx {
			groupLabels = append(groupLabels, l)
		}
	}

	tables := map[string]*table.ParameterTable{}
	for _, row := range rows[1:] {
		if discIdx >= len(row) || row[discIdx] == "" {
			continue
		}
		name := row[discIdx]
		tbl, ok := tables[name]
		if !ok {
			tbl = &table.ParameterTable{Name: name, Labels: groupLabels}
			tables[name] = tbl
		}
		out := make([]string, 0, len(groupLabels))
		for i := range labels {
			if i == discIdx {
				continue
			}
			if i < len(row) {
				out = append(out, row[i])
			} else {
				out = append(out, "")
			}
		}
		tbl.Rows = append(tbl.Rows, out)
	}

	params := make([]string, 0, len(tables))
	for name := range tables {
		params = append(params, name)
	}
	sort.Strings(params)

	sets := setRoster(groupLabels)
	return tables, params, sets, nil
}

// setRoster derives the set roster from the grouped column labels: every
// column before the first year column, plus the synthesized YEAR.
func setRoster(labels []table.Label) []string {
	var sets []string
	for _, l := range labels {
		if l.IsYear() {
			break
		}
		sets = append(sets, l.Name)
	}
	return append(sets, yearSet)
}
