// Package sand normalizes a clicSAND input workbook into a typed, schema
// consistent data model: explicit sets from the SETS sheet, one table per
// parameter from the Parameters sheet, implicit sets derived from parameter
// columns, and the YEAR set synthesized from the configured range.
package sand

import (
	"errors"
	"fmt"
	"strings"

	"github.com/eperlab/sandtool/internal/table"
)

// ErrMalformedLayout is returned when a source sheet does not match the
// clicSAND contract (missing sentinel markers, missing discriminator column).
var ErrMalformedLayout = errors.New("malformed clicSAND sheet layout")

const (
	sheetSets       = "SETS"
	sheetParameters = "Parameters"

	colTechnologies = "Technologies"
	colCommodities  = "Commodities"
	colEmissions    = "Emissions"

	// Header sentinel inside set columns; a string cell but never a member.
	codeSentinel = "Code"
	// Positional sentinels splitting the combined Emissions column.
	regionMarker      = "Region"
	resultsPathMarker = "ResultsPath"
)

// SplitEmissionRegion splits the combined emissions-then-regions column on
// its two sentinel markers: the row equal to "Region" starts the REGION
// segment one row past it, and the row containing "ResultsPath" ends it
// exclusively. Everything before the "Region" marker is the EMISSION segment.
func SplitEmissionRegion(col []string) (emission, region []string, err error) {
	regionIdx := -1
	resultsIdx := -1
	for i, cell := range col {
		switch {
		case cell == regionMarker:
			regionIdx = i
		case strings.Contains(cell, resultsPathMarker):
			resultsIdx = i
		}
	}
	if regionIdx < 0 {
		return nil, nil, fmt.Errorf("%w: %q marker not found in emissions column", ErrMalformedLayout, regionMarker)
	}
	if resultsIdx < 0 {
		return nil, nil, fmt.Errorf("%w: %q marker not found in emissions column", ErrMalformedLayout, resultsPathMarker)
	}
	if resultsIdx <= regionIdx {
		return nil, nil, fmt.Errorf("%w: %q marker precedes %q marker", ErrMalformedLayout, resultsPathMarker, regionMarker)
	}
	emission = append([]string(nil), col[:regionIdx]...)
	region = append([]string(nil), col[regionIdx+1:resultsIdx]...)
	return emission, region, nil
}

// ExplicitSets extracts the four explicitly declared sets from the raw SETS
// sheet rows. The first row is the header row naming the column blocks; blank
// cells and the "Code" header sentinel are not members.
func ExplicitSets(rows [][]string) (tech, fuel, emission, region *table.SetTable, err error) {
	if len(rows) == 0 {
		return nil, nil, nil, nil, fmt.Errorf("%w: %s sheet is empty", ErrMalformedLayout, sheetSets)
	}
	techCol, err := sheetColumn(rows, colTechnologies)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	fuelCol, err := sheetColumn(rows, colCommodities)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	combined, err := sheetColumn(rows, colEmissions)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	emissionVals, regionVals, err := SplitEmissionRegion(combined)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	tech = &table.SetTable{Name: "TECHNOLOGY", DType: "str", Values: dedup(techCol)}
	fuel = &table.SetTable{Name: "FUEL", DType: "str", Values: dedup(fuelCol)}
	emission = &table.SetTable{Name: "EMISSION", DType: "str", Values: dedup(emissionVals)}
	region = &table.SetTable{Name: "REGION", DType: "str", Values: dedup(regionVals)}
	return tech, fuel, emission, region, nil
}

// dedup removes repeated members, keeping first-seen sheet order.
func dedup(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// sheetColumn collects the member cells below the named header, skipping
// blanks and the "Code" sentinel.
func sheetColumn(rows [][]string, header string) ([]string, error) {
	idx := -1
	for i, cell := range rows[0] {
		if cell == header {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: column %q not found in %s sheet", ErrMalformedLayout, header, sheetSets)
	}
	var values []string
	for _, row := range rows[1:] {
		if idx >= len(row) {
			continue
		}
		cell := row[idx]
		if cell == "" || cell == codeSentinel {
			continue
		}
		values = append(values, cell)
	}
	return values, nil
}
