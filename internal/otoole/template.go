// Package otoole projects the normalized clicSAND data model into an otoole
// template workbook: one sheet per field, keyed by short name where the
// schema declares one, columns fixed by the template.
package otoole

import (
	"errors"
	"fmt"

	"github.com/eperlab/sandtool/internal/schema"
	"github.com/eperlab/sandtool/internal/table"
	"github.com/eperlab/sandtool/internal/workbook"
)

// ErrUnknownField is returned when the destination template names a field
// the normalized data model does not carry. That is a schema/workbook
// alignment defect, never a default-fill.
var ErrUnknownField = errors.New("destination field unknown to data model")

const valueColumn = "VALUE"

// Template is the destination workbook parsed into per-field tables, keyed
// by full field name, with the original sheet order retained.
type Template struct {
	Order  []string
	Tables map[string]*table.ParameterTable
}

// ReadTemplate loads the otoole template workbook and re-keys its sheets
// from short names to full field names.
func ReadTemplate(path string, aliases schema.Aliases) (*Template, error) {
	sheets, order, err := workbook.ReadAll(path)
	if err != nil {
		return nil, err
	}
	return ParseTemplate(sheets, order, aliases)
}

// ParseTemplate is ReadTemplate over pre-read sheets.
func ParseTemplate(sheets map[string][][]string, order []string, aliases schema.Aliases) (*Template, error) {
	tpl := &Template{Tables: make(map[string]*table.ParameterTable, len(order))}
	for _, sheet := range order {
		full, ok := aliases.Full(sheet)
		if !ok {
			return nil, fmt.Errorf("%w: template sheet %q", ErrUnknownField, sheet)
		}
		rows := sheets[sheet]
		if len(rows) == 0 {
			return nil, fmt.Errorf("template sheet %q has no header row", sheet)
		}
		labels := make([]table.Label, len(rows[0]))
		for i, h := range rows[0] {
			labels[i] = table.ParseLabel(h)
		}
		tpl.Order = append(tpl.Order, full)
		tpl.Tables[full] = &table.ParameterTable{Name: full, Labels: labels, Rows: rows[1:]}
	}
	return tpl, nil
}

// Populate fills every template table from the data model. Set sheets get
// the membership written down the VALUE column, resized to the derived
// length. Parameter sheets are substituted wholesale with the source table
// reduced to the template's columns, so source row order dictates result row
// order. A template field absent from the model is fatal, as is a template
// column the source table does not carry.
func Populate(tpl *Template, model table.Model) error {
	for _, field := range tpl.Order {
		entry, ok := model[field]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
		dst := tpl.Tables[field]
		switch src := entry.(type) {
		case *table.SetTable:
			rows := make([][]string, len(src.Values))
			valueIdx := dst.LabelIndex(valueColumn)
			if valueIdx < 0 {
				return fmt.Errorf("template sheet for set %s has no %s column", field, valueColumn)
			}
			width := len(dst.Labels)
			for i, v := range src.Values {
				row := make([]string, width)
				row[valueIdx] = v
				rows[i] = row
			}
			dst.Rows = rows
		case *table.ParameterTable:
			headers := dst.Headers()
			for _, header := range headers {
				if src.LabelIndex(header) < 0 {
					return fmt.Errorf("%w: %s source table has no column %q", ErrUnknownField, field, header)
				}
			}
			tpl.Tables[field] = src.Select(headers)
		default:
			return fmt.Errorf("field %s has unsupported model entry %T", field, entry)
		}
	}
	return nil
}

// Write renders the populated template back to a workbook, one sheet per
// field under its short name.
func Write(path string, tpl *Template, aliases schema.Aliases) error {
	order := make([]string, 0, len(tpl.Order))
	sheets := make(map[string][][]string, len(tpl.Order))
	for _, field := range tpl.Order {
		short, ok := aliases.Short(field)
		if !ok {
			return fmt.Errorf("%w: %s has no sheet name", ErrUnknownField, field)
		}
		tbl := tpl.Tables[field]
		rows := make([][]string, 0, len(tbl.Rows)+1)
		rows = append(rows, tbl.Headers())
		rows = append(rows, tbl.Rows...)
		order = append(order, short)
		sheets[short] = rows
	}
	return workbook.Write(path, order, sheets)
}
