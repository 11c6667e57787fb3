// Package workbook wraps excelize behind the two primitives the pipeline
// needs: read named sheets as row/column tables, and write a set of tables
// back out, one sheet each.
package workbook

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ReadSheets opens a workbook and returns the requested sheets as raw rows.
// Every requested sheet must exist.
func ReadSheets(path string, names ...string) (map[string][][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sheets := make(map[string][][]string, len(names))
	for _, name := range names {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		sheets[name] = rows
	}
	return sheets, nil
}

// ReadAll opens a workbook and returns every sheet as raw rows, plus the
// sheet order as stored in the file.
func ReadAll(path string) (map[string][][]string, []string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	order := f.GetSheetList()
	sheets := make(map[string][][]string, len(order))
	for _, name := range order {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		sheets[name] = rows
	}
	return sheets, order, nil
}

// Write builds a workbook with one sheet per entry of order and promotes it
// into place via a temp file so a failed run never leaves a half-written
// output behind.
func Write(path string, order []string, sheets map[string][][]string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, name := range order {
		rows, ok := sheets[name]
		if !ok {
			return fmt.Errorf("sheet %s listed in order but not provided", name)
		}
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("rename default sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return fmt.Errorf("create sheet %s: %w", name, err)
			}
		}
		for r, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return fmt.Errorf("sheet %s row %d: %w", name, r+1, err)
			}
			values := make([]any, len(row))
			for c, v := range row {
				values[c] = v
			}
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				return fmt.Errorf("write sheet %s row %d: %w", name, r+1, err)
			}
		}
	}

	dir := filepath.Dir(path)
	tempPath := filepath.Join(dir, fmt.Sprintf(".%s-%s", filepath.Base(path), uuid.New().String()))
	if err := f.SaveAs(tempPath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("promote workbook %s: %w", path, err)
	}
	log.Printf("[workbook] wrote %d sheets to %s", len(order), path)
	return nil
}
