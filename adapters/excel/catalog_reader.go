package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"poissonkit/domain/catalog"
	"poissonkit/internal"
	"poissonkit/ports"
)

// CatalogReader reads event timestamps from a named column of an Excel
// sheet or a CSV file. It implements ports.CatalogSource.
type CatalogReader struct {
	logger *internal.Logger
}

// NewCatalogReader creates a new catalog reader
func NewCatalogReader() ports.CatalogSource {
	return &CatalogReader{logger: internal.DefaultLogger}
}

// Load reads the timestamp column, skipping blank cells, and returns the
// events sorted into non-decreasing order. Catalog exports are frequently
// ordered by magnitude or zone rather than time, so sorting here keeps the
// domain ordering invariant out of every call site.
func (r *CatalogReader) Load(ctx context.Context, ref ports.CatalogRef) (catalog.Catalog, error) {
	if _, err := os.Stat(ref.Path); os.IsNotExist(err) {
		return nil, fmt.Errorf("catalog file not found: %s", ref.Path)
	}

	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(ref.Path)) {
	case ".csv":
		rows, err = readCSVRows(ref.Path)
	case ".xlsx":
		rows, err = readExcelRows(ref.Path)
	default:
		return nil, fmt.Errorf("unsupported catalog file type: %s", ref.Path)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("catalog file must have a header row and at least one data row")
	}

	col := -1
	for i, header := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(header), ref.TimeColumn) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("time column %q not found in %s", ref.TimeColumn, ref.Path)
	}

	var events catalog.Catalog
	for rowIdx, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[col])
		if cell == "" {
			continue
		}
		t, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: cannot parse timestamp %q: %w", rowIdx+2, cell, err)
		}
		events = append(events, t)
	}

	sort.Float64s(events)
	r.logger.Debug("[catalog-reader] loaded %d events from %s column %q", len(events), ref.Path, ref.TimeColumn)
	return events, nil
}

func readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}
