package rfq

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ColumnOverrides pins the required columns to an explicit header name or a
// 1-based "#N" index instead of relying on auto-detection.
type ColumnOverrides struct {
	ID    string
	Grade string
}

// LoadRFQTable reads the RFQ line items from a CSV, TSV or XLSX file.
// The id and grade columns are required; dimensional and categorical
// columns are picked up when present. Header matching is case-insensitive.
func LoadRFQTable(path string) (Table, error) {
	return LoadRFQTableWith(path, ColumnOverrides{})
}

// LoadRFQTableWith is LoadRFQTable with explicit overrides for the required
// columns.
func LoadRFQTableWith(path string, overrides ColumnOverrides) (Table, error) {
	rows, err := readRows(path)
	if err != nil {
		return Table{}, err
	}
	if len(rows) == 0 {
		return Table{}, fmt.Errorf("%s: empty file", filepath.Base(path))
	}

	header := cleanHeader(rows[0])
	idIdx, err := resolveColumn(header, overrides.ID, ColumnID)
	if err != nil {
		return Table{}, fmt.Errorf("rfq table %s: %w", filepath.Base(path), err)
	}
	gradeIdx, err := resolveColumn(header, overrides.Grade, ColumnGrade)
	if err != nil {
		return Table{}, fmt.Errorf("rfq table %s: %w", filepath.Base(path), err)
	}

	table := Table{Columns: map[string]bool{ColumnID: true, ColumnGrade: true}}
	dimIdx := make(map[string]int)
	for _, col := range DimensionColumns() {
		if idx := findColumn(header, col); idx >= 0 {
			dimIdx[col] = idx
			table.Columns[col] = true
		}
	}
	catIdx := make(map[string]int)
	for _, col := range CategoricalColumns() {
		if idx := findColumn(header, col); idx >= 0 {
			catIdx[col] = idx
			table.Columns[col] = true
		}
	}

	for _, row := range rows[1:] {
		rec := RFQRecord{
			ID:    cell(row, idIdx),
			Grade: cell(row, gradeIdx),
			Dims:  make(map[string]float64, len(dimIdx)),
			Cats:  make(map[string]string, len(catIdx)),
		}
		for col, idx := range dimIdx {
			raw := cell(row, idx)
			if raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
			if err != nil {
				continue
			}
			rec.Dims[col] = v
		}
		for col, idx := range catIdx {
			if value := cell(row, idx); value != "" {
				rec.Cats[col] = value
			}
		}
		table.Records = append(table.Records, rec)
	}
	return table, nil
}

// LoadReferenceTable reads the material grade reference table from a CSV,
// TSV or XLSX file. The Grade/Material column is required; the configured
// chemical and mechanical property columns are read as raw range text.
func LoadReferenceTable(path string) ([]ReferenceMaterial, error) {
	return LoadReferenceTableWith(path, "")
}

// LoadReferenceTableWith is LoadReferenceTable with an explicit override
// for the grade column, by name or 1-based "#N" index.
func LoadReferenceTableWith(path, gradeColumn string) ([]ReferenceMaterial, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty file", filepath.Base(path))
	}

	header := cleanHeader(rows[0])
	gradeIdx, err := resolveColumn(header, gradeColumn, ReferenceGradeColumn)
	if err != nil {
		return nil, fmt.Errorf("reference table %s: %w", filepath.Base(path), err)
	}

	propIdx := make(map[string]int)
	for _, prop := range PropertyColumns() {
		if idx := findColumn(header, prop); idx >= 0 {
			propIdx[prop] = idx
		}
	}

	refs := make([]ReferenceMaterial, 0, len(rows)-1)
	for _, row := range rows[1:] {
		ref := ReferenceMaterial{
			Grade: cell(row, gradeIdx),
			Props: make(map[string]string, len(propIdx)),
		}
		for prop, idx := range propIdx {
			if value := cell(row, idx); value != "" {
				ref.Props[prop] = value
			}
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// readRows loads all rows of a tabular file, choosing the parser by
// extension: .csv, .tsv or .xlsx (first sheet).
func readRows(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readDelimited(path, ',')
	case ".tsv":
		return readDelimited(path, '\t')
	case ".xlsx":
		return readWorkbook(path)
	default:
		return nil, fmt.Errorf("%s: unsupported file type", filepath.Base(path))
	}
}

func readDelimited(path string, comma rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	reader := csv.NewReader(f)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

func cleanHeader(row []string) []string {
	header := make([]string, len(row))
	for i, col := range row {
		header[i] = cleanCell(col)
	}
	return header
}

func cleanCell(v string) string {
	v = strings.TrimPrefix(v, "\uFEFF")
	return strings.TrimSpace(v)
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return cleanCell(row[idx])
}

func findColumn(header []string, name string) int {
	for i, col := range header {
		if strings.EqualFold(col, name) {
			return i
		}
	}
	return -1
}

// resolveColumn locates a required column. A non-empty override wins: first
// as a case-insensitive header name, then as a 1-based "#N" index. Without
// an override the default name must be present in the header.
func resolveColumn(header []string, explicit, fallback string) (int, error) {
	trimmed := strings.TrimSpace(explicit)
	if trimmed != "" {
		if idx := findColumn(header, trimmed); idx >= 0 {
			return idx, nil
		}
		if strings.HasPrefix(trimmed, "#") {
			idx, err := parseColumnIndex(trimmed)
			if err != nil {
				return -1, err
			}
			if idx >= len(header) {
				return -1, fmt.Errorf("column index %s is out of range", trimmed)
			}
			return idx, nil
		}
		return -1, fmt.Errorf("column %q not found", explicit)
	}
	idx := findColumn(header, fallback)
	if idx < 0 {
		return -1, fmt.Errorf("missing required column %q", fallback)
	}
	return idx, nil
}

func parseColumnIndex(token string) (int, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(token, "#"))
	if trimmed == "" {
		return -1, fmt.Errorf("invalid column index %q", token)
	}
	idx, err := strconv.Atoi(trimmed)
	if err != nil {
		return -1, fmt.Errorf("invalid column index %q", token)
	}
	if idx <= 0 {
		return -1, fmt.Errorf("column indices are 1-based: %q", token)
	}
	return idx - 1, nil
}
