package rfq

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// RunInfo carries the metadata stamped into the analyst report.
type RunInfo struct {
	ID           string
	GeneratedAt  time.Time
	RFQCount     int
	MappedGrades int
}

// WriteTopMatchesCSV writes the deliverable result table:
// rfq_id, match_id, similarity_score with at most TopK rows per rfq_id.
// Scores are rounded to 6 decimal digits here and nowhere earlier.
func WriteTopMatchesCSV(path string, matches []Match) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create result file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write([]string{"rfq_id", "match_id", "similarity_score"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, m := range matches {
		row := []string{m.RFQID, m.MatchID, formatScore(m.Score)}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush result: %w", err)
	}
	return nil
}

// WriteReportXLSX writes the analyst workbook: the ranked matches with their
// component scores plus a run metadata sheet.
func WriteReportXLSX(path string, matches []Match, info RunInfo) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Matches"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	headers := []string{"rfq_id", "match_id", "similarity_score", "dimension_similarity", "categorical_similarity", "property_similarity"}
	for i, h := range headers {
		cellName, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("resolve header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cellName, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for i, m := range matches {
		values := []any{m.RFQID, m.MatchID, round6(m.Score), round6(m.DimScore), round6(m.CatScore), round6(m.PropScore)}
		for j, v := range values {
			cellName, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return fmt.Errorf("resolve cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cellName, v); err != nil {
				return fmt.Errorf("write row %d: %w", i, err)
			}
		}
	}

	const runSheet = "Run"
	if _, err := f.NewSheet(runSheet); err != nil {
		return fmt.Errorf("create run sheet: %w", err)
	}
	meta := [][2]any{
		{"run_id", info.ID},
		{"generated_at", info.GeneratedAt.UTC().Format(time.RFC3339)},
		{"rfq_records", info.RFQCount},
		{"mapped_grades", info.MappedGrades},
		{"match_rows", len(matches)},
	}
	for i, kv := range meta {
		keyCell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("resolve meta cell: %w", err)
		}
		valCell, err := excelize.CoordinatesToCellName(2, i+1)
		if err != nil {
			return fmt.Errorf("resolve meta cell: %w", err)
		}
		if err := f.SetCellValue(runSheet, keyCell, kv[0]); err != nil {
			return fmt.Errorf("write metadata: %w", err)
		}
		if err := f.SetCellValue(runSheet, valCell, kv[1]); err != nil {
			return fmt.Errorf("write metadata: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func formatScore(v float64) string {
	return strconv.FormatFloat(round6(v), 'f', -1, 64)
}
