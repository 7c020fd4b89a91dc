package rfq

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteTopMatchesCSV(t *testing.T) {
	matches := []Match{
		{RFQID: "R1", MatchID: "R2", Score: 0.1234567},
		{RFQID: "R1", MatchID: "R3", Score: 0.5},
		{RFQID: "R2", MatchID: "R1", Score: 1},
	}
	path := filepath.Join(t.TempDir(), "out", "top3.csv")
	require.NoError(t, WriteTopMatchesCSV(path, matches))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"rfq_id,match_id,similarity_score\n"+
			"R1,R2,0.123457\n"+
			"R1,R3,0.5\n"+
			"R2,R1,1\n",
		string(data))
}

func TestWriteTopMatchesCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "top3.csv")
	require.NoError(t, WriteTopMatchesCSV(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "rfq_id,match_id,similarity_score\n", string(data))
}

func TestWriteReportXLSX(t *testing.T) {
	matches := []Match{
		{RFQID: "R1", MatchID: "R2", Score: 0.75, DimScore: 0.9, CatScore: 0.5, PropScore: 0.6},
	}
	info := RunInfo{
		ID:           "run-1",
		GeneratedAt:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		RFQCount:     2,
		MappedGrades: 1,
	}
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteReportXLSX(path, matches, info))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Matches")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"rfq_id", "match_id", "similarity_score", "dimension_similarity", "categorical_similarity", "property_similarity"}, rows[0])
	assert.Equal(t, "R1", rows[1][0])
	assert.Equal(t, "R2", rows[1][1])

	meta, err := f.GetRows("Run")
	require.NoError(t, err)
	require.NotEmpty(t, meta)
	assert.Equal(t, "run_id", meta[0][0])
	assert.Equal(t, "run-1", meta[0][1])
}
