package store

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/report-classifier/internal/types"
)

func writeCSV(t *testing.T, path string, rows [][]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(rows))
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestLoad_MissingTextColumn(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	writeCSV(t, input, [][]string{
		{"id", "notes"},
		{"1", "whatever"},
	})

	_, err := Load(input, filepath.Join(dir, "out.csv"), types.ChestTask())
	require.Error(t, err)

	var missing *MissingColumnError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "REPORT", missing.Column)
}

func TestLoad_CreatesOutputColumns(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	writeCSV(t, input, [][]string{
		{"report"},
		{"liver lesion noted"},
	})

	s, err := Load(input, filepath.Join(dir, "out.csv"), types.LiverTask())
	require.NoError(t, err)

	total, pending := s.Counts()
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, pending)

	require.NoError(t, s.Checkpoint())
	rows := readCSV(t, filepath.Join(dir, "out.csv"))
	assert.Equal(t, []string{"report", "liver_met_classification", "liver_met_explanation", "liver_lesion_count"}, rows[0])
}

func TestPending_SkipsLabeledRows(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	writeCSV(t, input, [][]string{
		{"REPORT", "normal_0_abnormal_1_others_2"},
		{"clear lungs", "0"},
		{"effusion present", ""},
		{"", "2"},
		{"catheter in place", ""},
	})

	s, err := Load(input, filepath.Join(dir, "out.csv"), types.ChestTask())
	require.NoError(t, err)

	pending := s.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, 1, pending[0].ID)
	assert.Equal(t, "effusion present", pending[0].Text)
	assert.Equal(t, 3, pending[1].ID)
}

func TestWrite_MultiField(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	writeCSV(t, input, [][]string{
		{"report"},
		{"two hepatic lesions"},
		{"no metastatic disease"},
	})

	out := filepath.Join(dir, "out.csv")
	s, err := Load(input, out, types.LiverTask())
	require.NoError(t, err)

	count := 2
	s.Write(0, types.ClassificationResult{
		Label:       types.LabelAbnormal,
		Explanation: "two liver lesions seen",
		Count:       &count,
	})
	s.Write(1, types.ClassificationResult{Label: types.LabelNormal})

	require.NoError(t, s.Checkpoint())
	rows := readCSV(t, out)
	assert.Equal(t, []string{"two hepatic lesions", "1", "two liver lesions seen", "2"}, rows[1])
	assert.Equal(t, []string{"no metastatic disease", "0", "", ""}, rows[2])
}

func TestCheckpoint_ReplacesPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	writeCSV(t, input, [][]string{
		{"REPORT"},
		{"first"},
		{"second"},
	})

	out := filepath.Join(dir, "out.csv")
	s, err := Load(input, out, types.ChestTask())
	require.NoError(t, err)

	s.Write(0, types.ClassificationResult{Label: types.LabelNormal})
	require.NoError(t, s.Checkpoint())

	s.Write(1, types.ClassificationResult{Label: types.LabelAbnormal})
	require.NoError(t, s.Checkpoint())

	rows := readCSV(t, out)
	assert.Equal(t, "0", rows[1][1])
	assert.Equal(t, "1", rows[2][1])

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"in.csv", "out.csv"}, names)
}

func TestResume_LoadsFromPreviousCheckpoint(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	writeCSV(t, input, [][]string{
		{"REPORT"},
		{"first"},
		{"second"},
	})

	out := filepath.Join(dir, "out.csv")
	s, err := Load(input, out, types.ChestTask())
	require.NoError(t, err)
	s.Write(0, types.ClassificationResult{Label: types.LabelUncertain})
	require.NoError(t, s.Checkpoint())

	// A second run loads the checkpoint and only sees the unlabeled row.
	resumed, err := Load(out, out, types.ChestTask())
	require.NoError(t, err)
	pending := resumed.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].ID)
}

func TestSummary(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	writeCSV(t, input, [][]string{
		{"report", "liver_met_classification", "liver_met_explanation", "liver_lesion_count"},
		{"a", "1", "", ""},
		{"b", "1", "", ""},
		{"c", "0", "", ""},
		{"d", "garbage", "", ""},
	})

	s, err := Load(input, filepath.Join(dir, "out.csv"), types.LiverTask())
	require.NoError(t, err)

	rows := s.Summary()
	require.Len(t, rows, 3)
	assert.Equal(t, SummaryRow{Label: "Liver metastasis present", Count: 2, Percent: 50}, rows[0])
	assert.ElementsMatch(t, []SummaryRow{
		{Label: "No liver metastasis", Count: 1, Percent: 25},
		{Label: "Error/NA", Count: 1, Percent: 25},
	}, rows[1:])
}
