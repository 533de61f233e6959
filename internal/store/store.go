// Package store provides the CSV-backed record table the pipeline reads
// reports from and writes labels back into. The whole table is held in
// memory; durability comes from whole-table checkpoints.
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan/report-classifier/internal/types"
)

// Store is the in-memory record table plus its durable destination.
// It is touched only by the single run loop, so no locking is needed.
type Store struct {
	task   types.Task
	output string

	header []string
	rows   [][]string

	textCol  int
	labelCol int
	explCol  int
	countCol int
}

// Load reads the table at path, validates that the task's text column exists,
// and ensures the task's output columns are present. Checkpoints write to
// output. A missing text column is fatal before any processing begins.
func Load(path, output string, task types.Task) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no header row in %s", path)
	}

	s := &Store{
		task:     task,
		output:   output,
		header:   records[0],
		rows:     records[1:],
		explCol:  -1,
		countCol: -1,
	}

	s.textCol = s.columnIndex(task.TextColumn)
	if s.textCol < 0 {
		return nil, &MissingColumnError{Column: task.TextColumn, Path: path}
	}

	s.labelCol = s.ensureColumn(task.LabelColumn)
	if task.MultiField {
		s.explCol = s.ensureColumn(task.ExplanationColumn)
		s.countCol = s.ensureColumn(task.CountColumn)
	}

	return s, nil
}

// columnIndex returns the position of name in the header, or -1.
func (s *Store) columnIndex(name string) int {
	for i, col := range s.header {
		if col == name {
			return i
		}
	}
	return -1
}

// ensureColumn returns the position of name, appending it (and padding every
// row) when absent.
func (s *Store) ensureColumn(name string) int {
	if idx := s.columnIndex(name); idx >= 0 {
		return idx
	}
	s.header = append(s.header, name)
	for i := range s.rows {
		s.rows[i] = append(s.rows[i], "")
	}
	return len(s.header) - 1
}

// Pending returns the records whose label is still unset, in original row
// order. A row that already carries a label is never re-sent.
func (s *Store) Pending() []types.Record {
	var pending []types.Record
	for i, row := range s.rows {
		if strings.TrimSpace(row[s.labelCol]) == "" {
			pending = append(pending, types.Record{ID: i, Text: row[s.textCol]})
		}
	}
	return pending
}

// Counts returns the total number of records and how many still lack a label.
func (s *Store) Counts() (total, pending int) {
	return len(s.rows), len(s.Pending())
}

// Write records a classification result for the row at id. It mutates only
// the in-memory table; Checkpoint persists it.
func (s *Store) Write(id int, result types.ClassificationResult) {
	row := s.rows[id]
	row[s.labelCol] = result.Label.Token()
	if s.task.MultiField {
		row[s.explCol] = result.Explanation
		if result.Count != nil {
			row[s.countCol] = strconv.Itoa(*result.Count)
		} else {
			row[s.countCol] = ""
		}
	}
}

// Checkpoint writes the entire current table to the destination file. The
// write goes to a temp file in the destination directory and is renamed into
// place, so an interrupted checkpoint leaves the previous snapshot intact.
func (s *Store) Checkpoint() error {
	dir := filepath.Dir(s.output)
	tmp, err := os.CreateTemp(dir, ".checkpoint-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create checkpoint temp file: %w", err)
	}
	tmpPath := tmp.Name()

	writer := csv.NewWriter(tmp)
	if err := writer.Write(s.header); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range s.rows {
		if err := writer.Write(row); err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to flush checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close checkpoint temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.output); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", s.output, err)
	}
	return nil
}

// SummaryRow is one line of the completion report: a label's display name,
// its count, and its share of all rows.
type SummaryRow struct {
	Label   string
	Count   int
	Percent float64
}

// Summary tallies the label column into display rows, most frequent first.
// Rows whose cell holds something outside the label set are grouped under
// "Error/NA".
func (s *Store) Summary() []SummaryRow {
	counts := make(map[string]int)
	for _, row := range s.rows {
		cell := strings.TrimSpace(row[s.labelCol])
		name := "Error/NA"
		if label, err := types.ParseLabelToken(cell); err == nil {
			name = s.task.LabelNames[label]
		}
		counts[name]++
	}

	rows := make([]SummaryRow, 0, len(counts))
	for name, count := range counts {
		rows = append(rows, SummaryRow{
			Label:   name,
			Count:   count,
			Percent: float64(count) / float64(len(s.rows)) * 100,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Label < rows[j].Label
	})
	return rows
}
