// Package rates caches the loan-rate reference table uploaded by clients.
//
// The table lives in a single file slot on disk and as one in-memory snapshot.
// Reads never parse anything; reloads build a complete replacement table and
// publish it with a single atomic pointer swap, so concurrent readers never
// observe a half-populated table.
package rates

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// Record is one row of the rate table, keyed by the header columns declared
// by the uploaded file. The schema is caller-defined, not fixed here.
type Record map[string]string

// Table is an immutable snapshot of the rate table. Records preserve the
// file's row order; Columns preserve the header order.
type Table struct {
	Columns []string
	Records []Record
}

// Store holds the current rate table for the process.
type Store struct {
	path  string
	table atomic.Pointer[Table]
}

// NewStore returns a store backed by the given single-slot file path. The
// table starts empty; call Reload to populate it.
func NewStore(path string) *Store {
	s := &Store{path: path}
	s.table.Store(&Table{})
	return s
}

// Path returns the file the table is loaded from and uploads are written to.
func (s *Store) Path() string { return s.path }

// Table returns the current snapshot in O(1). Callers must treat it as
// read-only; it may be shared with any number of concurrent readers.
func (s *Store) Table() *Table { return s.table.Load() }

// Records returns the current rows. Never nil, so the result marshals to a
// JSON array even when the table is empty.
func (s *Store) Records() []Record {
	recs := s.table.Load().Records
	if recs == nil {
		return []Record{}
	}
	return recs
}

// Reload re-reads the rate file and swaps the new table in. A missing file is
// not an error: the table becomes empty and a warning is logged. Malformed
// rows are skipped and counted, never fatal.
func (s *Store) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.table.Store(&Table{})
			log.Warn().Str("path", s.path).Msg("rates file missing, serving empty table")
			return nil
		}
		return fmt.Errorf("failed to read rates file %q: %w", s.path, err)
	}

	table, skipped, err := parseTable(data)
	if err != nil {
		return fmt.Errorf("failed to parse rates file %q: %w", s.path, err)
	}

	s.table.Store(table)
	log.Info().
		Str("path", s.path).
		Int("rows", len(table.Records)).
		Int("skipped", skipped).
		Msg("rate table reloaded")
	return nil
}

// parseTable dispatches on content, not extension: the upload slot keeps one
// fixed name regardless of what was uploaded. XLSX files are ZIP containers.
func parseTable(data []byte) (*Table, int, error) {
	if bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		return parseXLSX(data)
	}
	return parseCSV(data)
}

func parseCSV(data []byte) (*Table, int, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, 0, err
	}
	table, skipped := buildTable(rows)
	return table, skipped, nil
}

func parseXLSX(data []byte) (*Table, int, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, 0, err
	}

	// excelize drops trailing empty cells, so pad non-empty short rows back
	// to the header width before the column-count check.
	if len(rows) > 0 {
		width := len(rows[0])
		for i := 1; i < len(rows); i++ {
			for len(rows[i]) > 0 && len(rows[i]) < width {
				rows[i] = append(rows[i], "")
			}
		}
	}

	table, skipped := buildTable(rows)
	return table, skipped, nil
}

func buildTable(rows [][]string) (*Table, int) {
	if len(rows) == 0 {
		return &Table{}, 0
	}

	header := rows[0]
	table := &Table{Columns: header}
	skipped := 0

	for i, row := range rows[1:] {
		if len(row) != len(header) {
			skipped++
			log.Warn().
				Int("row", i+2).
				Int("fields", len(row)).
				Int("want", len(header)).
				Msg("skipping malformed rate row")
			continue
		}
		rec := make(Record, len(header))
		for j, col := range header {
			rec[col] = row[j]
		}
		table.Records = append(table.Records, rec)
	}

	return table, skipped
}
