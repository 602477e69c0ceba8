package tabular

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"schemalens/domain/dataset"
	"schemalens/internal"
	"schemalens/internal/detect"
)

// Reader loads records from CSV, XLSX or JSON files so they can be fed into
// the analyzer. The core itself never touches the filesystem; this adapter
// is the bridge.
type Reader struct {
	filePath string
	fileType string // "csv", "xlsx" or "json"
	log      *internal.Logger
}

// NewReader creates a reader for the given file, picking the decoder from
// the extension
func NewReader(filePath string, log *internal.Logger) *Reader {
	if log == nil {
		log = internal.DefaultLogger
	}
	fileType := "csv"
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx", ".xlsm":
		fileType = "xlsx"
	case ".json":
		fileType = "json"
	}
	return &Reader{filePath: filePath, fileType: fileType, log: log}
}

// ReadRecords loads the file into a record slice
func (r *Reader) ReadRecords() ([]dataset.Record, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("input file not found: %s", r.filePath)
	}

	switch r.fileType {
	case "xlsx":
		return r.readExcel()
	case "json":
		return r.readJSON()
	default:
		return r.readCSV()
	}
}

func (r *Reader) readExcel() ([]dataset.Record, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	r.log.Debug("read %d rows from sheet %q", len(rows), sheets[0])
	return rowsToRecords(rows)
}

func (r *Reader) readCSV() ([]dataset.Record, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	r.log.Debug("read %d rows from %s", len(rows), r.filePath)
	return rowsToRecords(rows)
}

func (r *Reader) readJSON() ([]dataset.Record, error) {
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}
	var records []dataset.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("JSON file must contain an array of objects: %w", err)
	}
	return records, nil
}

// rowsToRecords maps a header row plus data rows onto records. Cell strings
// are narrowed to richer scalars where the content is unambiguous; empty
// cells become nil so completeness stays meaningful for file sources.
func rowsToRecords(rows [][]string) ([]dataset.Record, error) {
	if len(rows) < 1 {
		return nil, fmt.Errorf("file must have a header row")
	}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		headers[i] = h
	}

	records := make([]dataset.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(dataset.Record, len(headers))
		for i, header := range headers {
			if i >= len(row) {
				rec[header] = nil
				continue
			}
			rec[header] = narrowCell(row[i])
		}
		records = append(records, rec)
	}
	return records, nil
}

// narrowCell converts a raw cell string into nil, bool, int, float or string
func narrowCell(cell string) interface{} {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return nil
	}
	if b, ok := detect.ParseBool(trimmed); ok {
		return b
	}
	// Only plain numbers narrow; currency and percent strings stay strings
	// so the detector can classify them.
	if f, ok := parsePlainNumber(trimmed); ok {
		if f == float64(int64(f)) && !strings.Contains(trimmed, ".") {
			return int64(f)
		}
		return f
	}
	return cell
}

func parsePlainNumber(s string) (float64, bool) {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-', r == '+', r == 'e', r == 'E':
		default:
			return 0, false
		}
	}
	return detect.ParseNumeric(s)
}
