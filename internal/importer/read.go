package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither .xlsx nor .csv.
	ErrUnsupportedFormat = errors.New("unsupported file format (expected .xlsx or .csv)")
	// ErrUnreadableFile is returned when a file has a supported extension
	// but its contents cannot be decoded.
	ErrUnreadableFile = errors.New("file could not be read as a spreadsheet")
)

// ReadRows decodes a spreadsheet into rows. The format is chosen by the
// file extension. The first row is the header; only the first sheet of a
// workbook is read.
func ReadRows(r io.Reader, filename string) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return readXLSX(r)
	case ".csv":
		return readCSV(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func readXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: opening workbook: %w", ErrUnreadableFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %q: %w", ErrUnreadableFile, sheets[0], err)
	}
	return toRows(records), nil
}

func readCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: reading csv: %w", ErrUnreadableFile, err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return toRows(records), nil
}

// toRows pairs each record with the header. Blank records are dropped and
// cells under a blank header are ignored.
func toRows(records [][]string) []Row {
	if len(records) < 2 {
		return nil
	}
	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := Row{}
		for i, cell := range rec {
			if i >= len(header) {
				break
			}
			key := strings.TrimSpace(header[i])
			if key == "" || strings.TrimSpace(cell) == "" {
				continue
			}
			row[key] = cell
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}
