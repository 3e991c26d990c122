package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/epeers/portools/internal/models"
)

// CSVErrorKind classifies why a lot upload could not be parsed
type CSVErrorKind string

const (
	CSVHeaderError   CSVErrorKind = "HeaderError"
	CSVMissingHeader CSVErrorKind = "MissingHeader"
	CSVRecordError   CSVErrorKind = "RecordError"
	CSVRecordInvalid CSVErrorKind = "RecordInvalid"
)

// lotColumns are the columns every lot upload must carry, in any order
var lotColumns = []string{"account", "symbol", "date_acquired", "quantity", "cost_per_share"}

// CSVError reports the row (1-based, the header is row 1) and cause of a
// rejected upload. Name is set for MissingHeader.
type CSVError struct {
	Row   int
	Kind  CSVErrorKind
	Name  string
	Cause error
}

func (e *CSVError) Error() string {
	switch e.Kind {
	case CSVMissingHeader:
		return fmt.Sprintf("missing required column: %s", e.Name)
	case CSVHeaderError:
		return fmt.Sprintf("failed to read CSV header: %v", e.Cause)
	case CSVRecordError:
		return fmt.Sprintf("row %d: failed to read CSV record: %v", e.Row, e.Cause)
	}
	return fmt.Sprintf("row %d: %v", e.Row, e.Cause)
}

func (e *CSVError) Unwrap() error {
	return e.Cause
}

// ParseLotsCSV parses a lot upload.
// Required columns: account, symbol, date_acquired, quantity, cost_per_share
// Headers are matched case-insensitively after trimming; values are trimmed.
// Dates use YYYY/MM/DD and cost_per_share is a USD amount.
func ParseLotsCSV(r io.Reader) ([]models.Lot, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, &CSVError{Row: 1, Kind: CSVHeaderError, Cause: err}
	}

	// Build column index map (case-insensitive, trimmed)
	colIdx := make(map[string]int)
	for i, col := range header {
		colIdx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range lotColumns {
		if _, ok := colIdx[col]; !ok {
			return nil, &CSVError{Row: 1, Kind: CSVMissingHeader, Name: col}
		}
	}

	var lots []models.Lot
	rowNum := 1 // header is row 1, data starts at row 2
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			return nil, &CSVError{Row: rowNum, Kind: CSVRecordError, Cause: err}
		}

		fields := make([]string, len(lotColumns))
		for i, col := range lotColumns {
			idx := colIdx[col]
			if idx >= len(record) {
				return nil, &CSVError{Row: rowNum, Kind: CSVRecordInvalid, Cause: &models.Invalid{Field: col, Reason: models.ReasonRequired}}
			}
			fields[i] = strings.TrimSpace(record[idx])
		}

		lot, err := models.ParseLot(fields[0], fields[1], fields[2], fields[3], fields[4])
		if err != nil {
			return nil, &CSVError{Row: rowNum, Kind: CSVRecordInvalid, Cause: err}
		}
		lots = append(lots, lot)
	}

	return lots, nil
}
