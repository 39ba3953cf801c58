package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ReadCSV decodes a CSV payload. The header row is required and
// checked; blank lines are skipped by the csv reader itself.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows are handled per cell

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty payload", ErrBadHeader)
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, rowFromRecord(record))
	}
	return rows, nil
}

// WriteCSV encodes rows with the fixed header and no trailing metadata.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row.record()); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
