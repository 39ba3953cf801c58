package tabular

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Sheet1"

// ReadXLSX decodes an XLSX payload from the first sheet. The header row
// is required, trailing empty rows are ignored.
func ReadXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrBadHeader)
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrBadHeader)
	}
	if err := checkHeader(records[0]); err != nil {
		return nil, err
	}

	var rows []Row
	for _, record := range records[1:] {
		row := rowFromRecord(record)
		if row == (Row{}) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteXLSX encodes rows to a single-sheet workbook.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	write := func(line int, record []string) error {
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return err
		}
		cells := make([]interface{}, len(record))
		for i, v := range record {
			cells[i] = v
		}
		return f.SetSheetRow(xlsxSheet, cell, &cells)
	}

	if err := write(1, Header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}
	for i, row := range rows {
		if err := write(i+2, row.record()); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", i+1, err)
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
