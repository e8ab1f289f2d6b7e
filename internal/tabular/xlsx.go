package tabular

import (
	"github.com/xuri/excelize/v2"

	"github.com/faxhealth/carebook/pkg/errors"
	"github.com/faxhealth/carebook/pkg/establishments"
)

const xlsxSheetName = "Establishments"

// ExportRecordsXLSX writes canonical records to a spreadsheet with a
// styled header row, for the teams that review the clean dataset in a
// spreadsheet rather than a CSV.
func ExportRecordsXLSX(path string, records []establishments.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(xlsxSheetName)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return errors.WrapIO("create", path, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return errors.WrapIO("create", path, err)
	}

	for i, header := range establishments.TargetColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(xlsxSheetName, cell, header); err != nil {
			return errors.WrapIO("write", path, err)
		}
		if err := f.SetCellStyle(xlsxSheetName, cell, cell, headerStyle); err != nil {
			return errors.WrapIO("write", path, err)
		}
	}

	for rowIdx, record := range records {
		for colIdx, value := range record.Values() {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(xlsxSheetName, cell, value); err != nil {
				return errors.WrapIO("write", path, err)
			}
		}
	}

	for i := range establishments.TargetColumns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(xlsxSheetName, col, col, 18); err != nil {
			return errors.WrapIO("write", path, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// ReadRecords loads a previously written clean dataset back into
// canonical records, used by the export command.
func ReadRecords(path string) ([]establishments.Record, error) {
	rows, _, err := Load(path, LoadOptions{})
	if err != nil {
		return nil, err
	}
	records := make([]establishments.Record, len(rows))
	for i, row := range rows {
		records[i] = establishments.RecordFromRow(row)
	}
	return records, nil
}
