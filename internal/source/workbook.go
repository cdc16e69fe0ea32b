package source

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/edcost/internal/model"
)

// ParseWorkbook reads the first sheet of an XLSX workbook as a program table.
// Its header and rows follow the same rules as the CSV format.
func ParseWorkbook(path string) ([]model.Program, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &model.DataIntegrityError{Source: path, Reason: err.Error()}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &model.DataIntegrityError{Source: path, Reason: "workbook has no sheets"}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &model.DataIntegrityError{Source: path, Reason: err.Error()}
	}

	i := 0
	return parseRows(func() ([]string, error) {
		for i < len(rows) {
			row := rows[i]
			i++
			if !blankRow(row) {
				return row, nil
			}
		}
		return nil, io.EOF
	}, path)
}

func blankRow(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
