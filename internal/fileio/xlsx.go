package fileio

import (
	"io"

	excelize "github.com/xuri/excelize/v2"
)

// readXLSX — первый лист книги.
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	return f.GetRows(sheets[0])
}
