package fileio

import (
	"bytes"
	"errors"
	"io"

	xls "github.com/extrame/xls"
)

// старые выгрузки бывают в cp1252/cp1251, новые — в utf-8
var xlsCharsets = []string{"utf-8", "windows-1252", "windows-1251"}

func readXLS(r io.Reader) ([][]string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var wb *xls.WorkBook
	lastErr := errors.New("xls: failed to open workbook")
	for _, ch := range xlsCharsets {
		if wb, err = xls.OpenReader(bytes.NewReader(b), ch); err == nil && wb != nil {
			break
		} else if err != nil {
			lastErr = err
		}
	}
	if wb == nil {
		return nil, lastErr
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}

	width := sheetWidth(sheet)
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		cols := make([]string, width)
		if row := sheet.Row(i); row != nil {
			for j := 0; j < width; j++ {
				cols[j] = row.Col(j)
			}
		}
		rows = append(rows, cols)
	}
	return rows, nil
}

// LastCol() у некоторых выгрузок занижен, поэтому первые строки
// (шапка и соседи) дополнительно прощупываем по ячейкам.
func sheetWidth(sheet *xls.WorkSheet) int {
	const (
		probeRows = 3
		probeCols = 256
	)
	width := 0
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		width = max(width, row.LastCol())
		if i >= probeRows {
			continue
		}
		for j := width; j < probeCols; j++ {
			if normalizeCell(row.Col(j)) != "" {
				width = j + 1
			}
		}
	}
	return width
}
