package fileio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrUnsupported — расширение файла не поддерживается.
var ErrUnsupported = errors.New("unsupported file")

// Extensions we can parse.
var Extensions = []string{".csv", ".xlsx", ".xls"}

// ReadAnyMaps picks a parser by file extension and returns the rows as
// header → value maps. headerRow is 1-based.
func ReadAnyMaps(r io.Reader, filename string, headerRow int) ([]map[string]string, error) {
	if headerRow < 1 {
		headerRow = 1
	}
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		rows, err = readXLSX(r)
	case ".xls":
		rows, err = readXLS(r)
	case ".csv":
		rows, err = readCSV(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filename)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return toRecords(rows, headerRow), nil
}

// pickHeader — строка заголовков; пустые ячейки → "Column N", повторы → "Name (2)".
func pickHeader(rows [][]string, headerRow int) []string {
	idx := headerRow - 1
	if idx >= len(rows) {
		idx = 0
	}
	seen := make(map[string]int)
	out := make([]string, len(rows[idx]))
	for i, v := range rows[idx] {
		v = normalizeCell(v)
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		seen[v]++
		if n := seen[v]; n > 1 {
			v = fmt.Sprintf("%s (%d)", v, n)
		}
		out[i] = v
	}
	return out
}

// toRecords: всё после строки заголовков → []map, полностью пустые строки пропускаем.
func toRecords(rows [][]string, headerRow int) []map[string]string {
	headers := pickHeader(rows, headerRow)
	start := min(headerRow, len(rows))
	out := make([]map[string]string, 0, len(rows)-start)
	for _, rec := range rows[start:] {
		m := make(map[string]string, len(headers))
		empty := true
		for c, h := range headers {
			var v string
			if c < len(rec) {
				v = normalizeCell(rec[c])
			}
			if v != "" {
				empty = false
			}
			m[h] = v
		}
		if !empty {
			out = append(out, m)
		}
	}
	return out
}

// normalizeCell: NBSP/NNBSP → пробел, BOM долой, обрезка по краям.
func normalizeCell(s string) string {
	s = strings.NewReplacer("\ufeff", "", "\u00a0", " ", "\u202f", " ").Replace(s)
	return strings.TrimSpace(s)
}
