package fileio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const sniffLines = 5

// readCSV reads a CSV export, auto-detecting encoding (UTF-8, Windows-1251,
// Windows-1252, Latin-1) and the delimiter (',', ';' or tab).
func readCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	peek, _ := br.Peek(4096)

	var dec io.Reader = br
	if enc := detectEncoding(peek); enc != nil {
		dec = transform.NewReader(br, enc.NewDecoder())
	}

	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.Comma = sniffDelimiter(peek)

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// detectEncoding: nil = UTF-8 (или ASCII), иначе однобайтовая кодировка.
func detectEncoding(peek []byte) encoding.Encoding {
	if len(peek) == 0 || utf8.Valid(trimPartialRune(peek)) {
		return nil
	}
	det, err := chardet.NewTextDetector().DetectBest(peek)
	if err != nil || det == nil {
		return charmap.Windows1252
	}
	switch strings.ToLower(det.Charset) {
	case "windows-1251", "cp1251", "koi8-r":
		return charmap.Windows1251
	case "iso-8859-1":
		return charmap.ISO8859_1
	default:
		return charmap.Windows1252
	}
}

// Peek мог разрезать многобайтовый символ на границе.
func trimPartialRune(b []byte) []byte {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if r, size := utf8.DecodeLastRune(b); r != utf8.RuneError || size != 1 {
			break
		}
		b = b[:len(b)-1]
	}
	return b
}

// sniffDelimiter смотрит первые строки: над шапкой бывает заголовок отчёта без разделителей.
func sniffDelimiter(peek []byte) rune {
	lines := bytes.SplitN(peek, []byte{'\n'}, sniffLines+1)
	if len(lines) > sniffLines {
		lines = lines[:sniffLines]
	}
	sample := bytes.Join(lines, []byte{'\n'})

	best, bestN := ',', bytes.Count(sample, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(sample, []byte(string(d))); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}
