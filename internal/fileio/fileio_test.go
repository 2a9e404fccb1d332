package fileio

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	excelize "github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func TestReadAnyMapsCSV(t *testing.T) {
	t.Run("comma", func(t *testing.T) {
		in := "\ufefforder-id,sku,quantity\nO-1,B001122334,2\n,,\nO-2,\"MUG,01\",1\n"
		recs, err := ReadAnyMaps(strings.NewReader(in), "orders.CSV", 1)
		require.NoError(t, err)
		require.Len(t, recs, 2, "empty row skipped")
		assert.Equal(t, map[string]string{"order-id": "O-1", "sku": "B001122334", "quantity": "2"}, recs[0])
		assert.Equal(t, "MUG,01", recs[1]["sku"])
	})

	t.Run("semicolon and header row", func(t *testing.T) {
		in := "Sales report March\nOrder ID;SKU;;SKU\nE-1;X-1;note;X-2\n"
		recs, err := ReadAnyMaps(strings.NewReader(in), "report.csv", 2)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, map[string]string{
			"Order ID": "E-1",
			"SKU":      "X-1",
			"Column 3": "note",
			"SKU (2)":  "X-2",
		}, recs[0])
	})

	t.Run("tab", func(t *testing.T) {
		recs, err := ReadAnyMaps(strings.NewReader("a\tb\n1\t2\n"), "x.csv", 0)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "2", recs[0]["b"])
	})

	t.Run("short rows padded", func(t *testing.T) {
		recs, err := ReadAnyMaps(strings.NewReader("a,b,c\n1\n"), "x.csv", 1)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, map[string]string{"a": "1", "b": "", "c": ""}, recs[0])
	})

	t.Run("single-byte encoding", func(t *testing.T) {
		raw, err := charmap.Windows1252.NewEncoder().String("name,price\nCafé crème,3\nNaïve déjà vu,4\n")
		require.NoError(t, err)
		require.False(t, utf8.ValidString(raw))

		recs, err := ReadAnyMaps(strings.NewReader(raw), "x.csv", 1)
		require.NoError(t, err)
		require.Len(t, recs, 2)
		for _, r := range recs {
			assert.True(t, utf8.ValidString(r["name"]))
		}
		assert.Equal(t, "3", recs[0]["price"])
	})

	t.Run("empty file", func(t *testing.T) {
		recs, err := ReadAnyMaps(strings.NewReader(""), "x.csv", 1)
		require.NoError(t, err)
		assert.Empty(t, recs)
	})
}

func TestReadAnyMapsXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Purchase Order", "SKU", "Quantity"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"PO-1", "ABCD1234", 3}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"PO-2", "ABCD1235", 1}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	recs, err := ReadAnyMaps(bytes.NewReader(buf.Bytes()), "walmart.xlsx", 1)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, map[string]string{"Purchase Order": "PO-1", "SKU": "ABCD1234", "Quantity": "3"}, recs[0])
	assert.Equal(t, "PO-2", recs[1]["Purchase Order"])
}

func TestReadAnyMapsErrors(t *testing.T) {
	_, err := ReadAnyMaps(strings.NewReader("x"), "orders.pdf", 1)
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = ReadAnyMaps(strings.NewReader("not a zip"), "orders.xlsx", 1)
	assert.Error(t, err)
}

func TestSniffDelimiter(t *testing.T) {
	assert.Equal(t, ',', sniffDelimiter([]byte("a,b,c\n1;2")))
	assert.Equal(t, ';', sniffDelimiter([]byte("a;b;c\n")))
	assert.Equal(t, '\t', sniffDelimiter([]byte("a\tb\tc")))
	assert.Equal(t, ',', sniffDelimiter(nil))
}

func TestDetectEncoding(t *testing.T) {
	assert.Nil(t, detectEncoding([]byte("plain ascii")))
	assert.Nil(t, detectEncoding([]byte("юникод")))
	// обрезанный посередине многобайтовый символ — всё ещё UTF-8
	assert.Nil(t, detectEncoding([]byte("юникод")[:5]))
	assert.NotNil(t, detectEncoding([]byte{'c', 'a', 'f', 0xE9, ' ', 0xE8}))
}

func TestNormalizeCell(t *testing.T) {
	assert.Equal(t, "1 234", normalizeCell("\ufeff 1\u00a0234\u202f"))
	assert.Equal(t, "", normalizeCell("  "))
}
