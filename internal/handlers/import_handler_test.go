package handlers

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	input := strings.Join([]string{
		"Name *,PRICE,sku",
		"Air Zoom ,1200000,NIK-1",
		"Court Vision,800000,NIK-2",
	}, "\n")

	rows, err := parseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// headers lowercased, required marker stripped, values trimmed
	assert.Equal(t, "Air Zoom", rows[0]["name"])
	assert.Equal(t, "1200000", rows[0]["price"])
	assert.Equal(t, "NIK-1", rows[0]["sku"])

	// original spreadsheet positions tracked for error reporting
	assert.Equal(t, "2", rows[0]["_row"])
	assert.Equal(t, "3", rows[1]["_row"])
}

func TestParseCSVHeaderOnly(t *testing.T) {
	rows, err := parseCSV(strings.NewReader("name,price\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", "Products")
	f.SetCellValue("Products", "A1", "name *")
	f.SetCellValue("Products", "B1", "price")
	f.SetCellValue("Products", "A2", "Air Zoom")
	f.SetCellValue("Products", "B2", "1200000")
	f.SetCellValue("Products", "A3", "Court Vision")
	f.SetCellValue("Products", "B3", "800000")

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	rows, err := parseXLSX(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Air Zoom", rows[0]["name"])
	assert.Equal(t, "1200000", rows[0]["price"])
	assert.Equal(t, "2", rows[0]["_row"])
	assert.Equal(t, "3", rows[1]["_row"])
}

func TestParseXLSXRequiresDataRows(t *testing.T) {
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "name")

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err := parseXLSX(&buf)
	assert.Error(t, err)
}
