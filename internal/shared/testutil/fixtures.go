package testutil

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Default header rows of the two fixture sources
var (
	HistoricalHeader = []interface{}{"year", "month", "fruit_type", "sales_kg"}
	ForecastHeader   = []interface{}{"month", "fruit_type", "predicted_demand"}
)

// SampleHistoricalRows returns historical rows spanning two years and three
// fruits, deliberately not sorted by year.
func SampleHistoricalRows() [][]interface{} {
	return [][]interface{}{
		{2021, 1, "banana", 120.9},
		{2020, 1, "apple", 100},
		{2020, 1, "banana", 80.4},
		{2021, 1, "apple", 110},
		{2020, 2, "apple", 95.7},
		{2021, 2, "cherry", 30},
		{2020, 2, "banana", 85},
	}
}

// SampleForecastRows returns forecast rows for a single implicit year
func SampleForecastRows() [][]interface{} {
	return [][]interface{}{
		{1, "apple", 101.2},
		{1, "banana", 12.5},
		{2, "apple", 99.5},
		{2, "banana", 13.5},
		{3, "cherry", 40.49},
	}
}

// WriteXLSX writes header and rows to a new workbook at dir/name and returns its path
func WriteXLSX(t *testing.T, dir, name string, header []interface{}, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	all := append([][]interface{}{header}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("write row %d: %v", i+1, err)
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook %s: %v", path, err)
	}
	return path
}

// WriteCSV writes header and rows as CSV to dir/name and returns its path
func WriteCSV(t *testing.T, dir, name string, header []interface{}, rows [][]interface{}) string {
	t.Helper()

	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	for _, row := range append([][]interface{}{header}, rows...) {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = fmt.Sprint(v)
		}
		if err := w.Write(record); err != nil {
			t.Fatalf("write csv row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("flush csv: %v", err)
	}
	return path
}

// WriteSampleSources writes the default historical and forecast workbooks
// into dir and returns their paths.
func WriteSampleSources(t *testing.T, dir string) (historical, forecast string) {
	t.Helper()
	historical = WriteXLSX(t, dir, "2018-2024.xlsx", HistoricalHeader, SampleHistoricalRows())
	forecast = WriteXLSX(t, dir, "forecast_2025.xlsx", ForecastHeader, SampleForecastRows())
	return historical, forecast
}
