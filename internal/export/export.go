// Package export writes the annotated window table to CSV or XLSX files.
package export

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"trafficlens/internal/report"
	"trafficlens/internal/window"
)

// SheetName is the worksheet holding the window table in XLSX exports.
const SheetName = "windows"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a header plus string records.
type Table struct {
	Headers []string
	Records [][]string
}

// WindowTable converts annotated rows into an exportable table.
func WindowTable(rows []window.Row) Table {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = report.WindowRecord(r)
	}
	return Table{Headers: report.WindowHeaders, Records: records}
}

// Write picks the format from the extension of path: .xlsx writes a
// workbook, anything else a CSV file.
func Write(path string, table Table, logger *slog.Logger) error {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return XLSX(path, table, logger)
	}
	return CSV(path, table, logger)
}

// CSV writes table as a UTF-8 CSV file with a byte order mark so
// spreadsheet tools detect the encoding.
func CSV(path string, table Table, logger *slog.Logger) error {
	logger.Info("Writing CSV export",
		slog.String("path", path),
		slog.Int("record_count", len(table.Records)))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(table.Headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range table.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// XLSX writes table to a workbook with a single sheet. Integer and decimal
// cells are stored as numbers.
func XLSX(path string, table Table, logger *slog.Logger) error {
	logger.Info("Writing XLSX export",
		slog.String("path", path),
		slog.Int("record_count", len(table.Records)))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}

	header := make([]interface{}, len(table.Headers))
	for i, h := range table.Headers {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, record := range table.Records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(record))
		for j, v := range record {
			values[j] = cellValue(v)
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func cellValue(v string) interface{} {
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}
