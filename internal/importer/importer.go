// Package importer reads shape lists for a nesting problem. It supports the
// plain text move format, CSV and Excel sheets with flexible column mapping,
// and DXF drawings whose closed outlines are rasterized to grid cells.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/stewythe1st/Stock-Cutting/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Shapes     []model.Shape
	SheetWidth int // 0 when the source does not carry one
	Errors     []string
	Warnings   []string
}

// OK reports whether the import produced shapes without errors.
func (r ImportResult) OK() bool {
	return len(r.Errors) == 0 && len(r.Shapes) > 0
}

// Problem builds a nesting problem from the imported shapes. width overrides
// the sheet width read from the source when positive.
func (r ImportResult) Problem(name string, width int) (model.Problem, error) {
	if len(r.Errors) > 0 {
		return model.Problem{}, fmt.Errorf("import failed: %s", strings.Join(r.Errors, "; "))
	}
	if width <= 0 {
		width = r.SheetWidth
	}
	p := model.NewProblem(name, width, r.Shapes)
	if err := p.Validate(); err != nil {
		return model.Problem{}, fmt.Errorf("invalid problem: %w", err)
	}
	return p, nil
}

// ImportFile picks a reader from the file extension. cellSize is the DXF
// drawing length that maps to one grid cell.
func ImportFile(path string, cellSize float64) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return ImportCSV(path)
	case ".xlsx", ".xls", ".xlsm":
		return ImportExcel(path)
	case ".dxf":
		return ImportDXF(path, cellSize)
	default:
		return ImportText(path)
	}
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Label    int
	Moves    int
	Quantity int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"label":    {"label", "name", "shape", "shape name", "part", "description", "piece", "item"},
	"moves":    {"moves", "move", "path", "steps", "outline", "walk"},
	"quantity": {"quantity", "qty", "count", "num", "amount", "pcs", "pieces"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer delimiters with higher consistency and more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Matching is case-insensitive against known aliases for each column role.
// Returns the mapping and true if a header was detected, or the positional
// mapping (label, moves, quantity) and false otherwise.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Label: -1, Moves: -1, Quantity: -1}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch role {
				case "label":
					if mapping.Label == -1 {
						mapping.Label = i
					}
				case "moves":
					if mapping.Moves == -1 {
						mapping.Moves = i
					}
				case "quantity":
					if mapping.Quantity == -1 {
						mapping.Quantity = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Label: 0, Moves: 1, Quantity: 2}, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow extracts shapes from a row. A quantity above one repeats the shape.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, shapeCount int) ([]model.Shape, string) {
	label := getCell(row, mapping.Label)
	if label == "" {
		label = fmt.Sprintf("Shape %d", shapeCount+1)
	}

	moves := getCell(row, mapping.Moves)

	qty := 1
	if qtyStr := getCell(row, mapping.Quantity); qtyStr != "" {
		n, err := strconv.Atoi(qtyStr)
		if err != nil {
			return nil, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, qtyStr)
		}
		if n <= 0 {
			return nil, fmt.Sprintf("%s: Quantity must be positive", rowLabel)
		}
		qty = n
	}

	shapes := make([]model.Shape, 0, qty)
	for i := 0; i < qty; i++ {
		s, err := model.ParseShape(label, moves)
		if err != nil {
			return nil, fmt.Sprintf("%s: %v", rowLabel, err)
		}
		shapes = append(shapes, s)
	}
	return shapes, ""
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports shapes from a CSV file, detecting the delimiter and
// mapping columns by header names.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	var warnings []string
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	records, err := readCSV(bytes.NewReader(data), delimiter)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}
	return importFromRows(records, "Line", warnings)
}

// ImportCSVFromReader imports shapes from a CSV reader with a known delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	records, err := readCSV(reader, delimiter)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	return importFromRows(records, "Line", nil)
}

func readCSV(r io.Reader, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// ImportExcel imports shapes from the first sheet of an Excel workbook.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{Warnings: initialWarnings}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")
		if mapping.Moves == -1 {
			result.Errors = append(result.Errors, "Required columns not found in header: Moves")
			return result
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		shapes, errMsg := parseRow(row, mapping, rowLabel, len(result.Shapes))
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Shapes = append(result.Shapes, shapes...)
	}

	if len(result.Shapes) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No shapes found")
	}
	return result
}
