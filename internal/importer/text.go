package importer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/stewythe1st/Stock-Cutting/internal/model"
)

// ImportText imports a problem in the plain text format: a first line with
// the sheet width and the number of shapes, then one move string per line.
func ImportText(path string) ImportResult {
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	defer f.Close()
	return ParseText(f)
}

// ParseText reads the plain text problem format from r. Blank lines and lines
// starting with '#' are ignored.
func ParseText(r io.Reader) ImportResult {
	result := ImportResult{}
	scanner := bufio.NewScanner(r)

	declared := -1
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if declared < 0 {
			width, count, err := parseHeader(line)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Line %d: %v", lineNum, err))
				return result
			}
			result.SheetWidth = width
			declared = count
			continue
		}

		label := fmt.Sprintf("Shape %d", len(result.Shapes)+1)
		s, err := model.ParseShape(label, line)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Line %d: %v", lineNum, err))
			continue
		}
		result.Shapes = append(result.Shapes, s)
	}
	if err := scanner.Err(); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read input: %v", err))
		return result
	}

	if declared < 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}
	if len(result.Shapes) != declared && len(result.Errors) == 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Header declares %d shapes, found %d", declared, len(result.Shapes)))
	}
	return result
}

func parseHeader(line string) (width, count int, err error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("expected '<sheet width> <shape count>', got %q", line)
	}
	width, err = strconv.Atoi(fields[0])
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("invalid sheet width %q", fields[0])
	}
	count, err = strconv.Atoi(fields[1])
	if err != nil || count < 0 {
		return 0, 0, fmt.Errorf("invalid shape count %q", fields[1])
	}
	return width, count, nil
}
