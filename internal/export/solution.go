// Package export writes nesting results to text, spreadsheet, PDF, DXF and
// image files.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/stewythe1st/Stock-Cutting/internal/model"
)

const (
	emptySymbol   = '.'
	overlapSymbol = '#'
)

// shapeSymbols cycles when there are more shapes than symbols.
const shapeSymbols = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// ShapeSymbol returns the layout character for shape i.
func ShapeSymbol(i int) byte {
	return shapeSymbols[i%len(shapeSymbols)]
}

// createFile opens path for writing, creating parent directories.
func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}

func writeFile(path string, write func(w io.Writer) error) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// WriteSolution writes one "x,y,rotation" line per shape in problem order.
func WriteSolution(w io.Writer, sol model.Solution) error {
	for _, pl := range sol.Layout {
		if _, err := fmt.Fprintf(w, "%d,%d,%d\n", pl.X, pl.Y, pl.Rotation); err != nil {
			return fmt.Errorf("failed to write solution: %w", err)
		}
	}
	return nil
}

// WriteSolutionFile writes the overall best solution of r to path.
func WriteSolutionFile(path string, r model.Result) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteSolution(w, r.Best)
	})
}

// ReadSolution parses a solution written by WriteSolution.
func ReadSolution(r io.Reader) (model.Layout, error) {
	var layout model.Layout
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Split(text, ",")
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: expected x,y,rotation, got %q", line, text)
		}
		var vals [3]int
		for i, f := range fields {
			v, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid number %q", line, f)
			}
			vals[i] = v
		}
		layout = append(layout, model.Placement{X: vals[0], Y: vals[1], Rotation: vals[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read solution: %w", err)
	}
	return layout, nil
}

// RenderLayout draws the layout as text, one line per sheet row across the
// fixed width. Columns run along the sheet length. Each shape uses its own
// symbol; cells covered more than once show '#'.
func RenderLayout(p *model.Problem, l model.Layout) []string {
	occ := p.Occupy(l)
	rows := make([][]byte, p.SheetWidth)
	for y := range rows {
		rows[y] = []byte(strings.Repeat(string(emptySymbol), occ.Length))
	}
	for cell, owners := range occ.Owners {
		if cell.Y < 0 || cell.Y >= p.SheetWidth || cell.X < 0 || cell.X >= occ.Length {
			continue
		}
		sym := byte(overlapSymbol)
		if len(owners) == 1 {
			sym = ShapeSymbol(owners[0])
		}
		rows[cell.Y][cell.X] = sym
	}

	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = string(r)
	}
	return out
}

// WriteLayoutFile writes the text drawing of the overall best layout of r.
func WriteLayoutFile(path string, r model.Result) error {
	return writeFile(path, func(w io.Writer) error {
		for _, row := range RenderLayout(&r.Problem, r.Best.Layout) {
			if _, err := fmt.Fprintln(w, row); err != nil {
				return fmt.Errorf("failed to write layout: %w", err)
			}
		}
		return nil
	})
}
