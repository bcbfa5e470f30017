package export

import (
	"fmt"

	"github.com/stewythe1st/Stock-Cutting/internal/model"
	"github.com/xuri/excelize/v2"
)

// Workbook sheet names.
const (
	SheetSummary     = "Summary"
	SheetGenerations = "Generations"
	SheetPlacements  = "Placements"
)

// ExportWorkbook writes r to an Excel workbook with a summary sheet, the
// per-generation statistics and the placement of every shape in the best
// layout.
func ExportWorkbook(path string, r model.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSummarySheet(f, header, r); err != nil {
		return err
	}
	if err := writeGenerationSheet(f, header, r); err != nil {
		return err
	}
	if err := writePlacementSheet(f, header, r); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, header int, r model.Result) error {
	rows := [][]interface{}{
		{"Run ID", r.ID},
		{"Problem", r.Problem.Name},
		{"Sheet width", r.Problem.SheetWidth},
		{"Shapes", len(r.Problem.Shapes)},
		{"Seed", r.Seed},
		{"Runs", len(r.Runs)},
		{"Best fitness", r.Best.Fitness},
		{"Length", r.Best.Length},
		{"Overlap", r.Best.Overlap},
		{"Efficiency %", r.Efficiency()},
		{},
		{"Run", "Generations", "Evals", "Stopped", "Best fitness", "Length", "Overlap"},
	}
	for _, run := range r.Runs {
		rows = append(rows, []interface{}{
			run.Run, run.Generations, run.Evals, run.Terminated,
			run.Best.Fitness, run.Best.Length, run.Best.Overlap,
		})
	}
	if err := setRows(f, SheetSummary, rows); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetSummary, "A", "A", 16); err != nil {
		return fmt.Errorf("failed to size summary column: %w", err)
	}
	return styleRow(f, SheetSummary, header, 12, 7)
}

func writeGenerationSheet(f *excelize.File, header int, r model.Result) error {
	if _, err := f.NewSheet(SheetGenerations); err != nil {
		return fmt.Errorf("failed to add %s sheet: %w", SheetGenerations, err)
	}
	rows := [][]interface{}{
		{"Run", "Generation", "Evals", "Average fitness", "Best fitness", "Std dev", "Pareto size"},
	}
	for _, gs := range r.Generations {
		rows = append(rows, []interface{}{
			gs.Run, gs.Generation, gs.Evals, gs.AverageFitness, gs.BestFitness, gs.StdDev, gs.ParetoSize,
		})
	}
	if err := setRows(f, SheetGenerations, rows); err != nil {
		return err
	}
	return styleRow(f, SheetGenerations, header, 1, 7)
}

func writePlacementSheet(f *excelize.File, header int, r model.Result) error {
	if _, err := f.NewSheet(SheetPlacements); err != nil {
		return fmt.Errorf("failed to add %s sheet: %w", SheetPlacements, err)
	}
	rows := [][]interface{}{
		{"Shape", "Symbol", "Label", "Moves", "Cells", "X", "Y", "Rotation"},
	}
	for i, pl := range r.Best.Layout {
		var label, moves string
		var cells int
		if i < len(r.Problem.Shapes) {
			s := &r.Problem.Shapes[i]
			label, moves, cells = s.Label, s.Moves, s.Area()
		}
		rows = append(rows, []interface{}{
			i + 1, string(ShapeSymbol(i)), label, moves, cells, pl.X, pl.Y, pl.Rotation,
		})
	}
	if err := setRows(f, SheetPlacements, rows); err != nil {
		return err
	}
	return styleRow(f, SheetPlacements, header, 1, 8)
}

func setRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func styleRow(f *excelize.File, sheet string, style, row, cols int) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}
