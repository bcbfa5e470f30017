package export

import (
	"fmt"
	"image/color"

	"github.com/stewythe1st/Stock-Cutting/internal/model"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ExportChart plots average and best fitness against evaluations for every
// run and saves the chart. The image format follows the file extension.
func ExportChart(path string, r model.Result) error {
	if len(r.Generations) == 0 {
		return fmt.Errorf("no generations to plot")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Fitness: %s", r.Problem.Name)
	p.X.Label.Text = "Evaluations"
	p.Y.Label.Text = "Fitness"
	p.Add(plotter.NewGrid())

	for i, series := range splitRuns(r.Generations) {
		bestPts := make(plotter.XYs, len(series))
		avgPts := make(plotter.XYs, len(series))
		for j, gs := range series {
			bestPts[j].X = float64(gs.Evals)
			bestPts[j].Y = float64(gs.BestFitness)
			avgPts[j].X = float64(gs.Evals)
			avgPts[j].Y = gs.AverageFitness
		}

		bestLine, err := plotter.NewLine(bestPts)
		if err != nil {
			return fmt.Errorf("failed to plot best fitness: %w", err)
		}
		avgLine, err := plotter.NewLine(avgPts)
		if err != nil {
			return fmt.Errorf("failed to plot average fitness: %w", err)
		}

		col := shapeColors[i%len(shapeColors)]
		c := color.RGBA{R: uint8(col.R), G: uint8(col.G), B: uint8(col.B), A: 255}
		bestLine.Color = c
		avgLine.Color = c
		avgLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

		p.Add(bestLine, avgLine)
		run := series[0].Run
		p.Legend.Add(fmt.Sprintf("run %d best", run), bestLine)
		p.Legend.Add(fmt.Sprintf("run %d avg", run), avgLine)
	}

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}
	return nil
}

// splitRuns groups consecutive statistics by run.
func splitRuns(stats []model.GenerationStats) [][]model.GenerationStats {
	var out [][]model.GenerationStats
	for i, gs := range stats {
		if i == 0 || gs.Run != stats[i-1].Run {
			out = append(out, nil)
		}
		out[len(out)-1] = append(out[len(out)-1], gs)
	}
	return out
}
