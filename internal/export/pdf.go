package export

import (
	"bytes"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/stewythe1st/Stock-Cutting/internal/model"
)

// shapeColor represents an RGB fill for a placed shape.
type shapeColor struct {
	R, G, B int
}

var shapeColors = []shapeColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
	{R: 96, G: 125, B: 139}, // slate
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 30.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	qrSize       = 45.0
	qrPixels     = 256
)

// ExportReport writes a PDF with the best layout drawn to scale, followed by
// a summary page with run statistics, the search parameters and a QR code
// of the summary.
func ExportReport(path string, r model.Result) error {
	if len(r.Best.Layout) == 0 {
		return fmt.Errorf("no layout to export")
	}
	if len(r.Best.Layout) != len(r.Problem.Shapes) {
		return fmt.Errorf("layout has %d placements for %d shapes", len(r.Best.Layout), len(r.Problem.Shapes))
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderLayoutPage(pdf, r)

	pdf.AddPage()
	if err := renderSummaryPage(pdf, r); err != nil {
		return err
	}

	return pdf.OutputFileAndClose(path)
}

// renderLayoutPage draws the sheet and every placed cell.
func renderLayoutPage(pdf *fpdf.Fpdf, r model.Result) {
	p := &r.Problem
	occ := p.Occupy(r.Best.Layout)
	length := max(occ.Length, 1)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Best Layout: %s (width %d, length %d)", p.Name, p.SheetWidth, occ.Length)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Shapes: %d | Cells: %d | Overlap: %d | Fitness: %d | Efficiency: %.1f%%",
		len(p.Shapes), p.TotalArea(), occ.Overlap, r.Best.Fitness, r.Efficiency())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight
	scale := math.Min(drawWidth/float64(length), drawHeight/float64(p.SheetWidth))
	canvasW := float64(length) * scale
	canvasH := float64(p.SheetWidth) * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Stock background
	pdf.SetFillColor(235, 235, 235)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.4)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	pdf.SetLineWidth(0.1)
	pdf.SetDrawColor(40, 40, 40)
	for cell, owners := range occ.Owners {
		if len(owners) > 1 {
			pdf.SetFillColor(220, 30, 30)
		} else {
			col := shapeColors[owners[0]%len(shapeColors)]
			pdf.SetFillColor(col.R, col.G, col.B)
		}
		pdf.Rect(offsetX+float64(cell.X)*scale, offsetY+float64(cell.Y)*scale, scale, scale, "FD")
	}

	// Symbols at each shape's placement corner when cells are big enough
	if scale >= 3 {
		pdf.SetFont("Helvetica", "B", math.Min(scale*2, 9))
		pdf.SetTextColor(0, 0, 0)
		for i, pl := range r.Best.Layout {
			o := p.Shapes[i].Orientation(pl.Rotation)
			c := o.Cells[0]
			pdf.SetXY(offsetX+float64(pl.X+c.X)*scale, offsetY+float64(pl.Y+c.Y)*scale)
			pdf.CellFormat(scale, scale, string(ShapeSymbol(i)), "", 0, "C", false, 0, "")
		}
	}

	drawShapesLegend(pdf, r, offsetY+canvasH+6)
}

// drawShapesLegend renders a compact legend of shapes below the layout.
func drawShapesLegend(pdf *fpdf.Fpdf, r model.Result, startY float64) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Shapes:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight
	maxY := pageHeight - marginBottom - 5

	for i, pl := range r.Best.Layout {
		col := shapeColors[i%len(shapeColors)]
		label := fmt.Sprintf("%c %s @ (%d,%d) r%d", ShapeSymbol(i), r.Problem.Shapes[i].Label, pl.X, pl.Y, pl.Rotation)
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}
		if startY > maxY {
			pdf.SetXY(xPos, startY-5)
			pdf.CellFormat(10, 4, "...", "", 0, "L", false, 0, "")
			return
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")
		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")
		xPos += labelW + 2
	}
}

// renderSummaryPage draws the overall statistics, the per-run table and the
// search parameters.
func renderSummaryPage(pdf *fpdf.Fpdf, r model.Result) error {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Nesting Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	png, err := summaryQR(NewReportSummary(r), qrPixels)
	if err != nil {
		return err
	}
	imgName := "qr_summary_" + r.ID
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	pdf.ImageOptions(imgName, pageWidth-marginRight-qrSize, marginTop+16, qrSize, qrSize, false,
		fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	y := marginTop + 18
	y = renderItems(pdf, "Overall Statistics", y, []summaryItem{
		{"Run ID", r.ID},
		{"Seed", fmt.Sprintf("%d", r.Seed)},
		{"Sheet Width", fmt.Sprintf("%d", r.Problem.SheetWidth)},
		{"Shapes", fmt.Sprintf("%d (%d cells)", len(r.Problem.Shapes), r.Problem.TotalArea())},
		{"Best Fitness", fmt.Sprintf("%d", r.Best.Fitness)},
		{"Used Length", fmt.Sprintf("%d", r.Best.Length)},
		{"Overlapping Cells", fmt.Sprintf("%d", r.Best.Overlap)},
		{"Efficiency", fmt.Sprintf("%.1f%%", r.Efficiency())},
	})

	y += 5
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Run Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{20, 30, 30, 35, 35, 30, 30}
	headers := []string{"Run", "Generations", "Evals", "Stopped", "Best Fitness", "Length", "Overlap"}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, run := range r.Runs {
		if y > pageHeight-marginBottom-40 {
			break
		}
		row := []string{
			fmt.Sprintf("%d", run.Run),
			fmt.Sprintf("%d", run.Generations),
			fmt.Sprintf("%d", run.Evals),
			run.Terminated,
			fmt.Sprintf("%d", run.Best.Fitness),
			fmt.Sprintf("%d", run.Best.Length),
			fmt.Sprintf("%d", run.Best.Overlap),
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		xPos = marginLeft
		for j, cell := range row {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	cfg := r.Config
	renderItems(pdf, "Search Parameters", y+8, []summaryItem{
		{"Mu / Lambda", fmt.Sprintf("%d / %d", cfg.Mu, cfg.Lambda)},
		{"Parent Selection", string(cfg.ParentSelection)},
		{"Recombination", string(cfg.Recombination)},
		{"Mutation", fmt.Sprintf("%s (rate %.4f)", cfg.Mutation, cfg.MutationRate)},
		{"Survivor Selection", string(cfg.SurvivorSelection)},
		{"Termination", string(cfg.Termination)},
	})

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by stockcut", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	return nil
}

type summaryItem struct {
	label string
	value string
}

// renderItems draws a titled list of label/value pairs and returns the next y.
func renderItems(pdf *fpdf.Fpdf, title string, y float64, items []summaryItem) float64 {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, title, "", 0, "L", false, 0, "")
	y += 9

	for _, item := range items {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(90, 6, item.value, "", 0, "L", false, 0, "")
		y += 7
	}
	return y
}
