package export

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/stewythe1st/Stock-Cutting/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// ReportSummary holds the data encoded into the report's QR code.
type ReportSummary struct {
	ID         string  `json:"id"`
	Problem    string  `json:"problem"`
	SheetWidth int     `json:"width"`
	Shapes     int     `json:"shapes"`
	Seed       int64   `json:"seed"`
	Fitness    int     `json:"fitness"`
	Length     int     `json:"length"`
	Overlap    int     `json:"overlap"`
	Efficiency float64 `json:"efficiency"`
}

// NewReportSummary extracts the QR summary from a result.
func NewReportSummary(r model.Result) ReportSummary {
	return ReportSummary{
		ID:         r.ID,
		Problem:    r.Problem.Name,
		SheetWidth: r.Problem.SheetWidth,
		Shapes:     len(r.Problem.Shapes),
		Seed:       r.Seed,
		Fitness:    r.Best.Fitness,
		Length:     r.Best.Length,
		Overlap:    r.Best.Overlap,
		Efficiency: math.Round(r.Efficiency()*10) / 10,
	}
}

// summaryQR renders s as JSON inside a PNG QR code of size pixels.
func summaryQR(s ReportSummary, size int) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report summary: %w", err)
	}
	png, err := qrcode.Encode(string(data), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return png, nil
}
