package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stewythe1st/Stock-Cutting/internal/model"
)

const (
	historyVersion    = "1.0.0"
	defaultMaxHistory = 50
)

// HistoryEntry summarizes one finished invocation.
type HistoryEntry struct {
	ID          string                `json:"id"`
	StartedAt   string                `json:"started_at"`
	FinishedAt  string                `json:"finished_at"`
	Problem     string                `json:"problem"`
	SheetWidth  int                   `json:"sheet_width"`
	Shapes      int                   `json:"shapes"`
	Seed        int64                 `json:"seed"`
	Runs        int                   `json:"runs"`
	BestFitness int                   `json:"best_fitness"`
	Length      int                   `json:"length"`
	Overlap     int                   `json:"overlap"`
	Efficiency  float64               `json:"efficiency"`
	Config      model.EvolutionConfig `json:"config"`
}

// History is the on-disk list of past invocations, oldest first.
type History struct {
	Version string         `json:"version"`
	Entries []HistoryEntry `json:"entries"`
}

// NewHistoryEntry summarizes a result.
func NewHistoryEntry(r model.Result) HistoryEntry {
	return HistoryEntry{
		ID:          r.ID,
		StartedAt:   r.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt:  r.FinishedAt.UTC().Format(time.RFC3339),
		Problem:     r.Problem.Name,
		SheetWidth:  r.Problem.SheetWidth,
		Shapes:      len(r.Problem.Shapes),
		Seed:        r.Seed,
		Runs:        len(r.Runs),
		BestFitness: r.Best.Fitness,
		Length:      r.Best.Length,
		Overlap:     r.Best.Overlap,
		Efficiency:  r.Efficiency(),
		Config:      r.Config,
	}
}

// LoadHistory reads the history file. A missing file yields an empty history.
func LoadHistory(path string) (History, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return History{Version: historyVersion, Entries: []HistoryEntry{}}, nil
		}
		return History{}, fmt.Errorf("failed to read history file: %w", err)
	}
	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return History{}, fmt.Errorf("failed to parse history file: %w", err)
	}
	if h.Version == "" {
		return History{}, fmt.Errorf("invalid history file: missing version field")
	}
	if h.Entries == nil {
		h.Entries = []HistoryEntry{}
	}
	return h, nil
}

// SaveHistory writes h as indented JSON, creating parent directories.
func SaveHistory(path string, h History) error {
	if h.Version == "" {
		h.Version = historyVersion
	}
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	return nil
}

// AppendHistory records r in the history file, keeping only the most recent
// entries.
func AppendHistory(path string, r model.Result) error {
	h, err := LoadHistory(path)
	if err != nil {
		return err
	}
	h.Entries = append(h.Entries, NewHistoryEntry(r))
	if len(h.Entries) > defaultMaxHistory {
		h.Entries = h.Entries[len(h.Entries)-defaultMaxHistory:]
	}
	return SaveHistory(path, h)
}
