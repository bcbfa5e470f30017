package project

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stewythe1st/Stock-Cutting/internal/model"
)

func makeTestResult(t *testing.T, id string, fitness int) model.Result {
	t.Helper()
	s, err := model.ParseShape("bar", "R1")
	if err != nil {
		t.Fatal(err)
	}
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return model.Result{
		ID:         id,
		StartedAt:  start,
		FinishedAt: start.Add(2 * time.Second),
		Seed:       7,
		Problem:    model.NewProblem("bars", 2, []model.Shape{s, s}),
		Config:     model.DefaultEvolutionConfig(),
		Runs:       []model.RunSummary{{Run: 1}},
		Best:       model.Solution{Fitness: fitness, Length: 2},
	}
}

func TestAppendAndLoadHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history", "runs.json")

	if err := AppendHistory(path, makeTestResult(t, "a", 1)); err != nil {
		t.Fatalf("AppendHistory failed: %v", err)
	}
	if err := AppendHistory(path, makeTestResult(t, "b", 2)); err != nil {
		t.Fatalf("AppendHistory failed: %v", err)
	}

	h, err := LoadHistory(path)
	if err != nil {
		t.Fatalf("LoadHistory failed: %v", err)
	}
	if h.Version != historyVersion {
		t.Errorf("expected version %s, got %s", historyVersion, h.Version)
	}
	if len(h.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(h.Entries))
	}
	e := h.Entries[1]
	if e.ID != "b" || e.BestFitness != 2 {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.Shapes != 2 || e.SheetWidth != 2 || e.Runs != 1 {
		t.Errorf("unexpected problem summary: %+v", e)
	}
	if e.StartedAt != "2026-03-01T12:00:00Z" {
		t.Errorf("unexpected start time %s", e.StartedAt)
	}
	// Two 2-cell bars on a 2x2 sheet area
	if e.Efficiency != 100 {
		t.Errorf("expected efficiency 100, got %f", e.Efficiency)
	}
}

func TestAppendHistoryKeepsMostRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.json")
	for i := 0; i < defaultMaxHistory+5; i++ {
		if err := AppendHistory(path, makeTestResult(t, "", i)); err != nil {
			t.Fatalf("AppendHistory failed: %v", err)
		}
	}

	h, err := LoadHistory(path)
	if err != nil {
		t.Fatalf("LoadHistory failed: %v", err)
	}
	if len(h.Entries) != defaultMaxHistory {
		t.Fatalf("expected %d entries, got %d", defaultMaxHistory, len(h.Entries))
	}
	if h.Entries[0].BestFitness != 5 {
		t.Errorf("expected oldest kept entry to be 5, got %d", h.Entries[0].BestFitness)
	}
}

func TestLoadHistoryMissingFile(t *testing.T) {
	h, err := LoadHistory(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadHistory failed: %v", err)
	}
	if h.Entries == nil || len(h.Entries) != 0 {
		t.Errorf("expected empty non-nil entries, got %v", h.Entries)
	}
}

func TestLoadHistoryInvalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json}"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadHistory(bad); err == nil {
		t.Error("expected error for invalid JSON")
	}

	noVersion := filepath.Join(dir, "noversion.json")
	if err := os.WriteFile(noVersion, []byte(`{"entries": []}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadHistory(noVersion); err == nil {
		t.Error("expected error for missing version")
	}
}
