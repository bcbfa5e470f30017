package export

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/stewythe1st/Stock-Cutting/internal/model"
)

const logTitle = "Result Log"

// GenerationLog writes the tab separated result log as generations finish:
// a title line, a "Run N" header before each run, then one
// "evals<TAB>average<TAB>best" line per generation.
type GenerationLog struct {
	w       io.Writer
	run     int
	started bool
	err     error

	buf  *bufio.Writer
	file *os.File
}

// NewGenerationLog returns a log writing to w.
func NewGenerationLog(w io.Writer) *GenerationLog {
	return &GenerationLog{w: w}
}

// CreateGenerationLog creates path, and its directory, and returns a log
// writing to it. Close must be called to flush the file.
func CreateGenerationLog(path string) (*GenerationLog, error) {
	f, err := createFile(path)
	if err != nil {
		return nil, err
	}
	buf := bufio.NewWriter(f)
	return &GenerationLog{w: buf, buf: buf, file: f}, nil
}

// Observe appends one generation. It matches the engine's OnGeneration hook;
// the first write error is kept and later calls do nothing.
func (g *GenerationLog) Observe(gs model.GenerationStats) {
	if g.err != nil {
		return
	}
	if !g.started {
		g.started = true
		if _, g.err = fmt.Fprintln(g.w, logTitle); g.err != nil {
			return
		}
	}
	if gs.Run != g.run {
		g.run = gs.Run
		if _, g.err = fmt.Fprintf(g.w, "\nRun %d\n", gs.Run); g.err != nil {
			return
		}
	}
	_, g.err = fmt.Fprintf(g.w, "%d\t%.3f\t%d\n", gs.Evals, gs.AverageFitness, gs.BestFitness)
}

// Err returns the first write error.
func (g *GenerationLog) Err() error {
	if g.err != nil {
		return fmt.Errorf("failed to write generation log: %w", g.err)
	}
	return nil
}

// Close flushes and closes a log made by CreateGenerationLog and returns the
// first error seen. For a log made by NewGenerationLog it only returns Err.
func (g *GenerationLog) Close() error {
	if g.file == nil {
		return g.Err()
	}
	if g.err == nil {
		g.err = g.buf.Flush()
	}
	if err := g.file.Close(); err != nil && g.err == nil {
		g.err = err
	}
	g.file = nil
	return g.Err()
}

// WriteGenerationLog writes the complete log for a finished result.
func WriteGenerationLog(w io.Writer, r model.Result) error {
	g := NewGenerationLog(w)
	for _, gs := range r.Generations {
		g.Observe(gs)
	}
	return g.Err()
}
