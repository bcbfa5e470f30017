// StockCut nests irregular shapes on a fixed-width stock sheet with a
// (mu + lambda) evolutionary search.
//
// Build:
//   go build -o stockcut ./cmd/stockcut
//
// Usage:
//   stockcut init-config stockcut.yaml
//   stockcut run shapes.txt --config stockcut.yaml
//   stockcut validate shapes.txt

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		slog.Error("stockcut failed", "error", err)
		os.Exit(1)
	}
}
