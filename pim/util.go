// Package pim models an HBM stack with processing-in-memory units. It plays
// the role of the cycle-level memory engine that kernels are driven against.
package pim

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
)

// LevelTrace is the level of per-transaction and per-phase records. It sits
// below Debug so the default handler drops them.
const LevelTrace slog.Level = slog.LevelDebug - 4

// Trace logs a record at LevelTrace on the default logger.
func Trace(msg string, args ...any) {
	ctx := context.Background()
	if !slog.Default().Enabled(ctx, LevelTrace) {
		return
	}

	slog.Log(ctx, LevelTrace, msg, args...)
}

// RenderStats formats the device counters as a table.
func RenderStats(s Stats) string {
	t := table.NewWriter()
	t.SetTitle("Memory System Statistics")
	t.AppendHeader(table.Row{"Counter", "Value"})

	t.AppendRow(table.Row{"Cycles", s.Cycles})
	t.AppendRow(table.Row{"Row hits", s.RowHits})
	t.AppendRow(table.Row{"Row misses", s.RowMisses})
	t.AppendRow(table.Row{"Bytes read", s.BytesRead})
	t.AppendRow(table.Row{"Bytes written", s.BytesWritten})
	t.AppendRow(table.Row{"PIM lane ops", s.PIMOps})
	t.AppendSeparator()

	kinds := make([]string, 0, len(s.Transactions))
	for k := range s.Transactions {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	for _, k := range kinds {
		t.AppendRow(table.Row{fmt.Sprintf("%s transactions", k), s.Transactions[k]})
	}

	return t.Render()
}
