package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-sc2-metrics/internal/model"
	"github.com/pable/go-sc2-metrics/internal/pipeline"
)

// TableFile describes one output table after a run.
type TableFile struct {
	Name string
	Size uint64
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// winnerLabel renders the player whose engagement rows were written.
func winnerLabel(w int) string {
	if w == 0 {
		return "—"
	}
	return "P" + strconv.Itoa(w)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// PrintRunSummary prints the per-match table of an extract run followed by
// totals, skips and failures.
func PrintRunSummary(w io.Writer, sum pipeline.Summary, tables []TableFile, elapsed time.Duration) {
	if len(sum.Matches) > 0 {
		table := newTable(w)
		table.Header("REPLAY", "MAP", "COUNTER", "COMBAT", "ACTIONS", "RESOURCES", "WINNER")
		for _, m := range sum.Matches {
			table.Append(
				m.Name,
				m.MapName,
				strconv.Itoa(m.CounterStart),
				strconv.Itoa(m.CombatRows),
				strconv.Itoa(m.ActionRows),
				strconv.Itoa(m.ResourceRows),
				winnerLabel(m.CombatWinner),
			)
		}
		table.Render()
	}

	c, a, r := sum.Rows()
	fmt.Fprintf(w, "\nExtracted %d replay(s) in %s: %s combat, %s action, %s resource rows.\n",
		len(sum.Matches), elapsed.Round(time.Millisecond),
		humanize.Comma(int64(c)), humanize.Comma(int64(a)), humanize.Comma(int64(r)))
	fmt.Fprintf(w, "Next counter: %d\n", sum.NextCounter)

	for _, t := range tables {
		fmt.Fprintf(w, "  %-24s %s\n", t.Name, humanize.Bytes(t.Size))
	}
	if n := len(sum.Skipped); n > 0 {
		fmt.Fprintf(w, "Skipped %d already-extracted replay(s).\n", n)
	}
	if n := len(sum.Failures); n > 0 {
		fmt.Fprintf(w, "Failed %d replay(s):\n", n)
		for _, f := range sum.Failures {
			fmt.Fprintf(w, "  %s: %v\n", f.Path, f.Err)
		}
	}
}

// PrintReplayTable prints one line per recorded replay.
func PrintReplayTable(w io.Writer, replays []model.MatchSummary) {
	table := newTable(w)
	table.Header("HASH", "REPLAY", "MAP", "PROCESSED", "COUNTER", "COMBAT", "ACTIONS", "RESOURCES", "WINNER")
	for _, m := range replays {
		table.Append(
			shortHash(m.Hash),
			m.Name,
			m.MapName,
			m.ProcessedAt,
			strconv.Itoa(m.CounterStart),
			strconv.Itoa(m.CombatRows),
			strconv.Itoa(m.ActionRows),
			strconv.Itoa(m.ResourceRows),
			winnerLabel(m.CombatWinner),
		)
	}
	table.Render()
}

// PrintReplay prints the ledger entry of a single replay.
func PrintReplay(w io.Writer, m model.MatchSummary, now time.Time) {
	processed := m.ProcessedAt
	if t, err := time.Parse(time.RFC3339, m.ProcessedAt); err == nil {
		processed = fmt.Sprintf("%s (%s)", m.ProcessedAt, humanize.RelTime(t, now, "ago", "from now"))
	}
	fmt.Fprintf(w, "\nReplay: %s  |  Map: %s  |  Hash: %s\n", m.Name, m.MapName, shortHash(m.Hash))
	fmt.Fprintf(w, "Processed: %s\n", processed)
	fmt.Fprintf(w, "Counter: %d\n\n", m.CounterStart)

	table := newTable(w)
	table.Header("TABLE", "ROWS")
	table.Append("combat", humanize.Comma(int64(m.CombatRows)))
	table.Append("actions", humanize.Comma(int64(m.ActionRows)))
	table.Append("resources", humanize.Comma(int64(m.ResourceRows)))
	table.Render()
	fmt.Fprintf(w, "Engagement rows written for: %s\n", winnerLabel(m.CombatWinner))
}

// PrintQueryResult prints the result of a raw SQL query.
func PrintQueryResult(w io.Writer, cols []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	table := newTable(w)

	colsAny := make([]any, len(cols))
	for i, c := range cols {
		colsAny[i] = c
	}
	table.Header(colsAny...)

	for _, row := range rows {
		rowAny := make([]any, len(row))
		for i, v := range row {
			rowAny[i] = v
		}
		table.Append(rowAny...)
	}
	table.Render()
	fmt.Fprintf(w, "\n(%d rows)\n", len(rows))
}
