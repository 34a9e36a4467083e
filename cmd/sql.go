package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-sc2-metrics/internal/report"
	"github.com/pable/go-sc2-metrics/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the replay ledger",
	Long: `Run an arbitrary SQL query against the replay ledger and print results as a table.

Schema overview:
  replays(hash, name, map_name, processed_at, counter_start, counter_step,
    combat_rows, action_rows, resource_rows, combat_winner)

counter_start is player 1's counter; player 2 uses counter_start + counter_step.
combat_winner is the player (1 or 2) whose engagement rows were written.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	report.PrintQueryResult(os.Stdout, cols, rows)
	return nil
}
