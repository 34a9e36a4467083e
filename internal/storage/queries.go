package storage

import (
	"database/sql"
	"fmt"

	"github.com/pable/go-sc2-metrics/internal/model"
)

// ReplayExists returns true if a replay with the given hash is already recorded.
func (db *DB) ReplayExists(hash string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM replays WHERE hash = ?", hash).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertReplay records a processed replay. Uses INSERT OR REPLACE so a forced
// re-extraction updates the entry.
func (db *DB) InsertReplay(s model.MatchSummary) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO replays(hash, name, map_name, processed_at, counter_start,
			counter_step, combat_rows, action_rows, resource_rows, combat_winner)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Hash, s.Name, s.MapName, s.ProcessedAt, s.CounterStart, counterStep(s.CounterStep),
		s.CombatRows, s.ActionRows, s.ResourceRows, s.CombatWinner,
	)
	if err != nil {
		return fmt.Errorf("insert replay %s: %w", s.Name, err)
	}
	return nil
}

const replayColumns = `hash, name, map_name, processed_at, counter_start,
	counter_step, combat_rows, action_rows, resource_rows, combat_winner`

// counterStep maps an unset step to the default of 1.
func counterStep(step int) int {
	if step < 1 {
		return 1
	}
	return step
}

func scanReplay(row interface{ Scan(...any) error }) (model.MatchSummary, error) {
	var s model.MatchSummary
	err := row.Scan(&s.Hash, &s.Name, &s.MapName, &s.ProcessedAt, &s.CounterStart,
		&s.CounterStep, &s.CombatRows, &s.ActionRows, &s.ResourceRows, &s.CombatWinner)
	return s, err
}

// ListReplays returns all recorded replays in processing order.
func (db *DB) ListReplays() ([]model.MatchSummary, error) {
	rows, err := db.conn.Query(`SELECT ` + replayColumns + ` FROM replays ORDER BY processed_at, counter_start`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MatchSummary
	for rows.Next() {
		s, err := scanReplay(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetReplayByPrefix finds the first replay whose hash starts with the given prefix.
func (db *DB) GetReplayByPrefix(prefix string) (*model.MatchSummary, error) {
	row := db.conn.QueryRow(`SELECT `+replayColumns+` FROM replays WHERE hash LIKE ? LIMIT 1`, prefix+"%")
	s, err := scanReplay(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// NextCounter returns the first counter past every counter already handed
// out, or start when the ledger is empty. Each replay consumed counter_start
// and counter_start+counter_step, with the step of the run that wrote it.
func (db *DB) NextCounter(start int) (int, error) {
	var next sql.NullInt64
	if err := db.conn.QueryRow(`SELECT MAX(counter_start + 2*counter_step) FROM replays`).Scan(&next); err != nil {
		return 0, err
	}
	if !next.Valid {
		return start, nil
	}
	return int(next.Int64), nil
}

// QueryRaw runs an arbitrary query and returns column names and stringified rows.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(x)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}
