// Package pipeline drives extraction over a batch of replay files: decode,
// classify, run the enabled passes and append each match to the output tables.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pable/go-sc2-metrics/internal/classify"
	"github.com/pable/go-sc2-metrics/internal/combat"
	"github.com/pable/go-sc2-metrics/internal/config"
	"github.com/pable/go-sc2-metrics/internal/model"
	"github.com/pable/go-sc2-metrics/internal/output"
	"github.com/pable/go-sc2-metrics/internal/resources"
	"github.com/pable/go-sc2-metrics/internal/timeline"
)

// The two players of a 1v1 match.
const (
	player1 = 1
	player2 = 2
)

// Decoder hashes and decodes replay files.
type Decoder interface {
	Hash(path string) (string, error)
	Decode(path string) (*model.Replay, error)
}

// Appender receives whole per-match blocks. Size and Truncate let a match
// that fails after some of its blocks were appended be rolled back.
type Appender interface {
	Append(b *output.Block) error
	Size() (int64, error)
	Truncate(size int64) error
}

// Ledger records processed replays.
type Ledger interface {
	ReplayExists(hash string) (bool, error)
	InsertReplay(s model.MatchSummary) error
}

// Sinks are the output tables; a nil sink disables its pass.
type Sinks struct {
	Combat    Appender
	Actions   Appender
	Resources Appender
}

// Options control a run.
type Options struct {
	CounterStart int
	CounterStep  int
	Workers      int
	Engagement   string
	Catalog      timeline.Catalog
	Force        bool // re-extract replays already in the ledger
}

// Failure is a replay that could not be extracted.
type Failure struct {
	Path string
	Err  error
}

// Summary reports the outcome of a run.
type Summary struct {
	Matches     []model.MatchSummary
	Skipped     []string
	Failures    []Failure
	NextCounter int
}

// Rows returns the total rows written per table.
func (s Summary) Rows() (combatRows, actionRows, resourceRows int) {
	for _, m := range s.Matches {
		combatRows += m.CombatRows
		actionRows += m.ActionRows
		resourceRows += m.ResourceRows
	}
	return
}

// Runner executes extraction runs.
type Runner struct {
	opts   Options
	dec    Decoder
	sinks  Sinks
	ledger Ledger // may be nil
	log    *slog.Logger
	now    func() time.Time
}

// NewRunner builds a Runner. ledger may be nil to disable idempotency checks.
func NewRunner(opts Options, dec Decoder, sinks Sinks, ledger Ledger, log *slog.Logger) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.CounterStep < 1 {
		opts.CounterStep = config.DefaultCounterStep
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{opts: opts, dec: dec, sinks: sinks, ledger: ledger, log: log, now: time.Now}
}

type decoded struct {
	path    string
	hash    string
	replay  *model.Replay
	skipped bool
	err     error
}

// Run processes files in order. Up to Workers replays are decoded
// concurrently; analysis and appends happen on the calling goroutine in input
// order, so the tables are identical for any worker count. A failing replay
// is reported in the Summary and does not stop the run. The returned error is
// non-nil only when ctx is cancelled; Run still waits for in-flight decodes
// before returning.
func (r *Runner) Run(ctx context.Context, files []string) (Summary, error) {
	sum := Summary{NextCounter: r.opts.CounterStart}

	slots := make([]chan decoded, len(files))
	for i := range slots {
		slots[i] = make(chan decoded, 1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	launched := make(chan struct{})
	go func() {
		defer close(launched)
		for i, path := range files {
			if gctx.Err() != nil {
				return
			}
			g.Go(func() error {
				slots[i] <- r.decode(gctx, path)
				return nil
			})
		}
	}()
	// wait returns once every started decode has finished.
	wait := func() error {
		<-launched
		return g.Wait()
	}

	counter := r.opts.CounterStart
	seen := make(map[string]bool)
	for i, path := range files {
		var d decoded
		select {
		case d = <-slots[i]:
		case <-ctx.Done():
			sum.NextCounter = counter
			_ = wait()
			return sum, ctx.Err()
		}

		switch {
		case d.err != nil:
			r.log.Warn("replay failed", "replay", path, "err", d.err)
			sum.Failures = append(sum.Failures, Failure{Path: path, Err: d.err})
			continue
		case d.skipped || seen[d.hash]:
			r.log.Info("replay already extracted, skipping", "replay", path)
			sum.Skipped = append(sum.Skipped, path)
			continue
		}
		seen[d.hash] = true

		m, err := r.process(d.replay, counter)
		if err != nil {
			r.log.Warn("replay failed", "replay", path, "err", err)
			sum.Failures = append(sum.Failures, Failure{Path: path, Err: err})
			continue
		}
		r.log.Info("replay extracted", "replay", m.Name, "counter", counter,
			"combat_rows", m.CombatRows, "action_rows", m.ActionRows, "resource_rows", m.ResourceRows)
		sum.Matches = append(sum.Matches, m)
		counter += 2 * r.opts.CounterStep
	}
	sum.NextCounter = counter

	if err := wait(); err != nil {
		return sum, err
	}
	return sum, ctx.Err()
}

func (r *Runner) decode(ctx context.Context, path string) decoded {
	if err := ctx.Err(); err != nil {
		return decoded{path: path, err: err}
	}
	hash, err := r.dec.Hash(path)
	if err != nil {
		return decoded{path: path, err: err}
	}
	if r.ledger != nil && !r.opts.Force {
		exists, err := r.ledger.ReplayExists(hash)
		if err != nil {
			return decoded{path: path, err: fmt.Errorf("check ledger: %w", err)}
		}
		if exists {
			return decoded{path: path, hash: hash, skipped: true}
		}
	}
	rp, err := r.dec.Decode(path)
	if err != nil {
		return decoded{path: path, err: err}
	}
	r.log.Debug("replay decoded", "replay", path, "events", len(rp.Events))
	return decoded{path: path, hash: hash, replay: rp}
}

// staged is a sink together with its size before the current match was appended.
type staged struct {
	sink Appender
	size int64
}

// rollback truncates every staged sink back to its size before the match, so a
// failed match leaves no rows in any table. Rollback errors are joined to err.
func (r *Runner) rollback(appended []staged, err error) error {
	for _, st := range appended {
		if terr := st.sink.Truncate(st.size); terr != nil {
			err = errors.Join(err, fmt.Errorf("roll back: %w", terr))
		}
	}
	return err
}

// process runs the enabled passes for one match. Every block is built before
// anything is appended, and a failed append or ledger insert rolls back the
// blocks already appended, so the tables only ever hold whole matches.
func (r *Runner) process(rp *model.Replay, counter int) (model.MatchSummary, error) {
	g := classify.Classify(rp.Events)
	c1, c2 := counter, counter+r.opts.CounterStep

	m := model.MatchSummary{
		Hash:         rp.Info.Hash,
		Name:         rp.Info.Name,
		MapName:      rp.Info.MapName,
		ProcessedAt:  r.now().UTC().Format(time.RFC3339),
		CounterStart: counter,
		CounterStep:  r.opts.CounterStep,
	}

	var combatBlock, actionBlock, resourceBlock *output.Block

	if r.sinks.Combat != nil {
		combatBlock = output.NewBlock(rp.Info.Name)
		combatBlock.Combat(combat.InitialState(g, player1, c1))
		combatBlock.Combat(combat.InitialState(g, player2, c2))
		combatBlock.Marker(output.EndMarker)

		e1 := combat.Engagement(g, player1, player2, c1)
		e2 := combat.Engagement(g, player2, player1, c2)
		if r.opts.Engagement == config.EngagementLast {
			e1, e2 = combat.LastPositions(e1), combat.LastPositions(e2)
		}
		chosen, winner := combat.SelectWinner(e1, e2)
		combatBlock.Combat(chosen)
		m.CombatRows = combatBlock.Rows()
		m.CombatWinner = winner
	}

	if r.sinks.Actions != nil {
		actionBlock = output.NewBlock(rp.Info.Name)
		actionBlock.Actions(timeline.Build(g, player1, c1, r.opts.Catalog))
		actionBlock.Actions(timeline.Build(g, player2, c2, r.opts.Catalog))
		m.ActionRows = actionBlock.Rows()
	}

	if r.sinks.Resources != nil {
		resourceBlock = output.NewBlock(rp.Info.Name)
		resourceBlock.Resources(resources.Build(g, player1, c1))
		resourceBlock.Resources(resources.Build(g, player2, c2))
		m.ResourceRows = resourceBlock.Rows()
	}

	var appended []staged
	for _, w := range []struct {
		sink  Appender
		block *output.Block
	}{
		{r.sinks.Combat, combatBlock},
		{r.sinks.Actions, actionBlock},
		{r.sinks.Resources, resourceBlock},
	} {
		if w.block == nil {
			continue
		}
		size, err := w.sink.Size()
		if err != nil {
			return m, r.rollback(appended, fmt.Errorf("write %s: %w", rp.Info.Name, err))
		}
		appended = append(appended, staged{sink: w.sink, size: size})
		if err := w.sink.Append(w.block); err != nil {
			return m, r.rollback(appended, fmt.Errorf("write %s: %w", rp.Info.Name, err))
		}
	}

	if r.ledger != nil {
		if err := r.ledger.InsertReplay(m); err != nil {
			return m, r.rollback(appended, fmt.Errorf("record %s: %w", rp.Info.Name, err))
		}
	}
	return m, nil
}
