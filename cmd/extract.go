package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-sc2-metrics/internal/config"
	"github.com/pable/go-sc2-metrics/internal/output"
	"github.com/pable/go-sc2-metrics/internal/parser"
	"github.com/pable/go-sc2-metrics/internal/pipeline"
	"github.com/pable/go-sc2-metrics/internal/report"
	"github.com/pable/go-sc2-metrics/internal/timeline"
)

var (
	extractCombat    bool
	extractActions   bool
	extractResources bool
	extractCounter   int
	extractStep      int
	extractWorkers   int
	extractOut       string
	extractLabel     string
	extractForce     bool
)

var (
	cOK   = color.New(color.FgGreen, color.Bold)
	cFail = color.New(color.FgRed, color.Bold)
)

var extractCmd = &cobra.Command{
	Use:   "extract [pattern]",
	Short: "Extract combat, command and resource tables from replays",
	Long: `Extract every replay matching the glob pattern (default from config, "*.SC2Replay")
and append its rows to ArmiesRepository.csv, CommandRepository.csv and
ResourceRepository.csv in the output directory.

Each match gets two counters, one per player. Counters continue from the
ledger unless --counter is given. Replays already in the ledger are skipped
unless --force is given.

Select passes with --combat, --actions and --resources; with none of them
set, every pass enabled in config runs.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	f := extractCmd.Flags()
	f.BoolVar(&extractCombat, "combat", false, "run the combat pass")
	f.BoolVar(&extractActions, "actions", false, "run the command timeline pass")
	f.BoolVar(&extractResources, "resources", false, "run the resources pass")
	f.IntVar(&extractCounter, "counter", config.DefaultCounterStart, "counter for player 1 of the first match")
	f.IntVar(&extractStep, "step", config.DefaultCounterStep, "counter offset between the two players of a match")
	f.IntVar(&extractWorkers, "workers", config.DefaultWorkers, "replays decoded concurrently")
	f.StringVarP(&extractOut, "out", "o", config.DefaultOutputDir, "output directory")
	f.StringVar(&extractLabel, "label", "", "label line written to each table before this run")
	f.BoolVarP(&extractForce, "force", "f", false, "re-extract replays already in the ledger")
}

// applyExtractFlags overrides config values with flags the user set.
func applyExtractFlags(cmd *cobra.Command, c *config.Config, args []string) {
	flags := cmd.Flags()
	if len(args) == 1 {
		c.Input.Pattern = args[0]
	}
	if flags.Changed("combat") || flags.Changed("actions") || flags.Changed("resources") {
		c.Passes = config.PassesConfig{Combat: extractCombat, Actions: extractActions, Resources: extractResources}
	}
	if flags.Changed("counter") {
		c.Counter.Start = extractCounter
		c.Counter.Resume = false
	}
	if flags.Changed("step") {
		c.Counter.Step = extractStep
	}
	if flags.Changed("workers") {
		c.Workers = extractWorkers
	}
	if flags.Changed("out") {
		c.Output.Dir = extractOut
	}
	if flags.Changed("label") {
		c.Output.Label = extractLabel
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	c := *cfg
	applyExtractFlags(cmd, &c, args)
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	files, err := filepath.Glob(c.Input.Pattern)
	if err != nil {
		return fmt.Errorf("glob %q: %w", c.Input.Pattern, err)
	}
	sort.Strings(files)
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "No replays match %q.\n", c.Input.Pattern)
		return nil
	}

	db, err := openLedger()
	if err != nil {
		return err
	}
	defer db.Close()

	start := c.Counter.Start
	if c.Counter.Resume {
		if start, err = db.NextCounter(c.Counter.Start); err != nil {
			return fmt.Errorf("resume counter: %w", err)
		}
	}

	var (
		sinks  pipeline.Sinks
		tables []*output.Table
		paths  []string
	)
	open := func(enabled bool, name string, sink *pipeline.Appender) error {
		if !enabled {
			return nil
		}
		path := filepath.Join(c.Output.Dir, name)
		t, err := output.OpenTable(path)
		if err != nil {
			return err
		}
		if c.Output.Label != "" {
			if err := t.Label(c.Output.Label); err != nil {
				t.Close()
				return err
			}
		}
		tables = append(tables, t)
		paths = append(paths, path)
		*sink = t
		return nil
	}
	defer func() {
		for _, t := range tables {
			t.Close()
		}
	}()
	if err := open(c.Passes.Combat, output.CombatFile, &sinks.Combat); err != nil {
		return err
	}
	if err := open(c.Passes.Actions, output.ActionsFile, &sinks.Actions); err != nil {
		return err
	}
	if err := open(c.Passes.Resources, output.ResourceFile, &sinks.Resources); err != nil {
		return err
	}

	catalog := timeline.DefaultCatalog().Override(c.Actions.Workers, c.Actions.Economy, c.Actions.Army, c.Actions.Tech)
	catalog.WithOther = c.Actions.IncludeOther

	opts := pipeline.Options{
		CounterStart: start,
		CounterStep:  c.Counter.Step,
		Workers:      c.Workers,
		Engagement:   c.Combat.Engagement,
		Catalog:      catalog,
		Force:        extractForce,
	}

	fmt.Fprintf(os.Stderr, "Extracting %d replay(s) from %q, counter %d...\n", len(files), c.Input.Pattern, start)
	began := time.Now()
	runner := pipeline.NewRunner(opts, parser.Decoder{}, sinks, db, slog.Default())
	sum, runErr := runner.Run(cmd.Context(), files)

	var sizes []report.TableFile
	for _, p := range paths {
		if fi, err := os.Stat(p); err == nil {
			sizes = append(sizes, report.TableFile{Name: filepath.Base(p), Size: uint64(fi.Size())})
		}
	}
	report.PrintRunSummary(os.Stdout, sum, sizes, time.Since(began))

	if runErr != nil {
		return fmt.Errorf("extract: %w", runErr)
	}
	if len(sum.Failures) > 0 {
		cFail.Fprintf(os.Stderr, "%d of %d replay(s) failed.\n", len(sum.Failures), len(files))
		return nil
	}
	cOK.Fprintln(os.Stderr, "Done.")
	return nil
}
