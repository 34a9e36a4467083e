package config

import "errors"

// Config is the top-level configuration for sc2metrics.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Input   InputConfig   `mapstructure:"input"`
	Output  OutputConfig  `mapstructure:"output"`
	Counter CounterConfig `mapstructure:"counter"`
	Workers int           `mapstructure:"workers"`
	Passes  PassesConfig  `mapstructure:"passes"`
	Combat  CombatConfig  `mapstructure:"combat"`
	Actions ActionsConfig `mapstructure:"actions"`
}

// InputConfig selects the replays to process.
type InputConfig struct {
	Pattern string `mapstructure:"pattern"`
}

// OutputConfig controls where the tables are appended.
type OutputConfig struct {
	Dir   string `mapstructure:"dir"`
	Label string `mapstructure:"label"` // optional heading line written once per run
}

// CounterConfig controls the match counter labelling rows per player.
type CounterConfig struct {
	Start  int  `mapstructure:"start"`
	Step   int  `mapstructure:"step"`
	Resume bool `mapstructure:"resume"` // continue after the highest counter in the ledger
}

// PassesConfig enables the individual analysis passes.
type PassesConfig struct {
	Combat    bool `mapstructure:"combat"`
	Actions   bool `mapstructure:"actions"`
	Resources bool `mapstructure:"resources"`
}

// CombatConfig holds combat correlator settings.
type CombatConfig struct {
	Engagement string `mapstructure:"engagement"` // "trajectory" or "last"
}

// ActionsConfig holds action timeline settings. Non-empty lists replace the
// built-in catalog sets.
type ActionsConfig struct {
	IncludeOther bool     `mapstructure:"include_other"`
	Workers      []string `mapstructure:"workers"`
	Economy      []string `mapstructure:"economy"`
	Army         []string `mapstructure:"army"`
	Tech         []string `mapstructure:"tech"`
}

// Engagement modes.
const (
	EngagementTrajectory = "trajectory"
	EngagementLast       = "last"
)

// Defaults.
const (
	DefaultPattern      = "*.SC2Replay"
	DefaultOutputDir    = "."
	DefaultCounterStart = 1
	DefaultCounterStep  = 1
	DefaultWorkers      = 1
	DefaultEngagement   = EngagementTrajectory
)

// Sentinel errors for configuration validation.
var (
	// ErrInvalidCounterStep indicates the counter step is not positive.
	ErrInvalidCounterStep = errors.New("counter.step must be positive")
	// ErrInvalidWorkers indicates the workers value is not positive.
	ErrInvalidWorkers = errors.New("workers must be positive")
	// ErrInvalidEngagement indicates an unknown engagement mode.
	ErrInvalidEngagement = errors.New("combat.engagement must be \"trajectory\" or \"last\"")
	// ErrNoPasses indicates every analysis pass is disabled.
	ErrNoPasses = errors.New("at least one of passes.combat, passes.actions, passes.resources must be enabled")
	// ErrEmptyPattern indicates no input pattern was given.
	ErrEmptyPattern = errors.New("input.pattern must not be empty")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if c.Input.Pattern == "" {
		return ErrEmptyPattern
	}
	if c.Counter.Step <= 0 {
		return ErrInvalidCounterStep
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.Combat.Engagement != EngagementTrajectory && c.Combat.Engagement != EngagementLast {
		return ErrInvalidEngagement
	}
	if !c.Passes.Combat && !c.Passes.Actions && !c.Passes.Resources {
		return ErrNoPasses
	}
	return nil
}
