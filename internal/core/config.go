// Package core - Config provides the engine-wide tunables that are not part
// of any single project (leveling search horizon, default calendar hours,
// whether recalculation auto-reruns after leveling, EVM rounding). Values
// come from EngineConfig's envDefault struct tags, overridable via environment
// variables using the same caarlos0/env convention the rest of the module
// uses for process configuration.
package core

import (
	"github.com/caarlos0/env/v6"
)

// EngineConfig holds environment-overridable defaults for the engine. It is
// not persisted as part of a ProjectState; it configures how the engine
// behaves, not what it schedules.
type EngineConfig struct {
	// LevelingHorizonDays bounds how far past a candidate's original start
	// the resource leveler will search for a feasible slot before giving up
	// and recording a diagnostic instead of moving the task.
	LevelingHorizonDays int `env:"SCHED_LEVELING_HORIZON_DAYS" envDefault:"730" yaml:"levelingHorizonDays"`

	// DefaultHoursPerDay is used by calendars that do not specify their own.
	DefaultHoursPerDay float64 `env:"SCHED_DEFAULT_HOURS_PER_DAY" envDefault:"8" yaml:"defaultHoursPerDay"`

	// AutoRecalculateAfterLeveling, when true, makes levelResources re-run
	// the CPM solver before returning so slack and critical-path fields
	// reflect the leveled dates.
	AutoRecalculateAfterLeveling bool `env:"SCHED_AUTO_RECALC_AFTER_LEVEL" envDefault:"false" yaml:"autoRecalculateAfterLeveling"`

	// EVMRoundingDecimals is loaded and validated with the rest of the
	// config, but no code reads it: internal/evm returns full-precision
	// values and the CLI prints them with fixed precision.
	EVMRoundingDecimals int `env:"SCHED_EVM_ROUNDING_DECIMALS" envDefault:"4" yaml:"evmRoundingDecimals"`
}

// DefaultEngineConfig returns an EngineConfig populated with its struct-tag
// defaults, ignoring the environment. Use LoadEngineConfig to apply
// environment overrides.
func DefaultEngineConfig() EngineConfig {
	cfg := EngineConfig{}
	// Parsing against an empty environment applies only the envDefault
	// tags, so process variables cannot leak into the defaults.
	_ = env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}})
	return cfg
}

// LoadEngineConfig parses EngineConfig from the environment, applying
// envDefault tags for anything unset.
func LoadEngineConfig() (EngineConfig, error) {
	cfg := EngineConfig{}
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
