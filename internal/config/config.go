// Package config provides Viper-based configuration loading for the battle
// simulator.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is where log lines are written: "stderr", "stdout", or a file path.
	Output string `mapstructure:"output"`
}

// BattleConfig holds the unit statistics used when a board is set up.
type BattleConfig struct {
	// HitPoints is the starting hit points of every unit.
	HitPoints int `mapstructure:"hit_points"`
	// ElfPower is the attack power of every elf outside calibration.
	ElfPower int `mapstructure:"elf_power"`
	// GoblinPower is the attack power of every goblin outside calibration.
	GoblinPower int `mapstructure:"goblin_power"`
}

// CalibrationConfig holds the attack power search settings.
type CalibrationConfig struct {
	// Faction is the calibrated faction: "elf" or "goblin".
	Faction string `mapstructure:"faction"`
	// Start is the first candidate power.
	Start int `mapstructure:"start"`
	// Step is the increment between candidate powers.
	Step int `mapstructure:"step"`
	// Ceiling is the largest candidate power searched before giving up.
	Ceiling int `mapstructure:"ceiling"`
	// Strategy is "linear" or "binary".
	Strategy string `mapstructure:"strategy"`
	// Workers bounds concurrent battles; 0 means one per CPU.
	Workers int `mapstructure:"workers"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging     LoggingConfig     `mapstructure:"logging"`
	Battle      BattleConfig      `mapstructure:"battle"`
	Calibration CalibrationConfig `mapstructure:"calibration"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateBattle(c.Battle); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCalibration(c.Calibration); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	if l.Output == "" {
		return fmt.Errorf("logging.output must not be empty")
	}
	return nil
}

func validateBattle(b BattleConfig) error {
	var errs []string
	if b.HitPoints < 1 {
		errs = append(errs, fmt.Sprintf("battle.hit_points must be >= 1, got %d", b.HitPoints))
	}
	if b.ElfPower < 1 {
		errs = append(errs, fmt.Sprintf("battle.elf_power must be >= 1, got %d", b.ElfPower))
	}
	if b.GoblinPower < 1 {
		errs = append(errs, fmt.Sprintf("battle.goblin_power must be >= 1, got %d", b.GoblinPower))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateCalibration(c CalibrationConfig) error {
	var errs []string
	validFactions := map[string]bool{"elf": true, "goblin": true}
	if !validFactions[c.Faction] {
		errs = append(errs, fmt.Sprintf("calibration.faction must be one of [elf, goblin], got %q", c.Faction))
	}
	if c.Start < 1 {
		errs = append(errs, fmt.Sprintf("calibration.start must be >= 1, got %d", c.Start))
	}
	if c.Step < 1 {
		errs = append(errs, fmt.Sprintf("calibration.step must be >= 1, got %d", c.Step))
	}
	if c.Ceiling < c.Start {
		errs = append(errs, fmt.Sprintf("calibration.ceiling must be >= calibration.start (%d), got %d", c.Start, c.Ceiling))
	}
	validStrategies := map[string]bool{"linear": true, "binary": true}
	if !validStrategies[c.Strategy] {
		errs = append(errs, fmt.Sprintf("calibration.strategy must be one of [linear, binary], got %q", c.Strategy))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Sprintf("calibration.workers must be >= 0, got %d", c.Workers))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and
// environment overrides only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with SKIRMISH_ prefix
	v.SetEnvPrefix("SKIRMISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("battle.hit_points", 200)
	v.SetDefault("battle.elf_power", 3)
	v.SetDefault("battle.goblin_power", 3)

	v.SetDefault("calibration.faction", "elf")
	v.SetDefault("calibration.start", 4)
	v.SetDefault("calibration.step", 1)
	v.SetDefault("calibration.ceiling", 200)
	v.SetDefault("calibration.strategy", "linear")
	v.SetDefault("calibration.workers", 0)
}
