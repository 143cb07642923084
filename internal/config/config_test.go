package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
		Battle: BattleConfig{
			HitPoints:   200,
			ElfPower:    3,
			GoblinPower: 3,
		},
		Calibration: CalibrationConfig{
			Faction:  "elf",
			Start:    4,
			Step:     1,
			Ceiling:  200,
			Strategy: "linear",
			Workers:  0,
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
logging:
  level: debug
  format: console
battle:
  hit_points: 300
  goblin_power: 5
calibration:
  faction: goblin
  start: 6
  ceiling: 50
  strategy: binary
  workers: 2
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "stderr", cfg.Logging.Output, "unset keys keep defaults")
	assert.Equal(t, 300, cfg.Battle.HitPoints)
	assert.Equal(t, 3, cfg.Battle.ElfPower)
	assert.Equal(t, 5, cfg.Battle.GoblinPower)
	assert.Equal(t, "goblin", cfg.Calibration.Faction)
	assert.Equal(t, 6, cfg.Calibration.Start)
	assert.Equal(t, 1, cfg.Calibration.Step)
	assert.Equal(t, 50, cfg.Calibration.Ceiling)
	assert.Equal(t, "binary", cfg.Calibration.Strategy)
	assert.Equal(t, 2, cfg.Calibration.Workers)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Battle.HitPoints)
	assert.Equal(t, 3, cfg.Battle.ElfPower)
	assert.Equal(t, "elf", cfg.Calibration.Faction)
	assert.Equal(t, 4, cfg.Calibration.Start)
	assert.Equal(t, 200, cfg.Calibration.Ceiling)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SKIRMISH_BATTLE_ELF_POWER", "15")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.Battle.ElfPower)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoadFromViper_Invalid(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("calibration.strategy", "random")
	_, err := LoadFromViper(v)
	assert.Error(t, err)
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingFormat(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		cfg := validConfig()
		cfg.Logging.Format = format
		assert.NoError(t, cfg.Validate(), "format %q should be valid", format)
	}
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingOutputEmpty(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Output = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateBattle(t *testing.T) {
	cfg := validConfig()
	cfg.Battle.HitPoints = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Battle.ElfPower = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Battle.GoblinPower = -1
	assert.Error(t, cfg.Validate())
}

func TestValidateCalibrationFaction(t *testing.T) {
	for _, faction := range []string{"elf", "goblin"} {
		cfg := validConfig()
		cfg.Calibration.Faction = faction
		assert.NoError(t, cfg.Validate(), "faction %q should be valid", faction)
	}
	cfg := validConfig()
	cfg.Calibration.Faction = "orc"
	assert.Error(t, cfg.Validate())
}

func TestValidateCalibrationRange(t *testing.T) {
	cfg := validConfig()
	cfg.Calibration.Ceiling = 3
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Calibration.Step = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Calibration.Workers = -1
	assert.Error(t, cfg.Validate())
}

func TestValidateCollectsAllViolations(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	cfg.Battle.HitPoints = 0
	cfg.Calibration.Strategy = "random"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "battle.hit_points")
	assert.Contains(t, err.Error(), "calibration.strategy")
}

// Property-based tests

func TestPropertyCeilingAtOrAboveStartAccepted(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		start := rapid.IntRange(1, 500).Draw(t, "start")
		ceiling := rapid.IntRange(start, start+500).Draw(t, "ceiling")
		cfg := validConfig()
		cfg.Calibration.Start = start
		cfg.Calibration.Ceiling = ceiling
		if err := cfg.Validate(); err != nil {
			t.Fatalf("start=%d ceiling=%d rejected: %v", start, ceiling, err)
		}
	})
}

func TestPropertyCeilingBelowStartRejected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		start := rapid.IntRange(2, 500).Draw(t, "start")
		ceiling := rapid.IntRange(1, start-1).Draw(t, "ceiling")
		cfg := validConfig()
		cfg.Calibration.Start = start
		cfg.Calibration.Ceiling = ceiling
		if cfg.Validate() == nil {
			t.Fatalf("ceiling=%d < start=%d accepted", ceiling, start)
		}
	})
}

func TestPropertyNonPositivePowerRejected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		power := rapid.IntRange(-100, 0).Draw(t, "power")
		cfg := validConfig()
		cfg.Battle.ElfPower = power
		if cfg.Validate() == nil {
			t.Fatalf("elf_power=%d accepted", power)
		}
	})
}
