// Package scenario loads named battle boards and their expected results
// from YAML files.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/battle"
	"github.com/cory-johannsen/skirmish/internal/game/calibration"
)

// Expectation holds the results a scenario is known to produce.
// A zero field is not checked.
type Expectation struct {
	Outcome           int
	Rounds            int
	HitPoints         int
	CalibratedPower   int
	CalibratedOutcome int
}

// Calibrated reports whether the expectation covers a calibration run.
func (e Expectation) Calibrated() bool {
	return e.CalibratedPower != 0 || e.CalibratedOutcome != 0
}

// Scenario is a named board with its expected results.
type Scenario struct {
	Name        string
	Description string
	Board       *battle.Board
	Expect      Expectation
}

// yamlScenarioFile is the top-level YAML structure for scenario files.
type yamlScenarioFile struct {
	Scenario yamlScenario `yaml:"scenario"`
}

// yamlScenario is the YAML representation of a scenario.
type yamlScenario struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Board       string     `yaml:"board"`
	Expect      yamlExpect `yaml:"expect"`
}

// yamlExpect is the YAML representation of an expectation.
type yamlExpect struct {
	Outcome           int `yaml:"outcome"`
	Rounds            int `yaml:"rounds"`
	HitPoints         int `yaml:"hit_points"`
	CalibratedPower   int `yaml:"calibrated_power"`
	CalibratedOutcome int `yaml:"calibrated_outcome"`
}

// LoadFromFile reads and validates a single scenario YAML file.
//
// Precondition: path must point to a scenario YAML file.
// Postcondition: Returns a validated Scenario or a non-nil error.
func LoadFromFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file %s: %w", path, err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses and validates a scenario from YAML bytes.
//
// Postcondition: Returns a Scenario with a parsed Board or a non-nil error.
func LoadFromBytes(data []byte) (*Scenario, error) {
	var file yamlScenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	ys := file.Scenario
	if strings.TrimSpace(ys.Name) == "" {
		return nil, errors.New("scenario name must not be empty")
	}
	bd, err := battle.Parse(ys.Board)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", ys.Name, err)
	}
	return &Scenario{
		Name:        ys.Name,
		Description: ys.Description,
		Board:       bd,
		Expect: Expectation{
			Outcome:           ys.Expect.Outcome,
			Rounds:            ys.Expect.Rounds,
			HitPoints:         ys.Expect.HitPoints,
			CalibratedPower:   ys.Expect.CalibratedPower,
			CalibratedOutcome: ys.Expect.CalibratedOutcome,
		},
	}, nil
}

// LoadFromDir loads every .yaml and .yml file in dir, in file name order.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns at least one Scenario or a non-nil error; scenario
// names are unique.
func LoadFromDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scenario directory %s: %w", dir, err)
	}

	var scenarios []*Scenario
	seen := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		s, err := LoadFromFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("loading scenario from %s: %w", name, err)
		}
		if prev, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("scenario %q defined in both %s and %s", s.Name, prev, name)
		}
		seen[s.Name] = name
		scenarios = append(scenarios, s)
	}

	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}
	return scenarios, nil
}

// Check compares a battle result against the expectation.
//
// Postcondition: Returns one message per mismatched field; empty when all
// checked fields match.
func (e Expectation) Check(res battle.Result) []string {
	var diffs []string
	diffs = appendDiff(diffs, "outcome", e.Outcome, res.Outcome)
	diffs = appendDiff(diffs, "rounds", e.Rounds, res.Rounds)
	diffs = appendDiff(diffs, "hit_points", e.HitPoints, res.HitPoints)
	return diffs
}

// CheckCalibration compares a calibration against the expectation.
func (e Expectation) CheckCalibration(cal calibration.Calibration) []string {
	var diffs []string
	diffs = appendDiff(diffs, "calibrated_power", e.CalibratedPower, cal.Power)
	diffs = appendDiff(diffs, "calibrated_outcome", e.CalibratedOutcome, cal.Result.Outcome)
	return diffs
}

func appendDiff(diffs []string, field string, want, got int) []string {
	if want != 0 && want != got {
		diffs = append(diffs, fmt.Sprintf("%s: got %d, want %d", field, got, want))
	}
	return diffs
}
