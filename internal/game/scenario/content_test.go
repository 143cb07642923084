package scenario_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/battle"
	"github.com/cory-johannsen/skirmish/internal/game/calibration"
	"github.com/cory-johannsen/skirmish/internal/game/scenario"
)

// TestContent_ScenariosMatchExpectations runs every shipped scenario.
func TestContent_ScenariosMatchExpectations(t *testing.T) {
	scenarios, err := scenario.LoadFromDir("../../../content/scenarios")
	require.NoError(t, err, "content/scenarios should load without error")
	require.NotEmpty(t, scenarios)

	driver, err := calibration.NewDriver(calibration.DefaultOptions(), zap.NewNop())
	require.NoError(t, err)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			b, err := s.Board.Battle(battle.DefaultHitPoints, battle.DefaultPowers())
			require.NoError(t, err)
			res, err := b.Run()
			require.NoError(t, err)
			assert.Empty(t, s.Expect.Check(res))

			if !s.Expect.Calibrated() {
				return
			}
			cal, err := driver.Calibrate(context.Background(), s.Board)
			require.NoError(t, err)
			assert.Empty(t, s.Expect.CheckCalibration(cal))
		})
	}
}
