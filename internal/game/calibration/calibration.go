// Package calibration searches for the smallest attack power that lets one
// faction win a battle without losing a single unit.
package calibration

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/skirmish/internal/game/battle"
)

// ErrNoSolution is returned when no candidate power up to the ceiling lets the
// calibrated faction finish without losses.
var ErrNoSolution = errors.New("no attack power avoids losses")

// Strategy selects how candidate powers are searched.
type Strategy string

const (
	// Linear evaluates candidates in ascending order and returns the first
	// success. Windows of candidates run concurrently.
	Linear Strategy = "linear"
	// Binary bisects the candidate range. It assumes success is monotonic
	// in attack power.
	Binary Strategy = "binary"
)

// Options configures a Driver.
type Options struct {
	// Faction is the faction whose attack power is calibrated.
	Faction battle.Faction
	// Start is the first candidate power.
	Start int
	// Step is the increment between candidates.
	Step int
	// Ceiling is the largest candidate power searched.
	Ceiling int
	// Strategy is Linear or Binary.
	Strategy Strategy
	// Workers bounds how many battles run at once.
	Workers int
	// HitPoints is the starting hit points of every unit.
	HitPoints int
	// BaselinePower is the attack power of the opposing faction.
	BaselinePower int
}

// DefaultOptions calibrates elves from 4 to 200 against goblins at the
// default attack power.
func DefaultOptions() Options {
	return Options{
		Faction:       battle.Elf,
		Start:         battle.DefaultAttackPower + 1,
		Step:          1,
		Ceiling:       200,
		Strategy:      Linear,
		Workers:       runtime.NumCPU(),
		HitPoints:     battle.DefaultHitPoints,
		BaselinePower: battle.DefaultAttackPower,
	}
}

// Validate checks option invariants.
//
// Postcondition: Returns nil if the options describe a non-empty search.
func (o Options) Validate() error {
	switch {
	case o.Start < 1:
		return fmt.Errorf("start must be >= 1, got %d", o.Start)
	case o.Step < 1:
		return fmt.Errorf("step must be >= 1, got %d", o.Step)
	case o.Ceiling < o.Start:
		return fmt.Errorf("ceiling %d is below start %d", o.Ceiling, o.Start)
	case o.Workers < 1:
		return fmt.Errorf("workers must be >= 1, got %d", o.Workers)
	case o.HitPoints < 1:
		return fmt.Errorf("hit points must be >= 1, got %d", o.HitPoints)
	case o.BaselinePower < 1:
		return fmt.Errorf("baseline power must be >= 1, got %d", o.BaselinePower)
	case o.Strategy != Linear && o.Strategy != Binary:
		return fmt.Errorf("unknown strategy %q", o.Strategy)
	}
	return nil
}

// candidates returns every power searched, ascending.
func (o Options) candidates() []int {
	var powers []int
	for p := o.Start; p <= o.Ceiling; p += o.Step {
		powers = append(powers, p)
	}
	return powers
}

// Calibration is the winning power and the battle it produced.
type Calibration struct {
	// RunID tags the log lines of one Calibrate call.
	RunID string
	Power int
	// Result is the outcome of the battle fought at Power.
	Result battle.Result
	// Attempts is the number of battles simulated.
	Attempts int
}

// Driver runs calibration searches.
type Driver struct {
	opts   Options
	logger *zap.Logger
}

// NewDriver creates a Driver.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a Driver or the Options validation error.
func NewDriver(opts Options, logger *zap.Logger) (*Driver, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid calibration options: %w", err)
	}
	return &Driver{opts: opts, logger: logger}, nil
}

// attempt is the verdict for one candidate power.
type attempt struct {
	power  int
	result battle.Result
	ok     bool
}

// evaluate fights a fresh battle at power and reports whether the calibrated
// faction lost nobody. A stalemate after the calibrated faction has lost a
// unit is a failed candidate; a stalemate without losses is an error.
func (d *Driver) evaluate(board *battle.Board, power int) (attempt, error) {
	powers := battle.Powers{
		d.opts.Faction:            power,
		d.opts.Faction.Opponent(): d.opts.BaselinePower,
	}
	b, err := board.Battle(d.opts.HitPoints, powers)
	if err != nil {
		return attempt{}, fmt.Errorf("power %d: %w", power, err)
	}
	res, err := b.Run()
	if errors.Is(err, battle.ErrStalemate) && res.Losses[d.opts.Faction] > 0 {
		return attempt{power: power, result: res}, nil
	}
	if err != nil {
		return attempt{}, fmt.Errorf("power %d: %w", power, err)
	}
	return attempt{power: power, result: res, ok: res.Losses[d.opts.Faction] == 0}, nil
}

// Calibrate finds the smallest candidate power at which the calibrated
// faction suffers no losses.
//
// Precondition: board must be non-nil.
// Postcondition: Returns the Calibration, an error wrapping ErrNoSolution if
// no candidate succeeds, or ctx's error if ctx is done first.
func (d *Driver) Calibrate(ctx context.Context, board *battle.Board) (Calibration, error) {
	runID := uuid.New().String()
	logger := d.logger.With(
		zap.String("run_id", runID),
		zap.String("faction", d.opts.Faction.String()),
		zap.String("strategy", string(d.opts.Strategy)),
	)
	logger.Info("calibration started",
		zap.Int("start", d.opts.Start),
		zap.Int("step", d.opts.Step),
		zap.Int("ceiling", d.opts.Ceiling),
	)

	var (
		cal Calibration
		err error
	)
	if d.opts.Strategy == Binary {
		cal, err = d.bisect(ctx, board, logger)
	} else {
		cal, err = d.scan(ctx, board, logger)
	}
	cal.RunID = runID
	if err != nil {
		logger.Warn("calibration failed", zap.Int("attempts", cal.Attempts), zap.Error(err))
		return cal, err
	}
	logger.Info("calibration succeeded",
		zap.Int("power", cal.Power),
		zap.Int("rounds", cal.Result.Rounds),
		zap.Int("hit_points", cal.Result.HitPoints),
		zap.Int("outcome", cal.Result.Outcome),
		zap.Int("attempts", cal.Attempts),
	)
	return cal, nil
}

// scan evaluates candidates in ascending windows of Workers powers. Within a
// window battles run concurrently; the lowest success of the first window
// containing one wins, matching a sequential scan.
func (d *Driver) scan(ctx context.Context, board *battle.Board, logger *zap.Logger) (Calibration, error) {
	powers := d.opts.candidates()
	var cal Calibration
	for i := 0; i < len(powers); i += d.opts.Workers {
		if err := ctx.Err(); err != nil {
			return cal, err
		}
		window := powers[i:min(i+d.opts.Workers, len(powers))]
		results := make([]attempt, len(window))
		g, gctx := errgroup.WithContext(ctx)
		for j, power := range window {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				a, err := d.evaluate(board, power)
				if err != nil {
					return err
				}
				results[j] = a
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return cal, err
		}
		cal.Attempts += len(window)
		for _, a := range results {
			logger.Debug("candidate evaluated",
				zap.Int("power", a.power),
				zap.Bool("ok", a.ok),
				zap.Int("losses", a.result.Losses[d.opts.Faction]),
			)
			if a.ok {
				cal.Power = a.power
				cal.Result = a.result
				return cal, nil
			}
		}
	}
	return cal, fmt.Errorf("searched %d..%d: %w", d.opts.Start, d.opts.Ceiling, ErrNoSolution)
}

// bisect binary-searches the candidates, first confirming that the largest
// candidate succeeds.
func (d *Driver) bisect(ctx context.Context, board *battle.Board, logger *zap.Logger) (Calibration, error) {
	powers := d.opts.candidates()
	var cal Calibration
	try := func(idx int) (attempt, error) {
		if err := ctx.Err(); err != nil {
			return attempt{}, err
		}
		a, err := d.evaluate(board, powers[idx])
		if err != nil {
			return attempt{}, err
		}
		cal.Attempts++
		logger.Debug("candidate evaluated",
			zap.Int("power", a.power),
			zap.Bool("ok", a.ok),
			zap.Int("losses", a.result.Losses[d.opts.Faction]),
		)
		return a, nil
	}

	lo, hi := 0, len(powers)-1
	best, err := try(hi)
	if err != nil {
		return cal, err
	}
	if !best.ok {
		return cal, fmt.Errorf("searched %d..%d: %w", d.opts.Start, d.opts.Ceiling, ErrNoSolution)
	}
	for lo < hi {
		mid := lo + (hi-lo)/2
		a, err := try(mid)
		if err != nil {
			return cal, err
		}
		if a.ok {
			hi, best = mid, a
		} else {
			lo = mid + 1
		}
	}
	cal.Power = best.power
	cal.Result = best.result
	return cal, nil
}
