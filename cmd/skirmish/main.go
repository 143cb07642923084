// Package main provides the skirmish binary, which simulates a battle board
// and prints its outcome.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/battle"
	"github.com/cory-johannsen/skirmish/internal/game/calibration"
	"github.com/cory-johannsen/skirmish/internal/game/scenario"
	"github.com/cory-johannsen/skirmish/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file; empty uses defaults and SKIRMISH_* environment overrides")
	boardPath := flag.String("board", "", "path to a board file; empty reads the board from stdin")
	scenariosDir := flag.String("scenarios", "", "directory of scenario YAML files to run and check instead of a single board")
	calibrate := flag.Bool("calibrate", false, "also search for the lowest attack power at which the calibrated faction loses nobody")
	render := flag.Bool("render", false, "print the board as it stands when combat ends")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	opts, err := calibrationOptions(cfg)
	if err != nil {
		logger.Fatal("building calibration options", zap.Error(err))
	}
	driver, err := calibration.NewDriver(opts, logger)
	if err != nil {
		logger.Fatal("creating calibration driver", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *scenariosDir != "" {
		failed := runScenarios(ctx, os.Stdout, *scenariosDir, cfg, driver, logger)
		logger.Info("scenarios finished", zap.Int("failed", failed), zap.Duration("elapsed", time.Since(start)))
		if failed > 0 {
			logger.Sync()
			os.Exit(1)
		}
		return
	}

	input, err := readBoard(*boardPath)
	if err != nil {
		logger.Fatal("reading board", zap.Error(err))
	}
	bd, err := battle.Parse(input)
	if err != nil {
		logger.Fatal("parsing board", zap.Error(err))
	}
	logger.Info("board loaded",
		zap.Int("rows", bd.Grid.Rows()),
		zap.Int("cols", bd.Grid.Cols()),
		zap.Int("elves", bd.Count(battle.Elf)),
		zap.Int("goblins", bd.Count(battle.Goblin)),
	)

	b, res, err := fight(bd, cfg, logger)
	if err != nil {
		logger.Fatal("simulating battle", zap.Error(err))
	}
	fmt.Fprintf(os.Stdout, "outcome: %d (rounds %d, hit points %d, winner %s)\n",
		res.Outcome, res.Rounds, res.HitPoints, res.Winner)
	if *render {
		fmt.Fprint(os.Stdout, b.String())
	}

	if *calibrate {
		cal, err := driver.Calibrate(ctx, bd)
		if err != nil {
			logger.Fatal("calibrating attack power", zap.Error(err))
		}
		fmt.Fprintf(os.Stdout, "calibrated: %d (power %d, rounds %d, hit points %d)\n",
			cal.Result.Outcome, cal.Power, cal.Result.Rounds, cal.Result.HitPoints)
	}

	logger.Info("done", zap.Duration("elapsed", time.Since(start)))
}

// calibrationOptions converts the calibration config section into driver
// options.
//
// Precondition: cfg must be validated.
func calibrationOptions(cfg config.Config) (calibration.Options, error) {
	faction, err := battle.ParseFaction(cfg.Calibration.Faction)
	if err != nil {
		return calibration.Options{}, err
	}
	baseline := cfg.Battle.GoblinPower
	if faction == battle.Goblin {
		baseline = cfg.Battle.ElfPower
	}
	workers := cfg.Calibration.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	return calibration.Options{
		Faction:       faction,
		Start:         cfg.Calibration.Start,
		Step:          cfg.Calibration.Step,
		Ceiling:       cfg.Calibration.Ceiling,
		Strategy:      calibration.Strategy(cfg.Calibration.Strategy),
		Workers:       workers,
		HitPoints:     cfg.Battle.HitPoints,
		BaselinePower: baseline,
	}, nil
}

// fight runs one battle on bd with the configured powers.
func fight(bd *battle.Board, cfg config.Config, logger *zap.Logger) (*battle.Battle, battle.Result, error) {
	powers := battle.Powers{battle.Elf: cfg.Battle.ElfPower, battle.Goblin: cfg.Battle.GoblinPower}
	b, err := bd.Battle(cfg.Battle.HitPoints, powers, battle.WithLogger(logger))
	if err != nil {
		return nil, battle.Result{}, err
	}
	res, err := b.Run()
	return b, res, err
}

// readBoard reads the board from path, or from stdin when path is empty.
func readBoard(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading board file %s: %w", path, err)
	}
	return string(data), nil
}

// runScenarios runs every scenario in dir, printing one line per scenario, and
// returns how many did not match their expectations.
func runScenarios(ctx context.Context, w io.Writer, dir string, cfg config.Config, driver *calibration.Driver, logger *zap.Logger) int {
	scenarios, err := scenario.LoadFromDir(dir)
	if err != nil {
		logger.Error("loading scenarios", zap.String("dir", dir), zap.Error(err))
		return 1
	}

	failed := 0
	for _, s := range scenarios {
		_, res, err := fight(s.Board, cfg, logger.With(zap.String("scenario", s.Name)))
		if err != nil {
			fmt.Fprintf(w, "FAIL %s: %v\n", s.Name, err)
			failed++
			continue
		}
		diffs := s.Expect.Check(res)

		if s.Expect.Calibrated() {
			cal, err := driver.Calibrate(ctx, s.Board)
			switch {
			case errors.Is(err, context.Canceled):
				fmt.Fprintf(w, "FAIL %s: interrupted\n", s.Name)
				return failed + 1
			case err != nil:
				diffs = append(diffs, err.Error())
			default:
				diffs = append(diffs, s.Expect.CheckCalibration(cal)...)
			}
		}

		if len(diffs) > 0 {
			failed++
			fmt.Fprintf(w, "FAIL %s: %v\n", s.Name, diffs)
			continue
		}
		fmt.Fprintf(w, "ok   %s: outcome %d\n", s.Name, res.Outcome)
	}
	return failed
}
