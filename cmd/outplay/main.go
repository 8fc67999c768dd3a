// Package main provides the outplay binary: one player climbs the tower in
// the terminal, and the session summary is appended to the configured store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/outplay/internal/config"
	"github.com/cory-johannsen/outplay/internal/frontend/console"
	"github.com/cory-johannsen/outplay/internal/game/combat"
	"github.com/cory-johannsen/outplay/internal/game/combatant"
	"github.com/cory-johannsen/outplay/internal/game/dice"
	"github.com/cory-johannsen/outplay/internal/game/session"
	"github.com/cory-johannsen/outplay/internal/game/tower"
	"github.com/cory-johannsen/outplay/internal/observability"
	"github.com/cory-johannsen/outplay/internal/scripting"
	"github.com/cory-johannsen/outplay/internal/server"
	"github.com/cory-johannsen/outplay/internal/storage/jsonfile"
	"github.com/cory-johannsen/outplay/internal/storage/postgres"
	"github.com/cory-johannsen/outplay/internal/storage/sqlite"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty uses defaults and OUTPLAY_ env")
	seed := flag.Uint64("seed", 0, "dice seed overriding encounter.seed; 0 keeps the configured seed")
	color := flag.Bool("color", true, "ANSI colors in the console")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *seed != 0 {
		cfg.Encounter.Seed = *seed
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	var src dice.Source
	if cfg.Encounter.Seed != 0 {
		src = dice.NewSeededSource(cfg.Encounter.Seed)
	} else {
		src = dice.NewCryptoSource()
	}
	roller := dice.NewLoggedRoller(src, logger)

	tw := tower.Default()
	if cfg.Tower.FloorsFile != "" {
		tw, err = tower.LoadFile(cfg.Tower.FloorsFile)
		if err != nil {
			logger.Fatal("loading tower", zap.String("path", cfg.Tower.FloorsFile), zap.Error(err))
		}
	}
	logger.Info("tower loaded",
		zap.String("tower", tw.Name),
		zap.Int("floors", tw.Len()),
	)

	lc := server.NewLifecycle(logger)

	var scaler *tower.Scaler
	if cfg.Tower.ScriptsDir != "" || cfg.Tower.GlobalScriptsDir != "" {
		scriptMgr := scripting.NewManager(roller, logger)
		scaler, err = tower.LoadScripts(scriptMgr, cfg.Tower.ScriptsDir, cfg.Tower.GlobalScriptsDir, cfg.Tower.InstructionLimit, logger)
		if err != nil {
			logger.Fatal("loading tower scripts", zap.Error(err))
		}
		lc.Add("scripting", &server.FuncService{StopFn: scriptMgr.Close})
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("opening summary store", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}
	lc.Add("store", &server.FuncService{StopFn: closeStore})

	p := cfg.Player
	player := combatant.NewPlayer(p.Name, p.MaxHealth, p.MaxFocus, p.Insight)

	ui := console.New(os.Stdin, os.Stdout, console.Options{Color: *color, Logger: logger})
	ctrl := &combat.Controller{
		Chooser:       ui,
		Observer:      ui.Observe,
		ChoiceTimeout: cfg.Encounter.ChoiceTimeout,
		Logger:        logger,
	}

	sess, err := session.New(player, tw, roller, ctrl, session.Options{
		MemoryCapacity: cfg.Encounter.MemoryCapacity,
		MaxDefeats:     cfg.Tower.MaxDefeats,
		Scaler:         scaler,
		Reporter:       ui,
		Logger:         logger,
	})
	if err != nil {
		logger.Fatal("creating session", zap.Error(err))
	}

	logger.Info("session starting",
		zap.String("session_id", sess.ID()),
		zap.String("player", player.Name),
		zap.Uint64("seed", cfg.Encounter.Seed),
		zap.Duration("startup", time.Since(start)),
	)

	lc.Add("session", &server.FuncService{StartFn: func(ctx context.Context) error {
		sum, err := sess.Run(ctx)
		ui.PrintSummary(sum)
		// The run context may already be cancelled; persisting must still happen.
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if serr := store.Append(saveCtx, sum); serr != nil {
			logger.Warn("summary not saved", zap.String("backend", cfg.Storage.Backend), zap.Error(serr))
		} else {
			logger.Info("summary saved", zap.String("backend", cfg.Storage.Backend))
		}
		return err
	}})

	if err := lc.Run(ctx); err != nil {
		logger.Error("run failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

// openStore returns the configured summary store and its release function.
func openStore(ctx context.Context, cfg config.Config) (session.Store, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendJSON:
		s, err := jsonfile.New(cfg.Storage.JSONPath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	case config.BackendSQLite:
		s, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return pool.Summaries(), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}
