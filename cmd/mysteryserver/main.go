// Package main runs the murder-mystery room server.
// It wires together configuration, script content, the game room, and the
// JSON-lines TCP acceptor.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mystery/internal/config"
	"github.com/cory-johannsen/mystery/internal/frontend/linenet"
	"github.com/cory-johannsen/mystery/internal/game/random"
	"github.com/cory-johannsen/mystery/internal/game/room"
	"github.com/cory-johannsen/mystery/internal/game/script"
	"github.com/cory-johannsen/mystery/internal/game/session"
	"github.com/cory-johannsen/mystery/internal/gameserver"
	"github.com/cory-johannsen/mystery/internal/observability"
	"github.com/cory-johannsen/mystery/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	scriptsDir := flag.String("scripts", "", "override the script directory from the configuration")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *scriptsDir != "" {
		cfg.Game.ScriptsDir = *scriptsDir
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting mystery room server",
		zap.String("config", *configPath),
		zap.String("scripts_dir", cfg.Game.ScriptsDir),
	)

	scripts, err := script.LoadDir(cfg.Game.ScriptsDir, logger)
	if err != nil {
		// The room still runs; select_script will report Invalid script.
		logger.Warn("no scripts loaded", zap.Error(err))
		scripts, _ = script.NewRepository(nil)
	}
	logger.Info("scripts loaded", zap.Int("count", scripts.Count()))

	rm := room.New(scripts, random.NewCryptoSource(), cfg.Game.DefaultPlayerCount)
	srv := gameserver.New(rm, session.NewManager(), cfg.Game, logger)
	acceptor := linenet.NewAcceptor(cfg.Listener, srv, logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("acceptor", acceptor)

	logger.Info("server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("addr", cfg.Listener.Addr()),
	)

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Error("server error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}
