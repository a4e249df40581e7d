package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lox/unobots/cmd/unobots/shared"
	"github.com/lox/unobots/internal/game"
	"github.com/lox/unobots/internal/journal"
	"github.com/lox/unobots/internal/randsrc"
	"github.com/lox/unobots/internal/server"
)

// ServerCmd runs the game server
type ServerCmd struct {
	Config     string `kong:"default='unobots.hcl',help='Path to HCL configuration file'"`
	Addr       string `kong:"help='Listen address (overrides config)'"`
	LogLevel   string `kong:"help='Log level (overrides config)'"`
	Structured bool   `kong:"help='Structured (JSON) log output'"`
	Seed       *int64 `kong:"help='Deterministic seed stream for game setup (overrides config)'"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		host, port, splitErr := splitAddr(c.Addr)
		if splitErr != nil {
			return splitErr
		}
		cfg.Server.Address = host
		cfg.Server.Port = port
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.Seed != nil {
		cfg.Random.Seed = *c.Seed
	}

	var logger = shared.SetupLogger(cfg.Server.LogLevel)
	if c.Structured || cfg.Server.Structured {
		logger = shared.SetupStructuredLogger(cfg.Server.LogLevel)
	}

	gameConfig := game.Config{
		MaxPlayers: cfg.Game.MaxPlayers,
		MinPlayers: cfg.Game.MinPlayers,
		HandSize:   cfg.Game.HandSize,
	}

	registry := server.NewRegistry(logger, gameConfig)
	service := server.NewGameService(logger, registry)
	service.SetProvider(randsrc.NewLocal(logger, randsrc.Config{
		Seed:  cfg.Random.Seed,
		Delay: time.Duration(cfg.Random.DelayMs) * time.Millisecond,
	}, service.DeliverSeed))

	s := server.NewServer(logger)
	s.SetGameService(service)
	service.AddSink(server.NewEventBroadcaster(s, logger))

	var journalManager *journal.Manager
	if cfg.Journal.Enabled {
		journalManager = journal.NewManager(logger, journal.Config{BaseDir: cfg.Journal.Dir})
		service.AddSink(journalManager)
	}

	watchdog := server.NewWatchdog(logger, registry, server.WatchdogConfig{
		SweepInterval:    time.Duration(cfg.Watchdog.SweepIntervalSeconds) * time.Second,
		PendingThreshold: time.Duration(cfg.Watchdog.PendingThresholdSeconds) * time.Second,
		EndedRetention:   time.Duration(cfg.Watchdog.EndedRetentionSeconds) * time.Second,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	logger.Info().
		Str("addr", addr).
		Int("min_players", gameConfig.MinPlayers).
		Int("max_players", gameConfig.MaxPlayers).
		Int("hand_size", gameConfig.HandSize).
		Bool("journal", cfg.Journal.Enabled).
		Msg("starting unobots server")

	ctx := shared.SetupSignalHandler(logger)
	eg, ctx := errgroup.WithContext(ctx)

	s.Run()
	eg.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		return watchdog.Run(ctx)
	})
	eg.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		_ = s.Stop()
		if journalManager != nil {
			journalManager.Shutdown()
		}
		return nil
	})

	return eg.Wait()
}

func splitAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid address %q, want host:port", addr)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port in address %q", addr)
	}
	return host, port, nil
}
