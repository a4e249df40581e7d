package server

import (
	"context"
	"errors"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
)

// WatchdogConfig holds watchdog timing settings
type WatchdogConfig struct {
	// SweepInterval is how often games are inspected
	SweepInterval time.Duration

	// PendingThreshold is how long a game may sit awaiting its seed
	// before it is flagged as stuck
	PendingThreshold time.Duration

	// EndedRetention is how long ended games stay in the registry
	// before they are evicted
	EndedRetention time.Duration

	// Clock defaults to the real clock; tests inject a mock
	Clock quartz.Clock
}

// Watchdog periodically inspects the registry. It flags games stuck in
// the setup-pending window (the core accepts that failure mode and
// leaves handling to an external watchdog - this is that watchdog) and
// evicts ended games once their retention expires. It observes game
// state transitions with its own clock rather than trusting engine
// timestamps, so it never reaches into game internals.
type Watchdog struct {
	logger   zerolog.Logger
	registry *Registry
	config   WatchdogConfig
	clock    quartz.Clock

	// first-observed times, keyed by game id. Only the sweep goroutine
	// touches these.
	pendingSince map[string]time.Time
	endedSince   map[string]time.Time
	flagged      map[string]bool
}

// NewWatchdog creates a watchdog over the registry
func NewWatchdog(logger zerolog.Logger, registry *Registry, config WatchdogConfig) *Watchdog {
	clock := config.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}

	return &Watchdog{
		logger:       logger.With().Str("component", "watchdog").Logger(),
		registry:     registry,
		config:       config,
		clock:        clock,
		pendingSince: make(map[string]time.Time),
		endedSince:   make(map[string]time.Time),
		flagged:      make(map[string]bool),
	}
}

// Run sweeps until ctx is cancelled
func (w *Watchdog) Run(ctx context.Context) error {
	w.logger.Info().
		Dur("interval", w.config.SweepInterval).
		Dur("pending_threshold", w.config.PendingThreshold).
		Dur("ended_retention", w.config.EndedRetention).
		Msg("watchdog started")

	waiter := w.clock.TickerFunc(ctx, w.config.SweepInterval, func() error {
		w.sweep()
		return nil
	}, "watchdog-sweep")

	err := waiter.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *Watchdog) sweep() {
	now := w.clock.Now("watchdog-sweep")
	live := make(map[string]bool)

	for _, snap := range w.registry.List() {
		live[snap.ID] = true

		if snap.SetupPending {
			since, ok := w.pendingSince[snap.ID]
			if !ok {
				w.pendingSince[snap.ID] = now
				continue
			}
			if now.Sub(since) >= w.config.PendingThreshold && !w.flagged[snap.ID] {
				w.flagged[snap.ID] = true
				w.logger.Warn().
					Str("game_id", snap.ID).
					Dur("pending_for", now.Sub(since)).
					Msg("game stuck awaiting seed")
			}
			continue
		}
		delete(w.pendingSince, snap.ID)
		delete(w.flagged, snap.ID)

		if snap.State == "ended" {
			since, ok := w.endedSince[snap.ID]
			if !ok {
				w.endedSince[snap.ID] = now
				continue
			}
			if now.Sub(since) >= w.config.EndedRetention {
				w.registry.Remove(snap.ID)
				delete(w.endedSince, snap.ID)
				w.logger.Info().Str("game_id", snap.ID).Msg("evicted ended game")
			}
		}
	}

	// Prune state for games removed behind our back
	for id := range w.pendingSince {
		if !live[id] {
			delete(w.pendingSince, id)
			delete(w.flagged, id)
		}
	}
	for id := range w.endedSince {
		if !live[id] {
			delete(w.endedSince, id)
		}
	}
}
