// Package journal appends game events to per-game JSONL files. It is a
// passive observer: recording never blocks or fails a game operation,
// and a write failure only loses history.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lox/unobots/internal/game"
)

// Config holds journal settings
type Config struct {
	// BaseDir is where per-game journal files are written
	BaseDir string

	// FlushInterval bounds how long buffered events wait on disk
	FlushInterval time.Duration

	// FlushEvents flushes early once this many events are buffered
	FlushEvents int
}

// record is the flat JSONL form of a game event
type record struct {
	Time      time.Time `json:"time"`
	Type      string    `json:"type"`
	GameID    string    `json:"gameId"`
	Player    string    `json:"player,omitempty"`
	Seat      int       `json:"seat,omitempty"`
	Players   []string  `json:"players,omitempty"`
	Card      string    `json:"card,omitempty"`
	TopCard   string    `json:"topCard,omitempty"`
	Color     string    `json:"color,omitempty"`
	Direction string    `json:"direction,omitempty"`
	HandSize  int       `json:"handSize,omitempty"`
	Winner    string    `json:"winner,omitempty"`
}

// Manager buffers events per game and flushes them to disk on a timer,
// on buffer pressure, and on shutdown. It implements
// game.EventSubscriber; OnEvent may run under a game's lock, so it only
// buffers in memory.
type Manager struct {
	cfg    Config
	logger zerolog.Logger

	mu       sync.Mutex
	buffers  map[string][]record
	buffered int

	flushReq chan struct{}
	stop     chan struct{}
	wg       sync.WaitGroup
}

// NewManager creates and starts a journal manager
func NewManager(logger zerolog.Logger, cfg Config) *Manager {
	if cfg.BaseDir == "" {
		cfg.BaseDir = "journal"
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.FlushEvents <= 0 {
		cfg.FlushEvents = 64
	}

	m := &Manager{
		cfg:      cfg,
		logger:   logger.With().Str("component", "journal").Logger(),
		buffers:  make(map[string][]record),
		flushReq: make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
	m.wg.Add(1)
	go m.run()
	return m
}

// Shutdown stops the flusher and writes out anything buffered
func (m *Manager) Shutdown() {
	close(m.stop)
	m.wg.Wait()
	m.flushAll()
}

// OnEvent implements the game.EventSubscriber interface
func (m *Manager) OnEvent(event game.Event) {
	rec, ok := toRecord(event)
	if !ok {
		return
	}

	m.mu.Lock()
	m.buffers[rec.GameID] = append(m.buffers[rec.GameID], rec)
	m.buffered++
	full := m.buffered >= m.cfg.FlushEvents
	m.mu.Unlock()

	// Game endings flush promptly so a finished game's journal is
	// complete on disk.
	if full || event.EventType() == game.EventTypeGameEnded {
		m.requestFlush()
	}
}

func toRecord(event game.Event) (record, bool) {
	switch e := event.(type) {
	case game.GameCreatedEvent:
		return record{Time: e.Timestamp(), Type: e.EventType().String(), GameID: e.GameID}, true
	case game.PlayerJoinedEvent:
		return record{Time: e.Timestamp(), Type: e.EventType().String(), GameID: e.GameID,
			Player: e.Player, Seat: e.Seat}, true
	case game.GameStartedEvent:
		return record{Time: e.Timestamp(), Type: e.EventType().String(), GameID: e.GameID,
			Players: e.Players}, true
	case game.SetupCompleteEvent:
		return record{Time: e.Timestamp(), Type: e.EventType().String(), GameID: e.GameID,
			Seat: e.StartingSeat, Color: e.StartingColor.String(), TopCard: e.TopCard.String()}, true
	case game.CardPlayedEvent:
		return record{Time: e.Timestamp(), Type: e.EventType().String(), GameID: e.GameID,
			Player: e.Player, Card: e.Card.String(), HandSize: e.HandSize,
			Seat: e.NextSeat, Direction: e.Direction.String()}, true
	case game.LowHandDeclaredEvent:
		return record{Time: e.Timestamp(), Type: e.EventType().String(), GameID: e.GameID,
			Player: e.Player}, true
	case game.GameEndedEvent:
		return record{Time: e.Timestamp(), Type: e.EventType().String(), GameID: e.GameID,
			Winner: e.Winner}, true
	default:
		return record{}, false
	}
}

func (m *Manager) run() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.flushAll()
		case <-m.flushReq:
			m.flushAll()
		case <-m.stop:
			return
		}
	}
}

func (m *Manager) requestFlush() {
	select {
	case m.flushReq <- struct{}{}:
	default:
	}
}

// Flush writes all buffered events to disk immediately
func (m *Manager) Flush() {
	m.flushAll()
}

func (m *Manager) flushAll() {
	m.mu.Lock()
	buffers := m.buffers
	m.buffers = make(map[string][]record)
	m.buffered = 0
	m.mu.Unlock()

	for gameID, records := range buffers {
		if err := m.append(gameID, records); err != nil {
			m.logger.Error().Err(err).Str("game_id", gameID).Int("events", len(records)).
				Msg("journal flush failed, events dropped")
		}
	}
}

func (m *Manager) append(gameID string, records []record) error {
	if err := os.MkdirAll(m.cfg.BaseDir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(m.cfg.BaseDir, fmt.Sprintf("game-%s.jsonl", gameID))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	enc := json.NewEncoder(f)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}
