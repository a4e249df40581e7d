package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server   ServerSettings   `hcl:"server,block"`
	Game     GameSettings     `hcl:"game,block"`
	Random   RandomSettings   `hcl:"random,block"`
	Watchdog WatchdogSettings `hcl:"watchdog,block"`
	Journal  JournalSettings  `hcl:"journal,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address    string `hcl:"address,optional"`
	Port       int    `hcl:"port,optional"`
	LogLevel   string `hcl:"log_level,optional"`
	Structured bool   `hcl:"structured_logging,optional"`
}

// GameSettings configures newly created games
type GameSettings struct {
	MaxPlayers int `hcl:"max_players,optional"`
	MinPlayers int `hcl:"min_players,optional"`
	HandSize   int `hcl:"hand_size,optional"`
}

// RandomSettings configures the local seed provider
type RandomSettings struct {
	// Seed fixes the seed stream for reproducible runs; 0 uses crypto
	// randomness.
	Seed    int64 `hcl:"seed,optional"`
	DelayMs int   `hcl:"delay_ms,optional"`
}

// WatchdogSettings configures the setup watchdog and registry cleanup
type WatchdogSettings struct {
	SweepIntervalSeconds    int `hcl:"sweep_interval_seconds,optional"`
	PendingThresholdSeconds int `hcl:"pending_threshold_seconds,optional"`
	EndedRetentionSeconds   int `hcl:"ended_retention_seconds,optional"`
}

// JournalSettings configures the per-game event journal
type JournalSettings struct {
	Enabled bool   `hcl:"enabled,optional"`
	Dir     string `hcl:"dir,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Game: GameSettings{
			MaxPlayers: 10,
			MinPlayers: 2,
			HandSize:   7,
		},
		Watchdog: WatchdogSettings{
			SweepIntervalSeconds:    5,
			PendingThresholdSeconds: 30,
			EndedRetentionSeconds:   300,
		},
		Journal: JournalSettings{
			Dir: "journal",
		},
	}
}

// rawServerConfig mirrors ServerConfig with optional blocks so partial
// config files decode cleanly.
type rawServerConfig struct {
	Server   *ServerSettings   `hcl:"server,block"`
	Game     *GameSettings     `hcl:"game,block"`
	Random   *RandomSettings   `hcl:"random,block"`
	Watchdog *WatchdogSettings `hcl:"watchdog,block"`
	Journal  *JournalSettings  `hcl:"journal,block"`
}

// LoadServerConfig loads server configuration from an HCL file,
// falling back to defaults when the file does not exist. Omitted blocks
// and fields keep their default values.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	config := DefaultServerConfig()

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return config, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw rawServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if raw.Server != nil {
		merged := config.Server
		if raw.Server.Address != "" {
			merged.Address = raw.Server.Address
		}
		if raw.Server.Port != 0 {
			merged.Port = raw.Server.Port
		}
		if raw.Server.LogLevel != "" {
			merged.LogLevel = raw.Server.LogLevel
		}
		merged.Structured = raw.Server.Structured
		config.Server = merged
	}
	if raw.Game != nil {
		merged := config.Game
		if raw.Game.MaxPlayers != 0 {
			merged.MaxPlayers = raw.Game.MaxPlayers
		}
		if raw.Game.MinPlayers != 0 {
			merged.MinPlayers = raw.Game.MinPlayers
		}
		if raw.Game.HandSize != 0 {
			merged.HandSize = raw.Game.HandSize
		}
		config.Game = merged
	}
	if raw.Random != nil {
		config.Random = *raw.Random
	}
	if raw.Watchdog != nil {
		merged := config.Watchdog
		if raw.Watchdog.SweepIntervalSeconds != 0 {
			merged.SweepIntervalSeconds = raw.Watchdog.SweepIntervalSeconds
		}
		if raw.Watchdog.PendingThresholdSeconds != 0 {
			merged.PendingThresholdSeconds = raw.Watchdog.PendingThresholdSeconds
		}
		if raw.Watchdog.EndedRetentionSeconds != 0 {
			merged.EndedRetentionSeconds = raw.Watchdog.EndedRetentionSeconds
		}
		config.Watchdog = merged
	}
	if raw.Journal != nil {
		merged := config.Journal
		merged.Enabled = raw.Journal.Enabled
		if raw.Journal.Dir != "" {
			merged.Dir = raw.Journal.Dir
		}
		config.Journal = merged
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks cross-field constraints
func (c *ServerConfig) Validate() error {
	if c.Game.MinPlayers < 2 {
		return fmt.Errorf("min_players must be at least 2, got %d", c.Game.MinPlayers)
	}
	if c.Game.MaxPlayers < c.Game.MinPlayers {
		return fmt.Errorf("max_players (%d) must be >= min_players (%d)", c.Game.MaxPlayers, c.Game.MinPlayers)
	}
	if c.Game.HandSize < 1 {
		return fmt.Errorf("hand_size must be at least 1, got %d", c.Game.HandSize)
	}
	return nil
}
