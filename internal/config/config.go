package config

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/blackjack/internal/game"
)

// Config represents the complete blackjack configuration
type Config struct {
	Table      *TableSettings      `hcl:"table,block"`
	UI         *UISettings         `hcl:"ui,block"`
	Server     *ServerSettings     `hcl:"server,block"`
	Simulation *SimulationSettings `hcl:"simulation,block"`
}

// TableSettings contains the names at the table and the shuffle seed
type TableSettings struct {
	PlayerName string `hcl:"player_name,optional"`
	DealerName string `hcl:"dealer_name,optional"`
	Seed       int64  `hcl:"seed,optional"` // 0 seeds from system entropy
}

// UISettings contains user interface settings
type UISettings struct {
	Mode     string `hcl:"mode,optional"`
	Color    *bool  `hcl:"color,optional"`
	LogFile  string `hcl:"log_file,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// ServerSettings contains the WebSocket listener settings
type ServerSettings struct {
	Address string `hcl:"address,optional"`
	Port    int    `hcl:"port,optional"`
}

// SimulationSettings contains defaults for the simulate command
type SimulationSettings struct {
	Rounds  int `hcl:"rounds,optional"`
	Workers int `hcl:"workers,optional"`
	StandOn int `hcl:"stand_on,optional"`
}

// UI modes
const (
	ModeConsole = "console"
	ModeTUI     = "tui"
)

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	color := true
	return &Config{
		Table: &TableSettings{
			PlayerName: game.DefaultPlayerName,
			DealerName: game.DefaultDealerName,
		},
		UI: &UISettings{
			Mode:     ModeConsole,
			Color:    &color,
			LogFile:  "blackjack.log",
			LogLevel: "info",
		},
		Server: &ServerSettings{
			Address: "localhost",
			Port:    8080,
		},
		Simulation: &SimulationSettings{
			Rounds:  100000,
			Workers: 4,
			StandOn: game.DealerStandsOn,
		},
	}
}

// Load loads configuration from an HCL file. A missing file yields the
// defaults.
func Load(filename string) (*Config, error) {
	if filename == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	return decode(file, diags)
}

// Parse parses configuration from HCL source
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	return decode(file, diags)
}

func decode(file *hcl.File, diags hcl.Diagnostics) (*Config, error) {
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills anything the file left unset
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Table == nil {
		c.Table = defaults.Table
	}
	if c.Table.PlayerName == "" {
		c.Table.PlayerName = defaults.Table.PlayerName
	}
	if c.Table.DealerName == "" {
		c.Table.DealerName = defaults.Table.DealerName
	}

	if c.UI == nil {
		c.UI = defaults.UI
	}
	if c.UI.Mode == "" {
		c.UI.Mode = defaults.UI.Mode
	}
	if c.UI.Color == nil {
		c.UI.Color = defaults.UI.Color
	}
	if c.UI.LogFile == "" {
		c.UI.LogFile = defaults.UI.LogFile
	}
	if c.UI.LogLevel == "" {
		c.UI.LogLevel = defaults.UI.LogLevel
	}

	if c.Server == nil {
		c.Server = defaults.Server
	}
	if c.Server.Address == "" {
		c.Server.Address = defaults.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaults.Server.Port
	}

	if c.Simulation == nil {
		c.Simulation = defaults.Simulation
	}
	if c.Simulation.Rounds == 0 {
		c.Simulation.Rounds = defaults.Simulation.Rounds
	}
	if c.Simulation.Workers == 0 {
		c.Simulation.Workers = defaults.Simulation.Workers
	}
	if c.Simulation.StandOn == 0 {
		c.Simulation.StandOn = defaults.Simulation.StandOn
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Table.PlayerName == "" {
		return fmt.Errorf("player name is required")
	}
	if c.Table.DealerName == "" {
		return fmt.Errorf("dealer name is required")
	}
	if c.Table.PlayerName == c.Table.DealerName {
		return fmt.Errorf("player and dealer names must differ, both are %q", c.Table.PlayerName)
	}

	validModes := map[string]bool{
		ModeConsole: true,
		ModeTUI:     true,
	}
	if !validModes[c.UI.Mode] {
		return fmt.Errorf("invalid ui mode: %s", c.UI.Mode)
	}

	if _, err := log.ParseLevel(c.UI.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %s", c.UI.LogLevel)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Simulation.Rounds <= 0 {
		return fmt.Errorf("simulation rounds must be positive")
	}
	if c.Simulation.Workers <= 0 {
		return fmt.Errorf("simulation workers must be positive")
	}
	if c.Simulation.StandOn < 4 || c.Simulation.StandOn > game.BlackjackTotal {
		return fmt.Errorf("simulation stand_on must be between 4 and 21, got %d", c.Simulation.StandOn)
	}

	return nil
}

// LogLevel returns the configured log level
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.UI.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// ColorEnabled returns whether coloured output is enabled
func (c *Config) ColorEnabled() bool {
	return c.UI.Color == nil || *c.UI.Color
}

// ServerAddress returns the full listen address
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
