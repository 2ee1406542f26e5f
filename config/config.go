// Package config loads the run-file used by the CLI and server: account and
// cost parameters, engine policy, data paths and journal settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Saransh-28/backtester/backtest"
)

// Config is the complete file-level run configuration.
type Config struct {
	Account AccountConfig `json:"account" yaml:"account"`
	Costs   CostsConfig   `json:"costs" yaml:"costs"`
	Engine  EngineConfig  `json:"engine" yaml:"engine"`
	Data    DataConfig    `json:"data" yaml:"data"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
}

// AccountConfig sets the starting equity of the simulated account.
type AccountConfig struct {
	InitialEquity float64 `json:"initial_equity" yaml:"initial_equity"`
}

// CostsConfig sets the per-fill cost model.
type CostsConfig struct {
	EntryFeeRate float64 `json:"entry_fee_rate" yaml:"entry_fee_rate"`
	ExitFeeRate  float64 `json:"exit_fee_rate" yaml:"exit_fee_rate"`
	SlippageRate float64 `json:"slippage_rate" yaml:"slippage_rate"`
}

// EngineConfig sets engine policy knobs.
type EngineConfig struct {
	// TieBreak: "stop_first" (default) or "take_first".
	TieBreak string `json:"tie_break,omitempty" yaml:"tie_break,omitempty"`
}

// DataConfig points at the input files. Both accept .csv or .csv.xz.
type DataConfig struct {
	Bars    string `json:"bars" yaml:"bars"`
	Signals string `json:"signals" yaml:"signals"`
}

// JournalConfig selects where results are persisted.
type JournalConfig struct {
	Type   string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	Dir    string `json:"dir,omitempty" yaml:"dir,omitempty"`
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file, YAML first with a JSON
// fallback, and validates it.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration, format chosen by extension.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.Account.InitialEquity <= 0 {
		return fmt.Errorf("account.initial_equity must be positive")
	}
	if c.Costs.EntryFeeRate < 0 || c.Costs.ExitFeeRate < 0 {
		return fmt.Errorf("costs fee rates must be >= 0")
	}
	if c.Costs.SlippageRate < 0 {
		return fmt.Errorf("costs.slippage_rate must be >= 0")
	}
	switch c.Engine.TieBreak {
	case "", string(backtest.StopLossFirst), string(backtest.TakeProfitFirst):
	default:
		return fmt.Errorf("engine.tie_break must be %q or %q", backtest.StopLossFirst, backtest.TakeProfitFirst)
	}
	if c.Data.Bars == "" {
		return fmt.Errorf("data.bars is required")
	}
	if c.Data.Signals == "" {
		return fmt.Errorf("data.signals is required")
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.Dir == "" {
			return fmt.Errorf("journal.dir required for csv journal")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for sqlite journal")
		}
	case "none", "":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	return nil
}

// TieBreak converts the configured policy name to the engine type.
func (c *Config) TieBreak() backtest.TieBreak {
	if c.Engine.TieBreak == string(backtest.TakeProfitFirst) {
		return backtest.TakeProfitFirst
	}
	return backtest.StopLossFirst
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{InitialEquity: 10_000},
		Costs: CostsConfig{
			EntryFeeRate: 0.0005,
			ExitFeeRate:  0.0005,
			SlippageRate: 0.0002,
		},
		Engine: EngineConfig{TieBreak: string(backtest.StopLossFirst)},
		Data: DataConfig{
			Bars:    "./bars.csv",
			Signals: "./signals.csv",
		},
		Journal: JournalConfig{
			Type: "csv",
			Dir:  "./results",
		},
	}
}
