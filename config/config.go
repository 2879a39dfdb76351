// Package config loads the agent's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nstehr/vimy/vimy-scout/learn"
	"github.com/nstehr/vimy/vimy-scout/reward"
	"github.com/nstehr/vimy/vimy-scout/state"
	"github.com/nstehr/vimy/vimy-scout/store"
)

const envPrefix = "VIMY_SCOUT_"

type Config struct {
	Learning   learn.Params     `yaml:"learning"`
	Map        Map              `yaml:"map"`
	Footprints state.Footprints `yaml:"footprints"`
	Reward     reward.Config    `yaml:"reward"`
	// Rules overrides exclusion conditions, keyed by action kind name.
	Rules     map[string]string `yaml:"rules"`
	Storage   Storage           `yaml:"storage"`
	Transport Transport         `yaml:"transport"`
	Seed      int64             `yaml:"seed"`
}

type Map struct {
	Size     int `yaml:"size"`
	CellSize int `yaml:"cell_size"`
}

type Storage struct {
	TablePath   string `yaml:"table_path"`
	History     string `yaml:"history"` // "memory" or "sqlite"
	HistoryPath string `yaml:"history_path"`
}

type Transport struct {
	Socket       string `yaml:"socket"`
	WebSocketURL string `yaml:"websocket_url"`
	Validate     bool   `yaml:"validate"`
	// Compress sends zstd frames on the unix socket.
	Compress bool `yaml:"compress"`
}

func Default() Config {
	return Config{
		Learning:   learn.DefaultParams(),
		Map:        Map{Size: 64, CellSize: 16},
		Footprints: state.DefaultFootprints(),
		Reward:     reward.DefaultConfig(),
		Storage: Storage{
			TablePath:   store.DefaultFile,
			History:     "sqlite",
			HistoryPath: "scout_history.db",
		},
		Transport: Transport{
			Socket:   "/tmp/vimy-scout.sock",
			Validate: true,
		},
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
// A .env file in the working directory and VIMY_SCOUT_* variables are
// applied afterwards.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf(".env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"TABLE_PATH":    &c.Storage.TablePath,
		"HISTORY":       &c.Storage.History,
		"HISTORY_PATH":  &c.Storage.HistoryPath,
		"SOCKET":        &c.Transport.Socket,
		"WEBSOCKET_URL": &c.Transport.WebSocketURL,
	}
	for name, dst := range strs {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}
	floats := map[string]*float64{
		"EPSILON":       &c.Learning.Epsilon,
		"LEARNING_RATE": &c.Learning.LearningRate,
		"DISCOUNT":      &c.Learning.Discount,
	}
	for name, dst := range floats {
		v, ok := lookup(envPrefix + name)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = f
	}
	if v, ok := lookup(envPrefix + "SEED"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sSEED: %w", envPrefix, err)
		}
		c.Seed = n
	}
	return nil
}

// normalize clamps the learning parameters into [0,1] and restores defaults
// for geometry that would make the quadrant grid degenerate.
func (c *Config) normalize() {
	c.Learning.Epsilon = clamp01(c.Learning.Epsilon)
	c.Learning.LearningRate = clamp01(c.Learning.LearningRate)
	c.Learning.Discount = clamp01(c.Learning.Discount)

	def := Default()
	if c.Map.Size <= 0 {
		c.Map.Size = def.Map.Size
	}
	if c.Map.CellSize <= 0 || c.Map.CellSize > c.Map.Size {
		c.Map.CellSize = c.Map.Size / 4
	}
	fp := &c.Footprints
	if fp.SupplyDepot <= 0 {
		fp.SupplyDepot = def.Footprints.SupplyDepot
	}
	if fp.Barracks <= 0 {
		fp.Barracks = def.Footprints.Barracks
	}
	if fp.Turret <= 0 {
		fp.Turret = def.Footprints.Turret
	}
	if fp.Refinery <= 0 {
		fp.Refinery = def.Footprints.Refinery
	}
	if c.Storage.TablePath == "" {
		c.Storage.TablePath = def.Storage.TablePath
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
