package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel string  `yaml:"log-level" env:"TICTACTOE_LOG_LEVEL" env-default:"info"`
	Seed     uint64  `yaml:"seed" env:"TICTACTOE_SEED" env-default:"0"`
	Train    Train   `yaml:"train"`
	Rewards  Rewards `yaml:"rewards"`
	Serve    Serve   `yaml:"serve"`
}

type Train struct {
	Episodes    int    `yaml:"episodes"`
	SingleAgent bool   `yaml:"single-agent"`
	FixedSides  bool   `yaml:"fixed-sides"`
	Workers     int    `yaml:"workers"`
	LogEvery    int    `yaml:"log-every"`
	Agents      Agents `yaml:"agents"`
}

// SwitchSides reports whether the agents alternate the first move.
func (that Train) SwitchSides() bool {
	return !that.FixedSides
}

type Agents struct {
	Agent1 Agent `yaml:"agent1"`
	Agent2 Agent `yaml:"agent2"`
}

type Agent struct {
	Alpha        float64 `yaml:"alpha"`
	AlphaMin     float64 `yaml:"alpha-min"`
	AlphaDecay   float64 `yaml:"alpha-decay"`
	Gamma        float64 `yaml:"gamma"`
	Epsilon      float64 `yaml:"epsilon"`
	EpsilonMin   float64 `yaml:"epsilon-min"`
	EpsilonDecay float64 `yaml:"epsilon-decay"`
	DefaultValue float64 `yaml:"default-value"`
	Symmetry     bool    `yaml:"symmetry"`
	TacticalWin  bool    `yaml:"tactical-win"`
	PolicyIn     string  `yaml:"policy-in"`
	PolicyOut    string  `yaml:"policy-out"`
}

type Rewards struct {
	Win  float64 `yaml:"win"`
	Draw float64 `yaml:"draw"`
	Loss float64 `yaml:"loss"`
	Step float64 `yaml:"step"`
}

// Default returns the configuration used for every key the file leaves out.
// An explicit zero in the file overrides these values.
func Default() *Config {
	agent := Agent{
		Alpha:      0.1,
		AlphaDecay: 1,
		Gamma:      0.9,
		Epsilon:    0.1,
	}

	return &Config{
		Train: Train{
			Episodes: 100,
			Workers:  1,
			LogEvery: 1000,
			Agents:   Agents{Agent1: agent, Agent2: agent},
		},
		Rewards: Rewards{Win: 1, Draw: 0.5, Loss: -1},
	}
}

type Serve struct {
	HTTPPort string `yaml:"http-port" env:"TICTACTOE_HTTP_PORT" env-default:"9090"`
	Policy   string `yaml:"policy" env:"TICTACTOE_POLICY"`
}

// Load reads the YAML file at path; environment variables override it.
// An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			if err = cleanenv.ReadConfig(path, config); err != nil {
				return nil, fmt.Errorf("unable to load config file %s: %w", path, err)
			}
			return config, nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("unable to stat config file %s: %w", path, err)
		}
	}

	if err := cleanenv.ReadEnv(config); err != nil {
		return nil, fmt.Errorf("unable to load config from environment: %w", err)
	}

	return config, nil
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Level maps log-level to slog; unknown values mean info.
func (that *Config) Level() slog.Level {
	switch strings.ToLower(that.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
