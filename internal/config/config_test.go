package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Given: no config file
	path := filepath.Join(t.TempDir(), "missing.yml")

	// When: Load is called
	conf, err := Load(path)

	// Then: the defaults are used
	require.NoError(t, err)
	assert.Equal(t, "info", conf.LogLevel)
	assert.Equal(t, 100, conf.Train.Episodes)
	assert.True(t, conf.Train.SwitchSides())
	assert.Equal(t, 1, conf.Train.Workers)
	assert.InDelta(t, 0.1, conf.Train.Agents.Agent1.Alpha, 1e-12)
	assert.InDelta(t, 0.9, conf.Train.Agents.Agent2.Gamma, 1e-12)
	assert.InDelta(t, 1.0, conf.Train.Agents.Agent1.AlphaDecay, 1e-12)
	assert.InDelta(t, 0.5, conf.Rewards.Draw, 1e-12)
	assert.InDelta(t, -1.0, conf.Rewards.Loss, 1e-12)
	assert.Equal(t, "9090", conf.Serve.HTTPPort)
}

func TestLoad_File(t *testing.T) {
	// Given: a config file overriding some keys
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
log-level: debug
seed: 7
train:
  episodes: 5000
  single-agent: true
  fixed-sides: true
  agents:
    agent1:
      alpha: 0.3
      epsilon: 0.2
      epsilon-decay: 0.0001
      symmetry: true
      policy-out: agent1.json
rewards:
  draw: 0.25
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// When: Load is called
	conf, err := Load(path)

	// Then: file values win and the rest keep their defaults
	require.NoError(t, err)
	assert.Equal(t, "debug", conf.LogLevel)
	assert.Equal(t, uint64(7), conf.Seed)
	assert.Equal(t, 5000, conf.Train.Episodes)
	assert.True(t, conf.Train.SingleAgent)
	assert.False(t, conf.Train.SwitchSides())

	agent1 := conf.Train.Agents.Agent1
	assert.InDelta(t, 0.3, agent1.Alpha, 1e-12)
	assert.InDelta(t, 0.2, agent1.Epsilon, 1e-12)
	assert.InDelta(t, 0.0001, agent1.EpsilonDecay, 1e-12)
	assert.InDelta(t, 0.9, agent1.Gamma, 1e-12)
	assert.True(t, agent1.Symmetry)
	assert.Equal(t, "agent1.json", agent1.PolicyOut)
	assert.InDelta(t, 0.25, conf.Rewards.Draw, 1e-12)
	assert.InDelta(t, 1.0, conf.Rewards.Win, 1e-12)
}

func TestLoad_ZeroValuesAreKept(t *testing.T) {
	// Given: a config file setting tuning keys to zero
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
train:
  log-every: 0
  agents:
    agent1:
      epsilon: 0
      gamma: 0
rewards:
  draw: 0
  loss: 0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// When: Load is called
	conf, err := Load(path)

	// Then: the zeros are not replaced by defaults
	require.NoError(t, err)
	assert.Zero(t, conf.Train.LogEvery)
	assert.Zero(t, conf.Train.Agents.Agent1.Epsilon)
	assert.Zero(t, conf.Train.Agents.Agent1.Gamma)
	assert.Zero(t, conf.Rewards.Draw)
	assert.Zero(t, conf.Rewards.Loss)

	// And: keys left out of the file keep their defaults
	assert.InDelta(t, 0.1, conf.Train.Agents.Agent1.Alpha, 1e-12)
	assert.InDelta(t, 0.1, conf.Train.Agents.Agent2.Epsilon, 1e-12)
	assert.InDelta(t, 1.0, conf.Rewards.Win, 1e-12)
}

func TestLoad_EnvOverride(t *testing.T) {
	// Given: an environment override
	t.Setenv("TICTACTOE_HTTP_PORT", "8181")

	// When: Load is called without a file
	conf, err := Load("")

	// Then: the environment value is used
	require.NoError(t, err)
	assert.Equal(t, "8181", conf.Serve.HTTPPort)
}

func TestMustLoad_PanicsOnBrokenFile(t *testing.T) {
	// Given: a file that is not YAML
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("train: [unclosed"), 0o600))

	// Then: MustLoad panics
	assert.Panics(t, func() {
		MustLoad(path)
	})
}

func TestConfig_Level(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "info", want: slog.LevelInfo},
		{in: "WARN", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "verbose", want: slog.LevelInfo},
	}

	for _, tc := range tests {
		conf := &Config{LogLevel: tc.in}
		assert.Equal(t, tc.want, conf.Level(), tc.in)
	}
}
