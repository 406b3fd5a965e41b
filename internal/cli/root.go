// Package cli wires the command line: train, play, evaluate and serve.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/rocketscienceinc/tictactoe-agent/internal/agent"
	"github.com/rocketscienceinc/tictactoe-agent/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-agent/internal/config"
	"github.com/rocketscienceinc/tictactoe-agent/internal/learning"
	"github.com/rocketscienceinc/tictactoe-agent/internal/qtable"
	"github.com/rocketscienceinc/tictactoe-agent/internal/repository"
	"github.com/rocketscienceinc/tictactoe-agent/internal/tictactoe"
)

type app struct {
	logger     *slog.Logger
	level      *slog.LevelVar
	rules      *tictactoe.Rules
	configPath string
	seed       uint64
}

// NewRootCommand builds the command tree. Console output goes to the command's
// out writer; logs go to logger. When level is not nil it follows log-level.
func NewRootCommand(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	a := &app{
		logger: logger,
		level:  level,
		rules:  tictactoe.NewRules(),
	}

	root := &cobra.Command{
		Use:           "tictactoe",
		Short:         "Tic-Tac-Toe with self-play Q-learning",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "config.yml", "Path to configuration file")
	root.PersistentFlags().Uint64Var(&a.seed, "seed", 0, "Random seed, 0 picks one")

	root.AddCommand(
		a.trainCommand(),
		a.playCommand(),
		a.evaluateCommand(),
		a.serveCommand(),
	)

	return root
}

func (that *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	conf, err := config.Load(that.configPath)
	if err != nil {
		return nil, err
	}

	if that.level != nil {
		that.level.Set(conf.Level())
	}

	if cmd.Flags().Changed("seed") {
		conf.Seed = that.seed
	}

	if conf.Seed == 0 {
		conf.Seed = rand.Uint64()
	}

	return conf, nil
}

func agentParams(conf *config.Config, ac config.Agent) agent.Params {
	return agent.Params{
		Alpha:        ac.Alpha,
		AlphaMin:     ac.AlphaMin,
		AlphaDecay:   ac.AlphaDecay,
		Gamma:        ac.Gamma,
		Epsilon:      ac.Epsilon,
		EpsilonMin:   ac.EpsilonMin,
		EpsilonDecay: ac.EpsilonDecay,
		Symmetry:     ac.Symmetry,
		TacticalWin:  ac.TacticalWin,
		Rewards: learning.Rewards{
			Win:  conf.Rewards.Win,
			Draw: conf.Rewards.Draw,
			Loss: conf.Rewards.Loss,
			Step: conf.Rewards.Step,
		},
	}
}

// loadTable reads a policy from source, or starts an empty table when source is empty.
func (that *app) loadTable(ctx context.Context, source string, defaultValue float64) (*qtable.Table, error) {
	if source == "" {
		return qtable.New(qtable.WithDefault(defaultValue)), nil
	}

	store, err := repository.OpenPolicyStore(ctx, source, repository.ForLoad, that.logger)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	table, err := store.Load(ctx, qtable.WithDefault(defaultValue))
	if err != nil {
		return nil, fmt.Errorf("failed to load policy %s: %w", source, err)
	}

	that.logger.Info("policy loaded", "source", source, "entries", table.Len())

	return table, nil
}

func (that *app) saveTable(ctx context.Context, destination string, table *qtable.Table) error {
	store, err := repository.OpenPolicyStore(ctx, destination, repository.ForSave, that.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err = store.Save(ctx, table); err != nil {
		return err
	}

	that.logger.Info("policy saved", "destination", destination, "entries", table.Len())

	return nil
}

// loadPolicyOrReport prints the user-facing message for a missing policy and
// returns a nil table in that case.
func (that *app) loadPolicyOrReport(cmd *cobra.Command, source string, defaultValue float64) (*qtable.Table, error) {
	table, err := that.loadTable(cmd.Context(), source, defaultValue)
	if errors.Is(err, apperror.ErrPolicyNotFound) {
		fmt.Fprintf(cmd.OutOrStdout(), "Error: Policy file '%s' not found\n", source)
		return nil, nil
	}

	return table, err
}
