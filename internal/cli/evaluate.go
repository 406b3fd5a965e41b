package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rocketscienceinc/tictactoe-agent/internal/agent"
	"github.com/rocketscienceinc/tictactoe-agent/internal/training"
)

func (that *app) evaluateCommand() *cobra.Command {
	var (
		policy string
		games  int
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Measure a policy against a random player",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := that.loadConfig(cmd)
			if err != nil {
				return err
			}

			ac := conf.Train.Agents.Agent1

			table, err := that.loadPolicyOrReport(cmd, policy, ac.DefaultValue)
			if err != nil || table == nil {
				return err
			}

			// frozen greedy policy: no exploration, no learning
			params := agentParams(conf, ac)
			params.Alpha, params.AlphaMin = 0, 0
			params.Epsilon, params.EpsilonMin, params.EpsilonDecay = 0, 0, 0

			learner := agent.NewLearner("evaluated", table, that.rules, params, conf.Seed, that.logger)
			opponent := agent.NewRandom(conf.Seed + 1)

			trainer := training.NewTrainer(that.rules, training.WithLogger(that.logger))

			outcomes, err := trainer.Run(cmd.Context(), learner, opponent, games, true)
			if err != nil {
				return fmt.Errorf("evaluation failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Evaluation over %d games: wins=%d draws=%d losses=%d\n",
				outcomes.Total(), outcomes.AWins, outcomes.Draw, outcomes.BWins)

			return nil
		},
	}

	cmd.Flags().StringVar(&policy, "policy", "", "Policy to evaluate")
	cmd.Flags().IntVar(&games, "games", 100, "Number of games, sides alternate")
	_ = cmd.MarkFlagRequired("policy")

	return cmd
}
