package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rocketscienceinc/tictactoe-agent/internal/agent"
	"github.com/rocketscienceinc/tictactoe-agent/internal/config"
	"github.com/rocketscienceinc/tictactoe-agent/internal/training"
)

type trainFlags struct {
	episodes    int
	alpha       float64
	gamma       float64
	epsilon     float64
	policyIn    string
	policyOut   string
	singleAgent bool
	workers     int
}

func (that *app) trainCommand() *cobra.Command {
	var flags trainFlags

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the agents by self-play",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := that.loadConfig(cmd)
			if err != nil {
				return err
			}

			applyTrainFlags(cmd, &flags, conf)

			return that.runTrain(cmd, conf)
		},
	}

	cmd.Flags().IntVar(&flags.episodes, "episodes", 0, "Number of training episodes")
	cmd.Flags().Float64Var(&flags.alpha, "alpha", 0, "Learning rate for both agents")
	cmd.Flags().Float64Var(&flags.gamma, "gamma", 0, "Discount factor for both agents")
	cmd.Flags().Float64Var(&flags.epsilon, "epsilon", 0, "Exploration rate for both agents")
	cmd.Flags().StringVar(&flags.policyIn, "policy-in", "", "Policy to start agent 1 from")
	cmd.Flags().StringVar(&flags.policyOut, "policy-out", "", "Where to save agent 1's policy")
	cmd.Flags().BoolVar(&flags.singleAgent, "single-agent", false, "Train one agent against itself")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Parallel episode workers")

	return cmd
}

func applyTrainFlags(cmd *cobra.Command, flags *trainFlags, conf *config.Config) {
	changed := cmd.Flags().Changed
	agents := []*config.Agent{&conf.Train.Agents.Agent1, &conf.Train.Agents.Agent2}

	if changed("episodes") {
		conf.Train.Episodes = flags.episodes
	}
	if changed("workers") {
		conf.Train.Workers = flags.workers
	}
	if changed("single-agent") {
		conf.Train.SingleAgent = flags.singleAgent
	}
	if changed("policy-in") {
		conf.Train.Agents.Agent1.PolicyIn = flags.policyIn
	}
	if changed("policy-out") {
		conf.Train.Agents.Agent1.PolicyOut = flags.policyOut
	}

	for _, ac := range agents {
		if changed("alpha") {
			ac.Alpha = flags.alpha
		}
		if changed("gamma") {
			ac.Gamma = flags.gamma
		}
		if changed("epsilon") {
			ac.Epsilon = flags.epsilon
		}
	}
}

func (that *app) runTrain(cmd *cobra.Command, conf *config.Config) error {
	ctx := cmd.Context()
	agents := conf.Train.Agents

	params1 := agentParams(conf, agents.Agent1)
	if err := params1.Validate(); err != nil {
		return fmt.Errorf("agent 1: %w", err)
	}

	params2 := agentParams(conf, agents.Agent2)
	if !conf.Train.SingleAgent {
		if err := params2.Validate(); err != nil {
			return fmt.Errorf("agent 2: %w", err)
		}
	}

	table1, err := that.loadTable(ctx, agents.Agent1.PolicyIn, agents.Agent1.DefaultValue)
	if err != nil {
		return fmt.Errorf("agent 1: %w", err)
	}
	agent1 := agent.NewLearner("agent1", table1, that.rules, params1, conf.Seed, that.logger)

	agent2 := agent1
	if !conf.Train.SingleAgent {
		table2, err := that.loadTable(ctx, agents.Agent2.PolicyIn, agents.Agent2.DefaultValue)
		if err != nil {
			return fmt.Errorf("agent 2: %w", err)
		}
		agent2 = agent.NewLearner("agent2", table2, that.rules, params2, conf.Seed+1, that.logger)
	}

	trainer := training.NewTrainer(that.rules,
		training.WithLogger(that.logger),
		training.WithWorkers(conf.Train.Workers),
		training.WithLogEvery(conf.Train.LogEvery),
	)

	outcomes, err := trainer.Run(ctx, agent1, agent2, conf.Train.Episodes, conf.Train.SwitchSides())
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Results: X=%d O=%d draw=%d\n", outcomes.X, outcomes.O, outcomes.Draw)
	fmt.Fprintf(out, "Wins: agent1=%d agent2=%d draw=%d\n", outcomes.AWins, outcomes.BWins, outcomes.Draw)

	if dest := agents.Agent1.PolicyOut; dest != "" {
		if err = that.saveTable(ctx, dest, agent1.Table()); err != nil {
			return fmt.Errorf("agent 1: %w", err)
		}
	}

	if dest := agents.Agent2.PolicyOut; dest != "" {
		if err = that.saveTable(ctx, dest, agent2.Table()); err != nil {
			return fmt.Errorf("agent 2: %w", err)
		}
	}

	return nil
}
