package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rocketscienceinc/tictactoe-agent/internal/agent"
	"github.com/rocketscienceinc/tictactoe-agent/internal/entity"
	"github.com/rocketscienceinc/tictactoe-agent/internal/training"
)

func (that *app) playCommand() *cobra.Command {
	var (
		policy  string
		aiFirst bool
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play against a trained agent",
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

			learner := agent.NewLearner("ai", table, that.rules, agentParams(conf, ac), conf.Seed, that.logger)
			stored := learner.SetEpsilon(0)
			defer learner.SetEpsilon(stored)

			out := cmd.OutOrStdout()
			human := agent.NewHuman(cmd.InOrStdin(), out)

			trainer := training.NewTrainer(that.rules,
				training.WithLogger(that.logger),
				training.WithObserver(func(state entity.State) {
					fmt.Fprint(out, state.Render())
				}),
			)

			fmt.Fprintln(out, "Game starting! Positions are numbered 0-8, left to right, top to bottom")

			x, o := agent.Player(human), agent.Player(learner)
			humanMark := entity.PlayerX
			if aiFirst {
				x, o = o, x
				humanMark = entity.PlayerO
			}

			outcome, _, err := trainer.Play(cmd.Context(), x, o)
			if err != nil {
				return fmt.Errorf("game aborted: %w", err)
			}

			switch outcome {
			case entity.OutcomeDraw:
				fmt.Fprintln(out, "It's a draw!")
			case entity.OutcomeFor(humanMark):
				fmt.Fprintln(out, "You win!")
			default:
				fmt.Fprintln(out, "AI wins!")
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&policy, "policy", "", "Policy file for loading")
	cmd.Flags().BoolVar(&aiFirst, "ai-first", false, "AI plays first")
	_ = cmd.MarkFlagRequired("policy")

	return cmd
}
