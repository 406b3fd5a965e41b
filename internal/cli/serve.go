package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rocketscienceinc/tictactoe-agent/internal/agent"
	"github.com/rocketscienceinc/tictactoe-agent/transport/rest"
)

const shutdownTimeout = 5 * time.Second

func (that *app) serveCommand() *cobra.Command {
	var (
		policy string
		port   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve moves of a trained policy over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := that.loadConfig(cmd)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("policy") {
				conf.Serve.Policy = policy
			}
			if cmd.Flags().Changed("port") {
				conf.Serve.HTTPPort = port
			}

			if conf.Serve.Policy == "" {
				return errors.New("a policy is required: set --policy or serve.policy")
			}

			ac := conf.Train.Agents.Agent1

			table, err := that.loadPolicyOrReport(cmd, conf.Serve.Policy, ac.DefaultValue)
			if err != nil || table == nil {
				return err
			}

			params := agentParams(conf, ac)
			params.Epsilon, params.EpsilonMin = 0, 0

			learner := agent.NewLearner("served", table, that.rules, params, conf.Seed, that.logger)

			router := rest.NewRouter(rest.NewPingHandler(), rest.NewMoveHandler(that.logger, that.rules, learner))
			server := rest.NewServer(that.logger, conf.Serve.HTTPPort, router)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			select {
			case err = <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err = server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			return <-errCh
		},
	}

	cmd.Flags().StringVar(&policy, "policy", "", "Policy to serve")
	cmd.Flags().StringVar(&port, "port", "", "HTTP port, overrides serve.http-port")

	return cmd
}
