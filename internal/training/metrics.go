package training

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// episodesTotal counts finished episodes by outcome
	episodesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tictactoe_training_episodes_total",
		Help: "Total finished episodes by outcome",
	}, []string{"outcome"})

	// movesTotal counts plies played across all episodes
	movesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tictactoe_training_moves_total",
		Help: "Total moves played",
	})

	learnerEpsilon = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tictactoe_learner_epsilon",
		Help: "Current exploration rate per learner",
	}, []string{"learner"})

	learnerAlpha = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tictactoe_learner_alpha",
		Help: "Current learning rate per learner",
	}, []string{"learner"})

	tableEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tictactoe_qtable_entries",
		Help: "Stored state-action values per learner",
	}, []string{"learner"})
)

func outcomeLabel(outcome string) string {
	switch outcome {
	case "X":
		return "x"
	case "O":
		return "o"
	default:
		return "draw"
	}
}
