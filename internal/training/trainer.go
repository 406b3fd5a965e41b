// Package training runs self-play episodes between two players.
package training

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-agent/internal/agent"
	"github.com/rocketscienceinc/tictactoe-agent/internal/entity"
	"github.com/rocketscienceinc/tictactoe-agent/internal/qtable"
	"github.com/rocketscienceinc/tictactoe-agent/internal/tictactoe"
)

// Outcomes counts results both by seat and by player.
type Outcomes struct {
	X     int `json:"X"`
	O     int `json:"O"`
	Draw  int `json:"draw"`
	AWins int `json:"agent1"`
	BWins int `json:"agent2"`
}

func (that Outcomes) Total() int {
	return that.X + that.O + that.Draw
}

// decayer is implemented by players whose schedules advance per episode.
type decayer interface {
	Decay()
}

// learnerStats is implemented by players that expose their schedules as metrics.
type learnerStats interface {
	Name() string
	Epsilon() float64
	Alpha() float64
	Table() *qtable.Table
}

type Trainer struct {
	rules    *tictactoe.Rules
	logger   *slog.Logger
	workers  int
	logEvery int
	observer func(state entity.State)
}

type Option func(t *Trainer)

// WithWorkers spreads episodes over n goroutines.
func WithWorkers(n int) Option {
	return func(t *Trainer) {
		if n > 0 {
			t.workers = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(t *Trainer) {
		t.logger = logger
	}
}

// WithLogEvery logs progress every n episodes; zero disables it.
func WithLogEvery(n int) Option {
	return func(t *Trainer) {
		t.logEvery = n
	}
}

// WithObserver is called with the board before the first move and after every move.
func WithObserver(fn func(state entity.State)) Option {
	return func(t *Trainer) {
		t.observer = fn
	}
}

func NewTrainer(rules *tictactoe.Rules, options ...Option) *Trainer {
	t := &Trainer{
		rules:   rules,
		logger:  slog.Default(),
		workers: 1,
	}
	for _, option := range options {
		option(t)
	}
	return t
}

// Play runs one episode with x moving first.
func (that *Trainer) Play(ctx context.Context, x, o agent.Player) (entity.Outcome, *entity.Episode, error) {
	game := tictactoe.NewGame(that.rules)
	seats := map[entity.Mark]agent.Player{
		entity.PlayerX: x,
		entity.PlayerO: o,
	}

	that.observe(game.State())

	for !game.IsFinished() {
		if err := ctx.Err(); err != nil {
			return entity.OutcomeNone, game.Episode(), fmt.Errorf("episode interrupted: %w", err)
		}

		mark := game.Turn()
		player := seats[mark]

		action, err := player.ChooseAction(game.State(), game.AvailableActions())
		if err != nil {
			return entity.OutcomeNone, game.Episode(), fmt.Errorf("player %s failed to choose: %w", mark, err)
		}

		if err = game.MakeTurn(action); err != nil {
			return entity.OutcomeNone, game.Episode(), fmt.Errorf("player %s: %w", mark, err)
		}

		movesTotal.Inc()
		that.observe(game.State())

		if !game.IsFinished() {
			if err = player.Learn(game.Episode()); err != nil {
				return entity.OutcomeNone, game.Episode(), fmt.Errorf("player %s failed to learn: %w", mark, err)
			}
		}
	}

	ep := game.Episode()
	for _, mark := range []entity.Mark{entity.PlayerX, entity.PlayerO} {
		if err := seats[mark].Conclude(ep, mark); err != nil {
			return game.Outcome(), ep, fmt.Errorf("player %s failed to conclude: %w", mark, err)
		}
	}

	episodesTotal.WithLabelValues(outcomeLabel(string(game.Outcome()))).Inc()

	return game.Outcome(), ep, nil
}

// Run plays episodes between a and b. With switchSides, a takes X on even
// episodes and b on odd ones; otherwise a is always X.
func (that *Trainer) Run(ctx context.Context, a, b agent.Player, episodes int, switchSides bool) (Outcomes, error) {
	logger := that.logger.With("method", "Run", "run_id", uuid.NewString())
	logger.Info("training started", "episodes", episodes, "workers", that.workers, "switch_sides", switchSides)

	var (
		mu       sync.Mutex
		outcomes Outcomes
		next     atomic.Int64
	)

	g, ctx := errgroup.WithContext(ctx)

	for w := 0; w < that.workers; w++ {
		g.Go(func() error {
			for {
				i := int(next.Add(1) - 1)
				if i >= episodes {
					return nil
				}

				x, o := a, b
				if switchSides && i%2 == 1 {
					x, o = b, a
				}

				outcome, _, err := that.Play(ctx, x, o)
				if err != nil {
					return fmt.Errorf("episode %d: %w", i, err)
				}

				that.decay(a, b)

				mu.Lock()
				outcomes.record(outcome, x == a)
				snapshot := outcomes
				mu.Unlock()

				if that.logEvery > 0 && (i+1)%that.logEvery == 0 {
					logger.Info("training progress", "episode", i+1, "outcomes", snapshot)
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("training failed", "error", err)
		return outcomes, err
	}

	logger.Info("training finished", "outcomes", outcomes)

	return outcomes, nil
}

func (that *Outcomes) record(outcome entity.Outcome, aIsX bool) {
	switch outcome {
	case entity.OutcomeX:
		that.X++
		if aIsX {
			that.AWins++
		} else {
			that.BWins++
		}
	case entity.OutcomeO:
		that.O++
		if aIsX {
			that.BWins++
		} else {
			that.AWins++
		}
	case entity.OutcomeDraw:
		that.Draw++
	}
}

// decay advances each distinct player once, so self-play decays a single time.
func (that *Trainer) decay(a, b agent.Player) {
	players := []agent.Player{a}
	if b != a {
		players = append(players, b)
	}

	for _, p := range players {
		if d, ok := p.(decayer); ok {
			d.Decay()
		}

		if s, ok := p.(learnerStats); ok {
			learnerEpsilon.WithLabelValues(s.Name()).Set(s.Epsilon())
			learnerAlpha.WithLabelValues(s.Name()).Set(s.Alpha())
			tableEntries.WithLabelValues(s.Name()).Set(float64(s.Table().Len()))
		}
	}
}

func (that *Trainer) observe(state entity.State) {
	if that.observer != nil {
		that.observer(state)
	}
}
