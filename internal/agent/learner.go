package agent

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/rocketscienceinc/tictactoe-agent/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-agent/internal/entity"
	"github.com/rocketscienceinc/tictactoe-agent/internal/learning"
	"github.com/rocketscienceinc/tictactoe-agent/internal/qtable"
	"github.com/rocketscienceinc/tictactoe-agent/internal/tictactoe"
)

type Params struct {
	Alpha        float64
	AlphaMin     float64
	AlphaDecay   float64
	Gamma        float64
	Epsilon      float64
	EpsilonMin   float64
	EpsilonDecay float64
	Symmetry     bool
	TacticalWin  bool
	Rewards      learning.Rewards
}

// DefaultParams has no decay: alpha is multiplied by 1 and epsilon reduced by 0.
func DefaultParams() Params {
	return Params{
		Alpha:      0.1,
		AlphaDecay: 1,
		Gamma:      0.9,
		Epsilon:    0.1,
		Rewards:    learning.DefaultRewards(),
	}
}

// Validate rejects rates outside [0, 1] and decay settings that would make a
// schedule grow.
func (that Params) Validate() error {
	unit := []struct {
		name  string
		value float64
	}{
		{"alpha", that.Alpha},
		{"alpha-min", that.AlphaMin},
		{"alpha-decay", that.AlphaDecay},
		{"gamma", that.Gamma},
		{"epsilon", that.Epsilon},
		{"epsilon-min", that.EpsilonMin},
	}

	for _, p := range unit {
		if p.value < 0 || p.value > 1 || math.IsNaN(p.value) {
			return fmt.Errorf("%w: %s must be within [0, 1], got %v", apperror.ErrInvalidParams, p.name, p.value)
		}
	}

	if that.EpsilonDecay < 0 || math.IsNaN(that.EpsilonDecay) {
		return fmt.Errorf("%w: epsilon-decay must not be negative, got %v", apperror.ErrInvalidParams, that.EpsilonDecay)
	}

	return nil
}

// Learner is an epsilon-greedy Q agent. It is safe for use by several
// goroutines; the value table does its own locking.
type Learner struct {
	name    string
	rules   *tictactoe.Rules
	updater *learning.Updater
	logger  *slog.Logger

	mu     sync.Mutex
	params Params
	rng    *rand.Rand
}

func NewLearner(name string, table *qtable.Table, rules *tictactoe.Rules, params Params, seed uint64, logger *slog.Logger) *Learner {
	l := &Learner{
		name:   name,
		rules:  rules,
		logger: logger.With("component", "learner", "name", name),
		params: params,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}

	l.updater = learning.NewUpdater(table, rules, learning.Params{
		Gamma:    params.Gamma,
		Rewards:  params.Rewards,
		Symmetry: params.Symmetry,
	}, l.Alpha)

	return l
}

func (that *Learner) Name() string {
	return that.name
}

func (that *Learner) Table() *qtable.Table {
	return that.updater.Table()
}

func (that *Learner) Epsilon() float64 {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.params.Epsilon
}

func (that *Learner) Alpha() float64 {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.params.Alpha
}

// SetEpsilon replaces the exploration rate and returns the previous one.
func (that *Learner) SetEpsilon(epsilon float64) float64 {
	that.mu.Lock()
	defer that.mu.Unlock()

	prev := that.params.Epsilon
	that.params.Epsilon = epsilon

	return prev
}

// Decay advances the schedules by one episode. Neither rate ever goes up:
// a floor above the current value leaves the value unchanged.
func (that *Learner) Decay() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.params.Epsilon = min(that.params.Epsilon, max(that.params.EpsilonMin, that.params.Epsilon-that.params.EpsilonDecay))
	that.params.Alpha = min(that.params.Alpha, max(that.params.AlphaMin, that.params.Alpha*that.params.AlphaDecay))
}

// Value is the learned value of playing action in state.
func (that *Learner) Value(state entity.State, action int) float64 {
	return that.updater.Value(state, action)
}

func (that *Learner) ChooseAction(state entity.State, actions []int) (int, error) {
	if err := validateActions(state, actions); err != nil {
		return 0, fmt.Errorf("learner %s: %w", that.name, err)
	}

	if that.params.TacticalWin {
		mover := state.Turn()
		for _, a := range actions {
			if that.rules.IsWinner(state.With(a, mover), mover) {
				return a, nil
			}
		}
	}

	that.mu.Lock()
	explore := that.rng.Float64() < that.params.Epsilon
	if explore {
		a := actions[that.rng.IntN(len(actions))]
		that.mu.Unlock()
		return a, nil
	}
	that.mu.Unlock()

	best := make([]int, 0, len(actions))
	bestValue := 0.0

	for _, a := range actions {
		v := that.updater.Value(state, a)
		switch {
		case len(best) == 0 || v > bestValue:
			best = append(best[:0], a)
			bestValue = v
		case v == bestValue:
			best = append(best, a)
		}
	}

	that.mu.Lock()
	a := best[that.rng.IntN(len(best))]
	that.mu.Unlock()

	return a, nil
}

func (that *Learner) Learn(ep *entity.Episode) error {
	if err := that.updater.Step(ep); err != nil {
		return fmt.Errorf("learner %s: %w", that.name, err)
	}

	return nil
}

func (that *Learner) Conclude(ep *entity.Episode, mark entity.Mark) error {
	if err := that.updater.Terminal(ep, mark); err != nil {
		return fmt.Errorf("learner %s: %w", that.name, err)
	}

	that.logger.Debug("episode concluded", "mark", mark, "plies", ep.Len(), "table", that.Table().Len())

	return nil
}
