// Package learning implements the temporal-difference backup used by the Q agent.
//
// A move is credited after the opponent has had its chance to answer: the
// bootstrap target of a non-terminal move looks two plies ahead, to the next
// state in which the same player is to move again.
package learning

import (
	"fmt"
	"math"

	"github.com/rocketscienceinc/tictactoe-agent/internal/entity"
	"github.com/rocketscienceinc/tictactoe-agent/internal/qtable"
	"github.com/rocketscienceinc/tictactoe-agent/internal/symmetry"
	"github.com/rocketscienceinc/tictactoe-agent/internal/tictactoe"
)

type Rewards struct {
	Win  float64
	Draw float64
	Loss float64
	Step float64
}

func DefaultRewards() Rewards {
	return Rewards{
		Win:  1,
		Draw: 0.5,
		Loss: -1,
		Step: 0,
	}
}

type Params struct {
	Gamma    float64
	Rewards  Rewards
	Symmetry bool
}

type Updater struct {
	table  *qtable.Table
	rules  *tictactoe.Rules
	params Params
	alpha  func() float64
}

// NewUpdater writes into table. alpha is read on every backup so the caller may decay it.
func NewUpdater(table *qtable.Table, rules *tictactoe.Rules, params Params, alpha func() float64) *Updater {
	return &Updater{
		table:  table,
		rules:  rules,
		params: params,
		alpha:  alpha,
	}
}

func (that *Updater) Table() *qtable.Table {
	return that.table
}

// Value reads Q(state, action), folding the board when symmetry is enabled.
func (that *Updater) Value(state entity.State, action int) float64 {
	s, a := that.key(state, action)
	return that.table.Get(s, a)
}

// BestValue is the largest Value over the empty cells of state, or the table
// default when the board is full.
func (that *Updater) BestValue(state entity.State) float64 {
	actions := that.rules.AvailableActions(state)
	if len(actions) == 0 {
		return that.table.Default()
	}

	best := math.Inf(-1)
	for _, a := range actions {
		best = max(best, that.Value(state, a))
	}

	return best
}

// Backup moves Q(state, action) toward target by the current learning rate.
func (that *Updater) Backup(state entity.State, action int, target float64) (float64, error) {
	s, a := that.key(state, action)
	alpha := that.alpha()

	v, err := that.table.Update(s, a, func(old float64) float64 {
		return old + alpha*(target-old)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to back up %s/%d: %w", state, action, err)
	}

	return v, nil
}

// Step credits the last ply of a game that is still running.
func (that *Updater) Step(ep *entity.Episode) error {
	if ep.Len() == 0 {
		return nil
	}

	i := ep.Len() - 1
	state, action, next := ep.Ply(i)

	if that.rules.Outcome(next).IsFinished() {
		return nil
	}

	target, err := that.stepTarget(next, ep.Mover(i))
	if err != nil {
		return err
	}

	if _, err = that.Backup(state, action, target); err != nil {
		return fmt.Errorf("step backup: %w", err)
	}

	return nil
}

// Terminal applies the end-of-game backup owed to mark's final move.
func (that *Updater) Terminal(ep *entity.Episode, mark entity.Mark) error {
	n := ep.Len()
	outcome := that.rules.Outcome(ep.Last())
	if n == 0 || !outcome.IsFinished() {
		return nil
	}

	lastMover := ep.Mover(n - 1)

	var (
		idx    int
		target float64
	)

	switch outcome {
	case entity.OutcomeDraw:
		target = that.params.Rewards.Draw
		idx = n - 1
		if lastMover != mark {
			idx = n - 2
		}
	case entity.OutcomeFor(mark):
		target = that.params.Rewards.Win
		idx = n - 1
	default:
		target = that.params.Rewards.Loss
		idx = n - 2
	}

	if idx < 0 {
		return nil
	}

	state, action, _ := ep.Ply(idx)
	if _, err := that.Backup(state, action, target); err != nil {
		return fmt.Errorf("terminal backup: %w", err)
	}

	return nil
}

// stepTarget assumes the opponent picks the reply that is worst for mover.
func (that *Updater) stepTarget(next entity.State, mover entity.Mark) (float64, error) {
	replies := that.rules.AvailableActions(next)
	if len(replies) == 0 {
		return that.params.Rewards.Step, nil
	}

	opponent := mover.Opponent()
	worst := math.Inf(1)

	for _, o := range replies {
		after, err := that.rules.Apply(next, o, opponent)
		if err != nil {
			return 0, fmt.Errorf("failed to simulate reply %d: %w", o, err)
		}

		var v float64
		switch that.rules.Outcome(after) {
		case entity.OutcomeFor(opponent):
			v = that.params.Rewards.Loss
		case entity.OutcomeDraw:
			v = that.params.Rewards.Draw
		default:
			v = that.BestValue(after)
		}

		worst = min(worst, v)
	}

	return that.params.Rewards.Step + that.params.Gamma*worst, nil
}

func (that *Updater) key(state entity.State, action int) (entity.State, int) {
	if !that.params.Symmetry {
		return state, action
	}

	canonical, t := symmetry.Canonicalize(state)
	return canonical, symmetry.ToCanonical(action, t)
}
