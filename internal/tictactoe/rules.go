package tictactoe

import (
	"fmt"
	"sync"

	"github.com/rocketscienceinc/tictactoe-agent/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-agent/internal/entity"
)

type verdict struct {
	actions []int
	outcome entity.Outcome
}

// Rules evaluates boards. Results are memoized per state; the cache is unbounded
// because there are at most 3^9 boards.
type Rules struct {
	mu    sync.RWMutex
	cache map[entity.State]verdict
}

func NewRules() *Rules {
	return &Rules{
		cache: make(map[entity.State]verdict),
	}
}

// AvailableActions returns the empty cells in ascending order. The slice is a copy.
func (that *Rules) AvailableActions(state entity.State) []int {
	v := that.lookup(state)

	actions := make([]int, len(v.actions))
	copy(actions, v.actions)

	return actions
}

// IsWinner reports whether mark holds a full line.
func (that *Rules) IsWinner(state entity.State, mark entity.Mark) bool {
	return that.lookup(state).outcome == entity.OutcomeFor(mark)
}

// IsDraw reports a full board without a winner.
func (that *Rules) IsDraw(state entity.State) bool {
	return that.lookup(state).outcome == entity.OutcomeDraw
}

// Outcome returns the result of the board, or OutcomeNone while the game continues.
func (that *Rules) Outcome(state entity.State) entity.Outcome {
	return that.lookup(state).outcome
}

// Apply places mark on cell and returns the new state.
func (that *Rules) Apply(state entity.State, cell int, mark entity.Mark) (entity.State, error) {
	if cell < 0 || cell >= entity.BoardSize {
		return state, fmt.Errorf("%w: cell %d out of range", apperror.ErrInvalidAction, cell)
	}

	if state[cell] != entity.EmptyCell {
		return state, fmt.Errorf("%w: cell %d is already occupied", apperror.ErrInvalidAction, cell)
	}

	if mark != entity.PlayerX && mark != entity.PlayerO {
		return state, fmt.Errorf("%w: unknown mark %q", apperror.ErrInvalidAction, mark)
	}

	return state.With(cell, mark), nil
}

// CacheSize returns the number of memoized boards.
func (that *Rules) CacheSize() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.cache)
}

func (that *Rules) lookup(state entity.State) verdict {
	that.mu.RLock()
	v, ok := that.cache[state]
	that.mu.RUnlock()

	if ok {
		return v
	}

	v = evaluate(state)

	that.mu.Lock()
	that.cache[state] = v
	that.mu.Unlock()

	return v
}

func evaluate(state entity.State) verdict {
	v := verdict{
		actions: make([]int, 0, entity.BoardSize),
		outcome: checkGameStatus(state),
	}

	for i, cell := range state {
		if cell == entity.EmptyCell {
			v.actions = append(v.actions, i)
		}
	}

	return v
}

func checkGameStatus(board entity.State) entity.Outcome {
	for _, combo := range entity.WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return entity.OutcomeFor(a)
		}
	}

	for _, cell := range board {
		if cell == entity.EmptyCell {
			return entity.OutcomeNone
		}
	}

	return entity.OutcomeDraw
}
