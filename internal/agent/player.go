// Package agent contains the move-selection policies that take part in a game.
package agent

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-agent/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-agent/internal/entity"
)

// Player chooses moves and receives the learning hooks of the training loop.
// Non-learning players implement the hooks as no-ops.
type Player interface {
	ChooseAction(state entity.State, actions []int) (int, error)
	// Learn is called after the player's own move when the game goes on.
	Learn(ep *entity.Episode) error
	// Conclude is called once per seat when the game ends.
	Conclude(ep *entity.Episode, mark entity.Mark) error
}

func validateActions(state entity.State, actions []int) error {
	if len(actions) == 0 {
		return apperror.ErrNoAvailableActions
	}

	for _, a := range actions {
		if a < 0 || a >= entity.BoardSize || state[a] != entity.EmptyCell {
			return fmt.Errorf("%w: cell %d of %s", apperror.ErrInvalidAction, a, state)
		}
	}

	return nil
}
