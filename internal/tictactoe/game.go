package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-agent/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-agent/internal/entity"
)

// Game advances a single episode and records its history.
type Game struct {
	rules   *Rules
	episode *entity.Episode
	outcome entity.Outcome
}

func NewGame(rules *Rules) *Game {
	return &Game{
		rules:   rules,
		episode: entity.NewEpisode(),
	}
}

// MakeTurn plays cell for the mark whose turn it is.
func (that *Game) MakeTurn(cell int) error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	state := that.episode.Last()

	next, err := that.rules.Apply(state, cell, state.Turn())
	if err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	that.episode.Append(cell, next)
	that.outcome = that.rules.Outcome(next)

	return nil
}

// State returns the current board.
func (that *Game) State() entity.State {
	return that.episode.Last()
}

// Turn returns the mark to move.
func (that *Game) Turn() entity.Mark {
	return that.episode.Last().Turn()
}

// AvailableActions returns the empty cells of the current board.
func (that *Game) AvailableActions() []int {
	return that.rules.AvailableActions(that.episode.Last())
}

func (that *Game) IsFinished() bool {
	return that.outcome.IsFinished()
}

func (that *Game) Outcome() entity.Outcome {
	return that.outcome
}

// Episode exposes the recorded history. Callers must not modify it.
func (that *Game) Episode() *entity.Episode {
	return that.episode
}
