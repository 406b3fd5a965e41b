package learning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-agent/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-agent/internal/entity"
	"github.com/rocketscienceinc/tictactoe-agent/internal/qtable"
	"github.com/rocketscienceinc/tictactoe-agent/internal/tictactoe"
)

func constant(v float64) func() float64 {
	return func() float64 { return v }
}

func newUpdater(table *qtable.Table, symmetry bool, alpha float64) *Updater {
	params := Params{Gamma: 0.9, Rewards: DefaultRewards(), Symmetry: symmetry}
	return NewUpdater(table, tictactoe.NewRules(), params, constant(alpha))
}

func play(t *testing.T, cells ...int) *entity.Episode {
	t.Helper()
	rules := tictactoe.NewRules()
	ep := entity.NewEpisode()
	for _, cell := range cells {
		next, err := rules.Apply(ep.Last(), cell, ep.Last().Turn())
		require.NoError(t, err)
		ep.Append(cell, next)
	}
	return ep
}

func TestUpdater_Backup(t *testing.T) {
	// Given
	table := qtable.New()
	updater := newUpdater(table, false, 0.5)
	state := entity.NewState()

	// When
	first, err := updater.Backup(state, 4, 1)
	require.NoError(t, err)
	second, err := updater.Backup(state, 4, 1)
	require.NoError(t, err)

	// Then
	assert.InDelta(t, 0.5, first, 1e-12)
	assert.InDelta(t, 0.75, second, 1e-12)
}

func TestUpdater_BackupToCurrentValueIsIdempotent(t *testing.T) {
	// Given
	table := qtable.New()
	state := entity.NewState()
	require.NoError(t, table.Set(state, 2, 0.3))
	updater := newUpdater(table, false, 0.7)

	// When
	v, err := updater.Backup(state, 2, 0.3)

	// Then
	require.NoError(t, err)
	assert.Equal(t, 0.3, v)
	assert.Equal(t, 0.3, table.Get(state, 2))
}

func TestUpdater_BackupRejectsOccupiedCell(t *testing.T) {
	// Given
	updater := newUpdater(qtable.New(), false, 0.5)
	state := entity.NewState().With(0, entity.PlayerX)

	// When
	_, err := updater.Backup(state, 0, 1)

	// Then
	require.ErrorIs(t, err, apperror.ErrInvalidAction)
}

func TestUpdater_TerminalWin(t *testing.T) {
	// Given
	table := qtable.New()
	updater := newUpdater(table, false, 1)
	ep := play(t, 0, 4, 8, 2, 6, 3, 5, 1, 7)
	require.Equal(t, entity.OutcomeX, tictactoe.NewRules().Outcome(ep.Last()))

	// When
	require.NoError(t, updater.Terminal(ep, entity.PlayerX))
	require.NoError(t, updater.Terminal(ep, entity.PlayerO))

	// Then
	winnerState, winnerAction, _ := ep.Ply(8)
	loserState, loserAction, _ := ep.Ply(7)
	assert.Equal(t, 7, winnerAction)
	assert.Equal(t, 1, loserAction)
	assert.InDelta(t, 1.0, table.Get(winnerState, winnerAction), 1e-12)
	assert.InDelta(t, -1.0, table.Get(loserState, loserAction), 1e-12)
	assert.Equal(t, 2, table.Len())
}

func TestUpdater_TerminalDraw(t *testing.T) {
	// Given
	table := qtable.New()
	updater := newUpdater(table, false, 1)
	ep := play(t, 0, 4, 8, 1, 7, 6, 2, 5, 3)
	require.Equal(t, "XOXXOOOXX", ep.Last().String())
	require.Equal(t, entity.OutcomeDraw, tictactoe.NewRules().Outcome(ep.Last()))

	// When
	require.NoError(t, updater.Terminal(ep, entity.PlayerX))
	require.NoError(t, updater.Terminal(ep, entity.PlayerO))

	// Then
	lastState, lastAction, _ := ep.Ply(8)
	prevState, prevAction, _ := ep.Ply(7)
	assert.InDelta(t, 0.5, table.Get(lastState, lastAction), 1e-12)
	assert.InDelta(t, 0.5, table.Get(prevState, prevAction), 1e-12)
	assert.Equal(t, 2, table.Len())
}

func TestUpdater_TerminalIgnoresRunningGame(t *testing.T) {
	// Given
	table := qtable.New()
	updater := newUpdater(table, false, 1)
	ep := play(t, 0, 4)

	// When
	err := updater.Terminal(ep, entity.PlayerX)

	// Then
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}

func TestUpdater_StepBootstrapsOverOpponentReply(t *testing.T) {
	// Given
	table := qtable.New(qtable.WithDefault(0.5))
	updater := newUpdater(table, false, 1)
	ep := play(t, 0)

	// When
	require.NoError(t, updater.Step(ep))

	// Then
	assert.InDelta(t, 0.45, table.Get(entity.NewState(), 0), 1e-12)
	assert.Equal(t, 1, table.Len())
}

func TestUpdater_StepSeesImmediateLoss(t *testing.T) {
	// Given
	table := qtable.New()
	updater := newUpdater(table, false, 1)
	ep := play(t, 0, 4, 8, 2, 1)

	// When
	require.NoError(t, updater.Step(ep))

	// Then
	state, action, _ := ep.Ply(4)
	assert.InDelta(t, -0.9, table.Get(state, action), 1e-12)
	assert.Equal(t, 1, table.Len())
}

func TestUpdater_StepSeesDrawReply(t *testing.T) {
	// Given: O moves with only cell 3 left, and X filling it draws
	table := qtable.New()
	updater := newUpdater(table, false, 1)
	ep := play(t, 0, 4, 8, 1, 7, 6, 2, 5)

	// When
	require.NoError(t, updater.Step(ep))

	// Then: the reply is worth the draw reward, discounted once
	state, action, _ := ep.Ply(7)
	assert.Equal(t, 5, action)
	assert.InDelta(t, 0.45, table.Get(state, action), 1e-12)
	assert.Equal(t, 1, table.Len())
}

func TestUpdater_StepUsesBestFollowUp(t *testing.T) {
	// Given
	table := qtable.New()
	updater := newUpdater(table, false, 1)
	ep := play(t, 0)
	after, err := tictactoe.NewRules().Apply(ep.Last(), 4, entity.PlayerO)
	require.NoError(t, err)
	require.NoError(t, table.Set(after, 8, 0.8))

	// When
	require.NoError(t, updater.Step(ep))

	// Then
	// every reply except 4 leads to a board worth 0, which is the minimum
	assert.InDelta(t, 0.0, table.Get(entity.NewState(), 0), 1e-12)
	assert.InDelta(t, 0.8, updater.BestValue(after), 1e-12)
}

func TestUpdater_StepIgnoresFinishedGame(t *testing.T) {
	// Given
	table := qtable.New()
	updater := newUpdater(table, false, 1)
	ep := play(t, 0, 3, 1, 4, 2)

	// When
	err := updater.Step(ep)

	// Then
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}

func TestUpdater_SymmetryFoldsEquivalentMoves(t *testing.T) {
	// Given
	table := qtable.New()
	updater := newUpdater(table, true, 1)
	corner := entity.NewState().With(0, entity.PlayerX)

	// When
	_, err := updater.Backup(corner, 1, 1)
	require.NoError(t, err)

	// Then
	rotated := entity.NewState().With(2, entity.PlayerX)
	opposite := entity.NewState().With(8, entity.PlayerX)
	assert.InDelta(t, 1.0, updater.Value(corner, 1), 1e-12)
	assert.InDelta(t, 1.0, updater.Value(rotated, 5), 1e-12)
	assert.InDelta(t, 1.0, updater.Value(opposite, 7), 1e-12)
	assert.InDelta(t, 0.0, updater.Value(corner, 4), 1e-12)
	assert.Equal(t, 1, table.Len())
}
