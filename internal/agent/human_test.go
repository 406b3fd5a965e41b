package agent

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-agent/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-agent/internal/entity"
)

func TestHuman_ChooseAction(t *testing.T) {
	// Given
	var out bytes.Buffer
	human := NewHuman(strings.NewReader("4\n"), &out)

	// When
	action, err := human.ChooseAction(entity.NewState(), []int{0, 1, 2, 3, 4, 5, 6, 7, 8})

	// Then
	require.NoError(t, err)
	assert.Equal(t, 4, action)
	assert.Contains(t, out.String(), "Enter your move: ")
}

func TestHuman_ChooseActionRepromptsOnBadInput(t *testing.T) {
	// Given
	var out bytes.Buffer
	human := NewHuman(strings.NewReader("9\nabc\n5\n"), &out)

	// When
	action, err := human.ChooseAction(entity.NewState(), []int{0, 1, 2, 3, 4, 5, 6, 7, 8})

	// Then
	require.NoError(t, err)
	assert.Equal(t, 5, action)
	assert.Contains(t, out.String(), "Invalid move, try again")
	assert.Contains(t, out.String(), "Please enter an available move")
	assert.Equal(t, 3, strings.Count(out.String(), "Enter your move: "))
}

func TestHuman_ChooseActionInputClosed(t *testing.T) {
	// Given
	var out bytes.Buffer
	human := NewHuman(strings.NewReader("7\n"), &out)
	state := entity.NewState().With(7, entity.PlayerX)

	// When
	_, err := human.ChooseAction(state, []int{0, 1})

	// Then
	require.ErrorIs(t, err, apperror.ErrInputClosed)
}

func TestRandom_ChooseAction(t *testing.T) {
	// Given
	player := NewRandom(7)
	state := entity.NewState().With(4, entity.PlayerX)
	actions := []int{0, 8}

	// When
	seen := make(map[int]bool)
	for i := 0; i < 100; i++ {
		action, err := player.ChooseAction(state, actions)
		require.NoError(t, err)
		seen[action] = true
	}

	// Then
	assert.Equal(t, map[int]bool{0: true, 8: true}, seen)

	_, err := player.ChooseAction(state, nil)
	require.ErrorIs(t, err, apperror.ErrNoAvailableActions)
	require.NoError(t, player.Learn(entity.NewEpisode()))
	require.NoError(t, player.Conclude(entity.NewEpisode(), entity.PlayerO))
}
