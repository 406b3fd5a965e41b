package entity

import (
	"errors"
	"fmt"
	"strings"
)

// Mark is the symbol held by a board cell.
type Mark byte

const (
	EmptyCell Mark = '-'
	PlayerX   Mark = 'X'
	PlayerO   Mark = 'O'
)

// BoardSize is the number of cells on the board.
const BoardSize = 9

var ErrInvalidState = errors.New("invalid state")

// WinCombos lists every line of three cells.
var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Opponent returns the other player's mark.
func (m Mark) Opponent() Mark {
	if m == PlayerX {
		return PlayerO
	}
	return PlayerX
}

func (m Mark) String() string {
	return string(m)
}

// ParseMark accepts "X" or "O".
func ParseMark(s string) (Mark, error) {
	switch s {
	case "X", "x":
		return PlayerX, nil
	case "O", "o":
		return PlayerO, nil
	default:
		return 0, fmt.Errorf("%w: unknown mark %q", ErrInvalidState, s)
	}
}

// State is an immutable board snapshot. It is a value type: copying it copies the board.
type State [BoardSize]Mark

// NewState returns the empty board.
func NewState() State {
	var s State
	for i := range s {
		s[i] = EmptyCell
	}
	return s
}

// ParseState decodes the textual key produced by State.String.
// A blank cell may be written either as '-' or as a space.
func ParseState(key string) (State, error) {
	var s State
	if len(key) != BoardSize {
		return s, fmt.Errorf("%w: key %q has length %d", ErrInvalidState, key, len(key))
	}

	for i := 0; i < BoardSize; i++ {
		switch c := Mark(key[i]); c {
		case EmptyCell, ' ':
			s[i] = EmptyCell
		case PlayerX, PlayerO:
			s[i] = c
		default:
			return State{}, fmt.Errorf("%w: unexpected cell %q in key %q", ErrInvalidState, key[i], key)
		}
	}

	return s, nil
}

func (that State) String() string {
	return string(that[:])
}

// With returns a copy of the state with mark placed on cell. No validation is done.
func (that State) With(cell int, mark Mark) State {
	that[cell] = mark
	return that
}

// Count returns how many cells hold mark.
func (that State) Count(mark Mark) int {
	n := 0
	for _, c := range that {
		if c == mark {
			n++
		}
	}
	return n
}

// Turn returns the mark to move. X always opens, so equal counts mean X.
func (that State) Turn() Mark {
	if that.Count(PlayerX) > that.Count(PlayerO) {
		return PlayerO
	}
	return PlayerX
}

// Index is the base-3 encoding of the board, in [0, 3^9).
func (that State) Index() int {
	idx := 0
	for _, c := range that {
		idx *= 3
		switch c {
		case PlayerX:
			idx++
		case PlayerO:
			idx += 2
		}
	}
	return idx
}

// Render draws the board for a console.
func (that State) Render() string {
	var b strings.Builder
	b.WriteString("\n")
	for row := 0; row < 3; row++ {
		if row > 0 {
			b.WriteString("-----------\n")
		}
		cells := make([]string, 3)
		for col := 0; col < 3; col++ {
			c := that[row*3+col]
			if c == EmptyCell {
				cells[col] = " "
			} else {
				cells[col] = c.String()
			}
		}
		fmt.Fprintf(&b, " %s | %s | %s \n", cells[0], cells[1], cells[2])
	}
	b.WriteString("\n")
	return b.String()
}
