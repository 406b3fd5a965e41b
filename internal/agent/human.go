package agent

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-agent/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-agent/internal/entity"
)

// Human reads moves from a console.
type Human struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewHuman(in io.Reader, out io.Writer) *Human {
	return &Human{
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// ChooseAction prompts until an available cell is entered.
func (that *Human) ChooseAction(state entity.State, actions []int) (int, error) {
	if err := validateActions(state, actions); err != nil {
		return 0, err
	}

	for {
		fmt.Fprintf(that.out, "Available moves (0-8): %v\n", actions)
		fmt.Fprint(that.out, "Enter your move: ")

		if !that.in.Scan() {
			if err := that.in.Err(); err != nil {
				return 0, fmt.Errorf("failed to read move: %w", err)
			}
			return 0, apperror.ErrInputClosed
		}

		move, err := strconv.Atoi(strings.TrimSpace(that.in.Text()))
		if err != nil {
			fmt.Fprintln(that.out, "Please enter an available move")
			continue
		}

		if !slices.Contains(actions, move) {
			fmt.Fprintln(that.out, "Invalid move, try again")
			continue
		}

		return move, nil
	}
}

func (that *Human) Learn(*entity.Episode) error {
	return nil
}

func (that *Human) Conclude(*entity.Episode, entity.Mark) error {
	return nil
}
