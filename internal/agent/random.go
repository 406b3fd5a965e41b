package agent

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/rocketscienceinc/tictactoe-agent/internal/entity"
)

// Random plays a uniformly random empty cell and never learns.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandom(seed uint64) *Random {
	return &Random{
		rng: rand.New(rand.NewPCG(seed, seed+1)),
	}
}

func (that *Random) ChooseAction(state entity.State, actions []int) (int, error) {
	if err := validateActions(state, actions); err != nil {
		return 0, fmt.Errorf("random player failed to make turn: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	return actions[that.rng.IntN(len(actions))], nil
}

func (that *Random) Learn(*entity.Episode) error {
	return nil
}

func (that *Random) Conclude(*entity.Episode, entity.Mark) error {
	return nil
}
