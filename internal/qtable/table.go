// Package qtable holds the sparse state-action value table.
//
// The table does not canonicalize: callers decide whether keys are raw or
// canonical boards. Entries are spread over shards by board index, each
// guarded by its own lock, so parallel episodes may write concurrently with
// last-writer-wins per key.
package qtable

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/rocketscienceinc/tictactoe-agent/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-agent/internal/entity"
)

const shardCount = 16

// Key identifies one state-action pair.
type Key struct {
	State  entity.State
	Action int
}

// Entry is a stored value with its key.
type Entry struct {
	Key
	Value float64
}

type shard struct {
	mu     sync.RWMutex
	values map[Key]float64
}

type Table struct {
	defaultValue float64
	shards       [shardCount]*shard
}

type Option func(t *Table)

// WithDefault sets the value returned for unseen pairs.
func WithDefault(v float64) Option {
	return func(t *Table) {
		t.defaultValue = v
	}
}

func New(options ...Option) *Table {
	t := &Table{}
	for i := range t.shards {
		t.shards[i] = &shard{values: make(map[Key]float64)}
	}
	for _, option := range options {
		option(t)
	}
	return t
}

func (that *Table) Default() float64 {
	return that.defaultValue
}

// Get returns the stored value or the default.
func (that *Table) Get(state entity.State, action int) float64 {
	s := that.shardFor(state)

	s.mu.RLock()
	v, ok := s.values[Key{State: state, Action: action}]
	s.mu.RUnlock()

	if !ok {
		return that.defaultValue
	}
	return v
}

// Lookup is Get that also reports whether the pair was stored.
func (that *Table) Lookup(state entity.State, action int) (float64, bool) {
	s := that.shardFor(state)

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[Key{State: state, Action: action}]
	return v, ok
}

// Set stores value. Occupied or out-of-range cells are rejected.
func (that *Table) Set(state entity.State, action int, value float64) error {
	if action < 0 || action >= entity.BoardSize {
		return fmt.Errorf("%w: cell %d out of range", apperror.ErrInvalidAction, action)
	}

	if state[action] != entity.EmptyCell {
		return fmt.Errorf("%w: cell %d of %s is occupied", apperror.ErrInvalidAction, action, state)
	}

	s := that.shardFor(state)

	s.mu.Lock()
	s.values[Key{State: state, Action: action}] = value
	s.mu.Unlock()

	return nil
}

// Update applies fn to the current value under the shard lock and stores the result.
func (that *Table) Update(state entity.State, action int, fn func(old float64) float64) (float64, error) {
	if action < 0 || action >= entity.BoardSize || state[action] != entity.EmptyCell {
		return 0, fmt.Errorf("%w: cell %d of %s", apperror.ErrInvalidAction, action, state)
	}

	s := that.shardFor(state)
	key := Key{State: state, Action: action}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.values[key]
	if !ok {
		old = that.defaultValue
	}

	v := fn(old)
	s.values[key] = v

	return v, nil
}

func (that *Table) Len() int {
	n := 0
	for _, s := range that.shards {
		s.mu.RLock()
		n += len(s.values)
		s.mu.RUnlock()
	}
	return n
}

// Entries returns a snapshot ordered by state key then action.
func (that *Table) Entries() []Entry {
	entries := make([]Entry, 0, that.Len())
	for _, s := range that.shards {
		s.mu.RLock()
		for k, v := range s.values {
			entries = append(entries, Entry{Key: k, Value: v})
		}
		s.mu.RUnlock()
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		if c := cmp.Compare(a.State.String(), b.State.String()); c != 0 {
			return c
		}
		return cmp.Compare(a.Action, b.Action)
	})

	return entries
}

// Range calls fn for every entry in Entries order until fn returns false.
func (that *Table) Range(fn func(e Entry) bool) {
	for _, e := range that.Entries() {
		if !fn(e) {
			return
		}
	}
}

// Clone copies the entries and the default into a new table.
func (that *Table) Clone() *Table {
	c := New(WithDefault(that.defaultValue))
	for i, s := range that.shards {
		s.mu.RLock()
		for k, v := range s.values {
			c.shards[i].values[k] = v
		}
		s.mu.RUnlock()
	}
	return c
}

func (that *Table) shardFor(state entity.State) *shard {
	return that.shards[state.Index()%shardCount]
}
