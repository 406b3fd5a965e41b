package repository

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/dgraph-io/badger/v4"

	"github.com/rocketscienceinc/tictactoe-agent/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-agent/internal/entity"
	"github.com/rocketscienceinc/tictactoe-agent/internal/qtable"
)

var policyPrefix = []byte("q/")

type badgerPolicy struct {
	db *badger.DB
}

// NewBadgerPolicyStore stores each value under q/<state>/<action> as the
// big-endian bits of the float.
func NewBadgerPolicyStore(db *badger.DB) PolicyStore {
	return &badgerPolicy{
		db: db,
	}
}

// Save swaps the stored policy in one transaction: either every old key is
// replaced or the previous policy is left as it was.
func (that *badgerPolicy) Save(ctx context.Context, table *qtable.Table) error {
	err := that.db.Update(func(txn *badger.Txn) error {
		for _, key := range policyKeys(txn) {
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("failed to drop policy entry: %w", err)
			}
		}

		for _, e := range table.Entries() {
			if err := ctx.Err(); err != nil {
				return err
			}

			value := make([]byte, 8)
			binary.BigEndian.PutUint64(value, math.Float64bits(e.Value))

			if err := txn.Set(badgerKey(e.State, e.Action), value); err != nil {
				return fmt.Errorf("failed to stage policy entry: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save policy: %w", err)
	}

	return nil
}

func policyKeys(txn *badger.Txn) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = policyPrefix
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Rewind(); it.Valid(); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}

	return keys
}

func (that *badgerPolicy) Load(ctx context.Context, options ...qtable.Option) (*qtable.Table, error) {
	table := qtable.New(options...)

	err := that.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = policyPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			state, action, err := parseBadgerKey(item.KeyCopy(nil))
			if err != nil {
				return err
			}

			raw, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("failed to read value: %w", err)
			}

			if len(raw) != 8 {
				return fmt.Errorf("%w: value of %s/%d has %d bytes", apperror.ErrMalformedPolicy, state, action, len(raw))
			}

			value := math.Float64frombits(binary.BigEndian.Uint64(raw))
			if err = table.Set(state, action, value); err != nil {
				return fmt.Errorf("%w: %w", apperror.ErrMalformedPolicy, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	if table.Len() == 0 {
		return nil, apperror.ErrPolicyNotFound
	}

	return table, nil
}

func (that *badgerPolicy) Close() error {
	return that.db.Close()
}

func badgerKey(state entity.State, action int) []byte {
	return []byte(string(policyPrefix) + state.String() + "/" + strconv.Itoa(action))
}

func parseBadgerKey(key []byte) (entity.State, int, error) {
	rest := key[len(policyPrefix):]
	if len(rest) < entity.BoardSize+2 || rest[entity.BoardSize] != '/' {
		return entity.State{}, 0, fmt.Errorf("%w: key %q", apperror.ErrMalformedPolicy, key)
	}

	state, err := entity.ParseState(string(rest[:entity.BoardSize]))
	if err != nil {
		return entity.State{}, 0, fmt.Errorf("%w: %w", apperror.ErrMalformedPolicy, err)
	}

	action, err := strconv.Atoi(string(rest[entity.BoardSize+1:]))
	if err != nil {
		return entity.State{}, 0, fmt.Errorf("%w: key %q: %w", apperror.ErrMalformedPolicy, key, err)
	}

	return state, action, nil
}
