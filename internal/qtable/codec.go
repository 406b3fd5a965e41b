package qtable

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/rocketscienceinc/tictactoe-agent/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-agent/internal/entity"
)

// document is the persisted layout: state key -> action -> value.
type document map[string]map[string]float64

// Encode writes the table as JSON.
func Encode(w io.Writer, table *Table) error {
	doc := make(document)
	for _, e := range table.Entries() {
		key := e.State.String()
		if doc[key] == nil {
			doc[key] = make(map[string]float64)
		}
		doc[key][strconv.Itoa(e.Action)] = e.Value
	}

	if err := json.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("failed to encode policy: %w", err)
	}

	return nil
}

// Decode reads a table written by Encode. Any key that does not parse makes
// the whole document invalid.
func Decode(r io.Reader, options ...Option) (*Table, error) {
	dec := json.NewDecoder(r)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrMalformedPolicy, err)
	}

	if doc == nil {
		return nil, fmt.Errorf("%w: document is null", apperror.ErrMalformedPolicy)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after document", apperror.ErrMalformedPolicy)
	}

	table := New(options...)
	for stateKey, actions := range doc {
		state, err := entity.ParseState(stateKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", apperror.ErrMalformedPolicy, err)
		}

		if actions == nil {
			return nil, fmt.Errorf("%w: state %q has no actions", apperror.ErrMalformedPolicy, stateKey)
		}

		for actionKey, value := range actions {
			action, err := strconv.Atoi(actionKey)
			if err != nil {
				return nil, fmt.Errorf("%w: action %q of state %q: %w", apperror.ErrMalformedPolicy, actionKey, stateKey, err)
			}

			if err = table.Set(state, action, value); err != nil {
				return nil, fmt.Errorf("%w: %w", apperror.ErrMalformedPolicy, err)
			}
		}
	}

	return table, nil
}

// ParseEntry decodes a flat "<state>:<action>" field, the layout used by key-value stores.
func ParseEntry(field string) (entity.State, int, error) {
	if len(field) < entity.BoardSize+2 || field[entity.BoardSize] != ':' {
		return entity.State{}, 0, fmt.Errorf("%w: field %q", apperror.ErrMalformedPolicy, field)
	}

	state, err := entity.ParseState(field[:entity.BoardSize])
	if err != nil {
		return entity.State{}, 0, fmt.Errorf("%w: %w", apperror.ErrMalformedPolicy, err)
	}

	action, err := strconv.Atoi(field[entity.BoardSize+1:])
	if err != nil {
		return entity.State{}, 0, fmt.Errorf("%w: field %q: %w", apperror.ErrMalformedPolicy, field, err)
	}

	return state, action, nil
}

// FormatEntry is the inverse of ParseEntry.
func FormatEntry(state entity.State, action int) string {
	return state.String() + ":" + strconv.Itoa(action)
}
