package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rocketscienceinc/tictactoe-agent/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-agent/internal/qtable"
)

type filePolicy struct {
	path string
}

func NewFilePolicyStore(path string) PolicyStore {
	return &filePolicy{
		path: path,
	}
}

// Save writes to a temporary file next to the target and renames it into place.
func (that *filePolicy) Save(_ context.Context, table *qtable.Table) error {
	dir := filepath.Dir(that.path)

	tmp, err := os.CreateTemp(dir, filepath.Base(that.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp policy file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint: errcheck // gone after a successful rename

	if err = qtable.Encode(tmp, table); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write policy %s: %w", that.path, err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close policy %s: %w", that.path, err)
	}

	if err = os.Rename(tmp.Name(), that.path); err != nil {
		return fmt.Errorf("failed to replace policy %s: %w", that.path, err)
	}

	return nil
}

func (that *filePolicy) Load(_ context.Context, options ...qtable.Option) (*qtable.Table, error) {
	f, err := os.Open(that.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrPolicyNotFound, that.path)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open policy %s: %w", that.path, err)
	}
	defer f.Close()

	table, err := qtable.Decode(f, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy %s: %w", that.path, err)
	}

	return table, nil
}

func (that *filePolicy) Close() error {
	return nil
}
