package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-agent/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-agent/internal/entity"
	"github.com/rocketscienceinc/tictactoe-agent/internal/qtable"
)

func sampleTable(t *testing.T) *qtable.Table {
	t.Helper()

	table := qtable.New()
	state, err := entity.ParseState("X---O----")
	require.NoError(t, err)

	require.NoError(t, table.Set(entity.NewState(), 4, 0.1))
	require.NoError(t, table.Set(entity.NewState(), 0, 1.0/3.0))
	require.NoError(t, table.Set(state, 8, -0.987654321012345))
	require.NoError(t, table.Set(state, 2, 1e-300))

	return table
}

func TestOpenPolicyStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	t.Run("PlainPath", func(t *testing.T) {
		// When: a plain path is opened
		store, err := OpenPolicyStore(ctx, filepath.Join(dir, "plain.json"), ForLoad, nil)

		// Then: a file store is returned
		require.NoError(t, err)
		assert.IsType(t, &filePolicy{}, store)
		require.NoError(t, store.Close())
	})

	t.Run("FileScheme", func(t *testing.T) {
		// When: a file:// destination is opened
		store, err := OpenPolicyStore(ctx, "file://"+filepath.Join(dir, "scheme.json"), ForLoad, nil)

		// Then: the scheme is stripped from the path
		require.NoError(t, err)
		require.IsType(t, &filePolicy{}, store)
		assert.Equal(t, filepath.Join(dir, "scheme.json"), store.(*filePolicy).path)
	})

	t.Run("BadgerScheme", func(t *testing.T) {
		// When: a badger:// destination is opened
		store, err := OpenPolicyStore(ctx, "badger://"+filepath.Join(dir, "badger"), ForSave, nil)

		// Then: a badger store is returned
		require.NoError(t, err)
		assert.IsType(t, &badgerPolicy{}, store)
		require.NoError(t, store.Close())
	})

	t.Run("BadgerMissingForLoad", func(t *testing.T) {
		// Given: a badger directory that does not exist
		missing := filepath.Join(dir, "typo")

		// When: it is opened for loading
		_, err := OpenPolicyStore(ctx, "badger://"+missing, ForLoad, nil)

		// Then: the policy is reported missing and no directory is created
		require.ErrorIs(t, err, apperror.ErrPolicyNotFound)
		assert.NoDirExists(t, missing)
	})

	t.Run("BadgerExistingForLoad", func(t *testing.T) {
		// Given: a badger database saved earlier
		path := "badger://" + filepath.Join(dir, "saved")
		saver, err := OpenPolicyStore(ctx, path, ForSave, nil)
		require.NoError(t, err)
		require.NoError(t, saver.Save(ctx, sampleTable(t)))
		require.NoError(t, saver.Close())

		// When: it is opened for loading
		loader, err := OpenPolicyStore(ctx, path, ForLoad, nil)
		require.NoError(t, err)
		defer loader.Close()

		// Then: the saved table is read back
		table, err := loader.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, sampleTable(t).Entries(), table.Entries())
	})

	t.Run("UnknownScheme", func(t *testing.T) {
		// When: an unsupported scheme is opened
		_, err := OpenPolicyStore(ctx, "s3://bucket/policy", ForLoad, nil)

		// Then: an error is returned
		require.Error(t, err)
	})
}

func TestFilePolicyStore(t *testing.T) {
	ctx := context.Background()

	t.Run("RoundTrip", func(t *testing.T) {
		// Given: a saved table
		dir := t.TempDir()
		store := NewFilePolicyStore(filepath.Join(dir, "policy.json"))
		table := sampleTable(t)
		require.NoError(t, store.Save(ctx, table))

		// When: it is loaded back
		loaded, err := store.Load(ctx)

		// Then: every value is reproduced exactly and no temp file is left behind
		require.NoError(t, err)
		assert.Equal(t, table.Entries(), loaded.Entries())

		files, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, files, 1)
	})

	t.Run("SaveReplaces", func(t *testing.T) {
		// Given: a store holding a table
		store := NewFilePolicyStore(filepath.Join(t.TempDir(), "policy.json"))
		require.NoError(t, store.Save(ctx, sampleTable(t)))

		// When: a smaller table is saved
		smaller := qtable.New()
		require.NoError(t, smaller.Set(entity.NewState(), 7, 0.5))
		require.NoError(t, store.Save(ctx, smaller))

		// Then: only the new table is loaded
		loaded, err := store.Load(ctx, qtable.WithDefault(0.3))
		require.NoError(t, err)
		assert.Equal(t, 1, loaded.Len())
		assert.InDelta(t, 0.3, loaded.Default(), 1e-12)
	})

	t.Run("NotFound", func(t *testing.T) {
		// Given: a path with no file
		store := NewFilePolicyStore(filepath.Join(t.TempDir(), "missing.json"))

		// When: Load is called
		_, err := store.Load(ctx)

		// Then: the not-found error is returned
		require.ErrorIs(t, err, apperror.ErrPolicyNotFound)
	})

	t.Run("Malformed", func(t *testing.T) {
		// Given: a file that is not a policy
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"(' ', 1)": 0.5}`), 0o600))
		store := NewFilePolicyStore(path)

		// When: Load is called
		_, err := store.Load(ctx)

		// Then: the malformed error is returned
		require.ErrorIs(t, err, apperror.ErrMalformedPolicy)
	})
}
