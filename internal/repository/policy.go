package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-agent/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-agent/internal/qtable"
	"github.com/rocketscienceinc/tictactoe-agent/internal/repository/storage"
)

// PolicyStore persists a value table as a single unit.
type PolicyStore interface {
	// Save replaces whatever was stored before.
	Save(ctx context.Context, table *qtable.Table) error
	// Load returns apperror.ErrPolicyNotFound when nothing was saved yet.
	Load(ctx context.Context, options ...qtable.Option) (*qtable.Table, error)
	Close() error
}

// Access tells OpenPolicyStore what the store is opened for.
type Access int

const (
	// ForLoad never creates anything; a missing database is ErrPolicyNotFound.
	ForLoad Access = iota
	// ForSave creates the backing directory when needed.
	ForSave
)

// OpenPolicyStore picks a store by the scheme of destination:
//
//	policy.json, file://policy.json  JSON file
//	redis://[:password@]host:port/name[?db=N]  Redis hash policy:<name>
//	badger://dir  BadgerDB directory
func OpenPolicyStore(ctx context.Context, destination string, access Access, logger *slog.Logger) (PolicyStore, error) {
	scheme, rest, found := strings.Cut(destination, "://")
	if !found {
		return NewFilePolicyStore(destination), nil
	}

	switch scheme {
	case "file":
		return NewFilePolicyStore(rest), nil
	case "redis":
		return openRedis(ctx, destination)
	case "badger":
		return openBadger(rest, access, logger)
	default:
		return nil, fmt.Errorf("unsupported policy destination %q", destination)
	}
}

func openBadger(dir string, access Access, logger *slog.Logger) (PolicyStore, error) {
	open := storage.OpenBadgerStorage
	if access == ForSave {
		open = storage.NewBadgerStorage
	}

	st, err := open(dir, logger)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrPolicyNotFound, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open policy store: %w", err)
	}

	return NewBadgerPolicyStore(st.Connection), nil
}

func openRedis(ctx context.Context, destination string) (PolicyStore, error) {
	u, err := url.Parse(destination)
	if err != nil {
		return nil, fmt.Errorf("invalid redis destination: %w", err)
	}

	name := strings.TrimPrefix(u.Path, "/")
	if name == "" {
		name = "default"
	}

	db := 0
	if v := u.Query().Get("db"); v != "" {
		if db, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid redis db %q: %w", v, err)
		}
	}

	password, _ := u.User.Password()

	st, err := storage.NewRedisStorage(ctx, u.Host, password, db)
	if err != nil {
		return nil, fmt.Errorf("failed to open policy store: %w", err)
	}

	return NewRedisPolicyStore(st.Connection, name), nil
}
