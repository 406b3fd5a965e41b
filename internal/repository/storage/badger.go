package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
)

type BadgerStorage struct {
	Connection *badger.DB
}

// NewBadgerStorage opens a database in dir, creating the directory when needed.
// A nil logger silences badger.
func NewBadgerStorage(dir string, logger *slog.Logger) (*BadgerStorage, error) {
	if dir == "" {
		return nil, errors.New("badger directory is required")
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("can't create badger directory %s: %w", dir, err)
	}

	return openBadger(dir, logger)
}

// OpenBadgerStorage opens a database that already exists in dir. A missing
// directory yields an error wrapping fs.ErrNotExist and nothing is created.
func OpenBadgerStorage(dir string, logger *slog.Logger) (*BadgerStorage, error) {
	if dir == "" {
		return nil, errors.New("badger directory is required")
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("can't open badger directory %s: %w", dir, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("badger path %s is not a directory", dir)
	}

	return openBadger(dir, logger)
}

func openBadger(dir string, logger *slog.Logger) (*BadgerStorage, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger.With("component", "badger")})
	}

	conn, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("can't open badger database: %w", err)
	}

	return &BadgerStorage{Connection: conn}, nil
}

// badgerLogger routes badger's printf-style logging into slog.
type badgerLogger struct {
	logger *slog.Logger
}

func (that *badgerLogger) Errorf(format string, args ...any) {
	that.logger.Error(fmt.Sprintf(format, args...))
}

func (that *badgerLogger) Warningf(format string, args ...any) {
	that.logger.Warn(fmt.Sprintf(format, args...))
}

func (that *badgerLogger) Infof(format string, args ...any) {
	that.logger.Debug(fmt.Sprintf(format, args...))
}

func (that *badgerLogger) Debugf(format string, args ...any) {
	that.logger.Debug(fmt.Sprintf(format, args...))
}
