package suite

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-agent/internal/repository/storage"
)

const (
	expireDuration  = 120
	maxWaitDuration = 120 * time.Second
)

const (
	redisPort  = "6379/tcp"
	redisImage = "redis"
	redisTag   = "7-alpine"
)

// Suite carries the backends a policy store test runs against. Only the
// backend the constructor started is set.
type Suite struct {
	*testing.T
	Logger *slog.Logger

	Redis     *redis.Client
	RedisAddr string

	Badger    *badger.DB
	BadgerDir string
}

func newSuite(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), maxWaitDuration)
	t.Cleanup(cancel)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	return ctx, &Suite{T: t, Logger: logger}
}

// NewBadger opens an empty badger database in a temporary directory that is
// closed when t ends.
func NewBadger(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, st := newSuite(t)

	st.BadgerDir = t.TempDir()
	db, err := storage.NewBadgerStorage(st.BadgerDir, st.Logger)
	if err != nil {
		t.Fatalf("could not open badger: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Connection.Close()
	})

	st.Badger = db.Connection

	return ctx, st
}

// NewRedis starts a disposable Redis container for t and connects to it the
// way the policy store does. The test is skipped when no Docker daemon is
// reachable.
func NewRedis(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, st := newSuite(t)

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker is not available: %v", err)
	}

	if err = pool.Client.Ping(); err != nil {
		t.Skipf("docker daemon does not answer: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
		Cmd:        []string{"redis-server", "--save", "", "--appendonly", "no"},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start redis: %v", err)
	}

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Errorf("could not purge redis: %v", err)
		}
	})

	// hard kill in case the cleanup never runs
	_ = resource.Expire(expireDuration)

	st.RedisAddr = resource.GetHostPort(redisPort)
	pool.MaxWait = maxWaitDuration

	var conn *storage.RedisStorage
	if err = pool.Retry(func() error {
		var retryErr error
		conn, retryErr = storage.NewRedisStorage(ctx, st.RedisAddr, "", 0)
		return retryErr
	}); err != nil {
		t.Fatalf("could not connect to redis: %v", err)
	}

	t.Cleanup(func() {
		_ = conn.Connection.Close()
	})

	st.Redis = conn.Connection

	return ctx, st
}
