// Package storetest starts a shared MongoDB for integration tests.
package storetest

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tallyhq/tally/internal/dbpool"
)

var (
	once      sync.Once
	sharedURI string
	initErr   error
)

// Logger returns a logger that discards output below error level.
func Logger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.ErrorLevel)

	return l
}

// SetupPool returns a connection manager bound to a fresh database on the
// shared test server. TEST_MONGODB_URI selects an existing server; otherwise
// a mongo:7 container is started once per test binary. The test is skipped
// under -short or when no server can be reached. The database is dropped in
// t.Cleanup.
func SetupPool(t *testing.T) *dbpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping MongoDB integration test in -short mode")
	}

	once.Do(func() {
		if uri := os.Getenv("TEST_MONGODB_URI"); uri != "" {
			sharedURI = uri
			return
		}
		sharedURI, initErr = startContainer()
	})
	if initErr != nil {
		t.Skipf("storetest: MongoDB unavailable: %v", initErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	dbName := "tally_test_" + uuid.NewString()[:8]

	pool, err := dbpool.NewPool(ctx, dbpool.Options{
		URI:              sharedURI,
		Database:         dbName,
		LivenessInterval: 10 * time.Second,
	}, Logger())
	if err != nil {
		t.Fatalf("storetest: connecting: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if db, err := pool.Database(ctx); err == nil {
			db.Drop(ctx) //nolint:errcheck // best-effort test cleanup.
		}
		pool.Close(ctx) //nolint:errcheck // best-effort test cleanup.
	})

	return pool
}

func startContainer() (uri string, err error) {
	defer func() {
		// testcontainers panics when no Docker provider can be found.
		if r := recover(); r != nil {
			err = fmt.Errorf("docker provider: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor: wait.ForListeningPort("27017/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "27017")
	if err != nil {
		return "", fmt.Errorf("get mapped port: %w", err)
	}

	return fmt.Sprintf("mongodb://%s:%s/?directConnection=true", host, port.Port()), nil
}
