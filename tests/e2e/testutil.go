package e2e

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcneo4j "github.com/testcontainers/testcontainers-go/modules/neo4j"
	tcpg "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"go.uber.org/zap"

	"github.com/nidhogg/cogkernel/internal/audit"
	"github.com/nidhogg/cogkernel/internal/mirror"
)

// Suppress unused import warning for the testcontainers base package, kept
// for the GenericContainerRequest type other suites may reach for later.
var _ = testcontainers.GenericContainerRequest{}

var testLogger *zap.Logger

func init() {
	testLogger, _ = zap.NewDevelopment()
}

// startNeo4j starts a Neo4j testcontainer and returns its bolt URI.
func startNeo4j(ctx context.Context) (string, func(), error) {
	container, err := tcneo4j.Run(ctx, "neo4j:5-community", tcneo4j.WithoutAuthentication())
	if err != nil {
		return "", nil, fmt.Errorf("start neo4j: %w", err)
	}
	uri, err := container.BoltUrl(ctx)
	if err != nil {
		container.Terminate(ctx)
		return "", nil, fmt.Errorf("neo4j bolt url: %w", err)
	}
	return uri, func() { container.Terminate(ctx) }, nil
}

// startPostgres starts a PostgreSQL testcontainer and returns its DSN.
func startPostgres(ctx context.Context) (string, func(), error) {
	container, err := tcpg.Run(ctx, "postgres:16-alpine",
		tcpg.WithDatabase("cogkernel_test"),
		tcpg.WithUsername("test"),
		tcpg.WithPassword("test"),
		tcpg.BasicWaitStrategies(),
	)
	if err != nil {
		return "", nil, fmt.Errorf("start postgres: %w", err)
	}
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return "", nil, fmt.Errorf("pg connection string: %w", err)
	}
	return dsn, func() { container.Terminate(ctx) }, nil
}

// startRedis starts a Redis testcontainer and returns its URL.
func startRedis(ctx context.Context) (string, func(), error) {
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		return "", nil, fmt.Errorf("start redis: %w", err)
	}
	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		container.Terminate(ctx)
		return "", nil, fmt.Errorf("redis endpoint: %w", err)
	}
	return "redis://" + endpoint, func() { container.Terminate(ctx) }, nil
}

// skipUnlessLive skips a test unless COGKERNEL_E2E=1 is set, so these never
// run under a plain `go test ./...` without Docker available.
func skipUnlessLive(t *testing.T) {
	t.Helper()
	if os.Getenv("COGKERNEL_E2E") != "1" {
		t.Skip("set COGKERNEL_E2E=1 to run tests against live Neo4j/Postgres/Redis testcontainers")
	}
}

// newAuditStore starts Postgres, migrates it, and returns a ready *audit.Store.
func newAuditStore(ctx context.Context, t *testing.T) *audit.Store {
	t.Helper()
	dsn, cleanup, err := startPostgres(ctx)
	if err != nil {
		t.Fatalf("postgres: %v", err)
	}
	t.Cleanup(cleanup)

	store, err := audit.New(ctx, dsn, testLogger)
	if err != nil {
		t.Fatalf("audit.New: %v", err)
	}
	t.Cleanup(store.Close)

	if err := store.Migrate(ctx, "../../internal/audit/migrations"); err != nil {
		t.Fatalf("audit.Migrate: %v", err)
	}
	return store
}

// newMirrorStore starts Neo4j and returns a ready *mirror.Store.
func newMirrorStore(ctx context.Context, t *testing.T) *mirror.Store {
	t.Helper()
	uri, cleanup, err := startNeo4j(ctx)
	if err != nil {
		t.Fatalf("neo4j: %v", err)
	}
	t.Cleanup(cleanup)

	store, err := mirror.NewStore(ctx, uri, "", "", testLogger)
	if err != nil {
		t.Fatalf("mirror.NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close(ctx) })
	return store
}

// newRedisURL starts Redis and returns its connection URL.
func newRedisURL(ctx context.Context, t *testing.T) string {
	t.Helper()
	url, cleanup, err := startRedis(ctx)
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	t.Cleanup(cleanup)
	return url
}
