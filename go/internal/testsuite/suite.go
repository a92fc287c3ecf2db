package testsuite

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/mcdev12/livequiz/go/internal/migrations"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
)

const (
	expireDuration  = 120
	maxWaitDuration = 120 * time.Second
)

const (
	redisPort  = "6379/tcp"
	redisImage = "redis"
	redisTag   = "alpine"

	postgresPort  = "5432/tcp"
	postgresImage = "postgres"
	postgresTag   = "16-alpine"
)

// Postgres is a migrated throwaway database.
type Postgres struct {
	URL  string
	DB   *sql.DB
	Pool *pgxpool.Pool
}

func newPool(t *testing.T) *dockertest.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("could not connect to docker: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker is not available: %v", err)
	}
	pool.MaxWait = maxWaitDuration
	return pool
}

func run(t *testing.T, pool *dockertest.Pool, opts *dockertest.RunOptions) *dockertest.Resource {
	t.Helper()

	// pulls an image, creates a container based on it and runs it
	resource, err := pool.RunWithOptions(opts, func(config *docker.HostConfig) {
		// set AutoRemove to true so that stopped container goes away by itself
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start resource: %v", err)
	}

	// never returns error
	_ = resource.Expire(expireDuration) // Tell docker to hard kill the container in 120 seconds

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Errorf("could not purge resource: %v", err)
		}
	})
	return resource
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), maxWaitDuration)
	t.Cleanup(cancel)
	return ctx
}

// NewRedis starts an empty Redis container.
func NewRedis(t *testing.T) (context.Context, *redis.Client) {
	t.Helper()

	ctx := testContext(t)
	pool := newPool(t)
	resource := run(t, pool, &dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
	})

	var client *redis.Client
	// exponential backoff-retry, because the application in the container might not be ready to accept connections yet
	if err := pool.Retry(func() error {
		client = redis.NewClient(&redis.Options{Addr: resource.GetHostPort(redisPort)})
		return client.Ping(ctx).Err()
	}); err != nil {
		t.Fatalf("could not connect to redis: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("could not flush database: %v", err)
	}
	return ctx, client
}

// NewPostgres starts a Postgres container and applies the schema migrations.
func NewPostgres(t *testing.T) (context.Context, *Postgres) {
	t.Helper()

	ctx := testContext(t)
	pool := newPool(t)
	resource := run(t, pool, &dockertest.RunOptions{
		Repository: postgresImage,
		Tag:        postgresTag,
		Env: []string{
			"POSTGRES_USER=livequiz",
			"POSTGRES_PASSWORD=livequiz",
			"POSTGRES_DB=livequiz",
		},
	})

	url := fmt.Sprintf("postgres://livequiz:livequiz@%s/livequiz?sslmode=disable", resource.GetHostPort(postgresPort))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var err error
		db, err = sql.Open("postgres", url)
		if err != nil {
			return err
		}
		return db.PingContext(ctx)
	}); err != nil {
		t.Fatalf("could not connect to postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := migrations.Up(url); err != nil {
		t.Fatalf("could not migrate database: %v", err)
	}

	pgPool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("could not create pgx pool: %v", err)
	}
	t.Cleanup(pgPool.Close)

	return ctx, &Postgres{URL: url, DB: db, Pool: pgPool}
}
