package suite

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nats-io/nats.go"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/rocketscienceinc/tictactoe-versus/internal/repository/storage"
)

const (
	expireDuration  = 120
	maxWaitDuration = 120 * time.Second
)

const (
	postgresPort     = "5432/tcp"
	postgresImage    = "postgres"
	postgresTag      = "16-alpine"
	postgresPassword = "secret"
	postgresDB       = "tictactoe"

	natsPort  = "4222/tcp"
	natsImage = "nats"
	natsTag   = "2-alpine"
)

type Suite struct {
	*testing.T
	Logger *slog.Logger

	Storage *redis.Client
	Redis   *miniredis.Miniredis
}

// New - starts an in-process Redis server and returns a client connected to it.
func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), maxWaitDuration)
	t.Cleanup(cancel)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	server := miniredis.RunT(t)

	redisClient := redis.NewClient(&redis.Options{
		Addr: server.Addr(),
	})

	t.Cleanup(func() {
		_ = redisClient.Close()
	})

	return ctx, &Suite{
		T:       t,
		Logger:  logger,
		Storage: redisClient,
		Redis:   server,
	}
}

// NewPostgres - runs a PostgreSQL container for the test. Skips the test without docker.
func NewPostgres(t *testing.T) (context.Context, *gorm.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), maxWaitDuration)
	t.Cleanup(cancel)

	pool, resource := runContainer(t, &dockertest.RunOptions{
		Repository: postgresImage,
		Tag:        postgresTag,
		Env: []string{
			"POSTGRES_PASSWORD=" + postgresPassword,
			"POSTGRES_DB=" + postgresDB,
		},
	})

	dsn := fmt.Sprintf("postgres://postgres:%s@%s/%s?sslmode=disable",
		postgresPassword, resource.GetHostPort(postgresPort), postgresDB)

	var pgStorage *storage.PostgresStorage
	if err := pool.Retry(func() error {
		var err error
		pgStorage, err = storage.NewPostgresStorage(dsn)
		if err != nil {
			return err
		}

		sqlDB, err := pgStorage.Connection.DB()
		if err != nil {
			return err
		}

		return sqlDB.PingContext(ctx)
	}); err != nil {
		t.Fatalf("could not connect to postgres: %v", err)
	}

	t.Cleanup(func() {
		_ = pgStorage.Close()
	})

	return ctx, pgStorage.Connection
}

// NewNATS - runs a NATS container for the test and returns its URL. Skips the test without docker.
func NewNATS(t *testing.T) (context.Context, string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), maxWaitDuration)
	t.Cleanup(cancel)

	pool, resource := runContainer(t, &dockertest.RunOptions{
		Repository: natsImage,
		Tag:        natsTag,
	})

	url := "nats://" + resource.GetHostPort(natsPort)

	if err := pool.Retry(func() error {
		conn, err := nats.Connect(url)
		if err != nil {
			return err
		}
		conn.Close()
		return nil
	}); err != nil {
		t.Fatalf("could not connect to nats: %v", err)
	}

	return ctx, url
}

func runContainer(t *testing.T, options *dockertest.RunOptions) (*dockertest.Pool, *dockertest.Resource) {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("could not connect to docker: %v", err)
	}

	if err = pool.Client.Ping(); err != nil {
		t.Skipf("docker is not available: %v", err)
	}

	// pulls an image, creates a container based on it and runs it
	resource, err := pool.RunWithOptions(options, func(config *docker.HostConfig) {
		// set AutoRemove to true so that stopped container goes away by itself
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start resource: %v", err)
	}

	// never returns error
	_ = resource.Expire(expireDuration) // Tell docker to hard kill the container in 120 seconds

	// exponential backoff-retry, because the application in the container might not be ready to accept connections yet
	pool.MaxWait = maxWaitDuration

	t.Cleanup(func() {
		if err = pool.Purge(resource); err != nil {
			t.Logf("could not purge resource: %v", err)
		}
	})

	return pool, resource
}
