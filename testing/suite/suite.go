package suite

import (
	"context"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/gridgame-backend/internal/repository/storage"
)

const (
	containerTTLSeconds = 120
	startupTimeout      = 120 * time.Second

	redisPort  = "6379/tcp"
	redisImage = "redis"
	redisTag   = "alpine"
)

// Suite runs repository tests against a throwaway Redis container.
type Suite struct {
	*testing.T

	Storage *redis.Client
}

// New starts a Redis container, connects through the same storage bootstrap
// the application uses, and flushes the database so each test starts clean.
// The container removes itself when the test finishes or on the TTL.
func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	t.Cleanup(cancel)

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("could not connect to docker: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start resource: %v", err)
	}

	// hard kill the container if a test hangs past the TTL; never errors
	_ = resource.Expire(containerTTLSeconds)

	redisAddr := resource.GetHostPort(redisPort)

	// retry with backoff: the container may not accept connections yet
	pool.MaxWait = startupTimeout

	var redisClient *redis.Client
	if err = pool.Retry(func() error {
		redisClient, err = storage.NewRedisStorage(ctx, redisAddr)
		return err
	}); err != nil {
		if purgeErr := pool.Purge(resource); purgeErr != nil {
			t.Fatalf("could not purge resource: %v", purgeErr)
		}

		t.Fatalf("could not connect to redis: %v", err)
	}

	if err = redisClient.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("could not flush database: %v", err)
	}

	t.Cleanup(func() {
		t.Helper()

		if err = pool.Purge(resource); err != nil {
			t.Fatalf("could not purge resource: %v", err)
		}
	})

	return ctx, &Suite{
		T:       t,
		Storage: redisClient,
	}
}
