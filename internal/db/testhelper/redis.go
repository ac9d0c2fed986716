package testhelper

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	redisclient "github.com/hackgods/carepulse-appointments/internal/redis"
)

var (
	redisOnce sync.Once
	redisAddr string
	redisErr  error
)

// SetupRedis starts one Redis container per test binary and returns a client
// to it. The client is closed via t.Cleanup.
func SetupRedis(t *testing.T) *redis.Client {
	t.Helper()

	redisOnce.Do(func() {
		redisAddr, redisErr = startRedis()
	})
	if redisErr != nil {
		t.Fatalf("testhelper: setup redis: %v", redisErr)
	}

	client, err := redisclient.NewRedisClient(context.Background(), redisclient.Options{Addr: redisAddr})
	if err != nil {
		t.Fatalf("testhelper: connect redis: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func startRedis() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		return "", fmt.Errorf("mapped port: %w", err)
	}

	return fmt.Sprintf("%s:%s", host, port.Port()), nil
}
