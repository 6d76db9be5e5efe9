package redis_test

import (
	"context"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	bookingredis "ms-booking/internal/booking/redis"
)

// TestEventLockIntegration exercises the lock against a real Redis container.
func TestEventLockIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Redis integration test in short mode")
	}

	ctx := context.Background()
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:latest",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("Failed to start Redis container: %v", err)
	}
	defer redisContainer.Terminate(ctx)

	host, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	port, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})
	lock := bookingredis.NewRedis(client)

	// First holder wins
	locked, err := lock.LockEvent("event1", "token-a")
	require.NoError(t, err)
	assert.True(t, locked, "Expected event to be lockable")

	// Second attempt while held must fail
	locked, err = lock.LockEvent("event1", "token-b")
	require.NoError(t, err)
	assert.False(t, locked, "Expected event to be already locked")

	// A non-holder unlock is a no-op
	err = lock.UnlockEvent("event1", "token-b")
	require.NoError(t, err)
	locked, err = lock.LockEvent("event1", "token-c")
	require.NoError(t, err)
	assert.False(t, locked, "Expected lock to survive a stale unlock")

	// The holder releases, and the event is lockable again
	err = lock.UnlockEvent("event1", "token-a")
	require.NoError(t, err)
	locked, err = lock.LockEvent("event1", "token-c")
	require.NoError(t, err)
	assert.True(t, locked, "Expected event to be lockable after unlock")
}
