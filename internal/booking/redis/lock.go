package redis

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis holds a short-lived mutex per event so concurrent reservation
// attempts from different instances do not pile up on the same event row.
// Correctness does not depend on it; the database transaction does the real
// serialization.
type Redis struct {
	Client *redis.Client
	Logger *log.Logger
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{
		Client: client,
		Logger: log.Default(),
	}
}

// getEventLockDuration returns the lock TTL from the environment or the
// default. The TTL only matters when an instance dies mid-reservation.
func (r *Redis) getEventLockDuration() time.Duration {
	defaultDuration := 10 * time.Second

	ttlStr := os.Getenv("EVENT_LOCK_TTL_SECONDS")
	if ttlStr == "" {
		return defaultDuration
	}

	ttlSec, err := strconv.Atoi(ttlStr)
	if err != nil || ttlSec < 1 {
		r.Logger.Println("REDIS: Invalid EVENT_LOCK_TTL_SECONDS value '" + ttlStr + "', using default 10 seconds")
		return defaultDuration
	}
	return time.Duration(ttlSec) * time.Second
}

// LockEvent takes the event mutex. Returns false when another reservation
// currently holds it.
func (r *Redis) LockEvent(eventID, token string) (bool, error) {
	key := "event_lock:" + eventID
	ok, err := r.Client.SetNX(context.Background(), key, token, r.getEventLockDuration()).Result()
	return ok, err
}

// UnlockEvent releases the mutex, but only for the holder that took it; a
// stale caller whose lock already expired must not release someone else's.
func (r *Redis) UnlockEvent(eventID, token string) error {
	ctx := context.Background()
	key := fmt.Sprintf("event_lock:%s", eventID)
	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // already expired
	}
	if err != nil {
		return err
	}
	if val == token {
		_, err := r.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}
