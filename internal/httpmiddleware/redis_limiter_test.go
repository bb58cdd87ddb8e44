package httpmiddleware

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func TestRedisLimiter(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	l, err := NewRedisLimiter(client, "test:"+uuid.NewString(), 1, 2*time.Second)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}

	state, err := l.Get(ctx, "10.0.0.1")
	if err != nil || state.Reached {
		t.Fatalf("first hit should pass: %+v %v", state, err)
	}
	if secs := secondsUntil(state.Reset); secs <= 0 || secs > 2 {
		t.Fatalf("unexpected reset in %ds", secs)
	}
	if state, _ := l.Get(ctx, "10.0.0.1"); !state.Reached {
		t.Fatalf("second hit should be limited")
	}
	if state, _ := l.Get(ctx, "10.0.0.2"); state.Reached {
		t.Fatalf("other client should pass")
	}

	time.Sleep(2100 * time.Millisecond)
	if state, _ := l.Get(ctx, "10.0.0.1"); state.Reached {
		t.Fatalf("hit after the window should pass")
	}
}
