package health

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisChecker_HealthCheck(t *testing.T) {
	srv := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	checker := NewRedisChecker(client)
	if err := checker.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() failed: %v", err)
	}
}

func TestRedisChecker_HealthCheck_Down(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	checker := NewRedisChecker(client)
	if err := checker.HealthCheck(context.Background()); err == nil {
		t.Error("expected HealthCheck() to fail when Redis is down")
	}
}

func TestRedisChecker_HealthCheck_ContextCancellation(t *testing.T) {
	srv := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	checker := NewRedisChecker(client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	if err := checker.HealthCheck(ctx); err == nil {
		t.Error("expected HealthCheck() to fail with a cancelled context")
	}
}
