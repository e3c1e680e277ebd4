package reminders

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRegistry(t *testing.T) (*Registry, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRegistry(client), mr
}

func TestRegistryTracksUsers(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()
	for _, u := range []string{"user-1", "user-2", "user-1", ""} {
		if err := reg.Touch(ctx, u); err != nil {
			t.Fatalf("touch %q: %v", u, err)
		}
	}
	users, err := reg.Users(ctx)
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 distinct users, got %v", users)
	}
}

func TestClaimIsOncePerInstant(t *testing.T) {
	reg, mr := newTestRegistry(t)
	ctx := context.Background()
	due := time.Date(2024, 6, 15, 15, 0, 0, 0, time.UTC)

	ok, err := reg.Claim(ctx, "lead-1", due)
	if err != nil || !ok {
		t.Fatalf("expected first claim to win, ok=%v err=%v", ok, err)
	}
	ok, err = reg.Claim(ctx, "lead-1", due)
	if err != nil || ok {
		t.Fatalf("expected duplicate claim to lose, ok=%v err=%v", ok, err)
	}
	ok, _ = reg.Claim(ctx, "lead-1", due.Add(time.Hour))
	if !ok {
		t.Fatal("rescheduled follow-up should be claimable")
	}

	if ttl := mr.TTL(claimKey("lead-1", due)); ttl != claimTTL {
		t.Fatalf("expected %s ttl, got %s", claimTTL, ttl)
	}

	mr.FastForward(claimTTL + time.Second)
	ok, _ = reg.Claim(ctx, "lead-1", due)
	if !ok {
		t.Fatal("claim should expire after a day")
	}
}

func TestReleaseAllowsRetry(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()
	due := time.Date(2024, 6, 15, 15, 0, 0, 0, time.UTC)
	if ok, _ := reg.Claim(ctx, "lead-1", due); !ok {
		t.Fatal("expected claim")
	}
	if err := reg.Release(ctx, "lead-1", due); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := reg.Claim(ctx, "lead-1", due); !ok {
		t.Fatal("expected claim after release")
	}
}
