package reminders

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	usersKey     = "nectar:reminders:users"
	claimPrefix  = "nectar:reminders:sent:"
	claimTTL     = 24 * time.Hour
	claimPayload = "1"
)

// Registry tracks which users have leads worth scanning and which reminders
// were already sent.
type Registry struct {
	redis *redis.Client
}

func NewRegistry(client *redis.Client) *Registry {
	if client == nil {
		panic("reminders: redis client cannot be nil")
	}
	return &Registry{redis: client}
}

// Touch records userID as active.
func (r *Registry) Touch(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	if err := r.redis.SAdd(ctx, usersKey, userID).Err(); err != nil {
		return fmt.Errorf("reminders: track user: %w", err)
	}
	return nil
}

func (r *Registry) Users(ctx context.Context) ([]string, error) {
	users, err := r.redis.SMembers(ctx, usersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("reminders: list users: %w", err)
	}
	return users, nil
}

// Claim reserves the reminder for one lead and follow-up instant. It returns
// false when the reminder was already claimed within the last day.
func (r *Registry) Claim(ctx context.Context, leadID string, due time.Time) (bool, error) {
	ok, err := r.redis.SetNX(ctx, claimKey(leadID, due), claimPayload, claimTTL).Result()
	if err != nil {
		return false, fmt.Errorf("reminders: claim: %w", err)
	}
	return ok, nil
}

// Release drops a claim so a failed send can be retried on the next scan.
func (r *Registry) Release(ctx context.Context, leadID string, due time.Time) error {
	return r.redis.Del(ctx, claimKey(leadID, due)).Err()
}

func claimKey(leadID string, due time.Time) string {
	return claimPrefix + leadID + ":" + strconv.FormatInt(due.Unix(), 10)
}
