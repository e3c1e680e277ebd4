// Package settings holds per-user preferences: the team roster leads are
// assigned to and the spreadsheet endpoint lead writes are mirrored to.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrProtectedMember = errors.New("settings: member cannot be removed")
	ErrBlankMember     = errors.New("settings: member name is required")
	ErrMemberNotFound  = errors.New("settings: member not found")
	ErrInvalidSheetURL = errors.New("settings: invalid sheet url")
)

// Settings is one user's stored preferences.
type Settings struct {
	UserID    string    `json:"-"`
	Team      []string  `json:"team"`
	SheetURL  string    `json:"sheetUrl,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Defaults seeds settings for users who have never saved any.
type Defaults struct {
	Team     []string
	Sentinel string
}

// Store keeps settings as JSON in Redis.
type Store struct {
	redis    *redis.Client
	defaults Defaults
	now      func() time.Time
}

// NewStore creates a settings store.
func NewStore(redisClient *redis.Client, defaults Defaults) *Store {
	if defaults.Sentinel != "" && !containsFold(defaults.Team, defaults.Sentinel) {
		defaults.Team = append([]string{defaults.Sentinel}, defaults.Team...)
	}
	return &Store{redis: redisClient, defaults: defaults, now: time.Now}
}

func (s *Store) key(userID string) string {
	return fmt.Sprintf("nectar:settings:%s", userID)
}

// Sentinel is the member that can never be removed from a roster.
func (s *Store) Sentinel() string {
	return s.defaults.Sentinel
}

// Get retrieves settings, returning defaults if none are stored.
func (s *Store) Get(ctx context.Context, userID string) (*Settings, error) {
	data, err := s.redis.Get(ctx, s.key(userID)).Bytes()
	if err == redis.Nil {
		return &Settings{UserID: userID, Team: append([]string(nil), s.defaults.Team...)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("settings: get: %w", err)
	}

	var out Settings
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("settings: unmarshal: %w", err)
	}
	out.UserID = userID
	return &out, nil
}

// Set saves settings.
func (s *Store) Set(ctx context.Context, settings *Settings) error {
	settings.UpdatedAt = s.now().UTC()
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("settings: marshal: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(settings.UserID), data, 0).Err(); err != nil {
		return fmt.Errorf("settings: set: %w", err)
	}
	return nil
}

// AddMember appends name to the roster. Adding an existing member is a no-op.
func (s *Store) AddMember(ctx context.Context, userID, name string) (*Settings, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrBlankMember
	}
	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if containsFold(current.Team, name) {
		return current, nil
	}
	current.Team = append(current.Team, name)
	if err := s.Set(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

// RemoveMember drops name from the roster. The sentinel member is protected.
func (s *Store) RemoveMember(ctx context.Context, userID, name string) (*Settings, error) {
	name = strings.TrimSpace(name)
	if s.defaults.Sentinel != "" && strings.EqualFold(name, s.defaults.Sentinel) {
		return nil, ErrProtectedMember
	}
	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	kept := current.Team[:0]
	found := false
	for _, member := range current.Team {
		if strings.EqualFold(member, name) {
			found = true
			continue
		}
		kept = append(kept, member)
	}
	if !found {
		return nil, ErrMemberNotFound
	}
	current.Team = kept
	if err := s.Set(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

// SetSheetURL stores the mirror endpoint. An empty url clears it.
func (s *Store) SetSheetURL(ctx context.Context, userID, sheetURL string) (*Settings, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	current.SheetURL = strings.TrimSpace(sheetURL)
	if err := s.Set(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

// SheetURL returns the user's mirror endpoint, or "" when none is set.
func (s *Store) SheetURL(ctx context.Context, userID string) (string, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return current.SheetURL, nil
}

// ValidateSheetURL accepts only https URLs on host (or a subdomain of it).
func ValidateSheetURL(raw, host string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return ErrInvalidSheetURL
	}
	if host == "" {
		return nil
	}
	h := strings.ToLower(u.Hostname())
	host = strings.ToLower(host)
	if h != host && !strings.HasSuffix(h, "."+host) {
		return ErrInvalidSheetURL
	}
	return nil
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}
