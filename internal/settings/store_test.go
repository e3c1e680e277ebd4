package settings

import (
	"context"
	"errors"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, Defaults{Team: []string{"AD", "Rohan", "Akshay"}, Sentinel: "AD"}), mr
}

func TestGetReturnsDefaults(t *testing.T) {
	store, _ := newTestStore(t)
	got, err := store.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Team) != 3 || got.Team[0] != "AD" || got.SheetURL != "" {
		t.Fatalf("unexpected defaults %+v", got)
	}
}

func TestSentinelAlwaysOnDefaultRoster(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStore(client, Defaults{Team: []string{"Rohan"}, Sentinel: "AD"})
	got, err := store.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Team) != 2 || got.Team[0] != "AD" {
		t.Fatalf("expected sentinel first, got %v", got.Team)
	}
}

func TestAddMember(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	got, err := store.AddMember(ctx, "user-1", "  Meera ")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(got.Team) != 4 || got.Team[3] != "Meera" {
		t.Fatalf("unexpected team %v", got.Team)
	}
	if !mr.Exists("nectar:settings:user-1") {
		t.Fatalf("expected settings persisted")
	}

	again, err := store.AddMember(ctx, "user-1", "meera")
	if err != nil {
		t.Fatalf("add duplicate: %v", err)
	}
	if len(again.Team) != 4 {
		t.Fatalf("duplicate should be ignored, got %v", again.Team)
	}

	if _, err := store.AddMember(ctx, "user-1", "   "); !errors.Is(err, ErrBlankMember) {
		t.Fatalf("expected ErrBlankMember, got %v", err)
	}
}

func TestRemoveMember(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	got, err := store.RemoveMember(ctx, "user-1", "Rohan")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(got.Team) != 2 || got.Team[1] != "Akshay" {
		t.Fatalf("unexpected team %v", got.Team)
	}
	if _, err := store.RemoveMember(ctx, "user-1", "ad"); !errors.Is(err, ErrProtectedMember) {
		t.Fatalf("expected ErrProtectedMember, got %v", err)
	}
	if _, err := store.RemoveMember(ctx, "user-1", "Nobody"); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}

	reloaded, err := store.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(reloaded.Team) != 2 {
		t.Fatalf("removal not persisted: %v", reloaded.Team)
	}
}

func TestSheetURLRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if got, err := store.SheetURL(ctx, "user-1"); err != nil || got != "" {
		t.Fatalf("expected no url, got %q (%v)", got, err)
	}
	if _, err := store.SetSheetURL(ctx, "user-1", "https://script.google.com/macros/s/abc/exec"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, _ := store.SheetURL(ctx, "user-1"); got != "https://script.google.com/macros/s/abc/exec" {
		t.Fatalf("unexpected url %q", got)
	}
	if got, _ := store.SheetURL(ctx, "user-2"); got != "" {
		t.Fatalf("settings leaked across users: %q", got)
	}
}

func TestGetCorruptData(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Set("nectar:settings:user-1", "{not json")
	if _, err := store.Get(context.Background(), "user-1"); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}

func TestValidateSheetURL(t *testing.T) {
	tests := []struct {
		raw string
		ok  bool
	}{
		{"https://script.google.com/macros/s/abc/exec", true},
		{"https://eu.script.google.com/x", true},
		{"http://script.google.com/x", false},
		{"https://evil.example.com/x", false},
		{"https://notscript.google.com.evil.io/x", false},
		{"not a url", false},
		{"", false},
	}
	for _, tt := range tests {
		err := ValidateSheetURL(tt.raw, "script.google.com")
		if (err == nil) != tt.ok {
			t.Fatalf("ValidateSheetURL(%q) = %v, want ok=%v", tt.raw, err, tt.ok)
		}
	}
	if err := ValidateSheetURL("https://any.example.com", ""); err != nil {
		t.Fatalf("expected any https host allowed without restriction, got %v", err)
	}
}
