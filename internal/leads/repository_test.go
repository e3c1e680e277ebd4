package leads

import (
	"context"
	"testing"
	"time"
)

func TestRepository_CreateAssignsIdentity(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	lead, err := repo.Create(ctx, "user-1", &Lead{Name: "Jane Smith", Phone: "+1987654321"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.ID == "" {
		t.Error("expected lead ID to be set")
	}
	if lead.CreatedAt.IsZero() || !lead.UpdatedAt.Equal(lead.CreatedAt) {
		t.Errorf("expected matching timestamps, got %s / %s", lead.CreatedAt, lead.UpdatedAt)
	}
}

func TestRepository_GetByID(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, "user-1", &Lead{Name: "Test User"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, err := repo.GetByID(ctx, "user-1", created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("expected ID %s, got %s", created.ID, found.ID)
	}

	if _, err := repo.GetByID(ctx, "user-2", created.ID); err != ErrLeadNotFound {
		t.Errorf("expected other users to be isolated, got %v", err)
	}
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo := NewInMemoryRepository()

	_, err := repo.GetByID(context.Background(), "user-1", "nonexistent")
	if err != ErrLeadNotFound {
		t.Errorf("expected ErrLeadNotFound, got %v", err)
	}
}

func TestRepository_UpdateRestampsAndKeepsCreatedAt(t *testing.T) {
	repo := NewInMemoryRepository()
	ticks := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	repo.now = func() time.Time {
		t := ticks[0]
		ticks = ticks[1:]
		return t
	}
	ctx := context.Background()

	created, _ := repo.Create(ctx, "user-1", &Lead{Name: "Old"})
	created.Name = "New"
	updated, err := repo.Update(ctx, "user-1", created)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "New" || !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatalf("expected updatedAt to move forward")
	}
}

func TestRepository_ReturnsCopies(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	created, _ := repo.Create(ctx, "user-1", &Lead{Name: "A", HoneyTypes: []string{"Acacia Honey"}})
	created.HoneyTypes[0] = "mutated"

	found, _ := repo.GetByID(ctx, "user-1", created.ID)
	if found.HoneyTypes[0] != "Acacia Honey" {
		t.Fatalf("stored lead was mutated through returned pointer")
	}
}

func TestRepository_ListNewestFirst(t *testing.T) {
	repo := NewInMemoryRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	step := 0
	repo.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Hour)
	}
	ctx := context.Background()
	for _, name := range []string{"first", "second", "third"} {
		if _, err := repo.Create(ctx, "user-1", &Lead{Name: name}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	all, err := repo.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].Name != "third" || all[2].Name != "first" {
		t.Fatalf("unexpected order: %s, %s, %s", all[0].Name, all[1].Name, all[2].Name)
	}
}

func TestRepository_DeleteIsPermanent(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	created, _ := repo.Create(ctx, "user-1", &Lead{Name: "Gone"})

	if err := repo.Delete(ctx, "user-1", created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "user-1", created.ID); err != ErrLeadNotFound {
		t.Fatalf("expected ErrLeadNotFound on second delete, got %v", err)
	}
}
