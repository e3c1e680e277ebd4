package leads

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for lead storage. Every call is scoped to
// one user; implementations assign ids and write timestamps.
type Repository interface {
	Create(ctx context.Context, userID string, lead *Lead) (*Lead, error)
	Update(ctx context.Context, userID string, lead *Lead) (*Lead, error)
	Delete(ctx context.Context, userID, id string) error
	GetByID(ctx context.Context, userID, id string) (*Lead, error)
	// List returns the user's leads, newest first.
	List(ctx context.Context, userID string) ([]*Lead, error)
}

// InMemoryRepository is a stub implementation of Repository using in-memory storage
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]map[string]*Lead
	now   func() time.Time
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads: make(map[string]map[string]*Lead),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a copy of lead under a fresh id.
func (r *InMemoryRepository) Create(ctx context.Context, userID string, lead *Lead) (*Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stored := lead.Clone()
	stored.ID = uuid.New().String()
	stored.UserID = userID
	stored.CreatedAt = r.now()
	stored.UpdatedAt = stored.CreatedAt

	r.mu.Lock()
	if r.leads[userID] == nil {
		r.leads[userID] = make(map[string]*Lead)
	}
	r.leads[userID][stored.ID] = stored
	r.mu.Unlock()

	return stored.Clone(), nil
}

// Update replaces every field of an existing lead except its id and creation time.
func (r *InMemoryRepository) Update(ctx context.Context, userID string, lead *Lead) (*Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.leads[userID][lead.ID]
	if !ok {
		return nil, ErrLeadNotFound
	}
	stored := lead.Clone()
	stored.UserID = userID
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = r.now()
	r.leads[userID][stored.ID] = stored
	return stored.Clone(), nil
}

// Delete removes a lead permanently.
func (r *InMemoryRepository) Delete(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.leads[userID][id]; !ok {
		return ErrLeadNotFound
	}
	delete(r.leads[userID], id)
	return nil
}

// GetByID retrieves a lead by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, userID, id string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[userID][id]
	if !ok {
		return nil, ErrLeadNotFound
	}

	return lead.Clone(), nil
}

// List returns the user's leads ordered by creation time, newest first.
func (r *InMemoryRepository) List(ctx context.Context, userID string) ([]*Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]*Lead, 0, len(r.leads[userID]))
	for _, lead := range r.leads[userID] {
		out = append(out, lead.Clone())
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
