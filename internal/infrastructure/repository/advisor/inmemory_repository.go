package advisor

import (
	"context"
	"fmt"
	"sync"

	domain "advisorhub/advisor-api/internal/domain/advisor"
	"advisorhub/advisor-api/internal/utils/platformerrors"
)

// InMemoryRepository is a thread-safe repository useful for demos/tests.
type InMemoryRepository struct {
	mu       sync.RWMutex
	advisors map[string]*domain.Advisor
	links    map[string]*domain.Link
	order    []string
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		advisors: make(map[string]*domain.Advisor),
		links:    make(map[string]*domain.Link),
	}
}

// Create stores a new advisor.
func (r *InMemoryRepository) Create(ctx context.Context, adv *domain.Advisor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.advisors {
		if existing.OwnerID == adv.OwnerID && existing.Handle == adv.Handle {
			return fmt.Errorf("handle %q already taken for owner %s", adv.Handle, adv.OwnerID)
		}
	}

	copied := *adv
	r.advisors[adv.ID] = &copied
	r.order = append(r.order, adv.ID)
	return nil
}

// CreateLink stores the ownership link.
func (r *InMemoryRepository) CreateLink(ctx context.Context, link *domain.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *link
	r.links[link.ID] = &copied
	return nil
}

// FindByID returns one advisor by id.
func (r *InMemoryRepository) FindByID(ctx context.Context, id string) (*domain.Advisor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adv, ok := r.advisors[id]
	if !ok {
		return nil, platformerrors.NewError(platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("advisor %s not found", id), nil)
	}
	copied := *adv
	return &copied, nil
}

// FindByOwner returns all advisors owned by ownerID in creation order.
func (r *InMemoryRepository) FindByOwner(ctx context.Context, ownerID string) ([]*domain.Advisor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Advisor
	for _, id := range r.order {
		if adv := r.advisors[id]; adv != nil && adv.OwnerID == ownerID {
			copied := *adv
			out = append(out, &copied)
		}
	}
	return out, nil
}

// HandleExists reports whether the owner already has an advisor with handle.
func (r *InMemoryRepository) HandleExists(ctx context.Context, ownerID, handle string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, adv := range r.advisors {
		if adv.OwnerID == ownerID && adv.Handle == handle {
			return true, nil
		}
	}
	return false, nil
}

// Links returns all stored links (test helper).
func (r *InMemoryRepository) Links() []*domain.Link {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Link, 0, len(r.links))
	for _, link := range r.links {
		copied := *link
		out = append(out, &copied)
	}
	return out
}
