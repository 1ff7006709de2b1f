package patient

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vetclinic/clinic/internal/platform/apperror"
)

type InMemoryRepository struct {
	mu       sync.RWMutex
	patients map[uuid.UUID]*Patient
	owners   map[uuid.UUID]*Owner
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{patients: map[uuid.UUID]*Patient{}, owners: map[uuid.UUID]*Owner{}}
}

// Add registers an owner and a pet, assigning ids when missing.
func (r *InMemoryRepository) Add(o *Owner, p *Patient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	o.CreatedAt, p.CreatedAt = now, now
	p.OwnerID = o.ID
	r.owners[o.ID] = o
	r.patients[p.ID] = p
}

func (r *InMemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, apperror.NotFound("patient", id)
	}
	return p, nil
}

func (r *InMemoryRepository) GetOwner(_ context.Context, id uuid.UUID) (*Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.owners[id]
	if !ok {
		return nil, apperror.NotFound("owner", id)
	}
	return o, nil
}

func (r *InMemoryRepository) Summaries(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[uuid.UUID]Summary, len(ids))
	for _, id := range ids {
		if p, ok := r.patients[id]; ok {
			out[id] = Summarize(p, r.owners[p.OwnerID])
		}
	}
	return out, nil
}
