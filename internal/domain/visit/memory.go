package visit

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vetclinic/clinic/internal/platform/apperror"
)

// InMemoryRepository keeps visits in process memory. It backs the server's
// --memory mode and cross-package tests.
type InMemoryRepository struct {
	mu     sync.RWMutex
	visits map[uuid.UUID]*Visit
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{visits: make(map[uuid.UUID]*Visit)}
}

func (r *InMemoryRepository) Create(_ context.Context, v *Visit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.Status != StatusCancelled {
		for _, o := range r.visits {
			if o.ClinicianID == v.ClinicianID && o.Status != StatusCancelled && o.Overlaps(v.ScheduledStart, v.ScheduledEnd) {
				return apperror.Conflict("clinician already has visit %s from %s",
					o.AppointmentNumber, o.ScheduledStart.Format("2006-01-02 15:04"))
			}
		}
	}
	v.ID = uuid.New()
	v.CreatedAt = time.Now().UTC()
	v.UpdatedAt = v.CreatedAt
	cp := *v
	r.visits[v.ID] = &cp
	return nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Visit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.visits[id]
	if !ok {
		return nil, apperror.NotFound("visit", id)
	}
	cp := *v
	return &cp, nil
}

func (r *InMemoryRepository) Update(_ context.Context, v *Visit, from Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.visits[v.ID]
	if !ok {
		return apperror.NotFound("visit", v.ID)
	}
	if cur.Status != from {
		return apperror.Conflict("visit %s is no longer %s", v.ID, from)
	}
	cp := *v
	r.visits[v.ID] = &cp
	return nil
}

func (r *InMemoryRepository) matching(keep func(*Visit) bool) []*Visit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Visit
	for _, v := range r.visits {
		if keep(v) {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out
}

func (f Filter) match(v *Visit) bool {
	switch {
	case !f.From.IsZero() && v.ScheduledStart.Before(f.From):
		return false
	case !f.To.IsZero() && !v.ScheduledStart.Before(f.To):
		return false
	case f.Status != "" && v.Status != f.Status:
		return false
	case f.ClinicianID != uuid.Nil && v.ClinicianID != f.ClinicianID:
		return false
	case f.PatientID != uuid.Nil && v.PatientID != f.PatientID:
		return false
	case f.ExcludeCancelled && v.Status == StatusCancelled:
		return false
	}
	return true
}

func byStart(items []*Visit) {
	sort.Slice(items, func(i, j int) bool { return items[i].ScheduledStart.Before(items[j].ScheduledStart) })
}

func (r *InMemoryRepository) List(_ context.Context, f Filter, limit, offset int) ([]*Visit, int, error) {
	all := r.matching(f.match)
	byStart(all)
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *InMemoryRepository) ListScheduled(_ context.Context, f Filter) ([]*Visit, error) {
	all := r.matching(f.match)
	byStart(all)
	return all, nil
}

func (r *InMemoryRepository) ListCheckedIn(_ context.Context, status Status, from, to time.Time) ([]*Visit, error) {
	out := r.matching(func(v *Visit) bool {
		return v.Status == status && v.CheckedInAt != nil &&
			!v.CheckedInAt.Before(from) && v.CheckedInAt.Before(to)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CheckedInAt.Before(*out[j].CheckedInAt) })
	return out, nil
}

func (r *InMemoryRepository) FindOverlapping(_ context.Context, clinicianID uuid.UUID, start, end time.Time) ([]*Visit, error) {
	out := r.matching(func(v *Visit) bool {
		return v.ClinicianID == clinicianID && v.Status != StatusCancelled && v.Overlaps(start, end)
	})
	byStart(out)
	return out, nil
}
