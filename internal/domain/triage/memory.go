package triage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type InMemoryRepository struct {
	mu      sync.RWMutex
	records []*Record
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Create(_ context.Context, rec *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.ID = uuid.New()
	rec.CreatedAt = time.Now().UTC()
	// Keep creation order strict even when the clock does not advance.
	if n := len(r.records); n > 0 && !rec.CreatedAt.After(r.records[n-1].CreatedAt) {
		rec.CreatedAt = r.records[n-1].CreatedAt.Add(time.Microsecond)
	}
	cp := *rec
	r.records = append(r.records, &cp)
	return nil
}

func (r *InMemoryRepository) ListByVisit(_ context.Context, visitID uuid.UUID) ([]*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Record
	for _, rec := range r.records {
		if rec.VisitID == visitID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *InMemoryRepository) LatestForVisits(_ context.Context, visitIDs []uuid.UUID) (map[uuid.UUID]*Record, error) {
	want := make(map[uuid.UUID]bool, len(visitIDs))
	for _, id := range visitIDs {
		want[id] = true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[uuid.UUID]*Record, len(visitIDs))
	for _, rec := range r.records {
		if !want[rec.VisitID] {
			continue
		}
		if cur, ok := out[rec.VisitID]; !ok || rec.CreatedAt.After(cur.CreatedAt) {
			cp := *rec
			out[rec.VisitID] = &cp
		}
	}
	return out, nil
}
