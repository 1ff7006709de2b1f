package consultation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vetclinic/clinic/internal/platform/apperror"
)

type InMemoryRepository struct {
	mu            sync.RWMutex
	records       map[uuid.UUID]*MedicalRecord
	prescriptions []*Prescription
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{records: make(map[uuid.UUID]*MedicalRecord)}
}

func (r *InMemoryRepository) CreateRecord(_ context.Context, m *MedicalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[m.VisitID]; ok {
		return apperror.Conflict("visit %s already has a medical record", m.VisitID)
	}
	m.ID = uuid.New()
	m.CreatedAt = time.Now().UTC()
	cp := *m
	r.records[m.VisitID] = &cp
	return nil
}

func (r *InMemoryRepository) GetRecordByVisit(_ context.Context, visitID uuid.UUID) (*MedicalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.records[visitID]
	if !ok {
		return nil, apperror.NotFound("medical record for visit", visitID)
	}
	cp := *m
	return &cp, nil
}

func (r *InMemoryRepository) VisitsWithRecords(_ context.Context, visitIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[uuid.UUID]bool, len(visitIDs))
	for _, id := range visitIDs {
		if _, ok := r.records[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (r *InMemoryRepository) CreatePrescription(_ context.Context, p *Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.New()
	p.IssuedAt = time.Now().UTC()
	cp := *p
	r.prescriptions = append(r.prescriptions, &cp)
	return nil
}

func (r *InMemoryRepository) ListPrescriptions(_ context.Context, visitID uuid.UUID) ([]*Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Prescription
	for _, p := range r.prescriptions {
		if p.VisitID == visitID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}
