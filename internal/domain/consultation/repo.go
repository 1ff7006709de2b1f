package consultation

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateRecord(ctx context.Context, r *MedicalRecord) error
	// GetRecordByVisit returns apperror.ErrNotFound when the visit has no record.
	GetRecordByVisit(ctx context.Context, visitID uuid.UUID) (*MedicalRecord, error)
	VisitsWithRecords(ctx context.Context, visitIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	CreatePrescription(ctx context.Context, p *Prescription) error
	ListPrescriptions(ctx context.Context, visitID uuid.UUID) ([]*Prescription, error)
}
