package triage

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *Record) error
	// ListByVisit returns the records of a visit, newest first.
	ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*Record, error)
	// LatestForVisits returns the newest record of each visit that has one.
	LatestForVisits(ctx context.Context, visitIDs []uuid.UUID) (map[uuid.UUID]*Record, error)
}
