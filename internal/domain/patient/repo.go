package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetOwner(ctx context.Context, id uuid.UUID) (*Owner, error)
	// Summaries returns one entry per known id. Unknown ids are omitted.
	Summaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Summary, error)
}
