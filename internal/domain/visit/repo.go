package visit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Create fails with a conflict when the clinician already holds a
	// non-cancelled visit intersecting v's window.
	Create(ctx context.Context, v *Visit) error
	GetByID(ctx context.Context, id uuid.UUID) (*Visit, error)
	// Update persists status-related fields of an existing visit that is
	// still in status from. A visit that moved on meanwhile is a conflict.
	Update(ctx context.Context, v *Visit, from Status) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Visit, int, error)
	// ListScheduled returns every visit matching f ordered by scheduled start.
	ListScheduled(ctx context.Context, f Filter) ([]*Visit, error)
	// ListCheckedIn returns visits in status whose check-in falls in [from, to).
	ListCheckedIn(ctx context.Context, status Status, from, to time.Time) ([]*Visit, error)
	// FindOverlapping returns non-cancelled visits of a clinician intersecting [start, end).
	FindOverlapping(ctx context.Context, clinicianID uuid.UUID, start, end time.Time) ([]*Visit, error)
}
