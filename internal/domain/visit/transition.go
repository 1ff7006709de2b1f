package visit

import (
	"strings"
	"time"

	"github.com/vetclinic/clinic/internal/platform/apperror"
)

// TransitionInput carries the optional payload of a status change.
type TransitionInput struct {
	Reason      string
	CheckedInAt *time.Time
}

// Transition applies a status change to v in place. It is a pure function of its
// inputs; persisting the result is the caller's job.
//
// Moving between pending, confirmed and in_progress never clears a recorded
// check-in. Terminal states accept no further transitions.
func Transition(v *Visit, target Status, in TransitionInput, now time.Time) error {
	if !validStatuses[target] {
		return apperror.Validation("status", "unknown status %q", string(target))
	}
	if v.Status.Terminal() {
		return apperror.Validation("status", "visit is already %s", v.Status)
	}

	switch target {
	case StatusCancelled:
		reason := strings.TrimSpace(in.Reason)
		if reason == "" {
			return apperror.Validation("cancellation_reason", "a cancellation reason is required")
		}
		v.CancellationReason = &reason
		v.CancelledAt = &now

	case StatusCompleted:
		v.ActualEnd = &now

	case StatusInProgress:
		if in.CheckedInAt != nil {
			t := *in.CheckedInAt
			v.CheckedInAt = &t
		} else if v.CheckedInAt == nil {
			v.CheckedInAt = &now
		}
		if v.ActualStart == nil {
			v.ActualStart = &now
		}

	case StatusConfirmed, StatusPending:
		if in.CheckedInAt != nil {
			t := *in.CheckedInAt
			v.CheckedInAt = &t
		}
	}

	v.Status = target
	v.UpdatedAt = now
	return nil
}
