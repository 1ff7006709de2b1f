package visit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vetclinic/clinic/internal/domain/patient"
	"github.com/vetclinic/clinic/internal/platform/apperror"
	"github.com/vetclinic/clinic/internal/platform/auth"
	"github.com/vetclinic/clinic/internal/platform/clock"
	"github.com/vetclinic/clinic/internal/platform/metrics"
)

// DefaultDuration is applied when a booking omits its end time.
const DefaultDuration = 30 * time.Minute

// ChangeFunc observes every persisted visit write.
type ChangeFunc func(ctx context.Context, v *Visit)

// PatientLookup resolves the pet a visit is booked for.
type PatientLookup interface {
	GetSummary(ctx context.Context, id uuid.UUID) (*patient.Summary, error)
}

type Service struct {
	repo     Repository
	patients PatientLookup
	clock    *clock.Clinic
	logger   zerolog.Logger
	metrics  *metrics.ClinicMetrics
	onChange []ChangeFunc
}

func NewService(repo Repository, clk *clock.Clinic, logger zerolog.Logger) *Service {
	return &Service{repo: repo, clock: clk, logger: logger.With().Str("component", "visit").Logger()}
}

func (s *Service) SetMetrics(m *metrics.ClinicMetrics) { s.metrics = m }

// SetPatients makes BookVisit reject unknown pets. Without it the store's
// own constraints are the only check.
func (s *Service) SetPatients(p PatientLookup) { s.patients = p }

// OnChange registers fn to run after a visit is created or transitioned.
func (s *Service) OnChange(fn ChangeFunc) { s.onChange = append(s.onChange, fn) }

func (s *Service) notify(ctx context.Context, v *Visit) {
	for _, fn := range s.onChange {
		fn(ctx, v)
	}
}

// BookRequest is the input of BookVisit.
type BookRequest struct {
	PatientID      uuid.UUID `json:"patient_id"`
	ClinicianID    uuid.UUID `json:"clinician_id"`
	ScheduledStart time.Time `json:"scheduled_start"`
	ScheduledEnd   time.Time `json:"scheduled_end"`
	Reason         string    `json:"reason"`
	IsEmergency    bool      `json:"is_emergency"`
}

// BookVisit creates a visit. Staff bookings start confirmed, self-service
// bookings start pending and wait for the front desk.
func (s *Service) BookVisit(ctx context.Context, caller auth.Caller, req BookRequest) (*Visit, error) {
	if req.PatientID == uuid.Nil {
		return nil, apperror.Validation("patient_id", "patient_id is required")
	}
	if req.ClinicianID == uuid.Nil {
		return nil, apperror.Validation("clinician_id", "clinician_id is required")
	}
	if req.ScheduledStart.IsZero() {
		return nil, apperror.Validation("scheduled_start", "scheduled_start is required")
	}
	if req.ScheduledEnd.IsZero() {
		req.ScheduledEnd = req.ScheduledStart.Add(DefaultDuration)
	}
	if !req.ScheduledEnd.After(req.ScheduledStart) {
		return nil, apperror.Validation("scheduled_end", "scheduled_end must be after scheduled_start")
	}
	if s.clock.IsPastDay(req.ScheduledStart) {
		return nil, apperror.Validation("scheduled_start", "cannot book a visit on a past date")
	}
	if s.patients != nil {
		if _, err := s.patients.GetSummary(ctx, req.PatientID); err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return nil, apperror.NotFound("patient", req.PatientID)
			}
			return nil, err
		}
	}

	clash, err := s.repo.FindOverlapping(ctx, req.ClinicianID, req.ScheduledStart, req.ScheduledEnd)
	if err != nil {
		return nil, err
	}
	if len(clash) > 0 {
		return nil, apperror.Conflict("clinician already has visit %s from %s",
			clash[0].AppointmentNumber, clash[0].ScheduledStart.In(s.clock.Location()).Format("2006-01-02 15:04"))
	}

	status := StatusPending
	if caller.IsStaff() {
		status = StatusConfirmed
	}
	v := &Visit{
		AppointmentNumber: NewAppointmentNumber(req.ScheduledStart.In(s.clock.Location())),
		PatientID:         req.PatientID,
		ClinicianID:       req.ClinicianID,
		ScheduledStart:    req.ScheduledStart,
		ScheduledEnd:      req.ScheduledEnd,
		Status:            status,
		Reason:            strings.TrimSpace(req.Reason),
		IsEmergency:       req.IsEmergency,
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}

	s.metrics.ObserveBooking(string(status))
	s.logger.Info().
		Str("visit_id", v.ID.String()).
		Str("appointment_number", v.AppointmentNumber).
		Str("status", string(status)).
		Str("booked_by", caller.ID).
		Msg("visit booked")
	s.notify(ctx, v)
	return v, nil
}

// TransitionVisit moves a visit to target. The target is validated before the
// visit is loaded so a bad request never touches the store.
func (s *Service) TransitionVisit(ctx context.Context, id uuid.UUID, target string, in TransitionInput) (*Visit, error) {
	st, ok := ParseStatus(target)
	if !ok {
		return nil, apperror.Validation("status", "unknown status %q", target)
	}
	if st == StatusCancelled && strings.TrimSpace(in.Reason) == "" {
		return nil, apperror.Validation("cancellation_reason", "a cancellation reason is required")
	}

	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := v.Status
	if err := Transition(v, st, in, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, v, from); err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(string(from), string(st))
	s.logger.Info().
		Str("visit_id", v.ID.String()).
		Str("from", string(from)).
		Str("to", string(st)).
		Msg("visit status changed")
	s.notify(ctx, v)
	return v, nil
}

func (s *Service) GetVisit(ctx context.Context, id uuid.UUID) (*Visit, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListVisits(ctx context.Context, f Filter, limit, offset int) ([]*Visit, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

// VisitsBetween returns every visit scheduled in [from, to).
func (s *Service) VisitsBetween(ctx context.Context, from, to time.Time, excludeCancelled bool) ([]*Visit, error) {
	return s.repo.ListScheduled(ctx, Filter{From: from, To: to, ExcludeCancelled: excludeCancelled})
}

// CheckedInOn returns in-progress visits whose check-in falls on the clinic day of
// day, oldest check-in first.
func (s *Service) CheckedInOn(ctx context.Context, day time.Time) ([]*Visit, error) {
	from, to := s.clock.DayBounds(day)
	return s.repo.ListCheckedIn(ctx, StatusInProgress, from, to)
}
