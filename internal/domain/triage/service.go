package triage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vetclinic/clinic/internal/domain/patient"
	"github.com/vetclinic/clinic/internal/domain/visit"
	"github.com/vetclinic/clinic/internal/platform/apperror"
	"github.com/vetclinic/clinic/internal/platform/auth"
	"github.com/vetclinic/clinic/internal/platform/clock"
	"github.com/vetclinic/clinic/internal/platform/metrics"
)

// VisitSource reads visits.
type VisitSource interface {
	GetVisit(ctx context.Context, id uuid.UUID) (*visit.Visit, error)
	CheckedInOn(ctx context.Context, day time.Time) ([]*visit.Visit, error)
}

// RecordIndex tells which visits already have a medical record.
type RecordIndex interface {
	VisitsWithRecords(ctx context.Context, visitIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

// PatientDirectory resolves pet and owner details.
type PatientDirectory interface {
	Summaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]patient.Summary, error)
}

type Service struct {
	repo     Repository
	visits   VisitSource
	records  RecordIndex
	patients PatientDirectory
	clock    *clock.Clinic
	logger   zerolog.Logger
	metrics  *metrics.ClinicMetrics
}

func NewService(repo Repository, visits VisitSource, records RecordIndex, patients PatientDirectory,
	clk *clock.Clinic, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		visits:   visits,
		records:  records,
		patients: patients,
		clock:    clk,
		logger:   logger.With().Str("component", "triage").Logger(),
	}
}

func (s *Service) SetMetrics(m *metrics.ClinicMetrics) { s.metrics = m }

// RecordTriage stores one assessment for a visit. It never changes the visit status.
func (s *Service) RecordTriage(ctx context.Context, caller auth.Caller, visitID uuid.UUID, in Vitals) (*Record, error) {
	if !caller.IsClinician() {
		return nil, apperror.Unauthorized("recording triage")
	}
	rec, err := in.Validate()
	if err != nil {
		return nil, err
	}
	v, err := s.visits.GetVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if v.Status.Terminal() {
		return nil, apperror.Validation("visit_id", "visit is already %s", v.Status)
	}

	rec.VisitID = v.ID
	rec.RecordedBy = caller.ID
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	s.metrics.ObserveTriage(string(rec.Priority))
	s.logger.Info().
		Str("visit_id", v.ID.String()).
		Str("priority", string(rec.Priority)).
		Msg("triage recorded")
	return rec, nil
}

func (s *Service) ListTriageForVisit(ctx context.Context, visitID uuid.UUID) ([]*Record, error) {
	if _, err := s.visits.GetVisit(ctx, visitID); err != nil {
		return nil, err
	}
	return s.repo.ListByVisit(ctx, visitID)
}

// LatestComplaint returns the chief complaint of the newest triage record.
func (s *Service) LatestComplaint(ctx context.Context, visitID uuid.UUID) (string, bool, error) {
	latest, err := s.repo.LatestForVisits(ctx, []uuid.UUID{visitID})
	if err != nil {
		return "", false, err
	}
	rec, ok := latest[visitID]
	if !ok || rec.ChiefComplaint == "" {
		return "", false, nil
	}
	return rec.ChiefComplaint, true, nil
}

// ListConsultationQueue returns visits ready for consultation on day. Store
// failures are logged and produce an empty queue so dashboards keep rendering.
func (s *Service) ListConsultationQueue(ctx context.Context, day time.Time) []QueueItem {
	items, err := s.buildQueue(ctx, day)
	if err != nil {
		s.logger.Warn().Err(err).Str("day", s.clock.DateKey(day)).Msg("consultation queue unavailable")
		return []QueueItem{}
	}
	s.metrics.SetQueueSize(len(items))
	return items
}

func (s *Service) buildQueue(ctx context.Context, day time.Time) ([]QueueItem, error) {
	from, to := s.clock.DayBounds(day)
	visits, err := s.visits.CheckedInOn(ctx, day)
	if err != nil {
		return nil, err
	}
	if len(visits) == 0 {
		return []QueueItem{}, nil
	}

	ids := make([]uuid.UUID, 0, len(visits))
	petIDs := make([]uuid.UUID, 0, len(visits))
	for _, v := range visits {
		ids = append(ids, v.ID)
		petIDs = append(petIDs, v.PatientID)
	}
	latest, err := s.repo.LatestForVisits(ctx, ids)
	if err != nil {
		return nil, err
	}
	withRecord, err := s.records.VisitsWithRecords(ctx, ids)
	if err != nil {
		return nil, err
	}
	pets, err := s.patients.Summaries(ctx, petIDs)
	if err != nil {
		// Missing pet details should not hide the queue.
		s.logger.Warn().Err(err).Msg("patient summaries unavailable")
		pets = nil
	}

	return BuildQueue(Snapshot{
		DayStart:     from,
		DayEnd:       to,
		Visits:       visits,
		LatestTriage: latest,
		WithRecord:   withRecord,
		Patients:     pets,
	}), nil
}
