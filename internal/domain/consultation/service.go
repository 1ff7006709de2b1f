package consultation

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vetclinic/clinic/internal/domain/visit"
	"github.com/vetclinic/clinic/internal/platform/apperror"
	"github.com/vetclinic/clinic/internal/platform/auth"
	"github.com/vetclinic/clinic/internal/platform/clock"
	"github.com/vetclinic/clinic/internal/platform/metrics"
)

// VisitWorkflow reads visits and moves them through their lifecycle.
type VisitWorkflow interface {
	GetVisit(ctx context.Context, id uuid.UUID) (*visit.Visit, error)
	TransitionVisit(ctx context.Context, id uuid.UUID, target string, in visit.TransitionInput) (*visit.Visit, error)
}

// ComplaintSource supplies the chief complaint captured at triage.
type ComplaintSource interface {
	LatestComplaint(ctx context.Context, visitID uuid.UUID) (string, bool, error)
}

// ConsistencyWarning is logged when a medical record exists but its visit is not completed.
const ConsistencyWarning = "ConsistencyWarning"

type Service struct {
	repo       Repository
	visits     VisitWorkflow
	complaints ComplaintSource
	clock      *clock.Clinic
	logger     zerolog.Logger
	metrics    *metrics.ClinicMetrics
}

func NewService(repo Repository, visits VisitWorkflow, complaints ComplaintSource, clk *clock.Clinic, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		visits:     visits,
		complaints: complaints,
		clock:      clk,
		logger:     logger.With().Str("component", "consultation").Logger(),
	}
}

func (s *Service) SetMetrics(m *metrics.ClinicMetrics) { s.metrics = m }

// SetComplaints attaches the triage lookup after construction, since triage
// itself depends on this service for the record check.
func (s *Service) SetComplaints(c ComplaintSource) { s.complaints = c }

// CompleteConsultation creates the medical record of a visit and marks the
// visit completed. Calling it again for the same visit returns the existing
// record. The record is authoritative: if the status update fails afterwards
// the call still succeeds and the divergence is logged.
func (s *Service) CompleteConsultation(ctx context.Context, caller auth.Caller, req CompleteRequest) (*Outcome, error) {
	if !caller.IsVeterinarian() {
		return nil, apperror.Unauthorized("completing a consultation")
	}
	if req.VisitID == uuid.Nil {
		return nil, apperror.Validation("visit_id", "visit_id is required")
	}
	if req.PatientID == uuid.Nil {
		return nil, apperror.Validation("patient_id", "patient_id is required")
	}
	if req.ClinicianID == uuid.Nil {
		return nil, apperror.Validation("clinician_id", "clinician_id is required")
	}
	diagnosis := strings.TrimSpace(req.Diagnosis)
	if diagnosis == "" {
		return nil, apperror.Validation("diagnosis", "diagnosis is required")
	}

	v, err := s.visits.GetVisit(ctx, req.VisitID)
	if err != nil {
		return nil, err
	}
	if v.PatientID != req.PatientID {
		return nil, apperror.Validation("patient_id", "patient does not match the visit")
	}
	// A covering vet may sign the record under their own id.
	if req.ClinicianID != v.ClinicianID && req.ClinicianID.String() != caller.ID {
		return nil, apperror.Validation("clinician_id", "clinician is neither the visit's clinician nor the caller")
	}

	existing, err := s.repo.GetRecordByVisit(ctx, v.ID)
	switch {
	case err == nil:
		out := &Outcome{Record: existing}
		out.Warning = s.markCompleted(ctx, v, existing)
		s.metrics.ObserveConsultation("existing")
		return out, nil
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, err
	}

	if v.Status == visit.StatusCancelled || v.Status == visit.StatusNoShow {
		return nil, apperror.Validation("visit_id", "visit is %s", v.Status)
	}

	rec := &MedicalRecord{
		RecordNumber:   NewRecordNumber(s.clock.Now()),
		VisitID:        v.ID,
		PatientID:      v.PatientID,
		ClinicianID:    req.ClinicianID,
		VisitDate:      s.clock.StartOfDay(v.ScheduledStart),
		ChiefComplaint: s.chiefComplaint(ctx, v),
		Subjective:     strings.TrimSpace(req.Subjective),
		Objective:      strings.TrimSpace(req.Objective),
		Assessment:     diagnosis,
		Plan:           strings.TrimSpace(req.Plan),
	}
	if err := s.repo.CreateRecord(ctx, rec); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			// Lost a race with a concurrent completion of the same visit.
			if winner, gerr := s.repo.GetRecordByVisit(ctx, v.ID); gerr == nil {
				out := &Outcome{Record: winner}
				out.Warning = s.markCompleted(ctx, v, winner)
				s.metrics.ObserveConsultation("existing")
				return out, nil
			}
		}
		s.metrics.ObserveConsultation("failed")
		return nil, err
	}
	s.logger.Info().
		Str("visit_id", v.ID.String()).
		Str("record_number", rec.RecordNumber).
		Msg("medical record created")

	out := &Outcome{Record: rec, Created: true}
	out.Warning = s.markCompleted(ctx, v, rec)
	s.metrics.ObserveConsultation("created")
	return out, nil
}

// markCompleted moves v to completed unless it already is. It returns a
// warning message instead of an error on failure.
func (s *Service) markCompleted(ctx context.Context, v *visit.Visit, rec *MedicalRecord) string {
	if v.Status == visit.StatusCompleted {
		return ""
	}
	if _, err := s.visits.TransitionVisit(ctx, v.ID, string(visit.StatusCompleted), visit.TransitionInput{}); err != nil {
		s.metrics.ObserveConsistencyWarning("visit_status")
		s.logger.Warn().
			Err(err).
			Str("kind", ConsistencyWarning).
			Str("visit_id", v.ID.String()).
			Str("record_number", rec.RecordNumber).
			Str("visit_status", string(v.Status)).
			Msg("medical record exists but visit could not be completed")
		return "medical record saved; visit status could not be updated"
	}
	return ""
}

func (s *Service) chiefComplaint(ctx context.Context, v *visit.Visit) string {
	if s.complaints != nil {
		c, ok, err := s.complaints.LatestComplaint(ctx, v.ID)
		if err != nil {
			s.logger.Warn().Err(err).Str("visit_id", v.ID.String()).Msg("triage complaint unavailable")
		}
		if ok {
			return c
		}
	}
	return v.Reason
}

func (s *Service) GetMedicalRecordForVisit(ctx context.Context, visitID uuid.UUID) (*MedicalRecord, error) {
	return s.repo.GetRecordByVisit(ctx, visitID)
}

// VisitsWithRecords reports which of the given visits have a medical record.
func (s *Service) VisitsWithRecords(ctx context.Context, visitIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return s.repo.VisitsWithRecords(ctx, visitIDs)
}

// IssuePrescription is allowed once the visit has a medical record, whatever
// the visit status says.
func (s *Service) IssuePrescription(ctx context.Context, caller auth.Caller, visitID uuid.UUID, in PrescriptionInput) (*Prescription, error) {
	if !caller.IsVeterinarian() {
		return nil, apperror.Unauthorized("issuing a prescription")
	}
	if strings.TrimSpace(in.Medication) == "" {
		return nil, apperror.Validation("medication", "medication is required")
	}
	if strings.TrimSpace(in.Dosage) == "" {
		return nil, apperror.Validation("dosage", "dosage is required")
	}
	if in.Quantity < 0 {
		return nil, apperror.Validation("quantity", "quantity cannot be negative")
	}

	rec, err := s.repo.GetRecordByVisit(ctx, visitID)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.Validation("visit_id", "complete the consultation before prescribing")
	}
	if err != nil {
		return nil, err
	}

	p := &Prescription{
		MedicalRecordID: rec.ID,
		VisitID:         rec.VisitID,
		PatientID:       rec.PatientID,
		PrescriberID:    caller.ID,
		Medication:      strings.TrimSpace(in.Medication),
		Dosage:          strings.TrimSpace(in.Dosage),
		Frequency:       strings.TrimSpace(in.Frequency),
		Duration:        strings.TrimSpace(in.Duration),
		Quantity:        in.Quantity,
		Instructions:    strings.TrimSpace(in.Instructions),
	}
	if err := s.repo.CreatePrescription(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("visit_id", visitID.String()).
		Str("prescription_id", p.ID.String()).
		Msg("prescription issued")
	return p, nil
}

func (s *Service) ListPrescriptionsForVisit(ctx context.Context, visitID uuid.UUID) ([]*Prescription, error) {
	return s.repo.ListPrescriptions(ctx, visitID)
}
