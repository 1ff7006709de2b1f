package triage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetclinic/clinic/internal/domain/patient"
	"github.com/vetclinic/clinic/internal/domain/visit"
	"github.com/vetclinic/clinic/internal/platform/apperror"
	"github.com/vetclinic/clinic/internal/platform/auth"
	"github.com/vetclinic/clinic/internal/platform/clock"
)

// -- Fakes --

type mockRepo struct {
	*InMemoryRepository
	created int
	failAll error
}

func (m *mockRepo) Create(ctx context.Context, r *Record) error {
	m.created++
	return m.InMemoryRepository.Create(ctx, r)
}

func (m *mockRepo) LatestForVisits(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Record, error) {
	if m.failAll != nil {
		return nil, m.failAll
	}
	return m.InMemoryRepository.LatestForVisits(ctx, ids)
}

type fakeVisits struct {
	visits map[uuid.UUID]*visit.Visit
	clock  *clock.Clinic
}

func (f *fakeVisits) GetVisit(_ context.Context, id uuid.UUID) (*visit.Visit, error) {
	v, ok := f.visits[id]
	if !ok {
		return nil, apperror.NotFound("visit", id)
	}
	return v, nil
}

func (f *fakeVisits) CheckedInOn(_ context.Context, day time.Time) ([]*visit.Visit, error) {
	from, to := f.clock.DayBounds(day)
	var out []*visit.Visit
	for _, v := range f.visits {
		if v.Status == visit.StatusInProgress && v.CheckedInAt != nil &&
			!v.CheckedInAt.Before(from) && v.CheckedInAt.Before(to) {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeRecords map[uuid.UUID]bool

func (f fakeRecords) VisitsWithRecords(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := map[uuid.UUID]bool{}
	for _, id := range ids {
		if f[id] {
			out[id] = true
		}
	}
	return out, nil
}

type fakePatients struct{}

func (fakePatients) Summaries(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]patient.Summary, error) {
	out := map[uuid.UUID]patient.Summary{}
	for _, id := range ids {
		out[id] = patient.Summary{PatientID: id, Name: "Biscuit", OwnerName: "Ana Lopez"}
	}
	return out, nil
}

var (
	nurse        = auth.Caller{ID: "nurse-1", Roles: []string{auth.RoleVetNurse}}
	receptionist = auth.Caller{ID: "desk-1", Roles: []string{auth.RoleReceptionist}}
	queueDay     = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc     *Service
	repo    *mockRepo
	visits  *fakeVisits
	records fakeRecords
}

func newFixture() *fixture {
	clk := clock.Fixed(time.UTC, queueDay.Add(9*time.Hour))
	f := &fixture{
		repo:    &mockRepo{InMemoryRepository: NewInMemoryRepository()},
		visits:  &fakeVisits{visits: map[uuid.UUID]*visit.Visit{}, clock: clk},
		records: fakeRecords{},
	}
	f.svc = NewService(f.repo, f.visits, f.records, fakePatients{}, clk, zerolog.Nop())
	return f
}

func (f *fixture) arrive(at time.Time) *visit.Visit {
	v := &visit.Visit{ID: uuid.New(), PatientID: uuid.New(), Status: visit.StatusInProgress, CheckedInAt: &at}
	f.visits.visits[v.ID] = v
	return v
}

func validVitals() Vitals {
	return Vitals{Weight: "4.2", Temperature: "38.1", ChiefComplaint: "head shaking"}
}

func TestRecordTriage(t *testing.T) {
	f := newFixture()
	v := f.arrive(queueDay.Add(9 * time.Hour))

	rec, err := f.svc.RecordTriage(context.Background(), nurse, v.ID, validVitals())
	require.NoError(t, err)
	assert.Equal(t, v.ID, rec.VisitID)
	assert.Equal(t, "nurse-1", rec.RecordedBy)
	assert.Equal(t, visit.StatusInProgress, v.Status, "status untouched")
	assert.Equal(t, 1, f.repo.created)
}

func TestRecordTriage_RequiresClinician(t *testing.T) {
	f := newFixture()
	v := f.arrive(queueDay.Add(9 * time.Hour))
	_, err := f.svc.RecordTriage(context.Background(), receptionist, v.ID, validVitals())
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.Zero(t, f.repo.created)
}

func TestRecordTriage_InvalidVitalsNoWrite(t *testing.T) {
	f := newFixture()
	v := f.arrive(queueDay.Add(9 * time.Hour))
	_, err := f.svc.RecordTriage(context.Background(), nurse, v.ID, Vitals{Weight: "4.2"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Zero(t, f.repo.created)
}

func TestRecordTriage_NonFiniteVitalsKeepQueueEncodable(t *testing.T) {
	f := newFixture()
	v := f.arrive(queueDay.Add(9 * time.Hour))
	_, err := f.svc.RecordTriage(context.Background(), nurse, v.ID, Vitals{Weight: "NaN", Temperature: "Inf"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Zero(t, f.repo.created)

	queue := f.svc.ListConsultationQueue(context.Background(), queueDay)
	assert.Empty(t, queue)
	_, err = json.Marshal(queue)
	assert.NoError(t, err)
}

func TestRecordTriage_UnknownVisit(t *testing.T) {
	f := newFixture()
	_, err := f.svc.RecordTriage(context.Background(), nurse, uuid.New(), validVitals())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestRecordTriage_TerminalVisit(t *testing.T) {
	f := newFixture()
	v := f.arrive(queueDay.Add(9 * time.Hour))
	v.Status = visit.StatusCancelled
	_, err := f.svc.RecordTriage(context.Background(), nurse, v.ID, validVitals())
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestListConsultationQueue_RequiresTriage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v := f.arrive(queueDay.Add(9 * time.Hour))

	assert.Empty(t, f.svc.ListConsultationQueue(ctx, queueDay))

	_, err := f.svc.RecordTriage(ctx, nurse, v.ID, validVitals())
	require.NoError(t, err)
	q := f.svc.ListConsultationQueue(ctx, queueDay)
	require.Len(t, q, 1)
	assert.Equal(t, v.ID, q[0].Visit.ID)
	require.NotNil(t, q[0].Patient)
	assert.Equal(t, "Ana Lopez", q[0].Patient.OwnerName)
	assert.InDelta(t, 4.2, q[0].Triage.WeightKg, 1e-9)
}

func TestListConsultationQueue_ReTriageCountsOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v := f.arrive(queueDay.Add(9 * time.Hour))

	_, err := f.svc.RecordTriage(ctx, nurse, v.ID, validVitals())
	require.NoError(t, err)
	second := validVitals()
	second.Priority = "Urgent"
	_, err = f.svc.RecordTriage(ctx, nurse, v.ID, second)
	require.NoError(t, err)

	q := f.svc.ListConsultationQueue(ctx, queueDay)
	require.Len(t, q, 1)
	assert.Equal(t, PriorityUrgent, q[0].Triage.Priority, "latest record shown")
}

func TestListConsultationQueue_ExcludesRecordedVisits(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v := f.arrive(queueDay.Add(9 * time.Hour))
	_, err := f.svc.RecordTriage(ctx, nurse, v.ID, validVitals())
	require.NoError(t, err)

	// Record created out of band; visit still in progress and triage lingers.
	f.records[v.ID] = true
	assert.Empty(t, f.svc.ListConsultationQueue(ctx, queueDay))
}

func TestListConsultationQueue_DegradesToEmpty(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.arrive(queueDay.Add(9 * time.Hour))
	f.repo.failAll = errors.New("connection refused")

	q := f.svc.ListConsultationQueue(ctx, queueDay)
	assert.NotNil(t, q)
	assert.Empty(t, q)
}

func TestLatestComplaint(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v := f.arrive(queueDay.Add(9 * time.Hour))

	_, ok, err := f.svc.LatestComplaint(ctx, v.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.svc.RecordTriage(ctx, nurse, v.ID, validVitals())
	require.NoError(t, err)
	got, ok, err := f.svc.LatestComplaint(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "head shaking", got)
}
