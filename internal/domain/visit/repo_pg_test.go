package visit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"

	"github.com/vetclinic/clinic/internal/platform/apperror"
)

var visitColumns = []string{"id", "appointment_number", "patient_id", "clinician_id",
	"scheduled_start", "scheduled_end", "actual_start", "actual_end", "status", "reason",
	"is_emergency", "cancellation_reason", "cancelled_at", "checked_in_at", "created_at", "updated_at"}

func visitRow(rows *pgxmock.Rows, id uuid.UUID, status string, checkedIn *time.Time) *pgxmock.Rows {
	start := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	return rows.AddRow(id, "APT-20250610-ABCDEF", uuid.New(), uuid.New(),
		start, start.Add(30*time.Minute), (*time.Time)(nil), (*time.Time)(nil), status, "checkup",
		false, (*string)(nil), (*time.Time)(nil), checkedIn, start, start)
}

func TestRepoPG_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT .+ FROM visit WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(visitRow(pgxmock.NewRows(visitColumns), id, "confirmed", nil))

	v, err := NewRepoWithDB(mock).GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if v.ID != id || v.Status != StatusConfirmed {
		t.Errorf("unexpected visit %+v", v)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepoPG_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT .+ FROM visit WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err = NewRepoWithDB(mock).GetByID(context.Background(), id)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepoPG_Update_NoRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	v := &Visit{ID: uuid.New(), Status: StatusConfirmed, UpdatedAt: time.Now()}
	mock.ExpectExec(`UPDATE visit SET status=\$2 .+ WHERE id = \$1 AND status = \$9`).
		WithArgs(v.ID, "confirmed", v.ActualStart, v.ActualEnd, v.CancellationReason,
			v.CancelledAt, v.CheckedInAt, v.UpdatedAt, "pending").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(v.ID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	err = NewRepoWithDB(mock).Update(context.Background(), v, StatusPending)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepoPG_Update_StatusMovedOn(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	v := &Visit{ID: uuid.New(), Status: StatusInProgress, UpdatedAt: time.Now()}
	mock.ExpectExec(`UPDATE visit SET status=\$2`).
		WithArgs(v.ID, "in_progress", v.ActualStart, v.ActualEnd, v.CancellationReason,
			v.CancelledAt, v.CheckedInAt, v.UpdatedAt, "confirmed").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(v.ID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	err = NewRepoWithDB(mock).Update(context.Background(), v, StatusConfirmed)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepoPG_Create_OverlapRejectedByConstraint(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	start := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)
	v := &Visit{AppointmentNumber: "APT-20250611-ABCDEF", PatientID: uuid.New(), ClinicianID: uuid.New(),
		ScheduledStart: start, ScheduledEnd: start.Add(30 * time.Minute), Status: StatusConfirmed}
	mock.ExpectExec(`INSERT INTO visit`).
		WillReturnError(&pgconn.PgError{Code: "23P01", ConstraintName: "visit_no_overlap"})

	err = NewRepoWithDB(mock).Create(context.Background(), v)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepoPG_Create_UnknownPatient(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	start := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)
	v := &Visit{PatientID: uuid.New(), ClinicianID: uuid.New(),
		ScheduledStart: start, ScheduledEnd: start.Add(30 * time.Minute), Status: StatusConfirmed}
	mock.ExpectExec(`INSERT INTO visit`).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "visit_patient_id_fkey"})

	err = NewRepoWithDB(mock).Create(context.Background(), v)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepoPG_List_BuildsFilter(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	from := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	vet := uuid.New()
	f := Filter{From: from, To: to, ClinicianID: vet, ExcludeCancelled: true}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM visit WHERE 1=1 AND scheduled_start >= \$1 AND scheduled_start < \$2 AND clinician_id = \$3 AND status <> 'cancelled'`).
		WithArgs(from, to, vet).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY scheduled_start ASC LIMIT \$4 OFFSET \$5`).
		WithArgs(from, to, vet, 20, 0).
		WillReturnRows(visitRow(pgxmock.NewRows(visitColumns), uuid.New(), "pending", nil))

	items, total, err := NewRepoWithDB(mock).List(context.Background(), f, 20, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("total=%d len=%d, want 1/1", total, len(items))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepoPG_FindOverlapping(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	vet := uuid.New()
	start := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)
	mock.ExpectQuery(`clinician_id = \$1 AND status <> 'cancelled'`).
		WithArgs(vet, start, end).
		WillReturnRows(pgxmock.NewRows(visitColumns))

	items, err := NewRepoWithDB(mock).FindOverlapping(context.Background(), vet, start, end)
	if err != nil {
		t.Fatalf("FindOverlapping failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no overlaps, got %d", len(items))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
