package visit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vetclinic/clinic/internal/platform/apperror"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ db queryable }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{db: pool} }

// NewRepoWithDB allows injecting a mock connection in tests.
func NewRepoWithDB(db queryable) Repository { return &repoPG{db: db} }

const (
	exclusionViolation  = "23P01"
	foreignKeyViolation = "23503"
)

const visitCols = `id, appointment_number, patient_id, clinician_id, scheduled_start, scheduled_end,
	actual_start, actual_end, status, reason, is_emergency, cancellation_reason, cancelled_at,
	checked_in_at, created_at, updated_at`

func scanVisit(row pgx.Row) (*Visit, error) {
	var v Visit
	var status string
	err := row.Scan(&v.ID, &v.AppointmentNumber, &v.PatientID, &v.ClinicianID,
		&v.ScheduledStart, &v.ScheduledEnd, &v.ActualStart, &v.ActualEnd, &status,
		&v.Reason, &v.IsEmergency, &v.CancellationReason, &v.CancelledAt,
		&v.CheckedInAt, &v.CreatedAt, &v.UpdatedAt)
	v.Status = Status(status)
	return &v, err
}

func collect(rows pgx.Rows) ([]*Visit, error) {
	defer rows.Close()
	var items []*Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

func (r *repoPG) Create(ctx context.Context, v *Visit) error {
	v.ID = uuid.New()
	now := time.Now().UTC()
	v.CreatedAt, v.UpdatedAt = now, now
	_, err := r.db.Exec(ctx, `
		INSERT INTO visit (id, appointment_number, patient_id, clinician_id, scheduled_start, scheduled_end,
			status, reason, is_emergency, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		v.ID, v.AppointmentNumber, v.PatientID, v.ClinicianID, v.ScheduledStart, v.ScheduledEnd,
		string(v.Status), v.Reason, v.IsEmergency, v.CreatedAt, v.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case exclusionViolation:
			return apperror.Conflict("clinician already has a visit overlapping %s",
				v.ScheduledStart.Format("2006-01-02 15:04"))
		case foreignKeyViolation:
			return apperror.NotFound("patient", v.PatientID)
		}
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Visit, error) {
	v, err := scanVisit(r.db.QueryRow(ctx, `SELECT `+visitCols+` FROM visit WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("visit", id)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *repoPG) Update(ctx context.Context, v *Visit, from Status) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE visit SET status=$2, actual_start=$3, actual_end=$4, cancellation_reason=$5,
			cancelled_at=$6, checked_in_at=$7, updated_at=$8
		WHERE id = $1 AND status = $9`,
		v.ID, string(v.Status), v.ActualStart, v.ActualEnd, v.CancellationReason,
		v.CancelledAt, v.CheckedInAt, v.UpdatedAt, string(from))
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM visit WHERE id = $1)`, v.ID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return apperror.NotFound("visit", v.ID)
	}
	return apperror.Conflict("visit %s is no longer %s", v.ID, from)
}

func whereClause(f Filter) (string, []interface{}) {
	clause := ` WHERE 1=1`
	var args []interface{}
	idx := 1
	add := func(cond string, val interface{}) {
		clause += fmt.Sprintf(cond, idx)
		args = append(args, val)
		idx++
	}
	if !f.From.IsZero() {
		add(` AND scheduled_start >= $%d`, f.From)
	}
	if !f.To.IsZero() {
		add(` AND scheduled_start < $%d`, f.To)
	}
	if f.Status != "" {
		add(` AND status = $%d`, string(f.Status))
	}
	if f.ClinicianID != uuid.Nil {
		add(` AND clinician_id = $%d`, f.ClinicianID)
	}
	if f.PatientID != uuid.Nil {
		add(` AND patient_id = $%d`, f.PatientID)
	}
	if f.ExcludeCancelled {
		clause += ` AND status <> 'cancelled'`
	}
	return clause, args
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Visit, int, error) {
	where, args := whereClause(f)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM visit`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := `SELECT ` + visitCols + ` FROM visit` + where +
		fmt.Sprintf(` ORDER BY scheduled_start ASC LIMIT $%d OFFSET $%d`, n+1, n+2)
	rows, err := r.db.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	items, err := collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repoPG) ListScheduled(ctx context.Context, f Filter) ([]*Visit, error) {
	where, args := whereClause(f)
	rows, err := r.db.Query(ctx, `SELECT `+visitCols+` FROM visit`+where+` ORDER BY scheduled_start ASC`, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *repoPG) ListCheckedIn(ctx context.Context, status Status, from, to time.Time) ([]*Visit, error) {
	rows, err := r.db.Query(ctx, `SELECT `+visitCols+` FROM visit
		WHERE status = $1 AND checked_in_at >= $2 AND checked_in_at < $3
		ORDER BY checked_in_at ASC`, string(status), from, to)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *repoPG) FindOverlapping(ctx context.Context, clinicianID uuid.UUID, start, end time.Time) ([]*Visit, error) {
	rows, err := r.db.Query(ctx, `SELECT `+visitCols+` FROM visit
		WHERE clinician_id = $1 AND status <> 'cancelled'
			AND scheduled_start < $3 AND scheduled_end > $2
		ORDER BY scheduled_start ASC`, clinicianID, start, end)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}
