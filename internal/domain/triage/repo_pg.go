package triage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ db queryable }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{db: pool} }

func NewRepoWithDB(db queryable) Repository { return &repoPG{db: db} }

const recordCols = `id, visit_id, weight_kg, temperature_c, heart_rate, respiratory_rate,
	mucous_membrane, priority, chief_complaint, recorded_by, created_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var r Record
	var mm *string
	var priority string
	err := row.Scan(&r.ID, &r.VisitID, &r.WeightKg, &r.TemperatureC, &r.HeartRate,
		&r.RespiratoryRate, &mm, &priority, &r.ChiefComplaint, &r.RecordedBy, &r.CreatedAt)
	if mm != nil {
		m := MucousMembrane(*mm)
		r.MucousMembrane = &m
	}
	r.Priority = Priority(priority)
	return &r, err
}

func (r *repoPG) Create(ctx context.Context, rec *Record) error {
	rec.ID = uuid.New()
	rec.CreatedAt = time.Now().UTC()
	var mm *string
	if rec.MucousMembrane != nil {
		s := string(*rec.MucousMembrane)
		mm = &s
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO triage_record (`+recordCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		rec.ID, rec.VisitID, rec.WeightKg, rec.TemperatureC, rec.HeartRate, rec.RespiratoryRate,
		mm, string(rec.Priority), rec.ChiefComplaint, rec.RecordedBy, rec.CreatedAt)
	return err
}

func (r *repoPG) ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*Record, error) {
	rows, err := r.db.Query(ctx, `SELECT `+recordCols+` FROM triage_record
		WHERE visit_id = $1 ORDER BY created_at DESC`, visitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	return items, rows.Err()
}

func (r *repoPG) LatestForVisits(ctx context.Context, visitIDs []uuid.UUID) (map[uuid.UUID]*Record, error) {
	out := make(map[uuid.UUID]*Record, len(visitIDs))
	if len(visitIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `SELECT DISTINCT ON (visit_id) `+recordCols+` FROM triage_record
		WHERE visit_id = ANY($1) ORDER BY visit_id, created_at DESC`, visitIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out[rec.VisitID] = rec
	}
	return out, rows.Err()
}
