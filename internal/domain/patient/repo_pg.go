package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vetclinic/clinic/internal/platform/apperror"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type repoPG struct{ db queryable }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{db: pool} }

func NewRepoWithDB(db queryable) Repository { return &repoPG{db: db} }

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	var p Patient
	err := r.db.QueryRow(ctx, `
		SELECT id, owner_id, name, species, breed, sex, date_of_birth, created_at
		FROM patient WHERE id = $1`, id).
		Scan(&p.ID, &p.OwnerID, &p.Name, &p.Species, &p.Breed, &p.Sex, &p.DateOfBirth, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("patient", id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) GetOwner(ctx context.Context, id uuid.UUID) (*Owner, error) {
	var o Owner
	err := r.db.QueryRow(ctx, `
		SELECT id, first_name, last_name, phone, email, created_at
		FROM owner WHERE id = $1`, id).
		Scan(&o.ID, &o.FirstName, &o.LastName, &o.Phone, &o.Email, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("owner", id)
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repoPG) Summaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Summary, error) {
	out := make(map[uuid.UUID]Summary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.name, p.species, COALESCE(p.breed, ''), o.id,
			TRIM(o.first_name || ' ' || o.last_name), o.phone
		FROM patient p JOIN owner o ON o.id = p.owner_id
		WHERE p.id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.PatientID, &s.Name, &s.Species, &s.Breed, &s.OwnerID, &s.OwnerName, &s.OwnerPhone); err != nil {
			return nil, err
		}
		out[s.PatientID] = s
	}
	return out, rows.Err()
}
