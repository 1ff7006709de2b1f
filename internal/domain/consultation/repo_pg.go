package consultation

import (
	"context"
	"errors"
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

func NewRepoWithDB(db queryable) Repository { return &repoPG{db: db} }

const uniqueViolation = "23505"

const recordCols = `id, record_number, visit_id, patient_id, clinician_id, visit_date,
	chief_complaint, subjective, objective, assessment, plan, created_at`

func (r *repoPG) CreateRecord(ctx context.Context, m *MedicalRecord) error {
	m.ID = uuid.New()
	m.CreatedAt = time.Now().UTC()
	_, err := r.db.Exec(ctx, `
		INSERT INTO medical_record (`+recordCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		m.ID, m.RecordNumber, m.VisitID, m.PatientID, m.ClinicianID, m.VisitDate,
		m.ChiefComplaint, m.Subjective, m.Objective, m.Assessment, m.Plan, m.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperror.Conflict("visit %s already has a medical record", m.VisitID)
	}
	return err
}

// GetRecordByVisit returns the oldest record of the visit.
func (r *repoPG) GetRecordByVisit(ctx context.Context, visitID uuid.UUID) (*MedicalRecord, error) {
	var m MedicalRecord
	err := r.db.QueryRow(ctx, `SELECT `+recordCols+` FROM medical_record
		WHERE visit_id = $1 ORDER BY created_at ASC LIMIT 1`, visitID).
		Scan(&m.ID, &m.RecordNumber, &m.VisitID, &m.PatientID, &m.ClinicianID, &m.VisitDate,
			&m.ChiefComplaint, &m.Subjective, &m.Objective, &m.Assessment, &m.Plan, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("medical record for visit", visitID)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repoPG) VisitsWithRecords(ctx context.Context, visitIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(visitIDs))
	if len(visitIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `SELECT DISTINCT visit_id FROM medical_record WHERE visit_id = ANY($1)`, visitIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

const prescriptionCols = `id, medical_record_id, visit_id, patient_id, prescriber_id, medication,
	dosage, frequency, duration, quantity, instructions, issued_at`

func (r *repoPG) CreatePrescription(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	p.IssuedAt = time.Now().UTC()
	_, err := r.db.Exec(ctx, `
		INSERT INTO prescription (`+prescriptionCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		p.ID, p.MedicalRecordID, p.VisitID, p.PatientID, p.PrescriberID, p.Medication,
		p.Dosage, p.Frequency, p.Duration, p.Quantity, p.Instructions, p.IssuedAt)
	return err
}

func (r *repoPG) ListPrescriptions(ctx context.Context, visitID uuid.UUID) ([]*Prescription, error) {
	rows, err := r.db.Query(ctx, `SELECT `+prescriptionCols+` FROM prescription
		WHERE visit_id = $1 ORDER BY issued_at ASC`, visitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Prescription
	for rows.Next() {
		var p Prescription
		if err := rows.Scan(&p.ID, &p.MedicalRecordID, &p.VisitID, &p.PatientID, &p.PrescriberID,
			&p.Medication, &p.Dosage, &p.Frequency, &p.Duration, &p.Quantity, &p.Instructions,
			&p.IssuedAt); err != nil {
			return nil, err
		}
		items = append(items, &p)
	}
	return items, rows.Err()
}
