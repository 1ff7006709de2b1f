package consultation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MedicalRecord maps to the medical_record table. At most one exists per visit,
// and its existence is what removes the visit from the consultation queue.
type MedicalRecord struct {
	ID             uuid.UUID `db:"id" json:"id"`
	RecordNumber   string    `db:"record_number" json:"record_number"`
	VisitID        uuid.UUID `db:"visit_id" json:"visit_id"`
	PatientID      uuid.UUID `db:"patient_id" json:"patient_id"`
	ClinicianID    uuid.UUID `db:"clinician_id" json:"clinician_id"`
	VisitDate      time.Time `db:"visit_date" json:"visit_date"`
	ChiefComplaint string    `db:"chief_complaint" json:"chief_complaint"`
	Subjective     string    `db:"subjective" json:"subjective,omitempty"`
	Objective      string    `db:"objective" json:"objective,omitempty"`
	Assessment     string    `db:"assessment" json:"assessment"`
	Plan           string    `db:"plan" json:"plan,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Findings is the veterinarian's write-up of the consultation.
type Findings struct {
	Subjective string `json:"subjective"`
	Objective  string `json:"objective"`
	Diagnosis  string `json:"diagnosis"`
	Plan       string `json:"plan"`
}

// CompleteRequest is the input of CompleteConsultation.
type CompleteRequest struct {
	VisitID     uuid.UUID `json:"visit_id"`
	PatientID   uuid.UUID `json:"patient_id"`
	ClinicianID uuid.UUID `json:"clinician_id"`
	Findings
}

// Outcome reports what CompleteConsultation did.
type Outcome struct {
	Record  *MedicalRecord `json:"medical_record"`
	Created bool           `json:"created"`
	// Warning is set when the record exists but the visit could not be marked completed.
	Warning string `json:"warning,omitempty"`
}

// Prescription maps to the prescription table.
type Prescription struct {
	ID              uuid.UUID `db:"id" json:"id"`
	MedicalRecordID uuid.UUID `db:"medical_record_id" json:"medical_record_id"`
	VisitID         uuid.UUID `db:"visit_id" json:"visit_id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	PrescriberID    string    `db:"prescriber_id" json:"prescriber_id"`
	Medication      string    `db:"medication" json:"medication"`
	Dosage          string    `db:"dosage" json:"dosage"`
	Frequency       string    `db:"frequency" json:"frequency,omitempty"`
	Duration        string    `db:"duration" json:"duration,omitempty"`
	Quantity        int       `db:"quantity" json:"quantity,omitempty"`
	Instructions    string    `db:"instructions" json:"instructions,omitempty"`
	IssuedAt        time.Time `db:"issued_at" json:"issued_at"`
}

// PrescriptionInput is the input of IssuePrescription.
type PrescriptionInput struct {
	Medication   string `json:"medication"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
	Quantity     int    `json:"quantity"`
	Instructions string `json:"instructions"`
}

// NewRecordNumber returns a number such as MR-20250601-3F9A1C.
func NewRecordNumber(day time.Time) string {
	short := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("MR-%s-%s", day.Format("20060102"), short)
}
