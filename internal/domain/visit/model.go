package visit

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a visit.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

var validStatuses = map[Status]bool{
	StatusPending:    true,
	StatusConfirmed:  true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusCancelled:  true,
	StatusNoShow:     true,
}

// ParseStatus validates a raw status value.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.TrimSpace(s))
	return st, validStatuses[st]
}

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// Visit maps to the visit table. A visit is never deleted.
type Visit struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	AppointmentNumber  string     `db:"appointment_number" json:"appointment_number"`
	PatientID          uuid.UUID  `db:"patient_id" json:"patient_id"`
	ClinicianID        uuid.UUID  `db:"clinician_id" json:"clinician_id"`
	ScheduledStart     time.Time  `db:"scheduled_start" json:"scheduled_start"`
	ScheduledEnd       time.Time  `db:"scheduled_end" json:"scheduled_end"`
	ActualStart        *time.Time `db:"actual_start" json:"actual_start,omitempty"`
	ActualEnd          *time.Time `db:"actual_end" json:"actual_end,omitempty"`
	Status             Status     `db:"status" json:"status"`
	Reason             string     `db:"reason" json:"reason"`
	IsEmergency        bool       `db:"is_emergency" json:"is_emergency"`
	CancellationReason *string    `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CheckedInAt        *time.Time `db:"checked_in_at" json:"checked_in_at,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// Duration is the scheduled length of the visit.
func (v *Visit) Duration() time.Duration {
	return v.ScheduledEnd.Sub(v.ScheduledStart)
}

// Overlaps reports whether the scheduled interval of v intersects [start, end).
func (v *Visit) Overlaps(start, end time.Time) bool {
	return v.ScheduledStart.Before(end) && start.Before(v.ScheduledEnd)
}

// Summary is the compact visit view used by dashboards and slot grids.
type Summary struct {
	ID                uuid.UUID `json:"id"`
	AppointmentNumber string    `json:"appointment_number"`
	PatientID         uuid.UUID `json:"patient_id"`
	ClinicianID       uuid.UUID `json:"clinician_id"`
	ScheduledStart    time.Time `json:"scheduled_start"`
	ScheduledEnd      time.Time `json:"scheduled_end"`
	Status            Status    `json:"status"`
	Reason            string    `json:"reason"`
	IsEmergency       bool      `json:"is_emergency"`
}

func (v *Visit) Summary() Summary {
	return Summary{
		ID:                v.ID,
		AppointmentNumber: v.AppointmentNumber,
		PatientID:         v.PatientID,
		ClinicianID:       v.ClinicianID,
		ScheduledStart:    v.ScheduledStart,
		ScheduledEnd:      v.ScheduledEnd,
		Status:            v.Status,
		Reason:            v.Reason,
		IsEmergency:       v.IsEmergency,
	}
}

// Filter selects visits for range queries. Zero values are ignored.
type Filter struct {
	From             time.Time
	To               time.Time
	Status           Status
	ClinicianID      uuid.UUID
	PatientID        uuid.UUID
	ExcludeCancelled bool
}

// NewAppointmentNumber returns a human readable number such as APT-20250601-3F9A1C.
func NewAppointmentNumber(start time.Time) string {
	return fmt.Sprintf("APT-%s-%s", start.Format("20060102"), shortID())
}

func shortID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}
