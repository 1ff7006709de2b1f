package triage

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vetclinic/clinic/internal/domain/patient"
	"github.com/vetclinic/clinic/internal/domain/visit"
)

type Priority string

const (
	PriorityNonUrgent Priority = "Non-Urgent"
	PriorityUrgent    Priority = "Urgent"
	PriorityCritical  Priority = "Critical"
)

var validPriorities = map[Priority]bool{
	PriorityNonUrgent: true, PriorityUrgent: true, PriorityCritical: true,
}

// MucousMembrane is the observed gum colour and texture.
type MucousMembrane string

const (
	MembranePink     MucousMembrane = "pink"
	MembranePale     MucousMembrane = "pale"
	MembraneWhite    MucousMembrane = "white"
	MembraneCyanotic MucousMembrane = "cyanotic"
	MembraneIcteric  MucousMembrane = "icteric"
	MembraneInjected MucousMembrane = "injected"
	MembraneTacky    MucousMembrane = "tacky"
)

var validMembranes = map[MucousMembrane]bool{
	MembranePink: true, MembranePale: true, MembraneWhite: true, MembraneCyanotic: true,
	MembraneIcteric: true, MembraneInjected: true, MembraneTacky: true,
}

// Record maps to the triage_record table. Records are immutable once written.
type Record struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	VisitID         uuid.UUID       `db:"visit_id" json:"visit_id"`
	WeightKg        float64         `db:"weight_kg" json:"weight_kg"`
	TemperatureC    float64         `db:"temperature_c" json:"temperature_c"`
	HeartRate       *int            `db:"heart_rate" json:"heart_rate,omitempty"`
	RespiratoryRate *int            `db:"respiratory_rate" json:"respiratory_rate,omitempty"`
	MucousMembrane  *MucousMembrane `db:"mucous_membrane" json:"mucous_membrane,omitempty"`
	Priority        Priority        `db:"priority" json:"priority"`
	ChiefComplaint  string          `db:"chief_complaint" json:"chief_complaint"`
	RecordedBy      string          `db:"recorded_by" json:"recorded_by"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// Measure is a numeric reading as typed into the intake form. It accepts a JSON
// number or a numeric string and is parsed during validation.
type Measure string

func (m *Measure) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*m = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*m = Measure(strings.TrimSpace(s))
		return nil
	}
	*m = Measure(b)
	return nil
}

// Positive parses m and reports whether it is a finite number greater than zero.
func (m Measure) Positive() (float64, bool) {
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(string(m), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, false
	}
	return f, true
}

// Largest readings the triage_record columns hold: weight_kg NUMERIC(7,2),
// temperature_c NUMERIC(4,1). Rates are capped well below INTEGER.
const (
	MaxWeightKg     = 99999.99
	MaxTemperatureC = 999.9
	MaxRate         = 1000
)

// Vitals is the payload of RecordTriage.
type Vitals struct {
	Weight          Measure `json:"weight"`
	Temperature     Measure `json:"temperature"`
	HeartRate       *int    `json:"heart_rate"`
	RespiratoryRate *int    `json:"respiratory_rate"`
	MucousMembrane  string  `json:"mucous_membrane"`
	Priority        string  `json:"priority"`
	ChiefComplaint  string  `json:"chief_complaint"`
}

// QueueItem is one visit waiting for the veterinarian.
type QueueItem struct {
	Visit       visit.Summary    `json:"visit"`
	CheckedInAt time.Time        `json:"checked_in_at"`
	Patient     *patient.Summary `json:"patient,omitempty"`
	Triage      *Record          `json:"triage"`
}
