package triage

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vetclinic/clinic/internal/domain/patient"
	"github.com/vetclinic/clinic/internal/domain/visit"
)

// Eligible reports whether v is ready for consultation on the day [dayStart, dayEnd).
func Eligible(v *visit.Visit, dayStart, dayEnd time.Time, hasTriage, hasRecord bool) bool {
	if v.Status != visit.StatusInProgress || v.CheckedInAt == nil {
		return false
	}
	in := *v.CheckedInAt
	if in.Before(dayStart) || !in.Before(dayEnd) {
		return false
	}
	return hasTriage && !hasRecord
}

// Snapshot is everything BuildQueue needs, gathered by the caller.
type Snapshot struct {
	DayStart, DayEnd time.Time
	Visits           []*visit.Visit
	// LatestTriage holds the newest triage record per visit.
	LatestTriage map[uuid.UUID]*Record
	// WithRecord marks visits that already have a medical record.
	WithRecord map[uuid.UUID]bool
	Patients   map[uuid.UUID]patient.Summary
}

// BuildQueue filters the snapshot down to eligible visits, oldest check-in first.
func BuildQueue(s Snapshot) []QueueItem {
	items := make([]QueueItem, 0, len(s.Visits))
	for _, v := range s.Visits {
		latest := s.LatestTriage[v.ID]
		if !Eligible(v, s.DayStart, s.DayEnd, latest != nil, s.WithRecord[v.ID]) {
			continue
		}
		item := QueueItem{Visit: v.Summary(), CheckedInAt: *v.CheckedInAt, Triage: latest}
		if p, ok := s.Patients[v.PatientID]; ok {
			p := p
			item.Patient = &p
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CheckedInAt.Before(items[j].CheckedInAt) })
	return items
}
