package triage

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/vetclinic/clinic/internal/domain/visit"
)

var (
	dayStart = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	dayEnd   = dayStart.AddDate(0, 0, 1)
)

func checkedIn(at time.Time) *visit.Visit {
	return &visit.Visit{ID: uuid.New(), PatientID: uuid.New(), Status: visit.StatusInProgress, CheckedInAt: &at}
}

func TestEligible(t *testing.T) {
	at := dayStart.Add(10 * time.Hour)
	v := checkedIn(at)
	assert.True(t, Eligible(v, dayStart, dayEnd, true, false))
	assert.False(t, Eligible(v, dayStart, dayEnd, false, false), "needs triage")
	assert.False(t, Eligible(v, dayStart, dayEnd, true, true), "record exists")

	confirmed := checkedIn(at)
	confirmed.Status = visit.StatusConfirmed
	assert.False(t, Eligible(confirmed, dayStart, dayEnd, true, false))

	assert.False(t, Eligible(checkedIn(dayEnd), dayStart, dayEnd, true, false), "next midnight is outside the day")
	assert.True(t, Eligible(checkedIn(dayStart), dayStart, dayEnd, true, false))

	noCheckIn := &visit.Visit{Status: visit.StatusInProgress}
	assert.False(t, Eligible(noCheckIn, dayStart, dayEnd, true, false))
}

func TestBuildQueue_OrdersAndExcludes(t *testing.T) {
	late := checkedIn(dayStart.Add(11 * time.Hour))
	early := checkedIn(dayStart.Add(9 * time.Hour))
	done := checkedIn(dayStart.Add(8 * time.Hour))
	untriaged := checkedIn(dayStart.Add(7 * time.Hour))

	q := BuildQueue(Snapshot{
		DayStart: dayStart,
		DayEnd:   dayEnd,
		Visits:   []*visit.Visit{late, early, done, untriaged},
		LatestTriage: map[uuid.UUID]*Record{
			late.ID:  {VisitID: late.ID},
			early.ID: {VisitID: early.ID},
			done.ID:  {VisitID: done.ID},
		},
		WithRecord: map[uuid.UUID]bool{done.ID: true},
	})

	if assert.Len(t, q, 2) {
		assert.Equal(t, early.ID, q[0].Visit.ID)
		assert.Equal(t, late.ID, q[1].Visit.ID)
		assert.Nil(t, q[0].Patient)
	}
}

func TestBuildQueue_Empty(t *testing.T) {
	q := BuildQueue(Snapshot{DayStart: dayStart, DayEnd: dayEnd})
	assert.NotNil(t, q)
	assert.Empty(t, q)
}
