package slotgrid

import "time"

// Interval is the scheduled span of a booking.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Slot is one cell of the day.
type Slot struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	Taken bool      `json:"taken"`
}

// Grid is the occupancy of a clinic day.
type Grid struct {
	Slots     []Slot   `json:"slots"`
	Taken     []string `json:"taken"`
	Available []string `json:"available"`
	IsPast    bool     `json:"is_past"`
}

// Compute marks the slot containing each booking's start as taken, plus the
// following slot when the booking is longer than one slot width. Callers pass
// only bookings that occupy time (cancelled visits excluded). day is any
// instant of the clinic day in the clinic location; today is local midnight
// of the current day.
func Compute(day time.Time, bookings []Interval, h OperatingHours, today time.Time) Grid {
	starts := h.Starts(day)
	taken := make([]bool, len(starts))

	for _, b := range bookings {
		idx, ok := slotIndex(starts, b.Start.In(day.Location()), h.Slot)
		if !ok {
			continue
		}
		taken[idx] = true
		if b.End.Sub(b.Start) > h.Slot && idx+1 < len(starts) {
			taken[idx+1] = true
		}
	}

	g := Grid{
		Slots:     make([]Slot, len(starts)),
		Taken:     []string{},
		Available: []string{},
	}
	for i, st := range starts {
		label := Label(st)
		g.Slots[i] = Slot{Label: label, Start: st, Taken: taken[i]}
		if taken[i] {
			g.Taken = append(g.Taken, label)
		} else {
			g.Available = append(g.Available, label)
		}
	}
	y, m, d := day.Date()
	g.IsPast = time.Date(y, m, d, 0, 0, 0, 0, day.Location()).Before(today)
	return g
}

// slotIndex floors t onto the grid. Starts outside operating hours match no slot.
func slotIndex(starts []time.Time, t time.Time, width time.Duration) (int, bool) {
	if len(starts) == 0 || t.Before(starts[0]) {
		return 0, false
	}
	idx := int(t.Sub(starts[0]) / width)
	if idx >= len(starts) {
		return 0, false
	}
	return idx, true
}
