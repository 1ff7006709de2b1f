package slotgrid

import (
	"fmt"
	"time"
)

// OperatingHours describes the bookable part of a clinic day.
type OperatingHours struct {
	Open  time.Duration // offset from local midnight
	Close time.Duration
	Slot  time.Duration
}

func DefaultHours() OperatingHours {
	return OperatingHours{Open: 9 * time.Hour, Close: 17 * time.Hour, Slot: 30 * time.Minute}
}

// ParseHours builds hours from "HH:MM" strings and a slot width in minutes.
func ParseHours(open, close string, slotMinutes int) (OperatingHours, error) {
	o, err := parseClock(open)
	if err != nil {
		return OperatingHours{}, fmt.Errorf("open: %w", err)
	}
	c, err := parseClock(close)
	if err != nil {
		return OperatingHours{}, fmt.Errorf("close: %w", err)
	}
	h := OperatingHours{Open: o, Close: c, Slot: time.Duration(slotMinutes) * time.Minute}
	return h, h.Validate()
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func (h OperatingHours) Validate() error {
	if h.Slot <= 0 {
		return fmt.Errorf("slot width must be positive")
	}
	if h.Close <= h.Open {
		return fmt.Errorf("closing time must be after opening time")
	}
	if h.Close > 24*time.Hour {
		return fmt.Errorf("closing time must be within the day")
	}
	if (h.Close-h.Open)%h.Slot != 0 {
		return fmt.Errorf("opening hours must be a whole number of slots")
	}
	return nil
}

// SlotsPerDay is the number of bookable cells in one day.
func (h OperatingHours) SlotsPerDay() int {
	if h.Slot <= 0 {
		return 0
	}
	return int((h.Close - h.Open) / h.Slot)
}

// Starts returns the slot start times of day in its location.
func (h OperatingHours) Starts(day time.Time) []time.Time {
	y, m, d := day.Date()
	n := h.SlotsPerDay()
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		off := h.Open + time.Duration(i)*h.Slot
		out = append(out, time.Date(y, m, d, 0, int(off/time.Minute), 0, 0, day.Location()))
	}
	return out
}

// Label formats a slot start as HH:MM.
func Label(t time.Time) string { return t.Format("15:04") }
