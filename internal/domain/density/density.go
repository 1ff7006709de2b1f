package density

import "time"

// Tier labels how busy a day is.
type Tier string

const (
	TierNone      Tier = ""
	TierAvailable Tier = "Available"
	TierModerate  Tier = "Moderate"
	TierBusy      Tier = "Busy"
)

// Thresholds are inclusive lower bounds.
const (
	ModerateFrom = 6
	BusyFrom     = 13
)

// Classify maps a visit count onto a tier. Zero visits get no label.
func Classify(count int) Tier {
	switch {
	case count >= BusyFrom:
		return TierBusy
	case count >= ModerateFrom:
		return TierModerate
	case count > 0:
		return TierAvailable
	default:
		return TierNone
	}
}

// DateLayout keys counts by calendar day.
const DateLayout = "2006-01-02"

// Day is one calendar cell.
type Day struct {
	Date    string `json:"date"`
	Day     int    `json:"day"`
	InMonth bool   `json:"in_month"`
	Count   int    `json:"count"`
	Tier    Tier   `json:"tier,omitempty"`
}

// Month is a Sunday-first calendar of whole weeks.
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Weeks [][]Day    `json:"weeks"`
}

// MonthGrid lays out year/month as full weeks starting on Sunday, padding with
// the trailing days of the previous month and the leading days of the next.
// counts is keyed by DateLayout; missing days count as zero.
func MonthGrid(year int, month time.Month, counts map[string]int) Month {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, int(time.Saturday-last.Weekday()))

	m := Month{Year: year, Month: month}
	var week []Day
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(DateLayout)
		n := counts[key]
		week = append(week, Day{
			Date:    key,
			Day:     d.Day(),
			InMonth: d.Month() == month,
			Count:   n,
			Tier:    Classify(n),
		})
		if len(week) == 7 {
			m.Weeks = append(m.Weeks, week)
			week = nil
		}
	}
	return m
}
