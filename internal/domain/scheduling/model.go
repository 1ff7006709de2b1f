package scheduling

import (
	"github.com/vetclinic/clinic/internal/domain/slotgrid"
	"github.com/vetclinic/clinic/internal/domain/visit"
)

// DailySlots is the bookable view of one clinic day.
type DailySlots struct {
	Date           string          `json:"date"`
	Taken          []visit.Summary `json:"taken"`
	TakenSlots     []string        `json:"taken_slots"`
	Available      []string        `json:"available"`
	Slots          []slotgrid.Slot `json:"slots"`
	TotalSlots     int             `json:"total_slots"`
	TakenCount     int             `json:"taken_count"`
	AvailableCount int             `json:"available_count"`
	IsPast         bool            `json:"is_past"`
}

// Stats feeds the dashboard header.
type Stats struct {
	Date             string  `json:"date"`
	Today            int     `json:"today"`
	Next7Days        int     `json:"next_7_days"`
	MonthlyBooked    int     `json:"monthly_booked"`
	MonthlyCapacity  int     `json:"monthly_capacity"`
	MonthlyBookedPct float64 `json:"monthly_booked_pct"`
}

// TodayLoad is today's grid with a breakdown by status.
type TodayLoad struct {
	DailySlots
	Total    int                  `json:"total"`
	ByStatus map[visit.Status]int `json:"by_status"`
}
