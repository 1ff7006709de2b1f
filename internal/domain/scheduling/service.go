package scheduling

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/vetclinic/clinic/internal/domain/density"
	"github.com/vetclinic/clinic/internal/domain/slotgrid"
	"github.com/vetclinic/clinic/internal/domain/visit"
	"github.com/vetclinic/clinic/internal/platform/apperror"
	"github.com/vetclinic/clinic/internal/platform/cache"
	"github.com/vetclinic/clinic/internal/platform/clock"
)

// VisitReader lists visits by scheduled start.
type VisitReader interface {
	VisitsBetween(ctx context.Context, from, to time.Time, excludeCancelled bool) ([]*visit.Visit, error)
}

const cachePrefix = "schedule:"

// DefaultOperatingDays is Monday to Saturday.
var DefaultOperatingDays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday,
}

type Service struct {
	visits VisitReader
	clock  *clock.Clinic
	hours  slotgrid.OperatingHours
	days   map[time.Weekday]bool
	cache  cache.Cache
	logger zerolog.Logger
}

func NewService(visits VisitReader, clk *clock.Clinic, hours slotgrid.OperatingHours, operatingDays []time.Weekday, logger zerolog.Logger) *Service {
	if len(operatingDays) == 0 {
		operatingDays = DefaultOperatingDays
	}
	days := make(map[time.Weekday]bool, len(operatingDays))
	for _, d := range operatingDays {
		days[d] = true
	}
	return &Service{
		visits: visits,
		clock:  clk,
		hours:  hours,
		days:   days,
		cache:  cache.Noop{},
		logger: logger.With().Str("component", "scheduling").Logger(),
	}
}

// SetCache enables read-through caching of density and stats.
func (s *Service) SetCache(c cache.Cache) { s.cache = c }

// Invalidate drops cached views. It is registered as a visit change hook.
func (s *Service) Invalidate(ctx context.Context, v *visit.Visit) {
	if err := s.cache.Invalidate(ctx, cachePrefix); err != nil {
		s.logger.Warn().Err(err).Str("visit_id", v.ID.String()).Msg("schedule cache invalidation failed")
	}
}

func (s *Service) GetDailySlots(ctx context.Context, date time.Time) (*DailySlots, error) {
	from, to := s.clock.DayBounds(date)
	visits, err := s.visits.VisitsBetween(ctx, from, to, true)
	if err != nil {
		return nil, err
	}
	return s.dailySlots(from, visits), nil
}

func (s *Service) dailySlots(day time.Time, visits []*visit.Visit) *DailySlots {
	sort.SliceStable(visits, func(i, j int) bool { return visits[i].ScheduledStart.Before(visits[j].ScheduledStart) })
	bookings := make([]slotgrid.Interval, 0, len(visits))
	taken := make([]visit.Summary, 0, len(visits))
	for _, v := range visits {
		if v.Status == visit.StatusCancelled {
			continue
		}
		bookings = append(bookings, slotgrid.Interval{Start: v.ScheduledStart, End: v.ScheduledEnd})
		taken = append(taken, v.Summary())
	}
	g := slotgrid.Compute(day, bookings, s.hours, s.clock.Today())
	return &DailySlots{
		Date:           s.clock.DateKey(day),
		Taken:          taken,
		TakenSlots:     g.Taken,
		Available:      g.Available,
		Slots:          g.Slots,
		TotalSlots:     len(g.Slots),
		TakenCount:     len(g.Taken),
		AvailableCount: len(g.Available),
		IsPast:         g.IsPast,
	}
}

func (s *Service) GetMonthDensity(ctx context.Context, year int, month time.Month) (*density.Month, error) {
	if month < time.January || month > time.December {
		return nil, apperror.Validation("month", "month must be between 1 and 12")
	}
	if year < 1970 || year > 9999 {
		return nil, apperror.Validation("year", "year out of range")
	}

	key := fmt.Sprintf("%sdensity:%04d-%02d", cachePrefix, year, int(month))
	var cached density.Month
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	// Padding days of the neighbouring months carry their own counts.
	from, to := s.clock.CalendarBounds(year, month)
	visits, err := s.visits.VisitsBetween(ctx, from, to, true)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, v := range visits {
		counts[s.clock.DateKey(v.ScheduledStart)]++
	}
	m := density.MonthGrid(year, month, counts)
	s.cacheSet(ctx, key, m)
	return &m, nil
}

// GetSchedulingStats counts today's visits, the non-cancelled visits of the
// next seven days (today included) and the share of this month's capacity
// that is booked.
func (s *Service) GetSchedulingStats(ctx context.Context) (*Stats, error) {
	today := s.clock.Today()
	key := cachePrefix + "stats:" + s.clock.DateKey(today)
	var cached Stats
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	dayStart, dayEnd := s.clock.DayBounds(today)
	todays, err := s.visits.VisitsBetween(ctx, dayStart, dayEnd, false)
	if err != nil {
		return nil, err
	}
	week, err := s.visits.VisitsBetween(ctx, dayStart, dayStart.AddDate(0, 0, 7), true)
	if err != nil {
		return nil, err
	}
	monthStart, monthEnd := s.clock.MonthBounds(today.Year(), today.Month())
	month, err := s.visits.VisitsBetween(ctx, monthStart, monthEnd, true)
	if err != nil {
		return nil, err
	}

	capacity := s.MonthlyCapacity(today.Year(), today.Month())
	st := &Stats{
		Date:            s.clock.DateKey(today),
		Today:           len(todays),
		Next7Days:       len(week),
		MonthlyBooked:   len(month),
		MonthlyCapacity: capacity,
	}
	if capacity > 0 {
		st.MonthlyBookedPct = math.Round(float64(len(month))/float64(capacity)*1000) / 10
	}
	s.cacheSet(ctx, key, st)
	return st, nil
}

// MonthlyCapacity is slots per day times the operating days of the month.
func (s *Service) MonthlyCapacity(year int, month time.Month) int {
	from, to := s.clock.MonthBounds(year, month)
	days := 0
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		if s.days[d.Weekday()] {
			days++
		}
	}
	return days * s.hours.SlotsPerDay()
}

func (s *Service) GetTodayLoad(ctx context.Context) (*TodayLoad, error) {
	from, to := s.clock.DayBounds(s.clock.Now())
	visits, err := s.visits.VisitsBetween(ctx, from, to, false)
	if err != nil {
		return nil, err
	}
	load := &TodayLoad{Total: len(visits), ByStatus: make(map[visit.Status]int)}
	for _, v := range visits {
		load.ByStatus[v.Status]++
	}
	load.DailySlots = *s.dailySlots(from, visits)
	return load, nil
}

func (s *Service) cacheGet(ctx context.Context, key string, dst interface{}) bool {
	found, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("schedule cache read failed")
		return false
	}
	return found
}

func (s *Service) cacheSet(ctx context.Context, key string, v interface{}) {
	if err := s.cache.Set(ctx, key, v); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("schedule cache write failed")
	}
}
