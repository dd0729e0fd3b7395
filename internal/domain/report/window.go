package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/fieldsales/backend/internal/domain/shared"
)

// Period selects the comparison pair of a report
type Period string

const (
	PeriodMTD Period = "MTD"
	PeriodYTD Period = "YTD"
)

// ParsePeriod accepts MTD or YTD in any case; blank means MTD
func ParsePeriod(s string) (Period, error) {
	switch Period(strings.ToUpper(strings.TrimSpace(s))) {
	case "", PeriodMTD:
		return PeriodMTD, nil
	case PeriodYTD:
		return PeriodYTD, nil
	}
	return "", shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("unsupported td_format %q", s))
}

// DateRange is a closed range of calendar days at UTC midnight
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t's calendar day lies in the range
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// Window is a fully resolved reporting window
type Window struct {
	Period     Period
	Current    DateRange
	Prior      DateRange
	FTD        DateRange
	DaysPassed int
}

// WindowRequest carries the optional caller-supplied bounds
type WindowRequest struct {
	Period    Period
	StartDate string
	EndDate   string
}

var acceptedDateLayouts = []string{"2006-01-02", "1/2/2006"}

// ResolveWindow turns a request into concrete ranges. now is localized to loc
// before being reduced to a calendar day, so a default "today" and explicit
// calendar dates are always compared on the same calendar. A missing start
// defaults to the first day of the end month; YTD ignores start.
func ResolveWindow(req WindowRequest, now time.Time, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.UTC
	}
	today := CalendarDay(now, loc)

	period := req.Period
	if period == "" {
		period = PeriodMTD
	}

	end := today
	if req.EndDate != "" {
		d, err := parseCalendarDate(req.EndDate)
		if err != nil {
			return Window{}, err
		}
		end = d
	}
	start := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	if req.StartDate != "" {
		d, err := parseCalendarDate(req.StartDate)
		if err != nil {
			return Window{}, err
		}
		start = d
	}

	w := Window{
		Period:     period,
		FTD:        DateRange{From: end, To: end},
		DaysPassed: max(end.Day(), 1),
	}

	switch period {
	case PeriodMTD:
		if start.After(end) {
			return Window{}, shared.NewDomainError("INVALID_INPUT", "start_date must not be after end_date")
		}
		w.Current = DateRange{From: start, To: end}
		w.Prior = DateRange{From: AddMonthsClamped(start, -1), To: AddMonthsClamped(end, -1)}
	case PeriodYTD:
		w.Current = DateRange{From: time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), To: end}
		w.Prior = DateRange{
			From: time.Date(end.Year()-1, time.January, 1, 0, 0, 0, 0, time.UTC),
			To:   AddMonthsClamped(end, -12),
		}
	default:
		return Window{}, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("unsupported td_format %q", period))
	}
	return w, nil
}

// CalendarDay reduces an instant to its calendar day in loc, expressed as UTC
// midnight.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonthsClamped moves a calendar day by n months, clamping the day to the
// last valid day of the target month (Mar 31 - 1 month = Feb 29 or 28).
func AddMonthsClamped(t time.Time, n int) time.Time {
	y, m := t.Year(), int(t.Month())-1+n
	y += m / 12
	m %= 12
	if m < 0 {
		m += 12
		y--
	}
	month := time.Month(m + 1)
	day := min(t.Day(), DaysInMonth(y, month))
	return time.Date(y, month, day, 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of days of a month
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func parseCalendarDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range acceptedDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
}
