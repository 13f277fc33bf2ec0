package attendance

import (
	"math"
	"strings"
	"time"

	attendanceerrors "go-attendance/internal/attendance/errors"
)

const dateLayout = "2006-01-02"

// DayOf truncates t to midnight in the server's local zone.
func DayOf(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// civilDay keeps t's calendar fields and reinterprets them as a local day.
// SQL DATE columns come back as UTC midnight.
func civilDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// DateRange is an inclusive range of day keys.
type DateRange struct {
	From time.Time
	To   time.Time
}

func MonthRange(year int, month time.Month) DateRange {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	return DateRange{From: first, To: first.AddDate(0, 1, -1)}
}

func DayRange(day time.Time) DateRange {
	d := DayOf(day)
	return DateRange{From: d, To: d}
}

func (r DateRange) Contains(day time.Time) bool {
	return !day.Before(r.From) && !day.After(r.To)
}

// ParseDate parses YYYY-MM-DD as a local day key.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, attendanceerrors.ErrInvalidDate
	}
	return t, nil
}

// HoursBetween is (out - in) in hours rounded to 2 decimals, never negative.
func HoursBetween(in, out time.Time) float64 {
	d := out.Sub(in)
	if d < 0 {
		return 0
	}
	return round2(d.Hours())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
