package attendance

import "sort"

// Query selects attendance records. Zero fields do not filter.
type Query struct {
	UserID string
	Range  *DateRange
	Status string
}

func (q Query) Matches(a *Attendance) bool {
	if q.UserID != "" && a.UserID != q.UserID {
		return false
	}
	if q.Range != nil && !q.Range.Contains(a.Date) {
		return false
	}
	if q.Status != "" && a.Status != q.Status {
		return false
	}
	return true
}

// sortNewestFirst orders by date desc, then check-in desc with open
// records last within a day.
func sortNewestFirst(rows []Attendance) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		switch {
		case a.CheckInTime == nil:
			return false
		case b.CheckInTime == nil:
			return true
		default:
			return a.CheckInTime.After(*b.CheckInTime)
		}
	})
}
