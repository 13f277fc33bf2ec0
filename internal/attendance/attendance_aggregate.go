package attendance

import (
	"time"

	"go-attendance/internal/auth"
)

// CountByStatus partitions records by their stored status.
func CountByStatus(records []Attendance) SummaryCounts {
	counts := SummaryCounts{Total: len(records)}
	for i := range records {
		switch records[i].Status {
		case StatusPresent:
			counts.Present++
		case StatusAbsent:
			counts.Absent++
		case StatusLate:
			counts.Late++
		case StatusHalfDay:
			counts.HalfDay++
		}
	}
	return counts
}

func TotalHours(records []Attendance) float64 {
	var sum float64
	for i := range records {
		sum += records[i].TotalHours
	}
	return round2(sum)
}

// ClassifyToday counts today's records by check-in/out state.
func ClassifyToday(records []Attendance) TodayCounts {
	var counts TodayCounts
	for i := range records {
		r := &records[i]
		switch {
		case !r.CheckedIn():
			counts.NotCheckedIn++
		case !r.CheckedOut():
			counts.Present++
		}
		if r.CheckedOut() {
			counts.CheckedOut++
		}
	}
	return counts
}

// WeeklyTrend returns 7 points, oldest first and ending at today, each the
// number of distinct users with a check-in on that day.
func WeeklyTrend(records []Attendance, today time.Time) []TrendPoint {
	today = DayOf(today)
	days := make([]time.Time, 7)
	seen := make([]map[string]struct{}, 7)
	for i := 0; i < 7; i++ {
		days[i] = today.AddDate(0, 0, i-6)
		seen[i] = make(map[string]struct{})
	}

	for i := range records {
		r := &records[i]
		if !r.CheckedIn() {
			continue
		}
		for d := range days {
			if r.Date.Equal(days[d]) {
				seen[d][r.UserID] = struct{}{}
				break
			}
		}
	}

	points := make([]TrendPoint, 7)
	for i := range days {
		points[i] = TrendPoint{Date: days[i].Format(dateLayout), Count: len(seen[i])}
	}
	return points
}

// DepartmentHeadcount groups employee-role users by department.
func DepartmentHeadcount(users []auth.User) map[string]int {
	out := make(map[string]int)
	for _, u := range users {
		if u.Role != auth.RoleEmployee {
			continue
		}
		out[u.Department]++
	}
	return out
}

// DepartmentPresence groups checked-in joined records by the owner's department.
func DepartmentPresence(joined []Attendance) map[string]int {
	out := make(map[string]int)
	for i := range joined {
		r := &joined[i]
		if !r.CheckedIn() || r.User == nil {
			continue
		}
		out[r.User.Department]++
	}
	return out
}

// AbsentEmployees lists employee-role users without a check-in among
// records, keeping the order of users.
func AbsentEmployees(users []auth.User, records []Attendance) []auth.User {
	checkedIn := make(map[string]struct{}, len(records))
	for i := range records {
		if records[i].CheckedIn() {
			checkedIn[records[i].UserID] = struct{}{}
		}
	}

	out := make([]auth.User, 0)
	for _, u := range users {
		if u.Role != auth.RoleEmployee {
			continue
		}
		if _, ok := checkedIn[u.ID]; !ok {
			out = append(out, u)
		}
	}
	return out
}

// FilterByStatus keeps records whose stored status equals status.
func FilterByStatus(records []Attendance, status string) []Attendance {
	out := make([]Attendance, 0)
	for _, r := range records {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}
