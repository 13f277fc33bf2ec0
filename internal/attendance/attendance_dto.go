package attendance

import (
	"time"

	"go-attendance/internal/auth"
)

// PeriodQuery is the optional ?month&year pair.
type PeriodQuery struct {
	Month int `form:"month" binding:"omitempty,min=1,max=12"`
	Year  int `form:"year" binding:"omitempty,min=1970,max=9999"`
}

type AllQuery struct {
	Date   string `form:"date"`
	Status string `form:"status"`
}

type ExportQuery struct {
	StartDate  string `form:"startDate"`
	EndDate    string `form:"endDate"`
	EmployeeID string `form:"employeeId"`
}

type UserSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	EmployeeID string `json:"employeeId"`
	Department string `json:"department"`
}

type AttendanceResponse struct {
	ID           string       `json:"id"`
	UserID       string       `json:"userId"`
	Date         string       `json:"date"`
	CheckInTime  *time.Time   `json:"checkInTime"`
	CheckOutTime *time.Time   `json:"checkOutTime"`
	Status       string       `json:"status"`
	TotalHours   float64      `json:"totalHours"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	User         *UserSummary `json:"user,omitempty"`
}

type CheckInResponse struct {
	Message     string             `json:"message"`
	CheckInTime time.Time          `json:"checkInTime"`
	Attendance  AttendanceResponse `json:"attendance"`
}

type CheckOutResponse struct {
	Message      string             `json:"message"`
	CheckOutTime time.Time          `json:"checkOutTime"`
	TotalHours   float64            `json:"totalHours"`
	Attendance   AttendanceResponse `json:"attendance"`
}

// SummaryCounts partitions records by stored status. Every status is
// always present in the output, zero when unseen.
type SummaryCounts struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	HalfDay int `json:"halfDay"`
	Total   int `json:"total"`
}

type MySummaryResponse struct {
	SummaryCounts
	TotalHours float64 `json:"totalHours"`
}

// TodayCounts classifies today's records by check-in/out predicates, not by
// stored status. NotCheckedIn keeps the "absent" JSON name for clients.
type TodayCounts struct {
	Present      int `json:"present"`
	NotCheckedIn int `json:"absent"`
	CheckedOut   int `json:"checkedOut"`
}

type TodayStatusResponse struct {
	TodayCounts
	Data []AttendanceResponse `json:"data"`
}

// TodayRecordResponse is either today's record or a placeholder message.
type TodayRecordResponse struct {
	*AttendanceResponse
	Message string `json:"message,omitempty"`
}

type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

func ToUserSummary(u *auth.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		EmployeeID: u.EmployeeCode,
		Department: u.Department,
	}
}

func ToResponse(a Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:           a.ID,
		UserID:       a.UserID,
		Date:         a.Date.Format(dateLayout),
		CheckInTime:  a.CheckInTime,
		CheckOutTime: a.CheckOutTime,
		Status:       a.Status,
		TotalHours:   a.TotalHours,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
		User:         ToUserSummary(a.User),
	}
}

func ToResponses(rows []Attendance) []AttendanceResponse {
	res := make([]AttendanceResponse, len(rows))
	for i, r := range rows {
		res[i] = ToResponse(r)
	}
	return res
}
