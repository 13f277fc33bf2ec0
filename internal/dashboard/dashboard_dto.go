package dashboard

import "go-attendance/internal/attendance"

type EmployeeDashboard struct {
	TodayStatus      *attendance.AttendanceResponse  `json:"todayStatus"`
	MonthlyStats     attendance.SummaryCounts        `json:"monthlyStats"`
	TotalHours       float64                         `json:"totalHours"`
	RecentAttendance []attendance.AttendanceResponse `json:"recentAttendance"`
}

// TodayStats.Absent counts employees without a check-in today, not records
// stored as absent.
type TodayStats struct {
	Present    int `json:"present"`
	Absent     int `json:"absent"`
	CheckedOut int `json:"checkedOut"`
	Late       int `json:"late"`
}

type DepartmentCount struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}

type ManagerDashboard struct {
	Date               string                          `json:"date"`
	TotalEmployees     int                             `json:"totalEmployees"`
	TodayStats         TodayStats                      `json:"todayStats"`
	LateArrivals       []attendance.AttendanceResponse `json:"lateArrivals"`
	WeeklyTrend        []attendance.TrendPoint         `json:"weeklyTrend"`
	DepartmentStats    []DepartmentCount               `json:"departmentStats"`
	DepartmentPresence []DepartmentCount               `json:"departmentPresence"`
	AbsentEmployees    []attendance.UserSummary        `json:"absentEmployees"`
}
