package events

import "time"

const AttendanceLifecycleTopic = "hr.attendance.lifecycle.v1"

const (
	AttendanceCheckedIn  = "attendance.checked_in"
	AttendanceCheckedOut = "attendance.checked_out"
)

type AttendanceEvent struct {
	EventType    string    `json:"event_type"`
	AttendanceID string    `json:"attendance_id"`
	UserID       string    `json:"user_id"`
	Date         string    `json:"date"`
	Status       string    `json:"status"`
	TotalHours   float64   `json:"total_hours"`
	OccurredAt   time.Time `json:"occurred_at"`
}
