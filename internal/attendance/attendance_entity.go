package attendance

import (
	"time"

	"go-attendance/internal/auth"
)

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusHalfDay = "half-day"
)

// Attendance is one user's record for one calendar day. Date is the local
// midnight of that day; (UserID, Date) is unique.
type Attendance struct {
	ID           string     `gorm:"column:id;type:varchar(36);primaryKey" bson:"_id"`
	UserID       string     `gorm:"column:user_id;type:varchar(36);not null;uniqueIndex:uq_attendance_user_date,priority:1" bson:"userId"`
	Date         time.Time  `gorm:"column:date;type:date;not null;uniqueIndex:uq_attendance_user_date,priority:2;index" bson:"date"`
	CheckInTime  *time.Time `gorm:"column:check_in_time" bson:"checkInTime"`
	CheckOutTime *time.Time `gorm:"column:check_out_time" bson:"checkOutTime"`
	Status       string     `gorm:"column:status;type:varchar(20);not null;index" bson:"status"`
	TotalHours   float64    `gorm:"column:total_hours;type:numeric(6,2);not null;default:0" bson:"totalHours"`
	CreatedAt    time.Time  `gorm:"column:created_at" bson:"createdAt"`
	UpdatedAt    time.Time  `gorm:"column:updated_at" bson:"updatedAt"`

	// Only populated by FindJoined.
	User *auth.User `gorm:"foreignKey:UserID;references:ID" bson:"-"`
}

func (Attendance) TableName() string {
	return "attendances"
}

func (a *Attendance) CheckedIn() bool {
	return a.CheckInTime != nil
}

func (a *Attendance) CheckedOut() bool {
	return a.CheckOutTime != nil
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusHalfDay:
		return true
	default:
		return false
	}
}
