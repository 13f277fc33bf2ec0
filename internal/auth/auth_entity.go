package auth

import "time"

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"

	DefaultDepartment = "General"
)

// User is a registered account. EmployeeCode is the company issued
// employee number (EMP001), not a foreign key.
type User struct {
	ID           string    `gorm:"column:id;type:varchar(36);primaryKey" bson:"_id"`
	Name         string    `gorm:"column:name;type:varchar(255);not null" bson:"name"`
	Email        string    `gorm:"column:email;type:varchar(255);uniqueIndex:uq_users_email;not null" bson:"email"`
	Password     string    `gorm:"column:password;type:varchar(255);not null" bson:"password"`
	Role         string    `gorm:"column:role;type:varchar(20);not null;index" bson:"role"`
	EmployeeCode string    `gorm:"column:employee_code;type:varchar(50);not null" bson:"employeeId"`
	Department   string    `gorm:"column:department;type:varchar(100);not null" bson:"department"`
	CreatedAt    time.Time `gorm:"column:created_at" bson:"createdAt"`
}

func (User) TableName() string {
	return "users"
}

func ValidRole(role string) bool {
	return role == RoleEmployee || role == RoleManager
}
