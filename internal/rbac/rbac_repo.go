package rbac

import "go-attendance/internal/domain"

type RolePermissionRow struct {
	Role     string
	Resource string
	Action   string
}

// RoleInheritanceRow grants Role every permission of Inherits.
type RoleInheritanceRow struct {
	Role     string
	Inherits string
}

type Repository interface {
	GetRolePermissions() ([]RolePermissionRow, error)
	GetRoleInheritance() ([]RoleInheritanceRow, error)
}

type staticRepository struct {
	permissions []RolePermissionRow
	inheritance []RoleInheritanceRow
}

// NewStaticRepository serves the built-in employee/manager policy.
func NewStaticRepository() Repository {
	return &staticRepository{
		permissions: []RolePermissionRow{
			{Role: "employee", Resource: domain.ResourceAttendance, Action: domain.ActionSelf},
			{Role: "employee", Resource: domain.ResourceDashboard, Action: domain.ActionSelf},
			{Role: "manager", Resource: domain.ResourceAttendance, Action: domain.ActionManage},
			{Role: "manager", Resource: domain.ResourceDashboard, Action: domain.ActionManage},
		},
		inheritance: []RoleInheritanceRow{
			{Role: "manager", Inherits: "employee"},
		},
	}
}

func (r *staticRepository) GetRolePermissions() ([]RolePermissionRow, error) {
	return r.permissions, nil
}

func (r *staticRepository) GetRoleInheritance() ([]RoleInheritanceRow, error) {
	return r.inheritance, nil
}
