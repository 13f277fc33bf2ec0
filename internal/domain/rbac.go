package domain

// EnforceRequest asks whether a role may perform action on resource.
type EnforceRequest struct {
	Role     string `json:"role" binding:"required"`
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

const (
	ResourceAttendance = "attendance"
	ResourceDashboard  = "dashboard"

	// ActionSelf covers a user's own records, ActionManage the whole team.
	ActionSelf   = "self"
	ActionManage = "manage"
)
