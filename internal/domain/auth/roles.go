package auth

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

func ValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}

// Principal is the authenticated caller of a request.
type Principal struct {
	Role       string `json:"role"`
	EmployeeID string `json:"employeeId,omitempty"`
	SessionID  string `json:"sessionId"`
}

// CanActFor reports whether p may read or change the reviews of
// employeeID. Employees are limited to their own reviews.
func (p Principal) CanActFor(employeeID string) bool {
	switch p.Role {
	case RoleAdmin, RoleManager:
		return true
	case RoleEmployee:
		return p.EmployeeID != "" && p.EmployeeID == employeeID
	default:
		return false
	}
}
