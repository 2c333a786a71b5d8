package auth

import "context"

const (
	PermEmployeesRead    = "employees.read"
	PermEmployeesWrite   = "employees.write"
	PermQuartersRead     = "quarters.read"
	PermQuartersManage   = "quarters.manage"
	PermQuestionsRead    = "questions.read"
	PermQuestionsWrite   = "questions.write"
	PermPerformanceRead  = "performance.read"
	PermPerformanceWrite = "performance.write"
	PermReviewsRead      = "reviews.read"
	PermReviewsWrite     = "reviews.write"
	PermReportsRead      = "reports.read"
	PermAdminStorage     = "admin.storage"
	PermMetricsRead      = "metrics.read"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermQuartersRead,
	PermQuartersManage,
	PermQuestionsRead,
	PermQuestionsWrite,
	PermPerformanceRead,
	PermPerformanceWrite,
	PermReviewsRead,
	PermReviewsWrite,
	PermReportsRead,
	PermAdminStorage,
	PermMetricsRead,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermEmployeesRead,
		PermQuartersRead,
		PermQuestionsRead,
		PermPerformanceRead,
		PermReviewsRead,
		PermReviewsWrite,
		PermReportsRead,
	},
	RoleManager: {
		PermEmployeesRead,
		PermQuartersRead,
		PermQuestionsRead,
		PermPerformanceRead,
		PermPerformanceWrite,
		PermReviewsRead,
		PermReviewsWrite,
		PermReportsRead,
	},
	RoleAdmin: DefaultPermissions,
}

// StaticPermissions answers permission checks from RolePermissions.
type StaticPermissions struct{}

func (StaticPermissions) HasPermission(_ context.Context, role, permission string) (bool, error) {
	for _, perm := range RolePermissions[role] {
		if perm == permission {
			return true, nil
		}
	}
	return false, nil
}
