package employee

import "time"

const TableName = "employees"

type Employee struct {
	EmployeeID        string    `json:"employeeId" validate:"max=64"`
	Name              string    `json:"name" validate:"required,max=120,excludesall=\r\n"`
	Role              string    `json:"role" validate:"max=120"`
	Department        string    `json:"department" validate:"max=120"`
	Manager           string    `json:"manager" validate:"max=120"`
	ManagerEmail      string    `json:"managerEmail" validate:"omitempty,email"`
	EmployeeEmail     string    `json:"employeeEmail" validate:"omitempty,email"`
	PerformanceRating float64   `json:"performanceRating" validate:"gte=0,lte=5"`
	SkillsRating      float64   `json:"skillsRating" validate:"gte=0,lte=5"`
	Compensation      float64   `json:"compensation" validate:"gte=0"`
	IsManager         bool      `json:"isManager"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Patch holds the fields an update may change; nil fields are kept.
type Patch struct {
	Name              *string  `json:"name,omitempty"`
	Role              *string  `json:"role,omitempty"`
	Department        *string  `json:"department,omitempty"`
	Manager           *string  `json:"manager,omitempty"`
	ManagerEmail      *string  `json:"managerEmail,omitempty"`
	EmployeeEmail     *string  `json:"employeeEmail,omitempty"`
	PerformanceRating *float64 `json:"performanceRating,omitempty"`
	SkillsRating      *float64 `json:"skillsRating,omitempty"`
	Compensation      *float64 `json:"compensation,omitempty"`
	IsManager         *bool    `json:"isManager,omitempty"`
}

type Stats struct {
	Total               int     `json:"total"`
	Managers            int     `json:"managers"`
	Departments         int     `json:"departments"`
	AveragePerformance  float64 `json:"averagePerformance"`
	AverageCompensation float64 `json:"averageCompensation"`
}

func (p Patch) apply(e *Employee) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Role != nil {
		e.Role = *p.Role
	}
	if p.Department != nil {
		e.Department = *p.Department
	}
	if p.Manager != nil {
		e.Manager = *p.Manager
	}
	if p.ManagerEmail != nil {
		e.ManagerEmail = *p.ManagerEmail
	}
	if p.EmployeeEmail != nil {
		e.EmployeeEmail = *p.EmployeeEmail
	}
	if p.PerformanceRating != nil {
		e.PerformanceRating = *p.PerformanceRating
	}
	if p.SkillsRating != nil {
		e.SkillsRating = *p.SkillsRating
	}
	if p.Compensation != nil {
		e.Compensation = *p.Compensation
	}
	if p.IsManager != nil {
		e.IsManager = *p.IsManager
	}
}
