package employee

import (
	"encoding/json"
	"time"
)

// SampleEmployees is the directory written to an empty store.
func SampleEmployees() []Employee {
	now := time.Now().UTC()
	rows := []Employee{
		{EmployeeID: "EMP001", Name: "John Smith", Role: "Software Engineer", Department: "Engineering", Manager: "Jane Doe", ManagerEmail: "jane.doe@company.com", EmployeeEmail: "john.smith@company.com", PerformanceRating: 4.5, SkillsRating: 4.2, Compensation: 85000},
		{EmployeeID: "EMP002", Name: "Sarah Johnson", Role: "Product Manager", Department: "Product", Manager: "Mike Wilson", ManagerEmail: "mike.wilson@company.com", EmployeeEmail: "sarah.johnson@company.com", PerformanceRating: 4.8, SkillsRating: 4.6, Compensation: 95000, IsManager: true},
		{EmployeeID: "EMP003", Name: "Alex Chen", Role: "UX Designer", Department: "Design", Manager: "Emily Brown", ManagerEmail: "emily.brown@company.com", EmployeeEmail: "alex.chen@company.com", PerformanceRating: 4.3, SkillsRating: 4.7, Compensation: 78000},
		{EmployeeID: "EMP004", Name: "Jane Doe", Role: "Engineering Manager", Department: "Engineering", Manager: "CEO", ManagerEmail: "ceo@company.com", EmployeeEmail: "jane.doe@company.com", PerformanceRating: 4.9, SkillsRating: 4.8, Compensation: 120000, IsManager: true},
		{EmployeeID: "EMP005", Name: "Mike Wilson", Role: "VP Product", Department: "Product", Manager: "CEO", ManagerEmail: "ceo@company.com", EmployeeEmail: "mike.wilson@company.com", PerformanceRating: 4.7, SkillsRating: 4.9, Compensation: 140000, IsManager: true},
	}
	for i := range rows {
		rows[i].CreatedAt = now
		rows[i].UpdatedAt = now
	}
	return rows
}

// hasManagerFlag rejects directories written before employees carried the
// isManager field.
func hasManagerFlag(raw []byte) bool {
	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return false
	}
	if len(rows) == 0 {
		return true
	}
	_, ok := rows[0]["isManager"]
	return ok
}
