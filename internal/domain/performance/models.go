package performance

import (
	"encoding/json"
	"time"
)

const TableName = "performance_records"

type Type string

const (
	TypeSelfAssessment  Type = "self_assessment"
	TypeRequestFeedback Type = "request_feedback"
	TypeFeedbackSummary Type = "feedback_summary"
)

func (t Type) Valid() bool {
	switch t {
	case TypeSelfAssessment, TypeRequestFeedback, TypeFeedbackSummary:
		return true
	}
	return false
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Record tracks one review activity of an employee in a quarter. Data is
// an activity-specific payload stored as-is.
type Record struct {
	ID         string          `json:"id"`
	EmployeeID string          `json:"employeeId"`
	QuarterID  string          `json:"quarterId"`
	Type       Type            `json:"type"`
	Status     Status          `json:"status"`
	Data       json.RawMessage `json:"data"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Patch changes a record's status and/or payload; nil fields are kept.
type Patch struct {
	Status *Status         `json:"status,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

type Stats struct {
	TotalRecords      int     `json:"totalRecords"`
	CompletedRecords  int     `json:"completedRecords"`
	InProgressRecords int     `json:"inProgressRecords"`
	PendingRecords    int     `json:"pendingRecords"`
	FailedRecords     int     `json:"failedRecords"`
	SelfAssessment    *Record `json:"selfAssessment"`
	RequestFeedback   *Record `json:"requestFeedback"`
	FeedbackSummary   *Record `json:"feedbackSummary"`
}
