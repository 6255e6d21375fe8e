package domain

import "time"

// TrainingAssignment is a training an employee of a company must complete.
type TrainingAssignment struct {
	ID          string     `json:"id"`
	CompanyID   string     `json:"companyId"`
	UserID      string     `json:"userId"`
	TrainingID  string     `json:"trainingId"`
	Title       string     `json:"title"`
	DueAt       *time.Time `json:"dueAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Overdue reports whether the assignment is past due and still open at now.
func (a TrainingAssignment) Overdue(now time.Time) bool {
	return a.CompletedAt == nil && a.DueAt != nil && a.DueAt.Before(now)
}
