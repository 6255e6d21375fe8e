package domain

import "time"

// Notification is a message delivered to a user's notification feed.
type Notification struct {
	ID         string         `json:"id"`
	WorkflowID string         `json:"workflowId"`
	CompanyID  string         `json:"companyId"`
	UserID     string         `json:"userId"`
	Title      string         `json:"title"`
	Body       string         `json:"body"`
	Link       string         `json:"link,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}
