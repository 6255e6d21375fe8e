package domain

import "time"

// AuditEvent is a recorded lifecycle event.
type AuditEvent struct {
	ID        int64          `json:"id"`
	Event     string         `json:"event"`
	CompanyID string         `json:"companyId,omitempty"`
	UserID    string         `json:"userId,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}
