package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/soyeahso/suite/internal/domain"
)

const maxAuditPage = 500

// AuditStore appends and lists audit events.
type AuditStore struct {
	db *DB
}

func NewAuditStore(db *DB) *AuditStore {
	return &AuditStore{db: db}
}

// Record appends e and returns it with ID and timestamp set.
func (s *AuditStore) Record(ctx context.Context, e domain.AuditEvent) (*domain.AuditEvent, error) {
	if e.Event == "" {
		return nil, fmt.Errorf("record audit event: event name is required")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	data := []byte("{}")
	if len(e.Data) > 0 {
		var err error
		if data, err = json.Marshal(e.Data); err != nil {
			return nil, fmt.Errorf("record audit event: %w", err)
		}
	}

	res, err := s.db.sql.ExecContext(ctx,
		`INSERT INTO audit_events (event, company_id, user_id, data, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.Event, e.CompanyID, e.UserID, string(data), formatTime(e.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("record audit event: %w", err)
	}
	e.ID, _ = res.LastInsertId()
	return &e, nil
}

// Recent lists a company's events, newest first. limit is clamped to
// 1..500.
func (s *AuditStore) Recent(ctx context.Context, companyID string, limit int) ([]domain.AuditEvent, error) {
	limit = max(1, min(limit, maxAuditPage))

	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT id, event, company_id, user_id, data, created_at FROM audit_events
		 WHERE company_id = ? ORDER BY id DESC LIMIT ?`,
		companyID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	out := []domain.AuditEvent{}
	for rows.Next() {
		var (
			e             domain.AuditEvent
			data, created string
		)
		if err := rows.Scan(&e.ID, &e.Event, &e.CompanyID, &e.UserID, &data, &created); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if data != "{}" {
			if err := json.Unmarshal([]byte(data), &e.Data); err != nil {
				return nil, fmt.Errorf("decode audit event %d: %w", e.ID, err)
			}
		}
		e.CreatedAt = parseTime(created)
		out = append(out, e)
	}
	return out, rows.Err()
}
