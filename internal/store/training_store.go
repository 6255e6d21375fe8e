package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/soyeahso/suite/internal/domain"
)

// TrainingStore records training assignments and their completion.
type TrainingStore struct {
	db *DB
}

// NewTrainingStore creates a training store using the given database.
func NewTrainingStore(db *DB) *TrainingStore {
	return &TrainingStore{db: db}
}

// Assign inserts an assignment, generating an ID when empty.
func (s *TrainingStore) Assign(ctx context.Context, a domain.TrainingAssignment) (*domain.TrainingAssignment, error) {
	if a.CompanyID == "" || a.UserID == "" {
		return nil, fmt.Errorf("assign training: companyId and userId are required")
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.sql.ExecContext(ctx,
		`INSERT INTO training_assignments (id, company_id, user_id, training_id, title, due_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.CompanyID, a.UserID, a.TrainingID, a.Title,
		formatNullTime(a.DueAt), formatTime(a.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("assign training: %w", err)
	}
	return &a, nil
}

// Outstanding returns the open assignments for a company/user pair,
// earliest due first; undated assignments sort last.
func (s *TrainingStore) Outstanding(ctx context.Context, companyID, userID string) ([]domain.TrainingAssignment, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT a.id, a.company_id, a.user_id, a.training_id, a.title, a.due_at, a.created_at
		 FROM training_assignments a
		 LEFT JOIN training_completions c ON c.assignment_id = a.id
		 WHERE a.company_id = ? AND a.user_id = ? AND c.assignment_id IS NULL
		 ORDER BY a.due_at IS NULL, a.due_at, a.created_at`,
		companyID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("outstanding training: %w", err)
	}
	defer rows.Close()

	out := []domain.TrainingAssignment{}
	for rows.Next() {
		var (
			a         domain.TrainingAssignment
			dueAt     sql.NullString
			createdAt string
		)
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.UserID, &a.TrainingID, &a.Title, &dueAt, &createdAt); err != nil {
			return nil, err
		}
		a.DueAt = parseNullTime(dueAt)
		a.CreatedAt = parseTime(createdAt)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Complete marks an assignment done. The assignment must belong to the
// company/user pair; completing twice reports domain.ErrConflict.
func (s *TrainingStore) Complete(ctx context.Context, companyID, userID, assignmentID string, at time.Time) error {
	var owner string
	err := s.db.sql.QueryRowContext(ctx,
		`SELECT user_id FROM training_assignments WHERE id = ? AND company_id = ?`,
		assignmentID, companyID,
	).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != userID) {
		return fmt.Errorf("training assignment %s: %w", assignmentID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("complete training: %w", err)
	}

	res, err := s.db.sql.ExecContext(ctx,
		`INSERT INTO training_completions (assignment_id, completed_at) VALUES (?, ?)
		 ON CONFLICT(assignment_id) DO NOTHING`,
		assignmentID, formatTime(at),
	)
	if err != nil {
		return fmt.Errorf("complete training: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("training assignment %s already completed: %w", assignmentID, domain.ErrConflict)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.DateTime)
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(s string) time.Time {
	t, _ := time.ParseInLocation(time.DateTime, s, time.UTC)
	return t
}

func parseNullTime(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t := parseTime(ns.String)
	return &t
}
