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

// PartyStore holds customers, suppliers and their risk registers.
type PartyStore struct {
	db *DB
}

// NewPartyStore creates a party store using the given database.
func NewPartyStore(db *DB) *PartyStore {
	return &PartyStore{db: db}
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CreateParty inserts a customer or supplier.
func (s *PartyStore) CreateParty(ctx context.Context, p domain.Party) (*domain.Party, error) {
	return insertParty(ctx, s.db.sql, p)
}

func insertParty(ctx context.Context, ex execer, p domain.Party) (*domain.Party, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = time.Now().UTC()

	_, err := ex.ExecContext(ctx,
		`INSERT INTO parties (id, company_id, kind, name, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.CompanyID, string(p.Kind), p.Name, formatTime(p.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", p.Kind, err)
	}
	return &p, nil
}

// GetParty loads a party scoped to its company and kind.
func (s *PartyStore) GetParty(ctx context.Context, companyID string, kind domain.PartyKind, id string) (*domain.Party, error) {
	var (
		p         domain.Party
		k         string
		createdAt string
	)
	err := s.db.sql.QueryRowContext(ctx,
		`SELECT id, company_id, kind, name, created_at FROM parties
		 WHERE id = ? AND company_id = ? AND kind = ?`,
		id, companyID, string(kind),
	).Scan(&p.ID, &p.CompanyID, &k, &p.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", kind, err)
	}
	p.Kind = domain.PartyKind(k)
	p.CreatedAt = parseTime(createdAt)
	return &p, nil
}

// AddRisk appends a risk to a party's register.
func (s *PartyStore) AddRisk(ctx context.Context, r domain.Risk) (*domain.Risk, error) {
	return insertRisk(ctx, s.db.sql, r)
}

func insertRisk(ctx context.Context, ex execer, r domain.Risk) (*domain.Risk, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Status == "" {
		r.Status = domain.RiskOpen
	}
	if r.Severity == 0 {
		r.Severity = 1
	}
	if r.Likelihood == 0 {
		r.Likelihood = 1
	}
	r.CreatedAt = time.Now().UTC()

	_, err := ex.ExecContext(ctx,
		`INSERT INTO risks (id, company_id, source, source_id, title, severity, likelihood, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CompanyID, string(r.Source), r.SourceID, r.Title,
		r.Severity, r.Likelihood, string(r.Status), formatTime(r.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("add risk: %w", err)
	}
	return &r, nil
}

// RiskRegister lists a party's risks, highest score first.
func (s *PartyStore) RiskRegister(ctx context.Context, companyID string, source domain.PartyKind, sourceID string) ([]domain.Risk, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT id, company_id, source, source_id, title, severity, likelihood, status, created_at
		 FROM risks
		 WHERE company_id = ? AND source = ? AND source_id = ?
		 ORDER BY severity * likelihood DESC, created_at`,
		companyID, string(source), sourceID,
	)
	if err != nil {
		return nil, fmt.Errorf("risk register: %w", err)
	}
	defer rows.Close()

	out := []domain.Risk{}
	for rows.Next() {
		var (
			r                    domain.Risk
			src, status, created string
		)
		if err := rows.Scan(&r.ID, &r.CompanyID, &src, &r.SourceID, &r.Title,
			&r.Severity, &r.Likelihood, &status, &created); err != nil {
			return nil, err
		}
		r.Source = domain.PartyKind(src)
		r.Status = domain.RiskStatus(status)
		r.CreatedAt = parseTime(created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// PartyImport is a party together with its complete risk register.
type PartyImport struct {
	Party domain.Party
	Risks []domain.Risk
}

// ImportStats counts what an import wrote.
type ImportStats struct {
	Parties int `json:"parties"`
	Risks   int `json:"risks"`
}

// ImportParties loads parties for companyID in one transaction. A party
// that already exists is renamed and its risk register replaced, so
// re-running an import is safe. An ID owned by another company or kind
// fails the whole import with domain.ErrConflict.
func (s *PartyStore) ImportParties(ctx context.Context, companyID string, in []PartyImport) (ImportStats, error) {
	var stats ImportStats
	tx, err := s.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("import parties: %w", err)
	}
	defer tx.Rollback()

	for _, pi := range in {
		p := pi.Party
		p.CompanyID = companyID
		if p.ID == "" || p.Name == "" {
			return stats, fmt.Errorf("import parties: %s needs an id and a name", p.Kind)
		}

		var owner, kind string
		err := tx.QueryRowContext(ctx, `SELECT company_id, kind FROM parties WHERE id = ?`, p.ID).Scan(&owner, &kind)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := insertParty(ctx, tx, p); err != nil {
				return stats, err
			}
		case err != nil:
			return stats, fmt.Errorf("import parties: %w", err)
		case owner != companyID || kind != string(p.Kind):
			return stats, fmt.Errorf("import %s %s: id in use: %w", p.Kind, p.ID, domain.ErrConflict)
		default:
			if _, err := tx.ExecContext(ctx, `UPDATE parties SET name = ? WHERE id = ?`, p.Name, p.ID); err != nil {
				return stats, fmt.Errorf("update %s %s: %w", p.Kind, p.ID, err)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM risks WHERE source_id = ?`, p.ID); err != nil {
				return stats, fmt.Errorf("clear risks of %s: %w", p.ID, err)
			}
		}
		stats.Parties++

		for _, r := range pi.Risks {
			r.ID = ""
			r.CompanyID = companyID
			r.Source = p.Kind
			r.SourceID = p.ID
			if _, err := insertRisk(ctx, tx, r); err != nil {
				return stats, fmt.Errorf("%s %s: %w", p.Kind, p.ID, err)
			}
			stats.Risks++
		}
	}

	if err := tx.Commit(); err != nil {
		return ImportStats{}, fmt.Errorf("import parties: %w", err)
	}
	return stats, nil
}
