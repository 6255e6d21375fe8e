package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create training assignments and completions",
		SQL: `
			CREATE TABLE training_assignments (
				id           TEXT PRIMARY KEY,
				company_id   TEXT NOT NULL,
				user_id      TEXT NOT NULL,
				training_id  TEXT NOT NULL,
				title        TEXT NOT NULL,
				due_at       TEXT,
				created_at   TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_training_company_user ON training_assignments (company_id, user_id);

			CREATE TABLE training_completions (
				assignment_id TEXT PRIMARY KEY REFERENCES training_assignments(id) ON DELETE CASCADE,
				completed_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);
		`,
	},
	{
		Version: 2,
		Name:    "create parties and risk register",
		SQL: `
			CREATE TABLE parties (
				id          TEXT PRIMARY KEY,
				company_id  TEXT NOT NULL,
				kind        TEXT NOT NULL CHECK (kind IN ('customer', 'supplier')),
				name        TEXT NOT NULL,
				created_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_parties_company ON parties (company_id, kind);

			CREATE TABLE risks (
				id          TEXT PRIMARY KEY,
				company_id  TEXT NOT NULL,
				source      TEXT NOT NULL CHECK (source IN ('customer', 'supplier')),
				source_id   TEXT NOT NULL REFERENCES parties(id) ON DELETE CASCADE,
				title       TEXT NOT NULL,
				severity    INTEGER NOT NULL DEFAULT 1 CHECK (severity BETWEEN 1 AND 5),
				likelihood  INTEGER NOT NULL DEFAULT 1 CHECK (likelihood BETWEEN 1 AND 5),
				status      TEXT NOT NULL DEFAULT 'open',
				created_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_risks_source ON risks (company_id, source, source_id);
		`,
	},	{
		Version: 3,
		Name:    "create audit events",
		SQL: `
			CREATE TABLE audit_events (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				event       TEXT NOT NULL,
				company_id  TEXT NOT NULL DEFAULT '',
				user_id     TEXT NOT NULL DEFAULT '',
				data        TEXT NOT NULL DEFAULT '{}',
				created_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_audit_company ON audit_events (company_id, id);
		`,
	},
}
