package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/redealvo/rede-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS stores (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	franchisee      TEXT NOT NULL DEFAULT '',
	supervisor      TEXT NOT NULL DEFAULT '',
	flag            TEXT NOT NULL DEFAULT '',
	state           TEXT NOT NULL DEFAULT '',
	goals           TEXT NOT NULL DEFAULT '{}',
	results         TEXT NOT NULL DEFAULT '{}',
	weights         TEXT NOT NULL DEFAULT '{}',
	reference_month TEXT NOT NULL DEFAULT '',
	updated_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS evaluations (
	id         TEXT PRIMARY KEY,
	store_id   TEXT NOT NULL REFERENCES stores(id),
	pillar     TEXT NOT NULL,
	score      REAL,
	status     TEXT NOT NULL DEFAULT 'pending',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS patent_thresholds (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	bronze     REAL NOT NULL,
	prata      REAL NOT NULL,
	ouro       REAL NOT NULL,
	platina    REAL NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_evaluations_store_id ON evaluations(store_id);
CREATE INDEX IF NOT EXISTS idx_evaluations_status ON evaluations(status);
CREATE INDEX IF NOT EXISTS idx_evaluations_created_at ON evaluations(created_at);
`

// Migrate creates the schema if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	return nil
}

// ListStores returns every store with its monthly series normalized.
func (s *SQLiteStore) ListStores(ctx context.Context) ([]model.Store, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, franchisee, supervisor, flag, state,
		       goals, results, weights, reference_month
		FROM stores
		ORDER BY name, id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list stores")
	}
	defer rows.Close()

	var stores []model.Store
	for rows.Next() {
		var st model.Store
		var goals, results, weights, refMonth string
		err := rows.Scan(&st.ID, &st.Name, &st.Franchisee, &st.Supervisor,
			&st.Flag, &st.State, &goals, &results, &weights, &refMonth)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan store")
		}
		if st.Goals, err = decodeSeries([]byte(goals), refMonth); err != nil {
			return nil, eris.Wrapf(err, "sqlite: store %s goals", st.ID)
		}
		if st.Results, err = decodeSeries([]byte(results), refMonth); err != nil {
			return nil, eris.Wrapf(err, "sqlite: store %s results", st.ID)
		}
		if st.Weights, err = decodeSeries([]byte(weights), refMonth); err != nil {
			return nil, eris.Wrapf(err, "sqlite: store %s weights", st.ID)
		}
		stores = append(stores, st)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate stores")
	}
	return stores, nil
}

// UpsertStores writes stores keyed by id inside one transaction.
func (s *SQLiteStore) UpsertStores(ctx context.Context, stores []model.Store) error {
	if len(stores) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin upsert stores")
	}
	defer tx.Rollback() //nolint:errcheck

	for i := range stores {
		st := &stores[i]
		if st.ID == "" {
			st.ID = uuid.NewString()
		}
		goals, err := encodeSeries(st.Goals)
		if err != nil {
			return err
		}
		results, err := encodeSeries(st.Results)
		if err != nil {
			return err
		}
		weights, err := encodeSeries(st.Weights)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO stores (id, name, franchisee, supervisor, flag, state, goals, results, weights, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name, franchisee = excluded.franchisee,
				supervisor = excluded.supervisor, flag = excluded.flag,
				state = excluded.state, goals = excluded.goals,
				results = excluded.results, weights = excluded.weights,
				updated_at = excluded.updated_at`,
			st.ID, st.Name, st.Franchisee, st.Supervisor, st.Flag, st.State,
			string(goals), string(results), string(weights))
		if err != nil {
			return eris.Wrapf(err, "sqlite: upsert store %s", st.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "sqlite: commit stores")
	}
	return nil
}

// ListEvaluations returns evaluations matching the filter, oldest first.
func (s *SQLiteStore) ListEvaluations(ctx context.Context, filter EvaluationFilter) ([]model.Evaluation, error) {
	query := `SELECT id, store_id, pillar, score, status, created_at FROM evaluations WHERE 1=1`
	var args []any
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if !filter.Since.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, filter.Since.UTC())
	}
	if !filter.Until.IsZero() {
		query += ` AND created_at <= ?`
		args = append(args, filter.Until.UTC())
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list evaluations")
	}
	defer rows.Close()

	var evals []model.Evaluation
	for rows.Next() {
		var ev model.Evaluation
		var status string
		var score sql.NullFloat64
		if err := rows.Scan(&ev.ID, &ev.StoreID, &ev.Pillar, &score, &status, &ev.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan evaluation")
		}
		if score.Valid {
			v := score.Float64
			ev.Score = &v
		}
		ev.Status = model.EvaluationStatus(status)
		evals = append(evals, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate evaluations")
	}
	return evals, nil
}

// InsertEvaluations appends evaluation records, minting ids where missing.
func (s *SQLiteStore) InsertEvaluations(ctx context.Context, evals []model.Evaluation) error {
	if len(evals) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin insert evaluations")
	}
	defer tx.Rollback() //nolint:errcheck

	for i := range evals {
		ev := &evals[i]
		if ev.ID == "" {
			ev.ID = uuid.NewString()
		}
		if ev.Status == "" {
			ev.Status = model.EvaluationPending
		}
		createdAt := ev.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		var score any
		if ev.Score != nil {
			score = *ev.Score
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO evaluations (id, store_id, pillar, score, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			ev.ID, ev.StoreID, ev.Pillar, score, string(ev.Status), createdAt.UTC())
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert evaluation for store %s", ev.StoreID)
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "sqlite: commit evaluations")
	}
	return nil
}

// GetThresholds returns the saved thresholds record or the network defaults.
func (s *SQLiteStore) GetThresholds(ctx context.Context) (model.PatentThresholds, error) {
	var t model.PatentThresholds
	err := s.db.QueryRowContext(ctx,
		`SELECT bronze, prata, ouro, platina FROM patent_thresholds WHERE id = 1`).
		Scan(&t.Bronze, &t.Prata, &t.Ouro, &t.Platina)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return model.DefaultThresholds(), nil
		}
		return model.PatentThresholds{}, eris.Wrap(err, "sqlite: get thresholds")
	}
	return t, nil
}

// SaveThresholds validates and upserts the single thresholds record.
func (s *SQLiteStore) SaveThresholds(ctx context.Context, t model.PatentThresholds) error {
	if err := t.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO patent_thresholds (id, bronze, prata, ouro, platina, updated_at)
		VALUES (1, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT (id) DO UPDATE SET
			bronze = excluded.bronze, prata = excluded.prata,
			ouro = excluded.ouro, platina = excluded.platina,
			updated_at = excluded.updated_at`,
		t.Bronze, t.Prata, t.Ouro, t.Platina)
	if err != nil {
		return eris.Wrap(err, "sqlite: save thresholds")
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
