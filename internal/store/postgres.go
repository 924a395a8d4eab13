package store

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/redealvo/rede-cli/internal/db"
	"github.com/redealvo/rede-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS stores (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	franchisee      TEXT NOT NULL DEFAULT '',
	supervisor      TEXT NOT NULL DEFAULT '',
	flag            TEXT NOT NULL DEFAULT '',
	state           TEXT NOT NULL DEFAULT '',
	goals           JSONB NOT NULL DEFAULT '{}',
	results         JSONB NOT NULL DEFAULT '{}',
	weights         JSONB NOT NULL DEFAULT '{}',
	reference_month TEXT NOT NULL DEFAULT '',
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS evaluations (
	id         TEXT PRIMARY KEY,
	store_id   TEXT NOT NULL REFERENCES stores(id),
	pillar     TEXT NOT NULL,
	score      DOUBLE PRECISION,
	status     TEXT NOT NULL DEFAULT 'pending',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS patent_thresholds (
	id         INT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
	bronze     DOUBLE PRECISION NOT NULL,
	prata      DOUBLE PRECISION NOT NULL,
	ouro       DOUBLE PRECISION NOT NULL,
	platina    DOUBLE PRECISION NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_evaluations_store_id ON evaluations(store_id);
CREATE INDEX IF NOT EXISTS idx_evaluations_status ON evaluations(status);
CREATE INDEX IF NOT EXISTS idx_evaluations_created_at ON evaluations(created_at);
`

// Migrate creates the schema if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

// ListStores returns every store with its monthly series normalized.
func (s *PostgresStore) ListStores(ctx context.Context) ([]model.Store, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, franchisee, supervisor, flag, state,
		       goals, results, weights, reference_month
		FROM stores
		ORDER BY name, id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list stores")
	}
	defer rows.Close()

	var stores []model.Store
	for rows.Next() {
		var st model.Store
		var goals, results, weights []byte
		var refMonth string
		err := rows.Scan(&st.ID, &st.Name, &st.Franchisee, &st.Supervisor,
			&st.Flag, &st.State, &goals, &results, &weights, &refMonth)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan store")
		}
		if st.Goals, err = decodeSeries(goals, refMonth); err != nil {
			return nil, eris.Wrapf(err, "postgres: store %s goals", st.ID)
		}
		if st.Results, err = decodeSeries(results, refMonth); err != nil {
			return nil, eris.Wrapf(err, "postgres: store %s results", st.ID)
		}
		if st.Weights, err = decodeSeries(weights, refMonth); err != nil {
			return nil, eris.Wrapf(err, "postgres: store %s weights", st.ID)
		}
		stores = append(stores, st)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate stores")
	}
	return stores, nil
}

// UpsertStores bulk-writes stores keyed by id.
func (s *PostgresStore) UpsertStores(ctx context.Context, stores []model.Store) error {
	if len(stores) == 0 {
		return nil
	}

	columns := []string{"id", "name", "franchisee", "supervisor", "flag", "state",
		"goals", "results", "weights", "updated_at"}
	rows := make([][]any, 0, len(stores))
	now := time.Now().UTC()
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
		rows = append(rows, []any{st.ID, st.Name, st.Franchisee, st.Supervisor,
			st.Flag, st.State, goals, results, weights, now})
	}

	if _, err := db.BulkUpsert(ctx, s.pool, "stores", columns, []string{"id"}, rows); err != nil {
		return eris.Wrap(err, "postgres: upsert stores")
	}
	return nil
}

// ListEvaluations returns evaluations matching the filter, oldest first.
func (s *PostgresStore) ListEvaluations(ctx context.Context, filter EvaluationFilter) ([]model.Evaluation, error) {
	query := `SELECT id, store_id, pillar, score, status, created_at FROM evaluations WHERE 1=1`
	var args []any
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $1`
	}
	if !filter.Since.IsZero() {
		args = append(args, filter.Since)
		query += ` AND created_at >= $` + strconv.Itoa(len(args))
	}
	if !filter.Until.IsZero() {
		args = append(args, filter.Until)
		query += ` AND created_at <= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list evaluations")
	}
	defer rows.Close()

	var evals []model.Evaluation
	for rows.Next() {
		var ev model.Evaluation
		var status string
		if err := rows.Scan(&ev.ID, &ev.StoreID, &ev.Pillar, &ev.Score, &status, &ev.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan evaluation")
		}
		ev.Status = model.EvaluationStatus(status)
		evals = append(evals, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate evaluations")
	}
	return evals, nil
}

// InsertEvaluations appends evaluation records, minting ids where missing.
func (s *PostgresStore) InsertEvaluations(ctx context.Context, evals []model.Evaluation) error {
	if len(evals) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin insert evaluations")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

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
		_, err := tx.Exec(ctx, `
			INSERT INTO evaluations (id, store_id, pillar, score, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			ev.ID, ev.StoreID, ev.Pillar, ev.Score, string(ev.Status), createdAt)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert evaluation for store %s", ev.StoreID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "postgres: commit evaluations")
	}
	return nil
}

// GetThresholds returns the administrator-edited thresholds record, falling
// back to the network defaults when none has been saved yet.
func (s *PostgresStore) GetThresholds(ctx context.Context) (model.PatentThresholds, error) {
	var t model.PatentThresholds
	err := s.pool.QueryRow(ctx,
		`SELECT bronze, prata, ouro, platina FROM patent_thresholds WHERE id = 1`).
		Scan(&t.Bronze, &t.Prata, &t.Ouro, &t.Platina)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return model.DefaultThresholds(), nil
		}
		return model.PatentThresholds{}, eris.Wrap(err, "postgres: get thresholds")
	}
	return t, nil
}

// SaveThresholds validates and upserts the single thresholds record.
func (s *PostgresStore) SaveThresholds(ctx context.Context, t model.PatentThresholds) error {
	if err := t.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO patent_thresholds (id, bronze, prata, ouro, platina, updated_at)
		VALUES (1, $1, $2, $3, $4, now())
		ON CONFLICT (id) DO UPDATE SET
			bronze = EXCLUDED.bronze, prata = EXCLUDED.prata,
			ouro = EXCLUDED.ouro, platina = EXCLUDED.platina,
			updated_at = now()`,
		t.Bronze, t.Prata, t.Ouro, t.Platina)
	if err != nil {
		return eris.Wrap(err, "postgres: save thresholds")
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}
