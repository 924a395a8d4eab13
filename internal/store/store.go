// Package store provides the persistence boundary the scoring engine reads
// its snapshots from. Two backends share one interface: Postgres for the
// hosted deployment and embedded SQLite for local use.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/redealvo/rede-cli/internal/model"
)

// EvaluationFilter specifies criteria for listing evaluations.
type EvaluationFilter struct {
	Status model.EvaluationStatus
	Since  time.Time
	Until  time.Time
}

// Snapshot bundles one consistent read of everything the engine consumes.
type Snapshot struct {
	Stores      []model.Store
	Evaluations []model.Evaluation
	Thresholds  model.PatentThresholds
	FetchedAt   time.Time
}

// Store defines the persistence interface for the network dashboard.
type Store interface {
	// Stores
	ListStores(ctx context.Context) ([]model.Store, error)
	UpsertStores(ctx context.Context, stores []model.Store) error

	// Evaluations
	ListEvaluations(ctx context.Context, filter EvaluationFilter) ([]model.Evaluation, error)
	InsertEvaluations(ctx context.Context, evals []model.Evaluation) error

	// Patent thresholds (administrator-editable single record)
	GetThresholds(ctx context.Context) (model.PatentThresholds, error)
	SaveThresholds(ctx context.Context, t model.PatentThresholds) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, driver, databaseURL string) (Store, error) {
	switch driver {
	case "postgres":
		return NewPostgres(ctx, databaseURL)
	case "sqlite":
		return NewSQLite(databaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
