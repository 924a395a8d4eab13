package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redealvo/rede-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_ListStores(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{
		"id", "name", "franchisee", "supervisor", "flag", "state",
		"goals", "results", "weights", "reference_month",
	}).AddRow(
		"s1", "Centro", "", "Maria Souza", "", "SP",
		[]byte(`{"2025-07":{"faturamento":1000}}`),
		[]byte(`{"faturamento":800}`), // legacy flat shape
		[]byte(`{"2025-07":{"faturamento":100}}`),
		"2025-07",
	)
	mock.ExpectQuery(`SELECT id, name, franchisee, supervisor, flag, state`).
		WillReturnRows(rows)

	stores, err := s.ListStores(context.Background())
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, "Centro", stores[0].Name)
	assert.Equal(t, 1000.0, stores[0].Goals.Month("2025-07")["faturamento"])
	// The flat results blob was normalized under the reference month.
	assert.Equal(t, 800.0, stores[0].Results.Month("2025-07")["faturamento"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListEvaluations_StatusFilter(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	score := 85.0
	rows := pgxmock.NewRows([]string{"id", "store_id", "pillar", "score", "status", "created_at"}).
		AddRow("e1", "s1", model.PillarPessoas, &score, "approved", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)).
		AddRow("e2", "s1", model.PillarDigital, (*float64)(nil), "approved", time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC))
	mock.ExpectQuery(`SELECT id, store_id, pillar, score, status, created_at FROM evaluations WHERE 1=1 AND status = \$1`).
		WithArgs("approved").
		WillReturnRows(rows)

	evals, err := s.ListEvaluations(context.Background(), EvaluationFilter{Status: model.EvaluationApproved})
	require.NoError(t, err)
	require.Len(t, evals, 2)
	require.NotNil(t, evals[0].Score)
	assert.Equal(t, 85.0, *evals[0].Score)
	assert.Nil(t, evals[1].Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetThresholds_DefaultWhenMissing(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT bronze, prata, ouro, platina FROM patent_thresholds`).
		WillReturnRows(pgxmock.NewRows([]string{"bronze", "prata", "ouro", "platina"}))

	got, err := s.GetThresholds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultThresholds(), got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveThresholds(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO patent_thresholds`).
		WithArgs(0.0, 60.0, 80.0, 92.0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SaveThresholds(context.Background(),
		model.PatentThresholds{Bronze: 0, Prata: 60, Ouro: 80, Platina: 92})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveThresholds_RejectsInvalid(t *testing.T) {
	s, _ := newMockPostgresStore(t)

	err := s.SaveThresholds(context.Background(),
		model.PatentThresholds{Bronze: 0, Prata: 90, Ouro: 70, Platina: 95})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-decreasing")
}

func TestPostgresStore_InsertEvaluations(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	score := 70.0
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO evaluations`).
		WithArgs(pgxmock.AnyArg(), "s1", model.PillarAmbiencia, &score, "pending", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := s.InsertEvaluations(context.Background(), []model.Evaluation{
		{StoreID: "s1", Pillar: model.PillarAmbiencia, Score: &score},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
