package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redealvo/rede-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func ptrFloat64(v float64) *float64 { return &v }

func TestSQLite_StoreRoundtrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	in := model.Store{
		ID:         "s1",
		Name:       "Norte Shopping",
		Franchisee: "Grupo Almeida",
		Supervisor: "João Pereira",
		Flag:       "premium",
		State:      "RJ",
		Goals:      model.MonthSeries{"2025-07": {"faturamento": 120000}},
		Results:    model.MonthSeries{"2025-07": {"faturamento": 98000}},
		Weights:    model.MonthSeries{"2025-07": {"faturamento": 100}},
	}
	require.NoError(t, st.UpsertStores(ctx, []model.Store{in}))

	stores, err := st.ListStores(ctx)
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, in.Name, stores[0].Name)
	assert.Equal(t, 120000.0, stores[0].Goals.Month("2025-07")["faturamento"])

	// Upsert again under the same id replaces, not duplicates.
	in.Name = "Norte Shopping II"
	require.NoError(t, st.UpsertStores(ctx, []model.Store{in}))
	stores, err = st.ListStores(ctx)
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, "Norte Shopping II", stores[0].Name)
}

func TestSQLite_UpsertMintsIDs(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.UpsertStores(ctx, []model.Store{{Name: "Sem ID"}}))
	stores, err := st.ListStores(ctx)
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.NotEmpty(t, stores[0].ID)
}

func TestSQLite_EvaluationsFilter(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.UpsertStores(ctx, []model.Store{{ID: "s1", Name: "Centro"}}))

	evals := []model.Evaluation{
		{StoreID: "s1", Pillar: model.PillarPessoas, Score: ptrFloat64(80),
			Status: model.EvaluationApproved, CreatedAt: time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)},
		{StoreID: "s1", Pillar: model.PillarDigital, Score: nil,
			Status: model.EvaluationApproved, CreatedAt: time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC)},
		{StoreID: "s1", Pillar: model.PillarAmbiencia, Score: ptrFloat64(60),
			Status: model.EvaluationPending, CreatedAt: time.Date(2025, 7, 3, 10, 0, 0, 0, time.UTC)},
	}
	require.NoError(t, st.InsertEvaluations(ctx, evals))

	approved, err := st.ListEvaluations(ctx, EvaluationFilter{Status: model.EvaluationApproved})
	require.NoError(t, err)
	require.Len(t, approved, 2)
	assert.Equal(t, model.PillarPessoas, approved[0].Pillar)
	require.NotNil(t, approved[0].Score)
	assert.Equal(t, 80.0, *approved[0].Score)
	// Null scores survive the roundtrip as nil, not zero.
	assert.Nil(t, approved[1].Score)

	since := time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)
	recent, err := st.ListEvaluations(ctx, EvaluationFilter{Since: since})
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestSQLite_ThresholdsDefaultAndSave(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	got, err := st.GetThresholds(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultThresholds(), got)

	custom := model.PatentThresholds{Bronze: 0, Prata: 60, Ouro: 80, Platina: 92}
	require.NoError(t, st.SaveThresholds(ctx, custom))

	got, err = st.GetThresholds(ctx)
	require.NoError(t, err)
	assert.Equal(t, custom, got)

	// A second save overwrites the single record.
	custom.Platina = 97
	require.NoError(t, st.SaveThresholds(ctx, custom))
	got, err = st.GetThresholds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 97.0, got.Platina)
}

func TestSQLite_SaveThresholdsRejectsDecreasing(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.SaveThresholds(context.Background(),
		model.PatentThresholds{Bronze: 0, Prata: 80, Ouro: 70, Platina: 95})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-decreasing")
}
