package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redealvo/rede-cli/internal/model"
	"github.com/redealvo/rede-cli/internal/snapshot"
	"github.com/redealvo/rede-cli/internal/store"
)

// stubStore serves fixed data through the store interface.
type stubStore struct {
	stores []model.Store
	evals  []model.Evaluation
}

func (s *stubStore) ListStores(context.Context) ([]model.Store, error) { return s.stores, nil }
func (s *stubStore) UpsertStores(context.Context, []model.Store) error { return nil }
func (s *stubStore) ListEvaluations(context.Context, store.EvaluationFilter) ([]model.Evaluation, error) {
	return s.evals, nil
}
func (s *stubStore) InsertEvaluations(context.Context, []model.Evaluation) error { return nil }
func (s *stubStore) GetThresholds(context.Context) (model.PatentThresholds, error) {
	return model.DefaultThresholds(), nil
}
func (s *stubStore) SaveThresholds(context.Context, model.PatentThresholds) error { return nil }
func (s *stubStore) Migrate(context.Context) error                                { return nil }
func (s *stubStore) Close() error                                                 { return nil }

func testProvider(t *testing.T) *snapshot.Provider {
	t.Helper()

	score := 90.0
	src := &stubStore{
		stores: []model.Store{
			{
				ID:   "loja-1",
				Name: "Loja Centro",
				Goals: model.MonthSeries{
					"2025-07": {"faturamento": 100000},
				},
				Results: model.MonthSeries{
					"2025-07": {"faturamento": 95000},
				},
				Weights: model.MonthSeries{
					"2025-07": {"faturamento": 100},
				},
			},
			{ID: "loja-2", Name: "Loja Sem Dados"},
		},
		evals: []model.Evaluation{
			{
				ID:        "ev-1",
				StoreID:   "loja-1",
				Pillar:    model.PillarPessoas,
				Score:     &score,
				Status:    model.EvaluationApproved,
				CreatedAt: time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC),
			},
		},
	}

	p := snapshot.NewProvider(src, 0)
	_, err := p.Refresh(context.Background())
	require.NoError(t, err)
	return p
}

func TestBuildRouter_Health(t *testing.T) {
	r := buildRouter(testProvider(t), []string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestBuildRouter_Ranking(t *testing.T) {
	r := buildRouter(testProvider(t), []string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/api/ranking?month=2025-07", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Month   string `json:"month"`
		Entries []struct {
			StoreID   string `json:"store_id"`
			Composite int    `json:"composite"`
			Patent    string `json:"patent"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	assert.Equal(t, "2025-07", body.Month)
	// loja-2 has no plan and no evaluations, so only loja-1 ranks.
	require.Len(t, body.Entries, 1)
	assert.Equal(t, "loja-1", body.Entries[0].StoreID)
	// Performance 95, Pessoas 90, two empty pillars: round((95+90)/4) = 46.
	assert.Equal(t, 46, body.Entries[0].Composite)
	assert.Equal(t, "Bronze", body.Entries[0].Patent)
}

func TestBuildRouter_Ranking_BadMonth(t *testing.T) {
	r := buildRouter(testProvider(t), []string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/api/ranking?month=julho", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBuildRouter_StoreScore(t *testing.T) {
	r := buildRouter(testProvider(t), []string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/api/stores/loja-1/score?month=2025-07", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		StoreID   string         `json:"store_id"`
		Pillars   map[string]int `json:"pillars"`
		Composite int            `json:"composite"`
		HasData   bool           `json:"has_data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	assert.Equal(t, "loja-1", body.StoreID)
	assert.Equal(t, 95, body.Pillars[model.PillarPerformance])
	assert.Equal(t, 90, body.Pillars[model.PillarPessoas])
	assert.True(t, body.HasData)
}

func TestBuildRouter_StoreScore_NotFound(t *testing.T) {
	r := buildRouter(testProvider(t), []string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/api/stores/nope/score?month=2025-07", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestBuildRouter_Tiers(t *testing.T) {
	r := buildRouter(testProvider(t), []string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/api/tiers?month=2025-07", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Ranked int            `json:"ranked"`
		Tiers  map[string]int `json:"tiers"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	assert.Equal(t, 1, body.Ranked)
	assert.Equal(t, 1, body.Tiers[model.PatentBronze])
	// Every tier appears even when empty.
	assert.Len(t, body.Tiers, 4)
}

func TestBuildRouter_Excellence(t *testing.T) {
	r := buildRouter(testProvider(t), []string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/api/excellence?month=2025-07", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Groups map[string]map[string]struct {
			Best *struct {
				StoreID string `json:"store_id"`
				Score   int    `json:"score"`
			} `json:"best"`
		} `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	group, ok := body.Groups[model.OwnStoreLabel]
	require.True(t, ok, "expected company-owned group")
	require.NotNil(t, group[model.PillarPessoas].Best)
	assert.Equal(t, "loja-1", group[model.PillarPessoas].Best.StoreID)
	assert.Equal(t, 90, group[model.PillarPessoas].Best.Score)
}

func TestBuildRouter_Refresh(t *testing.T) {
	r := buildRouter(testProvider(t), []string{"*"})

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Status string `json:"status"`
		Stores int    `json:"stores"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 2, body.Stores)
}

func TestBuildRouter_Thresholds(t *testing.T) {
	r := buildRouter(testProvider(t), []string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/api/thresholds", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var got model.PatentThresholds
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, model.DefaultThresholds(), got)
}
