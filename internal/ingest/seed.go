// Package ingest loads external planning data into the store: YAML seed
// files describing stores and evaluations, and the monthly KPI planning
// workbooks the commercial team ships as XLSX.
package ingest

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/redealvo/rede-cli/internal/model"
)

// SeedFile is the YAML shape accepted by the import command.
type SeedFile struct {
	Stores      []SeedStore      `yaml:"stores"`
	Evaluations []SeedEvaluation `yaml:"evaluations"`
}

// SeedStore mirrors model.Store with YAML field names.
type SeedStore struct {
	ID         string                        `yaml:"id"`
	Name       string                        `yaml:"name"`
	Franchisee string                        `yaml:"franchisee"`
	Supervisor string                        `yaml:"supervisor"`
	Flag       string                        `yaml:"flag"`
	State      string                        `yaml:"state"`
	Goals      map[string]map[string]float64 `yaml:"goals"`
	Results    map[string]map[string]float64 `yaml:"results"`
	Weights    map[string]map[string]float64 `yaml:"weights"`
}

// SeedEvaluation mirrors model.Evaluation with YAML field names.
type SeedEvaluation struct {
	ID        string     `yaml:"id"`
	StoreID   string     `yaml:"store_id"`
	Pillar    string     `yaml:"pillar"`
	Score     *float64   `yaml:"score"`
	Status    string     `yaml:"status"`
	CreatedAt *time.Time `yaml:"created_at"`
}

// ReadSeedFile parses a YAML seed file.
func ReadSeedFile(path string) (*SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read seed file")
	}
	var seed SeedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, eris.Wrap(err, "ingest: parse seed file")
	}
	return &seed, nil
}

// Models converts the seed into store-layer entities, minting ids where the
// file omits them and defaulting evaluation status to pending.
func (f *SeedFile) Models() ([]model.Store, []model.Evaluation, error) {
	stores := make([]model.Store, 0, len(f.Stores))
	for _, s := range f.Stores {
		if s.Name == "" {
			return nil, nil, eris.Errorf("ingest: store %q has no name", s.ID)
		}
		id := s.ID
		if id == "" {
			id = uuid.NewString()
		}
		stores = append(stores, model.Store{
			ID:         id,
			Name:       s.Name,
			Franchisee: s.Franchisee,
			Supervisor: s.Supervisor,
			Flag:       s.Flag,
			State:      s.State,
			Goals:      model.MonthSeries(s.Goals),
			Results:    model.MonthSeries(s.Results),
			Weights:    model.MonthSeries(s.Weights),
		})
	}

	evals := make([]model.Evaluation, 0, len(f.Evaluations))
	for _, e := range f.Evaluations {
		if e.StoreID == "" {
			return nil, nil, eris.Errorf("ingest: evaluation %q has no store_id", e.ID)
		}
		id := e.ID
		if id == "" {
			id = uuid.NewString()
		}
		status := model.EvaluationStatus(e.Status)
		if status == "" {
			status = model.EvaluationPending
		}
		ev := model.Evaluation{
			ID:      id,
			StoreID: e.StoreID,
			Pillar:  e.Pillar,
			Score:   e.Score,
			Status:  status,
		}
		if e.CreatedAt != nil {
			ev.CreatedAt = *e.CreatedAt
		}
		evals = append(evals, ev)
	}

	return stores, evals, nil
}
