package store

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/redealvo/rede-cli/internal/model"
)

// decodeSeries normalizes a raw goals/results/weights blob into a
// MonthSeries. The hosted backend stores two shapes: the current one keyed
// by month ({"2025-07": {"faturamento": 1000}}) and a legacy flat map
// ({"faturamento": 1000}) from before monthly planning existed. Flat blobs
// are filed under the row's reference month so the engine only ever sees
// the month-keyed shape.
func decodeSeries(raw []byte, fallbackMonth string) (model.MonthSeries, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return model.MonthSeries{}, nil
	}

	var nested map[string]map[string]float64
	if err := json.Unmarshal(raw, &nested); err == nil {
		if nested == nil {
			return model.MonthSeries{}, nil
		}
		return nested, nil
	}

	var flat map[string]float64
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, eris.Wrap(err, "store: decode month series")
	}
	if len(flat) == 0 || fallbackMonth == "" {
		return model.MonthSeries{}, nil
	}
	return model.MonthSeries{fallbackMonth: flat}, nil
}

func encodeSeries(s model.MonthSeries) ([]byte, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, eris.Wrap(err, "store: encode month series")
	}
	return raw, nil
}
