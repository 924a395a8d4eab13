package ingest

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/redealvo/rede-cli/internal/model"
)

// PlanRow is one line of a monthly KPI planning workbook: which store, which
// month, which KPI, and the planned goal, actual result and weight.
type PlanRow struct {
	StoreID string
	Month   string
	KPI     string
	Goal    float64
	Result  float64
	Weight  float64
}

// planColumns is the expected header, in order.
var planColumns = []string{"store_id", "month", "kpi", "goal", "result", "weight"}

// ReadPlanWorkbook parses the first sheet of an XLSX planning workbook.
// The first row must be the header; blank lines are skipped.
func ReadPlanWorkbook(path string) ([]PlanRow, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open workbook")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("ingest: workbook has no sheets")
	}
	sheet := f.Sheets[0]

	var rows []PlanRow
	for i, row := range sheet.Rows {
		cells := rowToStrings(row)
		if i == 0 {
			if err := checkHeader(cells); err != nil {
				return nil, err
			}
			continue
		}
		if isBlank(cells) {
			continue
		}
		pr, err := parsePlanRow(cells)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: row %d", i+1)
		}
		rows = append(rows, pr)
	}
	return rows, nil
}

// ApplyPlans merges plan rows into the matching stores' month series,
// mutating the slice in place. It returns how many rows were applied and
// the distinct store ids that matched nothing.
func ApplyPlans(stores []model.Store, rows []PlanRow) (int, []string) {
	index := make(map[string]*model.Store, len(stores))
	for i := range stores {
		index[stores[i].ID] = &stores[i]
	}

	applied := 0
	missing := make(map[string]bool)
	for _, row := range rows {
		st, ok := index[row.StoreID]
		if !ok {
			missing[row.StoreID] = true
			continue
		}
		setSeries(&st.Goals, row.Month, row.KPI, row.Goal)
		setSeries(&st.Results, row.Month, row.KPI, row.Result)
		setSeries(&st.Weights, row.Month, row.KPI, row.Weight)
		applied++
	}

	var unknown []string
	for id := range missing {
		unknown = append(unknown, id)
	}
	return applied, unknown
}

func setSeries(s *model.MonthSeries, month, kpi string, value float64) {
	if *s == nil {
		*s = model.MonthSeries{}
	}
	if (*s)[month] == nil {
		(*s)[month] = map[string]float64{}
	}
	(*s)[month][kpi] = value
}

func parsePlanRow(cells []string) (PlanRow, error) {
	if len(cells) < len(planColumns) {
		return PlanRow{}, eris.Errorf("expected %d columns, got %d", len(planColumns), len(cells))
	}
	pr := PlanRow{
		StoreID: strings.TrimSpace(cells[0]),
		Month:   strings.TrimSpace(cells[1]),
		KPI:     strings.TrimSpace(cells[2]),
	}
	if pr.StoreID == "" {
		return PlanRow{}, eris.New("empty store_id")
	}
	if len(pr.Month) != 7 || pr.Month[4] != '-' {
		return PlanRow{}, eris.Errorf("month %q is not YYYY-MM", pr.Month)
	}

	var err error
	if pr.Goal, err = parseNumber(cells[3]); err != nil {
		return PlanRow{}, eris.Wrap(err, "goal")
	}
	if pr.Result, err = parseNumber(cells[4]); err != nil {
		return PlanRow{}, eris.Wrap(err, "result")
	}
	if pr.Weight, err = parseNumber(cells[5]); err != nil {
		return PlanRow{}, eris.Wrap(err, "weight")
	}
	return pr, nil
}

// parseNumber accepts both dot and comma decimal separators; planning sheets
// arrive with pt-BR formatting more often than not.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Errorf("invalid number %q", s)
	}
	return v, nil
}

func checkHeader(cells []string) error {
	if len(cells) < len(planColumns) {
		return eris.Errorf("ingest: header has %d columns, want %d", len(cells), len(planColumns))
	}
	for i, want := range planColumns {
		if !strings.EqualFold(strings.TrimSpace(cells[i]), want) {
			return eris.Errorf("ingest: header column %d is %q, want %q", i+1, cells[i], want)
		}
	}
	return nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func rowToStrings(row *xlsx.Row) []string {
	out := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		out[i] = cell.String()
	}
	return out
}
