package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/siialab/signalscope/api/config"
	"github.com/siialab/signalscope/api/dataset"
	"github.com/siialab/signalscope/api/facet"
	"github.com/siialab/signalscope/api/metrics"
)

// PerformanceMeasure is one time-bucketed performance measure row. Nullable
// store columns map to pointers and encode as JSON null.
type PerformanceMeasure struct {
	SignalID    string    `json:"signalID"`
	CycleLength *float64  `json:"cycleLength"`
	Feature     string    `json:"feature"`
	FeatureName string    `json:"featureName"`
	Value       *float64  `json:"value"`
	Min         *float64  `json:"min"`
	Max         *float64  `json:"max"`
	Mean        *float64  `json:"mean"`
	Std         *float64  `json:"std"`
	SignalType  *string   `json:"signalType"`
	LaneType    *string   `json:"laneType"`
	PhaseNo     *int32    `json:"phaseNo"`
	TimeStamp   time.Time `json:"timeStamp"`
	Day         int32     `json:"day"`
	Month       int32     `json:"month"`
	Year        int32     `json:"year"`
}

// fetchMeasures resolves the measures partition for the request and runs the
// range query against it.
func fetchMeasures(ctx context.Context, r *http.Request) ([]PerformanceMeasure, error) {
	q := r.URL.Query()

	suffix, err := dataset.ResolveSuffix(q.Get("aggregation"), dataset.FamilyMeasures)
	if err != nil {
		return nil, err
	}
	pred, err := dataset.BuildQuery(dataset.FamilyMeasures, dataset.ParamsFromQuery(q))
	if err != nil {
		return nil, err
	}
	handle := dataset.Get(dataset.FamilyMeasures, suffix)

	query := `
		SELECT signalID, cycleLength, feature, featureName, value, min, max,
			mean, std, signalType, laneType, phaseNo, timeStamp, day, month, year
		FROM ` + handle.QuotedName() + `
		WHERE ` + pred.Where + `
		ORDER BY timeStamp, phaseNo
	`

	start := time.Now()
	rows, err := config.DB.Query(ctx, query, pred.Args...)
	duration := time.Since(start)
	metrics.RecordClickHouseQuery(duration, err)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var measures []PerformanceMeasure
	for rows.Next() {
		var m PerformanceMeasure
		if err := rows.Scan(
			&m.SignalID,
			&m.CycleLength,
			&m.Feature,
			&m.FeatureName,
			&m.Value,
			&m.Min,
			&m.Max,
			&m.Mean,
			&m.Std,
			&m.SignalType,
			&m.LaneType,
			&m.PhaseNo,
			&m.TimeStamp,
			&m.Day,
			&m.Month,
			&m.Year,
		); err != nil {
			return nil, err
		}
		measures = append(measures, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return measures, nil
}

// GetMeasures returns the performance measure rows matching the signal,
// feature, aggregation level and date range.
func GetMeasures(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	measures, err := fetchMeasures(ctx, r)
	if err != nil {
		respondQueryError(w, "failed to fetch performance measures", err)
		return
	}

	// Return empty array instead of null
	if measures == nil {
		measures = []PerformanceMeasure{}
	}

	writeJSON(w, measures)
}

// GetMeasureFacets returns the distinct filterable values present in the
// matching rows, with the N/A sentinel for fields that yield none.
func GetMeasureFacets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	measures, err := fetchMeasures(ctx, r)
	if err != nil {
		respondQueryError(w, "failed to fetch performance measures", err)
		return
	}

	facetRows := make([]facet.Row, len(measures))
	for i := range measures {
		facetRows[i] = facet.Row{
			SignalType: measures[i].SignalType,
			LaneType:   measures[i].LaneType,
			PhaseNo:    measures[i].PhaseNo,
		}
	}

	writeJSON(w, facet.Extract(facetRows))
}
