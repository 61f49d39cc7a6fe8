// Package recommend reshapes raw timing-recommendation rows into the
// per-feature panel consumed by the dashboard: rows keyed by feature display
// label, the union of phase numbers, and a default decay-constant choice.
package recommend

import (
	"context"
	"errors"

	"github.com/siialab/signalscope/api/dataset"
	"github.com/siialab/signalscope/api/facet"
)

// ErrNoData is returned when every requested feature came back empty. A
// single empty feature among several is not an error, just an empty sub-map.
var ErrNoData = errors.New("no recommendation data for the given parameters")

// Record is one timing-recommendation row. The decay constant k is only
// present for conflict-propensity style features; alpha/beta/probability and
// the bounds form a Beta-distribution confidence model around the
// recommendation flag.
type Record struct {
	SignalID    string   `json:"signalID"`
	Year        int32    `json:"year"`
	Month       int32    `json:"month"`
	PhaseNo     int32    `json:"phaseNo"`
	Time        *string  `json:"time"`
	Feature     string   `json:"feature"`
	K           *float64 `json:"k"`
	Alpha       *float64 `json:"alpha"`
	Beta        *float64 `json:"beta"`
	Probability *float64 `json:"probability"`
	LowerBound  *float64 `json:"lowerBound"`
	UpperBound  *float64 `json:"upperBound"`
	Threshold   *float64 `json:"threshold"`
	Recommend   *int32   `json:"recommend"`
}

// Panel is the assembled per-feature view.
type Panel struct {
	Features     map[string][]Record `json:"features"`
	PhaseNumbers facet.Facet[int32]  `json:"phaseNumbers"`
	DefaultK     map[string]float64  `json:"defaultK"`
}

// FetchFunc loads the rows for one stored feature code.
type FetchFunc func(ctx context.Context, featureCode string) ([]Record, error)

// Assemble issues one fetch per requested feature label and reshapes the
// results. DefaultK holds, per feature label, the minimum observed k among
// that feature's rows; features with no k-bearing rows get no entry.
func Assemble(ctx context.Context, labels []string, fetch FetchFunc) (Panel, error) {
	panel := Panel{
		Features: make(map[string][]Record, len(labels)),
		DefaultK: make(map[string]float64),
	}

	var phases []facet.Row
	total := 0
	for _, label := range labels {
		rows, err := fetch(ctx, dataset.FeatureCode(label))
		if err != nil {
			return Panel{}, err
		}
		if rows == nil {
			rows = []Record{}
		}
		panel.Features[label] = rows
		total += len(rows)

		for i := range rows {
			phase := rows[i].PhaseNo
			phases = append(phases, facet.Row{PhaseNo: &phase})
			if k := rows[i].K; k != nil {
				if cur, ok := panel.DefaultK[label]; !ok || *k < cur {
					panel.DefaultK[label] = *k
				}
			}
		}
	}

	if total == 0 {
		return Panel{}, ErrNoData
	}

	panel.PhaseNumbers = facet.Extract(phases).PhaseNumbers
	return panel, nil
}
