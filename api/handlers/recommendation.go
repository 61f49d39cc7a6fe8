package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/siialab/signalscope/api/config"
	"github.com/siialab/signalscope/api/dataset"
	"github.com/siialab/signalscope/api/metrics"
	"github.com/siialab/signalscope/api/recommend"
)

func fetchRecommendations(ctx context.Context, suffix string, q url.Values) ([]recommend.Record, error) {
	pred, err := dataset.BuildQuery(dataset.FamilyRecommendation, dataset.ParamsFromQuery(q))
	if err != nil {
		return nil, err
	}
	handle := dataset.Get(dataset.FamilyRecommendation, suffix)

	query := `
		SELECT signalID, year, month, phaseNo, time, feature, k, alpha, beta,
			probability, lowerBound, upperBound, threshold, recommend
		FROM ` + handle.QuotedName() + `
		WHERE ` + pred.Where + `
		ORDER BY phaseNo
	`

	start := time.Now()
	rows, err := config.DB.Query(ctx, query, pred.Args...)
	duration := time.Since(start)
	metrics.RecordClickHouseQuery(duration, err)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []recommend.Record
	for rows.Next() {
		var rec recommend.Record
		if err := rows.Scan(
			&rec.SignalID,
			&rec.Year,
			&rec.Month,
			&rec.PhaseNo,
			&rec.Time,
			&rec.Feature,
			&rec.K,
			&rec.Alpha,
			&rec.Beta,
			&rec.Probability,
			&rec.LowerBound,
			&rec.UpperBound,
			&rec.Threshold,
			&rec.Recommend,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// GetRecommendation returns the recommendation rows for one signal, feature
// and month. A query that matches nothing is a 404: recommendations are only
// produced for months with sufficient observations.
func GetRecommendation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	q := r.URL.Query()

	suffix, err := dataset.ResolveSuffix(q.Get("aggregation"), dataset.FamilyRecommendation)
	if err != nil {
		respondQueryError(w, "failed to fetch recommendation", err)
		return
	}

	records, err := fetchRecommendations(ctx, suffix, q)
	if err != nil {
		respondQueryError(w, "failed to fetch recommendation", err)
		return
	}
	if len(records) == 0 {
		writeError(w, http.StatusNotFound, "no recommendation found")
		return
	}

	writeJSON(w, records)
}

// GetRecommendationPanel assembles the per-feature recommendation panel for a
// signal and month. The features parameter is a comma-separated list of
// display labels; each is fetched from the same partition and keyed by label
// in the response.
func GetRecommendationPanel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	q := r.URL.Query()

	suffix, err := dataset.ResolveSuffix(q.Get("aggregation"), dataset.FamilyRecommendation)
	if err != nil {
		respondQueryError(w, "failed to fetch recommendation panel", err)
		return
	}

	var labels []string
	for _, label := range strings.Split(q.Get("features"), ",") {
		if label = strings.TrimSpace(label); label != "" {
			labels = append(labels, label)
		}
	}
	// Absent, or present but all commas and whitespace, is the same miss.
	if len(labels) == 0 {
		writeError(w, http.StatusBadRequest, "missing required query parameter: features")
		return
	}

	panel, err := recommend.Assemble(ctx, labels, func(ctx context.Context, featureCode string) ([]recommend.Record, error) {
		fq := url.Values{}
		for key, vals := range q {
			fq[key] = vals
		}
		fq.Set("featureName", featureCode)
		return fetchRecommendations(ctx, suffix, fq)
	})
	if errors.Is(err, recommend.ErrNoData) {
		writeError(w, http.StatusNotFound, "no recommendation found")
		return
	}
	if err != nil {
		respondQueryError(w, "failed to fetch recommendation panel", err)
		return
	}

	writeJSON(w, panel)
}
