package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siialab/signalscope/api/config"
	"github.com/siialab/signalscope/api/handlers"
	"github.com/siialab/signalscope/api/recommend"
	apitesting "github.com/siialab/signalscope/api/testing"
)

func insertRecommendationTestData(t *testing.T) {
	ctx := t.Context()

	err := config.DB.Exec(ctx, `
		INSERT INTO `+"`recommendation.30`"+`
			(signalID, year, month, phaseNo, time, feature, k, alpha, beta,
			 probability, lowerBound, upperBound, threshold, recommend) VALUES
		('1001', 2024, 3, 2, 'AM Peak', 'conflictPropensity', 0.5, 2.0, 5.0, 0.71, 0.55, 0.86, 0.7, 1),
		('1001', 2024, 3, 4, 'AM Peak', 'conflictPropensity', 0.3, 1.5, 4.0, 0.62, 0.41, 0.80, 0.7, 0),
		('1001', 2024, 3, 2, 'PM Peak', 'pedestrianDelay', NULL, 3.0, 3.0, 0.50, 0.29, 0.71, 0.6, 0),
		('1001', 2024, 3, 6, 'PM Peak', 'pedestrianDelay', NULL, 2.5, 2.5, 0.48, 0.25, 0.70, 0.6, 1),
		('2002', 2024, 3, 2, 'AM Peak', 'conflictPropensity', 0.9, 2.0, 2.0, 0.55, 0.30, 0.78, 0.7, 0),
		('1001', 2024, 4, 2, 'AM Peak', 'conflictPropensity', 0.4, 2.0, 5.0, 0.66, 0.50, 0.82, 0.7, 1)
	`)
	require.NoError(t, err)
}

func TestGetRecommendation_ReturnsRows(t *testing.T) {
	apitesting.SetupTestClickHouse(t, testChDB)
	insertRecommendationTestData(t)

	req := httptest.NewRequest(http.MethodGet, "/api/recommendation?aggregation=30+min&signalID=1001&featureName=Pedestrian-Vehicle+(Right-Turn)+Conflict+Propensity&year=2024&month=3", nil)
	rr := httptest.NewRecorder()
	handlers.GetRecommendation(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var records []recommend.Record
	err := json.NewDecoder(rr.Body).Decode(&records)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, "1001", rec.SignalID)
		assert.Equal(t, "conflictPropensity", rec.Feature)
		assert.Equal(t, int32(3), rec.Month)
		require.NotNil(t, rec.K)
	}
	// phaseNo is part of the sort key
	assert.Equal(t, int32(2), records[0].PhaseNo)
	assert.Equal(t, int32(4), records[1].PhaseNo)
}

func TestGetRecommendation_AcceptsStoredFeatureCode(t *testing.T) {
	apitesting.SetupTestClickHouse(t, testChDB)
	insertRecommendationTestData(t)

	req := httptest.NewRequest(http.MethodGet, "/api/recommendation?aggregation=30+min&signalID=1001&featureName=pedestrianDelay&year=2024&month=3", nil)
	rr := httptest.NewRecorder()
	handlers.GetRecommendation(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var records []recommend.Record
	err := json.NewDecoder(rr.Body).Decode(&records)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Nil(t, records[0].K)
}

func TestGetRecommendation_NotFound(t *testing.T) {
	apitesting.SetupTestClickHouse(t, testChDB)
	insertRecommendationTestData(t)

	req := httptest.NewRequest(http.MethodGet, "/api/recommendation?aggregation=30+min&signalID=1001&featureName=pedestrianDelay&year=2030&month=1", nil)
	rr := httptest.NewRecorder()
	handlers.GetRecommendation(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetRecommendation_RejectsCycleAggregation(t *testing.T) {
	apitesting.SetupTestClickHouse(t, testChDB)

	req := httptest.NewRequest(http.MethodGet, "/api/recommendation?aggregation=Cycle&signalID=1001&featureName=pedestrianDelay&year=2024&month=3", nil)
	rr := httptest.NewRecorder()
	handlers.GetRecommendation(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetRecommendation_BadYear(t *testing.T) {
	apitesting.SetupTestClickHouse(t, testChDB)

	req := httptest.NewRequest(http.MethodGet, "/api/recommendation?aggregation=30+min&signalID=1001&featureName=pedestrianDelay&year=twenty&month=3", nil)
	rr := httptest.NewRecorder()
	handlers.GetRecommendation(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "year")
}

func TestGetRecommendationPanel(t *testing.T) {
	apitesting.SetupTestClickHouse(t, testChDB)
	insertRecommendationTestData(t)

	req := httptest.NewRequest(http.MethodGet, "/api/recommendation/panel?aggregation=30+min&signalID=1001&year=2024&month=3&features=Pedestrian-Vehicle+(Right-Turn)+Conflict+Propensity,Pedestrian+Delay", nil)
	rr := httptest.NewRecorder()
	handlers.GetRecommendationPanel(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var panel struct {
		Features     map[string][]recommend.Record `json:"features"`
		PhaseNumbers []int32                       `json:"phaseNumbers"`
		DefaultK     map[string]float64            `json:"defaultK"`
	}
	err := json.NewDecoder(rr.Body).Decode(&panel)
	require.NoError(t, err)

	require.Len(t, panel.Features, 2)
	assert.Len(t, panel.Features["Pedestrian-Vehicle (Right-Turn) Conflict Propensity"], 2)
	assert.Len(t, panel.Features["Pedestrian Delay"], 2)

	// k only exists for the conflict-propensity feature; the default is the
	// minimum observed value
	require.Len(t, panel.DefaultK, 1)
	assert.InDelta(t, 0.3, panel.DefaultK["Pedestrian-Vehicle (Right-Turn) Conflict Propensity"], 1e-9)

	assert.Equal(t, []int32{2, 4, 6}, panel.PhaseNumbers)
}

func TestGetRecommendationPanel_MissingFeatures(t *testing.T) {
	apitesting.SetupTestClickHouse(t, testChDB)

	req := httptest.NewRequest(http.MethodGet, "/api/recommendation/panel?aggregation=30+min&signalID=1001&year=2024&month=3", nil)
	rr := httptest.NewRecorder()
	handlers.GetRecommendationPanel(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "features")
}

func TestGetRecommendationPanel_BlankFeatures(t *testing.T) {
	apitesting.SetupTestClickHouse(t, testChDB)

	// Only commas and whitespace carries no feature at all
	req := httptest.NewRequest(http.MethodGet, "/api/recommendation/panel?aggregation=30+min&signalID=1001&year=2024&month=3&features=,+,", nil)
	rr := httptest.NewRecorder()
	handlers.GetRecommendationPanel(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "features")
}

func TestGetRecommendationPanel_NoData(t *testing.T) {
	apitesting.SetupTestClickHouse(t, testChDB)

	req := httptest.NewRequest(http.MethodGet, "/api/recommendation/panel?aggregation=30+min&signalID=1001&year=2024&month=3&features=Pedestrian+Delay", nil)
	rr := httptest.NewRecorder()
	handlers.GetRecommendationPanel(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
