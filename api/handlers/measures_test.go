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
	apitesting "github.com/siialab/signalscope/api/testing"
)

func insertMeasuresTestData(t *testing.T) {
	ctx := t.Context()

	// The 15-minute partition carries two signals and two features
	err := config.DB.Exec(ctx, `
		INSERT INTO `+"`feature_extraction.feature.15`"+`
			(signalID, cycleLength, feature, featureName, value, min, max, mean, std,
			 signalType, laneType, phaseNo, timeStamp, day, month, year) VALUES
		('1001', 120, 'vol', 'volume', 42, 10, 80, 45, 5.5, 'Coordinated', 'Through', 2, '2024-03-01 08:00:00', 1, 3, 2024),
		('1001', 120, 'vol', 'volume', 55, 12, 90, 50, 6.1, 'Coordinated', 'Left', 4, '2024-03-01 08:15:00', 1, 3, 2024),
		('1001', 120, 'occ', 'occupancy', 0.4, 0.1, 0.9, 0.5, 0.05, 'Coordinated', 'Through', 2, '2024-03-01 08:00:00', 1, 3, 2024),
		('2002', 90, 'vol', 'volume', 30, 5, 60, 33, 4.2, 'Actuated', 'Through', 6, '2024-03-01 08:00:00', 1, 3, 2024),
		('1001', 120, 'vol', 'volume', 61, 15, 95, 58, 7.0, 'Coordinated', 'Through', 2, '2024-04-01 08:00:00', 1, 4, 2024)
	`)
	require.NoError(t, err)

	// The per-cycle partition carries a single row to prove routing
	err = config.DB.Exec(ctx, `
		INSERT INTO `+"`feature_extraction.feature.00`"+`
			(signalID, cycleLength, feature, featureName, value, min, max, mean, std,
			 signalType, laneType, phaseNo, timeStamp, day, month, year) VALUES
		('1001', 118, 'vol', 'volume', 7, 7, 7, 7, 0, 'Coordinated', 'Through', 2, '2024-03-01 08:02:00', 1, 3, 2024)
	`)
	require.NoError(t, err)
}

func TestGetMeasures_MissingParameter(t *testing.T) {
	apitesting.SetupTestClickHouse(t, testChDB)

	req := httptest.NewRequest(http.MethodGet, "/api/measures?aggregation=15+min&featureName=volume&startDate=2024-03-01&endDate=2024-03-02", nil)
	rr := httptest.NewRecorder()
	handlers.GetMeasures(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "signalID")
}

func TestGetMeasures_InvalidAggregation(t *testing.T) {
	apitesting.SetupTestClickHouse(t, testChDB)

	req := httptest.NewRequest(http.MethodGet, "/api/measures?aggregation=45+min&signalID=1001&featureName=volume&startDate=2024-03-01&endDate=2024-03-02", nil)
	rr := httptest.NewRecorder()
	handlers.GetMeasures(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetMeasures_InvalidDate(t *testing.T) {
	apitesting.SetupTestClickHouse(t, testChDB)

	req := httptest.NewRequest(http.MethodGet, "/api/measures?aggregation=15+min&signalID=1001&featureName=volume&startDate=not-a-date&endDate=2024-03-02", nil)
	rr := httptest.NewRecorder()
	handlers.GetMeasures(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "startDate")
}

func TestGetMeasures_Empty(t *testing.T) {
	apitesting.SetupTestClickHouse(t, testChDB)

	req := httptest.NewRequest(http.MethodGet, "/api/measures?aggregation=15+min&signalID=9999&featureName=volume&startDate=2024-03-01&endDate=2024-03-02", nil)
	rr := httptest.NewRecorder()
	handlers.GetMeasures(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestGetMeasures_ReturnsMatchingRows(t *testing.T) {
	apitesting.SetupTestClickHouse(t, testChDB)
	insertMeasuresTestData(t)

	req := httptest.NewRequest(http.MethodGet, "/api/measures?aggregation=15+min&signalID=1001&featureName=volume&startDate=2024-03-01&endDate=2024-03-02", nil)
	rr := httptest.NewRecorder()
	handlers.GetMeasures(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var measures []handlers.PerformanceMeasure
	err := json.NewDecoder(rr.Body).Decode(&measures)
	require.NoError(t, err)
	require.Len(t, measures, 2)

	// Every row matches the filter, and rows come back in timestamp order
	for _, m := range measures {
		assert.Equal(t, "1001", m.SignalID)
		assert.Equal(t, "volume", m.FeatureName)
	}
	assert.True(t, measures[0].TimeStamp.Before(measures[1].TimeStamp))
}

func TestGetMeasures_CycleAggregation(t *testing.T) {
	apitesting.SetupTestClickHouse(t, testChDB)
	insertMeasuresTestData(t)

	req := httptest.NewRequest(http.MethodGet, "/api/measures?aggregation=Cycle&signalID=1001&featureName=volume&startDate=2024-03-01&endDate=2024-03-02", nil)
	rr := httptest.NewRecorder()
	handlers.GetMeasures(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var measures []handlers.PerformanceMeasure
	err := json.NewDecoder(rr.Body).Decode(&measures)
	require.NoError(t, err)
	require.Len(t, measures, 1)
	require.NotNil(t, measures[0].Value)
	assert.Equal(t, float64(7), *measures[0].Value)
}

func TestGetMeasureFacets(t *testing.T) {
	apitesting.SetupTestClickHouse(t, testChDB)
	insertMeasuresTestData(t)

	req := httptest.NewRequest(http.MethodGet, "/api/measures/facets?aggregation=15+min&signalID=1001&featureName=volume&startDate=2024-03-01&endDate=2024-03-02", nil)
	rr := httptest.NewRecorder()
	handlers.GetMeasureFacets(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var facets struct {
		SignalTypes  []string `json:"signalTypes"`
		LaneTypes    []string `json:"laneTypes"`
		PhaseNumbers []int32  `json:"phaseNumbers"`
	}
	err := json.NewDecoder(rr.Body).Decode(&facets)
	require.NoError(t, err)
	assert.Equal(t, []string{"Coordinated"}, facets.SignalTypes)
	assert.ElementsMatch(t, []string{"Through", "Left"}, facets.LaneTypes)
	assert.Equal(t, []int32{2, 4}, facets.PhaseNumbers)
}

func TestGetMeasureFacets_NotApplicable(t *testing.T) {
	apitesting.SetupTestClickHouse(t, testChDB)

	ctx := t.Context()
	err := config.DB.Exec(ctx, `
		INSERT INTO `+"`feature_extraction.feature.15`"+`
			(signalID, feature, featureName, value, timeStamp, day, month, year) VALUES
		('3003', 'gap', 'gap', 1.2, '2024-03-01 09:00:00', 1, 3, 2024)
	`)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/measures/facets?aggregation=15+min&signalID=3003&featureName=gap&startDate=2024-03-01&endDate=2024-03-02", nil)
	rr := httptest.NewRecorder()
	handlers.GetMeasureFacets(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var facets struct {
		SignalTypes  []string `json:"signalTypes"`
		LaneTypes    []string `json:"laneTypes"`
		PhaseNumbers []string `json:"phaseNumbers"`
	}
	err = json.NewDecoder(rr.Body).Decode(&facets)
	require.NoError(t, err)
	assert.Equal(t, []string{"N/A"}, facets.SignalTypes)
	assert.Equal(t, []string{"N/A"}, facets.LaneTypes)
	assert.Equal(t, []string{"N/A"}, facets.PhaseNumbers)
}
