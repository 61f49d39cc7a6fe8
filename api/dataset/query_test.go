package dataset_test

import (
	"testing"
	"time"

	"github.com/siialab/signalscope/api/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuery_Measures(t *testing.T) {
	pred, err := dataset.BuildQuery(dataset.FamilyMeasures, dataset.Params{
		SignalID:    "S1",
		FeatureName: "volume",
		StartDate:   "2024-01-01",
		EndDate:     "2024-01-02",
	})
	require.NoError(t, err)

	assert.Equal(t, "signalID = ? AND featureName = ? AND timeStamp >= ? AND timeStamp <= ?", pred.Where)
	require.Len(t, pred.Args, 4)
	assert.Equal(t, "S1", pred.Args[0])
	assert.Equal(t, "volume", pred.Args[1])
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), pred.Args[2])
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), pred.Args[3])
}

func TestBuildQuery_MeasuresMissingParameter(t *testing.T) {
	_, err := dataset.BuildQuery(dataset.FamilyMeasures, dataset.Params{
		SignalID:  "S1",
		StartDate: "2024-01-01",
		EndDate:   "2024-01-02",
	})
	var missing *dataset.MissingParameterError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "featureName", missing.Name)
}

func TestBuildQuery_MeasuresInvalidDate(t *testing.T) {
	_, err := dataset.BuildQuery(dataset.FamilyMeasures, dataset.Params{
		SignalID:    "S1",
		FeatureName: "volume",
		StartDate:   "not-a-date",
		EndDate:     "2024-01-02",
	})
	var invalid *dataset.InvalidDateError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "startDate", invalid.Field)
}

func TestBuildQuery_Ranking(t *testing.T) {
	pred, err := dataset.BuildQuery(dataset.FamilyRanking, dataset.Params{
		WeightLabel: "0.5-0.3-0.2",
		StartDate:   "2024-03-01",
		EndDate:     "2024-03-02T00:00:00Z",
	})
	require.NoError(t, err)

	assert.Equal(t, "weightLabel = ? AND timeStamp >= ? AND timeStamp <= ?", pred.Where)
	require.Len(t, pred.Args, 3)
	assert.Equal(t, "0.5-0.3-0.2", pred.Args[0])
}

func TestBuildQuery_RankingRejectsBadWeightLabel(t *testing.T) {
	for _, label := range []string{"0.5-0.3", "0.5-0.3-0.3", "a-b-c", "1.5--0.3-0.2"} {
		_, err := dataset.BuildQuery(dataset.FamilyRanking, dataset.Params{
			WeightLabel: label,
			StartDate:   "2024-03-01",
			EndDate:     "2024-03-02",
		})
		var invalid *dataset.InvalidWeightLabelError
		assert.ErrorAs(t, err, &invalid, "label %q", label)
	}
}

func TestBuildQuery_Recommendation(t *testing.T) {
	pred, err := dataset.BuildQuery(dataset.FamilyRecommendation, dataset.Params{
		SignalID:    "S7",
		FeatureName: "Pedestrian-Vehicle (Right-Turn) Conflict Propensity",
		Year:        "2024",
		Month:       "6",
	})
	require.NoError(t, err)

	assert.Equal(t, "signalID = ? AND feature = ? AND year = ? AND month = ?", pred.Where)
	require.Len(t, pred.Args, 4)
	assert.Equal(t, "S7", pred.Args[0])
	// Display labels are mapped to the stored short code.
	assert.Equal(t, "conflictPropensity", pred.Args[1])
	assert.Equal(t, int32(2024), pred.Args[2])
	assert.Equal(t, int32(6), pred.Args[3])
}

func TestBuildQuery_RecommendationShortCodePassesThrough(t *testing.T) {
	pred, err := dataset.BuildQuery(dataset.FamilyRecommendation, dataset.Params{
		SignalID:    "S7",
		FeatureName: "pedestrianActivity",
		Year:        "2024",
		Month:       "6",
	})
	require.NoError(t, err)
	assert.Equal(t, "pedestrianActivity", pred.Args[1])
}

func TestBuildQuery_RecommendationBadYear(t *testing.T) {
	_, err := dataset.BuildQuery(dataset.FamilyRecommendation, dataset.Params{
		SignalID:    "S7",
		FeatureName: "conflict",
		Year:        "twenty-twenty-four",
		Month:       "6",
	})
	var invalid *dataset.InvalidDateError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "year", invalid.Field)
}

func TestValidateWeightLabel(t *testing.T) {
	assert.NoError(t, dataset.ValidateWeightLabel("0.5-0.3-0.2"))
	assert.NoError(t, dataset.ValidateWeightLabel("1.0-0.0-0.0"))
	assert.NoError(t, dataset.ValidateWeightLabel("0.3-0.3-0.4"))

	assert.Error(t, dataset.ValidateWeightLabel(""))
	assert.Error(t, dataset.ValidateWeightLabel("0.5-0.5-0.5"))
	assert.Error(t, dataset.ValidateWeightLabel("0.5-0.5"))
}
