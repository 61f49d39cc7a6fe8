package dataset

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Params carries the caller-supplied filter parameters for any family. Which
// fields are required depends on the family; see requiredFields.
type Params struct {
	SignalID    string
	FeatureName string
	WeightLabel string
	StartDate   string
	EndDate     string
	Year        string
	Month       string
}

// ParamsFromQuery extracts filter parameters from an HTTP query string.
func ParamsFromQuery(q url.Values) Params {
	return Params{
		SignalID:    q.Get("signalID"),
		FeatureName: q.Get("featureName"),
		WeightLabel: q.Get("weightLabel"),
		StartDate:   q.Get("startDate"),
		EndDate:     q.Get("endDate"),
		Year:        q.Get("year"),
		Month:       q.Get("month"),
	}
}

// Predicate is a conjunction of equality and range terms, ready to be
// appended to a SELECT against the partition the registry resolved.
type Predicate struct {
	Where string
	Args  []any
}

// field pairs a parameter name with its accessor so the per-family required
// sets below stay data, not branches.
type field struct {
	name string
	get  func(Params) string
}

var (
	fieldSignalID    = field{"signalID", func(p Params) string { return p.SignalID }}
	fieldFeatureName = field{"featureName", func(p Params) string { return p.FeatureName }}
	fieldWeightLabel = field{"weightLabel", func(p Params) string { return p.WeightLabel }}
	fieldStartDate   = field{"startDate", func(p Params) string { return p.StartDate }}
	fieldEndDate     = field{"endDate", func(p Params) string { return p.EndDate }}
	fieldYear        = field{"year", func(p Params) string { return p.Year }}
	fieldMonth       = field{"month", func(p Params) string { return p.Month }}
)

// requiredFields declares, per family, which parameters must be present.
var requiredFields = map[Family][]field{
	FamilyMeasures:       {fieldSignalID, fieldFeatureName, fieldStartDate, fieldEndDate},
	FamilyRanking:        {fieldWeightLabel, fieldStartDate, fieldEndDate},
	FamilyRecommendation: {fieldSignalID, fieldFeatureName, fieldYear, fieldMonth},
}

// BuildQuery validates the parameters required by the family and builds the
// filter predicate. Validation happens before any store access: a predicate
// is only returned once every required field is present and parseable.
func BuildQuery(family Family, p Params) (Predicate, error) {
	for _, f := range requiredFields[family] {
		if f.get(p) == "" {
			return Predicate{}, &MissingParameterError{Name: f.name}
		}
	}

	switch family {
	case FamilyMeasures:
		start, end, err := parseDateRange(p.StartDate, p.EndDate)
		if err != nil {
			return Predicate{}, err
		}
		return Predicate{
			Where: "signalID = ? AND featureName = ? AND timeStamp >= ? AND timeStamp <= ?",
			Args:  []any{p.SignalID, p.FeatureName, start, end},
		}, nil

	case FamilyRanking:
		if err := ValidateWeightLabel(p.WeightLabel); err != nil {
			return Predicate{}, err
		}
		start, end, err := parseDateRange(p.StartDate, p.EndDate)
		if err != nil {
			return Predicate{}, err
		}
		return Predicate{
			Where: "weightLabel = ? AND timeStamp >= ? AND timeStamp <= ?",
			Args:  []any{p.WeightLabel, start, end},
		}, nil

	case FamilyRecommendation:
		year, err := parseIntField("year", p.Year)
		if err != nil {
			return Predicate{}, err
		}
		month, err := parseIntField("month", p.Month)
		if err != nil {
			return Predicate{}, err
		}
		return Predicate{
			Where: "signalID = ? AND feature = ? AND year = ? AND month = ?",
			Args:  []any{p.SignalID, FeatureCode(p.FeatureName), int32(year), int32(month)},
		}, nil
	}

	return Predicate{}, &InvalidAggregationError{Family: family}
}

// dateLayouts are the accepted caller-supplied date formats.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseDate(name, value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &InvalidDateError{Field: name, Value: value}
}

// parseDateRange parses an inclusive-inclusive instant range. A date-only end
// bound means midnight of that day, matching the historical behavior callers
// depend on.
func parseDateRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := parseDate("startDate", startDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDate("endDate", endDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func parseIntField(name, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, &InvalidDateError{Field: name, Value: value}
	}
	return n, nil
}

// ValidateWeightLabel checks the "w1-w2-w3" weight triple encoding: three
// decimal weights in [0,1] that sum to 1.0. The label is used as an exact
// match key, so validation rejects junk before it reaches the store.
func ValidateWeightLabel(label string) error {
	parts := strings.Split(label, "-")
	if len(parts) != 3 {
		return &InvalidWeightLabelError{Label: label}
	}
	sum := 0.0
	for _, part := range parts {
		w, err := strconv.ParseFloat(part, 64)
		if err != nil || w < 0 || w > 1 {
			return &InvalidWeightLabelError{Label: label}
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return &InvalidWeightLabelError{Label: label}
	}
	return nil
}
