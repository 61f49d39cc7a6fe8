// Package dataset resolves aggregation levels to the physically partitioned
// datasets that hold them and builds the range queries issued against them.
//
// The deployment convention is one physical table per (family, suffix) pair:
// measures live in `feature_extraction.feature.{00,15,30,60}`, rankings in
// `ranking.{15,30,60}` and recommendations in `recommendation.{15,30,60}`.
// Nothing outside this package is allowed to know that convention.
package dataset

// Family identifies one of the three partitioned data families.
type Family string

const (
	FamilyMeasures       Family = "measures"
	FamilyRanking        Family = "ranking"
	FamilyRecommendation Family = "recommendation"
)

// prefixes maps a family to the physical dataset name prefix. The full
// dataset name is "{prefix}.{suffix}".
var prefixes = map[Family]string{
	FamilyMeasures:       "feature_extraction.feature",
	FamilyRanking:        "ranking",
	FamilyRecommendation: "recommendation",
}

// Prefix returns the physical dataset name prefix for the family.
func (f Family) Prefix() string {
	return prefixes[f]
}

// Valid reports whether f is one of the known families.
func (f Family) Valid() bool {
	_, ok := prefixes[f]
	return ok
}

// featureCodes maps the display labels used by filter UIs to the short codes
// stored in the recommendation partitions.
var featureCodes = map[string]string{
	"Volume":                                             "volume",
	"Occupancy":                                          "occupancy",
	"Split Failure":                                      "splitFailure",
	"Gap":                                                "gap",
	"Headway":                                            "headway",
	"Conflict":                                           "conflict",
	"Red Light Running":                                  "runningFlag",
	"Pedestrian Activity Indicator":                      "pedestrianActivity",
	"Pedestrian Delay":                                   "pedestrianDelay",
	"Pedestrian-Vehicle (Right-Turn) Conflict Propensity": "conflictPropensity",
}

// featureLabels is the inverse of featureCodes.
var featureLabels = func() map[string]string {
	m := make(map[string]string, len(featureCodes))
	for label, code := range featureCodes {
		m[code] = label
	}
	return m
}()

// FeatureCode maps a feature display label to its stored short code. Inputs
// that are already short codes (or unknown) pass through unchanged; an unknown
// feature simply matches no rows.
func FeatureCode(name string) string {
	if code, ok := featureCodes[name]; ok {
		return code
	}
	return name
}

// FeatureLabel maps a stored short code back to its display label, falling
// back to the code itself when unknown.
func FeatureLabel(code string) string {
	if label, ok := featureLabels[code]; ok {
		return label
	}
	return code
}
