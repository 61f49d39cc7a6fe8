package dataset

// suffixes maps human-facing aggregation labels to dataset suffixes. The
// pre-mapped suffix strings are accepted as well: the measures page sends
// labels, the ranking and recommendation pages send suffixes directly.
var suffixes = map[string]string{
	"Cycle":  "00",
	"15 min": "15",
	"30 min": "30",
	"60 min": "60",
	"00":     "00",
	"15":     "15",
	"30":     "30",
	"60":     "60",
}

// ResolveSuffix maps an aggregation label to the dataset suffix for the given
// family. Labels are matched exactly; anything unrecognized, including padded
// variants, is an InvalidAggregationError. Only the measures family has a
// per-cycle ("00") partition; asking for it on ranking or recommendation is
// an InvalidAggregationError too.
func ResolveSuffix(label string, family Family) (string, error) {
	suffix, ok := suffixes[label]
	if !ok {
		return "", &InvalidAggregationError{Label: label, Family: family}
	}
	if suffix == "00" && family != FamilyMeasures {
		return "", &InvalidAggregationError{Label: label, Family: family}
	}
	return suffix, nil
}
