package dataset

import "fmt"

// MissingParameterError reports a required query parameter the caller omitted.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing required query parameter: %s", e.Name)
}

// InvalidAggregationError reports an aggregation label that is unrecognized,
// or not applicable to the requested family (ranking and recommendation have
// no per-cycle partition).
type InvalidAggregationError struct {
	Label  string
	Family Family
}

func (e *InvalidAggregationError) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("missing aggregation level for %s", e.Family)
	}
	return fmt.Sprintf("invalid aggregation level %q for %s", e.Label, e.Family)
}

// InvalidDateError reports a date or date-component parameter that could not
// be parsed.
type InvalidDateError struct {
	Field string
	Value string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// InvalidWeightLabelError reports a weight label whose encoded weights do not
// parse or do not sum to 1.0.
type InvalidWeightLabelError struct {
	Label string
}

func (e *InvalidWeightLabelError) Error() string {
	return fmt.Sprintf("invalid weightLabel: %q", e.Label)
}
