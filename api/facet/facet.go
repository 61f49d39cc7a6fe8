// Package facet derives the distinct filterable values present in a result
// set, used to drive downstream filter controls.
package facet

import (
	"encoding/json"
	"slices"
)

// NA is the sentinel emitted for a facet with no observed values. Callers
// branch on it to decide whether to render a filter control at all.
const NA = "N/A"

// Facet is either a list of distinct values or the not-applicable sentinel.
// The sentinel is a tagged state, not a value mixed into the list, so it can
// never be mistaken for real data.
type Facet[T any] struct {
	values        []T
	notApplicable bool
}

// Of builds a facet from the given values. An empty or nil slice yields the
// not-applicable facet.
func Of[T any](values []T) Facet[T] {
	if len(values) == 0 {
		return Facet[T]{notApplicable: true}
	}
	return Facet[T]{values: values}
}

// NotApplicable reports whether the facet carries no values.
func (f Facet[T]) NotApplicable() bool {
	return f.notApplicable
}

// Values returns the facet values, nil when not applicable.
func (f Facet[T]) Values() []T {
	return f.values
}

// MarshalJSON encodes the values list, or the single N/A sentinel when the
// facet is not applicable.
func (f Facet[T]) MarshalJSON() ([]byte, error) {
	if f.notApplicable {
		return json.Marshal([]string{NA})
	}
	return json.Marshal(f.values)
}

// Row carries the filterable fields of one result row. Nil pointers mean the
// field was null in the store.
type Row struct {
	SignalType *string
	LaneType   *string
	PhaseNo    *int32
}

// Facets holds the distinct filterable values of a result set.
type Facets struct {
	SignalTypes  Facet[string] `json:"signalTypes"`
	LaneTypes    Facet[string] `json:"laneTypes"`
	PhaseNumbers Facet[int32]  `json:"phaseNumbers"`
}

// Extract computes the distinct non-null values per field. Signal and lane
// types keep first-seen order; phase numbers sort ascending. Set membership
// does not depend on input order.
func Extract(rows []Row) Facets {
	var signalTypes, laneTypes []string
	seenSignal := make(map[string]bool)
	seenLane := make(map[string]bool)
	seenPhase := make(map[int32]bool)
	var phases []int32

	for _, row := range rows {
		if row.SignalType != nil && *row.SignalType != "" && !seenSignal[*row.SignalType] {
			seenSignal[*row.SignalType] = true
			signalTypes = append(signalTypes, *row.SignalType)
		}
		if row.LaneType != nil && *row.LaneType != "" && !seenLane[*row.LaneType] {
			seenLane[*row.LaneType] = true
			laneTypes = append(laneTypes, *row.LaneType)
		}
		if row.PhaseNo != nil && !seenPhase[*row.PhaseNo] {
			seenPhase[*row.PhaseNo] = true
			phases = append(phases, *row.PhaseNo)
		}
	}

	slices.Sort(phases)

	return Facets{
		SignalTypes:  Of(signalTypes),
		LaneTypes:    Of(laneTypes),
		PhaseNumbers: Of(phases),
	}
}
