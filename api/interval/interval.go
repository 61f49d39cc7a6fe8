// Package interval groups flat time-series rows into ordered buckets keyed by
// exact timestamp, with clamped index-based navigation for paging through
// aggregation windows.
package interval

import (
	"sort"
	"time"
)

// Bucket is the set of rows sharing one exact timestamp.
type Bucket[T any] struct {
	Time time.Time
	Rows []T
}

// Groups is an ordered collection of buckets, ascending by timestamp.
type Groups[T any] struct {
	buckets []Bucket[T]
}

// ByTimestamp groups rows by the exact timestamp reported by ts. Buckets come
// out in ascending timestamp order regardless of input order; row order within
// a bucket follows the input.
func ByTimestamp[T any](rows []T, ts func(T) time.Time) Groups[T] {
	byTime := make(map[int64]*Bucket[T])
	for _, row := range rows {
		key := ts(row).UnixNano()
		b, ok := byTime[key]
		if !ok {
			b = &Bucket[T]{Time: ts(row).UTC()}
			byTime[key] = b
		}
		b.Rows = append(b.Rows, row)
	}

	buckets := make([]Bucket[T], 0, len(byTime))
	for _, b := range byTime {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Time.Before(buckets[j].Time)
	})

	return Groups[T]{buckets: buckets}
}

// Count returns the number of buckets.
func (g Groups[T]) Count() int {
	return len(g.buckets)
}

// Clamp maps any requested index into [0, Count()-1]. An empty group set
// clamps to 0.
func (g Groups[T]) Clamp(i int) int {
	if i < 0 || len(g.buckets) == 0 {
		return 0
	}
	if i >= len(g.buckets) {
		return len(g.buckets) - 1
	}
	return i
}

// At returns the bucket at the clamped index. Out-of-range requests never
// panic; with no buckets at all the zero bucket is returned.
func (g Groups[T]) At(i int) Bucket[T] {
	if len(g.buckets) == 0 {
		return Bucket[T]{}
	}
	return g.buckets[g.Clamp(i)]
}

// Buckets returns all buckets in ascending timestamp order.
func (g Groups[T]) Buckets() []Bucket[T] {
	return g.buckets
}
