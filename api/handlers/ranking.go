package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/siialab/signalscope/api/config"
	"github.com/siialab/signalscope/api/dataset"
	"github.com/siialab/signalscope/api/interval"
	"github.com/siialab/signalscope/api/metrics"
)

// RankingEntry is one signal's rank within a single scoring interval. The
// safety score is the weighted combination of the three component scores
// under the weighting scheme named by weightLabel.
type RankingEntry struct {
	SignalID              string    `json:"signalID"`
	ConflictScore         *float64  `json:"conflictScore"`
	RunningFlagScore      *float64  `json:"runningFlagScore"`
	PedestrianDelayScore  *float64  `json:"pedestrianDelayScore"`
	ConflictWeight        *float64  `json:"conflictWeight"`
	RunningFlagWeight     *float64  `json:"runningFlagWeight"`
	PedestrianDelayWeight *float64  `json:"pedestrianDelayWeight"`
	WeightLabel           string    `json:"weightLabel"`
	SafetyScore           *float64  `json:"safetyScore"`
	TimeStamp             time.Time `json:"timeStamp"`
	Year                  int32     `json:"year"`
	Month                 int32     `json:"month"`
	Day                   int32     `json:"day"`
	Rank                  int32     `json:"rank"`
}

func fetchRanking(ctx context.Context, r *http.Request) ([]RankingEntry, error) {
	q := r.URL.Query()

	suffix, err := dataset.ResolveSuffix(q.Get("aggregation"), dataset.FamilyRanking)
	if err != nil {
		return nil, err
	}
	pred, err := dataset.BuildQuery(dataset.FamilyRanking, dataset.ParamsFromQuery(q))
	if err != nil {
		return nil, err
	}
	handle := dataset.Get(dataset.FamilyRanking, suffix)

	query := `
		SELECT signalID, conflictScore, runningFlagScore, pedestrianDelayScore,
			conflictWeight, runningFlagWeight, pedestrianDelayWeight,
			weightLabel, safetyScore, timeStamp, year, month, day, rank
		FROM ` + handle.QuotedName() + `
		WHERE ` + pred.Where + `
		ORDER BY rank, timeStamp
	`

	start := time.Now()
	rows, err := config.DB.Query(ctx, query, pred.Args...)
	duration := time.Since(start)
	metrics.RecordClickHouseQuery(duration, err)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []RankingEntry
	for rows.Next() {
		var e RankingEntry
		if err := rows.Scan(
			&e.SignalID,
			&e.ConflictScore,
			&e.RunningFlagScore,
			&e.PedestrianDelayScore,
			&e.ConflictWeight,
			&e.RunningFlagWeight,
			&e.PedestrianDelayWeight,
			&e.WeightLabel,
			&e.SafetyScore,
			&e.TimeStamp,
			&e.Year,
			&e.Month,
			&e.Day,
			&e.Rank,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// GetRanking returns every ranking row for the weighting scheme and date
// range, sorted by rank ascending across the whole range.
func GetRanking(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	entries, err := fetchRanking(ctx, r)
	if err != nil {
		respondQueryError(w, "failed to fetch ranking", err)
		return
	}

	// Return empty array instead of null
	if entries == nil {
		entries = []RankingEntry{}
	}

	writeJSON(w, entries)
}

// RankingInterval is one scoring interval's worth of ranking rows.
type RankingInterval struct {
	Time    time.Time      `json:"time"`
	Entries []RankingEntry `json:"entries"`
}

// rankingIntervalsResponse pages through the distinct intervals of a ranking
// range with a clamped cursor.
type rankingIntervalsResponse struct {
	Index     int             `json:"index"`
	Intervals int             `json:"intervals"`
	Interval  RankingInterval `json:"interval"`
}

// GetRankingIntervals groups the matching ranking rows by timestamp and
// returns the interval at the requested index. An out-of-range index is
// clamped to the nearest valid one.
func GetRankingIntervals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	entries, err := fetchRanking(ctx, r)
	if err != nil {
		respondQueryError(w, "failed to fetch ranking", err)
		return
	}

	groups := interval.ByTimestamp(entries, func(e RankingEntry) time.Time {
		return e.TimeStamp
	})

	index := 0
	if raw := r.URL.Query().Get("index"); raw != "" {
		index, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid index: "+raw)
			return
		}
	}
	index = groups.Clamp(index)

	bucket := groups.At(index)
	rows := bucket.Rows
	if rows == nil {
		rows = []RankingEntry{}
	}

	writeJSON(w, rankingIntervalsResponse{
		Index:     index,
		Intervals: groups.Count(),
		Interval: RankingInterval{
			Time:    bucket.Time,
			Entries: rows,
		},
	})
}
