package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/siialab/signalscope/api/config"
	"github.com/siialab/signalscope/api/metrics"
)

// Intersection is a signalized intersection from the registry, with its
// display name and map coordinates.
type Intersection struct {
	SignalID         string   `json:"signalID"`
	SiiaID           *int32   `json:"siiaID"`
	IntersectionName *string  `json:"intersectionName"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
}

// GetIntersections returns every intersection in the registry.
func GetIntersections(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	query := `
		SELECT signal_id, siia_id, intersection_name, latitude, longitude
		FROM intersections
		ORDER BY signal_id
	`

	start := time.Now()
	rows, err := config.PgPool.Query(ctx, query)
	duration := time.Since(start)
	metrics.RecordPostgresQuery(duration, err)

	if err != nil {
		writeError(w, http.StatusInternalServerError, internalError("failed to fetch intersections", err))
		return
	}
	defer rows.Close()

	var intersections []Intersection
	for rows.Next() {
		var in Intersection
		if err := rows.Scan(
			&in.SignalID,
			&in.SiiaID,
			&in.IntersectionName,
			&in.Latitude,
			&in.Longitude,
		); err != nil {
			writeError(w, http.StatusInternalServerError, internalError("failed to scan intersection", err))
			return
		}
		intersections = append(intersections, in)
	}
	if err := rows.Err(); err != nil {
		writeError(w, http.StatusInternalServerError, internalError("failed to fetch intersections", err))
		return
	}

	// Return empty array instead of null
	if intersections == nil {
		intersections = []Intersection{}
	}

	writeJSON(w, intersections)
}

// GetIntersection returns the intersection with the given signal ID, or 404
// when no such signal is registered.
func GetIntersection(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	signalID := chi.URLParam(r, "signalID")

	query := `
		SELECT signal_id, siia_id, intersection_name, latitude, longitude
		FROM intersections
		WHERE signal_id = $1
	`

	start := time.Now()
	var in Intersection
	err := config.PgPool.QueryRow(ctx, query, signalID).Scan(
		&in.SignalID,
		&in.SiiaID,
		&in.IntersectionName,
		&in.Latitude,
		&in.Longitude,
	)
	duration := time.Since(start)
	metrics.RecordPostgresQuery(duration, err)

	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "intersection not found: "+signalID)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, internalError("failed to fetch intersection", err))
		return
	}

	writeJSON(w, in)
}
