package dashboard

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/mesafina/mesafina/internal/reservations"
)

// statsResponse is the JSON response for the stats endpoint.
type statsResponse struct {
	TotalRestaurants     int `json:"total_restaurants"`
	UpcomingReservations int `json:"upcoming_reservations"`
	TotalSessions        int `json:"total_sessions"`
}

// recentResponse is the JSON response for the recent activity endpoint.
type recentResponse struct {
	Reservations []reservations.Reservation `json:"reservations"`
}

func (d *Dashboard) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	restaurantCount, err := d.restaurants.Count(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	upcoming, err := d.reservations.CountUpcoming(ctx, time.Now().UTC())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	totalSessions, _ := d.sessions.CountSessions(ctx)

	writeJSON(w, http.StatusOK, statsResponse{
		TotalRestaurants:     restaurantCount,
		UpcomingReservations: upcoming,
		TotalSessions:        totalSessions,
	})
}

func (d *Dashboard) handleRecent(w http.ResponseWriter, r *http.Request) {
	recent, err := d.reservations.Recent(r.Context(), 10)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if recent == nil {
		recent = []reservations.Reservation{}
	}

	writeJSON(w, http.StatusOK, recentResponse{Reservations: recent})
}

// policyMarkdown renders restaurant policy documents. GFM covers the tables
// restaurants put in their house rules.
var policyMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

func (d *Dashboard) handlePolicyHTML(w http.ResponseWriter, r *http.Request) {
	rest, err := d.restaurants.GetByID(r.Context(), chi.URLParam(r, "restaurantID"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if rest == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant not found"})
		return
	}

	var buf bytes.Buffer
	if err := policyMarkdown.Convert([]byte(rest.PolicyMarkdown), &buf); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
