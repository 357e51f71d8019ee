package reservations

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mesafina/mesafina/internal/outcome"
)

// RegisterRoutes mounts the reservation API routes.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/api/restaurants/{restaurantID}/reservations", func(r chi.Router) {
		r.Get("/", handleList(store))
		r.Post("/", handleCreate(store))
		r.Get("/lookup", handleLookup(store))
		r.Get("/{id}", handleGetByID(store))
		r.Put("/{id}", handleReschedule(store))
		r.Post("/{id}/cancel", handleCancel(store))
		r.Put("/{id}/status", handleUpdateStatus(store))
	})
}

// writeOutcomeError maps categorized errors to HTTP statuses: validation
// errors are the caller's fault, business rule refusals are a conflict.
func writeOutcomeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if cat, ok := outcome.CategoryOf(err); ok {
		switch cat {
		case outcome.CategoryValidation:
			status = http.StatusBadRequest
		case outcome.CategoryBusinessRule:
			status = http.StatusConflict
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := ListFilter{}
		if v := r.URL.Query().Get("status"); v != "" {
			filter.Status = Status(v)
		}
		if v := r.URL.Query().Get("from"); v != "" {
			if ts, err := time.Parse(time.RFC3339, v); err == nil {
				filter.From = ts
			}
		}
		if v := r.URL.Query().Get("to"); v != "" {
			if ts, err := time.Parse(time.RFC3339, v); err == nil {
				filter.To = ts
			}
		}

		list, err := store.List(r.Context(), chi.URLParam(r, "restaurantID"), filter)
		if err != nil {
			writeOutcomeError(w, err)
			return
		}
		if list == nil {
			list = []Reservation{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(list)
	}
}

func handleCreate(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var res Reservation
		if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		res.RestaurantID = chi.URLParam(r, "restaurantID")

		created, err := store.Create(r.Context(), res)
		if err != nil {
			writeOutcomeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func handleLookup(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identifier := r.URL.Query().Get("identifier")
		if identifier == "" {
			http.Error(w, `{"error":"identifier is required"}`, http.StatusBadRequest)
			return
		}

		results, err := store.Lookup(r.Context(), chi.URLParam(r, "restaurantID"), identifier, time.Now().UTC())
		if err != nil {
			writeOutcomeError(w, err)
			return
		}
		if results == nil {
			results = []LookupResult{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(results)
	}
}

func handleGetByID(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := store.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeOutcomeError(w, err)
			return
		}
		if res == nil {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(res)
	}
}

type rescheduleRequest struct {
	ScheduledAt time.Time `json:"scheduled_at"`
	PartySize   int       `json:"party_size"`
}

func handleReschedule(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rescheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.ScheduledAt.IsZero() {
			http.Error(w, `{"error":"scheduled_at is required"}`, http.StatusBadRequest)
			return
		}

		err := store.Reschedule(r.Context(), chi.URLParam(r, "id"), req.ScheduledAt, req.PartySize, time.Now().UTC())
		if err != nil {
			writeOutcomeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "rescheduled"})
	}
}

func handleCancel(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := store.Cancel(r.Context(), chi.URLParam(r, "id"), time.Now().UTC())
		if err != nil {
			writeOutcomeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "cancelled"})
	}
}

type statusRequest struct {
	Status Status `json:"status"`
}

func handleUpdateStatus(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		err := store.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
		if err != nil {
			writeOutcomeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": string(req.Status)})
	}
}
