package guests

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the guest API routes.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/api/restaurants/{restaurantID}/guests", func(r chi.Router) {
		r.Get("/", handleList(store))
		r.Post("/", handleCreate(store))
		r.Get("/{id}", handleGetByID(store))
		r.Put("/{id}", handleUpdate(store))
	})
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		restaurantID := chi.URLParam(r, "restaurantID")

		var (
			list []Guest
			err  error
		)
		if phone := r.URL.Query().Get("phone"); phone != "" {
			var g *Guest
			g, err = store.FindByPhone(r.Context(), restaurantID, phone)
			if g != nil {
				list = []Guest{*g}
			}
		} else if name := r.URL.Query().Get("name"); name != "" {
			list, err = store.SearchByName(r.Context(), restaurantID, name)
		} else {
			list, err = store.List(r.Context(), restaurantID)
		}
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []Guest{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(list)
	}
}

func handleCreate(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var g Guest
		if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		g.RestaurantID = chi.URLParam(r, "restaurantID")
		if g.Name == "" {
			http.Error(w, `{"error":"name is required"}`, http.StatusBadRequest)
			return
		}

		created, err := store.Create(r.Context(), g)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func handleGetByID(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := store.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if g == nil {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(g)
	}
}

func handleUpdate(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var g Guest
		if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		g.ID = chi.URLParam(r, "id")

		if err := store.Update(r.Context(), g); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "updated"})
	}
}
