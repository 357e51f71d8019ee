package restaurants

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// PolicyIndexer re-indexes a restaurant's policy document for semantic
// search whenever it changes. May be nil when search is disabled.
type PolicyIndexer interface {
	IngestPolicy(ctx context.Context, restaurantID, markdown string) (int, error)
}

// RegisterRoutes mounts the restaurant API routes.
func RegisterRoutes(r chi.Router, store *Store, indexer PolicyIndexer) {
	r.Route("/api/restaurants", func(r chi.Router) {
		r.Get("/", handleList(store))
		r.Post("/", handleCreate(store))
		r.Get("/{id}", handleGetByID(store))
		r.Put("/{id}", handleUpdate(store))
		r.Delete("/{id}", handleDelete(store))
		r.Put("/{id}/policy", handleSetPolicy(store, indexer))
		r.Get("/{id}/tables", handleListTables(store))
		r.Post("/{id}/tables", handleAddTable(store))
	})
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.List(r.Context())
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []Restaurant{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(list)
	}
}

func handleCreate(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rest Restaurant
		if err := json.NewDecoder(r.Body).Decode(&rest); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if rest.Name == "" {
			http.Error(w, `{"error":"name is required"}`, http.StatusBadRequest)
			return
		}

		created, err := store.Create(r.Context(), rest)
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
		rest, err := store.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if rest == nil {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rest)
	}
}

func handleUpdate(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rest Restaurant
		if err := json.NewDecoder(r.Body).Decode(&rest); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		rest.ID = chi.URLParam(r, "id")

		if err := store.Update(r.Context(), rest); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "updated"})
	}
}

func handleDelete(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
	}
}

type policyRequest struct {
	Markdown string `json:"markdown"`
}

func handleSetPolicy(store *Store, indexer PolicyIndexer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req policyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		if err := store.SetPolicy(r.Context(), id, req.Markdown); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		sections := 0
		if indexer != nil {
			n, err := indexer.IngestPolicy(r.Context(), id, req.Markdown)
			if err != nil {
				http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
				return
			}
			sections = n
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"indexed_sections": sections})
	}
}

func handleListTables(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tables, err := store.ListTables(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if tables == nil {
			tables = []Table{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(tables)
	}
}

func handleAddTable(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var table Table
		if err := json.NewDecoder(r.Body).Decode(&table); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		table.RestaurantID = chi.URLParam(r, "id")
		if table.Label == "" {
			http.Error(w, `{"error":"label is required"}`, http.StatusBadRequest)
			return
		}
		if table.Capacity <= 0 {
			http.Error(w, `{"error":"capacity must be positive"}`, http.StatusBadRequest)
			return
		}

		created, err := store.AddTable(r.Context(), table)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}
