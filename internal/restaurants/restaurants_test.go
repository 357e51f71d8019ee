package restaurants

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mesafina/mesafina/internal/db"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestCreateAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, Restaurant{
		Name:     "Trattoria Lucia",
		Timezone: "Europe/Rome",
		Locale:   "en",
		Phone:    "+39 06 555 0199",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Error("expected non-empty ID")
	}

	fetched, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Name != "Trattoria Lucia" {
		t.Errorf("expected name Trattoria Lucia, got %q", fetched.Name)
	}
	if fetched.Timezone != "Europe/Rome" {
		t.Errorf("expected timezone Europe/Rome, got %q", fetched.Timezone)
	}
}

func TestCreateDefaults(t *testing.T) {
	store := setupTestStore(t)

	created, err := store.Create(context.Background(), Restaurant{Name: "Bare Minimum"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Timezone != "UTC" {
		t.Errorf("expected default timezone UTC, got %q", created.Timezone)
	}
	if created.Locale != "en" {
		t.Errorf("expected default locale en, got %q", created.Locale)
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	store := setupTestStore(t)

	rest, err := store.GetByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if rest != nil {
		t.Error("expected nil for missing restaurant")
	}
}

func TestUpdateAndDelete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, _ := store.Create(ctx, Restaurant{Name: "Old Name"})
	created.Name = "New Name"
	created.Locale = "es"

	if err := store.Update(ctx, *created); err != nil {
		t.Fatalf("Update: %v", err)
	}
	fetched, _ := store.GetByID(ctx, created.ID)
	if fetched.Name != "New Name" || fetched.Locale != "es" {
		t.Errorf("update not applied: %+v", fetched)
	}

	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	gone, _ := store.GetByID(ctx, created.ID)
	if gone != nil {
		t.Error("expected restaurant deleted")
	}

	if err := store.Delete(ctx, created.ID); err == nil {
		t.Error("expected error deleting missing restaurant")
	}
}

func TestTables(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rest, _ := store.Create(ctx, Restaurant{Name: "Tabled"})

	if _, err := store.AddTable(ctx, Table{RestaurantID: rest.ID, Label: "T1", Capacity: 4}); err != nil {
		t.Fatalf("AddTable: %v", err)
	}
	if _, err := store.AddTable(ctx, Table{RestaurantID: rest.ID, Label: "T2", Capacity: 2, Zone: "terrace"}); err != nil {
		t.Fatalf("AddTable: %v", err)
	}

	// Duplicate label for the same restaurant must fail.
	if _, err := store.AddTable(ctx, Table{RestaurantID: rest.ID, Label: "T1", Capacity: 6}); err == nil {
		t.Error("expected error for duplicate table label")
	}

	tables, err := store.ListTables(ctx, rest.ID)
	if err != nil {
		t.Fatalf("ListTables: %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(tables))
	}
	if tables[0].Zone != "main" {
		t.Errorf("expected default zone main, got %q", tables[0].Zone)
	}
}

type fakeIndexer struct {
	lastRestaurant string
	lastMarkdown   string
}

func (f *fakeIndexer) IngestPolicy(_ context.Context, restaurantID, markdown string) (int, error) {
	f.lastRestaurant = restaurantID
	f.lastMarkdown = markdown
	return 2, nil
}

func TestSetPolicyRouteReindexes(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rest, _ := store.Create(ctx, Restaurant{Name: "Policied"})

	indexer := &fakeIndexer{}
	r := chi.NewRouter()
	RegisterRoutes(r, store, indexer)

	body := `{"markdown":"## Cancellations\nTwo hours notice."}`
	req := httptest.NewRequest(http.MethodPut, "/api/restaurants/"+rest.ID+"/policy", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if indexer.lastRestaurant != rest.ID {
		t.Errorf("indexer called with %q, want %q", indexer.lastRestaurant, rest.ID)
	}

	var resp map[string]int
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp["indexed_sections"] != 2 {
		t.Errorf("indexed_sections = %d, want 2", resp["indexed_sections"])
	}

	fetched, _ := store.GetByID(ctx, rest.ID)
	if !strings.Contains(fetched.PolicyMarkdown, "Cancellations") {
		t.Errorf("policy not persisted: %q", fetched.PolicyMarkdown)
	}
}

func TestCreateRouteValidation(t *testing.T) {
	store := setupTestStore(t)

	r := chi.NewRouter()
	RegisterRoutes(r, store, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/restaurants", strings.NewReader(`{"timezone":"UTC"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing name, got %d", rec.Code)
	}
}
