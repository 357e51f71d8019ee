package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/mesafina/mesafina/internal/agent"
	"github.com/mesafina/mesafina/internal/db"
	"github.com/mesafina/mesafina/internal/guests"
	"github.com/mesafina/mesafina/internal/reservations"
	"github.com/mesafina/mesafina/internal/restaurants"
)

type fixture struct {
	dash         *Dashboard
	restaurants  *restaurants.Store
	guests       *guests.Store
	reservations *reservations.Store
	sessions     *agent.Store
	restID       string
}

func setupTest(t *testing.T) *fixture {
	t.Helper()

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	restStore := restaurants.NewStore(database)
	guestStore := guests.NewStore(database)
	resvStore := reservations.NewStore(database, guestStore)
	sessStore := agent.NewStore(database)

	rest, err := restStore.Create(context.Background(), restaurants.Restaurant{Name: "Trattoria Uno"})
	if err != nil {
		t.Fatalf("creating restaurant: %v", err)
	}

	// Nil engine: the chat endpoint reports an error instead of answering.
	d := New(nil, sessStore, restStore, resvStore)
	return &fixture{
		dash:         d,
		restaurants:  restStore,
		guests:       guestStore,
		reservations: resvStore,
		sessions:     sessStore,
		restID:       rest.ID,
	}
}

func setupRouter(d *Dashboard) chi.Router {
	r := chi.NewRouter()
	d.RegisterRoutes(r)
	return r
}

func TestStatsEndpoint(t *testing.T) {
	f := setupTest(t)
	r := setupRouter(f.dash)
	ctx := context.Background()

	g, err := f.guests.Create(ctx, guests.Guest{RestaurantID: f.restID, Name: "Ada", Phone: "5550001111"})
	if err != nil {
		t.Fatalf("creating guest: %v", err)
	}
	if _, err := f.reservations.Create(ctx, reservations.Reservation{
		RestaurantID: f.restID,
		GuestID:      g.ID,
		ScheduledAt:  time.Now().UTC().Add(24 * time.Hour),
		PartySize:    2,
	}); err != nil {
		t.Fatalf("creating reservation: %v", err)
	}
	if _, err := f.sessions.CreateSession(ctx, f.restID, "en", "test"); err != nil {
		t.Fatalf("creating session: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var stats statsResponse
	if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
		t.Fatalf("decoding stats: %v", err)
	}

	if stats.TotalRestaurants != 1 {
		t.Errorf("expected 1 restaurant, got %d", stats.TotalRestaurants)
	}
	if stats.UpcomingReservations != 1 {
		t.Errorf("expected 1 upcoming reservation, got %d", stats.UpcomingReservations)
	}
	if stats.TotalSessions != 1 {
		t.Errorf("expected 1 session, got %d", stats.TotalSessions)
	}
}

func TestRecentEndpointLimits(t *testing.T) {
	f := setupTest(t)
	r := setupRouter(f.dash)
	ctx := context.Background()

	g, _ := f.guests.Create(ctx, guests.Guest{RestaurantID: f.restID, Name: "Ada", Phone: "5550001111"})
	for i := 0; i < 15; i++ {
		if _, err := f.reservations.Create(ctx, reservations.Reservation{
			RestaurantID: f.restID,
			GuestID:      g.ID,
			ScheduledAt:  time.Now().UTC().Add(time.Duration(i+1) * time.Hour),
			PartySize:    2,
		}); err != nil {
			t.Fatalf("creating reservation %d: %v", i, err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/recent", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var recent recentResponse
	if err := json.NewDecoder(w.Body).Decode(&recent); err != nil {
		t.Fatalf("decoding recent: %v", err)
	}
	if len(recent.Reservations) != 10 {
		t.Errorf("expected 10 reservations, got %d", len(recent.Reservations))
	}
}

func TestPolicyHTML(t *testing.T) {
	f := setupTest(t)
	r := setupRouter(f.dash)

	policy := "# House Rules\n\nNo outside food.\n\n## Cancellations\n\nCall at least two hours ahead."
	if err := f.restaurants.SetPolicy(context.Background(), f.restID, policy); err != nil {
		t.Fatalf("SetPolicy: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/restaurants/"+f.restID+"/policy.html", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, "<h1") || !strings.Contains(body, "House Rules") {
		t.Errorf("expected rendered heading, got %q", body)
	}
	if !strings.Contains(body, "<h2") {
		t.Errorf("expected rendered subheading, got %q", body)
	}
}

func TestPolicyHTMLUnknownRestaurant(t *testing.T) {
	f := setupTest(t)
	r := setupRouter(f.dash)

	req := httptest.NewRequest(http.MethodGet, "/api/restaurants/nope/policy.html", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestWebSocketNilEngine(t *testing.T) {
	f := setupTest(t)
	r := setupRouter(f.dash)

	server := httptest.NewServer(r)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/chat"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close()

	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}

	msg := chatRequest{Type: "message", RestaurantID: f.restID, Content: "hello"}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out chatResponse
	if err := conn.ReadJSON(&out); err != nil {
		t.Fatalf("read: %v", err)
	}
	if out.Type != "error" {
		t.Errorf("expected error type, got %q", out.Type)
	}
	if !strings.Contains(out.Content, "LLM provider not configured") {
		t.Errorf("expected provider error, got %q", out.Content)
	}
}

func TestWebSocketEmptyContent(t *testing.T) {
	f := setupTest(t)
	r := setupRouter(f.dash)

	server := httptest.NewServer(r)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(chatRequest{Type: "message", Content: ""}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out chatResponse
	if err := conn.ReadJSON(&out); err != nil {
		t.Fatalf("read: %v", err)
	}
	if out.Type != "error" || !strings.Contains(out.Content, "content is required") {
		t.Errorf("got %q/%q", out.Type, out.Content)
	}
}

func TestWebSocketUnknownType(t *testing.T) {
	f := setupTest(t)
	r := setupRouter(f.dash)

	server := httptest.NewServer(r)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(chatRequest{Type: "broadcast", Content: "hello"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out chatResponse
	if err := conn.ReadJSON(&out); err != nil {
		t.Fatalf("read: %v", err)
	}
	if out.Type != "error" || !strings.Contains(out.Content, "unknown message type") {
		t.Errorf("got %q/%q", out.Type, out.Content)
	}
}

func TestServeIndex(t *testing.T) {
	f := setupTest(t)
	r := setupRouter(f.dash)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("expected text/html content type, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), "Mesafina") {
		t.Error("expected HTML to contain 'Mesafina'")
	}
}
