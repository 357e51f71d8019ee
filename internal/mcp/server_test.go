package mcp

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mesafina/mesafina/internal/db"
	"github.com/mesafina/mesafina/internal/guests"
	"github.com/mesafina/mesafina/internal/reservations"
	"github.com/mesafina/mesafina/internal/restaurants"
)

type fixture struct {
	srv    *Server
	restID string
	guests *guests.Store
	resvs  *reservations.Store
	rests  *restaurants.Store
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

	rest, err := restStore.Create(context.Background(), restaurants.Restaurant{Name: "Osteria MCP"})
	if err != nil {
		t.Fatalf("creating restaurant: %v", err)
	}

	return &fixture{
		srv:    NewServer(restStore, guestStore, resvStore, nil),
		restID: rest.ID,
		guests: guestStore,
		resvs:  resvStore,
		rests:  restStore,
	}
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatalf("no text content in result: %v", result.Content)
	return ""
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"check_availability", checkAvailabilityTool, "check_availability"},
		{"find_reservation", findReservationTool, "find_reservation"},
		{"create_reservation", createReservationTool, "create_reservation"},
		{"cancel_reservation", cancelReservationTool, "cancel_reservation"},
		{"lookup_guest", lookupGuestTool, "lookup_guest"},
		{"search_policies", searchPoliciesTool, "search_policies"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	f := setupTest(t)
	if f.srv == nil {
		t.Fatal("NewServer returned nil")
	}
	if f.srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
}

func TestHandleCreateAndFindReservation(t *testing.T) {
	f := setupTest(t)
	ctx := context.Background()

	date := time.Now().UTC().Add(72 * time.Hour).Format("2006-01-02")
	result, err := f.srv.handleCreateReservation(ctx, callRequest(map[string]any{
		"restaurant_id": f.restID,
		"guest_name":    "Marco Bellini",
		"guest_phone":   "+39 055 123456",
		"date":          date,
		"time":          "19:30",
		"party_size":    4.0,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	if !strings.Contains(resultText(t, result), "Confirmation code") {
		t.Errorf("expected confirmation code in %q", resultText(t, result))
	}

	result, err = f.srv.handleFindReservation(ctx, callRequest(map[string]any{
		"restaurant_id": f.restID,
		"identifier":    "Marco Bellini",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "Marco Bellini") || !strings.Contains(text, "Can modify: true") {
		t.Errorf("unexpected lookup text: %q", text)
	}
}

func TestHandleCreateReservationMissingParams(t *testing.T) {
	f := setupTest(t)

	result, err := f.srv.handleCreateReservation(context.Background(), callRequest(map[string]any{
		"restaurant_id": f.restID,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected error for missing guest_name")
	}
}

func TestHandleFindReservationNoMatch(t *testing.T) {
	f := setupTest(t)

	result, err := f.srv.handleFindReservation(context.Background(), callRequest(map[string]any{
		"restaurant_id": f.restID,
		"identifier":    "nobody at all",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatal("no match should not be a tool error")
	}
	if !strings.Contains(resultText(t, result), "No upcoming reservation") {
		t.Errorf("unexpected text: %q", resultText(t, result))
	}
}

func TestHandleCancelReservationWindow(t *testing.T) {
	f := setupTest(t)
	ctx := context.Background()

	g, _ := f.guests.Create(ctx, guests.Guest{RestaurantID: f.restID, Name: "Short Notice", Phone: "5559998888"})
	res, err := f.resvs.Create(ctx, reservations.Reservation{
		RestaurantID: f.restID,
		GuestID:      g.ID,
		ScheduledAt:  time.Now().UTC().Add(30 * time.Minute),
		PartySize:    2,
	})
	if err != nil {
		t.Fatalf("creating reservation: %v", err)
	}

	result, err := f.srv.handleCancelReservation(ctx, callRequest(map[string]any{
		"reservation_id": res.ID,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error inside the cancellation window")
	}
}

func TestHandleCheckAvailability(t *testing.T) {
	f := setupTest(t)
	ctx := context.Background()

	if _, err := f.rests.AddTable(ctx, restaurants.Table{
		RestaurantID: f.restID, Label: "T1", Capacity: 4,
	}); err != nil {
		t.Fatalf("adding table: %v", err)
	}

	date := time.Now().UTC().Add(96 * time.Hour).Format("2006-01-02")
	result, err := f.srv.handleCheckAvailability(ctx, callRequest(map[string]any{
		"restaurant_id": f.restID,
		"date":          date,
		"time":          "19:00",
		"party_size":    2.0,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	if !strings.Contains(resultText(t, result), "Available") {
		t.Errorf("expected availability, got %q", resultText(t, result))
	}

	// A party no table can seat.
	result, err = f.srv.handleCheckAvailability(ctx, callRequest(map[string]any{
		"restaurant_id": f.restID,
		"date":          date,
		"time":          "19:00",
		"party_size":    10.0,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(resultText(t, result), "No table seats") {
		t.Errorf("expected no-table message, got %q", resultText(t, result))
	}
}

func TestHandleLookupGuest(t *testing.T) {
	f := setupTest(t)
	ctx := context.Background()

	g, _ := f.guests.Create(ctx, guests.Guest{RestaurantID: f.restID, Name: "Nora Berg", Phone: "+47 22 11 00 99"})
	if _, err := f.resvs.Create(ctx, reservations.Reservation{
		RestaurantID: f.restID,
		GuestID:      g.ID,
		ScheduledAt:  time.Now().UTC().Add(24 * time.Hour),
		PartySize:    3,
	}); err != nil {
		t.Fatalf("creating reservation: %v", err)
	}

	result, err := f.srv.handleLookupGuest(ctx, callRequest(map[string]any{
		"restaurant_id": f.restID,
		"phone":         "+47 22 11 00 99",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "Nora Berg") || !strings.Contains(text, "party of 3") {
		t.Errorf("unexpected text: %q", text)
	}

	result, _ = f.srv.handleLookupGuest(ctx, callRequest(map[string]any{
		"restaurant_id": f.restID,
	}))
	if !result.IsError {
		t.Error("expected error when neither phone nor name is given")
	}
}

func TestHandleSearchPoliciesNoKB(t *testing.T) {
	f := setupTest(t)

	result, err := f.srv.handleSearchPolicies(context.Background(), callRequest(map[string]any{
		"restaurant_id": f.restID,
		"query":         "corkage fee",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected error with no knowledge base configured")
	}
}
