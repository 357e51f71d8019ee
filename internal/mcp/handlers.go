package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mesafina/mesafina/internal/guests"
	"github.com/mesafina/mesafina/internal/reservations"
)

// seatingOverlap is how long a table stays occupied around a reservation when
// judging availability.
const seatingOverlap = 90 * time.Minute

// handleCheckAvailability compares tables against overlapping bookings.
func (s *Server) handleCheckAvailability(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	restaurantID, err := request.RequireString("restaurant_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: restaurant_id"), nil
	}
	dateStr, err := request.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: date"), nil
	}
	timeStr, err := request.RequireString("time")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: time"), nil
	}
	partySize := request.GetInt("party_size", 2)
	if partySize <= 0 {
		partySize = 2
	}

	slot, err := time.Parse("2006-01-02 15:04", dateStr+" "+timeStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid date or time: %v", err)), nil
	}
	slot = slot.UTC()

	tables, err := s.restaurants.ListTables(ctx, restaurantID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing tables: %v", err)), nil
	}

	fitting := 0
	for _, tbl := range tables {
		if tbl.Capacity >= partySize {
			fitting++
		}
	}
	if fitting == 0 {
		return mcp.NewToolResultText(fmt.Sprintf(
			"No table seats a party of %d at this restaurant.", partySize)), nil
	}

	overlapping, err := s.reservations.List(ctx, restaurantID, reservations.ListFilter{
		Status: reservations.StatusBooked,
		From:   slot.Add(-seatingOverlap),
		To:     slot.Add(seatingOverlap),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing reservations: %v", err)), nil
	}

	free := fitting - len(overlapping)
	if free <= 0 {
		return mcp.NewToolResultText(fmt.Sprintf(
			"Fully booked around %s on %s: %d suitable table(s), %d overlapping reservation(s).",
			timeStr, dateStr, fitting, len(overlapping))), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Available: %d of %d suitable table(s) free around %s on %s for a party of %d.",
		free, fitting, timeStr, dateStr, partySize)), nil
}

// handleFindReservation resolves an identifier to upcoming reservations.
func (s *Server) handleFindReservation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	restaurantID, err := request.RequireString("restaurant_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: restaurant_id"), nil
	}
	identifier, err := request.RequireString("identifier")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: identifier"), nil
	}

	results, err := s.reservations.Lookup(ctx, restaurantID, identifier, time.Now().UTC())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No upcoming reservation matches that identifier."), nil
	}

	return mcp.NewToolResultText(formatLookupResults(results)), nil
}

// handleCreateReservation books a table, creating the guest if needed.
func (s *Server) handleCreateReservation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	restaurantID, err := request.RequireString("restaurant_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: restaurant_id"), nil
	}
	guestName, err := request.RequireString("guest_name")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: guest_name"), nil
	}
	dateStr, err := request.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: date"), nil
	}
	timeStr, err := request.RequireString("time")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: time"), nil
	}
	guestPhone := request.GetString("guest_phone", "")
	partySize := request.GetInt("party_size", 2)

	slot, err := time.Parse("2006-01-02 15:04", dateStr+" "+timeStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid date or time: %v", err)), nil
	}

	var guest *guests.Guest
	if guestPhone != "" {
		guest, err = s.guests.FindByPhone(ctx, restaurantID, guestPhone)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("finding guest: %v", err)), nil
		}
	}
	if guest == nil {
		guest, err = s.guests.Create(ctx, guests.Guest{
			RestaurantID: restaurantID,
			Name:         guestName,
			Phone:        guestPhone,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("creating guest: %v", err)), nil
		}
	}

	res, err := s.reservations.Create(ctx, reservations.Reservation{
		RestaurantID: restaurantID,
		GuestID:      guest.ID,
		ScheduledAt:  slot.UTC(),
		PartySize:    partySize,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("creating reservation: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Reservation %s created for %s, party of %d, on %s at %s. Confirmation code: %s.",
		res.ID, guest.Name, res.PartySize,
		res.ScheduledAt.Format("2006-01-02"), res.ScheduledAt.Format("15:04"),
		res.ConfirmationCode)), nil
}

// handleCancelReservation cancels by ID, honoring the cancellation window.
func (s *Server) handleCancelReservation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reservationID, err := request.RequireString("reservation_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: reservation_id"), nil
	}

	if err := s.reservations.Cancel(ctx, reservationID, time.Now().UTC()); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cancel failed: %v", err)), nil
	}
	return mcp.NewToolResultText("Reservation cancelled."), nil
}

// handleLookupGuest finds a guest by phone or name and lists their bookings.
func (s *Server) handleLookupGuest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	restaurantID, err := request.RequireString("restaurant_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: restaurant_id"), nil
	}
	phone := request.GetString("phone", "")
	name := request.GetString("name", "")
	if phone == "" && name == "" {
		return mcp.NewToolResultError("either phone or name is required"), nil
	}

	var found []guests.Guest
	if phone != "" {
		g, err := s.guests.FindByPhone(ctx, restaurantID, phone)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("finding guest: %v", err)), nil
		}
		if g != nil {
			found = append(found, *g)
		}
	} else {
		found, err = s.guests.SearchByName(ctx, restaurantID, name)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("searching guests: %v", err)), nil
		}
	}

	if len(found) == 0 {
		return mcp.NewToolResultText("No guest on file matches."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d guest(s):\n", len(found))
	for _, g := range found {
		fmt.Fprintf(&sb, "\n%s", g.Name)
		if g.Phone != "" {
			fmt.Fprintf(&sb, " (%s)", g.Phone)
		}
		sb.WriteString("\n")

		history, err := s.reservations.ListByGuest(ctx, g.ID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("listing reservations: %v", err)), nil
		}
		if len(history) == 0 {
			sb.WriteString("  no reservations\n")
			continue
		}
		for _, r := range history {
			fmt.Fprintf(&sb, "  %s at %s, party of %d, %s (code %s)\n",
				r.ScheduledAt.Format("2006-01-02"), r.ScheduledAt.Format("15:04"),
				r.PartySize, r.Status, r.ConfirmationCode)
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleSearchPolicies searches the restaurant's indexed policy documents.
func (s *Server) handleSearchPolicies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	restaurantID, err := request.RequireString("restaurant_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: restaurant_id"), nil
	}
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	if s.kb == nil {
		return mcp.NewToolResultError("no knowledge base configured"), nil
	}

	results, err := s.kb.Search(ctx, restaurantID, query, 5)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No policy documents match. The restaurant may not have indexed its policies yet."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d section(s):\n", len(results))
	for i, r := range results {
		fmt.Fprintf(&sb, "\n--- Section %d: %s (%.1f%%) ---\n%s\n",
			i+1, r.Entry.Title, r.Similarity*100, r.Entry.Content)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// formatLookupResults renders lookup results for agent consumption.
func formatLookupResults(results []reservations.LookupResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d reservation(s):\n", len(results))

	for i, r := range results {
		fmt.Fprintf(&sb, "\n--- Reservation %d ---\n", i+1)
		fmt.Fprintf(&sb, "ID: %s\n", r.Reservation.ID)
		fmt.Fprintf(&sb, "Guest: %s\n", r.GuestName)
		fmt.Fprintf(&sb, "When: %s at %s\n",
			r.Reservation.ScheduledAt.Format("2006-01-02"), r.Reservation.ScheduledAt.Format("15:04"))
		fmt.Fprintf(&sb, "Party: %d\n", r.Reservation.PartySize)
		fmt.Fprintf(&sb, "Code: %s\n", r.Reservation.ConfirmationCode)
		fmt.Fprintf(&sb, "Hours until: %.1f\n", r.Mutability.HoursUntil)
		fmt.Fprintf(&sb, "Can modify: %t, can cancel: %t\n", r.Mutability.CanModify, r.Mutability.CanCancel)
	}

	return sb.String()
}
