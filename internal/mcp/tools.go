package mcp

import "github.com/mark3labs/mcp-go/mcp"

// checkAvailabilityTool defines the check_availability MCP tool.
var checkAvailabilityTool = mcp.NewTool("check_availability",
	mcp.WithDescription("Check whether a restaurant can seat a party at a given date and time."),
	mcp.WithString("restaurant_id",
		mcp.Required(),
		mcp.Description("ID of the restaurant"),
	),
	mcp.WithString("date",
		mcp.Required(),
		mcp.Description("Requested date as YYYY-MM-DD"),
	),
	mcp.WithString("time",
		mcp.Required(),
		mcp.Description("Requested time as HH:MM in 24-hour form"),
	),
	mcp.WithNumber("party_size",
		mcp.Description("Number of diners (default 2)"),
	),
)

// findReservationTool defines the find_reservation MCP tool.
var findReservationTool = mcp.NewTool("find_reservation",
	mcp.WithDescription("Find upcoming reservations by confirmation code, phone number, or guest name. Reports whether each reservation can still be modified or cancelled."),
	mcp.WithString("restaurant_id",
		mcp.Required(),
		mcp.Description("ID of the restaurant"),
	),
	mcp.WithString("identifier",
		mcp.Required(),
		mcp.Description("Confirmation code, phone number, or guest name"),
	),
)

// createReservationTool defines the create_reservation MCP tool.
var createReservationTool = mcp.NewTool("create_reservation",
	mcp.WithDescription("Create a reservation for a guest. Creates the guest record if the phone number is not on file."),
	mcp.WithString("restaurant_id",
		mcp.Required(),
		mcp.Description("ID of the restaurant"),
	),
	mcp.WithString("guest_name",
		mcp.Required(),
		mcp.Description("Name for the reservation"),
	),
	mcp.WithString("guest_phone",
		mcp.Description("Guest phone number"),
	),
	mcp.WithString("date",
		mcp.Required(),
		mcp.Description("Date as YYYY-MM-DD"),
	),
	mcp.WithString("time",
		mcp.Required(),
		mcp.Description("Time as HH:MM in 24-hour form"),
	),
	mcp.WithNumber("party_size",
		mcp.Description("Number of diners (default 2)"),
	),
)

// cancelReservationTool defines the cancel_reservation MCP tool.
var cancelReservationTool = mcp.NewTool("cancel_reservation",
	mcp.WithDescription("Cancel a reservation by its ID. Refused inside the cancellation window."),
	mcp.WithString("reservation_id",
		mcp.Required(),
		mcp.Description("ID of the reservation to cancel"),
	),
)

// lookupGuestTool defines the lookup_guest MCP tool.
var lookupGuestTool = mcp.NewTool("lookup_guest",
	mcp.WithDescription("Look up a guest by phone number or name and list their reservations."),
	mcp.WithString("restaurant_id",
		mcp.Required(),
		mcp.Description("ID of the restaurant"),
	),
	mcp.WithString("phone",
		mcp.Description("Guest phone number (exact match after normalization)"),
	),
	mcp.WithString("name",
		mcp.Description("Guest name (case-insensitive substring match)"),
	),
)

// searchPoliciesTool defines the search_policies MCP tool.
var searchPoliciesTool = mcp.NewTool("search_policies",
	mcp.WithDescription("Search a restaurant's policy documents semantically."),
	mcp.WithString("restaurant_id",
		mcp.Required(),
		mcp.Description("ID of the restaurant"),
	),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language question about house policies"),
	),
)
