package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/mesafina/mesafina/internal/guests"
	"github.com/mesafina/mesafina/internal/knowledge"
	"github.com/mesafina/mesafina/internal/reservations"
	"github.com/mesafina/mesafina/internal/restaurants"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes reservation desk tools to AI
// agents over stdio.
type Server struct {
	restaurants  *restaurants.Store
	guests       *guests.Store
	reservations *reservations.Store
	kb           *knowledge.KB // may be nil
	mcp          *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(restStore *restaurants.Store, guestStore *guests.Store, resvStore *reservations.Store, kb *knowledge.KB) *Server {
	s := &Server{
		restaurants:  restStore,
		guests:       guestStore,
		reservations: resvStore,
		kb:           kb,
	}

	s.mcp = server.NewMCPServer(
		"mesafina",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(checkAvailabilityTool, s.handleCheckAvailability)
	s.mcp.AddTool(findReservationTool, s.handleFindReservation)
	s.mcp.AddTool(createReservationTool, s.handleCreateReservation)
	s.mcp.AddTool(cancelReservationTool, s.handleCancelReservation)
	s.mcp.AddTool(lookupGuestTool, s.handleLookupGuest)
	s.mcp.AddTool(searchPoliciesTool, s.handleSearchPolicies)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
