package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mesafina/mesafina/internal/agent"
	"github.com/mesafina/mesafina/internal/auth"
	"github.com/mesafina/mesafina/internal/config"
	"github.com/mesafina/mesafina/internal/dashboard"
	"github.com/mesafina/mesafina/internal/db"
	"github.com/mesafina/mesafina/internal/guests"
	"github.com/mesafina/mesafina/internal/knowledge"
	"github.com/mesafina/mesafina/internal/llm"
	"github.com/mesafina/mesafina/internal/locale"
	"github.com/mesafina/mesafina/internal/reservations"
	"github.com/mesafina/mesafina/internal/restaurants"
)

// Server wires the stores, the conversation engine, and the HTTP API
// together behind one chi router.
type Server struct {
	cfg          config.Config
	db           *db.DB
	restaurants  *restaurants.Store
	guests       *guests.Store
	reservations *reservations.Store
	sessions     *agent.Store
	users        *auth.Store
	engine       *agent.Engine
	kb           *knowledge.KB
	router       chi.Router
	httpServer   *http.Server
}

// New creates a server with all dependencies. Provider and kb may be nil;
// the reservation API works without them, only the chat assistant needs them.
func New(cfg config.Config, database *db.DB, provider llm.Provider, kb *knowledge.KB) *Server {
	guestStore := guests.NewStore(database)
	s := &Server{
		cfg:          cfg,
		db:           database,
		restaurants:  restaurants.NewStore(database),
		guests:       guestStore,
		reservations: reservations.NewStore(database, guestStore),
		sessions:     agent.NewStore(database),
		users:        auth.NewStore(database, cfg.SessionSecret),
		kb:           kb,
	}

	if provider != nil {
		var answerer *knowledge.Answerer
		if kb != nil {
			answerer = knowledge.NewAnswerer(kb, provider, cfg.Model)
		}
		s.engine = agent.NewEngine(agent.Options{
			Store:        s.sessions,
			Reservations: s.reservations,
			Guests:       guestStore,
			Locales:      locale.NewRegistry(),
			Provider:     provider,
			Answerer:     answerer,
			Model:        cfg.Model,
			Temperature:  cfg.Agent.Temperature,
		})
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	auth.RegisterRoutes(r, s.users)

	// The dashboard and the guest chat widget are public surfaces.
	dashboard.New(s.engine, s.sessions, s.restaurants, s.reservations).RegisterRoutes(r)

	// Staff-facing management API sits behind the session cookie.
	r.Group(func(r chi.Router) {
		r.Use(s.users.RequireAuth)
		restaurants.RegisterRoutes(r, s.restaurants, s.policyIndexer())
		guests.RegisterRoutes(r, s.guests)
		reservations.RegisterRoutes(r, s.reservations)
	})

	return r
}

// policyIndexer adapts the knowledge base to the restaurants package, which
// accepts a nil indexer when no knowledge base is configured.
func (s *Server) policyIndexer() restaurants.PolicyIndexer {
	if s.kb == nil {
		return nil
	}
	return s.kb
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Database returns the database connection.
func (s *Server) Database() *db.DB { return s.db }

// Engine returns the conversation engine, or nil when no provider is set.
func (s *Server) Engine() *agent.Engine { return s.engine }

// Sessions returns the chat session store.
func (s *Server) Sessions() *agent.Store { return s.sessions }

// Restaurants returns the restaurant store.
func (s *Server) Restaurants() *restaurants.Store { return s.restaurants }

// Guests returns the guest store.
func (s *Server) Guests() *guests.Store { return s.guests }

// Reservations returns the reservation store.
func (s *Server) Reservations() *reservations.Store { return s.reservations }

// Users returns the staff user store.
func (s *Server) Users() *auth.Store { return s.users }

// Start begins listening on the configured address.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("mesafina server listening on %s", s.cfg.ListenAddr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
