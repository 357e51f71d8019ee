package dashboard

import (
	"github.com/go-chi/chi/v5"

	"github.com/mesafina/mesafina/internal/agent"
	"github.com/mesafina/mesafina/internal/reservations"
	"github.com/mesafina/mesafina/internal/restaurants"
)

// Dashboard provides the staff dashboard, the guest chat widget, and the
// WebSocket bridge to the conversation engine.
type Dashboard struct {
	engine       *agent.Engine
	sessions     *agent.Store
	restaurants  *restaurants.Store
	reservations *reservations.Store
}

// New creates a new Dashboard. The engine may be nil when no LLM provider is
// configured; the chat endpoint then reports an error instead of answering.
func New(engine *agent.Engine, sessions *agent.Store, restaurantStore *restaurants.Store, reservationStore *reservations.Store) *Dashboard {
	return &Dashboard{
		engine:       engine,
		sessions:     sessions,
		restaurants:  restaurantStore,
		reservations: reservationStore,
	}
}

// RegisterRoutes mounts all dashboard routes onto the given router.
func (d *Dashboard) RegisterRoutes(r chi.Router) {
	r.Get("/", d.ServeIndex)
	r.Get("/api/dashboard/stats", d.handleStats)
	r.Get("/api/dashboard/recent", d.handleRecent)
	r.Get("/api/restaurants/{restaurantID}/policy.html", d.handlePolicyHTML)
	r.Get("/ws/chat", d.handleWebSocket)
}
