package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/yalasurf/yalasurf/internal/api"
	"github.com/yalasurf/yalasurf/internal/bus"
	"github.com/yalasurf/yalasurf/internal/cart"
	"github.com/yalasurf/yalasurf/internal/chatbot"
	"github.com/yalasurf/yalasurf/internal/handler"
	"github.com/yalasurf/yalasurf/internal/middleware"
	"github.com/yalasurf/yalasurf/internal/model"
	"github.com/yalasurf/yalasurf/internal/router"
	"github.com/yalasurf/yalasurf/internal/session"
	"github.com/yalasurf/yalasurf/internal/store"
	"github.com/yalasurf/yalasurf/internal/weather"
	ws "github.com/yalasurf/yalasurf/internal/websocket"
)

// Server wires the stores, services, and handlers behind the local
// HTTP surface the browser UI talks to.
type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	sessions    *session.Service
	chatManager *chatbot.Manager
	authH       *handler.AuthHandler
	cartH       *handler.CartHandler
	catalogH    *handler.CatalogHandler
	forumH      *handler.ForumHandler
	chatbotH    *handler.ChatbotHandler
	dashboardH  *handler.DashboardHandler
	forecastH   *handler.ForecastHandler
	pageH       *handler.PageHandler
	table       *router.Table
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, b *bus.Bus, logger *slog.Logger, apiBaseURL string) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	sessionStore := store.NewSessionStore(db)
	cartStore := store.NewCartStore(db)

	sessions := session.NewService(sessionStore, b, logger.With("component", "session"))
	client := api.New(apiBaseURL, sessions.Token, logger.With("component", "api"))

	cartSvc := cart.NewService(cartStore, client, logger.With("component", "cart"))
	weatherSvc := weather.NewService(client, logger.With("component", "weather"))
	chatManager := chatbot.NewManager(client, b, logger.With("component", "chatbot"))

	// Widgets out in the browser learn about logout through the event
	// socket; in-process subscribers hear it straight from the bus.
	b.Subscribe(func(e bus.Event) {
		if e == bus.EventLogout {
			hub.Broadcast(ws.Message{Type: ws.TypeLogout})
		}
	})

	table := router.Default()

	return &Server{
		db:          db,
		hub:         hub,
		sessions:    sessions,
		chatManager: chatManager,
		authH:       handler.NewAuthHandler(client, sessions, logger.With("component", "auth")),
		cartH:       handler.NewCartHandler(cartSvc, hub, logger.With("component", "cart_handler")),
		catalogH:    handler.NewCatalogHandler(client),
		forumH:      handler.NewForumHandler(client, sessions, logger.With("component", "forum")),
		chatbotH:    handler.NewChatbotHandler(chatManager),
		dashboardH:  handler.NewDashboardHandler(client, sessions, logger.With("component", "dashboard")),
		forecastH:   handler.NewForecastHandler(weatherSvc),
		pageH:       handler.NewPageHandler(table, sessions),
		table:       table,
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// Sessions exposes the session service for composition in main.
func (s *Server) Sessions() *session.Service {
	return s.sessions
}

// Close detaches long-lived subscribers.
func (s *Server) Close() {
	s.chatManager.Close()
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Session lifecycle
	mux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	mux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/auth/session", s.authH.Session)

	// Route resolution for the UI shell
	mux.HandleFunc("GET /api/routes/resolve", s.pageH.Resolve)

	// Browse surface
	mux.HandleFunc("GET /api/surf-spots", s.catalogH.SurfSpots)
	mux.HandleFunc("GET /api/surf-spots/{id}", s.catalogH.SurfSpot)
	mux.HandleFunc("GET /api/surf-spots/{id}/forum", s.forumH.Snapshot)
	mux.HandleFunc("GET /api/surf-spots/{id}/prevision", s.forecastH.Prevision)
	mux.HandleFunc("GET /api/surf-spots/{id}/windy", s.forecastH.Windy)
	mux.HandleFunc("GET /api/surf-clubs", s.catalogH.SurfClubs)
	mux.HandleFunc("GET /api/surf-clubs/{id}", s.catalogH.SurfClub)
	mux.HandleFunc("GET /api/surf-clubs/{id}/equipments", s.catalogH.ClubEquipments)
	mux.HandleFunc("GET /api/equipments/{id}", s.catalogH.EquipmentDetail)

	// Booking and cart
	requireAuth := middleware.RequireAuth(s.sessions)
	mux.Handle("POST /api/sessions/reserve", requireAuth(http.HandlerFunc(s.catalogH.ReserveSession)))
	mux.HandleFunc("GET /api/cart", s.cartH.Get)
	mux.HandleFunc("POST /api/cart/items", s.cartH.AddItem)
	mux.HandleFunc("DELETE /api/cart/items/{index}", s.cartH.RemoveItem)
	mux.HandleFunc("PUT /api/cart/quantity", s.cartH.SetQuantity)
	mux.Handle("POST /api/cart/checkout", requireAuth(http.HandlerFunc(s.cartH.Checkout)))

	// Chatbot widget
	mux.HandleFunc("POST /api/chat", s.chatbotH.Open)
	mux.HandleFunc("GET /api/chat/{handle}", s.chatbotH.Get)
	mux.HandleFunc("POST /api/chat/{handle}", s.chatbotH.Send)
	mux.HandleFunc("DELETE /api/chat/{handle}", s.chatbotH.Discard)

	// Surf-club dashboard. The forecast panel checks its own token so
	// it can report "omitted" instead of an error.
	requireClub := middleware.RequireRole(s.sessions, model.RoleSurfClub)
	mux.HandleFunc("GET /api/dashboard/forecast", s.dashboardH.Forecast)
	mux.Handle("GET /api/dashboard/statistics", requireClub(http.HandlerFunc(s.dashboardH.Statistics)))
	// Registered per method: a methodless pattern here conflicts with
	// the "GET /" fallback under the Go 1.22+ ServeMux rules.
	for _, m := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		mux.Handle(m+" /api/dashboard/resources/", requireClub(http.HandlerFunc(s.dashboardH.Resource)))
	}

	// Event and forum streams
	mux.HandleFunc("GET /ws/events", ws.HandleEvents(s.hub, s.logger.With("component", "websocket")))
	mux.HandleFunc("GET /ws/forums/{id}", s.forumH.Stream)

	mux.HandleFunc("GET /health", s.healthHandler)

	// Anything else is a page path: resolve it against the route
	// table and bounce unknown or role-gated paths home.
	mux.HandleFunc("GET /", s.pageFallback)

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) pageFallback(w http.ResponseWriter, r *http.Request) {
	m := s.table.Resolve(r.URL.Path, s.sessions.Role())
	if m == nil {
		http.Redirect(w, r, router.HomePath, http.StatusSeeOther)
		return
	}
	params := m.Params
	if params == nil {
		params = map[string]string{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"view": m.View, "params": params})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(h).ServeHTTP(w, r)
	}
}
