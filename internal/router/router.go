package router

import (
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/restodash/api/internal/config"
	"github.com/restodash/api/internal/editor"
	"github.com/restodash/api/internal/handler"
	mw "github.com/restodash/api/internal/middleware"
	"github.com/restodash/api/internal/service"
	"github.com/restodash/api/internal/staff"
	"github.com/restodash/api/internal/ws"
)

// Deps are the long-lived components the routes are served from.
type Deps struct {
	Dashboard *service.Dashboard
	Editor    *editor.Editor
	Staff     *staff.Repository
	Hub       *ws.Hub
}

// New creates a Chi router with all application routes wired up.
func New(cfg *config.Config, deps Deps) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{handler.PersistWarningHeader},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Change feed. Browsers connect from the dashboard origins only.
	ws.Upgrader.CheckOrigin = originChecker(cfg.AllowedOrigins)
	r.Get("/ws/{topic}", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(deps.Hub, w, r)
	})

	// Selected day, tables and orders
	orderHandler := handler.NewOrderHandler(deps.Dashboard)
	orderHandler.RegisterRoutes(r)

	// Menu, keyed by weekday
	menuHandler := handler.NewMenuHandler(deps.Dashboard)
	r.Route("/days/{day}/menu", func(r chi.Router) {
		r.Use(mw.RequireDay)
		menuHandler.RegisterRoutes(r)
	})

	// Order popup
	editorHandler := handler.NewEditorHandler(deps.Editor, deps.Dashboard)
	r.Route("/editor", editorHandler.RegisterRoutes)

	// Reports
	reportsHandler := handler.NewReportsHandler(deps.Dashboard, nil)
	r.Route("/reports", reportsHandler.RegisterRoutes)

	// Employees and roles
	staffHandler := handler.NewStaffHandler(deps.Staff)
	r.Route("/staff", staffHandler.RegisterRoutes)

	log.Println("Router initialized with all handlers")
	return r
}

// originChecker accepts requests without an Origin header (non-browser
// clients) and those whose origin is in allowed. "*" allows everything.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}
