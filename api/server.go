/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/employees/*      Employees, periods, weeks, figures
  /api/rules            Absence and contract rule tables
  /api/holidays         Holiday calendar
  /api/audit/*          Legacy dataset import
  /api/scenarios/*      Demo scenarios

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions tunes the router.
type RouterOptions struct {
	AllowedOrigins []string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetEmployee)
				r.Get("/periods", h.ListPeriods)
				r.Post("/periods", h.SavePeriod)

				r.Get("/weeks", h.ListWeeks)
				r.Route("/weeks/{week}", func(r chi.Router) {
					r.Get("/", h.GetWeek)
					r.Put("/", h.EditWeek)
					r.Post("/preview", h.PreviewWeek)
					r.Post("/confirm", h.ConfirmWeek)
					r.Post("/unlock", h.UnlockWeek)
					r.Post("/reconcile", h.ReconcileWeek)
				})

				r.Get("/balances", h.GetBalances)
				r.Get("/timeline", h.GetTimeline)
				r.Get("/annual/{year}", h.GetAnnualHours)
				r.Get("/vacation/{year}", h.GetVacation)
				r.Get("/budgets/{year}", h.GetBudgets)
				r.Post("/reconcile", h.ReconcileAll)
			})
		})

		r.Get("/rules", h.GetRules)
		r.Put("/rules", h.PutRules)
		r.Get("/holidays", h.ListHolidays)
		r.Post("/audit/expected", h.ImportExpected)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
