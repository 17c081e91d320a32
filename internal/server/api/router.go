// Package api is the JSON-over-HTTP surface of LoanDesk.
package api

import (
	"net/http"

	"github.com/dmitrijs2005/loandesk/internal/applications"
	"github.com/dmitrijs2005/loandesk/internal/auth"
	"github.com/dmitrijs2005/loandesk/internal/dashboard"
	"github.com/dmitrijs2005/loandesk/internal/loans"
	"github.com/dmitrijs2005/loandesk/internal/logging"
	"github.com/dmitrijs2005/loandesk/internal/notifier"
	"github.com/dmitrijs2005/loandesk/internal/server/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps are the services the API serves. Dashboard may be nil, which leaves
// the back-office routes unmounted.
type Deps struct {
	Auth         *auth.Service
	Applications *applications.Store
	Desk         *loans.Desk
	Notifier     *notifier.Notifier
	Dashboard    *dashboard.Client

	SecretKey      string
	AllowedOrigins []string
	RateLimit      int
	RateBurst      int
	Logger         logging.Logger
}

type Server struct {
	auth      *auth.Service
	apps      *applications.Store
	desk      *loans.Desk
	notifier  *notifier.Notifier
	dashboard *dashboard.Client
	secret    []byte
	origins   []string
	limiter   *rateLimiter
	log       logging.Logger
}

func NewServer(d Deps) *Server {
	s := &Server{
		auth:      d.Auth,
		apps:      d.Applications,
		desk:      d.Desk,
		notifier:  d.Notifier,
		dashboard: d.Dashboard,
		secret:    []byte(d.SecretKey),
		origins:   d.AllowedOrigins,
		log:       d.Logger.With("module", "http_api"),
	}
	if d.RateLimit > 0 {
		s.limiter = newRateLimiter(d.RateLimit, d.RateBurst)
	}
	return s
}

// Router builds the chi router. /metrics sits outside /api/v1.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(metrics.InstrumentHandler)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", s.ping)

		r.Route("/auth", func(r chi.Router) {
			r.With(s.limit).Post("/signup", s.signUp)
			r.With(s.limit).Post("/signin", s.signIn)
			r.With(s.limit).Post("/password/reset", s.resetPassword)

			r.Group(func(r chi.Router) {
				r.Use(s.requireSession)
				r.Get("/session", s.session)
				r.Post("/signout", s.signOut)
				r.Put("/password", s.updatePassword)
				r.Get("/events", s.authEvents)
			})
		})

		r.Route("/applications", func(r chi.Router) {
			r.With(s.limit).Post("/", s.submitApplication)

			r.Group(func(r chi.Router) {
				r.Use(s.requireSession)
				r.Get("/", s.listApplications)
				r.Get("/stats", s.applicationStats)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.getApplication)
					r.Put("/", s.updateApplication)
					r.Delete("/", s.deleteApplication)
					r.Put("/status", s.changeStatus)
				})
			})
		})

		r.With(s.limit).Post("/calculator", s.calculate)
		r.With(s.requireSession).Get("/emails", s.sentEmails)

		if s.dashboard != nil {
			r.With(s.requireSession).Route("/backoffice", s.backofficeRoutes)
		}
	})

	return r
}

func (s *Server) limit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return s.limiter.Handler(next)
}

// SweepRateLimits drops idle rate limit buckets; the scheduler calls it.
func (s *Server) SweepRateLimits() {
	if s.limiter != nil {
		s.limiter.cleanup()
	}
}

func (s *Server) ping(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}
