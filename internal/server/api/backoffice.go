package api

import (
	"net/http"

	"github.com/dmitrijs2005/loandesk/internal/dashboard"
	"github.com/go-chi/chi/v5"
)

// backofficeRoutes forwards reviewer requests to the back-office API with
// the caller's own token.
func (s *Server) backofficeRoutes(r chi.Router) {
	r.Get("/company-profile", s.companyProfile)
	r.Put("/company-profile", s.updateCompanyProfile)
	r.Get("/metrics", s.dashboardMetrics)
	r.Get("/activities", s.activities)

	r.Route("/team-members", func(r chi.Router) {
		r.Get("/", s.teamMembers)
		r.Post("/", s.createTeamMember)
		r.Get("/{id}", s.teamMember)
		r.Put("/{id}", s.updateTeamMember)
		r.Delete("/{id}", s.deleteTeamMember)
	})
}

func (s *Server) companyProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.dashboard.CompanyProfile(r.Context())
	s.proxied(w, r, http.StatusOK, p, err)
}

func (s *Server) updateCompanyProfile(w http.ResponseWriter, r *http.Request) {
	var in dashboard.CompanyProfile
	if err := decodeJSON(w, r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.dashboard.UpdateCompanyProfile(r.Context(), in)
	s.proxied(w, r, http.StatusOK, p, err)
}

func (s *Server) dashboardMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := s.dashboard.Metrics(r.Context())
	s.proxied(w, r, http.StatusOK, m, err)
}

func (s *Server) activities(w http.ResponseWriter, r *http.Request) {
	a, err := s.dashboard.Activities(r.Context())
	if a == nil {
		a = []dashboard.Activity{}
	}
	s.proxied(w, r, http.StatusOK, a, err)
}

func (s *Server) teamMembers(w http.ResponseWriter, r *http.Request) {
	m, err := s.dashboard.TeamMembers(r.Context())
	if m == nil {
		m = []dashboard.TeamMember{}
	}
	s.proxied(w, r, http.StatusOK, m, err)
}

func (s *Server) teamMember(w http.ResponseWriter, r *http.Request) {
	m, err := s.dashboard.TeamMember(r.Context(), chi.URLParam(r, "id"))
	s.proxied(w, r, http.StatusOK, m, err)
}

func (s *Server) createTeamMember(w http.ResponseWriter, r *http.Request) {
	var in dashboard.TeamMember
	if err := decodeJSON(w, r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	m, err := s.dashboard.CreateTeamMember(r.Context(), in)
	s.proxied(w, r, http.StatusCreated, m, err)
}

func (s *Server) updateTeamMember(w http.ResponseWriter, r *http.Request) {
	var in dashboard.TeamMember
	if err := decodeJSON(w, r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	m, err := s.dashboard.UpdateTeamMember(r.Context(), chi.URLParam(r, "id"), in)
	s.proxied(w, r, http.StatusOK, m, err)
}

func (s *Server) deleteTeamMember(w http.ResponseWriter, r *http.Request) {
	if err := s.dashboard.DeleteTeamMember(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) proxied(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, status, v)
}
