package api

import (
	"net/http"

	"github.com/dmitrijs2005/loandesk/internal/auth"
	"github.com/dmitrijs2005/loandesk/internal/common"
	"github.com/dmitrijs2005/loandesk/internal/models"
	"github.com/dmitrijs2005/loandesk/internal/server/metrics"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	AccessToken string              `json:"access_token"`
	TokenType   string              `json:"token_type"`
	Session     *models.SessionView `json:"session"`
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	user, err := s.auth.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	user, session, err := s.auth.SignIn(r.Context(), req.Email, req.Password)
	metrics.RecordSignIn(err == nil)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	token, err := auth.GenerateToken(session.ID, s.secret, session.ExpiresAt)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, signInResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Session:     &models.SessionView{ID: session.ID, User: *user, ExpiresAt: session.ExpiresAt},
	})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	writeJSON(w, http.StatusOK, models.SessionView{ID: p.session.ID, User: *p.user, ExpiresAt: p.session.ExpiresAt})
}

// signOut ends every session, not just the caller's. Any authenticated user
// can therefore log every other user out. That fits a single-operator desk;
// a deployment with several staff accounts should put this route behind an
// admin check or scope it to the caller's session.
func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.SignOut(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resetRequest struct {
	Email      string `json:"email"`
	RedirectTo string `json:"redirect_to"`
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	err := s.auth.ResetPasswordForEmail(r.Context(), req.Email, auth.ResetOptions{RedirectTo: req.RedirectTo})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type passwordRequest struct {
	Password string `json:"password"`
}

func (s *Server) updatePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	p := principalFrom(r.Context())
	if p == nil {
		s.fail(w, r, common.ErrNotAuthenticated)
		return
	}
	user, err := s.auth.UpdatePasswordForSession(r.Context(), p.session.ID, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
