package api

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/loandesk/internal/common"
	"github.com/dmitrijs2005/loandesk/internal/models"
	"github.com/dmitrijs2005/loandesk/internal/server/metrics"
	"github.com/go-chi/chi/v5"
)

// submitApplication is public: applicants are not signed in.
func (s *Server) submitApplication(w http.ResponseWriter, r *http.Request) {
	var in models.NewApplication
	if err := decodeJSON(w, r, &in); err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := s.desk.Submit(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	metrics.RecordApplicationSubmitted(string(res.Application.LoanType))
	if !res.Notified {
		metrics.RecordNotificationFailure()
	}
	writeJSON(w, http.StatusCreated, res)
}

// listApplications serves ?q= (search) and ?status= (filter). With both set
// the search result is narrowed by status.
func (s *Server) listApplications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	status := models.StatusAll
	if v := r.URL.Query().Get("status"); v != "" {
		st, err := models.ParseStatus(v)
		if err != nil {
			s.fail(w, r, common.ErrValidation)
			return
		}
		status = st
	}

	var (
		apps []models.LoanApplication
		err  error
	)
	if q != "" {
		apps, err = s.apps.Search(ctx, q)
	} else {
		apps, err = s.apps.FilterByStatus(ctx, status)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if q != "" && status != models.StatusAll {
		filtered := apps[:0]
		for _, a := range apps {
			if a.Status == status {
				filtered = append(filtered, a)
			}
		}
		apps = filtered
	}
	if apps == nil {
		apps = []models.LoanApplication{}
	}
	writeJSON(w, http.StatusOK, apps)
}

func (s *Server) applicationStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.apps.Stats(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) getApplication(w http.ResponseWriter, r *http.Request) {
	app, err := s.apps.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if app == nil {
		s.fail(w, r, common.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (s *Server) updateApplication(w http.ResponseWriter, r *http.Request) {
	var patch models.ApplicationPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.fail(w, r, err)
		return
	}

	app, err := s.apps.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if app == nil {
		s.fail(w, r, common.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (s *Server) deleteApplication(w http.ResponseWriter, r *http.Request) {
	ok, err := s.apps.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !ok {
		s.fail(w, r, common.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type statusRequest struct {
	Status models.Status `json:"status"`
}

// changeStatus is the reviewer decision: it updates the status and emails
// the applicant.
func (s *Server) changeStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := s.desk.ChangeStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if res == nil {
		s.fail(w, r, common.ErrNotFound)
		return
	}

	metrics.RecordStatusChange(string(req.Status))
	if !res.Notified {
		metrics.RecordNotificationFailure()
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) sentEmails(w http.ResponseWriter, r *http.Request) {
	sent, err := s.notifier.Sent(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if sent == nil {
		sent = []models.SentEmail{}
	}
	writeJSON(w, http.StatusOK, sent)
}
