package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/loandesk/internal/common"
	"github.com/dmitrijs2005/loandesk/internal/netx"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-memory back office served with chi.
type fakeAPI struct {
	mu      sync.Mutex
	profile CompanyProfile
	members map[string]TeamMember
	seq     int
	token   string
}

func (f *fakeAPI) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if f.token != "" && req.Header.Get("Authorization") != "Bearer "+f.token {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/company-profile", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, f.profile)
	})
	r.Put("/company-profile", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewDecoder(req.Body).Decode(&f.profile)
		writeJSON(w, f.profile)
	})
	r.Get("/dashboard/metrics", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, DashboardMetrics{TotalApplications: 4, PendingApplications: 2, TotalDisbursed: 150000})
	})
	r.Get("/dashboard/activities", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []Activity{{ID: "1", Type: "application", Description: "APP-001 submitted",
			Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}})
	})
	r.Route("/team-members", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			f.mu.Lock()
			defer f.mu.Unlock()
			out := []TeamMember{}
			for i := 1; i <= f.seq; i++ {
				if m, ok := f.members[string(rune('0'+i))]; ok {
					out = append(out, m)
				}
			}
			writeJSON(w, out)
		})
		r.Post("/", func(w http.ResponseWriter, req *http.Request) {
			f.mu.Lock()
			defer f.mu.Unlock()
			var m TeamMember
			_ = json.NewDecoder(req.Body).Decode(&m)
			f.seq++
			m.ID = string(rune('0' + f.seq))
			f.members[m.ID] = m
			w.WriteHeader(http.StatusCreated)
			writeJSON(w, m)
		})
		r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
			f.mu.Lock()
			defer f.mu.Unlock()
			m, ok := f.members[chi.URLParam(req, "id")]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			writeJSON(w, m)
		})
		r.Put("/{id}", func(w http.ResponseWriter, req *http.Request) {
			f.mu.Lock()
			defer f.mu.Unlock()
			id := chi.URLParam(req, "id")
			if _, ok := f.members[id]; !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			var m TeamMember
			_ = json.NewDecoder(req.Body).Decode(&m)
			m.ID = id
			f.members[id] = m
			writeJSON(w, m)
		})
		r.Delete("/{id}", func(w http.ResponseWriter, req *http.Request) {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.members, chi.URLParam(req, "id"))
			w.WriteHeader(http.StatusNoContent)
		})
	})
	r.Get("/broken", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, api *fakeAPI, opts ...Option) *Client {
	t.Helper()
	if api.members == nil {
		api.members = map[string]TeamMember{}
	}
	ts := httptest.NewServer(api.routes())
	t.Cleanup(ts.Close)

	c, err := NewClient(ts.URL+"/", append([]Option{WithHTTPClient(ts.Client())}, opts...)...)
	require.NoError(t, err)
	return c
}

func TestNewClient_InvalidURL(t *testing.T) {
	for _, u := range []string{"", "not a url", "/relative"} {
		_, err := NewClient(u)
		require.Error(t, err, u)
	}
}

func TestClient_CompanyProfile(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, &fakeAPI{profile: CompanyProfile{Name: "LoanDesk Ltd"}})

	p, err := c.CompanyProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "LoanDesk Ltd", p.Name)

	p.Phone = "+254700000000"
	updated, err := c.UpdateCompanyProfile(ctx, *p)
	require.NoError(t, err)
	assert.Equal(t, "+254700000000", updated.Phone)
}

func TestClient_DashboardFigures(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, &fakeAPI{})

	m, err := c.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, m.TotalApplications)
	assert.Equal(t, 150000.0, m.TotalDisbursed)

	acts, err := c.Activities(ctx)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, "APP-001 submitted", acts[0].Description)
}

func TestClient_TeamMembersCRUD(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, &fakeAPI{})

	created, err := c.CreateTeamMember(ctx, TeamMember{Name: "Ann", Email: "ann@example.com", Role: "officer", IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "1", created.ID)

	got, err := c.TeamMember(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *got)

	got.Role = "manager"
	updated, err := c.UpdateTeamMember(ctx, got.ID, *got)
	require.NoError(t, err)
	assert.Equal(t, "manager", updated.Role)

	list, err := c.TeamMembers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []TeamMember{*updated}, list)

	require.NoError(t, c.DeleteTeamMember(ctx, got.ID))

	_, err = c.TeamMember(ctx, got.ID)
	require.ErrorIs(t, err, common.ErrNotFound)

	_, err = c.UpdateTeamMember(ctx, "9", TeamMember{})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestClient_Token(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{token: "secret"}

	anon := newTestClient(t, api)
	_, err := anon.Metrics(ctx)
	require.ErrorIs(t, err, common.ErrNotAuthenticated)

	authed := newTestClient(t, api, WithToken(func(context.Context) (string, error) { return "secret", nil }))
	_, err = authed.Metrics(ctx)
	require.NoError(t, err)

	failing := newTestClient(t, api, WithToken(func(context.Context) (string, error) { return "", errors.New("no session") }))
	_, err = failing.Metrics(ctx)
	require.ErrorContains(t, err, "no session")
}

func TestClient_OtherStatusKeepsStatusError(t *testing.T) {
	c := newTestClient(t, &fakeAPI{})
	err := c.do(context.Background(), http.MethodGet, "/broken", nil, nil)

	var se *netx.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Status)
}
