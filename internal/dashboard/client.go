// Package dashboard is a client for the back-office REST API that owns the
// company profile, dashboard figures and team members.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/loandesk/internal/common"
	"github.com/dmitrijs2005/loandesk/internal/netx"
)

type Client struct {
	baseURL string
	http    *http.Client
	token   func(ctx context.Context) (string, error)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client, which times out after 15s.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithToken sets the source of the bearer token sent with every request.
func WithToken(fn func(ctx context.Context) (string, error)) Option {
	return func(cl *Client) { cl.token = fn }
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid dashboard api url %q", baseURL)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *Client) CompanyProfile(ctx context.Context) (*CompanyProfile, error) {
	var p CompanyProfile
	if err := c.do(ctx, http.MethodGet, "/company-profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateCompanyProfile(ctx context.Context, p CompanyProfile) (*CompanyProfile, error) {
	var out CompanyProfile
	if err := c.do(ctx, http.MethodPut, "/company-profile", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Metrics(ctx context.Context) (*DashboardMetrics, error) {
	var m DashboardMetrics
	if err := c.do(ctx, http.MethodGet, "/dashboard/metrics", nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) Activities(ctx context.Context) ([]Activity, error) {
	var out []Activity
	if err := c.do(ctx, http.MethodGet, "/dashboard/activities", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) TeamMembers(ctx context.Context) ([]TeamMember, error) {
	var out []TeamMember
	if err := c.do(ctx, http.MethodGet, "/team-members", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) TeamMember(ctx context.Context, id string) (*TeamMember, error) {
	var m TeamMember
	if err := c.do(ctx, http.MethodGet, "/team-members/"+url.PathEscape(id), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) CreateTeamMember(ctx context.Context, m TeamMember) (*TeamMember, error) {
	var out TeamMember
	if err := c.do(ctx, http.MethodPost, "/team-members", m, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTeamMember(ctx context.Context, id string, m TeamMember) (*TeamMember, error) {
	var out TeamMember
	if err := c.do(ctx, http.MethodPut, "/team-members/"+url.PathEscape(id), m, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTeamMember(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/team-members/"+url.PathEscape(id), nil, nil)
}

// do maps 401 to common.ErrNotAuthenticated and 404 to common.ErrNotFound;
// other failures keep the netx.StatusError.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var h http.Header
	if c.token != nil {
		tok, err := c.token(ctx)
		if err != nil {
			return fmt.Errorf("get token: %w", err)
		}
		if tok != "" {
			h = http.Header{"Authorization": []string{"Bearer " + tok}}
		}
	}

	err := netx.DoJSON(ctx, c.http, method, c.baseURL+path, h, in, out)
	var se *netx.StatusError
	if errors.As(err, &se) {
		switch se.Status {
		case http.StatusUnauthorized:
			return fmt.Errorf("%s %s: %w", method, path, common.ErrNotAuthenticated)
		case http.StatusNotFound:
			return fmt.Errorf("%s %s: %w", method, path, common.ErrNotFound)
		}
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	return nil
}
