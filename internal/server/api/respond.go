package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/loandesk/internal/applications"
	"github.com/dmitrijs2005/loandesk/internal/calculator"
	"github.com/dmitrijs2005/loandesk/internal/common"
	"github.com/dmitrijs2005/loandesk/internal/netx"
)

const maxBodyBytes = 10 << 20

type errorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fail maps err onto a status code. Anything unexpected is logged and
// answered with a generic 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, resp)
}

func statusFor(err error) (int, errorResponse) {
	var (
		fe *applications.FieldError
		se *netx.StatusError
	)
	switch {
	case errors.As(err, &fe):
		return http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: fe.Fields}
	case errors.Is(err, common.ErrValidation),
		errors.Is(err, calculator.ErrShortTermLimit),
		errors.Is(err, calculator.ErrInvalidAmount),
		errors.Is(err, calculator.ErrUnsupportedDuration),
		errors.Is(err, calculator.ErrUnsupportedLoanType):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid credentials"}
	case errors.Is(err, common.ErrNotAuthenticated),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, errorResponse{Error: "not authenticated"}
	case errors.Is(err, common.ErrDuplicateUser):
		return http.StatusConflict, errorResponse{Error: "user already exists"}
	case errors.Is(err, common.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: "user not found"}
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: "not found"}
	case errors.As(err, &se):
		return http.StatusBadGateway, errorResponse{Error: "back office unavailable"}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "internal error"}
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", common.ErrValidation, err)
	}
	return nil
}
