package api

import (
	"net/http"

	"github.com/dmitrijs2005/loandesk/internal/calculator"
	"github.com/dmitrijs2005/loandesk/internal/models"
)

type quoteRequest struct {
	LoanType models.LoanType `json:"loanType"`
	Amount   float64         `json:"amount"`
	Duration string          `json:"duration"`
}

// calculate quotes a loan. An empty duration picks the loan type's default.
func (s *Server) calculate(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Duration == "" {
		req.Duration = calculator.DefaultDuration(req.LoanType)
	}

	q, err := calculator.Calculate(req.LoanType, req.Amount, req.Duration)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}
