// Package calculator quotes repayments for bridging and short-term loans.
package calculator

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/dmitrijs2005/loandesk/internal/models"
)

// ShortTermLimit is the largest amount a short-term loan can be quoted for.
const ShortTermLimit = 50000

var (
	ErrShortTermLimit      = errors.New("short-term loans are limited to KES 50,000")
	ErrInvalidAmount       = errors.New("amount must be a positive number")
	ErrUnsupportedDuration = errors.New("unsupported duration")
	ErrUnsupportedLoanType = errors.New("unsupported loan type")
)

// Quote is the result of a calculation. InterestLabel is for display only.
type Quote struct {
	TotalRepayment float64 `json:"totalRepayment"`
	MonthlyPayment float64 `json:"monthlyPayment"`
	Months         int     `json:"months"`
	InterestRate   float64 `json:"interestRate"`
	InterestLabel  string  `json:"interestLabel"`
	TotalInterest  float64 `json:"totalInterest"`
}

type rule struct {
	duration string
	months   int
	rate     float64
	label    string
	// perMonth rates accrue simple interest every month, otherwise the rate
	// is charged once over the whole period.
	perMonth bool
}

// rules lists durations in display order; the first is the default.
var rules = map[models.LoanType][]rule{
	models.LoanBridging: {
		{duration: "10", months: 10, rate: 0.6, label: "60% over loan period"},
		{duration: "12", months: 12, rate: 0.7, label: "70% over loan period"},
	},
	models.LoanShortTerm: {
		{duration: "1", months: 1, rate: 0.2, label: "20% per month", perMonth: true},
		{duration: "2", months: 2, rate: 0.3, label: "30% per month", perMonth: true},
	},
}

// Calculate quotes amount borrowed as loanType over duration. Short-term
// amounts above ShortTermLimit yield a zero Quote and ErrShortTermLimit.
func Calculate(loanType models.LoanType, amount float64, duration string) (Quote, error) {
	if !(amount > 0) || math.IsInf(amount, 0) {
		return Quote{}, ErrInvalidAmount
	}
	options, ok := rules[loanType]
	if !ok {
		return Quote{}, fmt.Errorf("%w: %q", ErrUnsupportedLoanType, loanType)
	}
	if loanType == models.LoanShortTerm && amount > ShortTermLimit {
		return Quote{}, ErrShortTermLimit
	}

	i := slices.IndexFunc(options, func(r rule) bool { return r.duration == duration })
	if i < 0 {
		return Quote{}, fmt.Errorf("%w: %q for %s", ErrUnsupportedDuration, duration, loanType)
	}
	r := options[i]

	var total float64
	if r.perMonth {
		total = amount + amount*r.rate*float64(r.months)
	} else {
		total = amount * (1 + r.rate)
	}

	return Quote{
		TotalRepayment: total,
		MonthlyPayment: total / float64(r.months),
		Months:         r.months,
		InterestRate:   r.rate,
		InterestLabel:  r.label,
		TotalInterest:  total - amount,
	}, nil
}

// DurationOptions returns the selectable durations for loanType, default
// first. Unsupported types have none.
func DurationOptions(loanType models.LoanType) []string {
	var out []string
	for _, r := range rules[loanType] {
		out = append(out, r.duration)
	}
	return out
}

// DefaultDuration is the duration selected when loanType is picked.
func DefaultDuration(loanType models.LoanType) string {
	if opts := rules[loanType]; len(opts) > 0 {
		return opts[0].duration
	}
	return ""
}

// LoanTypes lists the loan types the calculator supports.
func LoanTypes() []models.LoanType {
	return []models.LoanType{models.LoanBridging, models.LoanShortTerm}
}
