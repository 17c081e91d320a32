package calculator

import (
	"fmt"
	"slices"

	"github.com/dmitrijs2005/loandesk/internal/models"
)

// Form holds the calculator inputs between edits. Picking a loan type
// always resets the duration to that type's default.
type Form struct {
	loanType models.LoanType
	duration string
	amount   float64
}

// NewForm starts on a bridging loan with its default duration.
func NewForm() *Form {
	return &Form{loanType: models.LoanBridging, duration: DefaultDuration(models.LoanBridging)}
}

func (f *Form) LoanType() models.LoanType { return f.loanType }
func (f *Form) Duration() string          { return f.duration }
func (f *Form) Amount() float64           { return f.amount }

func (f *Form) SetLoanType(t models.LoanType) error {
	if _, ok := rules[t]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedLoanType, t)
	}
	f.loanType = t
	f.duration = DefaultDuration(t)
	return nil
}

func (f *Form) SetDuration(d string) error {
	if !slices.Contains(DurationOptions(f.loanType), d) {
		return fmt.Errorf("%w: %q for %s", ErrUnsupportedDuration, d, f.loanType)
	}
	f.duration = d
	return nil
}

func (f *Form) SetAmount(v float64) {
	f.amount = v
}

// Quote calculates with the current inputs.
func (f *Form) Quote() (Quote, error) {
	return Calculate(f.loanType, f.amount, f.duration)
}
