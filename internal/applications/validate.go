package applications

import (
	"fmt"
	"math"
	"strings"

	"github.com/dmitrijs2005/loandesk/internal/common"
	"github.com/dmitrijs2005/loandesk/internal/currency"
	"github.com/dmitrijs2005/loandesk/internal/models"
)

// FieldError lists the offending fields of a rejected submission or edit.
type FieldError struct {
	Fields []string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: invalid fields: %s", common.ErrValidation, strings.Join(e.Fields, ", "))
}

func (e *FieldError) Unwrap() error {
	return common.ErrValidation
}

func validate(in models.NewApplication) error {
	var bad []string
	required := []struct {
		name, value string
	}{
		{"name", in.Name},
		{"idNumber", in.IDNumber},
		{"email", in.Email},
		{"phone", in.Phone},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			bad = append(bad, f.name)
		}
	}
	if !in.LoanType.Valid() {
		bad = append(bad, "loanType")
	}
	if !in.SecurityType.Valid() {
		bad = append(bad, "securityType")
	}
	if !validAmount(in.AmountValue) {
		bad = append(bad, "amountValue")
	}
	if len(bad) > 0 {
		return &FieldError{Fields: bad}
	}
	return nil
}

func validAmount(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// apply merges p into app, re-deriving Amount. It leaves app untouched on
// error.
func apply(app *models.LoanApplication, p models.ApplicationPatch) error {
	next := *app
	var bad []string

	setText := func(name string, dst *string, v *string) {
		if v == nil {
			return
		}
		if strings.TrimSpace(*v) == "" {
			bad = append(bad, name)
			return
		}
		*dst = strings.TrimSpace(*v)
	}
	setText("name", &next.Name, p.Name)
	setText("idNumber", &next.IDNumber, p.IDNumber)
	setText("email", &next.Email, p.Email)
	setText("phone", &next.Phone, p.Phone)

	if p.LoanType != nil {
		if !p.LoanType.Valid() {
			bad = append(bad, "loanType")
		} else {
			next.LoanType = *p.LoanType
		}
	}
	if p.SecurityType != nil {
		if !p.SecurityType.Valid() {
			bad = append(bad, "securityType")
		} else {
			next.SecurityType = *p.SecurityType
		}
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			bad = append(bad, "status")
		} else {
			next.Status = *p.Status
		}
	}
	if p.Message != nil {
		next.Message = *p.Message
	}
	if p.Documents != nil {
		next.Documents = p.Documents
	}

	switch {
	case p.Amount != nil:
		v, err := currency.Parse(*p.Amount)
		if err != nil || !validAmount(v) {
			bad = append(bad, "amount")
		} else {
			next.AmountValue = v
		}
	case p.AmountValue != nil:
		if !validAmount(*p.AmountValue) {
			bad = append(bad, "amountValue")
		} else {
			next.AmountValue = *p.AmountValue
		}
	}
	next.Amount = currency.Format(next.AmountValue)

	if len(bad) > 0 {
		return &FieldError{Fields: bad}
	}
	*app = next
	return nil
}
