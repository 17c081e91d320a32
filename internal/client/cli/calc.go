package cli

import (
	"context"

	"github.com/dmitrijs2005/loandesk/internal/calculator"
	"github.com/dmitrijs2005/loandesk/internal/currency"
	"github.com/dmitrijs2005/loandesk/internal/models"
)

// Calc quotes a loan interactively. Empty answers keep the form defaults.
func (a *App) Calc(ctx context.Context) error {
	f := calculator.NewForm()

	types := make([]string, 0, 2)
	for _, t := range calculator.LoanTypes() {
		types = append(types, string(t))
	}
	lt, err := GetChoice(a.reader, "Loan type", types, string(f.LoanType()), a.out)
	if err != nil {
		return err
	}
	if err := f.SetLoanType(models.LoanType(lt)); err != nil {
		return err
	}

	d, err := GetChoice(a.reader, "Duration in months", calculator.DurationOptions(f.LoanType()), f.Duration(), a.out)
	if err != nil {
		return err
	}
	if err := f.SetDuration(d); err != nil {
		return err
	}

	amount, err := GetAmount(a.reader, "Amount (KES)", a.out)
	if err != nil {
		return err
	}
	f.SetAmount(amount)

	q, err := f.Quote()
	if err != nil {
		return err
	}
	a.printf("Interest: %s\nTotal interest: %s\nTotal repayment: %s\nMonthly payment: %s over %d months\n",
		q.InterestLabel, currency.Format(q.TotalInterest), currency.Format(q.TotalRepayment),
		currency.Format(q.MonthlyPayment), q.Months)
	return nil
}

// Emails prints the outgoing mail log, newest last.
func (a *App) Emails(ctx context.Context) error {
	sent, err := a.mail.Sent(ctx)
	if err != nil {
		return err
	}
	if len(sent) == 0 {
		a.printf("No emails sent\n")
		return nil
	}
	for _, e := range sent {
		a.printf("%s  %s  %s\n", e.SentAt.Local().Format("2006-01-02 15:04"), e.To, e.Subject)
	}
	return nil
}
