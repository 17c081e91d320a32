package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/loandesk/internal/applications"
	"github.com/dmitrijs2005/loandesk/internal/common"
	"github.com/dmitrijs2005/loandesk/internal/loans"
	"github.com/dmitrijs2005/loandesk/internal/models"
)

var (
	loanTypeNames = []string{
		string(models.LoanBridging), string(models.LoanShortTerm), string(models.LoanAssetFinance),
		string(models.LoanLogbook), string(models.LoanBusiness),
	}
	securityTypeNames = []string{
		string(models.SecurityLandTitle), string(models.SecurityMotorVehicle), string(models.SecurityShares),
		string(models.SecurityGuarantor), string(models.SecurityOther),
	}
)

// Apply walks the applicant through the submission form.
func (a *App) Apply(ctx context.Context) error {
	var in models.NewApplication

	for _, f := range []struct {
		prompt string
		dst    *string
	}{
		{"Full name", &in.Name},
		{"ID number", &in.IDNumber},
		{"Email", &in.Email},
		{"Phone", &in.Phone},
	} {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	lt, err := GetChoice(a.reader, "Loan type", loanTypeNames, "", a.out)
	if err != nil {
		return err
	}
	in.LoanType = models.LoanType(lt)

	st, err := GetChoice(a.reader, "Security", securityTypeNames, "", a.out)
	if err != nil {
		return err
	}
	in.SecurityType = models.SecurityType(st)

	in.AmountValue, err = GetAmount(a.reader, "Amount (KES)", a.out)
	if err != nil {
		return err
	}

	in.Message, err = GetMultiline(a.reader, "Message (optional)", a.out)
	if err != nil {
		return err
	}

	res, err := a.desk.Submit(ctx, in)
	var fe *applications.FieldError
	if errors.As(err, &fe) {
		a.printf("Please fill in: %s\n", strings.Join(fe.Fields, ", "))
		return nil
	}
	if err != nil {
		return err
	}

	a.printf("Application %s received for %s\n", res.Application.ID, res.Application.Amount)
	a.printNotified(res)
	return nil
}

func (a *App) List(ctx context.Context, status string) error {
	st := models.StatusAll
	if status != "" {
		var err error
		if st, err = models.ParseStatus(status); err != nil {
			return err
		}
	}
	apps, err := a.apps.FilterByStatus(ctx, st)
	if err != nil {
		return err
	}
	a.printTable(apps)
	return nil
}

func (a *App) Search(ctx context.Context, query string) error {
	apps, err := a.apps.Search(ctx, query)
	if err != nil {
		return err
	}
	a.printTable(apps)
	return nil
}

func (a *App) Show(ctx context.Context, id string) error {
	app, err := a.apps.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if app == nil {
		return fmt.Errorf("%s: %w", id, common.ErrNotFound)
	}

	a.outMu.Lock()
	defer a.outMu.Unlock()
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for _, row := range [][2]string{
		{"ID", app.ID},
		{"Name", app.Name},
		{"ID number", app.IDNumber},
		{"Email", app.Email},
		{"Phone", app.Phone},
		{"Loan", app.LoanType.Label()},
		{"Security", string(app.SecurityType)},
		{"Amount", app.Amount},
		{"Status", string(app.Status)},
		{"Submitted", app.CreatedAt.Local().Format("2006-01-02 15:04")},
		{"Updated", app.UpdatedAt.Local().Format("2006-01-02 15:04")},
	} {
		fmt.Fprintf(w, "%s:\t%s\n", row[0], row[1])
	}
	if app.Message != "" {
		fmt.Fprintf(w, "Message:\t%s\n", app.Message)
	}
	for _, d := range app.Documents {
		fmt.Fprintf(w, "Document:\t%s (%s)\n", d.Name, d.Type)
	}
	return w.Flush()
}

func (a *App) SetStatus(ctx context.Context, id, status string) error {
	res, err := a.desk.ChangeStatus(ctx, id, models.Status(status))
	if err != nil {
		return err
	}
	if res == nil {
		return fmt.Errorf("%s: %w", id, common.ErrNotFound)
	}
	a.printf("%s is now %s\n", res.Application.ID, res.Application.Status)
	a.printNotified(res)
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	ok, err := a.apps.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", id, common.ErrNotFound)
	}
	a.printf("Deleted %s\n", id)
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	s, err := a.apps.Stats(ctx)
	if err != nil {
		return err
	}
	a.printf("Total: %d  Pending: %d  Approved: %d  Rejected: %d\nTotal amount: %s  Average: %s\n",
		s.Total, s.Pending, s.Approved, s.Rejected, s.TotalAmount, s.AvgAmount)
	return nil
}

func (a *App) printNotified(res *loans.Result) {
	if res.Notified {
		a.printf("Applicant notified at %s\n", res.Application.Email)
		return
	}
	a.printf("Applicant could not be notified: %s\n", res.NotifyError)
}

func (a *App) printTable(apps []models.LoanApplication) {
	a.outMu.Lock()
	defer a.outMu.Unlock()

	if len(apps) == 0 {
		fmt.Fprintln(a.out, "No applications")
		return
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tLOAN\tAMOUNT\tSTATUS\tSUBMITTED")
	for _, app := range apps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", app.ID, app.Name, app.LoanType.Label(),
			app.Amount, app.Status, app.CreatedAt.Local().Format("2006-01-02"))
	}
	_ = w.Flush()
}
