// Package loans ties application intake to applicant notifications.
package loans

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/loandesk/internal/common"
	"github.com/dmitrijs2005/loandesk/internal/logging"
	"github.com/dmitrijs2005/loandesk/internal/models"
	"github.com/dmitrijs2005/loandesk/internal/notifier"
)

// ApplicationStore is the part of applications.Store the desk needs.
type ApplicationStore interface {
	Create(ctx context.Context, in models.NewApplication) (*models.LoanApplication, error)
	Update(ctx context.Context, id string, patch models.ApplicationPatch) (*models.LoanApplication, error)
}

// Mailer is implemented by notifier.Notifier.
type Mailer interface {
	SendEmail(ctx context.Context, e models.Email) (notifier.SendResult, error)
}

// Result is the outcome of a desk operation. Notified is false when the
// applicant email failed; NotifyError then says why.
type Result struct {
	Application *models.LoanApplication `json:"application"`
	Notified    bool                    `json:"notified"`
	NotifyError string                  `json:"notifyError,omitempty"`
}

type Desk struct {
	apps   ApplicationStore
	mailer Mailer
	now    func() time.Time
	log    logging.Logger
}

func NewDesk(apps ApplicationStore, mailer Mailer, log logging.Logger) *Desk {
	return &Desk{apps: apps, mailer: mailer, now: time.Now, log: log.With("component", "desk")}
}

// Submit stores a new application and sends the confirmation. A failed
// email never undoes the submission.
func (d *Desk) Submit(ctx context.Context, in models.NewApplication) (*Result, error) {
	app, err := d.apps.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	res := &Result{Application: app}
	d.notify(ctx, res, notifier.ApplicationReceived(*app, d.now()))
	return res, nil
}

// ChangeStatus moves the application to status and emails the applicant.
// It returns (nil, nil) for an unknown id.
func (d *Desk) ChangeStatus(ctx context.Context, id string, status models.Status) (*Result, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: status %q", common.ErrValidation, status)
	}
	app, err := d.apps.Update(ctx, id, models.ApplicationPatch{Status: &status})
	if err != nil || app == nil {
		return nil, err
	}
	res := &Result{Application: app}
	d.notify(ctx, res, notifier.StatusChanged(*app))
	return res, nil
}

func (d *Desk) notify(ctx context.Context, res *Result, e models.Email) {
	if _, err := d.mailer.SendEmail(ctx, e); err != nil {
		d.log.Warn(ctx, "applicant notification failed", "id", res.Application.ID, "error", err)
		res.NotifyError = err.Error()
		return
	}
	res.Notified = true
}
