package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/loandesk/internal/models"
)

const signature = "Kind regards,\nThe LoanDesk Team"

var statusMessages = map[models.Status]string{
	models.StatusApproved: "Congratulations! Your loan application has been approved. " +
		"One of our loan officers will contact you shortly to arrange disbursement.",
	models.StatusRejected: "We regret to inform you that your loan application was not approved at this time. " +
		"You are welcome to apply again or contact us to discuss other options.",
	models.StatusPending: "Your loan application is under review. " +
		"We will notify you as soon as a decision has been made.",
}

// ApplicationReceived confirms a new submission. date is printed as the
// submission date.
func ApplicationReceived(app models.LoanApplication, date time.Time) models.Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", app.Name)
	b.WriteString("Thank you for applying with LoanDesk. We have received your application.\n\n")
	fmt.Fprintf(&b, "Application ID: %s\n", app.ID)
	fmt.Fprintf(&b, "Loan Type: %s\n", app.LoanType.Label())
	fmt.Fprintf(&b, "Amount: %s\n", app.Amount)
	fmt.Fprintf(&b, "Date: %s\n\n", date.Format("January 2, 2006"))
	b.WriteString("Our team will review your application and get back to you within 24 hours.\n\n")
	b.WriteString(signature)

	return models.Email{
		To:      app.Email,
		Subject: fmt.Sprintf("Application Received - %s", app.ID),
		Body:    b.String(),
	}
}

// StatusChanged tells the applicant about the current status of app.
func StatusChanged(app models.LoanApplication) models.Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", app.Name)
	b.WriteString(StatusMessage(app.Status))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Application ID: %s\n", app.ID)
	fmt.Fprintf(&b, "Loan Type: %s\n", app.LoanType.Label())
	fmt.Fprintf(&b, "Amount: %s\n", app.Amount)
	fmt.Fprintf(&b, "Status: %s\n\n", strings.ToUpper(string(app.Status)))
	b.WriteString(signature)

	return models.Email{
		To:      app.Email,
		Subject: fmt.Sprintf("Application %s - %s", app.ID, statusTitle(app.Status)),
		Body:    b.String(),
	}
}

// StatusMessage is the canned paragraph for status.
func StatusMessage(status models.Status) string {
	if m, ok := statusMessages[status]; ok {
		return m
	}
	return fmt.Sprintf("The status of your loan application is now %s.", status)
}

func statusTitle(status models.Status) string {
	switch status {
	case models.StatusApproved:
		return "Approved"
	case models.StatusRejected:
		return "Not Approved"
	default:
		return "Under Review"
	}
}

// PasswordReset carries the reset link. An empty redirectTo produces a
// message without a link.
func PasswordReset(email, redirectTo string) models.Email {
	var b strings.Builder
	b.WriteString("Hello,\n\n")
	b.WriteString("We received a request to reset the password for your LoanDesk account.\n")
	if redirectTo != "" {
		fmt.Fprintf(&b, "Follow this link to choose a new password:\n%s\n", redirectTo)
	}
	b.WriteString("\nIf you did not request a reset you can ignore this email.\n\n")
	b.WriteString(signature)

	return models.Email{To: email, Subject: "Reset your password", Body: b.String()}
}
