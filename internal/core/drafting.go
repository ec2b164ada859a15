package core

import "fmt"

const followupBodyTemplate = `Dear %s,

This is a reminder regarding the following overdue invoice:

Invoice ID: %s
Amount: %s
Days Overdue: %d

We kindly request that you review and process the outstanding payment
at your earliest convenience.

If the invoice is under dispute, please let us know.

Best regards,
Accounts Receivable`

// DraftFollowupEmail composes a reminder email for one overdue invoice.
// Pure function: identical input yields byte-identical output. The
// salutation uses the customer name, falling back to a generic greeting.
func DraftFollowupEmail(inv Invoice) EmailDraft {
	salutation := inv.Customer
	if salutation == "" {
		salutation = "Finance Team"
	}

	return EmailDraft{
		Subject: fmt.Sprintf("Overdue Invoice Reminder – %s (%d days overdue)",
			inv.InvoiceID, inv.DaysOverdue),
		Body: fmt.Sprintf(followupBodyTemplate,
			salutation, inv.InvoiceID, inv.TotalAmount.StringFixed(2), inv.DaysOverdue),
	}
}
