package repl

import (
	"fmt"
	"strings"

	"finops-agent/internal/app"
	"finops-agent/internal/core"
)

func printInvoices(invoices []core.Invoice, minimumDays int) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 78))
	fmt.Printf("  OVERDUE INVOICES — at least %d days overdue\n", minimumDays)
	fmt.Println(strings.Repeat("=", 78))
	if len(invoices) == 0 {
		fmt.Println("  No overdue invoices found.")
		fmt.Println(strings.Repeat("=", 78))
		return
	}
	fmt.Printf("  %-10s %-24s %8s %12s  %s\n", "INVOICE", "CUSTOMER", "DAYS", "AMOUNT", "EMAIL")
	fmt.Println(strings.Repeat("-", 78))
	for _, inv := range invoices {
		email := "(none)"
		if inv.CustomerEmail != nil && *inv.CustomerEmail != "" {
			email = *inv.CustomerEmail
		}
		fmt.Printf("  %-10s %-24s %8d %12s  %s\n",
			inv.InvoiceID, inv.Customer, inv.DaysOverdue, inv.TotalAmount.StringFixed(2), email)
	}
	fmt.Println(strings.Repeat("=", 78))
}

func printRisk(results []core.RiskAssessment) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Println("  RISK ASSESSMENT")
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %-10s %-24s %8s %10s\n", "INVOICE", "CUSTOMER", "DAYS", "RISK")
	fmt.Println(strings.Repeat("-", 62))
	for _, r := range results {
		fmt.Printf("  %-10s %-24s %8d %10s\n", r.InvoiceID, r.Customer, r.DaysOverdue, r.RiskLevel)
	}
	fmt.Println(strings.Repeat("=", 62))
}

func printPending(pending app.PendingAction) {
	fmt.Println()
	fmt.Println(strings.Repeat("-", 62))
	fmt.Printf("  PENDING ACTION: %s (%d email(s))\n", pending.Kind, len(pending.Payload))
	fmt.Println(strings.Repeat("-", 62))
	for _, item := range pending.Payload {
		fmt.Printf("  Invoice: %s\n", item.Invoice.InvoiceID)
		fmt.Printf("  Subject: %s\n", item.Draft.Subject)
		fmt.Println(strings.Repeat("-", 62))
	}
	fmt.Println("  Reply yes to send, or no to cancel.")
}

func printHelp() {
	fmt.Println()
	fmt.Println("FINANCE OPERATIONS AGENT — COMMANDS")
	fmt.Println(strings.Repeat("=", 62))
	fmt.Println()
	fmt.Println("  RECEIVABLES")
	fmt.Println("  /invoices [min-days] [limit]     List overdue invoices (no AI)")
	fmt.Println("  /risk                            Assess risk for the last fetched batch")
	fmt.Println("  /pending                         Show the action awaiting approval")
	fmt.Println()
	fmt.Println("  SESSION")
	fmt.Println("  /help                            Show this help")
	fmt.Println("  /exit                            Exit")
	fmt.Println()
	fmt.Println("  AGENT MODE  (no / prefix)")
	fmt.Println("  Type any request in natural language.")
	fmt.Println("  Example: \"show me invoices more than 30 days overdue\"")
	fmt.Println("  Example: \"draft a reminder for INV-1001\"")
	fmt.Println("  Emails are only sent after you reply yes to an approval prompt.")
	fmt.Println(strings.Repeat("=", 62))
}
