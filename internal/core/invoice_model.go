package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// RiskLevel is the tier assigned to an overdue invoice by the risk classifier.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Invoice is a single overdue receivable as fetched from the invoice store.
// CustomerEmail is nil until (and unless) directory enrichment resolves it.
type Invoice struct {
	InvoiceID     string          `json:"invoice_id"`
	CustomerID    string          `json:"customer_id"`
	Customer      string          `json:"customer"`
	DaysOverdue   int             `json:"days_overdue"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	DueDate       time.Time       `json:"due_date"`
	CustomerEmail *string         `json:"customer_email"`
}

// RiskAssessment is the classifier output for one invoice.
// Derived per session; never persisted.
type RiskAssessment struct {
	InvoiceID   string          `json:"invoice_id"`
	Customer    string          `json:"customer"`
	DaysOverdue int             `json:"days_overdue"`
	Amount      decimal.Decimal `json:"amount"`
	RiskLevel   RiskLevel       `json:"risk_level"`
}

// EmailDraft is a composed follow-up email. Pure output of DraftFollowupEmail.
type EmailDraft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
