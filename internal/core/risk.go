package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Tier thresholds. First match wins: High on either of the hard limits,
// Medium on age alone, Low otherwise.
var (
	highRiskDays   = 45
	highRiskAmount = decimal.NewFromInt(4000)
	mediumRiskDays = 20
)

// ClassifyRisk assigns a risk tier to a single invoice. Pure and total.
func ClassifyRisk(daysOverdue int, amount decimal.Decimal) RiskLevel {
	if daysOverdue > highRiskDays || amount.GreaterThan(highRiskAmount) {
		return RiskHigh
	}
	if daysOverdue > mediumRiskDays {
		return RiskMedium
	}
	return RiskLow
}

// AssessInvoices classifies a batch of invoices.
// An invoice with no invoice_id violates the data contract and fails the
// whole batch rather than being silently defaulted.
func AssessInvoices(invoices []Invoice) ([]RiskAssessment, error) {
	results := make([]RiskAssessment, 0, len(invoices))
	for i, inv := range invoices {
		if inv.InvoiceID == "" {
			return nil, fmt.Errorf("invoice at index %d is missing invoice_id", i)
		}
		if inv.DaysOverdue < 0 {
			return nil, fmt.Errorf("invoice %s has negative days_overdue", inv.InvoiceID)
		}
		results = append(results, RiskAssessment{
			InvoiceID:   inv.InvoiceID,
			Customer:    inv.Customer,
			DaysOverdue: inv.DaysOverdue,
			Amount:      inv.TotalAmount,
			RiskLevel:   ClassifyRisk(inv.DaysOverdue, inv.TotalAmount),
		})
	}
	return results, nil
}
