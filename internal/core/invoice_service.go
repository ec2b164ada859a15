package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultFetchLimit applies when a caller does not specify a limit.
const DefaultFetchLimit = 10

// InvoiceService reads overdue invoices from the receivables ledger.
type InvoiceService struct {
	pool *pgxpool.Pool
}

func NewInvoiceService(pool *pgxpool.Pool) *InvoiceService {
	return &InvoiceService{pool: pool}
}

// FetchOverdue returns invoices at least minimumDaysOverdue days overdue,
// most overdue first, capped at limit (DefaultFetchLimit when non-positive).
// Returned invoices are not yet enriched with customer emails.
func (s *InvoiceService) FetchOverdue(ctx context.Context, minimumDaysOverdue, limit int) ([]Invoice, error) {
	if minimumDaysOverdue < 0 {
		minimumDaysOverdue = 0
	}
	if limit <= 0 {
		limit = DefaultFetchLimit
	}

	rows, err := s.pool.Query(ctx, `
		SELECT invoice_id, customer_id, customer_name, days_overdue, total_amount, due_date
		FROM invoices
		WHERE days_overdue >= $1
		ORDER BY days_overdue DESC, invoice_id
		LIMIT $2
	`, minimumDaysOverdue, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue invoices: %w", err)
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.InvoiceID, &inv.CustomerID, &inv.Customer,
			&inv.DaysOverdue, &inv.TotalAmount, &inv.DueDate); err != nil {
			return nil, fmt.Errorf("failed to scan invoice row: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}
