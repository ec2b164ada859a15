// restore-seed is a one-shot tool to restore the demo receivables data.
// Run it after migrations, or when the demo invoices have been wiped.
//
// Usage: go run ./cmd/restore-seed
package main

import (
	"context"
	"log"

	"finops-agent/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Restoring customers...")
	_, err = tx.Exec(ctx, `
		INSERT INTO customers (customer_id, name, email)
		VALUES
		  ('C-001', 'Acme Corp',          'accounts@acme.example'),
		  ('C-002', 'Globex Industries',  'billing@globex.example'),
		  ('C-003', 'Initech Solutions',  'finance@initech.example'),
		  ('C-004', 'Umbrella Logistics', NULL),
		  ('C-005', 'Stark Manufacturing','payables@stark.example')
		ON CONFLICT (customer_id) DO UPDATE
		  SET name  = EXCLUDED.name,
		      email = EXCLUDED.email;
	`)
	if err != nil {
		log.Fatalf("Failed to restore customers: %v", err)
	}

	log.Println("Restoring overdue invoices...")
	_, err = tx.Exec(ctx, `
		INSERT INTO invoices (invoice_id, customer_id, customer_name, days_overdue, total_amount, due_date)
		VALUES
		  ('INV-1001', 'C-001', 'Acme Corp',           52, 1800.00, CURRENT_DATE - 52),
		  ('INV-1002', 'C-002', 'Globex Industries',   31,  950.00, CURRENT_DATE - 31),
		  ('INV-1003', 'C-003', 'Initech Solutions',   17, 4200.00, CURRENT_DATE - 17),
		  ('INV-1004', 'C-004', 'Umbrella Logistics',  64, 3100.00, CURRENT_DATE - 64),
		  ('INV-1005', 'C-005', 'Stark Manufacturing', 12,  480.00, CURRENT_DATE - 12),
		  ('INV-1006', 'C-001', 'Acme Corp',           23, 6750.00, CURRENT_DATE - 23)
		ON CONFLICT (invoice_id) DO UPDATE
		  SET customer_id   = EXCLUDED.customer_id,
		      customer_name = EXCLUDED.customer_name,
		      days_overdue  = EXCLUDED.days_overdue,
		      total_amount  = EXCLUDED.total_amount,
		      due_date      = EXCLUDED.due_date;
	`)
	if err != nil {
		log.Fatalf("Failed to restore invoices: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Seed data restored successfully.")
}
