package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CustomerService resolves customer contact details from the directory.
type CustomerService struct {
	pool *pgxpool.Pool
}

func NewCustomerService(pool *pgxpool.Pool) *CustomerService {
	return &CustomerService{pool: pool}
}

// EmailFor looks up the email address for a customer.
// A missing directory entry (or a blank email) is a lookup miss, not an
// error: the second return is false and the caller continues without it.
func (s *CustomerService) EmailFor(ctx context.Context, customerID string) (string, bool, error) {
	if customerID == "" {
		return "", false, nil
	}

	var email *string
	err := s.pool.QueryRow(ctx,
		"SELECT email FROM customers WHERE customer_id = $1", customerID,
	).Scan(&email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to look up customer %s: %w", customerID, err)
	}
	if email == nil || *email == "" {
		return "", false, nil
	}
	return *email, true, nil
}
