package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deppfellow/kennywood-api/internal/model/customer"
	"github.com/deppfellow/kennywood-api/internal/sqlerr"
)

const customerTable = "customer"

type CustomerRepository struct {
	pool *pgxpool.Pool
}

func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

func (r *CustomerRepository) getOne(ctx context.Context, where string, key any) (*customer.Customer, error) {
	stmt := `
		SELECT id, user_id, email, first_name, family_members
		FROM customer
		WHERE ` + where

	rows, err := r.pool.Query(ctx, stmt, key)
	if err != nil {
		return nil, fmt.Errorf("failed to query customer: %w", err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[customer.Customer])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sqlerr.NotFound(customerTable, key, customer.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return &c, nil
}

// GetByUserID resolves an authenticated caller to their customer row.
func (r *CustomerRepository) GetByUserID(ctx context.Context, userID string) (*customer.Customer, error) {
	return r.getOne(ctx, "user_id = $1", userID)
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*customer.Customer, error) {
	return r.getOne(ctx, "id = $1", id)
}
