package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/ims/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository создаёт PostgreSQL-реализацию CustomerRepository.
func NewCustomerRepository(store *Store) domain.CustomerRepository {
	return &customerRepository{db: store.DB()}
}

func (r *customerRepository) Save(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO customers (id, name, created_at, updated_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    updated_at = EXCLUDED.updated_at
	`,
		customer.ID, customer.Name, customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("save customer: %w", err)
	}

	return customer, nil
}

func (r *customerRepository) Get(ctx context.Context, id string) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var customer domain.Customer
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM customers
		WHERE id = $1
	`, id).Scan(&customer.ID, &customer.Name, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("select customer: %w", err)
	}

	return customer, nil
}

func (r *customerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM customers
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0)
	for rows.Next() {
		var customer domain.Customer
		if err := rows.Scan(&customer.ID, &customer.Name, &customer.CreatedAt, &customer.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan customer row: %w", err)
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer rows: %w", err)
	}

	return customers, nil
}

var _ domain.CustomerRepository = (*customerRepository)(nil)
