package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/ims/internal/domain"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

func (r *orderRepository) Create(ctx context.Context, order domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, item_id, quantity, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`,
		order.ID, order.CustomerID, order.ItemID,
		order.Quantity, string(order.Status), order.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

func (r *orderRepository) Get(ctx context.Context, id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var (
		order  domain.Order
		status string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, customer_id, item_id, quantity, status, created_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.CustomerID, &order.ItemID, &order.Quantity, &status, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}
	order.Status = domain.OrderStatus(status)

	return order, nil
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, customer_id, item_id, quantity, status, created_at
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at, id
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var (
			order  domain.Order
			status string
		)
		if err := rows.Scan(&order.ID, &order.CustomerID, &order.ItemID, &order.Quantity, &status, &order.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		order.Status = domain.OrderStatus(status)
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.OrderRepository = (*orderRepository)(nil)
