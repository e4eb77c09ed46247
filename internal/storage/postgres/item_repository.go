package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/ims/internal/domain"
)

type itemRepository struct {
	db *sql.DB
}

// NewItemRepository создаёт PostgreSQL-реализацию ItemRepository.
func NewItemRepository(store *Store) domain.ItemRepository {
	return &itemRepository{db: store.DB()}
}

func (r *itemRepository) Save(ctx context.Context, item domain.Item) (domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO items (id, name, quantity, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    quantity = EXCLUDED.quantity,
		    updated_at = EXCLUDED.updated_at
	`,
		item.ID, item.Name, item.Quantity, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return domain.Item{}, fmt.Errorf("save item: %w", err)
	}

	return item, nil
}

func (r *itemRepository) Get(ctx context.Context, id string) (domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var item domain.Item
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, quantity, created_at, updated_at
		FROM items
		WHERE id = $1
	`, id).Scan(&item.ID, &item.Name, &item.Quantity, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Item{}, domain.ErrItemNotFound
		}
		return domain.Item{}, fmt.Errorf("select item: %w", err)
	}

	return item, nil
}

func (r *itemRepository) List(ctx context.Context) ([]domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, quantity, created_at, updated_at
		FROM items
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Item, 0)
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Quantity, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan item row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate item rows: %w", err)
	}

	return items, nil
}

func (r *itemRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	// Удаление отсутствующей позиции не ошибка: rows affected не проверяем.
	if _, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// DecreaseQuantity выполняет проверку остатка и списание одним conditional
// UPDATE: guard `quantity >= $2` делает операцию атомарной на уровне строки,
// конкурентные списания не могут увести quantity ниже нуля.
func (r *itemRepository) DecreaseQuantity(ctx context.Context, id string, qty int32) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE items
		SET quantity = quantity - $2,
		    updated_at = NOW()
		WHERE id = $1
		  AND quantity >= $2
	`, id, qty)
	if err != nil {
		return false, fmt.Errorf("decrease item quantity: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected == 1, nil
}

var _ domain.ItemRepository = (*itemRepository)(nil)
