package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/ims/internal/domain"
)

// itemRepositoryInMemory — in-memory реализация ItemRepository.
type itemRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Item
}

// NewItemRepository возвращает in-memory репозиторий складских позиций.
func NewItemRepository() domain.ItemRepository {
	return &itemRepositoryInMemory{
		items: make(map[string]domain.Item),
	}
}

// Save вставляет или перезаписывает позицию по ID.
func (r *itemRepositoryInMemory) Save(_ context.Context, item domain.Item) (domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = item
	return item, nil
}

// Get возвращает позицию или ErrItemNotFound, если её нет.
func (r *itemRepositoryInMemory) Get(_ context.Context, id string) (domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return domain.Item{}, domain.ErrItemNotFound
	}
	return item, nil
}

// List возвращает все позиции, отсортированные по времени создания и ID.
func (r *itemRepositoryInMemory) List(_ context.Context) ([]domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Item, 0, len(r.items))
	for _, item := range r.items {
		result = append(result, item)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// Delete удаляет позицию; отсутствие записи ошибкой не считается.
func (r *itemRepositoryInMemory) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, id)
	return nil
}

// DecreaseQuantity выполняет проверку остатка и списание под одним локом:
// конкурентные вызовы не могут увести Quantity ниже нуля.
func (r *itemRepositoryInMemory) DecreaseQuantity(_ context.Context, id string, qty int32) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return false, nil
	}
	if item.Quantity < qty {
		return false, nil
	}

	item.Quantity -= qty
	item.UpdatedAt = time.Now().UTC()
	r.items[id] = item
	return true, nil
}

var _ domain.ItemRepository = (*itemRepositoryInMemory)(nil)
