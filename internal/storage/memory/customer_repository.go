package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/ims/internal/domain"
)

// customerRepositoryInMemory — простая in-memory реализация CustomerRepository.
type customerRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Customer
}

// NewCustomerRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewCustomerRepository() domain.CustomerRepository {
	return &customerRepositoryInMemory{
		items: make(map[string]domain.Customer),
	}
}

// Save вставляет или перезаписывает клиента по ID.
func (r *customerRepositoryInMemory) Save(_ context.Context, customer domain.Customer) (domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	r.items[customer.ID] = customer
	return customer, nil
}

// Get возвращает клиента или ErrCustomerNotFound, если его нет.
func (r *customerRepositoryInMemory) Get(_ context.Context, id string) (domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.items[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return customer, nil
}

// List возвращает всех клиентов, отсортированных по времени создания и ID.
func (r *customerRepositoryInMemory) List(_ context.Context) ([]domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Customer, 0, len(r.items))
	for _, customer := range r.items {
		result = append(result, customer)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

var _ domain.CustomerRepository = (*customerRepositoryInMemory)(nil)
