package domain

import "context"

// CustomerRepository описывает требования к хранилищу клиентов.
type CustomerRepository interface {
	// Save вставляет нового клиента или перезаписывает существующего по ID.
	Save(ctx context.Context, customer Customer) (Customer, error)
	// Get возвращает клиента по идентификатору или ErrCustomerNotFound.
	Get(ctx context.Context, id string) (Customer, error)
	// List возвращает всех клиентов в детерминированном порядке.
	List(ctx context.Context) ([]Customer, error)
}

// ItemRepository описывает требования к хранилищу складских позиций.
type ItemRepository interface {
	// Save вставляет новую позицию или перезаписывает существующую по ID.
	Save(ctx context.Context, item Item) (Item, error)
	// Get возвращает позицию по идентификатору или ErrItemNotFound.
	Get(ctx context.Context, id string) (Item, error)
	// List возвращает все позиции в детерминированном порядке.
	List(ctx context.Context) ([]Item, error)
	// Delete удаляет позицию; удаление несуществующего ID не является ошибкой.
	Delete(ctx context.Context, id string) error
	// DecreaseQuantity атомарно уменьшает количество при достаточном остатке.
	// Возвращает false без побочного эффекта, если позиции нет или остатка
	// не хватает. Проверка и списание выполняются как одна операция:
	// конкурентные вызовы не могут увести Quantity ниже нуля.
	DecreaseQuantity(ctx context.Context, id string, qty int32) (bool, error)
}

// OrderRepository описывает требования к хранилищу заказов.
// Заказы append-only: интерфейс намеренно не содержит update/delete.
type OrderRepository interface {
	// Create сохраняет новый заказ. Возвращает ErrAlreadyExists при
	// конфликте идентификаторов.
	Create(ctx context.Context, order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound.
	Get(ctx context.Context, id string) (Order, error)
	// ListByCustomer возвращает заказы клиента от старых к новым.
	// Для неизвестного клиента — пустой срез, не ошибка.
	ListByCustomer(ctx context.Context, customerID string) ([]Order, error)
}
