package domain

import "errors"

var (
	// Ошибка отсутствующего имени клиента.
	ErrCustomerNameRequired = errors.New("customer name is required")
	// Ошибка отсутствующего названия позиции.
	ErrItemNameRequired = errors.New("item name is required")
	// Ошибка отрицательного количества на складе.
	ErrItemQuantityNegative = errors.New("item quantity must be non-negative")
	// ErrCustomerNotFound возвращается, если клиент не найден в репозитории.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrItemNotFound возвращается, если складская позиция не найдена.
	ErrItemNotFound = errors.New("item not found")
	// ErrOrderNotFound возвращается, если заказ не найден.
	ErrOrderNotFound = errors.New("order not found")
	// ErrAlreadyExists сигнализирует о конфликте идентификаторов при вставке.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrOutboxRecordMissing возвращается при попытке пометить несуществующую
	// outbox-запись.
	ErrOutboxRecordMissing = errors.New("outbox record not found")
)

// IsNotFound проверяет, относится ли ошибка к классу "запись отсутствует".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}
