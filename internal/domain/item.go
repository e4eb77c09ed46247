package domain

import "time"

// Item — складская позиция. Quantity изменяется только через StockAdjuster
// (см. ports.go); прямое редактирование позиции через inventory-surface
// этим инвариантом не ограничено.
type Item struct {
	ID        string
	Name      string
	Quantity  int32
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет базовые инварианты позиции.
func (i *Item) Validate() []error {
	var errs []error

	if i.Name == "" {
		errs = append(errs, ErrItemNameRequired)
	}
	if i.Quantity < 0 {
		errs = append(errs, ErrItemQuantityNegative)
	}

	return errs
}
