package domain

import "time"

// Customer представляет клиента, от имени которого размещаются заказы.
type Customer struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет обязательные поля клиента.
func (c *Customer) Validate() []error {
	var errs []error

	if c.Name == "" {
		errs = append(errs, ErrCustomerNameRequired)
	}

	return errs
}
