package domain

import "time"

// OrderStatus — терминальный статус заказа, назначается один раз при создании.
type OrderStatus string

const (
	// OrderStatusPlaced — заказ принят, сток списан ровно на Quantity.
	OrderStatusPlaced OrderStatus = "PLACED"
	// OrderStatusRejected — заказ отклонён (некорректное количество,
	// отсутствующий клиент/товар или нехватка стока). Сток не менялся.
	OrderStatusRejected OrderStatus = "REJECTED"
)

// Order — неизменяемая audit-запись одной попытки размещения заказа.
// Записывается ровно один раз и никогда не обновляется и не удаляется.
//
// CustomerID и ItemID хранятся как идентификаторы, а не вложенные объекты;
// пустая строка означает, что ссылка отсутствовала уже в момент создания
// (например, заказ отклонён из-за несуществующего клиента). Dangling-ссылки
// на впоследствии удалённые сущности допустимы по той же причине.
type Order struct {
	ID         string
	CustomerID string
	ItemID     string
	// Quantity сохраняется как запрошено, включая ноль и отрицательные
	// значения отклонённых заказов.
	Quantity  int32
	Status    OrderStatus
	CreatedAt time.Time
}

// Placed сообщает, был ли заказ принят.
func (o *Order) Placed() bool {
	return o.Status == OrderStatusPlaced
}
