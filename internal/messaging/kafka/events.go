package kafka

import (
	"time"

	"github.com/vladislavdragonenkov/ims/internal/domain"
)

// EventType определяет тип события
type EventType string

const (
	// События исхода размещения заказа
	EventTypeOrderPlaced   EventType = "order.placed"
	EventTypeOrderRejected EventType = "order.rejected"
)

// TopicOrderEvents — топик для событий исхода размещения заказов.
const TopicOrderEvents = "ims.order.events"

// OrderEvent представляет событие исхода размещения заказа. Эта же
// структура лежит в payload записи outbox: сервис заказов сериализует
// её при постановке, воркер доставляет байты как есть.
type OrderEvent struct {
	EventType  EventType `json:"event_type"`
	OrderID    string    `json:"order_id"`
	CustomerID string    `json:"customer_id,omitempty"`
	ItemID     string    `json:"item_id,omitempty"`
	Quantity   int32     `json:"quantity"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewOrderEvent собирает событие по сохранённому заказу.
// reason пустой для PLACED, для REJECTED несёт причину отклонения.
func NewOrderEvent(eventType EventType, order domain.Order, reason string) *OrderEvent {
	return &OrderEvent{
		EventType:  eventType,
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		ItemID:     order.ItemID,
		Quantity:   order.Quantity,
		Status:     string(order.Status),
		Reason:     reason,
		CreatedAt:  order.CreatedAt,
	}
}
