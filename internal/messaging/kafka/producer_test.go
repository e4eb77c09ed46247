package kafka

import (
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ims/internal/domain"
)

func TestProducer_PublishEvent(t *testing.T) {
	// Создаем mock producer
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	// Настраиваем ожидания
	mockProducer.ExpectSendMessageAndSucceed()

	event := NewOrderEvent(EventTypeOrderPlaced, domain.Order{
		ID:         "test-order-123",
		CustomerID: "cust-1",
		ItemID:     "item-1",
		Quantity:   3,
		Status:     domain.OrderStatusPlaced,
		CreatedAt:  time.Now().UTC(),
	}, "")

	// Публикуем событие
	err := producer.PublishEvent(TopicOrderEvents, "test-order-123", event)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Проверяем, что все ожидания выполнены
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_Error(t *testing.T) {
	// Создаем mock producer с ошибкой
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	// Настраиваем ожидание ошибки
	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	event := NewOrderEvent(EventTypeOrderRejected, domain.Order{
		ID:         "test-order-123",
		CustomerID: "cust-1",
		ItemID:     "item-1",
		Quantity:   100,
		Status:     domain.OrderStatusRejected,
		CreatedAt:  time.Now().UTC(),
	}, "insufficient_stock")

	// Публикуем событие
	err := producer.PublishEvent(TopicOrderEvents, "test-order-123", event)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewOrderEvent(t *testing.T) {
	createdAt := time.Now().UTC()
	order := domain.Order{
		ID:         "order-123",
		CustomerID: "cust-1",
		ItemID:     "item-1",
		Quantity:   3,
		Status:     domain.OrderStatusPlaced,
		CreatedAt:  createdAt,
	}

	event := NewOrderEvent(EventTypeOrderPlaced, order, "")

	if event.EventType != EventTypeOrderPlaced {
		t.Errorf("expected event type %s, got %s", EventTypeOrderPlaced, event.EventType)
	}

	if event.OrderID != "order-123" {
		t.Errorf("expected order id order-123, got %s", event.OrderID)
	}

	if event.CustomerID != "cust-1" {
		t.Errorf("expected customer id cust-1, got %s", event.CustomerID)
	}

	if event.ItemID != "item-1" {
		t.Errorf("expected item id item-1, got %s", event.ItemID)
	}

	if event.Quantity != 3 {
		t.Errorf("expected quantity 3, got %d", event.Quantity)
	}

	if event.Status != "PLACED" {
		t.Errorf("expected status PLACED, got %s", event.Status)
	}

	if event.Reason != "" {
		t.Errorf("placed event must carry no reason, got %s", event.Reason)
	}

	// Время события — время создания заказа, не момент сериализации.
	if !event.CreatedAt.Equal(createdAt) {
		t.Errorf("expected created_at %s, got %s", createdAt, event.CreatedAt)
	}
}

func TestNewOrderEvent_RejectedCarriesReason(t *testing.T) {
	order := domain.Order{
		ID:        "order-456",
		Quantity:  100,
		Status:    domain.OrderStatusRejected,
		CreatedAt: time.Now().UTC(),
	}

	event := NewOrderEvent(EventTypeOrderRejected, order, "insufficient_stock")

	if event.EventType != EventTypeOrderRejected {
		t.Errorf("expected event type %s, got %s", EventTypeOrderRejected, event.EventType)
	}
	if event.Status != "REJECTED" {
		t.Errorf("expected status REJECTED, got %s", event.Status)
	}
	if event.Reason != "insufficient_stock" {
		t.Errorf("expected reason insufficient_stock, got %s", event.Reason)
	}
}
