package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ims/internal/domain"
	"github.com/vladislavdragonenkov/ims/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/ims/internal/metrics"
)

// Причины отклонения заказа. В самой записи заказа причина не хранится,
// она попадает только в лог и в payload события outbox.
const (
	rejectReasonInvalidQuantity   = "invalid_quantity"
	rejectReasonCustomerNotFound  = "customer_not_found"
	rejectReasonItemNotFound      = "item_not_found"
	rejectReasonInsufficientStock = "insufficient_stock"
)

const aggregateTypeOrder = "order"

// Service реализует workflow размещения заказа. Каждая попытка размещения
// завершается записью заказа в статусе PLACED или REJECTED: отклонение —
// это бизнес-исход, а не ошибка, поэтому вызывающая сторона получает
// заполненный заказ, а не error. Error возвращается только при отказе
// инфраструктуры (хранилище недоступно).
type Service struct {
	customers domain.CustomerRepository
	items     domain.ItemRepository
	orders    domain.OrderRepository
	stock     domain.StockAdjuster
	outbox    domain.OutboxRepository
	logger    *log.Entry
	metrics   *metrics.OrderMetrics
}

// NewService конструирует сервис заказов. outbox и m могут быть nil:
// тогда размещение работает без публикации событий и без метрик.
func NewService(
	customers domain.CustomerRepository,
	items domain.ItemRepository,
	orders domain.OrderRepository,
	stock domain.StockAdjuster,
	outbox domain.OutboxRepository,
	logger *log.Entry,
	m *metrics.OrderMetrics,
) *Service {
	if logger == nil {
		logger = log.WithField("component", "order-service")
	}
	return &Service{
		customers: customers,
		items:     items,
		orders:    orders,
		stock:     stock,
		outbox:    outbox,
		logger:    logger,
		metrics:   m,
	}
}

// PlaceOrder проводит попытку размещения заказа qty единиц позиции itemID
// для клиента customerID.
//
// Порядок решений фиксирован:
//  1. qty <= 0 — заказ отклоняется без обращения к складу; ссылки на
//     клиента и позицию всё равно резолвятся, чтобы зафиксировать их
//     присутствие в записи;
//  2. клиент или позиция не найдены — заказ отклоняется, найденные
//     ссылки сохраняются;
//  3. атомарное списание стока: успех — PLACED, отказ — REJECTED;
//  4. заказ сохраняется безусловно и возвращается вызывающей стороне.
func (s *Service) PlaceOrder(ctx context.Context, customerID, itemID string, qty int32) (domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return domain.Order{}, err
	}

	start := time.Now()
	if s.metrics != nil {
		s.metrics.RecordPlacementStarted()
		defer func() {
			s.metrics.RecordPlacementDuration(time.Since(start))
			s.metrics.RecordPlacementFinished()
		}()
	}

	customerRef, err := s.resolveCustomerRef(ctx, customerID)
	if err != nil {
		return domain.Order{}, err
	}
	itemRef, err := s.resolveItemRef(ctx, itemID)
	if err != nil {
		return domain.Order{}, err
	}

	status := domain.OrderStatusRejected
	rejectReason := ""

	switch {
	case qty <= 0:
		rejectReason = rejectReasonInvalidQuantity
	case customerRef == "":
		rejectReason = rejectReasonCustomerNotFound
	case itemRef == "":
		rejectReason = rejectReasonItemNotFound
	default:
		ok, err := s.stock.DecreaseStock(ctx, itemID, qty)
		if err != nil {
			return domain.Order{}, fmt.Errorf("place order: %w", err)
		}
		if ok {
			status = domain.OrderStatusPlaced
		} else {
			rejectReason = rejectReasonInsufficientStock
		}
	}

	order := domain.Order{
		ID:         uuid.NewString(),
		CustomerID: customerRef,
		ItemID:     itemRef,
		Quantity:   qty,
		Status:     status,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return domain.Order{}, fmt.Errorf("persist order: %w", err)
	}

	s.recordOutcome(order)
	s.enqueueOrderEvent(ctx, order, rejectReason)

	entry := s.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"customer_id": order.CustomerID,
		"item_id":     order.ItemID,
		"qty":         order.Quantity,
		"status":      order.Status,
	})
	if order.Placed() {
		entry.Info("order placed")
	} else {
		entry.WithField("reason", rejectReason).Info("order rejected")
	}

	return order, nil
}

// Get возвращает заказ по идентификатору.
func (s *Service) Get(ctx context.Context, id string) (domain.Order, error) {
	return s.orders.Get(ctx, id)
}

// ListByCustomer возвращает историю заказов клиента, от старых к новым.
// Для неизвестного клиента возвращается пустой список.
func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return s.orders.ListByCustomer(ctx, customerID)
}

// resolveCustomerRef возвращает ID клиента, если он существует, и пустую
// строку, если нет. Ошибки инфраструктуры пробрасываются наверх.
func (s *Service) resolveCustomerRef(ctx context.Context, customerID string) (string, error) {
	if customerID == "" {
		return "", nil
	}
	customer, err := s.customers.Get(ctx, customerID)
	if errors.Is(err, domain.ErrCustomerNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve customer: %w", err)
	}
	return customer.ID, nil
}

func (s *Service) resolveItemRef(ctx context.Context, itemID string) (string, error) {
	if itemID == "" {
		return "", nil
	}
	item, err := s.items.Get(ctx, itemID)
	if errors.Is(err, domain.ErrItemNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve item: %w", err)
	}
	return item.ID, nil
}

func (s *Service) recordOutcome(order domain.Order) {
	if s.metrics == nil {
		return
	}
	if order.Placed() {
		s.metrics.RecordOrderPlaced()
	} else {
		s.metrics.RecordOrderRejected()
	}
}

// enqueueOrderEvent ставит событие исхода в outbox. Тело события —
// kafka.OrderEvent, воркер доставит его в топик как есть. Отказ
// постановки не откатывает уже сохранённый заказ: событие теряется,
// заказ — нет.
func (s *Service) enqueueOrderEvent(ctx context.Context, order domain.Order, rejectReason string) {
	if s.outbox == nil {
		return
	}

	eventType := kafka.EventTypeOrderPlaced
	if !order.Placed() {
		eventType = kafka.EventTypeOrderRejected
	}

	payload, err := json.Marshal(kafka.NewOrderEvent(eventType, order, rejectReason))
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Error("marshal order event")
		return
	}

	_, err = s.outbox.Enqueue(ctx, domain.OutboxMessage{
		AggregateType: aggregateTypeOrder,
		AggregateID:   order.ID,
		EventType:     string(eventType),
		Payload:       payload,
	})
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Error("enqueue order event")
	}
}
