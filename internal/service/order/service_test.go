package order_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/ims/internal/domain"
	"github.com/vladislavdragonenkov/ims/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/ims/internal/service/order"
	"github.com/vladislavdragonenkov/ims/internal/service/stock"
	"github.com/vladislavdragonenkov/ims/internal/storage/memory"
)

func loggerForTests() *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: false, DisableTimestamp: true})
	logger.SetLevel(logrus.DebugLevel)
	return logger.WithField("component", "test")
}

// countingStock оборачивает настоящий сервис склада и считает вызовы,
// чтобы проверять, когда workflow обращается к складу, а когда нет.
type countingStock struct {
	inner domain.StockAdjuster

	mu    sync.Mutex
	calls []stockCall
}

type stockCall struct {
	itemID string
	qty    int32
}

func (c *countingStock) DecreaseStock(ctx context.Context, itemID string, qty int32) (bool, error) {
	c.mu.Lock()
	c.calls = append(c.calls, stockCall{itemID: itemID, qty: qty})
	c.mu.Unlock()
	return c.inner.DecreaseStock(ctx, itemID, qty)
}

func (c *countingStock) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

type fixture struct {
	customers domain.CustomerRepository
	items     domain.ItemRepository
	orders    domain.OrderRepository
	outbox    domain.OutboxRepository
	stock     *countingStock
	service   *order.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := loggerForTests()
	customers := memory.NewCustomerRepository()
	items := memory.NewItemRepository()
	orders := memory.NewOrderRepository()
	outbox := memory.NewOutboxRepository()

	adjuster := &countingStock{inner: stock.NewService(items, logger, nil)}

	return &fixture{
		customers: customers,
		items:     items,
		orders:    orders,
		outbox:    outbox,
		stock:     adjuster,
		service:   order.NewService(customers, items, orders, adjuster, outbox, logger, nil),
	}
}

func (f *fixture) seedCustomer(t *testing.T, id, name string) domain.Customer {
	t.Helper()
	customer, err := f.customers.Save(context.Background(), domain.Customer{ID: id, Name: name})
	require.NoError(t, err)
	return customer
}

func (f *fixture) seedItem(t *testing.T, id, name string, qty int32) domain.Item {
	t.Helper()
	item, err := f.items.Save(context.Background(), domain.Item{ID: id, Name: name, Quantity: qty})
	require.NoError(t, err)
	return item
}

func (f *fixture) itemQuantity(t *testing.T, id string) int32 {
	t.Helper()
	item, err := f.items.Get(context.Background(), id)
	require.NoError(t, err)
	return item.Quantity
}

func TestPlaceOrder_SufficientStock(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "cust-1", "Alice")
	f.seedItem(t, "item-1", "Widget", 10)

	placed, err := f.service.PlaceOrder(context.Background(), "cust-1", "item-1", 3)
	require.NoError(t, err)

	require.Equal(t, domain.OrderStatusPlaced, placed.Status)
	require.Equal(t, "cust-1", placed.CustomerID)
	require.Equal(t, "item-1", placed.ItemID)
	require.Equal(t, int32(3), placed.Quantity)
	require.NotEmpty(t, placed.ID)
	require.False(t, placed.CreatedAt.IsZero())

	require.Equal(t, int32(7), f.itemQuantity(t, "item-1"))
	require.Equal(t, 1, f.stock.callCount())

	stored, err := f.orders.Get(context.Background(), placed.ID)
	require.NoError(t, err)
	require.Equal(t, placed.Status, stored.Status)
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "cust-1", "Alice")
	f.seedItem(t, "item-1", "Widget", 2)

	rejected, err := f.service.PlaceOrder(context.Background(), "cust-1", "item-1", 5)
	require.NoError(t, err)

	require.Equal(t, domain.OrderStatusRejected, rejected.Status)
	require.Equal(t, "cust-1", rejected.CustomerID)
	require.Equal(t, "item-1", rejected.ItemID)
	require.Equal(t, int32(5), rejected.Quantity)

	// Сток не изменился.
	require.Equal(t, int32(2), f.itemQuantity(t, "item-1"))

	stored, err := f.orders.Get(context.Background(), rejected.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusRejected, stored.Status)
}

func TestPlaceOrder_ExactStockDrainsToZero(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "cust-1", "Alice")
	f.seedItem(t, "item-1", "Widget", 5)

	placed, err := f.service.PlaceOrder(context.Background(), "cust-1", "item-1", 5)
	require.NoError(t, err)

	require.Equal(t, domain.OrderStatusPlaced, placed.Status)
	require.Equal(t, int32(0), f.itemQuantity(t, "item-1"))
}

func TestPlaceOrder_NonPositiveQuantitySkipsStock(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "cust-1", "Alice")
	f.seedItem(t, "item-1", "Widget", 10)

	for _, qty := range []int32{0, -5} {
		rejected, err := f.service.PlaceOrder(context.Background(), "cust-1", "item-1", qty)
		require.NoError(t, err)

		require.Equal(t, domain.OrderStatusRejected, rejected.Status)
		// Ссылки резолвятся даже при невалидном количестве.
		require.Equal(t, "cust-1", rejected.CustomerID)
		require.Equal(t, "item-1", rejected.ItemID)
		// Количество сохраняется как запрошено.
		require.Equal(t, qty, rejected.Quantity)
	}

	// Склад не трогали, остаток прежний.
	require.Equal(t, 0, f.stock.callCount())
	require.Equal(t, int32(10), f.itemQuantity(t, "item-1"))
}

func TestPlaceOrder_UnknownCustomer(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, "item-1", "Widget", 10)

	rejected, err := f.service.PlaceOrder(context.Background(), "ghost", "item-1", 2)
	require.NoError(t, err)

	require.Equal(t, domain.OrderStatusRejected, rejected.Status)
	require.Empty(t, rejected.CustomerID)
	// Найденная позиция фиксируется в записи.
	require.Equal(t, "item-1", rejected.ItemID)

	require.Equal(t, 0, f.stock.callCount())
	require.Equal(t, int32(10), f.itemQuantity(t, "item-1"))
}

func TestPlaceOrder_UnknownItem(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "cust-1", "Alice")

	rejected, err := f.service.PlaceOrder(context.Background(), "cust-1", "ghost", 2)
	require.NoError(t, err)

	require.Equal(t, domain.OrderStatusRejected, rejected.Status)
	require.Equal(t, "cust-1", rejected.CustomerID)
	require.Empty(t, rejected.ItemID)
	require.Equal(t, 0, f.stock.callCount())
}

func TestPlaceOrder_BothReferencesMissing(t *testing.T) {
	f := newFixture(t)

	rejected, err := f.service.PlaceOrder(context.Background(), "ghost-c", "ghost-i", 1)
	require.NoError(t, err)

	require.Equal(t, domain.OrderStatusRejected, rejected.Status)
	require.Empty(t, rejected.CustomerID)
	require.Empty(t, rejected.ItemID)
	require.Equal(t, int32(1), rejected.Quantity)
}

func TestPlaceOrder_EveryAttemptIsRecorded(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "cust-1", "Alice")
	f.seedItem(t, "item-1", "Widget", 3)

	attempts := []struct {
		qty  int32
		want domain.OrderStatus
	}{
		{qty: 2, want: domain.OrderStatusPlaced},
		{qty: 2, want: domain.OrderStatusRejected}, // остаток 1 < 2
		{qty: 0, want: domain.OrderStatusRejected},
		{qty: 1, want: domain.OrderStatusPlaced},
	}

	for _, attempt := range attempts {
		placed, err := f.service.PlaceOrder(context.Background(), "cust-1", "item-1", attempt.qty)
		require.NoError(t, err)
		require.Equal(t, attempt.want, placed.Status)
	}

	history, err := f.service.ListByCustomer(context.Background(), "cust-1")
	require.NoError(t, err)
	require.Len(t, history, len(attempts))
	for i, attempt := range attempts {
		require.Equal(t, attempt.want, history[i].Status)
		require.Equal(t, attempt.qty, history[i].Quantity)
	}

	require.Equal(t, int32(0), f.itemQuantity(t, "item-1"))
}

func TestPlaceOrder_ConcurrentPlacementsNeverOversell(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "cust-1", "Alice")
	f.seedItem(t, "item-1", "Widget", 10)

	const workers = 20

	var wg sync.WaitGroup
	results := make([]domain.Order, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.service.PlaceOrder(context.Background(), "cust-1", "item-1", 1)
		}(i)
	}
	wg.Wait()

	placed := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		if results[i].Status == domain.OrderStatusPlaced {
			placed++
		} else {
			require.Equal(t, domain.OrderStatusRejected, results[i].Status)
		}
	}

	require.Equal(t, 10, placed)
	require.Equal(t, int32(0), f.itemQuantity(t, "item-1"))
}

func TestPlaceOrder_EnqueuesOutboxEvent(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "cust-1", "Alice")
	f.seedItem(t, "item-1", "Widget", 10)

	placed, err := f.service.PlaceOrder(context.Background(), "cust-1", "item-1", 4)
	require.NoError(t, err)
	rejected, err := f.service.PlaceOrder(context.Background(), "cust-1", "item-1", 100)
	require.NoError(t, err)

	pending, err := f.outbox.PullPending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	byAggregate := map[string]domain.OutboxMessage{}
	for _, msg := range pending {
		require.Equal(t, "order", msg.AggregateType)
		byAggregate[msg.AggregateID] = msg
	}

	require.Equal(t, string(kafka.EventTypeOrderPlaced), byAggregate[placed.ID].EventType)
	require.Equal(t, string(kafka.EventTypeOrderRejected), byAggregate[rejected.ID].EventType)

	// Payload — это kafka.OrderEvent: тип события внутри тела совпадает
	// с типом записи outbox, а не со второй параллельной схемой.
	var event kafka.OrderEvent
	require.NoError(t, json.Unmarshal(byAggregate[rejected.ID].Payload, &event))
	require.Equal(t, kafka.EventTypeOrderRejected, event.EventType)
	require.Equal(t, rejected.ID, event.OrderID)
	require.Equal(t, "REJECTED", event.Status)
	require.Equal(t, "insufficient_stock", event.Reason)
	require.Equal(t, int32(100), event.Quantity)
	require.True(t, event.CreatedAt.Equal(rejected.CreatedAt))

	var placedEvent kafka.OrderEvent
	require.NoError(t, json.Unmarshal(byAggregate[placed.ID].Payload, &placedEvent))
	require.Equal(t, kafka.EventTypeOrderPlaced, placedEvent.EventType)
	require.Empty(t, placedEvent.Reason)
}

func TestPlaceOrder_CancelledContext(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "cust-1", "Alice")
	f.seedItem(t, "item-1", "Widget", 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.PlaceOrder(ctx, "cust-1", "item-1", 3)
	require.ErrorIs(t, err, context.Canceled)

	// Ни списания, ни записи заказа.
	require.Equal(t, 0, f.stock.callCount())
	require.Equal(t, int32(10), f.itemQuantity(t, "item-1"))

	history, err := f.service.ListByCustomer(context.Background(), "cust-1")
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestListByCustomer_UnknownCustomerIsEmpty(t *testing.T) {
	f := newFixture(t)

	history, err := f.service.ListByCustomer(context.Background(), "ghost")
	require.NoError(t, err)
	require.Empty(t, history)
}
