package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/ims/internal/domain"
	"github.com/vladislavdragonenkov/ims/internal/storage/memory"
)

func newOrder(id, customerID string, createdAt time.Time) domain.Order {
	return domain.Order{
		ID:         id,
		CustomerID: customerID,
		ItemID:     "item-1",
		Quantity:   2,
		Status:     domain.OrderStatusPlaced,
		CreatedAt:  createdAt,
	}
}

func TestOrderRepository_CreateGet(t *testing.T) {
	repo := memory.NewOrderRepository()
	ctx := context.Background()
	order := newOrder("order-1", "customer-1", time.Now().UTC())

	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := repo.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.ID != order.ID {
		t.Fatalf("expected id %s, got %s", order.ID, stored.ID)
	}
}

func TestOrderRepository_CreateDuplicate(t *testing.T) {
	repo := memory.NewOrderRepository()
	ctx := context.Background()
	order := newOrder("order-1", "customer-1", time.Now().UTC())

	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(ctx, order); err != domain.ErrAlreadyExists {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestOrderRepository_ListByCustomerOrdering(t *testing.T) {
	repo := memory.NewOrderRepository()
	ctx := context.Background()
	base := time.Now().UTC()

	if err := repo.Create(ctx, newOrder("order-2", "customer-1", base.Add(time.Second))); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(ctx, newOrder("order-1", "customer-1", base)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(ctx, newOrder("order-3", "customer-2", base)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	orders, err := repo.ListByCustomer(ctx, "customer-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].ID != "order-1" || orders[1].ID != "order-2" {
		t.Fatalf("expected oldest-first ordering, got %s, %s", orders[0].ID, orders[1].ID)
	}
}

func TestOrderRepository_ListByCustomerUnknown(t *testing.T) {
	repo := memory.NewOrderRepository()

	orders, err := repo.ListByCustomer(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("expected empty result, got %d orders", len(orders))
	}
}

func TestOrderRepository_ListIsStableBetweenCalls(t *testing.T) {
	repo := memory.NewOrderRepository()
	ctx := context.Background()
	base := time.Now().UTC()

	for _, id := range []string{"a", "b", "c"} {
		if err := repo.Create(ctx, newOrder(id, "customer-1", base)); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	first, err := repo.ListByCustomer(ctx, "customer-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	second, err := repo.ListByCustomer(ctx, "customer-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("expected identical results, got %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("expected stable ordering at %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}
