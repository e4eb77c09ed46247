package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/ims/internal/domain"
	"github.com/vladislavdragonenkov/ims/internal/storage/memory"
)

func newItem(id string, qty int32) domain.Item {
	now := time.Now().UTC()
	return domain.Item{
		ID:        id,
		Name:      "widget",
		Quantity:  qty,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestItemRepository_SaveGet(t *testing.T) {
	repo := memory.NewItemRepository()
	ctx := context.Background()

	if _, err := repo.Save(ctx, newItem("item-1", 10)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	stored, err := repo.Get(ctx, "item-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Quantity != 10 {
		t.Fatalf("expected quantity 10, got %d", stored.Quantity)
	}
}

func TestItemRepository_GetMissing(t *testing.T) {
	repo := memory.NewItemRepository()

	if _, err := repo.Get(context.Background(), "nope"); err != domain.ErrItemNotFound {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestItemRepository_DeleteIsIdempotent(t *testing.T) {
	repo := memory.NewItemRepository()
	ctx := context.Background()

	if _, err := repo.Save(ctx, newItem("item-1", 1)); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := repo.Delete(ctx, "item-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	// Повторное удаление не ошибка.
	if err := repo.Delete(ctx, "item-1"); err != nil {
		t.Fatalf("second delete failed: %v", err)
	}
	if _, err := repo.Get(ctx, "item-1"); err != domain.ErrItemNotFound {
		t.Fatalf("expected ErrItemNotFound after delete, got %v", err)
	}
}

func TestItemRepository_DecreaseQuantity(t *testing.T) {
	repo := memory.NewItemRepository()
	ctx := context.Background()

	if _, err := repo.Save(ctx, newItem("item-1", 10)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	ok, err := repo.DecreaseQuantity(ctx, "item-1", 3)
	if err != nil {
		t.Fatalf("decrease failed: %v", err)
	}
	if !ok {
		t.Fatal("expected decrease to succeed")
	}

	stored, err := repo.Get(ctx, "item-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", stored.Quantity)
	}
}

func TestItemRepository_DecreaseQuantityInsufficient(t *testing.T) {
	repo := memory.NewItemRepository()
	ctx := context.Background()

	if _, err := repo.Save(ctx, newItem("item-1", 10)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	ok, err := repo.DecreaseQuantity(ctx, "item-1", 100)
	if err != nil {
		t.Fatalf("decrease failed: %v", err)
	}
	if ok {
		t.Fatal("expected decrease to be refused")
	}

	stored, _ := repo.Get(ctx, "item-1")
	if stored.Quantity != 10 {
		t.Fatalf("expected quantity unchanged at 10, got %d", stored.Quantity)
	}
}

func TestItemRepository_DecreaseQuantityMissingItem(t *testing.T) {
	repo := memory.NewItemRepository()

	ok, err := repo.DecreaseQuantity(context.Background(), "nope", 1)
	if err != nil {
		t.Fatalf("decrease failed: %v", err)
	}
	if ok {
		t.Fatal("expected decrease of missing item to be refused")
	}
}

func TestItemRepository_DecreaseQuantityConcurrent(t *testing.T) {
	repo := memory.NewItemRepository()
	ctx := context.Background()

	if _, err := repo.Save(ctx, newItem("item-1", 10)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	const workers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.DecreaseQuantity(ctx, "item-1", 1)
			if err != nil {
				t.Errorf("decrease failed: %v", err)
				return
			}
			if ok {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 10 {
		t.Fatalf("expected exactly 10 successful decrements, got %d", succeeded)
	}

	stored, _ := repo.Get(ctx, "item-1")
	if stored.Quantity != 0 {
		t.Fatalf("expected quantity 0, got %d", stored.Quantity)
	}
}
