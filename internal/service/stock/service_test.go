package stock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/ims/internal/domain"
	"github.com/vladislavdragonenkov/ims/internal/service/stock"
	"github.com/vladislavdragonenkov/ims/internal/storage/memory"
)

func loggerForTests() *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: false, DisableTimestamp: true})
	logger.SetLevel(logrus.DebugLevel)
	return logger.WithField("component", "test")
}

func newService(t *testing.T) (*stock.Service, domain.ItemRepository) {
	t.Helper()
	items := memory.NewItemRepository()
	return stock.NewService(items, loggerForTests(), nil), items
}

func TestSaveItem_AssignsIDAndTimestamps(t *testing.T) {
	svc, _ := newService(t)

	saved, err := svc.SaveItem(context.Background(), domain.Item{Name: "Widget", Quantity: 7})
	require.NoError(t, err)

	require.NotEmpty(t, saved.ID)
	require.Equal(t, "Widget", saved.Name)
	require.Equal(t, int32(7), saved.Quantity)
	require.False(t, saved.CreatedAt.IsZero())
	require.False(t, saved.UpdatedAt.IsZero())
}

func TestSaveItem_UpdatePreservesCreatedAt(t *testing.T) {
	svc, _ := newService(t)

	created, err := svc.SaveItem(context.Background(), domain.Item{Name: "Widget", Quantity: 7})
	require.NoError(t, err)

	created.Quantity = 3
	updated, err := svc.SaveItem(context.Background(), created)
	require.NoError(t, err)

	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, int32(3), updated.Quantity)
	require.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestSaveItem_Validation(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.SaveItem(context.Background(), domain.Item{Name: "", Quantity: 1})
	require.ErrorIs(t, err, domain.ErrItemNameRequired)

	_, err = svc.SaveItem(context.Background(), domain.Item{Name: "Widget", Quantity: -1})
	require.ErrorIs(t, err, domain.ErrItemQuantityNegative)
}

func TestDeleteItem_MissingIsNotAnError(t *testing.T) {
	svc, _ := newService(t)

	require.NoError(t, svc.DeleteItem(context.Background(), "ghost"))
}

func TestDecreaseStock(t *testing.T) {
	svc, items := newService(t)

	item, err := items.Save(context.Background(), domain.Item{ID: "item-1", Name: "Widget", Quantity: 5})
	require.NoError(t, err)

	ok, err := svc.DecreaseStock(context.Background(), item.ID, 3)
	require.NoError(t, err)
	require.True(t, ok)

	remaining, err := items.Get(context.Background(), item.ID)
	require.NoError(t, err)
	require.Equal(t, int32(2), remaining.Quantity)

	// Недостаточный остаток: отказ без побочного эффекта.
	ok, err = svc.DecreaseStock(context.Background(), item.ID, 3)
	require.NoError(t, err)
	require.False(t, ok)

	remaining, err = items.Get(context.Background(), item.ID)
	require.NoError(t, err)
	require.Equal(t, int32(2), remaining.Quantity)

	// Неизвестная позиция — тоже отказ, а не ошибка.
	ok, err = svc.DecreaseStock(context.Background(), "ghost", 1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGetItem_NotFound(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.GetItem(context.Background(), "ghost")
	require.True(t, errors.Is(err, domain.ErrItemNotFound))
}
