package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ims/internal/domain"
	"github.com/vladislavdragonenkov/ims/internal/metrics"
)

// Service управляет складскими позициями и является единственным
// санкционированным путём списания стока. Решение "хватает ли остатка"
// принимается здесь ровно один раз — атомарным conditional-update в
// хранилище, поэтому конкурентные размещения не могут продать один и
// тот же остаток дважды.
type Service struct {
	items   domain.ItemRepository
	logger  *log.Entry
	metrics *metrics.OrderMetrics
}

// NewService конструирует сервис склада.
func NewService(items domain.ItemRepository, logger *log.Entry, m *metrics.OrderMetrics) *Service {
	if logger == nil {
		logger = log.WithField("component", "stock-service")
	}
	return &Service{
		items:   items,
		logger:  logger,
		metrics: m,
	}
}

// ListItems возвращает все складские позиции.
func (s *Service) ListItems(ctx context.Context) ([]domain.Item, error) {
	return s.items.List(ctx)
}

// GetItem возвращает позицию по идентификатору.
func (s *Service) GetItem(ctx context.Context, id string) (domain.Item, error) {
	return s.items.Get(ctx, id)
}

// SaveItem создаёт новую позицию или перезаписывает существующую по ID.
func (s *Service) SaveItem(ctx context.Context, item domain.Item) (domain.Item, error) {
	if errs := item.Validate(); len(errs) > 0 {
		return domain.Item{}, errors.Join(errs...)
	}

	now := time.Now().UTC()
	if item.ID == "" {
		item.ID = uuid.NewString()
		item.CreatedAt = now
	} else if existing, err := s.items.Get(ctx, item.ID); err == nil {
		item.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, domain.ErrItemNotFound) {
		return domain.Item{}, fmt.Errorf("lookup item before save: %w", err)
	} else {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	saved, err := s.items.Save(ctx, item)
	if err != nil {
		return domain.Item{}, fmt.Errorf("save item: %w", err)
	}

	s.logger.WithFields(log.Fields{
		"item_id":  saved.ID,
		"quantity": saved.Quantity,
	}).Debug("item saved")

	return saved, nil
}

// DeleteItem удаляет позицию; отсутствие записи ошибкой не считается.
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	if err := s.items.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	s.logger.WithField("item_id", id).Debug("item deleted")
	return nil
}

// DecreaseStock атомарно списывает qty единиц позиции itemID.
// Возвращает false без побочного эффекта, если позиции нет или остатка
// недостаточно. Знак qty сервис не проверяет: workflow размещения
// отсекает qty <= 0 до вызова.
func (s *Service) DecreaseStock(ctx context.Context, itemID string, qty int32) (bool, error) {
	ok, err := s.items.DecreaseQuantity(ctx, itemID, qty)
	if err != nil {
		s.recordDecrease(metrics.StockDecreaseError)
		s.logger.WithError(err).WithField("item_id", itemID).Error("stock decrease failed")
		return false, fmt.Errorf("decrease stock: %w", err)
	}

	if !ok {
		s.recordDecrease(metrics.StockDecreaseInsufficient)
		s.logger.WithFields(log.Fields{
			"item_id": itemID,
			"qty":     qty,
		}).Debug("stock decrease refused")
		return false, nil
	}

	s.recordDecrease(metrics.StockDecreaseOK)
	s.logger.WithFields(log.Fields{
		"item_id": itemID,
		"qty":     qty,
	}).Debug("stock decreased")

	return true, nil
}

func (s *Service) recordDecrease(result string) {
	if s.metrics != nil {
		s.metrics.RecordStockDecrease(result)
	}
}

var _ domain.StockAdjuster = (*Service)(nil)
