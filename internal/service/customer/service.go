package customer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ims/internal/domain"
)

// Service — pass-through сервис над хранилищем клиентов.
type Service struct {
	customers domain.CustomerRepository
	logger    *log.Entry
}

// NewService конструирует сервис клиентов.
func NewService(customers domain.CustomerRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "customer-service")
	}
	return &Service{
		customers: customers,
		logger:    logger,
	}
}

// List возвращает всех клиентов.
func (s *Service) List(ctx context.Context) ([]domain.Customer, error) {
	return s.customers.List(ctx)
}

// Get возвращает клиента по идентификатору.
func (s *Service) Get(ctx context.Context, id string) (domain.Customer, error) {
	return s.customers.Get(ctx, id)
}

// Save создаёт нового клиента или обновляет имя существующего.
func (s *Service) Save(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	if errs := c.Validate(); len(errs) > 0 {
		return domain.Customer{}, errors.Join(errs...)
	}

	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = uuid.NewString()
		c.CreatedAt = now
	} else if existing, err := s.customers.Get(ctx, c.ID); err == nil {
		c.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, domain.ErrCustomerNotFound) {
		return domain.Customer{}, fmt.Errorf("lookup customer before save: %w", err)
	} else {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	saved, err := s.customers.Save(ctx, c)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("save customer: %w", err)
	}

	s.logger.WithField("customer_id", saved.ID).Debug("customer saved")

	return saved, nil
}
