package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ims/internal/domain"
	"github.com/vladislavdragonenkov/ims/internal/storage/memory"
	"github.com/vladislavdragonenkov/ims/internal/storage/postgres"
)

// runtimeDependencies содержит хранилища, выбранные по конфигурации.
type runtimeDependencies struct {
	customers domain.CustomerRepository
	items     domain.ItemRepository
	orders    domain.OrderRepository
	outbox    domain.OutboxRepository

	// store заполнен только для postgres-драйвера.
	store *postgres.Store
}

// close освобождает ресурсы хранилища.
func (d *runtimeDependencies) close(logger *log.Entry) {
	if d.store == nil {
		return
	}
	if err := d.store.Close(); err != nil {
		logger.WithError(err).Warn("failed to close postgres store")
	}
}

// initRuntimeDependencies собирает репозитории по выбранному драйверу.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		logger.Info("using in-memory storage")
		return &runtimeDependencies{
			customers: memory.NewCustomerRepository(),
			items:     memory.NewItemRepository(),
			orders:    memory.NewOrderRepository(),
			outbox:    memory.NewOutboxRepository(),
		}, nil

	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres storage driver requires a DSN")
		}

		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres storage: %w", err)
		}

		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("apply postgres migrations: %w", err)
			}
			logger.Info("postgres schema is up to date")
		}

		logger.Info("using postgres storage")
		return &runtimeDependencies{
			customers: postgres.NewCustomerRepository(store),
			items:     postgres.NewItemRepository(store),
			orders:    postgres.NewOrderRepository(store),
			outbox:    postgres.NewOutboxRepository(store),
			store:     store,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}
}
