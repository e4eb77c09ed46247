package rest

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// NewRouter собирает HTTP API сервиса: клиенты, склад, заказы.
func NewRouter(customers CustomerService, stock StockService, orders OrderService, logger *log.Entry) *chi.Mux {
	if logger == nil {
		logger = log.WithField("component", "rest")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	NewCustomerHandler(customers, logger.WithField("handler", "customers")).Register(r)
	NewInventoryHandler(stock, logger.WithField("handler", "inventory")).Register(r)
	NewOrderHandler(orders, customers, stock, logger.WithField("handler", "orders")).Register(r)

	return r
}
