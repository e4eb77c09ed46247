package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ims/internal/domain"
)

// OrderService — операции размещения и чтения заказов, нужные HTTP-слою.
type OrderService interface {
	PlaceOrder(ctx context.Context, customerID, itemID string, qty int32) (domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
}

type placeOrderPayload struct {
	CustomerID string `json:"customer_id"`
	ItemID     string `json:"item_id"`
	Quantity   int32  `json:"quantity"`
}

// orderResponse разворачивает ссылки заказа в полные объекты. Ссылка,
// отсутствовавшая в момент размещения, отдаётся как null; удалённая
// позже — тоже: запись заказа при этом не меняется.
type orderResponse struct {
	ID        string            `json:"id"`
	Customer  *customerResponse `json:"customer"`
	Item      *itemResponse     `json:"item"`
	Quantity  int32             `json:"quantity"`
	Status    string            `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// OrderHandler обрабатывает запросы /orders.
type OrderHandler struct {
	orders    OrderService
	customers CustomerService
	stock     StockService
	logger    *log.Entry
}

// NewOrderHandler конструирует handler заказов.
func NewOrderHandler(orders OrderService, customers CustomerService, stock StockService, logger *log.Entry) *OrderHandler {
	if logger == nil {
		logger = log.WithField("component", "order-handler")
	}
	return &OrderHandler{
		orders:    orders,
		customers: customers,
		stock:     stock,
		logger:    logger,
	}
}

// Register вешает маршруты на роутер.
func (h *OrderHandler) Register(r chi.Router) {
	r.Post("/orders", h.place)
	r.Get("/orders/{customerId}", h.listByCustomer)
}

// place всегда отвечает 200 с записью заказа: REJECTED — такой же
// валидный исход размещения, как и PLACED.
func (h *OrderHandler) place(w http.ResponseWriter, r *http.Request) {
	var payload placeOrderPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := h.orders.PlaceOrder(ctx, payload.CustomerID, payload.ItemID, payload.Quantity)
	if err != nil {
		h.logger.WithError(err).Error("place order failed")
		writeError(w, http.StatusInternalServerError, "failed to place order")
		return
	}

	writeJSON(w, http.StatusOK, h.toOrderResponse(ctx, order))
}

func (h *OrderHandler) listByCustomer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orders, err := h.orders.ListByCustomer(ctx, chi.URLParam(r, "customerId"))
	if err != nil {
		h.logger.WithError(err).Error("list orders failed")
		writeError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	response := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		response = append(response, h.toOrderResponse(ctx, order))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *OrderHandler) toOrderResponse(ctx context.Context, order domain.Order) orderResponse {
	response := orderResponse{
		ID:        order.ID,
		Quantity:  order.Quantity,
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt,
	}

	if order.CustomerID != "" {
		customer, err := h.customers.Get(ctx, order.CustomerID)
		if err == nil {
			c := toCustomerResponse(customer)
			response.Customer = &c
		} else if !errors.Is(err, domain.ErrCustomerNotFound) {
			h.logger.WithError(err).WithField("customer_id", order.CustomerID).Warn("resolve order customer failed")
		}
	}

	if order.ItemID != "" {
		item, err := h.stock.GetItem(ctx, order.ItemID)
		if err == nil {
			i := toItemResponse(item)
			response.Item = &i
		} else if !errors.Is(err, domain.ErrItemNotFound) {
			h.logger.WithError(err).WithField("item_id", order.ItemID).Warn("resolve order item failed")
		}
	}

	return response
}
