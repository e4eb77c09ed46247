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

// StockService — операции над складскими позициями, нужные HTTP-слою.
type StockService interface {
	ListItems(ctx context.Context) ([]domain.Item, error)
	GetItem(ctx context.Context, id string) (domain.Item, error)
	SaveItem(ctx context.Context, item domain.Item) (domain.Item, error)
	DeleteItem(ctx context.Context, id string) error
}

type itemPayload struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Quantity int32  `json:"quantity"`
}

type itemResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Quantity  int32     `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toItemResponse(item domain.Item) itemResponse {
	return itemResponse{
		ID:        item.ID,
		Name:      item.Name,
		Quantity:  item.Quantity,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

// InventoryHandler обрабатывает запросы /inventory.
type InventoryHandler struct {
	service StockService
	logger  *log.Entry
}

// NewInventoryHandler конструирует handler склада.
func NewInventoryHandler(service StockService, logger *log.Entry) *InventoryHandler {
	if logger == nil {
		logger = log.WithField("component", "inventory-handler")
	}
	return &InventoryHandler{service: service, logger: logger}
}

// Register вешает маршруты на роутер.
func (h *InventoryHandler) Register(r chi.Router) {
	r.Get("/inventory", h.list)
	r.Post("/inventory", h.save)
	r.Get("/inventory/{id}", h.get)
	r.Delete("/inventory/{id}", h.delete)
}

func (h *InventoryHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.service.ListItems(ctx)
	if err != nil {
		h.logger.WithError(err).Error("list items failed")
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	response := make([]itemResponse, 0, len(items))
	for _, item := range items {
		response = append(response, toItemResponse(item))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *InventoryHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.GetItem(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrItemNotFound) {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("get item failed")
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return
	}

	writeJSON(w, http.StatusOK, toItemResponse(item))
}

func (h *InventoryHandler) save(w http.ResponseWriter, r *http.Request) {
	var payload itemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	saved, err := h.service.SaveItem(ctx, domain.Item{
		ID:       payload.ID,
		Name:     payload.Name,
		Quantity: payload.Quantity,
	})
	if errors.Is(err, domain.ErrItemNameRequired) || errors.Is(err, domain.ErrItemQuantityNegative) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("save item failed")
		writeError(w, http.StatusInternalServerError, "failed to save item")
		return
	}

	writeJSON(w, http.StatusOK, toItemResponse(saved))
}

// delete отвечает 200 и для несуществующей позиции: удаление идемпотентно.
func (h *InventoryHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.DeleteItem(ctx, chi.URLParam(r, "id")); err != nil {
		h.logger.WithError(err).Error("delete item failed")
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	w.WriteHeader(http.StatusOK)
}
