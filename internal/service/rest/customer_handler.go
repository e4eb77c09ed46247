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

// CustomerService — операции над клиентами, нужные HTTP-слою.
type CustomerService interface {
	List(ctx context.Context) ([]domain.Customer, error)
	Get(ctx context.Context, id string) (domain.Customer, error)
	Save(ctx context.Context, c domain.Customer) (domain.Customer, error)
}

type customerPayload struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

type customerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCustomerResponse(c domain.Customer) customerResponse {
	return customerResponse{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// CustomerHandler обрабатывает запросы /customers.
type CustomerHandler struct {
	service CustomerService
	logger  *log.Entry
}

// NewCustomerHandler конструирует handler клиентов.
func NewCustomerHandler(service CustomerService, logger *log.Entry) *CustomerHandler {
	if logger == nil {
		logger = log.WithField("component", "customer-handler")
	}
	return &CustomerHandler{service: service, logger: logger}
}

// Register вешает маршруты на роутер.
func (h *CustomerHandler) Register(r chi.Router) {
	r.Get("/customers", h.list)
	r.Post("/customers", h.save)
	r.Get("/customers/{id}", h.get)
}

func (h *CustomerHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	customers, err := h.service.List(ctx)
	if err != nil {
		h.logger.WithError(err).Error("list customers failed")
		writeError(w, http.StatusInternalServerError, "failed to list customers")
		return
	}

	response := make([]customerResponse, 0, len(customers))
	for _, c := range customers {
		response = append(response, toCustomerResponse(c))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *CustomerHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	customer, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrCustomerNotFound) {
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("get customer failed")
		writeError(w, http.StatusInternalServerError, "failed to get customer")
		return
	}

	writeJSON(w, http.StatusOK, toCustomerResponse(customer))
}

func (h *CustomerHandler) save(w http.ResponseWriter, r *http.Request) {
	var payload customerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	saved, err := h.service.Save(ctx, domain.Customer{ID: payload.ID, Name: payload.Name})
	if errors.Is(err, domain.ErrCustomerNameRequired) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("save customer failed")
		writeError(w, http.StatusInternalServerError, "failed to save customer")
		return
	}

	writeJSON(w, http.StatusOK, toCustomerResponse(saved))
}
