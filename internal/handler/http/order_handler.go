package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vasiliy-maslov/product-order-service/internal/order"
	"github.com/vasiliy-maslov/product-order-service/internal/product"
)

type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,len=24,hexadecimal"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type CreateOrderRequest struct {
	CustomerName string             `json:"customer_name" validate:"required,max=100"`
	Products     []OrderItemRequest `json:"products" validate:"required,min=1,dive"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed shipped delivered cancelled"`
}

type OrderHandler struct {
	service  order.Service
	validate *validator.Validate
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Post("/orders", h.handleCreateOrder)
	router.Get("/orders", h.handleListOrders)
	router.Get("/orders/{id}", h.handleGetOrderByID)
	router.Patch("/orders/{id}/status", h.handleUpdateOrderStatus)
}

func (h *OrderHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateOrderRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode create order request body")
		respondError(w, http.StatusBadRequest, "Invalid request body", nil, codeValidationError)
		return
	}

	requestPayload.CustomerName = strings.TrimSpace(requestPayload.CustomerName)

	if err := h.validate.Struct(requestPayload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondError(w, http.StatusBadRequest, "Validation failed", formatValidationErrors(validationErrors), codeValidationError)
			return
		}
		log.Error().Err(err).Msg("Unexpected error type during validation")
		respondError(w, http.StatusInternalServerError, "Internal validation error", nil, codeInternalError)
		return
	}

	input := order.PlaceOrderInput{
		CustomerName: requestPayload.CustomerName,
		Products:     make([]order.PlaceOrderItem, 0, len(requestPayload.Products)),
	}
	for _, item := range requestPayload.Products {
		productID, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Validation failed",
				[]string{"ProductID must be a valid 24-character hex id"}, codeValidationError)
			return
		}
		input.Products = append(input.Products, order.PlaceOrderItem{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}

	id, err := h.service.PlaceOrder(r.Context(), input)
	if err != nil {
		var stockErr *order.InsufficientStockError
		switch {
		case errors.Is(err, product.ErrProductNotFound):
			respondError(w, http.StatusNotFound, err.Error(), nil, "")
		case errors.As(err, &stockErr):
			respondError(w, http.StatusBadRequest, stockErr.Error(), nil, "")
		default:
			log.Error().Err(err).Msg("Failed to place order via service")
			respondError(w, http.StatusInternalServerError, "Failed to place order", nil, codeInternalError)
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"id": id.Hex()})
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, limit, paramErrs := parsePagination(query)

	var filter order.ListFilter
	filter.CustomerName = query.Get("customer_name")

	if raw := query.Get("status"); raw != "" {
		status := order.OrderStatus(raw)
		if !status.Valid() {
			paramErrs = append(paramErrs, "status must be one of: pending confirmed shipped delivered cancelled")
		} else {
			filter.Status = status
		}
	}

	if raw := query.Get("start_date"); raw != "" {
		value, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			paramErrs = append(paramErrs, "start_date must be an RFC 3339 timestamp")
		} else {
			filter.StartDate = &value
		}
	}
	if raw := query.Get("end_date"); raw != "" {
		value, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			paramErrs = append(paramErrs, "end_date must be an RFC 3339 timestamp")
		} else {
			filter.EndDate = &value
		}
	}

	if len(paramErrs) > 0 {
		respondError(w, http.StatusBadRequest, "Invalid pagination parameters", paramErrs, codeValidationError)
		return
	}

	orders, total, err := h.service.ListOrders(r.Context(), filter, page, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list orders via service")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve orders", nil, codeInternalError)
		return
	}

	respondSuccess(w, http.StatusOK, "Orders retrieved successfully",
		map[string]interface{}{"orders": orders}, NewPagination(page, limit, total))
}

func (h *OrderHandler) handleGetOrderByID(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")

	id, ok := parseObjectID(idParam)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid order ID format", nil, codeValidationError)
		return
	}

	o, err := h.service.GetOrderByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "Order not found", nil, "")
			return
		}
		log.Error().Err(err).Str("order_id", idParam).Msg("Failed to get order via service")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve order", nil, codeInternalError)
		return
	}

	respondSuccess(w, http.StatusOK, "Order retrieved successfully",
		map[string]interface{}{"order": o}, nil)
}

func (h *OrderHandler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")

	id, ok := parseObjectID(idParam)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid order ID format", nil, codeValidationError)
		return
	}

	var requestPayload UpdateOrderStatusRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode update order status request body")
		respondError(w, http.StatusBadRequest, "Invalid request body", nil, codeValidationError)
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondError(w, http.StatusBadRequest, "Validation failed", formatValidationErrors(validationErrors), codeValidationError)
			return
		}
		log.Error().Err(err).Msg("Unexpected error type during validation")
		respondError(w, http.StatusInternalServerError, "Internal validation error", nil, codeInternalError)
		return
	}

	err := h.service.UpdateOrderStatus(r.Context(), id, order.OrderStatus(requestPayload.Status))
	if err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			respondError(w, http.StatusNotFound, "Order not found", nil, "")
		case errors.Is(err, order.ErrInvalidStatusTransition):
			respondError(w, http.StatusBadRequest, err.Error(), nil, "")
		default:
			log.Error().Err(err).Str("order_id", idParam).Msg("Failed to update order status via service")
			respondError(w, http.StatusInternalServerError, "Failed to update order status", nil, codeInternalError)
		}
		return
	}

	respondSuccess(w, http.StatusOK, "Order status updated successfully", nil, nil)
}
