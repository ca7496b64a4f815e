package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/product-order-service/internal/product"
)

type CreateProductRequest struct {
	Name          string  `json:"name" validate:"required,max=100"`
	Description   string  `json:"description" validate:"required,max=500"`
	Price         float64 `json:"price" validate:"gte=0"`
	StockQuantity int     `json:"stock_quantity" validate:"gte=0"`
}

type ProductHandler struct {
	service  product.Service
	validate *validator.Validate
}

func NewProductHandler(service product.Service) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *ProductHandler) RegisterRoutes(router chi.Router) {
	router.Post("/products", h.handleCreateProduct)
	router.Get("/products", h.handleListProducts)
	router.Get("/products/{id}", h.handleGetProductByID)
}

func (h *ProductHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateProductRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode create product request body")
		respondError(w, http.StatusBadRequest, "Invalid request body", nil, codeValidationError)
		return
	}

	requestPayload.Name = strings.TrimSpace(requestPayload.Name)
	requestPayload.Description = strings.TrimSpace(requestPayload.Description)

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

	p := product.Product{
		Name:          requestPayload.Name,
		Description:   requestPayload.Description,
		Price:         requestPayload.Price,
		StockQuantity: requestPayload.StockQuantity,
	}

	id, err := h.service.CreateProduct(r.Context(), &p)
	if err != nil {
		if errors.Is(err, product.ErrProductExists) {
			respondError(w, http.StatusConflict, "Product already exists",
				[]string{"A product with this name already exists"}, codeDuplicateKey)
			return
		}
		log.Error().Err(err).Msg("Failed to create product via service")
		respondError(w, mapErrorToStatusCode(err), "Failed to create product", nil, codeInternalError)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"id": id.Hex()})
}

func (h *ProductHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, limit, paramErrs := parsePagination(query)

	var filter product.ListFilter
	filter.Search = query.Get("search")

	if raw := query.Get("min_price"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			paramErrs = append(paramErrs, "min_price must be a number")
		} else {
			filter.MinPrice = &value
		}
	}
	if raw := query.Get("max_price"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			paramErrs = append(paramErrs, "max_price must be a number")
		} else {
			filter.MaxPrice = &value
		}
	}

	if len(paramErrs) > 0 {
		respondError(w, http.StatusBadRequest, "Invalid pagination parameters", paramErrs, codeValidationError)
		return
	}

	products, total, err := h.service.ListProducts(r.Context(), filter, page, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products via service")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve products", nil, codeInternalError)
		return
	}

	respondSuccess(w, http.StatusOK, "Products retrieved successfully",
		map[string]interface{}{"products": products}, NewPagination(page, limit, total))
}

func (h *ProductHandler) handleGetProductByID(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")

	id, ok := parseObjectID(idParam)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid product ID format", nil, codeValidationError)
		return
	}

	p, err := h.service.GetProductByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "Product not found", nil, "")
			return
		}
		log.Error().Err(err).Str("product_id", idParam).Msg("Failed to get product via service")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve product", nil, codeInternalError)
		return
	}

	respondSuccess(w, http.StatusOK, "Product retrieved successfully",
		map[string]interface{}{"product": p}, nil)
}
