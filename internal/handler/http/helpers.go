package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vasiliy-maslov/product-order-service/internal/order"
	"github.com/vasiliy-maslov/product-order-service/internal/product"
)

const (
	codeValidationError = "VALIDATION_ERROR"
	codeDuplicateKey    = "DUPLICATE_KEY_ERROR"
	codeInternalError   = "INTERNAL_ERROR"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// Response is the success envelope shared by every endpoint.
type Response struct {
	Status     string      `json:"status"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

// ErrorResponse is the error envelope shared by every endpoint.
type ErrorResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Errors    []string  `json:"errors,omitempty"`
	Code      string    `json:"code,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Pagination struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
	HasNextPage bool  `json:"has_next_page"`
	HasPrevPage bool  `json:"has_prev_page"`
	NextPage    *int  `json:"next_page"`
	PrevPage    *int  `json:"prev_page"`
}

// NewPagination derives page metadata from the requested page, the page size
// and the total number of matching items.
func NewPagination(page, limit int, total int64) *Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	p := &Pagination{
		CurrentPage: page,
		PerPage:     limit,
		TotalItems:  total,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
	if p.HasNextPage {
		next := page + 1
		p.NextPage = &next
	}
	if p.HasPrevPage {
		prev := page - 1
		p.PrevPage = &prev
	}
	return p
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status":"error","message":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondSuccess(w http.ResponseWriter, code int, message string, data interface{}, pagination *Pagination) {
	respondWithJSON(w, code, Response{
		Status:     "success",
		Message:    message,
		Data:       data,
		Pagination: pagination,
		Timestamp:  time.Now().UTC(),
	})
}

func respondError(w http.ResponseWriter, code int, message string, errs []string, errCode string) {
	respondWithJSON(w, code, ErrorResponse{
		Status:    "error",
		Message:   message,
		Errors:    errs,
		Code:      errCode,
		Timestamp: time.Now().UTC(),
	})
}

func mapErrorToStatusCode(err error) int {
	var stockErr *order.InsufficientStockError
	switch {
	case errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, order.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, product.ErrProductExists):
		return http.StatusConflict
	case errors.As(err, &stockErr),
		errors.Is(err, order.ErrInvalidStatusTransition):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseObjectID validates the 24-character hex format before any lookup runs.
func parseObjectID(param string) (primitive.ObjectID, bool) {
	if !objectIDPattern.MatchString(param) {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(param)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// parsePagination reads page and limit from the query string, applying the
// defaults and collecting every violation instead of stopping at the first.
func parsePagination(query url.Values) (page, limit int, errs []string) {
	page = defaultPage
	limit = defaultLimit

	if raw := query.Get("page"); raw != "" {
		value, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			errs = append(errs, "Page must be an integer")
		case value < 1:
			errs = append(errs, "Page must be at least 1")
		default:
			page = value
		}
	}

	if raw := query.Get("limit"); raw != "" {
		value, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			errs = append(errs, "Limit must be an integer")
		case value < 1:
			errs = append(errs, "Limit must be at least 1")
		case value > maxLimit:
			errs = append(errs, fmt.Sprintf("Limit cannot exceed %d", maxLimit))
		default:
			limit = value
		}
	}

	return page, limit, errs
}

func formatValidationErrors(validationErrors validator.ValidationErrors) []string {
	details := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		details = append(details, formatFieldError(fieldError))
	}
	return details
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", field, fe.Param())
	case "min":
		if fe.Kind().String() == "slice" {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s cannot be negative", field)
	case "len", "hexadecimal":
		return fmt.Sprintf("%s must be a valid 24-character hex id", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
