package transport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vasiliy-maslov/product-order-service/internal/db"
	handler "github.com/vasiliy-maslov/product-order-service/internal/handler/http"
	"github.com/vasiliy-maslov/product-order-service/internal/order"
	"github.com/vasiliy-maslov/product-order-service/internal/product"
)

// NewRouter wires repositories, services and handlers onto a chi router.
func NewRouter(database *db.Mongo) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	productRepo := product.NewRepository(database.Database)
	productSvc := product.NewService(productRepo)

	orderRepo := order.NewRepository(database.Database)
	orderSvc := order.NewService(orderRepo, productRepo, db.NewTxManager(database))

	handler.NewProductHandler(productSvc).RegisterRoutes(r)
	handler.NewOrderHandler(orderSvc).RegisterRoutes(r)
	handler.NewHealthHandler(time.Now()).RegisterRoutes(r)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		handler.NotFound(w, req)
	})

	return r
}
