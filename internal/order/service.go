package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vasiliy-maslov/product-order-service/internal/db"
	"github.com/vasiliy-maslov/product-order-service/internal/product"
)

var allowedTransitions = map[OrderStatus]map[OrderStatus]bool{
	StatusPending: {
		StatusConfirmed: true,
		StatusCancelled: true,
	},
	StatusConfirmed: {
		StatusShipped:   true,
		StatusCancelled: true,
	},
	StatusShipped: {
		StatusDelivered: true,
		StatusCancelled: true,
	},
	StatusDelivered: {},
	StatusCancelled: {},
}

var ErrInvalidStatusTransition = errors.New("invalid order status transition")

// InsufficientStockError is returned when a requested quantity exceeds the
// product's current stock.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product: %s. Available: %d, Requested: %d",
		e.ProductName, e.Available, e.Requested)
}

// PlaceOrderItem is one requested (product, quantity) pair.
type PlaceOrderItem struct {
	ProductID primitive.ObjectID
	Quantity  int
}

type PlaceOrderInput struct {
	CustomerName string
	Products     []PlaceOrderItem
}

type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (primitive.ObjectID, error)
	GetOrderByID(ctx context.Context, id primitive.ObjectID) (*Order, error)
	ListOrders(ctx context.Context, filter ListFilter, page, limit int) ([]Order, int64, error)
	UpdateOrderStatus(ctx context.Context, id primitive.ObjectID, newStatus OrderStatus) error
}

type service struct {
	orders   Repository
	products product.Repository
	tx       db.TxManager
}

func NewService(orders Repository, products product.Repository, tx db.TxManager) Service {
	return &service{
		orders:   orders,
		products: products,
		tx:       tx,
	}
}

// PlaceOrder verifies stock, decrements inventory and persists the order as a
// single atomic transaction. Either every decrement and the order insertion
// take effect together, or none of them do.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (primitive.ObjectID, error) {
	var orderID primitive.ObjectID

	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		items := make([]OrderItem, 0, len(input.Products))

		// Items are processed in input order. Duplicate product ids are not
		// merged: a later decrement reads the stock level left by the earlier
		// one within the same transaction.
		for _, requested := range input.Products {
			p, err := s.products.GetByID(txCtx, requested.ProductID)
			if err != nil {
				if errors.Is(err, product.ErrProductNotFound) {
					return fmt.Errorf("%w: %s", product.ErrProductNotFound, requested.ProductID.Hex())
				}
				return fmt.Errorf("service: failed to fetch product %s: %w", requested.ProductID.Hex(), err)
			}
			if !p.IsActive {
				return fmt.Errorf("%w: %s", product.ErrProductNotFound, requested.ProductID.Hex())
			}

			if !p.InStock(requested.Quantity) {
				return &InsufficientStockError{
					ProductName: p.Name,
					Available:   p.StockQuantity,
					Requested:   requested.Quantity,
				}
			}

			items = append(items, OrderItem{
				ProductID: p.ID,
				Quantity:  requested.Quantity,
				Price:     p.Price,
			})

			if err := s.products.DecrementStock(txCtx, p.ID, requested.Quantity); err != nil {
				return fmt.Errorf("service: failed to decrement stock for product %s: %w", p.ID.Hex(), err)
			}
		}

		o := &Order{
			CustomerName: input.CustomerName,
			Products:     items,
		}
		o.Finalize(time.Now().UTC())

		id, err := s.orders.Create(txCtx, o)
		if err != nil {
			return fmt.Errorf("service: failed to create order: %w", err)
		}
		orderID = id
		return nil
	})

	if err != nil {
		var stockErr *InsufficientStockError
		switch {
		case errors.Is(err, product.ErrProductNotFound):
			log.Warn().Err(err).Str("customer_name", input.CustomerName).Msg("service: order references unknown product")
		case errors.As(err, &stockErr):
			log.Warn().
				Str("customer_name", input.CustomerName).
				Str("product_name", stockErr.ProductName).
				Int("available", stockErr.Available).
				Int("requested", stockErr.Requested).
				Msg("service: insufficient stock for order")
		default:
			log.Error().Err(err).Str("customer_name", input.CustomerName).Msg("service: order placement transaction failed")
		}
		return primitive.NilObjectID, err
	}

	log.Info().Stringer("order_id", orderID).Str("customer_name", input.CustomerName).Msg("service: order placed")
	return orderID, nil
}

func (s *service) GetOrderByID(ctx context.Context, id primitive.ObjectID) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", id).Msg("service: order not found by id")
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to fetch order by id")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}
	return o, nil
}

func (s *service) ListOrders(ctx context.Context, filter ListFilter, page, limit int) ([]Order, int64, error) {
	orders, total, err := s.orders.List(ctx, filter, page, limit)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list orders")
		return nil, 0, fmt.Errorf("service: failed to list orders: %w", err)
	}
	return orders, total, nil
}

func (s *service) UpdateOrderStatus(ctx context.Context, orderID primitive.ObjectID, newStatus OrderStatus) error {
	currentOrder, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", orderID).Stringer("new_status", newStatus).Msg("service: order not found, cannot update status")
			return ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to get order for status update")
		return fmt.Errorf("service: failed to get order for status update: %w", err)
	}

	if currentOrder.Status == newStatus {
		log.Info().Stringer("order_id", orderID).Stringer("status", newStatus).Msg("service: order status already set, no update needed")
		return nil
	}

	if !allowedTransitions[currentOrder.Status][newStatus] {
		log.Warn().
			Stringer("order_id", orderID).
			Stringer("current_status", currentOrder.Status).
			Stringer("new_status", newStatus).
			Msg("service: invalid status transition attempt")
		return fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, currentOrder.Status, newStatus)
	}

	if err := s.orders.UpdateStatus(ctx, orderID, newStatus); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Stringer("new_status", newStatus).Msg("service: failed to update order status")
		return fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().Stringer("order_id", orderID).Stringer("old_status", currentOrder.Status).Stringer("new_status", newStatus).Msg("service: order status updated")
	return nil
}
