package order

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

func (os OrderStatus) String() string {
	return string(os)
}

func (os OrderStatus) Valid() bool {
	switch os {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// OrderItem is one line of an order. Price is a snapshot of the product price
// at order time, so later price changes never affect historical totals.
type OrderItem struct {
	ProductID primitive.ObjectID `json:"product_id" bson:"product_id"`
	Quantity  int                `json:"quantity" bson:"quantity"`
	Price     float64            `json:"price" bson:"price"`
	Subtotal  float64            `json:"subtotal" bson:"subtotal"`
}

type Order struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CustomerName string             `json:"customer_name" bson:"customer_name"`
	Products     []OrderItem        `json:"products" bson:"products"`
	TotalPrice   float64            `json:"total_price" bson:"total_price"`
	Status       OrderStatus        `json:"status" bson:"status"`
	OrderDate    time.Time          `json:"order_date" bson:"order_date"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// CalculateTotal sums price×quantity over all line items without mutating the
// order.
func (o *Order) CalculateTotal() float64 {
	total := 0.0
	for _, item := range o.Products {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Finalize recomputes every subtotal and the total price, and fills in the
// defaults for status and order date. Called exactly once, right before the
// order is persisted.
func (o *Order) Finalize(now time.Time) {
	total := 0.0
	for i := range o.Products {
		item := &o.Products[i]
		item.Subtotal = item.Price * float64(item.Quantity)
		total += item.Subtotal
	}
	o.TotalPrice = total

	if o.Status == "" {
		o.Status = StatusPending
	}
	if o.OrderDate.IsZero() {
		o.OrderDate = now
	}
}
