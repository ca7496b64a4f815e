package order

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

var ErrOrderNotFound = errors.New("order not found")

// ListFilter holds the optional filters for order listing. Nil date bounds
// mean unbounded.
type ListFilter struct {
	CustomerName string
	Status       OrderStatus
	StartDate    *time.Time
	EndDate      *time.Time
}

type Repository interface {
	Create(ctx context.Context, o *Order) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, newStatus OrderStatus) error
	List(ctx context.Context, filter ListFilter, page, limit int) ([]Order, int64, error)
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewRepository(database *mongo.Database) Repository {
	return &mongoRepository{collection: database.Collection("orders")}
}

func (r *mongoRepository) Create(ctx context.Context, o *Order) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	o.ID = primitive.NewObjectID()
	o.CreatedAt = now
	o.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, o); err != nil {
		return primitive.NilObjectID, fmt.Errorf("repository: failed to insert order: %w", err)
	}

	return o.ID, nil
}

func (r *mongoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*Order, error) {
	var o Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id.Hex(), err)
	}
	return &o, nil
}

func (r *mongoRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, newStatus OrderStatus) error {
	update := bson.M{
		"$set": bson.M{
			"status":     string(newStatus),
			"updated_at": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("repository: failed to update status for order %s: %w", id.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *mongoRepository) List(ctx context.Context, filter ListFilter, page, limit int) ([]Order, int64, error) {
	query := bson.M{}

	if filter.CustomerName != "" {
		query["customer_name"] = primitive.Regex{
			Pattern: regexp.QuoteMeta(filter.CustomerName),
			Options: "i",
		}
	}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	if filter.StartDate != nil || filter.EndDate != nil {
		dateRange := bson.M{}
		if filter.StartDate != nil {
			dateRange["$gte"] = *filter.StartDate
		}
		if filter.EndDate != nil {
			dateRange["$lte"] = *filter.EndDate
		}
		query["order_date"] = dateRange
	}

	skip := int64((page - 1) * limit)
	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(limit))

	var (
		orders []Order
		total  int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cursor, err := r.collection.Find(gctx, query, findOpts)
		if err != nil {
			return fmt.Errorf("repository: failed to query orders: %w", err)
		}
		if err := cursor.All(gctx, &orders); err != nil {
			return fmt.Errorf("repository: failed to decode orders: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		count, err := r.collection.CountDocuments(gctx, query)
		if err != nil {
			return fmt.Errorf("repository: failed to count orders: %w", err)
		}
		total = count
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	if orders == nil {
		orders = []Order{}
	}
	return orders, total, nil
}
