package product

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

var (
	ErrProductNotFound = errors.New("product not found")
	ErrProductExists   = errors.New("product with this name already exists")
)

// ListFilter holds the optional filters for product listing. Nil price bounds
// mean unbounded.
type ListFilter struct {
	Search   string
	MinPrice *float64
	MaxPrice *float64
}

type Repository interface {
	Create(ctx context.Context, p *Product) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*Product, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error
	List(ctx context.Context, filter ListFilter, page, limit int) ([]Product, int64, error)
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewRepository(database *mongo.Database) Repository {
	return &mongoRepository{collection: database.Collection("products")}
}

func (r *mongoRepository) Create(ctx context.Context, p *Product) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrProductExists
		}
		return primitive.NilObjectID, fmt.Errorf("repository: failed to insert product: %w", err)
	}

	return p.ID, nil
}

func (r *mongoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*Product, error) {
	var p Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product by id %s: %w", id.Hex(), err)
	}
	return &p, nil
}

func (r *mongoRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	filter := bson.M{"name": primitive.Regex{
		Pattern: "^" + regexp.QuoteMeta(name) + "$",
		Options: "i",
	}}

	err := r.collection.FindOne(ctx, filter).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("repository: failed to check product name %q: %w", name, err)
	}
	return true, nil
}

func (r *mongoRepository) DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	update := bson.M{
		"$inc": bson.M{"stock_quantity": -quantity},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	result, err := r.collection.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("repository: failed to decrement stock for product %s: %w", id.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *mongoRepository) List(ctx context.Context, filter ListFilter, page, limit int) ([]Product, int64, error) {
	query := bson.M{"is_active": true}

	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}

	if filter.MinPrice != nil || filter.MaxPrice != nil {
		priceRange := bson.M{}
		if filter.MinPrice != nil {
			priceRange["$gte"] = *filter.MinPrice
		}
		if filter.MaxPrice != nil {
			priceRange["$lte"] = *filter.MaxPrice
		}
		query["price"] = priceRange
	}

	skip := int64((page - 1) * limit)
	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(limit))

	var (
		products []Product
		total    int64
	)

	// The find and the count are independent reads, so run them concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cursor, err := r.collection.Find(gctx, query, findOpts)
		if err != nil {
			return fmt.Errorf("repository: failed to query products: %w", err)
		}
		if err := cursor.All(gctx, &products); err != nil {
			return fmt.Errorf("repository: failed to decode products: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		count, err := r.collection.CountDocuments(gctx, query)
		if err != nil {
			return fmt.Errorf("repository: failed to count products: %w", err)
		}
		total = count
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	if products == nil {
		products = []Product{}
	}
	return products, total, nil
}
