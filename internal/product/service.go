package product

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Service interface {
	CreateProduct(ctx context.Context, p *Product) (primitive.ObjectID, error)
	GetProductByID(ctx context.Context, id primitive.ObjectID) (*Product, error)
	ListProducts(ctx context.Context, filter ListFilter, page, limit int) ([]Product, int64, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateProduct(ctx context.Context, p *Product) (primitive.ObjectID, error) {
	exists, err := s.repo.ExistsByName(ctx, p.Name)
	if err != nil {
		log.Error().Err(err).Str("name", p.Name).Msg("service: failed to check product name uniqueness")
		return primitive.NilObjectID, fmt.Errorf("service: failed to check product name: %w", err)
	}
	if exists {
		log.Warn().Str("name", p.Name).Msg("service: attempt to create duplicate product")
		return primitive.NilObjectID, ErrProductExists
	}

	// Prices are stored with two-decimal precision.
	p.Price = math.Round(p.Price*100) / 100
	p.IsActive = true

	id, err := s.repo.Create(ctx, p)
	if err != nil {
		if errors.Is(err, ErrProductExists) {
			return primitive.NilObjectID, ErrProductExists
		}
		log.Error().Err(err).Str("name", p.Name).Msg("service: failed to create product in repository")
		return primitive.NilObjectID, fmt.Errorf("service: failed to create product: %w", err)
	}

	log.Info().Stringer("product_id", id).Str("name", p.Name).Msg("service: product created")
	return id, nil
}

func (s *service) GetProductByID(ctx context.Context, id primitive.ObjectID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to fetch product by id")
		return nil, fmt.Errorf("service: failed to fetch product by id: %w", err)
	}

	// Deactivated products are invisible to reads.
	if !p.IsActive {
		return nil, ErrProductNotFound
	}

	return p, nil
}

func (s *service) ListProducts(ctx context.Context, filter ListFilter, page, limit int) ([]Product, int64, error) {
	products, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list products")
		return nil, 0, fmt.Errorf("service: failed to list products: %w", err)
	}
	return products, total, nil
}
