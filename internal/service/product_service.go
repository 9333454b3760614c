package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"catalog/internal/auth"
	"catalog/internal/cache"
	apperrors "catalog/internal/errors"
	"catalog/internal/events"
	"catalog/internal/logging"
	"catalog/internal/model"
	"catalog/internal/repository"
)

const productCacheTTL = 5 * time.Minute

// ProductInput holds the fields accepted when creating a product.
type ProductInput struct {
	Name            string
	Description     string
	Price           *decimal.Decimal
	ProductImageURL string
}

// ProductService handles catalog operations. Mutations take the acting user
// and are authorized against the row read inside the write transaction.
type ProductService interface {
	List(ctx context.Context) ([]model.Product, error)
	Get(ctx context.Context, id uint) (*model.Product, error)
	Create(ctx context.Context, actor *model.User, input ProductInput) (*model.Product, error)
	Update(ctx context.Context, actor *model.User, id uint, patch model.ProductPatch) (*model.Product, error)
	Delete(ctx context.Context, actor *model.User, id uint) error
}

type productService struct {
	repo      repository.ProductRepository
	cache     *cache.Client
	publisher events.Publisher
}

// NewProductService creates a new product service. cache may be nil.
func NewProductService(repo repository.ProductRepository, cache *cache.Client, publisher events.Publisher) ProductService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &productService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
	}
}

func (s *productService) cacheKey(id uint) string {
	return fmt.Sprintf("product:%d", id)
}

func (s *productService) List(ctx context.Context) ([]model.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Get retrieves a product by ID with caching.
func (s *productService) Get(ctx context.Context, id uint) (*model.Product, error) {
	var cached model.Product
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	s.cache.SetJSON(ctx, s.cacheKey(id), product, productCacheTTL)
	return product, nil
}

func (s *productService) Create(ctx context.Context, actor *model.User, input ProductInput) (*model.Product, error) {
	if actor == nil {
		return nil, apperrors.ErrTokenMissing
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.Required("name")
	}
	if input.Price == nil {
		return nil, apperrors.Required("price")
	}
	if err := validatePrice(*input.Price); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:            input.Name,
		Description:     input.Description,
		Price:           *input.Price,
		ProductImageURL: input.ProductImageURL,
		CreatedBy:       actor.ID,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.publish(ctx, events.ProductCreated, product, actor)
	return product, nil
}

// Update applies only the fields present in patch.
func (s *productService) Update(ctx context.Context, actor *model.User, id uint, patch model.ProductPatch) (*model.Product, error) {
	if actor == nil {
		return nil, apperrors.ErrTokenMissing
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, apperrors.Invalid("name", "name cannot be empty")
	}
	if patch.Price != nil {
		if err := validatePrice(*patch.Price); err != nil {
			return nil, err
		}
	}

	var updated *model.Product
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, repo repository.ProductRepository) error {
		product, err := s.loadForWrite(ctx, repo, id)
		if err != nil {
			return err
		}
		if !auth.CanModify(actor, product) {
			return apperrors.ErrUpdateForbidden
		}
		if patch.Empty() {
			updated = product
			return nil
		}

		patch.Apply(product)
		if err := repo.Update(ctx, product); err != nil {
			return fmt.Errorf("update product: %w", err)
		}

		// Re-read for the server-assigned updated_at.
		updated, err = s.loadForWrite(ctx, repo, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, s.cacheKey(id))
	s.publish(ctx, events.ProductUpdated, updated, actor)
	return updated, nil
}

func (s *productService) Delete(ctx context.Context, actor *model.User, id uint) error {
	if actor == nil {
		return apperrors.ErrTokenMissing
	}

	var deleted *model.Product
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, repo repository.ProductRepository) error {
		product, err := s.loadForWrite(ctx, repo, id)
		if err != nil {
			return err
		}
		if !auth.CanModify(actor, product) {
			return apperrors.ErrDeleteForbidden
		}
		if err := repo.Delete(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrProductNotFound
			}
			return fmt.Errorf("delete product: %w", err)
		}
		deleted = product
		return nil
	})
	if err != nil {
		return err
	}

	_ = s.cache.Delete(ctx, s.cacheKey(id))
	s.publish(ctx, events.ProductDeleted, deleted, actor)
	return nil
}

func (s *productService) loadForWrite(ctx context.Context, repo repository.ProductRepository, id uint) (*model.Product, error) {
	product, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("load product: %w", err)
	}
	return product, nil
}

// publish never fails the request; delivery problems are only logged.
func (s *productService) publish(ctx context.Context, kind string, product *model.Product, actor *model.User) {
	event := events.ProductEvent{
		Type:      kind,
		ProductID: product.ID,
		ActorID:   actor.ID,
		At:        time.Now().UTC(),
	}
	if kind != events.ProductDeleted {
		event.Name = product.Name
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, event); err != nil {
		logging.FromContext(ctx).Error("publish product event", "type", kind, "product_id", product.ID, "error", err)
	}
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return apperrors.Invalid("price", "price must be a non-negative number")
	}
	return nil
}
