package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/user/storefront-go/apperror"
)

// Service implements catalog reads and the admin write operations.
type Service struct {
	store  Store
	images ImageStore
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(store Store, images ImageStore, logger *slog.Logger) *Service {
	return &Service{store: store, images: images, logger: logger}
}

// NewProduct is the validated input for creating a product.
type NewProduct struct {
	Name        string
	Price       decimal.Decimal
	Description string
}

// Prices must fit the products.price column, NUMERIC(12, 3), exactly.
const priceScale = 3

var maxPrice = decimal.New(1, 12-priceScale)

func validatePrice(p decimal.Decimal) error {
	switch {
	case !p.IsPositive():
		return apperror.NewValidationError("Price must be greater than zero.", nil)
	case !p.Equal(p.Truncate(priceScale)):
		return apperror.NewValidationError("Price must have at most 3 decimal places.", nil)
	case p.GreaterThanOrEqual(maxPrice):
		return apperror.NewValidationError("Price must be less than 1000000000.", nil)
	}
	return nil
}

func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	products, err := s.store.List(ctx)
	if err != nil {
		return nil, apperror.NewDatabaseError("Failed to list products.", err)
	}
	return products, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return p, nil
}

// CreateProduct stores a new product. Without an image it gets the placeholder.
func (s *Service) CreateProduct(ctx context.Context, in NewProduct, img *ImageUpload) (*Product, error) {
	if err := validatePrice(in.Price); err != nil {
		return nil, err
	}

	imageURL := PlaceholderImage
	if img != nil {
		url, err := s.saveImage(ctx, *img)
		if err != nil {
			return nil, err
		}
		imageURL = url
	}

	p, err := s.store.Create(ctx, Product{
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
		ImageURL:    imageURL,
	})
	if err != nil {
		s.removeImage(ctx, imageURL)
		return nil, apperror.NewDatabaseError("Failed to create product.", err)
	}

	s.logger.InfoContext(ctx, "product created", "product_id", p.ID)
	return p, nil
}

// UpdateProduct applies a partial update. A new image replaces the old one,
// which is removed once the update is stored.
func (s *Service) UpdateProduct(ctx context.Context, id int64, upd ProductUpdate, img *ImageUpload) (*Product, error) {
	if upd.Price != nil {
		if err := validatePrice(*upd.Price); err != nil {
			return nil, err
		}
	}

	if img != nil {
		url, err := s.saveImage(ctx, *img)
		if err != nil {
			return nil, err
		}
		upd.ImageURL = &url
	}

	before, after, err := s.store.Update(ctx, id, upd)
	if err != nil {
		if upd.ImageURL != nil {
			s.removeImage(ctx, *upd.ImageURL)
		}
		return nil, storeError(err)
	}

	if upd.ImageURL != nil && before.ImageURL != after.ImageURL {
		s.removeImage(ctx, before.ImageURL)
	}
	return after, nil
}

// DeleteProduct removes the product and its image.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	p, err := s.store.Delete(ctx, id)
	if err != nil {
		return storeError(err)
	}
	s.removeImage(ctx, p.ImageURL)
	s.logger.InfoContext(ctx, "product deleted", "product_id", id)
	return nil
}

func (s *Service) saveImage(ctx context.Context, img ImageUpload) (string, error) {
	url, err := s.images.Save(ctx, img)
	if err != nil {
		if _, ok := apperror.FromError(err); ok {
			return "", err
		}
		return "", apperror.NewInternalError("Failed to store image.", err)
	}
	return url, nil
}

// removeImage is best effort: a leftover file is logged, not returned.
func (s *Service) removeImage(ctx context.Context, url string) {
	if err := s.images.Remove(ctx, url); err != nil {
		s.logger.WarnContext(ctx, "failed to remove product image", "url", url, "error", err)
	}
}

func storeError(err error) error {
	if errors.Is(err, ErrProductNotFound) {
		return apperror.NewNotFoundError("Product not found.", nil)
	}
	return apperror.NewDatabaseError("Catalog lookup failed.", err)
}
