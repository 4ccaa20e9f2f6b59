// Package catalog owns the product catalog: the single source of truth for
// prices, the stores behind it and the admin CRUD endpoints with image upload.
package catalog

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices are JSON numbers (1200, 5.005), not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// PlaceholderImage is used when a product has no uploaded image. It is never deleted.
const PlaceholderImage = "/uploads/placeholder.png"

var ErrProductNotFound = errors.New("product not found")

// Product is a catalog item. Price is exact; it is never taken from a client cart.
type Product struct {
	ID          int64           `json:"id" example:"1"`
	Name        string          `json:"name" example:"Laptop Pro"`
	Price       decimal.Decimal `json:"price" swaggertype:"number" example:"1200"`
	Description string          `json:"description" example:"A high-performance laptop for professionals."`
	ImageURL    string          `json:"imageUrl" example:"/uploads/placeholder.png"`
}

// ProductUpdate is a partial update; nil fields are left unchanged.
type ProductUpdate struct {
	Name        *string
	Price       *decimal.Decimal
	Description *string
	ImageURL    *string
}

func (u ProductUpdate) apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.ImageURL != nil {
		p.ImageURL = *u.ImageURL
	}
}

// Store persists products.
// Update and Delete return the product as it was before the change so the
// caller can clean up a replaced image.
type Store interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, p Product) (*Product, error)
	Update(ctx context.Context, id int64, upd ProductUpdate) (before, after *Product, err error)
	Delete(ctx context.Context, id int64) (*Product, error)
}

// SeedProducts is the catalog a fresh install starts with.
func SeedProducts() []Product {
	return []Product{
		{Name: "Laptop Pro", Price: decimal.NewFromInt(1200), Description: "A high-performance laptop for professionals.", ImageURL: PlaceholderImage},
		{Name: "Wireless Mouse", Price: decimal.NewFromInt(25), Description: "Ergonomic wireless mouse with long battery life.", ImageURL: PlaceholderImage},
		{Name: "Mechanical Keyboard", Price: decimal.NewFromInt(75), Description: "A tactile and responsive keyboard for typing and gaming.", ImageURL: PlaceholderImage},
	}
}
