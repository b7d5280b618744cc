package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/deskboard/internal/apperror"
	"github.com/sakif/deskboard/internal/docstore"
	"github.com/sakif/deskboard/internal/model"
)

// ProductService manages the products under users/{uid}/products. Each user
// only ever sees their own subtree.
type ProductService struct {
	store  DocumentStore
	logger *slog.Logger
}

func NewProductService(store DocumentStore, logger *slog.Logger) *ProductService {
	return &ProductService{store: store, logger: logger}
}

func productsPath(uid string) string {
	return docstore.Join("users", uid, "products")
}

func validateProduct(in *model.ProductInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.SKU = strings.TrimSpace(in.SKU)

	switch {
	case in.Name == "":
		return apperror.ValidationFailed("name", "Product name is required.")
	case in.Price < 0:
		return apperror.ValidationFailed("price", "Price cannot be negative.")
	case in.Stock < 0:
		return apperror.ValidationFailed("stock", "Stock cannot be negative.")
	}
	return nil
}

// Save creates when id is empty and updates otherwise.
func (s *ProductService) Save(ctx context.Context, uid, id string, in model.ProductInput) (*model.Product, error) {
	if id == "" {
		return s.Create(ctx, uid, in)
	}
	return s.Update(ctx, uid, id, in)
}

// Create stores a new product. Unlike articles the record carries its own
// id, so the key is allocated first and written into the value.
func (s *ProductService) Create(ctx context.Context, uid string, in model.ProductInput) (*model.Product, error) {
	if err := validateProduct(&in); err != nil {
		return nil, err
	}

	t := now()
	p := &model.Product{
		ID:           docstore.NewKey(),
		Name:         in.Name,
		Category:     in.Category,
		Price:        in.Price,
		Stock:        in.Stock,
		Description:  in.Description,
		Manufacturer: in.Manufacturer,
		SKU:          in.SKU,
		CreatedAt:    t,
		UpdatedAt:    t,
	}
	if err := s.store.Set(ctx, docstore.Join(productsPath(uid), p.ID), p); err != nil {
		return nil, fmt.Errorf("service/product: creating product: %w", err)
	}

	s.logger.Info("product created", slog.String("id", p.ID), slog.String("uid", uid))
	return p, nil
}

// Update overwrites the editable fields of an existing product.
func (s *ProductService) Update(ctx context.Context, uid, id string, in model.ProductInput) (*model.Product, error) {
	if err := validateProduct(&in); err != nil {
		return nil, err
	}

	p, err := s.Get(ctx, uid, id)
	if err != nil {
		return nil, err
	}

	t := now()
	err = s.store.Update(ctx, docstore.Join(productsPath(uid), id), map[string]any{
		"name":         in.Name,
		"category":     in.Category,
		"price":        in.Price,
		"stock":        in.Stock,
		"description":  in.Description,
		"manufacturer": in.Manufacturer,
		"sku":          in.SKU,
		"updatedAt":    t,
	})
	if err != nil {
		return nil, fmt.Errorf("service/product: updating product %s: %w", id, err)
	}

	p.Name = in.Name
	p.Category = in.Category
	p.Price = in.Price
	p.Stock = in.Stock
	p.Description = in.Description
	p.Manufacturer = in.Manufacturer
	p.SKU = in.SKU
	p.UpdatedAt = t
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, uid, id string) error {
	if _, err := s.Get(ctx, uid, id); err != nil {
		return err
	}
	if err := s.store.Remove(ctx, docstore.Join(productsPath(uid), id)); err != nil {
		return fmt.Errorf("service/product: deleting product %s: %w", id, err)
	}
	s.logger.Info("product deleted", slog.String("id", id), slog.String("uid", uid))
	return nil
}

func (s *ProductService) Get(ctx context.Context, uid, id string) (*model.Product, error) {
	if !validID(id) {
		return nil, apperror.NotFound("product", id)
	}

	snap, err := s.store.Get(ctx, docstore.Join(productsPath(uid), id))
	if err != nil {
		return nil, fmt.Errorf("service/product: getting product %s: %w", id, err)
	}
	if !snap.Exists() {
		return nil, apperror.NotFound("product", id)
	}

	var p model.Product
	if err := snap.Decode(&p); err != nil {
		return nil, fmt.Errorf("service/product: %w", err)
	}
	p.ID = snap.Key()
	return &p, nil
}

// List returns the user's products in creation order.
func (s *ProductService) List(ctx context.Context, uid string) ([]model.Product, error) {
	snap, err := s.store.Get(ctx, productsPath(uid))
	if err != nil {
		return nil, fmt.Errorf("service/product: listing products: %w", err)
	}
	return s.decodeProducts(snap), nil
}

// Catalog is List plus the derived categories.
func (s *ProductService) Catalog(ctx context.Context, uid string) (model.ProductCatalog, error) {
	products, err := s.List(ctx, uid)
	if err != nil {
		return model.ProductCatalog{}, err
	}
	return model.ProductCatalog{Products: products, Categories: Categories(products)}, nil
}

// Watch streams the catalog, re-sent after every change to the user's
// products. The stream ends when ctx is done.
func (s *ProductService) Watch(ctx context.Context, uid string) (<-chan model.ProductCatalog, error) {
	snaps, err := s.store.Watch(ctx, productsPath(uid))
	if err != nil {
		return nil, fmt.Errorf("service/product: watching products: %w", err)
	}
	return mapStream(ctx, snaps, func(snap docstore.Snapshot) (model.ProductCatalog, bool) {
		products := s.decodeProducts(snap)
		return model.ProductCatalog{Products: products, Categories: Categories(products)}, true
	}), nil
}

// Categories returns the distinct non-empty categories of products in the
// order they first appear. It is recomputed from the list every time, so a
// category disappears with its last product.
func Categories(products []model.Product) []string {
	seen := make(map[string]bool)
	categories := []string{}
	for _, p := range products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		categories = append(categories, p.Category)
	}
	return categories
}

func (s *ProductService) decodeProducts(snap docstore.Snapshot) []model.Product {
	products := []model.Product{}
	for _, child := range snap.Children() {
		var p model.Product
		if err := child.Decode(&p); err != nil {
			s.logger.Warn("skipping malformed product", slog.String("path", child.Path), slog.Any("error", err))
			continue
		}
		p.ID = child.Key()
		products = append(products, p)
	}
	return products
}
