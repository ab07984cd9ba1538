package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/tatylu/storefront/internal/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// InsufficientStockError reports a quantity exceeding the available stock,
// naming the offending product.
type InsufficientStockError struct {
	Product string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.Product)
}

// Catalog defines the product-and-stock data source. Lookup accepts keys in
// either key space: the canonical 24-hex-character form or the plain
// numeric/string legacy form; aliases resolve to the same record.
type Catalog interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByKey(ctx context.Context, key string) (*models.Product, error)
	// Resolve maps each requested key to its product. Keys that resolve to
	// nothing are absent from the result rather than an error.
	Resolve(ctx context.Context, keys []string) (map[string]models.Product, error)
	// DecrementStock atomically subtracts amount from a product's stock,
	// failing with *InsufficientStockError rather than going negative.
	DecrementStock(ctx context.Context, key string, amount int) (*models.Product, error)
}

var hexKeyPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// IsHexKey reports whether a key is in the canonical 24-hex key space.
func IsHexKey(key string) bool {
	return hexKeyPattern.MatchString(key)
}

// InMemoryCatalog implements Catalog with in-memory storage, indexed under
// both key spaces.
type InMemoryCatalog struct {
	mu       sync.RWMutex
	products map[string]*models.Product // canonical ID -> record
	byKey    map[string]string          // any key -> canonical ID
}

// NewInMemoryCatalog creates a catalog seeded with demo products.
func NewInMemoryCatalog() *InMemoryCatalog {
	c := &InMemoryCatalog{
		products: make(map[string]*models.Product),
		byKey:    make(map[string]string),
	}

	seed := []models.Product{
		{ID: "64a1f0b2c3d4e5f601234001", LegacyID: "1", Name: "Cotton T-Shirt", Price: 12.99, Stock: 120, Category: "Apparel"},
		{ID: "64a1f0b2c3d4e5f601234002", LegacyID: "2", Name: "Denim Jacket", Price: 49.99, DiscountPercent: 10, Stock: 35, Category: "Apparel"},
		{ID: "64a1f0b2c3d4e5f601234003", LegacyID: "3", Name: "Leather Wallet", Price: 24.50, Stock: 80, Category: "Accessories"},
		{ID: "64a1f0b2c3d4e5f601234004", LegacyID: "4", Name: "Canvas Tote Bag", Price: 15.00, DiscountPercent: 5, Stock: 60, Category: "Accessories"},
		{ID: "64a1f0b2c3d4e5f601234005", LegacyID: "5", Name: "Wool Scarf", Price: 18.75, Stock: 45, Category: "Apparel"},
		{ID: "64a1f0b2c3d4e5f601234006", LegacyID: "6", Name: "Running Sneakers", Price: 64.99, DiscountPercent: 15, Stock: 25, Category: "Footwear"},
		{ID: "64a1f0b2c3d4e5f601234007", LegacyID: "7", Name: "Baseball Cap", Price: 9.99, Stock: 150, Category: "Accessories"},
		{ID: "64a1f0b2c3d4e5f601234008", LegacyID: "8", Name: "Hooded Sweatshirt", Price: 32.00, Stock: 55, Category: "Apparel"},
	}

	for i := range seed {
		c.add(&seed[i])
	}

	return c
}

func (c *InMemoryCatalog) add(p *models.Product) {
	c.products[p.ID] = p
	c.byKey[p.ID] = p.ID
	if p.LegacyID != "" {
		c.byKey[p.LegacyID] = p.ID
	}
}

// GetAll returns all products.
func (c *InMemoryCatalog) GetAll(ctx context.Context) ([]models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	products := make([]models.Product, 0, len(c.products))
	for _, p := range c.products {
		products = append(products, *p)
	}
	return products, nil
}

// GetByKey returns the product for a key in either key space.
func (c *InMemoryCatalog) GetByKey(ctx context.Context, key string) (*models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.lookup(key)
	if !ok {
		return nil, ErrProductNotFound
	}
	out := *p
	return &out, nil
}

// Resolve maps each requested key to its product record.
func (c *InMemoryCatalog) Resolve(ctx context.Context, keys []string) (map[string]models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]models.Product, len(keys))
	for _, key := range keys {
		if p, ok := c.lookup(key); ok {
			result[key] = *p
		}
	}
	return result, nil
}

// DecrementStock subtracts amount from a product's stock under the lock,
// refusing to go negative.
func (c *InMemoryCatalog) DecrementStock(ctx context.Context, key string, amount int) (*models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.lookup(key)
	if !ok {
		return nil, ErrProductNotFound
	}
	if amount > p.Stock {
		return nil, &InsufficientStockError{Product: p.Name}
	}

	p.Stock -= amount
	out := *p
	return &out, nil
}

func (c *InMemoryCatalog) lookup(key string) (*models.Product, bool) {
	id, ok := c.byKey[key]
	if !ok {
		return nil, false
	}
	p, ok := c.products[id]
	return p, ok
}
