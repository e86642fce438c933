package domain

import (
	"fmt"
	"strings"
)

// Product is an immutable catalog entry. Price is the current list price;
// sales capture it per line at registration time.
type Product struct {
	ID    ProductID
	Name  string
	SKU   string
	Price Money
}

func NewProduct(id ProductID, name, sku string, price Money) (Product, error) {
	if strings.TrimSpace(name) == "" {
		return Product{}, fmt.Errorf("%w: El nombre del producto es obligatorio", ErrBusinessRule)
	}
	if strings.TrimSpace(sku) == "" {
		return Product{}, fmt.Errorf("%w: El SKU es obligatorio", ErrBusinessRule)
	}
	return Product{ID: id, Name: name, SKU: sku, Price: price}, nil
}
