package port

import (
	"context"

	"github.com/maspatas/ledger/internal/core/domain"
)

type ProductRepository interface {
	// GetByID returns the product, or nil when no product has that id.
	GetByID(ctx context.Context, id domain.ProductID) (*domain.Product, error)

	// Save persists the product, replacing any previous version.
	Save(ctx context.Context, product domain.Product) error

	// List returns all products ordered by id.
	List(ctx context.Context) ([]domain.Product, error)
}

type ClientRepository interface {
	// GetByID returns the client, or nil when no client has that id.
	GetByID(ctx context.Context, id domain.ClientID) (*domain.Client, error)

	// Save persists the client, replacing any previous version.
	Save(ctx context.Context, client domain.Client) error

	// List returns all clients ordered by id.
	List(ctx context.Context) ([]domain.Client, error)
}

type InventoryRepository interface {
	// Get returns the current inventory snapshot.
	Get(ctx context.Context) (domain.InventoryAggregate, error)

	// Save replaces the whole inventory aggregate.
	Save(ctx context.Context, inventory domain.InventoryAggregate) error
}

type SaleRepository interface {
	// Save persists a completed sale with its lines.
	Save(ctx context.Context, sale domain.SaleAggregate) error

	// GetByID returns the sale, or nil when no sale has that id.
	GetByID(ctx context.Context, saleID string) (*domain.SaleAggregate, error)

	// List returns all sales ordered by creation time.
	List(ctx context.Context) ([]domain.SaleAggregate, error)
}
