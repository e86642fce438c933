package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/maspatas/ledger/internal/core/domain"
)

// In-memory repositories, the default backend. Aggregates are stored as
// values, so every read hands out an independent snapshot.

type MemoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]domain.Product
}

func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{products: make(map[string]domain.Product)}
}

func (r *MemoryProductRepository) GetByID(_ context.Context, id domain.ProductID) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id.String()]
	if !ok {
		return nil, nil
	}
	return &product, nil
}

func (r *MemoryProductRepository) Save(_ context.Context, product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID.String()] = product
	return nil
}

func (r *MemoryProductRepository) List(_ context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Product, 0, len(r.products))
	for _, product := range r.products {
		out = append(out, product)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

type MemoryClientRepository struct {
	mu      sync.RWMutex
	clients map[string]domain.Client
}

func NewMemoryClientRepository() *MemoryClientRepository {
	return &MemoryClientRepository{clients: make(map[string]domain.Client)}
}

func (r *MemoryClientRepository) GetByID(_ context.Context, id domain.ClientID) (*domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[id.String()]
	if !ok {
		return nil, nil
	}
	return &client, nil
}

func (r *MemoryClientRepository) Save(_ context.Context, client domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[client.ID.String()] = client
	return nil
}

func (r *MemoryClientRepository) List(_ context.Context) ([]domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Client, 0, len(r.clients))
	for _, client := range r.clients {
		out = append(out, client)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

type MemoryInventoryRepository struct {
	mu        sync.RWMutex
	inventory domain.InventoryAggregate
}

func NewMemoryInventoryRepository() *MemoryInventoryRepository {
	return &MemoryInventoryRepository{inventory: domain.NewInventoryAggregate(nil)}
}

func (r *MemoryInventoryRepository) Get(_ context.Context) (domain.InventoryAggregate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.inventory, nil
}

func (r *MemoryInventoryRepository) Save(_ context.Context, inventory domain.InventoryAggregate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inventory = inventory
	return nil
}

type MemorySaleRepository struct {
	mu    sync.RWMutex
	sales []domain.SaleAggregate
}

func NewMemorySaleRepository() *MemorySaleRepository {
	return &MemorySaleRepository{}
}

func (r *MemorySaleRepository) Save(_ context.Context, sale domain.SaleAggregate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sales = append(r.sales, sale)
	return nil
}

func (r *MemorySaleRepository) GetByID(_ context.Context, saleID string) (*domain.SaleAggregate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sale := range r.sales {
		if sale.SaleID == saleID {
			found := sale
			return &found, nil
		}
	}
	return nil, nil
}

func (r *MemorySaleRepository) List(_ context.Context) ([]domain.SaleAggregate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.SaleAggregate, len(r.sales))
	copy(out, r.sales)
	return out, nil
}
