package service

import (
	"context"
	"testing"

	"github.com/maspatas/ledger/internal/adapter/lock"
	"github.com/maspatas/ledger/internal/adapter/storage"
	"github.com/maspatas/ledger/internal/core/domain"
	"github.com/maspatas/ledger/internal/platform/logger"
)

func mustProductID(t *testing.T, value string) domain.ProductID {
	t.Helper()
	id, err := domain.NewProductID(value)
	if err != nil {
		t.Fatalf("NewProductID(%q): %v", value, err)
	}
	return id
}

type fixture struct {
	products  *storage.MemoryProductRepository
	clients   *storage.MemoryClientRepository
	inventory *storage.MemoryInventoryRepository
	sales     *storage.MemorySaleRepository

	registerClient  *RegisterClientService
	registerProduct *RegisterProductService
	registerSale    *RegisterSaleService
}

func newFixture() *fixture {
	products := storage.NewMemoryProductRepository()
	clients := storage.NewMemoryClientRepository()
	inventory := storage.NewMemoryInventoryRepository()
	sales := storage.NewMemorySaleRepository()
	locker := lock.NewKeyedLock()
	authz := NewAuthorizationService()
	log := logger.NewNop()

	return &fixture{
		products:  products,
		clients:   clients,
		inventory: inventory,
		sales:     sales,
		registerClient: NewRegisterClientService(
			clients, locker, authz, log),
		registerProduct: NewRegisterProductService(
			products, inventory, locker, authz, log),
		registerSale: NewRegisterSaleService(
			products, clients, inventory, sales, locker, authz, log),
	}
}

// seed loads the demo catalog: P-001 with 15 units at 550.00 MXN, P-002
// with 8 units at 220.00 MXN and client C-001.
func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	if _, err := f.registerProduct.Execute(ctx, RegisterProductInput{
		ProductID:    "P-001",
		Name:         "Croquetas Premium",
		SKU:          "CROQ-01",
		PriceAmount:  "550.00",
		Currency:     "MXN",
		InitialStock: 15,
	}, RoleAdmin); err != nil {
		t.Fatalf("seed P-001: %v", err)
	}
	if _, err := f.registerProduct.Execute(ctx, RegisterProductInput{
		ProductID:    "P-002",
		Name:         "Correa Ajustable",
		SKU:          "CORR-01",
		PriceAmount:  "220.00",
		Currency:     "MXN",
		InitialStock: 8,
	}, RoleAdmin); err != nil {
		t.Fatalf("seed P-002: %v", err)
	}
	if _, err := f.registerClient.Execute(ctx, RegisterClientInput{
		ClientID: "C-001",
		FullName: "Ana Pérez",
		Email:    "ana@cliente.com",
	}, RoleAdmin); err != nil {
		t.Fatalf("seed C-001: %v", err)
	}
}

func (f *fixture) stockOf(t *testing.T, productID string) int {
	t.Helper()
	inventory, err := f.inventory.Get(context.Background())
	if err != nil {
		t.Fatalf("get inventory: %v", err)
	}
	pid := mustProductID(t, productID)
	return inventory.Item(pid).Stock
}
