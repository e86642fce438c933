package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/maspatas/ledger/internal/adapter/lock"
	"github.com/maspatas/ledger/internal/adapter/storage"
	"github.com/maspatas/ledger/internal/core/domain"
	"github.com/maspatas/ledger/internal/core/service"
	"github.com/maspatas/ledger/internal/platform/logger"
)

// Concurrency smoke run against the in-memory stack: fires totalRequests
// one-unit sales at a product with initialStock units and checks that
// exactly initialStock of them succeed.
const (
	productID     = "P-STRESS"
	initialStock  = 20
	totalRequests = 50
)

func main() {
	ctx := context.Background()
	log := logger.NewNop()

	products := storage.NewMemoryProductRepository()
	clients := storage.NewMemoryClientRepository()
	inventory := storage.NewMemoryInventoryRepository()
	sales := storage.NewMemorySaleRepository()
	locker := lock.NewKeyedLock()
	authz := service.NewAuthorizationService()

	registerProduct := service.NewRegisterProductService(products, inventory, locker, authz, log)
	registerClient := service.NewRegisterClientService(clients, locker, authz, log)
	registerSale := service.NewRegisterSaleService(products, clients, inventory, sales, locker, authz, log)

	if _, err := registerProduct.Execute(ctx, service.RegisterProductInput{
		ProductID:    productID,
		Name:         "Producto de prueba",
		SKU:          "STRESS-01",
		PriceAmount:  "100.00",
		Currency:     "MXN",
		InitialStock: initialStock,
	}, service.RoleAdmin); err != nil {
		panic(err)
	}
	if _, err := registerClient.Execute(ctx, service.RegisterClientInput{
		ClientID: "C-STRESS",
		FullName: "Cliente de prueba",
		Email:    "stress@cliente.com",
	}, service.RoleAdmin); err != nil {
		panic(err)
	}

	var successCount atomic.Int32
	var insufficientCount atomic.Int32
	var otherCount atomic.Int32
	var wg sync.WaitGroup

	start := time.Now()
	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := registerSale.Execute(ctx, service.RegisterSaleInput{
				SaleID:   uuid.NewString(),
				ClientID: "C-STRESS",
				Lines:    []service.SaleLineInput{{ProductID: productID, Quantity: 1}},
			}, service.RoleVendedor)

			var stockErr *domain.InsufficientStockError
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.As(err, &stockErr):
				insufficientCount.Add(1)
			default:
				otherCount.Add(1)
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	final, err := inventory.Get(ctx)
	if err != nil {
		panic(err)
	}
	pid, _ := domain.NewProductID(productID)
	finalStock := final.Item(pid).Stock

	success := successCount.Load()
	insufficient := insufficientCount.Load()

	fmt.Println("========== STRESS RUN RESULTS ==========")
	fmt.Printf("Initial Stock:      %d\n", initialStock)
	fmt.Printf("Total Requests:     %d\n", totalRequests)
	fmt.Printf("Successful:         %d\n", success)
	fmt.Printf("Insufficient stock: %d\n", insufficient)
	fmt.Printf("Other errors:       %d\n", otherCount.Load())
	fmt.Printf("Duration:           %v\n", elapsed)
	fmt.Println("========================================")

	if success == initialStock && insufficient == totalRequests-initialStock && finalStock == 0 {
		fmt.Println("PASS: stock depleted exactly once per successful sale")
	} else {
		fmt.Printf("FAIL: expected %d successes and final stock 0, got %d successes, final stock %d\n",
			initialStock, success, finalStock)
	}
}
