package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"

	"github.com/maspatas/ledger/internal/core/domain"
)

func TestRegisterSale_Success(t *testing.T) {
	f := newFixture()
	f.seed(t)
	ctx := context.Background()

	out, err := f.registerSale.Execute(ctx, RegisterSaleInput{
		SaleID:   "S-001",
		ClientID: "C-001",
		Lines:    []SaleLineInput{{ProductID: "P-001", Quantity: 2}},
	}, RoleVendedor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.SaleID != "S-001" {
		t.Errorf("expected S-001, got %s", out.SaleID)
	}
	if out.TotalAmount != "1100.00" {
		t.Errorf("expected total 1100.00, got %s", out.TotalAmount)
	}
	if out.Currency != "MXN" {
		t.Errorf("expected MXN, got %s", out.Currency)
	}
	if got := f.stockOf(t, "P-001"); got != 13 {
		t.Errorf("expected stock 13, got %d", got)
	}

	saved, err := f.sales.GetByID(ctx, "S-001")
	if err != nil {
		t.Fatalf("get sale: %v", err)
	}
	if saved == nil {
		t.Fatal("sale not persisted")
	}
}

func TestRegisterSale_InsufficientStockReportsBothQuantities(t *testing.T) {
	f := newFixture()
	f.seed(t)
	ctx := context.Background()

	if _, err := f.registerSale.Execute(ctx, RegisterSaleInput{
		SaleID:   "S-001",
		ClientID: "C-001",
		Lines:    []SaleLineInput{{ProductID: "P-001", Quantity: 2}},
	}, RoleVendedor); err != nil {
		t.Fatalf("first sale failed: %v", err)
	}

	_, err := f.registerSale.Execute(ctx, RegisterSaleInput{
		SaleID:   "S-002",
		ClientID: "C-001",
		Lines:    []SaleLineInput{{ProductID: "P-001", Quantity: 20}},
	}, RoleVendedor)

	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Available != 13 || stockErr.Requested != 20 {
		t.Errorf("expected available=13 requested=20, got %d/%d", stockErr.Available, stockErr.Requested)
	}
}

func TestRegisterSale_FailedLineWritesNothing(t *testing.T) {
	f := newFixture()
	f.seed(t)
	ctx := context.Background()

	// Second line exceeds stock; the first line's SALIDA must not stick.
	_, err := f.registerSale.Execute(ctx, RegisterSaleInput{
		SaleID:   "S-001",
		ClientID: "C-001",
		Lines: []SaleLineInput{
			{ProductID: "P-001", Quantity: 2},
			{ProductID: "P-002", Quantity: 50},
		},
	}, RoleVendedor)
	if !errors.Is(err, domain.ErrBusinessRule) {
		t.Fatalf("expected ErrBusinessRule, got %v", err)
	}

	if got := f.stockOf(t, "P-001"); got != 15 {
		t.Errorf("P-001 stock changed on failed sale: %d", got)
	}
	if got := f.stockOf(t, "P-002"); got != 8 {
		t.Errorf("P-002 stock changed on failed sale: %d", got)
	}
	sales, err := f.sales.List(ctx)
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(sales) != 0 {
		t.Errorf("expected no sales persisted, got %d", len(sales))
	}
}

func TestRegisterSale_UnknownProduct(t *testing.T) {
	f := newFixture()
	f.seed(t)

	_, err := f.registerSale.Execute(context.Background(), RegisterSaleInput{
		SaleID:   "S-001",
		ClientID: "C-001",
		Lines:    []SaleLineInput{{ProductID: "P-404", Quantity: 1}},
	}, RoleVendedor)
	if !errors.Is(err, domain.ErrBusinessRule) {
		t.Errorf("expected ErrBusinessRule, got %v", err)
	}
}

func TestRegisterSale_UnknownClient(t *testing.T) {
	f := newFixture()
	f.seed(t)

	_, err := f.registerSale.Execute(context.Background(), RegisterSaleInput{
		SaleID:   "S-001",
		ClientID: "C-404",
		Lines:    []SaleLineInput{{ProductID: "P-001", Quantity: 1}},
	}, RoleVendedor)
	if !errors.Is(err, domain.ErrBusinessRule) {
		t.Errorf("expected ErrBusinessRule, got %v", err)
	}
}

func TestRegisterSale_EmptyLines(t *testing.T) {
	f := newFixture()
	f.seed(t)

	_, err := f.registerSale.Execute(context.Background(), RegisterSaleInput{
		SaleID:   "S-001",
		ClientID: "C-001",
	}, RoleVendedor)
	if !errors.Is(err, domain.ErrBusinessRule) {
		t.Errorf("expected ErrBusinessRule, got %v", err)
	}
}

func TestRegisterSale_Unauthorized(t *testing.T) {
	f := newFixture()
	f.seed(t)

	_, err := f.registerSale.Execute(context.Background(), RegisterSaleInput{
		SaleID:   "S-001",
		ClientID: "C-001",
		Lines:    []SaleLineInput{{ProductID: "P-001", Quantity: 1}},
	}, RoleInventario)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRegisterSale_GeneratesSaleIDWhenMissing(t *testing.T) {
	f := newFixture()
	f.seed(t)

	out, err := f.registerSale.Execute(context.Background(), RegisterSaleInput{
		ClientID: "C-001",
		Lines:    []SaleLineInput{{ProductID: "P-001", Quantity: 1}},
	}, RoleVendedor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.SaleID == "" {
		t.Error("expected a generated sale id")
	}
}

// Concurrent sales with distinct sale ids race on the same product. The
// per-product locking inside the sale lock must make stock accounting
// exact: one success per available unit, never oversell, never undersell.
func TestRegisterSale_ConcurrentSalesSameProduct(t *testing.T) {
	f := newFixture()
	f.seed(t)
	ctx := context.Background()

	const requests = 30 // seeded stock for P-001 is 15
	var successCount, stockFailCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.registerSale.Execute(ctx, RegisterSaleInput{
				SaleID:   uuid.NewString(),
				ClientID: "C-001",
				Lines:    []SaleLineInput{{ProductID: "P-001", Quantity: 1}},
			}, RoleVendedor)

			var stockErr *domain.InsufficientStockError
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.As(err, &stockErr):
				stockFailCount.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successCount.Load() != 15 {
		t.Errorf("expected 15 successful sales, got %d", successCount.Load())
	}
	if stockFailCount.Load() != requests-15 {
		t.Errorf("expected %d stock failures, got %d", requests-15, stockFailCount.Load())
	}
	if got := f.stockOf(t, "P-001"); got != 0 {
		t.Errorf("expected final stock 0, got %d", got)
	}

	sales, err := f.sales.List(ctx)
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(sales) != 15 {
		t.Errorf("expected 15 persisted sales, got %d", len(sales))
	}
}
