package domain

import (
	"errors"
	"testing"
)

func mustProductID(t *testing.T, value string) ProductID {
	t.Helper()
	id, err := NewProductID(value)
	if err != nil {
		t.Fatalf("NewProductID(%q): %v", value, err)
	}
	return id
}

func TestInventoryItem_Increase(t *testing.T) {
	item := InventoryItem{ProductID: mustProductID(t, "P-001"), Stock: 5}

	updated, err := item.Increase(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Stock != 8 {
		t.Errorf("expected stock 8, got %d", updated.Stock)
	}
	if item.Stock != 5 {
		t.Errorf("receiver mutated: %d", item.Stock)
	}

	if _, err := item.Increase(0); !errors.Is(err, ErrBusinessRule) {
		t.Errorf("expected ErrBusinessRule for qty 0, got %v", err)
	}
}

func TestInventoryItem_Decrease(t *testing.T) {
	item := InventoryItem{ProductID: mustProductID(t, "P-001"), Stock: 5}

	updated, err := item.Decrease(5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Stock != 0 {
		t.Errorf("expected stock 0, got %d", updated.Stock)
	}

	_, err = item.Decrease(6)
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Available != 5 || stockErr.Requested != 6 {
		t.Errorf("expected available=5 requested=6, got %d/%d", stockErr.Available, stockErr.Requested)
	}
	if !errors.Is(err, ErrBusinessRule) {
		t.Errorf("InsufficientStockError should unwrap to ErrBusinessRule")
	}
}

func TestInventoryItem_Adjust(t *testing.T) {
	item := InventoryItem{ProductID: mustProductID(t, "P-001"), Stock: 5}

	updated, err := item.Adjust(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Stock != 0 {
		t.Errorf("expected stock 0, got %d", updated.Stock)
	}

	if _, err := item.Adjust(-1); !errors.Is(err, ErrBusinessRule) {
		t.Errorf("expected ErrBusinessRule, got %v", err)
	}
}

func TestInventoryAggregate_AbsentProductHasZeroStock(t *testing.T) {
	agg := NewInventoryAggregate(nil)
	item := agg.Item(mustProductID(t, "P-404"))
	if item.Stock != 0 {
		t.Errorf("expected zero stock for absent product, got %d", item.Stock)
	}
}

func TestInventoryAggregate_ApplyMovement(t *testing.T) {
	pid := mustProductID(t, "P-001")
	agg := NewInventoryAggregate(map[ProductID]InventoryItem{
		pid: {ProductID: pid, Stock: 10},
	})

	entrada, err := agg.ApplyMovement(pid, MovementEntrada, 5)
	if err != nil {
		t.Fatalf("ENTRADA failed: %v", err)
	}
	if entrada.Item(pid).Stock != 15 {
		t.Errorf("expected 15, got %d", entrada.Item(pid).Stock)
	}

	salida, err := agg.ApplyMovement(pid, MovementSalida, 4)
	if err != nil {
		t.Fatalf("SALIDA failed: %v", err)
	}
	if salida.Item(pid).Stock != 6 {
		t.Errorf("expected 6, got %d", salida.Item(pid).Stock)
	}

	ajuste, err := agg.ApplyMovement(pid, MovementAjuste, 42)
	if err != nil {
		t.Fatalf("AJUSTE failed: %v", err)
	}
	if ajuste.Item(pid).Stock != 42 {
		t.Errorf("expected 42, got %d", ajuste.Item(pid).Stock)
	}

	if _, err := agg.ApplyMovement(pid, MovementType("REGALO"), 1); !errors.Is(err, ErrBusinessRule) {
		t.Errorf("unknown movement: expected ErrBusinessRule, got %v", err)
	}
}

func TestInventoryAggregate_ApplyMovementIsPure(t *testing.T) {
	pid := mustProductID(t, "P-001")
	base := NewInventoryAggregate(map[ProductID]InventoryItem{
		pid: {ProductID: pid, Stock: 10},
	})

	first, err := base.ApplyMovement(pid, MovementSalida, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := base.ApplyMovement(pid, MovementSalida, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Item(pid).Stock != second.Item(pid).Stock {
		t.Errorf("same movement from same base diverged: %d vs %d",
			first.Item(pid).Stock, second.Item(pid).Stock)
	}
	if base.Item(pid).Stock != 10 {
		t.Errorf("base aggregate mutated: %d", base.Item(pid).Stock)
	}
}

func TestInventoryAggregate_MovementAffectsOnlyOneEntry(t *testing.T) {
	p1 := mustProductID(t, "P-001")
	p2 := mustProductID(t, "P-002")
	agg := NewInventoryAggregate(map[ProductID]InventoryItem{
		p1: {ProductID: p1, Stock: 10},
		p2: {ProductID: p2, Stock: 8},
	})

	updated, err := agg.ApplyMovement(p1, MovementSalida, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Item(p2).Stock != 8 {
		t.Errorf("unrelated entry changed: %d", updated.Item(p2).Stock)
	}
}
