package domain

import (
	"fmt"
	"sort"
)

// MovementType is a typed change to inventory stock.
type MovementType string

const (
	MovementEntrada MovementType = "ENTRADA" // increase
	MovementSalida  MovementType = "SALIDA"  // decrease
	MovementAjuste  MovementType = "AJUSTE"  // absolute set
)

// InventoryItem is the stock count for one product. Transitions return a
// new item; the receiver is never modified.
type InventoryItem struct {
	ProductID ProductID
	Stock     int
}

func (i InventoryItem) Increase(quantity int) (InventoryItem, error) {
	if quantity <= 0 {
		return InventoryItem{}, fmt.Errorf("%w: La cantidad a ingresar debe ser positiva", ErrBusinessRule)
	}
	return InventoryItem{ProductID: i.ProductID, Stock: i.Stock + quantity}, nil
}

func (i InventoryItem) Decrease(quantity int) (InventoryItem, error) {
	if quantity <= 0 {
		return InventoryItem{}, fmt.Errorf("%w: La cantidad a descontar debe ser positiva", ErrBusinessRule)
	}
	if i.Stock < quantity {
		return InventoryItem{}, &InsufficientStockError{
			ProductID: i.ProductID,
			Available: i.Stock,
			Requested: quantity,
		}
	}
	return InventoryItem{ProductID: i.ProductID, Stock: i.Stock - quantity}, nil
}

func (i InventoryItem) Adjust(newStock int) (InventoryItem, error) {
	if newStock < 0 {
		return InventoryItem{}, fmt.Errorf("%w: No se permite stock negativo", ErrBusinessRule)
	}
	return InventoryItem{ProductID: i.ProductID, Stock: newStock}, nil
}

// InventoryAggregate maps products to their stock. A product without an
// entry has stock zero. The aggregate is copy-on-write: ApplyMovement
// returns a new aggregate and never mutates the receiver, so snapshots
// held by other goroutines stay valid.
type InventoryAggregate struct {
	items map[ProductID]InventoryItem
}

// NewInventoryAggregate builds an aggregate from the given items. The map
// is cloned; later changes to it do not affect the aggregate.
func NewInventoryAggregate(items map[ProductID]InventoryItem) InventoryAggregate {
	cloned := make(map[ProductID]InventoryItem, len(items))
	for id, item := range items {
		cloned[id] = item
	}
	return InventoryAggregate{items: cloned}
}

// Item returns the current item for the product, or a zero-stock default.
func (a InventoryAggregate) Item(productID ProductID) InventoryItem {
	if item, ok := a.items[productID]; ok {
		return item
	}
	return InventoryItem{ProductID: productID}
}

// Items returns a snapshot of all entries, ordered by product id.
func (a InventoryAggregate) Items() []InventoryItem {
	out := make([]InventoryItem, 0, len(a.items))
	for _, item := range a.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ProductID.String() < out[j].ProductID.String()
	})
	return out
}

// ApplyMovement is the single mutation entry point for inventory. It looks
// up the current item, applies the transition for the movement type and
// returns a new aggregate with that one entry replaced.
func (a InventoryAggregate) ApplyMovement(productID ProductID, movement MovementType, quantity int) (InventoryAggregate, error) {
	current := a.Item(productID)

	var (
		updated InventoryItem
		err     error
	)
	switch movement {
	case MovementEntrada:
		updated, err = current.Increase(quantity)
	case MovementSalida:
		updated, err = current.Decrease(quantity)
	case MovementAjuste:
		updated, err = current.Adjust(quantity)
	default:
		return InventoryAggregate{}, fmt.Errorf("%w: Tipo de movimiento no soportado: %s", ErrBusinessRule, movement)
	}
	if err != nil {
		return InventoryAggregate{}, err
	}

	items := make(map[ProductID]InventoryItem, len(a.items)+1)
	for id, item := range a.items {
		items[id] = item
	}
	items[productID] = updated
	return InventoryAggregate{items: items}, nil
}
