package domain

import (
	"fmt"
	"time"
)

// SaleLine is one product position of a sale. UnitPrice is the price at
// the time of sale, not a reference to the catalog.
type SaleLine struct {
	ProductID ProductID
	Quantity  int
	UnitPrice Money
}

func NewSaleLine(productID ProductID, quantity int, unitPrice Money) (SaleLine, error) {
	if quantity <= 0 {
		return SaleLine{}, fmt.Errorf("%w: La cantidad vendida debe ser mayor a 0", ErrBusinessRule)
	}
	return SaleLine{ProductID: productID, Quantity: quantity, UnitPrice: unitPrice}, nil
}

func (l SaleLine) Subtotal() (Money, error) {
	return l.UnitPrice.MulInt(l.Quantity)
}

// SaleAggregate is a completed sale. CreatedAt is set once at construction
// and never recomputed.
type SaleAggregate struct {
	SaleID    string
	ClientID  ClientID
	Lines     []SaleLine
	CreatedAt time.Time
}

func NewSaleAggregate(saleID string, clientID ClientID, lines []SaleLine) (SaleAggregate, error) {
	return NewSaleAggregateAt(saleID, clientID, lines, time.Now().UTC())
}

// NewSaleAggregateAt rebuilds a sale with a known creation time, e.g. when
// loading from storage.
func NewSaleAggregateAt(saleID string, clientID ClientID, lines []SaleLine, createdAt time.Time) (SaleAggregate, error) {
	if len(lines) == 0 {
		return SaleAggregate{}, fmt.Errorf("%w: Una venta debe contener al menos una línea", ErrBusinessRule)
	}
	copied := make([]SaleLine, len(lines))
	copy(copied, lines)
	return SaleAggregate{
		SaleID:    saleID,
		ClientID:  clientID,
		Lines:     copied,
		CreatedAt: createdAt,
	}, nil
}

// Total sums every line subtotal. It is computed fresh on each call and
// fails if the lines mix currencies.
func (s SaleAggregate) Total() (Money, error) {
	first, err := s.Lines[0].Subtotal()
	if err != nil {
		return Money{}, err
	}
	total := first.Zero()
	for _, line := range s.Lines {
		subtotal, err := line.Subtotal()
		if err != nil {
			return Money{}, err
		}
		total, err = total.Add(subtotal)
		if err != nil {
			return Money{}, err
		}
	}
	return total, nil
}
