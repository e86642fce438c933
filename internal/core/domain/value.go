package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency assumed when a request omits one.
const DefaultCurrency = "MXN"

// ProductID identifies a product. The zero value is invalid; construct
// through NewProductID.
type ProductID struct {
	value string
}

func NewProductID(value string) (ProductID, error) {
	if strings.TrimSpace(value) == "" {
		return ProductID{}, fmt.Errorf("%w: ProductId no puede estar vacío", ErrInvalidIdentifier)
	}
	return ProductID{value: value}, nil
}

func (id ProductID) String() string { return id.value }

// ClientID identifies a client. The zero value is invalid; construct
// through NewClientID.
type ClientID struct {
	value string
}

func NewClientID(value string) (ClientID, error) {
	if strings.TrimSpace(value) == "" {
		return ClientID{}, fmt.Errorf("%w: ClientId no puede estar vacío", ErrInvalidIdentifier)
	}
	return ClientID{value: value}, nil
}

func (id ClientID) String() string { return id.value }

// Money is an exact, non-negative amount in a single ISO 4217 currency.
// Values are immutable; every operation returns a new Money.
type Money struct {
	amount   decimal.Decimal
	currency string
}

func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if amount.IsNegative() {
		return Money{}, fmt.Errorf("%w: El monto no puede ser negativo", ErrInvalidMoney)
	}
	if len(currency) != 3 {
		return Money{}, fmt.Errorf("%w: La moneda debe ser código ISO de 3 letras", ErrInvalidMoney)
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyFromString parses an exact decimal amount, e.g. "550.00".
func NewMoneyFromString(amount string, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("%w: Monto no numérico %q", ErrInvalidMoney, amount)
	}
	return NewMoney(d, currency)
}

func (m Money) Amount() decimal.Decimal { return m.amount }

func (m Money) Currency() string { return m.currency }

// AmountString renders the amount as an exact decimal string, preserving
// the scale it was constructed with ("550.00" stays "550.00").
func (m Money) AmountString() string { return m.amount.String() }

func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s y %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// MulInt scales the amount by a non-negative integer quantity.
func (m Money) MulInt(quantity int) (Money, error) {
	if quantity < 0 {
		return Money{}, fmt.Errorf("%w: El multiplicador no puede ser negativo", ErrInvalidMoney)
	}
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(quantity))), currency: m.currency}, nil
}

// Zero returns a zero amount in the same currency.
func (m Money) Zero() Money {
	return Money{amount: decimal.Zero, currency: m.currency}
}

func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) String() string {
	return m.amount.String() + " " + m.currency
}
