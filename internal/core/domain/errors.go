package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidIdentifier signals a malformed client or product identifier.
	ErrInvalidIdentifier = errors.New("identificador inválido")

	// ErrInvalidMoney signals a malformed monetary value.
	ErrInvalidMoney = errors.New("valor monetario inválido")

	// ErrCurrencyMismatch signals an operation between different currencies.
	ErrCurrencyMismatch = errors.New("no se pueden operar monedas diferentes")

	// ErrBusinessRule signals an explicit business rule violation.
	ErrBusinessRule = errors.New("violación de regla de negocio")

	// ErrUnauthorized signals an operation the caller's role does not permit.
	ErrUnauthorized = errors.New("operación no autorizada")
)

// InsufficientStockError is raised when a decrease would leave stock negative.
// It carries both quantities so callers can surface them.
type InsufficientStockError struct {
	ProductID ProductID
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Stock insuficiente para %s. Disponible=%d, solicitado=%d",
		e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrBusinessRule }

// IsDomainError reports whether err belongs to the domain taxonomy, as
// opposed to an infrastructure failure. Domain errors are final: they must
// never be retried or counted against a circuit breaker.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrBusinessRule) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrInvalidIdentifier) ||
		errors.Is(err, ErrInvalidMoney) ||
		errors.Is(err, ErrCurrencyMismatch)
}
