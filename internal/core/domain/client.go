package domain

import (
	"fmt"
	"strings"
)

// Client is an immutable registered buyer.
type Client struct {
	ID       ClientID
	FullName string
	Email    string
}

func NewClient(id ClientID, fullName, email string) (Client, error) {
	if strings.TrimSpace(fullName) == "" {
		return Client{}, fmt.Errorf("%w: El nombre del cliente es obligatorio", ErrBusinessRule)
	}
	if !strings.Contains(email, "@") {
		return Client{}, fmt.Errorf("%w: Email del cliente inválido", ErrBusinessRule)
	}
	return Client{ID: id, FullName: fullName, Email: email}, nil
}
