package service

import (
	"fmt"

	"github.com/maspatas/ledger/internal/core/domain"
)

// Role is the caller's role as asserted by the API layer.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleVendedor   Role = "VENDEDOR"
	RoleInventario Role = "INVENTARIO"
)

// Operation names, the unit of permission checks.
const (
	PermRegisterSale    = "register_sale"
	PermManageInventory = "manage_inventory"
	PermRegisterClient  = "register_client"
)

// AuthorizationService maps roles to their allowed operations. It is a
// pure lookup; checking a permission has no side effects.
type AuthorizationService struct {
	permissions map[Role]map[string]struct{}
}

func NewAuthorizationService() *AuthorizationService {
	return &AuthorizationService{
		permissions: map[Role]map[string]struct{}{
			RoleAdmin: {
				PermRegisterSale:    {},
				PermManageInventory: {},
				PermRegisterClient:  {},
			},
			RoleVendedor: {
				PermRegisterSale:   {},
				PermRegisterClient: {},
			},
			RoleInventario: {
				PermManageInventory: {},
			},
		},
	}
}

// EnsurePermission fails when the role does not include the operation.
// Unknown roles have no permissions.
func (s *AuthorizationService) EnsurePermission(role Role, operation string) error {
	if _, ok := s.permissions[role][operation]; !ok {
		return fmt.Errorf("%w: El rol %s no tiene permiso para %s", domain.ErrUnauthorized, role, operation)
	}
	return nil
}

// KnownRole reports whether the role exists in the permission table.
func (s *AuthorizationService) KnownRole(role Role) bool {
	_, ok := s.permissions[role]
	return ok
}
