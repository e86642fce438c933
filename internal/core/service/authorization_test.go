package service

import (
	"errors"
	"testing"

	"github.com/maspatas/ledger/internal/core/domain"
)

func TestAuthorization_RoleMatrix(t *testing.T) {
	authz := NewAuthorizationService()

	cases := []struct {
		role      Role
		operation string
		allowed   bool
	}{
		{RoleAdmin, PermRegisterSale, true},
		{RoleAdmin, PermManageInventory, true},
		{RoleAdmin, PermRegisterClient, true},
		{RoleVendedor, PermRegisterSale, true},
		{RoleVendedor, PermRegisterClient, true},
		{RoleVendedor, PermManageInventory, false},
		{RoleInventario, PermManageInventory, true},
		{RoleInventario, PermRegisterSale, false},
		{RoleInventario, PermRegisterClient, false},
	}

	for _, tc := range cases {
		err := authz.EnsurePermission(tc.role, tc.operation)
		if tc.allowed && err != nil {
			t.Errorf("%s/%s: expected allowed, got %v", tc.role, tc.operation, err)
		}
		if !tc.allowed && !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("%s/%s: expected ErrUnauthorized, got %v", tc.role, tc.operation, err)
		}
	}
}

func TestAuthorization_UnknownRoleHasNoPermissions(t *testing.T) {
	authz := NewAuthorizationService()
	if err := authz.EnsurePermission(Role("INTRUSO"), PermRegisterSale); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if authz.KnownRole(Role("INTRUSO")) {
		t.Error("unknown role reported as known")
	}
}
