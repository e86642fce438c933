package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/maspatas/ledger/internal/core/domain"
)

func TestRegisterClient_Success(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	out, err := f.registerClient.Execute(ctx, RegisterClientInput{
		ClientID: "C-100",
		FullName: "Luis Gómez",
		Email:    "luis@cliente.com",
	}, RoleVendedor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ClientID != "C-100" || out.FullName != "Luis Gómez" {
		t.Errorf("unexpected output: %+v", out)
	}

	saved, err := f.clients.GetByID(ctx, mustClientID(t, "C-100"))
	if err != nil {
		t.Fatalf("get client: %v", err)
	}
	if saved == nil {
		t.Fatal("client not persisted")
	}
}

func TestRegisterClient_DuplicateID(t *testing.T) {
	f := newFixture()
	f.seed(t)

	_, err := f.registerClient.Execute(context.Background(), RegisterClientInput{
		ClientID: "C-001",
		FullName: "Otra Persona",
		Email:    "otra@cliente.com",
	}, RoleAdmin)
	if !errors.Is(err, domain.ErrBusinessRule) {
		t.Errorf("expected ErrBusinessRule, got %v", err)
	}
}

func TestRegisterClient_InvalidInput(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.registerClient.Execute(ctx, RegisterClientInput{
		ClientID: "  ",
		FullName: "Alguien",
		Email:    "a@b.com",
	}, RoleAdmin); !errors.Is(err, domain.ErrInvalidIdentifier) {
		t.Errorf("blank id: expected ErrInvalidIdentifier, got %v", err)
	}

	if _, err := f.registerClient.Execute(ctx, RegisterClientInput{
		ClientID: "C-200",
		FullName: "",
		Email:    "a@b.com",
	}, RoleAdmin); !errors.Is(err, domain.ErrBusinessRule) {
		t.Errorf("blank name: expected ErrBusinessRule, got %v", err)
	}

	if _, err := f.registerClient.Execute(ctx, RegisterClientInput{
		ClientID: "C-200",
		FullName: "Alguien",
		Email:    "sin-arroba",
	}, RoleAdmin); !errors.Is(err, domain.ErrBusinessRule) {
		t.Errorf("bad email: expected ErrBusinessRule, got %v", err)
	}
}

func TestRegisterClient_Unauthorized(t *testing.T) {
	f := newFixture()

	_, err := f.registerClient.Execute(context.Background(), RegisterClientInput{
		ClientID: "C-100",
		FullName: "Luis Gómez",
		Email:    "luis@cliente.com",
	}, RoleInventario)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRegisterClient_ConcurrentSameID(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	const attempts = 10
	var successCount, duplicateCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := f.registerClient.Execute(ctx, RegisterClientInput{
				ClientID: "C-RACE",
				FullName: fmt.Sprintf("Intento %d", n),
				Email:    "race@cliente.com",
			}, RoleAdmin)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, domain.ErrBusinessRule):
				duplicateCount.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("expected exactly one success, got %d", successCount.Load())
	}
	if duplicateCount.Load() != attempts-1 {
		t.Errorf("expected %d duplicates, got %d", attempts-1, duplicateCount.Load())
	}
}

func mustClientID(t *testing.T, value string) domain.ClientID {
	t.Helper()
	id, err := domain.NewClientID(value)
	if err != nil {
		t.Fatalf("NewClientID(%q): %v", value, err)
	}
	return id
}
