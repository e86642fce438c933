package service

import (
	"context"
	"fmt"

	"github.com/maspatas/ledger/internal/core/domain"
	"github.com/maspatas/ledger/internal/platform/logger"
	"github.com/maspatas/ledger/internal/port"
)

type RegisterClientInput struct {
	ClientID string
	FullName string
	Email    string
}

type RegisterClientOutput struct {
	ClientID string
	FullName string
	Email    string
}

type RegisterClientService struct {
	clients port.ClientRepository
	locker  port.Locker
	authz   *AuthorizationService
	log     *logger.Logger
}

func NewRegisterClientService(
	clients port.ClientRepository,
	locker port.Locker,
	authz *AuthorizationService,
	log *logger.Logger,
) *RegisterClientService {
	return &RegisterClientService{
		clients: clients,
		locker:  locker,
		authz:   authz,
		log:     log,
	}
}

func (s *RegisterClientService) Execute(ctx context.Context, input RegisterClientInput, role Role) (*RegisterClientOutput, error) {
	if err := s.authz.EnsurePermission(role, PermRegisterClient); err != nil {
		return nil, err
	}

	clientID, err := domain.NewClientID(input.ClientID)
	if err != nil {
		return nil, err
	}

	// Fast path only. The authoritative duplicate check runs again inside
	// the lock, so concurrent registrations of the same new id yield
	// exactly one winner.
	existing, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("load client: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: Ya existe un cliente con id %s", domain.ErrBusinessRule, input.ClientID)
	}

	var out *RegisterClientOutput
	err = s.locker.WithLock("client:"+input.ClientID, func() error {
		existing, err := s.clients.GetByID(ctx, clientID)
		if err != nil {
			return fmt.Errorf("load client: %w", err)
		}
		if existing != nil {
			return fmt.Errorf("%w: Ya existe un cliente con id %s", domain.ErrBusinessRule, input.ClientID)
		}

		client, err := domain.NewClient(clientID, input.FullName, input.Email)
		if err != nil {
			return err
		}
		if err := s.clients.Save(ctx, client); err != nil {
			return fmt.Errorf("save client: %w", err)
		}

		out = &RegisterClientOutput{
			ClientID: client.ID.String(),
			FullName: client.FullName,
			Email:    client.Email,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("client registered", "client_id", out.ClientID)
	return out, nil
}
