package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/maspatas/ledger/internal/core/domain"
	"github.com/maspatas/ledger/internal/platform/logger"
	"github.com/maspatas/ledger/internal/port"
)

type SaleLineInput struct {
	ProductID string
	Quantity  int
}

type RegisterSaleInput struct {
	// SaleID may be empty; a fresh id is generated then.
	SaleID   string
	ClientID string
	Lines    []SaleLineInput
}

type RegisterSaleOutput struct {
	SaleID      string
	TotalAmount string
	Currency    string
}

type RegisterSaleService struct {
	products  port.ProductRepository
	clients   port.ClientRepository
	inventory port.InventoryRepository
	sales     port.SaleRepository
	locker    port.Locker
	authz     *AuthorizationService
	log       *logger.Logger
}

func NewRegisterSaleService(
	products port.ProductRepository,
	clients port.ClientRepository,
	inventory port.InventoryRepository,
	sales port.SaleRepository,
	locker port.Locker,
	authz *AuthorizationService,
	log *logger.Logger,
) *RegisterSaleService {
	return &RegisterSaleService{
		products:  products,
		clients:   clients,
		inventory: inventory,
		sales:     sales,
		locker:    locker,
		authz:     authz,
		log:       log,
	}
}

// Execute registers a sale. All inventory movements and the sale itself
// are computed in memory first; nothing is persisted unless every line
// succeeds, so a failing line leaves both repositories untouched.
func (s *RegisterSaleService) Execute(ctx context.Context, input RegisterSaleInput, role Role) (*RegisterSaleOutput, error) {
	if err := s.authz.EnsurePermission(role, PermRegisterSale); err != nil {
		return nil, err
	}

	saleID := strings.TrimSpace(input.SaleID)
	if saleID == "" {
		saleID = uuid.NewString()
	}

	clientID, err := domain.NewClientID(input.ClientID)
	if err != nil {
		return nil, err
	}
	client, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("load client: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("%w: Cliente no encontrado", domain.ErrBusinessRule)
	}

	// Beyond the sale key, every product touched by a line is locked too
	// (sorted inside WithLocks, so two sales sharing products cannot
	// deadlock). This serializes the inventory read-modify-write of
	// concurrent sales on the same product.
	productKeys := make([]string, 0, len(input.Lines))
	for _, line := range input.Lines {
		productKeys = append(productKeys, "product:"+line.ProductID)
	}

	var out *RegisterSaleOutput
	err = s.locker.WithLock("sale:"+saleID, func() error {
		return s.locker.WithLocks(productKeys, func() error {
			inventory, err := s.inventory.Get(ctx)
			if err != nil {
				return fmt.Errorf("load inventory: %w", err)
			}

			saleLines := make([]domain.SaleLine, 0, len(input.Lines))
			for _, line := range input.Lines {
				productID, err := domain.NewProductID(line.ProductID)
				if err != nil {
					return err
				}
				product, err := s.products.GetByID(ctx, productID)
				if err != nil {
					return fmt.Errorf("load product: %w", err)
				}
				if product == nil {
					return fmt.Errorf("%w: Producto no encontrado: %s", domain.ErrBusinessRule, line.ProductID)
				}

				inventory, err = inventory.ApplyMovement(productID, domain.MovementSalida, line.Quantity)
				if err != nil {
					return err
				}
				saleLine, err := domain.NewSaleLine(productID, line.Quantity, product.Price)
				if err != nil {
					return err
				}
				saleLines = append(saleLines, saleLine)
			}

			sale, err := domain.NewSaleAggregate(saleID, client.ID, saleLines)
			if err != nil {
				return err
			}
			total, err := sale.Total()
			if err != nil {
				return err
			}

			if err := s.sales.Save(ctx, sale); err != nil {
				return fmt.Errorf("save sale: %w", err)
			}
			if err := s.inventory.Save(ctx, inventory); err != nil {
				return fmt.Errorf("save inventory: %w", err)
			}

			out = &RegisterSaleOutput{
				SaleID:      sale.SaleID,
				TotalAmount: total.AmountString(),
				Currency:    total.Currency(),
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("sale registered",
		"sale_id", out.SaleID,
		"client_id", input.ClientID,
		"total", out.TotalAmount,
		"currency", out.Currency,
	)
	return out, nil
}
