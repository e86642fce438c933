package service

import (
	"context"
	"fmt"

	"github.com/maspatas/ledger/internal/core/domain"
	"github.com/maspatas/ledger/internal/platform/logger"
	"github.com/maspatas/ledger/internal/port"
)

type RegisterProductInput struct {
	ProductID    string
	Name         string
	SKU          string
	PriceAmount  string
	Currency     string
	InitialStock int
}

type RegisterProductOutput struct {
	ProductID    string
	Name         string
	SKU          string
	PriceAmount  string
	Currency     string
	InitialStock int
}

type RegisterProductService struct {
	products  port.ProductRepository
	inventory port.InventoryRepository
	locker    port.Locker
	authz     *AuthorizationService
	log       *logger.Logger
}

func NewRegisterProductService(
	products port.ProductRepository,
	inventory port.InventoryRepository,
	locker port.Locker,
	authz *AuthorizationService,
	log *logger.Logger,
) *RegisterProductService {
	return &RegisterProductService{
		products:  products,
		inventory: inventory,
		locker:    locker,
		authz:     authz,
		log:       log,
	}
}

func (s *RegisterProductService) Execute(ctx context.Context, input RegisterProductInput, role Role) (*RegisterProductOutput, error) {
	if err := s.authz.EnsurePermission(role, PermManageInventory); err != nil {
		return nil, err
	}

	if input.InitialStock < 0 {
		return nil, fmt.Errorf("%w: No se permite stock inicial negativo", domain.ErrBusinessRule)
	}

	productID, err := domain.NewProductID(input.ProductID)
	if err != nil {
		return nil, err
	}

	currency := input.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	price, err := domain.NewMoneyFromString(input.PriceAmount, currency)
	if err != nil {
		return nil, err
	}

	existing, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: Ya existe un producto con id %s", domain.ErrBusinessRule, input.ProductID)
	}

	var out *RegisterProductOutput
	err = s.locker.WithLock("product:"+input.ProductID, func() error {
		existing, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return fmt.Errorf("load product: %w", err)
		}
		if existing != nil {
			return fmt.Errorf("%w: Ya existe un producto con id %s", domain.ErrBusinessRule, input.ProductID)
		}

		product, err := domain.NewProduct(productID, input.Name, input.SKU, price)
		if err != nil {
			return err
		}
		if err := s.products.Save(ctx, product); err != nil {
			return fmt.Errorf("save product: %w", err)
		}

		// Initial stock enters as a regular ENTRADA movement inside the
		// same lock scope as the product write.
		if input.InitialStock > 0 {
			inventory, err := s.inventory.Get(ctx)
			if err != nil {
				return fmt.Errorf("load inventory: %w", err)
			}
			inventory, err = inventory.ApplyMovement(product.ID, domain.MovementEntrada, input.InitialStock)
			if err != nil {
				return err
			}
			if err := s.inventory.Save(ctx, inventory); err != nil {
				return fmt.Errorf("save inventory: %w", err)
			}
		}

		out = &RegisterProductOutput{
			ProductID:    product.ID.String(),
			Name:         product.Name,
			SKU:          product.SKU,
			PriceAmount:  product.Price.AmountString(),
			Currency:     product.Price.Currency(),
			InitialStock: input.InitialStock,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("product registered",
		"product_id", out.ProductID,
		"sku", out.SKU,
		"initial_stock", out.InitialStock,
	)
	return out, nil
}
