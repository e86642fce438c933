package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"

	"github.com/maspatas/ledger/internal/core/domain"
	"github.com/maspatas/ledger/internal/core/service"
	"github.com/maspatas/ledger/internal/platform/logger"
	"github.com/maspatas/ledger/internal/port"
	"github.com/maspatas/ledger/internal/resilience"
)

type HTTPHandler struct {
	registerClient  *service.RegisterClientService
	registerProduct *service.RegisterProductService
	registerSale    *service.RegisterSaleService
	products        port.ProductRepository
	clients         port.ClientRepository
	inventory       port.InventoryRepository
	sales           port.SaleRepository
	policy          *resilience.Policy
	log             *logger.Logger
}

func NewHTTPHandler(
	registerClient *service.RegisterClientService,
	registerProduct *service.RegisterProductService,
	registerSale *service.RegisterSaleService,
	products port.ProductRepository,
	clients port.ClientRepository,
	inventory port.InventoryRepository,
	sales port.SaleRepository,
	policy *resilience.Policy,
	log *logger.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		registerClient:  registerClient,
		registerProduct: registerProduct,
		registerSale:    registerSale,
		products:        products,
		clients:         clients,
		inventory:       inventory,
		sales:           sales,
		policy:          policy,
		log:             log,
	}
}

// Register wires all routes. Read endpoints are public; registrations
// require a bearer token carrying the caller's role.
func (h *HTTPHandler) Register(r *gin.Engine, auth *AuthMiddleware) {
	r.GET("/health", h.Health)
	r.POST("/auth/token", auth.IssueToken)

	r.GET("/products", h.ListProducts)
	r.GET("/products/:id", h.GetProduct)
	r.GET("/clients", h.ListClients)
	r.GET("/clients/:id", h.GetClient)
	r.GET("/inventory", h.GetInventory)
	r.GET("/sales", h.ListSales)
	r.GET("/sales/:id", h.GetSale)

	protected := r.Group("/", auth.RequireRole())
	protected.POST("/clients", h.RegisterClient)
	protected.POST("/products", h.RegisterProduct)
	protected.POST("/sales", h.RegisterSale)
}

func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type registerClientRequest struct {
	ClientID string `json:"client_id" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required"`
}

type clientResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

func (h *HTTPHandler) RegisterClient(c *gin.Context) {
	var req registerClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "cuerpo de petición inválido"})
		return
	}

	var out *service.RegisterClientOutput
	err := h.policy.Execute(c.Request.Context(), func(ctx context.Context) error {
		var err error
		out, err = h.registerClient.Execute(ctx, service.RegisterClientInput{
			ClientID: req.ClientID,
			FullName: req.FullName,
			Email:    req.Email,
		}, roleFromContext(c))
		return err
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, clientResponse{
		ID:       out.ClientID,
		FullName: out.FullName,
		Email:    out.Email,
	})
}

type registerProductRequest struct {
	ProductID    string `json:"product_id" binding:"required"`
	Name         string `json:"name" binding:"required"`
	SKU          string `json:"sku" binding:"required"`
	PriceAmount  string `json:"price_amount" binding:"required"`
	Currency     string `json:"currency"`
	InitialStock int    `json:"initial_stock"`
}

type productResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	PriceAmount string `json:"price_amount"`
	Currency    string `json:"currency"`
}

type registerProductResponse struct {
	productResponse
	InitialStock int `json:"initial_stock"`
}

func (h *HTTPHandler) RegisterProduct(c *gin.Context) {
	var req registerProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "cuerpo de petición inválido"})
		return
	}

	var out *service.RegisterProductOutput
	err := h.policy.Execute(c.Request.Context(), func(ctx context.Context) error {
		var err error
		out, err = h.registerProduct.Execute(ctx, service.RegisterProductInput{
			ProductID:    req.ProductID,
			Name:         req.Name,
			SKU:          req.SKU,
			PriceAmount:  req.PriceAmount,
			Currency:     req.Currency,
			InitialStock: req.InitialStock,
		}, roleFromContext(c))
		return err
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, registerProductResponse{
		productResponse: productResponse{
			ID:          out.ProductID,
			Name:        out.Name,
			SKU:         out.SKU,
			PriceAmount: out.PriceAmount,
			Currency:    out.Currency,
		},
		InitialStock: out.InitialStock,
	})
}

type saleLineRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

type registerSaleRequest struct {
	SaleID   string            `json:"sale_id"`
	ClientID string            `json:"client_id" binding:"required"`
	Lines    []saleLineRequest `json:"lines" binding:"required"`
}

type registerSaleResponse struct {
	SaleID      string `json:"sale_id"`
	TotalAmount string `json:"total_amount"`
	Currency    string `json:"currency"`
}

func (h *HTTPHandler) RegisterSale(c *gin.Context) {
	var req registerSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "cuerpo de petición inválido"})
		return
	}

	lines := make([]service.SaleLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, service.SaleLineInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}

	var out *service.RegisterSaleOutput
	err := h.policy.Execute(c.Request.Context(), func(ctx context.Context) error {
		var err error
		out, err = h.registerSale.Execute(ctx, service.RegisterSaleInput{
			SaleID:   req.SaleID,
			ClientID: req.ClientID,
			Lines:    lines,
		}, roleFromContext(c))
		return err
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, registerSaleResponse{
		SaleID:      out.SaleID,
		TotalAmount: out.TotalAmount,
		Currency:    out.Currency,
	})
}

func (h *HTTPHandler) ListProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, product := range products {
		out = append(out, toProductResponse(product))
	}
	c.JSON(http.StatusOK, out)
}

func (h *HTTPHandler) GetProduct(c *gin.Context) {
	productID, err := domain.NewProductID(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	product, err := h.products.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Producto no encontrado"})
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*product))
}

func (h *HTTPHandler) ListClients(c *gin.Context) {
	clients, err := h.clients.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]clientResponse, 0, len(clients))
	for _, client := range clients {
		out = append(out, clientResponse{
			ID:       client.ID.String(),
			FullName: client.FullName,
			Email:    client.Email,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *HTTPHandler) GetClient(c *gin.Context) {
	clientID, err := domain.NewClientID(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	client, err := h.clients.GetByID(c.Request.Context(), clientID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if client == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Cliente no encontrado"})
		return
	}
	c.JSON(http.StatusOK, clientResponse{
		ID:       client.ID.String(),
		FullName: client.FullName,
		Email:    client.Email,
	})
}

type inventoryItemResponse struct {
	ProductID string `json:"product_id"`
	Stock     int    `json:"stock"`
}

func (h *HTTPHandler) GetInventory(c *gin.Context) {
	inventory, err := h.inventory.Get(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	items := inventory.Items()
	out := make([]inventoryItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, inventoryItemResponse{
			ProductID: item.ProductID.String(),
			Stock:     item.Stock,
		})
	}
	c.JSON(http.StatusOK, out)
}

type saleLineResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

type saleResponse struct {
	SaleID      string             `json:"sale_id"`
	ClientID    string             `json:"client_id"`
	CreatedAt   string             `json:"created_at"`
	TotalAmount string             `json:"total_amount"`
	Currency    string             `json:"currency"`
	Lines       []saleLineResponse `json:"lines"`
}

func (h *HTTPHandler) ListSales(c *gin.Context) {
	sales, err := h.sales.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]saleResponse, 0, len(sales))
	for _, sale := range sales {
		resp, err := toSaleResponse(sale)
		if err != nil {
			h.writeError(c, err)
			return
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, out)
}

func (h *HTTPHandler) GetSale(c *gin.Context) {
	sale, err := h.sales.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if sale == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Venta no encontrada"})
		return
	}
	resp, err := toSaleResponse(*sale)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func toProductResponse(product domain.Product) productResponse {
	return productResponse{
		ID:          product.ID.String(),
		Name:        product.Name,
		SKU:         product.SKU,
		PriceAmount: product.Price.AmountString(),
		Currency:    product.Price.Currency(),
	}
}

func toSaleResponse(sale domain.SaleAggregate) (saleResponse, error) {
	total, err := sale.Total()
	if err != nil {
		return saleResponse{}, err
	}
	lines := make([]saleLineResponse, 0, len(sale.Lines))
	for _, line := range sale.Lines {
		subtotal, err := line.Subtotal()
		if err != nil {
			return saleResponse{}, err
		}
		lines = append(lines, saleLineResponse{
			ProductID: line.ProductID.String(),
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.AmountString(),
			Subtotal:  subtotal.AmountString(),
		})
	}
	return saleResponse{
		SaleID:      sale.SaleID,
		ClientID:    sale.ClientID.String(),
		CreatedAt:   sale.CreatedAt.Format("2006-01-02T15:04:05.999999Z07:00"),
		TotalAmount: total.AmountString(),
		Currency:    total.Currency(),
		Lines:       lines,
	}, nil
}

// writeError maps domain errors to HTTP statuses: authorization failures
// are distinct from business-rule violations so clients can tell them
// apart; everything else is an internal failure.
func (h *HTTPHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"detail": err.Error()})
	case domain.IsDomainError(err):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "tiempo máximo excedido"})
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "servicio temporalmente no disponible"})
	default:
		h.log.Error("request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "error interno"})
	}
}
