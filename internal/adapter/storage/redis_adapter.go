package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/maspatas/ledger/internal/core/domain"
)

// Redis-backed repositories storing aggregates as JSON documents. Each
// aggregate type keeps a set of ids as its index; the inventory aggregate
// lives under a single key and is replaced wholesale on save.

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	productKeyPrefix = "product:"
	clientKeyPrefix  = "client:"
	saleKeyPrefix    = "sale:"
	productIndexKey  = "products"
	clientIndexKey   = "clients"
	saleIndexKey     = "sales"
	inventoryKey     = "inventory"
)

type productDoc struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	PriceAmount string `json:"price_amount"`
	Currency    string `json:"currency"`
}

type clientDoc struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type saleLineDoc struct {
	ProductID       string `json:"product_id"`
	Quantity        int    `json:"quantity"`
	UnitPriceAmount string `json:"unit_price_amount"`
	Currency        string `json:"currency"`
}

type saleDoc struct {
	SaleID    string        `json:"sale_id"`
	ClientID  string        `json:"client_id"`
	Lines     []saleLineDoc `json:"lines"`
	CreatedAt time.Time     `json:"created_at"`
}

type inventoryDoc struct {
	Stocks map[string]int `json:"stocks"`
}

type RedisProductRepository struct {
	client *redis.Client
}

func NewRedisProductRepository(client *redis.Client) *RedisProductRepository {
	return &RedisProductRepository{client: client}
}

func (r *RedisProductRepository) GetByID(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	payload, err := r.client.Get(ctx, productKeyPrefix+id.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	var doc productDoc
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	product, err := rebuildProduct(doc)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *RedisProductRepository) Save(ctx context.Context, product domain.Product) error {
	payload, err := json.Marshal(productDoc{
		ID:          product.ID.String(),
		Name:        product.Name,
		SKU:         product.SKU,
		PriceAmount: product.Price.AmountString(),
		Currency:    product.Price.Currency(),
	})
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, productKeyPrefix+product.ID.String(), payload, 0)
	pipe.SAdd(ctx, productIndexKey, product.ID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save product: %w", err)
	}
	return nil
}

func (r *RedisProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	ids, err := r.client.SMembers(ctx, productIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	var products []domain.Product
	for _, id := range ids {
		pid, err := domain.NewProductID(id)
		if err != nil {
			return nil, err
		}
		product, err := r.GetByID(ctx, pid)
		if err != nil {
			return nil, err
		}
		if product != nil {
			products = append(products, *product)
		}
	}
	sortProducts(products)
	return products, nil
}

func rebuildProduct(doc productDoc) (*domain.Product, error) {
	id, err := domain.NewProductID(doc.ID)
	if err != nil {
		return nil, err
	}
	price, err := domain.NewMoneyFromString(doc.PriceAmount, doc.Currency)
	if err != nil {
		return nil, err
	}
	product, err := domain.NewProduct(id, doc.Name, doc.SKU, price)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

type RedisClientRepository struct {
	client *redis.Client
}

func NewRedisClientRepository(client *redis.Client) *RedisClientRepository {
	return &RedisClientRepository{client: client}
}

func (r *RedisClientRepository) GetByID(ctx context.Context, id domain.ClientID) (*domain.Client, error) {
	payload, err := r.client.Get(ctx, clientKeyPrefix+id.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	var doc clientDoc
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("decode client: %w", err)
	}
	return rebuildClient(doc.ID, doc.FullName, doc.Email)
}

func (r *RedisClientRepository) Save(ctx context.Context, client domain.Client) error {
	payload, err := json.Marshal(clientDoc{
		ID:       client.ID.String(),
		FullName: client.FullName,
		Email:    client.Email,
	})
	if err != nil {
		return fmt.Errorf("encode client: %w", err)
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, clientKeyPrefix+client.ID.String(), payload, 0)
	pipe.SAdd(ctx, clientIndexKey, client.ID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save client: %w", err)
	}
	return nil
}

func (r *RedisClientRepository) List(ctx context.Context) ([]domain.Client, error) {
	ids, err := r.client.SMembers(ctx, clientIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	var clients []domain.Client
	for _, id := range ids {
		cid, err := domain.NewClientID(id)
		if err != nil {
			return nil, err
		}
		client, err := r.GetByID(ctx, cid)
		if err != nil {
			return nil, err
		}
		if client != nil {
			clients = append(clients, *client)
		}
	}
	sortClients(clients)
	return clients, nil
}

type RedisInventoryRepository struct {
	client *redis.Client
}

func NewRedisInventoryRepository(client *redis.Client) *RedisInventoryRepository {
	return &RedisInventoryRepository{client: client}
}

func (r *RedisInventoryRepository) Get(ctx context.Context) (domain.InventoryAggregate, error) {
	payload, err := r.client.Get(ctx, inventoryKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.NewInventoryAggregate(nil), nil
	}
	if err != nil {
		return domain.InventoryAggregate{}, fmt.Errorf("get inventory: %w", err)
	}
	var doc inventoryDoc
	if err := json.Unmarshal(payload, &doc); err != nil {
		return domain.InventoryAggregate{}, fmt.Errorf("decode inventory: %w", err)
	}

	items := make(map[domain.ProductID]domain.InventoryItem, len(doc.Stocks))
	for id, stock := range doc.Stocks {
		pid, err := domain.NewProductID(id)
		if err != nil {
			return domain.InventoryAggregate{}, err
		}
		items[pid] = domain.InventoryItem{ProductID: pid, Stock: stock}
	}
	return domain.NewInventoryAggregate(items), nil
}

func (r *RedisInventoryRepository) Save(ctx context.Context, inventory domain.InventoryAggregate) error {
	doc := inventoryDoc{Stocks: make(map[string]int)}
	for _, item := range inventory.Items() {
		doc.Stocks[item.ProductID.String()] = item.Stock
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode inventory: %w", err)
	}
	if err := r.client.Set(ctx, inventoryKey, payload, 0).Err(); err != nil {
		return fmt.Errorf("save inventory: %w", err)
	}
	return nil
}

type RedisSaleRepository struct {
	client *redis.Client
}

func NewRedisSaleRepository(client *redis.Client) *RedisSaleRepository {
	return &RedisSaleRepository{client: client}
}

func (r *RedisSaleRepository) Save(ctx context.Context, sale domain.SaleAggregate) error {
	doc := saleDoc{
		SaleID:    sale.SaleID,
		ClientID:  sale.ClientID.String(),
		CreatedAt: sale.CreatedAt,
	}
	for _, line := range sale.Lines {
		doc.Lines = append(doc.Lines, saleLineDoc{
			ProductID:       line.ProductID.String(),
			Quantity:        line.Quantity,
			UnitPriceAmount: line.UnitPrice.AmountString(),
			Currency:        line.UnitPrice.Currency(),
		})
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode sale: %w", err)
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, saleKeyPrefix+sale.SaleID, payload, 0)
	pipe.RPush(ctx, saleIndexKey, sale.SaleID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save sale: %w", err)
	}
	return nil
}

func (r *RedisSaleRepository) GetByID(ctx context.Context, saleID string) (*domain.SaleAggregate, error) {
	payload, err := r.client.Get(ctx, saleKeyPrefix+saleID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get sale: %w", err)
	}
	var doc saleDoc
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("decode sale: %w", err)
	}
	sale, err := rebuildSale(doc)
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func (r *RedisSaleRepository) List(ctx context.Context) ([]domain.SaleAggregate, error) {
	ids, err := r.client.LRange(ctx, saleIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	var sales []domain.SaleAggregate
	for _, id := range ids {
		sale, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if sale != nil {
			sales = append(sales, *sale)
		}
	}
	return sales, nil
}

func sortProducts(products []domain.Product) {
	sort.Slice(products, func(i, j int) bool {
		return products[i].ID.String() < products[j].ID.String()
	})
}

func sortClients(clients []domain.Client) {
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].ID.String() < clients[j].ID.String()
	})
}

func rebuildSale(doc saleDoc) (*domain.SaleAggregate, error) {
	clientID, err := domain.NewClientID(doc.ClientID)
	if err != nil {
		return nil, err
	}
	lines := make([]domain.SaleLine, 0, len(doc.Lines))
	for _, lineDoc := range doc.Lines {
		productID, err := domain.NewProductID(lineDoc.ProductID)
		if err != nil {
			return nil, err
		}
		unitPrice, err := domain.NewMoneyFromString(lineDoc.UnitPriceAmount, lineDoc.Currency)
		if err != nil {
			return nil, err
		}
		line, err := domain.NewSaleLine(productID, lineDoc.Quantity, unitPrice)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	sale, err := domain.NewSaleAggregateAt(doc.SaleID, clientID, lines, doc.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &sale, nil
}
