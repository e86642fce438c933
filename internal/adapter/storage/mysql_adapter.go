package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/maspatas/ledger/internal/core/domain"
)

// MySQL-backed repositories. Prices are stored as DECIMAL and scanned as
// strings so amounts round-trip exactly.

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		id VARCHAR(64) PRIMARY KEY,
		full_name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		sku VARCHAR(64) NOT NULL,
		price_amount DECIMAL(20,2) NOT NULL,
		price_currency CHAR(3) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS inventory (
		product_id VARCHAR(64) PRIMARY KEY,
		stock INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		sale_id VARCHAR(64) PRIMARY KEY,
		client_id VARCHAR(64) NOT NULL,
		total_amount DECIMAL(20,2) NOT NULL,
		currency CHAR(3) NOT NULL,
		created_at DATETIME(6) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sale_lines (
		sale_id VARCHAR(64) NOT NULL,
		product_id VARCHAR(64) NOT NULL,
		quantity INT NOT NULL,
		unit_price_amount DECIMAL(20,2) NOT NULL,
		currency CHAR(3) NOT NULL,
		PRIMARY KEY (sale_id, product_id)
	)`,
}

// EnsureMySQLSchema creates the tables when they do not exist yet.
func EnsureMySQLSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

type MySQLProductRepository struct {
	db *sql.DB
}

func NewMySQLProductRepository(db *sql.DB) *MySQLProductRepository {
	return &MySQLProductRepository{db: db}
}

func (r *MySQLProductRepository) GetByID(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, sku, price_amount, price_currency
		FROM products WHERE id = ?`, id.String())
	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return product, nil
}

func (r *MySQLProductRepository) Save(ctx context.Context, product domain.Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, sku, price_amount, price_currency)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE name = VALUES(name), sku = VALUES(sku),
			price_amount = VALUES(price_amount), price_currency = VALUES(price_currency)`,
		product.ID.String(), product.Name, product.SKU,
		product.Price.AmountString(), product.Price.Currency(),
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *MySQLProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, sku, price_amount, price_currency
		FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *product)
	}
	return products, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		id, name, sku    string
		amount, currency string
	)
	if err := row.Scan(&id, &name, &sku, &amount, &currency); err != nil {
		return nil, err
	}
	productID, err := domain.NewProductID(id)
	if err != nil {
		return nil, err
	}
	price, err := domain.NewMoneyFromString(amount, currency)
	if err != nil {
		return nil, err
	}
	product, err := domain.NewProduct(productID, name, sku, price)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

type MySQLClientRepository struct {
	db *sql.DB
}

func NewMySQLClientRepository(db *sql.DB) *MySQLClientRepository {
	return &MySQLClientRepository{db: db}
}

func (r *MySQLClientRepository) GetByID(ctx context.Context, id domain.ClientID) (*domain.Client, error) {
	var clientID, fullName, email string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, full_name, email FROM clients WHERE id = ?`, id.String(),
	).Scan(&clientID, &fullName, &email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query client: %w", err)
	}
	return rebuildClient(clientID, fullName, email)
}

func (r *MySQLClientRepository) Save(ctx context.Context, client domain.Client) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (id, full_name, email)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE full_name = VALUES(full_name), email = VALUES(email)`,
		client.ID.String(), client.FullName, client.Email,
	)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (r *MySQLClientRepository) List(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, full_name, email FROM clients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		var clientID, fullName, email string
		if err := rows.Scan(&clientID, &fullName, &email); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		client, err := rebuildClient(clientID, fullName, email)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *client)
	}
	return clients, rows.Err()
}

func rebuildClient(id, fullName, email string) (*domain.Client, error) {
	clientID, err := domain.NewClientID(id)
	if err != nil {
		return nil, err
	}
	client, err := domain.NewClient(clientID, fullName, email)
	if err != nil {
		return nil, err
	}
	return &client, nil
}

type MySQLInventoryRepository struct {
	db *sql.DB
}

func NewMySQLInventoryRepository(db *sql.DB) *MySQLInventoryRepository {
	return &MySQLInventoryRepository{db: db}
}

func (r *MySQLInventoryRepository) Get(ctx context.Context) (domain.InventoryAggregate, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT product_id, stock FROM inventory`)
	if err != nil {
		return domain.InventoryAggregate{}, fmt.Errorf("query inventory: %w", err)
	}
	defer rows.Close()

	items := make(map[domain.ProductID]domain.InventoryItem)
	for rows.Next() {
		var (
			id    string
			stock int
		)
		if err := rows.Scan(&id, &stock); err != nil {
			return domain.InventoryAggregate{}, fmt.Errorf("scan inventory: %w", err)
		}
		productID, err := domain.NewProductID(id)
		if err != nil {
			return domain.InventoryAggregate{}, err
		}
		items[productID] = domain.InventoryItem{ProductID: productID, Stock: stock}
	}
	if err := rows.Err(); err != nil {
		return domain.InventoryAggregate{}, err
	}
	return domain.NewInventoryAggregate(items), nil
}

// Save upserts every item inside one transaction so the whole-aggregate
// replace is atomic at the database level.
func (r *MySQLInventoryRepository) Save(ctx context.Context, inventory domain.InventoryAggregate) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, item := range inventory.Items() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO inventory (product_id, stock)
			VALUES (?, ?)
			ON DUPLICATE KEY UPDATE stock = VALUES(stock)`,
			item.ProductID.String(), item.Stock,
		)
		if err != nil {
			return fmt.Errorf("upsert inventory: %w", err)
		}
	}
	return tx.Commit()
}

type MySQLSaleRepository struct {
	db *sql.DB
}

func NewMySQLSaleRepository(db *sql.DB) *MySQLSaleRepository {
	return &MySQLSaleRepository{db: db}
}

func (r *MySQLSaleRepository) Save(ctx context.Context, sale domain.SaleAggregate) error {
	total, err := sale.Total()
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (sale_id, client_id, total_amount, currency, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		sale.SaleID, sale.ClientID.String(), total.AmountString(), total.Currency(), sale.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	for _, line := range sale.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sale_lines (sale_id, product_id, quantity, unit_price_amount, currency)
			VALUES (?, ?, ?, ?, ?)`,
			sale.SaleID, line.ProductID.String(), line.Quantity,
			line.UnitPrice.AmountString(), line.UnitPrice.Currency(),
		)
		if err != nil {
			return fmt.Errorf("insert sale line: %w", err)
		}
	}
	return tx.Commit()
}

func (r *MySQLSaleRepository) GetByID(ctx context.Context, saleID string) (*domain.SaleAggregate, error) {
	var (
		clientID  string
		createdAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT client_id, created_at FROM sales WHERE sale_id = ?`, saleID,
	).Scan(&clientID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query sale: %w", err)
	}

	lines, err := r.loadLines(ctx, saleID)
	if err != nil {
		return nil, err
	}
	cid, err := domain.NewClientID(clientID)
	if err != nil {
		return nil, err
	}
	sale, err := domain.NewSaleAggregateAt(saleID, cid, lines, createdAt.Time)
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *MySQLSaleRepository) List(ctx context.Context) ([]domain.SaleAggregate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT sale_id, client_id, created_at FROM sales ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	type saleRow struct {
		saleID    string
		clientID  string
		createdAt sql.NullTime
	}
	var saleRows []saleRow
	for rows.Next() {
		var sr saleRow
		if err := rows.Scan(&sr.saleID, &sr.clientID, &sr.createdAt); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		saleRows = append(saleRows, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var sales []domain.SaleAggregate
	for _, sr := range saleRows {
		lines, err := r.loadLines(ctx, sr.saleID)
		if err != nil {
			return nil, err
		}
		cid, err := domain.NewClientID(sr.clientID)
		if err != nil {
			return nil, err
		}
		sale, err := domain.NewSaleAggregateAt(sr.saleID, cid, lines, sr.createdAt.Time)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, nil
}

func (r *MySQLSaleRepository) loadLines(ctx context.Context, saleID string) ([]domain.SaleLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, quantity, unit_price_amount, currency
		FROM sale_lines WHERE sale_id = ? ORDER BY product_id`, saleID)
	if err != nil {
		return nil, fmt.Errorf("query sale lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.SaleLine
	for rows.Next() {
		var (
			productID        string
			quantity         int
			amount, currency string
		)
		if err := rows.Scan(&productID, &quantity, &amount, &currency); err != nil {
			return nil, fmt.Errorf("scan sale line: %w", err)
		}
		pid, err := domain.NewProductID(productID)
		if err != nil {
			return nil, err
		}
		unitPrice, err := domain.NewMoneyFromString(amount, currency)
		if err != nil {
			return nil, err
		}
		line, err := domain.NewSaleLine(pid, quantity, unitPrice)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
