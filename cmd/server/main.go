package main

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/maspatas/ledger/internal/adapter/handler"
	"github.com/maspatas/ledger/internal/adapter/lock"
	"github.com/maspatas/ledger/internal/adapter/storage"
	"github.com/maspatas/ledger/internal/config"
	"github.com/maspatas/ledger/internal/core/domain"
	"github.com/maspatas/ledger/internal/core/service"
	"github.com/maspatas/ledger/internal/platform/logger"
	"github.com/maspatas/ledger/internal/port"
	"github.com/maspatas/ledger/internal/resilience"
)

type repositories struct {
	products  port.ProductRepository
	clients   port.ClientRepository
	inventory port.InventoryRepository
	sales     port.SaleRepository
	cleanup   func()
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	repos, err := buildRepositories(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to build repositories", "backend", cfg.Backend, "error", err)
	}
	defer repos.cleanup()

	if err := seedIfEmpty(ctx, repos); err != nil {
		log.Fatal("failed to seed data", "error", err)
	}

	locker := lock.NewKeyedLock()
	authz := service.NewAuthorizationService()
	policy := resilience.NewPolicy(log)

	registerClient := service.NewRegisterClientService(repos.clients, locker, authz, log)
	registerProduct := service.NewRegisterProductService(repos.products, repos.inventory, locker, authz, log)
	registerSale := service.NewRegisterSaleService(
		repos.products, repos.clients, repos.inventory, repos.sales, locker, authz, log)

	authMW := handler.NewAuthMiddleware(cfg.JWTSecret, authz, log)
	httpHandler := handler.NewHTTPHandler(
		registerClient, registerProduct, registerSale,
		repos.products, repos.clients, repos.inventory, repos.sales,
		policy, log)

	if cfg.LogMode == "prod" || cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	httpHandler.Register(engine, authMW)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: engine,
	}

	go func() {
		log.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatal("failed to listen", "addr", cfg.GRPCAddr, "error", err)
	}
	go func() {
		log.Info("gRPC health server listening", "addr", cfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("gRPC server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown error", "error", err)
	}
	grpcServer.GracefulStop()
	log.Info("servers stopped")
}

func buildRepositories(ctx context.Context, cfg *config.Config, log *logger.Logger) (*repositories, error) {
	switch cfg.Backend {
	case config.BackendMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			return nil, err
		}
		if err := storage.EnsureMySQLSchema(ctx, db); err != nil {
			return nil, err
		}
		log.Info("connected to mysql")
		return &repositories{
			products:  storage.NewMySQLProductRepository(db),
			clients:   storage.NewMySQLClientRepository(db),
			inventory: storage.NewMySQLInventoryRepository(db),
			sales:     storage.NewMySQLSaleRepository(db),
			cleanup:   func() { db.Close() },
		}, nil

	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, PoolSize: 100})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, err
		}
		log.Info("connected to redis")
		return &repositories{
			products:  storage.NewRedisProductRepository(rdb),
			clients:   storage.NewRedisClientRepository(rdb),
			inventory: storage.NewRedisInventoryRepository(rdb),
			sales:     storage.NewRedisSaleRepository(rdb),
			cleanup:   func() { rdb.Close() },
		}, nil

	default:
		log.Info("using in-memory repositories")
		return &repositories{
			products:  storage.NewMemoryProductRepository(),
			clients:   storage.NewMemoryClientRepository(),
			inventory: storage.NewMemoryInventoryRepository(),
			sales:     storage.NewMemorySaleRepository(),
			cleanup:   func() {},
		}, nil
	}
}

// seedIfEmpty loads the demo catalog on first start, whatever the backend.
func seedIfEmpty(ctx context.Context, repos *repositories) error {
	probe, err := domain.NewProductID("P-001")
	if err != nil {
		return err
	}
	existing, err := repos.products.GetByID(ctx, probe)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	type seedProduct struct {
		id, name, sku, price string
		stock                int
	}
	seeds := []seedProduct{
		{id: "P-001", name: "Croquetas Premium", sku: "CROQ-01", price: "550.00", stock: 15},
		{id: "P-002", name: "Correa Ajustable", sku: "CORR-01", price: "220.00", stock: 8},
	}

	items := make(map[domain.ProductID]domain.InventoryItem)
	for _, seed := range seeds {
		id, err := domain.NewProductID(seed.id)
		if err != nil {
			return err
		}
		price, err := domain.NewMoneyFromString(seed.price, domain.DefaultCurrency)
		if err != nil {
			return err
		}
		product, err := domain.NewProduct(id, seed.name, seed.sku, price)
		if err != nil {
			return err
		}
		if err := repos.products.Save(ctx, product); err != nil {
			return err
		}
		items[id] = domain.InventoryItem{ProductID: id, Stock: seed.stock}
	}
	if err := repos.inventory.Save(ctx, domain.NewInventoryAggregate(items)); err != nil {
		return err
	}

	clientID, err := domain.NewClientID("C-001")
	if err != nil {
		return err
	}
	client, err := domain.NewClient(clientID, "Ana Pérez", "ana@cliente.com")
	if err != nil {
		return err
	}
	return repos.clients.Save(ctx, client)
}
