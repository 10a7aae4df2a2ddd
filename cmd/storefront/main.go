package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	accountpg "github.com/dwikikusuma/shoping-checkout/internal/account/infra/postgres"
	cartapp "github.com/dwikikusuma/shoping-checkout/internal/cart/app"
	cartpg "github.com/dwikikusuma/shoping-checkout/internal/cart/infra/postgres"
	catalogapp "github.com/dwikikusuma/shoping-checkout/internal/catalog/app"
	catalogpg "github.com/dwikikusuma/shoping-checkout/internal/catalog/infra/postgres"
	catalogredis "github.com/dwikikusuma/shoping-checkout/internal/catalog/infra/redis"
	checkoutapp "github.com/dwikikusuma/shoping-checkout/internal/checkout/app"
	checkoutadapter "github.com/dwikikusuma/shoping-checkout/internal/checkout/infra/adapter"
	orderapp "github.com/dwikikusuma/shoping-checkout/internal/order/app"
	orderevents "github.com/dwikikusuma/shoping-checkout/internal/order/infra/events"
	orderpg "github.com/dwikikusuma/shoping-checkout/internal/order/infra/postgres"
	paymentapp "github.com/dwikikusuma/shoping-checkout/internal/payment/app"
	"github.com/dwikikusuma/shoping-checkout/internal/payment/infra/gateway"
	"github.com/dwikikusuma/shoping-checkout/internal/storage/memory"

	"github.com/dwikikusuma/shoping-checkout/pkg/config"
	"github.com/dwikikusuma/shoping-checkout/pkg/kafka"
	"github.com/dwikikusuma/shoping-checkout/pkg/logger"
	"github.com/dwikikusuma/shoping-checkout/pkg/metrics"
	"github.com/dwikikusuma/shoping-checkout/pkg/postgres"
	"github.com/dwikikusuma/shoping-checkout/pkg/shutdown"
)

// repos groups the storage-backed ports so either backend can be wired.
type repos struct {
	Products catalogapp.ProductRepo
	Carts    cartapp.CartRepo
	Orders   orderapp.OrderRepo
	Users    paymentapp.UserDirectory
	Ready    func() error
	Close    func()
}

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service:   "storefront",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	store := mustRepos(ctx, cfg, log)
	defer store.Close()

	products := store.Products
	if cfg.Redis.Addr != "" {
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		products = catalogredis.NewCachedProductRepo(products, rdb, cfg.Redis.ProductTTL, log)
		log.Info("product cache enabled", slog.String("addr", cfg.Redis.Addr))
	}

	events := mustEvents(cfg, log)

	domainMetrics := metrics.NewCheckout(prometheus.DefaultRegisterer)
	serverMetrics := metrics.NewServerMetrics(prometheus.DefaultRegisterer, "http")

	// Catalog
	catalogSvc := catalogapp.NewService(products)

	// Cart
	cartSvc := cartapp.NewService(store.Carts, catalogSvc, domainMetrics, log)

	// Orders
	orderSvc := orderapp.NewService(store.Orders, domainMetrics, log)

	// Payments
	reconciler := paymentapp.NewReconciler(paymentapp.Config{
		Receiver:          cfg.Payment.Email,
		Sandbox:           cfg.Payment.Sandbox,
		LookupConcurrency: cfg.CheckoutConcurrency,
	}, paymentapp.Deps{
		Orders:   store.Orders,
		Products: catalogSvc,
		Users:    store.Users,
		Gateway: gateway.NewClient(gateway.Config{
			Endpoint: cfg.Payment.Endpoint,
			Token:    cfg.Payment.Token,
			Timeout:  cfg.Payment.Timeout,
		}),
		Events:  events,
		Metrics: domainMetrics,
		Log:     log,
	})
	if cfg.Payment.WebhookToken == "" {
		log.Warn("payment notifications are not authenticated: PAYMENT_WEBHOOK_TOKEN is empty")
	}

	// Checkout (adapters)
	cartReader := checkoutadapter.NewCartServiceReader(cartSvc)
	catalogReader := checkoutadapter.NewCatalogServiceReader(catalogSvc)
	checkoutSvc := checkoutapp.NewService(cartReader, catalogReader, orderSvc, reconciler, events, log, cfg.CheckoutConcurrency)

	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(services{
		Cart:       cartSvc,
		Orders:     orderSvc,
		Checkout:   checkoutSvc,
		Reconciler: reconciler,
	}, routerOptions{
		Log:          log,
		Metrics:      serverMetrics,
		Gatherer:     prometheus.DefaultGatherer,
		CORSOrigins:  cfg.CORSOrigins,
		WebhookToken: cfg.Payment.WebhookToken,
		Ready:        store.Ready,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server starting", slog.String("addr", addr), slog.String("storage", cfg.Storage))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", slog.Any("err", err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")

	// Stop taking requests before the event writers go away.
	if err := shutdown.Run(log, 10*time.Second,
		shutdown.Step{Name: "http server", Fn: server.Shutdown},
		shutdown.Step{Name: "event writers", Fn: func(context.Context) error { return events.Close() }},
	); err != nil {
		log.Error("shutdown incomplete", slog.Any("err", err))
	}

	wg.Wait()
	log.Info("bye")
}

func mustRepos(ctx context.Context, cfg config.Config, log *slog.Logger) repos {
	switch cfg.Storage {
	case "memory":
		db := memory.New()
		log.Warn("using in-memory storage; data is lost on restart")
		return repos{
			Products: db.Products(),
			Carts:    db.Carts(),
			Orders:   db.Orders(),
			Users:    db.Users(),
			Ready:    func() error { return nil },
			Close:    func() {},
		}
	case "postgres":
		pool, err := postgres.Open(ctx, postgres.Config{
			Host: cfg.Postgres.Host,
			Port: cfg.Postgres.Port,
			User: cfg.Postgres.User,
			Pass: cfg.Postgres.Pass,
			DB:   cfg.Postgres.DB,
		})
		if err != nil {
			log.Error("db open failed", slog.Any("err", err))
			os.Exit(1)
		}
		return repos{
			Products: catalogpg.NewProductRepo(pool),
			Carts:    cartpg.NewCartRepo(pool),
			Orders:   orderpg.NewOrderRepo(pool),
			Users:    accountpg.NewUserRepo(pool),
			Ready: func() error {
				pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				return pool.Ping(pingCtx)
			},
			Close: pool.Close,
		}
	default:
		log.Error("unknown storage backend", slog.String("storage", cfg.Storage))
		os.Exit(1)
		return repos{}
	}
}

type orderEvents interface {
	checkoutapp.OrderEvents
	paymentapp.StatusPublisher
	Close() error
}

func mustEvents(cfg config.Config, log *slog.Logger) orderEvents {
	client := kafka.NewClient(cfg.Kafka.Brokers, kafka.WriterOptions{
		BatchTimeout:   cfg.Kafka.BatchTimeout,
		WriteTimeout:   cfg.Kafka.WriteTimeout,
		PublishTimeout: cfg.Kafka.PublishTimeout,
	})
	if !client.Enabled() {
		log.Info("order events disabled", slog.Any("reason", kafka.ErrDisabled))
		return orderevents.Noop{}
	}
	log.Info("order events enabled", slog.Any("brokers", client.Brokers))
	return orderevents.NewPublisher(
		client.NewWriter(cfg.Kafka.OrderTopic),
		client.NewWriter(cfg.Kafka.StatusTopic),
		client.Options().PublishTimeout,
	)
}
