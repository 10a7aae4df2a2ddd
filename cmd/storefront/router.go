package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	cartapp "github.com/dwikikusuma/shoping-checkout/internal/cart/app"
	cartrest "github.com/dwikikusuma/shoping-checkout/internal/cart/rest"
	checkoutapp "github.com/dwikikusuma/shoping-checkout/internal/checkout/app"
	checkoutrest "github.com/dwikikusuma/shoping-checkout/internal/checkout/rest"
	orderapp "github.com/dwikikusuma/shoping-checkout/internal/order/app"
	orderrest "github.com/dwikikusuma/shoping-checkout/internal/order/rest"
	paymentapp "github.com/dwikikusuma/shoping-checkout/internal/payment/app"
	paymentrest "github.com/dwikikusuma/shoping-checkout/internal/payment/rest"

	"github.com/dwikikusuma/shoping-checkout/pkg/httpx"
	"github.com/dwikikusuma/shoping-checkout/pkg/metrics"
)

type services struct {
	Cart       *cartapp.Service
	Orders     *orderapp.Service
	Checkout   *checkoutapp.Service
	Reconciler *paymentapp.Reconciler
}

type routerOptions struct {
	Log          *slog.Logger
	Metrics      *metrics.ServerMetrics
	Gatherer     prometheus.Gatherer
	CORSOrigins  []string
	WebhookToken string
	// Ready reports whether dependencies are reachable.
	Ready func() error
}

func newRouter(svc services, opts routerOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestLogger(opts.Log))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
	}
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/readyz", func(c *gin.Context) {
		if opts.Ready != nil {
			if err := opts.Ready(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.Status(http.StatusOK)
	})
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(opts.Gatherer)))
	}

	cartrest.NewHandler(svc.Cart).Register(r.Group("/cart", httpx.CartKey()))
	checkoutrest.NewHandler(svc.Checkout).Register(r.Group("/checkout", httpx.CartKey()))

	orders := r.Group("/orders", httpx.RequireUser())
	orderrest.NewHandler(svc.Orders).Register(orders)
	payments := paymentrest.NewHandler(svc.Reconciler, opts.WebhookToken)
	payments.RegisterOrders(orders)
	payments.RegisterNotifications(r.Group("/payments"))

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", httpx.CartKeyHeader, httpx.UserIDHeader},
		MaxAge:       12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	// The cart cookie only travels cross-origin to named origins.
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
