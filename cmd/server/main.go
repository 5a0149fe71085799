package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/orderdirect/internal/cart"
	"github.com/Skotchmaster/orderdirect/internal/config"
	"github.com/Skotchmaster/orderdirect/internal/customer"
	"github.com/Skotchmaster/orderdirect/internal/db"
	"github.com/Skotchmaster/orderdirect/internal/events"
	"github.com/Skotchmaster/orderdirect/internal/httpserver"
	"github.com/Skotchmaster/orderdirect/internal/identity"
	"github.com/Skotchmaster/orderdirect/internal/kvstore"
	"github.com/Skotchmaster/orderdirect/internal/logging"
	"github.com/Skotchmaster/orderdirect/internal/menu"
	"github.com/Skotchmaster/orderdirect/internal/middleware/csrf"
	"github.com/Skotchmaster/orderdirect/internal/middleware/loggingmw"
	"github.com/Skotchmaster/orderdirect/internal/order"
	"github.com/Skotchmaster/orderdirect/internal/pricing"
	"github.com/Skotchmaster/orderdirect/internal/storefront"
	"github.com/Skotchmaster/orderdirect/internal/tenant"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.MustLoad()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("db open: %v", err)
	}

	models := append(identity.Models(), &tenant.Tenant{})
	models = append(models, menu.Models()...)
	models = append(models, order.Models()...)
	models = append(models, customer.Models()...)
	if err := db.Migrate(ctx, gdb, models...); err != nil {
		cancel()
		log.Fatalf("db migrate: %v", err)
	}

	var store cart.Store = kvstore.NewMemory()
	if cfg.RedisAddr != "" {
		rdb, err := kvstore.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			cancel()
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		store = kvstore.NewRedis(rdb, cfg.CartTTL)
	} else {
		logger.Warn("cart_store_fallback", "reason", "REDIS_ADDR is empty, carts are kept in memory")
	}
	cancel()

	var pub events.Publisher = events.Discard{}
	if len(cfg.KafkaBrokers) > 0 {
		prod := events.NewProducer(cfg.KafkaBrokers)
		defer func() {
			if err := prod.Close(); err != nil {
				log.Printf("kafka close error: %v", err)
			}
		}()
		pub = prod
	}

	runCtx, stopRun := context.WithCancel(context.Background())
	defer stopRun()

	var watcher interface {
		order.Watcher
		order.Notifier
	}
	pgw, err := order.NewPGWatcher(cfg.DatabaseURL, gdb)
	if err != nil {
		logger.Warn("order_watch_fallback", "reason", "cannot listen for order notifications", "error", err)
		watcher = order.NewHub()
	} else {
		go pgw.Run(runCtx)
		defer pgw.Close()
		watcher = pgw
	}

	calc := pricing.Calculator{DeliveryFee: cfg.DeliveryFee, TaxRate: cfg.TaxRate}
	idp := identity.NewProvider(gdb, cfg.JWTAccessSecret, cfg.JWTRefreshSecret)
	tenants := tenant.NewService(gdb, idp, pub, cfg.ReservedSubdomains)

	e := echo.New()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Secure())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		Tenants:   tenants,
		Resolver:  tenant.NewResolver(tenants.Repo),
		Identity:  idp,
		Customers: customer.NewService(gdb, idp, pub),
		Menu:      menu.NewService(gdb, pub),
		Orders:    order.NewService(gdb, pub, watcher, calc),
		Watcher:   watcher,
		Carts:     cart.NewAdapter(store),
		Calc:      calc,
		CartTTL:   cfg.CartTTL,
		QR:        storefront.QR{BaseURL: cfg.PublicBaseURL},
		CSRF:      csrf.DefaultConfig(),
		Ready: func(ctx context.Context) error {
			return db.Ping(ctx, gdb)
		},
	})

	// No WriteTimeout: order event streams stay open until the order closes.
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("orderdirect listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	stopRun()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	if err := db.Close(gdb); err != nil {
		log.Printf("db close error: %v", err)
	}

	log.Println("orderdirect stopped")
}
