package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"ilbmart/internal/config"
	"ilbmart/internal/handlers"
	"ilbmart/internal/middleware"
	"ilbmart/internal/models"
	"ilbmart/internal/repositories"
	"ilbmart/internal/services"
	"ilbmart/internal/session"
	"ilbmart/pkg/rabbitmq"
	"ilbmart/pkg/restclient"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, cleanup, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer cleanup()

	log.Printf("Starting server on port %s (backend: %s, session store: %s)", cfg.AppPort, cfg.BackendMode, cfg.SessionBackend)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// backend is the set of repositories the services talk to.
type backend struct {
	catalog  repositories.CatalogRepository
	cart     repositories.CartRepository
	orders   repositories.OrderRepository
	users    repositories.UserRepository
	wishlist repositories.WishlistRepository
}

func newBackend(cfg *config.Config) backend {
	if cfg.BackendMode == config.BackendMock {
		mock := repositories.NewMockBackend(cfg.MockSecret)
		mock.Seed()
		log.Printf("Using in-memory backend, login OTP is %s", repositories.MockOTP)
		return backend{
			catalog:  mock.Catalog,
			cart:     mock.Cart,
			orders:   mock.Orders,
			users:    mock.Users,
			wishlist: mock.Wishlist,
		}
	}

	retry := restclient.DefaultRetryConfig()
	retry.MaxAttempts = cfg.GetRetryAttempts
	client := restclient.New(restclient.Config{
		BaseURL: cfg.APIBaseURL,
		Version: cfg.APIVersion,
		Timeout: cfg.HTTPTimeout,
		Retry:   retry,
	})
	return backend{
		catalog:  repositories.NewHTTPCatalogRepository(client),
		cart:     repositories.NewHTTPCartRepository(client),
		orders:   repositories.NewHTTPOrderRepository(client),
		users:    repositories.NewHTTPUserRepository(client),
		wishlist: repositories.NewHTTPWishlistRepository(client),
	}
}

// openSessionStore opens the store selected by SESSION_BACKEND. The returned
// func releases it.
func openSessionStore(cfg *config.Config) (repositories.SessionRepository, func(), error) {
	noop := func() {}
	switch cfg.SessionBackend {
	case config.SessionMemory:
		return repositories.NewMockSessionRepository(), noop, nil
	case config.SessionRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, noop, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		return repositories.NewRedisSessionRepository(client, cfg.RedisPrefix), func() {
			if err := client.Close(); err != nil {
				log.Printf("Error closing Redis client: %v", err)
			}
		}, nil
	}

	var dialector gorm.Dialector
	if cfg.SessionBackend == config.SessionPostgres {
		dialector = postgres.Open(cfg.SessionDSN)
	} else {
		dialector = sqlite.Open(cfg.SessionDSN)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, noop, fmt.Errorf("failed to connect to session database: %w", err)
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	repo, err := repositories.NewGORMSessionRepository(db)
	if err != nil {
		closeDB()
		return nil, noop, err
	}
	return repo, closeDB, nil
}

// connectRabbitMQ returns a checkout event publisher, or nil when RabbitMQ is
// disabled or unreachable. Checkout works without it.
func connectRabbitMQ(cfg *config.Config) *rabbitmq.Client {
	if !cfg.RabbitMQEnabled {
		return nil
	}
	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
	if err != nil {
		log.Printf("RabbitMQ unavailable, checkout events will not be published: %v", err)
		return nil
	}
	err = mqClient.ConsumeCheckoutEvents(func(event models.CheckoutEvent) error {
		log.Printf("Checkout event %s: attempt=%s order=%s transaction=%s verified=%t",
			event.Type, event.AttemptID, event.OrderNumber, event.TransactionNumber, event.Verified)
		return nil
	})
	if err != nil {
		log.Printf("Failed to start RabbitMQ consumer: %v", err)
	}
	return mqClient
}

func logNavigation(path string) {
	log.Printf("Navigating to %s", path)
}

// NewApp wires the configuration into a ready-to-listen Fiber app. cleanup
// releases the session store and the RabbitMQ connection.
func NewApp(cfg *config.Config) (*fiber.App, func(), error) {
	store, closeStore, err := openSessionStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	sess, err := session.Open(context.Background(), store)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	mqClient := connectRabbitMQ(cfg)
	var publisher services.EventPublisher
	if mqClient != nil {
		publisher = mqClient
	}

	// --- Initialize Services ---
	repos := newBackend(cfg)
	catalogService := services.NewCatalogService(repos.catalog, sess, cfg.PageSize)
	cartService := services.NewCartService(repos.cart, sess)
	checkoutService := services.NewCheckoutService(repos.orders, cartService, sess, services.CheckoutConfig{
		RedirectDelay: cfg.OrdersRedirectDelay,
		AttemptTTL:    cfg.CheckoutAttemptTTL,
		Publisher:     publisher,
		Navigator:     logNavigation,
	})
	authService := services.NewAuthService(repos.users, sess, services.AuthConfig{
		RedirectDelay: cfg.LoginRedirectDelay,
		Navigator:     logNavigation,
	})
	accountService := services.NewAccountService(repos.users, repos.orders, repos.wishlist, cartService, sess)

	// --- Initialize Fiber App ---
	app := fiber.New()
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${method} ${path} ${latency}\n",
	}))
	app.Use(middleware.RequestContext())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"backend":  cfg.BackendMode,
			"session":  cfg.SessionBackend,
			"rabbitMQ": mqClient != nil,
		})
	})

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	handlers.NewSessionHandler(sess, authService, cartService).RegisterRoutes(apiV1)
	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1)
	handlers.NewCatalogHandler(catalogService).RegisterRoutes(apiV1)

	protectedRoutes := apiV1.Group("", middleware.SessionRequired(sess))
	handlers.NewCartHandler(cartService).RegisterRoutes(protectedRoutes)
	handlers.NewCheckoutHandler(checkoutService, cfg.DefaultDeliveryNotes).RegisterRoutes(protectedRoutes)
	handlers.NewAccountHandler(accountService).RegisterRoutes(protectedRoutes)

	cleanup := func() {
		catalogService.Close()
		if mqClient != nil {
			if err := mqClient.Close(); err != nil {
				log.Printf("Error closing RabbitMQ client: %v", err)
			}
		}
		closeStore()
	}
	return app, cleanup, nil
}
