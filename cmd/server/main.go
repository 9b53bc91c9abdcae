package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/storefront/internal/config"
	pkgdb "github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/es"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/logging"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/storefront/internal/middleware/logging"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/revocation"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err == nil {
		err = pkgdb.Migrate(ctx, db)
	}
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	var store revocation.Store = revocation.NewMemory()
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			log.Fatalf("redis ping: %v", err)
		}
		store = revocation.NewRedis(redisClient)
		logger.Info("revocation_store", "kind", "redis", "addr", cfg.RedisAddr)
	}

	var events mykafka.Publisher = mykafka.NopPublisher{}
	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		events = producer
	}

	images, err := storage.NewImages(cfg.UploadDir, cfg.MaxImageBytes)
	if err != nil {
		log.Fatalf("uploads: %v", err)
	}

	r := repo.New(db)
	catalog := &service.CatalogService{Repo: r, Images: images, Events: events}
	if cfg.ESURL != "" {
		esCtx, esCancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := es.NewClient(esCtx, cfg, logger)
		if err == nil {
			err = es.EnsureIndex(esCtx, client, cfg.ESIndex)
		}
		esCancel()
		if err != nil {
			logger.Warn("es_unavailable", "reason", "search falls back to sql", "error", err)
		} else {
			idx := search.NewES(client, cfg.ESIndex)
			catalog.Index = idx
			catalog.Search = idx
		}
	}

	authority := tokens.NewAuthority(cfg.JWTSecret, cfg.JWTExpiresIn, store)
	orders := &service.OrderService{Repo: r, Events: events}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())
	e.Use(echomw.BodyLimit(strconv.FormatInt(cfg.MaxImageBytes+(1<<20), 10)))

	httpserver.Register(e, &httpserver.Deps{
		Auth:      authmw.New(authority),
		Ready:     func(ctx context.Context) error { return pkgdb.Ping(ctx, db) },
		UploadDir: cfg.UploadDir,

		AuthHandler: &httpserver.AuthHTTP{Svc: &service.AuthService{
			Repo:             r,
			Tokens:           authority,
			Events:           events,
			AllowAdminSignup: cfg.AllowAdminSignup,
		}},
		CatalogHandler:   &httpserver.CatalogHTTP{Svc: catalog},
		OrderHandler:     &httpserver.OrderHTTP{Svc: orders},
		AdminHandler:     &httpserver.AdminHTTP{Orders: orders},
		DashboardHandler: &httpserver.DashboardHTTP{Svc: &service.DashboardService{Repo: r, Orders: orders}},
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Warn("kafka_close", "error", err)
		}
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	_ = pkgdb.Close(db)

	logger.Info("storefront stopped")
}
