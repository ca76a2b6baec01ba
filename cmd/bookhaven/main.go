package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/bookhaven/bookhaven/internal/app"
	"github.com/bookhaven/bookhaven/internal/auth"
	"github.com/bookhaven/bookhaven/internal/authors"
	"github.com/bookhaven/bookhaven/internal/books"
	"github.com/bookhaven/bookhaven/internal/orders"
	"github.com/bookhaven/bookhaven/internal/platform/cache"
	"github.com/bookhaven/bookhaven/internal/platform/db"
	"github.com/bookhaven/bookhaven/internal/users"
	"github.com/bookhaven/bookhaven/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	queue, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	revocations := auth.NewRevocationList(redisClient)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, issuer, revocations, queue, logger)
	authHandler := auth.NewHandler(logger, authService)
	authmw := auth.Middleware{Issuer: issuer, Revocations: revocations, Logger: logger}

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, authService)
	usersHandler := users.NewHandler(logger, usersService, authmw)

	booksRepo := books.NewRepository(dbpool)
	booksCache := books.NewCache(redisClient, cfg.CatalogCacheTTL)
	booksService := books.NewService(booksRepo, booksCache, logger)
	booksHandler := books.NewHandler(logger, booksService, authmw)

	ordersRepo := orders.NewRepository(dbpool)
	ordersService := orders.NewService(ordersRepo, queue, logger)
	ordersHandler := orders.NewHandler(logger, ordersService, authmw)

	authorsRepo := authors.NewRepository(dbpool)
	authorsService := authors.NewService(authorsRepo)
	authorsHandler := authors.NewHandler(logger, authorsService, authmw)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		AuthHandler:    authHandler,
		UsersHandler:   usersHandler,
		BooksHandler:   booksHandler,
		OrdersHandler:  ordersHandler,
		AuthorsHandler: authorsHandler,
		JobHandler:     jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
